package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/opendossier/docsearch/internal/config"
	"github.com/opendossier/docsearch/internal/db/postgres"
	redisdb "github.com/opendossier/docsearch/internal/db/redis"
	"github.com/opendossier/docsearch/internal/domain"
	logpkg "github.com/opendossier/docsearch/internal/logger"
	"github.com/opendossier/docsearch/internal/metrics"
	"github.com/opendossier/docsearch/internal/ratelimit"
	analysisrepo "github.com/opendossier/docsearch/internal/repository/analysis"
	documentrepo "github.com/opendossier/docsearch/internal/repository/document"
	usagerepo "github.com/opendossier/docsearch/internal/repository/usage"
	chiTransport "github.com/opendossier/docsearch/internal/transport/chi"
	openaiProvider "github.com/opendossier/docsearch/internal/transport/openai"
	analysisuc "github.com/opendossier/docsearch/internal/usecase/analysis"
	healthuc "github.com/opendossier/docsearch/internal/usecase/health"
	searchuc "github.com/opendossier/docsearch/internal/usecase/search"
	semanticuc "github.com/opendossier/docsearch/internal/usecase/semantic"
	usageuc "github.com/opendossier/docsearch/internal/usecase/usage"
	"github.com/opendossier/docsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnIdleTime: time.Duration(cfg.Database.MaxConnIdleSec) * time.Second,
		AcquireTimeout:  time.Duration(cfg.Database.AcquireTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeoutSec)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if cfg.Database.InitSchema {
		if err := pool.InitSchema(ctx); err != nil {
			logger.Fatal("Failed to initialize schema", zap.Error(err))
		}
	}
	logger.Info("Connected to database")

	metrics.RegisterAppMetrics()

	executor := postgres.NewExecutor(pool,
		time.Duration(cfg.Search.SlowQueryMS)*time.Millisecond, logger)

	// Rate limiter: Redis fixed window when configured, static table otherwise.
	quotas := ratelimit.Quotas{
		Anonymous:     cfg.RateLimit.Anonymous,
		Authenticated: cfg.RateLimit.Authenticated,
		Window:        time.Duration(cfg.RateLimit.WindowSec) * time.Second,
	}
	var limiter domain.Limiter
	var limiterPinger healthuc.LimiterPinger
	if len(cfg.Redis.Addrs) > 0 {
		rdb, err := redisdb.NewClient(redisdb.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis client", zap.Error(err))
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedis(rdb, quotas, cfg.RateLimit.KeyPrefix)
		limiterPinger = rdb
		logger.Info("Rate limiter: redis fixed window", zap.Strings("addrs", cfg.Redis.Addrs))
	} else {
		limiter = ratelimit.NewStatic(quotas)
		logger.Info("Rate limiter: static policy")
	}

	// Embedding and analysis providers. Pass nil interfaces (not typed nil
	// pointers!) when no credential is configured; the usecases then fail
	// fast with their not-configured sentinels.
	var embedder domain.Embedder
	var embChecker healthuc.EmbeddingChecker
	var analyzer analysisuc.Analyzer
	if cfg.OpenAI.APIKey != "" {
		providerCfg := &openaiProvider.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.EmbeddingModel,
		}
		emb := openaiProvider.NewEmbedder(providerCfg)
		embedder = emb
		embChecker = emb
		analyzer = openaiProvider.NewAnalyzer(providerCfg, cfg.OpenAI.ChatModel)
		logger.Info("Embedding provider configured",
			zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
			zap.String("chat_model", cfg.OpenAI.ChatModel),
		)
	}

	// Repositories
	docRepo := documentrepo.New(executor, documentrepo.VectorConfig{
		Column:   cfg.Search.VectorColumn,
		Operator: cfg.Search.DistanceOperator,
	})
	usageRepo := usagerepo.New(executor)
	analysisRepo := analysisrepo.New(executor)

	// Use case services
	usageSvc := usageuc.New(usageRepo)
	searchSvc := searchuc.New(docRepo, limiter, usageSvc, logger)
	semanticSvc := semanticuc.New(docRepo, embedder)
	analysisSvc := analysisuc.New(analyzer, docRepo, analysisRepo)
	healthSvc := healthuc.New(pool, embChecker, limiterPinger)

	server := chiTransport.NewServer(searchSvc, semanticSvc, analysisSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
