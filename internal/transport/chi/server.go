// Package chi is the HTTP transport: routing, parameter parsing, and
// error-to-status mapping.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/opendossier/docsearch/internal/domain"
	analysisuc "github.com/opendossier/docsearch/internal/usecase/analysis"
	healthuc "github.com/opendossier/docsearch/internal/usecase/health"
	searchuc "github.com/opendossier/docsearch/internal/usecase/search"
	semanticuc "github.com/opendossier/docsearch/internal/usecase/semantic"
	usageuc "github.com/opendossier/docsearch/internal/usecase/usage"
)

// apiKeyHeader carries the caller's key for rate/usage bucketing. The key
// is opaque here; no authentication is implied.
const apiKeyHeader = "X-API-Key"

// Server holds the API handlers.
type Server struct {
	search        *searchuc.Service
	semantic      *semanticuc.Service
	analysis      *analysisuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	semantic *semanticuc.Service,
	analysis *analysisuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		semantic: semantic,
		analysis: analysis,
		usage:    usage,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests),
		sentinelHandler(domain.ErrEmbeddingNotConfigured, http.StatusBadRequest),
		sentinelHandler(domain.ErrAnalyzerNotConfigured, http.StatusBadRequest),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway),
	}
	return s
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/documents", s.SearchDocuments)
		r.Get("/semantic-search", s.SemanticSearch)
		r.Post("/documents/{id}/analyze", s.AnalyzeDocument)
		r.Get("/usage", s.UsageReport)
	})
}

// SearchDocuments handles GET /api/v1/documents.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get(apiKeyHeader)

	req, err := searchRequestFromQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.search.Search(r.Context(), apiKey, &req)
	if errors.Is(err, domain.ErrRateLimited) {
		// A stale reset from the limiter store must still yield a usable hint.
		retryAfter := int(time.Until(out.Rate.ResetAt).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, envelope{
			Success:    false,
			Error:      domain.ErrRateLimited.Error(),
			RetryAfter: out.Rate.ResetAt.Format(time.RFC3339),
			RequestID:  chimw.GetReqID(r.Context()),
		})
		return
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	docs := out.Documents
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       docs,
		Pagination: &out.Pagination,
		RateLimit:  &rateInfo{Remaining: out.Rate.Remaining, Reset: out.Rate.ResetAt},
		RequestID:  chimw.GetReqID(r.Context()),
	})
}

// SemanticSearch handles GET /api/v1/semantic-search.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	req, err := semanticRequestFromQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	matches, err := s.semantic.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if matches == nil {
		matches = []domain.SemanticMatch{}
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Data:      matches,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// analyzeRequest is the POST body of the analyze endpoint.
type analyzeRequest struct {
	Content string `json:"content"`
}

// AnalyzeDocument handles POST /api/v1/documents/{id}/analyze.
func (s *Server) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.analysis.Analyze(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Data:      result,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// UsageReport handles GET /api/v1/usage.
func (s *Server) UsageReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.usage.Report(r.Context(), r.Header.Get(apiKeyHeader))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if rows == nil {
		rows = []domain.UsageRow{}
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Data:      rows,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}

// handleDomainError walks the sentinel table; anything unmatched is an
// internal failure, logged with the request correlation id.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, r, err) {
			return
		}
	}
	s.logger.Error("internal error",
		zap.Error(err),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
	)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
