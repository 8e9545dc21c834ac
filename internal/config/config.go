// Package config loads the YAML configuration per environment with
// ${VAR} expansion, defaults, and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the docsearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Postgres pool settings.
type DatabaseConfig struct {
	URL                 string `yaml:"url"`
	MaxConns            int32  `yaml:"max_conns"`
	MinConns            int32  `yaml:"min_conns"`
	MaxConnIdleSec      int    `yaml:"max_conn_idle_sec"`
	AcquireTimeoutSec   int    `yaml:"acquire_timeout_sec"`
	ReadinessTimeoutSec int    `yaml:"readiness_timeout_sec"`
	InitSchema          bool   `yaml:"init_schema"`
}

// RedisConfig holds the optional rate-limit backing store. Empty addrs
// selects the static always-admit limiter.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// OpenAIConfig holds embedding and chat provider settings. An empty api_key
// disables the semantic search and analysis endpoints.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
}

// RateLimitConfig is the per-tier quota table.
type RateLimitConfig struct {
	Anonymous     int64  `yaml:"anonymous"`
	Authenticated int64  `yaml:"authenticated"`
	WindowSec     int    `yaml:"window_sec"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// SearchConfig holds query execution settings and the vector storage
// contract (column + distance operator).
type SearchConfig struct {
	VectorColumn     string `yaml:"vector_column"`
	DistanceOperator string `yaml:"distance_operator"`
	SlowQueryMS      int    `yaml:"slow_query_ms"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 20
	}
	if c.Database.MinConns <= 0 {
		c.Database.MinConns = 2
	}
	if c.Database.MaxConnIdleSec <= 0 {
		c.Database.MaxConnIdleSec = 30
	}
	if c.Database.AcquireTimeoutSec <= 0 {
		c.Database.AcquireTimeoutSec = 5
	}
	if c.Database.ReadinessTimeoutSec <= 0 {
		c.Database.ReadinessTimeoutSec = 10
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.RateLimit.Anonymous <= 0 {
		c.RateLimit.Anonymous = 100
	}
	if c.RateLimit.Authenticated <= 0 {
		c.RateLimit.Authenticated = 1000
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 3600
	}
	if c.RateLimit.KeyPrefix == "" {
		c.RateLimit.KeyPrefix = "docsearch:rl:"
	}
	if c.Search.VectorColumn == "" {
		c.Search.VectorColumn = "content_vector"
	}
	if c.Search.DistanceOperator == "" {
		c.Search.DistanceOperator = "<=>"
	}
	if c.Search.SlowQueryMS <= 0 {
		c.Search.SlowQueryMS = 1000
	}
}

// distanceOperators are the pgvector operators the storage layer supports.
var distanceOperators = map[string]struct{}{
	"<=>": {}, // cosine
	"<->": {}, // L2
	"<#>": {}, // negative inner product
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if _, ok := distanceOperators[c.Search.DistanceOperator]; !ok {
		return fmt.Errorf("search.distance_operator must be one of <=>, <->, <#>, got %q",
			c.Search.DistanceOperator)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
