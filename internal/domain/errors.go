package domain

import "errors"

var (
	// ErrValidation signals malformed or out-of-range request input.
	ErrValidation = errors.New("validation failed")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrRateLimited signals a rate limit rejection.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrPoolTimeout signals that no pooled connection became available in time.
	ErrPoolTimeout = errors.New("connection pool timeout")
	// ErrStorage signals a database failure.
	ErrStorage = errors.New("storage error")
	// ErrEmbeddingNotConfigured signals a missing embedding credential.
	ErrEmbeddingNotConfigured = errors.New("embedding provider not configured")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrAnalyzerNotConfigured signals a missing chat credential for analysis.
	ErrAnalyzerNotConfigured = errors.New("analyzer not configured")
)
