// Package search orchestrates keyword document search: rate limiting,
// query execution, and usage accounting, strictly in that order.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/opendossier/docsearch/internal/domain"
	domsearch "github.com/opendossier/docsearch/internal/domain/search"
)

// EndpointDocumentsList is the usage bucket for keyword search.
const EndpointDocumentsList = "documents.list"

// Service handles keyword document search.
type Service struct {
	docs    DocumentSearcher
	limiter domain.Limiter
	usage   UsageRecorder
	logger  *zap.Logger
}

// New creates a search service.
func New(docs DocumentSearcher, limiter domain.Limiter, usage UsageRecorder, logger *zap.Logger) *Service {
	return &Service{docs: docs, limiter: limiter, usage: usage, logger: logger}
}

// Output is one search response: rows, pagination metadata, and the rate
// decision that admitted the request.
type Output struct {
	Documents  []domain.Document
	Pagination domsearch.Pagination
	Rate       domain.RateDecision
}

// Search runs one request. A rejected decision short-circuits: no query is
// issued and no usage is recorded. The returned Output carries the decision
// even on rejection so the transport can emit retry guidance.
func (s *Service) Search(ctx context.Context, apiKey string, req *domsearch.Request) (Output, error) {
	dec, err := s.limiter.Decide(ctx, apiKey)
	if err != nil {
		// Fail open: limiter backing-store outages must not take search down.
		s.logger.Warn("rate limiter unavailable, admitting request", zap.Error(err))
		dec = domain.RateDecision{Allowed: true}
	}
	if !dec.Allowed {
		return Output{Rate: dec}, domain.ErrRateLimited
	}

	docs, pagination, err := s.docs.Search(ctx, req)
	if err != nil {
		return Output{Rate: dec}, fmt.Errorf("search: %w", err)
	}

	if err := s.usage.Record(ctx, apiKey, EndpointDocumentsList, int64(len(docs))); err != nil {
		// Usage accounting must not fail a served request.
		s.logger.Warn("usage recording failed", zap.Error(err), zap.String("endpoint", EndpointDocumentsList))
	}

	return Output{Documents: docs, Pagination: pagination, Rate: dec}, nil
}
