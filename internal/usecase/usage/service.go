// Package usage handles API usage accounting and reporting.
package usage

import (
	"context"
	"fmt"

	"github.com/opendossier/docsearch/internal/domain"
)

// Service records and reports per-key usage.
type Service struct {
	store Store
}

// New creates a usage service.
func New(store Store) *Service {
	return &Service{store: store}
}

// Record accumulates one usage event. Anonymous traffic (empty key) is not
// tracked; the call is a no-op and touches no storage.
func (s *Service) Record(ctx context.Context, apiKey, endpoint string, documentCount int64) error {
	if apiKey == "" {
		return nil
	}
	return s.store.Record(ctx, apiKey, endpoint, documentCount)
}

// Report returns the accumulated buckets for the calling key.
func (s *Service) Report(ctx context.Context, apiKey string) ([]domain.UsageRow, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required: %w", domain.ErrValidation)
	}
	return s.store.ReportForKey(ctx, apiKey)
}
