package search

import (
	"context"

	"github.com/opendossier/docsearch/internal/domain"
	domsearch "github.com/opendossier/docsearch/internal/domain/search"
)

// DocumentSearcher runs composed keyword searches.
type DocumentSearcher interface {
	Search(ctx context.Context, req *domsearch.Request) ([]domain.Document, domsearch.Pagination, error)
}

// UsageRecorder records one usage event per request.
type UsageRecorder interface {
	Record(ctx context.Context, apiKey, endpoint string, documentCount int64) error
}
