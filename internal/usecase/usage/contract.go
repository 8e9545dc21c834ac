package usage

import (
	"context"

	"github.com/opendossier/docsearch/internal/domain"
)

// Store persists usage buckets.
type Store interface {
	Record(ctx context.Context, apiKey, endpoint string, documentCount int64) error
	ReportForKey(ctx context.Context, apiKey string) ([]domain.UsageRow, error)
}
