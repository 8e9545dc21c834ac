package semantic

import (
	"context"

	"github.com/opendossier/docsearch/internal/domain"
)

// Repository runs nearest-neighbor queries.
type Repository interface {
	SemanticSearch(ctx context.Context, vec []float32, limit int) ([]domain.SemanticMatch, error)
}
