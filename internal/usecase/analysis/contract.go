package analysis

import (
	"context"

	"github.com/opendossier/docsearch/internal/domain"
)

// Analyzer derives a summary and entity list from document content.
type Analyzer interface {
	Summarize(ctx context.Context, text string) (string, error)
	ExtractEntities(ctx context.Context, text string) ([]domain.Entity, error)
	Model() string
}

// Documents resolves external document ids.
type Documents interface {
	ResolveID(ctx context.Context, documentID string) (string, error)
}

// Store persists analyses.
type Store interface {
	Upsert(ctx context.Context, id string, a domain.Analysis) error
}
