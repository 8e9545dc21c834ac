// Package semantic orchestrates vector similarity search: embed the query
// text, then run a nearest-neighbor query. Independent of the keyword path;
// no rate limiting or usage accounting applies here.
package semantic

import (
	"context"
	"fmt"

	"github.com/opendossier/docsearch/internal/domain"
	domsearch "github.com/opendossier/docsearch/internal/domain/search"
)

// Service handles semantic search.
type Service struct {
	repo     Repository
	embedder domain.Embedder
}

// New creates a semantic search service. embedder may be nil when no
// credential is configured; requests then fail before any query runs.
func New(repo Repository, embedder domain.Embedder) *Service {
	return &Service{repo: repo, embedder: embedder}
}

// Search embeds the query text and returns the nearest documents.
func (s *Service) Search(ctx context.Context, req *domsearch.SemanticRequest) ([]domain.SemanticMatch, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingNotConfigured
	}

	emb, err := s.embedder.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if len(emb.Embedding) == 0 {
		return nil, fmt.Errorf("provider returned no vector: %w", domain.ErrEmbeddingProvider)
	}

	matches, err := s.repo.SemanticSearch(ctx, emb.Embedding, req.Limit())
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}
	return matches, nil
}
