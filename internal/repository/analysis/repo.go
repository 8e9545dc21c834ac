// Package analysis persists AI-derived document enrichments.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opendossier/docsearch/internal/db"
	"github.com/opendossier/docsearch/internal/db/postgres"
	"github.com/opendossier/docsearch/internal/domain"
)

// Executor runs composed queries.
type Executor interface {
	Execute(ctx context.Context, q db.Query, collect postgres.Collector) (int64, error)
}

// Repo upserts analyses keyed by (document_id, analysis_version).
type Repo struct {
	exec Executor
}

// New creates an analysis repository.
func New(exec Executor) *Repo {
	return &Repo{exec: exec}
}

const upsertSQL = `
	INSERT INTO document_analyses
	    (document_id, analysis_version, summary, key_entities, model_used, processing_time_ms, updated_at)
	VALUES ($1, $2, $3, $4::jsonb, $5, $6, NOW())
	ON CONFLICT (document_id, analysis_version)
	DO UPDATE SET summary = EXCLUDED.summary,
	              key_entities = EXCLUDED.key_entities,
	              model_used = EXCLUDED.model_used,
	              processing_time_ms = EXCLUDED.processing_time_ms,
	              updated_at = NOW()`

// Upsert writes an analysis for the internal document row id. A nil entity
// list is stored as the empty jsonb array: marshaling nil would bind the
// jsonb scalar null, which jsonb_array_elements in the search query rejects.
func (r *Repo) Upsert(ctx context.Context, id string, a domain.Analysis) error {
	list := a.Entities
	if list == nil {
		list = []domain.Entity{}
	}
	entities, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	q := db.Query{
		SQL: upsertSQL,
		Args: []any{
			id, domain.AnalysisVersion, a.Summary, string(entities),
			a.ModelUsed, a.ProcessingTimeMS,
		},
	}
	if _, err := r.exec.Execute(ctx, q, nil); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}
