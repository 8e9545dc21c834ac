// Package document composes and runs document search queries.
package document

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opendossier/docsearch/internal/db"
	"github.com/opendossier/docsearch/internal/db/postgres"
	"github.com/opendossier/docsearch/internal/domain"
	"github.com/opendossier/docsearch/internal/domain/search"
)

// Executor runs composed queries.
type Executor interface {
	Execute(ctx context.Context, q db.Query, collect postgres.Collector) (int64, error)
}

// VectorConfig is the storage contract for nearest-neighbor queries:
// which column holds document vectors and which distance operator the
// index supports.
type VectorConfig struct {
	Column   string
	Operator string
}

// Repo runs document queries.
type Repo struct {
	exec   Executor
	vector VectorConfig
}

// New creates a document repository.
func New(exec Executor, vector VectorConfig) *Repo {
	return &Repo{exec: exec, vector: vector}
}

// entityMatch is the per-document entity-name sub-clause of the free-text
// predicate. %[1]s is the placeholder of the single bound search pattern.
const entityMatch = `EXISTS (
	SELECT 1 FROM jsonb_array_elements(COALESCE(da.key_entities, '[]'::jsonb)) entity
	WHERE entity->>'name' ILIKE %[1]s)`

// buildSearchQuery turns a validated request into a parameterized query.
// Clause order is fixed: free-text triple, document type, date-from.
// The free-text value is bound once and its placeholder reused across all
// three sub-clauses. LIMIT and OFFSET are always the last two parameters.
func buildSearchQuery(req *search.Request) db.Query {
	b := db.NewSelect(
		"d.id",
		"d.document_id",
		"d.title",
		"COALESCE(d.document_type, '') AS document_type",
		"d.release_date",
		"COALESCE(d.source_url, '') AS source_url",
		"COALESCE(da.summary, '') AS ai_summary",
		"COUNT(*) OVER() AS total_count",
	).
		From("documents d").
		LeftJoin("document_analyses da ON d.id = da.document_id AND da.analysis_version = '" +
			domain.AnalysisVersion + "'")

	if q := req.Query(); q != "" {
		ph := b.Bind("%" + q + "%")
		b.Where(fmt.Sprintf("(d.title ILIKE %[1]s OR d.content ILIKE %[1]s OR "+entityMatch+")", ph))
	}
	f := req.Filters()
	if f.DocumentType != "" {
		b.Where("d.document_type = " + b.Bind(f.DocumentType))
	}
	if f.DateFrom != "" {
		b.Where("d.release_date >= " + b.Bind(f.DateFrom))
	}

	return b.
		OrderBy("d.release_date DESC NULLS LAST, d.id").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Build()
}

// Search runs a keyword search and derives pagination from the window
// aggregate of the first returned row.
func (r *Repo) Search(ctx context.Context, req *search.Request) ([]domain.Document, search.Pagination, error) {
	q := buildSearchQuery(req)

	var docs []domain.Document
	_, err := r.exec.Execute(ctx, q, func(rows pgx.Rows) error {
		for rows.Next() {
			var d domain.Document
			if err := rows.Scan(
				&d.ID, &d.DocumentID, &d.Title, &d.DocumentType,
				&d.ReleaseDate, &d.SourceURL, &d.AISummary, &d.TotalCount,
			); err != nil {
				return fmt.Errorf("scan document: %w", err)
			}
			docs = append(docs, d)
		}
		return nil
	})
	if err != nil {
		return nil, search.Pagination{}, fmt.Errorf("search documents: %w", err)
	}

	var total int64
	if len(docs) > 0 {
		total = docs[0].TotalCount
	}
	return docs, search.NewPagination(req.Page(), req.Limit(), total), nil
}

// buildSemanticQuery composes the nearest-neighbor query: ascending distance
// to the single bound vector literal, similarity as 1 - distance, restricted
// to rows with a vector.
func (r *Repo) buildSemanticQuery(vec []float32, limit int) db.Query {
	b := db.NewSelect("id", "document_id", "title", "release_date").
		From("documents")
	ph := b.Bind(db.VectorLiteral(vec))
	b.Column(fmt.Sprintf("1 - (%s %s %s::vector) AS similarity", r.vector.Column, r.vector.Operator, ph)).
		Where(r.vector.Column + " IS NOT NULL").
		OrderBy(fmt.Sprintf("%s %s %s::vector", r.vector.Column, r.vector.Operator, ph)).
		Limit(limit)
	return b.Build()
}

// SemanticSearch returns the limit nearest documents to vec.
func (r *Repo) SemanticSearch(ctx context.Context, vec []float32, limit int) ([]domain.SemanticMatch, error) {
	q := r.buildSemanticQuery(vec, limit)

	var matches []domain.SemanticMatch
	_, err := r.exec.Execute(ctx, q, func(rows pgx.Rows) error {
		for rows.Next() {
			var m domain.SemanticMatch
			if err := rows.Scan(&m.ID, &m.DocumentID, &m.Title, &m.ReleaseDate, &m.Similarity); err != nil {
				return fmt.Errorf("scan match: %w", err)
			}
			matches = append(matches, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return matches, nil
}

// ResolveID maps an external document id to the internal row id.
func (r *Repo) ResolveID(ctx context.Context, documentID string) (string, error) {
	b := db.NewSelect("id").From("documents")
	b.Where("document_id = " + b.Bind(documentID))

	var id string
	n, err := r.exec.Execute(ctx, b.Build(), func(rows pgx.Rows) error {
		for rows.Next() {
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan id: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve document id: %w", err)
	}
	if n == 0 {
		return "", domain.ErrDocumentNotFound
	}
	return id, nil
}
