// Package usage persists per-key API usage accumulation.
package usage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opendossier/docsearch/internal/db"
	"github.com/opendossier/docsearch/internal/db/postgres"
	"github.com/opendossier/docsearch/internal/domain"
)

// Executor runs composed queries.
type Executor interface {
	Execute(ctx context.Context, q db.Query, collect postgres.Collector) (int64, error)
}

// Repo accumulates usage rows keyed by (api_key, endpoint, usage_day).
type Repo struct {
	exec Executor
}

// New creates a usage repository.
func New(exec Executor) *Repo {
	return &Repo{exec: exec}
}

// recordSQL merges by addition: two events for the same key/endpoint/day
// strictly increase both counters, never overwrite.
const recordSQL = `
	INSERT INTO api_usage (api_key, endpoint, usage_day, request_count, document_count, tier)
	VALUES ($1, $2, CURRENT_DATE, 1, $3, $4)
	ON CONFLICT (api_key, endpoint, usage_day)
	DO UPDATE SET request_count = api_usage.request_count + 1,
	              document_count = api_usage.document_count + EXCLUDED.document_count`

// Record upserts one usage event. The caller guarantees a non-empty key.
func (r *Repo) Record(ctx context.Context, apiKey, endpoint string, documentCount int64) error {
	q := db.Query{
		SQL:  recordSQL,
		Args: []any{apiKey, endpoint, documentCount, string(domain.TierForKey(apiKey))},
	}
	if _, err := r.exec.Execute(ctx, q, nil); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// ReportForKey returns the accumulated buckets for one key, newest first.
func (r *Repo) ReportForKey(ctx context.Context, apiKey string) ([]domain.UsageRow, error) {
	b := db.NewSelect("endpoint", "usage_day", "request_count", "document_count", "tier").
		From("api_usage")
	b.Where("api_key = " + b.Bind(apiKey))
	b.OrderBy("usage_day DESC, endpoint")

	var rowsOut []domain.UsageRow
	_, err := r.exec.Execute(ctx, b.Build(), func(rows pgx.Rows) error {
		for rows.Next() {
			var u domain.UsageRow
			var tier string
			if err := rows.Scan(&u.Endpoint, &u.UsageDay, &u.RequestCount, &u.DocumentCount, &tier); err != nil {
				return fmt.Errorf("scan usage row: %w", err)
			}
			u.Tier = domain.Tier(tier)
			rowsOut = append(rowsOut, u)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("usage report: %w", err)
	}
	return rowsOut, nil
}
