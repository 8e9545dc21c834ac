package document

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opendossier/docsearch/internal/db"
	"github.com/opendossier/docsearch/internal/db/postgres"
)

// fakeExecutor records the composed query and replays canned rows.
type fakeExecutor struct {
	rows    [][]any
	err     error
	queries []db.Query
}

func (f *fakeExecutor) Execute(_ context.Context, q db.Query, collect postgres.Collector) (int64, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return 0, f.err
	}
	if collect != nil {
		if err := collect(&fakeRows{data: f.rows}); err != nil {
			return 0, err
		}
	}
	return int64(len(f.rows)), nil
}

func (f *fakeExecutor) lastQuery() db.Query {
	return f.queries[len(f.queries)-1]
}

// fakeRows replays [][]any as a pgx.Rows result set.
type fakeRows struct {
	data [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int64:
			*p = row[i].(int64)
		case *float64:
			*p = row[i].(float64)
		case **time.Time:
			if row[i] == nil {
				*p = nil
			} else {
				v := row[i].(time.Time)
				*p = &v
			}
		case *time.Time:
			*p = row[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.data))) }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
