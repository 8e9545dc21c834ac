package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/opendossier/docsearch/internal/db"
	"github.com/opendossier/docsearch/internal/domain"
	"github.com/opendossier/docsearch/internal/metrics"
)

// Collector consumes a result set. It must iterate rows to completion.
type Collector func(rows pgx.Rows) error

// Executor runs composed queries against the pool. Non-locking SELECTs take
// a direct read path; everything else acquires a connection and runs inside
// a transaction. Routing never changes result semantics: both paths produce
// identical rows for identical (SQL, Args).
type Executor struct {
	pool          *Pool
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewExecutor creates an Executor. slowThreshold <= 0 disables slow-query
// flagging.
func NewExecutor(pool *Pool, slowThreshold time.Duration, logger *zap.Logger) *Executor {
	return &Executor{pool: pool, slowThreshold: slowThreshold, logger: logger}
}

// IsSimpleRead reports whether a template is a side-effect-free SELECT with
// no row locking. Pure function of the template text.
func IsSimpleRead(sql string) bool {
	s := strings.ToUpper(strings.TrimSpace(sql))
	return strings.HasPrefix(s, "SELECT") && !strings.Contains(s, "FOR UPDATE")
}

// Execute runs q and feeds the result set to collect (which may be nil for
// statements that return no rows). Returns the row count.
func (e *Executor) Execute(ctx context.Context, q db.Query, collect Collector) (int64, error) {
	start := time.Now()

	path := "read"
	var count int64
	var err error
	if IsSimpleRead(q.SQL) {
		count, err = e.read(ctx, q, collect)
	} else {
		path = "tx"
		count, err = e.transact(ctx, q, collect)
	}

	elapsed := time.Since(start)
	metrics.QueryDuration.WithLabelValues(path).Observe(elapsed.Seconds())
	if e.slowThreshold > 0 && elapsed > e.slowThreshold {
		metrics.SlowQueriesTotal.Inc()
		e.logger.Warn("slow query",
			zap.Duration("elapsed", elapsed),
			zap.String("path", path),
			zap.Int64("rows", count),
		)
	}
	return count, err
}

// acquire checks a connection out of the pool, bounding the wait by the
// configured AcquireTimeout. The timeout applies to acquisition only, never
// to query execution. Both execution paths go through here.
func (e *Executor) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx := ctx
	if e.pool.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, e.pool.cfg.AcquireTimeout)
		defer cancel()
	}

	conn, err := e.pool.pool.Acquire(acquireCtx)
	if err != nil {
		return nil, mapAcquireErr(err)
	}
	return conn, nil
}

// mapAcquireErr distinguishes pool exhaustion from other storage failures.
func mapAcquireErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("acquire connection: %w", domain.ErrPoolTimeout)
	}
	return wrapStorage("acquire connection", err)
}

// read runs a non-locking SELECT on a pooled connection; no transaction.
func (e *Executor) read(ctx context.Context, q db.Query, collect Collector) (int64, error) {
	conn, err := e.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, wrapStorage("query", err)
	}
	defer rows.Close()

	return drain(rows, collect)
}

// transact acquires a pooled connection and runs q inside a transaction.
// The connection is released on every exit path.
func (e *Executor) transact(ctx context.Context, q db.Query, collect Collector) (int64, error) {
	conn, err := e.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, wrapStorage("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	var count int64
	if collect == nil {
		tag, err := tx.Exec(ctx, q.SQL, q.Args...)
		if err != nil {
			return 0, wrapStorage("exec", err)
		}
		count = tag.RowsAffected()
	} else {
		rows, err := tx.Query(ctx, q.SQL, q.Args...)
		if err != nil {
			return 0, wrapStorage("query", err)
		}
		count, err = drain(rows, collect)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrapStorage("commit", err)
	}
	return count, nil
}

func drain(rows pgx.Rows, collect Collector) (int64, error) {
	if collect != nil {
		if err := collect(rows); err != nil {
			rows.Close()
			return 0, err
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, wrapStorage("read rows", err)
	}
	return rows.CommandTag().RowsAffected(), nil
}

func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
