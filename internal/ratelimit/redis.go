package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/opendossier/docsearch/internal/domain"
	"github.com/opendossier/docsearch/internal/metrics"
)

// Counter is the key-value surface the Redis limiter consumes.
type Counter interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	ExpireNX(ctx context.Context, key string, ttl time.Duration) error
}

// Redis is a fixed-window limiter backed by a shared counter store.
// Requests are counted per (key, window); the decision rejects once the
// count exceeds the tier quota.
type Redis struct {
	counter Counter
	quotas  Quotas
	prefix  string
	now     func() time.Time
}

var _ domain.Limiter = (*Redis)(nil)

// NewRedis creates a Redis-backed limiter.
func NewRedis(counter Counter, quotas Quotas, prefix string) *Redis {
	return &Redis{counter: counter, quotas: quotas, prefix: prefix, now: time.Now}
}

// Decide implements domain.Limiter. Anonymous traffic shares one bucket.
func (r *Redis) Decide(ctx context.Context, apiKey string) (domain.RateDecision, error) {
	now := r.now()
	windowStart := now.Truncate(r.quotas.Window)
	resetAt := windowStart.Add(r.quotas.Window)

	bucket := apiKey
	if bucket == "" {
		bucket = "anonymous"
	}
	key := fmt.Sprintf("%s%s:%d", r.prefix, bucket, windowStart.Unix())

	count, err := r.counter.IncrBy(ctx, key, 1)
	if err != nil {
		return domain.RateDecision{}, fmt.Errorf("rate counter: %w", err)
	}
	// TTL only on first increment of the window; NX keeps retries harmless.
	if err := r.counter.ExpireNX(ctx, key, resetAt.Sub(now)+time.Second); err != nil {
		return domain.RateDecision{}, fmt.Errorf("rate counter expiry: %w", err)
	}

	quota := r.quotas.quotaFor(apiKey)
	remaining := quota - count
	if remaining < 0 {
		remaining = 0
	}

	allowed := count <= quota
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	metrics.RateLimitDecisionsTotal.WithLabelValues(outcome).Inc()

	return domain.RateDecision{Allowed: allowed, Remaining: remaining, ResetAt: resetAt}, nil
}
