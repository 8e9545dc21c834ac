// Package ratelimit provides domain.Limiter implementations: a static
// policy that always admits and a Redis fixed-window limiter that can
// reject.
package ratelimit

import (
	"context"
	"time"

	"github.com/opendossier/docsearch/internal/domain"
)

// Quotas is the per-tier request quota table. Values come from
// configuration, not code.
type Quotas struct {
	Anonymous     int64
	Authenticated int64
	Window        time.Duration
}

// quotaFor picks the quota tier: any non-empty key gets the higher one.
func (q Quotas) quotaFor(apiKey string) int64 {
	if apiKey == "" {
		return q.Anonymous
	}
	return q.Authenticated
}

// windowEnd returns the end of the fixed window containing now.
func (q Quotas) windowEnd(now time.Time) time.Time {
	return now.Truncate(q.Window).Add(q.Window)
}

// Static is the reference policy: it never rejects and reports the full
// quota minus the current request as remaining.
type Static struct {
	quotas Quotas
	now    func() time.Time
}

var _ domain.Limiter = (*Static)(nil)

// NewStatic creates a static limiter from the configured quota table.
func NewStatic(quotas Quotas) *Static {
	return &Static{quotas: quotas, now: time.Now}
}

// Decide implements domain.Limiter.
func (s *Static) Decide(_ context.Context, apiKey string) (domain.RateDecision, error) {
	return domain.RateDecision{
		Allowed:   true,
		Remaining: s.quotas.quotaFor(apiKey) - 1,
		ResetAt:   s.quotas.windowEnd(s.now()),
	}, nil
}
