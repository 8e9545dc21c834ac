package domain

import (
	"context"
	"time"
)

// RateDecision is the admit/reject outcome for one request.
// It is computed fresh per request and never persisted here.
type RateDecision struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Limiter decides whether a request for the given API key may proceed.
// An empty key is anonymous traffic and gets the lower quota tier.
type Limiter interface {
	Decide(ctx context.Context, apiKey string) (RateDecision, error)
}
