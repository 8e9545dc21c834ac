// Package health aggregates component health checks.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// Report aggregates health check results per component.
type Report struct {
	Status Status            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	limiter   LimiterPinger
}

// New creates a Service. embedding and limiter can be nil.
func New(db DBPinger, embedding EmbeddingChecker, limiter LimiterPinger) *Service {
	return &Service{db: db, embedding: embedding, limiter: limiter}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]string)

	check := func(name string, err error) {
		if err != nil {
			checks[name] = "error"
		} else {
			checks[name] = "ok"
		}
	}

	check("database", s.db.Ping(ctx))
	if s.embedding != nil {
		check("embedding", s.embedding.HealthCheck(ctx))
	}
	if s.limiter != nil {
		check("ratelimit", s.limiter.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == "error" {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
