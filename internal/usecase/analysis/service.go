// Package analysis runs the AI enrichment pipeline: redact sensitive data,
// derive a summary and entity list, and persist the result.
package analysis

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/opendossier/docsearch/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`)
	phonePattern = regexp.MustCompile(`\b\+?\d[\d\s\-()]{8,}\d\b`)
)

// Redact masks emails and phone numbers before content leaves the system.
func Redact(text string) string {
	text = emailPattern.ReplaceAllString(text, "[EMAIL_REDACTED]")
	text = phonePattern.ReplaceAllString(text, "[PHONE_REDACTED]")
	return text
}

// Service handles document analysis.
type Service struct {
	analyzer Analyzer
	docs     Documents
	store    Store
}

// New creates an analysis service. analyzer may be nil when no chat
// credential is configured.
func New(analyzer Analyzer, docs Documents, store Store) *Service {
	return &Service{analyzer: analyzer, docs: docs, store: store}
}

// Analyze enriches one document and upserts the result. The document must
// already exist; content is the raw text to analyze.
func (s *Service) Analyze(ctx context.Context, documentID, content string) (domain.Analysis, error) {
	if s.analyzer == nil {
		return domain.Analysis{}, domain.ErrAnalyzerNotConfigured
	}
	if content == "" {
		return domain.Analysis{}, fmt.Errorf("content is required: %w", domain.ErrValidation)
	}

	id, err := s.docs.ResolveID(ctx, documentID)
	if err != nil {
		return domain.Analysis{}, err
	}

	start := time.Now()
	text := Redact(content)

	summary, err := s.analyzer.Summarize(ctx, text)
	if err != nil {
		return domain.Analysis{}, err
	}
	entities, err := s.analyzer.ExtractEntities(ctx, text)
	if err != nil {
		return domain.Analysis{}, err
	}

	a := domain.Analysis{
		DocumentID:       documentID,
		Summary:          summary,
		Entities:         entities,
		ModelUsed:        s.analyzer.Model(),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}
	if err := s.store.Upsert(ctx, id, a); err != nil {
		return domain.Analysis{}, err
	}
	return a, nil
}
