package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/opendossier/docsearch/internal/domain"
)

type fakeAnalyzer struct {
	summary      string
	entities     []domain.Entity
	summaryErr   error
	entitiesErr  error
	summarized   string
	extractedRaw string
}

func (f *fakeAnalyzer) Summarize(_ context.Context, text string) (string, error) {
	f.summarized = text
	return f.summary, f.summaryErr
}

func (f *fakeAnalyzer) ExtractEntities(_ context.Context, text string) ([]domain.Entity, error) {
	f.extractedRaw = text
	return f.entities, f.entitiesErr
}

func (f *fakeAnalyzer) Model() string { return "gpt-4o-mini" }

type fakeDocs struct {
	id  string
	err error
}

func (f *fakeDocs) ResolveID(_ context.Context, _ string) (string, error) {
	return f.id, f.err
}

type fakeStore struct {
	err    error
	id     string
	stored domain.Analysis
	called int
}

func (f *fakeStore) Upsert(_ context.Context, id string, a domain.Analysis) error {
	f.called++
	f.id, f.stored = id, a
	return f.err
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"email", "contact jane.doe@example.com today", "contact [EMAIL_REDACTED] today"},
		{"phone", "call 030 1234 5678 now", "call [PHONE_REDACTED] now"},
		{"plain digits phone", "ring 01234567890 now", "ring [PHONE_REDACTED] now"},
		{"clean text", "nothing sensitive here", "nothing sensitive here"},
		{"short number kept", "article 12 applies", "article 12 applies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.in); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	analyzer := &fakeAnalyzer{
		summary:  "A ruling on pensions.",
		entities: []domain.Entity{{Name: "ACME", Type: "ORGANIZATION", Confidence: 0.9}},
	}
	docs := &fakeDocs{id: "42"}
	store := &fakeStore{}
	svc := New(analyzer, docs, store)

	a, err := svc.Analyze(context.Background(), "DOC-42", "Contact jane@example.com about the ruling.")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Summary != "A ruling on pensions." || len(a.Entities) != 1 {
		t.Errorf("analysis = %+v", a)
	}
	if a.ModelUsed != "gpt-4o-mini" {
		t.Errorf("ModelUsed = %q", a.ModelUsed)
	}
	if store.id != "42" {
		t.Errorf("stored under id %q, want 42", store.id)
	}
	if strings.Contains(analyzer.summarized, "jane@example.com") {
		t.Error("unredacted content reached the provider")
	}
	if !strings.Contains(analyzer.summarized, "[EMAIL_REDACTED]") {
		t.Errorf("summarized text = %q", analyzer.summarized)
	}
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	svc := New(nil, &fakeDocs{id: "42"}, &fakeStore{})

	_, err := svc.Analyze(context.Background(), "DOC-42", "text")
	if !errors.Is(err, domain.ErrAnalyzerNotConfigured) {
		t.Errorf("err = %v, want ErrAnalyzerNotConfigured", err)
	}
}

func TestAnalyzeEmptyContent(t *testing.T) {
	svc := New(&fakeAnalyzer{}, &fakeDocs{id: "42"}, &fakeStore{})

	_, err := svc.Analyze(context.Background(), "DOC-42", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestAnalyzeUnknownDocument(t *testing.T) {
	docs := &fakeDocs{err: domain.ErrDocumentNotFound}
	store := &fakeStore{}
	svc := New(&fakeAnalyzer{}, docs, store)

	_, err := svc.Analyze(context.Background(), "DOC-missing", "text")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("err = %v, want ErrDocumentNotFound", err)
	}
	if store.called != 0 {
		t.Error("upsert ran for an unknown document")
	}
}

func TestAnalyzeProviderFailureSkipsStore(t *testing.T) {
	analyzer := &fakeAnalyzer{summaryErr: domain.ErrEmbeddingProvider}
	store := &fakeStore{}
	svc := New(analyzer, &fakeDocs{id: "42"}, store)

	_, err := svc.Analyze(context.Background(), "DOC-42", "text")
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("err = %v, want provider error", err)
	}
	if store.called != 0 {
		t.Error("upsert ran after provider failure")
	}
}
