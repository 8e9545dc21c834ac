package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/opendossier/docsearch/internal/domain"
	domsearch "github.com/opendossier/docsearch/internal/domain/search"
	analysisuc "github.com/opendossier/docsearch/internal/usecase/analysis"
	healthuc "github.com/opendossier/docsearch/internal/usecase/health"
	searchuc "github.com/opendossier/docsearch/internal/usecase/search"
	semanticuc "github.com/opendossier/docsearch/internal/usecase/semantic"
	usageuc "github.com/opendossier/docsearch/internal/usecase/usage"
)

type fakeSearcher struct {
	docs []domain.Document
	page domsearch.Pagination
	err  error
	req  *domsearch.Request
}

func (f *fakeSearcher) Search(_ context.Context, req *domsearch.Request) ([]domain.Document, domsearch.Pagination, error) {
	f.req = req
	return f.docs, f.page, f.err
}

type fakeLimiter struct {
	dec domain.RateDecision
	err error
}

func (f *fakeLimiter) Decide(_ context.Context, _ string) (domain.RateDecision, error) {
	return f.dec, f.err
}

type fakeUsageStore struct {
	rows     []domain.UsageRow
	err      error
	recorded int
}

func (f *fakeUsageStore) Record(_ context.Context, _, _ string, _ int64) error {
	f.recorded++
	return f.err
}

func (f *fakeUsageStore) ReportForKey(_ context.Context, _ string) ([]domain.UsageRow, error) {
	return f.rows, f.err
}

type fakeSemanticRepo struct {
	matches []domain.SemanticMatch
	err     error
}

func (f *fakeSemanticRepo) SemanticSearch(_ context.Context, _ []float32, _ int) ([]domain.SemanticMatch, error) {
	return f.matches, f.err
}

type fakeEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return f.result, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

// fixture bundles the fakes behind a running test server.
type fixture struct {
	searcher *fakeSearcher
	limiter  *fakeLimiter
	usage    *fakeUsageStore
	semRepo  *fakeSemanticRepo
	embedder domain.Embedder
	dbPinger *fakePinger
}

func defaultFixture() *fixture {
	return &fixture{
		searcher: &fakeSearcher{},
		limiter:  &fakeLimiter{dec: domain.RateDecision{Allowed: true, Remaining: 99}},
		usage:    &fakeUsageStore{},
		semRepo:  &fakeSemanticRepo{},
		embedder: &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}},
		dbPinger: &fakePinger{},
	}
}

func newTestServer(t *testing.T, fx *fixture) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	usageSvc := usageuc.New(fx.usage)
	searchSvc := searchuc.New(fx.searcher, fx.limiter, usageSvc, logger)
	semanticSvc := semanticuc.New(fx.semRepo, fx.embedder)
	analysisSvc := analysisuc.New(nil, nil, nil)
	healthSvc := healthuc.New(fx.dbPinger, nil, nil)

	srv := NewServer(searchSvc, semanticSvc, analysisSvc, usageSvc, healthSvc, logger)

	r := gochi.NewRouter()
	r.Use(chimw.RequestID)
	srv.Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

func getJSON(t *testing.T, url, apiKey string) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp, body
}
