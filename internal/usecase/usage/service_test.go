package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/opendossier/docsearch/internal/domain"
)

type fakeStore struct {
	rows      []domain.UsageRow
	err       error
	recorded  int
	lastKey   string
	lastCount int64
}

func (f *fakeStore) Record(_ context.Context, apiKey, _ string, documentCount int64) error {
	f.recorded++
	f.lastKey, f.lastCount = apiKey, documentCount
	return f.err
}

func (f *fakeStore) ReportForKey(_ context.Context, _ string) ([]domain.UsageRow, error) {
	return f.rows, f.err
}

func TestRecordAnonymousIsNoOp(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	if err := svc.Record(context.Background(), "", "documents.list", 5); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if store.recorded != 0 {
		t.Error("anonymous usage reached storage")
	}
}

func TestRecordAuthenticated(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	if err := svc.Record(context.Background(), "pk_live_abc", "documents.list", 5); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if store.recorded != 1 || store.lastKey != "pk_live_abc" || store.lastCount != 5 {
		t.Errorf("store = %+v", store)
	}
}

func TestReportRequiresKey(t *testing.T) {
	svc := New(&fakeStore{})

	_, err := svc.Report(context.Background(), "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestReport(t *testing.T) {
	store := &fakeStore{rows: []domain.UsageRow{{Endpoint: "documents.list", RequestCount: 3}}}
	svc := New(store)

	rows, err := svc.Report(context.Background(), "pk_test_x")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(rows) != 1 || rows[0].RequestCount != 3 {
		t.Errorf("rows = %+v", rows)
	}
}
