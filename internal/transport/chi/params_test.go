package chi

import (
	"errors"
	"net/url"
	"testing"

	"github.com/opendossier/docsearch/internal/domain"
)

func TestIntQuery(t *testing.T) {
	q := url.Values{"page": {"3"}, "limit": {"abc"}}

	if got := intQuery(q, "page"); got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
	if got := intQuery(q, "limit"); got != 0 {
		t.Errorf("non-numeric limit = %d, want 0", got)
	}
	if got := intQuery(q, "missing"); got != 0 {
		t.Errorf("missing param = %d, want 0", got)
	}
}

func TestSearchRequestFromQuery(t *testing.T) {
	q := url.Values{
		"q":       {"pension"},
		"page":    {"2"},
		"limit":   {"50"},
		"filters": {`{"documentType":"ruling"}`},
	}

	req, err := searchRequestFromQuery(q)
	if err != nil {
		t.Fatalf("searchRequestFromQuery: %v", err)
	}
	if req.Query() != "pension" || req.Page() != 2 || req.Limit() != 50 {
		t.Errorf("request = q=%q page=%d limit=%d", req.Query(), req.Page(), req.Limit())
	}
	if req.Filters().DocumentType != "ruling" {
		t.Errorf("filters = %+v", req.Filters())
	}
}

func TestSearchRequestFromQueryBadFilters(t *testing.T) {
	q := url.Values{"filters": {"not json"}}

	_, err := searchRequestFromQuery(q)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
