package chi

import (
	"net/url"
	"strconv"

	domsearch "github.com/opendossier/docsearch/internal/domain/search"
)

// intQuery parses an integer query parameter. Missing or non-numeric
// values return 0, which the request constructors replace with defaults.
func intQuery(q url.Values, name string) int {
	n, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return 0
	}
	return n
}

func searchRequestFromQuery(q url.Values) (domsearch.Request, error) {
	filters, err := domsearch.ParseFilters(q.Get("filters"))
	if err != nil {
		return domsearch.Request{}, err
	}
	return domsearch.New(q.Get("q"), intQuery(q, "page"), intQuery(q, "limit"), filters)
}

func semanticRequestFromQuery(q url.Values) (domsearch.SemanticRequest, error) {
	return domsearch.NewSemantic(q.Get("q"), intQuery(q, "limit"))
}
