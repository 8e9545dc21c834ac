// Package search holds validated search requests and pagination math.
package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opendossier/docsearch/internal/domain"
)

// Parameter limits.
const (
	DefaultPage          = 1
	DefaultLimit         = 20
	MaxLimit             = 100
	DefaultSemanticLimit = 10
	MaxSemanticLimit     = 50
	MaxQueryLength       = 4096
)

// Filters are the optional structured constraints of a keyword search.
type Filters struct {
	DocumentType string `json:"documentType"`
	DateFrom     string `json:"dateFrom"`
}

// ParseFilters decodes the serialized filters parameter. An empty string
// means no filters. Anything that is not a JSON object fails with
// domain.ErrValidation rather than silently defaulting: a bare null
// unmarshals into the struct without error and must not pass.
func ParseFilters(raw string) (Filters, error) {
	if raw == "" {
		return Filters{}, nil
	}
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return Filters{}, fmt.Errorf("bad filters: %w", domain.ErrValidation)
	}
	var f Filters
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Filters{}, fmt.Errorf("bad filters: %w", domain.ErrValidation)
	}
	return f, nil
}

// Request is a validated keyword search request.
type Request struct {
	query   string
	page    int
	limit   int
	filters Filters
}

// New validates and normalizes keyword search parameters.
// page defaults to 1 and clamps to >=1; limit defaults to 20 and clamps
// into [1,100]. An empty query means no text predicate.
func New(query string, page, limit int, filters Filters) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrValidation)
	}
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: query, page: page, limit: limit, filters: filters}, nil
}

// Query returns the free-text query ("" = none).
func (r *Request) Query() string { return r.query }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Limit returns the effective page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns (page-1)*limit.
func (r *Request) Offset() int { return (r.page - 1) * r.limit }

// Filters returns the structured constraints.
func (r *Request) Filters() Filters { return r.filters }

// SemanticRequest is a validated vector search request.
type SemanticRequest struct {
	query string
	limit int
}

// NewSemantic validates vector search parameters. The query is mandatory;
// limit defaults to 10 and clamps into [1,50].
func NewSemantic(query string, limit int) (SemanticRequest, error) {
	if query == "" {
		return SemanticRequest{}, fmt.Errorf("q is required: %w", domain.ErrValidation)
	}
	if len(query) > MaxQueryLength {
		return SemanticRequest{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrValidation)
	}
	if limit <= 0 {
		limit = DefaultSemanticLimit
	}
	if limit > MaxSemanticLimit {
		limit = MaxSemanticLimit
	}
	return SemanticRequest{query: query, limit: limit}, nil
}

// Query returns the free-text query.
func (r *SemanticRequest) Query() string { return r.query }

// Limit returns the effective result count.
func (r *SemanticRequest) Limit() int { return r.limit }
