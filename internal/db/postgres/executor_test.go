package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/opendossier/docsearch/internal/domain"
)

func TestIsSimpleRead(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{"plain select", "SELECT id FROM documents", true},
		{"lowercase", "select id from documents", true},
		{"leading whitespace", "  \n\tSELECT 1", true},
		{"select for update", "SELECT id FROM documents FOR UPDATE", false},
		{"lowercase for update", "select id from documents for update", false},
		{"insert", "INSERT INTO api_usage VALUES ($1)", false},
		{"update", "UPDATE documents SET title = $1", false},
		{"delete", "DELETE FROM documents WHERE id = $1", false},
		{"cte is not a simple select", "WITH x AS (SELECT 1) SELECT * FROM x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSimpleRead(tt.sql); got != tt.want {
				t.Errorf("IsSimpleRead(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}

func TestMapAcquireErr(t *testing.T) {
	// An exhausted pool surfaces as a deadline on the acquire context; both
	// execution paths route acquisition through the same mapping.
	err := mapAcquireErr(context.DeadlineExceeded)
	if !errors.Is(err, domain.ErrPoolTimeout) {
		t.Errorf("deadline: err = %v, want ErrPoolTimeout", err)
	}

	err = mapAcquireErr(fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	if !errors.Is(err, domain.ErrPoolTimeout) {
		t.Errorf("wrapped deadline: err = %v, want ErrPoolTimeout", err)
	}

	err = mapAcquireErr(errors.New("connection refused"))
	if errors.Is(err, domain.ErrPoolTimeout) {
		t.Errorf("plain failure mapped to ErrPoolTimeout: %v", err)
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("plain failure: err = %v, want ErrStorage", err)
	}
}
