// Package db provides safe dynamic SQL composition: an immutable
// (template, parameter list) pair where user values reach the template
// only as positional placeholder references.
package db

import (
	"fmt"
	"strings"
)

// Query is a composed SQL statement. SQL contains only trusted template
// text and $n placeholders; Args holds the bound values in placeholder order.
type Query struct {
	SQL  string
	Args []any
}

// SelectBuilder is a fluent builder for parameterized SELECT statements.
// Values enter exclusively through Bind, which returns the placeholder to
// splice into clause templates. Binding the same value once and reusing its
// placeholder in several sub-clauses is the intended way to dedup parameters.
type SelectBuilder struct {
	columns []string
	from    string
	joins   []string
	conds   []string
	orderBy string
	args    []any
	limit   *int
	offset  *int
}

// NewSelect starts a SELECT over the given column expressions.
func NewSelect(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

// Column appends a column expression.
func (b *SelectBuilder) Column(expr string) *SelectBuilder {
	b.columns = append(b.columns, expr)
	return b
}

// From sets the table clause.
func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.from = table
	return b
}

// LeftJoin appends a LEFT JOIN clause.
func (b *SelectBuilder) LeftJoin(clause string) *SelectBuilder {
	b.joins = append(b.joins, "LEFT JOIN "+clause)
	return b
}

// Bind appends a value to the parameter list and returns its placeholder.
func (b *SelectBuilder) Bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// Where appends a predicate. The condition must reference user values only
// via placeholders obtained from Bind. Conditions are ANDed in call order.
func (b *SelectBuilder) Where(cond string) *SelectBuilder {
	b.conds = append(b.conds, cond)
	return b
}

// OrderBy sets the ordering clause.
func (b *SelectBuilder) OrderBy(clause string) *SelectBuilder {
	b.orderBy = clause
	return b
}

// Limit sets the page size. Bound at Build time so that LIMIT and OFFSET
// are always the last two parameters.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = &n
	return b
}

// Offset sets the row offset.
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = &n
	return b
}

// Build renders the immutable query.
func (b *SelectBuilder) Build() Query {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.from)
	for _, j := range b.joins {
		sb.WriteByte(' ')
		sb.WriteString(j)
	}
	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	args := make([]any, len(b.args), len(b.args)+2)
	copy(args, b.args)
	if b.limit != nil {
		args = append(args, *b.limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if b.offset != nil {
		args = append(args, *b.offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	return Query{SQL: sb.String(), Args: args}
}
