// Package querybuilder assembles the handful of Postgres statements the
// snapshot repositories need: filtered single-row selects and tagged-struct
// inserts with an optional upsert suffix. It is deliberately not a general
// SQL builder.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition renders one WHERE predicate, appending its bind arguments.
type Condition func(buf *strings.Builder, args *[]any)

// Eq matches column = value with a positional placeholder.
func Eq(column string, value any) Condition {
	return func(buf *strings.Builder, args *[]any) {
		*args = append(*args, value)
		buf.WriteString(column)
		buf.WriteString(" = ")
		buf.WriteString(placeholder(len(*args)))
	}
}

// IsNull matches column IS NULL.
func IsNull(column string) Condition {
	return func(buf *strings.Builder, _ *[]any) {
		buf.WriteString(column)
		buf.WriteString(" IS NULL")
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)

	args := make([]any, 0, len(b.where))
	for i, cond := range b.where {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		cond(&buf, &args)
	}
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}

	return buf.String(), args, nil
}

// insert renders INSERT INTO table (cols) VALUES ($1..$n), followed by the
// verbatim suffix (an ON CONFLICT clause in practice).
func insert(table string, columns []string, values []any, suffix string) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(values) != len(columns) {
		return "", nil, fmt.Errorf("insert has %d values for %d columns", len(values), len(columns))
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(columns, ", "))
	buf.WriteString(") VALUES (")
	for i := range values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(placeholder(i + 1))
	}
	buf.WriteString(")")

	if suffix = strings.TrimSpace(suffix); suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(suffix)
	}

	return buf.String(), values, nil
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}
