package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUnknownField   = errors.New("unknown filter field")
	ErrInvalidRange   = errors.New("offset and limit must not be negative")
)

// StoreError wraps every failure of the record store.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		err = ErrNotFound
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// Filter is an exact-match predicate on one column.
type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Query selects rows newest first. Limit 0 means no limit; Offset applies
// with or without one.
type Query struct {
	Filters []Filter
	Offset  int
	Limit   int
}

func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

// Range selects rows [offset, offset+limit). A zero limit reads to the end.
func (q Query) Range(offset, limit int) Query {
	q.Offset = offset
	q.Limit = limit
	return q
}

// sqlBuilder numbers placeholders so the same SQL runs on Postgres and SQLite.
type sqlBuilder struct {
	sb   strings.Builder
	args []any
}

func (b *sqlBuilder) write(s string) {
	b.sb.WriteString(s)
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// where appends the filters, rejecting columns outside the whitelist.
func (b *sqlBuilder) where(filters []Filter, columns map[string]bool) error {
	for i, f := range filters {
		if !columns[f.Field] {
			return fmt.Errorf("%w: %q", ErrUnknownField, f.Field)
		}
		if i == 0 {
			b.write(" WHERE ")
		} else {
			b.write(" AND ")
		}
		b.write(f.Field + " = " + b.arg(f.Value))
	}
	return nil
}

// page orders the rows and applies the range. SQLite only accepts OFFSET
// after a LIMIT, so an open-ended range uses the largest bigint.
func (b *sqlBuilder) page(q Query) error {
	if q.Offset < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: offset %d, limit %d", ErrInvalidRange, q.Offset, q.Limit)
	}

	b.write(" ORDER BY created_at DESC, id")
	switch {
	case q.Limit > 0:
		b.write(" LIMIT " + b.arg(q.Limit))
	case q.Offset > 0:
		b.write(" LIMIT " + b.arg(int64(math.MaxInt64)))
	}
	if q.Offset > 0 {
		b.write(" OFFSET " + b.arg(q.Offset))
	}
	return nil
}

func (b *sqlBuilder) String() string {
	return b.sb.String()
}

// isUniqueViolation works for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
