package store

import (
	"fmt"
	"strings"
)

// Paging limits applied by ListOptions.Normalize.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Sort orders a listing by one field.
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort reads a sort expression such as "created_at" or "-created_at"
// (descending). An empty expression yields the zero Sort.
func ParseSort(expr string) Sort {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "-") {
		return Sort{Field: strings.TrimPrefix(expr, "-"), Desc: true}
	}
	return Sort{Field: strings.TrimPrefix(expr, "+")}
}

func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// OrderBy renders s as an ORDER BY clause body. Only fields listed in
// allowed are accepted, which keeps user input out of the SQL text.
func (s Sort) OrderBy(allowed map[string]string) (string, error) {
	column, ok := allowed[s.Field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s.Field)
	}
	if s.Desc {
		return column + " DESC", nil
	}
	return column + " ASC", nil
}

// ListOptions pages and orders a listing.
type ListOptions struct {
	Limit  int
	Offset int
	Sort   Sort
}

// Normalize fills in defaults: a zero limit becomes DefaultListLimit, larger
// limits are capped at MaxListLimit, negative offsets become zero and an
// empty sort becomes def.
func (o ListOptions) Normalize(def Sort) ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Sort.Field == "" {
		o.Sort = def
	}
	return o
}
