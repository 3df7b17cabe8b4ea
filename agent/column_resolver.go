package agent

import (
	"fmt"
	"strings"

	"divedata/dataset"
)

// ColumnResolver maps raw, possibly misspelled column mentions onto actual
// schema columns using a fixed deterministic policy: exact match, then
// substring match, then type fallback. The pair contract is all-or-nothing:
// the caller gets both axis candidates or neither.
type ColumnResolver struct {
	logger func(string)
}

// NewColumnResolver creates a new column resolver
func NewColumnResolver(logFunc func(string)) *ColumnResolver {
	return &ColumnResolver{logger: logFunc}
}

func (r *ColumnResolver) log(msg string) {
	if r.logger != nil {
		r.logger(msg)
	}
}

// ResolvePair resolves up to the first two mentions against the schema and
// returns the best two axis candidates in mention order. If fewer than two
// columns resolve, it returns ("", "", false).
func (r *ColumnResolver) ResolvePair(requested []string, schema *dataset.SchemaSummary, preferDate bool) (string, string, bool) {
	var matched []string

	limit := len(requested)
	if limit > 2 {
		limit = 2
	}
	for _, mention := range requested[:limit] {
		if col, ok := r.resolveOne(mention, schema, preferDate); ok {
			matched = append(matched, col)
		}
	}

	if len(matched) != 2 {
		r.log(fmt.Sprintf("[RESOLVER] Resolved %d of 2 columns for %v, discarding", len(matched), requested))
		return "", "", false
	}

	r.log(fmt.Sprintf("[RESOLVER] %v -> (%s, %s)", requested, matched[0], matched[1]))
	return matched[0], matched[1], true
}

// resolveOne applies the three-step matching policy to a single mention.
func (r *ColumnResolver) resolveOne(mention string, schema *dataset.SchemaSummary, preferDate bool) (string, bool) {
	reqLower := strings.ToLower(mention)

	// Exact match, case-insensitive.
	for _, col := range schema.AllColumns {
		if strings.ToLower(col) == reqLower {
			return col, true
		}
	}

	// Substring match in either direction; first column in schema order wins.
	for _, col := range schema.AllColumns {
		colLower := strings.ToLower(col)
		if strings.Contains(colLower, reqLower) || strings.Contains(reqLower, colLower) {
			return col, true
		}
	}

	// Type fallback.
	if preferDate && len(schema.DateColumns) > 0 {
		return schema.DateColumns[0], true
	}
	if len(schema.NumericColumns) > 0 {
		return schema.NumericColumns[0], true
	}

	return "", false
}
