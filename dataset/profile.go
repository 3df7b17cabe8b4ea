package dataset

import (
	"fmt"
	"time"
)

// SchemaSummary classifies the dataset's columns by kind. Every column
// appears in at most one of the three lists; a column with no usable values
// appears in none of them.
type SchemaSummary struct {
	AllColumns         []string `json:"all_columns"`
	NumericColumns     []string `json:"numeric_columns"`
	CategoricalColumns []string `json:"categorical_columns"`
	DateColumns        []string `json:"date_columns"`
	RowCount           int      `json:"row_count"`
}

// dateLayouts are the permissive layouts a value may use for its column to
// qualify as a date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
}

// ParseDate attempts to parse a value under the permissive date rule.
func ParseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Profile inspects every column once and classifies it. Date detection runs
// first and takes precedence; otherwise the staged column type decides
// numeric vs categorical. Runs once per dataset load; the caller caches the
// result for the dataset's lifetime.
func Profile(d *Dataset) (*SchemaSummary, error) {
	summary := &SchemaSummary{
		AllColumns: append([]string(nil), d.Columns...),
		RowCount:   d.RowCount,
	}

	for _, col := range d.Columns {
		values, err := d.StringValues(col)
		if err != nil {
			return nil, fmt.Errorf("failed to read column %s: %v", col, err)
		}
		if len(values) == 0 {
			// All-null column: unclassified, not an error.
			continue
		}

		if allDates(values) {
			summary.DateColumns = append(summary.DateColumns, col)
			continue
		}

		switch d.ColTypes[col] {
		case "INTEGER", "REAL":
			summary.NumericColumns = append(summary.NumericColumns, col)
		default:
			summary.CategoricalColumns = append(summary.CategoricalColumns, col)
		}
	}

	return summary, nil
}

func allDates(values []string) bool {
	for _, v := range values {
		if _, ok := ParseDate(v); !ok {
			return false
		}
	}
	return true
}
