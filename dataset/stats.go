package dataset

import (
	"math"
	"sort"
)

// NumericStats holds per-column descriptive statistics for a numeric column.
type NumericStats struct {
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Mode    float64 `json:"mode"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Missing int     `json:"missing"`
}

// CategoricalStats holds per-column descriptive statistics for a
// categorical column.
type CategoricalStats struct {
	UniqueCount int    `json:"unique"`
	TopValue    string `json:"top"`
	Missing     int    `json:"missing"`
}

// NumericSummary computes statistics for every numeric column of the schema.
// Pure function of (dataset, schema).
func NumericSummary(d *Dataset, schema *SchemaSummary) (map[string]NumericStats, error) {
	out := make(map[string]NumericStats, len(schema.NumericColumns))
	for _, col := range schema.NumericColumns {
		values, err := d.FloatValues(col)
		if err != nil {
			return nil, err
		}
		missing, err := d.MissingCount(col)
		if err != nil {
			return nil, err
		}
		out[col] = describeNumeric(values, missing)
	}
	return out, nil
}

// CategoricalSummary computes statistics for every categorical column of the
// schema.
func CategoricalSummary(d *Dataset, schema *SchemaSummary) (map[string]CategoricalStats, error) {
	out := make(map[string]CategoricalStats, len(schema.CategoricalColumns))
	for _, col := range schema.CategoricalColumns {
		values, err := d.StringValues(col)
		if err != nil {
			return nil, err
		}
		missing, err := d.MissingCount(col)
		if err != nil {
			return nil, err
		}
		out[col] = describeCategorical(values, missing)
	}
	return out, nil
}

func describeNumeric(values []float64, missing int) NumericStats {
	st := NumericStats{Missing: missing}
	n := len(values)
	if n == 0 {
		return st
	}

	sum := 0.0
	st.Min = values[0]
	st.Max = values[0]
	for _, v := range values {
		sum += v
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
	}
	st.Mean = sum / float64(n)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		st.Median = sorted[n/2]
	} else {
		st.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	// Mode: most frequent value, ties resolved by first occurrence.
	counts := make(map[float64]int, n)
	best := values[0]
	bestCount := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	st.Mode = best

	// Sample standard deviation.
	if n > 1 {
		ss := 0.0
		for _, v := range values {
			diff := v - st.Mean
			ss += diff * diff
		}
		st.Std = math.Sqrt(ss / float64(n-1))
	}

	return st
}

func describeCategorical(values []string, missing int) CategoricalStats {
	st := CategoricalStats{Missing: missing}
	if len(values) == 0 {
		st.TopValue = "N/A"
		return st
	}

	counts := make(map[string]int, len(values))
	best := ""
	bestCount := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	st.UniqueCount = len(counts)
	st.TopValue = best
	return st
}
