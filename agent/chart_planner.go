package agent

import (
	"fmt"
	"sort"
	"strconv"

	"divedata/dataset"
)

// ChartSpec describes a chart for the rendering collaborator: the chart
// type, the resolved columns, the aggregation, and the deterministically
// computed series. Ephemeral, per-query.
type ChartSpec struct {
	Type        string    `json:"type"`
	XColumn     string    `json:"x_column,omitempty"`
	YColumn     string    `json:"y_column,omitempty"`
	Aggregation string    `json:"aggregation,omitempty"`
	Title       string    `json:"title"`
	Labels      []string  `json:"labels,omitempty"`
	XValues     []float64 `json:"x_values,omitempty"`
	YValues     []float64 `json:"y_values,omitempty"`
	Values      []float64 `json:"values,omitempty"`
}

// ChartPlanner turns a resolved intent into a chart specification, or
// reports that no chart can be built. Charting is strictly best effort:
// every failure inside planning is absorbed and converted to "no chart".
type ChartPlanner struct {
	ds       *dataset.Dataset
	schema   *dataset.SchemaSummary
	resolver *ColumnResolver
	logger   func(string)
}

// NewChartPlanner creates a new chart planner
func NewChartPlanner(ds *dataset.Dataset, schema *dataset.SchemaSummary, resolver *ColumnResolver, logFunc func(string)) *ChartPlanner {
	return &ChartPlanner{
		ds:       ds,
		schema:   schema,
		resolver: resolver,
		logger:   logFunc,
	}
}

func (p *ChartPlanner) log(msg string) {
	if p.logger != nil {
		p.logger(msg)
	}
}

// Plan dispatches on the intent's chart type. It returns nil when no chart
// should or can be produced; it never returns an error and never panics out.
func (p *ChartPlanner) Plan(intent IntentRecord) (spec *ChartSpec) {
	defer func() {
		if r := recover(); r != nil {
			p.log(fmt.Sprintf("[PLANNER] Recovered during planning: %v", r))
			spec = nil
		}
	}()

	if intent.ChartType == ChartNone {
		return nil
	}

	var err error
	switch intent.ChartType {
	case ChartLine:
		spec, err = p.planLine(intent)
	case ChartBar:
		spec, err = p.planBar(intent)
	case ChartScatter:
		spec, err = p.planScatter(intent)
	case ChartPie:
		spec, err = p.planPie(intent)
	case ChartHistogram:
		spec, err = p.planHistogram(intent)
	case ChartBox:
		spec, err = p.planBox(intent)
	default:
		return nil
	}

	if err != nil {
		p.log(fmt.Sprintf("[PLANNER] %s chart not plannable: %v", intent.ChartType, err))
		return nil
	}
	return spec
}

// planLine resolves a (x, y) pair preferring a date column for the x axis
// and emits the series sorted by x.
func (p *ChartPlanner) planLine(intent IntentRecord) (*ChartSpec, error) {
	xCol, yCol, ok := p.resolver.ResolvePair(intent.RequestedColumns, p.schema, true)
	if !ok {
		return nil, fmt.Errorf("could not resolve two columns from %v", intent.RequestedColumns)
	}

	pairs, err := p.ds.Pairs(xCol, yCol)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no rows with both %s and %s", xCol, yCol)
	}

	sortPairsByX(pairs, p.isDateColumn(xCol))

	spec := &ChartSpec{
		Type:    ChartLine,
		XColumn: xCol,
		YColumn: yCol,
		Title:   fmt.Sprintf("%s over %s", yCol, xCol),
	}
	for _, pair := range pairs {
		y, err := strconv.ParseFloat(pair.Y, 64)
		if err != nil {
			continue
		}
		spec.Labels = append(spec.Labels, pair.X)
		spec.YValues = append(spec.YValues, y)
	}
	if len(spec.YValues) == 0 {
		return nil, fmt.Errorf("column %s has no numeric values", yCol)
	}
	return spec, nil
}

// planBar picks (x, y) from the requested columns with schema fallbacks and
// aggregates y per x group.
func (p *ChartPlanner) planBar(intent IntentRecord) (*ChartSpec, error) {
	var xCol, yCol string
	switch {
	case len(intent.RequestedColumns) >= 2:
		xCol, yCol = intent.RequestedColumns[0], intent.RequestedColumns[1]
	case len(intent.RequestedColumns) == 1:
		xCol = intent.RequestedColumns[0]
		if len(p.schema.NumericColumns) == 0 {
			return nil, fmt.Errorf("no numeric column available for the y axis")
		}
		yCol = p.schema.NumericColumns[0]
	default:
		if len(p.schema.CategoricalColumns) == 0 || len(p.schema.NumericColumns) == 0 {
			return nil, fmt.Errorf("no (categorical, numeric) column pair available")
		}
		xCol = p.schema.CategoricalColumns[0]
		yCol = p.schema.NumericColumns[0]
	}

	agg := intent.Aggregation
	if agg != AggMean && agg != AggSum && agg != AggCount {
		agg = AggMean
	}

	pairs, err := p.ds.Pairs(xCol, yCol)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no rows with both %s and %s", xCol, yCol)
	}

	// Group by x in first-encountered order.
	type group struct {
		sum   float64
		count int
	}
	groups := make(map[string]*group)
	var order []string
	for _, pair := range pairs {
		g, exists := groups[pair.X]
		if !exists {
			g = &group{}
			groups[pair.X] = g
			order = append(order, pair.X)
		}
		if agg == AggCount {
			g.count++
			continue
		}
		y, err := strconv.ParseFloat(pair.Y, 64)
		if err != nil {
			continue
		}
		g.sum += y
		g.count++
	}

	spec := &ChartSpec{
		Type:        ChartBar,
		XColumn:     xCol,
		YColumn:     yCol,
		Aggregation: agg,
		Title:       fmt.Sprintf("%s by %s", yCol, xCol),
	}
	for _, x := range order {
		g := groups[x]
		if g.count == 0 {
			continue
		}
		var v float64
		switch agg {
		case AggSum:
			v = g.sum
		case AggCount:
			v = float64(g.count)
		default:
			v = g.sum / float64(g.count)
		}
		spec.Labels = append(spec.Labels, x)
		spec.Values = append(spec.Values, v)
	}
	if len(spec.Values) == 0 {
		return nil, fmt.Errorf("no aggregatable values in %s", yCol)
	}
	return spec, nil
}

// planScatter requires two requested columns used directly, no fallback.
func (p *ChartPlanner) planScatter(intent IntentRecord) (*ChartSpec, error) {
	if len(intent.RequestedColumns) < 2 {
		return nil, fmt.Errorf("scatter requires two requested columns")
	}
	xCol, yCol := intent.RequestedColumns[0], intent.RequestedColumns[1]

	pairs, err := p.ds.Pairs(xCol, yCol)
	if err != nil {
		return nil, err
	}

	spec := &ChartSpec{
		Type:    ChartScatter,
		XColumn: xCol,
		YColumn: yCol,
		Title:   fmt.Sprintf("%s vs %s", xCol, yCol),
	}
	for _, pair := range pairs {
		x, errX := strconv.ParseFloat(pair.X, 64)
		y, errY := strconv.ParseFloat(pair.Y, 64)
		if errX != nil || errY != nil {
			continue
		}
		spec.XValues = append(spec.XValues, x)
		spec.YValues = append(spec.YValues, y)
	}
	if len(spec.XValues) == 0 {
		return nil, fmt.Errorf("no numeric (x, y) observations for %s vs %s", xCol, yCol)
	}
	return spec, nil
}

// planPie computes value counts of the chosen column, keeping the top 10
// categories by frequency. Ties are broken by first-encountered order.
func (p *ChartPlanner) planPie(intent IntentRecord) (*ChartSpec, error) {
	var col string
	if len(intent.RequestedColumns) > 0 {
		col = intent.RequestedColumns[0]
	} else if len(p.schema.CategoricalColumns) > 0 {
		col = p.schema.CategoricalColumns[0]
	} else {
		return nil, fmt.Errorf("no categorical column available")
	}

	values, err := p.ds.StringValues(col)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("column %s has no values", col)
	}

	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	// Stable sort keeps first-encountered order among equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 10 {
		order = order[:10]
	}

	spec := &ChartSpec{
		Type:    ChartPie,
		XColumn: col,
		Title:   fmt.Sprintf("Distribution of %s", col),
	}
	for _, v := range order {
		spec.Labels = append(spec.Labels, v)
		spec.Values = append(spec.Values, float64(counts[v]))
	}
	return spec, nil
}

// planHistogram uses the first requested column or else the first numeric
// column; the renderer owns the binning.
func (p *ChartPlanner) planHistogram(intent IntentRecord) (*ChartSpec, error) {
	col, err := p.singleColumn(intent)
	if err != nil {
		return nil, err
	}
	values, err := p.ds.FloatValues(col)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("column %s has no numeric values", col)
	}
	return &ChartSpec{
		Type:    ChartHistogram,
		XColumn: col,
		Title:   fmt.Sprintf("Distribution of %s", col),
		Values:  values,
	}, nil
}

// planBox uses the same column choice as histogram.
func (p *ChartPlanner) planBox(intent IntentRecord) (*ChartSpec, error) {
	col, err := p.singleColumn(intent)
	if err != nil {
		return nil, err
	}
	values, err := p.ds.FloatValues(col)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("column %s has no numeric values", col)
	}
	return &ChartSpec{
		Type:    ChartBox,
		YColumn: col,
		Title:   fmt.Sprintf("Box Plot of %s", col),
		Values:  values,
	}, nil
}

func (p *ChartPlanner) singleColumn(intent IntentRecord) (string, error) {
	if len(intent.RequestedColumns) > 0 {
		return intent.RequestedColumns[0], nil
	}
	if len(p.schema.NumericColumns) > 0 {
		return p.schema.NumericColumns[0], nil
	}
	return "", fmt.Errorf("no numeric column available")
}

func (p *ChartPlanner) isDateColumn(col string) bool {
	for _, c := range p.schema.DateColumns {
		if c == col {
			return true
		}
	}
	return false
}

// sortPairsByX orders observations by their x value: chronologically for
// date columns, numerically when both values parse as numbers, otherwise
// lexically.
func sortPairsByX(pairs []dataset.Pair, isDate bool) {
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i].X, pairs[j].X
		if isDate {
			ta, okA := dataset.ParseDate(a)
			tb, okB := dataset.ParseDate(b)
			if okA && okB {
				return ta.Before(tb)
			}
		}
		fa, errA := strconv.ParseFloat(a, 64)
		fb, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return fa < fb
		}
		return a < b
	})
}
