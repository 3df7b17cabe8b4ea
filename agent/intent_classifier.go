package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"divedata/dataset"
)

// Operation kinds an intent can carry.
const (
	OpSummary          = "summary"
	OpStatistics       = "statistics"
	OpComparison       = "comparison"
	OpTrend            = "trend"
	OpCorrelation      = "correlation"
	OpDistribution     = "distribution"
	OpSpecificQuestion = "specific_question"
)

// Chart kinds an intent can request.
const (
	ChartNone      = "none"
	ChartLine      = "line"
	ChartBar       = "bar"
	ChartScatter   = "scatter"
	ChartPie       = "pie"
	ChartHistogram = "histogram"
	ChartBox       = "box"
)

// Aggregation verbs.
const (
	AggMean  = "mean"
	AggSum   = "sum"
	AggCount = "count"
	AggNone  = "none"
)

// IntentRecord is the structured classification of one query. Created fresh
// per query, never mutated after creation.
type IntentRecord struct {
	Operation        string   `json:"intent"`
	ChartType        string   `json:"chart_type"`
	RequestedColumns []string `json:"columns_needed"`
	Aggregation      string   `json:"aggregation"`
	NeedsCalculation bool     `json:"needs_calculation"`
}

// DefaultIntent is the fixed record used whenever classification cannot
// produce a valid one.
func DefaultIntent() IntentRecord {
	return IntentRecord{
		Operation:        OpSummary,
		ChartType:        ChartNone,
		RequestedColumns: []string{},
		Aggregation:      AggNone,
		NeedsCalculation: false,
	}
}

var validOperations = map[string]bool{
	OpSummary: true, OpStatistics: true, OpComparison: true, OpTrend: true,
	OpCorrelation: true, OpDistribution: true, OpSpecificQuestion: true,
}

var validChartTypes = map[string]bool{
	ChartNone: true, ChartLine: true, ChartBar: true, ChartScatter: true,
	ChartPie: true, ChartHistogram: true, ChartBox: true,
}

var validAggregations = map[string]bool{
	AggMean: true, AggSum: true, AggCount: true, AggNone: true,
}

const intentSystemPrompt = `You are a smart query analyzer. Analyze the user's query and return a JSON with:
{
  "intent": "summary/statistics/comparison/trend/correlation/distribution/specific_question",
  "chart_type": "none/line/bar/scatter/pie/histogram/box",
  "columns_needed": ["col1", "col2"],
  "aggregation": "mean/sum/count/none",
  "needs_calculation": true/false
}

Examples:
- "what's in this data" -> intent: summary, chart_type: none
- "show sales trends" -> intent: trend, chart_type: line, columns_needed: [date_col, sales_col]
- "compare prices by category" -> intent: comparison, chart_type: bar
- "average salary" -> intent: statistics, needs_calculation: true
- "plot age vs income" -> intent: correlation, chart_type: scatter, columns_needed: [age, income]

Be smart and infer column names from user query even if not exact.`

// IntentClassifier maps a free-text query plus short conversation context to
// an IntentRecord. Any failure of the language service or of parsing its
// output falls back to the fixed default; classification never propagates an
// error upward.
type IntentClassifier struct {
	llm    *LLMService
	logger func(string)
}

// NewIntentClassifier creates a new intent classifier
func NewIntentClassifier(llm *LLMService, logFunc func(string)) *IntentClassifier {
	return &IntentClassifier{
		llm:    llm,
		logger: logFunc,
	}
}

func (c *IntentClassifier) log(msg string) {
	if c.logger != nil {
		c.logger(msg)
	}
}

// Classify resolves the intent of one query. Column-name inference is best
// effort; exact resolution is deferred to the column resolver.
func (c *IntentClassifier) Classify(ctx context.Context, query string, history []Exchange, schema *dataset.SchemaSummary) IntentRecord {
	prompt := c.buildPrompt(query, history, schema)

	content, err := c.llm.Generate(ctx, intentSystemPrompt, prompt, 300, 0.3)
	if err != nil {
		c.log(fmt.Sprintf("[INTENT] Classification call failed: %v, using default", err))
		return DefaultIntent()
	}

	var rec IntentRecord
	if err := json.Unmarshal([]byte(extractJSON(content)), &rec); err != nil {
		c.log(fmt.Sprintf("[INTENT] Failed to parse response: %v, using default", err))
		return DefaultIntent()
	}

	rec.Operation = strings.ToLower(strings.TrimSpace(rec.Operation))
	rec.ChartType = strings.ToLower(strings.TrimSpace(rec.ChartType))
	rec.Aggregation = strings.ToLower(strings.TrimSpace(rec.Aggregation))
	if rec.RequestedColumns == nil {
		rec.RequestedColumns = []string{}
	}

	if !validOperations[rec.Operation] || !validChartTypes[rec.ChartType] || !validAggregations[rec.Aggregation] {
		c.log(fmt.Sprintf("[INTENT] Response outside contract (intent=%q chart=%q agg=%q), using default",
			rec.Operation, rec.ChartType, rec.Aggregation))
		return DefaultIntent()
	}

	c.log(fmt.Sprintf("[INTENT] Classified: intent=%s chart=%s columns=%v agg=%s calc=%v",
		rec.Operation, rec.ChartType, rec.RequestedColumns, rec.Aggregation, rec.NeedsCalculation))
	return rec
}

// buildPrompt composes the dataset shape summary, the last two exchanges,
// and the raw query.
func (c *IntentClassifier) buildPrompt(query string, history []Exchange, schema *dataset.SchemaSummary) string {
	var sb strings.Builder

	sb.WriteString("Dataset Info:\n")
	sb.WriteString(fmt.Sprintf("- Total rows: %d\n", schema.RowCount))
	sb.WriteString(fmt.Sprintf("- Numeric columns: %s\n", strings.Join(firstN(schema.NumericColumns, 10), ", ")))
	sb.WriteString(fmt.Sprintf("- Categorical columns: %s\n", strings.Join(firstN(schema.CategoricalColumns, 10), ", ")))
	sb.WriteString(fmt.Sprintf("- Date columns: %s\n", strings.Join(firstN(schema.DateColumns, 5), ", ")))

	sb.WriteString("\nRecent context:\n")
	start := 0
	if len(history) > 2 {
		start = len(history) - 2
	}
	for _, ex := range history[start:] {
		sb.WriteString("User: ")
		sb.WriteString(ex.Query)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(ex.ResponseExcerpt)
		sb.WriteString("\n")
	}

	sb.WriteString("\nUser query: ")
	sb.WriteString(query)
	return sb.String()
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
