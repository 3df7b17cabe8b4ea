package agent

import (
	"context"
	"fmt"
	"strings"

	"divedata/dataset"
)

// ResponseComposer assembles the final payload: it delegates prose
// generation to the language service, grounding it in the dataset shape, a
// bounded statistics digest and a sampled excerpt, and returns the chart
// specification untouched alongside the text.
type ResponseComposer struct {
	llm    *LLMService
	logger func(string)
}

// NewResponseComposer creates a new response composer
func NewResponseComposer(llm *LLMService, logFunc func(string)) *ResponseComposer {
	return &ResponseComposer{
		llm:    llm,
		logger: logFunc,
	}
}

func (rc *ResponseComposer) log(msg string) {
	if rc.logger != nil {
		rc.logger(msg)
	}
}

// QueryResult is the single structured result of one query.
type QueryResult struct {
	Text  string     `json:"text"`
	Chart *ChartSpec `json:"chart,omitempty"`
}

// Compose generates the prose for one query. A language-service failure here
// is surfaced to the caller; prose has no safe default.
func (rc *ResponseComposer) Compose(ctx context.Context, query string, spec *ChartSpec, ds *dataset.Dataset,
	schema *dataset.SchemaSummary, numStats map[string]dataset.NumericStats,
	catStats map[string]dataset.CategoricalStats) (*QueryResult, error) {

	sample, err := ds.SampleCSV(30)
	if err != nil {
		rc.log(fmt.Sprintf("[COMPOSER] Sampling failed, continuing without excerpt: %v", err))
		sample = ""
	}

	systemPrompt := rc.buildSystemPrompt(spec != nil, ds, schema, numStats, catStats, sample)

	text, err := rc.llm.Generate(ctx, systemPrompt, query, 400, 0.7)
	if err != nil {
		return nil, err
	}

	return &QueryResult{Text: text, Chart: spec}, nil
}

// buildSystemPrompt grounds the generation in precomputed statistics so the
// model never has to invent numbers. The digest is capped to the first five
// columns of each kind to bound prompt size.
func (rc *ResponseComposer) buildSystemPrompt(hasChart bool, ds *dataset.Dataset, schema *dataset.SchemaSummary,
	numStats map[string]dataset.NumericStats, catStats map[string]dataset.CategoricalStats, sample string) string {

	var numDigest strings.Builder
	for _, col := range firstN(schema.NumericColumns, 5) {
		st := numStats[col]
		numDigest.WriteString(fmt.Sprintf("%s: {mean: %.2f, min: %.2f, max: %.2f, missing: %d} ",
			col, st.Mean, st.Min, st.Max, st.Missing))
	}

	var catDigest strings.Builder
	for _, col := range firstN(schema.CategoricalColumns, 5) {
		st := catStats[col]
		top := st.TopValue
		if top == "" {
			top = "N/A"
		}
		catDigest.WriteString(fmt.Sprintf("%s: {unique: %d, top: %s, missing: %d} ",
			col, st.UniqueCount, top, st.Missing))
	}

	chartDirective := "No chart generated, provide a detailed answer"
	if hasChart {
		chartDirective = "A chart has been generated, so keep your text brief and explain what the chart shows"
	}

	return fmt.Sprintf(`You are a friendly data analyst. Answer the user's question naturally and conversationally.

Dataset Overview:
- Shape: %d rows x %d columns
- Numeric stats: %s
- Categorical stats: %s

Rules:
1. Be conversational and natural - vary your responses
2. Don't repeat the same format every time
3. %s
4. If user asks for specific calculations, do them using the stats provided
5. Be helpful and suggest related things they might want to explore
6. Keep it under 8 lines unless specifically asked for detail
7. Never state numbers that are not grounded in the stats above

Sample data for reference:
%s`, ds.RowCount, len(ds.Columns), numDigest.String(), catDigest.String(), chartDirective, truncateString(sample, 1000))
}
