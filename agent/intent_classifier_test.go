package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func intentEquals(a, b IntentRecord) bool {
	if a.Operation != b.Operation || a.ChartType != b.ChartType ||
		a.Aggregation != b.Aggregation || a.NeedsCalculation != b.NeedsCalculation {
		return false
	}
	if len(a.RequestedColumns) != len(b.RequestedColumns) {
		return false
	}
	for i := range a.RequestedColumns {
		if a.RequestedColumns[i] != b.RequestedColumns[i] {
			return false
		}
	}
	return true
}

func TestClassify_ValidResponse(t *testing.T) {
	llm, _ := newMockLLM(`{"intent": "trend", "chart_type": "line", "columns_needed": ["date", "revenue"], "aggregation": "none", "needs_calculation": false}`, nil)
	c := NewIntentClassifier(llm, nil)

	rec := c.Classify(context.Background(), "show revenue trends", nil, testSchema())
	if rec.Operation != OpTrend || rec.ChartType != ChartLine {
		t.Errorf("Unexpected classification: %+v", rec)
	}
	if len(rec.RequestedColumns) != 2 || rec.RequestedColumns[0] != "date" {
		t.Errorf("Unexpected columns: %v", rec.RequestedColumns)
	}
}

func TestClassify_MarkdownFencedResponse(t *testing.T) {
	llm, _ := newMockLLM("```json\n{\"intent\": \"statistics\", \"chart_type\": \"none\", \"columns_needed\": [], \"aggregation\": \"mean\", \"needs_calculation\": true}\n```", nil)
	c := NewIntentClassifier(llm, nil)

	rec := c.Classify(context.Background(), "average revenue", nil, testSchema())
	if rec.Operation != OpStatistics || !rec.NeedsCalculation {
		t.Errorf("Expected statistics with calculation, got %+v", rec)
	}
}

func TestClassify_MixedCaseNormalized(t *testing.T) {
	llm, _ := newMockLLM(`{"intent": "Trend", "chart_type": "LINE", "columns_needed": [], "aggregation": "None", "needs_calculation": false}`, nil)
	c := NewIntentClassifier(llm, nil)

	rec := c.Classify(context.Background(), "trends", nil, testSchema())
	if rec.Operation != OpTrend || rec.ChartType != ChartLine || rec.Aggregation != AggNone {
		t.Errorf("Expected lowercased fields, got %+v", rec)
	}
}

func TestClassify_MalformedResponseFallsBack(t *testing.T) {
	cases := []string{
		"I think you want a summary of the data.",
		`{"intent": "trend"`,
		`{"intent": "conquer_world", "chart_type": "line", "columns_needed": [], "aggregation": "none"}`,
		`{"intent": "trend", "chart_type": "hologram", "columns_needed": [], "aggregation": "none"}`,
		`{"intent": "trend", "chart_type": "line", "columns_needed": [], "aggregation": "mode"}`,
	}
	for _, reply := range cases {
		llm, _ := newMockLLM(reply, nil)
		c := NewIntentClassifier(llm, nil)

		rec := c.Classify(context.Background(), "anything", nil, testSchema())
		if !intentEquals(rec, DefaultIntent()) {
			t.Errorf("Reply %q: expected default intent, got %+v", reply, rec)
		}
	}
}

func TestClassify_ModelErrorFallsBack(t *testing.T) {
	llm, _ := newMockLLM("", errors.New("connection refused"))
	c := NewIntentClassifier(llm, nil)

	rec := c.Classify(context.Background(), "anything", nil, testSchema())
	if !intentEquals(rec, DefaultIntent()) {
		t.Errorf("Expected default intent on model failure, got %+v", rec)
	}
}

func TestClassify_PromptIncludesSchemaAndHistory(t *testing.T) {
	llm, mock := newMockLLM(`{"intent": "summary", "chart_type": "none", "columns_needed": [], "aggregation": "none"}`, nil)
	c := NewIntentClassifier(llm, nil)

	history := []Exchange{
		{Query: "first question", ResponseExcerpt: "first answer"},
		{Query: "second question", ResponseExcerpt: "second answer"},
		{Query: "third question", ResponseExcerpt: "third answer"},
	}
	c.Classify(context.Background(), "what now", history, testSchema())

	if len(mock.LastInput) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(mock.LastInput))
	}
	prompt := mock.LastInput[1].Content
	if !strings.Contains(prompt, "revenue") || !strings.Contains(prompt, "region") {
		t.Error("Prompt should carry schema column names")
	}
	// Only the last two exchanges are included.
	if strings.Contains(prompt, "first question") {
		t.Error("Prompt should not include exchanges beyond the last two")
	}
	if !strings.Contains(prompt, "second question") || !strings.Contains(prompt, "third question") {
		t.Error("Prompt should include the last two exchanges")
	}
	if !strings.Contains(prompt, "what now") {
		t.Error("Prompt should include the current query")
	}
}

func TestClassify_NilColumnsBecomeEmptySlice(t *testing.T) {
	llm, _ := newMockLLM(`{"intent": "summary", "chart_type": "none", "aggregation": "none"}`, nil)
	c := NewIntentClassifier(llm, nil)

	rec := c.Classify(context.Background(), "overview", nil, testSchema())
	if rec.RequestedColumns == nil {
		t.Error("RequestedColumns should never be nil")
	}
}
