package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseReportIntent(t *testing.T) {
	cases := []struct {
		raw  string
		want ReportIntent
	}{
		{"only summarize", ReportSummarize},
		{"only eda", ReportEDA},
		{"eda and summarize", ReportBoth},
		{"  Only EDA  ", ReportEDA},
		{`The category is "eda and summarize".`, ReportBoth},
		{"I would say: only summarize", ReportSummarize},
		{"something unrelated", ReportBoth},
		{"", ReportBoth},
	}
	for _, c := range cases {
		if got := ParseReportIntent(c.raw); got != c.want {
			t.Errorf("ParseReportIntent(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestClarifierClassify(t *testing.T) {
	llm, mock := newMockLLM("only eda", nil)
	c := NewClarifier(llm, nil)

	got := c.Classify(context.Background(), "explore the data", []Exchange{{Query: "hi", ResponseExcerpt: "hello"}})
	if got != ReportEDA {
		t.Errorf("Expected only eda, got %q", got)
	}

	prompt := mock.LastInput[1].Content
	if !strings.Contains(prompt, "explore the data") {
		t.Error("Prompt should carry the user query")
	}
	if !strings.Contains(prompt, "hi") {
		t.Error("Prompt should carry the chat history")
	}
}

func TestClarifierClassify_NoHistory(t *testing.T) {
	llm, mock := newMockLLM("only summarize", nil)
	c := NewClarifier(llm, nil)

	got := c.Classify(context.Background(), "summarize", nil)
	if got != ReportSummarize {
		t.Errorf("Expected only summarize, got %q", got)
	}
	if !strings.Contains(mock.LastInput[1].Content, "No previous history") {
		t.Error("Prompt should note the absence of history")
	}
}

func TestClarifierClassify_ErrorDefaultsToBoth(t *testing.T) {
	llm, _ := newMockLLM("", errors.New("timeout"))
	c := NewClarifier(llm, nil)

	if got := c.Classify(context.Background(), "anything", nil); got != ReportBoth {
		t.Errorf("Expected default eda and summarize, got %q", got)
	}
}
