package agent

import (
	"context"
	"fmt"
	"strings"
)

// ReportIntent is the coarse category the clarifier emits for the report
// path.
type ReportIntent string

const (
	ReportSummarize ReportIntent = "only summarize"
	ReportEDA       ReportIntent = "only eda"
	ReportBoth      ReportIntent = "eda and summarize"
)

const clarifierSystemPrompt = `You are an intelligent AI agent. Your task is to classify user queries into one of three categories:
1. "only summarize" - user wants data summary
2. "only eda" - user wants exploratory data analysis
3. "eda and summarize" - user wants both

Respond with ONLY the category phrase, nothing else.`

// Clarifier is the simpler classifier of the report path. It only emits one
// of three coarse categories and defaults to "both" whenever the
// classification is ambiguous or fails.
type Clarifier struct {
	llm    *LLMService
	logger func(string)
}

// NewClarifier creates a new clarifier
func NewClarifier(llm *LLMService, logFunc func(string)) *Clarifier {
	return &Clarifier{llm: llm, logger: logFunc}
}

func (c *Clarifier) log(msg string) {
	if c.logger != nil {
		c.logger(msg)
	}
}

// Classify maps a query plus recent history to a coarse report intent.
func (c *Clarifier) Classify(ctx context.Context, query string, history []Exchange) ReportIntent {
	var hb strings.Builder
	if len(history) == 0 {
		hb.WriteString("No previous history")
	}
	for i, ex := range history {
		hb.WriteString(fmt.Sprintf("Query %d: %s -> Response: %s\n", i+1, ex.Query, ex.ResponseExcerpt))
	}

	prompt := fmt.Sprintf(`User Query: %s

Chat History:
%s

Based on the user query and chat history, classify the intent into ONE of these categories:
- "only summarize" - if user wants just a summary of the data
- "only eda" - if user wants exploratory data analysis
- "eda and summarize" - if user wants both summary and EDA

Respond with ONLY one of these three phrases, nothing else.`, query, hb.String())

	resp, err := c.llm.Generate(ctx, clarifierSystemPrompt, prompt, 50, 0)
	if err != nil {
		c.log(fmt.Sprintf("[CLARIFIER] Call failed: %v, defaulting to both", err))
		return ReportBoth
	}

	return ParseReportIntent(resp)
}

// ParseReportIntent maps raw model output onto a category, defaulting to
// "eda and summarize". Checked most-specific first since "only eda" is not a
// substring of the combined phrase but "eda and summarize" must win when
// present.
func ParseReportIntent(raw string) ReportIntent {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lower, string(ReportBoth)):
		return ReportBoth
	case strings.Contains(lower, string(ReportEDA)):
		return ReportEDA
	case strings.Contains(lower, string(ReportSummarize)):
		return ReportSummarize
	default:
		return ReportBoth
	}
}
