package main

import (
	"context"
	"fmt"

	"divedata/agent"
	"divedata/config"
	"divedata/dataset"
)

// ChatService owns one session: the loaded dataset, its cached schema
// summary, the conversation context store, and the resolution/dispatch
// pipeline. Queries are processed strictly one at a time; the only state
// carried across queries is the context store and the cached schema.
type ChatService struct {
	cfg    config.Config
	logger func(string)

	ds     *dataset.Dataset
	schema *dataset.SchemaSummary

	llm        *agent.LLMService
	classifier *agent.IntentClassifier
	clarifier  *agent.Clarifier
	planner    *agent.ChartPlanner
	composer   *agent.ResponseComposer
	reports    *agent.ReportService
	context    *agent.ContextStore
}

// NewChatService creates a session with no dataset loaded yet.
func NewChatService(cfg config.Config, llm *agent.LLMService, logFunc func(string)) *ChatService {
	return &ChatService{
		cfg:        cfg,
		logger:     logFunc,
		llm:        llm,
		classifier: agent.NewIntentClassifier(llm, logFunc),
		clarifier:  agent.NewClarifier(llm, logFunc),
		composer:   agent.NewResponseComposer(llm, logFunc),
		reports:    agent.NewReportService(llm, logFunc),
		context:    agent.NewContextStore(cfg.MaxContextTurns, cfg.ExcerptLimit),
	}
}

func (s *ChatService) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}

// LoadDataset stages a CSV file, profiles it once, and caches the schema
// summary for the dataset's lifetime in the session.
func (s *ChatService) LoadDataset(path string) error {
	ds, err := dataset.LoadFile(path, s.cfg.DataCacheDir, s.logger)
	if err != nil {
		return WrapError("chat", "LoadDataset", err)
	}

	schema, err := dataset.Profile(ds)
	if err != nil {
		ds.Close()
		return WrapError("chat", "LoadDataset", err)
	}

	if s.ds != nil {
		s.ds.Close()
	}
	s.ds = ds
	s.schema = schema
	s.planner = agent.NewChartPlanner(ds, schema, agent.NewColumnResolver(s.logger), s.logger)
	s.context.Clear()

	s.log(fmt.Sprintf("[CHAT] Dataset ready: %d numeric, %d categorical, %d date columns",
		len(schema.NumericColumns), len(schema.CategoricalColumns), len(schema.DateColumns)))
	return nil
}

// Dataset returns the loaded dataset, or nil.
func (s *ChatService) Dataset() *dataset.Dataset {
	return s.ds
}

// Schema returns the cached schema summary, or nil.
func (s *ChatService) Schema() *dataset.SchemaSummary {
	return s.schema
}

// SubmitQuery runs one query through the smart-analyzer path: classify,
// resolve and plan a chart, then compose the response. Classification and
// planning failures degrade silently; only a prose-generation failure is
// returned, and in that case the context store stays untouched.
func (s *ChatService) SubmitQuery(ctx context.Context, query string) (*agent.QueryResult, error) {
	if s.ds == nil {
		return nil, WrapError("chat", "SubmitQuery", fmt.Errorf("no dataset loaded"))
	}

	intent := s.classifier.Classify(ctx, query, s.context.Recent(2), s.schema)
	spec := s.planner.Plan(intent)

	numStats, err := dataset.NumericSummary(s.ds, s.schema)
	if err != nil {
		return nil, WrapError("chat", "SubmitQuery", err)
	}
	catStats, err := dataset.CategoricalSummary(s.ds, s.schema)
	if err != nil {
		return nil, WrapError("chat", "SubmitQuery", err)
	}

	result, err := s.composer.Compose(ctx, query, spec, s.ds, s.schema, numStats, catStats)
	if err != nil {
		return nil, WrapError("chat", "SubmitQuery", err)
	}

	s.context.Append(query, result.Text)
	return result, nil
}

// SubmitReportQuery runs one query through the report path: the coarse
// clarifier routes to summary-only, EDA-only, or the combined report.
func (s *ChatService) SubmitReportQuery(ctx context.Context, query string) (string, error) {
	if s.ds == nil {
		return "", WrapError("chat", "SubmitReportQuery", fmt.Errorf("no dataset loaded"))
	}

	numStats, err := dataset.NumericSummary(s.ds, s.schema)
	if err != nil {
		return "", WrapError("chat", "SubmitReportQuery", err)
	}
	catStats, err := dataset.CategoricalSummary(s.ds, s.schema)
	if err != nil {
		return "", WrapError("chat", "SubmitReportQuery", err)
	}

	reportIntent := s.clarifier.Classify(ctx, query, s.context.Recent(s.cfg.MaxContextTurns))
	s.log(fmt.Sprintf("[CHAT] Report intent: %s", reportIntent))

	var text string
	switch reportIntent {
	case agent.ReportSummarize:
		text, err = s.reports.Summarize(ctx, query, s.ds)
	case agent.ReportEDA:
		text, err = s.reports.EDA(ctx, query, s.ds, numStats, catStats)
	default:
		text, err = s.reports.Combined(ctx, query, s.ds, numStats, catStats)
	}
	if err != nil {
		return "", WrapError("chat", "SubmitReportQuery", err)
	}

	s.context.Append(query, text)
	return text, nil
}

// ClearContext empties the conversation context store.
func (s *ChatService) ClearContext() {
	s.context.Clear()
	s.log("[CHAT] Context cleared")
}

// Close releases the session's dataset.
func (s *ChatService) Close() {
	if s.ds != nil {
		s.ds.Close()
		s.ds = nil
	}
}
