package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"divedata/dataset"
)

const summarizeSystemPrompt = `You are an intelligent AI Analyst.
Your task: you will get a dataset in tabular form; summarize the data for the user in a few lines and surface what is inside it.
For example, if the data contains columns like name, age, sex, occupation, salary, you would explain that this looks like company or census data about a working population, note missing values, and so on.
End with a good flow, be user friendly and concise.
Do not provide a large dump of everything; complete the summary in about 5 to 15 lines.`

const edaSystemPromptTemplate = `You are an intelligent Data Analyst specialized in Exploratory Data Analysis (EDA).

Your primary input is a pre-computed, structured analysis (provided below as 'EDA ANSWERS') which contains all necessary numerical summaries (min, max, mean, missing counts) and categorical summaries (unique counts, top value, missing counts).

Your task is to interpret this structured analysis and present the results in a professional, easy-to-read markdown format.

Strict output requirements:
1. Structure: the response MUST be divided into three markdown sections:
   a. ## Categorical Data Summary
   b. ## Numerical Data Summary
   c. ## Insight and Next Steps
2. Categorical table columns: | Feature | Unique Values | Missing Count | Most Frequent Category | Key Insight |
3. Numerical table columns: | Feature | Min Value | Max Value | Mean (or Std Dev) | Missing Count | Key Insight |
4. Do NOT perform mathematical computation yourself; translate the provided values into tables and insights.
5. The final section must include a data quality assessment, a key opportunity, and an actionable next step.
6. Write as if presenting to a non-technical manager; be concise.

Here is the dataset analysis result you have to interpret:

%s`

const combinedSystemPromptTemplate = `You are an expert AI Data Analyst and your job is to analyze and summarize datasets comprehensively.

You are given two inputs:
1. A user query asking for both summary and EDA.
2. A structured EDA result (called 'EDA ANSWERS') containing numerical summaries (mean, min, max, missing count) and categorical summaries (unique values, top category, missing count).

Create a single professional, clear, human-readable markdown report that includes both:
- Dataset Summary: what the dataset represents, its context, and high-level insights.
- Exploratory Data Analysis: numerical and categorical feature summaries using the provided data.

Output structure (strict):
1. ## Dataset Summary: 4 to 8 concise sentences; group columns logically instead of listing every one.
2. ## Categorical Feature Analysis: table: | Feature | Unique Values | Missing Count | Most Frequent Category | Key Insight |
3. ## Numerical Feature Analysis: table: | Feature | Min Value | Max Value | Mean / Std Dev | Missing Count | Key Insight |
4. ## Overall Insights & Next Steps: data quality, interesting patterns, actionable next steps.

Style rules:
- Write for a business audience, clear and professional.
- Do not perform math yourself; use the provided values.
- Keep the response concise, ideally 10 to 20 lines total.

Below is the structured EDA result for your reference:

%s`

// ReportService produces the three report-path responses: summary-only,
// EDA-only, and combined. Each generator has its own system instruction
// and token budget; all are grounded in the precomputed statistics.
type ReportService struct {
	llm    *LLMService
	logger func(string)
}

// NewReportService creates a new report service
func NewReportService(llm *LLMService, logFunc func(string)) *ReportService {
	return &ReportService{llm: llm, logger: logFunc}
}

// edaAnswers bundles both statistic maps into the structured digest the
// prompts embed.
type edaAnswers struct {
	CategoricalSummary map[string]dataset.CategoricalStats `json:"categorical_summary"`
	NumericalSummary   map[string]dataset.NumericStats     `json:"numerical_summary"`
}

func encodeAnswers(numStats map[string]dataset.NumericStats, catStats map[string]dataset.CategoricalStats) string {
	data, err := json.Marshal(edaAnswers{
		CategoricalSummary: catStats,
		NumericalSummary:   numStats,
	})
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Summarize answers a summary-only request from the query plus a sampled
// data excerpt.
func (r *ReportService) Summarize(ctx context.Context, query string, ds *dataset.Dataset) (string, error) {
	prompt, err := r.buildUserPrompt(query, ds)
	if err != nil {
		return "", err
	}
	return r.llm.Generate(ctx, summarizeSystemPrompt, prompt, 500, 0)
}

// EDA answers an analysis-only request from the precomputed statistics.
func (r *ReportService) EDA(ctx context.Context, query string, ds *dataset.Dataset,
	numStats map[string]dataset.NumericStats, catStats map[string]dataset.CategoricalStats) (string, error) {
	prompt, err := r.buildUserPrompt(query, ds)
	if err != nil {
		return "", err
	}
	system := fmt.Sprintf(edaSystemPromptTemplate, encodeAnswers(numStats, catStats))
	return r.llm.Generate(ctx, system, prompt, 600, 0)
}

// Combined answers a request for both summary and analysis.
func (r *ReportService) Combined(ctx context.Context, query string, ds *dataset.Dataset,
	numStats map[string]dataset.NumericStats, catStats map[string]dataset.CategoricalStats) (string, error) {
	prompt, err := r.buildUserPrompt(query, ds)
	if err != nil {
		return "", err
	}
	system := fmt.Sprintf(combinedSystemPromptTemplate, encodeAnswers(numStats, catStats))
	return r.llm.Generate(ctx, system, prompt, 800, 0)
}

// buildUserPrompt joins the query with a sampled CSV excerpt of the data.
func (r *ReportService) buildUserPrompt(query string, ds *dataset.Dataset) (string, error) {
	sample, err := ds.SampleCSV(50)
	if err != nil {
		return "", err
	}
	return query + "+" + sample, nil
}
