// Package prompt assembles the natural-language payloads sent to the
// external text-generation provider. Composition is pure: identical
// inputs yield byte-identical payload text, and nothing here ever
// calls the provider.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"finsights/internal/core"
)

// Sample caps for prompt context. Payload size is a cost and latency
// control on the provider call, so the caps are deliberate, not
// arbitrary.
const (
	ReportSampleSize   = 10
	QuestionSampleSize = 30
)

// Kind labels the fixed purpose of a payload.
type Kind string

const (
	KindReport   Kind = "report"
	KindQuestion Kind = "question"
)

// Payload is the assembled prompt text for one provider call.
type Payload struct {
	Kind Kind
	Text string
}

// Report composes the financial-report prompt from aggregated insights
// and a context sample truncated to maxSample rows.
func Report(summary core.InsightsSummary, sample []core.Transaction, maxSample int) (Payload, error) {
	stats, err := json.Marshal(summary)
	if err != nil {
		return Payload{}, fmt.Errorf("compose report prompt: marshal stats: %w", err)
	}
	rows, err := renderSample(sample, maxSample)
	if err != nil {
		return Payload{}, fmt.Errorf("compose report prompt: %w", err)
	}

	var b strings.Builder
	b.WriteString("Write a clear, concise financial report based on these stats and transactions.\n")
	b.WriteString("Stats: ")
	b.Write(stats)
	b.WriteString("\nTransactions (sample): ")
	b.WriteString(rows)
	b.WriteString("\nThe report should sound like a financial summary, around 150 words.")

	return Payload{Kind: KindReport, Text: b.String()}, nil
}

// Question composes the free-form question prompt over a context
// sample truncated to maxSample rows. The question must be non-empty
// after trimming whitespace.
func Question(question string, sample []core.Transaction, maxSample int) (Payload, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return Payload{}, fmt.Errorf("compose question prompt: empty question: %w", core.ErrInvalidArgument)
	}
	rows, err := renderSample(sample, maxSample)
	if err != nil {
		return Payload{}, fmt.Errorf("compose question prompt: %w", err)
	}

	var b strings.Builder
	b.WriteString("Based on this transaction dataset: ")
	b.WriteString(rows)
	b.WriteString(",\nanswer the following question briefly and accurately:\n")
	b.WriteString(q)

	return Payload{Kind: KindQuestion, Text: b.String()}, nil
}

// renderSample serializes at most maxSample transactions as a JSON
// array of records.
func renderSample(sample []core.Transaction, maxSample int) (string, error) {
	if maxSample < 1 {
		return "", fmt.Errorf("sample cap %d must be positive: %w", maxSample, core.ErrInvalidArgument)
	}
	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	if sample == nil {
		sample = []core.Transaction{}
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("marshal sample: %w", err)
	}
	return string(data), nil
}
