package evaluation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
)

// Row captures one evaluated question.
type Row struct {
	Index         int
	Question      string
	Answer        string
	ConfidencePct int
	Label         string
	Sources       string
	DurationSec   float64
	KeywordHit    bool
	Err           string
}

type Summary struct {
	Total          int
	Answered       int
	Failed         int
	KeywordHits    int
	MeanConfidence float64
	MeanDuration   float64
	LabelCounts    map[string]int
}

type Report struct {
	SetName string
	Rows    []Row
	Summary Summary
}

// Evaluator drives the question service over a fixed question set and
// scores answers by keyword presence, the cheap stand-in for human
// grading.
type Evaluator struct {
	ask ports.QuestionService
}

func NewEvaluator(ask ports.QuestionService) *Evaluator {
	return &Evaluator{ask: ask}
}

func (e *Evaluator) Run(ctx context.Context, set *QuestionSet) *Report {
	report := &Report{
		SetName: set.Name,
		Summary: Summary{LabelCounts: make(map[string]int)},
	}

	for i, q := range set.Questions {
		row := Row{Index: i + 1, Question: q.Text}

		start := time.Now()
		record, err := e.ask.Ask(ctx, q.Text, ports.AskOptions{Depth: q.Depth})
		row.DurationSec = time.Since(start).Seconds()

		if err != nil {
			row.Err = err.Error()
			slog.Warn("evaluation question failed", "index", row.Index, "error", err)
			report.Rows = append(report.Rows, row)
			continue
		}

		row.Answer = record.Answer
		row.ConfidencePct = int(record.Confidence.Overall * 100)
		row.Label = string(record.Confidence.Label)
		row.Sources = formatSources(record.Sources)
		row.KeywordHit = matchesKeywords(record.Answer, q.Keywords)
		report.Rows = append(report.Rows, row)
	}

	report.Summary = summarize(report.Rows)
	return report
}

func summarize(rows []Row) Summary {
	s := Summary{
		Total:       len(rows),
		LabelCounts: make(map[string]int),
	}

	var confSum, durSum float64
	for _, row := range rows {
		durSum += row.DurationSec
		if row.Err != "" {
			s.Failed++
			continue
		}
		s.Answered++
		confSum += float64(row.ConfidencePct)
		if row.KeywordHit {
			s.KeywordHits++
		}
		if row.Label != "" {
			s.LabelCounts[row.Label]++
		}
	}

	if s.Answered > 0 {
		s.MeanConfidence = confSum / float64(s.Answered)
	}
	if s.Total > 0 {
		s.MeanDuration = durSum / float64(s.Total)
	}
	return s
}

func matchesKeywords(answer string, keywords []string) bool {
	if len(keywords) == 0 {
		return answer != ""
	}
	lowered := strings.ToLower(answer)
	for _, kw := range keywords {
		if !strings.Contains(lowered, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

func formatSources(sources []domain.Document) string {
	if len(sources) == 0 {
		return "N/A"
	}
	parts := make([]string, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, doc := range sources {
		label := doc.Source
		if seen[label] {
			continue
		}
		seen[label] = true
		parts = append(parts, label)
	}
	return strings.Join(parts, " | ")
}
