package evaluation

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// WriteXLSX renders the report as a two-sheet workbook: aggregate
// figures on Summary, one row per question on Results.
func WriteXLSX(report *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("create results sheet: %w", err)
	}

	if err := writeSummary(f, report); err != nil {
		return err
	}
	if err := writeResults(f, report.Rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, report *Report) error {
	s := report.Summary
	rows := [][]any{
		{"Question set", report.SetName},
		{"Total questions", s.Total},
		{"Answered", s.Answered},
		{"Failed", s.Failed},
		{"Keyword hits", s.KeywordHits},
		{"Mean confidence (%)", s.MeanConfidence},
		{"Mean duration (s)", s.MeanDuration},
	}
	for label, count := range s.LabelCounts {
		rows = append(rows, []any{"Label: " + label, count})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary cell name: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeResults(f *excelize.File, rows []Row) error {
	header := []any{"#", "Question", "Answer", "Confidence (%)", "Label", "Sources", "Time (s)", "Keyword hit", "Error"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("results cell name: %w", err)
		}
		values := []any{
			row.Index,
			row.Question,
			row.Answer,
			row.ConfidencePct,
			row.Label,
			row.Sources,
			row.DurationSec,
			row.KeywordHit,
			row.Err,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return fmt.Errorf("write results row %d: %w", i+2, err)
		}
	}
	return nil
}
