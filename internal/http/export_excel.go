package httpapi

import (
	"bytes"
	"fmt"

	"pd-smartdoc/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ExportSummaryHeader is the column set of the all-entries workbook.
var ExportSummaryHeader = []string{
	"ID",
	"Generic Failure",
	"Failure Mode",
	"Cause",
	"Prevention (EDPS)",
	"Detection (DVP)",
	"Severity",
	"Occurrence",
	"Detection",
	"RPN",
	"Status",
}

// GenerateAnalysisWorkbook renders one DFMEA entry as a two-column
// field/value sheet, control sections inline, matching the layout the
// engineering team reviews in.
func GenerateAnalysisWorkbook(entry *domain.FailureAnalysis) ([]byte, error) {
	f, sheet, err := newWorkbook("DFMEA")
	if err != nil {
		return nil, err
	}

	rows := [][2]any{
		{"Field", "Value"},
		{"DFMEA ID", entry.ID},
		{"Generic Failure", entry.GenericFailure},
		{"Failure Mode", entry.FailureMode},
		{"Cause", entry.Cause},
		{"", ""},
		{"Prevention Control", ""},
	}
	if entry.PreventionControl != nil && entry.PreventionControl.EDPSData != nil {
		norm := entry.PreventionControl.EDPSData
		rows = append(rows,
			[2]any{"  - EDPS Norm Number", norm.NormNumber},
			[2]any{"  - EDPS Title", norm.Title},
			[2]any{"  - Description", norm.Description},
		)
	} else {
		rows = append(rows, [2]any{"  - None", "No prevention control defined"})
	}
	rows = append(rows, [2]any{"", ""}, [2]any{"Detection Control", ""})
	if entry.DetectionControl != nil && entry.DetectionControl.DVPData != nil {
		proc := entry.DetectionControl.DVPData
		rows = append(rows,
			[2]any{"  - DVP Procedure ID", proc.ProcedureID},
			[2]any{"  - Test Name", proc.TestName},
			[2]any{"  - Acceptance Criteria", proc.AcceptanceCriteria},
		)
	} else {
		rows = append(rows, [2]any{"  - None", "No detection control defined"})
	}
	rows = append(rows,
		[2]any{"", ""},
		[2]any{"Severity", ratingCell(entry.Severity)},
		[2]any{"Occurrence", ratingCell(entry.Occurrence)},
		[2]any{"Detection", ratingCell(entry.Detection)},
		[2]any{"RPN", entry.RPN},
	)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &[]any{row[0], row[1]}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 30)
	_ = f.SetColWidth(sheet, "B", "B", 50)

	if err := styleHeaderRow(f, sheet, 2); err != nil {
		f.Close()
		return nil, err
	}
	return workbookBytes(f)
}

// GenerateSummaryWorkbook renders every DFMEA entry as one row. Control
// columns show "Linked"/"None" rather than the target records; ids are
// shortened to the first 8 characters for readability.
func GenerateSummaryWorkbook(entries []domain.FailureAnalysis) ([]byte, error) {
	f, sheet, err := newWorkbook("DFMEA List")
	if err != nil {
		return nil, err
	}

	header := make([]any, len(ExportSummaryHeader))
	for i, h := range ExportSummaryHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, entry := range entries {
		row := []any{
			shortID(entry.ID),
			entry.GenericFailure,
			entry.FailureMode,
			entry.Cause,
			linkCell(entry.PreventionControl != nil && entry.PreventionControl.EDPSID != ""),
			linkCell(entry.DetectionControl != nil && entry.DetectionControl.DVPID != ""),
			ratingCell(entry.Severity),
			ratingCell(entry.Occurrence),
			ratingCell(entry.Detection),
			entry.RPN,
			entry.Status,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "D", 25)
	_ = f.SetColWidth(sheet, "E", "F", 20)
	_ = f.SetColWidth(sheet, "G", "K", 10)

	if err := styleHeaderRow(f, sheet, len(ExportSummaryHeader)); err != nil {
		f.Close()
		return nil, err
	}
	return workbookBytes(f)
}

func newWorkbook(sheetName string) (*excelize.File, string, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)
	return f, sheetName, nil
}

func styleHeaderRow(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(columns, 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	defer f.Close()
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func linkCell(linked bool) string {
	if linked {
		return "Linked"
	}
	return "None"
}

func ratingCell(rating *int) any {
	if rating == nil {
		return ""
	}
	return *rating
}
