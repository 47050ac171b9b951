package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"pd-smartdoc/internal/domain"

	"github.com/go-pdf/fpdf"
)

// GenerateAnalysisPDF renders one DFMEA entry as a report: title, the four
// review sections, and a generation footer. Sections with no linked control
// print an explicit placeholder so a reviewer can tell "not linked" from a
// rendering gap.
func GenerateAnalysisPDF(entry *domain.FailureAnalysis) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "DFMEA Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdfSection(pdf, "Failure Information")
	pdfLine(pdf, "Generic Failure: %s", entry.GenericFailure)
	pdfLine(pdf, "Failure Mode: %s", entry.FailureMode)
	pdfLine(pdf, "Cause: %s", entry.Cause)
	pdf.Ln(4)

	pdfSection(pdf, "Prevention Control")
	if entry.PreventionControl != nil && entry.PreventionControl.EDPSData != nil {
		norm := entry.PreventionControl.EDPSData
		pdfLine(pdf, "EDPS Norm: %s", norm.NormNumber)
		pdfLine(pdf, "Title: %s", norm.Title)
		pdfLine(pdf, "Description: %s", norm.Description)
	} else {
		pdfLine(pdf, "No prevention control defined")
	}
	pdf.Ln(4)

	pdfSection(pdf, "Detection Control")
	if entry.DetectionControl != nil && entry.DetectionControl.DVPData != nil {
		proc := entry.DetectionControl.DVPData
		pdfLine(pdf, "DVP Procedure: %s", proc.ProcedureID)
		pdfLine(pdf, "Test Name: %s", proc.TestName)
		pdfLine(pdf, "Acceptance Criteria: %s", proc.AcceptanceCriteria)
	} else {
		pdfLine(pdf, "No detection control defined")
	}
	pdf.Ln(4)

	pdfSection(pdf, "Risk Assessment")
	pdfLine(pdf, "Severity: %s", ratingText(entry.Severity))
	pdfLine(pdf, "Occurrence: %s", ratingText(entry.Occurrence))
	pdfLine(pdf, "Detection: %s", ratingText(entry.Detection))
	pdfLine(pdf, "RPN (Risk Priority Number): %s", rpnText(entry.RPN))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Document ID: %s", entry.ID), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfSection(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "BU", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func pdfLine(pdf *fpdf.Fpdf, format string, args ...any) {
	pdf.MultiCell(0, 6, fmt.Sprintf(format, args...), "", "L", false)
}

func ratingText(rating *int) string {
	if rating == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *rating)
}

func rpnText(rpn int) string {
	if rpn == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", rpn)
}
