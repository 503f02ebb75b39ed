package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

const pdfPageBreakY = 270

func renderPDF(w io.Writer, rep *checker.Report, opts Options) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; header values may carry arbitrary UTF-8
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Security Scan Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Metadata
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("URL Tested: %s", rep.Target)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scan ID: %s", rep.ID), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Started: %s", formatTimestamp(rep.StartedAt)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Completed: %s", formatTimestamp(rep.CompletedAt)), "", 1, "", false, 0, "")
	pdf.Ln(5)

	// Summary
	counts := rep.Counts()
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Pass: %d | Fail: %d | Error: %d | Duration: %s",
		counts.Pass, counts.Fail, counts.Error, formatDuration(rep.Duration())), "", 1, "", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Checks", "", 1, "", false, 0, "")
	pdf.Ln(2)

	for _, f := range rep.Findings {
		if !f.HasContent() {
			continue
		}
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 11)
		r, g, b := pdfStatusColor(f.Status)
		pdf.SetFillColor(r, g, b)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s - %s", f.Name, statusLabel(f.Status))), "", 1, "", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		for _, line := range detailLines(f) {
			if pdf.GetY() > pdfPageBreakY {
				pdf.AddPage()
			}
			pdf.MultiCell(0, 5, tr(line), "", "", false)
		}

		if f.Remediation != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr("Improvement: "+f.Remediation), "", "", false)
		}

		if opts.Evidence && len(f.Evidence) > 0 {
			pdf.SetFont("Arial", "", 8)
			for _, item := range f.Evidence {
				if pdf.GetY() > pdfPageBreakY {
					pdf.AddPage()
				}
				pdf.MultiCell(0, 4, tr(fmt.Sprintf("  %s: %s", item.Key, item.Value)), "", "", false)
			}
		}

		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

func pdfStatusColor(s checker.Status) (int, int, int) {
	switch s {
	case checker.StatusPass:
		return 220, 240, 220
	case checker.StatusFail:
		return 250, 235, 200
	default:
		return 245, 210, 210
	}
}
