package cert

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// renderPDF writes an A4 completion certificate. contextTitle names the
// main module for per-group certificates; empty for the global one.
func renderPDF(w io.Writer, userName string, overallScore int, contextTitle string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 40, 25)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, "Certificate of Completion", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	if contextTitle != "" {
		pdf.SetFont("Helvetica", "I", 14)
		pdf.CellFormat(0, 10, contextTitle, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Awarded to: %s", userName), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Overall Score: %d%%", overallScore), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("Date: %s", time.Now().Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, "Congratulations on successfully completing the training.", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}
