package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// pdfDisclaimer closes every assessment report.
const pdfDisclaimer = "Note: This automated report is not a substitute for professional medical advice. " +
	"Always consult a qualified healthcare provider for diagnosis and treatment."

// PatientReport carries the data rendered into a single-patient PDF
// report. Values are kept as entered so the report mirrors the request.
type PatientReport struct {
	Age             string
	Gender          string
	BMI             string
	HbA1cLevel      string
	BloodGlucose    string
	Result          string
	Recommendations []string
}

// PDFFilename returns a timestamped report filename.
func PDFFilename(now time.Time) string {
	return fmt.Sprintf("Diabetes_Report_%s.pdf", now.Format("20060102-150405"))
}

// pdfText drops characters the report's core fonts cannot render. The
// recommendation strings open with emoji markers; outside cp1252 those
// would print as substitute glyphs, so anything beyond Latin-1 is
// removed before translation.
func pdfText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0xFF {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// WritePDF renders the patient assessment report as a PDF document.
func WritePDF(w io.Writer, data PatientReport) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Diabetes Risk Assessment Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Patient information table
	tableRows := [][2]string{
		{"Patient Information", "Value"},
		{"Age", data.Age},
		{"Gender", data.Gender},
		{"BMI", data.BMI},
		{"HbA1c Level", data.HbA1cLevel},
		{"Blood Glucose", data.BloodGlucose},
		{"Prediction Result", data.Result},
	}
	for i, row := range tableRows {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.SetFillColor(211, 211, 211)
		} else {
			pdf.SetFont("Helvetica", "", 12)
			pdf.SetFillColor(245, 245, 220)
		}
		pdf.CellFormat(80, 9, translate(pdfText(row[0])), "1", 0, "C", true, 0, "")
		pdf.CellFormat(80, 9, translate(pdfText(row[1])), "1", 1, "C", true, 0, "")
	}
	pdf.Ln(8)

	// Recommendations
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Medical Recommendations:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, rec := range data.Recommendations {
		pdf.MultiCell(0, 6, translate("- "+pdfText(rec)), "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(4)

	// Disclaimer
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(255, 0, 0)
	pdf.MultiCell(0, 5, pdfDisclaimer, "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}
