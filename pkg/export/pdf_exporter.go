package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// FormDocument is a printable rendition of a form: a title followed by
// sections of questions. Options are listed under their question so the
// sheet can be filled in by hand.
type FormDocument struct {
	Title    string
	Sections []FormDocumentSection
}

// FormDocumentSection groups questions under a heading.
type FormDocumentSection struct {
	Title     string
	Questions []FormDocumentQuestion
}

// FormDocumentQuestion is one printable question line.
type FormDocumentQuestion struct {
	Label    string
	Widget   string
	Required bool
	Options  []string
}

// PDFExporter renders datasets and blank form sheets into PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderForm creates a blank printable sheet for a form document.
func (e *PDFExporter) RenderForm(doc FormDocument) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("pdf form requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.MultiCell(0, 10, doc.Title, "", "C", false)
	pdf.Ln(4)

	for _, section := range doc.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(0, 8, section.Title, "", 1, "L", true, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "", 10)
		for _, question := range section.Questions {
			label := question.Label
			if question.Required {
				label += " *"
			}
			pdf.MultiCell(0, 6, label, "", "L", false)

			if len(question.Options) > 0 {
				pdf.SetFont("Arial", "", 9)
				for _, option := range question.Options {
					pdf.CellFormat(8, 6, "", "", 0, "", false, 0, "")
					pdf.CellFormat(5, 6, "", "1", 0, "", false, 0, "")
					pdf.CellFormat(0, 6, " "+option, "", 1, "L", false, 0, "")
				}
				pdf.SetFont("Arial", "", 10)
			} else {
				pdf.CellFormat(8, 7, "", "", 0, "", false, 0, "")
				pdf.CellFormat(0, 7, "", "B", 1, "", false, 0, "")
			}
			pdf.Ln(3)
		}
		pdf.Ln(2)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render form pdf: %w", err)
	}
	return buf.Bytes(), nil
}
