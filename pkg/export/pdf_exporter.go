package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a dataset as a PDF document, one banded table per
// section.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays out the dataset title followed by each section as a two-column
// item/value table.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	const itemWidth, valueWidth = 95.0, 95.0
	for _, section := range data.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(itemWidth+valueWidth, 8, section.Name, "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Rows {
			pdf.CellFormat(itemWidth, 7, row.Item, "1", 0, "L", false, 0, "")
			pdf.CellFormat(valueWidth, 7, row.Value, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
