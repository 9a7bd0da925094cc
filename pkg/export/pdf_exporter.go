package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	wideTableColumns = 7
	firstColumnShare = 0.22
)

// PDFExporter renders datasets into a tabular PDF. Tables with many columns switch
// to landscape and give the first column (usually a name) a wider share.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	orientation := "P"
	if len(data.Headers) >= wideTableColumns {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths := columnWidths(len(data.Headers), pageWidth-left-right)

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	fontSize := 9.0
	if orientation == "L" {
		fontSize = 7.5
	}

	pdf.SetFont("Arial", "B", fontSize)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", fontSize)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			align := "C"
			if i == 0 || i == len(data.Headers)-1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, tr(row[header]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(columns int, usable float64) []float64 {
	widths := make([]float64, columns)
	if columns < wideTableColumns {
		for i := range widths {
			widths[i] = usable / float64(columns)
		}
		return widths
	}
	first := usable * firstColumnShare
	rest := (usable - first) / float64(columns-1)
	widths[0] = first
	for i := 1; i < columns; i++ {
		widths[i] = rest
	}
	return widths
}
