package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"jan-server/services/report-api/internal/domain/report"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 7.0
)

// PDFRenderer writes a result as an A4 table. Wide tables switch to landscape.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(meta report.DocumentMeta, result report.Result) (report.Document, error) {
	orientation := "P"
	if len(result.Headers) > 5 {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(meta.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range summaryLines(meta) {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(result.Headers) > 0 {
		pageWidth, _ := pdf.GetPageSize()
		colWidth := (pageWidth - 2*pdfMargin) / float64(len(result.Headers))

		header := func() {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetFillColor(221, 235, 247)
			for _, h := range result.Headers {
				pdf.CellFormat(colWidth, pdfRowHeight, tr(h), "1", 0, "C", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Helvetica", "", 9)
		}
		header()

		_, pageHeight := pdf.GetPageSize()
		for _, values := range result.Rows {
			if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
				pdf.AddPage()
				header()
			}
			for j := range result.Headers {
				var v any
				if j < len(values) {
					v = values[j]
				}
				align := "L"
				switch v.(type) {
				case float64, float32, int, int64:
					align = "R"
				}
				pdf.CellFormat(colWidth, pdfRowHeight, tr(cellText(v)), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return report.Document{}, fmt.Errorf("write pdf: %w", err)
	}
	return report.Document{
		Filename:    "reporte.pdf",
		ContentType: ContentTypePDF,
		Body:        buf.Bytes(),
	}, nil
}
