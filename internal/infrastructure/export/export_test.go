package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jan-server/services/report-api/internal/domain/report"
)

func sampleMeta() report.DocumentMeta {
	return report.DocumentMeta{
		Title:       "Reporte de ventas",
		Intent:      report.IntentSales,
		Range:       report.DateRange{Start: report.NewDate(2025, time.September, 1), End: report.NewDate(2025, time.September, 30)},
		GroupedBy:   []string{"Categoría"},
		GeneratedAt: time.Date(2025, time.September, 17, 12, 0, 0, 0, time.UTC),
	}
}

func sampleResult() report.Result {
	return report.Result{
		Headers: []string{"Categoría", "Monto total"},
		Rows: [][]any{
			{"Periféricos", 335.0},
			{"Audio", 125.0},
		},
	}
}

func TestExcelRenderer_Render(t *testing.T) {
	doc, err := NewExcelRenderer().Render(sampleMeta(), sampleResult())
	require.NoError(t, err)

	assert.Equal(t, "reporte.xlsx", doc.Filename)
	assert.Equal(t, ContentTypeExcel, doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("PK")))

	f, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, "Reporte de ventas", rows[0][0])
	assert.Equal(t, "Rango: 2025-09-01 a 2025-09-30", rows[1][0])

	var header int
	for i, r := range rows {
		if len(r) > 1 && r[0] == "Categoría" {
			header = i
		}
	}
	require.NotZero(t, header)
	assert.Equal(t, []string{"Periféricos", "335"}, rows[header+1])
	assert.Equal(t, []string{"Audio", "125"}, rows[header+2])
}

func TestExcelRenderer_EmptyResult(t *testing.T) {
	result := report.Result{Headers: []string{"Producto", "Stock"}}
	doc, err := NewExcelRenderer().Render(sampleMeta(), result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Producto", "Stock"}, rows[len(rows)-1])
}

func TestPDFRenderer_Render(t *testing.T) {
	doc, err := NewPDFRenderer().Render(sampleMeta(), sampleResult())
	require.NoError(t, err)

	assert.Equal(t, "reporte.pdf", doc.Filename)
	assert.Equal(t, ContentTypePDF, doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))
}

func TestPDFRenderer_ManyRowsAndEmpty(t *testing.T) {
	result := report.Result{Headers: []string{"a", "b", "c", "d", "e", "f"}}
	for i := 0; i < 120; i++ {
		result.Rows = append(result.Rows, []any{"x", i, 1.5, nil, "y", int64(i)})
	}
	doc, err := NewPDFRenderer().Render(sampleMeta(), result)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))

	doc, err = NewPDFRenderer().Render(sampleMeta(), report.Result{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", cellText(nil))
	assert.Equal(t, "12.50", cellText(12.5))
	assert.Equal(t, "7", cellText(7))
	assert.Equal(t, "abc", cellText("abc"))
}

func TestNewRenderers(t *testing.T) {
	r := NewRenderers()
	assert.Contains(t, r, report.FormatPDF)
	assert.Contains(t, r, report.FormatExcel)
	assert.NotContains(t, r, report.FormatScreen)
}
