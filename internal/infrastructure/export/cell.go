package export

import (
	"fmt"
	"strconv"
	"strings"

	"jan-server/services/report-api/internal/domain/report"
)

const (
	ContentTypePDF   = "application/pdf"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// NewRenderers returns the document renderers keyed by format.
func NewRenderers() report.Renderers {
	return report.Renderers{
		report.FormatPDF:   NewPDFRenderer(),
		report.FormatExcel: NewExcelRenderer(),
	}
}

// summaryLines is the meta header printed above every document table.
func summaryLines(meta report.DocumentMeta) []string {
	lines := []string{
		fmt.Sprintf("Rango: %s a %s", meta.Range.Start, meta.Range.End),
	}
	if len(meta.GroupedBy) > 0 {
		lines = append(lines, "Agrupado por: "+strings.Join(meta.GroupedBy, ", "))
	}
	lines = append(lines, "Tipo: "+string(meta.Intent))
	if !meta.GeneratedAt.IsZero() {
		lines = append(lines, "Generado: "+meta.GeneratedAt.Format("2006-01-02 15:04"))
	}
	return lines
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 2, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
