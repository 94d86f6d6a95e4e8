package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"jan-server/services/report-api/internal/domain/report"
)

const sheetName = "Reporte"

// ExcelRenderer writes a result as a single-sheet xlsx workbook.
type ExcelRenderer struct{}

func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

func (r *ExcelRenderer) Render(meta report.DocumentMeta, result report.Result) (report.Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return report.Document{}, fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return report.Document{}, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
	})
	if err != nil {
		return report.Document{}, err
	}

	row := 1
	if err := f.SetCellValue(sheetName, "A1", meta.Title); err != nil {
		return report.Document{}, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return report.Document{}, err
	}
	for _, line := range summaryLines(meta) {
		row++
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), line); err != nil {
			return report.Document{}, err
		}
	}

	headerRow := row + 2
	for i, h := range result.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return report.Document{}, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return report.Document{}, err
		}
	}
	if n := len(result.Headers); n > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(n, headerRow)
		if err := f.SetCellStyle(sheetName, first, last, headerStyle); err != nil {
			return report.Document{}, err
		}
		lastCol, _ := excelize.ColumnNumberToName(n)
		if err := f.SetColWidth(sheetName, "A", lastCol, 22); err != nil {
			return report.Document{}, err
		}
		topLeft, _ := excelize.CoordinatesToCellName(1, headerRow+1)
		if err := f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: topLeft,
			ActivePane:  "bottomLeft",
		}); err != nil {
			return report.Document{}, err
		}
	}

	for i, values := range result.Rows {
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			if err != nil {
				return report.Document{}, err
			}
			if v == nil {
				continue
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return report.Document{}, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return report.Document{}, fmt.Errorf("write workbook: %w", err)
	}
	return report.Document{
		Filename:    "reporte.xlsx",
		ContentType: ContentTypeExcel,
		Body:        buf.Bytes(),
	}, nil
}
