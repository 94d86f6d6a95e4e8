package classifier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// BaseExamples is the curated seed dataset every training run starts from.
var BaseExamples = []Example{
	{"reporte de ventas del mes pasado", "ventas"},
	{"ventas por producto en septiembre", "ventas"},
	{"ventas por cliente del 01/09/2025 al 30/09/2025", "ventas"},
	{"ventas por categoría en excel", "ventas"},
	{"reporte de ventas por mes", "ventas"},
	{"ver inventario", "stock"},
	{"lista de stock por categoria", "stock"},
	{"mostrar stock de productos gamer", "stock"},
	{"reporte de inventario por marca", "stock"},
	{"productos con poco stock", "stock_bajo"},
	{"stock menor a 10 unidades", "stock_bajo"},
	{"reponer productos con stock bajo", "stock_bajo"},
	{"productos con stock por debajo del mínimo", "stock_bajo"},
	{"lista de precios", "precios"},
	{"precios por categoría", "precios"},
	{"catálogo de precios en excel", "precios"},
	{"precios de productos gamer", "precios"},
	{"top 10 productos más vendidos", "top_productos"},
	{"ranking de productos en ventas", "top_productos"},
	{"los más vendidos del mes", "top_productos"},
	{"productos sin ventas", "sin_movimiento"},
	{"artículos sin movimiento en septiembre", "sin_movimiento"},
	{"no se han vendido estos productos", "sin_movimiento"},
	{"productos que no se vendieron el mes pasado", "sin_movimiento"},
}

// ReadCSV parses headerless "text","label" rows. Short or blank rows are skipped.
func ReadCSV(r io.Reader) ([]Example, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var out []Example
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read training csv: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		text, label := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if text == "" || label == "" {
			continue
		}
		out = append(out, Example{Text: text, Label: label})
	}
}

// WriteCSV writes examples in the format ReadCSV accepts.
func WriteCSV(w io.Writer, examples []Example) error {
	writer := csv.NewWriter(w)
	for _, ex := range examples {
		if err := writer.Write([]string{ex.Text, ex.Label}); err != nil {
			return fmt.Errorf("write training csv: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadDataset returns the seed examples plus any labeled rows at path.
// A missing file is not an error.
func LoadDataset(path string) ([]Example, error) {
	out := append([]Example(nil), BaseExamples...)
	if path == "" {
		return out, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("open training csv: %w", err)
	}
	defer f.Close()

	extra, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return append(out, extra...), nil
}
