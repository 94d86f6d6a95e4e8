package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "jan-server/services/report-api/internal/domain/report"
)

const salesFrom = `ventas_itemventa AS i
	JOIN ventas_venta AS v ON v.id = i.venta_id
	JOIN catalogo_producto AS p ON p.id = i.producto_id
	LEFT JOIN catalogo_categoria AS cat ON cat.id = p.categoria_id
	LEFT JOIN catalogo_marca AS m ON m.id = p.marca_id
	LEFT JOIN clientes_cliente AS c ON c.id = v.cliente_id`

var columnExpr = map[domain.Column]string{
	domain.ColumnProduct:  "p.nombre",
	domain.ColumnClient:   "c.nombre",
	domain.ColumnCategory: "cat.nombre",
	domain.ColumnBrand:    "m.nombre",
	domain.ColumnStock:    "p.stock",
	domain.ColumnMinStock: "p.stock_minimo",
	domain.ColumnPrice:    "p.precio",
}

// bucketExpr renders a sale timestamp as the display label of its bucket in
// the report time zone. Labels sort chronologically as text.
func bucketExpr(bucket domain.TimeBucket) string {
	local := "(v.creado_en AT TIME ZONE ?)"
	switch bucket {
	case domain.BucketWeek:
		return "to_char(date_trunc('week', " + local + "), 'YYYY-MM-DD')"
	case domain.BucketMonth:
		return "to_char(" + local + ", 'YYYY-MM')"
	case domain.BucketQuarter:
		return "to_char(" + local + ", 'YYYY') || '-T' || to_char(" + local + ", 'Q')"
	case domain.BucketYear:
		return "to_char(" + local + ", 'YYYY')"
	default:
		return "to_char(" + local + ", 'YYYY-MM-DD')"
	}
}

// groupSelect returns the select term and bind args for group i.
func groupSelect(i int, g domain.GroupColumn, tz string) (string, []any) {
	alias := fmt.Sprintf("g%d", i)
	if g.Column == domain.ColumnSaleDate {
		expr := bucketExpr(g.Bucket)
		args := make([]any, strings.Count(expr, "?"))
		for j := range args {
			args[j] = tz
		}
		return expr + " AS " + alias, args
	}
	return fmt.Sprintf("COALESCE(%s, '') AS %s", columnExpr[g.Column], alias), nil
}

func groupAliases(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("g%d", i)
	}
	return out
}

// aggregateExpr is the metric over line rows (line mode) or over the
// per-order subquery t (order mode).
func aggregateExpr(kind domain.MetricKind, mode domain.AggregationMode) string {
	if mode == domain.ModeOrderTotal {
		switch kind {
		case domain.MetricUnits:
			return "COALESCE(SUM(t.unidades), 0)"
		case domain.MetricOrders:
			return "COUNT(t.venta_id)"
		case domain.MetricAvgTicket:
			return "COALESCE(SUM(t.venta_total) / NULLIF(COUNT(t.venta_id), 0), 0)"
		default:
			return "COALESCE(SUM(t.venta_total), 0)"
		}
	}
	switch kind {
	case domain.MetricUnits:
		return "COALESCE(SUM(i.cantidad), 0)"
	case domain.MetricOrders:
		return "COUNT(DISTINCT v.id)"
	case domain.MetricAvgTicket:
		return "COALESCE(SUM(i.subtotal) / NULLIF(COUNT(DISTINCT v.id), 0), 0)"
	default:
		return "COALESCE(SUM(i.subtotal), 0)"
	}
}

// applyPredicates adds WHERE terms for each predicate.
func applyPredicates(tx *gorm.DB, preds []domain.Predicate) (*gorm.DB, error) {
	for _, p := range preds {
		expr, ok := columnExpr[p.Column]
		if !ok {
			continue
		}
		switch p.Op {
		case domain.OpIsNull:
			tx = tx.Where(expr + " IS NULL")
			continue
		case domain.OpNotNull:
			tx = tx.Where(expr + " IS NOT NULL")
			continue
		}

		if p.Column.Numeric() {
			value, err := decimal.NewFromString(strings.TrimSpace(p.Value))
			if err != nil {
				return nil, domain.NewInputError(domain.CodeInvalidSpec,
					fmt.Sprintf("el filtro %s requiere un número: %q", p.Column, p.Value))
			}
			op, ok := comparison(p.Op)
			if !ok {
				return nil, domain.NewInputError(domain.CodeInvalidSpec,
					fmt.Sprintf("operador %s no aplica a %s", p.Op, p.Column))
			}
			tx = tx.Where(expr+" "+op+" ?", value)
			continue
		}

		switch p.Op {
		case domain.OpContains:
			tx = tx.Where(expr+" ILIKE ?", "%"+escapeLike(p.Value)+"%")
		case domain.OpEq:
			tx = tx.Where("LOWER("+expr+") = LOWER(?)", p.Value)
		case domain.OpNeq:
			tx = tx.Where("("+expr+" IS NULL OR LOWER("+expr+") <> LOWER(?))", p.Value)
		default:
			op, _ := comparison(p.Op)
			tx = tx.Where(expr+" "+op+" ?", p.Value)
		}
	}
	return tx, nil
}

func comparison(op domain.Operator) (string, bool) {
	switch op {
	case domain.OpEq:
		return "=", true
	case domain.OpNeq:
		return "<>", true
	case domain.OpLt:
		return "<", true
	case domain.OpLte:
		return "<=", true
	case domain.OpGt:
		return ">", true
	case domain.OpGte:
		return ">=", true
	}
	return "", false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(strings.TrimSpace(s))
}
