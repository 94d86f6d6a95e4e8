package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	domain "jan-server/services/report-api/internal/domain/report"
)

// PostgresRepository reads the commerce schema via GORM. Reads are routed to
// the replica when one is registered.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a store backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ domain.Store = (*PostgresRepository)(nil)

// Aggregate runs the plan and returns one row per group.
func (r *PostgresRepository) Aggregate(ctx context.Context, plan domain.QueryPlan) ([]domain.AggregateRow, error) {
	query, err := r.aggregateQuery(r.db.WithContext(ctx).Clauses(dbresolver.Read), plan)
	if err != nil {
		return nil, err
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}
	defer rows.Close()

	var out []domain.AggregateRow
	for rows.Next() {
		groups := make([]sql.NullString, len(plan.GroupBy))
		values := make([]decimal.NullDecimal, len(plan.Aggregates))
		dest := make([]any, 0, len(groups)+len(values))
		for i := range groups {
			dest = append(dest, &groups[i])
		}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}

		row := domain.AggregateRow{
			Groups: make([]string, len(groups)),
			Values: make([]decimal.Decimal, len(values)),
		}
		for i, g := range groups {
			row.Groups[i] = g.String
		}
		for i, v := range values {
			if v.Valid {
				row.Values[i] = v.Decimal
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregate rows: %w", err)
	}
	return out, nil
}

// aggregateQuery builds the SELECT for plan on tx without executing it.
// Order-total mode first collapses lines into one row per (groups, order) so
// each order total is summed once.
func (r *PostgresRepository) aggregateQuery(tx *gorm.DB, plan domain.QueryPlan) (*gorm.DB, error) {
	tz := "UTC"
	if plan.Location != nil {
		tz = plan.Location.String()
	}

	groupTerms := make([]string, 0, len(plan.GroupBy))
	var groupArgs []any
	for i, g := range plan.GroupBy {
		term, args := groupSelect(i, g, tz)
		groupTerms = append(groupTerms, term)
		groupArgs = append(groupArgs, args...)
	}
	aliases := groupAliases(len(plan.GroupBy))

	metricTerms := make([]string, 0, len(plan.Aggregates))
	for i, a := range plan.Aggregates {
		metricTerms = append(metricTerms, fmt.Sprintf("%s AS a%d", aggregateExpr(a.Kind, plan.Mode), i))
	}

	var query *gorm.DB
	if plan.Mode == domain.ModeOrderTotal {
		lines, err := r.salesLines(tx.Session(&gorm.Session{NewDB: true}), plan)
		if err != nil {
			return nil, err
		}
		innerSelect := append(append([]string{}, groupTerms...),
			"v.id AS venta_id", "MAX(v.total) AS venta_total", "SUM(i.cantidad) AS unidades")
		inner := lines.Select(strings.Join(innerSelect, ", "), groupArgs...).
			Group(strings.Join(append(append([]string{}, aliases...), "v.id"), ", "))

		outerSelect := make([]string, 0, len(aliases)+len(metricTerms))
		for _, a := range aliases {
			outerSelect = append(outerSelect, "t."+a+" AS "+a)
		}
		outerSelect = append(outerSelect, metricTerms...)
		query = tx.Table("(?) AS t", inner).Select(strings.Join(outerSelect, ", "))
	} else {
		lines, err := r.salesLines(tx, plan)
		if err != nil {
			return nil, err
		}
		query = lines.Select(strings.Join(append(groupTerms, metricTerms...), ", "), groupArgs...)
	}

	if len(aliases) > 0 {
		query = query.Group(strings.Join(aliases, ", "))
	}
	if order := orderClause(plan); order != "" {
		query = query.Order(order)
	}
	if plan.Limit > 0 {
		query = query.Limit(plan.Limit)
	}
	return query, nil
}

// salesLines is the filtered FROM/WHERE shared by both aggregation modes.
func (r *PostgresRepository) salesLines(tx *gorm.DB, plan domain.QueryPlan) (*gorm.DB, error) {
	tx = tx.Table(salesFrom)
	if len(plan.Statuses) > 0 {
		tx = tx.Where("v.estado IN ?", plan.Statuses)
	}
	if !plan.Range.Start.IsZero() {
		tx = tx.Where("v.creado_en >= ?", plan.Range.Start.StartIn(plan.Location))
	}
	if !plan.Range.End.IsZero() {
		tx = tx.Where("v.creado_en < ?", plan.Range.End.EndIn(plan.Location))
	}
	return applyPredicates(tx, plan.Predicates)
}

func orderClause(plan domain.QueryPlan) string {
	terms := make([]string, 0, len(plan.Order))
	for _, o := range plan.Order {
		var alias string
		if i := plan.GroupIndex(o.Ref); i >= 0 {
			alias = fmt.Sprintf("g%d", i)
		} else if i := plan.AggregateIndex(o.Ref); i >= 0 {
			alias = fmt.Sprintf("a%d", i)
		} else {
			continue
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, alias+" "+dir)
	}
	return strings.Join(terms, ", ")
}

type catalogRow struct {
	ID          int64
	Nombre      string
	Categoria   sql.NullString
	Marca       sql.NullString
	Precio      decimal.Decimal
	Stock       int
	StockMinimo *int
	Activo      bool
}

func (row catalogRow) toDomain() domain.CatalogItem {
	return domain.CatalogItem{
		ID:       row.ID,
		Name:     row.Nombre,
		Category: row.Categoria.String,
		Brand:    row.Marca.String,
		Price:    row.Precio,
		Stock:    row.Stock,
		MinStock: row.StockMinimo,
		Active:   row.Activo,
	}
}

// Catalog lists products matching query.
func (r *PostgresRepository) Catalog(ctx context.Context, query domain.CatalogQuery) ([]domain.CatalogItem, error) {
	tx, err := r.catalogQuery(r.db.WithContext(ctx).Clauses(dbresolver.Read), query)
	if err != nil {
		return nil, err
	}
	var rows []catalogRow
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	out := make([]domain.CatalogItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

const catalogSelect = "p.id, p.nombre, cat.nombre AS categoria, m.nombre AS marca, p.precio, p.stock, p.stock_minimo, p.activo"

func (r *PostgresRepository) catalogBase(tx *gorm.DB) *gorm.DB {
	return tx.Table("catalogo_producto AS p").
		Select(catalogSelect).
		Joins("LEFT JOIN catalogo_categoria AS cat ON cat.id = p.categoria_id").
		Joins("LEFT JOIN catalogo_marca AS m ON m.id = p.marca_id")
}

func (r *PostgresRepository) catalogQuery(tx *gorm.DB, query domain.CatalogQuery) (*gorm.DB, error) {
	tx = r.catalogBase(tx)
	if query.ActiveOnly {
		tx = tx.Where("p.activo = ?", true)
	}
	tx, err := applyPredicates(tx, query.Predicates)
	if err != nil {
		return nil, err
	}
	if query.BelowMinimum {
		tx = tx.Where("p.stock_minimo IS NOT NULL AND p.stock < p.stock_minimo")
	}
	if query.UnsoldIn != nil {
		loc := query.Location
		sold := tx.Session(&gorm.Session{NewDB: true}).
			Table("ventas_itemventa AS si").
			Select("1").
			Joins("JOIN ventas_venta AS sv ON sv.id = si.venta_id").
			Where("si.producto_id = p.id").
			Where("sv.estado IN ?", domain.PaidStatuses).
			Where("sv.creado_en >= ?", query.UnsoldIn.Start.StartIn(loc)).
			Where("sv.creado_en < ?", query.UnsoldIn.End.EndIn(loc))
		tx = tx.Where("NOT EXISTS (?)", sold)
	}

	switch query.Order {
	case domain.CatalogByStockAsc:
		tx = tx.Order("p.stock ASC").Order("p.nombre ASC")
	default:
		tx = tx.Order("p.nombre ASC")
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	return tx, nil
}

// FindProduct returns the first active product, by name, whose name contains name.
func (r *PostgresRepository) FindProduct(ctx context.Context, name string) (domain.CatalogItem, bool, error) {
	var row catalogRow
	err := r.catalogBase(r.db.WithContext(ctx).Clauses(dbresolver.Read)).
		Where("p.activo = ?", true).
		Where("p.nombre ILIKE ?", "%"+escapeLike(name)+"%").
		Order("p.nombre ASC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CatalogItem{}, false, nil
		}
		return domain.CatalogItem{}, false, fmt.Errorf("find product: %w", err)
	}
	return row.toDomain(), true, nil
}
