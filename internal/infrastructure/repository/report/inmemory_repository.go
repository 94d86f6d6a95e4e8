package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domain "jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/infrastructure/database/entities"
)

// InMemoryRepository evaluates plans over a Dataset. It mirrors the SQL
// semantics of PostgresRepository and backs demos and tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	data       Dataset
	categories map[uint]string
	brands     map[uint]string
	clients    map[uint]string
	products   map[uint]entities.Product
}

// NewInMemoryRepository indexes data.
func NewInMemoryRepository(data Dataset) *InMemoryRepository {
	r := &InMemoryRepository{}
	r.Replace(data)
	return r
}

var _ domain.Store = (*InMemoryRepository)(nil)

// Replace swaps the dataset.
func (r *InMemoryRepository) Replace(data Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
	r.categories = make(map[uint]string, len(data.Categories))
	for _, c := range data.Categories {
		r.categories[c.ID] = c.Nombre
	}
	r.brands = make(map[uint]string, len(data.Brands))
	for _, b := range data.Brands {
		r.brands[b.ID] = b.Nombre
	}
	r.clients = make(map[uint]string, len(data.Clients))
	for _, c := range data.Clients {
		r.clients[c.ID] = c.Nombre
	}
	r.products = make(map[uint]entities.Product, len(data.Products))
	for _, p := range data.Products {
		r.products[p.ID] = p
	}
}

// lineView is one sale line joined with its order and product.
type lineView struct {
	sale    entities.Sale
	item    entities.SaleItem
	product entities.Product
	client  string
}

type bucketAcc struct {
	groups []string
	amount decimal.Decimal
	units  decimal.Decimal
	orders map[uint]struct{}
}

// Aggregate evaluates plan over the dataset.
func (r *InMemoryRepository) Aggregate(ctx context.Context, plan domain.QueryPlan) ([]domain.AggregateRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	loc := plan.Location
	if loc == nil {
		loc = time.UTC
	}
	statuses := make(map[string]struct{}, len(plan.Statuses))
	for _, s := range plan.Statuses {
		statuses[s] = struct{}{}
	}

	var (
		order []string
		accs  = make(map[string]*bucketAcc)
		// seen tracks (group, order) pairs so order totals count once per group.
		seen = make(map[string]struct{})
	)
	for _, sale := range r.data.Sales {
		if len(statuses) > 0 {
			if _, ok := statuses[sale.Estado]; !ok {
				continue
			}
		}
		if !inRange(plan.Range, sale.CreadoEn, loc) {
			continue
		}
		for _, item := range sale.Items {
			line := lineView{sale: sale, item: item, product: r.products[item.ProductoID], client: r.clients[sale.ClienteID]}
			ok, err := r.matchesAll(plan.Predicates, line.product, line.client)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			groups := make([]string, len(plan.GroupBy))
			for i, g := range plan.GroupBy {
				groups[i] = r.groupValue(g, line, loc)
			}
			key := strings.Join(groups, "\x1f")
			acc, ok := accs[key]
			if !ok {
				acc = &bucketAcc{groups: groups, orders: make(map[uint]struct{})}
				accs[key] = acc
				order = append(order, key)
			}

			acc.units = acc.units.Add(decimal.NewFromInt(int64(item.Cantidad)))
			acc.orders[sale.ID] = struct{}{}
			if plan.Mode == domain.ModeLineSubtotal {
				acc.amount = acc.amount.Add(item.Subtotal)
				continue
			}
			pair := fmt.Sprintf("%s\x1e%d", key, sale.ID)
			if _, dup := seen[pair]; !dup {
				seen[pair] = struct{}{}
				acc.amount = acc.amount.Add(sale.Total)
			}
		}
	}

	if len(plan.GroupBy) == 0 && len(accs) == 0 {
		accs[""] = &bucketAcc{orders: map[uint]struct{}{}}
		order = append(order, "")
	}

	rows := make([]domain.AggregateRow, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		row := domain.AggregateRow{Groups: acc.groups, Values: make([]decimal.Decimal, len(plan.Aggregates))}
		if row.Groups == nil {
			row.Groups = []string{}
		}
		orders := decimal.NewFromInt(int64(len(acc.orders)))
		for i, a := range plan.Aggregates {
			switch a.Kind {
			case domain.MetricUnits:
				row.Values[i] = acc.units
			case domain.MetricOrders:
				row.Values[i] = orders
			case domain.MetricAvgTicket:
				if !orders.IsZero() {
					row.Values[i] = acc.amount.Div(orders)
				}
			default:
				row.Values[i] = acc.amount
			}
		}
		rows = append(rows, row)
	}

	sortRows(rows, plan)
	if plan.Limit > 0 && len(rows) > plan.Limit {
		rows = rows[:plan.Limit]
	}
	return rows, nil
}

func inRange(rng domain.DateRange, t time.Time, loc *time.Location) bool {
	if !rng.Start.IsZero() && t.Before(rng.Start.StartIn(loc)) {
		return false
	}
	if !rng.End.IsZero() && !t.Before(rng.End.EndIn(loc)) {
		return false
	}
	return true
}

func (r *InMemoryRepository) groupValue(g domain.GroupColumn, line lineView, loc *time.Location) string {
	switch g.Column {
	case domain.ColumnProduct:
		return line.product.Nombre
	case domain.ColumnClient:
		return line.client
	case domain.ColumnCategory:
		return r.categories[line.product.CategoriaID]
	case domain.ColumnBrand:
		if line.product.MarcaID == nil {
			return ""
		}
		return r.brands[*line.product.MarcaID]
	case domain.ColumnSaleDate:
		local := line.sale.CreadoEn.In(loc)
		return domain.FormatBucket(g.Bucket, domain.TruncateBucket(g.Bucket, local))
	}
	return ""
}

func sortRows(rows []domain.AggregateRow, plan domain.QueryPlan) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range plan.Order {
			var cmp int
			if gi := plan.GroupIndex(o.Ref); gi >= 0 {
				cmp = strings.Compare(rows[i].Groups[gi], rows[j].Groups[gi])
			} else if ai := plan.AggregateIndex(o.Ref); ai >= 0 {
				cmp = rows[i].Values[ai].Cmp(rows[j].Values[ai])
			}
			if cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// Catalog lists products matching query.
func (r *InMemoryRepository) Catalog(ctx context.Context, query domain.CatalogQuery) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sold map[uint]struct{}
	if query.UnsoldIn != nil {
		sold = r.soldProducts(*query.UnsoldIn, query.Location)
	}

	var out []domain.CatalogItem
	for _, p := range r.data.Products {
		if query.ActiveOnly && !p.Activo {
			continue
		}
		ok, err := r.matchesAll(query.Predicates, p, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if query.BelowMinimum && (p.StockMinimo == nil || p.Stock >= *p.StockMinimo) {
			continue
		}
		if sold != nil {
			if _, ok := sold[p.ID]; ok {
				continue
			}
		}
		out = append(out, r.toItem(p))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if query.Order == domain.CatalogByStockAsc && out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) soldProducts(rng domain.DateRange, loc *time.Location) map[uint]struct{} {
	if loc == nil {
		loc = time.UTC
	}
	paid := make(map[string]struct{}, len(domain.PaidStatuses))
	for _, s := range domain.PaidStatuses {
		paid[s] = struct{}{}
	}
	sold := make(map[uint]struct{})
	for _, sale := range r.data.Sales {
		if _, ok := paid[sale.Estado]; !ok || !inRange(rng, sale.CreadoEn, loc) {
			continue
		}
		for _, it := range sale.Items {
			sold[it.ProductoID] = struct{}{}
		}
	}
	return sold
}

// FindProduct returns the first active product, by name, containing name.
func (r *InMemoryRepository) FindProduct(ctx context.Context, name string) (domain.CatalogItem, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogItem{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	var matches []entities.Product
	for _, p := range r.data.Products {
		if p.Activo && strings.Contains(strings.ToLower(p.Nombre), needle) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return domain.CatalogItem{}, false, nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Nombre < matches[j].Nombre })
	return r.toItem(matches[0]), true, nil
}

func (r *InMemoryRepository) toItem(p entities.Product) domain.CatalogItem {
	item := domain.CatalogItem{
		ID:       int64(p.ID),
		Name:     p.Nombre,
		Category: r.categories[p.CategoriaID],
		Price:    p.Precio,
		Stock:    p.Stock,
		MinStock: p.StockMinimo,
		Active:   p.Activo,
	}
	if p.MarcaID != nil {
		item.Brand = r.brands[*p.MarcaID]
	}
	return item
}

func (r *InMemoryRepository) matchesAll(preds []domain.Predicate, p entities.Product, client string) (bool, error) {
	for _, pred := range preds {
		ok, err := r.matches(pred, p, client)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (r *InMemoryRepository) matches(pred domain.Predicate, p entities.Product, client string) (bool, error) {
	if pred.Column.Numeric() {
		var field *decimal.Decimal
		switch pred.Column {
		case domain.ColumnStock:
			v := decimal.NewFromInt(int64(p.Stock))
			field = &v
		case domain.ColumnMinStock:
			if p.StockMinimo != nil {
				v := decimal.NewFromInt(int64(*p.StockMinimo))
				field = &v
			}
		case domain.ColumnPrice:
			v := p.Precio
			field = &v
		}
		switch pred.Op {
		case domain.OpIsNull:
			return field == nil, nil
		case domain.OpNotNull:
			return field != nil, nil
		}
		want, err := decimal.NewFromString(strings.TrimSpace(pred.Value))
		if err != nil {
			return false, domain.NewInputError(domain.CodeInvalidSpec,
				fmt.Sprintf("el filtro %s requiere un número: %q", pred.Column, pred.Value))
		}
		if _, ok := comparison(pred.Op); !ok {
			return false, domain.NewInputError(domain.CodeInvalidSpec,
				fmt.Sprintf("operador %s no aplica a %s", pred.Op, pred.Column))
		}
		if field == nil {
			return false, nil
		}
		return compare(field.Cmp(want), pred.Op), nil
	}

	var text string
	switch pred.Column {
	case domain.ColumnProduct:
		text = p.Nombre
	case domain.ColumnClient:
		text = client
	case domain.ColumnCategory:
		text = r.categories[p.CategoriaID]
	case domain.ColumnBrand:
		if p.MarcaID != nil {
			text = r.brands[*p.MarcaID]
		}
	default:
		return true, nil
	}

	switch pred.Op {
	case domain.OpIsNull:
		return text == "", nil
	case domain.OpNotNull:
		return text != "", nil
	case domain.OpContains:
		return strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(pred.Value))), nil
	case domain.OpEq:
		return text != "" && strings.EqualFold(text, pred.Value), nil
	case domain.OpNeq:
		return !strings.EqualFold(text, pred.Value), nil
	default:
		if text == "" {
			return false, nil
		}
		return compare(strings.Compare(text, pred.Value), pred.Op), nil
	}
}

func compare(cmp int, op domain.Operator) bool {
	switch op {
	case domain.OpEq:
		return cmp == 0
	case domain.OpNeq:
		return cmp != 0
	case domain.OpLt:
		return cmp < 0
	case domain.OpLte:
		return cmp <= 0
	case domain.OpGt:
		return cmp > 0
	case domain.OpGte:
		return cmp >= 0
	}
	return false
}
