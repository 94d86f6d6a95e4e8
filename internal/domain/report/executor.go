package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Result is a tabular report: one header per column, rows of scalars.
type Result struct {
	Headers []string  `json:"headers"`
	Rows    [][]any   `json:"rows"`
	Cart    *CartItem `json:"cart,omitempty"`
}

// CartItem is the product resolved for an add-to-cart prompt.
type CartItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Stock     int     `json:"stock"`
}

// Executor runs specs against a Store.
type Executor struct {
	store    Store
	registry *Registry
	loc      *time.Location
	log      zerolog.Logger
}

func NewExecutor(store Store, registry *Registry, loc *time.Location, log zerolog.Logger) *Executor {
	if loc == nil {
		loc = time.UTC
	}
	return &Executor{
		store:    store,
		registry: registry,
		loc:      loc,
		log:      log.With().Str("component", "report-executor").Logger(),
	}
}

// Execute dispatches on intent. An empty result is not an error.
func (e *Executor) Execute(ctx context.Context, spec Spec) (Result, error) {
	switch spec.Intent {
	case IntentStock:
		return e.stock(ctx, spec)
	case IntentLowStock:
		return e.lowStock(ctx, spec)
	case IntentPrices:
		return e.prices(ctx, spec)
	case IntentNoMovement:
		return e.noMovement(ctx, spec)
	case IntentAddToCart:
		return e.cart(ctx, spec)
	default:
		return e.aggregate(ctx, spec)
	}
}

// Plan exposes the compiled aggregation plan for a spec.
func (e *Executor) Plan(spec Spec) QueryPlan {
	return CompilePlan(spec, e.registry, e.loc)
}

func (e *Executor) aggregate(ctx context.Context, spec Spec) (Result, error) {
	plan := e.Plan(spec)
	e.log.Debug().
		Str("intent", string(spec.Intent)).
		Str("mode", plan.Mode.String()).
		Int("groups", len(plan.GroupBy)).
		Int("aggregates", len(plan.Aggregates)).
		Msg("executing aggregation plan")

	rows, err := e.store.Aggregate(ctx, plan)
	if err != nil {
		return Result{}, fmt.Errorf("aggregate %s: %w", spec.Intent, err)
	}

	out := Result{Headers: plan.Headers(), Rows: make([][]any, 0, len(rows))}
	for _, row := range rows {
		cells := make([]any, 0, len(row.Groups)+len(row.Values))
		for _, g := range row.Groups {
			cells = append(cells, g)
		}
		for i, v := range row.Values {
			cells = append(cells, metricValue(plan.Aggregates[i].Kind, v))
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

func (e *Executor) stock(ctx context.Context, spec Spec) (Result, error) {
	items, err := e.store.Catalog(ctx, CatalogQuery{
		Predicates: catalogPredicates(spec.Filters),
		ActiveOnly: true,
		Order:      CatalogByName,
		Limit:      limitOf(spec),
	})
	if err != nil {
		return Result{}, fmt.Errorf("list stock: %w", err)
	}
	out := Result{
		Headers: []string{"Producto", "Categoría", "Marca", "Stock", "Stock mínimo", "Precio"},
		Rows:    make([][]any, 0, len(items)),
	}
	for _, it := range items {
		out.Rows = append(out.Rows, []any{it.Name, it.Category, it.Brand, it.Stock, minStockCell(it.MinStock), money(it.Price)})
	}
	return out, nil
}

// lowStock lists products under the explicit threshold, or under their own
// minimum when no threshold was given, lowest stock first.
func (e *Executor) lowStock(ctx context.Context, spec Spec) (Result, error) {
	query := CatalogQuery{
		Predicates: catalogPredicates(spec.Filters),
		ActiveOnly: true,
		Order:      CatalogByStockAsc,
		Limit:      limitOf(spec),
	}
	if spec.Threshold != nil {
		query.Predicates = append(query.Predicates, Predicate{Column: ColumnStock, Op: OpLt, Value: strconv.Itoa(*spec.Threshold)})
	} else {
		query.BelowMinimum = true
	}

	items, err := e.store.Catalog(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("list low stock: %w", err)
	}
	out := Result{
		Headers: []string{"Producto", "Categoría", "Stock", "Stock mínimo", "Sugerencia"},
		Rows:    make([][]any, 0, len(items)),
	}
	for _, it := range items {
		out.Rows = append(out.Rows, []any{it.Name, it.Category, it.Stock, minStockCell(it.MinStock), restockSuggestion(it, spec.Threshold)})
	}
	return out, nil
}

func (e *Executor) prices(ctx context.Context, spec Spec) (Result, error) {
	items, err := e.store.Catalog(ctx, CatalogQuery{
		Predicates: catalogPredicates(spec.Filters),
		ActiveOnly: true,
		Order:      CatalogByName,
		Limit:      limitOf(spec),
	})
	if err != nil {
		return Result{}, fmt.Errorf("list prices: %w", err)
	}
	out := Result{
		Headers: []string{"Producto", "Categoría", "Marca", "Precio", "Stock"},
		Rows:    make([][]any, 0, len(items)),
	}
	for _, it := range items {
		out.Rows = append(out.Rows, []any{it.Name, it.Category, it.Brand, money(it.Price), it.Stock})
	}
	return out, nil
}

func (e *Executor) noMovement(ctx context.Context, spec Spec) (Result, error) {
	rng := DateRange{Start: spec.StartDate, End: spec.EndDate}
	items, err := e.store.Catalog(ctx, CatalogQuery{
		Predicates: catalogPredicates(spec.Filters),
		ActiveOnly: true,
		UnsoldIn:   &rng,
		Location:   e.loc,
		Order:      CatalogByName,
		Limit:      limitOf(spec),
	})
	if err != nil {
		return Result{}, fmt.Errorf("list unsold products: %w", err)
	}
	out := Result{
		Headers: []string{"Producto", "Categoría", "Stock", "Precio", "Observación"},
		Rows:    make([][]any, 0, len(items)),
	}
	for _, it := range items {
		out.Rows = append(out.Rows, []any{it.Name, it.Category, it.Stock, money(it.Price), "Sin ventas en el período"})
	}
	return out, nil
}

// cart resolves the product named in the prompt. Not finding one is an input error.
func (e *Executor) cart(ctx context.Context, spec Spec) (Result, error) {
	name, ok := spec.FilterValue("producto")
	if !ok || strings.TrimSpace(name) == "" {
		return Result{}, NewInputError(CodeProductNotFound, "no se indicó qué producto agregar")
	}

	var (
		item  CatalogItem
		found bool
	)
	for _, candidate := range productNameCandidates(name) {
		var err error
		item, found, err = e.store.FindProduct(ctx, candidate)
		if err != nil {
			return Result{}, fmt.Errorf("find product: %w", err)
		}
		if found {
			break
		}
	}
	if !found {
		return Result{}, NewInputError(CodeProductNotFound, "no se encontró el producto \""+name+"\"")
	}

	qty := spec.Quantity
	if qty <= 0 {
		qty = defaultCartQuantity
	}
	subtotal := item.Price.Mul(decimal.NewFromInt(int64(qty)))
	cartItem := &CartItem{
		ProductID: item.ID,
		Name:      item.Name,
		UnitPrice: money(item.Price),
		Quantity:  qty,
		Subtotal:  money(subtotal),
		Stock:     item.Stock,
	}
	return Result{
		Headers: []string{"Producto", "Cantidad", "Precio unitario", "Subtotal"},
		Rows:    [][]any{{cartItem.Name, cartItem.Quantity, cartItem.UnitPrice, cartItem.Subtotal}},
		Cart:    cartItem,
	}, nil
}

// productNameCandidates tries the name as written, then a singular form.
func productNameCandidates(name string) []string {
	name = strings.TrimSpace(name)
	candidates := []string{name}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "es") && len(lower) > 4:
		candidates = append(candidates, name[:len(name)-2], name[:len(name)-1])
	case strings.HasSuffix(lower, "s") && len(lower) > 3:
		candidates = append(candidates, name[:len(name)-1])
	}
	return candidates
}

func restockSuggestion(it CatalogItem, threshold *int) string {
	target := 0
	if it.MinStock != nil {
		target = *it.MinStock
	}
	if threshold != nil && *threshold > target {
		target = *threshold
	}
	if target > it.Stock {
		return "Reponer hasta " + strconv.Itoa(target)
	}
	return "Reponer"
}

func metricValue(kind MetricKind, v decimal.Decimal) any {
	switch kind {
	case MetricUnits, MetricOrders:
		return v.IntPart()
	default:
		return money(v)
	}
}

func money(v decimal.Decimal) float64 {
	return v.Round(2).InexactFloat64()
}

func minStockCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func limitOf(spec Spec) int {
	if spec.Limit != nil && *spec.Limit > 0 {
		return *spec.Limit
	}
	return 0
}
