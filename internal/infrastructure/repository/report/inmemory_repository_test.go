package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "jan-server/services/report-api/internal/domain/report"
)

var refTime = time.Date(2025, time.September, 17, 12, 0, 0, 0, time.UTC)

func newDemoRepo() *InMemoryRepository {
	return NewInMemoryRepository(DemoDataset(refTime, time.UTC))
}

func septemberSpec(dims, metrics []string) domain.Spec {
	return domain.Spec{
		Intent:     domain.IntentSales,
		Dimensions: dims,
		Metrics:    metrics,
		StartDate:  domain.NewDate(2025, time.September, 1),
		EndDate:    domain.NewDate(2025, time.September, 17),
		Format:     domain.FormatScreen,
	}
}

func planFor(spec domain.Spec) domain.QueryPlan {
	return domain.CompilePlan(spec, domain.DefaultRegistry(), time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, "want "+want+", got "+got.String(), msgAndArgs...)
	}
}

func TestAggregateCountsOrderTotalsOncePerGroup(t *testing.T) {
	repo := newDemoRepo()
	plan := planFor(septemberSpec([]string{"cliente"}, []string{"monto_total", "num_ventas"}))
	require.Equal(t, domain.ModeOrderTotal, plan.Mode)

	rows, err := repo.Aggregate(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Ana Pérez"}, rows[0].Groups)
	assertDecimal(t, "210", rows[0].Values[0])
	assertDecimal(t, "1", rows[0].Values[1])

	assert.Equal(t, []string{"Bruno Díaz"}, rows[1].Groups)
	assertDecimal(t, "137.5", rows[1].Values[0], "order total including shipping")
	assertDecimal(t, "1", rows[1].Values[1])
}

func TestAggregateOrderTotalVersusLineSubtotals(t *testing.T) {
	repo := newDemoRepo()
	// V-0002 has lines of 45 and 80 and a total of 137.50.
	bruno := []domain.Filter{{Field: "cliente", Op: domain.OpContains, Value: "bruno"}}

	sum := func(dims []string) (decimal.Decimal, domain.AggregationMode) {
		spec := septemberSpec(dims, []string{"monto_total"})
		spec.Filters = bruno
		plan := planFor(spec)
		rows, err := repo.Aggregate(context.Background(), plan)
		require.NoError(t, err)
		total := decimal.Zero
		for _, row := range rows {
			total = total.Add(row.Values[0])
		}
		return total, plan.Mode
	}

	tests := []struct {
		dims []string
		mode domain.AggregationMode
		want string
	}{
		{[]string{"producto"}, domain.ModeLineSubtotal, "125"},
		{[]string{"categoria"}, domain.ModeLineSubtotal, "125"},
		{[]string{"marca"}, domain.ModeLineSubtotal, "125"},
		{[]string{"mes"}, domain.ModeOrderTotal, "137.5"},
		{[]string{"cliente"}, domain.ModeOrderTotal, "137.5"},
		{[]string{"cliente", "mes"}, domain.ModeOrderTotal, "137.5"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.dims, "+"), func(t *testing.T) {
			got, mode := sum(tt.dims)
			assert.Equal(t, tt.mode, mode)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestAggregateProductShapedCategoryUsesLines(t *testing.T) {
	repo := newDemoRepo()
	plan := planFor(septemberSpec([]string{"categoria"}, []string{"monto_total", "num_ventas"}))
	require.Equal(t, domain.ModeLineSubtotal, plan.Mode)

	rows, err := repo.Aggregate(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Periféricos"}, rows[0].Groups)
	assertDecimal(t, "255", rows[0].Values[0])
	assertDecimal(t, "2", rows[0].Values[1])
	assert.Equal(t, []string{"Audio"}, rows[1].Groups)
	assertDecimal(t, "80", rows[1].Values[0])
	assertDecimal(t, "1", rows[1].Values[1])
}

func TestAggregateSumsLineSubtotalsForProducts(t *testing.T) {
	repo := newDemoRepo()
	spec := septemberSpec([]string{"producto"}, []string{"monto_total", "unidades"})
	spec.OrderBy = []string{"unidades"}
	spec.OrderDir = domain.OrderDesc
	plan := planFor(spec)
	require.Equal(t, domain.ModeLineSubtotal, plan.Mode)

	rows, err := repo.Aggregate(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Mouse Logitech G502 Hero", rows[0].Groups[0])
	assertDecimal(t, "135", rows[0].Values[0])
	assertDecimal(t, "3", rows[0].Values[1])
	// ties break on the group ascending
	assert.Equal(t, "Auriculares HyperX Cloud II", rows[1].Groups[0])
	assert.Equal(t, "Teclado Razer BlackWidow", rows[2].Groups[0])
}

func TestAggregateWithoutGroupsReturnsTotals(t *testing.T) {
	repo := newDemoRepo()
	rows, err := repo.Aggregate(context.Background(),
		planFor(septemberSpec(nil, []string{"monto_total", "num_ventas", "ticket_promedio"})))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assertDecimal(t, "347.5", rows[0].Values[0])
	assertDecimal(t, "2", rows[0].Values[1])
	assertDecimal(t, "173.75", rows[0].Values[2])
}

func TestAggregateEmptyRangeWithoutGroupsYieldsZeroRow(t *testing.T) {
	repo := newDemoRepo()
	spec := septemberSpec(nil, []string{"monto_total"})
	spec.StartDate = domain.NewDate(2024, time.January, 1)
	spec.EndDate = domain.NewDate(2024, time.January, 31)

	rows, err := repo.Aggregate(context.Background(), planFor(spec))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Values[0].IsZero())
}

func TestAggregateMonthBucketsAscending(t *testing.T) {
	repo := newDemoRepo()
	spec := septemberSpec([]string{"mes"}, []string{"monto_total"})
	spec.StartDate = domain.NewDate(2025, time.August, 1)

	rows, err := repo.Aggregate(context.Background(), planFor(spec))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-08", rows[0].Groups[0])
	assertDecimal(t, "390", rows[0].Values[0])
	assert.Equal(t, "2025-09", rows[1].Groups[0])
	assertDecimal(t, "347.5", rows[1].Values[0], "order totals, not line subtotals")
}

func TestAggregateAppliesFiltersAndLimit(t *testing.T) {
	repo := newDemoRepo()

	spec := septemberSpec(nil, []string{"monto_total"})
	spec.Filters = []domain.Filter{{Field: "cliente", Op: domain.OpContains, Value: "ana"}}
	rows, err := repo.Aggregate(context.Background(), planFor(spec))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assertDecimal(t, "210", rows[0].Values[0])

	limit := 1
	spec = septemberSpec([]string{"producto"}, []string{"unidades"})
	spec.Limit = &limit
	rows, err = repo.Aggregate(context.Background(), planFor(spec))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mouse Logitech G502 Hero", rows[0].Groups[0])
}

func TestCatalogBelowMinimumOrdersByStock(t *testing.T) {
	repo := newDemoRepo()
	items, err := repo.Catalog(context.Background(), domain.CatalogQuery{
		BelowMinimum: true,
		ActiveOnly:   true,
		Order:        domain.CatalogByStockAsc,
	})
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Mousepad Razer Gigantus", "Monitor Samsung Odyssey 27", "Teclado Razer BlackWidow"}, names)
}

func TestCatalogThresholdPredicate(t *testing.T) {
	repo := newDemoRepo()
	items, err := repo.Catalog(context.Background(), domain.CatalogQuery{
		Predicates: []domain.Predicate{{Column: domain.ColumnStock, Op: domain.OpLt, Value: "3"}},
		ActiveOnly: true,
		Order:      domain.CatalogByStockAsc,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Stock)
	assert.Equal(t, 2, items[1].Stock)

	_, err = repo.Catalog(context.Background(), domain.CatalogQuery{
		Predicates: []domain.Predicate{{Column: domain.ColumnStock, Op: domain.OpLt, Value: "diez"}},
	})
	assert.True(t, domain.IsInputError(err, domain.CodeInvalidSpec))
}

func TestCatalogUnsoldInRange(t *testing.T) {
	repo := newDemoRepo()
	rng := domain.DateRange{Start: domain.NewDate(2025, time.September, 1), End: domain.NewDate(2025, time.September, 17)}
	items, err := repo.Catalog(context.Background(), domain.CatalogQuery{
		ActiveOnly: true,
		UnsoldIn:   &rng,
		Location:   time.UTC,
	})
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Monitor Samsung Odyssey 27", "Mousepad Razer Gigantus", "Webcam Logitech C920"}, names)
}

func TestFindProduct(t *testing.T) {
	repo := newDemoRepo()

	item, ok, err := repo.FindProduct(context.Background(), "MOUSE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mouse Logitech G502 Hero", item.Name)
	assert.Equal(t, "Logitech", item.Brand)
	assertDecimal(t, "45", item.Price)

	_, ok, err = repo.FindProduct(context.Background(), "parlante")
	require.NoError(t, err)
	assert.False(t, ok, "inactive products are not sellable")
}
