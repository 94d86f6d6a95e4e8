package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column is a logical attribute the stores know how to read.
type Column string

const (
	ColumnProduct  Column = "producto"
	ColumnClient   Column = "cliente"
	ColumnCategory Column = "categoria"
	ColumnBrand    Column = "marca"
	ColumnSaleDate Column = "fecha"
	ColumnStock    Column = "stock"
	ColumnMinStock Column = "stock_minimo"
	ColumnPrice    Column = "precio"
)

// Numeric reports whether the column compares as a number.
func (c Column) Numeric() bool {
	return c == ColumnStock || c == ColumnMinStock || c == ColumnPrice
}

// Predicate is a single row condition.
type Predicate struct {
	Column Column
	Op     Operator
	Value  string
}

// GroupColumn is one GROUP BY term.
type GroupColumn struct {
	Key    string
	Header string
	Column Column
	Bucket TimeBucket
}

// Aggregate is one computed metric column.
type Aggregate struct {
	Key    string
	Header string
	Kind   MetricKind
}

// AggregationMode decides how monetary totals are summed.
type AggregationMode int

const (
	// ModeLineSubtotal sums line-item subtotals. Used when a group splits
	// orders across rows.
	ModeLineSubtotal AggregationMode = iota
	// ModeOrderTotal sums each distinct order's total once per group.
	ModeOrderTotal
)

func (m AggregationMode) String() string {
	if m == ModeOrderTotal {
		return "order_total"
	}
	return "line_subtotal"
}

// OrderTerm sorts by a group or aggregate key.
type OrderTerm struct {
	Ref  string
	Desc bool
}

// QueryPlan is the store-independent form of an aggregation request.
type QueryPlan struct {
	Range      DateRange
	Location   *time.Location
	Statuses   []string
	Predicates []Predicate
	GroupBy    []GroupColumn
	Aggregates []Aggregate
	Mode       AggregationMode
	Order      []OrderTerm
	Limit      int
}

// Headers lists group headers followed by aggregate headers.
func (p QueryPlan) Headers() []string {
	headers := make([]string, 0, len(p.GroupBy)+len(p.Aggregates))
	for _, g := range p.GroupBy {
		headers = append(headers, g.Header)
	}
	for _, a := range p.Aggregates {
		headers = append(headers, a.Header)
	}
	return headers
}

// GroupIndex returns the position of a group key.
func (p QueryPlan) GroupIndex(key string) int {
	for i, g := range p.GroupBy {
		if g.Key == key {
			return i
		}
	}
	return -1
}

// AggregateIndex returns the position of an aggregate key.
func (p QueryPlan) AggregateIndex(key string) int {
	for i, a := range p.Aggregates {
		if a.Key == key {
			return i
		}
	}
	return -1
}

// AggregateRow is one result row: formatted group values and raw metric values.
type AggregateRow struct {
	Groups []string
	Values []decimal.Decimal
}

// PaidStatuses are the order states counted as sales.
var PaidStatuses = []string{"pagada"}

// CompilePlan lowers a spec into a QueryPlan. Product-shaped dimensions force
// line-subtotal summation; otherwise order totals are summed once per order.
// Order keys that are neither grouped nor aggregated are dropped.
func CompilePlan(spec Spec, reg *Registry, loc *time.Location) QueryPlan {
	if loc == nil {
		loc = time.UTC
	}
	plan := QueryPlan{
		Range:    DateRange{Start: spec.StartDate, End: spec.EndDate},
		Location: loc,
		Statuses: PaidStatuses,
		Mode:     ModeOrderTotal,
	}

	for _, key := range spec.Dimensions {
		d, ok := reg.Dimension(key)
		if !ok || plan.GroupIndex(key) >= 0 {
			continue
		}
		if d.ProductShaped() {
			plan.Mode = ModeLineSubtotal
		}
		plan.GroupBy = append(plan.GroupBy, GroupColumn{
			Key:    d.Key,
			Header: d.Label,
			Column: Column(d.Field),
			Bucket: d.Bucket,
		})
	}
	for _, key := range spec.Metrics {
		m, ok := reg.Metric(key)
		if !ok || plan.AggregateIndex(key) >= 0 {
			continue
		}
		plan.Aggregates = append(plan.Aggregates, Aggregate{Key: m.Key, Header: m.Label, Kind: m.Kind})
	}

	plan.Predicates = salesPredicates(spec.Filters)
	plan.Order = compileOrder(spec, plan)
	if spec.Limit != nil && *spec.Limit > 0 {
		plan.Limit = *spec.Limit
	}
	return plan
}

func compileOrder(spec Spec, plan QueryPlan) []OrderTerm {
	var terms []OrderTerm
	for _, raw := range spec.OrderBy {
		key := strings.TrimSpace(raw)
		desc := spec.OrderDir != OrderAsc
		if strings.HasPrefix(key, "-") {
			key, desc = key[1:], true
		}
		if plan.GroupIndex(key) < 0 && plan.AggregateIndex(key) < 0 {
			continue
		}
		terms = append(terms, OrderTerm{Ref: key, Desc: desc})
	}
	if len(terms) == 0 {
		if allTemporal(plan.GroupBy) {
			for _, g := range plan.GroupBy {
				terms = append(terms, OrderTerm{Ref: g.Key, Desc: spec.OrderDir == OrderDesc})
			}
		} else if primary, ok := primaryAggregate(plan.Aggregates); ok {
			terms = append(terms, OrderTerm{Ref: primary.Key, Desc: spec.OrderDir != OrderAsc})
		}
	}
	for _, g := range plan.GroupBy {
		if !hasTerm(terms, g.Key) {
			terms = append(terms, OrderTerm{Ref: g.Key})
		}
	}
	return terms
}

// primaryAggregate is the first amount metric, or the first metric when no
// amount was requested.
func primaryAggregate(aggs []Aggregate) (Aggregate, bool) {
	if len(aggs) == 0 {
		return Aggregate{}, false
	}
	for _, a := range aggs {
		if a.Kind == MetricAmount {
			return a, true
		}
	}
	return aggs[0], true
}

func allTemporal(groups []GroupColumn) bool {
	if len(groups) == 0 {
		return false
	}
	for _, g := range groups {
		if g.Column != ColumnSaleDate {
			return false
		}
	}
	return true
}

func hasTerm(terms []OrderTerm, ref string) bool {
	for _, t := range terms {
		if t.Ref == ref {
			return true
		}
	}
	return false
}

// salesColumns are the filter fields that apply to sale lines.
var salesColumns = map[string]Column{
	"producto":  ColumnProduct,
	"cliente":   ColumnClient,
	"categoria": ColumnCategory,
	"marca":     ColumnBrand,
}

// catalogColumns are the filter fields that apply to catalog rows.
var catalogColumns = map[string]Column{
	"producto":     ColumnProduct,
	"categoria":    ColumnCategory,
	"marca":        ColumnBrand,
	"stock":        ColumnStock,
	"stock_minimo": ColumnMinStock,
	"precio":       ColumnPrice,
}

func salesPredicates(filters []Filter) []Predicate {
	return predicatesFor(filters, salesColumns)
}

func catalogPredicates(filters []Filter) []Predicate {
	return predicatesFor(filters, catalogColumns)
}

func predicatesFor(filters []Filter, columns map[string]Column) []Predicate {
	var out []Predicate
	for _, f := range filters {
		col, ok := columns[strings.ToLower(strings.TrimSpace(f.Field))]
		if !ok {
			continue
		}
		out = append(out, Predicate{Column: col, Op: f.Op, Value: f.Value})
	}
	return out
}

// FormatBucket renders a truncated timestamp for display.
func FormatBucket(bucket TimeBucket, t time.Time) string {
	switch bucket {
	case BucketDay:
		return t.Format("2006-01-02")
	case BucketWeek:
		return t.Format("2006-01-02")
	case BucketMonth:
		return t.Format("2006-01")
	case BucketQuarter:
		return t.Format("2006") + "-T" + strconv.Itoa((int(t.Month())-1)/3+1)
	case BucketYear:
		return t.Format("2006")
	default:
		return t.Format(time.RFC3339)
	}
}

// TruncateBucket truncates t, already in the report location, to the start of its bucket.
func TruncateBucket(bucket TimeBucket, t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch bucket {
	case BucketWeek:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case BucketMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case BucketQuarter:
		return time.Date(y, ((m-1)/3)*3+1, 1, 0, 0, 0, 0, loc)
	case BucketYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}
