package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogOrder selects the sort of catalog listings.
type CatalogOrder int

const (
	CatalogByName CatalogOrder = iota
	CatalogByStockAsc
)

// CatalogQuery filters the product catalog.
type CatalogQuery struct {
	Predicates   []Predicate
	BelowMinimum bool
	ActiveOnly   bool
	// UnsoldIn keeps only products with no sale line in the range.
	UnsoldIn *DateRange
	Location *time.Location
	Order    CatalogOrder
	Limit    int
}

// CatalogItem is a product row with its classification and stock levels.
type CatalogItem struct {
	ID       int64
	Name     string
	Category string
	Brand    string
	Price    decimal.Decimal
	Stock    int
	MinStock *int
	Active   bool
}

// Store reads sales and catalog data. Implementations compile plans into
// their own query language and must honour plan ordering and limits.
type Store interface {
	Aggregate(ctx context.Context, plan QueryPlan) ([]AggregateRow, error)
	Catalog(ctx context.Context, query CatalogQuery) ([]CatalogItem, error)
	// FindProduct returns the first active product whose name contains name.
	FindProduct(ctx context.Context, name string) (CatalogItem, bool, error)
}
