package report

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// 2025-09-17 is a Wednesday.
var testNow = time.Date(2025, time.September, 17, 15, 0, 0, 0, time.UTC)

func newTestClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(testNow)
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	dates := NewDateResolver(newTestClock(), time.UTC)
	return NewBuilder(DefaultRegistry(), NewResolver(DefaultFuzzyCutoff), dates, nil)
}

func day(y int, m time.Month, d int) Date {
	return NewDate(y, m, d)
}

func intPtr(v int) *int {
	return &v
}

type fakeStore struct {
	aggregateFn func(ctx context.Context, plan QueryPlan) ([]AggregateRow, error)
	catalogFn   func(ctx context.Context, query CatalogQuery) ([]CatalogItem, error)
	findFn      func(ctx context.Context, name string) (CatalogItem, bool, error)
}

func (f *fakeStore) Aggregate(ctx context.Context, plan QueryPlan) ([]AggregateRow, error) {
	if f.aggregateFn == nil {
		return nil, nil
	}
	return f.aggregateFn(ctx, plan)
}

func (f *fakeStore) Catalog(ctx context.Context, query CatalogQuery) ([]CatalogItem, error) {
	if f.catalogFn == nil {
		return nil, nil
	}
	return f.catalogFn(ctx, query)
}

func (f *fakeStore) FindProduct(ctx context.Context, name string) (CatalogItem, bool, error) {
	if f.findFn == nil {
		return CatalogItem{}, false, nil
	}
	return f.findFn(ctx, name)
}

type fakeUsageRepo struct {
	createFn  func(ctx context.Context, entry *UsageEntry) error
	reviewFn  func(ctx context.Context, filter ReviewFilter) ([]UsageEntry, error)
	labelFn   func(ctx context.Context, id, label string) (UsageEntry, error)
	labeledFn func(ctx context.Context) ([]UsageEntry, error)
}

func (f *fakeUsageRepo) Create(ctx context.Context, entry *UsageEntry) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, entry)
}

func (f *fakeUsageRepo) ListForReview(ctx context.Context, filter ReviewFilter) ([]UsageEntry, error) {
	return f.reviewFn(ctx, filter)
}

func (f *fakeUsageRepo) SetHumanLabel(ctx context.Context, id, label string) (UsageEntry, error) {
	return f.labelFn(ctx, id, label)
}

func (f *fakeUsageRepo) ListLabeled(ctx context.Context) ([]UsageEntry, error) {
	if f.labeledFn == nil {
		return nil, nil
	}
	return f.labeledFn(ctx)
}

type recordingUsage struct {
	entries []UsageEntry
}

func (r *recordingUsage) Record(_ context.Context, entry UsageEntry) {
	r.entries = append(r.entries, entry)
}

type stubRenderer struct {
	meta   DocumentMeta
	result Result
	calls  int
}

func (s *stubRenderer) Render(meta DocumentMeta, result Result) (Document, error) {
	s.calls++
	s.meta = meta
	s.result = result
	return Document{Filename: "reporte.bin", ContentType: "application/octet-stream", Body: []byte("doc")}, nil
}

func newTestExecutor(store Store) *Executor {
	return NewExecutor(store, DefaultRegistry(), time.UTC, zerolog.Nop())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
