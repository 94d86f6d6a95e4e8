package promptlog

import (
	"context"
	"sort"
	"sync"

	domain "jan-server/services/report-api/internal/domain/report"
)

// InMemoryRepository is a thread-safe repository useful for demos/tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []domain.UsageEntry
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

var _ domain.UsageRepository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Create(ctx context.Context, entry *domain.UsageEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *InMemoryRepository) ListForReview(ctx context.Context, filter domain.ReviewFilter) ([]domain.UsageEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.UsageEntry
	for _, e := range r.entries {
		if e.HumanLabel != nil {
			continue
		}
		if e.Confidence != nil && *e.Confidence >= filter.MaxConfidence {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) ListLabeled(ctx context.Context) ([]domain.UsageEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.UsageEntry
	for _, e := range r.entries {
		if e.HumanLabel != nil && *e.HumanLabel != "" {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) SetHumanLabel(ctx context.Context, id string, label string) (domain.UsageEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			l := label
			r.entries[i].HumanLabel = &l
			return r.entries[i], nil
		}
	}
	return domain.UsageEntry{}, domain.ErrUsageEntryNotFound
}

// Entries returns a copy of everything stored.
func (r *InMemoryRepository) Entries() []domain.UsageEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.UsageEntry(nil), r.entries...)
}
