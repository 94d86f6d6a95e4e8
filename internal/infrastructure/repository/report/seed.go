package report

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Seed inserts data into an empty commerce schema in one transaction.
func Seed(ctx context.Context, db *gorm.DB, data Dataset) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			value any
			n     int
		}{
			{"categories", &data.Categories, len(data.Categories)},
			{"brands", &data.Brands, len(data.Brands)},
			{"clients", &data.Clients, len(data.Clients)},
			{"products", &data.Products, len(data.Products)},
			{"sales", &data.Sales, len(data.Sales)},
		}
		for _, step := range steps {
			if step.n == 0 {
				continue
			}
			if err := tx.Create(step.value).Error; err != nil {
				return fmt.Errorf("seed %s: %w", step.name, err)
			}
		}
		return nil
	})
}
