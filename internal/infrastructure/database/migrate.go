package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jan-server/services/report-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies schema changes for the tables this service owns.
// Commerce tables belong to the backend and are only read.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.PromptLog{}); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}

// MigrateCommerce creates the commerce tables. Used for local demos and tests
// where no backend database exists.
func MigrateCommerce(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&entities.Category{},
		&entities.Brand{},
		&entities.Client{},
		&entities.Product{},
		&entities.Sale{},
		&entities.SaleItem{},
	)
}
