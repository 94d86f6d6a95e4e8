package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"jan-server/services/report-api/internal/app"
	"jan-server/services/report-api/internal/infrastructure/database"
	reportrepo "jan-server/services/report-api/internal/infrastructure/repository/report"
)

func newSeedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Create the commerce tables and load the demo dataset into PostgreSQL",
		Long: `Creates the catalog, client and sales tables when missing and inserts the
demo dataset dated around the current month. Intended for local development
databases; the report service itself never writes these tables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := database.Connect(app.NewDatabaseConfig(cfg))
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.MigrateCommerce(cmd.Context(), db); err != nil {
				return err
			}
			data := reportrepo.DemoDataset(clockwork.NewRealClock().Now(), cfg.Location())
			if err := reportrepo.Seed(cmd.Context(), db, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products and %d sales\n", len(data.Products), len(data.Sales))
			return nil
		},
	}
}
