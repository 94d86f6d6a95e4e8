package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/infrastructure/logger"
)

var version = "1.0.0"

func main() {
	loadEnvFiles()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Report engine CLI - prompts, classifier training and demo data",
		Long: `reportctl drives the report engine outside the HTTP API.

It reads the same environment as the report-api server.

Examples:
  # Inspect how a prompt is understood
  reportctl parse "ventas por categoria del mes pasado"

  # Run a report and print it, or write a document
  reportctl run "top 5 productos este mes"
  reportctl run "ventas por cliente en excel" --out ventas.xlsx

  # Retrain the intent model from reviewed prompts
  reportctl export-prompts
  reportctl train`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newParseCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newTrainCmd())
	root.AddCommand(newExportPromptsCmd())
	root.AddCommand(newSeedDemoCmd())

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	return root
}

// loadConfig reads configuration and builds a logger honoring --verbose.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	} else {
		cfg.LogLevel = "warn"
	}
	return cfg, logger.New(cfg), nil
}

func loadEnvFiles() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
