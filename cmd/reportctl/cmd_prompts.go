package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"jan-server/services/report-api/internal/app"
	"jan-server/services/report-api/internal/domain/classifier"
	"jan-server/services/report-api/internal/domain/report"
)

func newExportPromptsCmd() *cobra.Command {
	var outPath string
	var review bool
	var maxConfidence float64

	cmd := &cobra.Command{
		Use:   "export-prompts",
		Short: "Export logged prompts as training rows",
		Long: `Appends human-labeled prompts to the training CSV so the next
"reportctl train" learns from them. With --review, writes the prompts still
waiting for a label instead, using the resolved intent as the suggested
label, to a separate file for offline review.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			storage, cleanup, err := app.NewStorage(cmd.Context(), cfg, clockwork.NewRealClock(), log)
			if err != nil {
				return err
			}
			defer cleanup()

			var entries []report.UsageEntry
			if review {
				entries, err = storage.Usage.ListForReview(cmd.Context(), report.ReviewFilter{MaxConfidence: maxConfidence, Limit: 10000})
			} else {
				entries, err = storage.Usage.ListLabeled(cmd.Context())
			}
			if err != nil {
				return err
			}

			path := outPath
			switch {
			case path != "":
			case review:
				path = "prompts_para_revisar.csv"
			default:
				path = cfg.TrainingDataPath
			}

			examples := examplesFrom(entries, review)
			if err := appendExamples(path, examples, !review); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d prompts to %s\n", len(examples), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output CSV (default TRAINING_DATA_PATH, or prompts_para_revisar.csv with --review)")
	cmd.Flags().BoolVar(&review, "review", false, "Export unlabeled low-confidence prompts instead of labeled ones")
	cmd.Flags().Float64Var(&maxConfidence, "max-confidence", 0.55, "Confidence bound for --review")
	return cmd
}

func examplesFrom(entries []report.UsageEntry, review bool) []classifier.Example {
	out := make([]classifier.Example, 0, len(entries))
	for _, e := range entries {
		label := string(e.ResolvedIntent)
		if !review {
			if e.HumanLabel == nil {
				continue
			}
			label = *e.HumanLabel
		}
		out = append(out, classifier.Example{Text: e.PromptText, Label: label})
	}
	return out
}

func appendExamples(path string, examples []classifier.Example, appendMode bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	if err := classifier.WriteCSV(f, examples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
