package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"jan-server/services/report-api/internal/domain/classifier"
)

func newTrainCmd() *cobra.Command {
	var dataPath, modelPath string
	opts := classifier.DefaultTrainOptions()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the intent model from the seed set plus the training CSV",
		Long: `Trains a TF-IDF + logistic regression intent model on the built-in
seed prompts and the rows of the training CSV (text,label), prints
cross-validated and holdout scores, and writes the model file the server
loads at startup or on /v1/admin/classifier/reload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dataPath == "" {
				dataPath = cfg.TrainingDataPath
			}
			if modelPath == "" {
				modelPath = cfg.ClassifierModelPath
			}

			examples, err := classifier.LoadDataset(dataPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "training on %d examples\n", len(examples))

			result, err := classifier.TrainAndEvaluate(cmd.Context(), examples, opts)
			if err != nil {
				return err
			}
			if err := result.Model.Save(modelPath); err != nil {
				return err
			}

			fmt.Fprintf(out, "cross-validation accuracy: %.3f\n", result.CVAccuracy)
			fmt.Fprintf(out, "holdout accuracy: %.3f\n", result.Holdout.Accuracy)
			renderEvaluation(out, result.Holdout)
			fmt.Fprintf(out, "model written to %s\n", modelPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Training CSV (default TRAINING_DATA_PATH)")
	cmd.Flags().StringVar(&modelPath, "model", "", "Model output path (default CLASSIFIER_MODEL_PATH)")
	cmd.Flags().IntVar(&opts.Epochs, "epochs", opts.Epochs, "Gradient descent epochs")
	cmd.Flags().IntVar(&opts.Folds, "folds", opts.Folds, "Cross-validation folds")
	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "Shuffle seed")
	return cmd
}

func renderEvaluation(w io.Writer, eval classifier.Evaluation) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Intent", "Precision", "Recall", "F1", "Support"})
	for _, c := range eval.Classes {
		table.Append([]string{
			c.Label,
			fmt.Sprintf("%.2f", c.Precision),
			fmt.Sprintf("%.2f", c.Recall),
			fmt.Sprintf("%.2f", c.F1),
			fmt.Sprintf("%d", c.Support),
		})
	}
	table.Render()
}
