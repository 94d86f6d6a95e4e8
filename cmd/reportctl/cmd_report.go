package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"jan-server/services/report-api/internal/app"
	"jan-server/services/report-api/internal/domain/report"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <prompt>",
		Short: "Show the spec a prompt resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pipeline, cleanup, err := app.NewPipeline(cmd.Context(), cfg, clockwork.NewRealClock(), log)
			if err != nil {
				return err
			}
			defer cleanup()

			interp, err := pipeline.Service.Interpret(cmd.Context(), report.InterpretRequest{
				Prompt: strings.Join(args, " "),
				UserID: "reportctl",
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(interp.Spec); err != nil {
				return err
			}
			fmt.Fprintf(out, "intent source: %s\n", interp.Classification.Source)
			printNotes(out, interp.Warnings, interp.Hints)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "run <prompt>",
		Short: "Run a prompt and print the table or write the document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pipeline, cleanup, err := app.NewPipeline(cmd.Context(), cfg, clockwork.NewRealClock(), log)
			if err != nil {
				return err
			}
			defer cleanup()

			interp, err := pipeline.Service.Interpret(cmd.Context(), report.InterpretRequest{
				Prompt: strings.Join(args, " "),
				UserID: "reportctl",
				Format: report.Format(format),
			})
			if err != nil {
				return err
			}
			rep, err := pipeline.Service.Run(cmd.Context(), interp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rep.Document != nil {
				path := outPath
				if path == "" {
					path = rep.Document.Filename
				}
				if err := os.WriteFile(path, rep.Document.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(rep.Document.Body))
				return nil
			}

			fmt.Fprintf(out, "%s | %s a %s\n", rep.Spec.Intent, rep.Spec.StartDate, rep.Spec.EndDate)
			renderTable(out, rep.Result)
			if rep.Result.Cart != nil {
				c := rep.Result.Cart
				fmt.Fprintf(out, "carrito: %d x %s = %.2f\n", c.Quantity, c.Name, c.Subtotal)
			}
			printNotes(out, rep.Warnings, rep.Hints)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Override output format (pantalla, pdf, excel)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Document output path (default reporte.pdf / reporte.xlsx)")
	return cmd
}

func renderTable(w io.Writer, result report.Result) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetBorder(true)
	table.SetHeader(result.Headers)
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		table.Append(cells)
	}
	table.Render()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprint(x)
	}
}

func printNotes(w io.Writer, warnings, hints []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "aviso: %s\n", msg)
	}
	for _, msg := range hints {
		fmt.Fprintf(w, "sugerencia: %s\n", msg)
	}
}
