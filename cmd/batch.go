package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/batch"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	var input string
	var output string
	var method string
	var count int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <task>",
		Short: "Run one task over a file of texts",
		Long: `Run one task and method over every text in an input file and save the results.

Input formats:
  .jsonl    one {"id": "...", "text": "..."} object per line
  .txt      one text per line
  .parquet  columns id and text

Output formats (by extension): .parquet, .yaml or .jsonl. Failed inputs are
kept in the output with their error.`,
		Example: `  # Sentiment of every line in reviews.txt with VADER
  nlpkit batch sentiment --input reviews.txt --method vader --output reviews.yaml

  # Entities for a Parquet dataset, four requests at a time
  nlpkit batch entities --input docs.parquet --method llm --concurrency 4 --output entities.parquet`,
		Args:        cobra.ExactArgs(1),
		ValidArgs:   taskNames(),
		Annotations: map[string]string{logLevelAnnotation: "info"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file not found: %s", input)
			}
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + "-" + args[0] + ".yaml"
			}
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}

			task, err := a.buildTask(args[0])
			if err != nil {
				return err
			}
			defer closeTasks(task)
			if err := analysis.CheckMethod(task, method); analysis.IsInvalidMethod(err) {
				return err
			}

			inputs, err := batch.Load(input)
			if err != nil {
				return fmt.Errorf("failed to load inputs: %w", err)
			}
			slog.Info("Inputs loaded", "path", input, "inputs", len(inputs))

			opts := batch.Options{Method: method, Count: count, Concurrency: concurrency}
			results := batch.Run(cmd.Context(), task, inputs, opts)

			report := batch.NewReport(task.Name(), input, opts, results)
			if err := batch.Write(output, report); err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}

			out := cmd.OutOrStdout()
			s := report.Summary
			fmt.Fprintf(out, "Processed %d inputs: %d succeeded, %d failed, %d unavailable\n", s.Total, s.Succeeded, s.Failed, s.Unavailable)
			fmt.Fprintf(out, "Results saved to: %s\n", output)

			return cmd.Context().Err()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (.jsonl, .txt or .parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.parquet, .yaml or .jsonl; default <input>-<task>.yaml)")
	cmd.Flags().StringVar(&method, "method", "", "Method to use (defaults to the task's default method)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of key phrases per input (keyphrases only; default 5)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 1, "Number of inputs processed at once")

	_ = cmd.MarkFlagRequired("input")
	return cmd
}
