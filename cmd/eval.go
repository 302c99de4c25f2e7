package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/eval"
	"github.com/lehigh-university-libraries/nlpkit/internal/eval/dataset"
	"github.com/lehigh-university-libraries/nlpkit/internal/eval/metrics"
	"github.com/lehigh-university-libraries/nlpkit/internal/eval/results"
	"github.com/spf13/cobra"
)

func newEvalCmd(a *app) *cobra.Command {
	var datasetPath string
	var methods []string
	var sample int
	var count int
	var concurrency int
	var outputDir string

	cmd := &cobra.Command{
		Use:   "eval <task>",
		Short: "Score methods of a task against a labeled dataset",
		Long: `Run one or more methods of a task over a labeled dataset and compare the
labels they produce with the expected ones.

Each dataset row has an id, a text and the expected labels: entity texts, key
phrases, a language code or a sentiment class. Datasets are .jsonl files, where
"expected" is a string or a list of strings, or .parquet files with id, text and
expected columns.

Labels are matched after lowercasing and dropping punctuation; substrings and
close spellings count as matches. A YAML report per method is written to the
output directory.`,
		Example: `  # Compare two language detectors on 100 examples
  nlpkit eval language --dataset langs.jsonl --method simple --method langid --sample 100

  # Score the LLM entity extractor
  nlpkit eval entities --dataset entities.parquet --method llm --concurrency 4`,
		Args:        cobra.ExactArgs(1),
		ValidArgs:   taskNames(),
		Annotations: map[string]string{logLevelAnnotation: "info"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); err != nil {
				return fmt.Errorf("dataset not found: %s", datasetPath)
			}
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}

			task, err := a.buildTask(args[0])
			if err != nil {
				return err
			}
			defer closeTasks(task)

			if len(methods) == 0 {
				methods = []string{task.DefaultMethod()}
			}
			for _, method := range methods {
				if err := analysis.CheckMethod(task, method); analysis.IsInvalidMethod(err) {
					return err
				}
			}

			examples, err := dataset.NewLoader(datasetPath).LoadSample(sample)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			if len(examples) == 0 {
				return fmt.Errorf("dataset %s has no examples", datasetPath)
			}
			slog.Info("Dataset loaded", "path", datasetPath, "examples", len(examples))

			out := cmd.OutOrStdout()
			timestamp := time.Now().Format("2006-01-02_15-04-05")
			all := make([]*metrics.AggregateResults, 0, len(methods))

			for _, method := range methods {
				if err := cmd.Context().Err(); err != nil {
					return err
				}

				agg := eval.Evaluate(cmd.Context(), task, examples, eval.Options{Method: method, Count: count, Concurrency: concurrency})
				agg.PrintSummary(out)

				cfg := results.EvalConfig{
					Task:        task.Name(),
					Method:      method,
					DatasetPath: datasetPath,
					SampleSize:  len(examples),
					Timestamp:   timestamp,
				}
				if method == "llm" {
					cfg.Provider = a.cfg.LLM.Provider
					cfg.Model = a.cfg.LLM.ModelFor(a.cfg.LLM.Provider)
				}

				path, err := results.SaveToYAML(outputDir, cfg, agg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nEvaluation results saved to: %s\n", path)
				all = append(all, agg)
			}

			if len(all) > 1 {
				printComparison(out, all)
			}
			return cmd.Context().Err()
		},
	}

	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "Labeled dataset (.jsonl or .parquet)")
	cmd.Flags().StringSliceVarP(&methods, "method", "m", nil, "Method to evaluate (repeatable; defaults to the task's default method)")
	cmd.Flags().IntVarP(&sample, "sample", "n", 0, "Evaluate only the first N examples (0 = all)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of key phrases per example (keyphrases only; default 5)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 1, "Number of examples processed at once")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "evals", "Directory for the YAML reports")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// printComparison lists the headline scores of each evaluated method.
func printComparison(w io.Writer, all []*metrics.AggregateResults) {
	fmt.Fprintln(w, "\nMETHOD COMPARISON")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPRECISION\tRECALL\tF1\tACCURACY\tFAILED\tAVG TIME")
	for _, agg := range all {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%d\t%s\n",
			agg.Method, agg.Precision, agg.Recall, agg.F1, agg.Accuracy, agg.FailureCount, agg.AverageProcessingTime.Round(time.Millisecond))
	}
	tw.Flush()
}
