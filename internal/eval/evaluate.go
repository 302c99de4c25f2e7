// Package eval scores task methods against a labeled dataset.
package eval

import (
	"context"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/batch"
	"github.com/lehigh-university-libraries/nlpkit/internal/eval/dataset"
	"github.com/lehigh-university-libraries/nlpkit/internal/eval/metrics"
	"github.com/lehigh-university-libraries/nlpkit/internal/models"
)

// Options configures an evaluation of one method.
type Options struct {
	Method      string
	Count       int
	Concurrency int
}

// Evaluate runs the method over every example and compares the labels of each
// result with the expected ones. Failed examples are kept with their error.
func Evaluate(ctx context.Context, task analysis.Task, examples []dataset.Example, opts Options) *metrics.AggregateResults {
	method := opts.Method
	if method == "" {
		method = task.DefaultMethod()
	}

	inputs := make([]batch.Input, len(examples))
	for i, ex := range examples {
		inputs[i] = batch.Input{ID: ex.ID, Text: ex.Text}
	}

	analyses := batch.Run(ctx, task, inputs, batch.Options{Method: method, Count: opts.Count, Concurrency: opts.Concurrency})

	results := make([]metrics.EvaluationResult, len(examples))
	for i, ex := range examples {
		results[i] = score(ex, analyses[i])
	}

	agg := metrics.AggregateEvaluationResults(results, task.Name(), method)
	slog.Info("Evaluation finished", "task", task.Name(), "method", method, "succeeded", agg.SuccessCount, "failed", agg.FailureCount, "f1", agg.F1)
	return agg
}

func score(ex dataset.Example, a *models.Analysis) metrics.EvaluationResult {
	result := metrics.EvaluationResult{
		ID:             ex.ID,
		Text:           ex.Text,
		Expected:       ex.Expected,
		ProcessingTime: time.Duration(a.DurationMS) * time.Millisecond,
	}

	if a.Error != "" {
		result.Error = a.Error
		return result
	}

	if l, ok := a.Result.(analysis.Labeler); ok {
		result.Actual = l.Labels()
	}
	result.Comparison = metrics.CompareLabels(ex.Expected, result.Actual)
	return result
}
