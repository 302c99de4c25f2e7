package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/models"
)

// Options configures a batch run.
type Options struct {
	Method      string
	Count       int
	Concurrency int
}

// Run analyzes every input with task. Results come back in input order; a
// failed input is recorded with its error rather than stopping the run.
// Cancelling ctx marks the remaining inputs as failed. At most
// opts.Concurrency inputs are in flight at once.
func Run(ctx context.Context, task analysis.Task, inputs []Input, opts Options) []*models.Analysis {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	method := opts.Method
	if method == "" {
		method = task.DefaultMethod()
	}

	slog.Info("Processing inputs", "task", task.Name(), "method", method, "inputs", len(inputs), "concurrency", concurrency)

	results := make([]*models.Analysis, len(inputs))

	// A method that cannot run fails every input the same way.
	if err := analysis.CheckMethod(task, method); err != nil {
		slog.Warn("Method cannot run", "task", task.Name(), "method", method, "err", err)
		for i, in := range inputs {
			results[i] = models.NewAnalysis(in.ID, task.Name(), analysis.Request{Text: in.Text, Method: method, Count: opts.Count}, nil, err, 0)
		}
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, in := range inputs {
		req := analysis.Request{Text: in.Text, Method: method, Count: opts.Count}
		if err := ctx.Err(); err != nil {
			results[i] = models.NewAnalysis(in.ID, task.Name(), req, nil, err, 0)
			continue
		}

		select {
		case semaphore <- struct{}{}: // Acquire
		case <-ctx.Done():
			results[i] = models.NewAnalysis(in.ID, task.Name(), req, nil, ctx.Err(), 0)
			continue
		}

		wg.Add(1)
		go func(idx int, in Input) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			start := time.Now()
			res, err := task.Analyze(ctx, req)
			results[idx] = models.NewAnalysis(in.ID, task.Name(), req, res, err, time.Since(start))
			if err != nil {
				slog.Warn("Input failed", "id", in.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(inputs)), "err", err)
				return
			}
			slog.Debug("Input processed", "id", in.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(inputs)))
		}(i, in)
	}
	wg.Wait()

	return results
}

// Summary counts the outcomes of a run.
type Summary struct {
	Total       int `yaml:"total"`
	Succeeded   int `yaml:"succeeded"`
	Failed      int `yaml:"failed"`
	Unavailable int `yaml:"unavailable"`
}

// Summarize counts successes and failures in results.
func Summarize(results []*models.Analysis) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Unavailable:
			s.Unavailable++
		case r.Error != "":
			s.Failed++
		default:
			s.Succeeded++
		}
	}
	return s
}
