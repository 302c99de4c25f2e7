//go:build cgo

package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/soundprediction/go-rust-bert/pkg/rustbert"
)

// initRustBERT loads the native rust-bert library.
var initRustBERT = rustbert.Init

// transformers runs the DistilBERT SST-2 sentiment model locally. The weights
// are downloaded and loaded on first use.
type transformers struct {
	model   *rustbert.SentimentModel
	once    sync.Once
	loadErr error
	mu      sync.Mutex
}

func newTransformers() (*transformers, error) {
	if err := initRustBERT(); err != nil {
		return nil, fmt.Errorf("failed to init rust-bert: %w", err)
	}
	return &transformers{}, nil
}

func (t *transformers) analyze(ctx context.Context, text string) (string, float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.once.Do(func() {
		slog.Info("Loading DistilBERT sentiment model")
		t.model, t.loadErr = rustbert.NewSentimentModel()
	})
	if t.loadErr != nil {
		return "", 0, &analysis.UnavailableError{Method: string(MethodTransformers), Label: labelTransformers, Err: t.loadErr}
	}

	res, err := t.model.Predict(text)
	if err != nil {
		return "", 0, fmt.Errorf("sentiment prediction failed: %w", err)
	}
	return classifyLabel(res.Label), res.Score, nil
}

func (t *transformers) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.model != nil {
		t.model.Close()
		t.model = nil
	}
	return nil
}
