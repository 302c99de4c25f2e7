//go:build cgo

package entities

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

// bertNER is a token classification model. The native library is loaded when
// the backend is built; the model weights on first use.
type bertNER struct {
	modelID string
	model   *rustbert.NERModel
	once    sync.Once
	loadErr error
	mu      sync.Mutex
}

func newBERT(modelID string) (*bertNER, error) {
	if err := initRustBERT(); err != nil {
		return nil, fmt.Errorf("failed to init rust-bert: %w", err)
	}
	return &bertNER{modelID: modelID}, nil
}

func (b *bertNER) extract(ctx context.Context, text string) ([]Entity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.once.Do(func() {
		if b.modelID == "" {
			slog.Info("Loading BERT NER model")
			b.model, b.loadErr = rustbert.NewNERModel()
			return
		}
		slog.Info("Loading NER model", "model", b.modelID)
		modelPath, configPath, vocabPath, mergesPath, err := rustbert.DownloadArtifacts(b.modelID, "")
		if err != nil {
			b.loadErr = fmt.Errorf("failed to download %s: %w", b.modelID, err)
			return
		}
		b.model, b.loadErr = rustbert.NewNERModelFromFiles(modelPath, configPath, vocabPath, mergesPath, rustbert.ModelTypeBert)
	})
	if b.loadErr != nil {
		return nil, &analysis.UnavailableError{Method: string(MethodTransformers), Label: labelBERT, Err: b.loadErr}
	}

	results, err := b.model.Predict(text)
	if err != nil {
		return nil, fmt.Errorf("NER prediction failed: %w", err)
	}

	entities := make([]Entity, len(results))
	for i, r := range results {
		entities[i] = Entity{Text: r.Word, Type: r.Label}
	}
	return entities, nil
}

func (b *bertNER) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.model != nil {
		b.model.Close()
		b.model = nil
	}
	return nil
}
