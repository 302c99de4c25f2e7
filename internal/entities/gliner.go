//go:build cgo

package entities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/soundprediction/go-gline-rs/pkg/gline"
)

// initGline loads the native GLiNER library.
var initGline = gline.Init

// glinerNER is a GLiNER span model, loaded on first use.
type glinerNER struct {
	modelID string
	labels  []string
	model   *gline.Model
	once    sync.Once
	loadErr error
	mu      sync.Mutex
}

func newGliner(modelID string, labels []string) (*glinerNER, error) {
	if modelID == "" {
		return nil, errModelNotConfigured
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no GLiNER entity labels configured")
	}
	if err := initGline(); err != nil {
		return nil, fmt.Errorf("failed to init gline: %w", err)
	}
	return &glinerNER{modelID: modelID, labels: labels}, nil
}

// load accepts either a local directory holding model.onnx and
// tokenizer.json or a HuggingFace model ID.
func (g *glinerNER) load() (*gline.Model, error) {
	if info, err := os.Stat(g.modelID); err == nil && info.IsDir() {
		m, err := gline.NewSpanModel(filepath.Join(g.modelID, "model.onnx"), filepath.Join(g.modelID, "tokenizer.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to load GLiNER model from %s: %w", g.modelID, err)
		}
		return m, nil
	}

	m, err := gline.NewSpanModelFromHF(g.modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load GLiNER model %s: %w", g.modelID, err)
	}
	return m, nil
}

func (g *glinerNER) extract(ctx context.Context, text string) ([]Entity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.once.Do(func() {
		g.model, g.loadErr = g.load()
	})
	if g.loadErr != nil {
		return nil, &analysis.UnavailableError{Method: string(MethodGliner), Label: labelGliner, Err: g.loadErr}
	}

	results, err := g.model.Predict([]string{text}, g.labels)
	if err != nil {
		return nil, fmt.Errorf("GLiNER prediction failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	entities := make([]Entity, 0, len(results[0]))
	for _, span := range results[0] {
		entities = append(entities, Entity{Text: span.Text, Type: span.Label})
	}
	return entities, nil
}

func (g *glinerNER) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.model != nil {
		g.model.Close()
		g.model = nil
	}
	return nil
}
