package language

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/nlpkit/internal/fasttext"
	"github.com/lehigh-university-libraries/nlpkit/internal/modelcache"
)

type predictor interface {
	Predict(text string, k int) []fasttext.Prediction
}

func loadFastText(path string) (predictor, error) {
	m, err := fasttext.Load(path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// fastTextDetector downloads and loads the model on first use. A failed
// download or load is reported to the caller and retried on the next call.
type fastTextDetector struct {
	cache *modelcache.Cache
	url   string
	load  func(path string) (predictor, error)

	mu    sync.Mutex
	model predictor
}

func newFastText(cache *modelcache.Cache, url string, load func(path string) (predictor, error)) *fastTextDetector {
	return &fastTextDetector{cache: cache, url: url, load: load}
}

func (f *fastTextDetector) loaded(ctx context.Context) (predictor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.model != nil {
		return f.model, nil
	}
	path, err := f.cache.Fetch(ctx, f.url)
	if err != nil {
		return nil, err
	}
	model, err := f.load(path)
	if err != nil {
		return nil, err
	}
	f.model = model
	return model, nil
}

func (f *fastTextDetector) detect(ctx context.Context, text string) (string, *float64, error) {
	model, err := f.loaded(ctx)
	if err != nil {
		return "", nil, err
	}

	predictions := model.Predict(text, 1)
	if len(predictions) == 0 {
		return "", nil, errors.New("fastText returned no prediction")
	}

	label := predictions[0].Label
	if i := strings.LastIndex(label, "__"); i >= 0 {
		label = label[i+2:]
	}
	confidence := predictions[0].Probability
	return label, &confidence, nil
}
