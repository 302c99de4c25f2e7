package sentiment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	nbsentiment "github.com/cdipaolo/sentiment"
)

// naiveBayes wraps the pretrained English model shipped with
// cdipaolo/sentiment. A text with no sentiment-bearing words in the VADER
// lexicon has polarity 0.
type naiveBayes struct {
	models  nbsentiment.Models
	lexicon func(text string) float64
	// the model's text sanitizer is not safe for concurrent use
	mu sync.Mutex
}

func newNaiveBayes(lexicon func(text string) float64) (*naiveBayes, error) {
	models, err := nbsentiment.Restore()
	if err != nil {
		return nil, fmt.Errorf("failed to restore sentiment model: %w", err)
	}
	if models[nbsentiment.English] == nil {
		return nil, fmt.Errorf("sentiment model has no English classifier")
	}
	return &naiveBayes{models: models, lexicon: lexicon}, nil
}

// polarity is 2*P(positive)-1, in [-1, 1].
func (n *naiveBayes) polarity(text string) float64 {
	if strings.TrimSpace(text) == "" || n.lexicon(text) == 0 {
		return 0
	}

	n.mu.Lock()
	class, p := n.models[nbsentiment.English].Probability(text)
	n.mu.Unlock()

	if class != 1 {
		p = 1 - p
	}
	return 2*p - 1
}

func (n *naiveBayes) analyze(ctx context.Context, text string) (string, float64, error) {
	polarity := n.polarity(text)
	return ClassifyPolarity(polarity), polarity, nil
}
