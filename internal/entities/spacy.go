//go:build cgo

package entities

import (
	"context"
	"fmt"
	"sync"

	spacy "github.com/am-sokolov/go-spacy"
)

type spacyNER struct {
	nlp *spacy.NLP
	mu  sync.Mutex
}

// newSpacy loads the spaCy pipeline. The model is loaded eagerly so a
// missing model marks the method unavailable at startup.
func newSpacy(model string) (*spacyNER, error) {
	if model == "" {
		return nil, errModelNotConfigured
	}
	nlp, err := spacy.NewNLP(model)
	if err != nil {
		return nil, fmt.Errorf("failed to load spaCy model %s: %w", model, err)
	}
	return &spacyNER{nlp: nlp}, nil
}

func (s *spacyNER) extract(ctx context.Context, text string) ([]Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entities []Entity
	for _, ent := range s.nlp.ExtractEntities(text) {
		entities = append(entities, Entity{Text: ent.Text, Type: ent.Label})
	}
	return entities, nil
}

func (s *spacyNER) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nlp.Close()
	return nil
}
