package entities

import (
	"context"
	"fmt"

	"github.com/jdkato/prose/v2"
)

// extractProse runs prose's tokenizer, perceptron tagger and entity chunker.
func extractProse(ctx context.Context, text string) ([]Entity, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("prose failed: %w", err)
	}

	var entities []Entity
	for _, ent := range doc.Entities() {
		entities = append(entities, Entity{Text: ent.Text, Type: ent.Label})
	}
	return entities, nil
}
