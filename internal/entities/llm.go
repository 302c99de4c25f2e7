package entities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
)

const (
	llmSystemPrompt = "You are an entity recognition expert. Identify entities in the given text and return them in the format: Entity: Type. Separate each entity with a newline."
	llmMaxTokens    = 150
)

type llmNER struct {
	chat llm.Chatter
}

func newLLM(chat llm.Chatter) *llmNER {
	return &llmNER{chat: chat}
}

func (l *llmNER) extract(ctx context.Context, text string) ([]Entity, error) {
	if l.chat == nil {
		return nil, errors.New("no language model configured")
	}
	response, err := l.chat.Chat(ctx, llmSystemPrompt, fmt.Sprintf("Extract entities from this text: '%s'", text), llmMaxTokens)
	if err != nil {
		return nil, err
	}
	return parseEntities(response), nil
}

// parseEntities reads "Entity: Type" lines. Lines without the separator are
// skipped.
func parseEntities(response string) []Entity {
	var entities []Entity
	for _, line := range strings.Split(response, "\n") {
		name, typ, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		entities = append(entities, Entity{Text: strings.TrimSpace(name), Type: strings.TrimSpace(typ)})
	}
	return entities
}
