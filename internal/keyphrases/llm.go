package keyphrases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
)

const llmMaxTokens = 100

type llmExtractor struct {
	chat llm.Chatter
}

func newLLM(chat llm.Chatter) *llmExtractor {
	return &llmExtractor{chat: chat}
}

func systemPrompt(count int) string {
	return fmt.Sprintf("You are a key phrase extraction expert. Extract the top %d key phrases from the given text. Respond with one key phrase per line, nothing else.", count)
}

func (l *llmExtractor) extract(ctx context.Context, text string, count int) ([]string, error) {
	if l.chat == nil {
		return nil, errors.New("no language model configured")
	}
	response, err := l.chat.Chat(ctx, systemPrompt(count), fmt.Sprintf("Extract key phrases from this text: '%s'", text), llmMaxTokens)
	if err != nil {
		return nil, err
	}
	return strings.Split(response, "\n"), nil
}
