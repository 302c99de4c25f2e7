package language

import (
	"context"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
)

const (
	llmSystemPrompt = "You are a language detection expert. Respond only with the ISO 639-1 code of the detected language."
	llmMaxTokens    = 10
)

type llmDetector struct {
	chat llm.Chatter
}

func newLLM(chat llm.Chatter) *llmDetector {
	return &llmDetector{chat: chat}
}

func (l *llmDetector) detect(ctx context.Context, text string) (string, *float64, error) {
	if l.chat == nil {
		return "", nil, errors.New("no language model configured")
	}
	response, err := l.chat.Chat(ctx, llmSystemPrompt, fmt.Sprintf("Detect the language of this text: '%s'", text), llmMaxTokens)
	if err != nil {
		return "", nil, err
	}
	return response, nil, nil
}
