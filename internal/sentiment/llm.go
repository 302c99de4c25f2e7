package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
)

const (
	llmSystemPrompt = "You are a sentiment analysis expert. Respond with the sentiment (Positive, Negative, or Neutral) followed by a confidence score between 0 and 1, separated by a comma."
	llmMaxTokens    = 10
)

type llmAnalyzer struct {
	chat llm.Chatter
}

func newLLM(chat llm.Chatter) *llmAnalyzer {
	return &llmAnalyzer{chat: chat}
}

func (l *llmAnalyzer) analyze(ctx context.Context, text string) (string, float64, error) {
	if l.chat == nil {
		return "", 0, errors.New("no language model configured")
	}
	response, err := l.chat.Chat(ctx, llmSystemPrompt, fmt.Sprintf("Analyze the sentiment of this text: '%s'", text), llmMaxTokens)
	if err != nil {
		return "", 0, err
	}
	return parseSentiment(response)
}

// parseSentiment reads "<sentiment>, <score>".
func parseSentiment(response string) (string, float64, error) {
	parts := strings.Split(response, ",")
	if len(parts) < 2 {
		return "", 0, fmt.Errorf("unexpected sentiment response %q", response)
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", 0, fmt.Errorf("unexpected sentiment score in %q: %w", response, err)
	}
	return strings.TrimSpace(parts[0]), score, nil
}
