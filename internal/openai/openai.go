package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/providers"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI is a provider for OpenAI and OpenAI-compatible services
type OpenAI struct {
	client *goopenai.Client
}

// New returns a new OpenAI provider. An empty apiKey yields a provider whose
// calls fail with providers.ErrMissingAPIKey.
func New(apiKey, baseURL string) *OpenAI {
	if apiKey == "" && baseURL == "" {
		return &OpenAI{}
	}
	if apiKey == "" {
		// Some OpenAI-compatible services don't require authentication
		apiKey = "dummy-key"
	}

	clientConfig := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
		if !strings.HasSuffix(clientConfig.BaseURL, "/v1") {
			clientConfig.BaseURL += "/v1"
		}
	}

	return &OpenAI{client: goopenai.NewClientWithConfig(clientConfig)}
}

// Complete sends a chat completion request and returns the first choice
func (o *OpenAI) Complete(ctx context.Context, config providers.Config) (string, error) {
	if o.client == nil {
		return "", fmt.Errorf("OPENAI_API_KEY not set: %w", providers.ErrMissingAPIKey)
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if config.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: config.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: config.Prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       config.Model,
		Messages:    messages,
		MaxTokens:   config.MaxTokens,
		Temperature: float32(config.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI: %w", analysis.ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
