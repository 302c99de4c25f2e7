package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/gemini"
	"github.com/lehigh-university-libraries/nlpkit/internal/ollama"
	"github.com/lehigh-university-libraries/nlpkit/internal/openai"
	"github.com/lehigh-university-libraries/nlpkit/internal/providers"
)

// ErrMissingAPIKey is returned when the selected provider needs a key that is not set.
var ErrMissingAPIKey = providers.ErrMissingAPIKey

// Chatter sends one system/user prompt pair and returns the trimmed reply.
type Chatter interface {
	Chat(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Client is a Chatter backed by one of the hosted providers.
type Client struct {
	provider    providers.Provider
	name        string
	model       string
	temperature float64
}

// GetProvider returns the provider for the given name
func GetProvider(cfg config.LLMConfig) (providers.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL), nil
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// New builds the Chatter selected by cfg. When the circuit breaker is enabled
// the client is wrapped in a Breaker.
func New(cfg *config.Config) (Chatter, error) {
	provider, err := GetProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	client := NewClient(provider, cfg.LLM.Provider, cfg.LLM.ModelFor(cfg.LLM.Provider), cfg.LLM.Temperature)
	if cfg.CircuitBreaker.Enabled {
		return NewBreaker(client, cfg.CircuitBreaker, cfg.LLM.Provider), nil
	}
	return client, nil
}

// NewClient wraps provider as a Chatter
func NewClient(provider providers.Provider, name, model string, temperature float64) *Client {
	return &Client{
		provider:    provider,
		name:        name,
		model:       model,
		temperature: temperature,
	}
}

// Chat implements Chatter
func (c *Client) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	slog.Debug("Sending chat completion", "provider", c.name, "model", c.model, "max_tokens", maxTokens)
	content, err := c.provider.Complete(ctx, providers.Config{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
		System:      system,
		Prompt:      user,
	})
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.name, err)
	}
	return Clean(content), nil
}

// Clean trims whitespace and any markdown code fence around a reply
func Clean(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		// drop the fence's language tag, if any
		if i := strings.IndexByte(response, '\n'); i >= 0 && !strings.ContainsAny(response[:i], " \t") {
			response = response[i+1:]
		}
		response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	}
	return strings.TrimSpace(response)
}
