package providers

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by providers that need an API key when none is
// configured.
var ErrMissingAPIKey = errors.New("missing API key")

// Config represents the configuration for a single chat completion call
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	System      string
	Prompt      string
}

// Provider defines the interface for a hosted chat completion provider
type Provider interface {
	Complete(ctx context.Context, config Config) (string, error)
}
