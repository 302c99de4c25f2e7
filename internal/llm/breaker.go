package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/sony/gobreaker"
)

// Breaker wraps a Chatter with circuit breaking logic
type Breaker struct {
	next Chatter
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker creates a new circuit breaker around next
func NewBreaker(next Chatter, cfg config.CircuitBreakerConfig, name string) *Breaker {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("Circuit breaker changed state", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(st),
	}
}

// Chat implements Chatter
func (b *Breaker) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Chat(ctx, system, user, maxTokens)
	})
	if err != nil {
		return "", err
	}
	return resp.(string), nil
}

// State reports the breaker state, e.g. "closed" or "open"
func (b *Breaker) State() string {
	return b.cb.State().String()
}
