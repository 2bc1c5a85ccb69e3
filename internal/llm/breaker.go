package llm

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"pdfchat/internal/domain"
)

// BreakerSettings tunes when the breaker opens and how long it stays open.
type BreakerSettings struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	// MinRequests is the number of calls observed before the failure ratio counts.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings fails fast for a minute once 60% of at least 3 calls failed.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:         name,
		Interval:     10 * time.Second,
		Timeout:      60 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// Breaker guards a language model with a circuit breaker. While open,
// Generate returns gobreaker.ErrOpenState without calling the model.
type Breaker struct {
	model   domain.LanguageModel
	breaker *gobreaker.CircuitBreaker
}

func NewBreaker(model domain.LanguageModel, s BreakerSettings, log *slog.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Breaker{model: model, breaker: cb}
}

func (b *Breaker) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.model.Generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.breaker.State() }

// Close closes the wrapped model when it holds resources.
func (b *Breaker) Close() error {
	if c, ok := b.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
