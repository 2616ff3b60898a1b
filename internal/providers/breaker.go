package providers

import (
	"fmt"

	"github.com/sony/gobreaker/v2"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

// Breaker wraps provider searches with circuit breaker protection. A nil
// Breaker executes calls directly, which is how a disabled breaker behaves.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[[]types.JobListing]
}

// NewBreaker creates a circuit breaker for a named provider. Returns nil
// when the breaker is disabled in configuration.
func NewBreaker(provider string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *Breaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("provider-%s", provider),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"provider", provider,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &Breaker{
		cb: gobreaker.NewCircuitBreaker[[]types.JobListing](settings),
	}
}

// Execute runs the provided search function with circuit breaker protection
func (b *Breaker) Execute(fn func() ([]types.JobListing, error)) ([]types.JobListing, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (b *Breaker) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *Breaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
