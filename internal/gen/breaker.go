package gen

import (
	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// CallBreaker wraps generation calls with circuit breaker protection
type CallBreaker struct {
	cb *gobreaker.CircuitBreaker[[]byte]
}

// NewCallBreaker creates a circuit breaker for the generation endpoint. A nil
// breaker is returned when the feature is disabled; Execute treats that as a
// pass-through.
func NewCallBreaker(cfg config.CircuitBreakerConfig, logger *apperrors.Logger) *CallBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        "generation",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String(),
					"max_requests", cfg.MaxRequests,
					"failure_threshold", cfg.FailureThreshold)
			}
		},
	}

	return &CallBreaker{
		cb: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// Execute runs the provided function with circuit breaker protection
func (b *CallBreaker) Execute(fn func() ([]byte, error)) ([]byte, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *CallBreaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
