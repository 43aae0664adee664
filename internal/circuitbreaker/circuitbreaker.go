// Package circuitbreaker wraps sony/gobreaker with typed results and
// application error mapping.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/routefi/trade-router/internal/apperror"
)

// Config holds circuit breaker tuning.
type Config struct {
	Name             string
	MaxRequests      uint32        // allowed through while half-open
	Interval         time.Duration // counter reset interval while closed
	Timeout          time.Duration // open -> half-open transition
	FailureThreshold uint32        // consecutive failures to trip
}

// DefaultConfig returns sensible defaults for an external dependency.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// CircuitBreaker guards calls that return a value of type T.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from the config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}

	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](settings),
	}
}

// Execute runs fn through the breaker. When the breaker is open the call is
// rejected with CodeCircuitOpen without invoking fn.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			var zero T
			return zero, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext(c.cb.Name()))
		}
		return result, err
	}
	return result, nil
}

// State returns the current breaker state string.
func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}
