// Package ratelimit throttles calls to external services.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token-bucket limiter configured in requests per minute,
// matching how upstream API quotas are stated.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerMinute sustained throughput
// with a burst of 10% of the quota (minimum 1).
func New(requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed right now without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
