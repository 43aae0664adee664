package app

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/internal/logger"
)

// QuoteHandler receives the outcome of a quote request. Handlers run under
// the session lock and must not call back into Request or Close.
type QuoteHandler func(quote *domain.Quote, err error)

// QuoteSession serializes quote requests for one user session with
// last-request-wins semantics: a new request cancels any in-flight
// computation, and results from superseded requests are never delivered.
type QuoteSession struct {
	provider QuoteProvider
	logger   logger.LoggerInterface

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQuoteSession creates a session over the given provider.
func NewQuoteSession(provider QuoteProvider, log logger.LoggerInterface) *QuoteSession {
	return &QuoteSession{
		provider: provider,
		logger:   log,
	}
}

// Request computes a quote asynchronously and delivers it to handler.
// If another Request arrives before this one finishes, the earlier
// computation is cancelled and its handler is never invoked.
func (s *QuoteSession) Request(ctx context.Context, pair string, amountIn decimal.Decimal, handler QuoteHandler) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		quote, err := s.provider.Optimize(ctx, pair, amountIn)

		// Delivery happens under the lock so a Request racing in after the
		// generation check cannot let a stale handler fire.
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen || ctx.Err() != nil {
			s.logger.Debug(ctx, "dropping superseded quote", "pair", pair)
			return
		}

		handler(quote, err)
	}()
}

// Close cancels any in-flight request and waits for it to drain.
func (s *QuoteSession) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
