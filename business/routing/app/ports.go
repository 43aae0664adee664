// Package app contains application services and port definitions for the routing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/business/routing/domain"
)

// QuoteProvider produces an optimized routing quote for a trade request.
type QuoteProvider interface {
	Optimize(ctx context.Context, pair string, amountIn decimal.Decimal) (*domain.Quote, error)
}

// Reporter surfaces quotes to the user.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report presents a finished quote.
	Report(quote *domain.Quote)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
