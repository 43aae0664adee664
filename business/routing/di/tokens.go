// Package di contains dependency injection tokens for the routing context.
package di

import (
	"github.com/routefi/trade-router/business/routing/app"
	"github.com/routefi/trade-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Optimizer = di.NewToken[*app.Optimizer]("routing.Optimizer")
	Session   = di.NewToken[*app.QuoteSession]("routing.QuoteSession")
)

// Private dependency tokens - internal to routing module
var (
	Reporter = di.NewToken[app.Reporter]("routing:reporter")
)

// Helper functions for type-safe access
func GetOptimizer(c di.ServiceRegistry) *app.Optimizer {
	return di.GetToken(c, Optimizer)
}

func GetSession(c di.ServiceRegistry) *app.QuoteSession {
	return di.GetToken(c, Session)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
