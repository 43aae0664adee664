// Package routing implements the routing bounded context: it splits a trade
// across liquidity venues under a per-pool impact cap and simulates the
// aggregate execution.
package routing

import (
	"context"
	"math/rand"

	liquidityDI "github.com/routefi/trade-router/business/liquidity/di"
	"github.com/routefi/trade-router/business/routing/app"
	routingDI "github.com/routefi/trade-router/business/routing/di"
	"github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/business/routing/infra"
	"github.com/routefi/trade-router/internal/config"
	"github.com/routefi/trade-router/internal/di"
	"github.com/routefi/trade-router/internal/logger"
	"github.com/routefi/trade-router/internal/monolith"
)

// Module implements the routing bounded context.
type Module struct{}

// RegisterServices registers all routing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Reporter - private dependency
	di.RegisterToken(c, routingDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		return infra.NewConsoleReporter()
	})

	// Register Optimizer (public - exposed to other modules)
	di.RegisterToken(c, routingDI.Optimizer, func(sr di.ServiceRegistry) *app.Optimizer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var scaler domain.TakeScaler
		if cfg.Routing.JitterEnabled {
			scaler = domain.NewQualityScaler(rand.New(rand.NewSource(cfg.Routing.JitterSeed)))
		}

		optimizer, err := app.NewOptimizer(
			liquidityDI.GetSnapshotSource(sr),
			domain.NewSplitter(scaler),
			app.OptimizerConfig{
				MaxImpactPct:      cfg.Routing.MaxImpactPctDecimal(),
				SlippageTolerance: cfg.Routing.SlippageTolerance(),
				StaleTimeout:      cfg.Liquidity.StaleTimeout,
				Gas: domain.GasModel{
					Base:   cfg.Routing.BaseGas,
					PerLeg: cfg.Routing.PerLegGas,
				},
			},
			log,
		)
		if err != nil {
			panic("failed to create optimizer: " + err.Error())
		}
		return optimizer
	})

	// Register QuoteSession (public - one per demo run)
	di.RegisterToken(c, routingDI.Session, func(sr di.ServiceRegistry) *app.QuoteSession {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewQuoteSession(routingDI.GetOptimizer(sr), log)
	})

	return nil
}

// Startup initializes the routing module. The reporter is started by the
// quote loop, which also owns stopping it.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "routing module started",
		"max_impact_pct", mono.Config().Routing.MaxImpactPct,
		"jitter", mono.Config().Routing.JitterEnabled)
	return nil
}
