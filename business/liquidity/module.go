// Package liquidity implements the liquidity bounded context: it keeps fresh
// constant-product pool snapshots per trading pair, sourced either from a
// simulated feed or from a WebSocket liquidity stream.
package liquidity

import (
	"context"
	"math/rand"

	"github.com/routefi/trade-router/business/liquidity/app"
	liquidityDI "github.com/routefi/trade-router/business/liquidity/di"
	"github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/business/liquidity/infra/simfeed"
	"github.com/routefi/trade-router/business/liquidity/infra/wsfeed"
	"github.com/routefi/trade-router/internal/asset"
	"github.com/routefi/trade-router/internal/config"
	"github.com/routefi/trade-router/internal/di"
	"github.com/routefi/trade-router/internal/logger"
	"github.com/routefi/trade-router/internal/monolith"
)

// Module implements the liquidity bounded context.
type Module struct{}

// RegisterServices registers all liquidity services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register SnapshotStore - private dependency
	di.RegisterToken(c, liquidityDI.SnapshotStore, func(sr di.ServiceRegistry) *app.SnapshotStore {
		return app.NewSnapshotStore()
	})

	// Register Feed (simulated or websocket) - private dependency
	di.RegisterToken(c, liquidityDI.Feed, func(sr di.ServiceRegistry) app.Feed {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		if cfg.Liquidity.FeedMode == "websocket" {
			feed, err := wsfeed.New(wsfeed.Config{
				URL:            cfg.Liquidity.WebSocketURL,
				MaxReconnects:  cfg.Liquidity.MaxReconnects,
				InitialBackoff: cfg.Liquidity.InitialBackoff,
				MaxBackoff:     cfg.Liquidity.MaxBackoff,
			}, registry, log)
			if err != nil {
				panic("failed to create websocket feed: " + err.Error())
			}
			return feed
		}

		pairs := make([]domain.Pair, 0, len(cfg.Liquidity.Pairs))
		for _, symbol := range cfg.Liquidity.Pairs {
			pair, err := domain.ParsePair(symbol, registry)
			if err != nil {
				panic("invalid pair " + symbol + ": " + err.Error())
			}
			pairs = append(pairs, pair)
		}

		simCfg := simfeed.DefaultConfig(pairs)
		if cfg.Liquidity.UpdateInterval > 0 {
			simCfg.Interval = cfg.Liquidity.UpdateInterval
		}
		rng := rand.New(rand.NewSource(cfg.Liquidity.Seed))
		return simfeed.New(simCfg, rng, log)
	})

	// Register LiquidityService (public - exposed to other modules)
	di.RegisterToken(c, liquidityDI.LiquidityService, func(sr di.ServiceRegistry) *app.LiquidityService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		store := liquidityDI.GetSnapshotStore(sr)
		feed := liquidityDI.GetFeed(sr)
		return app.NewLiquidityService(store, feed, cfg.Liquidity.StaleTimeout, log)
	})

	// Register SnapshotSource (public read-only view over the store)
	di.RegisterToken(c, liquidityDI.SnapshotSource, func(sr di.ServiceRegistry) app.SnapshotSource {
		return liquidityDI.GetSnapshotStore(sr)
	})

	return nil
}

// Startup launches the configured feed.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	svc := liquidityDI.GetLiquidityService(mono.Services())
	if err := svc.Start(ctx); err != nil {
		return err
	}

	mono.Logger().Info(ctx, "liquidity module started",
		"feed_mode", mono.Config().Liquidity.FeedMode,
		"pairs", mono.Config().Liquidity.Pairs)
	return nil
}
