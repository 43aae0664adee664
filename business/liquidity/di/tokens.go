// Package di contains dependency injection tokens for the liquidity context.
package di

import (
	"github.com/routefi/trade-router/business/liquidity/app"
	"github.com/routefi/trade-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	LiquidityService = di.NewToken[*app.LiquidityService]("liquidity.LiquidityService")
	SnapshotSource   = di.NewToken[app.SnapshotSource]("liquidity.SnapshotSource")
)

// Private dependency tokens - internal to liquidity module
var (
	Feed          = di.NewToken[app.Feed]("liquidity:feed")
	SnapshotStore = di.NewToken[*app.SnapshotStore]("liquidity:snapshotStore")
)

// Helper functions for type-safe access
func GetLiquidityService(c di.ServiceRegistry) *app.LiquidityService {
	return di.GetToken(c, LiquidityService)
}

func GetSnapshotSource(c di.ServiceRegistry) app.SnapshotSource {
	return di.GetToken(c, SnapshotSource)
}

func GetFeed(c di.ServiceRegistry) app.Feed {
	return di.GetToken(c, Feed)
}

func GetSnapshotStore(c di.ServiceRegistry) *app.SnapshotStore {
	return di.GetToken(c, SnapshotStore)
}
