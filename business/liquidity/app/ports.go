// Package app contains application services and port definitions for the liquidity context.
package app

import (
	"context"

	"github.com/routefi/trade-router/business/liquidity/domain"
)

// Feed delivers pool snapshots from an external liquidity source.
type Feed interface {
	// Run pushes snapshots into sink until ctx is cancelled. Implementations
	// own their reconnection policy; Run returns only on cancellation or a
	// fatal error.
	Run(ctx context.Context, sink func(domain.Snapshot)) error
}

// SnapshotSource provides read access to the latest pool snapshots.
// The routing context consumes liquidity through this port.
type SnapshotSource interface {
	// Snapshot returns a defensive copy of the latest snapshot for the pair
	// symbol (e.g. "ETH-USDC"). Fails with PairNotFound when the pair has
	// never been seen.
	Snapshot(pair string) (domain.Snapshot, error)

	// Pairs lists the pair symbols with at least one snapshot.
	Pairs() []string
}
