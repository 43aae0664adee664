package simfeed

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/asset"
	"github.com/routefi/trade-router/internal/logger"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	pair, err := domain.ParsePair("ETH-USDC", asset.DefaultRegistry())
	if err != nil {
		t.Fatalf("ParsePair: %v", err)
	}
	cfg := DefaultConfig([]domain.Pair{pair})
	cfg.Interval = time.Millisecond
	return cfg
}

func collect(t *testing.T, feed *Feed, n int) []domain.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snaps := make([]domain.Snapshot, 0, n)
	done := make(chan struct{})
	err := feed.Run(ctx, func(snap domain.Snapshot) {
		if len(snaps) < n {
			snaps = append(snaps, snap)
			if len(snaps) == n {
				cancel()
				close(done)
			}
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: %v", err)
	}
	select {
	case <-done:
	default:
		t.Fatalf("collected %d snapshots, want %d", len(snaps), n)
	}
	return snaps
}

func newTestFeed(t *testing.T, seed int64) *Feed {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return New(testConfig(t), rand.New(rand.NewSource(seed)), log)
}

func TestFeedEmitsImmediately(t *testing.T) {
	snaps := collect(t, newTestFeed(t, 1), 1)

	snap := snaps[0]
	if snap.Pair.String() != "ETH-USDC" {
		t.Errorf("pair = %s", snap.Pair)
	}
	if len(snap.Pools) != len(defaultVenues) {
		t.Errorf("got %d pools, want %d", len(snap.Pools), len(defaultVenues))
	}
	if err := snap.Validate(); err != nil {
		t.Errorf("initial snapshot invalid: %v", err)
	}
}

func TestFeedSnapshotsStayValid(t *testing.T) {
	for _, snap := range collect(t, newTestFeed(t, 7), 5) {
		if err := snap.Validate(); err != nil {
			t.Fatalf("drifted snapshot invalid: %v", err)
		}
		for _, pool := range snap.Pools {
			if !pool.HasLiquidity() {
				t.Fatalf("venue %s drained by drift", pool.VenueID)
			}
		}
	}
}

func TestFeedDeterministicPerSeed(t *testing.T) {
	a := collect(t, newTestFeed(t, 42), 3)
	b := collect(t, newTestFeed(t, 42), 3)

	for i := range a {
		for j := range a[i].Pools {
			ap, bp := a[i].Pools[j], b[i].Pools[j]
			if !ap.ReserveIn.Equal(bp.ReserveIn) || !ap.ReserveOut.Equal(bp.ReserveOut) {
				t.Fatalf("tick %d venue %s diverged: %s/%s vs %s/%s",
					i, ap.VenueID, ap.ReserveIn, ap.ReserveOut, bp.ReserveIn, bp.ReserveOut)
			}
		}
	}
}
