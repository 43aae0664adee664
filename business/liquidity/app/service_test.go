package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/asset"
	"github.com/routefi/trade-router/internal/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSnapshot(t *testing.T, ts time.Time) domain.Snapshot {
	t.Helper()
	pair, err := domain.ParsePair("ETH-USDC", asset.DefaultRegistry())
	if err != nil {
		t.Fatalf("ParsePair: %v", err)
	}
	return domain.Snapshot{
		Pair: pair,
		Pools: []domain.Pool{
			{VenueID: "uniswap-v2", ReserveIn: dec("1000000"), ReserveOut: dec("500000"), FeeBps: 30},
		},
		Timestamp: ts,
	}
}

func TestSnapshotStorePutAndGet(t *testing.T) {
	store := NewSnapshotStore()
	snap := testSnapshot(t, time.Now())

	if err := store.Put(snap); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Snapshot("ETH-USDC")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Pair.String() != "ETH-USDC" || len(got.Pools) != 1 {
		t.Fatalf("got %+v", got)
	}

	// The store hands out copies; corrupting one must not leak back.
	got.Pools[0].ReserveIn = decimal.Zero
	again, err := store.Snapshot("ETH-USDC")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !again.Pools[0].ReserveIn.Equal(dec("1000000")) {
		t.Error("stored snapshot was mutated through a returned copy")
	}
}

func TestSnapshotStoreUnknownPair(t *testing.T) {
	store := NewSnapshotStore()

	_, err := store.Snapshot("BTC-USDT")
	if apperror.GetCode(err) != apperror.CodePairNotFound {
		t.Fatalf("got %v, want PAIR_NOT_FOUND", err)
	}
}

func TestSnapshotStoreRejectsInvalid(t *testing.T) {
	store := NewSnapshotStore()
	snap := testSnapshot(t, time.Now())
	snap.Pools[0].FeeBps = -1

	if err := store.Put(snap); err == nil {
		t.Fatal("expected validation error")
	}
	if got := store.Pairs(); len(got) != 0 {
		t.Fatalf("rejected snapshot was stored: %v", got)
	}
}

func TestSnapshotStorePairsSorted(t *testing.T) {
	store := NewSnapshotStore()
	registry := asset.DefaultRegistry()

	for _, symbol := range []string{"ETH-USDC", "DAI-USDC", "ETH-DAI"} {
		pair, err := domain.ParsePair(symbol, registry)
		if err != nil {
			t.Fatalf("ParsePair(%s): %v", symbol, err)
		}
		err = store.Put(domain.Snapshot{
			Pair: pair,
			Pools: []domain.Pool{
				{VenueID: "uniswap-v2", ReserveIn: dec("1000"), ReserveOut: dec("1000"), FeeBps: 30},
			},
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("Put(%s): %v", symbol, err)
		}
	}

	want := []string{"DAI-USDC", "ETH-DAI", "ETH-USDC"}
	got := store.Pairs()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSnapshotStorePutDefaultsTimestamp(t *testing.T) {
	store := NewSnapshotStore()
	snap := testSnapshot(t, time.Time{})

	if err := store.Put(snap); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if store.LastUpdate("ETH-USDC").IsZero() {
		t.Error("timestamp was not defaulted on Put")
	}
}

func TestLiquidityServiceHealthy(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	store := NewSnapshotStore()
	svc := NewLiquidityService(store, nil, time.Minute, log)

	if ok, reason := svc.Healthy(context.Background()); ok {
		t.Error("expected unhealthy before any snapshot")
	} else if reason == "" {
		t.Error("expected a reason")
	}

	if err := store.Put(testSnapshot(t, time.Now())); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ok, reason := svc.Healthy(context.Background()); !ok {
		t.Errorf("expected healthy with a fresh snapshot, got %q", reason)
	}

	if err := store.Put(testSnapshot(t, time.Now().Add(-2*time.Minute))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ok, _ := svc.Healthy(context.Background()); ok {
		t.Error("expected unhealthy with a stale snapshot")
	}
}

// scriptedFeed pushes a fixed set of snapshots and waits for cancellation.
type scriptedFeed struct {
	snaps []domain.Snapshot
}

func (f *scriptedFeed) Run(ctx context.Context, sink func(domain.Snapshot)) error {
	for _, snap := range f.snaps {
		sink(snap)
	}
	<-ctx.Done()
	return nil
}

func TestLiquidityServiceStartFillsStore(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	store := NewSnapshotStore()
	feed := &scriptedFeed{snaps: []domain.Snapshot{testSnapshot(t, time.Now())}}
	svc := NewLiquidityService(store, feed, time.Minute, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if _, err := store.Snapshot("ETH-USDC"); err == nil {
			return
		}
		select {
		case <-deadline:
			t.Fatal("snapshot never reached the store")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
