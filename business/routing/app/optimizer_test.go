package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	liquidityDomain "github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/asset"
)

// stubSource serves a fixed snapshot for one pair.
type stubSource struct {
	snap liquidityDomain.Snapshot
}

func (s *stubSource) Snapshot(pair string) (liquidityDomain.Snapshot, error) {
	if pair != s.snap.Pair.String() {
		return liquidityDomain.Snapshot{}, apperror.NotFound(apperror.CodePairNotFound, pair)
	}
	return s.snap.Clone(), nil
}

func (s *stubSource) Pairs() []string {
	return []string{s.snap.Pair.String()}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSnapshot(t *testing.T, ts time.Time) liquidityDomain.Snapshot {
	t.Helper()
	pair, err := liquidityDomain.ParsePair("ETH-USDC", asset.DefaultRegistry())
	if err != nil {
		t.Fatalf("ParsePair: %v", err)
	}
	return liquidityDomain.Snapshot{
		Pair: pair,
		Pools: []liquidityDomain.Pool{
			{VenueID: "uniswap-v2", ReserveIn: dec("1000000"), ReserveOut: dec("500000"), FeeBps: 30},
			{VenueID: "sushiswap", ReserveIn: dec("600000"), ReserveOut: dec("300000"), FeeBps: 25},
		},
		Timestamp: ts,
	}
}

func newTestOptimizer(t *testing.T, source *stubSource, now time.Time) *Optimizer {
	t.Helper()
	cfg := OptimizerConfig{
		MaxImpactPct:      dec("5"),
		SlippageTolerance: dec("0.005"),
		StaleTimeout:      time.Minute,
		Gas:               domain.DefaultGasModel(),
	}
	opt, err := NewOptimizer(source, domain.NewSplitter(nil), cfg, testLogger())
	if err != nil {
		t.Fatalf("NewOptimizer: %v", err)
	}
	opt.now = func() time.Time { return now }
	return opt
}

func TestOptimizerSplitsAcrossPools(t *testing.T) {
	now := time.Now()
	source := &stubSource{snap: testSnapshot(t, now)}
	opt := newTestOptimizer(t, source, now)

	quote, err := opt.Optimize(context.Background(), "ETH-USDC", dec("80000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(quote.Simulation.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(quote.Simulation.Legs))
	}
	if !quote.Simulation.TotalIn.Equal(dec("80000")) {
		t.Errorf("total in = %s, want 80000", quote.Simulation.TotalIn)
	}

	// Splitting across pools must beat the single best pool.
	if !quote.PredictedImprovementPct.IsPositive() {
		t.Errorf("improvement = %s, want positive", quote.PredictedImprovementPct)
	}

	for _, leg := range quote.Simulation.Legs {
		if !leg.MinOut.IsPositive() {
			t.Errorf("leg %s has no minimum output", leg.VenueID)
		}
		if leg.MinOut.GreaterThanOrEqual(leg.EstimatedOut) {
			t.Errorf("leg %s: minOut %s must sit below estimatedOut %s",
				leg.VenueID, leg.MinOut, leg.EstimatedOut)
		}
	}
}

func TestOptimizerFlagsCapOverflow(t *testing.T) {
	now := time.Now()
	source := &stubSource{snap: testSnapshot(t, now)}
	opt := newTestOptimizer(t, source, now)

	// Caps are 50k + 30k; anything above must overflow.
	quote, err := opt.Optimize(context.Background(), "ETH-USDC", dec("100000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.HasCapOverflow() {
		t.Fatal("expected a cap-overflow leg")
	}

	found := false
	for _, rf := range quote.RiskFactors {
		if rf.Name == "cap_overflow" && rf.Severity == domain.SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("missing cap_overflow risk factor: %+v", quote.RiskFactors)
	}
}

func TestOptimizerRejectsStaleSnapshot(t *testing.T) {
	now := time.Now()
	source := &stubSource{snap: testSnapshot(t, now.Add(-5*time.Minute))}
	opt := newTestOptimizer(t, source, now)

	_, err := opt.Optimize(context.Background(), "ETH-USDC", dec("1000"))
	if apperror.GetCode(err) != apperror.CodeStaleSnapshot {
		t.Errorf("expected %s, got %v", apperror.CodeStaleSnapshot, err)
	}
}

func TestOptimizerUnknownPair(t *testing.T) {
	now := time.Now()
	source := &stubSource{snap: testSnapshot(t, now)}
	opt := newTestOptimizer(t, source, now)

	_, err := opt.Optimize(context.Background(), "ETH-DAI", dec("1000"))
	if apperror.GetCode(err) != apperror.CodePairNotFound {
		t.Errorf("expected %s, got %v", apperror.CodePairNotFound, err)
	}
}

func TestOptimizerZeroAmount(t *testing.T) {
	now := time.Now()
	source := &stubSource{snap: testSnapshot(t, now)}
	opt := newTestOptimizer(t, source, now)

	quote, err := opt.Optimize(context.Background(), "ETH-USDC", decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quote.Simulation.Legs) != 0 {
		t.Errorf("got %d legs, want 0", len(quote.Simulation.Legs))
	}
	if !quote.PredictedImprovementPct.IsZero() {
		t.Errorf("improvement = %s, want 0", quote.PredictedImprovementPct)
	}
}

func TestOptimizerMemoizesUnchangedSnapshot(t *testing.T) {
	now := time.Now()
	source := &stubSource{snap: testSnapshot(t, now)}
	opt := newTestOptimizer(t, source, now)

	first, err := opt.Optimize(context.Background(), "ETH-USDC", dec("80000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Advance the clock within the stale window; the snapshot is unchanged
	// so the quote must come back from the cache with its original ID.
	opt.now = func() time.Time { return now.Add(10 * time.Second) }
	second, err := opt.Optimize(context.Background(), "ETH-USDC", dec("80000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("got a recomputed quote %q, want cached %q", second.ID, first.ID)
	}

	// A fresh snapshot timestamp misses the cache.
	source.snap.Timestamp = now.Add(5 * time.Second)
	third, err := opt.Optimize(context.Background(), "ETH-USDC", dec("80000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.ID == first.ID {
		t.Error("expected a recomputed quote after a new snapshot")
	}
}
