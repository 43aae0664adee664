// Package simfeed generates demo pool snapshots from a seeded random walk.
package simfeed

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/business/liquidity/app"
	"github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/logger"
)

// venueProfile describes a simulated venue's relative depth and fee.
type venueProfile struct {
	venueID string
	weight  float64 // share of total pair depth
	feeBps  int32
}

// Default venue mix, roughly mirroring mainnet AMM depth distribution.
var defaultVenues = []venueProfile{
	{venueID: "uniswap-v2", weight: 1.0, feeBps: 30},
	{venueID: "sushiswap", weight: 0.35, feeBps: 25},
	{venueID: "shibaswap", weight: 0.12, feeBps: 30},
}

// Config holds simulated feed configuration.
type Config struct {
	Pairs     []domain.Pair
	Interval  time.Duration
	BaseDepth float64 // ReserveIn of the deepest venue, in base units
	BasePrice float64 // initial quote-per-base price
	DriftPct  float64 // max per-tick reserve drift, in percent
}

// DefaultConfig returns sensible defaults for local demos.
func DefaultConfig(pairs []domain.Pair) Config {
	return Config{
		Pairs:     pairs,
		Interval:  2 * time.Second,
		BaseDepth: 1_000_000,
		BasePrice: 0.5,
		DriftPct:  2.0,
	}
}

// Feed produces randomized pool snapshots. The random source is supplied by
// the caller so runs are reproducible; the feed never touches global RNG
// state.
type Feed struct {
	config Config
	rng    *rand.Rand
	logger logger.LoggerInterface

	// Current reserve state per pair/venue, drifted each tick.
	state map[string][]domain.Pool
}

// Ensure Feed implements the app Feed port.
var _ app.Feed = (*Feed)(nil)

// New creates a simulated feed with the given seeded random source.
func New(cfg Config, rng *rand.Rand, log logger.LoggerInterface) *Feed {
	f := &Feed{
		config: cfg,
		rng:    rng,
		logger: log,
		state:  make(map[string][]domain.Pool),
	}

	for _, pair := range cfg.Pairs {
		f.state[pair.String()] = f.initialPools()
	}

	return f
}

func (f *Feed) initialPools() []domain.Pool {
	pools := make([]domain.Pool, 0, len(defaultVenues))
	for _, v := range defaultVenues {
		reserveIn := f.config.BaseDepth * v.weight
		reserveOut := reserveIn * f.config.BasePrice
		pools = append(pools, domain.Pool{
			VenueID:    v.venueID,
			ReserveIn:  decimal.NewFromFloat(reserveIn),
			ReserveOut: decimal.NewFromFloat(reserveOut),
			FeeBps:     v.feeBps,
		})
	}
	return pools
}

// Run emits a snapshot per pair every interval until ctx is cancelled.
func (f *Feed) Run(ctx context.Context, sink func(domain.Snapshot)) error {
	// Emit the initial state immediately so consumers never start empty.
	f.emit(sink)

	ticker := time.NewTicker(f.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.drift()
			f.emit(sink)
		}
	}
}

// drift perturbs every reserve by a factor in [1-drift, 1+drift].
// Pairs are walked in configured order so a seed always replays the same run.
func (f *Feed) drift() {
	maxDrift := f.config.DriftPct / 100
	for _, pair := range f.config.Pairs {
		pools := f.state[pair.String()]
		for i := range pools {
			inFactor := 1 + (f.rng.Float64()*2-1)*maxDrift
			outFactor := 1 + (f.rng.Float64()*2-1)*maxDrift
			pools[i].ReserveIn = pools[i].ReserveIn.Mul(decimal.NewFromFloat(inFactor))
			pools[i].ReserveOut = pools[i].ReserveOut.Mul(decimal.NewFromFloat(outFactor))
		}
		f.state[pair.String()] = pools
	}
}

func (f *Feed) emit(sink func(domain.Snapshot)) {
	now := time.Now()
	for _, pair := range f.config.Pairs {
		pools := f.state[pair.String()]
		snap := domain.Snapshot{
			Pair:      pair,
			Pools:     append([]domain.Pool(nil), pools...),
			Timestamp: now,
		}
		sink(snap)
	}
}
