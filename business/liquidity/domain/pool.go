// Package domain contains the core domain types for the liquidity context.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/asset"
)

// Pair represents a trading pair using typed assets.
type Pair struct {
	Base  *asset.Asset // e.g., ETH
	Quote *asset.Asset // e.g., USDC
}

// NewPair creates a new trading pair.
func NewPair(base, quote *asset.Asset) Pair {
	if base == nil || quote == nil {
		panic("liquidity: nil asset in pair")
	}
	return Pair{Base: base, Quote: quote}
}

// ParsePair resolves a "BASE-QUOTE" symbol string against the registry.
func ParsePair(symbol string, registry *asset.Registry) (Pair, error) {
	baseSym, quoteSym, ok := strings.Cut(symbol, "-")
	if !ok || baseSym == "" || quoteSym == "" {
		return Pair{}, apperror.Validation(apperror.CodeInvalidFormat,
			fmt.Sprintf("pair symbol %q must be BASE-QUOTE", symbol))
	}

	base, ok := registry.GetBySymbolAndChain(baseSym, asset.ChainIDEthereum)
	if !ok {
		return Pair{}, apperror.NotFound(apperror.CodeNotFound, "unknown base asset "+baseSym)
	}
	quote, ok := registry.GetBySymbolAndChain(quoteSym, asset.ChainIDEthereum)
	if !ok {
		return Pair{}, apperror.NotFound(apperror.CodeNotFound, "unknown quote asset "+quoteSym)
	}

	return NewPair(base, quote), nil
}

// String returns the pair symbol (e.g., "ETH-USDC").
func (p Pair) String() string {
	return p.Base.Symbol() + "-" + p.Quote.Symbol()
}

// Invert returns the inverted pair (e.g., ETH-USDC -> USDC-ETH).
func (p Pair) Invert() Pair {
	return Pair{Base: p.Quote, Quote: p.Base}
}

// maxFeeBps is the exclusive upper bound for pool fees.
const maxFeeBps = 10_000

// Pool is a liquidity venue snapshot for one side of a trading pair.
// Reserves are in human units.
type Pool struct {
	VenueID    string
	ReserveIn  decimal.Decimal
	ReserveOut decimal.Decimal
	FeeBps     int32
}

// Validate checks the pool invariants: non-negative reserves and a fee in
// [0, 10000).
func (p Pool) Validate() error {
	if p.VenueID == "" {
		return apperror.Validation(apperror.CodeInvalidPool, "empty venue id")
	}
	if p.ReserveIn.IsNegative() || p.ReserveOut.IsNegative() {
		return apperror.Validation(apperror.CodeInvalidPool,
			fmt.Sprintf("venue %s: negative reserve", p.VenueID))
	}
	if p.FeeBps < 0 || p.FeeBps >= maxFeeBps {
		return apperror.Validation(apperror.CodeInvalidPool,
			fmt.Sprintf("venue %s: fee %d bps out of range", p.VenueID, p.FeeBps))
	}
	return nil
}

// HasLiquidity reports whether the pool can absorb any input at all.
// A pool with zero ReserveIn has zero capacity, never infinite.
func (p Pool) HasLiquidity() bool {
	return p.ReserveIn.IsPositive()
}

// Cap returns the maximum input this pool may absorb under the given
// per-pool impact cap: floor(reserveIn * maxImpactPct / 100).
func (p Pool) Cap(maxImpactPct decimal.Decimal) decimal.Decimal {
	return p.ReserveIn.Mul(maxImpactPct).Div(decimal.NewFromInt(100)).Floor()
}

// FeeFraction returns the fee as a fraction (e.g. 25 bps -> 0.0025).
func (p Pool) FeeFraction() decimal.Decimal {
	return decimal.New(int64(p.FeeBps), -4)
}

// Snapshot is the set of pool states for a pair at an instant.
type Snapshot struct {
	Pair      Pair
	Pools     []Pool
	Timestamp time.Time
}

// Clone returns a deep copy so callers can hold a snapshot without aliasing
// the store's state.
func (s Snapshot) Clone() Snapshot {
	pools := make([]Pool, len(s.Pools))
	copy(pools, s.Pools)
	return Snapshot{
		Pair:      s.Pair,
		Pools:     pools,
		Timestamp: s.Timestamp,
	}
}

// Validate checks every pool in the snapshot.
func (s Snapshot) Validate() error {
	for _, p := range s.Pools {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
