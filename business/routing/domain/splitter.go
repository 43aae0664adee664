package domain

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"

	liquidity "github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/asset"
)

// TakeScaler adjusts the amount taken from a pool during splitting. The
// splitter computes the maximum take (min of remaining and cap) and hands it
// to the scaler; the result must stay in (0, take]. Scalers carry their own
// randomness so two splitters with identically seeded scalers produce
// identical allocations.
type TakeScaler interface {
	Scale(take decimal.Decimal, pool liquidity.Pool) decimal.Decimal
}

// NopScaler takes the full computed amount from every pool.
type NopScaler struct{}

// Scale returns take unchanged.
func (NopScaler) Scale(take decimal.Decimal, _ liquidity.Pool) decimal.Decimal {
	return take
}

// qualityScalerMin is the lower bound of the quality factor range.
var qualityScalerMin = decimal.RequireFromString("0.6")

// qualityScalerSpan is the width of the quality factor range.
var qualityScalerSpan = decimal.RequireFromString("0.4")

// QualityScaler shrinks each take by a pseudo-random quality factor in
// [0.6, 1.0], leaving headroom in every pool to mimic live execution
// uncertainty. The random source is supplied by the caller; the scaler
// never touches global RNG state.
type QualityScaler struct {
	rng *rand.Rand
}

// NewQualityScaler creates a scaler over the given seeded source.
func NewQualityScaler(rng *rand.Rand) *QualityScaler {
	if rng == nil {
		panic("routing: nil rand source for QualityScaler")
	}
	return &QualityScaler{rng: rng}
}

// Scale returns take multiplied by a factor in [0.6, 1.0].
func (q *QualityScaler) Scale(take decimal.Decimal, _ liquidity.Pool) decimal.Decimal {
	factor := qualityScalerMin.Add(qualityScalerSpan.Mul(decimal.NewFromFloat(q.rng.Float64())))
	return take.Mul(factor)
}

// Splitter allocates a trade across pools under a per-pool impact cap.
type Splitter struct {
	scaler TakeScaler
}

// NewSplitter creates a Splitter. A nil scaler defaults to NopScaler.
func NewSplitter(scaler TakeScaler) *Splitter {
	if scaler == nil {
		scaler = NopScaler{}
	}
	return &Splitter{scaler: scaler}
}

// candidate pairs a pool with its precomputed cap and input position.
type candidate struct {
	pool liquidity.Pool
	cap  decimal.Decimal
	pos  int
}

// Split allocates totalAmount across pools, greedily filling pools in
// descending cap order.
//
// Each pool may absorb at most cap = floor(reserveIn * maxImpactPct / 100).
// If the capacitated pools cannot absorb the whole amount, the remainder
// goes to the pool with the largest raw reserveIn, bypassing its cap; that
// leg is flagged CapOverflow so callers can warn on it. The sum of leg
// inputs always equals totalAmount.
//
// A zero totalAmount yields zero legs and no error. The pool slice is
// read-only; legs are freshly allocated on every call.
func (s *Splitter) Split(pair liquidity.Pair, pools []liquidity.Pool, totalAmount, maxImpactPct decimal.Decimal) ([]Leg, error) {
	if totalAmount.IsNegative() {
		return nil, apperror.Validation(apperror.CodeInvalidAmount,
			fmt.Sprintf("total amount %s is negative", totalAmount))
	}
	if maxImpactPct.LessThanOrEqual(decimal.Zero) || maxImpactPct.GreaterThan(oneHundred) {
		return nil, apperror.Validation(apperror.CodeInvalidImpactPct,
			fmt.Sprintf("max impact %s%% out of range", maxImpactPct))
	}
	if totalAmount.IsZero() {
		return []Leg{}, nil
	}

	candidates := make([]candidate, 0, len(pools))
	for i, pool := range pools {
		cap := pool.Cap(maxImpactPct)
		if cap.LessThanOrEqual(decimal.Zero) {
			continue
		}
		candidates = append(candidates, candidate{pool: pool, cap: cap, pos: i})
	}
	if len(candidates) == 0 {
		return nil, apperror.New(apperror.CodeNoLiquidity,
			apperror.WithContext("pair "+pair.String()))
	}

	// Largest pools first; ties keep input order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].cap.GreaterThan(candidates[j].cap)
	})

	path := []*asset.Asset{pair.Base, pair.Quote}

	legs := make([]Leg, 0, len(candidates))
	legIndex := make(map[string]int, len(candidates))
	remaining := totalAmount

	for _, c := range candidates {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		take := decimal.Min(remaining, c.cap)
		take = s.scaler.Scale(take, c.pool)
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}

		out, err := EstimateOut(take, c.pool)
		if err != nil {
			return nil, err
		}

		legIndex[c.pool.VenueID] = len(legs)
		legs = append(legs, Leg{
			VenueID:      c.pool.VenueID,
			AmountIn:     take,
			EstimatedOut: out,
			Path:         path,
			FeeBps:       c.pool.FeeBps,
		})
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return assignOverflow(legs, legIndex, candidates, remaining, path)
	}

	return legs, nil
}

// assignOverflow pushes the unallocated remainder into the deepest pool,
// past its cap. The receiving leg is re-quoted at its new total input.
func assignOverflow(legs []Leg, legIndex map[string]int, candidates []candidate, remaining decimal.Decimal, path []*asset.Asset) ([]Leg, error) {
	deepest := candidates[0]
	for _, c := range candidates[1:] {
		if c.pool.ReserveIn.GreaterThan(deepest.pool.ReserveIn) {
			deepest = c
		}
	}

	idx, ok := legIndex[deepest.pool.VenueID]
	if !ok {
		out, err := EstimateOut(remaining, deepest.pool)
		if err != nil {
			return nil, err
		}
		return append(legs, Leg{
			VenueID:      deepest.pool.VenueID,
			AmountIn:     remaining,
			EstimatedOut: out,
			Path:         path,
			FeeBps:       deepest.pool.FeeBps,
			CapOverflow:  true,
		}), nil
	}

	newAmount := legs[idx].AmountIn.Add(remaining)
	out, err := EstimateOut(newAmount, deepest.pool)
	if err != nil {
		return nil, err
	}
	legs[idx].AmountIn = newAmount
	legs[idx].EstimatedOut = out
	legs[idx].CapOverflow = true
	return legs, nil
}
