package domain

import (
	"github.com/shopspring/decimal"
)

// GasModel estimates batch gas as a flat base plus a per-leg marginal cost.
// The figures are illustrative and deliberately decoupled from chain state.
type GasModel struct {
	Base   uint64
	PerLeg uint64
}

// DefaultGasModel returns the demo gas profile.
func DefaultGasModel() GasModel {
	return GasModel{Base: 150_000, PerLeg: 120_000}
}

// Estimate returns the gas estimate for a batch of legCount legs.
func (g GasModel) Estimate(legCount int) uint64 {
	return g.Base + uint64(legCount)*g.PerLeg
}

// SimulationResult aggregates a leg set into one predicted execution.
type SimulationResult struct {
	TotalIn     decimal.Decimal
	TotalOut    decimal.Decimal
	SlippagePct decimal.Decimal
	GasEstimate uint64
	Legs        []Leg
}

// Simulate aggregates legs into a SimulationResult. Pure over its inputs:
// the leg slice is copied, never retained or mutated.
//
// SlippagePct is derived from the first leg only,
// abs((legs[0].estimatedOut / max(legs[0].amountIn, 1) - 1) * 100), which
// understates slippage for multi-leg splits. Kept for compatibility with the
// aggregate quote consumers downstream; the batch condition uses its own
// aggregate tolerance and does not read this figure.
func Simulate(legs []Leg, gas GasModel) SimulationResult {
	copied := make([]Leg, len(legs))
	copy(copied, legs)

	result := SimulationResult{
		TotalIn:     TotalIn(copied),
		TotalOut:    TotalOut(copied),
		GasEstimate: gas.Estimate(len(copied)),
		Legs:        copied,
	}

	if len(copied) > 0 {
		first := copied[0]
		denom := decimal.Max(first.AmountIn, decimal.NewFromInt(1))
		result.SlippagePct = first.EstimatedOut.Div(denom).
			Sub(decimal.NewFromInt(1)).Mul(oneHundred).Abs()
	}

	return result
}
