// Package domain contains the core domain types for the routing context.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	liquidity "github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/apperror"
)

var oneHundred = decimal.NewFromInt(100)

// EstimateOut computes the constant-product swap output for amountIn against
// a single pool. The fee is deducted from the input before the curve is
// applied:
//
//	amountInWithFee = amountIn * (1 - feeBps/10000)
//	newReserveIn    = reserveIn + amountInWithFee
//	amountOut       = reserveOut - (reserveIn * reserveOut) / newReserveIn
//
// Output is non-decreasing in amountIn with diminishing marginal output,
// and EstimateOut(0, pool) is exactly zero.
func EstimateOut(amountIn decimal.Decimal, pool liquidity.Pool) (decimal.Decimal, error) {
	if amountIn.IsNegative() {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidAmount,
			fmt.Sprintf("amountIn %s is negative", amountIn))
	}
	if !pool.HasLiquidity() {
		return decimal.Zero, apperror.New(apperror.CodeNoLiquidity,
			apperror.WithContext("venue "+pool.VenueID))
	}
	if amountIn.IsZero() {
		return decimal.Zero, nil
	}

	amountInWithFee := amountIn.Mul(decimal.NewFromInt(1).Sub(pool.FeeFraction()))
	newReserveIn := pool.ReserveIn.Add(amountInWithFee)
	newReserveOut := pool.ReserveIn.Mul(pool.ReserveOut).Div(newReserveIn)

	amountOut := pool.ReserveOut.Sub(newReserveOut)
	if amountOut.IsNegative() {
		amountOut = decimal.Zero
	}
	return amountOut, nil
}

// PriceImpactPct returns the relative gap between the pool's spot price and
// the realized execution price for amountIn, in percent. Large trades against
// shallow pools produce large impact.
func PriceImpactPct(amountIn decimal.Decimal, pool liquidity.Pool) (decimal.Decimal, error) {
	if amountIn.IsZero() {
		return decimal.Zero, nil
	}
	out, err := EstimateOut(amountIn, pool)
	if err != nil {
		return decimal.Zero, err
	}
	if pool.ReserveOut.IsZero() {
		return decimal.Zero, nil
	}

	spot := pool.ReserveOut.Div(pool.ReserveIn)
	exec := out.Div(amountIn)
	return decimal.NewFromInt(1).Sub(exec.Div(spot)).Mul(oneHundred), nil
}
