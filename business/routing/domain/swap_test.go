package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	liquidity "github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/apperror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pool(venue, reserveIn, reserveOut string, feeBps int32) liquidity.Pool {
	return liquidity.Pool{
		VenueID:    venue,
		ReserveIn:  dec(reserveIn),
		ReserveOut: dec(reserveOut),
		FeeBps:     feeBps,
	}
}

func TestEstimateOut(t *testing.T) {
	// 1M/500k at 25 bps: amountInWithFee = 49,875, newReserveIn = 1,049,875,
	// amountOut = 500,000 - 5e11/1,049,875.
	p := pool("uniswap-v2", "1000000", "500000", 25)

	out, err := EstimateOut(dec("50000"), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := dec("23752.8277")
	if out.Sub(want).Abs().GreaterThan(dec("0.01")) {
		t.Errorf("EstimateOut = %s, want %s +/- 0.01", out, want)
	}
}

func TestEstimateOutZeroInput(t *testing.T) {
	p := pool("uniswap-v2", "1000000", "500000", 25)

	out, err := EstimateOut(decimal.Zero, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsZero() {
		t.Errorf("EstimateOut(0) = %s, want exactly 0", out)
	}
}

func TestEstimateOutNegativeInput(t *testing.T) {
	p := pool("uniswap-v2", "1000000", "500000", 25)

	_, err := EstimateOut(dec("-1"), p)
	if apperror.GetCode(err) != apperror.CodeInvalidAmount {
		t.Errorf("expected %s, got %v", apperror.CodeInvalidAmount, err)
	}
}

func TestEstimateOutEmptyPool(t *testing.T) {
	p := pool("uniswap-v2", "0", "500000", 25)

	_, err := EstimateOut(dec("100"), p)
	if apperror.GetCode(err) != apperror.CodeNoLiquidity {
		t.Errorf("expected %s, got %v", apperror.CodeNoLiquidity, err)
	}
}

func TestEstimateOutMonotonicity(t *testing.T) {
	p := pool("uniswap-v2", "1000000", "500000", 30)

	amounts := []string{"1", "10", "100", "1000", "10000", "100000", "1000000"}

	prevOut := decimal.Zero
	prevMarginal := decimal.Decimal{}
	for i, raw := range amounts {
		amountIn := dec(raw)
		out, err := EstimateOut(amountIn, p)
		if err != nil {
			t.Fatalf("EstimateOut(%s): %v", raw, err)
		}

		if out.LessThan(prevOut) {
			t.Fatalf("output decreased: EstimateOut(%s) = %s < %s", raw, out, prevOut)
		}

		marginal := out.Div(amountIn)
		if i > 0 && marginal.GreaterThanOrEqual(prevMarginal) {
			t.Fatalf("marginal output did not diminish at amountIn = %s: %s >= %s",
				raw, marginal, prevMarginal)
		}

		prevOut = out
		prevMarginal = marginal
	}
}

func TestEstimateOutNeverExceedsReserve(t *testing.T) {
	p := pool("uniswap-v2", "1000", "500", 30)

	// Input vastly larger than the pool: output approaches but never
	// reaches reserveOut.
	out, err := EstimateOut(dec("1000000000"), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.GreaterThanOrEqual(p.ReserveOut) {
		t.Errorf("EstimateOut = %s, must stay below reserveOut %s", out, p.ReserveOut)
	}
	if out.IsNegative() {
		t.Errorf("EstimateOut = %s, must never be negative", out)
	}
}

func TestPriceImpactPct(t *testing.T) {
	p := pool("uniswap-v2", "1000000", "500000", 0)

	small, err := PriceImpactPct(dec("100"), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	large, err := PriceImpactPct(dec("100000"), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !small.IsPositive() || !large.IsPositive() {
		t.Fatalf("impact must be positive for nonzero trades: small=%s large=%s", small, large)
	}
	if large.LessThanOrEqual(small) {
		t.Errorf("impact must grow with trade size: large=%s small=%s", large, small)
	}

	zero, err := PriceImpactPct(decimal.Zero, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("PriceImpactPct(0) = %s, want 0", zero)
	}
}
