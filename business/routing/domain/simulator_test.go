package domain

import (
	"testing"
)

func TestSimulateAggregates(t *testing.T) {
	gas := GasModel{Base: 150_000, PerLeg: 120_000}

	legs := []Leg{
		{VenueID: "uniswap-v2", AmountIn: dec("50000"), EstimatedOut: dec("23750")},
		{VenueID: "sushiswap", AmountIn: dec("30000"), EstimatedOut: dec("14200")},
	}

	result := Simulate(legs, gas)

	if !result.TotalIn.Equal(dec("80000")) {
		t.Errorf("TotalIn = %s, want 80000", result.TotalIn)
	}
	if !result.TotalOut.Equal(dec("37950")) {
		t.Errorf("TotalOut = %s, want 37950", result.TotalOut)
	}
	if result.GasEstimate != 390_000 {
		t.Errorf("GasEstimate = %d, want 390000", result.GasEstimate)
	}
}

func TestSimulateSlippageUsesFirstLegOnly(t *testing.T) {
	gas := DefaultGasModel()

	// First leg: 23750/50000 = 0.475 -> |0.475 - 1| * 100 = 52.5.
	legs := []Leg{
		{VenueID: "uniswap-v2", AmountIn: dec("50000"), EstimatedOut: dec("23750")},
		{VenueID: "sushiswap", AmountIn: dec("30000"), EstimatedOut: dec("1")},
	}

	result := Simulate(legs, gas)
	if !result.SlippagePct.Equal(dec("52.5")) {
		t.Errorf("SlippagePct = %s, want 52.5", result.SlippagePct)
	}

	// Changing later legs must not move the figure.
	legs[1].EstimatedOut = dec("999999")
	again := Simulate(legs, gas)
	if !again.SlippagePct.Equal(result.SlippagePct) {
		t.Errorf("slippage moved with a non-first leg: %s vs %s",
			again.SlippagePct, result.SlippagePct)
	}
}

func TestSimulateTinyFirstLegClampsDenominator(t *testing.T) {
	// amountIn below 1 uses a denominator of 1.
	legs := []Leg{
		{VenueID: "uniswap-v2", AmountIn: dec("0.5"), EstimatedOut: dec("0.25")},
	}

	result := Simulate(legs, DefaultGasModel())
	if !result.SlippagePct.Equal(dec("75")) {
		t.Errorf("SlippagePct = %s, want 75", result.SlippagePct)
	}
}

func TestSimulateEmptyLegs(t *testing.T) {
	gas := GasModel{Base: 150_000, PerLeg: 120_000}

	result := Simulate(nil, gas)
	if !result.TotalIn.IsZero() || !result.TotalOut.IsZero() {
		t.Errorf("empty simulation must be zero: in=%s out=%s", result.TotalIn, result.TotalOut)
	}
	if !result.SlippagePct.IsZero() {
		t.Errorf("SlippagePct = %s, want 0", result.SlippagePct)
	}
	if result.GasEstimate != 150_000 {
		t.Errorf("GasEstimate = %d, want base cost only", result.GasEstimate)
	}
}

func TestSimulateDoesNotAliasInput(t *testing.T) {
	legs := []Leg{
		{VenueID: "uniswap-v2", AmountIn: dec("100"), EstimatedOut: dec("50")},
	}

	result := Simulate(legs, DefaultGasModel())
	legs[0].VenueID = "mutated"

	if result.Legs[0].VenueID != "uniswap-v2" {
		t.Error("simulation result must not alias the caller's leg slice")
	}
}
