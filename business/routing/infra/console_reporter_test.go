package infra

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/business/liquidity/domain"
	routing "github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/internal/asset"
)

func TestStartRejectsSecondCall(t *testing.T) {
	r := NewConsoleReporter()
	r.out = &bytes.Buffer{}

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := r.Start(context.Background()); err == nil {
		t.Error("second Start should fail; the quote loop owns the lifecycle")
	}
}

func TestReportRendersQuote(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter()
	r.out = &buf

	pair, err := domain.ParsePair("ETH-USDC", asset.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}

	r.Report(&routing.Quote{
		ID:        "q-001",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Pair:      pair,
		AmountIn:  decimal.RequireFromString("10"),
		Simulation: routing.SimulationResult{
			TotalOut:    decimal.RequireFromString("24950.5"),
			SlippagePct: decimal.RequireFromString("0.2"),
			GasEstimate: 210000,
			Legs: []routing.Leg{
				{VenueID: "uniswap-v2", AmountIn: decimal.RequireFromString("6"), EstimatedOut: decimal.RequireFromString("14970")},
				{VenueID: "sushiswap", AmountIn: decimal.RequireFromString("4"), EstimatedOut: decimal.RequireFromString("9980.5"), CapOverflow: true},
			},
		},
		PredictedImprovementPct: decimal.RequireFromString("0.15"),
		RiskFactors: []routing.RiskFactor{
			{Name: "cap_overflow", Description: "leg exceeded impact cap", Severity: "medium"},
		},
	})

	out := buf.String()
	for _, want := range []string{
		"q-001",
		"ETH-USDC",
		"uniswap-v2",
		"[CAP OVERFLOW]",
		"24950.5000 USDC",
		"cap_overflow",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}
