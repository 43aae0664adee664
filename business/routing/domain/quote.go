package domain

import (
	"time"

	"github.com/shopspring/decimal"

	liquidity "github.com/routefi/trade-router/business/liquidity/domain"
)

// Risk severity levels.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// RiskFactor flags a condition the user should see before submitting.
type RiskFactor struct {
	Name        string
	Description string
	Severity    string // "low", "medium", "high"
}

// Quote is one optimized routing proposal for a requested trade.
type Quote struct {
	ID           string
	Timestamp    time.Time
	Pair         liquidity.Pair
	AmountIn     decimal.Decimal
	MaxImpactPct decimal.Decimal
	Simulation   SimulationResult

	// PredictedImprovementPct compares the split's total output against
	// sending the whole amount through the single best pool.
	PredictedImprovementPct decimal.Decimal

	RiskFactors []RiskFactor
}

// HasCapOverflow reports whether any leg bypassed its impact cap.
func (q *Quote) HasCapOverflow() bool {
	for _, leg := range q.Simulation.Legs {
		if leg.CapOverflow {
			return true
		}
	}
	return false
}
