package domain

import (
	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/internal/asset"
)

// Leg is one venue-specific allocation of a split trade.
//
// AmountIn never exceeds the pool's impact cap except when CapOverflow is
// set: the splitter designates at most one leg per split as the overflow
// leg, which absorbs whatever the capacitated pools could not (see Split).
type Leg struct {
	VenueID      string
	AmountIn     decimal.Decimal
	EstimatedOut decimal.Decimal
	MinOut       decimal.Decimal // zero means "derive from EstimatedOut at build time"
	Path         []*asset.Asset  // ordered swap path, length >= 2
	FeeBps       int32
	CapOverflow  bool
}

// TotalIn sums AmountIn over a leg set.
func TotalIn(legs []Leg) decimal.Decimal {
	total := decimal.Zero
	for _, leg := range legs {
		total = total.Add(leg.AmountIn)
	}
	return total
}

// TotalOut sums EstimatedOut over a leg set.
func TotalOut(legs []Leg) decimal.Decimal {
	total := decimal.Zero
	for _, leg := range legs {
		total = total.Add(leg.EstimatedOut)
	}
	return total
}
