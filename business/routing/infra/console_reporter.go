// Package infra contains infrastructure adapters for the routing context.
package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/routefi/trade-router/business/routing/domain"
)

// ConsoleReporter implements Reporter for CLI output. Exactly one owner
// calls Start and Stop; a second Start is an error.
type ConsoleReporter struct {
	out     io.Writer
	started bool
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	if r.started {
		return errors.New("console reporter already started")
	}
	r.started = true
	fmt.Fprintln(r.out, "Trade Router Started")
	fmt.Fprintln(r.out, "====================")
	return nil
}

// Report outputs a routing quote to the console.
func (r *ConsoleReporter) Report(quote *domain.Quote) {
	sim := quote.Simulation

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ROUTING QUOTE")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Quote:          %s\n", quote.ID)
	fmt.Fprintf(r.out, "Timestamp:      %s\n", quote.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:           %s\n", quote.Pair.String())
	fmt.Fprintf(r.out, "Amount In:      %s %s\n", quote.AmountIn.StringFixed(4), quote.Pair.Base.Symbol())
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "LEGS")
	for i, leg := range sim.Legs {
		marker := ""
		if leg.CapOverflow {
			marker = "  [CAP OVERFLOW]"
		}
		fmt.Fprintf(r.out, "  %d. %-14s in: %s  out: %s%s\n",
			i+1, leg.VenueID, leg.AmountIn.StringFixed(4), leg.EstimatedOut.StringFixed(4), marker)
	}
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "SIMULATION")
	fmt.Fprintf(r.out, "  Total Out:      %s %s\n", sim.TotalOut.StringFixed(4), quote.Pair.Quote.Symbol())
	fmt.Fprintf(r.out, "  Slippage:       %s%%\n", sim.SlippagePct.StringFixed(2))
	fmt.Fprintf(r.out, "  Gas Estimate:   %d\n", sim.GasEstimate)
	fmt.Fprintf(r.out, "  Improvement:    %s%% vs best single pool\n", quote.PredictedImprovementPct.StringFixed(2))
	if len(quote.RiskFactors) > 0 {
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintln(r.out, "RISKS")
		for _, rf := range quote.RiskFactors {
			fmt.Fprintf(r.out, "  [%s] %s: %s\n", rf.Severity, rf.Name, rf.Description)
		}
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Trade Router Stopped")
	return nil
}
