package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	liquidityApp "github.com/routefi/trade-router/business/liquidity/app"
	liquidityDomain "github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/cache"
	"github.com/routefi/trade-router/internal/logger"
)

const (
	tracerName = "routing"
	meterName  = "routing"

	// Quotes are keyed by snapshot timestamp, so a fresh snapshot always
	// misses. The TTL only bounds memory for abandoned pairs.
	quoteCacheTTL   = time.Minute
	quoteCacheSweep = 5 * time.Minute
)

type optimizerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	capOverflows metric.Int64Counter
	cacheHits    metric.Int64Counter
}

// OptimizerConfig holds per-instance routing parameters.
type OptimizerConfig struct {
	MaxImpactPct      decimal.Decimal
	SlippageTolerance decimal.Decimal // fraction, e.g. 0.005
	StaleTimeout      time.Duration
	Gas               domain.GasModel
}

// Optimizer turns a trade request into a split, simulated routing quote.
// Quotes for an unchanged (pair, amount, snapshot) triple are memoized, so
// the periodic quote loop only pays for splitting when liquidity moved.
// Safe for concurrent use.
type Optimizer struct {
	source   liquidityApp.SnapshotSource
	splitter *domain.Splitter
	config   OptimizerConfig
	logger   logger.LoggerInterface
	now      func() time.Time
	quotes   *cache.Cache[string, *domain.Quote]

	tracer  trace.Tracer
	metrics *optimizerMetrics
}

// Ensure Optimizer implements QuoteProvider.
var _ QuoteProvider = (*Optimizer)(nil)

// NewOptimizer creates an Optimizer over the given snapshot source.
func NewOptimizer(source liquidityApp.SnapshotSource, splitter *domain.Splitter, cfg OptimizerConfig, log logger.LoggerInterface) (*Optimizer, error) {
	o := &Optimizer{
		source:   source,
		splitter: splitter,
		config:   cfg,
		logger:   log,
		now:      time.Now,
		quotes:   cache.New[string, *domain.Quote](quoteCacheSweep),
		tracer:   otel.Tracer(tracerName),
	}

	if err := o.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return o, nil
}

func (o *Optimizer) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	o.metrics = &optimizerMetrics{}

	o.metrics.quotesTotal, err = meter.Int64Counter(
		"routing_quotes_total",
		metric.WithDescription("Total routing quote requests"),
	)
	if err != nil {
		return err
	}

	o.metrics.quoteLatency, err = meter.Float64Histogram(
		"routing_quote_latency_ms",
		metric.WithDescription("Quote computation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	o.metrics.quoteErrors, err = meter.Int64Counter(
		"routing_quote_errors_total",
		metric.WithDescription("Total routing quote errors"),
	)
	if err != nil {
		return err
	}

	o.metrics.capOverflows, err = meter.Int64Counter(
		"routing_cap_overflows_total",
		metric.WithDescription("Quotes whose split needed a cap-overflow leg"),
	)
	if err != nil {
		return err
	}

	o.metrics.cacheHits, err = meter.Int64Counter(
		"routing_quote_cache_hits_total",
		metric.WithDescription("Quotes served from the memoized cache"),
	)
	return err
}

// Optimize splits amountIn across the pair's pools and simulates the result.
func (o *Optimizer) Optimize(ctx context.Context, pair string, amountIn decimal.Decimal) (*domain.Quote, error) {
	ctx, span := o.tracer.Start(ctx, "routing.optimize",
		trace.WithAttributes(
			attribute.String("pair", pair),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	start := o.now()
	o.metrics.quotesTotal.Add(ctx, 1)

	quote, err := o.optimize(ctx, pair, amountIn)

	o.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		o.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if quote.HasCapOverflow() {
		o.metrics.capOverflows.Add(ctx, 1)
		o.logger.Warn(ctx, "impact cap bypassed for overflow leg",
			"pair", pair,
			"amount_in", amountIn.String())
	}

	span.SetAttributes(
		attribute.Int("legs", len(quote.Simulation.Legs)),
		attribute.String("total_out", quote.Simulation.TotalOut.String()),
		attribute.Bool("cap_overflow", quote.HasCapOverflow()),
	)
	span.SetStatus(codes.Ok, "quote computed")

	return quote, nil
}

func (o *Optimizer) optimize(ctx context.Context, pair string, amountIn decimal.Decimal) (*domain.Quote, error) {
	snap, err := o.source.Snapshot(pair)
	if err != nil {
		return nil, err
	}

	age := o.now().Sub(snap.Timestamp)
	if o.config.StaleTimeout > 0 && age > o.config.StaleTimeout {
		return nil, apperror.New(apperror.CodeStaleSnapshot,
			apperror.WithContext(fmt.Sprintf("%s snapshot is %s old", pair, age.Round(time.Second))))
	}

	cacheKey := fmt.Sprintf("%s|%s|%d", pair, amountIn.String(), snap.Timestamp.UnixNano())
	if cached, ok := o.quotes.Get(ctx, cacheKey); ok {
		o.metrics.cacheHits.Add(ctx, 1)
		return cached, nil
	}

	legs, err := o.splitter.Split(snap.Pair, snap.Pools, amountIn, o.config.MaxImpactPct)
	if err != nil {
		return nil, err
	}
	o.applyMinOut(legs)

	sim := domain.Simulate(legs, o.config.Gas)

	quote := &domain.Quote{
		ID:                      fmt.Sprintf("%s-%d", pair, o.now().UnixNano()),
		Timestamp:               o.now(),
		Pair:                    snap.Pair,
		AmountIn:                amountIn,
		MaxImpactPct:            o.config.MaxImpactPct,
		Simulation:              sim,
		PredictedImprovementPct: o.improvementPct(snap.Pools, amountIn, sim.TotalOut),
	}
	quote.RiskFactors = o.assessRisk(quote, age)
	o.quotes.Set(ctx, cacheKey, quote, quoteCacheTTL)

	o.logger.Debug(ctx, "routing quote",
		"pair", pair,
		"amount_in", amountIn.String(),
		"legs", len(legs),
		"total_out", sim.TotalOut.String(),
		"improvement_pct", quote.PredictedImprovementPct.String())

	return quote, nil
}

// applyMinOut fills in each leg's minimum acceptable output from the
// configured slippage tolerance.
func (o *Optimizer) applyMinOut(legs []domain.Leg) {
	if o.config.SlippageTolerance.LessThanOrEqual(decimal.Zero) {
		return
	}
	keep := decimal.NewFromInt(1).Sub(o.config.SlippageTolerance)
	for i := range legs {
		legs[i].MinOut = legs[i].EstimatedOut.Mul(keep).Floor()
	}
}

// improvementPct compares the split's total output with pushing the whole
// amount through the single best pool.
func (o *Optimizer) improvementPct(pools []liquidityDomain.Pool, amountIn, totalOut decimal.Decimal) decimal.Decimal {
	if amountIn.IsZero() {
		return decimal.Zero
	}

	best := decimal.Zero
	for _, pool := range pools {
		out, err := domain.EstimateOut(amountIn, pool)
		if err != nil {
			continue
		}
		if out.GreaterThan(best) {
			best = out
		}
	}
	if !best.IsPositive() {
		return decimal.Zero
	}

	return totalOut.Sub(best).Div(best).Mul(decimal.NewFromInt(100))
}

func (o *Optimizer) assessRisk(quote *domain.Quote, snapshotAge time.Duration) []domain.RiskFactor {
	var factors []domain.RiskFactor

	if quote.HasCapOverflow() {
		factors = append(factors, domain.RiskFactor{
			Name:        "cap_overflow",
			Description: "part of the trade exceeds the per-pool impact cap",
			Severity:    domain.SeverityHigh,
		})
	}

	if o.config.StaleTimeout > 0 && snapshotAge > o.config.StaleTimeout/2 {
		factors = append(factors, domain.RiskFactor{
			Name:        "aging_snapshot",
			Description: fmt.Sprintf("pool snapshot is %s old", snapshotAge.Round(time.Second)),
			Severity:    domain.SeverityLow,
		})
	}

	if len(quote.Simulation.Legs) > 2 {
		factors = append(factors, domain.RiskFactor{
			Name:        "many_legs",
			Description: fmt.Sprintf("trade splits across %d venues", len(quote.Simulation.Legs)),
			Severity:    domain.SeverityMedium,
		})
	}

	return factors
}
