package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	routingDomain "github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/business/settlement/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/logger"
)

// defaultConditionKeep is applied to the aggregate predicted output when
// deriving the batch post-condition and per-leg minimums: keep 99.5%.
var defaultConditionKeep = decimal.RequireFromString("0.995")

// BuilderConfig holds batch construction parameters.
type BuilderConfig struct {
	VenueRouters   map[string]common.Address
	Recipient      common.Address
	DeadlineWindow time.Duration
}

// Builder converts routing legs into an atomic batch payload.
//
// Legs whose venue has no known router address are dropped from execution
// rather than failing the batch. The aggregate post-condition is still
// computed over ALL input legs, dropped ones included, which can leave the
// condition unsatisfiable at settlement time; downstream consumers depend
// on the condition tracking the full quote, so the two sets are kept
// deliberately unreconciled.
type Builder struct {
	encoder Encoder
	config  BuilderConfig
	logger  logger.LoggerInterface
	now     func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(encoder Encoder, cfg BuilderConfig, log logger.LoggerInterface) *Builder {
	if cfg.DeadlineWindow <= 0 {
		cfg.DeadlineWindow = 10 * time.Minute
	}
	return &Builder{
		encoder: encoder,
		config:  cfg,
		logger:  log,
		now:     time.Now,
	}
}

// Build encodes legs into a BatchPayload. The leg slice is consumed by
// value and never mutated.
func (b *Builder) Build(ctx context.Context, legs []routingDomain.Leg) (domain.BatchPayload, error) {
	deadline := b.now().Add(b.config.DeadlineWindow)

	targets := make([]common.Address, 0, len(legs))
	callData := make([][]byte, 0, len(legs))

	for _, leg := range legs {
		router, ok := b.config.VenueRouters[leg.VenueID]
		if !ok {
			b.logger.Warn(ctx, "no router for venue, dropping leg",
				"venue", leg.VenueID,
				"amount_in", leg.AmountIn.String())
			continue
		}

		encodable := leg
		if encodable.MinOut.IsZero() {
			encodable.MinOut = encodable.EstimatedOut.Mul(defaultConditionKeep).Floor()
		}

		data, err := b.encoder.EncodeSwap(encodable, b.config.Recipient, deadline)
		if err != nil {
			return domain.BatchPayload{}, apperror.Wrap(err, apperror.CodeEncodingFailed,
				"venue "+leg.VenueID)
		}

		targets = append(targets, router)
		callData = append(callData, data)
	}

	if len(targets) == 0 {
		return domain.BatchPayload{}, apperror.New(apperror.CodeNoValidRoutes,
			apperror.WithContext(fmt.Sprintf("%d legs, none with a known router", len(legs))))
	}

	// The condition floor covers every input leg, dropped ones included.
	minAggregate := routingDomain.TotalOut(legs).Mul(defaultConditionKeep).Floor()
	condition := "outputs_sum >= " + minAggregate.String()

	b.logger.Debug(ctx, "batch built",
		"legs_in", len(legs),
		"legs_encoded", len(targets),
		"condition", condition,
		"deadline", deadline)

	return domain.NewBatchPayload(targets, callData, condition, deadline), nil
}
