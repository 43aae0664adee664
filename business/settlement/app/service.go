package app

import (
	"context"

	routingDomain "github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/business/settlement/domain"
	"github.com/routefi/trade-router/internal/logger"
)

// SettlementService builds batches and hands them to the settlement layer.
type SettlementService struct {
	builder   *Builder
	submitter Submitter
	logger    logger.LoggerInterface
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(builder *Builder, submitter Submitter, log logger.LoggerInterface) *SettlementService {
	return &SettlementService{
		builder:   builder,
		submitter: submitter,
		logger:    log,
	}
}

// Build constructs a payload without submitting it.
func (s *SettlementService) Build(ctx context.Context, legs []routingDomain.Leg) (domain.BatchPayload, error) {
	return s.builder.Build(ctx, legs)
}

// Execute builds a payload from the legs and submits it in one step. The
// payload is not retained; a failed submission surfaces as an error and
// nothing is retried here.
func (s *SettlementService) Execute(ctx context.Context, legs []routingDomain.Leg) (domain.SubmitReceipt, error) {
	payload, err := s.builder.Build(ctx, legs)
	if err != nil {
		return domain.SubmitReceipt{}, err
	}

	receipt, err := s.submitter.Submit(ctx, payload)
	if err != nil {
		return domain.SubmitReceipt{}, err
	}

	if !receipt.Accepted {
		s.logger.Warn(ctx, "settlement layer did not accept batch", "batch_id", receipt.BatchID)
	}
	return receipt, nil
}
