// Package settlement implements the settlement bounded context: it encodes
// routing legs into an atomic multi-call payload and submits it to the
// external settlement service.
package settlement

import (
	"context"

	"github.com/routefi/trade-router/business/settlement/app"
	settlementDI "github.com/routefi/trade-router/business/settlement/di"
	"github.com/routefi/trade-router/business/settlement/infra/api"
	"github.com/routefi/trade-router/business/settlement/infra/evm"
	"github.com/routefi/trade-router/internal/config"
	"github.com/routefi/trade-router/internal/di"
	"github.com/routefi/trade-router/internal/logger"
	"github.com/routefi/trade-router/internal/monolith"
)

// Module implements the settlement bounded context.
type Module struct{}

// RegisterServices registers all settlement services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Encoder - private dependency
	di.RegisterToken(c, settlementDI.Encoder, func(sr di.ServiceRegistry) app.Encoder {
		encoder, err := evm.NewEncoder()
		if err != nil {
			panic("failed to create encoder: " + err.Error())
		}
		return encoder
	})

	// Register Submitter - private dependency
	di.RegisterToken(c, settlementDI.Submitter, func(sr di.ServiceRegistry) app.Submitter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clientCfg := api.DefaultClientConfig(cfg.Settlement.Endpoint)
		if cfg.Settlement.RequestTimeout > 0 {
			clientCfg.RequestTimeout = cfg.Settlement.RequestTimeout
		}
		if cfg.Settlement.RequestsPerMinute > 0 {
			clientCfg.RequestsPerMinute = cfg.Settlement.RequestsPerMinute
		}

		client, err := api.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create settlement client: " + err.Error())
		}
		return client
	})

	// Register Builder - private dependency
	di.RegisterToken(c, settlementDI.Builder, func(sr di.ServiceRegistry) *app.Builder {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewBuilder(settlementDI.GetEncoder(sr), app.BuilderConfig{
			VenueRouters:   cfg.Settlement.VenueRouterMap(),
			Recipient:      cfg.Settlement.RecipientHex(),
			DeadlineWindow: cfg.Settlement.DeadlineWindow,
		}, log)
	})

	// Register SettlementService (public - exposed to other modules)
	di.RegisterToken(c, settlementDI.SettlementService, func(sr di.ServiceRegistry) *app.SettlementService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewSettlementService(
			settlementDI.GetBuilder(sr),
			settlementDI.GetSubmitter(sr),
			log,
		)
	})

	return nil
}

// Startup initializes the settlement module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "settlement module started",
		"endpoint", mono.Config().Settlement.Endpoint,
		"venues", len(mono.Config().Settlement.VenueRouters))
	return nil
}
