// Package di contains dependency injection tokens for the settlement context.
package di

import (
	"github.com/routefi/trade-router/business/settlement/app"
	"github.com/routefi/trade-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SettlementService = di.NewToken[*app.SettlementService]("settlement.SettlementService")
)

// Private dependency tokens - internal to settlement module
var (
	Builder   = di.NewToken[*app.Builder]("settlement:builder")
	Encoder   = di.NewToken[app.Encoder]("settlement:encoder")
	Submitter = di.NewToken[app.Submitter]("settlement:submitter")
)

// Helper functions for type-safe access
func GetSettlementService(c di.ServiceRegistry) *app.SettlementService {
	return di.GetToken(c, SettlementService)
}

func GetBuilder(c di.ServiceRegistry) *app.Builder {
	return di.GetToken(c, Builder)
}

func GetEncoder(c di.ServiceRegistry) app.Encoder {
	return di.GetToken(c, Encoder)
}

func GetSubmitter(c di.ServiceRegistry) app.Submitter {
	return di.GetToken(c, Submitter)
}
