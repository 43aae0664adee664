// Package app contains application services and port definitions for the settlement context.
package app

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	routingDomain "github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/business/settlement/domain"
)

// Encoder turns one routing leg into venue-router calldata.
type Encoder interface {
	EncodeSwap(leg routingDomain.Leg, recipient common.Address, deadline time.Time) ([]byte, error)
}

// Submitter hands a finished payload to the external settlement layer.
type Submitter interface {
	Submit(ctx context.Context, payload domain.BatchPayload) (domain.SubmitReceipt, error)
}
