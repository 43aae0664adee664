// Package evm encodes routing legs as standard V2-router swap calls.
package evm

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	routingDomain "github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/asset"
)

// SwapRouterABI covers the one router entrypoint the batch uses.
const SwapRouterABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "uint256", "name": "amountOutMin", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"},
			{"internalType": "address", "name": "to", "type": "address"},
			{"internalType": "uint256", "name": "deadline", "type": "uint256"}
		],
		"name": "swapExactTokensForTokens",
		"outputs": [
			{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Encoder packs swapExactTokensForTokens calls for V2-style routers.
type Encoder struct {
	routerABI abi.ABI
}

// NewEncoder parses the router ABI once.
func NewEncoder() (*Encoder, error) {
	parsedABI, err := abi.JSON(strings.NewReader(SwapRouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}
	return &Encoder{routerABI: parsedABI}, nil
}

// EncodeSwap scales the leg's human amounts to raw token units and packs
// the calldata. The leg path supplies both the address hops and the token
// decimals used for scaling.
func (e *Encoder) EncodeSwap(leg routingDomain.Leg, recipient common.Address, deadline time.Time) ([]byte, error) {
	if len(leg.Path) < 2 {
		return nil, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("venue %s: path needs at least 2 tokens, got %d", leg.VenueID, len(leg.Path)))
	}

	tokenIn := leg.Path[0]
	tokenOut := leg.Path[len(leg.Path)-1]

	amountIn, err := asset.ParseDecimal(tokenIn, leg.AmountIn)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeEncodingFailed,
			"scaling amountIn for "+tokenIn.Symbol())
	}
	minOut, err := asset.ParseDecimal(tokenOut, leg.MinOut)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeEncodingFailed,
			"scaling minOut for "+tokenOut.Symbol())
	}

	path := make([]common.Address, len(leg.Path))
	for i, hop := range leg.Path {
		path[i] = hop.Address()
	}

	data, err := e.routerABI.Pack("swapExactTokensForTokens",
		amountIn.Raw(),
		minOut.Raw(),
		path,
		recipient,
		big.NewInt(deadline.Unix()),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeEncodingFailed, "venue "+leg.VenueID)
	}

	return data, nil
}
