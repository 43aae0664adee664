package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
)

// Amount is an asset quantity in the asset's smallest unit (wei, raw token
// units). It is a boundary type: domain math stays in decimal.Decimal, and
// an Amount only exists to hand raw integers to calldata encoders.
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount wraps a raw smallest-unit value. The raw value is copied.
func NewAmount(asset *Asset, raw *big.Int) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if raw == nil {
		return Amount{}, ErrNilRaw
	}
	if raw.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{
		raw:   new(big.Int).Set(raw),
		asset: asset,
	}, nil
}

// ParseDecimal scales a human-denominated decimal into raw units.
// Fails when the value carries more fractional digits than the asset can
// represent; scaling never rounds silently.
func ParseDecimal(asset *Asset, d decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(asset.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}

	return NewAmount(asset, scaled.BigInt())
}

// Raw returns a copy of the raw smallest-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset the amount is denominated in.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Decimal converts back to the human denomination, for logs and display.
func (a Amount) Decimal() decimal.Decimal {
	if a.raw == nil || a.asset == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.asset.Decimals()))
}

func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.Decimal().String(), a.asset.Symbol())
}
