package asset

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseDecimalScalesToRawUnits(t *testing.T) {
	tests := []struct {
		name    string
		asset   *Asset
		value   string
		wantRaw string
	}{
		{"usdc whole", USDC, "50000", "50000000000"},
		{"usdc fractional", USDC, "0.000001", "1"},
		{"dai whole", DAI, "23631", "23631000000000000000000"},
		{"weth fractional", WETH, "1.5", "1500000000000000000"},
		{"zero", USDC, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, err := ParseDecimal(tt.asset, dec(tt.value))
			if err != nil {
				t.Fatalf("ParseDecimal: %v", err)
			}
			want, ok := new(big.Int).SetString(tt.wantRaw, 10)
			if !ok {
				t.Fatalf("bad want %q", tt.wantRaw)
			}
			if amt.Raw().Cmp(want) != 0 {
				t.Errorf("raw = %s, want %s", amt.Raw(), want)
			}
		})
	}
}

func TestParseDecimalRejectsExcessPrecision(t *testing.T) {
	_, err := ParseDecimal(USDC, dec("1.0000001")) // 7 places, USDC has 6
	if !errors.Is(err, ErrTooManyDecimals) {
		t.Fatalf("got %v, want ErrTooManyDecimals", err)
	}
}

func TestParseDecimalRejectsNegative(t *testing.T) {
	_, err := ParseDecimal(USDC, dec("-1"))
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("got %v, want ErrNegativeAmount", err)
	}
}

func TestParseDecimalNilAsset(t *testing.T) {
	_, err := ParseDecimal(nil, dec("1"))
	if !errors.Is(err, ErrNilAsset) {
		t.Fatalf("got %v, want ErrNilAsset", err)
	}
}

func TestNewAmountValidates(t *testing.T) {
	if _, err := NewAmount(nil, big.NewInt(1)); !errors.Is(err, ErrNilAsset) {
		t.Errorf("nil asset: got %v", err)
	}
	if _, err := NewAmount(USDC, nil); !errors.Is(err, ErrNilRaw) {
		t.Errorf("nil raw: got %v", err)
	}
	if _, err := NewAmount(USDC, big.NewInt(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative raw: got %v", err)
	}
}

func TestRawIsDefensiveCopy(t *testing.T) {
	raw := big.NewInt(1000)
	amt, err := NewAmount(USDC, raw)
	if err != nil {
		t.Fatalf("NewAmount: %v", err)
	}

	raw.SetInt64(0)
	if amt.Raw().Int64() != 1000 {
		t.Error("constructor aliased the caller's big.Int")
	}

	amt.Raw().SetInt64(0)
	if amt.Raw().Int64() != 1000 {
		t.Error("Raw exposed the internal big.Int")
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	amt, err := ParseDecimal(WETH, dec("2.25"))
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if !amt.Decimal().Equal(dec("2.25")) {
		t.Errorf("Decimal() = %s, want 2.25", amt.Decimal())
	}
	if got := amt.String(); got != "2.25 WETH" {
		t.Errorf("String() = %q", got)
	}
}

func TestZeroValueAmount(t *testing.T) {
	var amt Amount
	if !amt.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if amt.Raw().Sign() != 0 {
		t.Error("zero value Raw should be 0")
	}
	if !amt.Decimal().IsZero() {
		t.Error("zero value Decimal should be 0")
	}
}
