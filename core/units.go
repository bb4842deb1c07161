package core

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the decimal scale of the payment token (USDC).
const TokenDecimals = 6

// ToRawUnits converts a USD amount into integer raw token units.
//
// Conversion truncates toward zero: fractions below 1e-6 USD are dropped.
// This is a rounding-down policy, not rounding-nearest.
func ToRawUnits(amount float64) *big.Int {
	return decimal.NewFromFloat(amount).Shift(TokenDecimals).Truncate(0).BigInt()
}

// FromRawUnits converts integer raw token units into a decimal USD amount.
func FromRawUnits(raw *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -TokenDecimals)
}
