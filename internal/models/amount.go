package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not positive two-decimal quantities.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

const (
	maxScale    = 18
	maxExponent = 16
	maxDigits   = 38
)

// ToCents converts a decimal LZAR amount to integer cents. Amounts with more than two
// fractional digits or that are not positive are rejected.
func ToCents(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: must be greater than 0", ErrInvalidAmount)
	}
	// checked before any arithmetic, which rescales by the exponent
	if amount.Exponent() < -maxScale || amount.Exponent() > maxExponent || amount.NumDigits() > maxDigits {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}

	cents := amount.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: at most two decimal places allowed", ErrInvalidAmount)
	}
	if !cents.LessThanOrEqual(decimal.NewFromInt(1 << 53)) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}

	return cents.IntPart(), nil
}

// FromCents converts integer cents to a decimal LZAR amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
