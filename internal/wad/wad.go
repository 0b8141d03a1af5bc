/*
This file contains checked arithmetic helpers for SDK math operations on token
amounts and WAD-precision fractions. All rounding floors toward zero so no
operation can manufacture value.
*/

package wad

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrFractionNil      = errors.New("fraction is nil")
	ErrFractionNegative = errors.New("fraction is negative")
	ErrUnderflow        = errors.New("subtraction underflow")
	ErrInvalidDecimals  = errors.New("decimals out of range")
)

// Pow10 returns 10^exp as an Int. exp must be non-negative.
func Pow10(exp int) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(1, exp)
}

// SafeSub returns a - b, failing instead of going negative.
func SafeSub(a, b sdkmath.Int) (sdkmath.Int, error) {
	if a.IsNil() || b.IsNil() {
		return sdkmath.ZeroInt(), ErrAmountNil
	}
	if a.IsNegative() || b.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if b.GT(a) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %s - %s", ErrUnderflow, a, b)
	}
	return a.Sub(b), nil
}

// CappedSub returns a - b floored at zero. Use it where a shortfall is
// tolerated rather than fatal.
func CappedSub(a, b sdkmath.Int) sdkmath.Int {
	if a.IsNil() || b.IsNil() {
		return sdkmath.ZeroInt()
	}
	if b.GTE(a) {
		return sdkmath.ZeroInt()
	}
	return a.Sub(b)
}

// Min returns the smaller of two amounts.
func Min(a, b sdkmath.Int) sdkmath.Int {
	if a.LT(b) {
		return a
	}
	return b
}

// MulFraction scales amount by a WAD-precision fraction, truncating the result.
func MulFraction(amount sdkmath.Int, fraction sdkmath.LegacyDec) (sdkmath.Int, error) {
	if amount.IsNil() {
		return sdkmath.ZeroInt(), ErrAmountNil
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if fraction.IsNil() {
		return sdkmath.ZeroInt(), ErrFractionNil
	}
	if fraction.IsNegative() {
		return sdkmath.ZeroInt(), ErrFractionNegative
	}
	return fraction.MulInt(amount).TruncateInt(), nil
}

// RescaleAmount converts amount between decimal bases, truncating when the
// target carries fewer decimals.
func RescaleAmount(amount sdkmath.Int, fromDecimals, toDecimals int) (sdkmath.Int, error) {
	if fromDecimals < 0 || fromDecimals > 18 || toDecimals < 0 || toDecimals > 18 {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: from=%d to=%d", ErrInvalidDecimals, fromDecimals, toDecimals)
	}
	if amount.IsNil() {
		return sdkmath.ZeroInt(), ErrAmountNil
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}

	switch {
	case toDecimals > fromDecimals:
		return amount.Mul(Pow10(toDecimals - fromDecimals)), nil
	case fromDecimals > toDecimals:
		return amount.Quo(Pow10(fromDecimals - toDecimals)), nil
	default:
		return amount, nil
	}
}
