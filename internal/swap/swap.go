/*

This file defines the swap venue boundary and the slippage floor every reward
conversion must clear.

The floor is computed from the oracle rate, never from venue quotes, so a
manipulated venue price cannot loosen its own bound.

*/

package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/wad"
)

// Error definitions for zero-tolerance error handling
var (
	ErrSlippageExceeded = errors.New("swap would exceed slippage bound")
	ErrEmptyPath        = errors.New("swap path is empty")
	ErrInputsNil        = errors.New("minimum out inputs are nil")
	ErrInputsNegative   = errors.New("minimum out inputs are negative")
	ErrSlippageInvalid  = errors.New("slippage must lie in [0, 1)")
)

// SwapVenue executes token conversions. Implementations must treat minOut as
// a hard floor: when the venue cannot deliver at least minOut, no funds move.
type SwapVenue interface {
	// SwapExactIn converts amountIn along path, crediting the proceeds to
	// destination. It returns the output amounts per hop, the last entry being
	// the amount delivered to destination.
	SwapExactIn(ctx context.Context, amountIn, minOut sdkmath.Int, path []types.Token, destination string, deadline time.Time) ([]sdkmath.Int, error)

	// QuoteAmountIn returns the input amounts per hop needed to obtain
	// amountOut along path, the first entry being the required input.
	QuoteAmountIn(ctx context.Context, amountOut sdkmath.Int, path []types.Token) ([]sdkmath.Int, error)
}

// MinimumOut computes the slippage floor for a swap: the expected output at
// the oracle rate, reduced by the tolerance and truncated. A positive
// expected output never floors below one base unit.
func MinimumOut(amountIn sdkmath.Int, rate, slippage sdkmath.LegacyDec) (sdkmath.Int, error) {
	if amountIn.IsNil() || rate.IsNil() || slippage.IsNil() {
		return sdkmath.ZeroInt(), ErrInputsNil
	}
	if amountIn.IsNegative() || rate.IsNegative() {
		return sdkmath.ZeroInt(), ErrInputsNegative
	}
	if slippage.IsNegative() || slippage.GTE(sdkmath.LegacyOneDec()) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %s", ErrSlippageInvalid, slippage)
	}

	expected := rate.MulInt(amountIn)
	if expected.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	toleranceFactor := sdkmath.LegacyOneDec().Sub(slippage)
	minOut, err := wad.MulFraction(amountIn, rate.Mul(toleranceFactor))
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	// Ensure minimum is at least 1
	if minOut.IsZero() {
		minOut = sdkmath.NewInt(1)
	}

	return minOut, nil
}
