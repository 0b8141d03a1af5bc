/*

This file defines how asset prices turn into exchange rates.

Prices arrive quoted in a common reference currency at WAD precision. An
exchange rate between two tokens also folds in the decimal difference between
them, so multiplying a base-unit amount of one token by the rate yields base
units of the other directly.

*/

package oracle

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/wad"
)

// Error definitions for zero-tolerance error handling
var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrPriceNotPositive = errors.New("price is not positive")
)

// PriceSource reports the current price of an asset in the oracle's reference
// currency at WAD precision.
type PriceSource interface {
	AssetPrice(ctx context.Context, asset types.Token) (sdkmath.LegacyDec, error)
}

// RateSource derives base-unit exchange rates from a PriceSource.
type RateSource struct {
	prices PriceSource
}

func NewRateSource(prices PriceSource) *RateSource {
	return &RateSource{prices: prices}
}

// ExchangeRate returns how many base units of `to` one base unit of `from` is
// worth right now.
func (r *RateSource) ExchangeRate(ctx context.Context, from, to types.Token) (sdkmath.LegacyDec, error) {
	priceFrom, err := r.assetPrice(ctx, from)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	priceTo, err := r.assetPrice(ctx, to)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}

	rate := priceFrom.Quo(priceTo)
	switch {
	case to.Decimals > from.Decimals:
		rate = rate.MulInt(wad.Pow10(to.Decimals - from.Decimals))
	case from.Decimals > to.Decimals:
		rate = rate.QuoInt(wad.Pow10(from.Decimals - to.Decimals))
	}
	return rate, nil
}

// Value converts a base-unit amount of `from` into base units of `to`,
// truncating the result.
func (r *RateSource) Value(ctx context.Context, amount sdkmath.Int, from, to types.Token) (sdkmath.Int, error) {
	if amount.IsNil() {
		return sdkmath.ZeroInt(), wad.ErrAmountNil
	}
	if amount.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	rate, err := r.ExchangeRate(ctx, from, to)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return rate.MulInt(amount).TruncateInt(), nil
}

func (r *RateSource) assetPrice(ctx context.Context, asset types.Token) (sdkmath.LegacyDec, error) {
	price, err := r.prices.AssetPrice(ctx, asset)
	if err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s: %w", ErrPriceUnavailable, asset.Denom, err)
	}
	if price.IsNil() || !price.IsPositive() {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s", ErrPriceNotPositive, asset.Denom)
	}
	return price, nil
}
