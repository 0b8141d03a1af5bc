/*

Governed parameter set for the asset-allocation manager.

These values are the only durable state the manager owns: positions are always
recomputed from the venue adapters, but the bands, reward thresholds and the
slippage bound survive restarts (versioned in the database) and are mutated
exclusively through the governance setters.

*/

package types

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrBandsNil          = errors.New("liquidity band is nil")
	ErrBandsNegative     = errors.New("liquidity band is negative")
	ErrBandsOutOfOrder   = errors.New("liquidity bands must satisfy min <= middle <= max")
	ErrThresholdNil      = errors.New("reward threshold is nil")
	ErrThresholdNegative = errors.New("reward threshold is negative")
	ErrSlippageNil       = errors.New("slippage bound is nil")
	ErrSlippageNegative  = errors.New("slippage bound is negative")
	ErrSlippageTooLarge  = errors.New("slippage bound exceeds the hard ceiling")
)

// MaxSlippageCeiling is the absolute upper bound on the slippage parameter,
// enforced on every set regardless of the caller's trust tier.
var MaxSlippageCeiling = sdkmath.LegacyNewDecWithPrec(1, 1) // 10%

// LiquidityBands are the (min, middle, max) thresholds, in pool currency base
// units, governing how much capital stays invested versus idle.
type LiquidityBands struct {
	Min    sdkmath.Int `json:"min"`
	Middle sdkmath.Int `json:"middle"`
	Max    sdkmath.Int `json:"max"`
}

// Validate checks presence, sign and ordering of the bands.
func (b LiquidityBands) Validate() error {
	for _, band := range []sdkmath.Int{b.Min, b.Middle, b.Max} {
		if band.IsNil() {
			return ErrBandsNil
		}
		if band.IsNegative() {
			return ErrBandsNegative
		}
	}
	if b.Min.GT(b.Middle) || b.Middle.GT(b.Max) {
		return fmt.Errorf("%w: min=%s middle=%s max=%s",
			ErrBandsOutOfOrder, b.Min, b.Middle, b.Max)
	}
	return nil
}

// RewardThresholds hold the claim and reinvest floors, in reward-token base
// units. There is no ordering constraint between the two.
type RewardThresholds struct {
	ClaimMin    sdkmath.Int `json:"claim_min"`
	ReinvestMin sdkmath.Int `json:"reinvest_min"`
}

// Validate checks presence and sign of the thresholds.
func (r RewardThresholds) Validate() error {
	for _, threshold := range []sdkmath.Int{r.ClaimMin, r.ReinvestMin} {
		if threshold.IsNil() {
			return ErrThresholdNil
		}
		if threshold.IsNegative() {
			return ErrThresholdNegative
		}
	}
	return nil
}

// ManagerParameters is the complete governed parameter set.
type ManagerParameters struct {
	Bands       LiquidityBands    `json:"bands"`
	Thresholds  RewardThresholds  `json:"thresholds"`
	MaxSlippage sdkmath.LegacyDec `json:"max_slippage"` // fraction of 100%, WAD precision
}

// Validate checks every parameter against its absolute bounds.
func (p ManagerParameters) Validate() error {
	if err := p.Bands.Validate(); err != nil {
		return err
	}
	if err := p.Thresholds.Validate(); err != nil {
		return err
	}
	if p.MaxSlippage.IsNil() {
		return ErrSlippageNil
	}
	if p.MaxSlippage.IsNegative() {
		return ErrSlippageNegative
	}
	if p.MaxSlippage.GT(MaxSlippageCeiling) {
		return fmt.Errorf("%w: %s > %s", ErrSlippageTooLarge, p.MaxSlippage, MaxSlippageCeiling)
	}
	return nil
}
