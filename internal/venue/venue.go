package venue

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
)

// Error definitions for zero-tolerance error handling
var (
	ErrAmountNil      = errors.New("withdraw amount is nil")
	ErrAmountNegative = errors.New("withdraw amount is negative")
	ErrUnknownMode    = errors.New("unknown withdraw mode")
)

// WithdrawMode selects how much of a position a withdrawal targets.
type WithdrawMode int

const (
	// WithdrawExact removes a specific amount, capped to what is available.
	WithdrawExact WithdrawMode = iota
	// WithdrawAll drains the position without the caller knowing its size.
	WithdrawAll
)

// WithdrawRequest describes one withdrawal from a venue position.
type WithdrawRequest struct {
	Mode   WithdrawMode
	Amount sdkmath.Int
}

// Exact requests withdrawal of a specific amount.
func Exact(amount sdkmath.Int) WithdrawRequest {
	return WithdrawRequest{Mode: WithdrawExact, Amount: amount}
}

// All requests withdrawal of the entire position.
func All() WithdrawRequest {
	return WithdrawRequest{Mode: WithdrawAll}
}

// Resolve returns the amount a request takes out of a position of the given
// size. Exact requests are capped to what is available, never failed.
func (r WithdrawRequest) Resolve(available sdkmath.Int) (sdkmath.Int, error) {
	switch r.Mode {
	case WithdrawAll:
		return available, nil
	case WithdrawExact:
		if r.Amount.IsNil() {
			return sdkmath.ZeroInt(), ErrAmountNil
		}
		if r.Amount.IsNegative() {
			return sdkmath.ZeroInt(), ErrAmountNegative
		}
		if r.Amount.GT(available) {
			return available, nil
		}
		return r.Amount, nil
	default:
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %d", ErrUnknownMode, r.Mode)
	}
}

// YieldVenue is the external protocol positions are deployed into. One venue
// holds at most one position per asset, and reward accrual is tracked by the
// venue itself until claimed.
type YieldVenue interface {
	// Deposit moves amount of asset from the manager account into the venue.
	Deposit(ctx context.Context, asset types.Token, amount sdkmath.Int) error

	// Withdraw removes funds from the asset's position and pays them to
	// destination. It reports the amount actually withdrawn, which may be less
	// than an exact request when the position is smaller.
	Withdraw(ctx context.Context, asset types.Token, req WithdrawRequest, destination string) (sdkmath.Int, error)

	// PositionBalance returns the current size of the asset's position.
	PositionBalance(ctx context.Context, asset types.Token) (sdkmath.Int, error)

	// ClaimableRewards returns rewards accrued across the given positions but
	// not yet claimed, in reward token base units.
	ClaimableRewards(ctx context.Context, assets []types.Token) (sdkmath.Int, error)

	// ClaimRewards collects accrued rewards for the given positions into
	// destination and reports the amount claimed.
	ClaimRewards(ctx context.Context, assets []types.Token, destination string) (sdkmath.Int, error)
}
