/*

This file contains the band policy that sizes every rebalance.

The policy is a pure function of the bands and the observed balances. It never
looks at prices or rewards: deciding WHETHER capital moves is separate from
executing the movement, so the decision can be tested exhaustively without a
backend.

*/

package liquidity

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/wad"
)

var planLogger = logger.GetForComponent("liquidity_planner")

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidBands    = errors.New("liquidity bands are invalid")
	ErrInvalidIdle     = errors.New("idle balance is invalid")
	ErrInvalidInvested = errors.New("invested balance is invalid")
)

// Plan is one rebalancing decision.
type Plan struct {
	Action types.RebalanceAction
	// Amount is how much to move: into the venue for invest, out of it for
	// divest. Zero when Action is none.
	Amount sdkmath.Int
}

// PlanRebalance applies the band policy to the observed balances.
//
// Deployed capital below the middle band is topped up from idle funds, capped
// by what the pool can spare. Deployed capital above the max band is pulled
// back down to the middle. Between middle and max nothing moves: the dead zone
// keeps small oscillations from churning transactions.
func PlanRebalance(bands types.LiquidityBands, idle, invested sdkmath.Int) (Plan, error) {
	if err := bands.Validate(); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidBands, err)
	}
	if idle.IsNil() || idle.IsNegative() {
		return Plan{}, fmt.Errorf("%w: %s", ErrInvalidIdle, idle)
	}
	if invested.IsNil() || invested.IsNegative() {
		return Plan{}, fmt.Errorf("%w: %s", ErrInvalidInvested, invested)
	}

	if invested.GT(bands.Max) {
		amount := invested.Sub(bands.Middle)
		planLogger.Info().
			Str("invested", invested.String()).
			Str("max", bands.Max.String()).
			Str("amount", amount.String()).
			Msg("Deployed capital above ceiling, divesting to target")
		return Plan{Action: types.ActionDivest, Amount: amount}, nil
	}

	if invested.LT(bands.Middle) && idle.IsPositive() {
		amount := wad.Min(idle, bands.Middle.Sub(invested))
		planLogger.Info().
			Str("invested", invested.String()).
			Str("middle", bands.Middle.String()).
			Str("idle", idle.String()).
			Str("amount", amount.String()).
			Msg("Deployed capital below target, investing idle funds")
		return Plan{Action: types.ActionInvest, Amount: amount}, nil
	}

	planLogger.Debug().
		Str("invested", invested.String()).
		Str("idle", idle.String()).
		Msg("Deployed capital within bands, nothing to move")
	return Plan{Action: types.ActionNone, Amount: sdkmath.ZeroInt()}, nil
}
