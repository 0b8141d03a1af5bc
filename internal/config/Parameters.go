/*

This file contains the default operating parameters for the asset manager.

These defaults seed the database on first start, when no active parameter set
exists yet. After that the database copy is authoritative and every change
flows through governance.

*/

package config

import (
	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
)

// DefaultManagerParameters provides a baseline parameter set for a manager
// handling a 6-decimal settlement token and an 18-decimal reward token.
// These values are used if no active parameters are found in the database
// during initialization.
var DefaultManagerParameters = types.ManagerParameters{
	Bands: types.LiquidityBands{
		Min: sdkmath.NewInt(100_000_000_000), // 100k tokens minimum deployed.
		// Rationale: below this the venue yield no longer covers the operational
		// cost of running the manager at all.

		Middle: sdkmath.NewInt(250_000_000_000), // 250k tokens target.
		// Rationale: the resting point rebalancing steers toward. Idle capital
		// beyond the pool's own needs earns nothing until deployed to this level.

		Max: sdkmath.NewInt(400_000_000_000), // 400k tokens ceiling.
		// Rationale: caps venue exposure. Anything above this is pulled back on
		// the next rebalance regardless of yield.
	},
	Thresholds: types.RewardThresholds{
		ClaimMin: sdkmath.NewIntWithDecimal(10, 18), // 10 reward tokens.
		// Rationale: claiming costs a transaction. Accruals at or below this stay
		// at the venue until they grow past the threshold.

		ReinvestMin: sdkmath.NewIntWithDecimal(25, 18), // 25 reward tokens.
		// Rationale: reinvesting dust churns transactions for negligible position
		// growth. Holdings at or below this stay in the manager account.
	},
	MaxSlippage: sdkmath.LegacyNewDecWithPrec(1, 2), // 1% of notional.
	// Rationale: reward conversions are small and should never move the market.
	// The 10% hard ceiling is enforced on every set independently of this value.
}
