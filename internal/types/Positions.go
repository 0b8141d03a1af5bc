/*

Point-in-time view of everything the manager holds, valued in the settlement
currency.

A snapshot is taken after every completed operation and persisted so the web
API can serve balance history without touching the venue. Valuation counts
invested principal, the reward-token yield position, and reward tokens sitting
idle in the holding account. Unclaimed rewards are reported separately and
never counted into TotalValue until a claim lands them.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// PositionSnapshot captures the manager's holdings at the end of an operation.
type PositionSnapshot struct {
	SnapshotID  int64  `json:"snapshot_id,omitempty"` // Auto-incremented by DB
	OperationID string `json:"operation_id"`

	// Principal position in the settlement currency.
	Principal sdkmath.Int `json:"principal"`

	// Reward-token holdings: the yield position plus idle balance in the
	// holding account, and rewards accrued but not yet claimed.
	RewardPosition sdkmath.Int `json:"reward_position"`
	RewardHeld     sdkmath.Int `json:"reward_held"`
	Unclaimed      sdkmath.Int `json:"unclaimed"`

	// Valuation. ExchangeRate is the reward->currency rate used; RewardValue
	// is the reward holdings converted at that rate. TotalValue is
	// Principal + RewardValue.
	ExchangeRate sdkmath.LegacyDec `json:"exchange_rate"`
	RewardValue  sdkmath.Int       `json:"reward_value"`
	TotalValue   sdkmath.Int       `json:"total_value"`

	Timestamp time.Time `json:"timestamp"`
}
