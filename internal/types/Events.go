/*

Operation reports and journal events emitted by the manager.

Every public manager operation produces one report; reports double as the JSONB
payloads of the operation journal so the web API and the database show the same
shape the logs do.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// OperationKind identifies a manager entry point in journal rows and metrics.
type OperationKind string

const (
	OperationRebalance    OperationKind = "rebalance"
	OperationLiquidateAll OperationKind = "liquidate_all"
	OperationSwapRewards  OperationKind = "swap_rewards"
	OperationRefillPool   OperationKind = "refill_pool"
	OperationSetParameter OperationKind = "set_parameter"
	OperationPause        OperationKind = "pause"
	OperationResume       OperationKind = "resume"
)

// RebalanceAction is the band-policy decision taken within one rebalance.
type RebalanceAction string

const (
	ActionNone   RebalanceAction = "none"
	ActionInvest RebalanceAction = "invest"
	ActionDivest RebalanceAction = "divest"
)

// ParameterAction identifies which governed parameter a change targeted.
type ParameterAction string

const (
	SetLiquidityMin    ParameterAction = "set_liquidity_min"
	SetLiquidityMiddle ParameterAction = "set_liquidity_middle"
	SetLiquidityMax    ParameterAction = "set_liquidity_max"
	SetClaimMin        ParameterAction = "set_claim_rewards_min"
	SetReinvestMin     ParameterAction = "set_reinvest_rewards_min"
	SetMaxSlippage     ParameterAction = "set_max_slippage"
)

// RebalanceReport summarizes one rebalance operation.
type RebalanceReport struct {
	OperationID    string          `json:"operation_id"`
	Action         RebalanceAction `json:"action"`
	Claimed        sdkmath.Int     `json:"claimed"`
	Requested      sdkmath.Int     `json:"requested"`
	Delivered      sdkmath.Int     `json:"delivered"`
	Reinvested     sdkmath.Int     `json:"reinvested"`
	IdleBefore     sdkmath.Int     `json:"idle_before"`
	InvestedBefore sdkmath.Int     `json:"invested_before"`
	InvestedAfter  sdkmath.Int     `json:"invested_after"`
	Timestamp      time.Time       `json:"timestamp"`
}

// LiquidationReport summarizes the one-shot migration drain.
type LiquidationReport struct {
	OperationID        string      `json:"operation_id"`
	Claimed            sdkmath.Int `json:"claimed"`
	PrincipalWithdrawn sdkmath.Int `json:"principal_withdrawn"`
	RewardWithdrawn    sdkmath.Int `json:"reward_withdrawn"`
	SwapIn             sdkmath.Int `json:"swap_in"`
	SwapOut            sdkmath.Int `json:"swap_out"`
	Timestamp          time.Time   `json:"timestamp"`
}

// RewardSwapReport records an executed reward conversion.
type RewardSwapReport struct {
	OperationID string      `json:"operation_id"`
	TokenIn     string      `json:"token_in"`
	TokenOut    string      `json:"token_out"`
	AmountIn    sdkmath.Int `json:"amount_in"`
	AmountOut   sdkmath.Int `json:"amount_out"`
	Destination string      `json:"destination"`
	Timestamp   time.Time   `json:"timestamp"`
}

// RefillReport summarizes an on-demand delivery of settlement currency back
// into the pool, split by funding source.
type RefillReport struct {
	OperationID        string      `json:"operation_id"`
	Requested          sdkmath.Int `json:"requested"`
	PrincipalWithdrawn sdkmath.Int `json:"principal_withdrawn"`
	CoveredFromRewards sdkmath.Int `json:"covered_from_rewards"`
	Delivered          sdkmath.Int `json:"delivered"`
	Timestamp          time.Time   `json:"timestamp"`
}

// ParameterChange records one successful governance mutation, including
// whether it travelled the bounded tweak path.
type ParameterChange struct {
	Action    ParameterAction `json:"action"`
	OldValue  string          `json:"old_value"`
	NewValue  string          `json:"new_value"`
	Tweak     bool            `json:"tweak"`
	Caller    string          `json:"caller"`
	Timestamp time.Time       `json:"timestamp"`
}

// OperationEvent is one journal row: a manager operation with its outcome and
// the report payload serialized as JSON. Sequence is the persistent operation
// counter, continuous across restarts.
type OperationEvent struct {
	Sequence    int64         `json:"sequence"`
	OperationID string        `json:"operation_id"`
	Kind        OperationKind `json:"kind"`
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	Payload     any           `json:"payload,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
