/*

This file contains the live venue adapter.

All calls go through the settlement node's JSON-RPC surface. Amounts coming
back are validated before anything downstream trusts them.

*/

package venue

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/gateway"
	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/types"
)

var venueLogger = logger.GetForComponent("venue_client")

// LiveVenue drives the yield venue through the settlement node.
type LiveVenue struct {
	client  *gateway.Client
	manager string // account the venue debits on deposit
}

func NewLiveVenue(client *gateway.Client, managerAddress string) *LiveVenue {
	return &LiveVenue{client: client, manager: managerAddress}
}

type depositParams struct {
	Sender string      `json:"sender"`
	Denom  string      `json:"denom"`
	Amount sdkmath.Int `json:"amount"`
}

func (v *LiveVenue) Deposit(ctx context.Context, asset types.Token, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("deposit amount must be positive, got %s", amount)
	}

	params := depositParams{Sender: v.manager, Denom: asset.Denom, Amount: amount}
	if err := v.client.Call(ctx, "venue_deposit", params, nil); err != nil {
		return err
	}

	venueLogger.Info().
		Str("denom", asset.Denom).
		Str("amount", amount.String()).
		Msg("Deposited into venue")
	return nil
}

type withdrawParams struct {
	Denom       string       `json:"denom"`
	Amount      *sdkmath.Int `json:"amount,omitempty"` // omitted drains the position
	Destination string       `json:"destination"`
}

type withdrawResult struct {
	Withdrawn sdkmath.Int `json:"withdrawn"`
}

func (v *LiveVenue) Withdraw(ctx context.Context, asset types.Token, req WithdrawRequest, destination string) (sdkmath.Int, error) {
	params := withdrawParams{Denom: asset.Denom, Destination: destination}
	switch req.Mode {
	case WithdrawExact:
		if req.Amount.IsNil() {
			return sdkmath.ZeroInt(), ErrAmountNil
		}
		if req.Amount.IsNegative() {
			return sdkmath.ZeroInt(), ErrAmountNegative
		}
		amount := req.Amount
		params.Amount = &amount
	case WithdrawAll:
		// Amount stays omitted, the venue resolves it to the whole position.
	default:
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %d", ErrUnknownMode, req.Mode)
	}

	var result withdrawResult
	if err := v.client.Call(ctx, "venue_withdraw", params, &result); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if result.Withdrawn.IsNil() || result.Withdrawn.IsNegative() {
		return sdkmath.ZeroInt(), errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("invalid withdrawn amount for %s", asset.Denom))
	}

	venueLogger.Info().
		Str("denom", asset.Denom).
		Str("withdrawn", result.Withdrawn.String()).
		Str("destination", destination).
		Msg("Withdrew from venue")
	return result.Withdrawn, nil
}

type positionBalanceParams struct {
	Denom string `json:"denom"`
}

type positionBalanceResult struct {
	Balance sdkmath.Int `json:"balance"`
}

func (v *LiveVenue) PositionBalance(ctx context.Context, asset types.Token) (sdkmath.Int, error) {
	var result positionBalanceResult
	if err := v.client.Call(ctx, "venue_positionBalance", positionBalanceParams{Denom: asset.Denom}, &result); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if result.Balance.IsNil() || result.Balance.IsNegative() {
		return sdkmath.ZeroInt(), errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("invalid position balance for %s", asset.Denom))
	}
	return result.Balance, nil
}

type rewardsParams struct {
	Denoms      []string `json:"denoms"`
	Destination string   `json:"destination,omitempty"`
}

type rewardsResult struct {
	Amount sdkmath.Int `json:"amount"`
}

func (v *LiveVenue) ClaimableRewards(ctx context.Context, assets []types.Token) (sdkmath.Int, error) {
	var result rewardsResult
	if err := v.client.Call(ctx, "venue_claimableRewards", rewardsParams{Denoms: denoms(assets)}, &result); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if result.Amount.IsNil() || result.Amount.IsNegative() {
		return sdkmath.ZeroInt(), errors.Join(gateway.ErrInvalidResponse, errors.New("invalid claimable amount"))
	}
	return result.Amount, nil
}

func (v *LiveVenue) ClaimRewards(ctx context.Context, assets []types.Token, destination string) (sdkmath.Int, error) {
	params := rewardsParams{Denoms: denoms(assets), Destination: destination}

	var result rewardsResult
	if err := v.client.Call(ctx, "venue_claimRewards", params, &result); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if result.Amount.IsNil() || result.Amount.IsNegative() {
		return sdkmath.ZeroInt(), errors.Join(gateway.ErrInvalidResponse, errors.New("invalid claimed amount"))
	}

	venueLogger.Info().
		Str("claimed", result.Amount.String()).
		Str("destination", destination).
		Msg("Claimed venue rewards")
	return result.Amount, nil
}

func denoms(assets []types.Token) []string {
	out := make([]string, len(assets))
	for i, asset := range assets {
		out[i] = asset.Denom
	}
	return out
}
