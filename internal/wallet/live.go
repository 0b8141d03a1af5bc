/*

This file contains the live account adapter backed by the node's bank module.

*/

package wallet

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/gateway"
	"github.com/amphora-protocol/aam/internal/types"
)

// LiveAccount reads balances for a fixed address through the settlement node.
type LiveAccount struct {
	client  *gateway.Client
	address string
}

func NewLiveAccount(client *gateway.Client, address string) *LiveAccount {
	return &LiveAccount{client: client, address: address}
}

func (a *LiveAccount) Address() string {
	return a.address
}

type balanceParams struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

type balanceResult struct {
	Amount sdkmath.Int `json:"amount"`
}

func (a *LiveAccount) Balance(ctx context.Context, asset types.Token) (sdkmath.Int, error) {
	params := balanceParams{Address: a.address, Denom: asset.Denom}

	var result balanceResult
	if err := a.client.Call(ctx, "bank_balance", params, &result); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if result.Amount.IsNil() || result.Amount.IsNegative() {
		return sdkmath.ZeroInt(), errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("invalid balance for %s", asset.Denom))
	}
	return result.Amount, nil
}
