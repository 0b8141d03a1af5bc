/*

This file contains the live pool adapter.

The pool contract itself decides how much capital is investable. The adapter
never computes that figure locally, it only relays and validates it.

*/

package pool

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/gateway"
	"github.com/amphora-protocol/aam/internal/logger"
)

var poolLogger = logger.GetForComponent("pool_client")

// LivePool drives the pooled-capital contract through the settlement node.
type LivePool struct {
	client  *gateway.Client
	address string
}

func NewLivePool(client *gateway.Client, poolAddress string) *LivePool {
	return &LivePool{client: client, address: poolAddress}
}

func (p *LivePool) Address() string {
	return p.address
}

type investableResult struct {
	Investable sdkmath.Int `json:"investable"`
}

func (p *LivePool) Investable(ctx context.Context) (sdkmath.Int, error) {
	var result investableResult
	if err := p.client.Call(ctx, "pool_investable", nil, &result); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if result.Investable.IsNil() || result.Investable.IsNegative() {
		return sdkmath.ZeroInt(), errors.Join(gateway.ErrInvalidResponse, errors.New("invalid investable amount"))
	}
	return result.Investable, nil
}

type pullInvestableParams struct {
	Amount sdkmath.Int `json:"amount"`
}

type pullInvestableResult struct {
	Moved sdkmath.Int `json:"moved"`
}

func (p *LivePool) PullInvestable(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), fmt.Errorf("pull amount must be positive, got %s", amount)
	}

	var result pullInvestableResult
	if err := p.client.Call(ctx, "pool_pullInvestable", pullInvestableParams{Amount: amount}, &result); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if result.Moved.IsNil() || result.Moved.IsNegative() || result.Moved.GT(amount) {
		return sdkmath.ZeroInt(), errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("moved %s is not within [0, %s]", result.Moved, amount))
	}

	poolLogger.Info().
		Str("requested", amount.String()).
		Str("moved", result.Moved.String()).
		Msg("Pulled investable capital from pool")
	return result.Moved, nil
}

type acknowledgeParams struct {
	Amount sdkmath.Int `json:"amount"`
}

func (p *LivePool) AcknowledgeWithdrawal(ctx context.Context, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("acknowledged amount must be non-negative, got %s", amount)
	}

	if err := p.client.Call(ctx, "pool_acknowledgeWithdrawal", acknowledgeParams{Amount: amount}, nil); err != nil {
		return err
	}

	poolLogger.Info().
		Str("amount", amount.String()).
		Msg("Pool acknowledged returned funds")
	return nil
}
