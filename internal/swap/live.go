/*

This file contains the live swap venue adapter.

The node enforces minOut on its side and aborts the swap without moving funds
when the bound cannot be met. The client still re-checks the delivered amount
so a misbehaving node cannot report a fill below the floor.

*/

package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/gateway"
	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/types"
)

var swapLogger = logger.GetForComponent("swap_client")

// LiveSwapVenue executes conversions through the settlement node.
type LiveSwapVenue struct {
	client *gateway.Client
	sender string
}

func NewLiveSwapVenue(client *gateway.Client, senderAddress string) *LiveSwapVenue {
	return &LiveSwapVenue{client: client, sender: senderAddress}
}

type swapExactInParams struct {
	Sender      string      `json:"sender"`
	AmountIn    sdkmath.Int `json:"amount_in"`
	MinOut      sdkmath.Int `json:"min_out"`
	Path        []string    `json:"path"`
	Destination string      `json:"destination"`
	Deadline    int64       `json:"deadline"`
}

type swapExactInResult struct {
	AmountsOut []sdkmath.Int `json:"amounts_out"`
}

func (s *LiveSwapVenue) SwapExactIn(ctx context.Context, amountIn, minOut sdkmath.Int, path []types.Token, destination string, deadline time.Time) ([]sdkmath.Int, error) {
	if len(path) < 2 {
		return nil, ErrEmptyPath
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return nil, fmt.Errorf("swap amount in must be positive, got %s", amountIn)
	}

	params := swapExactInParams{
		Sender:      s.sender,
		AmountIn:    amountIn,
		MinOut:      minOut,
		Path:        pathDenoms(path),
		Destination: destination,
		Deadline:    deadline.Unix(),
	}

	var result swapExactInResult
	if err := s.client.Call(ctx, "amm_swapExactIn", params, &result); err != nil {
		return nil, err
	}
	if len(result.AmountsOut) != len(path)-1 {
		return nil, errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("%d hop outputs for a %d hop path", len(result.AmountsOut), len(path)-1))
	}
	for i, out := range result.AmountsOut {
		if out.IsNil() || out.IsNegative() {
			return nil, errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("invalid hop output %d", i))
		}
	}

	delivered := result.AmountsOut[len(result.AmountsOut)-1]
	if delivered.LT(minOut) {
		return nil, fmt.Errorf("%w: delivered %s below floor %s", ErrSlippageExceeded, delivered, minOut)
	}

	swapLogger.Info().
		Str("amountIn", amountIn.String()).
		Str("minOut", minOut.String()).
		Str("delivered", delivered.String()).
		Str("destination", destination).
		Msg("Swap executed")
	return result.AmountsOut, nil
}

type quoteAmountInParams struct {
	AmountOut sdkmath.Int `json:"amount_out"`
	Path      []string    `json:"path"`
}

type quoteAmountInResult struct {
	AmountsIn []sdkmath.Int `json:"amounts_in"`
}

func (s *LiveSwapVenue) QuoteAmountIn(ctx context.Context, amountOut sdkmath.Int, path []types.Token) ([]sdkmath.Int, error) {
	if len(path) < 2 {
		return nil, ErrEmptyPath
	}
	if amountOut.IsNil() || amountOut.IsNegative() {
		return nil, fmt.Errorf("quote amount out must be non-negative, got %s", amountOut)
	}

	params := quoteAmountInParams{AmountOut: amountOut, Path: pathDenoms(path)}

	var result quoteAmountInResult
	if err := s.client.Call(ctx, "amm_quoteAmountIn", params, &result); err != nil {
		return nil, err
	}
	if len(result.AmountsIn) != len(path)-1 {
		return nil, errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("%d hop inputs for a %d hop path", len(result.AmountsIn), len(path)-1))
	}
	for i, in := range result.AmountsIn {
		if in.IsNil() || in.IsNegative() {
			return nil, errors.Join(gateway.ErrInvalidResponse, fmt.Errorf("invalid hop input %d", i))
		}
	}

	return result.AmountsIn, nil
}

func pathDenoms(path []types.Token) []string {
	out := make([]string, len(path))
	for i, token := range path {
		out[i] = token.Denom
	}
	return out
}
