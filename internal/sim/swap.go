package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/oracle"
	"github.com/amphora-protocol/aam/internal/swap"
	"github.com/amphora-protocol/aam/internal/types"
)

// SwapVenue fills orders at the oracle rate unless an execution rate override
// is set, which lets tests push fills above or below the slippage floor.
type SwapVenue struct {
	mu       sync.Mutex
	ledger   *Ledger
	address  string
	sender   string
	rates    *oracle.RateSource
	override *sdkmath.LegacyDec
}

func NewSwapVenue(ledger *Ledger, address, senderAddress string, rates *oracle.RateSource) *SwapVenue {
	return &SwapVenue{
		ledger:  ledger,
		address: address,
		sender:  senderAddress,
		rates:   rates,
	}
}

// SetExecutionRate pins the per-hop fill rate, overriding the oracle.
func (s *SwapVenue) SetExecutionRate(rate sdkmath.LegacyDec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = &rate
}

// ClearExecutionRate returns the venue to oracle-priced fills.
func (s *SwapVenue) ClearExecutionRate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = nil
}

func (s *SwapVenue) SwapExactIn(ctx context.Context, amountIn, minOut sdkmath.Int, path []types.Token, destination string, _ time.Time) ([]sdkmath.Int, error) {
	if len(path) < 2 {
		return nil, swap.ErrEmptyPath
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return nil, fmt.Errorf("swap amount in must be positive, got %s", amountIn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Price every hop before anything moves.
	amountsOut := make([]sdkmath.Int, 0, len(path)-1)
	current := amountIn
	for i := 1; i < len(path); i++ {
		rate, err := s.executionRate(ctx, path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		current = rate.MulInt(current).TruncateInt()
		amountsOut = append(amountsOut, current)
	}

	delivered := amountsOut[len(amountsOut)-1]
	if delivered.LT(minOut) {
		return nil, fmt.Errorf("%w: would deliver %s below floor %s", swap.ErrSlippageExceeded, delivered, minOut)
	}

	if err := s.ledger.Transfer(s.sender, s.address, path[0].Denom, amountIn); err != nil {
		return nil, err
	}
	s.ledger.Mint(destination, path[len(path)-1].Denom, delivered)

	return amountsOut, nil
}

func (s *SwapVenue) QuoteAmountIn(ctx context.Context, amountOut sdkmath.Int, path []types.Token) ([]sdkmath.Int, error) {
	if len(path) < 2 {
		return nil, swap.ErrEmptyPath
	}
	if amountOut.IsNil() || amountOut.IsNegative() {
		return nil, fmt.Errorf("quote amount out must be non-negative, got %s", amountOut)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Walk the path backwards, rounding the required input up at each hop.
	amountsIn := make([]sdkmath.Int, len(path)-1)
	needed := amountOut
	for i := len(path) - 1; i >= 1; i-- {
		rate, err := s.executionRate(ctx, path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		if rate.IsZero() {
			return nil, fmt.Errorf("zero execution rate for %s to %s", path[i-1].Denom, path[i].Denom)
		}
		needed = sdkmath.LegacyNewDecFromInt(needed).Quo(rate).Ceil().TruncateInt()
		amountsIn[i-1] = needed
	}

	return amountsIn, nil
}

func (s *SwapVenue) executionRate(ctx context.Context, from, to types.Token) (sdkmath.LegacyDec, error) {
	if s.override != nil {
		return *s.override, nil
	}
	return s.rates.ExchangeRate(ctx, from, to)
}
