/*

This file contains reward handling: claiming from the venue, reinvesting into
the reward position, and slippage-bounded conversion into the settlement
currency.

Rewards live in three places. Unclaimed rewards accrue at the venue across
both yield positions. Claimed rewards rest in the manager's holding account.
Reinvested rewards form a second venue position that itself earns yield. Value
flows strictly downward through those stages and only conversion moves it back
into the settlement currency.

*/

package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/metrics"
	"github.com/amphora-protocol/aam/internal/oracle"
	"github.com/amphora-protocol/aam/internal/swap"
	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/venue"
	"github.com/amphora-protocol/aam/internal/wad"
	"github.com/amphora-protocol/aam/internal/wallet"
)

// Error definitions for zero-tolerance error handling
var (
	ErrConvertAmountNil      = errors.New("convert amount is nil")
	ErrConvertAmountNegative = errors.New("convert amount is negative")
)

const (
	// SWAP_DEADLINE_SECONDS bounds how long a submitted swap stays valid.
	SWAP_DEADLINE_SECONDS = 120
)

// ParamSource provides the live reward thresholds and slippage bound.
type ParamSource interface {
	RewardThresholds() types.RewardThresholds
	SlippageBound() sdkmath.LegacyDec
}

// Config carries the dependencies for a reward Manager.
type Config struct {
	Venue    venue.YieldVenue
	Swap     swap.SwapVenue
	Rates    *oracle.RateSource
	Holding  wallet.Account
	Params   ParamSource
	Currency types.Token
	Reward   types.Token
}

// Manager owns the claim, reinvest and convert flows for venue rewards.
type Manager struct {
	venue    venue.YieldVenue
	swap     swap.SwapVenue
	rates    *oracle.RateSource
	holding  wallet.Account
	params   ParamSource
	currency types.Token
	reward   types.Token
	logger   zerolog.Logger
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Venue == nil {
		return nil, errors.New("yield venue is required")
	}
	if cfg.Swap == nil {
		return nil, errors.New("swap venue is required")
	}
	if cfg.Rates == nil {
		return nil, errors.New("rate source is required")
	}
	if cfg.Holding == nil {
		return nil, errors.New("holding account is required")
	}
	if cfg.Params == nil {
		return nil, errors.New("parameter source is required")
	}
	if err := cfg.Currency.Validate(); err != nil {
		return nil, fmt.Errorf("currency token invalid: %w", err)
	}
	if err := cfg.Reward.Validate(); err != nil {
		return nil, fmt.Errorf("reward token invalid: %w", err)
	}
	if cfg.Currency.Equal(cfg.Reward) {
		return nil, errors.New("currency and reward tokens must differ")
	}

	return &Manager{
		venue:    cfg.Venue,
		swap:     cfg.Swap,
		rates:    cfg.Rates,
		holding:  cfg.Holding,
		params:   cfg.Params,
		currency: cfg.Currency,
		reward:   cfg.Reward,
		logger:   logger.GetForComponent("rewards"),
	}, nil
}

// HoldingAddress is where claimed rewards and manual conversions land.
func (m *Manager) HoldingAddress() string {
	return m.holding.Address()
}

// UnclaimedRewards sums rewards accrued but not yet claimed across both yield
// positions, in reward token base units.
func (m *Manager) UnclaimedRewards(ctx context.Context) (sdkmath.Int, error) {
	return m.venue.ClaimableRewards(ctx, m.positions())
}

// Claim pulls all claimable rewards into the holding account and returns the
// amount. Without force it only acts when the accrual strictly exceeds the
// claim threshold; below that it returns zero and changes nothing.
func (m *Manager) Claim(ctx context.Context, forced bool) (sdkmath.Int, error) {
	unclaimed, err := m.UnclaimedRewards(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	thresholds := m.params.RewardThresholds()
	if !forced && !unclaimed.GT(thresholds.ClaimMin) {
		m.logger.Debug().
			Str("unclaimed", unclaimed.String()).
			Str("claimMin", thresholds.ClaimMin.String()).
			Msg("Unclaimed rewards at or below claim threshold, skipping")
		return sdkmath.ZeroInt(), nil
	}
	if unclaimed.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	claimed, err := m.venue.ClaimRewards(ctx, m.positions(), m.holding.Address())
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	if f, err := sdkmath.LegacyNewDecFromInt(claimed).Float64(); err == nil {
		metrics.RewardsClaimed.Add(f)
	}
	m.logger.Info().
		Str("claimed", claimed.String()).
		Bool("forced", forced).
		Msg("Claimed venue rewards into holding")
	return claimed, nil
}

// Reinvest deposits the entire held reward balance into the venue's reward
// position, unless the holding is at or below the reinvest threshold.
func (m *Manager) Reinvest(ctx context.Context) (sdkmath.Int, error) {
	held, err := m.holding.Balance(ctx, m.reward)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	thresholds := m.params.RewardThresholds()
	if held.LTE(thresholds.ReinvestMin) {
		m.logger.Debug().
			Str("held", held.String()).
			Str("reinvestMin", thresholds.ReinvestMin.String()).
			Msg("Held rewards at or below reinvest threshold, skipping")
		return sdkmath.ZeroInt(), nil
	}

	if err := m.venue.Deposit(ctx, m.reward, held); err != nil {
		return sdkmath.ZeroInt(), err
	}

	if f, err := sdkmath.LegacyNewDecFromInt(held).Float64(); err == nil {
		metrics.RewardsReinvested.Add(f)
	}
	m.logger.Info().
		Str("reinvested", held.String()).
		Msg("Reinvested held rewards into venue")
	return held, nil
}

// Convert swaps amount of held reward tokens into settlement currency paid to
// destination. When the holding cannot cover the input it is topped up from
// the reward position, capped to what that position holds; the swap then
// proceeds with whatever is on hand. The slippage floor comes from the oracle
// rate and the governed bound, and a venue fill below it fails the whole call
// with no token movement.
func (m *Manager) Convert(ctx context.Context, amount sdkmath.Int, destination string) (sdkmath.Int, sdkmath.Int, error) {
	if amount.IsNil() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), ErrConvertAmountNil
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), ErrConvertAmountNegative
	}
	if amount.IsZero() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), nil
	}

	held, err := m.holding.Balance(ctx, m.reward)
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}

	if held.LT(amount) {
		shortfall := amount.Sub(held)
		withdrawn, err := m.venue.Withdraw(ctx, m.reward, venue.Exact(shortfall), m.holding.Address())
		if err != nil {
			return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
		}
		held = held.Add(withdrawn)
	}

	swapIn := wad.Min(amount, held)
	if swapIn.IsZero() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), nil
	}

	rate, err := m.rates.ExchangeRate(ctx, m.reward, m.currency)
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	minOut, err := swap.MinimumOut(swapIn, rate, m.params.SlippageBound())
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}

	deadline := time.Now().Add(SWAP_DEADLINE_SECONDS * time.Second)
	path := []types.Token{m.reward, m.currency}
	amountsOut, err := m.swap.SwapExactIn(ctx, swapIn, minOut, path, destination, deadline)
	if err != nil {
		metrics.SwapsTotal.WithLabelValues("failed").Inc()
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	out := amountsOut[len(amountsOut)-1]
	metrics.SwapsTotal.WithLabelValues("ok").Inc()

	m.logger.Info().
		Str("amountIn", swapIn.String()).
		Str("amountOut", out.String()).
		Str("minOut", minOut.String()).
		Str("destination", destination).
		Msg("Converted rewards to settlement currency")
	return swapIn, out, nil
}

// ConvertAll drains the reward position into the holding and converts the
// entire resulting balance to destination.
func (m *Manager) ConvertAll(ctx context.Context, destination string) (sdkmath.Int, sdkmath.Int, error) {
	if _, err := m.venue.Withdraw(ctx, m.reward, venue.All(), m.holding.Address()); err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}

	held, err := m.holding.Balance(ctx, m.reward)
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	if held.IsZero() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), nil
	}

	return m.Convert(ctx, held, destination)
}

// CoverShortfall converts just enough reward value to deliver shortfall of
// settlement currency to destination. The reverse quote sizes the input; when
// reward holdings cannot cover it the conversion under-delivers, which the
// caller tolerates. It reports the settlement currency actually delivered.
func (m *Manager) CoverShortfall(ctx context.Context, shortfall sdkmath.Int, destination string) (sdkmath.Int, error) {
	if shortfall.IsNil() || shortfall.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("shortfall must be non-negative, got %s", shortfall)
	}
	if shortfall.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	path := []types.Token{m.reward, m.currency}
	amountsIn, err := m.swap.QuoteAmountIn(ctx, shortfall, path)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	needIn := amountsIn[0]
	if needIn.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	m.logger.Info().
		Str("shortfall", shortfall.String()).
		Str("rewardNeeded", needIn.String()).
		Msg("Covering settlement shortfall from rewards")

	_, out, err := m.Convert(ctx, needIn, destination)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return out, nil
}

// InvestmentValue prices the whole position in settlement currency: principal
// plus the reward position and held rewards at the oracle rate. Unclaimed
// rewards are deliberately excluded; they are valued once claimed.
func (m *Manager) InvestmentValue(ctx context.Context) (sdkmath.Int, error) {
	principal, err := m.venue.PositionBalance(ctx, m.currency)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	rewardPosition, err := m.venue.PositionBalance(ctx, m.reward)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	held, err := m.holding.Balance(ctx, m.reward)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	rewardTotal := rewardPosition.Add(held)
	if rewardTotal.IsZero() {
		return principal, nil
	}

	converted, err := m.rates.Value(ctx, rewardTotal, m.reward, m.currency)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return principal.Add(converted), nil
}

// Snapshot assembles the full position picture for persistence. Valuation
// matches InvestmentValue: unclaimed rewards are reported but not counted,
// and the rate lookup is skipped entirely when no rewards are held.
func (m *Manager) Snapshot(ctx context.Context) (types.PositionSnapshot, error) {
	principal, err := m.venue.PositionBalance(ctx, m.currency)
	if err != nil {
		return types.PositionSnapshot{}, err
	}
	rewardPosition, err := m.venue.PositionBalance(ctx, m.reward)
	if err != nil {
		return types.PositionSnapshot{}, err
	}
	held, err := m.holding.Balance(ctx, m.reward)
	if err != nil {
		return types.PositionSnapshot{}, err
	}
	unclaimed, err := m.UnclaimedRewards(ctx)
	if err != nil {
		return types.PositionSnapshot{}, err
	}

	snapshot := types.PositionSnapshot{
		Principal:      principal,
		RewardPosition: rewardPosition,
		RewardHeld:     held,
		Unclaimed:      unclaimed,
		ExchangeRate:   sdkmath.LegacyZeroDec(),
		RewardValue:    sdkmath.ZeroInt(),
		TotalValue:     principal,
		Timestamp:      time.Now().UTC(),
	}

	rewardTotal := rewardPosition.Add(held)
	if rewardTotal.IsZero() {
		return snapshot, nil
	}

	rate, err := m.rates.ExchangeRate(ctx, m.reward, m.currency)
	if err != nil {
		return types.PositionSnapshot{}, err
	}
	snapshot.ExchangeRate = rate
	snapshot.RewardValue = rate.MulInt(rewardTotal).TruncateInt()
	snapshot.TotalValue = principal.Add(snapshot.RewardValue)
	return snapshot, nil
}

func (m *Manager) positions() []types.Token {
	return []types.Token{m.currency, m.reward}
}
