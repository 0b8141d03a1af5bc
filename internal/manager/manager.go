/*

This file contains the asset-allocation manager core: the periodic rebalance
cycle and the operator entry points layered on top of it.

The manager never holds protocol capital at rest. Each cycle it claims
rewards, reads the idle and invested balances fresh, applies the liquidity
band policy, moves exactly one amount in one direction and reinvests whatever
rewards remain held. Divest legs run a waterfall: principal first, then
reward conversions cover whatever the principal position could not, and the
pool is told what actually arrived.

*/

package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amphora-protocol/aam/internal/governance"
	"github.com/amphora-protocol/aam/internal/liquidity"
	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/metrics"
	"github.com/amphora-protocol/aam/internal/pool"
	"github.com/amphora-protocol/aam/internal/rewards"
	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/venue"
	"github.com/amphora-protocol/aam/internal/wad"
)

var ErrPaused = errors.New("manager is paused")
var ErrAmountInvalid = errors.New("operation amount must be positive")

// Journal persists operation events. The database store implements it in
// deployments; tests use an in-memory journal.
type Journal interface {
	NextOperationSequence() (int64, error)
	RecordOperation(event types.OperationEvent) error
}

// SnapshotSink persists end-of-operation position snapshots. Optional; a nil
// sink disables snapshotting.
type SnapshotSink interface {
	RecordSnapshot(snapshot types.PositionSnapshot) error
}

// Config holds the dependencies for creating a Manager instance.
type Config struct {
	Pool      pool.Pool
	Venue     venue.YieldVenue
	Rewards   *rewards.Manager
	Params    *governance.Governance
	Auth      governance.AccessController
	Journal   Journal
	Snapshots SnapshotSink
	Currency  types.Token
	Reward    types.Token
}

// Manager wires the pool, the yield venue and the reward flows together under
// the governed parameter set.
type Manager struct {
	logger    zerolog.Logger
	pool      pool.Pool
	venue     venue.YieldVenue
	rewards   *rewards.Manager
	params    *governance.Governance
	auth      governance.AccessController
	journal   Journal
	snapshots SnapshotSink
	currency  types.Token
	reward    types.Token

	mu     sync.Mutex
	paused bool
}

// NewManager creates a Manager instance with dependency injection.
func NewManager(cfg Config) (*Manager, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("manager configuration validation failed: %w", err)
	}

	journal := cfg.Journal
	if journal == nil {
		journal = nopJournal{}
	}

	m := &Manager{
		logger:    logger.GetForComponent("manager_core"),
		pool:      cfg.Pool,
		venue:     cfg.Venue,
		rewards:   cfg.Rewards,
		params:    cfg.Params,
		auth:      cfg.Auth,
		journal:   journal,
		snapshots: cfg.Snapshots,
		currency:  cfg.Currency,
		reward:    cfg.Reward,
	}

	m.logger.Info().
		Str("pool", cfg.Pool.Address()).
		Str("currency", cfg.Currency.Denom).
		Str("reward", cfg.Reward.Denom).
		Msg("Manager instance created successfully with dependency injection")

	return m, nil
}

func validateConfig(cfg Config) error {
	if cfg.Pool == nil {
		return fmt.Errorf("pool cannot be nil")
	}
	if cfg.Venue == nil {
		return fmt.Errorf("yield venue cannot be nil")
	}
	if cfg.Rewards == nil {
		return fmt.Errorf("reward manager cannot be nil")
	}
	if cfg.Params == nil {
		return fmt.Errorf("governance cannot be nil")
	}
	if cfg.Auth == nil {
		return fmt.Errorf("access controller cannot be nil")
	}
	if err := cfg.Currency.Validate(); err != nil {
		return fmt.Errorf("currency token invalid: %w", err)
	}
	if err := cfg.Reward.Validate(); err != nil {
		return fmt.Errorf("reward token invalid: %w", err)
	}
	return nil
}

// RunLoop starts the periodic rebalance loop with the specified interval.
func (m *Manager) RunLoop(ctx context.Context, interval time.Duration) {
	m.logger.Info().
		Dur("interval", interval).
		Msg("Starting manager main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	if _, err := m.Rebalance(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Rebalance cycle failed")
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Manager loop stopped due to context cancellation")
			return
		case <-ticker.C:
			if _, err := m.Rebalance(ctx); err != nil {
				m.logger.Error().Err(err).Msg("Rebalance cycle failed")
			}
		}
	}
}

// Rebalance executes one complete cycle: claim, measure, plan, move and
// reinvest. A paused manager skips the cycle without error.
func (m *Manager) Rebalance(ctx context.Context) (types.RebalanceReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	operationID := uuid.New().String()
	opLogger := m.logger.With().Str("operation_id", operationID).Logger()

	report := types.RebalanceReport{
		OperationID:    operationID,
		Action:         types.ActionNone,
		Claimed:        sdkmath.ZeroInt(),
		Requested:      sdkmath.ZeroInt(),
		Delivered:      sdkmath.ZeroInt(),
		Reinvested:     sdkmath.ZeroInt(),
		IdleBefore:     sdkmath.ZeroInt(),
		InvestedBefore: sdkmath.ZeroInt(),
		InvestedAfter:  sdkmath.ZeroInt(),
		Timestamp:      start,
	}

	if m.paused {
		opLogger.Warn().Msg("Manager is paused, skipping rebalance cycle")
		return report, nil
	}

	opLogger.Info().Msg("--- Starting Rebalance Cycle ---")

	// --- Step 1: Claim rewards ---
	opLogger.Info().Msg("Step 1: Claiming venue rewards...")
	claimed, err := m.rewards.Claim(ctx, false)
	if err != nil {
		return m.failRebalance(opLogger, report, types.OperationRebalance, "claim rewards", err)
	}
	report.Claimed = claimed

	// --- Step 2: Assess balances ---
	opLogger.Info().Msg("Step 2: Assessing pool and venue balances...")
	idle, err := m.pool.Investable(ctx)
	if err != nil {
		return m.failRebalance(opLogger, report, types.OperationRebalance, "read investable balance", err)
	}
	invested, err := m.venue.PositionBalance(ctx, m.currency)
	if err != nil {
		return m.failRebalance(opLogger, report, types.OperationRebalance, "read invested balance", err)
	}
	report.IdleBefore = idle
	report.InvestedBefore = invested
	if f, err := sdkmath.LegacyNewDecFromInt(idle).Float64(); err == nil {
		metrics.IdleBalance.Set(f)
	}
	opLogger.Info().
		Str("idle", idle.String()).
		Str("invested", invested.String()).
		Msg("Step 2: Balances assessed.")

	// --- Step 3: Apply band policy ---
	opLogger.Info().Msg("Step 3: Applying liquidity band policy...")
	bands := m.params.LiquidityBands()
	plan, err := liquidity.PlanRebalance(bands, idle, invested)
	if err != nil {
		return m.failRebalance(opLogger, report, types.OperationRebalance, "plan rebalance", err)
	}
	report.Action = plan.Action
	report.Requested = plan.Amount

	// --- Step 4: Execute ---
	switch plan.Action {
	case types.ActionInvest:
		opLogger.Info().Str("amount", plan.Amount.String()).Msg("Step 4: Investing idle capital...")
		moved, err := m.invest(ctx, plan.Amount)
		if err != nil {
			return m.failRebalance(opLogger, report, types.OperationRebalance, "invest", err)
		}
		report.Delivered = moved
	case types.ActionDivest:
		opLogger.Info().Str("amount", plan.Amount.String()).Msg("Step 4: Divesting excess principal...")
		delivered, principalOut, covered, err := m.deliverToPool(ctx, opLogger, plan.Amount)
		if err != nil {
			return m.failRebalance(opLogger, report, types.OperationRebalance, "divest", err)
		}
		report.Delivered = delivered
		opLogger.Info().
			Str("fromPrincipal", principalOut.String()).
			Str("fromRewards", covered.String()).
			Msg("Step 4: Divest waterfall complete.")
	default:
		opLogger.Info().Msg("Step 4: Bands satisfied. No action required.")
	}

	// --- Step 5: Reinvest held rewards ---
	// Always after the divest leg: held rewards must still be reachable by a
	// same-cycle shortfall conversion.
	opLogger.Info().Msg("Step 5: Reinvesting held rewards...")
	reinvested, err := m.rewards.Reinvest(ctx)
	if err != nil {
		return m.failRebalance(opLogger, report, types.OperationRebalance, "reinvest rewards", err)
	}
	report.Reinvested = reinvested

	// --- Step 6: Final state ---
	investedAfter, err := m.venue.PositionBalance(ctx, m.currency)
	if err != nil {
		opLogger.Error().Err(err).Msg("Failed to read final invested balance.")
		investedAfter = invested // Use initial value as fallback
	}
	report.InvestedAfter = investedAfter
	m.updateGauges(ctx, investedAfter)

	m.record(opLogger, types.OperationEvent{
		OperationID: operationID,
		Kind:        types.OperationRebalance,
		Success:     true,
		Message:     string(plan.Action),
		Payload:     report,
		Timestamp:   time.Now(),
	})
	m.observe(types.OperationRebalance, "ok", start)
	m.snapshot(ctx, opLogger, operationID)

	opLogger.Info().
		Str("action", string(plan.Action)).
		Str("claimed", report.Claimed.String()).
		Str("delivered", report.Delivered.String()).
		Str("investedAfter", investedAfter.String()).
		Str("cycleDuration", time.Since(start).String()).
		Msg("--- Rebalance Cycle Completed Successfully ---")

	return report, nil
}

// LiquidateAll drains everything back to the pool: a forced reward claim, the
// whole principal position, and every reward token converted. Used ahead of a
// venue migration. Requires the operations role and runs even while paused.
func (m *Manager) LiquidateAll(ctx context.Context, caller string) (types.LiquidationReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	operationID := uuid.New().String()
	opLogger := m.logger.With().Str("operation_id", operationID).Str("caller", caller).Logger()

	report := types.LiquidationReport{
		OperationID:        operationID,
		Claimed:            sdkmath.ZeroInt(),
		PrincipalWithdrawn: sdkmath.ZeroInt(),
		RewardWithdrawn:    sdkmath.ZeroInt(),
		SwapIn:             sdkmath.ZeroInt(),
		SwapOut:            sdkmath.ZeroInt(),
		Timestamp:          start,
	}

	if !m.auth.HasRole(caller, governance.RoleLevel1) {
		return report, fmt.Errorf("%w: liquidate all requires %s", governance.ErrUnauthorized, governance.RoleLevel1)
	}

	opLogger.Info().Msg("--- Starting Full Liquidation ---")

	// --- Step 1: Forced claim ---
	opLogger.Info().Msg("Step 1: Force-claiming venue rewards...")
	claimed, err := m.rewards.Claim(ctx, true)
	if err != nil {
		return report, m.failOperation(opLogger, operationID, types.OperationLiquidateAll, "forced claim", start, err)
	}
	report.Claimed = claimed

	// --- Step 2: Drain principal straight into the pool ---
	opLogger.Info().Msg("Step 2: Withdrawing entire principal position to pool...")
	principalOut, err := m.venue.Withdraw(ctx, m.currency, venue.All(), m.pool.Address())
	if err != nil {
		return report, m.failOperation(opLogger, operationID, types.OperationLiquidateAll, "withdraw principal", start, err)
	}
	report.PrincipalWithdrawn = principalOut

	// --- Step 3: Convert every reward token into the pool ---
	opLogger.Info().Msg("Step 3: Converting all reward holdings to pool...")
	rewardPosition, err := m.venue.PositionBalance(ctx, m.reward)
	if err != nil {
		return report, m.failOperation(opLogger, operationID, types.OperationLiquidateAll, "read reward position", start, err)
	}
	report.RewardWithdrawn = rewardPosition

	swapIn, swapOut, err := m.rewards.ConvertAll(ctx, m.pool.Address())
	if err != nil {
		return report, m.failOperation(opLogger, operationID, types.OperationLiquidateAll, "convert rewards", start, err)
	}
	report.SwapIn = swapIn
	report.SwapOut = swapOut

	// --- Step 4: Acknowledge the returned capital ---
	delivered := principalOut.Add(swapOut)
	if delivered.IsPositive() {
		if err := m.pool.AcknowledgeWithdrawal(ctx, delivered); err != nil {
			return report, m.failOperation(opLogger, operationID, types.OperationLiquidateAll, "acknowledge withdrawal", start, err)
		}
	}

	m.updateGauges(ctx, sdkmath.ZeroInt())
	m.record(opLogger, types.OperationEvent{
		OperationID: operationID,
		Kind:        types.OperationLiquidateAll,
		Success:     true,
		Message:     fmt.Sprintf("returned %s to pool", delivered),
		Payload:     report,
		Timestamp:   time.Now(),
	})
	m.observe(types.OperationLiquidateAll, "ok", start)
	m.snapshot(ctx, opLogger, operationID)

	opLogger.Info().
		Str("principal", principalOut.String()).
		Str("converted", swapOut.String()).
		Str("delivered", delivered.String()).
		Msg("--- Full Liquidation Completed Successfully ---")

	return report, nil
}

// SwapRewards converts amount of claimed reward tokens into settlement
// currency kept in the manager holding. Requires the swap operator role.
func (m *Manager) SwapRewards(ctx context.Context, caller string, amount sdkmath.Int) (types.RewardSwapReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	operationID := uuid.New().String()
	opLogger := m.logger.With().Str("operation_id", operationID).Str("caller", caller).Logger()

	report := types.RewardSwapReport{
		OperationID: operationID,
		TokenIn:     m.reward.Denom,
		TokenOut:    m.currency.Denom,
		AmountIn:    sdkmath.ZeroInt(),
		AmountOut:   sdkmath.ZeroInt(),
		Destination: m.rewards.HoldingAddress(),
		Timestamp:   start,
	}

	if !m.auth.HasRole(caller, governance.RoleSwapOperator) {
		return report, fmt.Errorf("%w: swap rewards requires %s", governance.ErrUnauthorized, governance.RoleSwapOperator)
	}
	if m.paused {
		return report, ErrPaused
	}
	if amount.IsNil() || !amount.IsPositive() {
		return report, fmt.Errorf("%w: got %s", ErrAmountInvalid, amount)
	}

	opLogger.Info().Str("amount", amount.String()).Msg("Executing operator reward swap")

	in, out, err := m.rewards.Convert(ctx, amount, m.rewards.HoldingAddress())
	if err != nil {
		return report, m.failOperation(opLogger, operationID, types.OperationSwapRewards, "convert rewards", start, err)
	}
	report.AmountIn = in
	report.AmountOut = out

	m.record(opLogger, types.OperationEvent{
		OperationID: operationID,
		Kind:        types.OperationSwapRewards,
		Success:     true,
		Message:     fmt.Sprintf("swapped %s %s for %s %s", in, m.reward.Denom, out, m.currency.Denom),
		Payload:     report,
		Timestamp:   time.Now(),
	})
	m.observe(types.OperationSwapRewards, "ok", start)

	return report, nil
}

// RefillPool delivers amount of settlement currency to the pool on demand,
// principal first and rewards covering any shortfall. Under-delivery is
// reported, not treated as failure. Requires the operations role.
func (m *Manager) RefillPool(ctx context.Context, caller string, amount sdkmath.Int) (types.RefillReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	operationID := uuid.New().String()
	opLogger := m.logger.With().Str("operation_id", operationID).Str("caller", caller).Logger()

	report := types.RefillReport{
		OperationID:        operationID,
		Requested:          sdkmath.ZeroInt(),
		PrincipalWithdrawn: sdkmath.ZeroInt(),
		CoveredFromRewards: sdkmath.ZeroInt(),
		Delivered:          sdkmath.ZeroInt(),
		Timestamp:          start,
	}

	if !m.auth.HasRole(caller, governance.RoleLevel1) {
		return report, fmt.Errorf("%w: refill pool requires %s", governance.ErrUnauthorized, governance.RoleLevel1)
	}
	if m.paused {
		return report, ErrPaused
	}
	if amount.IsNil() || !amount.IsPositive() {
		return report, fmt.Errorf("%w: got %s", ErrAmountInvalid, amount)
	}
	report.Requested = amount

	opLogger.Info().Str("amount", amount.String()).Msg("Refilling pool on demand")

	delivered, principalOut, covered, err := m.deliverToPool(ctx, opLogger, amount)
	if err != nil {
		return report, m.failOperation(opLogger, operationID, types.OperationRefillPool, "deliver to pool", start, err)
	}
	report.PrincipalWithdrawn = principalOut
	report.CoveredFromRewards = covered
	report.Delivered = delivered

	investedAfter, err := m.venue.PositionBalance(ctx, m.currency)
	if err == nil {
		m.updateGauges(ctx, investedAfter)
	}

	m.record(opLogger, types.OperationEvent{
		OperationID: operationID,
		Kind:        types.OperationRefillPool,
		Success:     true,
		Message:     fmt.Sprintf("delivered %s of %s requested", delivered, amount),
		Payload:     report,
		Timestamp:   time.Now(),
	})
	m.observe(types.OperationRefillPool, "ok", start)
	m.snapshot(ctx, opLogger, operationID)

	return report, nil
}

// Pause stops rebalance cycles and operator flows. Liquidation stays
// available as the escape hatch. Requires the guardian role.
func (m *Manager) Pause(caller string) error {
	return m.setPaused(caller, true)
}

// Resume re-enables normal operation. Requires the guardian role.
func (m *Manager) Resume(caller string) error {
	return m.setPaused(caller, false)
}

// Paused reports whether the manager is currently halted.
func (m *Manager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// InvestmentValue prices the whole managed position in settlement currency.
// Unclaimed rewards are excluded until a claim lands them.
func (m *Manager) InvestmentValue(ctx context.Context) (sdkmath.Int, error) {
	return m.rewards.InvestmentValue(ctx)
}

// UnclaimedRewards reports rewards accrued at the venue but not yet claimed.
func (m *Manager) UnclaimedRewards(ctx context.Context) (sdkmath.Int, error) {
	return m.rewards.UnclaimedRewards(ctx)
}

func (m *Manager) setPaused(caller string, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.auth.HasRole(caller, governance.RoleGuardian) {
		return fmt.Errorf("%w: pause control requires %s", governance.ErrUnauthorized, governance.RoleGuardian)
	}
	if m.paused == paused {
		return nil
	}
	m.paused = paused

	kind := types.OperationResume
	if paused {
		kind = types.OperationPause
	}
	opLogger := m.logger.With().Str("caller", caller).Logger()
	opLogger.Warn().Bool("paused", paused).Msg("Manager pause state changed")
	m.record(opLogger, types.OperationEvent{
		OperationID: uuid.New().String(),
		Kind:        kind,
		Success:     true,
		Message:     fmt.Sprintf("by %s", caller),
		Timestamp:   time.Now(),
	})
	return nil
}

// invest pulls idle capital from the pool and deposits it into the principal
// position. The pull is capped by the pool, so the deposit uses what actually
// moved.
func (m *Manager) invest(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	moved, err := m.pool.PullInvestable(ctx, amount)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if moved.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	if err := m.venue.Deposit(ctx, m.currency, moved); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return moved, nil
}

// deliverToPool runs the divest waterfall: withdraw from principal capped to
// what the position holds, cover the remainder from rewards, then tell the
// pool what arrived. Returns delivered, the principal part and the covered
// part.
func (m *Manager) deliverToPool(ctx context.Context, opLogger zerolog.Logger, amount sdkmath.Int) (sdkmath.Int, sdkmath.Int, sdkmath.Int, error) {
	zero := sdkmath.ZeroInt()

	principalOut, err := m.venue.Withdraw(ctx, m.currency, venue.Exact(amount), m.pool.Address())
	if err != nil {
		return zero, zero, zero, err
	}

	shortfall := wad.CappedSub(amount, principalOut)
	covered := sdkmath.ZeroInt()
	if shortfall.IsPositive() {
		opLogger.Info().
			Str("shortfall", shortfall.String()).
			Msg("Principal position short, covering from rewards")
		covered, err = m.rewards.CoverShortfall(ctx, shortfall, m.pool.Address())
		if err != nil {
			return zero, zero, zero, err
		}
	}

	delivered := principalOut.Add(covered)
	if delivered.IsPositive() {
		if err := m.pool.AcknowledgeWithdrawal(ctx, delivered); err != nil {
			return zero, zero, zero, err
		}
	}
	return delivered, principalOut, covered, nil
}

// failRebalance finalizes a failed cycle: journal row, metrics, wrapped error.
func (m *Manager) failRebalance(opLogger zerolog.Logger, report types.RebalanceReport, kind types.OperationKind, step string, err error) (types.RebalanceReport, error) {
	opLogger.Error().Err(err).Msgf("Cycle aborted: failed to %s.", step)
	m.record(opLogger, types.OperationEvent{
		OperationID: report.OperationID,
		Kind:        kind,
		Success:     false,
		Message:     fmt.Sprintf("%s: %v", step, err),
		Payload:     report,
		Timestamp:   time.Now(),
	})
	m.observe(kind, "failed", report.Timestamp)
	return report, fmt.Errorf("failed to %s: %w", step, err)
}

// failOperation finalizes a failed operator entry point.
func (m *Manager) failOperation(opLogger zerolog.Logger, operationID string, kind types.OperationKind, step string, start time.Time, err error) error {
	opLogger.Error().Err(err).Msgf("Operation aborted: failed to %s.", step)
	m.record(opLogger, types.OperationEvent{
		OperationID: operationID,
		Kind:        kind,
		Success:     false,
		Message:     fmt.Sprintf("%s: %v", step, err),
		Timestamp:   time.Now(),
	})
	m.observe(kind, "failed", start)
	return fmt.Errorf("failed to %s: %w", step, err)
}

// record assigns the persistent sequence and writes the journal row. Journal
// failures are logged, never propagated: losing a row must not stop capital
// movements.
func (m *Manager) record(opLogger zerolog.Logger, event types.OperationEvent) {
	seq, err := m.journal.NextOperationSequence()
	if err != nil {
		opLogger.Error().Err(err).Msg("Failed to get next operation sequence, using fallback")
		seq = time.Now().Unix() % 1000000 // Use timestamp as fallback
	}
	event.Sequence = seq

	if err := m.journal.RecordOperation(event); err != nil {
		opLogger.Error().Err(err).Msg("Failed to record operation event")
		return
	}
	opLogger.Debug().Int64("sequence", seq).Str("kind", string(event.Kind)).Msg("Operation event recorded")
}

func (m *Manager) observe(kind types.OperationKind, outcome string, start time.Time) {
	metrics.OperationsTotal.WithLabelValues(string(kind), outcome).Inc()
	metrics.OperationDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

// snapshot persists the end-of-operation position picture. Failures are
// logged, never propagated: a lost snapshot must not fail a completed
// operation.
func (m *Manager) snapshot(ctx context.Context, opLogger zerolog.Logger, operationID string) {
	if m.snapshots == nil {
		return
	}
	snap, err := m.rewards.Snapshot(ctx)
	if err != nil {
		opLogger.Error().Err(err).Msg("Failed to assemble position snapshot")
		return
	}
	snap.OperationID = operationID
	if err := m.snapshots.RecordSnapshot(snap); err != nil {
		opLogger.Error().Err(err).Msg("Failed to save position snapshot")
		return
	}
	opLogger.Debug().Str("total_value", snap.TotalValue.String()).Msg("Position snapshot saved")
}

func (m *Manager) updateGauges(ctx context.Context, invested sdkmath.Int) {
	if f, err := sdkmath.LegacyNewDecFromInt(invested).Float64(); err == nil {
		metrics.InvestedBalance.Set(f)
	}
	unclaimed, err := m.rewards.UnclaimedRewards(ctx)
	if err != nil {
		return
	}
	if f, err := sdkmath.LegacyNewDecFromInt(unclaimed).Float64(); err == nil {
		metrics.UnclaimedRewards.Set(f)
	}
}

// nopJournal drops events. Used when no journal is configured.
type nopJournal struct{}

func (nopJournal) NextOperationSequence() (int64, error)      { return 0, nil }
func (nopJournal) RecordOperation(types.OperationEvent) error { return nil }
