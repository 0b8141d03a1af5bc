/*

This file contains the governed parameter store.

Two mutation tiers exist. Full setters (Level2) may move a parameter anywhere
that passes validation. Tweaks (Level3) are bounded: the change must stay
within 30% of the current value and each parameter accepts at most one tweak
per cooldown window. A tweak that fails rejects outright, it never clamps.

*/

package governance

import (
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/metrics"
	"github.com/amphora-protocol/aam/internal/types"
)

var ErrTweakExceeded = errors.New("tweak exceeds allowed change")
var ErrTweakCooldown = errors.New("tweak cooldown not elapsed")

const (
	// TWEAK_COOLDOWN is the minimum spacing between tweaks of one parameter.
	TWEAK_COOLDOWN = 24 * time.Hour
)

// TWEAK_MAX_RATIO bounds a tweak: |new - old| must not exceed 30% of old.
var TWEAK_MAX_RATIO = sdkmath.LegacyNewDecWithPrec(3, 1)

// Persister durably stores each accepted parameter set.
type Persister interface {
	SaveParameters(params types.ManagerParameters, note string) error
}

// Journal records accepted changes as operation events in the same journal
// the manager writes to.
type Journal interface {
	NextOperationSequence() (int64, error)
	RecordOperation(event types.OperationEvent) error
}

// Config carries the dependencies for a Governance instance.
type Config struct {
	Initial   types.ManagerParameters
	Auth      AccessController
	Persister Persister        // optional, nil disables persistence
	Journal   Journal          // optional, nil disables change events
	Clock     func() time.Time // optional, defaults to time.Now
}

// Governance owns the manager's parameters and gates every mutation.
type Governance struct {
	mu        sync.RWMutex
	params    types.ManagerParameters
	auth      AccessController
	persister Persister
	journal   Journal
	clock     func() time.Time
	lastTweak map[types.ParameterAction]time.Time
	logger    zerolog.Logger
}

func NewGovernance(cfg Config) (*Governance, error) {
	if cfg.Auth == nil {
		return nil, errors.New("access controller is required")
	}
	if err := cfg.Initial.Validate(); err != nil {
		return nil, fmt.Errorf("initial parameters invalid: %w", err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Governance{
		params:    cfg.Initial,
		auth:      cfg.Auth,
		persister: cfg.Persister,
		journal:   cfg.Journal,
		clock:     clock,
		lastTweak: make(map[types.ParameterAction]time.Time),
		logger:    logger.GetForComponent("governance"),
	}, nil
}

// --- Setters ---

func (g *Governance) SetLiquidityMin(caller string, value sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.params
	candidate.Bands.Min = value
	return g.applyMoney(caller, types.SetLiquidityMin, g.params.Bands.Min, value, candidate)
}

func (g *Governance) SetLiquidityMiddle(caller string, value sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.params
	candidate.Bands.Middle = value
	return g.applyMoney(caller, types.SetLiquidityMiddle, g.params.Bands.Middle, value, candidate)
}

func (g *Governance) SetLiquidityMax(caller string, value sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.params
	candidate.Bands.Max = value
	return g.applyMoney(caller, types.SetLiquidityMax, g.params.Bands.Max, value, candidate)
}

func (g *Governance) SetClaimRewardsMin(caller string, value sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.params
	candidate.Thresholds.ClaimMin = value
	return g.applyMoney(caller, types.SetClaimMin, g.params.Thresholds.ClaimMin, value, candidate)
}

func (g *Governance) SetReinvestRewardsMin(caller string, value sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.params
	candidate.Thresholds.ReinvestMin = value
	return g.applyMoney(caller, types.SetReinvestMin, g.params.Thresholds.ReinvestMin, value, candidate)
}

func (g *Governance) SetMaxSlippage(caller string, value sdkmath.LegacyDec) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	old := g.params.MaxSlippage
	candidate := g.params
	candidate.MaxSlippage = value

	if value.IsNil() {
		return types.ErrSlippageNil
	}
	return g.apply(caller, types.SetMaxSlippage, old, value, candidate, old.String(), value.String())
}

// --- Getters ---

func (g *Governance) LiquidityBands() types.LiquidityBands {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.params.Bands
}

func (g *Governance) RewardThresholds() types.RewardThresholds {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.params.Thresholds
}

func (g *Governance) SlippageBound() sdkmath.LegacyDec {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.params.MaxSlippage
}

// Snapshot returns a copy of the full active parameter set.
func (g *Governance) Snapshot() types.ManagerParameters {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.params
}

// --- Mutation plumbing ---

func (g *Governance) applyMoney(caller string, action types.ParameterAction, old, value sdkmath.Int, candidate types.ManagerParameters) error {
	if value.IsNil() {
		return types.ErrBandsNil
	}
	oldDec := sdkmath.LegacyNewDecFromInt(old)
	newDec := sdkmath.LegacyNewDecFromInt(value)
	return g.apply(caller, action, oldDec, newDec, candidate, old.String(), value.String())
}

// apply runs the shared mutation path: role check, tweak bound for Level3
// callers, candidate validation, then commit. Caller holds the write lock.
func (g *Governance) apply(caller string, action types.ParameterAction, oldDec, newDec sdkmath.LegacyDec, candidate types.ManagerParameters, oldStr, newStr string) error {
	full := g.auth.HasRole(caller, RoleLevel2)
	tweak := !full && g.auth.HasRole(caller, RoleLevel3)
	if !full && !tweak {
		return fmt.Errorf("%w: %s cannot %s", ErrUnauthorized, caller, action)
	}

	if tweak {
		if err := g.checkTweak(action, oldDec, newDec); err != nil {
			return err
		}
	}

	if err := candidate.Validate(); err != nil {
		return err
	}

	g.params = candidate
	if tweak {
		g.lastTweak[action] = g.clock()
	} else {
		// A full set resets the tweak window for this parameter.
		delete(g.lastTweak, action)
	}

	path := "full"
	if tweak {
		path = "tweak"
	}

	g.logger.Info().
		Str("action", string(action)).
		Str("old", oldStr).
		Str("new", newStr).
		Bool("tweak", tweak).
		Str("caller", caller).
		Msg("Parameter updated")
	metrics.ParameterChanges.WithLabelValues(string(action), path).Inc()

	g.recordChange(types.ParameterChange{
		Action:    action,
		OldValue:  oldStr,
		NewValue:  newStr,
		Tweak:     tweak,
		Caller:    caller,
		Timestamp: g.clock(),
	})

	if g.persister != nil {
		note := fmt.Sprintf("%s by %s", action, caller)
		if err := g.persister.SaveParameters(candidate, note); err != nil {
			// The in-memory set stays authoritative for this run; persistence
			// catches up on the next accepted change.
			g.logger.Error().Err(err).Str("action", string(action)).Msg("Failed to persist parameters")
		}
	}

	return nil
}

// recordChange journals an accepted change. Journal failures are logged and
// swallowed: the parameter set has already moved.
func (g *Governance) recordChange(change types.ParameterChange) {
	if g.journal == nil {
		return
	}

	event := types.OperationEvent{
		OperationID: uuid.New().String(),
		Kind:        types.OperationSetParameter,
		Success:     true,
		Message:     fmt.Sprintf("%s: %s -> %s", change.Action, change.OldValue, change.NewValue),
		Payload:     change,
		Timestamp:   change.Timestamp,
	}

	seq, err := g.journal.NextOperationSequence()
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to get next operation sequence, using fallback")
		seq = time.Now().Unix() % 1000000 // Use timestamp as fallback
	}
	event.Sequence = seq

	if err := g.journal.RecordOperation(event); err != nil {
		g.logger.Error().Err(err).Str("action", string(change.Action)).Msg("Failed to record parameter change event")
	}
}

func (g *Governance) checkTweak(action types.ParameterAction, oldDec, newDec sdkmath.LegacyDec) error {
	if last, ok := g.lastTweak[action]; ok {
		if elapsed := g.clock().Sub(last); elapsed < TWEAK_COOLDOWN {
			return fmt.Errorf("%w: %s tweaked %s ago", ErrTweakCooldown, action, elapsed.Round(time.Second))
		}
	}

	diff := newDec.Sub(oldDec).Abs()
	limit := oldDec.Abs().Mul(TWEAK_MAX_RATIO)
	if diff.GT(limit) {
		return fmt.Errorf("%w: %s change from %s to %s", ErrTweakExceeded, action, oldDec, newDec)
	}
	return nil
}
