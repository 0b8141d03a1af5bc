package governance

import (
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
)

type roleTable map[string][]Role

func (rt roleTable) HasRole(caller string, role Role) bool {
	for _, r := range rt[caller] {
		if r == role {
			return true
		}
	}
	return false
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func baseParams() types.ManagerParameters {
	return types.ManagerParameters{
		Bands: types.LiquidityBands{
			Min:    sdkmath.NewInt(100),
			Middle: sdkmath.NewInt(250),
			Max:    sdkmath.NewInt(400),
		},
		Thresholds: types.RewardThresholds{
			ClaimMin:    sdkmath.NewInt(100),
			ReinvestMin: sdkmath.NewInt(200),
		},
		MaxSlippage: sdkmath.LegacyNewDecWithPrec(2, 2),
	}
}

// alice holds the full setter role, bob may only tweak.
func newTestGovernance(t *testing.T, clock *fakeClock) *Governance {
	t.Helper()

	auth := roleTable{
		"alice": {RoleLevel2},
		"bob":   {RoleLevel3},
	}
	cfg := Config{Initial: baseParams(), Auth: auth}
	if clock != nil {
		cfg.Clock = clock.Now
	}

	gov, err := NewGovernance(cfg)
	if err != nil {
		t.Fatalf("NewGovernance: %v", err)
	}
	return gov
}

func TestFullSetterMovesAnywhereValid(t *testing.T) {
	gov := newTestGovernance(t, nil)

	if err := gov.SetLiquidityMiddle("alice", sdkmath.NewInt(350)); err != nil {
		t.Fatalf("full set: %v", err)
	}
	if got := gov.LiquidityBands().Middle; !got.Equal(sdkmath.NewInt(350)) {
		t.Errorf("middle = %s, want 350", got)
	}

	// Violating the band ordering must reject and leave state untouched.
	if err := gov.SetLiquidityMiddle("alice", sdkmath.NewInt(500)); !errors.Is(err, types.ErrBandsOutOfOrder) {
		t.Fatalf("ordering violation error = %v, want %v", err, types.ErrBandsOutOfOrder)
	}
	if got := gov.LiquidityBands().Middle; !got.Equal(sdkmath.NewInt(350)) {
		t.Errorf("middle after rejected set = %s, want 350", got)
	}
}

func TestTweakBound(t *testing.T) {
	tests := []struct {
		name string
		to   int64
		ok   bool
	}{
		{"up exactly 30 percent", 130, true},
		{"up just over", 131, false},
		{"down exactly 30 percent", 70, true},
		{"down just over", 69, false},
		{"unchanged", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gov := newTestGovernance(t, nil)
			err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(tt.to))
			if tt.ok {
				if err != nil {
					t.Fatalf("tweak to %d: %v", tt.to, err)
				}
				return
			}
			if !errors.Is(err, ErrTweakExceeded) {
				t.Fatalf("tweak to %d error = %v, want %v", tt.to, err, ErrTweakExceeded)
			}
			// Rejected tweaks never clamp.
			if got := gov.RewardThresholds().ClaimMin; !got.Equal(sdkmath.NewInt(100)) {
				t.Errorf("claim min after rejected tweak = %s, want 100", got)
			}
		})
	}
}

func TestTweakFromZeroAdmitsOnlyZero(t *testing.T) {
	gov := newTestGovernance(t, nil)

	if err := gov.SetClaimRewardsMin("alice", sdkmath.ZeroInt()); err != nil {
		t.Fatalf("full set to zero: %v", err)
	}

	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(1)); !errors.Is(err, ErrTweakExceeded) {
		t.Errorf("tweak from zero error = %v, want %v", err, ErrTweakExceeded)
	}
	if err := gov.SetClaimRewardsMin("bob", sdkmath.ZeroInt()); err != nil {
		t.Errorf("zero to zero tweak: %v", err)
	}
}

func TestUnauthorizedCaller(t *testing.T) {
	gov := newTestGovernance(t, nil)

	if err := gov.SetLiquidityMin("mallory", sdkmath.NewInt(110)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want %v", err, ErrUnauthorized)
	}
}

func TestSlippageCeiling(t *testing.T) {
	gov := newTestGovernance(t, nil)

	// Exactly the ceiling is allowed.
	if err := gov.SetMaxSlippage("alice", sdkmath.LegacyNewDecWithPrec(1, 1)); err != nil {
		t.Fatalf("set to ceiling: %v", err)
	}
	// Above it is rejected even for a full setter.
	if err := gov.SetMaxSlippage("alice", sdkmath.LegacyNewDecWithPrec(11, 2)); !errors.Is(err, types.ErrSlippageTooLarge) {
		t.Errorf("error = %v, want %v", err, types.ErrSlippageTooLarge)
	}
}

func TestSlippageTweakBound(t *testing.T) {
	// 2% may move to 2.6% under the tweak bound but not to 2.7%.
	gov := newTestGovernance(t, nil)
	if err := gov.SetMaxSlippage("bob", sdkmath.LegacyNewDecWithPrec(26, 3)); err != nil {
		t.Fatalf("slippage tweak: %v", err)
	}

	gov = newTestGovernance(t, nil)
	if err := gov.SetMaxSlippage("bob", sdkmath.LegacyNewDecWithPrec(27, 3)); !errors.Is(err, ErrTweakExceeded) {
		t.Errorf("error = %v, want %v", err, ErrTweakExceeded)
	}
}

func TestTweakCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	gov := newTestGovernance(t, clock)

	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(110)); err != nil {
		t.Fatalf("first tweak: %v", err)
	}
	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(120)); !errors.Is(err, ErrTweakCooldown) {
		t.Fatalf("second tweak error = %v, want %v", err, ErrTweakCooldown)
	}

	clock.Advance(TWEAK_COOLDOWN + time.Minute)
	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(120)); err != nil {
		t.Fatalf("tweak after cooldown: %v", err)
	}
}

func TestFullSetResetsTweakWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	gov := newTestGovernance(t, clock)

	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(110)); err != nil {
		t.Fatalf("tweak: %v", err)
	}
	if err := gov.SetClaimRewardsMin("alice", sdkmath.NewInt(100)); err != nil {
		t.Fatalf("full set: %v", err)
	}
	// The cooldown from the earlier tweak no longer applies.
	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(110)); err != nil {
		t.Fatalf("tweak after full set: %v", err)
	}
}

func TestLevel2BypassesTweakBound(t *testing.T) {
	gov := newTestGovernance(t, nil)

	// A 10x jump is fine for a full setter.
	if err := gov.SetReinvestRewardsMin("alice", sdkmath.NewInt(2000)); err != nil {
		t.Fatalf("full set: %v", err)
	}
	if got := gov.RewardThresholds().ReinvestMin; !got.Equal(sdkmath.NewInt(2000)) {
		t.Errorf("reinvest min = %s, want 2000", got)
	}
}

type failingPersister struct{ calls int }

func (p *failingPersister) SaveParameters(types.ManagerParameters, string) error {
	p.calls++
	return errors.New("db down")
}

func TestPersistFailureDoesNotBlockChange(t *testing.T) {
	persister := &failingPersister{}
	cfg := Config{
		Initial:   baseParams(),
		Auth:      roleTable{"alice": {RoleLevel2}},
		Persister: persister,
	}
	gov, err := NewGovernance(cfg)
	if err != nil {
		t.Fatalf("NewGovernance: %v", err)
	}

	if err := gov.SetLiquidityMax("alice", sdkmath.NewInt(600)); err != nil {
		t.Fatalf("set with failing persister: %v", err)
	}
	if persister.calls != 1 {
		t.Errorf("persister calls = %d, want 1", persister.calls)
	}
	if got := gov.LiquidityBands().Max; !got.Equal(sdkmath.NewInt(600)) {
		t.Errorf("max = %s, want 600", got)
	}
}

type recordingJournal struct {
	seq    int64
	events []types.OperationEvent
}

func (j *recordingJournal) NextOperationSequence() (int64, error) {
	j.seq++
	return j.seq, nil
}

func (j *recordingJournal) RecordOperation(event types.OperationEvent) error {
	j.events = append(j.events, event)
	return nil
}

func TestAcceptedChangesAreJournaled(t *testing.T) {
	journal := &recordingJournal{}
	cfg := Config{
		Initial: baseParams(),
		Auth:    roleTable{"alice": {RoleLevel2}, "bob": {RoleLevel3}},
		Journal: journal,
	}
	gov, err := NewGovernance(cfg)
	if err != nil {
		t.Fatalf("NewGovernance: %v", err)
	}

	if err := gov.SetLiquidityMax("alice", sdkmath.NewInt(500)); err != nil {
		t.Fatalf("full set: %v", err)
	}
	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(110)); err != nil {
		t.Fatalf("tweak: %v", err)
	}
	// A rejected change journals nothing.
	if err := gov.SetClaimRewardsMin("bob", sdkmath.NewInt(120)); !errors.Is(err, ErrTweakCooldown) {
		t.Fatalf("second tweak error = %v, want %v", err, ErrTweakCooldown)
	}

	if len(journal.events) != 2 {
		t.Fatalf("journaled events = %d, want 2", len(journal.events))
	}

	full := journal.events[0]
	if full.Kind != types.OperationSetParameter || full.Sequence != 1 {
		t.Errorf("first event kind=%s sequence=%d, want %s sequence=1", full.Kind, full.Sequence, types.OperationSetParameter)
	}
	change, ok := full.Payload.(types.ParameterChange)
	if !ok {
		t.Fatalf("first payload type = %T, want types.ParameterChange", full.Payload)
	}
	if change.Tweak || change.Action != types.SetLiquidityMax || change.NewValue != "500" {
		t.Errorf("full change payload = %+v", change)
	}

	tweaked, ok := journal.events[1].Payload.(types.ParameterChange)
	if !ok {
		t.Fatalf("second payload type = %T, want types.ParameterChange", journal.events[1].Payload)
	}
	if !tweaked.Tweak || tweaked.Action != types.SetClaimMin {
		t.Errorf("tweak change payload = %+v", tweaked)
	}
}

func TestSnapshotReflectsUpdates(t *testing.T) {
	gov := newTestGovernance(t, nil)

	if err := gov.SetLiquidityMiddle("alice", sdkmath.NewInt(300)); err != nil {
		t.Fatalf("set: %v", err)
	}

	snap := gov.Snapshot()
	if !snap.Bands.Middle.Equal(sdkmath.NewInt(300)) {
		t.Errorf("snapshot middle = %s, want 300", snap.Bands.Middle)
	}
	if !snap.MaxSlippage.Equal(sdkmath.LegacyNewDecWithPrec(2, 2)) {
		t.Errorf("snapshot slippage = %s, want 0.02", snap.MaxSlippage)
	}
}
