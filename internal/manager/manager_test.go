package manager

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/governance"
	"github.com/amphora-protocol/aam/internal/oracle"
	"github.com/amphora-protocol/aam/internal/rewards"
	"github.com/amphora-protocol/aam/internal/sim"
	"github.com/amphora-protocol/aam/internal/types"
)

const (
	addrManager  = "aam-manager"
	addrVenue    = "sim-venue"
	addrSwap     = "sim-amm"
	addrPool     = "aam-pool"
	callerOps    = "ops"
	callerSwap   = "swapper"
	callerGuard  = "guardian"
	callerNobody = "nobody"
)

var (
	usdc = types.Token{Symbol: "USDC", Denom: "uusdc", Decimals: 6}
	rwd  = types.Token{Symbol: "RWD", Denom: "urwd", Decimals: 6}
)

func amt(n int64) sdkmath.Int { return sdkmath.NewInt(n) }

func dec(s string) sdkmath.LegacyDec { return sdkmath.LegacyMustNewDecFromStr(s) }

// memorySink collects position snapshots for assertions.
type memorySink struct {
	snapshots []types.PositionSnapshot
}

func (s *memorySink) RecordSnapshot(snapshot types.PositionSnapshot) error {
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

type world struct {
	ledger  *sim.Ledger
	venue   *sim.Venue
	pool    *sim.Pool
	prices  *sim.Oracle
	journal *sim.Journal
	sink    *memorySink
	rewards *rewards.Manager
	manager *Manager
}

// newWorld builds a sim deployment: bands 100/250/400, claimMin 100,
// reinvestMin 200, 2% slippage, both prices at 1.0 and an empty pool.
func newWorld(t *testing.T) *world {
	t.Helper()

	ledger := sim.NewLedger()
	prices := sim.NewOracle()
	prices.SetPrice(usdc.Denom, dec("1.0"))
	prices.SetPrice(rwd.Denom, dec("1.0"))
	rates := oracle.NewRateSource(prices)

	roles := sim.NewRoles()
	roles.Grant(callerOps, governance.RoleLevel1)
	roles.Grant(callerSwap, governance.RoleSwapOperator)
	roles.Grant(callerGuard, governance.RoleGuardian)

	gov, err := governance.NewGovernance(governance.Config{
		Initial: types.ManagerParameters{
			Bands:       types.LiquidityBands{Min: amt(100), Middle: amt(250), Max: amt(400)},
			Thresholds:  types.RewardThresholds{ClaimMin: amt(100), ReinvestMin: amt(200)},
			MaxSlippage: dec("0.02"),
		},
		Auth: roles,
	})
	if err != nil {
		t.Fatalf("NewGovernance: %v", err)
	}

	yieldVenue := sim.NewVenue(ledger, addrVenue, addrManager, rwd)
	swapVenue := sim.NewSwapVenue(ledger, addrSwap, addrManager, rates)
	simPool := sim.NewPool(ledger, addrPool, addrManager, usdc, amt(0))
	holding := sim.NewAccount(ledger, addrManager)
	journal := sim.NewJournal()

	rewardMgr, err := rewards.NewManager(rewards.Config{
		Venue:    yieldVenue,
		Swap:     swapVenue,
		Rates:    rates,
		Holding:  holding,
		Params:   gov,
		Currency: usdc,
		Reward:   rwd,
	})
	if err != nil {
		t.Fatalf("rewards.NewManager: %v", err)
	}

	sink := &memorySink{}
	mgr, err := NewManager(Config{
		Pool:      simPool,
		Venue:     yieldVenue,
		Rewards:   rewardMgr,
		Params:    gov,
		Auth:      roles,
		Journal:   journal,
		Snapshots: sink,
		Currency:  usdc,
		Reward:    rwd,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	return &world{
		ledger:  ledger,
		venue:   yieldVenue,
		pool:    simPool,
		prices:  prices,
		journal: journal,
		sink:    sink,
		rewards: rewardMgr,
		manager: mgr,
	}
}

func (w *world) fundPool(n int64) {
	w.ledger.Mint(addrPool, usdc.Denom, amt(n))
}

func (w *world) seedPrincipal(t *testing.T, n int64) {
	t.Helper()
	w.ledger.Mint(addrManager, usdc.Denom, amt(n))
	if err := w.venue.Deposit(context.Background(), usdc, amt(n)); err != nil {
		t.Fatalf("seed principal: %v", err)
	}
}

func (w *world) seedRewardPosition(t *testing.T, n int64) {
	t.Helper()
	w.ledger.Mint(addrManager, rwd.Denom, amt(n))
	if err := w.venue.Deposit(context.Background(), rwd, amt(n)); err != nil {
		t.Fatalf("seed reward position: %v", err)
	}
}

func (w *world) invested(t *testing.T) sdkmath.Int {
	t.Helper()
	balance, err := w.venue.PositionBalance(context.Background(), usdc)
	if err != nil {
		t.Fatalf("PositionBalance: %v", err)
	}
	return balance
}

func TestRebalanceInvestsUpToMiddleBand(t *testing.T) {
	w := newWorld(t)
	w.fundPool(300)

	report, err := w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if report.Action != types.ActionInvest {
		t.Fatalf("action = %s, want invest", report.Action)
	}
	if !report.Delivered.Equal(amt(250)) {
		t.Errorf("delivered = %s, want 250", report.Delivered)
	}
	if got := w.invested(t); !got.Equal(amt(250)) {
		t.Errorf("invested = %s, want 250", got)
	}
	if got := w.ledger.BalanceOf(addrPool, usdc.Denom); !got.Equal(amt(50)) {
		t.Errorf("pool balance = %s, want 50", got)
	}

	// A second cycle finds the bands satisfied.
	report, err = w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("second Rebalance: %v", err)
	}
	if report.Action != types.ActionNone {
		t.Errorf("second action = %s, want none", report.Action)
	}
}

func TestRebalanceInvestCappedByIdle(t *testing.T) {
	w := newWorld(t)
	w.fundPool(60)

	report, err := w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if report.Action != types.ActionInvest {
		t.Fatalf("action = %s, want invest", report.Action)
	}
	if !report.Delivered.Equal(amt(60)) {
		t.Errorf("delivered = %s, want 60", report.Delivered)
	}
	if got := w.invested(t); !got.Equal(amt(60)) {
		t.Errorf("invested = %s, want 60", got)
	}
}

func TestRebalanceDivestsDownToMiddleBand(t *testing.T) {
	w := newWorld(t)
	w.seedPrincipal(t, 500)

	report, err := w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if report.Action != types.ActionDivest {
		t.Fatalf("action = %s, want divest", report.Action)
	}
	if !report.Requested.Equal(amt(250)) || !report.Delivered.Equal(amt(250)) {
		t.Errorf("requested/delivered = %s/%s, want 250/250", report.Requested, report.Delivered)
	}
	if got := w.invested(t); !got.Equal(amt(250)) {
		t.Errorf("invested = %s, want 250", got)
	}
	if got := w.ledger.BalanceOf(addrPool, usdc.Denom); !got.Equal(amt(250)) {
		t.Errorf("pool balance = %s, want 250", got)
	}
	if got := w.pool.TotalAcknowledged(); !got.Equal(amt(250)) {
		t.Errorf("acknowledged = %s, want 250", got)
	}
}

func TestRebalanceWithinBandsDoesNothing(t *testing.T) {
	w := newWorld(t)
	w.seedPrincipal(t, 300)
	w.fundPool(1000)

	report, err := w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if report.Action != types.ActionNone {
		t.Errorf("action = %s, want none", report.Action)
	}
	if got := w.invested(t); !got.Equal(amt(300)) {
		t.Errorf("invested = %s, want 300 untouched", got)
	}
}

func TestRebalanceClaimsAndReinvests(t *testing.T) {
	w := newWorld(t)
	w.seedPrincipal(t, 250)
	w.venue.Accrue(amt(150))

	report, err := w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if !report.Claimed.Equal(amt(150)) {
		t.Errorf("claimed = %s, want 150", report.Claimed)
	}
	// 150 held is at or below the reinvest floor of 200.
	if !report.Reinvested.IsZero() {
		t.Errorf("reinvested = %s, want 0", report.Reinvested)
	}

	w.venue.Accrue(amt(150))
	report, err = w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("second Rebalance: %v", err)
	}
	if !report.Claimed.Equal(amt(150)) {
		t.Errorf("second claimed = %s, want 150", report.Claimed)
	}
	if !report.Reinvested.Equal(amt(300)) {
		t.Errorf("second reinvested = %s, want 300", report.Reinvested)
	}

	position, err := w.venue.PositionBalance(context.Background(), rwd)
	if err != nil {
		t.Fatalf("PositionBalance: %v", err)
	}
	if !position.Equal(amt(300)) {
		t.Errorf("reward position = %s, want 300", position)
	}
}

func TestRefillPoolWaterfall(t *testing.T) {
	w := newWorld(t)
	w.seedPrincipal(t, 100)
	w.ledger.Mint(addrManager, rwd.Denom, amt(500))

	report, err := w.manager.RefillPool(context.Background(), callerOps, amt(400))
	if err != nil {
		t.Fatalf("RefillPool: %v", err)
	}
	if !report.PrincipalWithdrawn.Equal(amt(100)) {
		t.Errorf("principal = %s, want 100", report.PrincipalWithdrawn)
	}
	if !report.CoveredFromRewards.Equal(amt(300)) {
		t.Errorf("covered = %s, want 300", report.CoveredFromRewards)
	}
	if !report.Delivered.Equal(amt(400)) {
		t.Errorf("delivered = %s, want 400", report.Delivered)
	}
	if got := w.ledger.BalanceOf(addrPool, usdc.Denom); !got.Equal(amt(400)) {
		t.Errorf("pool balance = %s, want 400", got)
	}
	if got := w.pool.TotalAcknowledged(); !got.Equal(amt(400)) {
		t.Errorf("acknowledged = %s, want 400", got)
	}
}

func TestRefillPoolToleratesUnderDelivery(t *testing.T) {
	w := newWorld(t)
	w.seedPrincipal(t, 100)
	w.ledger.Mint(addrManager, rwd.Denom, amt(50))

	report, err := w.manager.RefillPool(context.Background(), callerOps, amt(400))
	if err != nil {
		t.Fatalf("RefillPool: %v", err)
	}
	if !report.Delivered.Equal(amt(150)) {
		t.Errorf("delivered = %s, want 150", report.Delivered)
	}
	if !report.CoveredFromRewards.Equal(amt(50)) {
		t.Errorf("covered = %s, want 50", report.CoveredFromRewards)
	}
}

func TestRefillPoolRequiresOperationsRole(t *testing.T) {
	w := newWorld(t)

	_, err := w.manager.RefillPool(context.Background(), callerNobody, amt(100))
	if !errors.Is(err, governance.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLiquidateAllLeavesNothingBehind(t *testing.T) {
	w := newWorld(t)
	w.seedPrincipal(t, 300)
	w.seedRewardPosition(t, 80)
	w.ledger.Mint(addrManager, rwd.Denom, amt(20))
	w.venue.Accrue(amt(40))

	report, err := w.manager.LiquidateAll(context.Background(), callerOps)
	if err != nil {
		t.Fatalf("LiquidateAll: %v", err)
	}
	if !report.Claimed.Equal(amt(40)) {
		t.Errorf("claimed = %s, want 40", report.Claimed)
	}
	if !report.PrincipalWithdrawn.Equal(amt(300)) {
		t.Errorf("principal = %s, want 300", report.PrincipalWithdrawn)
	}
	if !report.RewardWithdrawn.Equal(amt(80)) {
		t.Errorf("reward position = %s, want 80", report.RewardWithdrawn)
	}
	// 80 position + 20 held + 40 claimed, all converted at 1.0.
	if !report.SwapIn.Equal(amt(140)) || !report.SwapOut.Equal(amt(140)) {
		t.Errorf("swap in/out = %s/%s, want 140/140", report.SwapIn, report.SwapOut)
	}
	if got := w.ledger.BalanceOf(addrPool, usdc.Denom); !got.Equal(amt(440)) {
		t.Errorf("pool balance = %s, want 440", got)
	}
	if got := w.pool.TotalAcknowledged(); !got.Equal(amt(440)) {
		t.Errorf("acknowledged = %s, want 440", got)
	}

	value, err := w.rewards.InvestmentValue(context.Background())
	if err != nil {
		t.Fatalf("InvestmentValue: %v", err)
	}
	if !value.IsZero() {
		t.Errorf("investment value after liquidation = %s, want 0", value)
	}
}

func TestLiquidateAllRequiresOperationsRole(t *testing.T) {
	w := newWorld(t)
	w.seedPrincipal(t, 300)

	_, err := w.manager.LiquidateAll(context.Background(), callerNobody)
	if !errors.Is(err, governance.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if got := w.invested(t); !got.Equal(amt(300)) {
		t.Errorf("invested = %s, want 300 untouched", got)
	}
}

func TestSwapRewardsKeepsProceedsInHolding(t *testing.T) {
	w := newWorld(t)
	w.ledger.Mint(addrManager, rwd.Denom, amt(300))

	report, err := w.manager.SwapRewards(context.Background(), callerSwap, amt(200))
	if err != nil {
		t.Fatalf("SwapRewards: %v", err)
	}
	if !report.AmountIn.Equal(amt(200)) || !report.AmountOut.Equal(amt(200)) {
		t.Errorf("in/out = %s/%s, want 200/200", report.AmountIn, report.AmountOut)
	}
	if got := w.ledger.BalanceOf(addrManager, usdc.Denom); !got.Equal(amt(200)) {
		t.Errorf("holding currency = %s, want 200", got)
	}
	if got := w.ledger.BalanceOf(addrManager, rwd.Denom); !got.Equal(amt(100)) {
		t.Errorf("holding rewards = %s, want 100", got)
	}
}

func TestSwapRewardsRequiresSwapRole(t *testing.T) {
	w := newWorld(t)
	w.ledger.Mint(addrManager, rwd.Denom, amt(300))

	_, err := w.manager.SwapRewards(context.Background(), callerOps, amt(200))
	if !errors.Is(err, governance.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestPauseGatesOperations(t *testing.T) {
	w := newWorld(t)
	w.fundPool(300)
	w.ledger.Mint(addrManager, rwd.Denom, amt(300))

	if err := w.manager.Pause(callerGuard); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !w.manager.Paused() {
		t.Fatal("manager not paused")
	}

	report, err := w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("paused Rebalance: %v", err)
	}
	if report.Action != types.ActionNone {
		t.Errorf("paused action = %s, want none", report.Action)
	}
	if got := w.invested(t); !got.IsZero() {
		t.Errorf("invested while paused = %s, want 0", got)
	}

	if _, err := w.manager.SwapRewards(context.Background(), callerSwap, amt(100)); !errors.Is(err, ErrPaused) {
		t.Errorf("SwapRewards error = %v, want ErrPaused", err)
	}
	if _, err := w.manager.RefillPool(context.Background(), callerOps, amt(100)); !errors.Is(err, ErrPaused) {
		t.Errorf("RefillPool error = %v, want ErrPaused", err)
	}

	// Liquidation stays available as the escape hatch.
	if _, err := w.manager.LiquidateAll(context.Background(), callerOps); err != nil {
		t.Errorf("paused LiquidateAll: %v", err)
	}

	if err := w.manager.Resume(callerGuard); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	report, err = w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("resumed Rebalance: %v", err)
	}
	if report.Action != types.ActionInvest {
		t.Errorf("resumed action = %s, want invest", report.Action)
	}
}

func TestPauseRequiresGuardianRole(t *testing.T) {
	w := newWorld(t)

	if err := w.manager.Pause(callerOps); !errors.Is(err, governance.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestSnapshotsFollowCompletedOperations(t *testing.T) {
	w := newWorld(t)
	w.fundPool(300)

	report, err := w.manager.Rebalance(context.Background())
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if len(w.sink.snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(w.sink.snapshots))
	}
	snap := w.sink.snapshots[0]
	if snap.OperationID != report.OperationID {
		t.Errorf("operation id = %s, want %s", snap.OperationID, report.OperationID)
	}
	if !snap.Principal.Equal(amt(250)) {
		t.Errorf("principal = %s, want 250", snap.Principal)
	}
	if !snap.TotalValue.Equal(amt(250)) {
		t.Errorf("total value = %s, want 250", snap.TotalValue)
	}
	if !snap.RewardValue.IsZero() {
		t.Errorf("reward value = %s, want 0", snap.RewardValue)
	}

	if _, err := w.manager.LiquidateAll(context.Background(), callerOps); err != nil {
		t.Fatalf("LiquidateAll: %v", err)
	}
	if len(w.sink.snapshots) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(w.sink.snapshots))
	}
	if last := w.sink.snapshots[1]; !last.TotalValue.IsZero() {
		t.Errorf("post-liquidation total value = %s, want 0", last.TotalValue)
	}
}

func TestJournalRecordsOperations(t *testing.T) {
	w := newWorld(t)
	w.fundPool(300)

	if _, err := w.manager.Rebalance(context.Background()); err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	w.ledger.Mint(addrManager, rwd.Denom, amt(300))
	if _, err := w.manager.SwapRewards(context.Background(), callerSwap, amt(100)); err != nil {
		t.Fatalf("SwapRewards: %v", err)
	}

	events := w.journal.Events()
	if len(events) != 2 {
		t.Fatalf("journal has %d events, want 2", len(events))
	}
	if events[0].Kind != types.OperationRebalance || events[1].Kind != types.OperationSwapRewards {
		t.Errorf("kinds = %s, %s", events[0].Kind, events[1].Kind)
	}
	for i, event := range events {
		if event.Sequence != int64(i+1) {
			t.Errorf("event %d sequence = %d, want %d", i, event.Sequence, i+1)
		}
		if !event.Success {
			t.Errorf("event %d marked failed: %s", i, event.Message)
		}
	}
}
