package rewards

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/oracle"
	"github.com/amphora-protocol/aam/internal/sim"
	"github.com/amphora-protocol/aam/internal/swap"
	"github.com/amphora-protocol/aam/internal/types"
)

const (
	addrManager = "aam-manager"
	addrVenue   = "sim-venue"
	addrSwap    = "sim-amm"
	addrPool    = "aam-pool"
)

var (
	usdc = types.Token{Symbol: "USDC", Denom: "uusdc", Decimals: 6}
	rwd  = types.Token{Symbol: "RWD", Denom: "urwd", Decimals: 6}
)

func amt(n int64) sdkmath.Int { return sdkmath.NewInt(n) }

func dec(s string) sdkmath.LegacyDec { return sdkmath.LegacyMustNewDecFromStr(s) }

type fixedParams struct {
	thresholds types.RewardThresholds
	slippage   sdkmath.LegacyDec
}

func (p *fixedParams) RewardThresholds() types.RewardThresholds { return p.thresholds }
func (p *fixedParams) SlippageBound() sdkmath.LegacyDec         { return p.slippage }

type world struct {
	ledger  *sim.Ledger
	venue   *sim.Venue
	swaps   *sim.SwapVenue
	prices  *sim.Oracle
	params  *fixedParams
	manager *Manager
}

// newWorld wires a sim backend with both prices at 1.0, claimMin 100,
// reinvestMin 200 and a 2% slippage bound.
func newWorld(t *testing.T) *world {
	t.Helper()

	ledger := sim.NewLedger()
	prices := sim.NewOracle()
	prices.SetPrice(usdc.Denom, dec("1.0"))
	prices.SetPrice(rwd.Denom, dec("1.0"))
	rates := oracle.NewRateSource(prices)

	yieldVenue := sim.NewVenue(ledger, addrVenue, addrManager, rwd)
	swapVenue := sim.NewSwapVenue(ledger, addrSwap, addrManager, rates)
	holding := sim.NewAccount(ledger, addrManager)

	params := &fixedParams{
		thresholds: types.RewardThresholds{
			ClaimMin:    amt(100),
			ReinvestMin: amt(200),
		},
		slippage: dec("0.02"),
	}

	mgr, err := NewManager(Config{
		Venue:    yieldVenue,
		Swap:     swapVenue,
		Rates:    rates,
		Holding:  holding,
		Params:   params,
		Currency: usdc,
		Reward:   rwd,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	return &world{
		ledger:  ledger,
		venue:   yieldVenue,
		swaps:   swapVenue,
		prices:  prices,
		params:  params,
		manager: mgr,
	}
}

func (w *world) heldRewards() sdkmath.Int { return w.ledger.BalanceOf(addrManager, rwd.Denom) }

func (w *world) depositPrincipal(t *testing.T, n int64) {
	t.Helper()
	w.ledger.Mint(addrManager, usdc.Denom, amt(n))
	if err := w.venue.Deposit(context.Background(), usdc, amt(n)); err != nil {
		t.Fatalf("deposit principal: %v", err)
	}
}

func (w *world) depositRewardPosition(t *testing.T, n int64) {
	t.Helper()
	w.ledger.Mint(addrManager, rwd.Denom, amt(n))
	if err := w.venue.Deposit(context.Background(), rwd, amt(n)); err != nil {
		t.Fatalf("deposit reward position: %v", err)
	}
}

func TestClaimRespectsThreshold(t *testing.T) {
	tests := []struct {
		name        string
		accrued     int64
		forced      bool
		wantClaimed int64
	}{
		{"below threshold skips", 50, false, 0},
		{"exactly at threshold skips", 100, false, 0},
		{"above threshold claims all", 150, false, 150},
		{"forced ignores threshold", 50, true, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			w.venue.Accrue(amt(tt.accrued))

			claimed, err := w.manager.Claim(context.Background(), tt.forced)
			if err != nil {
				t.Fatalf("Claim: %v", err)
			}
			if !claimed.Equal(amt(tt.wantClaimed)) {
				t.Errorf("claimed = %s, want %d", claimed, tt.wantClaimed)
			}
			if held := w.heldRewards(); !held.Equal(amt(tt.wantClaimed)) {
				t.Errorf("holding = %s, want %d", held, tt.wantClaimed)
			}

			unclaimed, err := w.manager.UnclaimedRewards(context.Background())
			if err != nil {
				t.Fatalf("UnclaimedRewards: %v", err)
			}
			wantLeft := tt.accrued - tt.wantClaimed
			if !unclaimed.Equal(amt(wantLeft)) {
				t.Errorf("unclaimed after = %s, want %d", unclaimed, wantLeft)
			}
		})
	}
}

func TestForcedClaimWithNothingAccrued(t *testing.T) {
	w := newWorld(t)

	claimed, err := w.manager.Claim(context.Background(), true)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !claimed.IsZero() {
		t.Errorf("claimed = %s, want 0", claimed)
	}
}

func TestReinvestRespectsThreshold(t *testing.T) {
	tests := []struct {
		name           string
		held           int64
		wantReinvested int64
	}{
		{"below threshold holds", 150, 0},
		{"exactly at threshold holds", 200, 0},
		{"above threshold deposits everything", 201, 201},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			w.ledger.Mint(addrManager, rwd.Denom, amt(tt.held))

			reinvested, err := w.manager.Reinvest(context.Background())
			if err != nil {
				t.Fatalf("Reinvest: %v", err)
			}
			if !reinvested.Equal(amt(tt.wantReinvested)) {
				t.Errorf("reinvested = %s, want %d", reinvested, tt.wantReinvested)
			}

			position, err := w.venue.PositionBalance(context.Background(), rwd)
			if err != nil {
				t.Fatalf("PositionBalance: %v", err)
			}
			if !position.Equal(amt(tt.wantReinvested)) {
				t.Errorf("reward position = %s, want %d", position, tt.wantReinvested)
			}
			if held := w.heldRewards(); !held.Equal(amt(tt.held - tt.wantReinvested)) {
				t.Errorf("holding after = %s, want %d", held, tt.held-tt.wantReinvested)
			}
		})
	}
}

func TestConvertPaysDestination(t *testing.T) {
	w := newWorld(t)
	w.ledger.Mint(addrManager, rwd.Denom, amt(1000))

	in, out, err := w.manager.Convert(context.Background(), amt(1000), addrPool)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !in.Equal(amt(1000)) || !out.Equal(amt(1000)) {
		t.Errorf("in/out = %s/%s, want 1000/1000", in, out)
	}
	if got := w.ledger.BalanceOf(addrPool, usdc.Denom); !got.Equal(amt(1000)) {
		t.Errorf("pool received %s, want 1000", got)
	}
	if held := w.heldRewards(); !held.IsZero() {
		t.Errorf("holding after = %s, want 0", held)
	}
}

func TestConvertSlippageFailureIsAtomic(t *testing.T) {
	w := newWorld(t)
	w.ledger.Mint(addrManager, rwd.Denom, amt(1000))

	// Oracle rate 1.0 with a 2% bound puts the floor at 980.
	w.swaps.SetExecutionRate(dec("0.979"))
	_, _, err := w.manager.Convert(context.Background(), amt(1000), addrPool)
	if !errors.Is(err, swap.ErrSlippageExceeded) {
		t.Fatalf("Convert error = %v, want ErrSlippageExceeded", err)
	}
	if held := w.heldRewards(); !held.Equal(amt(1000)) {
		t.Errorf("holding after failed swap = %s, want 1000 untouched", held)
	}
	if got := w.ledger.BalanceOf(addrPool, usdc.Denom); !got.IsZero() {
		t.Errorf("pool received %s after failed swap, want 0", got)
	}

	w.swaps.SetExecutionRate(dec("0.98"))
	in, out, err := w.manager.Convert(context.Background(), amt(1000), addrPool)
	if err != nil {
		t.Fatalf("Convert at floor: %v", err)
	}
	if !in.Equal(amt(1000)) || !out.Equal(amt(980)) {
		t.Errorf("in/out = %s/%s, want 1000/980", in, out)
	}
}

func TestConvertTopsUpFromRewardPosition(t *testing.T) {
	w := newWorld(t)
	w.depositRewardPosition(t, 500)
	w.ledger.Mint(addrManager, rwd.Denom, amt(300))

	in, out, err := w.manager.Convert(context.Background(), amt(700), addrPool)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !in.Equal(amt(700)) || !out.Equal(amt(700)) {
		t.Errorf("in/out = %s/%s, want 700/700", in, out)
	}

	position, err := w.venue.PositionBalance(context.Background(), rwd)
	if err != nil {
		t.Fatalf("PositionBalance: %v", err)
	}
	if !position.Equal(amt(100)) {
		t.Errorf("reward position after top-up = %s, want 100", position)
	}
}

func TestConvertCapsAtAvailableRewards(t *testing.T) {
	w := newWorld(t)
	w.depositRewardPosition(t, 50)
	w.ledger.Mint(addrManager, rwd.Denom, amt(100))

	in, out, err := w.manager.Convert(context.Background(), amt(1000), addrPool)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !in.Equal(amt(150)) || !out.Equal(amt(150)) {
		t.Errorf("in/out = %s/%s, want 150/150", in, out)
	}
}

func TestConvertZeroIsNoOp(t *testing.T) {
	w := newWorld(t)

	in, out, err := w.manager.Convert(context.Background(), sdkmath.ZeroInt(), addrPool)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !in.IsZero() || !out.IsZero() {
		t.Errorf("in/out = %s/%s, want 0/0", in, out)
	}
}

func TestConvertAllDrainsRewardPosition(t *testing.T) {
	w := newWorld(t)
	w.depositRewardPosition(t, 600)
	w.ledger.Mint(addrManager, rwd.Denom, amt(150))

	in, out, err := w.manager.ConvertAll(context.Background(), addrPool)
	if err != nil {
		t.Fatalf("ConvertAll: %v", err)
	}
	if !in.Equal(amt(750)) || !out.Equal(amt(750)) {
		t.Errorf("in/out = %s/%s, want 750/750", in, out)
	}

	position, err := w.venue.PositionBalance(context.Background(), rwd)
	if err != nil {
		t.Fatalf("PositionBalance: %v", err)
	}
	if !position.IsZero() {
		t.Errorf("reward position after = %s, want 0", position)
	}
	if held := w.heldRewards(); !held.IsZero() {
		t.Errorf("holding after = %s, want 0", held)
	}
}

func TestCoverShortfallDeliversExactly(t *testing.T) {
	w := newWorld(t)
	w.prices.SetPrice(rwd.Denom, dec("2.0"))
	w.ledger.Mint(addrManager, rwd.Denom, amt(800))

	covered, err := w.manager.CoverShortfall(context.Background(), amt(1000), addrPool)
	if err != nil {
		t.Fatalf("CoverShortfall: %v", err)
	}
	if !covered.Equal(amt(1000)) {
		t.Errorf("covered = %s, want 1000", covered)
	}
	if got := w.ledger.BalanceOf(addrPool, usdc.Denom); !got.Equal(amt(1000)) {
		t.Errorf("pool received %s, want 1000", got)
	}
	// The quote sized the input at 500, leaving the rest held.
	if held := w.heldRewards(); !held.Equal(amt(300)) {
		t.Errorf("holding after = %s, want 300", held)
	}
}

func TestCoverShortfallToleratesUnderDelivery(t *testing.T) {
	w := newWorld(t)
	w.prices.SetPrice(rwd.Denom, dec("2.0"))
	w.ledger.Mint(addrManager, rwd.Denom, amt(200))

	covered, err := w.manager.CoverShortfall(context.Background(), amt(1000), addrPool)
	if err != nil {
		t.Fatalf("CoverShortfall: %v", err)
	}
	if !covered.Equal(amt(400)) {
		t.Errorf("covered = %s, want 400", covered)
	}
}

func TestInvestmentValueExcludesUnclaimed(t *testing.T) {
	w := newWorld(t)
	w.prices.SetPrice(rwd.Denom, dec("0.5"))
	w.depositPrincipal(t, 2000)
	w.depositRewardPosition(t, 300)
	w.ledger.Mint(addrManager, rwd.Denom, amt(100))
	w.venue.Accrue(amt(999))

	value, err := w.manager.InvestmentValue(context.Background())
	if err != nil {
		t.Fatalf("InvestmentValue: %v", err)
	}
	// 2000 principal + 0.5 * (300 position + 100 held); accrual not counted.
	if !value.Equal(amt(2200)) {
		t.Errorf("value = %s, want 2200", value)
	}

	if _, err := w.manager.Claim(context.Background(), true); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	value, err = w.manager.InvestmentValue(context.Background())
	if err != nil {
		t.Fatalf("InvestmentValue after claim: %v", err)
	}
	// 2000 + 0.5 * (300 + 100 + 999) truncated.
	if !value.Equal(amt(2699)) {
		t.Errorf("value after claim = %s, want 2699", value)
	}
}
