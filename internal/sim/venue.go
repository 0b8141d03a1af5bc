package sim

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/venue"
)

// Venue is an in-memory yield venue. It holds one position per asset and
// accrues rewards in a single reward token until they are claimed.
type Venue struct {
	mu        sync.Mutex
	ledger    *Ledger
	address   string
	manager   string
	reward    types.Token
	positions map[string]sdkmath.Int
	claimable sdkmath.Int
}

func NewVenue(ledger *Ledger, address, managerAddress string, reward types.Token) *Venue {
	return &Venue{
		ledger:    ledger,
		address:   address,
		manager:   managerAddress,
		reward:    reward,
		positions: make(map[string]sdkmath.Int),
		claimable: sdkmath.ZeroInt(),
	}
}

// Accrue adds unclaimed rewards backed by freshly minted reward tokens.
func (v *Venue) Accrue(amount sdkmath.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.ledger.Mint(v.address, v.reward.Denom, amount)
	v.claimable = v.claimable.Add(amount)
}

func (v *Venue) Deposit(_ context.Context, asset types.Token, amount sdkmath.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("deposit amount must be positive, got %s", amount)
	}
	if err := v.ledger.Transfer(v.manager, v.address, asset.Denom, amount); err != nil {
		return err
	}

	v.positions[asset.Denom] = v.position(asset.Denom).Add(amount)
	return nil
}

func (v *Venue) Withdraw(_ context.Context, asset types.Token, req venue.WithdrawRequest, destination string) (sdkmath.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	available := v.position(asset.Denom)
	taking, err := req.Resolve(available)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if taking.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	if err := v.ledger.Transfer(v.address, destination, asset.Denom, taking); err != nil {
		return sdkmath.ZeroInt(), err
	}

	v.positions[asset.Denom] = available.Sub(taking)
	return taking, nil
}

func (v *Venue) PositionBalance(_ context.Context, asset types.Token) (sdkmath.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position(asset.Denom), nil
}

func (v *Venue) ClaimableRewards(_ context.Context, _ []types.Token) (sdkmath.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.claimable, nil
}

func (v *Venue) ClaimRewards(_ context.Context, _ []types.Token, destination string) (sdkmath.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	claimed := v.claimable
	if claimed.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	if err := v.ledger.Transfer(v.address, destination, v.reward.Denom, claimed); err != nil {
		return sdkmath.ZeroInt(), err
	}

	v.claimable = sdkmath.ZeroInt()
	return claimed, nil
}

func (v *Venue) position(denom string) sdkmath.Int {
	if p, ok := v.positions[denom]; ok {
		return p
	}
	return sdkmath.ZeroInt()
}
