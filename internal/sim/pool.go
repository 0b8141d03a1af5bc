package sim

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/wad"
)

// Pool is an in-memory pooled-capital contract. Investable capital is the
// pool balance above the operational float it keeps liquid for payouts.
type Pool struct {
	mu           sync.Mutex
	ledger       *Ledger
	address      string
	manager      string
	currency     types.Token
	float        sdkmath.Int
	acknowledged sdkmath.Int
}

func NewPool(ledger *Ledger, address, managerAddress string, currency types.Token, operationalFloat sdkmath.Int) *Pool {
	return &Pool{
		ledger:       ledger,
		address:      address,
		manager:      managerAddress,
		currency:     currency,
		float:        operationalFloat,
		acknowledged: sdkmath.ZeroInt(),
	}
}

func (p *Pool) Address() string {
	return p.address
}

func (p *Pool) Investable(_ context.Context) (sdkmath.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return wad.CappedSub(p.ledger.BalanceOf(p.address, p.currency.Denom), p.float), nil
}

func (p *Pool) PullInvestable(_ context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount.IsNil() || amount.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("pull amount must be non-negative, got %s", amount)
	}

	investable := wad.CappedSub(p.ledger.BalanceOf(p.address, p.currency.Denom), p.float)
	moved := wad.Min(amount, investable)
	if moved.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	if err := p.ledger.Transfer(p.address, p.manager, p.currency.Denom, moved); err != nil {
		return sdkmath.ZeroInt(), err
	}

	return moved, nil
}

func (p *Pool) AcknowledgeWithdrawal(_ context.Context, amount sdkmath.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("acknowledged amount must be non-negative, got %s", amount)
	}

	p.acknowledged = p.acknowledged.Add(amount)
	return nil
}

// TotalAcknowledged reports the sum of returns the pool has been told about.
func (p *Pool) TotalAcknowledged() sdkmath.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acknowledged
}
