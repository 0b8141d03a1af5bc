/*

This package is an in-memory settlement backend for paper trading and tests.

It mirrors the live adapters closely enough that the manager cannot tell which
backend it is wired to: balances move atomically, withdrawals cap to what
exists, and swaps either deliver the slippage floor or move nothing at all.

*/

package sim

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
	"github.com/amphora-protocol/aam/internal/wad"
)

// Ledger tracks token balances per account address.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]map[string]sdkmath.Int
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]map[string]sdkmath.Int)}
}

// Mint credits amount of denom to address out of thin air.
func (l *Ledger) Mint(address, denom string, amount sdkmath.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(address, denom, amount)
}

// BalanceOf returns the balance of denom held by address.
func (l *Ledger) BalanceOf(address, denom string) sdkmath.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceOf(address, denom)
}

// Transfer moves amount of denom between accounts, failing on insufficient funds.
func (l *Ledger) Transfer(from, to, denom string, amount sdkmath.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfer(from, to, denom, amount)
}

func (l *Ledger) balanceOf(address, denom string) sdkmath.Int {
	if account, ok := l.balances[address]; ok {
		if balance, ok := account[denom]; ok {
			return balance
		}
	}
	return sdkmath.ZeroInt()
}

func (l *Ledger) credit(address, denom string, amount sdkmath.Int) {
	account, ok := l.balances[address]
	if !ok {
		account = make(map[string]sdkmath.Int)
		l.balances[address] = account
	}
	account[denom] = l.balanceOf(address, denom).Add(amount)
}

func (l *Ledger) transfer(from, to, denom string, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("transfer amount must be non-negative, got %s", amount)
	}
	if amount.IsZero() {
		return nil
	}

	balance := l.balanceOf(from, denom)
	remaining, err := wad.SafeSub(balance, amount)
	if err != nil {
		return fmt.Errorf("insufficient funds: %s holds %s%s, needs %s", from, balance, denom, amount)
	}

	l.balances[from][denom] = remaining
	l.credit(to, denom, amount)
	return nil
}

// Account adapts one ledger address to the wallet interface.
type Account struct {
	ledger  *Ledger
	address string
}

func NewAccount(ledger *Ledger, address string) *Account {
	return &Account{ledger: ledger, address: address}
}

func (a *Account) Address() string {
	return a.address
}

func (a *Account) Balance(_ context.Context, asset types.Token) (sdkmath.Int, error) {
	return a.ledger.BalanceOf(a.address, asset.Denom), nil
}
