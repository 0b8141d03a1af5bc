package sim

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
)

// Oracle is a settable price source. Prices are quoted in the reference
// currency at WAD precision, per whole token.
type Oracle struct {
	mu     sync.RWMutex
	prices map[string]sdkmath.LegacyDec
}

func NewOracle() *Oracle {
	return &Oracle{prices: make(map[string]sdkmath.LegacyDec)}
}

// SetPrice fixes the reference-currency price for denom.
func (o *Oracle) SetPrice(denom string, price sdkmath.LegacyDec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[denom] = price
}

func (o *Oracle) AssetPrice(_ context.Context, asset types.Token) (sdkmath.LegacyDec, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	price, ok := o.prices[asset.Denom]
	if !ok {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("no price set for %s", asset.Denom)
	}
	return price, nil
}
