/*

This is a custom type for tokens which carries the state needed to move value
between the pool currency and the reward asset.

*/

package types

import (
	"errors"
	"fmt"
)

type Token struct {
	Symbol   string `json:"symbol"`   // e.g., "USDC"
	Denom    string `json:"denom"`    // e.g., "uusdc"
	Decimals int    `json:"decimals"` // e.g., 6 means 1_000_000 base units = 1 token
}

var (
	ErrTokenSymbolEmpty     = errors.New("token symbol is empty")
	ErrTokenDenomEmpty      = errors.New("token denom is empty")
	ErrTokenDecimalsInvalid = errors.New("token decimals out of range")
)

// Validate checks that a token definition is usable for value math.
func (t Token) Validate() error {
	if t.Symbol == "" {
		return ErrTokenSymbolEmpty
	}
	if t.Denom == "" {
		return ErrTokenDenomEmpty
	}
	if t.Decimals < 0 || t.Decimals > 18 {
		return fmt.Errorf("%w: %d (must be between 0 and 18)", ErrTokenDecimalsInvalid, t.Decimals)
	}
	return nil
}

// Equal reports whether two tokens refer to the same asset.
func (t Token) Equal(other Token) bool {
	return t.Denom == other.Denom
}
