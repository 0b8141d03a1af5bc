package wallet

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
)

// Account is a funds-holding account under the manager's control. Claimed
// rewards rest here between claiming and conversion or reinvestment.
type Account interface {
	// Address returns the account address.
	Address() string

	// Balance returns the spendable balance of asset held by the account.
	Balance(ctx context.Context, asset types.Token) (sdkmath.Int, error)
}
