package pool

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// Pool is the pooled-capital contract this manager serves. The pool decides
// how much idle capital it can spare; the manager decides where it goes.
type Pool interface {
	// Investable returns the idle capital the pool can currently spare for
	// deployment, in settlement token base units.
	Investable(ctx context.Context) (sdkmath.Int, error)

	// PullInvestable moves up to amount of idle capital from the pool to the
	// manager account and reports the amount actually moved.
	PullInvestable(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error)

	// AcknowledgeWithdrawal tells the pool that amount of settlement currency
	// was just paid into its account, so internal accounting can absorb the
	// returned funds.
	AcknowledgeWithdrawal(ctx context.Context, amount sdkmath.Int) error

	// Address returns the pool's settlement account.
	Address() string
}
