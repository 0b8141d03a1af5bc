package governance

import "errors"

// Role is a named capability grant. The registry of who holds which role
// lives outside this process; only the predicate is injected.
type Role string

const (
	// RoleGuardian can pause and resume the manager.
	RoleGuardian Role = "guardian"
	// RoleLevel1 can trigger the full liquidation used for migrations.
	RoleLevel1 Role = "level1"
	// RoleLevel2 can set any parameter to any valid value.
	RoleLevel2 Role = "level2"
	// RoleLevel3 can nudge parameters within the tweak bound.
	RoleLevel3 Role = "level3"
	// RoleSwapOperator can convert held rewards into the settlement currency.
	RoleSwapOperator Role = "swap_operator"
)

// ErrUnauthorized rejects a caller without the role an operation demands.
var ErrUnauthorized = errors.New("caller lacks required role")

// AccessController answers whether a caller holds a role.
type AccessController interface {
	HasRole(caller string, role Role) bool
}
