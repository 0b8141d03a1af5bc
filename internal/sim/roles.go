package sim

import (
	"sync"

	"github.com/amphora-protocol/aam/internal/governance"
)

// Roles is an in-memory role table.
type Roles struct {
	mu     sync.RWMutex
	grants map[string]map[governance.Role]bool
}

func NewRoles() *Roles {
	return &Roles{grants: make(map[string]map[governance.Role]bool)}
}

// Grant gives caller the role.
func (r *Roles) Grant(caller string, role governance.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roles, ok := r.grants[caller]
	if !ok {
		roles = make(map[governance.Role]bool)
		r.grants[caller] = roles
	}
	roles[role] = true
}

// Revoke removes the role from caller.
func (r *Roles) Revoke(caller string, role governance.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if roles, ok := r.grants[caller]; ok {
		delete(roles, role)
	}
}

func (r *Roles) HasRole(caller string, role governance.Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grants[caller][role]
}
