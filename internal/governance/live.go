/*

This file contains the live access controller.

Role membership lives in the protocol's access registry and is queried through
the settlement node. The predicate fails closed: any transport or decode error
denies the role rather than guessing.

*/

package governance

import (
	"context"
	"time"

	"github.com/amphora-protocol/aam/internal/gateway"
	"github.com/amphora-protocol/aam/internal/logger"
)

const (
	// ROLE_CHECK_TIMEOUT_SECONDS bounds one registry lookup.
	ROLE_CHECK_TIMEOUT_SECONDS = 10
)

var rolesLogger = logger.GetForComponent("roles_client")

// LiveAccessController answers role checks from the on-chain registry.
type LiveAccessController struct {
	client *gateway.Client
}

func NewLiveAccessController(client *gateway.Client) *LiveAccessController {
	return &LiveAccessController{client: client}
}

type hasRoleParams struct {
	Account string `json:"account"`
	Role    string `json:"role"`
}

type hasRoleResult struct {
	Granted bool `json:"granted"`
}

func (a *LiveAccessController) HasRole(caller string, role Role) bool {
	ctx, cancel := context.WithTimeout(context.Background(), ROLE_CHECK_TIMEOUT_SECONDS*time.Second)
	defer cancel()

	var result hasRoleResult
	err := a.client.Call(ctx, "auth_hasRole", hasRoleParams{Account: caller, Role: string(role)}, &result)
	if err != nil {
		rolesLogger.Error().
			Err(err).
			Str("caller", caller).
			Str("role", string(role)).
			Msg("Role check failed, denying")
		return false
	}
	return result.Granted
}
