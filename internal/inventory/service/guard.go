package service

import (
	"context"

	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/pkg/actor"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// roleStore resolves a user's assigned role. Satisfied by
// repository.RoleRepository.
type roleStore interface {
	GetRole(ctx context.Context, userID string) (access.Role, error)
}

// guard checks the capability matrix at service boundaries. The role is
// resolved from storage on every check so a revoked role takes effect
// immediately, not at next login.
type guard struct {
	roles roleStore
}

// require returns the acting principal if it may perform the action.
// Requests without a principal are unauthorized; principals whose role lacks
// the capability are denied. The system actor bypasses the matrix, since
// scheduled evaluation runs without a user.
func (g guard) require(ctx context.Context, action access.Action) (*actor.Actor, error) {
	act := actor.FromContext(ctx)
	if act == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if act.IsSystem() {
		return act, nil
	}

	role, err := g.roles.GetRole(ctx, act.ID)
	if err != nil {
		return nil, err
	}
	if !access.Allowed(role, action) {
		return nil, errors.AccessDenied(string(action))
	}
	return act, nil
}
