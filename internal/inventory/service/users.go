package service

import (
	"context"

	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

// UserService manages role assignments. Only admins reach these operations.
type UserService struct {
	roles     *repository.RoleRepository
	guard     guard
	publisher eventPublisher
	logger    *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(roles *repository.RoleRepository, publisher eventPublisher, log *logger.Logger) *UserService {
	return &UserService{
		roles:     roles,
		guard:     guard{roles: roles},
		publisher: publisher,
		logger:    log,
	}
}

// ListUsers lists every profile with its assigned role
func (s *UserService) ListUsers(ctx context.Context) ([]*repository.UserWithRole, error) {
	if _, err := s.guard.require(ctx, access.ActionManageUsers); err != nil {
		return nil, err
	}
	return s.roles.ListUsersWithRoles(ctx)
}

// AssignRole grants a role to a user, replacing any existing assignment
func (s *UserService) AssignRole(ctx context.Context, userID string, role access.Role) error {
	act, err := s.guard.require(ctx, access.ActionManageUsers)
	if err != nil {
		return err
	}

	if err := s.roles.AssignRole(ctx, userID, role); err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("role", string(role)).
		Str("assigned_by", act.ID).
		Msg("role assigned")
	s.publishRoleEvent(ctx, messaging.EventRoleAssigned, userID, string(role))
	return nil
}

// RemoveRole drops a user's role, returning them to no access
func (s *UserService) RemoveRole(ctx context.Context, userID string) error {
	act, err := s.guard.require(ctx, access.ActionManageUsers)
	if err != nil {
		return err
	}

	if err := s.roles.RemoveRole(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("removed_by", act.ID).
		Msg("role removed")
	s.publishRoleEvent(ctx, messaging.EventRoleRemoved, userID, "")
	return nil
}

func (s *UserService) publishRoleEvent(ctx context.Context, eventType, userID, role string) {
	if s.publisher == nil {
		return
	}
	event := messaging.RoleChangedEvent{UserID: userID, Role: role}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", eventType).
			Msg("failed to publish role event")
	}
}
