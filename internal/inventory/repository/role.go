package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// UserWithRole pairs a profile with its assigned role for admin listings
type UserWithRole struct {
	UserID   string  `db:"user_id" json:"user_id"`
	Email    string  `db:"email" json:"email"`
	FullName *string `db:"full_name" json:"full_name,omitempty"`
	Role     string  `db:"role" json:"role"`
}

// RoleRepository handles role assignment persistence
type RoleRepository struct {
	db *database.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetRole returns the role assigned to a user. A user without an assignment
// row has no role, which the policy treats as deny-everything.
func (r *RoleRepository) GetRole(ctx context.Context, userID string) (access.Role, error) {
	var role string
	query := `SELECT role FROM user_roles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &role, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return access.RoleNone, nil
		}
		return access.RoleNone, err
	}
	return access.ParseRole(role), nil
}

// AssignRole sets a user's role, replacing any previous assignment
func (r *RoleRepository) AssignRole(ctx context.Context, userID string, role access.Role) error {
	if !access.IsAssignable(string(role)) {
		return errors.Validation(map[string]string{
			"role": "unknown role: " + string(role),
		})
	}

	query := `
		INSERT INTO user_roles (id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New().String(), userID, string(role)); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// RemoveRole drops a user's role assignment, returning them to no access
func (r *RoleRepository) RemoveRole(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("role assignment")
	}
	return nil
}

// ListUsersWithRoles lists every profile with its role, unassigned users
// included
func (r *RoleRepository) ListUsersWithRoles(ctx context.Context) ([]*UserWithRole, error) {
	var users []*UserWithRole
	query := `
		SELECT p.id AS user_id, p.email, p.full_name, COALESCE(ur.role, '') AS role
		FROM profiles p
		LEFT JOIN user_roles ur ON ur.user_id = p.id
		ORDER BY p.email
	`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}
	return users, nil
}
