// Package access is the single authorization predicate consulted at every
// mutation boundary. Roles come from the user_roles table; the policy itself
// is a pure function and fails closed on anything it does not recognize.
package access

// Role is a user's assigned role. A user without a row in user_roles has
// RoleNone, which is a valid state, not an error.
type Role string

const (
	RoleAdmin           Role = "admin"
	RolePharmacyManager Role = "pharmacy_manager"
	RoleStoreManager    Role = "store_manager"
	RoleNone            Role = ""
)

// ParseRole maps a stored role string onto a Role. Unknown strings map to
// RoleNone so the policy denies them.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RolePharmacyManager, RoleStoreManager:
		return Role(s)
	default:
		return RoleNone
	}
}

// AssignableRoles are the roles an admin may grant to a user.
var AssignableRoles = []Role{RoleAdmin, RolePharmacyManager, RoleStoreManager}

// IsAssignable reports whether s names a role that can be granted.
func IsAssignable(s string) bool {
	for _, r := range AssignableRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// Action is an operation subject to the capability matrix.
type Action string

const (
	// ActionView covers reading inventory, forecasts, and alerts.
	ActionView Action = "view"

	// ActionEditCatalog covers creating and editing medicines and batches,
	// all fields.
	ActionEditCatalog Action = "edit_catalog"

	// ActionAdjustStock covers stock-quantity changes on batches and
	// consumption recording. This is the store manager's slice of the
	// create/edit capability.
	ActionAdjustStock Action = "adjust_stock"

	// ActionDeleteCatalog covers deleting medicines and batches.
	ActionDeleteCatalog Action = "delete_catalog"

	// ActionManageAlerts covers resolving and dismissing alerts.
	ActionManageAlerts Action = "manage_alerts"

	// ActionManageUsers covers assigning and removing user roles.
	ActionManageUsers Action = "manage_users"
)

// matrix is the capability table. Absence means denied.
var matrix = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionView:          true,
		ActionEditCatalog:   true,
		ActionAdjustStock:   true,
		ActionDeleteCatalog: true,
		ActionManageAlerts:  true,
		ActionManageUsers:   true,
	},
	RolePharmacyManager: {
		ActionView:         true,
		ActionEditCatalog:  true,
		ActionAdjustStock:  true,
		ActionManageAlerts: true,
	},
	RoleStoreManager: {
		ActionView:        true,
		ActionAdjustStock: true,
	},
}

// Allowed reports whether the role may perform the action.
// Unknown roles and RoleNone are always denied.
func Allowed(role Role, action Action) bool {
	caps, ok := matrix[role]
	if !ok {
		return false
	}
	return caps[action]
}
