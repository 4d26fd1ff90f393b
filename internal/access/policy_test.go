package access_test

import (
	"testing"

	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/stretchr/testify/assert"
)

var allActions = []access.Action{
	access.ActionView,
	access.ActionEditCatalog,
	access.ActionAdjustStock,
	access.ActionDeleteCatalog,
	access.ActionManageAlerts,
	access.ActionManageUsers,
}

func TestAllowed_AdminHasEveryCapability(t *testing.T) {
	for _, action := range allActions {
		assert.True(t, access.Allowed(access.RoleAdmin, action), "admin denied on %s", action)
	}
}

func TestAllowed_Matrix(t *testing.T) {
	tests := []struct {
		name    string
		role    access.Role
		action  access.Action
		allowed bool
	}{
		{"pharmacy manager views", access.RolePharmacyManager, access.ActionView, true},
		{"pharmacy manager edits catalog", access.RolePharmacyManager, access.ActionEditCatalog, true},
		{"pharmacy manager resolves alerts", access.RolePharmacyManager, access.ActionManageAlerts, true},
		{"pharmacy manager cannot delete", access.RolePharmacyManager, access.ActionDeleteCatalog, false},
		{"pharmacy manager cannot manage users", access.RolePharmacyManager, access.ActionManageUsers, false},
		{"store manager views", access.RoleStoreManager, access.ActionView, true},
		{"store manager adjusts stock", access.RoleStoreManager, access.ActionAdjustStock, true},
		{"store manager cannot edit catalog", access.RoleStoreManager, access.ActionEditCatalog, false},
		{"store manager denied delete medicine", access.RoleStoreManager, access.ActionDeleteCatalog, false},
		{"store manager cannot resolve alerts", access.RoleStoreManager, access.ActionManageAlerts, false},
		{"no role cannot view", access.RoleNone, access.ActionView, false},
		{"no role cannot adjust stock", access.RoleNone, access.ActionAdjustStock, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, access.Allowed(tt.role, tt.action))
		})
	}
}

func TestAllowed_FailsClosedOnUnknownRole(t *testing.T) {
	for _, action := range allActions {
		assert.False(t, access.Allowed(access.Role("superuser"), action))
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, access.RoleAdmin, access.ParseRole("admin"))
	assert.Equal(t, access.RolePharmacyManager, access.ParseRole("pharmacy_manager"))
	assert.Equal(t, access.RoleStoreManager, access.ParseRole("store_manager"))
	assert.Equal(t, access.RoleNone, access.ParseRole(""))
	assert.Equal(t, access.RoleNone, access.ParseRole("intern"))
}

func TestIsAssignable(t *testing.T) {
	assert.True(t, access.IsAssignable("admin"))
	assert.True(t, access.IsAssignable("store_manager"))
	assert.False(t, access.IsAssignable(""))
	assert.False(t, access.IsAssignable("root"))
}
