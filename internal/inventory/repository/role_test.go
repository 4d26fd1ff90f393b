package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleRepo(t *testing.T) (*repository.RoleRepository, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })
	log := logger.New("test", "development")
	return repository.NewRoleRepository(database.NewWithDB(mockDB.DB, log)), mockDB
}

func TestRoleRepository_GetRole(t *testing.T) {
	repo, mockDB := newRoleRepo(t)

	mockDB.ExpectQuery("SELECT role FROM user_roles").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("pharmacy_manager"))

	role, err := repo.GetRole(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, access.RolePharmacyManager, role)

	mockDB.ExpectationsWereMet(t)
}

func TestRoleRepository_GetRole_AbsentMeansNone(t *testing.T) {
	repo, mockDB := newRoleRepo(t)

	mockDB.ExpectQuery("SELECT role FROM user_roles").
		WithArgs("stranger").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := repo.GetRole(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Equal(t, access.RoleNone, role)

	mockDB.ExpectationsWereMet(t)
}

func TestRoleRepository_AssignRole_RejectsUnknownRole(t *testing.T) {
	repo, mockDB := newRoleRepo(t)

	err := repo.AssignRole(context.Background(), "user-1", access.Role("superuser"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	mockDB.ExpectationsWereMet(t)
}

func TestRoleRepository_RemoveRole_NotFound(t *testing.T) {
	repo, mockDB := newRoleRepo(t)

	mockDB.ExpectExec("DELETE FROM user_roles").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveRole(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	mockDB.ExpectationsWereMet(t)
}
