package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlertRepo(t *testing.T) (*repository.AlertRepository, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })
	log := logger.New("test", "development")
	return repository.NewAlertRepository(database.NewWithDB(mockDB.DB, log)), mockDB
}

func TestAlertRepository_Upsert_Insert(t *testing.T) {
	repo, mockDB := newAlertRepo(t)

	now := time.Now().UTC()
	mockDB.ExpectQuery("INSERT INTO stock_alerts").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "is_resolved", "created_at", "inserted"}).
			AddRow("alert-1", false, false, now, true))

	alert := &repository.Alert{
		MedicineID: "med-1",
		AlertType:  repository.AlertTypeLowStock,
		Severity:   repository.SeverityMedium,
		Message:    "Paracetamol is below its reorder level",
	}
	err := repo.Upsert(context.Background(), alert)
	require.NoError(t, err)
	assert.Equal(t, "alert-1", alert.ID)
	assert.True(t, alert.Inserted)
	assert.False(t, alert.IsRead)
	assert.False(t, alert.IsResolved)

	mockDB.ExpectationsWereMet(t)
}

func TestAlertRepository_Upsert_RefreshesExistingOpenAlert(t *testing.T) {
	repo, mockDB := newAlertRepo(t)

	// The conflict path hands back the existing row's identity, including its
	// read flag. A worsened condition must not reset read state.
	existingCreated := time.Now().UTC()
	mockDB.ExpectQuery("INSERT INTO stock_alerts").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "is_resolved", "created_at", "inserted"}).
			AddRow("existing-alert", true, false, existingCreated, false))

	alert := &repository.Alert{
		MedicineID: "med-1",
		AlertType:  repository.AlertTypeLowStock,
		Severity:   repository.SeverityHigh,
		Message:    "Paracetamol is critically low",
	}
	err := repo.Upsert(context.Background(), alert)
	require.NoError(t, err)
	assert.Equal(t, "existing-alert", alert.ID)
	assert.False(t, alert.Inserted)
	assert.True(t, alert.IsRead)

	mockDB.ExpectationsWereMet(t)
}

func TestAlertRepository_Resolve_ReturnsNotFoundForUnknownID(t *testing.T) {
	repo, mockDB := newAlertRepo(t)

	mockDB.ExpectQuery("UPDATE stock_alerts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Resolve(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	mockDB.ExpectationsWereMet(t)
}

func TestAlertRepository_MarkRead(t *testing.T) {
	repo, mockDB := newAlertRepo(t)

	mockDB.ExpectExec("UPDATE stock_alerts SET is_read = TRUE").
		WithArgs("alert-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), "alert-1"))
	mockDB.ExpectationsWereMet(t)
}

func TestAlertRepository_Delete_NotFound(t *testing.T) {
	repo, mockDB := newAlertRepo(t)

	mockDB.ExpectExec("DELETE FROM stock_alerts").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	mockDB.ExpectationsWereMet(t)
}

func TestAlertRepository_List_SeverityOrdering(t *testing.T) {
	repo, mockDB := newAlertRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "medicine_id", "alert_type", "severity", "message",
		"is_read", "is_resolved", "resolved_at", "created_at",
	}).
		AddRow("a-high", "med-1", repository.AlertTypeStockout, repository.SeverityHigh, "out of stock", false, false, nil, now).
		AddRow("a-med", "med-2", repository.AlertTypeLowStock, repository.SeverityMedium, "running low", false, false, nil, now)

	mockDB.ExpectQuery("SELECT * FROM stock_alerts").WillReturnRows(rows)

	alerts, err := repo.List(context.Background(), repository.AlertFilter{Unresolved: true})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, repository.SeverityHigh, alerts[0].Severity)

	mockDB.ExpectationsWereMet(t)
}
