package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// Alert types
const (
	AlertTypeLowStock      = "low_stock"
	AlertTypeExpiryWarning = "expiry_warning"
	AlertTypeOverstock     = "overstock"
	AlertTypeStockout      = "stockout"
)

// Alert severities
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Alert represents a stock condition flagged for attention
type Alert struct {
	ID         string     `db:"id" json:"id"`
	MedicineID string     `db:"medicine_id" json:"medicine_id"`
	AlertType  string     `db:"alert_type" json:"alert_type"`
	Severity   string     `db:"severity" json:"severity"`
	Message    string     `db:"message" json:"message"`
	IsRead     bool       `db:"is_read" json:"is_read"`
	IsResolved bool       `db:"is_resolved" json:"is_resolved"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`

	// Inserted is set by Upsert: true when the row was newly created, false
	// when an existing open alert was refreshed. Not a table column.
	Inserted bool `db:"inserted" json:"-"`
}

// AlertFilter narrows alert listings
type AlertFilter struct {
	MedicineID string
	AlertType  string
	Unresolved bool
	UnreadOnly bool
}

// AlertRepository handles alert persistence
type AlertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Upsert inserts an alert, or refreshes the existing unresolved alert for the
// same medicine and type. A partial unique index on (medicine_id, alert_type)
// WHERE NOT is_resolved backs the conflict target, so concurrent evaluation
// passes cannot create duplicate open alerts. Resolved rows are untouched and
// remain as history.
func (r *AlertRepository) Upsert(ctx context.Context, a *Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO stock_alerts (id, medicine_id, alert_type, severity, message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (medicine_id, alert_type) WHERE NOT is_resolved
		DO UPDATE SET severity = EXCLUDED.severity, message = EXCLUDED.message, created_at = NOW()
		RETURNING id, is_read, is_resolved, created_at, (xmax = 0) AS inserted
	`

	err := r.db.QueryRowxContext(ctx, query,
		a.ID, a.MedicineID, a.AlertType, a.Severity, a.Message,
	).Scan(&a.ID, &a.IsRead, &a.IsResolved, &a.CreatedAt, &a.Inserted)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*Alert, error) {
	var a Alert
	query := `SELECT * FROM stock_alerts WHERE id = $1`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("alert")
		}
		return nil, err
	}
	return &a, nil
}

// List lists alerts matching the filter, most severe and newest first
func (r *AlertRepository) List(ctx context.Context, filter AlertFilter) ([]*Alert, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter.MedicineID != "" {
		where += fmt.Sprintf(" AND medicine_id = $%d", argIndex)
		args = append(args, filter.MedicineID)
		argIndex++
	}
	if filter.AlertType != "" {
		where += fmt.Sprintf(" AND alert_type = $%d", argIndex)
		args = append(args, filter.AlertType)
		argIndex++
	}
	if filter.Unresolved {
		where += " AND NOT is_resolved"
	}
	if filter.UnreadOnly {
		where += " AND NOT is_read"
	}

	query := `SELECT * FROM stock_alerts` + where + `
		ORDER BY CASE severity WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at DESC
	`

	var alerts []*Alert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, err
	}
	return alerts, nil
}

// MarkRead marks an alert as read. Marking an already-read alert is a no-op.
func (r *AlertRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE stock_alerts SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("alert")
	}
	return nil
}

// Resolve marks an alert as resolved and stamps the resolution time.
// Resolving an already-resolved alert leaves the original timestamp intact.
func (r *AlertRepository) Resolve(ctx context.Context, id string) (*Alert, error) {
	var a Alert
	query := `
		UPDATE stock_alerts
		SET is_resolved = TRUE, resolved_at = COALESCE(resolved_at, NOW())
		WHERE id = $1
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("alert")
		}
		return nil, err
	}
	return &a, nil
}

// Delete permanently removes an alert. Nothing blocks the condition from
// being flagged again on the next evaluation pass.
func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stock_alerts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("alert")
	}
	return nil
}

// CountUnread counts unread unresolved alerts
func (r *AlertRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM stock_alerts WHERE NOT is_read AND NOT is_resolved`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, err
	}
	return count, nil
}

// ListUnresolvedByMedicine lists the open alerts of a single medicine
func (r *AlertRepository) ListUnresolvedByMedicine(ctx context.Context, medicineID string) ([]*Alert, error) {
	return r.List(ctx, AlertFilter{MedicineID: medicineID, Unresolved: true})
}
