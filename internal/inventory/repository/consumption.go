package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
)

// ConsumptionRecord is an append-only dispense entry. Records are never
// updated or deleted; corrections are new records.
type ConsumptionRecord struct {
	ID               string    `db:"id" json:"id"`
	MedicineID       string    `db:"medicine_id" json:"medicine_id"`
	ConsumptionDate  time.Time `db:"consumption_date" json:"consumption_date"`
	QuantityConsumed int       `db:"quantity_consumed" json:"quantity_consumed"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	RecordedBy       *string   `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ConsumptionRepository handles consumption history persistence
type ConsumptionRepository struct {
	db *database.DB
}

// NewConsumptionRepository creates a new consumption repository
func NewConsumptionRepository(db *database.DB) *ConsumptionRepository {
	return &ConsumptionRepository{db: db}
}

// Create appends a consumption record
func (r *ConsumptionRepository) Create(ctx context.Context, c *ConsumptionRecord) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	query := `
		INSERT INTO consumption_history (
			id, medicine_id, consumption_date, quantity_consumed, notes, recorded_by
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID, c.MedicineID, c.ConsumptionDate, c.QuantityConsumed, c.Notes, c.RecordedBy,
	).Scan(&c.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// CreateConsumptionTx appends a consumption record inside an existing transaction.
func CreateConsumptionTx(ctx context.Context, tx *sqlx.Tx, c *ConsumptionRecord) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	query := `
		INSERT INTO consumption_history (
			id, medicine_id, consumption_date, quantity_consumed, notes, recorded_by
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := tx.QueryRowxContext(ctx, query,
		c.ID, c.MedicineID, c.ConsumptionDate, c.QuantityConsumed, c.Notes, c.RecordedBy,
	).Scan(&c.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// ListByMedicine lists consumption records for a medicine since the given
// date, oldest first. The forecast pipeline consumes this ordering.
func (r *ConsumptionRepository) ListByMedicine(ctx context.Context, medicineID string, since time.Time) ([]*ConsumptionRecord, error) {
	var records []*ConsumptionRecord
	query := `
		SELECT * FROM consumption_history
		WHERE medicine_id = $1 AND consumption_date >= $2
		ORDER BY consumption_date
	`
	if err := r.db.SelectContext(ctx, &records, query, medicineID, since); err != nil {
		return nil, err
	}
	return records, nil
}
