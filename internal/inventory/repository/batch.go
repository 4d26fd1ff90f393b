package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// Batch represents a physical lot of a medicine on hand
type Batch struct {
	ID          string    `db:"id" json:"id"`
	MedicineID  string    `db:"medicine_id" json:"medicine_id"`
	BatchNumber string    `db:"batch_number" json:"batch_number"`
	Quantity    int       `db:"quantity" json:"quantity"`
	ExpiryDate  time.Time `db:"expiry_date" json:"expiry_date"`
	Supplier    *string   `db:"supplier" json:"supplier,omitempty"`
	UnitPrice   *float64  `db:"unit_price" json:"unit_price,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the batch has passed its expiry date as of now.
func (b *Batch) Expired(now time.Time) bool {
	return b.ExpiryDate.Before(now)
}

// BatchRepository handles batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create creates a new batch
func (r *BatchRepository) Create(ctx context.Context, b *Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	query := `
		INSERT INTO inventory_items (
			id, medicine_id, batch_number, quantity, expiry_date, supplier, unit_price, location
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		b.ID, b.MedicineID, b.BatchNumber, b.Quantity, b.ExpiryDate,
		b.Supplier, b.UnitPrice, b.Location,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a batch by ID
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*Batch, error) {
	var b Batch
	query := `SELECT * FROM inventory_items WHERE id = $1`
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("batch")
		}
		return nil, err
	}
	return &b, nil
}

// Update updates a batch
func (r *BatchRepository) Update(ctx context.Context, b *Batch) error {
	query := `
		UPDATE inventory_items SET
			batch_number = $2, quantity = $3, expiry_date = $4,
			supplier = $5, unit_price = $6, location = $7, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		b.ID, b.BatchNumber, b.Quantity, b.ExpiryDate, b.Supplier, b.UnitPrice, b.Location,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}
	return nil
}

// AdjustQuantity sets the on-hand quantity of a batch. The check constraint
// on the table rejects negative values.
func (r *BatchRepository) AdjustQuantity(ctx context.Context, id string, quantity int) error {
	query := `UPDATE inventory_items SET quantity = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}
	return nil
}

// Delete deletes a batch
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}
	return nil
}

// ListByMedicine lists the batches of a medicine, soonest expiry first
func (r *BatchRepository) ListByMedicine(ctx context.Context, medicineID string) ([]*Batch, error) {
	var batches []*Batch
	query := `SELECT * FROM inventory_items WHERE medicine_id = $1 ORDER BY expiry_date, batch_number`
	if err := r.db.SelectContext(ctx, &batches, query, medicineID); err != nil {
		return nil, err
	}
	return batches, nil
}

// ListActiveFEFO lists the non-expired batches of a medicine with stock on
// hand, ordered first-expiry-first-out. Consumption draws down in this order.
func (r *BatchRepository) ListActiveFEFO(ctx context.Context, medicineID string, now time.Time) ([]*Batch, error) {
	var batches []*Batch
	query := `
		SELECT * FROM inventory_items
		WHERE medicine_id = $1 AND quantity > 0 AND expiry_date >= $2
		ORDER BY expiry_date, batch_number
	`
	if err := r.db.SelectContext(ctx, &batches, query, medicineID, now); err != nil {
		return nil, err
	}
	return batches, nil
}

// TotalStock sums the quantity across a medicine's non-expired batches.
// Expired units on the shelf never count toward usable stock.
func (r *BatchRepository) TotalStock(ctx context.Context, medicineID string, now time.Time) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(quantity), 0) FROM inventory_items
		WHERE medicine_id = $1 AND expiry_date >= $2
	`
	if err := r.db.GetContext(ctx, &total, query, medicineID, now); err != nil {
		return 0, err
	}
	return total, nil
}

// HasExpiredStock reports whether any batch of the medicine holds expired
// units that have not been removed from the shelf.
func (r *BatchRepository) HasExpiredStock(ctx context.Context, medicineID string, now time.Time) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM inventory_items
			WHERE medicine_id = $1 AND quantity > 0 AND expiry_date < $2
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, medicineID, now); err != nil {
		return false, err
	}
	return exists, nil
}

// NearestExpiry returns the soonest expiry date among batches with stock on
// hand, or nil when the medicine has no stocked batches.
func (r *BatchRepository) NearestExpiry(ctx context.Context, medicineID string) (*time.Time, error) {
	var expiry sql.NullTime
	query := `
		SELECT MIN(expiry_date) FROM inventory_items
		WHERE medicine_id = $1 AND quantity > 0
	`
	if err := r.db.GetContext(ctx, &expiry, query, medicineID); err != nil {
		return nil, err
	}
	if !expiry.Valid {
		return nil, nil
	}
	return &expiry.Time, nil
}

// AdjustQuantityTx sets a batch quantity inside an existing transaction.
func AdjustQuantityTx(ctx context.Context, tx *sqlx.Tx, id string, quantity int) error {
	query := `UPDATE inventory_items SET quantity = $2, updated_at = NOW() WHERE id = $1`

	result, err := tx.ExecContext(ctx, query, id, quantity)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}
	return nil
}
