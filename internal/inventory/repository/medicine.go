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

// Medicine categories form a closed set; anything else is a validation error.
var MedicineCategories = []string{
	"tablets", "capsules", "injections", "syrups",
	"ointments", "drops", "surgical", "equipment", "other",
}

// IsValidCategory reports whether c is a known medicine category.
func IsValidCategory(c string) bool {
	for _, known := range MedicineCategories {
		if known == c {
			return true
		}
	}
	return false
}

// Medicine represents a catalog entry
type Medicine struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	GenericName  *string   `db:"generic_name" json:"generic_name,omitempty"`
	Category     string    `db:"category" json:"category"`
	Manufacturer *string   `db:"manufacturer" json:"manufacturer,omitempty"`
	ReorderLevel int       `db:"reorder_level" json:"reorder_level"`
	SafetyStock  int       `db:"safety_stock" json:"safety_stock"`
	Unit         string    `db:"unit" json:"unit"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MedicineRepository handles medicine persistence
type MedicineRepository struct {
	db *database.DB
}

// NewMedicineRepository creates a new medicine repository
func NewMedicineRepository(db *database.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

// Create creates a new medicine
func (r *MedicineRepository) Create(ctx context.Context, m *Medicine) error {
	if !IsValidCategory(m.Category) {
		return errors.Validation(map[string]string{
			"category": "unknown medicine category: " + m.Category,
		})
	}

	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	query := `
		INSERT INTO medicines (
			id, name, generic_name, category, manufacturer, reorder_level, safety_stock, unit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		m.ID, m.Name, m.GenericName, m.Category, m.Manufacturer,
		m.ReorderLevel, m.SafetyStock, m.Unit,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a medicine by ID
func (r *MedicineRepository) GetByID(ctx context.Context, id string) (*Medicine, error) {
	var m Medicine
	query := `SELECT * FROM medicines WHERE id = $1`
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("medicine")
		}
		return nil, err
	}
	return &m, nil
}

// Update updates a medicine's mutable attributes
func (r *MedicineRepository) Update(ctx context.Context, m *Medicine) error {
	if !IsValidCategory(m.Category) {
		return errors.Validation(map[string]string{
			"category": "unknown medicine category: " + m.Category,
		})
	}

	query := `
		UPDATE medicines SET
			name = $2, generic_name = $3, category = $4, manufacturer = $5,
			reorder_level = $6, safety_stock = $7, unit = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.GenericName, m.Category, m.Manufacturer,
		m.ReorderLevel, m.SafetyStock, m.Unit,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("medicine")
	}
	return nil
}

// UpdateStockThresholds updates only the stock-related fields. This is the
// slice of the edit capability a store manager holds.
func (r *MedicineRepository) UpdateStockThresholds(ctx context.Context, id string, reorderLevel, safetyStock int) error {
	query := `
		UPDATE medicines SET reorder_level = $2, safety_stock = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, reorderLevel, safetyStock)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("medicine")
	}
	return nil
}

// Delete deletes a medicine and its dependent rows
func (r *MedicineRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("medicine")
	}
	return nil
}

// List lists medicines with server-side filtering and pagination
func (r *MedicineRepository) List(ctx context.Context, page, perPage int, category, search string) ([]*Medicine, int64, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if category != "" {
		if !IsValidCategory(category) {
			return nil, 0, errors.Validation(map[string]string{
				"category": "unknown medicine category: " + category,
			})
		}
		where += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, category)
		argIndex++
	}

	if search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR generic_name ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM medicines`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM medicines` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, argIndex, argIndex+1)
	args = append(args, perPage, (page-1)*perPage)

	var medicines []*Medicine
	if err := r.db.SelectContext(ctx, &medicines, query, args...); err != nil {
		return nil, 0, err
	}

	return medicines, total, nil
}

// GetAll returns every medicine. Used by the alert evaluation pass.
func (r *MedicineRepository) GetAll(ctx context.Context) ([]*Medicine, error) {
	var medicines []*Medicine
	query := `SELECT * FROM medicines ORDER BY name`
	if err := r.db.SelectContext(ctx, &medicines, query); err != nil {
		return nil, err
	}
	return medicines, nil
}
