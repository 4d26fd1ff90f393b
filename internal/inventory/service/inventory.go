package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

// MedicineDetail is a medicine enriched with its live stock picture
type MedicineDetail struct {
	*repository.Medicine
	TotalStock    int                  `json:"total_stock"`
	Status        forecast.StockStatus `json:"status"`
	NearestExpiry *time.Time           `json:"nearest_expiry,omitempty"`
	Batches       []*repository.Batch  `json:"batches"`
	OpenAlerts    []*repository.Alert  `json:"open_alerts"`
}

// MedicineSummary is a catalog row with computed stock status for listings
type MedicineSummary struct {
	*repository.Medicine
	TotalStock int                  `json:"total_stock"`
	Status     forecast.StockStatus `json:"status"`
}

// DashboardStats is the aggregate health picture for the dashboard
type DashboardStats struct {
	TotalMedicines int            `json:"total_medicines"`
	HealthyCount   int            `json:"healthy_count"`
	LowCount       int            `json:"low_count"`
	CriticalCount  int            `json:"critical_count"`
	ExpiredCount   int            `json:"expired_count"`
	ByCategory     map[string]int `json:"by_category"`
	OpenAlerts     int            `json:"open_alerts"`
	UnreadAlerts   int64          `json:"unread_alerts"`
}

// InventoryService owns the medicine catalog, batch stock, and consumption
// recording. Every stock mutation re-evaluates the medicine's alerts.
type InventoryService struct {
	medicines   *repository.MedicineRepository
	batches     *repository.BatchRepository
	consumption *repository.ConsumptionRepository
	alerts      *repository.AlertRepository
	engine      *AlertEngine
	guard       guard
	db          *database.DB
	publisher   eventPublisher
	cfg         config.AlertsConfig
	logger      *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	medicines *repository.MedicineRepository,
	batches *repository.BatchRepository,
	consumption *repository.ConsumptionRepository,
	alerts *repository.AlertRepository,
	roles roleStore,
	engine *AlertEngine,
	db *database.DB,
	publisher eventPublisher,
	cfg config.AlertsConfig,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		medicines:   medicines,
		batches:     batches,
		consumption: consumption,
		alerts:      alerts,
		engine:      engine,
		guard:       guard{roles: roles},
		db:          db,
		publisher:   publisher,
		cfg:         cfg,
		logger:      log,
	}
}

// --- Medicines ---

// CreateMedicine creates a catalog entry
func (s *InventoryService) CreateMedicine(ctx context.Context, m *repository.Medicine) error {
	act, err := s.guard.require(ctx, access.ActionEditCatalog)
	if err != nil {
		return err
	}

	if err := s.medicines.Create(ctx, m); err != nil {
		return err
	}

	s.logger.Info().
		Str("medicine_id", m.ID).
		Str("created_by", act.ID).
		Msg("medicine created")
	s.publish(ctx, messaging.EventMedicineCreated, m)
	return nil
}

// GetMedicine returns a medicine with batches, stock status, and open alerts
func (s *InventoryService) GetMedicine(ctx context.Context, id string) (*MedicineDetail, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}

	m, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	total, err := s.batches.TotalStock(ctx, id, now)
	if err != nil {
		return nil, err
	}
	expired, err := s.batches.HasExpiredStock(ctx, id, now)
	if err != nil {
		return nil, err
	}
	nearestExpiry, err := s.batches.NearestExpiry(ctx, id)
	if err != nil {
		return nil, err
	}
	batches, err := s.batches.ListByMedicine(ctx, id)
	if err != nil {
		return nil, err
	}
	openAlerts, err := s.alerts.ListUnresolvedByMedicine(ctx, id)
	if err != nil {
		return nil, err
	}

	return &MedicineDetail{
		Medicine:      m,
		TotalStock:    total,
		Status:        forecast.ClassifyStatus(total, m.ReorderLevel, expired, s.cfg.CriticalFraction),
		NearestExpiry: nearestExpiry,
		Batches:       batches,
		OpenAlerts:    openAlerts,
	}, nil
}

// ListMedicines lists catalog entries with computed stock status
func (s *InventoryService) ListMedicines(ctx context.Context, page, perPage int, category, search string) ([]*MedicineSummary, int64, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, 0, err
	}

	medicines, total, err := s.medicines.List(ctx, page, perPage, category, search)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	summaries := make([]*MedicineSummary, 0, len(medicines))
	for _, m := range medicines {
		qty, err := s.batches.TotalStock(ctx, m.ID, now)
		if err != nil {
			return nil, 0, err
		}
		expired, err := s.batches.HasExpiredStock(ctx, m.ID, now)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, &MedicineSummary{
			Medicine:   m,
			TotalStock: qty,
			Status:     forecast.ClassifyStatus(qty, m.ReorderLevel, expired, s.cfg.CriticalFraction),
		})
	}
	return summaries, total, nil
}

// UpdateMedicine updates all catalog fields of a medicine
func (s *InventoryService) UpdateMedicine(ctx context.Context, m *repository.Medicine) error {
	if _, err := s.guard.require(ctx, access.ActionEditCatalog); err != nil {
		return err
	}

	if err := s.medicines.Update(ctx, m); err != nil {
		return err
	}

	s.publish(ctx, messaging.EventMedicineUpdated, m)
	return s.engine.EvaluateMedicine(ctx, m.ID)
}

// UpdateStockThresholds updates only reorder level and safety stock. This is
// the edit surface available to store managers.
func (s *InventoryService) UpdateStockThresholds(ctx context.Context, id string, reorderLevel, safetyStock int) error {
	if _, err := s.guard.require(ctx, access.ActionAdjustStock); err != nil {
		return err
	}

	if err := s.medicines.UpdateStockThresholds(ctx, id, reorderLevel, safetyStock); err != nil {
		return err
	}

	m, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, messaging.EventMedicineUpdated, m)
	return s.engine.EvaluateMedicine(ctx, id)
}

// DeleteMedicine removes a medicine and its batches, history, and alerts
func (s *InventoryService) DeleteMedicine(ctx context.Context, id string) error {
	act, err := s.guard.require(ctx, access.ActionDeleteCatalog)
	if err != nil {
		return err
	}

	if err := s.medicines.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("medicine_id", id).
		Str("deleted_by", act.ID).
		Msg("medicine deleted")
	s.publish(ctx, messaging.EventMedicineDeleted, map[string]string{"medicine_id": id})
	return nil
}

// --- Batches ---

// CreateBatch adds a new batch of stock
func (s *InventoryService) CreateBatch(ctx context.Context, b *repository.Batch) error {
	if _, err := s.guard.require(ctx, access.ActionEditCatalog); err != nil {
		return err
	}

	if err := s.batches.Create(ctx, b); err != nil {
		return err
	}

	s.publish(ctx, messaging.EventBatchCreated, b)
	return s.engine.EvaluateMedicine(ctx, b.MedicineID)
}

// GetBatch gets a batch by ID
func (s *InventoryService) GetBatch(ctx context.Context, id string) (*repository.Batch, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}
	return s.batches.GetByID(ctx, id)
}

// ListBatches lists a medicine's batches, soonest expiry first
func (s *InventoryService) ListBatches(ctx context.Context, medicineID string) ([]*repository.Batch, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}
	return s.batches.ListByMedicine(ctx, medicineID)
}

// UpdateBatch updates all fields of a batch
func (s *InventoryService) UpdateBatch(ctx context.Context, b *repository.Batch) error {
	if _, err := s.guard.require(ctx, access.ActionEditCatalog); err != nil {
		return err
	}

	if err := s.batches.Update(ctx, b); err != nil {
		return err
	}

	s.publish(ctx, messaging.EventBatchUpdated, b)
	return s.engine.EvaluateMedicine(ctx, b.MedicineID)
}

// AdjustBatchQuantity sets a batch's on-hand quantity. This is the stock
// correction path, distinct from consumption recording.
func (s *InventoryService) AdjustBatchQuantity(ctx context.Context, batchID string, quantity int, reason string) error {
	act, err := s.guard.require(ctx, access.ActionAdjustStock)
	if err != nil {
		return err
	}
	if quantity < 0 {
		return errors.Validation(map[string]string{"quantity": "quantity cannot be negative"})
	}

	b, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return err
	}

	if err := s.batches.AdjustQuantity(ctx, batchID, quantity); err != nil {
		return err
	}

	s.publish(ctx, messaging.EventStockAdjusted, messaging.StockAdjustedEvent{
		MedicineID: b.MedicineID,
		BatchID:    batchID,
		Previous:   b.Quantity,
		New:        quantity,
		Reason:     reason,
		AdjustedBy: act.ID,
	})
	return s.engine.EvaluateMedicine(ctx, b.MedicineID)
}

// DeleteBatch removes a batch
func (s *InventoryService) DeleteBatch(ctx context.Context, id string) error {
	if _, err := s.guard.require(ctx, access.ActionDeleteCatalog); err != nil {
		return err
	}

	b, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.batches.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, messaging.EventBatchDeleted, map[string]string{"batch_id": id, "medicine_id": b.MedicineID})
	return s.engine.EvaluateMedicine(ctx, b.MedicineID)
}

// --- Consumption ---

// RecordConsumption appends a dispense record and draws the quantity down
// from batches first-expiry-first-out, in one transaction. Stock that is
// expired never covers a dispense.
func (s *InventoryService) RecordConsumption(ctx context.Context, medicineID string, date time.Time, quantity int, notes *string) (*repository.ConsumptionRecord, error) {
	act, err := s.guard.require(ctx, access.ActionAdjustStock)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, errors.Validation(map[string]string{"quantity": "quantity must be positive"})
	}

	if _, err := s.medicines.GetByID(ctx, medicineID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	batches, err := s.batches.ListActiveFEFO(ctx, medicineID, now)
	if err != nil {
		return nil, err
	}

	available := 0
	for _, b := range batches {
		available += b.Quantity
	}
	if available < quantity {
		return nil, errors.Conflict(fmt.Sprintf("insufficient stock: %d requested, %d available", quantity, available))
	}

	record := &repository.ConsumptionRecord{
		MedicineID:       medicineID,
		ConsumptionDate:  date,
		QuantityConsumed: quantity,
		Notes:            notes,
		RecordedBy:       &act.ID,
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		remaining := quantity
		for _, b := range batches {
			if remaining == 0 {
				break
			}
			draw := b.Quantity
			if draw > remaining {
				draw = remaining
			}
			if err := repository.AdjustQuantityTx(ctx, tx, b.ID, b.Quantity-draw); err != nil {
				return err
			}
			remaining -= draw
		}
		return repository.CreateConsumptionTx(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventConsumptionRecorded, messaging.ConsumptionRecordedEvent{
		MedicineID: medicineID,
		Quantity:   quantity,
		Date:       date,
		RecordedBy: act.ID,
	})

	if err := s.engine.EvaluateMedicine(ctx, medicineID); err != nil {
		s.logger.Error().Err(err).
			Str("medicine_id", medicineID).
			Msg("post-consumption alert evaluation failed")
	}
	return record, nil
}

// ListConsumption lists a medicine's dispense history since the given date
func (s *InventoryService) ListConsumption(ctx context.Context, medicineID string, since time.Time) ([]*repository.ConsumptionRecord, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}
	return s.consumption.ListByMedicine(ctx, medicineID, since)
}

// --- Dashboard ---

// GetDashboardStats computes the aggregate stock health picture
func (s *InventoryService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}

	medicines, err := s.medicines.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stats := &DashboardStats{
		TotalMedicines: len(medicines),
		ByCategory:     make(map[string]int),
	}
	for _, m := range medicines {
		stats.ByCategory[m.Category]++
		qty, err := s.batches.TotalStock(ctx, m.ID, now)
		if err != nil {
			return nil, err
		}
		expired, err := s.batches.HasExpiredStock(ctx, m.ID, now)
		if err != nil {
			return nil, err
		}
		switch forecast.ClassifyStatus(qty, m.ReorderLevel, expired, s.cfg.CriticalFraction) {
		case forecast.StatusExpired:
			stats.ExpiredCount++
		case forecast.StatusCritical:
			stats.CriticalCount++
		case forecast.StatusLow:
			stats.LowCount++
		default:
			stats.HealthyCount++
		}
	}

	open, err := s.alerts.List(ctx, repository.AlertFilter{Unresolved: true})
	if err != nil {
		return nil, err
	}
	stats.OpenAlerts = len(open)

	unread, err := s.alerts.CountUnread(ctx)
	if err != nil {
		return nil, err
	}
	stats.UnreadAlerts = unread

	return stats, nil
}

func (s *InventoryService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", eventType).
			Msg("failed to publish inventory event")
	}
}
