package service

import (
	"context"
	"time"

	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// consumptionStore reads dispense history. Satisfied by
// repository.ConsumptionRepository.
type consumptionStore interface {
	ListByMedicine(ctx context.Context, medicineID string, since time.Time) ([]*repository.ConsumptionRecord, error)
}

// ForecastResult is the full demand projection for one medicine over one
// horizon.
type ForecastResult struct {
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	HorizonWeeks int    `json:"horizon_weeks"`
	CurrentStock int    `json:"current_stock"`

	WeeklyRate          float64 `json:"weekly_consumption_rate"`
	ProjectedDemand     int     `json:"projected_demand"`
	Confidence          int     `json:"confidence"`
	InsufficientHistory bool    `json:"insufficient_history"`

	// DaysUntilStockout is -1 when consumption is zero and current stock
	// never runs out.
	DaysUntilStockout int             `json:"days_until_stockout"`
	RecommendedOrder  int             `json:"recommended_order"`
	Bucket            forecast.Bucket `json:"status"`
}

// ForecastService turns consumption history into demand projections and
// reorder recommendations. The arithmetic lives in the forecast package;
// this layer loads the inputs and applies access control.
type ForecastService struct {
	medicines   medicineStore
	stock       stockStore
	consumption consumptionStore
	guard       guard
	cfg         config.ForecastConfig
	logger      *logger.Logger
}

// NewForecastService creates a new forecast service
func NewForecastService(
	medicines medicineStore,
	stock stockStore,
	consumption consumptionStore,
	roles roleStore,
	cfg config.ForecastConfig,
	log *logger.Logger,
) *ForecastService {
	return &ForecastService{
		medicines:   medicines,
		stock:       stock,
		consumption: consumption,
		guard:       guard{roles: roles},
		cfg:         cfg,
		logger:      log,
	}
}

// Forecast projects demand for one medicine over the given horizon
func (s *ForecastService) Forecast(ctx context.Context, medicineID string, horizonWeeks int) (*ForecastResult, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}
	if !forecast.IsValidHorizon(horizonWeeks) {
		return nil, errors.Validation(map[string]string{
			"horizon_weeks": "horizon must be 4, 8, or 12 weeks",
		})
	}

	m, err := s.medicines.GetByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	return s.forecastMedicine(ctx, m, horizonWeeks)
}

// ForecastAll projects demand for every medicine over the given horizon.
// Medicines whose projection fails are logged and skipped rather than
// failing the whole report.
func (s *ForecastService) ForecastAll(ctx context.Context, horizonWeeks int) ([]*ForecastResult, error) {
	if _, err := s.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}
	if !forecast.IsValidHorizon(horizonWeeks) {
		return nil, errors.Validation(map[string]string{
			"horizon_weeks": "horizon must be 4, 8, or 12 weeks",
		})
	}

	medicines, err := s.medicines.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*ForecastResult, 0, len(medicines))
	for _, m := range medicines {
		result, err := s.forecastMedicine(ctx, m, horizonWeeks)
		if err != nil {
			s.logger.Error().Err(err).
				Str("medicine_id", m.ID).
				Msg("forecast failed")
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *ForecastService) forecastMedicine(ctx context.Context, m *repository.Medicine, horizonWeeks int) (*ForecastResult, error) {
	now := time.Now().UTC()

	qty, err := s.stock.TotalStock(ctx, m.ID, now)
	if err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -s.cfg.HistoryWeeks*7)
	records, err := s.consumption.ListByMedicine(ctx, m.ID, since)
	if err != nil {
		return nil, err
	}

	entries := make([]forecast.ConsumptionEntry, len(records))
	for i, rec := range records {
		entries[i] = forecast.ConsumptionEntry{
			Date:     rec.ConsumptionDate,
			Quantity: rec.QuantityConsumed,
		}
	}

	series := forecast.AggregateWeekly(entries, s.cfg.HistoryWeeks, now)
	projection := forecast.Project(series, horizonWeeks)
	rec := forecast.Recommend(qty, m.SafetyStock, projection.WeeklyRate, horizonWeeks, s.cfg.LeadTimeWeeks)

	return &ForecastResult{
		MedicineID:          m.ID,
		MedicineName:        m.Name,
		HorizonWeeks:        horizonWeeks,
		CurrentStock:        qty,
		WeeklyRate:          projection.WeeklyRate,
		ProjectedDemand:     projection.Demand,
		Confidence:          projection.Confidence,
		InsufficientHistory: projection.InsufficientHistory,
		DaysUntilStockout:   rec.DaysUntilStockout,
		RecommendedOrder:    rec.RecommendedOrder,
		Bucket:              rec.Bucket,
	}, nil
}
