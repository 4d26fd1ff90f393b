package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumptionStore struct {
	records map[string][]*repository.ConsumptionRecord
}

func (f *fakeConsumptionStore) ListByMedicine(_ context.Context, medicineID string, since time.Time) ([]*repository.ConsumptionRecord, error) {
	var out []*repository.ConsumptionRecord
	for _, rec := range f.records[medicineID] {
		if !rec.ConsumptionDate.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type forecastFixture struct {
	svc         *service.ForecastService
	medicines   *fakeMedicineStore
	stock       *fakeStockStore
	consumption *fakeConsumptionStore
}

func newForecastFixture(t *testing.T) *forecastFixture {
	t.Helper()
	medicines := &fakeMedicineStore{medicines: make(map[string]*repository.Medicine)}
	stock := &fakeStockStore{stock: make(map[string]stockState), fail: make(map[string]bool)}
	consumption := &fakeConsumptionStore{records: make(map[string][]*repository.ConsumptionRecord)}
	roles := &fakeRoleStore{roles: map[string]access.Role{
		"admin-1": access.RoleAdmin,
		"store-1": access.RoleStoreManager,
	}}

	cfg := config.ForecastConfig{HistoryWeeks: 12, LeadTimeWeeks: 2}
	log := logger.New("test", "development")

	return &forecastFixture{
		svc:         service.NewForecastService(medicines, stock, consumption, roles, cfg, log),
		medicines:   medicines,
		stock:       stock,
		consumption: consumption,
	}
}

// addWeeklyHistory adds one consumption record per week for the given number
// of weeks, newest one day back, at a constant weekly quantity.
func (fx *forecastFixture) addWeeklyHistory(medicineID string, weeks, weeklyQty int) {
	now := time.Now().UTC()
	for i := 0; i < weeks; i++ {
		fx.consumption.records[medicineID] = append(fx.consumption.records[medicineID], &repository.ConsumptionRecord{
			MedicineID:       medicineID,
			ConsumptionDate:  now.AddDate(0, 0, -(7*i + 1)),
			QuantityConsumed: weeklyQty,
		})
	}
}

func TestForecastService_SteadyConsumption(t *testing.T) {
	fx := newForecastFixture(t)
	fx.medicines.medicines["med-1"] = &repository.Medicine{ID: "med-1", Name: "Paracetamol", ReorderLevel: 100, SafetyStock: 50}
	fx.stock.stock["med-1"] = stockState{qty: 45}
	fx.addWeeklyHistory("med-1", 8, 175)

	result, err := fx.svc.Forecast(asUser("store-1"), "med-1", 4)
	require.NoError(t, err)

	assert.InDelta(t, 175.0, result.WeeklyRate, 0.001)
	assert.Equal(t, 700, result.ProjectedDemand)
	assert.Equal(t, 99, result.Confidence)
	assert.False(t, result.InsufficientHistory)

	// 45 on hand at 25/day runs out within the critical window, and covering
	// lead time plus horizon at 175/week with safety stock intact needs
	// 175*6 + 50 - 45 units.
	assert.Equal(t, 1, result.DaysUntilStockout)
	assert.Equal(t, forecast.BucketCritical, result.Bucket)
	assert.Equal(t, 1055, result.RecommendedOrder)
}

func TestForecastService_NoHistory(t *testing.T) {
	fx := newForecastFixture(t)
	fx.medicines.medicines["med-1"] = &repository.Medicine{ID: "med-1", Name: "Rarely Used", ReorderLevel: 10, SafetyStock: 5}
	fx.stock.stock["med-1"] = stockState{qty: 20}

	result, err := fx.svc.Forecast(asUser("admin-1"), "med-1", 8)
	require.NoError(t, err)

	assert.True(t, result.InsufficientHistory)
	assert.Equal(t, 0.0, result.WeeklyRate)
	assert.Equal(t, 0, result.ProjectedDemand)
	assert.Equal(t, forecast.ConfidenceFloor, result.Confidence)
	assert.Equal(t, forecast.StockoutUnbounded, result.DaysUntilStockout)
	assert.Equal(t, 0, result.RecommendedOrder)
	assert.Equal(t, forecast.BucketHealthy, result.Bucket)
}

func TestForecastService_InvalidHorizon(t *testing.T) {
	fx := newForecastFixture(t)
	fx.medicines.medicines["med-1"] = &repository.Medicine{ID: "med-1", Name: "Paracetamol"}

	_, err := fx.svc.Forecast(asUser("admin-1"), "med-1", 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestForecastService_UnknownMedicine(t *testing.T) {
	fx := newForecastFixture(t)

	_, err := fx.svc.Forecast(asUser("admin-1"), "missing", 4)
	assert.True(t, errors.IsNotFound(err))
}

func TestForecastService_AccessDenied(t *testing.T) {
	fx := newForecastFixture(t)
	fx.medicines.medicines["med-1"] = &repository.Medicine{ID: "med-1", Name: "Paracetamol"}

	_, err := fx.svc.Forecast(asUser("stranger"), "med-1", 4)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

func TestForecastService_ForecastAll(t *testing.T) {
	fx := newForecastFixture(t)
	fx.medicines.medicines["med-1"] = &repository.Medicine{ID: "med-1", Name: "Paracetamol", SafetyStock: 50}
	fx.medicines.medicines["med-2"] = &repository.Medicine{ID: "med-2", Name: "Insulin", SafetyStock: 10}
	fx.stock.stock["med-1"] = stockState{qty: 45}
	fx.stock.stock["med-2"] = stockState{qty: 500}
	fx.addWeeklyHistory("med-1", 8, 175)
	fx.addWeeklyHistory("med-2", 8, 20)

	results, err := fx.svc.ForecastAll(asUser("admin-1"), 12)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 12, r.HorizonWeeks)
		assert.False(t, r.InsufficientHistory)
	}
}
