package forecast_test

import (
	"testing"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name          string
		quantity      int
		reorderLevel  int
		expiredOnHand bool
		want          forecast.StockStatus
	}{
		{"well above reorder level", 500, 200, false, forecast.StatusHealthy},
		{"just above reorder level", 201, 200, false, forecast.StatusHealthy},
		{"at reorder level", 200, 200, false, forecast.StatusLow},
		{"between critical and reorder", 150, 200, false, forecast.StatusLow},
		{"at half reorder level", 100, 200, false, forecast.StatusCritical},
		{"below half reorder level", 45, 200, false, forecast.StatusCritical},
		{"zero quantity", 0, 200, false, forecast.StatusCritical},
		{"zero quantity zero reorder level", 0, 0, false, forecast.StatusCritical},
		{"expired stock wins over critical", 0, 200, true, forecast.StatusExpired},
		{"expired stock wins over healthy", 500, 200, true, forecast.StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forecast.ClassifyStatus(tt.quantity, tt.reorderLevel, tt.expiredOnHand, forecast.DefaultCriticalFraction)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyStatus_ZeroQuantityNeverHealthy(t *testing.T) {
	// Quantity zero must classify as critical, or expired when expired
	// stock is on hand.
	for _, reorder := range []int{0, 1, 50, 10000} {
		assert.Equal(t, forecast.StatusCritical, forecast.ClassifyStatus(0, reorder, false, 0.5))
		assert.Equal(t, forecast.StatusExpired, forecast.ClassifyStatus(0, reorder, true, 0.5))
	}
}

func TestClassifyStatus_CriticalFractionFallback(t *testing.T) {
	// A zero fraction falls back to the default rather than making every
	// non-zero quantity critical.
	assert.Equal(t, forecast.StatusLow, forecast.ClassifyStatus(150, 200, false, 0))
	assert.Equal(t, forecast.StatusCritical, forecast.ClassifyStatus(100, 200, false, 0))
}

func TestClassifyStatus_CustomCriticalFraction(t *testing.T) {
	// With a 25% fraction, 100/200 is low rather than critical.
	assert.Equal(t, forecast.StatusLow, forecast.ClassifyStatus(100, 200, false, 0.25))
	assert.Equal(t, forecast.StatusCritical, forecast.ClassifyStatus(50, 200, false, 0.25))
}

func TestClassifyStatus_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, forecast.StatusCritical, forecast.ClassifyStatus(45, 200, false, 0.5))
	}
}
