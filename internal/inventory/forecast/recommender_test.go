package forecast_test

import (
	"testing"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/stretchr/testify/assert"
)

func TestRecommend_FastConsumptionIsCritical(t *testing.T) {
	// 45 on hand at 175/week (25/day) leaves under two days of runway.
	rec := forecast.Recommend(45, 50, 175, 4, 2)

	assert.Equal(t, 1, rec.DaysUntilStockout)
	assert.Equal(t, forecast.BucketCritical, rec.Bucket)
	// Demand over 6 weeks (1050) plus safety stock minus on hand.
	assert.Equal(t, 1055, rec.RecommendedOrder)
}

func TestRecommend_AmpleStockNeedsNoOrder(t *testing.T) {
	// 5000 on hand at ~50/week consumption.
	rec := forecast.Recommend(5000, 100, 50, 4, 2)

	assert.Equal(t, forecast.BucketHealthy, rec.Bucket)
	assert.Equal(t, 0, rec.RecommendedOrder)
	assert.Greater(t, rec.DaysUntilStockout, 30)
}

func TestRecommend_ZeroDemandIsUnbounded(t *testing.T) {
	rec := forecast.Recommend(10, 50, 0, 4, 2)

	assert.Equal(t, forecast.StockoutUnbounded, rec.DaysUntilStockout)
	assert.Equal(t, 0, rec.RecommendedOrder)
	assert.Equal(t, forecast.BucketHealthy, rec.Bucket)
}

func TestRecommend_NegativeDemandTreatedAsZero(t *testing.T) {
	rec := forecast.Recommend(10, 50, -3, 4, 2)

	assert.Equal(t, forecast.StockoutUnbounded, rec.DaysUntilStockout)
	assert.Equal(t, 0, rec.RecommendedOrder)
}

func TestRecommend_OrderMonotoneInDemand(t *testing.T) {
	prev := -1
	for rate := 1.0; rate <= 400; rate += 3.5 {
		rec := forecast.Recommend(250, 50, rate, 8, 2)
		assert.GreaterOrEqual(t, rec.RecommendedOrder, prev,
			"recommended order decreased at rate %.1f", rate)
		prev = rec.RecommendedOrder
	}
}

func TestRecommend_Buckets(t *testing.T) {
	tests := []struct {
		name   string
		qty    int
		rate   float64
		bucket forecast.Bucket
	}{
		{"two weeks of runway", 14, 7, forecast.BucketCritical},
		{"exactly 14 days", 28, 14, forecast.BucketCritical},
		{"three weeks of runway", 42, 14, forecast.BucketLow},
		{"exactly 30 days", 60, 14, forecast.BucketLow},
		{"six weeks of runway", 84, 14, forecast.BucketHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := forecast.Recommend(tt.qty, 0, tt.rate, 4, 2)
			assert.Equal(t, tt.bucket, rec.Bucket)
		})
	}
}

func TestRecommend_LeadTimeFallback(t *testing.T) {
	explicit := forecast.Recommend(100, 20, 70, 4, forecast.DefaultLeadTimeWeeks)
	fallback := forecast.Recommend(100, 20, 70, 4, 0)

	assert.Equal(t, explicit, fallback)
}

func TestRecommend_SafetyStockKeptIntact(t *testing.T) {
	withSafety := forecast.Recommend(100, 80, 50, 4, 2)
	withoutSafety := forecast.Recommend(100, 0, 50, 4, 2)

	assert.Equal(t, withSafety.RecommendedOrder-withoutSafety.RecommendedOrder, 80)
}
