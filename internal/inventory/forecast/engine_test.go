package forecast_test

import (
	"testing"
	"time"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekly(quantities ...int) []forecast.WeeklyPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]forecast.WeeklyPoint, len(quantities))
	for i, q := range quantities {
		series[i] = forecast.WeeklyPoint{
			PeriodStart: start.AddDate(0, 0, 7*i),
			Quantity:    q,
		}
	}
	return series
}

func TestProject_FlatSeries(t *testing.T) {
	// A constant series projects its constant rate regardless of weighting.
	p := forecast.Project(weekly(100, 100, 100, 100), 4)

	assert.InDelta(t, 100.0, p.WeeklyRate, 0.0001)
	assert.Equal(t, 400, p.Demand)
	assert.False(t, p.InsufficientHistory)
}

func TestProject_RecentWeeksWeighHeavier(t *testing.T) {
	rising := forecast.Project(weekly(10, 10, 10, 100), 4)
	falling := forecast.Project(weekly(100, 10, 10, 10), 4)

	// The most recent week carries twice the weight of the oldest, so a
	// recent spike must pull the rate above a dated one.
	assert.Greater(t, rising.WeeklyRate, falling.WeeklyRate)

	// Weights 1, 4/3, 5/3, 2 over (10, 10, 10, 100).
	want := (1.0*10 + 4.0/3*10 + 5.0/3*10 + 2.0*100) / (1.0 + 4.0/3 + 5.0/3 + 2.0)
	assert.InDelta(t, want, rising.WeeklyRate, 0.0001)
}

func TestProject_SinglePoint(t *testing.T) {
	p := forecast.Project(weekly(42), 8)

	assert.InDelta(t, 42.0, p.WeeklyRate, 0.0001)
	assert.Equal(t, 336, p.Demand)
	assert.False(t, p.InsufficientHistory)
}

func TestProject_EmptySeriesIsDegenerate(t *testing.T) {
	p := forecast.Project(nil, 4)

	assert.True(t, p.InsufficientHistory)
	assert.Equal(t, forecast.ConfidenceFloor, p.Confidence)
	assert.Zero(t, p.Demand)
	assert.Zero(t, p.WeeklyRate)
}

func TestProject_Deterministic(t *testing.T) {
	series := weekly(30, 45, 20, 60, 55, 40, 35, 50)

	first := forecast.Project(series, 12)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, forecast.Project(series, 12))
	}
}

func TestProject_ConfidenceBounds(t *testing.T) {
	cases := [][]int{
		{5},
		{0, 0, 0},
		{1000, 0, 1000, 0},
		{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120},
	}

	for _, quantities := range cases {
		p := forecast.Project(weekly(quantities...), 4)
		assert.GreaterOrEqual(t, p.Confidence, forecast.ConfidenceFloor)
		assert.LessOrEqual(t, p.Confidence, forecast.ConfidenceCap)
	}
}

func TestProject_LongerStableHistoryScoresHigher(t *testing.T) {
	short := forecast.Project(weekly(50, 50), 4)
	long := forecast.Project(weekly(50, 50, 50, 50, 50, 50, 50, 50), 4)

	assert.Greater(t, long.Confidence, short.Confidence)
	// Eight stable weeks saturate both confidence components.
	assert.Equal(t, forecast.ConfidenceCap, long.Confidence)
}

func TestProject_VolatileSeriesScoresLower(t *testing.T) {
	stable := forecast.Project(weekly(50, 50, 50, 50, 50, 50, 50, 50), 4)
	volatile := forecast.Project(weekly(5, 120, 0, 95, 10, 140, 2, 28), 4)

	assert.Greater(t, stable.Confidence, volatile.Confidence)
}

func TestIsValidHorizon(t *testing.T) {
	for _, h := range []int{4, 8, 12} {
		assert.True(t, forecast.IsValidHorizon(h))
	}
	for _, h := range []int{0, 1, 5, 52, -4} {
		assert.False(t, forecast.IsValidHorizon(h))
	}
}

func TestProject_RoundsDemand(t *testing.T) {
	// Rate 15 over weights of a 2-point series: (1*10 + 2*17.5)... use
	// integers that give a fractional rate.
	p := forecast.Project(weekly(10, 15), 4)
	require.InDelta(t, (10.0+2*15.0)/3.0, p.WeeklyRate, 0.0001)
	assert.Equal(t, 53, p.Demand) // 13.333 * 4 = 53.333 rounded
}
