package forecast_test

import (
	"testing"
	"time"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateWeekly_ZeroFillsGaps(t *testing.T) {
	now := day(2024, 3, 28)
	entries := []forecast.ConsumptionEntry{
		{Date: day(2024, 3, 28), Quantity: 10},
		{Date: day(2024, 3, 27), Quantity: 5},
		// nothing in the middle week
		{Date: day(2024, 3, 14), Quantity: 20},
	}

	series := forecast.AggregateWeekly(entries, 12, now)
	require.Len(t, series, 3)

	assert.Equal(t, 20, series[0].Quantity)
	assert.Equal(t, 0, series[1].Quantity, "empty week must be zero-filled, not skipped")
	assert.Equal(t, 15, series[2].Quantity)
}

func TestAggregateWeekly_PeriodStartsAreConsecutive(t *testing.T) {
	now := day(2024, 3, 28)
	entries := []forecast.ConsumptionEntry{
		{Date: day(2024, 3, 10), Quantity: 1},
		{Date: day(2024, 3, 28), Quantity: 1},
	}

	series := forecast.AggregateWeekly(entries, 12, now)
	require.NotEmpty(t, series)

	for i := 1; i < len(series); i++ {
		gap := series[i].PeriodStart.Sub(series[i-1].PeriodStart)
		assert.Equal(t, 7*24*time.Hour, gap, "periods must be consecutive weeks")
	}
	// Newest period ends at the anchor day.
	last := series[len(series)-1]
	assert.Equal(t, day(2024, 3, 22), last.PeriodStart)
}

func TestAggregateWeekly_Idempotent(t *testing.T) {
	now := day(2024, 6, 1)
	entries := []forecast.ConsumptionEntry{
		{Date: day(2024, 5, 1), Quantity: 7},
		{Date: day(2024, 5, 15), Quantity: 3},
		{Date: day(2024, 5, 30), Quantity: 12},
	}

	first := forecast.AggregateWeekly(entries, 8, now)
	second := forecast.AggregateWeekly(entries, 8, now)
	assert.Equal(t, first, second)
}

func TestAggregateWeekly_PartialHistoryYieldsSinglePeriod(t *testing.T) {
	now := day(2024, 3, 28)
	entries := []forecast.ConsumptionEntry{
		{Date: day(2024, 3, 26), Quantity: 4},
		{Date: day(2024, 3, 28), Quantity: 6},
	}

	series := forecast.AggregateWeekly(entries, 12, now)
	require.Len(t, series, 1)
	assert.Equal(t, 10, series[0].Quantity)
}

func TestAggregateWeekly_DropsEntriesOutsideWindow(t *testing.T) {
	now := day(2024, 3, 28)
	entries := []forecast.ConsumptionEntry{
		{Date: day(2023, 1, 1), Quantity: 100}, // far outside any window
		{Date: day(2024, 3, 28), Quantity: 5},
	}

	series := forecast.AggregateWeekly(entries, 4, now)
	require.Len(t, series, 4)

	var total int
	for _, p := range series {
		total += p.Quantity
	}
	assert.Equal(t, 5, total)
}

func TestAggregateWeekly_Empty(t *testing.T) {
	assert.Nil(t, forecast.AggregateWeekly(nil, 12, day(2024, 3, 28)))
	assert.Nil(t, forecast.AggregateWeekly([]forecast.ConsumptionEntry{{Date: day(2024, 1, 1), Quantity: 1}}, 0, day(2024, 3, 28)))
}
