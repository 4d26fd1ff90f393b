package forecast

import "time"

// ConsumptionEntry is a single dated consumption quantity.
type ConsumptionEntry struct {
	Date     time.Time
	Quantity int
}

// WeeklyPoint is one aggregated period of the weekly series.
type WeeklyPoint struct {
	PeriodStart time.Time `json:"period_start"`
	Quantity    int       `json:"quantity"`
}

const daysPerWeek = 7

// AggregateWeekly rolls dated consumption entries into a gap-free weekly
// series covering the trailing window ending at now. Periods are consecutive
// 7-day spans anchored to now's UTC day; periods with no entries are
// zero-filled. Entries older than the window are dropped.
//
// The result is ordered oldest to newest. With less than one full week of
// history a single partial period is returned; with no entries the result is
// empty. The function is a pure fold over its inputs: re-aggregating the same
// entries yields the same series.
func AggregateWeekly(entries []ConsumptionEntry, windowWeeks int, now time.Time) []WeeklyPoint {
	if windowWeeks < 1 || len(entries) == 0 {
		return nil
	}

	anchor := truncateDay(now)

	// Shrink the window to the actual history span so that sparse history
	// yields a short series instead of a long run of leading zeroes.
	earliest := anchor
	for _, e := range entries {
		if d := truncateDay(e.Date); d.Before(earliest) {
			earliest = d
		}
	}
	spanDays := int(anchor.Sub(earliest).Hours()/24) + 1
	periods := (spanDays + daysPerWeek - 1) / daysPerWeek
	if periods < 1 {
		periods = 1
	}
	if periods > windowWeeks {
		periods = windowWeeks
	}

	series := make([]WeeklyPoint, periods)
	for i := range series {
		weeksBack := periods - 1 - i
		series[i].PeriodStart = anchor.AddDate(0, 0, -daysPerWeek*weeksBack-daysPerWeek+1)
	}

	for _, e := range entries {
		day := truncateDay(e.Date)
		if day.After(anchor) {
			continue
		}
		daysBack := int(anchor.Sub(day).Hours() / 24)
		weeksBack := daysBack / daysPerWeek
		if weeksBack >= periods {
			continue
		}
		series[periods-1-weeksBack].Quantity += e.Quantity
	}

	return series
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
