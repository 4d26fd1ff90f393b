package forecast

import "math"

// StockoutUnbounded is the DaysUntilStockout sentinel used when projected
// demand is zero. A sentinel keeps the value serializable.
const StockoutUnbounded = -1

// DefaultLeadTimeWeeks is the assumed delay between placing and receiving a
// reorder when no configured value is supplied.
const DefaultLeadTimeWeeks = 2

// Bucket is the presentation-facing classification of a forecast. It is
// derived from projected runway, not from stock on hand, and is deliberately
// distinct from StockStatus.
type Bucket string

const (
	BucketHealthy  Bucket = "healthy"
	BucketLow      Bucket = "low"
	BucketCritical Bucket = "critical"
)

// Runway thresholds in days for the display buckets.
const (
	criticalRunwayDays = 14
	lowRunwayDays      = 30
)

// Recommendation is the reorder advice for one medicine.
type Recommendation struct {
	// DaysUntilStockout is the projected runway at the current consumption
	// rate, or StockoutUnbounded when demand is zero.
	DaysUntilStockout int `json:"days_until_stockout"`

	// RecommendedOrder is the quantity to order so that stock covers demand
	// over lead time plus horizon with the safety stock intact.
	RecommendedOrder int `json:"recommended_order"`

	// Bucket is the display classification of the runway.
	Bucket Bucket `json:"bucket"`
}

// Recommend derives reorder advice from the current quantity and a demand
// projection. A non-positive leadTimeWeeks falls back to
// DefaultLeadTimeWeeks. RecommendedOrder never decreases when weeklyRate
// increases and the other inputs are held fixed.
func Recommend(currentQty, safetyStock int, weeklyRate float64, horizonWeeks, leadTimeWeeks int) Recommendation {
	if leadTimeWeeks <= 0 {
		leadTimeWeeks = DefaultLeadTimeWeeks
	}

	if weeklyRate <= 0 {
		return Recommendation{
			DaysUntilStockout: StockoutUnbounded,
			RecommendedOrder:  0,
			Bucket:            BucketHealthy,
		}
	}

	dailyRate := weeklyRate / 7
	days := int(math.Floor(float64(currentQty) / dailyRate))

	coverDemand := int(math.Round(weeklyRate * float64(leadTimeWeeks+horizonWeeks)))
	order := coverDemand + safetyStock - currentQty
	if order < 0 {
		order = 0
	}

	return Recommendation{
		DaysUntilStockout: days,
		RecommendedOrder:  order,
		Bucket:            bucketForRunway(days),
	}
}

func bucketForRunway(days int) Bucket {
	switch {
	case days <= criticalRunwayDays:
		return BucketCritical
	case days <= lowRunwayDays:
		return BucketLow
	default:
		return BucketHealthy
	}
}
