package forecast

import "math"

const (
	// MinSufficientHistoryWeeks is the history length at which the length
	// component of the confidence score saturates.
	MinSufficientHistoryWeeks = 8

	// ConfidenceFloor and ConfidenceCap bound the confidence score.
	ConfidenceFloor = 40
	ConfidenceCap   = 99
)

// ValidHorizons are the supported forecast horizons in weeks.
var ValidHorizons = []int{4, 8, 12}

// IsValidHorizon reports whether h is a supported horizon.
func IsValidHorizon(h int) bool {
	for _, v := range ValidHorizons {
		if v == h {
			return true
		}
	}
	return false
}

// Projection is the output of the demand forecast for one medicine.
type Projection struct {
	// WeeklyRate is the projected demand per week.
	WeeklyRate float64 `json:"weekly_rate"`

	// Demand is the projected total demand over the horizon.
	Demand int `json:"demand"`

	// Confidence is a self-reported reliability estimate in [ConfidenceFloor,
	// ConfidenceCap]. It is not a statistical p-value.
	Confidence int `json:"confidence"`

	// InsufficientHistory marks a projection computed from an empty series.
	// Such a projection is degenerate, not an error.
	InsufficientHistory bool `json:"insufficient_history"`
}

// Project computes a weighted moving average over the weekly series and
// extrapolates it across the horizon. Weights decrease linearly from the most
// recent point, which carries twice the weight of the oldest. Identical
// inputs always produce identical output.
func Project(series []WeeklyPoint, horizonWeeks int) Projection {
	n := len(series)
	if n == 0 {
		return Projection{
			Confidence:          ConfidenceFloor,
			InsufficientHistory: true,
		}
	}

	var weightedSum, weightTotal float64
	for i, p := range series {
		// Oldest point weight 1.0, newest 2.0, linear in between.
		w := 1.0
		if n > 1 {
			w = 1.0 + float64(i)/float64(n-1)
		}
		weightedSum += w * float64(p.Quantity)
		weightTotal += w
	}

	rate := weightedSum / weightTotal

	return Projection{
		WeeklyRate: rate,
		Demand:     int(math.Round(rate * float64(horizonWeeks))),
		Confidence: confidence(series),
	}
}

// confidence scores a series on history length and variability. Short history
// or a high coefficient of variation pushes the score toward the floor.
func confidence(series []WeeklyPoint) int {
	n := len(series)

	lengthFactor := float64(n) / MinSufficientHistoryWeeks
	if lengthFactor > 1 {
		lengthFactor = 1
	}

	var sum float64
	for _, p := range series {
		sum += float64(p.Quantity)
	}
	mean := sum / float64(n)

	variability := 1.0
	if mean > 0 {
		var sqDiff float64
		for _, p := range series {
			d := float64(p.Quantity) - mean
			sqDiff += d * d
		}
		cv := math.Sqrt(sqDiff/float64(n)) / mean
		variability = 1 / (1 + cv)
	}

	score := int(math.Round(ConfidenceCap * lengthFactor * variability))
	if score < ConfidenceFloor {
		return ConfidenceFloor
	}
	if score > ConfidenceCap {
		return ConfidenceCap
	}
	return score
}
