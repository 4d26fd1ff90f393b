// Package forecast holds the pure computation core of the inventory engine:
// stock status classification, weekly consumption aggregation, demand
// projection, and reorder recommendation. Everything in this package is
// deterministic and free of I/O; callers supply the clock.
package forecast

// StockStatus classifies stock on hand against a medicine's thresholds.
type StockStatus string

const (
	StatusHealthy  StockStatus = "healthy"
	StatusLow      StockStatus = "low"
	StatusCritical StockStatus = "critical"
	StatusExpired  StockStatus = "expired"
)

// DefaultCriticalFraction is the share of the reorder level at or below
// which stock is considered critical.
const DefaultCriticalFraction = 0.5

// ClassifyStatus turns an aggregate quantity into a status. Precedence, first
// match wins: expired, critical, low, healthy.
//
// expiredOnHand is true when any batch past its expiry date still contributes
// to the on-hand quantity. A non-positive criticalFraction falls back to
// DefaultCriticalFraction. The function is total: every input combination
// yields a status.
func ClassifyStatus(quantity, reorderLevel int, expiredOnHand bool, criticalFraction float64) StockStatus {
	if expiredOnHand {
		return StatusExpired
	}

	if criticalFraction <= 0 {
		criticalFraction = DefaultCriticalFraction
	}

	if quantity == 0 || float64(quantity) <= float64(reorderLevel)*criticalFraction {
		return StatusCritical
	}

	if quantity <= reorderLevel {
		return StatusLow
	}

	return StatusHealthy
}
