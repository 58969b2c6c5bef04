package booking

import (
	"math"
	"time"
)

// RefundPercent maps the number of days remaining until departure to a
// refund percentage tier. Boundaries are strictly greater-than: exactly
// 30 days out falls in the 70% tier, not 90%.
func RefundPercent(daysUntilTour int) int {
	switch {
	case daysUntilTour > 30:
		return 90
	case daysUntilTour > 15:
		return 70
	case daysUntilTour > 7:
		return 50
	case daysUntilTour > 3:
		return 25
	default:
		return 0
	}
}

// RefundAmountCents computes the refund for a paid amount at the given
// percentage, rounded half-up to the nearest cent.
func RefundAmountCents(paidCents int64, percent int) int64 {
	if paidCents <= 0 || percent <= 0 {
		return 0
	}
	return (paidCents*int64(percent) + 50) / 100
}

// DaysUntil returns the number of days from now until the departure,
// rounded up so any partial day counts as a full day.
func DaysUntil(departsOn, now time.Time) int {
	return int(math.Ceil(departsOn.Sub(now).Hours() / 24))
}
