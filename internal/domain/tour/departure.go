package tour

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/pkg/domain"
)

// DepartureStatus represents the state of a scheduled departure day.
type DepartureStatus string

const (
	DepartureStatusScheduled DepartureStatus = "scheduled"
	DepartureStatusDeparted  DepartureStatus = "departed"
	DepartureStatusCancelled DepartureStatus = "cancelled"
)

// Departure is one scheduled departure day of a tour, carrying its own
// seat inventory. Dates are calendar days: time-of-day is stripped.
type Departure struct {
	ID             uuid.UUID       `json:"id"`
	TourID         uuid.UUID       `json:"tour_id"`
	DepartsOn      time.Time       `json:"departs_on"`
	AvailableSeats int             `json:"available_seats"`
	TotalSeats     int             `json:"total_seats"`
	Status         DepartureStatus `json:"status"`
}

// NewDeparture creates a fully available departure for the given day.
func NewDeparture(tourID uuid.UUID, departsOn time.Time, totalSeats int) (Departure, error) {
	if tourID == uuid.Nil {
		return Departure{}, domain.NewValidationError("tour ID is required")
	}
	if totalSeats <= 0 {
		return Departure{}, domain.NewValidationError("total seats must be positive")
	}
	return Departure{
		ID:             uuid.New(),
		TourID:         tourID,
		DepartsOn:      TruncateToDay(departsOn),
		AvailableSeats: totalSeats,
		TotalSeats:     totalSeats,
		Status:         DepartureStatusScheduled,
	}, nil
}

// Reserve decrements available seats, failing without mutation when the
// remaining inventory is insufficient. The SQL reservation path applies
// the same condition atomically; this form exists for in-memory use and
// as the reference semantics.
func (d *Departure) Reserve(count int) error {
	if count <= 0 {
		return domain.NewValidationError("seat count must be positive")
	}
	if d.AvailableSeats < count {
		return domain.NewInventoryError(fmt.Sprintf(
			"only %d of %d seats available on %s",
			d.AvailableSeats, d.TotalSeats, d.DepartsOn.Format("2006-01-02"),
		))
	}
	d.AvailableSeats -= count
	return nil
}

// Release returns seats to the inventory, clamped at total capacity so
// duplicate releases can never oversell the departure.
func (d *Departure) Release(count int) {
	if count <= 0 {
		return
	}
	d.AvailableSeats += count
	if d.AvailableSeats > d.TotalSeats {
		d.AvailableSeats = d.TotalSeats
	}
}

// TruncateToDay strips the time-of-day component, normalizing to UTC
// midnight. All departure date matching happens at day granularity.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
