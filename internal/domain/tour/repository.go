package tour

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TourRepository defines the persistence contract for tours and their
// departure-day seat inventory.
type TourRepository interface {
	// FindByID retrieves a tour by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Tour, error)

	// FindBySlug retrieves a tour by its URL slug.
	FindBySlug(ctx context.Context, slug string) (*Tour, error)

	// List retrieves active tours with optional category filter and pagination.
	List(ctx context.Context, category string, page, limit int) ([]*Tour, int64, error)

	// Save persists a new tour.
	Save(ctx context.Context, t *Tour) error

	// Update persists changes to an existing tour with optimistic locking.
	Update(ctx context.Context, t *Tour) error

	// AddDeparture persists a new departure day for a tour.
	AddDeparture(ctx context.Context, d Departure) error

	// FindDeparture retrieves the departure entry for a tour on a calendar day.
	FindDeparture(ctx context.Context, tourID uuid.UUID, departsOn time.Time) (*Departure, error)

	// ListDepartures retrieves a tour's departures on or after the given day.
	ListDepartures(ctx context.Context, tourID uuid.UUID, from time.Time) ([]Departure, error)

	// ReserveSeats atomically decrements available seats for a departure
	// day, failing with an inventory error when fewer than count remain.
	ReserveSeats(ctx context.Context, tourID uuid.UUID, departsOn time.Time, count int) error

	// ReleaseSeats atomically returns seats to a departure day, clamped
	// at the departure's total capacity.
	ReleaseSeats(ctx context.Context, tourID uuid.UUID, departsOn time.Time, count int) error
}
