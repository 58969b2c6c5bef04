package tour

import (
	"time"

	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/pkg/domain"
)

// TourStatus represents the lifecycle state of a tour listing.
type TourStatus string

const (
	TourStatusActive   TourStatus = "active"
	TourStatusArchived TourStatus = "archived"
)

// Tour is the aggregate root for a sellable travel package. Seat
// inventory lives on its departures, one entry per scheduled day.
type Tour struct {
	id                   uuid.UUID
	slug                 string
	title                string
	description          string
	category             string
	durationDays         int
	priceCents           int64
	discountedPriceCents *int64
	currency             string
	status               TourStatus
	version              int64
	createdAt            time.Time
	updatedAt            time.Time
}

// NewTour creates a new active tour with validated fields.
func NewTour(
	slug, title, description, category string,
	durationDays int,
	priceCents int64,
	discountedPriceCents *int64,
	currency string,
) (*Tour, error) {
	if slug == "" {
		return nil, domain.NewValidationError("tour slug is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("tour title is required")
	}
	if durationDays <= 0 {
		return nil, domain.NewValidationError("tour duration must be positive")
	}
	if priceCents <= 0 {
		return nil, domain.NewValidationError("tour price must be positive")
	}
	if discountedPriceCents != nil && (*discountedPriceCents <= 0 || *discountedPriceCents >= priceCents) {
		return nil, domain.NewValidationError("discounted price must be positive and below the base price")
	}
	if currency == "" {
		currency = domain.CurrencyINR
	}

	now := time.Now().UTC()
	return &Tour{
		id:                   uuid.New(),
		slug:                 slug,
		title:                title,
		description:          description,
		category:             category,
		durationDays:         durationDays,
		priceCents:           priceCents,
		discountedPriceCents: discountedPriceCents,
		currency:             currency,
		status:               TourStatusActive,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// Reconstruct rebuilds a Tour from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	slug, title, description, category string,
	durationDays int,
	priceCents int64,
	discountedPriceCents *int64,
	currency string,
	status TourStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Tour {
	return &Tour{
		id:                   id,
		slug:                 slug,
		title:                title,
		description:          description,
		category:             category,
		durationDays:         durationDays,
		priceCents:           priceCents,
		discountedPriceCents: discountedPriceCents,
		currency:             currency,
		status:               status,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

func (t *Tour) ID() uuid.UUID                 { return t.id }
func (t *Tour) Slug() string                  { return t.slug }
func (t *Tour) Title() string                 { return t.title }
func (t *Tour) Description() string           { return t.description }
func (t *Tour) Category() string              { return t.category }
func (t *Tour) DurationDays() int             { return t.durationDays }
func (t *Tour) PriceCents() int64             { return t.priceCents }
func (t *Tour) DiscountedPriceCents() *int64  { return t.discountedPriceCents }
func (t *Tour) Currency() string              { return t.currency }
func (t *Tour) Status() TourStatus            { return t.status }
func (t *Tour) Version() int64                { return t.version }
func (t *Tour) CreatedAt() time.Time          { return t.createdAt }
func (t *Tour) UpdatedAt() time.Time          { return t.updatedAt }

// --- Behavior ---

// EffectivePriceCents returns the per-passenger price the booking flow
// charges: the discounted price when present, the base price otherwise.
func (t *Tour) EffectivePriceCents() int64 {
	if t.discountedPriceCents != nil {
		return *t.discountedPriceCents
	}
	return t.priceCents
}

// IsActive returns true if the tour is bookable.
func (t *Tour) IsActive() bool {
	return t.status == TourStatusActive
}

// Update applies partial updates to the tour listing.
func (t *Tour) Update(
	title, description, category string,
	durationDays int,
	priceCents int64,
	discountedPriceCents *int64,
) {
	if title != "" {
		t.title = title
	}
	if description != "" {
		t.description = description
	}
	if category != "" {
		t.category = category
	}
	if durationDays > 0 {
		t.durationDays = durationDays
	}
	if priceCents > 0 {
		t.priceCents = priceCents
	}
	if discountedPriceCents != nil {
		t.discountedPriceCents = discountedPriceCents
	}
	t.version++
	t.updatedAt = time.Now().UTC()
}

// Archive takes the tour off the catalog.
func (t *Tour) Archive() {
	t.status = TourStatusArchived
	t.version++
	t.updatedAt = time.Now().UTC()
}
