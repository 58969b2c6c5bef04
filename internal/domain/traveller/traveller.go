package traveller

import (
	"time"

	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/pkg/domain"
)

// MembershipTier is the loyalty tier derived from completed trip count.
type MembershipTier string

const (
	TierBronze   MembershipTier = "bronze"
	TierSilver   MembershipTier = "silver"
	TierGold     MembershipTier = "gold"
	TierPlatinum MembershipTier = "platinum"
)

// TierForTrips returns the membership tier for a completed-trip count.
// Thresholds: 0 bronze, 5 silver, 10 gold, 20 platinum.
func TierForTrips(trips int) MembershipTier {
	switch {
	case trips >= 20:
		return TierPlatinum
	case trips >= 10:
		return TierGold
	case trips >= 5:
		return TierSilver
	default:
		return TierBronze
	}
}

// LoyaltyPointsForAmount awards one point per 100 rupees of booking
// total. Amounts are stored in paise, so the divisor is 10000.
func LoyaltyPointsForAmount(totalAmountCents int64) int {
	if totalAmountCents <= 0 {
		return 0
	}
	return int(totalAmountCents / 10000)
}

// TripRecord is one entry in a traveller's travel history. Rating and
// feedback stay zero until the traveller submits a review.
type TripRecord struct {
	BookingID   uuid.UUID `json:"booking_id"`
	TourID      uuid.UUID `json:"tour_id"`
	TourTitle   string    `json:"tour_title"`
	DepartedOn  time.Time `json:"departed_on"`
	CompletedAt time.Time `json:"completed_at"`
	AmountCents int64     `json:"amount_cents"`
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback"`
}

// Traveller is the per-user aggregate of travel history, loyalty points,
// and membership tier. Its ID is the owning user's ID.
type Traveller struct {
	userID           uuid.UUID
	currentTourID    *uuid.UUID
	currentBookingID *uuid.UUID
	totalTrips       int
	loyaltyPoints    int
	membershipTier   MembershipTier
	history          []TripRecord
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewTraveller creates an empty bronze-tier profile for a user.
func NewTraveller(userID uuid.UUID) (*Traveller, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	now := time.Now().UTC()
	return &Traveller{
		userID:         userID,
		membershipTier: TierBronze,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Traveller from persistence data (no validation).
func Reconstruct(
	userID uuid.UUID,
	currentTourID, currentBookingID *uuid.UUID,
	totalTrips, loyaltyPoints int,
	membershipTier MembershipTier,
	history []TripRecord,
	version int64,
	createdAt, updatedAt time.Time,
) *Traveller {
	return &Traveller{
		userID:           userID,
		currentTourID:    currentTourID,
		currentBookingID: currentBookingID,
		totalTrips:       totalTrips,
		loyaltyPoints:    loyaltyPoints,
		membershipTier:   membershipTier,
		history:          history,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (t *Traveller) UserID() uuid.UUID             { return t.userID }
func (t *Traveller) CurrentTourID() *uuid.UUID     { return t.currentTourID }
func (t *Traveller) CurrentBookingID() *uuid.UUID  { return t.currentBookingID }
func (t *Traveller) TotalTrips() int               { return t.totalTrips }
func (t *Traveller) LoyaltyPoints() int            { return t.loyaltyPoints }
func (t *Traveller) MembershipTier() MembershipTier { return t.membershipTier }
func (t *Traveller) History() []TripRecord         { return t.history }
func (t *Traveller) Version() int64                { return t.version }
func (t *Traveller) CreatedAt() time.Time          { return t.createdAt }
func (t *Traveller) UpdatedAt() time.Time          { return t.updatedAt }

// --- Behavior ---

// SetCurrentBooking points the profile at the traveller's upcoming trip.
func (t *Traveller) SetCurrentBooking(tourID, bookingID uuid.UUID) {
	t.currentTourID = &tourID
	t.currentBookingID = &bookingID
	t.updatedAt = time.Now().UTC()
}

// AppendTrip records a completed trip: the history grows by one entry,
// the trip count and loyalty points increase, the membership tier is
// recomputed from the new count, and the current-trip pointers clear.
func (t *Traveller) AppendTrip(rec TripRecord, points int) {
	t.history = append(t.history, rec)
	t.totalTrips++
	t.loyaltyPoints += points
	t.membershipTier = TierForTrips(t.totalTrips)
	t.currentTourID = nil
	t.currentBookingID = nil
	t.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (t *Traveller) IncrementVersion() {
	t.version++
	t.updatedAt = time.Now().UTC()
}
