package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. It owns the
// status state machine: every transition goes through a guard and the
// terminal states (cancelled, completed) admit no further changes.
type Booking struct {
	id              uuid.UUID
	bookingNumber   string
	travellerID     uuid.UUID
	tourID          uuid.UUID
	departsOn       time.Time
	passengers      []Passenger
	contact         ContactDetails
	specialRequests string

	basePriceCents   int64
	taxesCents       int64
	totalAmountCents int64
	paidAmountCents  int64
	currency         string

	status        BookingStatus
	paymentStatus PaymentStatus
	orderID       string
	paymentID     string

	cancelledAt       *time.Time
	cancelReason      string
	refundAmountCents int64
	refundStatus      RefundStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a human-readable booking number in the
// format "HT-YYYYMMDD-XXXX": the UTC booking day plus a random suffix
// from an alphabet without ambiguous characters.
func generateBookingNumber() (string, error) {
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		suffix[i] = bookingNumberChars[n.Int64()]
	}
	return fmt.Sprintf("HT-%s-%s", time.Now().UTC().Format("20060102"), suffix), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
// departsOn must already be truncated to a calendar day, and each
// passenger must carry the price charged for their seat.
func NewBooking(
	travellerID, tourID uuid.UUID,
	departsOn time.Time,
	passengers []Passenger,
	contact ContactDetails,
	specialRequests string,
	quote Quote,
	currency string,
) (*Booking, error) {
	if travellerID == uuid.Nil {
		return nil, domain.NewValidationError("traveller ID is required")
	}
	if tourID == uuid.Nil {
		return nil, domain.NewValidationError("tour ID is required")
	}
	if len(passengers) < 1 {
		return nil, domain.NewValidationError("at least one passenger is required")
	}
	for i, p := range passengers {
		if p.Name == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("passenger %d: name is required", i+1))
		}
		if !AgeCategory(p.AgeCategory).IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("passenger %d: invalid age category: %s", i+1, p.AgeCategory))
		}
	}
	if contact.Email == "" || contact.Phone == "" {
		return nil, domain.NewValidationError("contact email and phone are required")
	}
	if quote.TotalAmountCents != quote.BasePriceCents+quote.TaxesCents {
		return nil, domain.NewValidationError("quote total must equal base price plus taxes")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:               uuid.New(),
		bookingNumber:    bookingNumber,
		travellerID:      travellerID,
		tourID:           tourID,
		departsOn:        departsOn,
		passengers:       passengers,
		contact:          contact,
		specialRequests:  specialRequests,
		basePriceCents:   quote.BasePriceCents,
		taxesCents:       quote.TaxesCents,
		totalAmountCents: quote.TotalAmountCents,
		currency:         currency,
		status:           StatusPending,
		paymentStatus:    PaymentPending,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	travellerID, tourID uuid.UUID,
	departsOn time.Time,
	passengers []Passenger,
	contact ContactDetails,
	specialRequests string,
	basePriceCents, taxesCents, totalAmountCents, paidAmountCents int64,
	currency string,
	status BookingStatus,
	paymentStatus PaymentStatus,
	orderID, paymentID string,
	cancelledAt *time.Time,
	cancelReason string,
	refundAmountCents int64,
	refundStatus RefundStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		bookingNumber:     bookingNumber,
		travellerID:       travellerID,
		tourID:            tourID,
		departsOn:         departsOn,
		passengers:        passengers,
		contact:           contact,
		specialRequests:   specialRequests,
		basePriceCents:    basePriceCents,
		taxesCents:        taxesCents,
		totalAmountCents:  totalAmountCents,
		paidAmountCents:   paidAmountCents,
		currency:          currency,
		status:            status,
		paymentStatus:     paymentStatus,
		orderID:           orderID,
		paymentID:         paymentID,
		cancelledAt:       cancelledAt,
		cancelReason:      cancelReason,
		refundAmountCents: refundAmountCents,
		refundStatus:      refundStatus,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) BookingNumber() string    { return b.bookingNumber }
func (b *Booking) TravellerID() uuid.UUID   { return b.travellerID }
func (b *Booking) TourID() uuid.UUID        { return b.tourID }
func (b *Booking) DepartsOn() time.Time     { return b.departsOn }
func (b *Booking) Passengers() []Passenger  { return b.passengers }
func (b *Booking) Contact() ContactDetails  { return b.contact }
func (b *Booking) SpecialRequests() string  { return b.specialRequests }
func (b *Booking) BasePriceCents() int64    { return b.basePriceCents }
func (b *Booking) TaxesCents() int64        { return b.taxesCents }
func (b *Booking) TotalAmountCents() int64  { return b.totalAmountCents }
func (b *Booking) PaidAmountCents() int64   { return b.paidAmountCents }
func (b *Booking) Currency() string         { return b.currency }
func (b *Booking) Status() BookingStatus    { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) OrderID() string          { return b.orderID }
func (b *Booking) PaymentID() string        { return b.paymentID }
func (b *Booking) CancelledAt() *time.Time  { return b.cancelledAt }
func (b *Booking) CancelReason() string     { return b.cancelReason }
func (b *Booking) RefundAmountCents() int64 { return b.refundAmountCents }
func (b *Booking) RefundStatus() RefundStatus { return b.refundStatus }
func (b *Booking) Version() int64           { return b.version }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

// PassengerCount returns the number of seats this booking holds.
func (b *Booking) PassengerCount() int {
	return len(b.passengers)
}

// IsOwnedBy checks if the booking belongs to the given traveller.
func (b *Booking) IsOwnedBy(travellerID uuid.UUID) bool {
	return b.travellerID == travellerID
}

// --- Behavior ---

// ConfirmPayment transitions the booking from pending to confirmed
// after a verified payment, recording the gateway order and payment IDs
// and the amount collected.
func (b *Booking) ConfirmPayment(orderID, paymentID string, amountCents int64) error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	if paymentID == "" {
		return domain.NewValidationError("payment ID is required")
	}
	b.status = StatusConfirmed
	b.paymentStatus = PaymentCompleted
	b.orderID = orderID
	b.paymentID = paymentID
	b.paidAmountCents = amountCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkPaymentFailed records a failed payment attempt. The booking stays
// pending so the traveller can retry.
func (b *Booking) MarkPaymentFailed() error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusPending))
	}
	b.paymentStatus = PaymentFailed
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled with the computed refund.
// Terminal bookings are rejected without mutation.
func (b *Booking) Cancel(reason string, refundAmountCents int64) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelReason = reason
	b.cancelledAt = &now
	b.refundAmountCents = refundAmountCents
	if refundAmountCents > 0 {
		b.refundStatus = RefundPending
	}
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from confirmed to completed after
// the tour has run.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkRefundProcessed records that the pending refund has been paid out.
func (b *Booking) MarkRefundProcessed() error {
	if b.refundStatus != RefundPending {
		return domain.NewInvalidStateError(string(b.refundStatus), string(RefundProcessed))
	}
	b.refundStatus = RefundProcessed
	b.paymentStatus = PaymentRefunded
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
