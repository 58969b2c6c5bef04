package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service publishes to and consumes from.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published on booking.events.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

// Event types consumed from payment.events.
const (
	PaymentCaptured = "payment.captured"
	PaymentFailed   = "payment.failed"
)

// BookingCreatedEvent is emitted when a booking is created in pending state.
type BookingCreatedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingNumber    string    `json:"booking_number"`
	TravellerID      uuid.UUID `json:"traveller_id"`
	TourID           uuid.UUID `json:"tour_id"`
	DepartsOn        time.Time `json:"departs_on"`
	PassengerCount   int       `json:"passenger_count"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Currency         string    `json:"currency"`
	ContactEmail     string    `json:"contact_email"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is emitted after a verified payment confirms a booking.
type BookingConfirmedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	TravellerID     uuid.UUID `json:"traveller_id"`
	PaymentID       string    `json:"payment_id"`
	PaidAmountCents int64     `json:"paid_amount_cents"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is emitted when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	BookingNumber     string    `json:"booking_number"`
	CancelledBy       uuid.UUID `json:"cancelled_by"`
	Reason            string    `json:"reason"`
	RefundAmountCents int64     `json:"refund_amount_cents"`
	RefundPercent     int       `json:"refund_percent"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is emitted when an admin marks a tour as run.
type BookingCompletedEvent struct {
	BookingID            uuid.UUID `json:"booking_id"`
	BookingNumber        string    `json:"booking_number"`
	TravellerID          uuid.UUID `json:"traveller_id"`
	TourID               uuid.UUID `json:"tour_id"`
	TotalAmountCents     int64     `json:"total_amount_cents"`
	LoyaltyPointsAwarded int       `json:"loyalty_points_awarded"`
	OccurredAt           time.Time `json:"occurred_at"`
}

// PaymentCapturedEvent is the gateway-relay event carrying a captured
// payment with its checkout signature.
type PaymentCapturedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	OrderID     string    `json:"order_id"`
	PaymentID   string    `json:"payment_id"`
	Signature   string    `json:"signature"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentFailedEvent reports a failed capture attempt for a booking.
type PaymentFailedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OrderID    string    `json:"order_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
