package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/holy-travels/service-booking/internal/domain/booking"
	tourDomain "github.com/holy-travels/service-booking/internal/domain/tour"
	travellerDomain "github.com/holy-travels/service-booking/internal/domain/traveller"
	"github.com/holy-travels/service-booking/internal/events"
	"github.com/holy-travels/service-booking/pkg/domain"
	"github.com/holy-travels/service-booking/pkg/kafka"
	"go.uber.org/zap"
)

// PaymentVerifier checks a payment gateway checkout signature.
type PaymentVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// PassengerRequest describes one passenger on a booking request.
type PassengerRequest struct {
	Name        string `json:"name" binding:"required"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	AgeCategory string `json:"age_category" binding:"required"`
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	TourID          uuid.UUID          `json:"tour_id" binding:"required"`
	TourDate        time.Time          `json:"tour_date" binding:"required"`
	Passengers      []PassengerRequest `json:"passengers" binding:"required,min=1,dive"`
	ContactName     string             `json:"contact_name" binding:"required"`
	ContactPhone    string             `json:"contact_phone" binding:"required"`
	ContactEmail    string             `json:"contact_email" binding:"required,email"`
	SpecialRequests string             `json:"special_requests"`
}

// VerifyPaymentRequest holds the checkout result sent back by the
// payment gateway for verification.
type VerifyPaymentRequest struct {
	BookingID         uuid.UUID `json:"booking_id" binding:"required"`
	RazorpayOrderID   string    `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string    `json:"razorpay_signature" binding:"required"`
	AmountCents       int64     `json:"amount_cents"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID                      `json:"id"`
	BookingNumber     string                         `json:"booking_number"`
	TravellerID       uuid.UUID                      `json:"traveller_id"`
	TourID            uuid.UUID                      `json:"tour_id"`
	DepartsOn         time.Time                      `json:"departs_on"`
	Passengers        []bookingDomain.Passenger      `json:"passengers"`
	Contact           bookingDomain.ContactDetails   `json:"contact"`
	SpecialRequests   string                         `json:"special_requests,omitempty"`
	BasePriceCents    int64                          `json:"base_price_cents"`
	TaxesCents        int64                          `json:"taxes_cents"`
	TotalAmountCents  int64                          `json:"total_amount_cents"`
	PaidAmountCents   int64                          `json:"paid_amount_cents"`
	Currency          string                         `json:"currency"`
	Status            string                         `json:"status"`
	PaymentStatus     string                         `json:"payment_status"`
	OrderID           string                         `json:"order_id,omitempty"`
	PaymentID         string                         `json:"payment_id,omitempty"`
	CancelledAt       *time.Time                     `json:"cancelled_at,omitempty"`
	CancelReason      string                         `json:"cancel_reason,omitempty"`
	RefundAmountCents int64                          `json:"refund_amount_cents"`
	RefundStatus      string                         `json:"refund_status,omitempty"`
	Version           int64                          `json:"version"`
	CreatedAt         time.Time                      `json:"created_at"`
	UpdatedAt         time.Time                      `json:"updated_at"`
}

// CancelBookingResult pairs the cancelled booking with its refund terms.
type CancelBookingResult struct {
	Booking           BookingDTO `json:"booking"`
	RefundAmountCents int64      `json:"refund_amount_cents"`
	RefundPercent     int        `json:"refund_percent"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: seat reservation, payment confirmation, cancellation with
// refund, and completion with traveller history.
type BookingService struct {
	bookings   bookingDomain.BookingRepository
	tours      tourDomain.TourRepository
	travellers travellerDomain.TravellerRepository
	verifier   PaymentVerifier
	producer   EventPublisher
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	tours tourDomain.TourRepository,
	travellers travellerDomain.TravellerRepository,
	verifier PaymentVerifier,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		tours:      tours,
		travellers: travellers,
		verifier:   verifier,
		producer:   producer,
		logger:     logger,
	}
}

// CreateBooking reserves seats on the requested departure day and
// persists a pending booking priced from the tour's effective price.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	t, err := s.tours.FindByID(ctx, req.TourID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, domain.NewValidationError("tour is not open for booking")
	}

	day := tourDomain.TruncateToDay(req.TourDate)
	unitPrice := t.EffectivePriceCents()

	quote, err := bookingDomain.ComputeQuote(unitPrice, len(req.Passengers))
	if err != nil {
		return nil, err
	}

	passengers := make([]bookingDomain.Passenger, len(req.Passengers))
	for i, p := range req.Passengers {
		passengers[i] = bookingDomain.Passenger{
			Name:        p.Name,
			Age:         p.Age,
			Gender:      p.Gender,
			AgeCategory: p.AgeCategory,
			PriceCents:  unitPrice,
		}
	}

	bk, err := bookingDomain.NewBooking(
		userID,
		t.ID(),
		day,
		passengers,
		bookingDomain.ContactDetails{
			Name:  req.ContactName,
			Phone: req.ContactPhone,
			Email: req.ContactEmail,
		},
		req.SpecialRequests,
		quote,
		t.Currency(),
	)
	if err != nil {
		return nil, err
	}

	// Seats are taken with a single conditional decrement, so two
	// concurrent requests can never both win the last seat.
	if err := s.tours.ReserveSeats(ctx, t.ID(), day, len(passengers)); err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		// Reservation already committed; hand the seats back.
		if relErr := s.tours.ReleaseSeats(ctx, t.ID(), day, len(passengers)); relErr != nil {
			s.logger.Error("failed to release seats after save failure",
				zap.String("tour_id", t.ID().String()),
				zap.Error(relErr),
			)
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.attachCurrentBooking(ctx, userID, t.ID(), bk.ID())

	evt := events.BookingCreatedEvent{
		BookingID:        bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		TravellerID:      bk.TravellerID(),
		TourID:           bk.TourID(),
		DepartsOn:        bk.DepartsOn(),
		PassengerCount:   bk.PassengerCount(),
		TotalAmountCents: bk.TotalAmountCents(),
		Currency:         bk.Currency(),
		ContactEmail:     bk.Contact().Email,
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("booking_number", bk.BookingNumber()),
		zap.Int("passengers", bk.PassengerCount()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// VerifyPayment checks the gateway signature and, on success, flips the
// booking to confirmed. A forged signature changes nothing.
func (s *BookingService) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !s.verifier.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.logger.Warn("payment signature mismatch",
			zap.String("booking_id", bk.ID().String()),
			zap.String("order_id", req.RazorpayOrderID),
		)
		return nil, domain.NewPaymentVerificationError("payment signature verification failed")
	}

	amount := req.AmountCents
	if amount <= 0 {
		amount = bk.TotalAmountCents()
	}

	if err := bk.ConfirmPayment(req.RazorpayOrderID, req.RazorpayPaymentID, amount); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingConfirmedEvent{
		BookingID:       bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		TravellerID:     bk.TravellerID(),
		PaymentID:       bk.PaymentID(),
		PaidAmountCents: bk.PaidAmountCents(),
		OccurredAt:      time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingConfirmed, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmPaymentCapture handles an asynchronous gateway capture event.
// It runs the same verify-and-confirm path as the REST endpoint.
func (s *BookingService) ConfirmPaymentCapture(ctx context.Context, bookingID uuid.UUID, orderID, paymentID, signature string, amountCents int64) error {
	_, err := s.VerifyPayment(ctx, VerifyPaymentRequest{
		BookingID:         bookingID,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: signature,
		AmountCents:       amountCents,
	})
	return err
}

// MarkPaymentFailed records a failed capture; the booking stays pending.
func (s *BookingService) MarkPaymentFailed(ctx context.Context, bookingID uuid.UUID, reason string) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := bk.MarkPaymentFailed(); err != nil {
		return err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return err
	}

	s.logger.Info("payment marked failed",
		zap.String("booking_id", bookingID.String()),
		zap.String("reason", reason),
	)
	return nil
}

// CancelBooking cancels a non-terminal booking, computes the refund
// from the days remaining until departure, and restores exactly the
// seats the booking had reserved.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID, isAdmin bool, reason string) (*CancelBookingResult, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !bk.IsOwnedBy(requesterID) {
		// Not distinguishable from a missing booking to the caller.
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	days := bookingDomain.DaysUntil(bk.DepartsOn(), time.Now().UTC())
	percent := bookingDomain.RefundPercent(days)
	refund := bookingDomain.RefundAmountCents(bk.PaidAmountCents(), percent)

	if err := bk.Cancel(reason, refund); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	// The cancellation is committed; a failed release is logged for
	// reconciliation rather than undoing the cancel.
	if err := s.tours.ReleaseSeats(ctx, bk.TourID(), bk.DepartsOn(), bk.PassengerCount()); err != nil {
		s.logger.Error("failed to release seats on cancellation",
			zap.String("booking_id", bk.ID().String()),
			zap.String("tour_id", bk.TourID().String()),
			zap.Error(err),
		)
	}

	evt := events.BookingCancelledEvent{
		BookingID:         bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		CancelledBy:       requesterID,
		Reason:            reason,
		RefundAmountCents: refund,
		RefundPercent:     percent,
		OccurredAt:        time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, bk.ID().String(), evt)

	return &CancelBookingResult{
		Booking:           toBookingDTO(bk),
		RefundAmountCents: refund,
		RefundPercent:     percent,
	}, nil
}

// CompleteBooking marks a confirmed booking as completed and settles
// the traveller profile: history entry, loyalty points, tier.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Complete(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	points := travellerDomain.LoyaltyPointsForAmount(bk.TotalAmountCents())
	if err := s.settleTravellerHistory(ctx, bk, points); err != nil {
		return nil, fmt.Errorf("booking completed but traveller update failed: %w", err)
	}

	evt := events.BookingCompletedEvent{
		BookingID:            bk.ID(),
		BookingNumber:        bk.BookingNumber(),
		TravellerID:          bk.TravellerID(),
		TourID:               bk.TourID(),
		TotalAmountCents:     bk.TotalAmountCents(),
		LoyaltyPointsAwarded: points,
		OccurredAt:           time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCompleted, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking, hiding other travellers'
// bookings from non-admin callers.
func (s *BookingService) GetBooking(ctx context.Context, requesterID uuid.UUID, isAdmin bool, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !bk.IsOwnedBy(requesterID) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetTravellerBookings retrieves paginated bookings for a traveller.
func (s *BookingService) GetTravellerBookings(ctx context.Context, travellerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByTravellerID(ctx, travellerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// attachCurrentBooking points the traveller profile at the new booking,
// creating the profile on first use. Failures are logged, not fatal.
func (s *BookingService) attachCurrentBooking(ctx context.Context, userID, tourID, bookingID uuid.UUID) {
	trav, err := s.travellers.FindByUserID(ctx, userID)
	if domain.IsCode(err, domain.CodeNotFound) {
		trav, err = travellerDomain.NewTraveller(userID)
		if err == nil {
			trav.SetCurrentBooking(tourID, bookingID)
			err = s.travellers.Save(ctx, trav)
		}
		if err != nil {
			s.logger.Error("failed to create traveller profile", zap.Error(err))
		}
		return
	}
	if err != nil {
		s.logger.Error("failed to load traveller profile", zap.Error(err))
		return
	}

	trav.SetCurrentBooking(tourID, bookingID)
	trav.IncrementVersion()
	if err := s.travellers.Update(ctx, trav); err != nil {
		s.logger.Error("failed to update traveller profile", zap.Error(err))
	}
}

// settleTravellerHistory appends the completed trip to the traveller
// profile and recomputes loyalty points and tier.
func (s *BookingService) settleTravellerHistory(ctx context.Context, bk *bookingDomain.Booking, points int) error {
	trav, err := s.travellers.FindByUserID(ctx, bk.TravellerID())
	if domain.IsCode(err, domain.CodeNotFound) {
		trav, err = travellerDomain.NewTraveller(bk.TravellerID())
		if err != nil {
			return err
		}
		if err := s.travellers.Save(ctx, trav); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	title := ""
	if t, err := s.tours.FindByID(ctx, bk.TourID()); err == nil {
		title = t.Title()
	} else {
		s.logger.Warn("tour lookup failed while recording trip history",
			zap.String("tour_id", bk.TourID().String()),
			zap.Error(err),
		)
	}

	trav.AppendTrip(travellerDomain.TripRecord{
		BookingID:   bk.ID(),
		TourID:      bk.TourID(),
		TourTitle:   title,
		DepartedOn:  bk.DepartsOn(),
		CompletedAt: time.Now().UTC(),
		AmountCents: bk.TotalAmountCents(),
	}, points)

	trav.IncrementVersion()
	return s.travellers.Update(ctx, trav)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		TravellerID:       bk.TravellerID(),
		TourID:            bk.TourID(),
		DepartsOn:         bk.DepartsOn(),
		Passengers:        bk.Passengers(),
		Contact:           bk.Contact(),
		SpecialRequests:   bk.SpecialRequests(),
		BasePriceCents:    bk.BasePriceCents(),
		TaxesCents:        bk.TaxesCents(),
		TotalAmountCents:  bk.TotalAmountCents(),
		PaidAmountCents:   bk.PaidAmountCents(),
		Currency:          bk.Currency(),
		Status:            string(bk.Status()),
		PaymentStatus:     string(bk.PaymentStatus()),
		OrderID:           bk.OrderID(),
		PaymentID:         bk.PaymentID(),
		CancelledAt:       bk.CancelledAt(),
		CancelReason:      bk.CancelReason(),
		RefundAmountCents: bk.RefundAmountCents(),
		RefundStatus:      string(bk.RefundStatus()),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}
