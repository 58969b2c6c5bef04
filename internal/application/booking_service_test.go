package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/holy-travels/service-booking/internal/domain/booking"
	tourDomain "github.com/holy-travels/service-booking/internal/domain/tour"
	travellerDomain "github.com/holy-travels/service-booking/internal/domain/traveller"
	"github.com/holy-travels/service-booking/pkg/domain"
	"github.com/holy-travels/service-booking/pkg/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- In-memory fakes ---

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
	saveErr  error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	for _, bk := range r.bookings {
		if bk.BookingNumber() == number {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) FindByTravellerID(_ context.Context, travellerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.TravellerID() == travellerID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

type departureKey struct {
	tourID uuid.UUID
	day    string
}

type fakeTourRepo struct {
	tours      map[uuid.UUID]*tourDomain.Tour
	departures map[departureKey]*tourDomain.Departure
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{
		tours:      make(map[uuid.UUID]*tourDomain.Tour),
		departures: make(map[departureKey]*tourDomain.Departure),
	}
}

func keyFor(tourID uuid.UUID, departsOn time.Time) departureKey {
	return departureKey{tourID: tourID, day: departsOn.UTC().Format("2006-01-02")}
}

func (r *fakeTourRepo) FindByID(_ context.Context, id uuid.UUID) (*tourDomain.Tour, error) {
	t, ok := r.tours[id]
	if !ok {
		return nil, domain.NewNotFoundError("Tour", id.String())
	}
	return t, nil
}

func (r *fakeTourRepo) FindBySlug(_ context.Context, slug string) (*tourDomain.Tour, error) {
	for _, t := range r.tours {
		if t.Slug() == slug {
			return t, nil
		}
	}
	return nil, domain.NewNotFoundError("Tour", slug)
}

func (r *fakeTourRepo) List(_ context.Context, category string, page, limit int) ([]*tourDomain.Tour, int64, error) {
	var out []*tourDomain.Tour
	for _, t := range r.tours {
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTourRepo) Save(_ context.Context, t *tourDomain.Tour) error {
	r.tours[t.ID()] = t
	return nil
}

func (r *fakeTourRepo) Update(_ context.Context, t *tourDomain.Tour) error {
	r.tours[t.ID()] = t
	return nil
}

func (r *fakeTourRepo) AddDeparture(_ context.Context, d tourDomain.Departure) error {
	dd := d
	r.departures[keyFor(d.TourID, d.DepartsOn)] = &dd
	return nil
}

func (r *fakeTourRepo) FindDeparture(_ context.Context, tourID uuid.UUID, departsOn time.Time) (*tourDomain.Departure, error) {
	d, ok := r.departures[keyFor(tourID, departsOn)]
	if !ok {
		return nil, domain.NewNotFoundError("Departure", departsOn.Format("2006-01-02"))
	}
	return d, nil
}

func (r *fakeTourRepo) ListDepartures(_ context.Context, tourID uuid.UUID, from time.Time) ([]tourDomain.Departure, error) {
	var out []tourDomain.Departure
	for _, d := range r.departures {
		if d.TourID == tourID && !d.DepartsOn.Before(from) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeTourRepo) ReserveSeats(_ context.Context, tourID uuid.UUID, departsOn time.Time, count int) error {
	d, ok := r.departures[keyFor(tourID, departsOn)]
	if !ok {
		return domain.NewNotFoundError("Departure", departsOn.Format("2006-01-02"))
	}
	return d.Reserve(count)
}

func (r *fakeTourRepo) ReleaseSeats(_ context.Context, tourID uuid.UUID, departsOn time.Time, count int) error {
	d, ok := r.departures[keyFor(tourID, departsOn)]
	if !ok {
		return domain.NewNotFoundError("Departure", departsOn.Format("2006-01-02"))
	}
	d.Release(count)
	return nil
}

type fakeTravellerRepo struct {
	travellers map[uuid.UUID]*travellerDomain.Traveller
}

func newFakeTravellerRepo() *fakeTravellerRepo {
	return &fakeTravellerRepo{travellers: make(map[uuid.UUID]*travellerDomain.Traveller)}
}

func (r *fakeTravellerRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*travellerDomain.Traveller, error) {
	t, ok := r.travellers[userID]
	if !ok {
		return nil, domain.NewNotFoundError("Traveller", userID.String())
	}
	return t, nil
}

func (r *fakeTravellerRepo) Save(_ context.Context, t *travellerDomain.Traveller) error {
	r.travellers[t.UserID()] = t
	return nil
}

func (r *fakeTravellerRepo) Update(_ context.Context, t *travellerDomain.Traveller) error {
	r.travellers[t.UserID()] = t
	return nil
}

type fakeVerifier struct {
	valid bool
}

func (v *fakeVerifier) Verify(orderID, paymentID, signature string) bool {
	return v.valid
}

type capturedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

type fakePublisher struct {
	events []capturedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.events = append(p.events, capturedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *fakePublisher) typesPublished() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Event.Type
	}
	return types
}

// --- Test fixture ---

type serviceFixture struct {
	service    *BookingService
	bookings   *fakeBookingRepo
	tours      *fakeTourRepo
	travellers *fakeTravellerRepo
	verifier   *fakeVerifier
	publisher  *fakePublisher
	tour       *tourDomain.Tour
	departsOn  time.Time
}

func newServiceFixture(t *testing.T, totalSeats int) *serviceFixture {
	t.Helper()

	bookings := newFakeBookingRepo()
	tours := newFakeTourRepo()
	travellers := newFakeTravellerRepo()
	verifier := &fakeVerifier{valid: true}
	publisher := &fakePublisher{}

	tour, err := tourDomain.NewTour("char-dham-yatra", "Char Dham Yatra", "", "pilgrimage", 12, 500000, nil, "INR")
	require.NoError(t, err)
	require.NoError(t, tours.Save(context.Background(), tour))

	departsOn := tourDomain.TruncateToDay(time.Now().UTC().AddDate(0, 0, 20))
	d, err := tourDomain.NewDeparture(tour.ID(), departsOn, totalSeats)
	require.NoError(t, err)
	require.NoError(t, tours.AddDeparture(context.Background(), d))

	service := NewBookingService(bookings, tours, travellers, verifier, publisher, zap.NewNop())

	return &serviceFixture{
		service:    service,
		bookings:   bookings,
		tours:      tours,
		travellers: travellers,
		verifier:   verifier,
		publisher:  publisher,
		tour:       tour,
		departsOn:  departsOn,
	}
}

func (f *serviceFixture) createRequest(passengerCount int) CreateBookingRequest {
	passengers := make([]PassengerRequest, passengerCount)
	for i := range passengers {
		passengers[i] = PassengerRequest{
			Name:        fmt.Sprintf("Passenger %d", i+1),
			Age:         30 + i,
			Gender:      "female",
			AgeCategory: "adult",
		}
	}
	return CreateBookingRequest{
		TourID:       f.tour.ID(),
		TourDate:     f.departsOn,
		Passengers:   passengers,
		ContactName:  "Asha Nair",
		ContactPhone: "+919876543210",
		ContactEmail: "asha@example.com",
	}
}

func (f *serviceFixture) availableSeats(t *testing.T) int {
	t.Helper()
	d, err := f.tours.FindDeparture(context.Background(), f.tour.ID(), f.departsOn)
	require.NoError(t, err)
	return d.AvailableSeats
}

// --- Tests ---

func TestCreateBooking(t *testing.T) {
	f := newServiceFixture(t, 10)
	userID := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), userID, f.createRequest(2))
	require.NoError(t, err)

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, int64(1000000), dto.BasePriceCents)
	assert.Equal(t, int64(50000), dto.TaxesCents)
	assert.Equal(t, int64(1050000), dto.TotalAmountCents)
	assert.Equal(t, 8, f.availableSeats(t))

	// Traveller profile is created and points at the new booking.
	trav, err := f.travellers.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, trav.CurrentBookingID())
	assert.Equal(t, dto.ID, *trav.CurrentBookingID())

	assert.Contains(t, f.publisher.typesPublished(), "booking.created")
}

func TestCreateBooking_InsufficientSeats(t *testing.T) {
	f := newServiceFixture(t, 2)
	userID := uuid.New()

	_, err := f.service.CreateBooking(context.Background(), userID, f.createRequest(2))
	require.NoError(t, err)
	assert.Equal(t, 0, f.availableSeats(t))

	// The departure is sold out; a third seat fails without touching inventory.
	_, err = f.service.CreateBooking(context.Background(), uuid.New(), f.createRequest(1))
	assert.True(t, domain.IsCode(err, domain.CodeInventory))
	assert.Equal(t, 0, f.availableSeats(t))
}

func TestCreateBooking_ArchivedTourRejected(t *testing.T) {
	f := newServiceFixture(t, 10)
	f.tour.Archive()

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), f.createRequest(1))
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	assert.Equal(t, 10, f.availableSeats(t))
}

func TestCreateBooking_UnknownDeparture(t *testing.T) {
	f := newServiceFixture(t, 10)

	req := f.createRequest(1)
	req.TourDate = f.departsOn.AddDate(0, 0, 3)

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestCreateBooking_ReleasesSeatsWhenSaveFails(t *testing.T) {
	f := newServiceFixture(t, 10)
	f.bookings.saveErr = fmt.Errorf("connection reset")

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), f.createRequest(3))
	require.Error(t, err)
	assert.Equal(t, 10, f.availableSeats(t), "seats return after a failed save")
}

func TestVerifyPayment_ConfirmsBooking(t *testing.T) {
	f := newServiceFixture(t, 10)
	userID := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), userID, f.createRequest(2))
	require.NoError(t, err)

	confirmed, err := f.service.VerifyPayment(context.Background(), VerifyPaymentRequest{
		BookingID:         dto.ID,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "sig",
	})
	require.NoError(t, err)

	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, "completed", confirmed.PaymentStatus)
	assert.Equal(t, dto.TotalAmountCents, confirmed.PaidAmountCents)
	assert.Contains(t, f.publisher.typesPublished(), "booking.confirmed")
}

func TestVerifyPayment_BadSignatureLeavesBookingPending(t *testing.T) {
	f := newServiceFixture(t, 10)
	f.verifier.valid = false

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), f.createRequest(1))
	require.NoError(t, err)

	_, err = f.service.VerifyPayment(context.Background(), VerifyPaymentRequest{
		BookingID:         dto.ID,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "forged",
	})
	assert.True(t, domain.IsCode(err, domain.CodePaymentVerification))

	bk, err := f.bookings.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPending, bk.Status())
	assert.NotContains(t, f.publisher.typesPublished(), "booking.confirmed")
}

func TestCancelBooking_RefundAndSeatRelease(t *testing.T) {
	f := newServiceFixture(t, 2)
	userID := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), userID, f.createRequest(2))
	require.NoError(t, err)
	_, err = f.service.VerifyPayment(context.Background(), VerifyPaymentRequest{
		BookingID:         dto.ID,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "sig",
		AmountCents:       100000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.availableSeats(t))

	// 20 days out lands in the 70% tier: refund 70% of 100000.
	result, err := f.service.CancelBooking(context.Background(), dto.ID, userID, false, "change of plans")
	require.NoError(t, err)

	assert.Equal(t, 70, result.RefundPercent)
	assert.Equal(t, int64(70000), result.RefundAmountCents)
	assert.Equal(t, "cancelled", result.Booking.Status)
	assert.Equal(t, 2, f.availableSeats(t), "cancelled seats return to inventory")
	assert.Contains(t, f.publisher.typesPublished(), "booking.cancelled")
}

func TestCancelBooking_TenDaysOutRefundsHalf(t *testing.T) {
	f := newServiceFixture(t, 2)
	userID := uuid.New()

	// A second departure ten days out on the same tour.
	nearDeparture := tourDomain.TruncateToDay(time.Now().UTC().AddDate(0, 0, 10))
	d, err := tourDomain.NewDeparture(f.tour.ID(), nearDeparture, 2)
	require.NoError(t, err)
	require.NoError(t, f.tours.AddDeparture(context.Background(), d))

	req := f.createRequest(2)
	req.TourDate = nearDeparture
	dto, err := f.service.CreateBooking(context.Background(), userID, req)
	require.NoError(t, err)

	_, err = f.service.VerifyPayment(context.Background(), VerifyPaymentRequest{
		BookingID:         dto.ID,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "sig",
		AmountCents:       1000,
	})
	require.NoError(t, err)

	result, err := f.service.CancelBooking(context.Background(), dto.ID, userID, false, "")
	require.NoError(t, err)

	assert.Equal(t, 50, result.RefundPercent)
	assert.Equal(t, int64(500), result.RefundAmountCents)

	near, err := f.tours.FindDeparture(context.Background(), f.tour.ID(), nearDeparture)
	require.NoError(t, err)
	assert.Equal(t, 2, near.AvailableSeats)
}

func TestCancelBooking_OtherTravellerGets404(t *testing.T) {
	f := newServiceFixture(t, 10)
	owner := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), owner, f.createRequest(1))
	require.NoError(t, err)

	_, err = f.service.CancelBooking(context.Background(), dto.ID, uuid.New(), false, "")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestCancelBooking_AdminCanCancelAnyBooking(t *testing.T) {
	f := newServiceFixture(t, 10)

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), f.createRequest(1))
	require.NoError(t, err)

	result, err := f.service.CancelBooking(context.Background(), dto.ID, uuid.New(), true, "operator cancellation")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", result.Booking.Status)
}

func TestCancelBooking_TerminalStateRejected(t *testing.T) {
	f := newServiceFixture(t, 10)
	userID := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), userID, f.createRequest(1))
	require.NoError(t, err)
	_, err = f.service.CancelBooking(context.Background(), dto.ID, userID, false, "first")
	require.NoError(t, err)

	_, err = f.service.CancelBooking(context.Background(), dto.ID, userID, false, "second")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
	assert.Equal(t, 10, f.availableSeats(t), "a rejected cancel must not release seats again")
}

func TestCompleteBooking_SettlesTravellerProfile(t *testing.T) {
	f := newServiceFixture(t, 10)
	userID := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), userID, f.createRequest(2))
	require.NoError(t, err)
	_, err = f.service.VerifyPayment(context.Background(), VerifyPaymentRequest{
		BookingID:         dto.ID,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "sig",
	})
	require.NoError(t, err)

	completed, err := f.service.CompleteBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	trav, err := f.travellers.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, trav.TotalTrips())
	// Total 1050000 paise earns one point per 100 rupees.
	assert.Equal(t, 105, trav.LoyaltyPoints())
	assert.Nil(t, trav.CurrentBookingID())
	require.Len(t, trav.History(), 1)
	assert.Equal(t, "Char Dham Yatra", trav.History()[0].TourTitle)

	assert.Contains(t, f.publisher.typesPublished(), "booking.completed")
}

func TestCompleteBooking_RequiresConfirmedStatus(t *testing.T) {
	f := newServiceFixture(t, 10)

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), f.createRequest(1))
	require.NoError(t, err)

	_, err = f.service.CompleteBooking(context.Background(), dto.ID)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestGetBooking_OwnershipHidesOthers(t *testing.T) {
	f := newServiceFixture(t, 10)
	owner := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), owner, f.createRequest(1))
	require.NoError(t, err)

	_, err = f.service.GetBooking(context.Background(), owner, false, dto.ID)
	assert.NoError(t, err)

	_, err = f.service.GetBooking(context.Background(), uuid.New(), false, dto.ID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	_, err = f.service.GetBooking(context.Background(), uuid.New(), true, dto.ID)
	assert.NoError(t, err, "admins can read any booking")
}

func TestMarkPaymentFailed_KeepsBookingPending(t *testing.T) {
	f := newServiceFixture(t, 10)

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), f.createRequest(1))
	require.NoError(t, err)

	require.NoError(t, f.service.MarkPaymentFailed(context.Background(), dto.ID, "card declined"))

	bk, err := f.bookings.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPending, bk.Status())
	assert.Equal(t, bookingDomain.PaymentFailed, bk.PaymentStatus())
}

func TestGetBookingStats(t *testing.T) {
	f := newServiceFixture(t, 10)
	userID := uuid.New()

	first, err := f.service.CreateBooking(context.Background(), userID, f.createRequest(1))
	require.NoError(t, err)
	_, err = f.service.CreateBooking(context.Background(), userID, f.createRequest(1))
	require.NoError(t, err)
	_, err = f.service.CancelBooking(context.Background(), first.ID, userID, false, "")
	require.NoError(t, err)

	stats, err := f.service.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["cancelled"])
}
