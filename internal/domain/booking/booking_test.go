package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuote() Quote {
	return Quote{BasePriceCents: 1000000, TaxesCents: 50000, TotalAmountCents: 1050000}
}

func validPassengers() []Passenger {
	return []Passenger{
		{Name: "Asha Nair", Age: 34, Gender: "female", AgeCategory: "adult", PriceCents: 500000},
		{Name: "Ravi Nair", Age: 36, Gender: "male", AgeCategory: "adult", PriceCents: 500000},
	}
}

func validContact() ContactDetails {
	return ContactDetails{Name: "Asha Nair", Phone: "+919876543210", Email: "asha@example.com"}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(), uuid.New(),
		time.Now().UTC().AddDate(0, 0, 20),
		validPassengers(), validContact(), "",
		validQuote(), "INR",
	)
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, PaymentPending, bk.PaymentStatus())
	assert.Equal(t, 2, bk.PassengerCount())
	assert.Equal(t, int64(1050000), bk.TotalAmountCents())
	assert.Equal(t, int64(0), bk.PaidAmountCents())
	assert.Equal(t, int64(1), bk.Version())
}

func TestNewBooking_NumberFormat(t *testing.T) {
	bk := newTestBooking(t)

	num := bk.BookingNumber()
	require.Len(t, num, 16)
	assert.True(t, strings.HasPrefix(num, "HT-"))
	assert.Equal(t, time.Now().UTC().Format("20060102"), num[3:11])

	suffix := num[12:]
	for _, c := range suffix {
		assert.NotContains(t, "01IO", string(c), "suffix must avoid ambiguous characters")
	}
}

func TestNewBooking_Validation(t *testing.T) {
	departsOn := time.Now().UTC().AddDate(0, 0, 20)

	_, err := NewBooking(uuid.Nil, uuid.New(), departsOn, validPassengers(), validContact(), "", validQuote(), "INR")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.New(), departsOn, nil, validContact(), "", validQuote(), "INR")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	badCategory := validPassengers()
	badCategory[0].AgeCategory = "senior"
	_, err = NewBooking(uuid.New(), uuid.New(), departsOn, badCategory, validContact(), "", validQuote(), "INR")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.New(), departsOn, validPassengers(), ContactDetails{Name: "x"}, "", validQuote(), "INR")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	badQuote := Quote{BasePriceCents: 100, TaxesCents: 5, TotalAmountCents: 999}
	_, err = NewBooking(uuid.New(), uuid.New(), departsOn, validPassengers(), validContact(), "", badQuote, "INR")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestConfirmPayment(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.ConfirmPayment("order_abc", "pay_xyz", 1050000))
	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Equal(t, PaymentCompleted, bk.PaymentStatus())
	assert.Equal(t, "order_abc", bk.OrderID())
	assert.Equal(t, "pay_xyz", bk.PaymentID())
	assert.Equal(t, int64(1050000), bk.PaidAmountCents())

	// Confirming twice is an invalid transition.
	err := bk.ConfirmPayment("order_abc", "pay_xyz", 1050000)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestMarkPaymentFailed(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.MarkPaymentFailed())
	assert.Equal(t, StatusPending, bk.Status(), "booking stays pending for retry")
	assert.Equal(t, PaymentFailed, bk.PaymentStatus())

	// A confirmed booking cannot be marked failed.
	bk2 := newTestBooking(t)
	require.NoError(t, bk2.ConfirmPayment("order_1", "pay_1", 1050000))
	assert.Error(t, bk2.MarkPaymentFailed())
}

func TestCancel(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.ConfirmPayment("order_1", "pay_1", 1050000))

	require.NoError(t, bk.Cancel("change of plans", 525000))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "change of plans", bk.CancelReason())
	assert.Equal(t, int64(525000), bk.RefundAmountCents())
	assert.Equal(t, RefundPending, bk.RefundStatus())
	assert.NotNil(t, bk.CancelledAt())
}

func TestCancel_ZeroRefundSkipsRefundPipeline(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel("too late", 0))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, RefundNone, bk.RefundStatus())
}

func TestCancel_TerminalStatesRejected(t *testing.T) {
	cancelled := newTestBooking(t)
	require.NoError(t, cancelled.Cancel("first", 0))
	err := cancelled.Cancel("second", 0)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))

	completed := newTestBooking(t)
	require.NoError(t, completed.ConfirmPayment("order_1", "pay_1", 1050000))
	require.NoError(t, completed.Complete())
	err = completed.Cancel("after the tour", 0)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestComplete(t *testing.T) {
	bk := newTestBooking(t)

	// Pending bookings cannot complete; payment must come first.
	err := bk.Complete()
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))

	require.NoError(t, bk.ConfirmPayment("order_1", "pay_1", 1050000))
	require.NoError(t, bk.Complete())
	assert.Equal(t, StatusCompleted, bk.Status())

	err = bk.Complete()
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestMarkRefundProcessed(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.ConfirmPayment("order_1", "pay_1", 1050000))
	require.NoError(t, bk.Cancel("plans changed", 735000))

	require.NoError(t, bk.MarkRefundProcessed())
	assert.Equal(t, RefundProcessed, bk.RefundStatus())
	assert.Equal(t, PaymentRefunded, bk.PaymentStatus())

	assert.Error(t, bk.MarkRefundProcessed())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))

	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))

	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusCancelled.CanBeCancelled())
	assert.False(t, StatusCompleted.CanBeCancelled())
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseBookingStatus("shipped")
	assert.Error(t, err)
}
