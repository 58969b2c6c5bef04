package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/holy-travels/service-booking/internal/domain/booking"
	"github.com/holy-travels/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber     string          `gorm:"uniqueIndex;not null;size:20"`
	TravellerID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	TourID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	DepartsOn         time.Time       `gorm:"type:date;not null"`
	Passengers        json.RawMessage `gorm:"type:jsonb;not null"`
	Contact           json.RawMessage `gorm:"type:jsonb;not null"`
	SpecialRequests   string          `gorm:"size:1000"`
	BasePriceCents    int64           `gorm:"not null"`
	TaxesCents        int64           `gorm:"not null"`
	TotalAmountCents  int64           `gorm:"not null"`
	PaidAmountCents   int64           `gorm:"not null;default:0"`
	Currency          string          `gorm:"not null;size:3;default:'INR'"`
	Status            string          `gorm:"not null;size:20;index"`
	PaymentStatus     string          `gorm:"not null;size:20"`
	OrderID           string          `gorm:"size:100"`
	PaymentID         string          `gorm:"size:100"`
	CancelledAt       *time.Time      `gorm:""`
	CancelReason      string          `gorm:"size:500"`
	RefundAmountCents int64           `gorm:"not null;default:0"`
	RefundStatus      string          `gorm:"size:20"`
	Version           int64           `gorm:"not null;default:1"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByTravellerID retrieves bookings for a traveller with pagination.
func (r *GormBookingRepository) FindByTravellerID(ctx context.Context, travellerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("traveller_id = ?", travellerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count traveller bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("traveller_id = ?", travellerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find traveller bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}

	return bookings, total, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"payment_status":      model.PaymentStatus,
			"order_id":            model.OrderID,
			"payment_id":          model.PaymentID,
			"paid_amount_cents":   model.PaidAmountCents,
			"cancelled_at":        model.CancelledAt,
			"cancel_reason":       model.CancelReason,
			"refund_amount_cents": model.RefundAmountCents,
			"refund_status":       model.RefundStatus,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}

	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	passengersJSON, err := json.Marshal(bk.Passengers())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal passengers: %w", err)
	}

	contactJSON, err := json.Marshal(bk.Contact())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact details: %w", err)
	}

	return &BookingModel{
		ID:                bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		TravellerID:       bk.TravellerID(),
		TourID:            bk.TourID(),
		DepartsOn:         bk.DepartsOn(),
		Passengers:        passengersJSON,
		Contact:           contactJSON,
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
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var passengers []bookingDomain.Passenger
	if err := json.Unmarshal(m.Passengers, &passengers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal passengers: %w", err)
	}

	var contact bookingDomain.ContactDetails
	if err := json.Unmarshal(m.Contact, &contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact details: %w", err)
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.TravellerID,
		m.TourID,
		m.DepartsOn,
		passengers,
		contact,
		m.SpecialRequests,
		m.BasePriceCents,
		m.TaxesCents,
		m.TotalAmountCents,
		m.PaidAmountCents,
		m.Currency,
		bookingDomain.BookingStatus(m.Status),
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.OrderID,
		m.PaymentID,
		m.CancelledAt,
		m.CancelReason,
		m.RefundAmountCents,
		bookingDomain.RefundStatus(m.RefundStatus),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
