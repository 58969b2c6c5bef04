package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	tourDomain "github.com/holy-travels/service-booking/internal/domain/tour"
	"github.com/holy-travels/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TourModel is the GORM model for the tours table.
type TourModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug                 string    `gorm:"uniqueIndex;not null;size:150"`
	Title                string    `gorm:"not null;size:200"`
	Description          string    `gorm:"type:text"`
	Category             string    `gorm:"size:50;index"`
	DurationDays         int       `gorm:"not null"`
	PriceCents           int64     `gorm:"not null"`
	DiscountedPriceCents *int64    `gorm:""`
	Currency             string    `gorm:"not null;size:3;default:'INR'"`
	Status               string    `gorm:"not null;size:20;index"`
	Version              int64     `gorm:"not null;default:1"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TourModel) TableName() string {
	return "tours"
}

// DepartureModel is the GORM model for the tour_departures table. One
// row per tour per departure day holds the seat inventory, so seat
// reservation can be a single conditional UPDATE on that row.
type DepartureModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TourID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tour_departure_day"`
	DepartsOn      time.Time `gorm:"type:date;not null;uniqueIndex:idx_tour_departure_day"`
	AvailableSeats int       `gorm:"not null"`
	TotalSeats     int       `gorm:"not null"`
	Status         string    `gorm:"not null;size:20;default:'scheduled'"`
}

// TableName returns the table name for the GORM model.
func (DepartureModel) TableName() string {
	return "tour_departures"
}

// GormTourRepository is the GORM-based implementation of TourRepository.
type GormTourRepository struct {
	db *gorm.DB
}

// NewGormTourRepository creates a new GormTourRepository.
func NewGormTourRepository(db *gorm.DB) *GormTourRepository {
	return &GormTourRepository{db: db}
}

// FindByID retrieves a tour by its unique identifier.
func (r *GormTourRepository) FindByID(ctx context.Context, id uuid.UUID) (*tourDomain.Tour, error) {
	var model TourModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Tour", id.String())
		}
		return nil, fmt.Errorf("failed to find tour by ID: %w", err)
	}
	return toDomainTour(&model), nil
}

// FindBySlug retrieves a tour by its URL slug.
func (r *GormTourRepository) FindBySlug(ctx context.Context, slug string) (*tourDomain.Tour, error) {
	var model TourModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Tour", slug)
		}
		return nil, fmt.Errorf("failed to find tour by slug: %w", err)
	}
	return toDomainTour(&model), nil
}

// List retrieves active tours with optional category filter and pagination.
func (r *GormTourRepository) List(ctx context.Context, category string, page, limit int) ([]*tourDomain.Tour, int64, error) {
	query := r.db.WithContext(ctx).Model(&TourModel{}).Where("status = ?", string(tourDomain.TourStatusActive))
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tours: %w", err)
	}

	var models []TourModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tours: %w", err)
	}

	tours := make([]*tourDomain.Tour, len(models))
	for i, m := range models {
		tours[i] = toDomainTour(&m)
	}

	return tours, total, nil
}

// Save persists a new tour.
func (r *GormTourRepository) Save(ctx context.Context, t *tourDomain.Tour) error {
	model := toTourModel(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save tour: %w", err)
	}
	return nil
}

// Update persists changes to an existing tour with optimistic locking.
func (r *GormTourRepository) Update(ctx context.Context, t *tourDomain.Tour) error {
	model := toTourModel(t)

	expectedVersion := t.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&TourModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"title":                  model.Title,
			"description":            model.Description,
			"category":               model.Category,
			"duration_days":          model.DurationDays,
			"price_cents":            model.PriceCents,
			"discounted_price_cents": model.DiscountedPriceCents,
			"status":                 model.Status,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update tour: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("tour was modified by another transaction")
	}

	return nil
}

// AddDeparture persists a new departure day for a tour.
func (r *GormTourRepository) AddDeparture(ctx context.Context, d tourDomain.Departure) error {
	model := DepartureModel{
		ID:             d.ID,
		TourID:         d.TourID,
		DepartsOn:      d.DepartsOn,
		AvailableSeats: d.AvailableSeats,
		TotalSeats:     d.TotalSeats,
		Status:         string(d.Status),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to add departure: %w", err)
	}
	return nil
}

// FindDeparture retrieves the departure entry for a tour on a calendar day.
func (r *GormTourRepository) FindDeparture(ctx context.Context, tourID uuid.UUID, departsOn time.Time) (*tourDomain.Departure, error) {
	var model DepartureModel
	if err := r.db.WithContext(ctx).
		Where("tour_id = ? AND departs_on = ?", tourID, departsOn).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Departure", departsOn.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find departure: %w", err)
	}
	d := toDomainDeparture(&model)
	return &d, nil
}

// ListDepartures retrieves a tour's departures on or after the given day.
func (r *GormTourRepository) ListDepartures(ctx context.Context, tourID uuid.UUID, from time.Time) ([]tourDomain.Departure, error) {
	var models []DepartureModel
	if err := r.db.WithContext(ctx).
		Where("tour_id = ? AND departs_on >= ?", tourID, from).
		Order("departs_on ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list departures: %w", err)
	}

	departures := make([]tourDomain.Departure, len(models))
	for i, m := range models {
		departures[i] = toDomainDeparture(&m)
	}
	return departures, nil
}

// ReserveSeats atomically decrements available seats for a departure
// day. The guard lives in the WHERE clause, so concurrent reservations
// serialize on the row and the count can never go negative.
func (r *GormTourRepository) ReserveSeats(ctx context.Context, tourID uuid.UUID, departsOn time.Time, count int) error {
	if count <= 0 {
		return domain.NewValidationError("seat count must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&DepartureModel{}).
		Where("tour_id = ? AND departs_on = ? AND status = ? AND available_seats >= ?",
			tourID, departsOn, string(tourDomain.DepartureStatusScheduled), count).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", count))

	if result.Error != nil {
		return fmt.Errorf("failed to reserve seats: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Nothing matched: either no such departure or too few seats.
		var exists int64
		if err := r.db.WithContext(ctx).
			Model(&DepartureModel{}).
			Where("tour_id = ? AND departs_on = ?", tourID, departsOn).
			Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to check departure: %w", err)
		}
		if exists == 0 {
			return domain.NewNotFoundError("Departure", departsOn.Format("2006-01-02"))
		}
		return domain.NewInventoryError(fmt.Sprintf("not enough seats available on %s", departsOn.Format("2006-01-02")))
	}

	return nil
}

// ReleaseSeats atomically returns seats to a departure day, clamped at
// the departure's total capacity.
func (r *GormTourRepository) ReleaseSeats(ctx context.Context, tourID uuid.UUID, departsOn time.Time, count int) error {
	if count <= 0 {
		return domain.NewValidationError("seat count must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&DepartureModel{}).
		Where("tour_id = ? AND departs_on = ?", tourID, departsOn).
		UpdateColumn("available_seats", gorm.Expr("LEAST(available_seats + ?, total_seats)", count))

	if result.Error != nil {
		return fmt.Errorf("failed to release seats: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Departure", departsOn.Format("2006-01-02"))
	}

	return nil
}

// --- Conversion Helpers ---

func toTourModel(t *tourDomain.Tour) *TourModel {
	return &TourModel{
		ID:                   t.ID(),
		Slug:                 t.Slug(),
		Title:                t.Title(),
		Description:          t.Description(),
		Category:             t.Category(),
		DurationDays:         t.DurationDays(),
		PriceCents:           t.PriceCents(),
		DiscountedPriceCents: t.DiscountedPriceCents(),
		Currency:             t.Currency(),
		Status:               string(t.Status()),
		Version:              t.Version(),
		CreatedAt:            t.CreatedAt(),
		UpdatedAt:            t.UpdatedAt(),
	}
}

func toDomainTour(m *TourModel) *tourDomain.Tour {
	return tourDomain.Reconstruct(
		m.ID,
		m.Slug,
		m.Title,
		m.Description,
		m.Category,
		m.DurationDays,
		m.PriceCents,
		m.DiscountedPriceCents,
		m.Currency,
		tourDomain.TourStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainDeparture(m *DepartureModel) tourDomain.Departure {
	return tourDomain.Departure{
		ID:             m.ID,
		TourID:         m.TourID,
		DepartsOn:      m.DepartsOn,
		AvailableSeats: m.AvailableSeats,
		TotalSeats:     m.TotalSeats,
		Status:         tourDomain.DepartureStatus(m.Status),
	}
}
