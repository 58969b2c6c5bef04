package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	travellerDomain "github.com/holy-travels/service-booking/internal/domain/traveller"
	"github.com/holy-travels/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TravellerModel is the GORM model for the travellers table.
type TravellerModel struct {
	UserID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CurrentTourID    *uuid.UUID      `gorm:"type:uuid"`
	CurrentBookingID *uuid.UUID      `gorm:"type:uuid"`
	TotalTrips       int             `gorm:"not null;default:0"`
	LoyaltyPoints    int             `gorm:"not null;default:0"`
	MembershipTier   string          `gorm:"not null;size:20;default:'bronze'"`
	History          json.RawMessage `gorm:"type:jsonb"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TravellerModel) TableName() string {
	return "travellers"
}

// GormTravellerRepository is the GORM-based implementation of TravellerRepository.
type GormTravellerRepository struct {
	db *gorm.DB
}

// NewGormTravellerRepository creates a new GormTravellerRepository.
func NewGormTravellerRepository(db *gorm.DB) *GormTravellerRepository {
	return &GormTravellerRepository{db: db}
}

// FindByUserID retrieves a traveller profile by user ID.
func (r *GormTravellerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*travellerDomain.Traveller, error) {
	var model TravellerModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Traveller", userID.String())
		}
		return nil, fmt.Errorf("failed to find traveller: %w", err)
	}
	return toDomainTraveller(&model)
}

// Save persists a new traveller profile.
func (r *GormTravellerRepository) Save(ctx context.Context, t *travellerDomain.Traveller) error {
	model, err := toTravellerModel(t)
	if err != nil {
		return fmt.Errorf("failed to convert traveller to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save traveller: %w", err)
	}
	return nil
}

// Update persists changes to an existing traveller with optimistic locking.
func (r *GormTravellerRepository) Update(ctx context.Context, t *travellerDomain.Traveller) error {
	model, err := toTravellerModel(t)
	if err != nil {
		return fmt.Errorf("failed to convert traveller to model: %w", err)
	}

	expectedVersion := t.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&TravellerModel{}).
		Where("user_id = ? AND version = ?", model.UserID, expectedVersion).
		Updates(map[string]interface{}{
			"current_tour_id":    model.CurrentTourID,
			"current_booking_id": model.CurrentBookingID,
			"total_trips":        model.TotalTrips,
			"loyalty_points":     model.LoyaltyPoints,
			"membership_tier":    model.MembershipTier,
			"history":            model.History,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update traveller: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("traveller was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toTravellerModel(t *travellerDomain.Traveller) (*TravellerModel, error) {
	history := t.History()
	if history == nil {
		history = []travellerDomain.TripRecord{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trip history: %w", err)
	}

	return &TravellerModel{
		UserID:           t.UserID(),
		CurrentTourID:    t.CurrentTourID(),
		CurrentBookingID: t.CurrentBookingID(),
		TotalTrips:       t.TotalTrips(),
		LoyaltyPoints:    t.LoyaltyPoints(),
		MembershipTier:   string(t.MembershipTier()),
		History:          historyJSON,
		Version:          t.Version(),
		CreatedAt:        t.CreatedAt(),
		UpdatedAt:        t.UpdatedAt(),
	}, nil
}

func toDomainTraveller(m *TravellerModel) (*travellerDomain.Traveller, error) {
	var history []travellerDomain.TripRecord
	if len(m.History) > 0 {
		if err := json.Unmarshal(m.History, &history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trip history: %w", err)
		}
	}

	return travellerDomain.Reconstruct(
		m.UserID,
		m.CurrentTourID,
		m.CurrentBookingID,
		m.TotalTrips,
		m.LoyaltyPoints,
		travellerDomain.MembershipTier(m.MembershipTier),
		history,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
