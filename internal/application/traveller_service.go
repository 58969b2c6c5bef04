package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	travellerDomain "github.com/holy-travels/service-booking/internal/domain/traveller"
	"github.com/holy-travels/service-booking/pkg/domain"
	"go.uber.org/zap"
)

// TravellerDTO is the response representation of a traveller profile.
type TravellerDTO struct {
	UserID           uuid.UUID                   `json:"user_id"`
	CurrentTourID    *uuid.UUID                  `json:"current_tour_id,omitempty"`
	CurrentBookingID *uuid.UUID                  `json:"current_booking_id,omitempty"`
	TotalTrips       int                         `json:"total_trips"`
	LoyaltyPoints    int                         `json:"loyalty_points"`
	MembershipTier   string                      `json:"membership_tier"`
	History          []travellerDomain.TripRecord `json:"history"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// TravellerService is the application service for traveller profiles.
type TravellerService struct {
	travellers travellerDomain.TravellerRepository
	logger     *zap.Logger
}

// NewTravellerService creates a new TravellerService.
func NewTravellerService(travellers travellerDomain.TravellerRepository, logger *zap.Logger) *TravellerService {
	return &TravellerService{travellers: travellers, logger: logger}
}

// GetProfile retrieves the traveller profile for a user. A user who has
// never booked gets an empty bronze profile instead of a 404; it is not
// persisted until a booking creates it.
func (s *TravellerService) GetProfile(ctx context.Context, userID uuid.UUID) (*TravellerDTO, error) {
	trav, err := s.travellers.FindByUserID(ctx, userID)
	if domain.IsCode(err, domain.CodeNotFound) {
		trav, err = travellerDomain.NewTraveller(userID)
	}
	if err != nil {
		return nil, err
	}

	result := toTravellerDTO(trav)
	return &result, nil
}

func toTravellerDTO(t *travellerDomain.Traveller) TravellerDTO {
	history := t.History()
	if history == nil {
		history = []travellerDomain.TripRecord{}
	}
	return TravellerDTO{
		UserID:           t.UserID(),
		CurrentTourID:    t.CurrentTourID(),
		CurrentBookingID: t.CurrentBookingID(),
		TotalTrips:       t.TotalTrips(),
		LoyaltyPoints:    t.LoyaltyPoints(),
		MembershipTier:   string(t.MembershipTier()),
		History:          history,
		CreatedAt:        t.CreatedAt(),
		UpdatedAt:        t.UpdatedAt(),
	}
}
