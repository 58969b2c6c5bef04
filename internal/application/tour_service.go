package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	tourDomain "github.com/holy-travels/service-booking/internal/domain/tour"
	"github.com/holy-travels/service-booking/pkg/domain"
	"go.uber.org/zap"
)

// CreateTourRequest holds the data for a new catalog listing.
type CreateTourRequest struct {
	Slug                 string `json:"slug" binding:"required"`
	Title                string `json:"title" binding:"required"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	DurationDays         int    `json:"duration_days" binding:"required,min=1"`
	PriceCents           int64  `json:"price_cents" binding:"required,min=1"`
	DiscountedPriceCents *int64 `json:"discounted_price_cents"`
	Currency             string `json:"currency"`
}

// UpdateTourRequest holds partial updates to a listing. Zero-valued
// fields are left unchanged.
type UpdateTourRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	DurationDays         int    `json:"duration_days"`
	PriceCents           int64  `json:"price_cents"`
	DiscountedPriceCents *int64 `json:"discounted_price_cents"`
}

// AddDepartureRequest schedules a departure day with a seat capacity.
type AddDepartureRequest struct {
	DepartsOn  time.Time `json:"departs_on" binding:"required"`
	TotalSeats int       `json:"total_seats" binding:"required,min=1"`
}

// TourDTO is the response representation of a tour listing.
type TourDTO struct {
	ID                   uuid.UUID `json:"id"`
	Slug                 string    `json:"slug"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	DurationDays         int       `json:"duration_days"`
	PriceCents           int64     `json:"price_cents"`
	DiscountedPriceCents *int64    `json:"discounted_price_cents,omitempty"`
	EffectivePriceCents  int64     `json:"effective_price_cents"`
	Currency             string    `json:"currency"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TourService is the application service for the tour catalog and its
// departure schedule.
type TourService struct {
	tours  tourDomain.TourRepository
	logger *zap.Logger
}

// NewTourService creates a new TourService.
func NewTourService(tours tourDomain.TourRepository, logger *zap.Logger) *TourService {
	return &TourService{tours: tours, logger: logger}
}

// CreateTour adds a new listing to the catalog.
func (s *TourService) CreateTour(ctx context.Context, req CreateTourRequest) (*TourDTO, error) {
	t, err := tourDomain.NewTour(
		req.Slug,
		req.Title,
		req.Description,
		req.Category,
		req.DurationDays,
		req.PriceCents,
		req.DiscountedPriceCents,
		req.Currency,
	)
	if err != nil {
		return nil, err
	}

	if err := s.tours.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save tour: %w", err)
	}

	s.logger.Info("tour created",
		zap.String("tour_id", t.ID().String()),
		zap.String("slug", t.Slug()),
	)

	result := toTourDTO(t)
	return &result, nil
}

// UpdateTour applies partial updates to a listing.
func (s *TourService) UpdateTour(ctx context.Context, tourID uuid.UUID, req UpdateTourRequest) (*TourDTO, error) {
	t, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if req.PriceCents > 0 && req.DiscountedPriceCents != nil && *req.DiscountedPriceCents >= req.PriceCents {
		return nil, domain.NewValidationError("discounted price must be below the base price")
	}

	t.Update(req.Title, req.Description, req.Category, req.DurationDays, req.PriceCents, req.DiscountedPriceCents)

	if err := s.tours.Update(ctx, t); err != nil {
		return nil, err
	}

	result := toTourDTO(t)
	return &result, nil
}

// ArchiveTour takes a listing off the catalog. Existing bookings are
// unaffected.
func (s *TourService) ArchiveTour(ctx context.Context, tourID uuid.UUID) error {
	t, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return err
	}

	t.Archive()
	if err := s.tours.Update(ctx, t); err != nil {
		return err
	}

	s.logger.Info("tour archived", zap.String("tour_id", tourID.String()))
	return nil
}

// AddDeparture schedules a departure day for a tour.
func (s *TourService) AddDeparture(ctx context.Context, tourID uuid.UUID, req AddDepartureRequest) (*tourDomain.Departure, error) {
	t, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	d, err := tourDomain.NewDeparture(t.ID(), req.DepartsOn, req.TotalSeats)
	if err != nil {
		return nil, err
	}

	if err := s.tours.AddDeparture(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetTour retrieves a tour by ID.
func (s *TourService) GetTour(ctx context.Context, tourID uuid.UUID) (*TourDTO, error) {
	t, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	result := toTourDTO(t)
	return &result, nil
}

// GetTourBySlug retrieves a tour by its URL slug.
func (s *TourService) GetTourBySlug(ctx context.Context, slug string) (*TourDTO, error) {
	t, err := s.tours.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	result := toTourDTO(t)
	return &result, nil
}

// ListTours retrieves active tours with optional category filter.
func (s *TourService) ListTours(ctx context.Context, category string, page, limit int) (*domain.PaginatedResult[TourDTO], error) {
	tours, total, err := s.tours.List(ctx, category, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}

	dtos := make([]TourDTO, len(tours))
	for i, t := range tours {
		dtos[i] = toTourDTO(t)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListDepartures retrieves a tour's upcoming departure days with their
// remaining seat counts.
func (s *TourService) ListDepartures(ctx context.Context, tourID uuid.UUID) ([]tourDomain.Departure, error) {
	if _, err := s.tours.FindByID(ctx, tourID); err != nil {
		return nil, err
	}
	today := tourDomain.TruncateToDay(time.Now().UTC())
	return s.tours.ListDepartures(ctx, tourID, today)
}

func toTourDTO(t *tourDomain.Tour) TourDTO {
	return TourDTO{
		ID:                   t.ID(),
		Slug:                 t.Slug(),
		Title:                t.Title(),
		Description:          t.Description(),
		Category:             t.Category(),
		DurationDays:         t.DurationDays(),
		PriceCents:           t.PriceCents(),
		DiscountedPriceCents: t.DiscountedPriceCents(),
		EffectivePriceCents:  t.EffectivePriceCents(),
		Currency:             t.Currency(),
		Status:               string(t.Status()),
		CreatedAt:            t.CreatedAt(),
		UpdatedAt:            t.UpdatedAt(),
	}
}
