package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/internal/application"
	"github.com/holy-travels/service-booking/pkg/response"
)

// TourHandler handles public HTTP requests for the tour catalog.
type TourHandler struct {
	service *application.TourService
}

// NewTourHandler creates a new TourHandler.
func NewTourHandler(service *application.TourService) *TourHandler {
	return &TourHandler{service: service}
}

// RegisterRoutes registers public catalog routes. No authentication:
// browsing the catalog is open.
func (h *TourHandler) RegisterRoutes(r *gin.RouterGroup) {
	tours := r.Group("/api/v1/tours")
	{
		tours.GET("", h.ListTours)
		tours.GET("/:id", h.GetTour)
		tours.GET("/:id/departures", h.ListDepartures)
		tours.GET("/slug/:slug", h.GetTourBySlug)
	}
}

// ListTours handles GET /api/v1/tours.
func (h *TourHandler) ListTours(c *gin.Context) {
	page, limit := parsePagination(c)
	category := c.Query("category")

	result, err := h.service.ListTours(c.Request.Context(), category, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetTour handles GET /api/v1/tours/:id.
func (h *TourHandler) GetTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tour ID")
		return
	}

	result, err := h.service.GetTour(c.Request.Context(), tourID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetTourBySlug handles GET /api/v1/tours/slug/:slug.
func (h *TourHandler) GetTourBySlug(c *gin.Context) {
	result, err := h.service.GetTourBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListDepartures handles GET /api/v1/tours/:id/departures.
func (h *TourHandler) ListDepartures(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tour ID")
		return
	}

	departures, err := h.service.ListDepartures(c.Request.Context(), tourID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, departures)
}
