package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/internal/application"
	"github.com/holy-travels/service-booking/pkg/auth"
	"github.com/holy-travels/service-booking/pkg/middleware"
	"github.com/holy-travels/service-booking/pkg/response"
)

// AdminHandler handles admin HTTP requests: catalog management and
// booking oversight.
type AdminHandler struct {
	tourService    *application.TourService
	bookingService *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(tourService *application.TourService, bookingService *application.BookingService) *AdminHandler {
	return &AdminHandler{tourService: tourService, bookingService: bookingService}
}

// RegisterRoutes registers admin routes. Every route requires the admin role.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/tours", h.CreateTour)
		admin.PUT("/tours/:id", h.UpdateTour)
		admin.DELETE("/tours/:id", h.ArchiveTour)
		admin.POST("/tours/:id/departures", h.AddDeparture)
		admin.GET("/bookings", h.ListAllBookings)
		admin.GET("/stats/bookings", h.GetBookingStats)
	}
}

// CreateTour handles POST /api/v1/admin/tours.
func (h *AdminHandler) CreateTour(c *gin.Context) {
	var req application.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.tourService.CreateTour(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateTour handles PUT /api/v1/admin/tours/:id.
func (h *AdminHandler) UpdateTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tour ID")
		return
	}

	var req application.UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.tourService.UpdateTour(c.Request.Context(), tourID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ArchiveTour handles DELETE /api/v1/admin/tours/:id.
func (h *AdminHandler) ArchiveTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tour ID")
		return
	}

	if err := h.tourService.ArchiveTour(c.Request.Context(), tourID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"archived": true})
}

// AddDeparture handles POST /api/v1/admin/tours/:id/departures.
func (h *AdminHandler) AddDeparture(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tour ID")
		return
	}

	var req application.AddDepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.tourService.AddDeparture(c.Request.Context(), tourID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListAllBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListAllBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.bookingService.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// GetBookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) GetBookingStats(c *gin.Context) {
	stats, err := h.bookingService.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
