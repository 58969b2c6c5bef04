package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/holy-travels/service-booking/internal/application"
	"github.com/holy-travels/service-booking/pkg/auth"
	"github.com/holy-travels/service-booking/pkg/middleware"
	"github.com/holy-travels/service-booking/pkg/response"
)

// TravellerHandler handles HTTP requests for traveller profiles.
type TravellerHandler struct {
	service *application.TravellerService
}

// NewTravellerHandler creates a new TravellerHandler.
func NewTravellerHandler(service *application.TravellerService) *TravellerHandler {
	return &TravellerHandler{service: service}
}

// RegisterRoutes registers traveller routes on the given router group.
func (h *TravellerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	travellers := r.Group("/api/v1/travellers")
	travellers.Use(middleware.AuthMiddleware(jwtManager))
	{
		travellers.GET("/me", h.GetMyProfile)
	}
}

// GetMyProfile handles GET /api/v1/travellers/me.
func (h *TravellerHandler) GetMyProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
