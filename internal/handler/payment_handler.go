package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/holy-travels/service-booking/internal/application"
	"github.com/holy-travels/service-booking/pkg/auth"
	"github.com/holy-travels/service-booking/pkg/middleware"
	"github.com/holy-travels/service-booking/pkg/response"
)

// PaymentHandler handles HTTP requests for payment verification.
type PaymentHandler struct {
	service *application.BookingService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.BookingService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	payments := r.Group("/api/v1/payments")
	payments.Use(middleware.AuthMiddleware(jwtManager))
	{
		payments.POST("/verify", h.VerifyPayment)
	}
}

// VerifyPayment handles POST /api/v1/payments/verify. The gateway
// checkout result is verified against its signature; on success the
// booking is confirmed.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req application.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.VerifyPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
