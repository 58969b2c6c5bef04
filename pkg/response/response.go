package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/holy-travels/service-booking/pkg/domain"
)

// Success writes a 200 response with the standard success envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 response with the standard success envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// BadRequest writes a 400 response with a validation error envelope.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, domain.CodeValidation, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	writeError(c, http.StatusUnauthorized, domain.CodeUnauthorized, message)
}

// Error maps an application error to an HTTP status and writes the
// standard error envelope. Unrecognized errors become an opaque 500.
func Error(c *gin.Context, err error) {
	var appErr *domain.Error
	if !errors.As(err, &appErr) {
		writeError(c, http.StatusInternalServerError, domain.CodeInternal, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case domain.CodeValidation, domain.CodeInvalidState, domain.CodeInventory, domain.CodePaymentVerification:
		status = http.StatusBadRequest
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodeForbidden:
		status = http.StatusForbidden
	case domain.CodeUnauthorized:
		status = http.StatusUnauthorized
	case domain.CodeConflict:
		status = http.StatusConflict
	}

	writeError(c, status, appErr.Code, appErr.Message)
}

func writeError(c *gin.Context, status int, code domain.ErrorCode, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
