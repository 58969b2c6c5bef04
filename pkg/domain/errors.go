package domain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the category of an application error. Codes are
// part of the API contract: they appear verbatim in error responses.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeInvalidState        ErrorCode = "INVALID_STATE"
	CodeInventory           ErrorCode = "INSUFFICIENT_SEATS"
	CodePaymentVerification ErrorCode = "PAYMENT_VERIFICATION_FAILED"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error is a typed application error carrying an API-facing code.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsCode reports whether err is an application Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// NewValidationError creates an error for malformed or inconsistent input.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates an error for an absent entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewInvalidStateError creates an error for an illegal status transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInventoryError creates an error for insufficient seat inventory.
func NewInventoryError(message string) *Error {
	return &Error{Code: CodeInventory, Message: message}
}

// NewPaymentVerificationError creates an error for a failed payment signature check.
func NewPaymentVerificationError(message string) *Error {
	return &Error{Code: CodePaymentVerification, Message: message}
}

// NewConflictError creates an error for a concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NewForbiddenError creates an error for an action the caller may not perform.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewUnauthorizedError creates an error for a missing or invalid credential.
func NewUnauthorizedError(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}
