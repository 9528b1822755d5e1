package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Core error taxonomy. Callers wrap these with detail and match them with errors.Is.
var (
	ErrInvalidLoanTerms  = errors.New("invalid loan terms")
	ErrIneligibleForLoan = errors.New("ineligible for loan")
	ErrExistingLiveLoan  = errors.New("existing live loan")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrPaymentTimedOut   = errors.New("payment timed out")
	ErrTransport         = errors.New("transport error")
)

// AppError represents a custom application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common error constructors
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// StatusFor picks the HTTP status for an error returned by the services.
func StatusFor(err error) int {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Code
	case errors.Is(err, ErrInvalidLoanTerms):
		return http.StatusBadRequest
	case errors.Is(err, ErrIneligibleForLoan), errors.Is(err, ErrExistingLiveLoan):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPaymentFailed), errors.Is(err, ErrPaymentTimedOut):
		return http.StatusConflict
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError sends an appropriate HTTP response for an error
func HandleError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			c.JSON(status, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// HandleSuccess sends a success response
func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
