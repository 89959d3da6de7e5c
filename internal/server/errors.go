package server

import (
	"errors"
	"net/http"

	conceptdomain "github.com/citylights/billing/internal/concept/domain"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	invoicedomain "github.com/citylights/billing/internal/invoice/domain"
	paymentdomain "github.com/citylights/billing/internal/payment/domain"
	payrolldomain "github.com/citylights/billing/internal/payroll/domain"
	"github.com/citylights/billing/internal/providers/directory"
	reportdomain "github.com/citylights/billing/internal/report/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

// ErrorHandlingMiddleware turns the last gin error into a JSON response.
// Handlers push domain errors with AbortWithError and never write error
// bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isUpstreamError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, conceptdomain.ErrInvalidKey),
		errors.Is(err, conceptdomain.ErrInvalidLabel),
		errors.Is(err, conceptdomain.ErrInvalidAmount),
		errors.Is(err, conceptdomain.ErrUnknownConcept),
		errors.Is(err, duesdomain.ErrInvalidResident),
		errors.Is(err, duesdomain.ErrInvalidPeriod),
		errors.Is(err, payrolldomain.ErrInvalidWorker),
		errors.Is(err, payrolldomain.ErrInvalidPeriod),
		errors.Is(err, payrolldomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidSession),
		errors.Is(err, reportdomain.ErrInvalidRange):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, conceptdomain.ErrDuplicateKey),
		errors.Is(err, duesdomain.ErrAlreadyPaid),
		errors.Is(err, payrolldomain.ErrAlreadyPaid),
		errors.Is(err, paymentdomain.ErrDuePaid),
		errors.Is(err, paymentdomain.ErrSessionUnpaid),
		errors.Is(err, invoicedomain.ErrNotPaid):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, conceptdomain.ErrNotFound),
		errors.Is(err, duesdomain.ErrNotFound),
		errors.Is(err, payrolldomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrSessionNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isUpstreamError(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrProvider),
		errors.Is(err, directory.ErrUpstream):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) string {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "server_error"
	}
	return payload.Type
}
