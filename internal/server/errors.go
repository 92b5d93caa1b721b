package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/klinikita/billing/internal/invoice/domain"
	prescriptiondomain "github.com/klinikita/billing/internal/prescription/domain"
	"gorm.io/gorm"
)

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrNotFound          = errors.New("not_found")
	ErrInvoiceNotSettled = errors.New("invoice_not_settled")
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts errors recorded on the context into the
// structured error body, so handlers never hand-roll failure responses.
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
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func newValidationError(field, code string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidRequest, field, code)
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	errorType, code := classifyError(err)
	switch errorType {
	case "validation_error":
		return http.StatusBadRequest, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: err.Error(),
		}
	case "not_found":
		return http.StatusNotFound, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: "not found",
		}
	case "conflict":
		return http.StatusConflict, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: err.Error(),
		}
	default:
		// Persistence and unexpected failures are reported without detail.
		return http.StatusInternalServerError, errorPayload{
			Type:    "persistence_error",
			Message: "internal server error",
		}
	}
}

// classifyError maps an error to its taxonomy type and stable code. It is
// shared with the request-logging middleware.
func classifyError(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, invoicedomain.ErrPatientRequired),
		errors.Is(err, invoicedomain.ErrEmptyItems),
		errors.Is(err, invoicedomain.ErrInvalidQuantity),
		errors.Is(err, invoicedomain.ErrInvalidPrice),
		errors.Is(err, invoicedomain.ErrInvalidKind),
		errors.Is(err, invoicedomain.ErrTotalMismatch):
		return "validation_error", rootCode(err)
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return "not_found", rootCode(err)
	case errors.Is(err, prescriptiondomain.ErrClaimConflict),
		errors.Is(err, invoicedomain.ErrPrescriptionGone),
		errors.Is(err, invoicedomain.ErrDuplicatePayment),
		errors.Is(err, ErrInvoiceNotSettled):
		return "conflict", rootCode(err)
	default:
		return "persistence_error", ""
	}
}

// rootCode returns the sentinel at the bottom of the wrap chain, which is the
// stable machine-readable code for the error family.
func rootCode(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
