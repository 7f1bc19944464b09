package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/providers/storage"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

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
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(err),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, invoicedomain.ErrVersionConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "invoice was modified concurrently",
		}
	case errors.Is(err, invoicedomain.ErrResendInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "resend_in_progress",
			Message: "invoice is already being resent",
		}
	case errors.Is(err, invoicedomain.ErrAllocFailed):
		return http.StatusConflict, errorPayload{
			Type:    "alloc_failed",
			Message: "invoice number could not be allocated",
		}
	case errors.Is(err, invoicedomain.ErrRenderFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "render_failed",
			Message: "invoice document could not be rendered",
		}
	case errors.Is(err, invoicedomain.ErrArtifactURLInvalid),
		errors.Is(err, invoicedomain.ErrArtifactUploadFailed),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadGateway, errorPayload{
			Type:    "artifact_failed",
			Message: "invoice document could not be stored",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, pagination.ErrInvalidPageToken) ||
		invoicedomain.IsValidation(err)
}

// validationErrorCode returns the sentinel code, without the field suffix
// FieldError adds.
func validationErrorCode(err error) string {
	var fErr *invoicedomain.FieldError
	if errors.As(err, &fErr) {
		return fErr.Err.Error()
	}
	return err.Error()
}

func validationErrorField(err error) string {
	var fErr *invoicedomain.FieldError
	if errors.As(err, &fErr) {
		return fErr.Field
	}
	switch {
	case errors.Is(err, pagination.ErrInvalidPageToken):
		return "page_token"
	case errors.Is(err, invoicedomain.ErrInvalidInvoiceID):
		return "id"
	case errors.Is(err, invoicedomain.ErrInvalidStatus):
		return "status"
	case errors.Is(err, invoicedomain.ErrEmptyItems):
		return "items"
	}
	return "request"
}

func validationErrorMessage(code string) string {
	switch code {
	case invoicedomain.ErrMissingClientField.Error():
		return "required field is missing"
	case invoicedomain.ErrEmptyItems.Error():
		return "at least one line item is required"
	case invoicedomain.ErrBadNumber.Error():
		return "value must be a non-negative number"
	case invoicedomain.ErrMissingTaxID.Error():
		return "region code is required for domestic invoices"
	case invoicedomain.ErrInvalidEmail.Error():
		return "invalid email address"
	case invoicedomain.ErrInvalidDate.Error():
		return "date must use YYYY-MM-DD"
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog returns the error type and code logged with the request.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server", payload.Type
	default:
		return "client", payload.Type
	}
}
