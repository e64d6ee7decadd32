package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation  = "https://fortuna.app/errors/validation"
	ErrorTypeNotFound    = "https://fortuna.app/errors/not-found"
	ErrorTypeUnavailable = "https://fortuna.app/errors/unavailable"
	ErrorTypeInternal    = "https://fortuna.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnavailableError creates a service unavailable error response
func NewUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// badInput maps sentinel input errors to the request field they concern
var badInput = []struct {
	err   error
	field string
}{
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrInvalidType, "type"},
	{domain.ErrCategoryRequired, "category"},
	{domain.ErrInvalidTransfer, "toCompany"},
	{domain.ErrInvalidPeriodType, "period"},
	{domain.ErrInvalidPeriodIndex, "index"},
	{domain.ErrInvalidWindow, "window"},
	{domain.ErrInvalidScope, "scope"},
	{domain.ErrInvalidInput, ""},
}

// respondError translates a service error into a problem response. Unexpected
// errors are logged and reported as 500 with a generic detail.
func respondError(c echo.Context, err error, workspaceID int32, action string) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return NewNotFoundError(c, "Snapshot not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	}

	for _, b := range badInput {
		if errors.Is(err, b.err) {
			var fields []ValidationError
			if b.field != "" {
				fields = []ValidationError{{Field: b.field, Message: err.Error()}}
			}
			return NewValidationError(c, err.Error(), fields)
		}
	}

	log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}
