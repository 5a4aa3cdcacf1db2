package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"imeitrack/internal/models"
)

type contextKey string

const (
	ActorKey contextKey = "actor"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendDomainError maps a domain error to its HTTP representation. Unknown
// errors become a generic 500 so internals never leak to the client.
func SendDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	case errors.Is(err, ErrInvalidState):
		return c.JSON(http.StatusConflict, CreateErrorResponse("INVALID_STATE", err.Error(), nil))
	case errors.Is(err, ErrInvalidRole):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("INVALID_ROLE", err.Error(), nil))
	case errors.Is(err, ErrWrongLocation):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("WRONG_LOCATION", err.Error(), nil))
	case errors.Is(err, ErrDeletionBlocked):
		return c.JSON(http.StatusConflict, CreateErrorResponse("DELETION_BLOCKED", err.Error(), nil))
	case errors.Is(err, ErrDuplicateKey):
		return c.JSON(http.StatusConflict, CreateErrorResponse("DUPLICATE_KEY", err.Error(), nil))
	case errors.Is(err, ErrReauthRequired):
		return c.JSON(http.StatusUnauthorized, CreateErrorResponse("REAUTH_REQUIRED", err.Error(), nil))
	case errors.Is(err, ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, CreateErrorResponse("INVALID_CREDENTIALS", err.Error(), nil))
	}
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "operation could not be completed", nil))
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %v", fieldName, err)
	}
	return id, nil
}

// ValidateIMEI validates the shape of an IMEI: 14-16 digits. The usual form
// is 15 digits; 14 (no check digit) and 16 (IMEISV) appear on invoices.
func ValidateIMEI(imei string) error {
	imei = strings.TrimSpace(imei)
	if len(imei) < 14 || len(imei) > 16 {
		return fmt.Errorf("imei must be 14-16 digits, got %d characters", len(imei))
	}
	for _, r := range imei {
		if r < '0' || r > '9' {
			return fmt.Errorf("imei must contain only digits")
		}
	}
	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// WithActor stores the acting identity in the request context.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActorFromContext extracts the acting identity from the request context.
func GetActorFromContext(ctx context.Context) (*models.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(*models.Actor)
	return actor, ok
}
