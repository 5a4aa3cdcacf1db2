package handlers

import (
	"net/http"

	"imeitrack/internal/common"
	"imeitrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return common.SendValidationError(c, "password", err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	LocationID *string `json:"location_id"`
}

// Register creates a new user account. Admin only.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	var locationID *uuid.UUID
	if req.LocationID != nil {
		id, err := common.ValidateUUID(*req.LocationID, "location_id")
		if err != nil {
			return common.SendValidationError(c, "location_id", err.Error())
		}
		locationID = &id
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name, req.Role, locationID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

type ReauthRequest struct {
	Password string `json:"password"`
}

// Reauthenticate re-proves the current user's password and returns a
// short-lived single-use token for destructive bulk operations.
func (h *AuthHandlers) Reauthenticate(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ReauthRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return common.SendValidationError(c, "password", err.Error())
	}

	token, err := h.authService.Reauthenticate(ctx, actor, req.Password)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reauth_token": token,
		"expires_in":   int(services.ReauthTokenTTL.Seconds()),
	})
}
