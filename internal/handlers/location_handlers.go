package handlers

import (
	"net/http"

	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/services"

	"github.com/labstack/echo/v4"
)

type LocationHandlers struct {
	catalogService services.CatalogService
}

func NewLocationHandlers(catalogService services.CatalogService) *LocationHandlers {
	return &LocationHandlers{catalogService: catalogService}
}

type LocationRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	location := &models.Location{
		Name:    req.Name,
		Address: req.Address,
	}
	if err := h.catalogService.CreateLocation(ctx, actor, location); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, location)
}

func (h *LocationHandlers) GetLocation(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	location, err := h.catalogService.GetLocation(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, location)
}

func (h *LocationHandlers) UpdateLocation(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	location, err := h.catalogService.GetLocation(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if req.Name != "" {
		location.Name = req.Name
	}
	if req.Address != nil {
		location.Address = req.Address
	}

	if err := h.catalogService.UpdateLocation(ctx, actor, location); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, location)
}

func (h *LocationHandlers) ListLocations(c echo.Context) error {
	locations, err := h.catalogService.ListLocations(c.Request().Context())
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"locations": locations,
	})
}
