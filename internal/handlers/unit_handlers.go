package handlers

import (
	"net/http"

	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/services"

	"github.com/labstack/echo/v4"
)

// UnitHandlers exposes the IMEI-tracked unit operations.
type UnitHandlers struct {
	unitService services.UnitService
}

func NewUnitHandlers(unitService services.UnitService) *UnitHandlers {
	return &UnitHandlers{unitService: unitService}
}

type RegisterUnitRequest struct {
	IMEI          string   `json:"imei"`
	IMEI2         *string  `json:"imei2"`
	ProductTypeID string   `json:"product_type_id"`
	LocationID    string   `json:"location_id"`
	Status        string   `json:"status"`
	Memory        *string  `json:"memory"`
	Color         *string  `json:"color"`
	Supplier      *string  `json:"supplier"`
	PurchasePrice *float64 `json:"purchase_price"`
}

func (h *UnitHandlers) RegisterUnit(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req RegisterUnitRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateIMEI(req.IMEI); err != nil {
		return common.SendValidationError(c, "imei", err.Error())
	}
	productTypeID, err := common.ValidateUUID(req.ProductTypeID, "product_type_id")
	if err != nil {
		return common.SendValidationError(c, "product_type_id", err.Error())
	}
	locationID, err := common.ValidateUUID(req.LocationID, "location_id")
	if err != nil {
		return common.SendValidationError(c, "location_id", err.Error())
	}

	unit := &models.InventoryUnit{
		IMEI:          req.IMEI,
		IMEI2:         req.IMEI2,
		ProductTypeID: productTypeID,
		LocationID:    locationID,
		Status:        models.UnitStatus(req.Status),
		Memory:        req.Memory,
		Color:         req.Color,
		Supplier:      req.Supplier,
		PurchasePrice: req.PurchasePrice,
	}
	if err := h.unitService.Register(ctx, actor, unit); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, unit)
}

func (h *UnitHandlers) GetUnit(c echo.Context) error {
	imei := c.Param("imei")
	if err := common.ValidateIMEI(imei); err != nil {
		return common.SendValidationError(c, "imei", err.Error())
	}

	unit, err := h.unitService.GetByIMEI(c.Request().Context(), imei)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, unit)
}

type ListUnitsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *UnitHandlers) ListUnits(c echo.Context) error {
	var req ListUnitsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(req.Limit, req.Offset)

	units, err := h.unitService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units":  units,
		"limit":  limit,
		"offset": offset,
	})
}

type SearchUnitsRequest struct {
	Query         string `query:"q"`
	LocationID    string `query:"location_id"`
	ProductTypeID string `query:"product_type_id"`
	Status        string `query:"status"`
	Supplier      string `query:"supplier"`
	SortBy        string `query:"sort_by"`
	SortOrder     string `query:"sort_order"`
	Limit         int    `query:"limit"`
	Offset        int    `query:"offset"`
}

func (h *UnitHandlers) SearchUnits(c echo.Context) error {
	var req SearchUnitsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	filter := &models.UnitSearchFilter{
		Query:     req.Query,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	if req.LocationID != "" {
		id, err := common.ValidateUUID(req.LocationID, "location_id")
		if err != nil {
			return common.SendValidationError(c, "location_id", err.Error())
		}
		filter.LocationID = &id
	}
	if req.ProductTypeID != "" {
		id, err := common.ValidateUUID(req.ProductTypeID, "product_type_id")
		if err != nil {
			return common.SendValidationError(c, "product_type_id", err.Error())
		}
		filter.ProductTypeID = &id
	}
	if req.Status != "" {
		status := models.UnitStatus(req.Status)
		if !status.Valid() {
			return common.SendValidationError(c, "status", "unknown status")
		}
		filter.Status = &status
	}
	if req.Supplier != "" {
		filter.Supplier = &req.Supplier
	}

	units, err := h.unitService.Search(c.Request().Context(), filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units": units,
	})
}

type ChangeStatusRequest struct {
	IMEIs       []string `json:"imeis"`
	Status      string   `json:"status"`
	ReauthToken string   `json:"reauth_token"`
}

// ChangeStatus applies one status to a batch of units. Marking units lost
// requires a reauth_token from POST /auth/reauthenticate.
func (h *UnitHandlers) ChangeStatus(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.IMEIs) == 0 {
		return common.SendValidationError(c, "imeis", "at least one IMEI is required")
	}

	changes, err := h.unitService.ChangeStatus(ctx, actor, req.IMEIs, models.UnitStatus(req.Status), req.ReauthToken)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"changes": changes,
	})
}

type BulkDeleteRequest struct {
	IMEIs []string `json:"imeis"`
}

func (h *UnitHandlers) BulkDelete(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.IMEIs) == 0 {
		return common.SendValidationError(c, "imeis", "at least one IMEI is required")
	}

	if err := h.unitService.BulkDelete(ctx, actor, req.IMEIs); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": len(req.IMEIs),
	})
}

type ImportUnitsRequest struct {
	Records []services.UnitImportRecord `json:"records"`
}

func (h *UnitHandlers) ImportUnits(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ImportUnitsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.Records) == 0 {
		return common.SendValidationError(c, "records", "no records to import")
	}

	result, err := h.unitService.Import(ctx, actor, req.Records)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
