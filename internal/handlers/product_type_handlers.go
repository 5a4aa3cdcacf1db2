package handlers

import (
	"errors"
	"net/http"

	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/services"

	"github.com/labstack/echo/v4"
)

type ProductTypeHandlers struct {
	catalogService services.CatalogService
}

func NewProductTypeHandlers(catalogService services.CatalogService) *ProductTypeHandlers {
	return &ProductTypeHandlers{catalogService: catalogService}
}

type ProductTypeRequest struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	MinStock *int   `json:"min_stock"`
}

func (h *ProductTypeHandlers) CreateProductType(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ProductTypeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Brand, "brand"); err != nil {
		return common.SendValidationError(c, "brand", err.Error())
	}
	if err := common.ValidateRequiredString(req.Model, "model"); err != nil {
		return common.SendValidationError(c, "model", err.Error())
	}

	productType := &models.ProductType{
		Brand:    req.Brand,
		Model:    req.Model,
		MinStock: req.MinStock,
	}
	if err := h.catalogService.CreateProductType(ctx, actor, productType); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, productType)
}

func (h *ProductTypeHandlers) GetProductType(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	productType, err := h.catalogService.GetProductType(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, productType)
}

func (h *ProductTypeHandlers) UpdateProductType(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req ProductTypeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	productType, err := h.catalogService.GetProductType(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if req.Brand != "" {
		productType.Brand = req.Brand
	}
	if req.Model != "" {
		productType.Model = req.Model
	}
	if req.MinStock != nil {
		productType.MinStock = req.MinStock
	}

	if err := h.catalogService.UpdateProductType(ctx, actor, productType); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, productType)
}

func (h *ProductTypeHandlers) ListProductTypes(c echo.Context) error {
	productTypes, err := h.catalogService.ListProductTypes(c.Request().Context())
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"product_types": productTypes,
	})
}

// DeleteProductType resolves the three-way delete protocol. A clean delete
// answers 200, a blocked delete answers 409 with the dependents, and a
// delete that needs a reassignment decision answers 409 with the candidate
// replacement types.
func (h *ProductTypeHandlers) DeleteProductType(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	plan, err := h.catalogService.DeleteProductType(ctx, actor, id)
	if err != nil {
		if errors.Is(err, common.ErrDeletionBlocked) && plan != nil {
			return c.JSON(http.StatusConflict, plan)
		}
		return common.SendDomainError(c, err)
	}
	if plan.Deleted {
		return c.JSON(http.StatusOK, plan)
	}
	// Dependents exist and replacements are available; nothing was deleted.
	return c.JSON(http.StatusConflict, plan)
}

type ReassignAndDeleteRequest struct {
	ReplacementID string `json:"replacement_id"`
}

func (h *ProductTypeHandlers) ReassignAndDelete(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req ReassignAndDeleteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	replacementID, err := common.ValidateUUID(req.ReplacementID, "replacement_id")
	if err != nil {
		return common.SendValidationError(c, "replacement_id", err.Error())
	}

	if err := h.catalogService.ReassignAndDelete(ctx, actor, id, replacementID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Product type deleted, units reassigned",
	})
}
