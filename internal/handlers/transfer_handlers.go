package handlers

import (
	"net/http"

	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/services"

	"github.com/labstack/echo/v4"
)

// TransferHandlers exposes the transfer lifecycle endpoints.
type TransferHandlers struct {
	transferService services.TransferService
}

func NewTransferHandlers(transferService services.TransferService) *TransferHandlers {
	return &TransferHandlers{transferService: transferService}
}

type CreateTransferRequest struct {
	IMEIs            []string `json:"imeis"`
	TargetLocationID string   `json:"target_location_id"`
}

func (h *TransferHandlers) CreateTransfer(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateTransferRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.IMEIs) == 0 {
		return common.SendValidationError(c, "imeis", "at least one IMEI is required")
	}
	targetLocationID, err := common.ValidateUUID(req.TargetLocationID, "target_location_id")
	if err != nil {
		return common.SendValidationError(c, "target_location_id", err.Error())
	}

	transfer, err := h.transferService.Create(ctx, actor, req.IMEIs, targetLocationID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, transfer)
}

type ConfirmTransferRequest struct {
	Stage string `json:"stage"`
}

// ConfirmTransfer applies one confirmation stage ("admin" or "destination").
func (h *TransferHandlers) ConfirmTransfer(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req ConfirmTransferRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Stage != services.StageAdmin && req.Stage != services.StageDestination {
		return common.SendValidationError(c, "stage", "stage must be admin or destination")
	}

	transfer, err := h.transferService.Confirm(ctx, actor, id, req.Stage)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, transfer)
}

func (h *TransferHandlers) CancelTransfer(c echo.Context) error {
	ctx := c.Request().Context()
	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	transfer, err := h.transferService.Cancel(ctx, actor, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, transfer)
}

func (h *TransferHandlers) GetTransfer(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	transfer, err := h.transferService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, transfer)
}

// GetTransferReport returns the current report as plain text.
func (h *TransferHandlers) GetTransferReport(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	transfer, err := h.transferService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.String(http.StatusOK, transfer.ReportText)
}

type ListTransfersRequest struct {
	State            string `query:"state"`
	TargetLocationID string `query:"target_location_id"`
	Limit            int    `query:"limit"`
	Offset           int    `query:"offset"`
}

func (h *TransferHandlers) ListTransfers(c echo.Context) error {
	var req ListTransfersRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(req.Limit, req.Offset)

	filters := &models.TransferFilters{
		Limit:  limit,
		Offset: offset,
	}
	if req.State != "" {
		state := models.TransferState(req.State)
		filters.State = &state
	}
	if req.TargetLocationID != "" {
		id, err := common.ValidateUUID(req.TargetLocationID, "target_location_id")
		if err != nil {
			return common.SendValidationError(c, "target_location_id", err.Error())
		}
		filters.TargetLocationID = &id
	}

	transfers, err := h.transferService.List(c.Request().Context(), filters)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transfers": transfers,
		"limit":     limit,
		"offset":    offset,
	})
}
