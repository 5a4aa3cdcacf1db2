package handlers

import (
	"net/http"
	"time"

	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/services"

	"github.com/labstack/echo/v4"
)

type AuditLogsHandlers struct {
	auditService services.AuditLogsService
}

func NewAuditLogsHandlers(auditService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditService: auditService}
}

type ListAuditLogsRequest struct {
	Action    string `query:"action"`
	RecordID  string `query:"record_id"`
	ActorID   string `query:"actor_id"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	var req ListAuditLogsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(req.Limit, req.Offset)

	filters := &models.AuditLogFilters{
		Limit:  limit,
		Offset: offset,
	}
	if req.Action != "" {
		filters.Action = &req.Action
	}
	if req.RecordID != "" {
		filters.RecordID = &req.RecordID
	}
	if req.ActorID != "" {
		actorID, err := common.ValidateUUID(req.ActorID, "actor_id")
		if err != nil {
			return common.SendValidationError(c, "actor_id", err.Error())
		}
		filters.ActorID = &actorID
	}
	if req.StartDate != "" {
		start, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			return common.SendValidationError(c, "start_date", "must be RFC3339")
		}
		filters.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return common.SendValidationError(c, "end_date", "must be RFC3339")
		}
		filters.EndDate = &end
	}

	entries, err := h.auditService.ListAuditLogs(c.Request().Context(), filters)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetRecordHistory returns every audit entry touching one record, newest
// first. The record id is an IMEI, a transfer id or a product type id.
func (h *AuditLogsHandlers) GetRecordHistory(c echo.Context) error {
	recordID := c.Param("record_id")
	if err := common.ValidateRequiredString(recordID, "record_id"); err != nil {
		return common.SendValidationError(c, "record_id", err.Error())
	}

	limit, offset := common.ValidatePaginationParams(0, 0)
	entries, err := h.auditService.GetRecordHistory(c.Request().Context(), recordID, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}
