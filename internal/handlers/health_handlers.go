package handlers

import (
	"net/http"
	"time"

	"imeitrack/internal/repositories"

	"github.com/labstack/echo/v4"
)

type HealthHandlers struct {
	db repositories.DBTX
}

func NewHealthHandlers(db repositories.DBTX) *HealthHandlers {
	return &HealthHandlers{db: db}
}

func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready answers 503 until the database accepts queries.
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.db.Exec(ctx, "SELECT 1"); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}
