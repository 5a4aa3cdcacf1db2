package handlers

import (
	"net/http"

	"imeitrack/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

type JobHandlers struct {
	scheduler *background.JobScheduler
}

func NewJobHandlers(scheduler *background.JobScheduler) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// GetJobStatus reports the background jobs the scheduler is running.
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}
