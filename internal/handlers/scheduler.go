package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SchedulerStatus returns the scheduler state
func (h *Handlers) SchedulerStatus(c *gin.Context) {
	status := gin.H{"running": h.scheduler.IsRunning()}
	if h.scheduler.IsRunning() {
		status["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
		status["last_run"] = h.scheduler.GetLastRun().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, status)
}

// StartScheduler starts the scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "scheduler_error",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopScheduler stops the scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scheduler_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
