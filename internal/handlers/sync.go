package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TriggerSync runs a sync pass over all active accounts and returns the
// aggregated counters.
func (h *Handlers) TriggerSync(c *gin.Context) {
	opts := h.syncOpts
	if c.Query("full") == "true" {
		opts.Full = true
	}

	totals, err := h.orchestrator.SyncAll(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "sync_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, totals)
}

// TriggerAccountSync runs a sync for a single account.
func (h *Handlers) TriggerAccountSync(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid account ID", Code: http.StatusBadRequest})
		return
	}

	account, err := h.repo.Account(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Account not found", Code: http.StatusNotFound})
		return
	}

	opts := h.syncOpts
	if c.Query("full") == "true" {
		opts.Full = true
	}

	result, err := h.orchestrator.SyncAccount(c.Request.Context(), account, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "sync_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSyncLogs returns the newest sync audit records.
func (h *Handlers) GetSyncLogs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	logs, err := h.repo.SyncLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch sync logs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, logs)
}
