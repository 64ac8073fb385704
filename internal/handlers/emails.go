package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ideabox/internal/model"
)

// GetEmails returns the newest synced emails, analysis fields included.
func (h *Handlers) GetEmails(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var accountID uint
	if raw := c.Query("account_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid account ID", Code: http.StatusBadRequest})
			return
		}
		accountID = uint(parsed)
	}

	emails, err := h.repo.RecentEmails(c.Request.Context(), accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch emails",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, emails)
}

// GetAccounts returns all connected accounts
func (h *Handlers) GetAccounts(c *gin.Context) {
	var accounts []model.EmailAccount
	if err := h.db.Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch accounts",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, accounts)
}
