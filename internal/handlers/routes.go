package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers all routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/sync", h.TriggerSync)
		api.POST("/sync/accounts/:id", h.TriggerAccountSync)
		api.GET("/sync/logs", h.GetSyncLogs)

		api.GET("/emails", h.GetEmails)
		api.GET("/accounts", h.GetAccounts)

		api.GET("/scheduler/status", h.SchedulerStatus)
		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
	}
}
