package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/logger"
)

// ListTelemetryEvents 返回最近的非致命错误记录，limit 默认 50
func (a *API) ListTelemetryEvents(c *gin.Context) {
	events, err := a.telemetry.Recent(c.Request.Context(), parseIntQuery(c, "limit", 50))
	if err != nil {
		logger.Error("failed to list telemetry events", "error", err)
		respondError(c, http.StatusInternalServerError, "获取错误记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": telemetryEventsToPayload(events)})
}
