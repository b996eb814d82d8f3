package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/logger"
	"github.com/habitlog/internal/service"
)

type preferencesPayload struct {
	DashboardLayout  string `json:"dashboard_layout"`
	Language         string `json:"language"`
	TelemetryEnabled *bool  `json:"telemetry_enabled"`
}

// GetPreferences 返回当前偏好
func (a *API) GetPreferences(c *gin.Context) {
	prefs, err := a.preferences.Get(c.Request.Context())
	if err != nil {
		logger.Error("failed to load preferences", "error", err)
		respondError(c, http.StatusInternalServerError, "获取偏好设置失败")
		return
	}
	c.JSON(http.StatusOK, preferencesToPayload(prefs))
}

// UpdatePreferences 保存偏好，布局变化会同步到看板窗口
func (a *API) UpdatePreferences(c *gin.Context) {
	var payload preferencesPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}

	prefs, err := a.preferences.Update(c.Request.Context(), service.PreferencesInput{
		DashboardLayout:  payload.DashboardLayout,
		Language:         payload.Language,
		TelemetryEnabled: payload.TelemetryEnabled,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidLayout) {
			respondError(c, http.StatusBadRequest, "不支持的看板布局")
			return
		}
		logger.Error("failed to update preferences", "error", err)
		respondError(c, http.StatusInternalServerError, "保存偏好设置失败")
		return
	}

	a.dashboard.SetWindowSize(c.Request.Context(), prefs.DashboardLayout.WindowSize())
	c.JSON(http.StatusOK, preferencesToPayload(prefs))
}
