package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/handler"
)

const defaultSessionSecret = "habitlog-dev-secret"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(sessionSecret string, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	secret := strings.TrimSpace(sessionSecret)
	if secret == "" {
		secret = defaultSessionSecret
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("habitlog_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	apiGroup.Use(api.LocaleMiddleware())
	{
		apiGroup.POST("/login", api.Login)
		apiGroup.POST("/logout", api.Logout)

		// 需要认证的路由
		auth := apiGroup.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.GetDashboard)
			auth.GET("/dashboard/stream", api.StreamDashboard)

			auth.GET("/habits", api.ListHabits)
			auth.POST("/habits", api.CreateHabit)
			auth.GET("/habits/archived", api.ListArchivedHabits)
			auth.POST("/habits/move", api.MoveHabit)
			auth.GET("/habits/:id", api.GetHabit)
			auth.PUT("/habits/:id", api.UpdateHabit)
			auth.DELETE("/habits/:id", api.DeleteHabit)
			auth.POST("/habits/:id/archive", api.ArchiveHabit)
			auth.POST("/habits/:id/unarchive", api.UnarchiveHabit)
			auth.POST("/habits/:id/actions/toggle", api.ToggleAction)

			auth.GET("/insights", api.GetInsights)
			auth.GET("/insights/heatmap", api.GetHeatmap)
			auth.GET("/insights/heatmap.png", api.GetHeatmapImage)
			auth.GET("/insights/top-habits", api.GetTopHabits)
			auth.GET("/insights/top-days", api.GetTopDays)

			auth.GET("/preferences", api.GetPreferences)
			auth.PUT("/preferences", api.UpdatePreferences)

			auth.GET("/telemetry/events", api.ListTelemetryEvents)
		}
	}

	return r
}
