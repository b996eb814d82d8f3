package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/logger"
	"github.com/habitlog/internal/view"
)

func (a *API) resolveMonth(c *gin.Context) (view.YearMonth, bool) {
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" {
		return a.insights.CurrentMonth(), true
	}
	month, err := view.ParseYearMonth(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "月份格式应为 YYYY-MM")
		return view.YearMonth{}, false
	}
	return month, true
}

// GetInsights 返回统计页全部数据
func (a *API) GetInsights(c *gin.Context) {
	month, ok := a.resolveMonth(c)
	if !ok {
		return
	}

	overview, err := a.insights.Overview(c.Request.Context(), month)
	if err != nil {
		logger.Error("failed to load insights", "month", month.String(), "error", err)
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}

	language := a.requestLocale(c).Language
	c.JSON(http.StatusOK, gin.H{
		"heatmap":    heatmapToPayload(overview.Heatmap),
		"top_habits": topHabitsToPayload(overview.TopHabits),
		"top_days":   topDaysToPayload(overview.TopDays, language),
	})
}

// GetHeatmap 返回某月热力图
func (a *API) GetHeatmap(c *gin.Context) {
	month, ok := a.resolveMonth(c)
	if !ok {
		return
	}

	hm, err := a.insights.Heatmap(c.Request.Context(), month)
	if err != nil {
		logger.Error("failed to load heatmap", "month", month.String(), "error", err)
		respondError(c, http.StatusInternalServerError, "获取热力图数据失败")
		return
	}

	c.JSON(http.StatusOK, heatmapToPayload(hm))
}

// GetHeatmapImage 以 PNG 输出某月热力图，color 参数决定色调
func (a *API) GetHeatmapImage(c *gin.Context) {
	month, ok := a.resolveMonth(c)
	if !ok {
		return
	}

	hm, err := a.insights.Heatmap(c.Request.Context(), month)
	if err != nil {
		logger.Error("failed to load heatmap", "month", month.String(), "error", err)
		respondError(c, http.StatusInternalServerError, "获取热力图数据失败")
		return
	}

	var buf bytes.Buffer
	if err := view.RenderHeatmapPNG(&buf, hm, db.ParseHabitColor(c.Query("color"))); err != nil {
		logger.Error("failed to render heatmap", "error", err)
		respondError(c, http.StatusInternalServerError, "生成热力图失败")
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetTopHabits 返回打卡最多的习惯
func (a *API) GetTopHabits(c *gin.Context) {
	items, err := a.insights.TopHabits(c.Request.Context(), parseIntQuery(c, "limit", 0))
	if err != nil {
		logger.Error("failed to load top habits", "error", err)
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": topHabitsToPayload(items)})
}

// GetTopDays 返回每个习惯最常打卡的星期，星期名称按请求语言输出
func (a *API) GetTopDays(c *gin.Context) {
	items, err := a.insights.TopDays(c.Request.Context())
	if err != nil {
		logger.Error("failed to load top days", "error", err)
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": topDaysToPayload(items, a.requestLocale(c).Language)})
}
