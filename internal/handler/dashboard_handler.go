package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/logger"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/view"
)

type toggleActionPayload struct {
	Date     string `json:"date"`
	Toggled  bool   `json:"toggled"`
	ActionID uint   `json:"action_id"`
}

type moveHabitPayload struct {
	FirstHabitID  uint `json:"first_habit_id" binding:"required"`
	SecondHabitID uint `json:"second_habit_id" binding:"required"`
}

func respondDashboard(c *gin.Context, result service.HabitListResult) {
	if result.Err != nil {
		logger.Error("failed to load dashboard", "error", result.Err)
		respondError(c, http.StatusInternalServerError, "获取看板失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": dashboardHabitsToPayload(result.Habits)})
}

// GetDashboard 重新查询并返回看板列表
func (a *API) GetDashboard(c *gin.Context) {
	respondDashboard(c, a.dashboard.Refresh(c.Request.Context()))
}

// StreamDashboard 以 SSE 推送看板快照（habits）与一次性错误事件（event）
func (a *API) StreamDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	updates, unsubscribe := a.dashboard.Subscribe(ctx)
	defer unsubscribe()
	events, stopEvents := a.dashboard.Events()
	defer stopEvents()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case result, ok := <-updates:
			if !ok {
				return false
			}
			if result.Err != nil {
				c.SSEvent("habits", gin.H{"error": "获取看板失败"})
				return true
			}
			c.SSEvent("habits", gin.H{"habits": dashboardHabitsToPayload(result.Habits)})
			return true
		case evt, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("event", dashboardEventToPayload(evt))
			return true
		}
	})
}

// ToggleAction 切换某天的打卡状态，date 为空时表示今天
func (a *API) ToggleAction(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload toggleActionPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}

	action := view.DayAction{ActionID: payload.ActionID, Toggled: payload.Toggled}
	if payload.Date != "" {
		day, err := parseLocalDate(payload.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "日期格式应为 YYYY-MM-DD")
			return
		}
		action.Date = day
	}

	if err := a.dashboard.ToggleAction(c.Request.Context(), habitID, action, action.Date); err != nil {
		if errors.Is(err, service.ErrHabitNotFound) {
			respondError(c, http.StatusNotFound, "习惯不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "打卡失败")
		return
	}

	respondDashboard(c, a.dashboard.Snapshot(c.Request.Context()))
}

// MoveHabit 把拖拽排序放入后台队列，立即返回 202
func (a *API) MoveHabit(c *gin.Context) {
	var payload moveHabitPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}

	err := a.dashboard.PersistItemMove(c.Request.Context(), service.ItemMoveEvent{
		FirstHabitID:  payload.FirstHabitID,
		SecondHabitID: payload.SecondHabitID,
	})
	if err != nil {
		if errors.Is(err, service.ErrDashboardClosed) {
			respondError(c, http.StatusServiceUnavailable, "服务正在关闭")
			return
		}
		respondError(c, http.StatusInternalServerError, "排序提交失败")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}
