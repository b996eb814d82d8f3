package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/logger"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/view"
)

type habitPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Notes string `json:"notes"`
}

func (p habitPayload) toInput() service.HabitInput {
	return service.HabitInput{Name: p.Name, Color: p.Color, Notes: p.Notes}
}

// ListHabits 返回未归档习惯
func (a *API) ListHabits(c *gin.Context) {
	habits, err := a.habits.List(c.Request.Context())
	if err != nil {
		logger.Error("failed to list habits", "error", err)
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items, "colors": view.ColorOptions()})
}

// ListArchivedHabits 返回已归档习惯
func (a *API) ListArchivedHabits(c *gin.Context) {
	habits, err := a.habits.ListArchived(c.Request.Context())
	if err != nil {
		logger.Error("failed to list archived habits", "error", err)
		respondError(c, http.StatusInternalServerError, "获取归档习惯失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情与统计
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	window := parseIntQuery(c, "window", a.dashboard.WindowSize())
	details, err := a.habits.Details(c.Request.Context(), id, window)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, habitDetailsToPayload(details))
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}

	habit, err := a.habits.Create(c.Request.Context(), payload.toInput())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	a.dashboard.Refresh(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"habit": habitToPayload(*habit)})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数错误") {
		return
	}

	habit, err := a.habits.Update(c.Request.Context(), id, payload.toInput())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	a.dashboard.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// DeleteHabit 删除习惯及其打卡
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Delete(c.Request.Context(), id); err != nil {
		handleHabitError(c, err)
		return
	}

	a.dashboard.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ArchiveHabit 归档习惯
func (a *API) ArchiveHabit(c *gin.Context) {
	a.setArchived(c, true)
}

// UnarchiveHabit 恢复归档的习惯
func (a *API) UnarchiveHabit(c *gin.Context) {
	a.setArchived(c, false)
}

func (a *API) setArchived(c *gin.Context, archived bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if archived {
		err = a.habits.Archive(c.Request.Context(), id)
	} else {
		err = a.habits.Unarchive(c.Request.Context(), id)
	}
	if err != nil {
		handleHabitError(c, err)
		return
	}

	a.dashboard.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"id": id, "archived": archived})
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitNameRequired):
		respondError(c, http.StatusBadRequest, "习惯名称不能为空")
	default:
		logger.Error("habit operation failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
