package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/view"
)

// ErrHabitNameRequired 在名称为空时返回
var ErrHabitNameRequired = errors.New("habit name is required")

// HabitService 负责习惯的增删改查与详情统计
// 主要用于后台管理逻辑，保持与 handler 解耦
type HabitService struct {
	store *HabitStore
	now   func() time.Time
}

// HabitInput 定义创建/更新习惯时可配置字段
type HabitInput struct {
	Name  string
	Color string
	Notes string
}

// HabitDetails 是单个习惯的详情页数据
type HabitDetails struct {
	Habit          db.Habit
	NotesHTML      string
	Recent         []view.DayAction
	Streak         view.Streak
	Stats          view.GeneralHabitStats
	ActionsByWeek  []db.ActionCountByWeek
	ActionsByMonth []db.ActionCountByMonth
}

// NewHabitService 构造 HabitService
func NewHabitService(store *HabitStore) *HabitService {
	return &HabitService{store: store, now: time.Now}
}

// List 返回未归档习惯，按手动排序
func (s *HabitService) List(ctx context.Context) ([]db.Habit, error) {
	return s.list(ctx, false)
}

// ListArchived 返回已归档习惯
func (s *HabitService) ListArchived(ctx context.Context) ([]db.Habit, error) {
	return s.list(ctx, true)
}

func (s *HabitService) list(ctx context.Context, archived bool) ([]db.Habit, error) {
	var (
		entities []db.HabitWithActions
		err      error
	)
	if archived {
		entities, err = s.store.ArchivedHabitsWithActions(ctx)
	} else {
		entities, err = s.store.ActiveHabitsWithActions(ctx)
	}
	if err != nil {
		return nil, err
	}

	habits := make([]db.Habit, 0, len(entities))
	for _, entity := range entities {
		habits = append(habits, entity.Habit)
	}
	return habits, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(ctx context.Context, id uint) (*db.Habit, error) {
	return s.store.Habit(ctx, id)
}

// Create 新建习惯，排在列表最后
func (s *HabitService) Create(ctx context.Context, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	habit := db.Habit{
		Name:  strings.TrimSpace(input.Name),
		Color: db.ParseHabitColor(input.Color),
		Notes: strings.TrimSpace(input.Notes),
	}
	if err := s.store.CreateHabit(ctx, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// Update 更新名称、颜色与备注，不影响排序与归档状态
func (s *HabitService) Update(ctx context.Context, id uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	existing, err := s.store.Habit(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Color = db.ParseHabitColor(input.Color)
	existing.Notes = strings.TrimSpace(input.Notes)

	if err := s.store.UpdateHabit(ctx, existing); err != nil {
		return nil, err
	}
	return s.store.Habit(ctx, id)
}

// Archive 归档习惯，归档后不再出现在看板与统计中
func (s *HabitService) Archive(ctx context.Context, id uint) error {
	return s.store.SetArchived(ctx, id, true)
}

// Unarchive 恢复已归档的习惯
func (s *HabitService) Unarchive(ctx context.Context, id uint) error {
	return s.store.SetArchived(ctx, id, false)
}

// Delete 删除习惯，打卡记录一并删除
func (s *HabitService) Delete(ctx context.Context, id uint) error {
	return s.store.DeleteHabit(ctx, id)
}

// Details 汇总单个习惯的最近窗口、连胜状态、完成率与周/月统计
func (s *HabitService) Details(ctx context.Context, id uint, windowSize int) (*HabitDetails, error) {
	entity, err := s.store.HabitWithActions(ctx, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.store.HabitActionCount(ctx, id)
	if err != nil {
		return nil, err
	}

	byWeek, err := s.store.ActionCountByWeek(ctx, id)
	if err != nil {
		return nil, err
	}

	byMonth, err := s.store.ActionCountByMonth(ctx, id)
	if err != nil {
		return nil, err
	}

	notesHTML, err := view.RenderNotes(entity.Habit.Notes)
	if err != nil {
		return nil, fmt.Errorf("render notes: %w", err)
	}

	today := s.now()
	return &HabitDetails{
		Habit:          entity.Habit,
		NotesHTML:      notesHTML,
		Recent:         view.RecentHistory(entity.Actions, today, windowSize),
		Streak:         view.ActionsToStreak(entity.Actions, today),
		Stats:          view.HabitStats(counts, today),
		ActionsByWeek:  view.ActionCountsByWeek(byWeek),
		ActionsByMonth: view.ActionCountsByMonth(byMonth),
	}, nil
}

func validateHabitInput(input HabitInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrHabitNameRequired
	}
	return nil
}
