package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
)

const storeDateFormat = "2006-01-02"

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitPairIncomplete 拖拽排序时两条习惯中至少一条不存在
	ErrHabitPairIncomplete = errors.New("habit pair incomplete")
)

// HabitStore 是习惯与打卡的持久化层
// 所有按天统计都交给 SQLite 完成，日期边界使用 'localtime'，与进程时区一致
// 时间比较统一经过 julianday()，避免不同时区偏移的字符串直接比较
type HabitStore struct {
	db *gorm.DB
}

// NewHabitStore 构造 HabitStore
func NewHabitStore(gdb *gorm.DB) *HabitStore {
	return &HabitStore{db: gdb}
}

// ActiveHabitsWithActions 返回未归档的习惯及其全部打卡，按手动排序
func (s *HabitStore) ActiveHabitsWithActions(ctx context.Context) ([]db.HabitWithActions, error) {
	return s.habitsWithActions(ctx, false)
}

// ArchivedHabitsWithActions 返回已归档的习惯
func (s *HabitStore) ArchivedHabitsWithActions(ctx context.Context) ([]db.HabitWithActions, error) {
	return s.habitsWithActions(ctx, true)
}

func (s *HabitStore) habitsWithActions(ctx context.Context, archived bool) ([]db.HabitWithActions, error) {
	var habits []db.Habit
	if err := s.db.WithContext(ctx).
		Where("archived = ?", archived).
		Order("sort_order ASC, id ASC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	if len(habits) == 0 {
		return []db.HabitWithActions{}, nil
	}

	ids := make([]uint, 0, len(habits))
	for _, habit := range habits {
		ids = append(ids, habit.ID)
	}

	var actions []db.Action
	if err := s.db.WithContext(ctx).
		Where("habit_id IN ?", ids).
		Order("julianday(timestamp) ASC, id ASC").
		Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}

	byHabit := make(map[uint][]db.Action, len(habits))
	for _, action := range actions {
		byHabit[action.HabitID] = append(byHabit[action.HabitID], action)
	}

	result := make([]db.HabitWithActions, 0, len(habits))
	for _, habit := range habits {
		result = append(result, db.HabitWithActions{Habit: habit, Actions: byHabit[habit.ID]})
	}
	return result, nil
}

// HabitWithActions 返回单个习惯及其打卡
func (s *HabitStore) HabitWithActions(ctx context.Context, id uint) (*db.HabitWithActions, error) {
	habit, err := s.Habit(ctx, id)
	if err != nil {
		return nil, err
	}

	var actions []db.Action
	if err := s.db.WithContext(ctx).
		Where("habit_id = ?", id).
		Order("julianday(timestamp) ASC, id ASC").
		Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("list habit actions: %w", err)
	}

	return &db.HabitWithActions{Habit: *habit, Actions: actions}, nil
}

// Habit 根据 ID 获取习惯
func (s *HabitStore) Habit(ctx context.Context, id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.WithContext(ctx).First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// HabitCount 统计未归档习惯数量
func (s *HabitStore) HabitCount(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Habit{}).Where("archived = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count habits: %w", err)
	}
	return int(count), nil
}

// CreateHabit 新建习惯，排序值排在现有习惯之后
func (s *HabitStore) CreateHabit(ctx context.Context, habit *db.Habit) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder struct{ MaxOrder *int }
		if err := tx.Model(&db.Habit{}).Select("MAX(sort_order) AS max_order").Scan(&maxOrder).Error; err != nil {
			return fmt.Errorf("load max order: %w", err)
		}
		habit.Order = 0
		if maxOrder.MaxOrder != nil {
			habit.Order = *maxOrder.MaxOrder + 1
		}
		if err := tx.Create(habit).Error; err != nil {
			return fmt.Errorf("create habit: %w", err)
		}
		return nil
	})
}

// UpdateHabit 保存名称、颜色、备注等可编辑字段
func (s *HabitStore) UpdateHabit(ctx context.Context, habit *db.Habit) error {
	result := s.db.WithContext(ctx).Model(&db.Habit{}).Where("id = ?", habit.ID).Updates(map[string]any{
		"name":  habit.Name,
		"color": habit.Color,
		"notes": habit.Notes,
	})
	if result.Error != nil {
		return fmt.Errorf("update habit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

// SetArchived 归档或恢复习惯
func (s *HabitStore) SetArchived(ctx context.Context, id uint, archived bool) error {
	result := s.db.WithContext(ctx).Model(&db.Habit{}).Where("id = ?", id).Update("archived", archived)
	if result.Error != nil {
		return fmt.Errorf("archive habit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

// DeleteHabit 删除习惯及其全部打卡
func (s *HabitStore) DeleteHabit(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&db.Action{}).Error; err != nil {
			return fmt.Errorf("delete habit actions: %w", err)
		}
		result := tx.Delete(&db.Habit{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete habit: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrHabitNotFound
		}
		return nil
	})
}

// InsertAction 写入一次打卡
func (s *HabitStore) InsertAction(ctx context.Context, action *db.Action) error {
	if err := s.db.WithContext(ctx).Omit("Habit").Create(action).Error; err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// DeleteAction 删除单条打卡
func (s *HabitStore) DeleteAction(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&db.Action{}, id).Error; err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	return nil
}

// DeleteActionsOnDay 删除习惯在某个本地自然日的全部打卡
func (s *HabitStore) DeleteActionsOnDay(ctx context.Context, habitID uint, day time.Time) error {
	if err := s.db.WithContext(ctx).
		Where("habit_id = ? AND date(timestamp, 'localtime') = ?", habitID, day.Format(storeDateFormat)).
		Delete(&db.Action{}).Error; err != nil {
		return fmt.Errorf("delete actions on day: %w", err)
	}
	return nil
}

// HasActionOnDay 判断习惯在某个本地自然日是否已有打卡
func (s *HabitStore) HasActionOnDay(ctx context.Context, habitID uint, day time.Time) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Action{}).
		Where("habit_id = ? AND date(timestamp, 'localtime') = ?", habitID, day.Format(storeDateFormat)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check action on day: %w", err)
	}
	return count > 0, nil
}

// ActionsAfter 返回不早于 after 的全部打卡
func (s *HabitStore) ActionsAfter(ctx context.Context, after time.Time) ([]db.Action, error) {
	var actions []db.Action
	if err := s.db.WithContext(ctx).
		Where("julianday(timestamp) >= julianday(?)", after).
		Order("julianday(timestamp) ASC, id ASC").
		Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("list actions after: %w", err)
	}
	return actions, nil
}

// HabitPair 读取拖拽排序涉及的两个习惯
func (s *HabitStore) HabitPair(ctx context.Context, id1, id2 uint) ([]db.Habit, error) {
	var habits []db.Habit
	if err := s.db.WithContext(ctx).Where("id IN ?", []uint{id1, id2}).Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("load habit pair: %w", err)
	}
	return habits, nil
}

// UpdateHabitOrders 在同一事务中写入两条排序值
func (s *HabitStore) UpdateHabitOrders(ctx context.Context, id1 uint, order1 int, id2 uint, order2 int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Habit{}).Where("id = ?", id1).Update("sort_order", order1).Error; err != nil {
			return fmt.Errorf("update order of habit %d: %w", id1, err)
		}
		if err := tx.Model(&db.Habit{}).Where("id = ?", id2).Update("sort_order", order2).Error; err != nil {
			return fmt.Errorf("update order of habit %d: %w", id2, err)
		}
		return nil
	})
}

type habitActionCountRow struct {
	HabitID     uint
	FirstDay    *string
	ActionCount int
}

// MostSuccessfulHabits 按打卡总数倒序返回习惯，没有打卡的习惯 FirstDay 为 nil
func (s *HabitStore) MostSuccessfulHabits(ctx context.Context, limit int) ([]db.HabitActionCount, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []habitActionCountRow
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			h.id AS habit_id,
			date(MIN(julianday(a.timestamp)), 'localtime') AS first_day,
			COUNT(a.id) AS action_count
		FROM habits h
		LEFT JOIN actions a ON a.habit_id = h.id
		WHERE h.archived = ?
		GROUP BY h.id
		ORDER BY action_count DESC, h.sort_order ASC, h.id ASC
		LIMIT ?`, false, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("most successful habits: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.HabitID)
	}
	habits, err := s.habitsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]db.HabitActionCount, 0, len(rows))
	for _, row := range rows {
		item := db.HabitActionCount{Habit: habits[row.HabitID], ActionCount: row.ActionCount}
		if row.FirstDay != nil {
			day, err := parseStoreDate(*row.FirstDay)
			if err != nil {
				return nil, err
			}
			item.FirstDay = &day
		}
		result = append(result, item)
	}
	return result, nil
}

// HabitActionCount 返回单个习惯的首次打卡日与打卡总数
func (s *HabitStore) HabitActionCount(ctx context.Context, habitID uint) (db.HabitActionCount, error) {
	habit, err := s.Habit(ctx, habitID)
	if err != nil {
		return db.HabitActionCount{}, err
	}

	var row habitActionCountRow
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			? AS habit_id,
			date(MIN(julianday(timestamp)), 'localtime') AS first_day,
			COUNT(id) AS action_count
		FROM actions
		WHERE habit_id = ?`, habitID, habitID).Scan(&row).Error; err != nil {
		return db.HabitActionCount{}, fmt.Errorf("habit action count: %w", err)
	}

	result := db.HabitActionCount{Habit: *habit, ActionCount: row.ActionCount}
	if row.FirstDay != nil {
		day, err := parseStoreDate(*row.FirstDay)
		if err != nil {
			return db.HabitActionCount{}, err
		}
		result.FirstDay = &day
	}
	return result, nil
}

// SumActionCountByDay 统计区间内（含首尾）每天全部习惯的打卡数
func (s *HabitStore) SumActionCountByDay(ctx context.Context, start, end time.Time) ([]db.DayCount, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end before start")
	}

	var rows []struct {
		Day         string
		ActionCount int
	}
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			date(timestamp, 'localtime') AS day,
			COUNT(*) AS action_count
		FROM actions
		WHERE date(timestamp, 'localtime') BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day ASC`, start.Format(storeDateFormat), end.Format(storeDateFormat)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sum action count by day: %w", err)
	}

	result := make([]db.DayCount, 0, len(rows))
	for _, row := range rows {
		day, err := parseStoreDate(row.Day)
		if err != nil {
			return nil, err
		}
		result = append(result, db.DayCount{Date: day, Count: row.ActionCount})
	}
	return result, nil
}

// TopDayForHabits 返回每个习惯打卡最多的星期几
// 依赖 SQLite 的 MAX() 聚合会带出同一行其它列的行为
func (s *HabitStore) TopDayForHabits(ctx context.Context) ([]db.HabitTopDay, error) {
	var rows []struct {
		HabitID     uint
		Weekday     int
		ActionCount int
	}
	if err := s.db.WithContext(ctx).Raw(`
		SELECT habit_id, weekday, MAX(action_count) AS action_count
		FROM (
			SELECT
				a.habit_id AS habit_id,
				CAST(strftime('%w', a.timestamp, 'localtime') AS INTEGER) AS weekday,
				COUNT(*) AS action_count
			FROM actions a
			JOIN habits h ON h.id = a.habit_id
			WHERE h.archived = ?
			GROUP BY a.habit_id, weekday
		)
		GROUP BY habit_id
		ORDER BY action_count DESC, habit_id ASC`, false).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("top day for habits: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.HabitID)
	}
	habits, err := s.habitsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]db.HabitTopDay, 0, len(rows))
	for _, row := range rows {
		result = append(result, db.HabitTopDay{
			Habit:       habits[row.HabitID],
			Weekday:     time.Weekday(row.Weekday),
			ActionCount: row.ActionCount,
		})
	}
	return result, nil
}

// ActionCountByMonth 按本地月份统计单个习惯的打卡数
func (s *HabitStore) ActionCountByMonth(ctx context.Context, habitID uint) ([]db.ActionCountByMonth, error) {
	var rows []struct {
		Year        int
		Month       int
		ActionCount int
	}
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			CAST(strftime('%Y', timestamp, 'localtime') AS INTEGER) AS year,
			CAST(strftime('%m', timestamp, 'localtime') AS INTEGER) AS month,
			COUNT(*) AS action_count
		FROM actions
		WHERE habit_id = ?
		GROUP BY year, month`, habitID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("action count by month: %w", err)
	}

	result := make([]db.ActionCountByMonth, 0, len(rows))
	for _, row := range rows {
		result = append(result, db.ActionCountByMonth{Year: row.Year, Month: time.Month(row.Month), ActionCount: row.ActionCount})
	}
	return result, nil
}

// ActionCountByWeek 按周统计单个习惯的打卡数
// 一周归属于其周四所在的年份：先回退 3 天再前进到周四，再按年内第几天折算周序号
func (s *HabitStore) ActionCountByWeek(ctx context.Context, habitID uint) ([]db.ActionCountByWeek, error) {
	var rows []struct {
		Year        int
		Week        int
		ActionCount int
	}
	if err := s.db.WithContext(ctx).Raw(`
		SELECT
			CAST(strftime('%Y', date(timestamp, 'localtime', '-3 days', 'weekday 4')) AS INTEGER) AS year,
			(CAST(strftime('%j', date(timestamp, 'localtime', '-3 days', 'weekday 4')) AS INTEGER) - 1) / 7 + 1 AS week,
			COUNT(*) AS action_count
		FROM actions
		WHERE habit_id = ?
		GROUP BY year, week`, habitID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("action count by week: %w", err)
	}

	result := make([]db.ActionCountByWeek, 0, len(rows))
	for _, row := range rows {
		result = append(result, db.ActionCountByWeek{Year: row.Year, Week: row.Week, ActionCount: row.ActionCount})
	}
	return result, nil
}

func (s *HabitStore) habitsByID(ctx context.Context, ids []uint) (map[uint]db.Habit, error) {
	result := make(map[uint]db.Habit, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var habits []db.Habit
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("load habits: %w", err)
	}
	for _, habit := range habits {
		result[habit.ID] = habit
	}
	return result, nil
}

func parseStoreDate(raw string) (time.Time, error) {
	day, err := time.ParseInLocation(storeDateFormat, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return day, nil
}
