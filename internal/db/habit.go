package db

import (
	"strings"
	"time"
)

// HabitColor 是习惯卡片可选的颜色
type HabitColor string

const (
	HabitColorRed    HabitColor = "red"
	HabitColorGreen  HabitColor = "green"
	HabitColorBlue   HabitColor = "blue"
	HabitColorYellow HabitColor = "yellow"
)

// HabitColors 按展示顺序列出全部颜色
var HabitColors = []HabitColor{HabitColorRed, HabitColorGreen, HabitColorBlue, HabitColorYellow}

// ParseHabitColor 解析颜色，未知值回退到绿色
func ParseHabitColor(raw string) HabitColor {
	switch HabitColor(strings.ToLower(strings.TrimSpace(raw))) {
	case HabitColorRed:
		return HabitColorRed
	case HabitColorBlue:
		return HabitColorBlue
	case HabitColorYellow:
		return HabitColorYellow
	default:
		return HabitColorGreen
	}
}

// Habit 定义了习惯模型
// Order 为手动排序值，允许不连续、允许重复；拖拽排序只交换两条记录的值
// Archived 为软删除标记，Delete 才会真正删除记录（连带打卡）
// 没有使用 gorm.Model：习惯不需要 DeletedAt，否则原生 SQL 统计要处处过滤
type Habit struct {
	ID        uint       `gorm:"primarykey"`
	Name      string     `gorm:"not null"`
	Color     HabitColor `gorm:"size:16;not null;default:green"`
	Order     int        `gorm:"column:sort_order;index;not null;default:0"`
	Archived  bool       `gorm:"index;not null;default:false"`
	Notes     string     `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Action 记录一次习惯完成
// Timestamp 按本地时区换算出唯一的自然日；同一天可能存在多条记录
// 记录一旦写入不再修改，取消打卡直接删除
type Action struct {
	ID        uint      `gorm:"primarykey"`
	HabitID   uint      `gorm:"index;not null"`
	Habit     Habit     `gorm:"constraint:OnDelete:CASCADE"`
	Timestamp time.Time `gorm:"index;not null"`
}

// HabitWithActions 聚合单个习惯及其全部打卡
type HabitWithActions struct {
	Habit   Habit
	Actions []Action
}

// TableName 固定习惯表名
func (Habit) TableName() string {
	return "habits"
}

// TableName 固定打卡表名，原生 SQL 统计依赖它
func (Action) TableName() string {
	return "actions"
}
