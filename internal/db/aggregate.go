package db

import "time"

// 以下类型是统计查询的行结构，由 SQLite 直接聚合得到

// DayCount 某一天所有习惯的打卡总数
type DayCount struct {
	Date  time.Time
	Count int
}

// HabitActionCount 习惯的首次打卡日与打卡总数
// FirstDay 为 nil 表示还没有任何打卡
type HabitActionCount struct {
	Habit       Habit
	FirstDay    *time.Time
	ActionCount int
}

// HabitTopDay 习惯打卡最多的星期几
type HabitTopDay struct {
	Habit       Habit
	Weekday     time.Weekday
	ActionCount int
}

// ActionCountByWeek 按周统计；Year/Week 以周四所在年份为准
type ActionCountByWeek struct {
	Year        int
	Week        int
	ActionCount int
}

// ActionCountByMonth 按月统计
type ActionCountByMonth struct {
	Year        int
	Month       time.Month
	ActionCount int
}
