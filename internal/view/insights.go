package view

import (
	"cmp"
	"slices"
	"time"

	"github.com/habitlog/internal/db"
)

// TopHabitItem is one row of the "most successful habits" list.
type TopHabitItem struct {
	HabitID        uint
	Name           string
	Color          db.HabitColor
	FirstDay       time.Time
	ActionCount    int
	CompletionRate float64
}

// TopDayItem is the weekday a habit is most often done on.
type TopDayItem struct {
	HabitID     uint
	Name        string
	Color       db.HabitColor
	Weekday     time.Weekday
	ActionCount int
}

// GeneralHabitStats summarizes a single habit.
type GeneralHabitStats struct {
	FirstDay       *time.Time
	ActionCount    int
	CompletionRate float64
}

// CompletionRate divides count by the days elapsed since firstDay. The
// denominator is at least 1, so a habit started today is not a division by zero.
func CompletionRate(count int, firstDay, today time.Time) float64 {
	if count <= 0 {
		return 0
	}
	days := max(DaysBetween(firstDay.In(today.Location()), today), 1)
	return float64(count) / float64(days)
}

// TopHabits keeps the query order and skips rows without a first day.
func TopHabits(rows []db.HabitActionCount, today time.Time) []TopHabitItem {
	items := make([]TopHabitItem, 0, len(rows))
	for _, row := range rows {
		if row.FirstDay == nil {
			continue
		}
		items = append(items, TopHabitItem{
			HabitID:        row.Habit.ID,
			Name:           row.Habit.Name,
			Color:          row.Habit.Color,
			FirstDay:       *row.FirstDay,
			ActionCount:    row.ActionCount,
			CompletionRate: CompletionRate(row.ActionCount, *row.FirstDay, today),
		})
	}
	return items
}

// HabitStats builds the general stats of one habit from its aggregate row.
func HabitStats(row db.HabitActionCount, today time.Time) GeneralHabitStats {
	stats := GeneralHabitStats{FirstDay: row.FirstDay, ActionCount: row.ActionCount}
	if row.FirstDay != nil {
		stats.CompletionRate = CompletionRate(row.ActionCount, *row.FirstDay, today)
	}
	return stats
}

// HabitTopDays maps weekday rows one to one.
func HabitTopDays(rows []db.HabitTopDay) []TopDayItem {
	items := make([]TopDayItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, TopDayItem{
			HabitID:     row.Habit.ID,
			Name:        row.Habit.Name,
			Color:       row.Habit.Color,
			Weekday:     row.Weekday,
			ActionCount: row.ActionCount,
		})
	}
	return items
}

// ActionCountsByWeek sorts weekly rows chronologically. Week numbers are
// taken as computed by the query and never recalculated here.
func ActionCountsByWeek(rows []db.ActionCountByWeek) []db.ActionCountByWeek {
	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b db.ActionCountByWeek) int {
		if diff := cmp.Compare(a.Year, b.Year); diff != 0 {
			return diff
		}
		return cmp.Compare(a.Week, b.Week)
	})
	return sorted
}

// ActionCountsByMonth sorts monthly rows and fills months without actions
// between the first and last row with zero counts.
func ActionCountsByMonth(rows []db.ActionCountByMonth) []db.ActionCountByMonth {
	if len(rows) == 0 {
		return []db.ActionCountByMonth{}
	}

	counts := make(map[YearMonth]int, len(rows))
	first := YearMonth{Year: rows[0].Year, Month: rows[0].Month}
	last := first
	for _, row := range rows {
		ym := YearMonth{Year: row.Year, Month: row.Month}
		counts[ym] += row.ActionCount
		if ym.Before(first) {
			first = ym
		}
		if last.Before(ym) {
			last = ym
		}
	}

	result := make([]db.ActionCountByMonth, 0, len(counts))
	for ym := first; !last.Before(ym); ym = ym.Next() {
		result = append(result, db.ActionCountByMonth{Year: ym.Year, Month: ym.Month, ActionCount: counts[ym]})
	}
	return result
}
