package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/habitlog/internal/db"
)

// HeatmapBucketCount is the number of intensity levels, bucket 0 meaning no activity.
const HeatmapBucketCount = 5

const dateKeyFormat = "2006-01-02"

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the month containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "2006-01".
func ParseYearMonth(raw string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q: %w", raw, err)
	}
	return YearMonthOf(t), nil
}

// FirstDay is midnight of the 1st in loc.
func (ym YearMonth) FirstDay(loc *time.Location) time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
}

// LastDay is midnight of the last day of the month in loc.
func (ym YearMonth) LastDay(loc *time.Location) time.Time {
	return ym.FirstDay(loc).AddDate(0, 1, -1)
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return ym.LastDay(time.UTC).Day()
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	return YearMonthOf(ym.FirstDay(time.UTC).AddDate(0, 1, 0))
}

// Before reports whether ym is earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// BucketInfo carries the bucket and the raw value it was derived from.
type BucketInfo struct {
	BucketIndex int
	Value       int
}

// HeatmapMonth is a dense day map for one month, keyed by "2006-01-02".
type HeatmapMonth struct {
	Month           YearMonth
	DayMap          map[string]BucketInfo
	TotalHabitCount int
}

// BuildHeatmapMonth buckets per-day action sums for month.
// The scale tops out at the larger of totalHabitCount and the busiest day, so
// a day where every habit was done lands in the highest bucket.
func BuildHeatmapMonth(counts []db.DayCount, month YearMonth, totalHabitCount int) HeatmapMonth {
	values := make(map[int]int, len(counts))
	upper := max(totalHabitCount, 0)
	for _, c := range counts {
		if YearMonthOf(c.Date) != month {
			continue
		}
		values[c.Date.Day()] += c.Count
	}
	for _, v := range values {
		upper = max(upper, v)
	}

	dayMap := make(map[string]BucketInfo, month.Days())
	first := month.FirstDay(time.UTC)
	for day := 1; day <= month.Days(); day++ {
		value := values[day]
		key := first.AddDate(0, 0, day-1).Format(dateKeyFormat)
		dayMap[key] = BucketInfo{BucketIndex: BucketIndex(value, upper), Value: value}
	}

	return HeatmapMonth{Month: month, DayMap: dayMap, TotalHabitCount: totalHabitCount}
}

// BucketIndex maps value onto [0, HeatmapBucketCount-1]. Any positive value
// gets at least bucket 1.
func BucketIndex(value, upper int) int {
	if value <= 0 || upper <= 0 {
		return 0
	}
	levels := HeatmapBucketCount - 1
	idx := (value*levels + upper - 1) / upper
	return min(max(idx, 1), levels)
}

// DateKey formats t the way HeatmapMonth keys its days.
func DateKey(t time.Time) string {
	return t.Format(dateKeyFormat)
}
