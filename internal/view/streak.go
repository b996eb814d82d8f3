package view

import (
	"time"

	"github.com/habitlog/internal/db"
)

// StreakKind tags the streak state of a habit.
type StreakKind string

const (
	// StreakClean means the habit has no recorded day yet.
	StreakClean StreakKind = "clean"
	// StreakActive means consecutive days up to today, or up to yesterday while today is still open.
	StreakActive StreakKind = "streak"
	// StreakBroken means at least one full day was missed since the last action.
	StreakBroken StreakKind = "broken"
)

// Streak is the classified state. Days is the run length for StreakActive
// and the number of days since the last action for StreakBroken.
type Streak struct {
	Kind StreakKind
	Days int
}

// ClassifyWindow classifies the tail of an oldest-first window whose last slot is today.
func ClassifyWindow(slots []DayAction) Streak {
	toggled := make([]bool, len(slots))
	for i, slot := range slots {
		toggled[i] = slot.Toggled
	}
	return classify(toggled)
}

// ActionsToStreak applies the ClassifyWindow rule to the full action history.
// Actions dated after today are ignored.
func ActionsToStreak(actions []db.Action, today time.Time) Streak {
	loc := today.Location()
	days := make(map[time.Time]struct{}, len(actions))
	earliest := 0
	for _, action := range actions {
		offset := DaysBetween(action.Timestamp.In(loc), today)
		if offset < 0 {
			continue
		}
		days[civil(action.Timestamp.In(loc))] = struct{}{}
		if offset > earliest {
			earliest = offset
		}
	}
	if len(days) == 0 {
		return Streak{Kind: StreakClean}
	}

	// 从最早一天到今天展开成窗口，复用同一套判定
	toggled := make([]bool, earliest+1)
	end := civil(today)
	for i := range toggled {
		_, ok := days[end.AddDate(0, 0, -(earliest - i))]
		toggled[i] = ok
	}
	return classify(toggled)
}

func classify(toggled []bool) Streak {
	last := -1
	for i := len(toggled) - 1; i >= 0; i-- {
		if toggled[i] {
			last = i
			break
		}
	}
	if last < 0 {
		return Streak{Kind: StreakClean}
	}

	missed := len(toggled) - 1 - last
	if missed > 1 {
		return Streak{Kind: StreakBroken, Days: missed}
	}

	run := 0
	for i := last; i >= 0 && toggled[i]; i-- {
		run++
	}
	return Streak{Kind: StreakActive, Days: run}
}
