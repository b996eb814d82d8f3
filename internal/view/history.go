package view

import (
	"slices"
	"time"

	"github.com/habitlog/internal/db"
)

// DefaultWindowSize is the number of recent days shown on a dashboard card.
const DefaultWindowSize = 7

// DayAction is one slot of the recent-history window.
// ActionID is 0 and Timestamp nil when the day has no action.
type DayAction struct {
	ActionID  uint
	Toggled   bool
	Timestamp *time.Time
	Date      time.Time
}

// HabitWithActions is the dashboard view of a habit.
type HabitWithActions struct {
	Habit            db.Habit
	Actions          []DayAction
	TotalActionCount int
	Streak           Streak
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date, each in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween counts calendar days from a to b, ignoring time of day and DST shifts.
func DaysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecentHistory lays out the last n days ending today, oldest first.
// Day boundaries follow today's location. When a day has several actions the
// latest one fills the slot.
func RecentHistory(actions []db.Action, today time.Time, n int) []DayAction {
	if n <= 0 {
		n = DefaultWindowSize
	}

	loc := today.Location()
	sorted := slices.Clone(actions)
	slices.SortStableFunc(sorted, func(a, b db.Action) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	lastDay := DateOf(today)
	slots := make([]DayAction, 0, n)
	for i := n - 1; i >= 0; i-- {
		target := lastDay.AddDate(0, 0, -i)
		slot := DayAction{Date: target}
		for _, action := range sorted {
			if SameDay(action.Timestamp.In(loc), target) {
				ts := action.Timestamp
				slot = DayAction{ActionID: action.ID, Toggled: true, Timestamp: &ts, Date: target}
				break
			}
		}
		slots = append(slots, slot)
	}

	return slots
}

// MapHabitsWithActions builds dashboard cards, keeping the input order.
func MapHabitsWithActions(entities []db.HabitWithActions, today time.Time, n int) []HabitWithActions {
	items := make([]HabitWithActions, 0, len(entities))
	for _, entity := range entities {
		items = append(items, HabitWithActions{
			Habit:            entity.Habit,
			Actions:          RecentHistory(entity.Actions, today, n),
			TotalActionCount: len(entity.Actions),
			Streak:           ActionsToStreak(entity.Actions, today),
		})
	}
	return items
}

// HabitsEqual compares two dashboard lists by value. Timestamps are compared
// as instants so rows reloaded from the database compare equal.
func HabitsEqual(a, b []HabitWithActions) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !habitEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func habitEqual(a, b HabitWithActions) bool {
	if a.TotalActionCount != b.TotalActionCount || a.Streak != b.Streak {
		return false
	}
	ha, hb := a.Habit, b.Habit
	if ha.ID != hb.ID || ha.Name != hb.Name || ha.Color != hb.Color || ha.Order != hb.Order ||
		ha.Archived != hb.Archived || ha.Notes != hb.Notes {
		return false
	}
	return slices.EqualFunc(a.Actions, b.Actions, func(x, y DayAction) bool {
		if x.ActionID != y.ActionID || x.Toggled != y.Toggled || !x.Date.Equal(y.Date) {
			return false
		}
		if x.Timestamp == nil || y.Timestamp == nil {
			return x.Timestamp == nil && y.Timestamp == nil
		}
		return x.Timestamp.Equal(*y.Timestamp)
	})
}
