package view

import (
	"testing"
	"time"

	"github.com/habitlog/internal/db"
)

func TestRecentHistoryWindowShape(t *testing.T) {
	today := time.Date(2024, 6, 7, 15, 30, 0, 0, time.Local)

	for _, n := range []int{1, 5, 7, 30} {
		slots := RecentHistory(nil, today, n)
		if len(slots) != n {
			t.Fatalf("n=%d: expected %d slots, got %d", n, n, len(slots))
		}
		for i, slot := range slots {
			want := DateOf(today).AddDate(0, 0, -(n - 1 - i))
			if !SameDay(slot.Date, want) {
				t.Fatalf("n=%d slot %d: expected %s, got %s", n, i, want.Format("2006-01-02"), slot.Date.Format("2006-01-02"))
			}
			if slot.Toggled || slot.ActionID != 0 || slot.Timestamp != nil {
				t.Fatalf("n=%d slot %d: expected untoggled slot, got %+v", n, i, slot)
			}
		}
	}
}

func TestRecentHistoryDefaultsWindowSize(t *testing.T) {
	slots := RecentHistory(nil, time.Now(), 0)
	if len(slots) != DefaultWindowSize {
		t.Fatalf("expected %d slots, got %d", DefaultWindowSize, len(slots))
	}
}

func TestRecentHistoryMarksActionDays(t *testing.T) {
	today := time.Date(2024, 6, 7, 9, 0, 0, 0, time.Local)
	actions := []db.Action{
		{ID: 11, HabitID: 1, Timestamp: time.Date(2024, 6, 7, 8, 0, 0, 0, time.Local)},
		{ID: 12, HabitID: 1, Timestamp: time.Date(2024, 6, 5, 21, 0, 0, 0, time.Local)},
		{ID: 13, HabitID: 1, Timestamp: time.Date(2024, 5, 20, 21, 0, 0, 0, time.Local)},
	}

	slots := RecentHistory(actions, today, 5)
	wantToggled := []bool{false, false, true, false, true}
	wantIDs := []uint{0, 0, 12, 0, 11}
	for i, slot := range slots {
		if slot.Toggled != wantToggled[i] || slot.ActionID != wantIDs[i] {
			t.Fatalf("slot %d: expected toggled=%v id=%d, got %+v", i, wantToggled[i], wantIDs[i], slot)
		}
	}
	if slots[4].Timestamp == nil || !slots[4].Timestamp.Equal(actions[0].Timestamp) {
		t.Fatalf("expected timestamp of action 11 on the last slot")
	}
}

func TestRecentHistoryLatestActionOfDayWins(t *testing.T) {
	today := time.Date(2024, 6, 7, 23, 0, 0, 0, time.Local)
	actions := []db.Action{
		{ID: 1, Timestamp: time.Date(2024, 6, 7, 7, 0, 0, 0, time.Local)},
		{ID: 2, Timestamp: time.Date(2024, 6, 7, 19, 0, 0, 0, time.Local)},
		{ID: 3, Timestamp: time.Date(2024, 6, 7, 12, 0, 0, 0, time.Local)},
	}

	slots := RecentHistory(actions, today, 3)
	if slots[2].ActionID != 2 {
		t.Fatalf("expected latest action of the day, got id %d", slots[2].ActionID)
	}
}

func TestRecentHistoryUsesTodayLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	today := time.Date(2024, 6, 7, 10, 0, 0, 0, tokyo)
	// 2024-06-06 20:00 UTC 在东九区已经是 06-07
	action := db.Action{ID: 5, Timestamp: time.Date(2024, 6, 6, 20, 0, 0, 0, time.UTC)}

	slots := RecentHistory([]db.Action{action}, today, 2)
	if slots[0].Toggled || !slots[1].Toggled {
		t.Fatalf("expected action on today's slot, got %+v", slots)
	}
}

func TestMapHabitsWithActions(t *testing.T) {
	today := time.Date(2024, 6, 7, 12, 0, 0, 0, time.Local)
	entities := []db.HabitWithActions{
		{Habit: db.Habit{ID: 1, Name: "Meditation", Color: db.HabitColorGreen}},
		{Habit: db.Habit{ID: 2, Name: "Running", Color: db.HabitColorRed}, Actions: []db.Action{
			{ID: 7, HabitID: 2, Timestamp: today.Add(-time.Hour)},
		}},
	}

	items := MapHabitsWithActions(entities, today, 7)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Streak.Kind != StreakClean || items[0].TotalActionCount != 0 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Streak != (Streak{Kind: StreakActive, Days: 1}) {
		t.Fatalf("expected streak of 1, got %+v", items[1].Streak)
	}
	if !items[1].Actions[6].Toggled || items[1].TotalActionCount != 1 {
		t.Fatalf("expected today toggled, got %+v", items[1].Actions[6])
	}
}

func TestHabitsEqualComparesInstants(t *testing.T) {
	today := time.Date(2024, 6, 7, 12, 0, 0, 0, time.Local)
	ts := time.Date(2024, 6, 7, 3, 0, 0, 0, time.UTC)
	a := MapHabitsWithActions([]db.HabitWithActions{{
		Habit:   db.Habit{ID: 1, Name: "Read"},
		Actions: []db.Action{{ID: 1, Timestamp: ts}},
	}}, today, 3)
	b := MapHabitsWithActions([]db.HabitWithActions{{
		Habit:   db.Habit{ID: 1, Name: "Read"},
		Actions: []db.Action{{ID: 1, Timestamp: ts.In(time.FixedZone("X", 3600))}},
	}}, today, 3)

	if !HabitsEqual(a, b) {
		t.Fatal("expected lists to be equal")
	}

	b[0].Habit.Name = "Write"
	if HabitsEqual(a, b) {
		t.Fatal("expected lists to differ after rename")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{name: "same day", a: time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), b: time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC), want: 0},
		{name: "leap day", a: time.Date(2024, 2, 28, 23, 0, 0, 0, time.UTC), b: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), want: 2},
		{name: "backwards", a: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), b: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), want: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
