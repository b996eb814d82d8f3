package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	db.DB = gdb

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func localAt(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
}

func mustCreateHabit(t *testing.T, store *HabitStore, name string) db.Habit {
	t.Helper()
	habit := db.Habit{Name: name, Color: db.HabitColorGreen}
	if err := store.CreateHabit(context.Background(), &habit); err != nil {
		t.Fatalf("failed to create habit %s: %v", name, err)
	}
	return habit
}

func mustInsertAction(t *testing.T, store *HabitStore, habitID uint, ts time.Time) db.Action {
	t.Helper()
	action := db.Action{HabitID: habitID, Timestamp: ts}
	if err := store.InsertAction(context.Background(), &action); err != nil {
		t.Fatalf("failed to insert action: %v", err)
	}
	return action
}

func TestHabitStoreCreateAppendsOrder(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	store := NewHabitStore(gdb)
	first := mustCreateHabit(t, store, "晨跑")
	second := mustCreateHabit(t, store, "阅读")
	third := mustCreateHabit(t, store, "冥想")

	if first.Order != 0 || second.Order != 1 || third.Order != 2 {
		t.Fatalf("unexpected orders %d %d %d", first.Order, second.Order, third.Order)
	}
}

func TestActiveHabitsWithActions(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	run := mustCreateHabit(t, store, "晨跑")
	read := mustCreateHabit(t, store, "阅读")
	old := mustCreateHabit(t, store, "弹琴")

	if err := store.UpdateHabitOrders(ctx, run.ID, 5, read.ID, 1); err != nil {
		t.Fatalf("UpdateHabitOrders returned error: %v", err)
	}
	if err := store.SetArchived(ctx, old.ID, true); err != nil {
		t.Fatalf("SetArchived returned error: %v", err)
	}

	mustInsertAction(t, store, run.ID, localAt(2024, 6, 2, 7))
	mustInsertAction(t, store, run.ID, localAt(2024, 6, 1, 7))
	mustInsertAction(t, store, old.ID, localAt(2024, 6, 1, 7))

	habits, err := store.ActiveHabitsWithActions(ctx)
	if err != nil {
		t.Fatalf("ActiveHabitsWithActions returned error: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("expected 2 active habits, got %d", len(habits))
	}
	if habits[0].Habit.ID != read.ID || habits[1].Habit.ID != run.ID {
		t.Fatalf("expected habits sorted by order, got %d,%d", habits[0].Habit.ID, habits[1].Habit.ID)
	}
	if len(habits[1].Actions) != 2 || len(habits[0].Actions) != 0 {
		t.Fatalf("unexpected action grouping: %d/%d", len(habits[0].Actions), len(habits[1].Actions))
	}
	if !habits[1].Actions[0].Timestamp.Before(habits[1].Actions[1].Timestamp) {
		t.Fatal("expected actions in chronological order")
	}

	archived, err := store.ArchivedHabitsWithActions(ctx)
	if err != nil {
		t.Fatalf("ArchivedHabitsWithActions returned error: %v", err)
	}
	if len(archived) != 1 || archived[0].Habit.ID != old.ID || len(archived[0].Actions) != 1 {
		t.Fatalf("unexpected archived habits: %+v", archived)
	}
}

func TestActionsOnDay(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	habit := mustCreateHabit(t, store, "喝水")
	day := localAt(2024, 3, 10, 0)

	mustInsertAction(t, store, habit.ID, localAt(2024, 3, 10, 1))
	mustInsertAction(t, store, habit.ID, localAt(2024, 3, 10, 23))
	keep := mustInsertAction(t, store, habit.ID, localAt(2024, 3, 11, 0))

	has, err := store.HasActionOnDay(ctx, habit.ID, day)
	if err != nil || !has {
		t.Fatalf("expected action on day, got %v (err=%v)", has, err)
	}

	if err := store.DeleteActionsOnDay(ctx, habit.ID, day); err != nil {
		t.Fatalf("DeleteActionsOnDay returned error: %v", err)
	}

	has, err = store.HasActionOnDay(ctx, habit.ID, day)
	if err != nil || has {
		t.Fatalf("expected no action left on day, got %v (err=%v)", has, err)
	}

	actions, err := store.ActionsAfter(ctx, localAt(2024, 3, 1, 0))
	if err != nil {
		t.Fatalf("ActionsAfter returned error: %v", err)
	}
	if len(actions) != 1 || actions[0].ID != keep.ID {
		t.Fatalf("expected only the next-day action to remain, got %+v", actions)
	}
}

func TestActionsAfterComparesInstants(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	habit := mustCreateHabit(t, store, "拉伸")

	tokyo := time.FixedZone("UTC+9", 9*60*60)
	mustInsertAction(t, store, habit.ID, time.Date(2024, 1, 1, 8, 0, 0, 0, tokyo))
	mustInsertAction(t, store, habit.ID, time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC))

	// 东九区 08:00 即 UTC 前一天 23:00，早于 UTC 00:00
	actions, err := store.ActionsAfter(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ActionsAfter returned error: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
}

func TestDeleteHabitRemovesActions(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	habit := mustCreateHabit(t, store, "背单词")
	mustInsertAction(t, store, habit.ID, localAt(2024, 2, 1, 9))

	if err := store.DeleteHabit(ctx, habit.ID); err != nil {
		t.Fatalf("DeleteHabit returned error: %v", err)
	}

	var count int64
	gdb.Model(&db.Action{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected actions to be deleted, got %d", count)
	}

	if err := store.DeleteHabit(ctx, habit.ID); err != ErrHabitNotFound {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
	if _, err := store.Habit(ctx, habit.ID); err != ErrHabitNotFound {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestSumActionCountByDay(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	a := mustCreateHabit(t, store, "晨跑")
	b := mustCreateHabit(t, store, "阅读")

	mustInsertAction(t, store, a.ID, localAt(2024, 5, 3, 7))
	mustInsertAction(t, store, b.ID, localAt(2024, 5, 3, 22))
	mustInsertAction(t, store, a.ID, localAt(2024, 5, 31, 12))
	mustInsertAction(t, store, a.ID, localAt(2024, 6, 1, 0))

	counts, err := store.SumActionCountByDay(ctx, localAt(2024, 5, 1, 0), localAt(2024, 5, 31, 0))
	if err != nil {
		t.Fatalf("SumActionCountByDay returned error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 days, got %+v", counts)
	}
	if counts[0].Date.Day() != 3 || counts[0].Count != 2 {
		t.Fatalf("unexpected first day %+v", counts[0])
	}
	if counts[1].Date.Day() != 31 || counts[1].Count != 1 {
		t.Fatalf("unexpected last day %+v", counts[1])
	}

	if _, err := store.SumActionCountByDay(ctx, localAt(2024, 5, 31, 0), localAt(2024, 5, 1, 0)); err == nil {
		t.Fatal("expected error for reversed range")
	}
}

func TestMostSuccessfulHabits(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	empty := mustCreateHabit(t, store, "空")
	busy := mustCreateHabit(t, store, "忙")
	some := mustCreateHabit(t, store, "少")

	mustInsertAction(t, store, busy.ID, localAt(2024, 4, 2, 8))
	mustInsertAction(t, store, busy.ID, localAt(2024, 4, 1, 8))
	mustInsertAction(t, store, busy.ID, localAt(2024, 4, 3, 8))
	mustInsertAction(t, store, some.ID, localAt(2024, 4, 5, 8))

	rows, err := store.MostSuccessfulHabits(ctx, 10)
	if err != nil {
		t.Fatalf("MostSuccessfulHabits returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Habit.ID != busy.ID || rows[0].ActionCount != 3 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[0].FirstDay == nil || rows[0].FirstDay.Day() != 1 {
		t.Fatalf("expected first day 2024-04-01, got %v", rows[0].FirstDay)
	}
	if rows[1].Habit.ID != some.ID || rows[2].Habit.ID != empty.ID {
		t.Fatalf("unexpected ordering %d,%d", rows[1].Habit.ID, rows[2].Habit.ID)
	}
	if rows[2].FirstDay != nil || rows[2].ActionCount != 0 {
		t.Fatalf("expected empty habit without first day, got %+v", rows[2])
	}

	limited, err := store.MostSuccessfulHabits(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d rows (err=%v)", len(limited), err)
	}

	single, err := store.HabitActionCount(ctx, busy.ID)
	if err != nil {
		t.Fatalf("HabitActionCount returned error: %v", err)
	}
	if single.ActionCount != 3 || single.FirstDay == nil {
		t.Fatalf("unexpected single count %+v", single)
	}
}

func TestTopDayForHabits(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	habit := mustCreateHabit(t, store, "游泳")

	// 2024-06-03 与 06-10 为周一，06-04 为周二
	mustInsertAction(t, store, habit.ID, localAt(2024, 6, 3, 18))
	mustInsertAction(t, store, habit.ID, localAt(2024, 6, 10, 18))
	mustInsertAction(t, store, habit.ID, localAt(2024, 6, 4, 18))

	rows, err := store.TopDayForHabits(ctx)
	if err != nil {
		t.Fatalf("TopDayForHabits returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Weekday != time.Monday || rows[0].ActionCount != 2 || rows[0].Habit.Name != "游泳" {
		t.Fatalf("unexpected top day %+v", rows[0])
	}
}

func TestActionCountByWeekAndMonth(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	habit := mustCreateHabit(t, store, "写作")

	// 2023-01-01 是周日，属于 2022 年第 52 周；2024-01-01 是周一，属于 2024 年第 1 周
	mustInsertAction(t, store, habit.ID, localAt(2023, 1, 1, 12))
	mustInsertAction(t, store, habit.ID, localAt(2024, 1, 1, 12))
	mustInsertAction(t, store, habit.ID, localAt(2024, 1, 3, 12))

	weeks, err := store.ActionCountByWeek(ctx, habit.ID)
	if err != nil {
		t.Fatalf("ActionCountByWeek returned error: %v", err)
	}
	byWeek := map[[2]int]int{}
	for _, w := range weeks {
		byWeek[[2]int{w.Year, w.Week}] = w.ActionCount
	}
	if byWeek[[2]int{2022, 52}] != 1 || byWeek[[2]int{2024, 1}] != 2 || len(byWeek) != 2 {
		t.Fatalf("unexpected weeks %+v", weeks)
	}

	months, err := store.ActionCountByMonth(ctx, habit.ID)
	if err != nil {
		t.Fatalf("ActionCountByMonth returned error: %v", err)
	}
	byMonth := map[[2]int]int{}
	for _, m := range months {
		byMonth[[2]int{m.Year, int(m.Month)}] = m.ActionCount
	}
	if byMonth[[2]int{2023, 1}] != 1 || byMonth[[2]int{2024, 1}] != 2 || len(byMonth) != 2 {
		t.Fatalf("unexpected months %+v", months)
	}
}

func TestHabitCountIgnoresArchived(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHabitStore(gdb)
	mustCreateHabit(t, store, "A")
	archived := mustCreateHabit(t, store, "B")
	if err := store.SetArchived(ctx, archived.ID, true); err != nil {
		t.Fatalf("SetArchived returned error: %v", err)
	}

	count, err := store.HabitCount(ctx)
	if err != nil {
		t.Fatalf("HabitCount returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 active habit, got %d", count)
	}
}
