package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/view"
)

func habitToPayload(habit db.Habit) gin.H {
	return gin.H{
		"id":         habit.ID,
		"name":       habit.Name,
		"color":      habit.Color,
		"color_hex":  view.ColorHex(habit.Color),
		"order":      habit.Order,
		"archived":   habit.Archived,
		"notes":      habit.Notes,
		"created_at": habit.CreatedAt.Format(time.RFC3339),
		"updated_at": habit.UpdatedAt.Format(time.RFC3339),
	}
}

func dayActionsToPayload(actions []view.DayAction) []gin.H {
	items := make([]gin.H, 0, len(actions))
	for _, action := range actions {
		item := gin.H{
			"action_id": action.ActionID,
			"toggled":   action.Toggled,
			"date":      action.Date.Format(dateFormat),
		}
		if action.Timestamp != nil {
			item["timestamp"] = action.Timestamp.Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items
}

func streakToPayload(streak view.Streak) gin.H {
	return gin.H{"kind": streak.Kind, "days": streak.Days}
}

func dashboardHabitsToPayload(habits []view.HabitWithActions) []gin.H {
	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, gin.H{
			"habit":              habitToPayload(habit.Habit),
			"actions":            dayActionsToPayload(habit.Actions),
			"total_action_count": habit.TotalActionCount,
			"streak":             streakToPayload(habit.Streak),
		})
	}
	return items
}

func dashboardEventToPayload(evt service.DashboardEvent) gin.H {
	return gin.H{"kind": evt.Kind, "habit_id": evt.HabitID, "message": evt.Message}
}

func heatmapToPayload(hm view.HeatmapMonth) gin.H {
	first := hm.Month.FirstDay(time.Local)
	days := make([]gin.H, 0, len(hm.DayMap))
	for i := 0; i < hm.Month.Days(); i++ {
		key := view.DateKey(first.AddDate(0, 0, i))
		bucket := hm.DayMap[key]
		days = append(days, gin.H{"date": key, "bucket": bucket.BucketIndex, "value": bucket.Value})
	}
	return gin.H{
		"month":             hm.Month.String(),
		"total_habit_count": hm.TotalHabitCount,
		"bucket_count":      view.HeatmapBucketCount,
		"days":              days,
	}
}

func topHabitsToPayload(items []view.TopHabitItem) []gin.H {
	result := make([]gin.H, 0, len(items))
	for _, item := range items {
		result = append(result, gin.H{
			"habit_id":        item.HabitID,
			"name":            item.Name,
			"color":           item.Color,
			"first_day":       item.FirstDay.Format(dateFormat),
			"action_count":    item.ActionCount,
			"completion_rate": item.CompletionRate,
		})
	}
	return result
}

func topDaysToPayload(items []view.TopDayItem, language string) []gin.H {
	result := make([]gin.H, 0, len(items))
	for _, item := range items {
		result = append(result, gin.H{
			"habit_id":     item.HabitID,
			"name":         item.Name,
			"color":        item.Color,
			"weekday":      int(item.Weekday),
			"weekday_name": locale.WeekdayName(language, item.Weekday),
			"action_count": item.ActionCount,
		})
	}
	return result
}

func habitDetailsToPayload(details *service.HabitDetails) gin.H {
	stats := gin.H{
		"action_count":    details.Stats.ActionCount,
		"completion_rate": details.Stats.CompletionRate,
	}
	if details.Stats.FirstDay != nil {
		stats["first_day"] = details.Stats.FirstDay.Format(dateFormat)
	}

	weeks := make([]gin.H, 0, len(details.ActionsByWeek))
	for _, week := range details.ActionsByWeek {
		weeks = append(weeks, gin.H{"year": week.Year, "week": week.Week, "action_count": week.ActionCount})
	}
	months := make([]gin.H, 0, len(details.ActionsByMonth))
	for _, month := range details.ActionsByMonth {
		months = append(months, gin.H{"year": month.Year, "month": int(month.Month), "action_count": month.ActionCount})
	}

	return gin.H{
		"habit":            habitToPayload(details.Habit),
		"notes_html":       details.NotesHTML,
		"recent":           dayActionsToPayload(details.Recent),
		"streak":           streakToPayload(details.Streak),
		"stats":            stats,
		"actions_by_week":  weeks,
		"actions_by_month": months,
	}
}

func preferencesToPayload(prefs service.Preferences) gin.H {
	return gin.H{
		"dashboard_layout":  prefs.DashboardLayout,
		"window_size":       prefs.DashboardLayout.WindowSize(),
		"language":          prefs.Language,
		"telemetry_enabled": prefs.TelemetryEnabled,
	}
}

func telemetryEventsToPayload(events []db.TelemetryEvent) []gin.H {
	items := make([]gin.H, 0, len(events))
	for _, evt := range events {
		items = append(items, gin.H{
			"id":          evt.ID,
			"source":      evt.Source,
			"message":     evt.Message,
			"occurred_at": evt.OccurredAt.Format(time.RFC3339),
		})
	}
	return items
}
