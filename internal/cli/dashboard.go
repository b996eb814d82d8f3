package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/view"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

type DashboardCmd struct {
	Window int    `help:"Days per card, defaults to the stored layout."`
	Lang   string `help:"Output language (zh or en)." default:"zh"`
}

func (c *DashboardCmd) Run(ctx *Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	bg := context.Background()

	window := c.Window
	if window <= 0 {
		prefs, err := service.NewPreferenceService(db.DB).Get(bg)
		if err != nil {
			return err
		}
		window = prefs.DashboardLayout.WindowSize()
	}

	dashboard := service.NewDashboardService(service.NewHabitStore(db.DB), nil, window)
	defer dashboard.Close()

	result := dashboard.Refresh(bg)
	if result.Err != nil {
		return result.Err
	}

	fmt.Fprintln(ctx.Out, RenderDashboard(result.Habits, c.Lang))
	return nil
}

// RenderDashboard draws one card per habit: the window as a row of marks
// and the streak below it.
func RenderDashboard(habits []view.HabitWithActions, language string) string {
	title := titleStyle.Render(locale.Pick(language, "Habits", "习惯"))
	if len(habits) == 0 {
		return title + "\n" + mutedStyle.Render(locale.Pick(language, "No habits yet.", "还没有习惯。"))
	}

	cards := make([]string, 0, len(habits))
	for _, habit := range habits {
		cards = append(cards, renderHabitCard(habit, language))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, cards...)...)
}

func renderHabitCard(habit view.HabitWithActions, language string) string {
	tint := lipgloss.NewStyle().Foreground(lipgloss.Color(view.ColorHex(habit.Habit.Color)))

	var days, marks strings.Builder
	for i, action := range habit.Actions {
		if i > 0 {
			days.WriteString(" ")
			marks.WriteString(" ")
		}
		days.WriteString(fmt.Sprintf("%2d", action.Date.Day()))
		if action.Toggled {
			marks.WriteString(tint.Render("██"))
		} else {
			marks.WriteString(mutedStyle.Render("··"))
		}
	}

	header := tint.Bold(true).Render(habit.Habit.Name) + mutedStyle.Render(fmt.Sprintf("  ×%d", habit.TotalActionCount))
	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		mutedStyle.Render(days.String()),
		marks.String(),
		streakLabel(habit.Streak, language),
	)
	return cardStyle.Render(body)
}

func streakLabel(streak view.Streak, language string) string {
	switch streak.Kind {
	case view.StreakActive:
		return locale.Pick(language,
			fmt.Sprintf("%d day streak", streak.Days),
			fmt.Sprintf("连续 %d 天", streak.Days))
	case view.StreakBroken:
		return mutedStyle.Render(locale.Pick(language,
			fmt.Sprintf("missed %d days", streak.Days),
			fmt.Sprintf("已中断 %d 天", streak.Days)))
	default:
		return mutedStyle.Render(locale.Pick(language, "not started", "尚未开始"))
	}
}
