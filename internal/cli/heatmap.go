package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/view"
)

var heatmapShades = [view.HeatmapBucketCount]string{"··", "░░", "▒▒", "▓▓", "██"}

type HeatmapCmd struct {
	Month string `help:"Month to show (YYYY-MM), defaults to the current month."`
	Color string `help:"Tint (red, green, blue, yellow)." default:"green"`
	PNG   string `help:"Write a PNG to this path instead of printing." type:"path"`
	Lang  string `help:"Output language (zh or en)." default:"zh"`
}

func (c *HeatmapCmd) Run(ctx *Context) error {
	month := view.YearMonthOf(ctx.now())
	if strings.TrimSpace(c.Month) != "" {
		parsed, err := view.ParseYearMonth(c.Month)
		if err != nil {
			return fmt.Errorf("invalid month %q, use YYYY-MM: %w", c.Month, err)
		}
		month = parsed
	}

	if err := ctx.Open(); err != nil {
		return err
	}

	insights := service.NewInsightsService(service.NewHabitStore(db.DB))
	hm, err := insights.Heatmap(context.Background(), month)
	if err != nil {
		return err
	}

	tint := db.ParseHabitColor(c.Color)
	if c.PNG != "" {
		f, err := os.Create(c.PNG)
		if err != nil {
			return fmt.Errorf("create %s: %w", c.PNG, err)
		}
		defer f.Close()
		if err := view.RenderHeatmapPNG(f, hm, tint); err != nil {
			return err
		}
		fmt.Fprintf(ctx.Out, "wrote %s\n", c.PNG)
		return nil
	}

	fmt.Fprintln(ctx.Out, RenderHeatmap(hm, tint, c.Lang))
	return nil
}

// RenderHeatmap prints the month as a calendar grid, weeks starting on Monday.
func RenderHeatmap(hm view.HeatmapMonth, tint db.HabitColor, language string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(view.ColorHex(tint)))

	var b strings.Builder
	b.WriteString(titleStyle.Render(hm.Month.String()))
	b.WriteString("\n")

	header := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		name := []rune(locale.WeekdayName(language, time.Weekday((i+1)%7)))
		// 中文取末字，本身就占两列
		if locale.NormalizeLanguage(language) == locale.LanguageEnglish {
			header = append(header, string(name[:2]))
		} else {
			header = append(header, string(name[len(name)-1:]))
		}
	}
	b.WriteString(mutedStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	first := hm.Month.FirstDay(time.UTC)
	// 周一为第 0 列
	col := (int(first.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("   ", col))
	for day := 0; day < hm.Month.Days(); day++ {
		info := hm.DayMap[view.DateKey(first.AddDate(0, 0, day))]
		cell := heatmapShades[min(max(info.BucketIndex, 0), view.HeatmapBucketCount-1)]
		if info.BucketIndex == 0 {
			b.WriteString(mutedStyle.Render(cell))
		} else {
			b.WriteString(style.Render(cell))
		}
		col++
		if col == 7 {
			col = 0
			if day < hm.Month.Days()-1 {
				b.WriteString("\n")
			}
		} else {
			b.WriteString(" ")
		}
	}
	return strings.TrimRight(b.String(), " ")
}
