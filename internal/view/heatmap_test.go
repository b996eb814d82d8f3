package view

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/habitlog/internal/db"
)

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		value, upper, want int
	}{
		{value: 0, upper: 4, want: 0},
		{value: 1, upper: 4, want: 1},
		{value: 2, upper: 4, want: 2},
		{value: 4, upper: 4, want: 4},
		{value: 1, upper: 10, want: 1},
		{value: 9, upper: 10, want: 4},
		{value: 5, upper: 0, want: 0},
		{value: 12, upper: 10, want: 4},
	}

	for _, tt := range tests {
		if got := BucketIndex(tt.value, tt.upper); got != tt.want {
			t.Fatalf("BucketIndex(%d, %d): expected %d, got %d", tt.value, tt.upper, tt.want, got)
		}
	}
}

func TestBuildHeatmapMonthIsDense(t *testing.T) {
	month := YearMonth{Year: 2024, Month: time.February}
	counts := []db.DayCount{
		{Date: time.Date(2024, 2, 3, 0, 0, 0, 0, time.Local), Count: 2},
		{Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local), Count: 4},
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), Count: 9},
	}

	hm := BuildHeatmapMonth(counts, month, 4)
	if len(hm.DayMap) != 29 {
		t.Fatalf("expected 29 days, got %d", len(hm.DayMap))
	}
	if hm.TotalHabitCount != 4 {
		t.Fatalf("unexpected habit count %d", hm.TotalHabitCount)
	}
	if got := hm.DayMap["2024-02-03"]; got != (BucketInfo{BucketIndex: 2, Value: 2}) {
		t.Fatalf("unexpected 02-03 bucket: %+v", got)
	}
	if got := hm.DayMap["2024-02-29"]; got != (BucketInfo{BucketIndex: 4, Value: 4}) {
		t.Fatalf("unexpected 02-29 bucket: %+v", got)
	}
	if got := hm.DayMap["2024-02-10"]; got != (BucketInfo{}) {
		t.Fatalf("expected empty bucket, got %+v", got)
	}
	if _, ok := hm.DayMap["2024-03-01"]; ok {
		t.Fatal("days outside the month must not appear")
	}
}

func TestBuildHeatmapMonthScalesToBusiestDay(t *testing.T) {
	month := YearMonth{Year: 2024, Month: time.May}
	counts := []db.DayCount{
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), Count: 8},
		{Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local), Count: 2},
	}

	// 习惯已被删除时总数可能比单日打卡还少
	hm := BuildHeatmapMonth(counts, month, 1)
	if hm.DayMap["2024-05-01"].BucketIndex != 4 {
		t.Fatalf("busiest day should be top bucket, got %+v", hm.DayMap["2024-05-01"])
	}
	if hm.DayMap["2024-05-02"].BucketIndex != 1 {
		t.Fatalf("expected bucket 1, got %+v", hm.DayMap["2024-05-02"])
	}
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2023-12")
	if err != nil {
		t.Fatalf("ParseYearMonth returned error: %v", err)
	}
	if ym.String() != "2023-12" || ym.Days() != 31 {
		t.Fatalf("unexpected month %s with %d days", ym, ym.Days())
	}
	if next := ym.Next(); next != (YearMonth{Year: 2024, Month: time.January}) {
		t.Fatalf("unexpected next month %s", next)
	}
	if _, err := ParseYearMonth("2023-13"); err == nil {
		t.Fatal("expected error for invalid month")
	}
}

func TestRenderHeatmapPNG(t *testing.T) {
	month := YearMonth{Year: 2024, Month: time.September}
	hm := BuildHeatmapMonth([]db.DayCount{{Date: time.Date(2024, 9, 2, 0, 0, 0, 0, time.Local), Count: 3}}, month, 3)

	var buf bytes.Buffer
	if err := RenderHeatmapPNG(&buf, hm, db.HabitColorBlue); err != nil {
		t.Fatalf("RenderHeatmapPNG returned error: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatal("expected non-empty image")
	}

	// 2024-09-01 是周日，Monday-first 布局下 9 月 2 日位于第二行第一列
	x := heatmapPadding + 2
	y := heatmapPadding + heatmapHeaderHeight + heatmapCellSize + heatmapCellGap + 2
	r, g, b, _ := img.At(x, y).RGBA()
	want := ColorRGBA(db.HabitColorBlue)
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
		t.Fatalf("expected full tint on busiest day, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}
