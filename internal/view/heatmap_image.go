package view

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"time"

	"github.com/habitlog/internal/db"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	heatmapCellSize     = 28
	heatmapCellGap      = 4
	heatmapHeaderHeight = 22
	heatmapPadding      = 8
)

var (
	heatmapEmpty = color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	heatmapInk   = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
)

// RenderHeatmapPNG draws hm as a Monday-first calendar grid tinted with the
// given habit color.
func RenderHeatmapPNG(w io.Writer, hm HeatmapMonth, tint db.HabitColor) error {
	img := DrawHeatmap(hm, tint)
	return png.Encode(w, img)
}

// DrawHeatmap returns the calendar grid image without encoding it.
func DrawHeatmap(hm HeatmapMonth, tint db.HabitColor) *image.RGBA {
	first := hm.Month.FirstDay(time.UTC)
	days := hm.Month.Days()
	offset := (int(first.Weekday()) + 6) % 7
	rows := (offset + days + 6) / 7

	width := heatmapPadding*2 + 7*heatmapCellSize + 6*heatmapCellGap
	height := heatmapPadding*2 + heatmapHeaderHeight + rows*heatmapCellSize + (rows-1)*heatmapCellGap

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(heatmapInk), Face: basicfont.Face7x13}
	drawer.Dot = fixed.P(heatmapPadding, heatmapPadding+13)
	drawer.DrawString(hm.Month.String())

	base := ColorRGBA(tint)
	for day := 1; day <= days; day++ {
		cell := offset + day - 1
		x0 := heatmapPadding + (cell%7)*(heatmapCellSize+heatmapCellGap)
		y0 := heatmapPadding + heatmapHeaderHeight + (cell/7)*(heatmapCellSize+heatmapCellGap)

		info := hm.DayMap[DateKey(first.AddDate(0, 0, day-1))]
		fill := bucketColor(base, info.BucketIndex)
		draw.Draw(img, image.Rect(x0, y0, x0+heatmapCellSize, y0+heatmapCellSize), image.NewUniform(fill), image.Point{}, draw.Src)

		drawer.Dot = fixed.P(x0+4, y0+heatmapCellSize-8)
		drawer.DrawString(strconv.Itoa(day))
	}

	return img
}

func bucketColor(base color.RGBA, bucket int) color.RGBA {
	levels := HeatmapBucketCount - 1
	if bucket <= 0 {
		return heatmapEmpty
	}
	bucket = min(bucket, levels)
	lerp := func(from, to uint8) uint8 {
		return uint8(int(from) + (int(to)-int(from))*bucket/levels)
	}
	return color.RGBA{
		R: lerp(heatmapEmpty.R, base.R),
		G: lerp(heatmapEmpty.G, base.G),
		B: lerp(heatmapEmpty.B, base.B),
		A: 0xFF,
	}
}
