package view

import (
	"image/color"

	"github.com/habitlog/internal/db"
)

// ColorOption describes a selectable habit color.
type ColorOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Hex   string `json:"hex"`
}

type colorAsset struct {
	Key   db.HabitColor
	Label string
	RGBA  color.RGBA
}

var (
	colorDefinitions = []colorAsset{
		{Key: db.HabitColorRed, Label: "红", RGBA: color.RGBA{R: 0xE5, G: 0x57, B: 0x4F, A: 0xFF}},
		{Key: db.HabitColorGreen, Label: "绿", RGBA: color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}},
		{Key: db.HabitColorBlue, Label: "蓝", RGBA: color.RGBA{R: 0x42, G: 0x85, B: 0xF4, A: 0xFF}},
		{Key: db.HabitColorYellow, Label: "黄", RGBA: color.RGBA{R: 0xF9, G: 0xC7, B: 0x4F, A: 0xFF}},
	}
	colorLookup = func() map[db.HabitColor]colorAsset {
		lookup := make(map[db.HabitColor]colorAsset, len(colorDefinitions))
		for _, c := range colorDefinitions {
			lookup[c.Key] = c
		}
		return lookup
	}()
)

// ColorOptions exposes the selectable colors in display order.
func ColorOptions() []ColorOption {
	options := make([]ColorOption, 0, len(colorDefinitions))
	for _, c := range colorDefinitions {
		options = append(options, ColorOption{Key: string(c.Key), Label: c.Label, Hex: hexOf(c.RGBA)})
	}
	return options
}

// ColorRGBA resolves the swatch for a habit color, falling back to green.
func ColorRGBA(c db.HabitColor) color.RGBA {
	if asset, ok := colorLookup[c]; ok {
		return asset.RGBA
	}
	return colorLookup[db.HabitColorGreen].RGBA
}

// ColorHex is ColorRGBA formatted as #RRGGBB.
func ColorHex(c db.HabitColor) string {
	return hexOf(ColorRGBA(c))
}

func hexOf(c color.RGBA) string {
	const digits = "0123456789ABCDEF"
	buf := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		buf[1+i*2] = digits[v>>4]
		buf[2+i*2] = digits[v&0x0F]
	}
	return string(buf)
}
