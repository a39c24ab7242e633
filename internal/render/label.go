package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"epigrid/internal/core"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelBand is the height of the strip reserved under a frame for its label.
const LabelBand = 16

// StatsLabel formats the per-frame statistics line.
func StatsLabel(t int, c core.Counts) string {
	return fmt.Sprintf("t=%d S=%d I=%d R=%d", t, c.S, c.I, c.R)
}

// DrawLabel writes s with its baseline at (x, y).
func DrawLabel(dst draw.Image, x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// LabelWidth returns the advance of s in pixels.
func LabelWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}
