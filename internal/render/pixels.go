// Package render turns grids and trajectories into pixels: RGBA buffers for the
// viewer, paletted frames for animations, and PNG charts.
package render

import (
	"image"
	"image/color"

	"epigrid/internal/core"
)

// Colours per compartment, followed by the background and text colours used
// for label bands.
var (
	SusceptibleColor = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
	InfectedColor    = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	RecoveredColor   = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	BackgroundColor  = color.RGBA{R: 16, G: 16, B: 20, A: 0xff}
	TextColor        = color.RGBA{R: 230, G: 230, B: 235, A: 0xff}
)

// Palette indexes match core.CellState values.
var Palette = color.Palette{SusceptibleColor, InfectedColor, RecoveredColor, BackgroundColor, TextColor}

// StateColors returns the compartment colours in CellState order.
func StateColors() []color.RGBA {
	return []color.RGBA{SusceptibleColor, InfectedColor, RecoveredColor}
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []core.CellState, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:len(cells)*4])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// paintGrid fills dst with the cells of g, each cell a scale x scale block,
// starting at the top-left corner.
func paintGrid(dst *image.Paletted, g *core.Grid, scale int) {
	if scale < 1 {
		scale = 1
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := uint8(g.At(row, col))
			for dy := 0; dy < scale; dy++ {
				y := row*scale + dy
				off := dst.PixOffset(col*scale, y)
				for dx := 0; dx < scale; dx++ {
					dst.Pix[off+dx] = idx
				}
			}
		}
	}
}
