//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"epigrid/internal/core"
	"epigrid/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Provider is what the HUD reads each frame.
type Provider interface {
	core.Sim
	Parameters() core.ParameterSnapshot
}

// NudgeFunc is called when a +/- button is clicked.
type NudgeFunc func(key string, dir int)

// HUD renders the statistics and parameter panel to the right of the grid.
type HUD struct {
	sim        Provider
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot
	status     string

	controls     []hudControlState
	onNudge      NudgeFunc
	panelOffsetX int

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for the provided session and panel width.
func NewHUD(sim Provider, controls []core.ParameterControl, width int, onNudge NudgeFunc) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width, onNudge: onNudge}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.controls = make([]hudControlState, len(controls))
	for i, ctrl := range controls {
		h.controls[i] = hudControlState{control: ctrl, value: "--"}
	}
	h.layoutControls()
	return h
}

// SetSim points the HUD at a replacement session.
func (h *HUD) SetSim(sim Provider) {
	if h != nil {
		h.sim = sim
	}
}

// Width returns the panel width.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// MinHeight is the height the panel needs to show everything.
func (h *HUD) MinHeight() int {
	if h == nil || h.width <= 0 {
		return 0
	}
	return controlsTop + len(h.controls)*lineHeight + len(helpLines)*infoLine + panelPadding
}

// Update refreshes the cached snapshot and handles button clicks.
func (h *HUD) Update(panelOffsetX int, status string) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.status = status
	h.snapshot = h.sim.Parameters()
	h.refreshControlValues()
	h.handleInput()
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(render.BackgroundColor)
	h.drawStats()
	h.drawControls()
	h.drawHelp()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawStats() {
	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, fmt.Sprintf("SIR %s  %s", h.sim.Name(), h.status), face, panelPadding, y, headerColor)

	counts := h.sim.Counts()
	y += infoLine
	text.Draw(h.panel, fmt.Sprintf("t = %d", h.sim.Time()), face, panelPadding, y, labelColor)
	rows := []struct {
		name  string
		value int
		col   color.RGBA
	}{
		{"S", counts.S, render.SusceptibleColor},
		{"I", counts.I, render.InfectedColor},
		{"R", counts.R, render.RecoveredColor},
	}
	total := counts.Total()
	for _, row := range rows {
		y += infoLine
		h.fillRect(image.Rect(panelPadding, y-10, panelPadding+10, y), row.col)
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(row.value) / float64(total)
		}
		text.Draw(h.panel, fmt.Sprintf("%s %6d  %5.1f%%", row.name, row.value, pct), face, panelPadding+16, y, labelColor)
	}
	for _, group := range h.snapshot.Groups {
		if group.Name != "Grid" {
			continue
		}
		for _, p := range group.Params {
			y += infoLine
			text.Draw(h.panel, fmt.Sprintf("%s: %s", p.Label, p.Value), face, panelPadding, y, mutedColor)
		}
	}
}

func (h *HUD) refreshControlValues() {
	values := map[string]string{}
	for _, group := range h.snapshot.Groups {
		for _, param := range group.Params {
			values[param.Key] = param.Value
		}
	}
	for i := range h.controls {
		state := &h.controls[i]
		raw, ok := values[state.control.Key]
		parsed, err := strconv.ParseFloat(raw, 64)
		if !ok || err != nil {
			state.hasValue = false
			state.value = "--"
			continue
		}
		state.floatValue = parsed
		state.value = strconv.FormatFloat(parsed, 'f', precisionFor(state.control.Step), 64)
		state.hasValue = true
	}
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 || h.onNudge == nil {
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(px, my, state.minusRect) && h.canAdjust(state, -1) {
			h.onNudge(state.control.Key, -1)
			return
		}
		if pointInRect(px, my, state.plusRect) && h.canAdjust(state, 1) {
			h.onNudge(state.control.Key, 1)
			return
		}
	}
}

func (h *HUD) canAdjust(state *hudControlState, dir int) bool {
	return state.control.Nudge(state.floatValue, dir) != state.floatValue
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	for i := range h.controls {
		state := &h.controls[i]
		labelY := state.top + labelBaseline
		text.Draw(h.panel, state.control.Label, face, panelPadding, labelY, labelColor)
		valueColor := labelColor
		if !state.hasValue {
			valueColor = mutedColor
		}
		valueWidth := text.BoundString(face, state.value).Dx()
		valueX := state.minusRect.Min.X - buttonGap - valueWidth
		text.Draw(h.panel, state.value, face, valueX, labelY, valueColor)

		h.drawButton(state.minusRect, "-", state.hasValue && h.canAdjust(state, -1))
		h.drawButton(state.plusRect, "+", state.hasValue && h.canAdjust(state, 1))
	}
}

func (h *HUD) drawHelp() {
	face := basicfont.Face7x13
	y := controlsTop + len(h.controls)*lineHeight
	for _, line := range helpLines {
		y += infoLine
		text.Draw(h.panel, line, face, panelPadding, y, mutedColor)
	}
}

func (h *HUD) fillRect(rect image.Rectangle, col color.RGBA) {
	if h.pixel == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(col)
	h.panel.DrawImage(h.pixel, op)
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	h.fillRect(rect, bg)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func precisionFor(step float64) int {
	switch {
	case step <= 0:
		return 2
	case step < 0.001:
		return 4
	case step < 0.01:
		return 3
	default:
		return 2
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

type hudControlState struct {
	control core.ParameterControl
	value   string

	floatValue float64
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

var (
	headerColor = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	labelColor  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	mutedColor  = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

var helpLines = []string{
	"space pause  N step",
	"R reset  S reseed",
	"B/V beta  A/Z recovery",
	"up/down speed  Q quit",
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 14
	labelBaseline  = 24
	infoLine       = 16
	// header, t, S, I, R and four grid parameters
	controlsTop = panelPadding + headerBaseline + 9*infoLine + 8
)
