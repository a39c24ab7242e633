//go:build !ebiten

package ui

import "epigrid/internal/core"

// Provider is what the HUD reads each frame.
type Provider interface {
	core.Sim
	Parameters() core.ParameterSnapshot
}

// NudgeFunc is called when a +/- button is clicked.
type NudgeFunc func(key string, dir int)

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(Provider, []core.ParameterControl, int, NudgeFunc) *HUD { return nil }

// SetSim is a no-op in the headless build.
func (h *HUD) SetSim(Provider) {}

// Width is zero in the headless build.
func (h *HUD) Width() int { return 0 }

// MinHeight is zero in the headless build.
func (h *HUD) MinHeight() int { return 0 }

// Update is a no-op in the headless build.
func (h *HUD) Update(int, string) {}

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int) {}
