//go:build ebiten

package app

import (
	"epigrid/internal/render"
	"epigrid/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
)

var keyActions = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeySpace, ActionTogglePause},
	{ebiten.KeyN, ActionStep},
	{ebiten.KeyR, ActionReset},
	{ebiten.KeyS, ActionReseed},
	{ebiten.KeyB, ActionBetaUp},
	{ebiten.KeyV, ActionBetaDown},
	{ebiten.KeyA, ActionAlphaUp},
	{ebiten.KeyZ, ActionAlphaDown},
	{ebiten.KeyArrowUp, ActionFaster},
	{ebiten.KeyArrowDown, ActionSlower},
}

// Game adapts an interactive session to the ebiten.Game interface.
type Game struct {
	ctrl    *Controller
	painter *render.GridPainter
	hud     *ui.HUD
	scale   int
}

// New constructs a Game for the provided controller.
func New(ctrl *Controller, cfg *Config, logger zerolog.Logger) *Game {
	size := ctrl.Session().Size()
	g := &Game{
		ctrl:    ctrl,
		painter: render.NewGridPainter(size.Cols, size.Rows),
		scale:   cfg.Scale,
	}
	g.hud = ui.NewHUD(ctrl.Session(), ctrl.Controls(), cfg.Panel, func(key string, dir int) {
		ctrl.Nudge(key, dir)
	})
	logger.Info().Int("rows", size.Rows).Int("cols", size.Cols).Int("scale", cfg.Scale).Msg("viewer ready")
	return g
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for _, ka := range keyActions {
		if inpututil.IsKeyJustPressed(ka.key) {
			g.ctrl.Apply(ka.action)
		}
	}

	g.hud.SetSim(g.ctrl.Session())
	g.hud.Update(g.gridWidth(), g.ctrl.Status())
	// a button click may have replaced the session
	g.hud.SetSim(g.ctrl.Session())

	g.ctrl.Advance()
	return nil
}

// Draw renders the current grid and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.ctrl.Session().Cells(), g.scale)
	_, h := g.Layout(0, 0)
	g.hud.Draw(screen, g.gridWidth(), h)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.ctrl.Session().Size()
	return s.Cols*g.scale + g.hud.Width(), max(s.Rows*g.scale, g.hud.MinHeight())
}

func (g *Game) gridWidth() int {
	return g.ctrl.Session().Size().Cols * g.scale
}
