package app

import (
	"fmt"
	"strconv"
	"time"

	"epigrid/internal/core"
	"epigrid/internal/sims/sir"

	"github.com/rs/zerolog"
)

// Action is a user command independent of the input device.
type Action int

const (
	ActionNone Action = iota
	ActionTogglePause
	ActionStep
	ActionReset
	ActionReseed
	ActionBetaUp
	ActionBetaDown
	ActionAlphaUp
	ActionAlphaDown
	ActionFaster
	ActionSlower
)

const maxStepsPerSecond = 480

// Controller owns the interactive session and decides when it advances.
// Parameter changes replace the session wholesale.
type Controller struct {
	session  *sir.Session
	stepper  *core.FixedStep
	sps      int
	controls []core.ParameterControl
	logger   zerolog.Logger

	paused   bool
	tickOnce bool
	reseed   func() string
}

// NewController wraps session, advancing it at sps steps per second.
func NewController(session *sir.Session, sps int, logger zerolog.Logger) *Controller {
	if sps <= 0 {
		sps = 10
	}
	return &Controller{
		session:  session,
		stepper:  core.NewFixedStep(sps),
		sps:      sps,
		controls: sir.Controls(session.RecoveryLabel()),
		logger:   logger,
		reseed: func() string {
			return strconv.FormatInt(time.Now().UnixNano(), 36)
		},
	}
}

// Session returns the current session.
func (c *Controller) Session() *sir.Session { return c.session }

// Controls returns the adjustable rates.
func (c *Controller) Controls() []core.ParameterControl { return c.controls }

// Paused reports whether automatic stepping is suspended.
func (c *Controller) Paused() bool { return c.paused }

// StepsPerSecond returns the current pacing.
func (c *Controller) StepsPerSecond() int { return c.sps }

// Status summarises the run state for the HUD.
func (c *Controller) Status() string {
	switch {
	case c.session.Done():
		return "finished"
	case c.paused:
		return "paused"
	default:
		return fmt.Sprintf("running %d/s", c.sps)
	}
}

// Apply executes a single action.
func (c *Controller) Apply(a Action) {
	switch a {
	case ActionTogglePause:
		c.paused = !c.paused
		c.stepper.Pause()
	case ActionStep:
		c.tickOnce = true
	case ActionReset:
		if err := c.session.Reset(); err != nil {
			c.logger.Warn().Err(err).Msg("reset failed")
		}
		c.tickOnce = false
		c.stepper.Pause()
	case ActionReseed:
		c.replace(c.session.WithSeed(c.reseed()))
	case ActionBetaUp:
		c.Nudge("beta", 1)
	case ActionBetaDown:
		c.Nudge("beta", -1)
	case ActionAlphaUp:
		c.Nudge("alpha", 1)
	case ActionAlphaDown:
		c.Nudge("alpha", -1)
	case ActionFaster:
		c.setRate(c.sps * 2)
	case ActionSlower:
		c.setRate(c.sps / 2)
	}
}

// Nudge moves the rate named key by dir control steps and rebuilds the
// session with the result. Unknown keys are ignored.
func (c *Controller) Nudge(key string, dir int) {
	for _, ctrl := range c.controls {
		if ctrl.Key != key {
			continue
		}
		next := c.session.Params().Nudged(ctrl, dir)
		if next == c.session.Params() {
			return
		}
		c.replace(c.session.WithParams(next))
		return
	}
}

func (c *Controller) setRate(sps int) {
	sps = max(1, min(sps, maxStepsPerSecond))
	c.sps = sps
	c.stepper.SetRate(sps)
}

func (c *Controller) replace(s *sir.Session, err error) {
	if err != nil {
		c.logger.Warn().Err(err).Msg("session rebuild rejected")
		return
	}
	c.session = s
	c.tickOnce = false
	c.stepper.Pause()
	p := s.Params()
	c.logger.Info().
		Str("seed", s.Seed()).
		Float64("beta", p.Beta).
		Float64(s.RecoveryLabel(), p.Alpha).
		Msg("session rebuilt")
}

// Advance steps the session when a manual step is pending or, while running,
// when the pacing interval has elapsed. It reports whether a step happened.
func (c *Controller) Advance() bool {
	if c.session.Done() {
		c.tickOnce = false
		return false
	}
	if c.tickOnce {
		c.tickOnce = false
		return c.session.Step()
	}
	if c.paused || !c.stepper.ShouldStep() {
		return false
	}
	return c.session.Step()
}
