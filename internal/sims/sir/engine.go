package sir

import (
	"context"
	"fmt"

	"epigrid/internal/core"
)

// StepFunc observes a committed step. The grid is only valid for the duration
// of the call; clone it to keep it.
type StepFunc func(rec core.StepRecord, g *core.Grid)

type engineOptions struct {
	maxFrames int
	onStep    StepFunc
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithFrames enables snapshot retention capped at maxFrames frames.
func WithFrames(maxFrames int) Option {
	return func(o *engineOptions) { o.maxFrames = maxFrames }
}

// WithStepCallback registers fn to observe every record, starting at t=0.
func WithStepCallback(fn StepFunc) Option {
	return func(o *engineOptions) { o.onStep = fn }
}

// Engine advances one run of the model. It double-buffers two grids: every
// step reads only from the committed grid and writes the other, then swaps.
// An Engine is not safe for concurrent use.
type Engine struct {
	params Params
	src    Source

	cur, nxt *core.Grid
	t        int

	history []core.StepRecord
	frames  *FrameBuffer
	onStep  StepFunc
}

// NewEngine prepares a run from a copy of initial and records t=0. The caller's
// grid is never modified.
func NewEngine(initial *core.Grid, p Params, src Source, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if initial == nil {
		return nil, configErr("grid", "is nil")
	}
	if initial.Rows != p.Rows || initial.Cols != p.Cols {
		return nil, configErr("grid", "is %dx%d, parameters say %dx%d", initial.Rows, initial.Cols, p.Rows, p.Cols)
	}
	if src == nil {
		return nil, configErr("source", "is nil")
	}
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		params:  p,
		src:     src,
		cur:     initial.Clone(),
		nxt:     core.NewGrid(p.Rows, p.Cols),
		history: make([]core.StepRecord, 0, p.T+1),
		onStep:  o.onStep,
	}
	if o.maxFrames > 0 {
		e.frames = NewFrameBuffer(o.maxFrames)
	}
	e.commit(e.cur.Counts())
	return e, nil
}

func (e *Engine) commit(c core.Counts) core.StepRecord {
	if err := c.Check(e.cur.Len()); err != nil {
		panic(err)
	}
	rec := c.Record(e.t)
	e.history = append(e.history, rec)
	e.frames.Offer(e.t, e.cur)
	if e.onStep != nil {
		e.onStep(rec, e.cur)
	}
	return rec
}

// Step advances one step and returns its record. Once t has reached T it
// returns the last record and false without drawing.
func (e *Engine) Step() (core.StepRecord, bool) {
	if e.Done() {
		return e.history[len(e.history)-1], false
	}
	c := advance(e.cur, e.nxt, e.params, e.src)
	e.cur, e.nxt = e.nxt, e.cur
	e.t++
	return e.commit(c), true
}

// Done reports whether the run has reached T.
func (e *Engine) Done() bool { return e.t >= e.params.T }

// Time returns the index of the committed step.
func (e *Engine) Time() int { return e.t }

// Grid exposes the committed grid. It is overwritten two steps later.
func (e *Engine) Grid() *core.Grid { return e.cur }

// Params returns the run parameters.
func (e *Engine) Params() Params { return e.params }

// History returns the records committed so far. Callers must not modify it.
func (e *Engine) History() []core.StepRecord { return e.history }

// Frames returns the retained snapshots, or nil when retention is off.
func (e *Engine) Frames() []Frame { return e.frames.Frames() }

// Trajectory is the output of a headless run.
type Trajectory struct {
	Records []core.StepRecord
	Frames  []Frame
	Final   *core.Grid
}

// Run executes a full run. On cancellation it returns the steps completed so
// far along with the context error.
func Run(ctx context.Context, initial *core.Grid, p Params, src Source, opts ...Option) (Trajectory, error) {
	e, err := NewEngine(initial, p, src, opts...)
	if err != nil {
		return Trajectory{}, err
	}
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return e.trajectory(), fmt.Errorf("run stopped at t=%d: %w", e.t, err)
		}
		e.Step()
	}
	return e.trajectory(), nil
}

func (e *Engine) trajectory() Trajectory {
	return Trajectory{Records: e.history, Frames: e.Frames(), Final: e.cur}
}
