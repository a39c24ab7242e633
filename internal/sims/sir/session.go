package sir

import (
	"epigrid/internal/core"
	"epigrid/pkg/rng"
)

// SessionSource builds the random source for one interactive run. It is
// called again on every Reset.
type SessionSource func() (Source, error)

// SeededSession gives interactive runs PCG stream 0 of the hashed seed, so a
// reset replays the same trajectory.
func SeededSession(seed string) SessionSource {
	base := rng.SeedFromString(seed)
	return func() (Source, error) { return rng.NewStreamRNG(base, 0), nil }
}

type sessionOptions struct {
	source    SessionSource
	maxFrames int
	label     string
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

// WithSessionSource overrides the random source of the session's runs.
func WithSessionSource(src SessionSource) SessionOption {
	return func(o *sessionOptions) { o.source = src }
}

// WithSessionFrames sets the snapshot cap; 0 disables retention.
func WithSessionFrames(max int) SessionOption {
	return func(o *sessionOptions) { o.maxFrames = max }
}

// WithRecoveryLabel sets the display name of the recovery rate ("alpha" or
// "gamma"). It does not change the model.
func WithRecoveryLabel(label string) SessionOption {
	return func(o *sessionOptions) { o.label = label }
}

// Session is the state a host drives one step at a time: parameters, the
// seeded initial grid and the running engine. Parameter changes build a new
// Session instead of mutating this one.
type Session struct {
	params  Params
	seed    string
	opts    sessionOptions
	source  SessionSource
	initial *core.Grid
	engine  *Engine
}

// NewSession seeds the initial grid and prepares the first run.
func NewSession(p Params, seed string, opts ...SessionOption) (*Session, error) {
	o := sessionOptions{maxFrames: DefaultMaxFrames, label: "alpha"}
	for _, opt := range opts {
		opt(&o)
	}
	source := o.source
	if source == nil {
		source = SeededSession(seed)
	}
	initial, err := Initial(p, seed)
	if err != nil {
		return nil, err
	}
	s := &Session{params: p, seed: seed, opts: o, source: source, initial: initial}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithParams returns a new session for p that keeps the seed and options.
func (s *Session) WithParams(p Params) (*Session, error) {
	return NewSession(p, s.seed, s.sessionOpts()...)
}

// WithSeed returns a new session with a different seed. A custom source set
// on s is kept; the default seeded source follows the new seed.
func (s *Session) WithSeed(seed string) (*Session, error) {
	return NewSession(s.params, seed, s.sessionOpts()...)
}

func (s *Session) sessionOpts() []SessionOption {
	o := s.opts
	return []SessionOption{func(dst *sessionOptions) { *dst = o }}
}

// Reset restarts the run from the initial grid.
func (s *Session) Reset() error {
	src, err := s.source()
	if err != nil {
		return err
	}
	var opts []Option
	if s.opts.maxFrames > 0 {
		opts = append(opts, WithFrames(s.opts.maxFrames))
	}
	e, err := NewEngine(s.initial, s.params, src, opts...)
	if err != nil {
		return err
	}
	s.engine = e
	return nil
}

// Step advances one step. It returns false once T has been reached.
func (s *Session) Step() bool {
	_, ok := s.engine.Step()
	return ok
}

// Name identifies the model in exports and window titles.
func (s *Session) Name() string { return "grid" }

// Size returns the grid dimensions.
func (s *Session) Size() core.Size { return core.Size{Rows: s.params.Rows, Cols: s.params.Cols} }

// Time returns the current step index.
func (s *Session) Time() int { return s.engine.Time() }

// Done reports whether the run has reached T.
func (s *Session) Done() bool { return s.engine.Done() }

// Cells exposes the committed grid's cells.
func (s *Session) Cells() []core.CellState { return s.engine.Grid().Cells() }

// Counts returns the latest census.
func (s *Session) Counts() core.Counts {
	h := s.engine.History()
	return h[len(h)-1].Counts()
}

// Grid exposes the committed grid.
func (s *Session) Grid() *core.Grid { return s.engine.Grid() }

// Initial exposes the seeded initial grid. Callers must not modify it.
func (s *Session) Initial() *core.Grid { return s.initial }

// Params returns the session parameters.
func (s *Session) Params() Params { return s.params }

// Seed returns the initializer seed.
func (s *Session) Seed() string { return s.seed }

// RecoveryLabel returns the display name of Alpha.
func (s *Session) RecoveryLabel() string { return s.opts.label }

// History returns the records of the current run.
func (s *Session) History() []core.StepRecord { return s.engine.History() }

// Frames returns the retained snapshots of the current run.
func (s *Session) Frames() []Frame { return s.engine.Frames() }

var _ core.Sim = (*Session)(nil)
