package sir

import (
	"errors"
	"slices"
	"testing"

	"epigrid/internal/core"
)

func TestSessionStepsToCompletionAndResets(t *testing.T) {
	p := Params{Rows: 12, Cols: 12, I0: 4, T: 15, Radius: 1, Beta: 0.9, Alpha: 0.2}
	s, err := NewSession(p, "session")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if s.Time() != 0 || s.Counts().I != 4 {
		t.Fatalf("fresh session at t=%d counts %+v", s.Time(), s.Counts())
	}
	for s.Step() {
	}
	if !s.Done() || s.Time() != p.T {
		t.Fatalf("expected session done at t=%d, got t=%d", p.T, s.Time())
	}
	first := slices.Clone(s.History())
	checkInvariants(t, p, first)

	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Time() != 0 {
		t.Fatalf("reset left t=%d", s.Time())
	}
	for s.Step() {
	}
	if !slices.Equal(first, s.History()) {
		t.Fatal("reset with the seeded source should replay the same trajectory")
	}
}

func TestSessionPauseResumeKeepsState(t *testing.T) {
	p := Params{Rows: 10, Cols: 10, I0: 3, T: 10, Radius: 1, Beta: 0.7, Alpha: 0.1}
	a, _ := NewSession(p, "pause")
	b, _ := NewSession(p, "pause")
	for i := 0; i < 4; i++ {
		a.Step()
	}
	// A paused host simply stops calling Step; the committed grid stays put.
	snapshot := a.Grid().Clone()
	if !a.Grid().Equal(snapshot) {
		t.Fatal("grid changed without a step")
	}
	for a.Step() {
	}
	for b.Step() {
	}
	if !slices.Equal(a.History(), b.History()) {
		t.Fatal("pausing changed the trajectory")
	}
}

func TestSessionWithParamsBuildsNewSession(t *testing.T) {
	p := Params{Rows: 10, Cols: 10, I0: 3, T: 5, Radius: 1, Beta: 0.5, Alpha: 0.1}
	s, err := NewSession(p, "params", WithRecoveryLabel("gamma"))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	s.Step()

	next, err := s.WithParams(p.Nudged(Controls("gamma")[0], 2))
	if err != nil {
		t.Fatalf("with params: %v", err)
	}
	if next == s {
		t.Fatal("expected a new session value")
	}
	if next.Params().Beta != 0.6 || s.Params().Beta != 0.5 {
		t.Fatalf("beta: new=%v old=%v", next.Params().Beta, s.Params().Beta)
	}
	if next.Time() != 0 || s.Time() != 1 {
		t.Fatalf("times: new=%d old=%d", next.Time(), s.Time())
	}
	if next.RecoveryLabel() != "gamma" {
		t.Fatalf("recovery label not carried over: %q", next.RecoveryLabel())
	}
	if !next.Initial().Equal(s.Initial()) {
		t.Fatal("same seed and size must give the same initial grid")
	}

	bad := p
	bad.I0 = 1000
	if _, err := s.WithParams(bad); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSessionWithSeedChangesInitialGrid(t *testing.T) {
	p := Params{Rows: 20, Cols: 20, I0: 10, T: 5, Radius: 1, Beta: 0.5, Alpha: 0.1}
	s, _ := NewSession(p, "one")
	other, err := s.WithSeed("two")
	if err != nil {
		t.Fatalf("with seed: %v", err)
	}
	if other.Seed() != "two" || other.Initial().Equal(s.Initial()) {
		t.Fatal("reseeded session should place different cells")
	}
}

func TestSessionCustomSourceAndFrames(t *testing.T) {
	p := Params{Rows: 6, Cols: 6, I0: 2, T: 6, Radius: 1, Beta: 0, Alpha: 1}
	s, err := NewSession(p, "custom",
		WithSessionSource(func() (Source, error) { return constSource(0), nil }),
		WithSessionFrames(16))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	s.Step()
	if got := s.Counts(); got != (core.Counts{S: 34, I: 0, R: 2}) {
		t.Fatalf("alpha=1 with u=0 should recover everyone, got %+v", got)
	}
	if len(s.Frames()) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(s.Frames()))
	}

	failing := func() (Source, error) { return nil, core.ErrInitialization }
	if _, err := NewSession(p, "custom", WithSessionSource(failing)); !errors.Is(err, core.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
}

func TestParametersSnapshotUsesRecoveryLabel(t *testing.T) {
	p := DefaultParams()
	s, err := NewSession(p, "labels", WithRecoveryLabel("gamma"))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	snap := s.Parameters()
	if len(snap.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(snap.Groups))
	}
	var found bool
	for _, param := range snap.Groups[1].Params {
		if param.Key == "alpha" {
			found = true
			if param.Label != "gamma" || param.Value != "0.1" {
				t.Fatalf("alpha shown as %q=%q", param.Label, param.Value)
			}
		}
	}
	if !found {
		t.Fatal("alpha missing from snapshot")
	}
}

func TestControlsClamp(t *testing.T) {
	p := Params{Beta: 0.98, Alpha: 0.005}
	ctrls := Controls("")
	p = p.Nudged(ctrls[0], 1)
	p = p.Nudged(ctrls[1], -1)
	if p.Beta != 1 || p.Alpha != 0 {
		t.Fatalf("expected clamped rates, got beta=%v alpha=%v", p.Beta, p.Alpha)
	}
}
