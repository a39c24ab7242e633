package core

import "time"

// FixedStep paces simulation steps at a steady steps-per-second rate,
// independent of the host frame rate.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given rate. The
// first call to ShouldStep fires immediately.
func NewFixedStep(sps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetRate(sps)
	fs.accumulator = fs.step
	return fs
}

// SetRate changes the step rate. Non-positive rates fall back to 10/s.
func (f *FixedStep) SetRate(sps int) {
	if sps <= 0 {
		sps = 10
	}
	f.step = time.Second / time.Duration(sps)
}

// Rate returns the configured interval between steps.
func (f *FixedStep) Rate() time.Duration { return f.step }

// Pause drops accumulated time so a resumed run does not burst through the
// steps it missed while paused.
func (f *FixedStep) Pause() {
	f.accumulator = 0
	f.last = time.Time{}
}

// ShouldStep reports whether the simulation should advance by one step. At
// most one step is granted per call.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		if f.accumulator > f.step {
			f.accumulator = f.step
		}
		return true
	}
	return false
}
