package core

import (
	"errors"
	"fmt"
)

// ErrInitialization reports that a randomness source could not be prepared.
var ErrInitialization = errors.New("initialization failed")

// Size describes the dimensions of a simulation grid.
type Size struct {
	Rows int
	Cols int
}

// Counts holds the number of cells in each compartment.
type Counts struct {
	S, I, R int
}

// Total returns S+I+R.
func (c Counts) Total() int { return c.S + c.I + c.R }

// Check returns an InvariantError when the counts do not add up to total.
func (c Counts) Check(total int) error {
	if c.S < 0 || c.I < 0 || c.R < 0 || c.Total() != total {
		return &InvariantError{Counts: c, Want: total}
	}
	return nil
}

// StepRecord is the census of a grid at time T.
type StepRecord struct {
	T int `json:"t"`
	S int `json:"s"`
	I int `json:"i"`
	R int `json:"r"`
}

// Record builds the StepRecord for time t from c.
func (c Counts) Record(t int) StepRecord {
	return StepRecord{T: t, S: c.S, I: c.I, R: c.R}
}

// Counts returns the compartment counts of the record.
func (r StepRecord) Counts() Counts { return Counts{S: r.S, I: r.I, R: r.R} }

// InvariantError signals that a snapshot no longer accounts for every cell.
// Seeing one means a bug in the stepping code.
type InvariantError struct {
	Counts Counts
	Want   int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("state invariant violated: s=%d i=%d r=%d sum=%d, want %d",
		e.Counts.S, e.Counts.I, e.Counts.R, e.Counts.Total(), e.Want)
}

// Sim defines the contract the interactive viewer drives. Step advances one
// tick and reports false once the run has reached its final step.
type Sim interface {
	Name() string
	Size() Size
	Reset() error
	Step() bool
	Time() int
	Cells() []CellState
	Counts() Counts
}
