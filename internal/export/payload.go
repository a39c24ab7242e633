// Package export converts batch results into the JSON document consumed by
// file-save collaborators and reads it back.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"epigrid/internal/core"
	"epigrid/internal/sims/sir"

	"github.com/google/uuid"
)

// ModelName is the value of meta.model for grid runs.
const ModelName = "grid"

// DefaultNote describes the batch design when the caller gives no note.
const DefaultNote = "Fixed initial condition for all runs; stochastic dynamics per step"

// meanTolerance bounds the disagreement Verify accepts between a stored mean
// and one recomputed from the runs.
const meanTolerance = 1e-9

// ErrMalformed reports a payload whose arrays disagree with its metadata.
var ErrMalformed = errors.New("malformed payload")

// Params mirrors sir.Params with the export key names.
type Params struct {
	M     int     `json:"M"`
	N     int     `json:"N"`
	I0    int     `json:"I0"`
	T     int     `json:"T"`
	R     int     `json:"r"`
	Beta  float64 `json:"beta"`
	Alpha float64 `json:"alpha"`
}

// Meta describes the batch.
type Meta struct {
	Model    string `json:"model"`
	Params   Params `json:"params"`
	Nexp     int    `json:"Nexp"`
	SeedInit string `json:"seed_init"`
	Note     string `json:"note"`
	BatchID  string `json:"batch_id,omitempty"`
	Workers  int    `json:"workers,omitempty"`
}

// Run is one trajectory in column form.
type Run struct {
	RunID int   `json:"run_id"`
	T     []int `json:"t"`
	S     []int `json:"s"`
	I     []int `json:"i"`
	R     []int `json:"r"`
}

// Mean is the mean trajectory in column form.
type Mean struct {
	T []int     `json:"t"`
	S []float64 `json:"s"`
	I []float64 `json:"i"`
	R []float64 `json:"r"`
}

// Payload is the exported document.
type Payload struct {
	Meta Meta  `json:"meta"`
	Runs []Run `json:"runs"`
	Mean Mean  `json:"mean"`
}

// Options carries the metadata that is not part of the batch itself.
type Options struct {
	Seed    string
	Note    string
	Workers int
}

// FromParams converts model parameters to their export form.
func FromParams(p sir.Params) Params {
	return Params{M: p.Rows, N: p.Cols, I0: p.I0, T: p.T, R: p.Radius, Beta: p.Beta, Alpha: p.Alpha}
}

// Model converts export parameters back to model parameters.
func (p Params) Model() sir.Params {
	return sir.Params{Rows: p.M, Cols: p.N, I0: p.I0, T: p.T, Radius: p.R, Beta: p.Beta, Alpha: p.Alpha}
}

// Build assembles the payload of a finished batch and stamps a fresh batch id.
func Build(p sir.Params, batch sir.Batch, opts Options) Payload {
	note := opts.Note
	if note == "" {
		note = DefaultNote
	}
	out := Payload{
		Meta: Meta{
			Model:    ModelName,
			Params:   FromParams(p),
			Nexp:     len(batch.Runs),
			SeedInit: opts.Seed,
			Note:     note,
			BatchID:  uuid.NewString(),
			Workers:  opts.Workers,
		},
		Runs: make([]Run, 0, len(batch.Runs)),
		Mean: meanColumns(batch.Mean),
	}
	for _, run := range batch.Runs {
		out.Runs = append(out.Runs, runColumns(run))
	}
	return out
}

func runColumns(run sir.RunResult) Run {
	n := len(run.Records)
	out := Run{RunID: run.RunID, T: make([]int, n), S: make([]int, n), I: make([]int, n), R: make([]int, n)}
	for k, rec := range run.Records {
		out.T[k] = rec.T
		out.S[k] = rec.S
		out.I[k] = rec.I
		out.R[k] = rec.R
	}
	return out
}

func meanColumns(agg sir.AggregateResult) Mean {
	n := len(agg.Steps)
	out := Mean{T: make([]int, n), S: make([]float64, n), I: make([]float64, n), R: make([]float64, n)}
	for k, m := range agg.Steps {
		out.T[k] = m.T
		out.S[k] = m.S
		out.I[k] = m.I
		out.R[k] = m.R
	}
	return out
}

// Records converts a run back to step records.
func (r Run) Records() []core.StepRecord {
	out := make([]core.StepRecord, len(r.T))
	for k := range r.T {
		out[k] = core.StepRecord{T: r.T[k], S: r.S[k], I: r.I[k], R: r.R[k]}
	}
	return out
}

// Batch converts the payload back to model results.
func (p Payload) Batch() sir.Batch {
	b := sir.Batch{Runs: make([]sir.RunResult, len(p.Runs))}
	for k, run := range p.Runs {
		b.Runs[k] = sir.RunResult{RunID: run.RunID, Records: run.Records()}
	}
	b.Mean.Steps = make([]sir.MeanRecord, len(p.Mean.T))
	for k := range p.Mean.T {
		b.Mean.Steps[k] = sir.MeanRecord{T: p.Mean.T[k], S: p.Mean.S[k], I: p.Mean.I[k], R: p.Mean.R[k]}
	}
	return b
}

// Verify checks array lengths against the metadata, the cell invariant of
// every run, and that the stored mean matches a recomputation from the runs.
func (p Payload) Verify() error {
	steps := p.Meta.Params.T + 1
	cells := p.Meta.Params.M * p.Meta.Params.N
	if len(p.Runs) != p.Meta.Nexp {
		return fmt.Errorf("%w: %d runs, meta says %d", ErrMalformed, len(p.Runs), p.Meta.Nexp)
	}
	for _, run := range p.Runs {
		if len(run.T) != steps || len(run.S) != steps || len(run.I) != steps || len(run.R) != steps {
			return fmt.Errorf("%w: run %d does not have %d steps", ErrMalformed, run.RunID, steps)
		}
		for _, rec := range run.Records() {
			if err := rec.Counts().Check(cells); err != nil {
				return fmt.Errorf("%w: run %d t=%d: %w", ErrMalformed, run.RunID, rec.T, err)
			}
		}
	}
	if len(p.Mean.T) != steps || len(p.Mean.S) != steps || len(p.Mean.I) != steps || len(p.Mean.R) != steps {
		return fmt.Errorf("%w: mean does not have %d steps", ErrMalformed, steps)
	}
	if len(p.Runs) == 0 {
		return nil
	}
	fresh := sir.MeanOf(p.Batch().Runs)
	for k, m := range fresh.Steps {
		if math.Abs(m.S-p.Mean.S[k]) > meanTolerance ||
			math.Abs(m.I-p.Mean.I[k]) > meanTolerance ||
			math.Abs(m.R-p.Mean.R[k]) > meanTolerance {
			return fmt.Errorf("%w: mean at t=%d differs from runs", ErrMalformed, k)
		}
	}
	return nil
}

// Encode writes the payload as indented JSON.
func Encode(w io.Writer, p Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}

// Decode reads a payload.
func Decode(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// WriteFile encodes p to path.
func WriteFile(path string, p Payload) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes the payload at path.
func ReadFile(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return Payload{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
