package sir

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"epigrid/internal/core"
	"epigrid/pkg/rng"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RunResult is one trajectory tagged with its run id.
type RunResult struct {
	RunID   int
	Records []core.StepRecord
}

// MeanRecord holds the mean compartment sizes at time T.
type MeanRecord struct {
	T int
	S float64
	I float64
	R float64
}

// AggregateResult is the elementwise mean trajectory of a batch.
type AggregateResult struct {
	Steps []MeanRecord
}

// Batch is the output of Aggregate: every run in run-id order plus their mean.
type Batch struct {
	Runs []RunResult
	Mean AggregateResult
}

// SourceFactory returns the random source of a given run.
type SourceFactory func(runID int) (Source, error)

// DeterministicSources gives run k the PCG stream k+1 of the hashed seed.
// Stream 0 is left for interactive sessions.
func DeterministicSources(seed string) SourceFactory {
	base := rng.SeedFromString(seed)
	return func(runID int) (Source, error) {
		return rng.NewStreamRNG(base, uint64(runID)+1), nil
	}
}

// EntropySources seeds every run from crypto/rand.
func EntropySources() SourceFactory {
	return func(runID int) (Source, error) {
		r, err := rng.NewEntropyRNG()
		if err != nil {
			return nil, fmt.Errorf("%w: run %d: %w", core.ErrInitialization, runID, err)
		}
		return r, nil
	}
}

type aggregateOptions struct {
	workers int
	logger  zerolog.Logger
	onRun   func(RunResult)
}

// AggregateOption configures Aggregate.
type AggregateOption func(*aggregateOptions)

// WithWorkers bounds the number of concurrent runs. n < 1 means NumCPU.
func WithWorkers(n int) AggregateOption {
	return func(o *aggregateOptions) { o.workers = n }
}

// WithLogger sets the logger used for per-run and batch progress.
func WithLogger(l zerolog.Logger) AggregateOption {
	return func(o *aggregateOptions) { o.logger = l }
}

// WithRunCallback observes each finished run. It may be called concurrently.
func WithRunCallback(fn func(RunResult)) AggregateOption {
	return func(o *aggregateOptions) { o.onRun = fn }
}

// accumulator sums counts per time index. Integer addition is exact, so the
// order in which runs are folded does not change the result.
type accumulator struct {
	mu      sync.Mutex
	s, i, r []int64
	n       int
}

func newAccumulator(steps int) *accumulator {
	return &accumulator{s: make([]int64, steps), i: make([]int64, steps), r: make([]int64, steps)}
}

func (a *accumulator) add(records []core.StepRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for t, rec := range records {
		a.s[t] += int64(rec.S)
		a.i[t] += int64(rec.I)
		a.r[t] += int64(rec.R)
	}
	a.n++
}

func (a *accumulator) mean() AggregateResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := AggregateResult{Steps: make([]MeanRecord, len(a.s))}
	if a.n == 0 {
		return out
	}
	n := float64(a.n)
	for t := range a.s {
		out.Steps[t] = MeanRecord{
			T: t,
			S: float64(a.s[t]) / n,
			I: float64(a.i[t]) / n,
			R: float64(a.r[t]) / n,
		}
	}
	return out
}

// MeanOf recomputes the mean trajectory of runs. All runs must have the same
// length.
func MeanOf(runs []RunResult) AggregateResult {
	if len(runs) == 0 {
		return AggregateResult{}
	}
	acc := newAccumulator(len(runs[0].Records))
	for _, run := range runs {
		acc.add(run.Records)
	}
	return acc.mean()
}

// Aggregate runs nexp independent trajectories from clones of initial and
// averages their counts per step. initial is only read. Runs execute on a
// bounded errgroup; the first failure cancels the rest.
func Aggregate(ctx context.Context, initial *core.Grid, p Params, nexp int, sources SourceFactory, opts ...AggregateOption) (Batch, error) {
	if err := p.Validate(); err != nil {
		return Batch{}, err
	}
	if nexp < 1 {
		return Batch{}, configErr("Nexp", "must be >= 1, got %d", nexp)
	}
	if sources == nil {
		return Batch{}, configErr("sources", "is nil")
	}
	if initial == nil || initial.Rows != p.Rows || initial.Cols != p.Cols {
		return Batch{}, configErr("grid", "does not match %dx%d parameters", p.Rows, p.Cols)
	}

	o := aggregateOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}

	start := time.Now()
	runs := make([]RunResult, nexp)
	acc := newAccumulator(p.T + 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for k := 0; k < nexp; k++ {
		g.Go(func() error {
			src, err := sources(k)
			if err != nil {
				return err
			}
			traj, err := Run(gctx, initial, p, src)
			if err != nil {
				return fmt.Errorf("run %d: %w", k, err)
			}
			res := RunResult{RunID: k, Records: traj.Records}
			runs[k] = res
			acc.add(res.Records)
			last := res.Records[len(res.Records)-1]
			o.logger.Debug().
				Int("run", k).
				Int("s", last.S).
				Int("i", last.I).
				Int("r", last.R).
				Msg("run complete")
			if o.onRun != nil {
				o.onRun(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	o.logger.Info().
		Int("nexp", nexp).
		Int("workers", o.workers).
		Int("steps", p.T).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
	return Batch{Runs: runs, Mean: acc.mean()}, nil
}
