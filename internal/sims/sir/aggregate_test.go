package sir

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync/atomic"
	"testing"

	"epigrid/internal/core"
)

func aggregateParams() Params {
	return Params{Rows: 16, Cols: 16, I0: 5, T: 25, Radius: 1, Beta: 0.8, Alpha: 0.15}
}

func TestAggregateMeanMatchesRuns(t *testing.T) {
	p := aggregateParams()
	g := mustInitial(t, p, "mean")
	const nexp = 7

	batch, err := Aggregate(context.Background(), g, p, nexp, DeterministicSources("mean"), WithWorkers(3))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(batch.Runs) != nexp {
		t.Fatalf("expected %d runs, got %d", nexp, len(batch.Runs))
	}
	initial := g.Counts().Record(0)
	for k, run := range batch.Runs {
		if run.RunID != k {
			t.Fatalf("run %d has id %d", k, run.RunID)
		}
		checkInvariants(t, p, run.Records)
		if run.Records[0] != initial {
			t.Fatalf("run %d starts at %+v, want %+v", k, run.Records[0], initial)
		}
	}

	if len(batch.Mean.Steps) != p.T+1 {
		t.Fatalf("mean has %d steps, want %d", len(batch.Mean.Steps), p.T+1)
	}
	for ti, m := range batch.Mean.Steps {
		var s, i, r float64
		for _, run := range batch.Runs {
			s += float64(run.Records[ti].S)
			i += float64(run.Records[ti].I)
			r += float64(run.Records[ti].R)
		}
		if m.T != ti ||
			math.Abs(m.S-s/nexp) > 1e-9 ||
			math.Abs(m.I-i/nexp) > 1e-9 ||
			math.Abs(m.R-r/nexp) > 1e-9 {
			t.Fatalf("t=%d mean %+v, want s=%v i=%v r=%v", ti, m, s/nexp, i/nexp, r/nexp)
		}
	}

	if !reflect.DeepEqual(MeanOf(batch.Runs), batch.Mean) {
		t.Fatal("MeanOf disagrees with the batch mean")
	}
}

func TestAggregateIndependentOfWorkerCount(t *testing.T) {
	p := aggregateParams()
	g := mustInitial(t, p, "workers")
	serial, err := Aggregate(context.Background(), g, p, 6, DeterministicSources("workers"), WithWorkers(1))
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := Aggregate(context.Background(), g, p, 6, DeterministicSources("workers"), WithWorkers(6))
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !reflect.DeepEqual(serial, parallel) {
		t.Fatal("worker count changed the batch result")
	}
}

func TestAggregateLeavesInitialUntouched(t *testing.T) {
	p := aggregateParams()
	g := mustInitial(t, p, "shared")
	before := g.Clone()
	var seen atomic.Int32
	_, err := Aggregate(context.Background(), g, p, 5, DeterministicSources("shared"),
		WithRunCallback(func(RunResult) { seen.Add(1) }))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !g.Equal(before) {
		t.Fatal("aggregate modified the shared initial grid")
	}
	if seen.Load() != 5 {
		t.Fatalf("run callback fired %d times, want 5", seen.Load())
	}
}

func TestAggregateRejectsBadInput(t *testing.T) {
	p := aggregateParams()
	g := mustInitial(t, p, "bad")
	if _, err := Aggregate(context.Background(), g, p, 0, DeterministicSources("bad")); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("nexp=0: %v", err)
	}
	if _, err := Aggregate(context.Background(), g, p, 2, nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("nil sources: %v", err)
	}
	if _, err := Aggregate(context.Background(), core.NewGrid(3, 3), p, 2, DeterministicSources("bad")); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("grid mismatch: %v", err)
	}
}

func TestAggregatePropagatesSourceFailure(t *testing.T) {
	p := aggregateParams()
	g := mustInitial(t, p, "fail")
	failing := func(runID int) (Source, error) {
		if runID == 2 {
			return nil, core.ErrInitialization
		}
		return constSource(0.5), nil
	}
	_, err := Aggregate(context.Background(), g, p, 4, failing, WithWorkers(1))
	if !errors.Is(err, core.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
}

func TestAggregateCancelled(t *testing.T) {
	p := aggregateParams()
	g := mustInitial(t, p, "cancelled")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Aggregate(ctx, g, p, 3, DeterministicSources("cancelled")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEntropySourcesProduceDraws(t *testing.T) {
	src, err := EntropySources()(0)
	if err != nil {
		t.Fatalf("entropy: %v", err)
	}
	if u := src.Float64(); u < 0 || u >= 1 {
		t.Fatalf("draw %v outside [0,1)", u)
	}
}
