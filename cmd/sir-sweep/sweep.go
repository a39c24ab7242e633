package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"epigrid/internal/core"
	"epigrid/internal/sims/sir"
)

type paramSet struct {
	beta  float64
	alpha float64
}

func (p paramSet) String() string {
	return fmt.Sprintf("beta=%.3f alpha=%.3f", p.beta, p.alpha)
}

type scenarioResult struct {
	params     paramSet
	peakI      float64
	peakT      int
	attackRate float64
	finalI     float64
	err        error
}

// axis returns n evenly spaced values from lo to hi inclusive.
func axis(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func grid(betas, alphas []float64) []paramSet {
	sets := make([]paramSet, 0, len(betas)*len(alphas))
	for _, b := range betas {
		for _, a := range alphas {
			sets = append(sets, paramSet{beta: b, alpha: a})
		}
	}
	return sets
}

// sweep evaluates every set on a pool of workers. All sets share the same
// initial grid and run streams, so differences come from the rates alone.
func sweep(ctx context.Context, base sir.Params, seed string, sets []paramSet, nexp, workers int) ([]scenarioResult, error) {
	initial, err := sir.Initial(base, seed)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- runScenario(ctx, initial, base, seed, params, nexp)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, params := range sets {
			select {
			case jobs <- params:
			case <-ctx.Done():
				return
			}
		}
	}()

	var all []scenarioResult
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		all = append(all, res)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

func runScenario(ctx context.Context, initial *core.Grid, base sir.Params, seed string, params paramSet, nexp int) scenarioResult {
	p := base
	p.Beta = params.beta
	p.Alpha = params.alpha
	res := scenarioResult{params: params}

	batch, err := sir.Aggregate(ctx, initial, p, nexp, sir.DeterministicSources(seed), sir.WithWorkers(1))
	if err != nil {
		res.err = fmt.Errorf("%s: %w", params, err)
		return res
	}
	for _, m := range batch.Mean.Steps {
		if m.I > res.peakI {
			res.peakI, res.peakT = m.I, m.T
		}
	}
	last := batch.Mean.Steps[len(batch.Mean.Steps)-1]
	res.attackRate = 1 - last.S/float64(p.Cells())
	res.finalI = last.I
	return res
}

func byPeak(all []scenarioResult) {
	sort.Slice(all, func(i, j int) bool {
		if all[i].peakI != all[j].peakI {
			return all[i].peakI > all[j].peakI
		}
		return all[i].params.String() < all[j].params.String()
	})
}

func byAttackRate(all []scenarioResult) {
	sort.Slice(all, func(i, j int) bool {
		if all[i].attackRate != all[j].attackRate {
			return all[i].attackRate > all[j].attackRate
		}
		return all[i].params.String() < all[j].params.String()
	})
}
