package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"epigrid/internal/config"
	"epigrid/internal/logging"
	"epigrid/internal/sims/sir"

	"github.com/rs/zerolog/log"
)

func main() {
	logger := logging.New("sir-sweep", os.Stderr)

	cfgPath := flag.String("config", "", "TOML run file for the base parameters and seed")
	betaMin := flag.Float64("beta-min", 0.1, "lowest beta")
	betaMax := flag.Float64("beta-max", 1.0, "highest beta")
	betaSteps := flag.Int("beta-steps", 10, "beta grid points")
	alphaMin := flag.Float64("alpha-min", 0.02, "lowest alpha")
	alphaMax := flag.Float64("alpha-max", 0.3, "highest alpha")
	alphaSteps := flag.Int("alpha-steps", 8, "alpha grid points")
	nexp := flag.Int("nexp", 5, "runs per parameter set")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	top := flag.Int("top", 5, "results to list per ranking")
	var overrides config.KVList
	flag.Var(&overrides, "set", "base parameter override in key=value form (repeatable)")
	flag.Parse()

	base := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath, base)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		base = loaded
	}
	params := base.Params
	if len(overrides) > 0 {
		kv, err := overrides.Map()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid override")
		}
		if params, err = sir.FromMap(params, kv); err != nil {
			log.Fatal().Err(err).Msg("invalid override")
		}
	}

	sets := grid(axis(*betaMin, *betaMax, *betaSteps), axis(*alphaMin, *alphaMax, *alphaSteps))
	for _, s := range sets {
		p := params
		p.Beta, p.Alpha = s.beta, s.alpha
		if err := p.Validate(); err != nil {
			log.Fatal().Err(err).Str("set", s.String()).Msg("sweep range out of bounds")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Sweeping %d parameter sets (%d workers, %d runs each, %dx%d grid, T=%d)\n",
		len(sets), *workers, *nexp, params.Rows, params.Cols, params.T)
	start := time.Now()
	all, err := sweep(ctx, params, base.Seed, sets, *nexp, *workers)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep failed")
	}
	elapsed := time.Since(start)
	logger.Info().Int("sets", len(all)).Dur("elapsed", elapsed).Msg("sweep complete")

	byPeak(all)
	fmt.Printf("\nTop %d by peak mean infected (elapsed %s):\n", *top, elapsed.Round(time.Millisecond))
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		fmt.Printf("%2d) peakI=%.2f at t=%d attack=%.1f%% %s\n", i+1, res.peakI, res.peakT, 100*res.attackRate, res.params)
	}

	byAttackRate(all)
	fmt.Printf("\nTop %d by final attack rate:\n", *top)
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		fmt.Printf("%2d) attack=%.1f%% finalI=%.2f peakI=%.2f %s\n", i+1, 100*res.attackRate, res.finalI, res.peakI, res.params)
	}
}
