package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"epigrid/internal/config"
	"epigrid/internal/core"
	"epigrid/internal/export"
	"epigrid/internal/render"
	"epigrid/internal/sims/sir"

	"github.com/rs/zerolog"
)

// run seeds the grid, aggregates the batch and writes every requested output.
// The returned payload is what was (or would have been) saved as JSON.
func run(ctx context.Context, cfg config.Config, out io.Writer, logger zerolog.Logger) (export.Payload, error) {
	p := cfg.Params
	initial, err := sir.Initial(p, cfg.Seed)
	if err != nil {
		return export.Payload{}, err
	}
	logger.Info().
		Int("M", p.Rows).Int("N", p.Cols).Int("I0", p.I0).Int("T", p.T).Int("r", p.Radius).
		Float64("beta", p.Beta).Float64(cfg.RecoveryLabel, p.Alpha).
		Int("nexp", cfg.Nexp).Str("seed", cfg.Seed).
		Msg("starting batch")

	sources := sir.DeterministicSources(cfg.Seed)
	if cfg.Entropy {
		sources = sir.EntropySources()
	}

	start := time.Now()
	batch, err := sir.Aggregate(ctx, initial, p, cfg.Nexp, sources,
		sir.WithWorkers(cfg.Workers),
		sir.WithLogger(logger),
	)
	if err != nil {
		return export.Payload{}, err
	}

	payload := export.Build(p, batch, export.Options{Seed: cfg.Seed, Note: cfg.Note, Workers: cfg.Workers})
	if path := cfg.Output.JSON; path != "" {
		if err := export.WriteFile(path, payload); err != nil {
			return payload, err
		}
		logger.Info().Str("path", path).Str("batch_id", payload.Meta.BatchID).Msg("results written")
	}

	if cfg.Output.Chart != "" || cfg.Output.GIF != "" || cfg.Output.MJPEG != "" {
		if err := writeVisuals(ctx, cfg, initial, batch, sources, logger); err != nil {
			return payload, err
		}
	}

	printSummary(out, p, batch, time.Since(start))
	return payload, nil
}

// writeVisuals re-runs run 0 with snapshot retention and renders it next to
// the batch mean.
func writeVisuals(ctx context.Context, cfg config.Config, initial *core.Grid, batch sir.Batch, sources sir.SourceFactory, logger zerolog.Logger) error {
	src, err := sources(0)
	if err != nil {
		return err
	}
	traj, err := sir.Run(ctx, initial, cfg.Params, src, sir.WithFrames(cfg.MaxFrames))
	if err != nil {
		return err
	}

	if path := cfg.Output.Chart; path != "" {
		opts := render.ChartOptions{Cells: cfg.Params.Cells(), RecoveryLabel: cfg.RecoveryLabel}
		if err := writeTo(path, func(w io.Writer) error {
			return render.WriteChart(w, cfg.Params, batch.Mean, traj.Records, opts)
		}); err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("chart written")
	}

	anim := render.AnimOptions{Scale: cfg.Output.Scale, FPS: cfg.Output.FPS, Labels: true}
	if path := cfg.Output.GIF; path != "" {
		if err := writeTo(path, func(w io.Writer) error {
			return render.WriteGIF(w, traj.Frames, anim)
		}); err != nil {
			return err
		}
		logger.Info().Str("path", path).Int("frames", len(traj.Frames)).Msg("gif written")
	}
	if path := cfg.Output.MJPEG; path != "" {
		if err := render.WriteMJPEG(path, traj.Frames, anim); err != nil {
			return err
		}
		logger.Info().Str("path", path).Int("frames", len(traj.Frames)).Msg("mjpeg written")
	}
	return nil
}

func writeTo(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, p sir.Params, batch sir.Batch, elapsed time.Duration) {
	last := batch.Mean.Steps[len(batch.Mean.Steps)-1]
	cells := float64(p.Cells())
	peakT, peakI := 0, 0.0
	for _, m := range batch.Mean.Steps {
		if m.I > peakI {
			peakT, peakI = m.T, m.I
		}
	}
	fmt.Fprintf(w, "Runs: %d  steps: %d  elapsed: %s\n", len(batch.Runs), p.T, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Peak mean infected: %.2f at t=%d\n", peakI, peakT)
	fmt.Fprintln(w, "Final distribution (mean):")
	fmt.Fprintf(w, "  S %10.2f  %5.1f%%\n", last.S, 100*last.S/cells)
	fmt.Fprintf(w, "  I %10.2f  %5.1f%%\n", last.I, 100*last.I/cells)
	fmt.Fprintf(w, "  R %10.2f  %5.1f%%\n", last.R, 100*last.R/cells)
}
