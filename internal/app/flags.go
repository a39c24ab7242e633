package app

import (
	"flag"

	"epigrid/internal/config"
	"epigrid/internal/sims/sir"
)

// Config represents the command-line parameters of the viewer.
type Config struct {
	Path          string
	Params        sir.Params
	Seed          string
	RecoveryLabel string
	Scale         int
	TPS           int
	SPS           int
	Panel         int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Params:        sir.DefaultParams(),
		Seed:          "epigrid",
		RecoveryLabel: "alpha",
		Scale:         5,
		TPS:           60,
		SPS:           10,
		Panel:         240,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Path, "config", c.Path, "TOML run file supplying params, seed and recovery_label")
	fs.IntVar(&c.Params.Rows, "M", c.Params.Rows, "grid rows")
	fs.IntVar(&c.Params.Cols, "N", c.Params.Cols, "grid columns")
	fs.IntVar(&c.Params.I0, "I0", c.Params.I0, "initially infected cells")
	fs.IntVar(&c.Params.T, "T", c.Params.T, "time steps")
	fs.IntVar(&c.Params.Radius, "r", c.Params.Radius, "neighbourhood radius")
	fs.Float64Var(&c.Params.Beta, "beta", c.Params.Beta, "infection probability scale")
	fs.Float64Var(&c.Params.Alpha, "alpha", c.Params.Alpha, "recovery probability")
	fs.StringVar(&c.Seed, "seed", c.Seed, "seed string for the initial grid")
	fs.StringVar(&c.RecoveryLabel, "recovery-label", c.RecoveryLabel, "display name of the recovery rate")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.IntVar(&c.SPS, "sps", c.SPS, "simulation steps per second")
	fs.IntVar(&c.Panel, "panel", c.Panel, "HUD panel width in pixels (0 hides it)")
}

// Parse reads args. A -config file is applied first and explicit flags win.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := NewConfig()
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		file, err := config.Load(cfg.Path, config.Default())
		if err != nil {
			return nil, err
		}
		loaded := NewConfig()
		loaded.Params = file.Params
		loaded.Seed = file.Seed
		loaded.RecoveryLabel = file.RecoveryLabel
		again := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
		loaded.Bind(again)
		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if setErr == nil {
				setErr = again.Set(f.Name, f.Value.String())
			}
		})
		if setErr != nil {
			return nil, setErr
		}
		cfg = loaded
	}
	if cfg.Scale < 1 {
		cfg.Scale = 1
	}
	if cfg.Panel < 0 {
		cfg.Panel = 0
	}
	return cfg, cfg.Params.Validate()
}

// NewSession builds the interactive session described by c.
func (c *Config) NewSession() (*sir.Session, error) {
	return sir.NewSession(c.Params, c.Seed, sir.WithRecoveryLabel(c.RecoveryLabel))
}
