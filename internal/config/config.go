// Package config gathers batch settings from defaults, an optional TOML file,
// command-line flags, and key=value overrides, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"epigrid/internal/sims/sir"

	"github.com/BurntSushi/toml"
)

// Output names the files a batch writes. Empty paths are skipped.
type Output struct {
	JSON  string
	Chart string
	GIF   string
	MJPEG string
	Scale int
	FPS   int
}

// Config is the full set of batch settings.
type Config struct {
	Path          string
	Params        sir.Params
	Nexp          int
	Seed          string
	Workers       int
	MaxFrames     int
	Note          string
	RecoveryLabel string
	Timeout       time.Duration
	Entropy       bool
	Output        Output
	Overrides     KVList
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Params:        sir.DefaultParams(),
		Nexp:          10,
		Seed:          "epigrid",
		MaxFrames:     sir.DefaultMaxFrames,
		RecoveryLabel: "alpha",
		Output: Output{
			JSON:  "results.json",
			Scale: 4,
			FPS:   10,
		},
	}
}

// KVList collects repeated key=value flags.
type KVList []string

func (l *KVList) String() string {
	return strings.Join(*l, ",")
}

func (l *KVList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// Map splits the collected pairs. A pair without '=' is an error.
func (l KVList) Map() (map[string]string, error) {
	out := make(map[string]string, len(l))
	for _, kv := range l {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: override %q is not key=value", sir.ErrConfiguration, kv)
		}
		out[strings.TrimSpace(parts[0])] = parts[1]
	}
	return out, nil
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Path, "config", c.Path, "TOML run file")
	fs.IntVar(&c.Params.Rows, "M", c.Params.Rows, "grid rows")
	fs.IntVar(&c.Params.Cols, "N", c.Params.Cols, "grid columns")
	fs.IntVar(&c.Params.I0, "I0", c.Params.I0, "initially infected cells")
	fs.IntVar(&c.Params.T, "T", c.Params.T, "time steps per run")
	fs.IntVar(&c.Params.Radius, "r", c.Params.Radius, "neighbourhood radius")
	fs.Float64Var(&c.Params.Beta, "beta", c.Params.Beta, "infection probability scale")
	fs.Float64Var(&c.Params.Alpha, "alpha", c.Params.Alpha, "recovery probability")
	fs.IntVar(&c.Nexp, "nexp", c.Nexp, "number of independent runs")
	fs.StringVar(&c.Seed, "seed", c.Seed, "seed string for the initial grid and run streams")
	fs.IntVar(&c.Workers, "workers", c.Workers, "concurrent runs (0 = NumCPU)")
	fs.IntVar(&c.MaxFrames, "max-frames", c.MaxFrames, "snapshot cap for the animated run")
	fs.StringVar(&c.Note, "note", c.Note, "note stored in the results metadata")
	fs.StringVar(&c.RecoveryLabel, "recovery-label", c.RecoveryLabel, "display name of the recovery rate")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "abort the batch after this long (0 = never)")
	fs.BoolVar(&c.Entropy, "entropy", c.Entropy, "seed run dynamics from crypto/rand instead of the seed string")
	fs.StringVar(&c.Output.JSON, "json", c.Output.JSON, "results JSON path")
	fs.StringVar(&c.Output.Chart, "chart", c.Output.Chart, "PNG chart path")
	fs.StringVar(&c.Output.GIF, "gif", c.Output.GIF, "animated GIF path")
	fs.StringVar(&c.Output.MJPEG, "mjpeg", c.Output.MJPEG, "MJPEG AVI path")
	fs.IntVar(&c.Output.Scale, "scale", c.Output.Scale, "pixels per cell in animations")
	fs.IntVar(&c.Output.FPS, "fps", c.Output.FPS, "animation frames per second")
	fs.Var(&c.Overrides, "set", "parameter override in key=value form (repeatable)")
}

// Parse reads args into a Config. When -config names a file, the file is
// loaded first and every flag given on the command line is applied over it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Path != "" {
		loaded, err := Load(cfg.Path, Default())
		if err != nil {
			return Config{}, err
		}
		loaded.Path = cfg.Path
		again := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
		loaded.Bind(again)
		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "set" || setErr != nil {
				return
			}
			setErr = again.Set(f.Name, f.Value.String())
		})
		if setErr != nil {
			return Config{}, setErr
		}
		loaded.Overrides = append(loaded.Overrides, cfg.Overrides...)
		cfg = loaded
	}

	if len(cfg.Overrides) > 0 {
		kv, err := cfg.Overrides.Map()
		if err != nil {
			return Config{}, err
		}
		p, err := sir.FromMap(cfg.Params, kv)
		if err != nil {
			return Config{}, err
		}
		cfg.Params = p
	}
	return cfg, cfg.Validate()
}

type fileParams struct {
	M     int     `toml:"M"`
	N     int     `toml:"N"`
	I0    int     `toml:"I0"`
	T     int     `toml:"T"`
	R     int     `toml:"r"`
	Beta  float64 `toml:"beta"`
	Alpha float64 `toml:"alpha"`
}

type fileOutput struct {
	JSON  string `toml:"json"`
	Chart string `toml:"chart"`
	GIF   string `toml:"gif"`
	MJPEG string `toml:"mjpeg"`
	Scale int    `toml:"scale"`
	FPS   int    `toml:"fps"`
}

type fileConfig struct {
	Params        fileParams `toml:"params"`
	Nexp          int        `toml:"nexp"`
	Seed          string     `toml:"seed"`
	Workers       int        `toml:"workers"`
	MaxFrames     int        `toml:"max_frames"`
	Note          string     `toml:"note"`
	RecoveryLabel string     `toml:"recovery_label"`
	Timeout       string     `toml:"timeout"`
	Entropy       bool       `toml:"entropy"`
	Output        fileOutput `toml:"output"`
}

// Load applies the keys defined in the TOML file at path over base.
func Load(path string, base Config) (Config, error) {
	cfg := base

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", sir.ErrConfiguration, undecoded[0].String(), path)
	}

	p := &cfg.Params
	if meta.IsDefined("params", "M") {
		p.Rows = raw.Params.M
	}
	if meta.IsDefined("params", "N") {
		p.Cols = raw.Params.N
	}
	if meta.IsDefined("params", "I0") {
		p.I0 = raw.Params.I0
	}
	if meta.IsDefined("params", "T") {
		p.T = raw.Params.T
	}
	if meta.IsDefined("params", "r") {
		p.Radius = raw.Params.R
	}
	if meta.IsDefined("params", "beta") {
		p.Beta = raw.Params.Beta
	}
	if meta.IsDefined("params", "alpha") {
		p.Alpha = raw.Params.Alpha
	}

	if meta.IsDefined("nexp") {
		cfg.Nexp = raw.Nexp
	}
	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}
	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}
	if meta.IsDefined("max_frames") {
		cfg.MaxFrames = raw.MaxFrames
	}
	if meta.IsDefined("note") {
		cfg.Note = strings.TrimSpace(raw.Note)
	}
	if meta.IsDefined("recovery_label") {
		cfg.RecoveryLabel = strings.TrimSpace(raw.RecoveryLabel)
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("entropy") {
		cfg.Entropy = raw.Entropy
	}

	o := &cfg.Output
	if meta.IsDefined("output", "json") {
		o.JSON = strings.TrimSpace(raw.Output.JSON)
	}
	if meta.IsDefined("output", "chart") {
		o.Chart = strings.TrimSpace(raw.Output.Chart)
	}
	if meta.IsDefined("output", "gif") {
		o.GIF = strings.TrimSpace(raw.Output.GIF)
	}
	if meta.IsDefined("output", "mjpeg") {
		o.MJPEG = strings.TrimSpace(raw.Output.MJPEG)
	}
	if meta.IsDefined("output", "scale") {
		o.Scale = raw.Output.Scale
	}
	if meta.IsDefined("output", "fps") {
		o.FPS = raw.Output.FPS
	}

	return cfg, cfg.Validate()
}

// Validate checks the model parameters and the batch settings.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	var errs []error
	if c.Nexp < 1 {
		errs = append(errs, &sir.ConfigError{Field: "nexp", Reason: fmt.Sprintf("must be >= 1, got %d", c.Nexp)})
	}
	if c.Workers < 0 {
		errs = append(errs, &sir.ConfigError{Field: "workers", Reason: fmt.Sprintf("must be >= 0, got %d", c.Workers)})
	}
	if c.MaxFrames < 1 {
		errs = append(errs, &sir.ConfigError{Field: "max_frames", Reason: fmt.Sprintf("must be >= 1, got %d", c.MaxFrames)})
	}
	if c.RecoveryLabel == "" {
		errs = append(errs, &sir.ConfigError{Field: "recovery_label", Reason: "must not be empty"})
	}
	if c.Timeout < 0 {
		errs = append(errs, &sir.ConfigError{Field: "timeout", Reason: "must not be negative"})
	}
	if c.Output.Scale < 1 {
		errs = append(errs, &sir.ConfigError{Field: "scale", Reason: fmt.Sprintf("must be >= 1, got %d", c.Output.Scale)})
	}
	if c.Output.FPS < 1 {
		errs = append(errs, &sir.ConfigError{Field: "fps", Reason: fmt.Sprintf("must be >= 1, got %d", c.Output.FPS)})
	}
	return errors.Join(errs...)
}
