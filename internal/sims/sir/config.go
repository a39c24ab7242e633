package sir

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrConfiguration is the sentinel wrapped by every parameter validation
// failure.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigError names the offending parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) hold for every ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Params holds the model parameters of a grid epidemic.
type Params struct {
	// Rows and Cols are the grid height (M) and width (N).
	Rows int
	Cols int
	// I0 is the number of initially infected cells.
	I0 int
	// T is the number of steps after t=0.
	T int
	// Radius is the Chebyshev radius of the neighbourhood.
	Radius int
	// Beta scales the per-step infection probability of a susceptible cell
	// by the infected share of its neighbourhood.
	Beta float64
	// Alpha is the per-step recovery probability of an infected cell. Some
	// front ends label it gamma; the meaning is the same.
	Alpha float64
}

// DefaultParams returns the standard configuration.
func DefaultParams() Params {
	return Params{
		Rows:   100,
		Cols:   100,
		I0:     10,
		T:      200,
		Radius: 1,
		Beta:   0.8,
		Alpha:  0.1,
	}
}

// Cells returns Rows*Cols.
func (p Params) Cells() int { return p.Rows * p.Cols }

// Validate checks every parameter against its valid range. Values are never
// clamped.
func (p Params) Validate() error {
	if p.Rows < 1 {
		return configErr("M", "must be >= 1, got %d", p.Rows)
	}
	if p.Cols < 1 {
		return configErr("N", "must be >= 1, got %d", p.Cols)
	}
	if p.I0 < 0 || p.I0 > p.Cells() {
		return configErr("I0", "must be in [0, %d], got %d", p.Cells(), p.I0)
	}
	if p.T < 0 {
		return configErr("T", "must be >= 0, got %d", p.T)
	}
	if p.Radius < 1 {
		return configErr("r", "must be >= 1, got %d", p.Radius)
	}
	if !unitInterval(p.Beta) {
		return configErr("beta", "must be in [0, 1], got %v", p.Beta)
	}
	if !unitInterval(p.Alpha) {
		return configErr("alpha", "must be in [0, 1], got %v", p.Alpha)
	}
	return nil
}

func unitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// FromMap applies key=value overrides on top of base. Keys follow the export
// names (M, N, I0, T, r, beta, alpha) with a few long aliases; gamma is
// accepted as a display alias of alpha. Unknown keys and unparsable values
// are configuration errors.
func FromMap(base Params, cfg map[string]string) (Params, error) {
	p := base
	for key, raw := range cfg {
		v := strings.TrimSpace(raw)
		switch key {
		case "M", "rows", "h":
			n, err := strconv.Atoi(v)
			if err != nil {
				return base, configErr("M", "parse %q: %v", v, err)
			}
			p.Rows = n
		case "N", "cols", "w":
			n, err := strconv.Atoi(v)
			if err != nil {
				return base, configErr("N", "parse %q: %v", v, err)
			}
			p.Cols = n
		case "I0", "i0":
			n, err := strconv.Atoi(v)
			if err != nil {
				return base, configErr("I0", "parse %q: %v", v, err)
			}
			p.I0 = n
		case "T", "steps":
			n, err := strconv.Atoi(v)
			if err != nil {
				return base, configErr("T", "parse %q: %v", v, err)
			}
			p.T = n
		case "r", "radius":
			n, err := strconv.Atoi(v)
			if err != nil {
				return base, configErr("r", "parse %q: %v", v, err)
			}
			p.Radius = n
		case "beta":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return base, configErr("beta", "parse %q: %v", v, err)
			}
			p.Beta = f
		case "alpha", "gamma":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return base, configErr("alpha", "parse %q: %v", v, err)
			}
			p.Alpha = f
		default:
			return base, configErr(key, "is not a known parameter")
		}
	}
	return p, nil
}
