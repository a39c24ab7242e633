package sir

import (
	"errors"
	"math"
	"testing"
)

func TestFromMapOverrides(t *testing.T) {
	p, err := FromMap(DefaultParams(), map[string]string{
		"M":     "20",
		"cols":  "30",
		"I0":    "5",
		"T":     "50",
		"r":     "2",
		"beta":  "0.25",
		"gamma": " 0.2 ",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	want := Params{Rows: 20, Cols: 30, I0: 5, T: 50, Radius: 2, Beta: 0.25, Alpha: 0.2}
	if p != want {
		t.Fatalf("params = %+v, want %+v", p, want)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestFromMapRejectsBadInput(t *testing.T) {
	base := DefaultParams()
	for _, cfg := range []map[string]string{
		{"M": "ten"},
		{"beta": "high"},
		{"colour": "red"},
	} {
		p, err := FromMap(base, cfg)
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%v: expected ErrConfiguration, got %v", cfg, err)
		}
		if p != base {
			t.Fatalf("%v: failed parse should return the base params", cfg)
		}
	}
}

func TestValidateRanges(t *testing.T) {
	cases := map[string]func(*Params){
		"M":     func(p *Params) { p.Rows = 0 },
		"N":     func(p *Params) { p.Cols = -3 },
		"I0":    func(p *Params) { p.I0 = p.Rows*p.Cols + 1 },
		"T":     func(p *Params) { p.T = -1 },
		"r":     func(p *Params) { p.Radius = 0 },
		"beta":  func(p *Params) { p.Beta = math.NaN() },
		"alpha": func(p *Params) { p.Alpha = -0.1 },
	}
	for field, mutate := range cases {
		p := DefaultParams()
		mutate(&p)
		err := p.Validate()
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Field != field {
			t.Fatalf("%s: expected ConfigError for field, got %v", field, err)
		}
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
