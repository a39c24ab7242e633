package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"epigrid/internal/sims/sir"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadAppliesDefinedKeysOnly(t *testing.T) {
	path := writeFile(t, `
nexp = 25
seed = "abc"
timeout = "90s"
recovery_label = "gamma"

[params]
M = 40
beta = 0.3

[output]
chart = "mean.png"
fps = 24
`)
	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Params.Rows != 40 || cfg.Params.Beta != 0.3 {
		t.Fatalf("params not applied: %+v", cfg.Params)
	}
	if cfg.Params.Cols != def.Params.Cols || cfg.Params.Alpha != def.Params.Alpha {
		t.Fatalf("undefined keys changed defaults: %+v", cfg.Params)
	}
	if cfg.Nexp != 25 || cfg.Seed != "abc" || cfg.Timeout != 90*time.Second || cfg.RecoveryLabel != "gamma" {
		t.Fatalf("batch settings not applied: %+v", cfg)
	}
	if cfg.Output.Chart != "mean.png" || cfg.Output.FPS != 24 || cfg.Output.JSON != def.Output.JSON {
		t.Fatalf("output not applied: %+v", cfg.Output)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "colour = \"red\"\n",
		"bad timeout":   "timeout = \"soon\"\n",
		"invalid param": "[params]\nbeta = 2.0\n",
		"bad nexp":      "nexp = 0\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, body), Default()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), Default()); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "nexp = 25\n[params]\nM = 40\nN = 40\n")
	cfg, err := Parse(newFlagSet(), []string{"-config", path, "-nexp", "3", "-set", "beta=0.5", "-set", "gamma=0.05"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Nexp != 3 {
		t.Fatalf("flag should override file, nexp = %d", cfg.Nexp)
	}
	if cfg.Params.Rows != 40 || cfg.Params.Cols != 40 {
		t.Fatalf("file params lost: %+v", cfg.Params)
	}
	if cfg.Params.Beta != 0.5 || cfg.Params.Alpha != 0.05 {
		t.Fatalf("overrides not applied: %+v", cfg.Params)
	}
	if cfg.Path != path {
		t.Fatalf("path = %q", cfg.Path)
	}
}

func TestParseRejectsInvalidSettings(t *testing.T) {
	_, err := Parse(newFlagSet(), []string{"-nexp", "0"})
	var cfgErr *sir.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "nexp" {
		t.Fatalf("expected nexp ConfigError, got %v", err)
	}
	if _, err := Parse(newFlagSet(), []string{"-set", "beta"}); !errors.Is(err, sir.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a malformed override, got %v", err)
	}
	if _, err := Parse(newFlagSet(), []string{"-set", "beta=lots"}); !errors.Is(err, sir.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for an unparsable override, got %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
