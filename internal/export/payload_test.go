package export

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"epigrid/internal/sims/sir"
)

func testBatch(t *testing.T) (sir.Params, sir.Batch) {
	t.Helper()
	p := sir.Params{Rows: 12, Cols: 10, I0: 4, T: 15, Radius: 1, Beta: 0.7, Alpha: 0.2}
	g, err := sir.Initial(p, "export")
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	batch, err := sir.Aggregate(context.Background(), g, p, 4, sir.DeterministicSources("export"))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return p, batch
}

func TestPayloadRoundTrip(t *testing.T) {
	p, batch := testBatch(t)
	payload := Build(p, batch, Options{Seed: "export", Workers: 2})
	if payload.Meta.Model != "grid" || payload.Meta.Nexp != 4 || payload.Meta.Note != DefaultNote {
		t.Fatalf("unexpected meta %+v", payload.Meta)
	}
	if payload.Meta.BatchID == "" {
		t.Fatal("missing batch id")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, payload); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Meta.Params != payload.Meta.Params || decoded.Meta.Params.Model() != p {
		t.Fatalf("params changed: %+v", decoded.Meta.Params)
	}
	if len(decoded.Runs) != len(payload.Runs) {
		t.Fatalf("run count changed: %d", len(decoded.Runs))
	}
	for k := range payload.Runs {
		want, got := payload.Runs[k], decoded.Runs[k]
		if got.RunID != want.RunID {
			t.Fatalf("run %d id changed", k)
		}
		for ti := range want.T {
			if got.T[ti] != want.T[ti] || got.S[ti] != want.S[ti] || got.I[ti] != want.I[ti] || got.R[ti] != want.R[ti] {
				t.Fatalf("run %d t=%d changed", k, ti)
			}
		}
	}

	fresh := sir.MeanOf(decoded.Batch().Runs)
	for ti, m := range fresh.Steps {
		if math.Abs(m.S-decoded.Mean.S[ti]) > 1e-9 || math.Abs(m.I-decoded.Mean.I[ti]) > 1e-9 || math.Abs(m.R-decoded.Mean.R[ti]) > 1e-9 {
			t.Fatalf("t=%d mean does not match recomputation", ti)
		}
	}
	if err := decoded.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestPayloadJSONKeys(t *testing.T) {
	p, batch := testBatch(t)
	var buf bytes.Buffer
	if err := Encode(&buf, Build(p, batch, Options{Seed: "export"})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, key := range []string{`"meta"`, `"model": "grid"`, `"params"`, `"M": 12`, `"N": 10`, `"I0": 4`, `"r": 1`, `"Nexp": 4`, `"seed_init": "export"`, `"run_id"`, `"mean"`} {
		if !bytes.Contains(buf.Bytes(), []byte(key)) {
			t.Fatalf("encoded payload missing %s", key)
		}
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	p, batch := testBatch(t)
	payload := Build(p, batch, Options{})

	tampered := Build(p, batch, Options{})
	tampered.Mean.I[3] += 0.5
	if err := tampered.Verify(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for a wrong mean, got %v", err)
	}

	short := Build(p, batch, Options{})
	short.Runs[1].S = short.Runs[1].S[:5]
	if err := short.Verify(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for a short run, got %v", err)
	}

	broken := Build(p, batch, Options{})
	broken.Runs[0].S[2]++
	if err := broken.Verify(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for a broken census, got %v", err)
	}

	if err := payload.Verify(); err != nil {
		t.Fatalf("untouched payload failed: %v", err)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	p, batch := testBatch(t)
	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteFile(path, Build(p, batch, Options{Seed: "export"})); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := got.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
