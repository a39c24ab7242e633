package sir

import (
	"errors"
	"slices"
	"testing"

	"epigrid/internal/core"
)

func TestSeedGridDeterministic(t *testing.T) {
	a, err := SeedGrid("alpha-seed", 30, 40, 25)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	b, err := SeedGrid("alpha-seed", 30, 40, 25)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !a.Equal(b) {
		t.Fatal("same seed produced different grids")
	}
	coordsA := InfectedCoords(a)
	coordsB := InfectedCoords(b)
	if !slices.Equal(coordsA, coordsB) {
		t.Fatalf("infected coordinates differ: %v vs %v", coordsA, coordsB)
	}
	if len(coordsA) != 25 {
		t.Fatalf("expected 25 infected cells, got %d", len(coordsA))
	}

	c, err := SeedGrid("other-seed", 30, 40, 25)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if slices.Equal(coordsA, InfectedCoords(c)) {
		t.Fatal("different seeds should place different cells")
	}
}

func TestSeedGridScenarioCounts(t *testing.T) {
	g, err := SeedGrid("test-seed", 10, 10, 3)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := g.Counts()
	want := core.Counts{S: 97, I: 3, R: 0}
	if got != want {
		t.Fatalf("counts = %+v, want %+v", got, want)
	}
	coords := InfectedCoords(g)
	seen := map[Coord]bool{}
	for _, c := range coords {
		if seen[c] {
			t.Fatalf("coordinate %v placed twice", c)
		}
		seen[c] = true
	}
}

func TestSeedGridFillsWholeGrid(t *testing.T) {
	g, err := SeedGrid("full", 4, 3, 12)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := g.Counts(); got.I != 12 || got.S != 0 {
		t.Fatalf("expected every cell infected, got %+v", got)
	}
}

func TestSeedGridRejectsImpossibleCounts(t *testing.T) {
	cases := []struct {
		name       string
		rows, cols int
		i0         int
	}{
		{"too many", 10, 10, 101},
		{"negative", 10, 10, -1},
		{"no rows", 0, 10, 0},
		{"no cols", 10, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SeedGrid("x", tc.rows, tc.cols, tc.i0)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestInitialValidatesParams(t *testing.T) {
	p := DefaultParams()
	p.Beta = 1.5
	if _, err := Initial(p, "x"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	var cfgErr *ConfigError
	if _, err := Initial(p, "x"); !errors.As(err, &cfgErr) || cfgErr.Field != "beta" {
		t.Fatalf("expected beta ConfigError, got %v", err)
	}
}
