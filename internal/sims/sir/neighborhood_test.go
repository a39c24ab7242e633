package sir

import (
	"testing"

	"epigrid/internal/core"
)

func TestCensusTotalIsConstantOnTorus(t *testing.T) {
	g := core.NewGrid(7, 5)
	for r := 1; r <= 3; r++ {
		want := NeighborhoodSize(r)
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				_, total := Census(g, row, col, r)
				if total != want {
					t.Fatalf("r=%d cell (%d,%d): total=%d, want %d", r, row, col, total, want)
				}
			}
		}
	}
	if NeighborhoodSize(1) != 8 || NeighborhoodSize(2) != 24 {
		t.Fatalf("unexpected neighbourhood sizes %d/%d", NeighborhoodSize(1), NeighborhoodSize(2))
	}
}

func TestCensusWrapsAcrossCorners(t *testing.T) {
	g := core.NewGrid(5, 6)
	g.Set(0, 0, core.Infected)

	cases := []struct {
		row, col int
		want     int
	}{
		{4, 5, 1}, // opposite corner, diagonal through both seams
		{0, 5, 1},
		{4, 0, 1},
		{1, 1, 1},
		{2, 2, 0},
		{0, 0, 0}, // centre is excluded
	}
	for _, tc := range cases {
		infected, _ := Census(g, tc.row, tc.col, 1)
		if infected != tc.want {
			t.Fatalf("cell (%d,%d): infected=%d, want %d", tc.row, tc.col, infected, tc.want)
		}
	}
}

func TestCensusCountsRepeatedVisitsOnSmallGrid(t *testing.T) {
	g := core.NewGrid(1, 1)
	g.Set(0, 0, core.Infected)
	infected, total := Census(g, 0, 0, 1)
	if total != 8 || infected != 8 {
		t.Fatalf("1x1 torus: infected=%d total=%d, want 8/8", infected, total)
	}
}

func TestCensusRadiusTwo(t *testing.T) {
	g := core.NewGrid(9, 9)
	g.Set(0, 0, core.Infected)
	g.Set(7, 7, core.Infected)
	g.Set(4, 4, core.Infected)
	infected, total := Census(g, 8, 8, 2)
	if total != 24 {
		t.Fatalf("total=%d, want 24", total)
	}
	if infected != 2 {
		t.Fatalf("infected=%d, want 2", infected)
	}
}
