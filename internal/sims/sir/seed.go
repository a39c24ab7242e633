package sir

import (
	"epigrid/internal/core"
	"epigrid/pkg/rng"
)

// Coord addresses a single cell.
type Coord struct {
	Row, Col int
}

// SeedGrid builds a rows x cols grid with exactly i0 distinct infected cells.
// Coordinates are drawn uniformly from a PCG stream derived from seed and
// rejected when already taken, so the same arguments always place the same
// cells.
func SeedGrid(seed string, rows, cols, i0 int) (*core.Grid, error) {
	if rows < 1 {
		return nil, configErr("M", "must be >= 1, got %d", rows)
	}
	if cols < 1 {
		return nil, configErr("N", "must be >= 1, got %d", cols)
	}
	total := rows * cols
	if i0 < 0 || i0 > total {
		return nil, configErr("I0", "cannot place %d distinct cells on a %dx%d grid", i0, rows, cols)
	}

	g := core.NewGrid(rows, cols)
	cells := g.Cells()
	r := rng.NewRNG(rng.SeedFromString(seed))
	for placed := 0; placed < i0; {
		row := r.IntN(rows)
		col := r.IntN(cols)
		idx := g.Index(row, col)
		if cells[idx] == core.Infected {
			continue
		}
		cells[idx] = core.Infected
		placed++
	}
	return g, nil
}

// Initial validates p and seeds its initial grid.
func Initial(p Params, seed string) (*core.Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return SeedGrid(seed, p.Rows, p.Cols, p.I0)
}

// InfectedCoords lists the infected cells of g in row-major order.
func InfectedCoords(g *core.Grid) []Coord {
	var out []Coord
	cells := g.Cells()
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if cells[g.Index(row, col)] == core.Infected {
				out = append(out, Coord{Row: row, Col: col})
			}
		}
	}
	return out
}
