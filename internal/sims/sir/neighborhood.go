package sir

import "epigrid/internal/core"

// Census counts the infected cells in the (2r+1)x(2r+1) window centred on
// (row, col), excluding the centre offset. Both axes wrap, so total is always
// (2r+1)^2-1. A window wider than the grid visits some cells more than once;
// each visit counts.
func Census(g *core.Grid, row, col, r int) (infected, total int) {
	cells := g.Cells()
	for dr := -r; dr <= r; dr++ {
		nr, _ := g.Wrap(row+dr, 0)
		base := nr * g.Cols
		for dc := -r; dc <= r; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			_, nc := g.Wrap(0, col+dc)
			total++
			if cells[base+nc] == core.Infected {
				infected++
			}
		}
	}
	return infected, total
}

// NeighborhoodSize returns (2r+1)^2-1.
func NeighborhoodSize(r int) int {
	side := 2*r + 1
	return side*side - 1
}
