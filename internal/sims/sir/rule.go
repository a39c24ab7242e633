package sir

import "epigrid/internal/core"

// Source supplies uniform draws in [0, 1). *rng.RNG satisfies it.
type Source interface {
	Float64() float64
}

// Transition returns the next state of a cell given its neighbourhood census
// and one uniform draw u.
func Transition(state core.CellState, infected, total int, beta, alpha, u float64) core.CellState {
	switch state {
	case core.Infected:
		if u < alpha {
			return core.Recovered
		}
		return core.Infected
	case core.Susceptible:
		if infected == 0 || total == 0 {
			return core.Susceptible
		}
		if u < beta*(float64(infected)/float64(total)) {
			return core.Infected
		}
		return core.Susceptible
	default:
		return state
	}
}

// advance writes the successor of cur into nxt and returns its counts. Cells
// are visited in row-major order and each consumes exactly one draw, including
// recovered cells, so a stream's position depends only on the step index.
func advance(cur, nxt *core.Grid, p Params, src Source) core.Counts {
	var c core.Counts
	in := cur.Cells()
	out := nxt.Cells()
	for row := 0; row < cur.Rows; row++ {
		for col := 0; col < cur.Cols; col++ {
			idx := row*cur.Cols + col
			u := src.Float64()
			state := in[idx]
			infected, total := 0, 0
			if state == core.Susceptible {
				infected, total = Census(cur, row, col, p.Radius)
			}
			next := Transition(state, infected, total, p.Beta, p.Alpha, u)
			out[idx] = next
			switch next {
			case core.Susceptible:
				c.S++
			case core.Infected:
				c.I++
			case core.Recovered:
				c.R++
			}
		}
	}
	return c
}
