package core

// CellState is the epidemic compartment of a single cell. The ordinal values
// are the serialization and palette encoding.
type CellState uint8

const (
	Susceptible CellState = iota
	Infected
	Recovered
)

// NumStates is the number of distinct cell states.
const NumStates = 3

func (s CellState) String() string {
	switch s {
	case Susceptible:
		return "S"
	case Infected:
		return "I"
	case Recovered:
		return "R"
	default:
		return "?"
	}
}

// Grid stores a Rows x Cols matrix of cell states in row-major order. Indices
// wrap on both axes, so the grid is a torus.
type Grid struct {
	Rows, Cols int
	data       []CellState
}

// NewGrid allocates an all-susceptible grid. Dimensions below one are raised
// to one; callers validate dimensions before reaching here.
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	return &Grid{Rows: rows, Cols: cols, data: make([]CellState, rows*cols)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid) Cells() []CellState { return g.data }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.data) }

// Index returns the linear slice index for (row, col). No wrapping is applied.
func (g *Grid) Index(row, col int) int { return row*g.Cols + col }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(row, col int) (int, int) {
	row = (row%g.Rows + g.Rows) % g.Rows
	col = (col%g.Cols + g.Cols) % g.Cols
	return row, col
}

// At returns the state at (row, col) after wrapping.
func (g *Grid) At(row, col int) CellState {
	row, col = g.Wrap(row, col)
	return g.data[row*g.Cols+col]
}

// Set writes the state at (row, col) after wrapping.
func (g *Grid) Set(row, col int, s CellState) {
	row, col = g.Wrap(row, col)
	g.data[row*g.Cols+col] = s
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{Rows: g.Rows, Cols: g.Cols, data: make([]CellState, len(g.data))}
	copy(out.data, g.data)
	return out
}

// CopyFrom overwrites g with the contents of src. Both grids must share
// dimensions.
func (g *Grid) CopyFrom(src *Grid) {
	copy(g.data, src.data)
}

// Clear resets every cell to Susceptible.
func (g *Grid) Clear() {
	for i := range g.data {
		g.data[i] = Susceptible
	}
}

// Counts tallies the cells per state.
func (g *Grid) Counts() Counts {
	var c Counts
	for _, s := range g.data {
		switch s {
		case Susceptible:
			c.S++
		case Infected:
			c.I++
		case Recovered:
			c.R++
		}
	}
	return c
}

// Equal reports whether two grids have the same shape and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.Rows != o.Rows || g.Cols != o.Cols {
		return false
	}
	for i := range g.data {
		if g.data[i] != o.data[i] {
			return false
		}
	}
	return true
}
