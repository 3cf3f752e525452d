package render

// Cell is the state of one grid position. The values double as palette
// indexes.
type Cell uint8

const (
	CellUnset Cell = iota
	CellZero
	CellOne
)

// Grid is a W×H cell buffer stored row-major in one slice. Row 0 is the top.
type Grid struct {
	width, height int
	cells         []Cell
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Cells returns the backing slice, row-major.
func (g *Grid) Cells() []Cell { return g.cells }

func (g *Grid) At(x, y int) Cell {
	return g.cells[y*g.width+x]
}

// Row returns a view of row y.
func (g *Grid) Row(y int) []Cell {
	return g.cells[y*g.width : (y+1)*g.width]
}

func (g *Grid) Fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// Insert shifts every row one step away from the insertion edge, dropping
// the row at the opposite edge, then writes bits as the new edge row.
// len(bits) must equal the grid width.
func (g *Grid) Insert(bits []uint8, atTop bool) {
	w := g.width
	n := len(g.cells)
	var edge []Cell
	if atTop {
		copy(g.cells[w:], g.cells[:n-w])
		edge = g.cells[:w]
	} else {
		copy(g.cells, g.cells[w:])
		edge = g.cells[n-w:]
	}
	for i, b := range bits {
		if b&1 == 1 {
			edge[i] = CellOne
		} else {
			edge[i] = CellZero
		}
	}
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.width, g.height)
	copy(c.cells, g.cells)
	return c
}
