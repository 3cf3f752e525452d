package render

// Surface receives the committed grid. Present is called only after at
// least one row changed, or when a repaint is forced by Reset or Repaint.
type Surface interface {
	Present(g *Grid, p Palette) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(g *Grid, p Palette) error

func (f SurfaceFunc) Present(g *Grid, p Palette) error { return f(g, p) }
