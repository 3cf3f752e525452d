package render

import (
	"time"
)

// State is the renderer lifecycle state.
type State int

const (
	Uninitialized State = iota
	Streaming
)

func (s State) String() string {
	if s == Streaming {
		return "streaming"
	}
	return "uninitialized"
}

const (
	DefaultWidth       = 128
	DefaultHeight      = 64
	DefaultMinInterval = 16 * time.Millisecond
)

// Options configures a Renderer.
type Options struct {
	Width       int
	Height      int
	NewestAtTop bool
	Palette     Palette
	MinInterval time.Duration
	Chunk       ChunkPolicy
}

func DefaultOptions() Options {
	return Options{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		NewestAtTop: true,
		Palette:     DefaultPalette(),
		MinInterval: DefaultMinInterval,
		Chunk:       DefaultChunkPolicy(),
	}
}

func (o Options) normalized() Options {
	if o.Width < 1 {
		o.Width = 1
	}
	if o.Height < 1 {
		o.Height = 1
	}
	if o.MinInterval < 0 {
		o.MinInterval = 0
	}
	o.Chunk = o.Chunk.normalized()
	return o
}

// BitSource is a growing byte sequence read bit by bit, MSB first.
type BitSource interface {
	BitLen() uint64
	ByteAt(i int) byte
}

// Result describes one Render call.
type Result struct {
	Consumed  uint64
	Rows      int
	Throttled bool
	Presented bool
	Lag       uint64
}

// Stats is a running summary of renderer activity.
type Stats struct {
	State       State
	Cursor      uint64
	PendingBits int
	Chunk       int
	AvgDuration time.Duration
	Calls       uint64
	Throttled   uint64
	Rows        uint64
	Presents    uint64
}

// Renderer draws a BitSource incrementally into a Grid. It is not safe for
// concurrent use.
type Renderer struct {
	opts    Options
	grid    *Grid
	row     []uint8
	cursor  uint64
	state   State
	surface Surface
	gov     *governor
	now     func() time.Time
	lastRun time.Time
	stats   Stats
}

type Option func(*Renderer)

// WithClock replaces time.Now for throttling and chunk timing.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func WithSurface(s Surface) Option {
	return func(r *Renderer) { r.surface = s }
}

func New(opts Options, options ...Option) *Renderer {
	opts = opts.normalized()
	r := &Renderer{
		opts: opts,
		grid: NewGrid(opts.Width, opts.Height),
		row:  make([]uint8, 0, opts.Width),
		gov:  newGovernor(opts.Chunk),
		now:  time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Attach sets the output surface and paints the current grid onto it.
// A nil surface detaches.
func (r *Renderer) Attach(s Surface) error {
	r.surface = s
	return r.Repaint()
}

func (r *Renderer) Surface() Surface { return r.surface }
func (r *Renderer) Options() Options { return r.opts }
func (r *Renderer) Grid() *Grid      { return r.grid }
func (r *Renderer) Cursor() uint64   { return r.cursor }
func (r *Renderer) State() State     { return r.state }

func (r *Renderer) Stats() Stats {
	s := r.stats
	s.State = r.state
	s.Cursor = r.cursor
	s.PendingBits = len(r.row)
	s.Chunk = r.gov.size()
	s.AvgDuration = r.gov.average()
	return s
}

// Render consumes up to one chunk of bits the renderer has not seen yet.
// Without a surface it does nothing.
func (r *Renderer) Render(src BitSource) (Result, error) {
	return r.render(src, false)
}

// Drain renders until the cursor reaches the end of src, ignoring the
// throttle but still working one chunk at a time.
func (r *Renderer) Drain(src BitSource) (Result, error) {
	var total Result
	for {
		res, err := r.render(src, true)
		total.Consumed += res.Consumed
		total.Rows += res.Rows
		total.Presented = total.Presented || res.Presented
		total.Lag = res.Lag
		if err != nil || res.Consumed == 0 {
			return total, err
		}
	}
}

func (r *Renderer) render(src BitSource, force bool) (Result, error) {
	if r.surface == nil {
		return Result{}, nil
	}
	total := src.BitLen()
	if total <= r.cursor {
		return Result{}, nil
	}

	start := r.now()
	if !force && r.opts.MinInterval > 0 && !r.lastRun.IsZero() && start.Sub(r.lastRun) < r.opts.MinInterval {
		r.stats.Throttled++
		return Result{Throttled: true, Lag: total - r.cursor}, nil
	}
	r.state = Streaming
	r.stats.Calls++

	first := r.cursor
	end := min(total, first+uint64(r.gov.size()))
	rows := 0
	var cur byte
	for i := first; i < end; i++ {
		if i == first || i%8 == 0 {
			cur = src.ByteAt(int(i / 8))
		}
		r.row = append(r.row, (cur>>(7-i%8))&1)
		if len(r.row) == r.opts.Width {
			r.grid.Insert(r.row, r.opts.NewestAtTop)
			r.row = r.row[:0]
			rows++
		}
	}
	r.cursor = end
	r.lastRun = start
	r.stats.Rows += uint64(rows)
	r.gov.observe(r.now().Sub(start))

	res := Result{Consumed: end - first, Rows: rows, Lag: total - end}
	if rows == 0 {
		return res, nil
	}
	r.stats.Presents++
	res.Presented = true
	return res, r.surface.Present(r.grid, r.opts.Palette)
}

// Reset returns to the uninitialized state: cursor zero, empty row buffer,
// grid filled with the unset color. The attached surface is repainted.
func (r *Renderer) Reset() error {
	r.state = Uninitialized
	r.cursor = 0
	r.row = r.row[:0]
	r.lastRun = time.Time{}
	r.grid.Fill(CellUnset)
	r.gov.reset()
	return r.Repaint()
}

// Repaint presents the current grid regardless of changes.
func (r *Renderer) Repaint() error {
	if r.surface == nil {
		return nil
	}
	r.stats.Presents++
	return r.surface.Present(r.grid, r.opts.Palette)
}

// Configure applies new options. A width or height change rebuilds the
// grid and resets, since partial rows from the old width are meaningless.
// Other changes take effect from the next committed row.
func (r *Renderer) Configure(opts Options) error {
	opts = opts.normalized()
	resize := opts.Width != r.opts.Width || opts.Height != r.opts.Height
	chunkChanged := opts.Chunk != r.opts.Chunk
	r.opts = opts
	if chunkChanged {
		r.gov.configure(opts.Chunk)
	}
	if resize {
		r.grid = NewGrid(opts.Width, opts.Height)
		r.row = make([]uint8, 0, opts.Width)
		return r.Reset()
	}
	return nil
}

// Resize changes the grid dimensions and resets.
func (r *Renderer) Resize(width, height int) error {
	opts := r.opts
	opts.Width, opts.Height = width, height
	return r.Configure(opts)
}
