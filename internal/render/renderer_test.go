package render

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type byteSource []byte

func (b byteSource) BitLen() uint64    { return uint64(len(b)) * 8 }
func (b byteSource) ByteAt(i int) byte { return b[i] }

type recorder struct {
	presents int
	last     *Grid
}

func (r *recorder) Present(g *Grid, p Palette) error {
	r.presents++
	r.last = g.Clone()
	return nil
}

func fixedOptions(width, height, chunk int) Options {
	opts := DefaultOptions()
	opts.Width, opts.Height = width, height
	opts.MinInterval = 0
	opts.Chunk = ChunkPolicy{Base: chunk, Min: 1, Max: chunk}
	return opts
}

func newTestRenderer(t *testing.T, opts Options) (*Renderer, *recorder) {
	t.Helper()
	rec := &recorder{}
	r := New(opts)
	if err := r.Attach(rec); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return r, rec
}

func TestRendererNewestAtTop(t *testing.T) {
	r, rec := newTestRenderer(t, fixedOptions(4, 2, 1024))

	res, err := r.Render(byteSource{0b1010_0101})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Rows != 2 || res.Consumed != 8 {
		t.Errorf("result = %+v, want 2 rows and 8 bits", res)
	}

	want := [][]Cell{
		{z, o, z, o},
		{o, z, o, z},
	}
	if diff := cmp.Diff(want, rows(rec.last)); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
	if r.State() != Streaming {
		t.Errorf("state = %v, want streaming", r.State())
	}
}

func TestRendererNewestAtBottom(t *testing.T) {
	opts := fixedOptions(4, 2, 1024)
	opts.NewestAtTop = false
	r, _ := newTestRenderer(t, opts)

	if _, err := r.Render(byteSource{0b1010_0101}); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := [][]Cell{
		{o, z, o, z},
		{z, o, z, o},
	}
	if diff := cmp.Diff(want, rows(r.Grid())); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestRendererWithoutSurfaceIsNoop(t *testing.T) {
	r := New(fixedOptions(8, 2, 64))
	res, err := r.Render(byteSource{0xff, 0xff})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res != (Result{}) || r.Cursor() != 0 {
		t.Errorf("render without surface did work: %+v cursor=%d", res, r.Cursor())
	}
	if r.State() != Uninitialized {
		t.Errorf("state = %v", r.State())
	}
}

func TestRendererNothingNew(t *testing.T) {
	r, rec := newTestRenderer(t, fixedOptions(8, 2, 64))
	src := byteSource{0x0f}
	r.Render(src)
	before := rec.presents

	res, err := r.Render(src)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Consumed != 0 || res.Throttled || rec.presents != before {
		t.Errorf("idle call did work: %+v", res)
	}
}

func TestRendererPresentsOnlyOnRowChange(t *testing.T) {
	r, rec := newTestRenderer(t, fixedOptions(16, 2, 1024))
	attached := rec.presents

	res, _ := r.Render(byteSource{0xaa})
	if res.Presented || rec.presents != attached {
		t.Fatalf("half a row was presented: %+v", res)
	}
	if r.Stats().PendingBits != 8 {
		t.Errorf("pending bits = %d, want 8", r.Stats().PendingBits)
	}

	res, _ = r.Render(byteSource{0xaa, 0x55})
	if !res.Presented || rec.presents != attached+1 {
		t.Errorf("completed row not presented: %+v", res)
	}
	want := []Cell{o, z, o, z, o, z, o, z, z, o, z, o, z, o, z, o}
	if diff := cmp.Diff(want, rec.last.Row(0)); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestRendererChunkBound(t *testing.T) {
	r, _ := newTestRenderer(t, fixedOptions(8, 4, 16))
	src := byteSource{1, 2, 3, 4, 5, 6, 7, 8}

	for i, wantCursor := range []uint64{16, 32, 48, 64, 64} {
		res, err := r.Render(src)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if r.Cursor() != wantCursor {
			t.Errorf("call %d: cursor = %d, want %d", i, r.Cursor(), wantCursor)
		}
		if res.Lag != src.BitLen()-r.Cursor() && res.Consumed > 0 {
			t.Errorf("call %d: lag = %d", i, res.Lag)
		}
	}

	// Newest row holds the last byte.
	want := []Cell{z, z, z, z, o, z, z, z}
	if diff := cmp.Diff(want, r.Grid().Row(0)); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestRendererPartialRowAcrossChunks(t *testing.T) {
	r, _ := newTestRenderer(t, fixedOptions(8, 1, 3))
	src := byteSource{0b1100_1010}

	for i := 0; i < 2; i++ {
		if res, _ := r.Render(src); res.Rows != 0 {
			t.Fatalf("call %d committed a row early", i)
		}
	}
	res, _ := r.Render(src)
	if res.Rows != 1 {
		t.Fatalf("third call rows = %d, want 1", res.Rows)
	}
	want := []Cell{o, o, z, z, o, z, o, z}
	if diff := cmp.Diff(want, r.Grid().Row(0)); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestRendererThrottle(t *testing.T) {
	now := time.Unix(1000, 0)
	opts := fixedOptions(8, 2, 8)
	opts.MinInterval = 10 * time.Millisecond
	r := New(opts, WithClock(func() time.Time { return now }))
	r.Attach(&recorder{})
	src := byteSource{0xff, 0x00, 0xff}

	if res, _ := r.Render(src); res.Consumed != 8 {
		t.Fatalf("first call consumed %d", res.Consumed)
	}

	now = now.Add(5 * time.Millisecond)
	res, _ := r.Render(src)
	if !res.Throttled || res.Consumed != 0 || r.Cursor() != 8 {
		t.Fatalf("call inside the interval was not skipped: %+v cursor=%d", res, r.Cursor())
	}
	if res.Lag != 16 {
		t.Errorf("lag = %d, want 16", res.Lag)
	}

	now = now.Add(5 * time.Millisecond)
	if res, _ := r.Render(src); res.Throttled || r.Cursor() != 16 {
		t.Errorf("call after the interval skipped: %+v cursor=%d", res, r.Cursor())
	}
	if r.Stats().Throttled != 1 {
		t.Errorf("throttled = %d, want 1", r.Stats().Throttled)
	}
}

func TestRendererAdaptiveChunk(t *testing.T) {
	var now time.Time
	step := time.Duration(0)
	clock := func() time.Time {
		now = now.Add(step)
		return now
	}

	opts := fixedOptions(8, 8, 100)
	opts.Chunk = ChunkPolicy{Adaptive: true, Base: 100, Min: 50, Max: 400, Budget: 4 * time.Millisecond, Window: 2}
	r := New(opts, WithClock(clock))
	r.Attach(&recorder{})
	src := make(byteSource, 4096)

	// Fast calls grow the chunk up to Max.
	for i := 0; i < 20; i++ {
		r.Render(src)
	}
	if got := r.Stats().Chunk; got != 400 {
		t.Errorf("fast chunk = %d, want 400", got)
	}

	// Slow calls shrink it down to Min.
	step = 10 * time.Millisecond
	for i := 0; i < 20; i++ {
		r.Render(src)
	}
	if got := r.Stats().Chunk; got != 50 {
		t.Errorf("slow chunk = %d, want 50", got)
	}
}

func TestRendererConservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	data := make(byteSource, 1500)
	for i := range data {
		data[i] = byte(rng.IntN(256))
	}

	policies := map[string]ChunkPolicy{
		"fixed":    {Base: 97, Min: 97, Max: 97},
		"adaptive": {Adaptive: true, Base: 64, Min: 8, Max: 512, Budget: time.Millisecond, Window: 4},
	}

	var grids [][][]Cell
	for name, policy := range policies {
		t.Run(name, func(t *testing.T) {
			var now time.Time
			clock := func() time.Time {
				now = now.Add(time.Duration(rng.IntN(2000)) * time.Microsecond)
				return now
			}
			opts := fixedOptions(24, 16, 0)
			opts.Chunk = policy
			opts.MinInterval = time.Millisecond
			r := New(opts, WithClock(clock))
			r.Attach(&recorder{})

			// Feed the source in growing prefixes, then idle until caught up.
			for n := 0; n < len(data); n += 100 {
				r.Render(data[:n])
			}
			for i := 0; i < 10_000 && r.Cursor() < data.BitLen(); i++ {
				r.Render(data)
			}
			if r.Cursor() != data.BitLen() {
				t.Fatalf("cursor = %d, want %d", r.Cursor(), data.BitLen())
			}
			grids = append(grids, rows(r.Grid()))
		})
	}

	if len(grids) == 2 {
		if diff := cmp.Diff(grids[0], grids[1]); diff != "" {
			t.Errorf("chunk policy changed the picture (-a +b):\n%s", diff)
		}
	}
}

func TestRendererDrain(t *testing.T) {
	opts := fixedOptions(8, 4, 5)
	opts.MinInterval = time.Hour
	r, _ := newTestRenderer(t, opts)
	src := byteSource{1, 2, 3, 4}

	res, err := r.Drain(src)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if r.Cursor() != 32 || res.Consumed != 32 || res.Rows != 4 {
		t.Errorf("drain = %+v cursor=%d", res, r.Cursor())
	}
}

func TestRendererReset(t *testing.T) {
	r, rec := newTestRenderer(t, fixedOptions(8, 2, 64))
	r.Render(byteSource{0xff, 0x0f, 0x01})
	before := rec.presents

	if err := r.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if r.Cursor() != 0 || r.State() != Uninitialized || r.Stats().PendingBits != 0 {
		t.Errorf("reset left state: %+v", r.Stats())
	}
	for _, c := range rec.last.Cells() {
		if c != CellUnset {
			t.Fatal("reset did not repaint the unset color")
		}
	}
	if rec.presents != before+1 {
		t.Errorf("presents = %d, want %d", rec.presents, before+1)
	}

	// A smaller source after reset renders from the start.
	res, _ := r.Render(byteSource{0x80})
	if res.Consumed != 8 {
		t.Errorf("consumed %d after reset", res.Consumed)
	}
}

func TestRendererResize(t *testing.T) {
	r, _ := newTestRenderer(t, fixedOptions(8, 2, 64))
	r.Render(byteSource{0xff, 0x0f})

	if err := r.Resize(4, 3); err != nil {
		t.Fatalf("resize: %v", err)
	}
	g := r.Grid()
	if g.Width() != 4 || g.Height() != 3 {
		t.Fatalf("grid = %dx%d", g.Width(), g.Height())
	}
	if r.Cursor() != 0 {
		t.Errorf("cursor = %d after resize", r.Cursor())
	}
	for _, c := range g.Cells() {
		if c != CellUnset {
			t.Fatal("resize kept old cells")
		}
	}

	// Same dimensions keep the cursor.
	r.Render(byteSource{0xff})
	opts := r.Options()
	opts.NewestAtTop = false
	r.Configure(opts)
	if r.Cursor() != 8 {
		t.Errorf("direction change reset the cursor")
	}
}
