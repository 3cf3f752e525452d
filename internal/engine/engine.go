package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DM41131/RNG-password-generator/internal/capture"
	"github.com/DM41131/RNG-password-generator/internal/extract"
	"github.com/DM41131/RNG-password-generator/internal/pool"
	"github.com/DM41131/RNG-password-generator/internal/render"
)

const DefaultCallQueue = 64

type Config struct {
	Hash          extract.HashFunc
	Render        render.Options
	RenderOptions []render.Option
	Logger        *zap.Logger
	CallQueue     int
	History       int
	// Now stamps history entries. Defaults to time.Now.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Hash:      extract.DefaultHash,
		Render:    render.DefaultOptions(),
		CallQueue: DefaultCallQueue,
		History:   DefaultHistory,
	}
}

// Stats is a point-in-time summary of the whole pipeline.
type Stats struct {
	Frames        uint64
	Samples       uint64
	IgnoredFrames uint64
	RawBits       uint64
	DebiasedBits  uint64
	Bytes         uint64
	Digests       uint64

	PendingRawBit bool
	PendingBits   int
	PendingBatch  int

	PoolLen    int
	Generation uint64
	Waiting    int
	Resets     uint64

	Stopped      bool
	SourceClosed bool
	Dropped      uint64

	Render  render.Stats
	Metrics map[string]float64
}

type Engine struct {
	extractor *extract.VonNeumann
	assembler *extract.Assembler
	hasher    *extract.Hasher
	pool      *pool.Pool
	renderer  *render.Renderer
	history   *History

	metrics   []Metric
	observers []Observer
	log       *zap.Logger
	now       func() time.Time

	bits  []uint8
	bytes []byte

	calls   chan func()
	done    chan struct{}
	running bool

	stopped      bool
	sourceClosed bool
	source       capture.Source
	stats        Stats
}

func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CallQueue <= 0 {
		cfg.CallQueue = DefaultCallQueue
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		extractor: extract.NewVonNeumann(),
		assembler: extract.NewAssembler(),
		hasher:    extract.NewHasher(cfg.Hash),
		pool:      pool.New(),
		renderer:  render.New(cfg.Render, cfg.RenderOptions...),
		history:   NewHistory(cfg.History),
		log:       cfg.Logger,
		now:       cfg.Now,
		calls:     make(chan func(), cfg.CallQueue),
		done:      make(chan struct{}),
	}
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Pool() *pool.Pool           { return e.pool }
func (e *Engine) Renderer() *render.Renderer { return e.renderer }
func (e *Engine) History() *History          { return e.history }
func (e *Engine) Stopped() bool              { return e.stopped }

// Process pushes one frame of 8-bit samples through the pipeline and
// returns the digests it completed. Frames are ignored while stopped.
func (e *Engine) Process(samples []uint8) []extract.Digest {
	if e.stopped {
		e.stats.IgnoredFrames++
		return nil
	}
	e.stats.Frames++
	e.stats.Samples += uint64(len(samples))

	e.bits = e.extractor.AppendConsume(e.bits[:0], samples)
	e.bytes = e.assembler.AppendConsume(e.bytes[:0], e.bits)
	digests := e.hasher.Consume(e.bytes)
	for _, d := range digests {
		e.pool.Append(d.Sum[:])
		e.history.add(e.pool.Generation(), e.now(), d)
		for _, m := range e.metrics {
			m.Observe(d.Sum[:])
		}
		for _, o := range e.observers {
			o.OnDigest(d)
		}
		e.log.Debug("digest",
			zap.Uint64("index", d.Index),
			zap.String("hex", d.Hex()),
			zap.Int("pool", e.pool.Len()))
	}
	e.stats.Digests += uint64(len(digests))
	return digests
}

// Render advances the renderer by at most one chunk. Surface failures are
// logged and do not stop the pipeline.
func (e *Engine) Render() render.Result {
	res, err := e.renderer.Render(e.pool)
	if err != nil {
		e.log.Warn("render surface failed", zap.Error(err))
	}
	return res
}

// Drain renders until the renderer has caught up with the pool.
func (e *Engine) Drain() render.Result {
	res, err := e.renderer.Drain(e.pool)
	if err != nil {
		e.log.Warn("render surface failed", zap.Error(err))
	}
	return res
}

// Reset empties the pool, resets the renderer and notifies every pending
// waiter with pool.ErrReset. Partial extractor, assembler and hasher state
// is discarded too, so the first digest of the new generation hashes only
// bytes assembled after the reset. It returns the number of waiters
// notified.
func (e *Engine) Reset(reason string) int {
	notified := e.pool.Reset()
	e.extractor.Reset()
	e.assembler.Reset()
	e.hasher.Reset()
	if err := e.renderer.Reset(); err != nil {
		e.log.Warn("render surface failed", zap.Error(err))
	}
	for _, m := range e.metrics {
		m.Reset()
	}
	e.history.clear()
	e.stats.Resets++

	for _, o := range e.observers {
		if r, ok := o.(Resetter); ok {
			r.OnReset(reason)
		}
	}
	e.log.Info("pool reset",
		zap.String("reason", reason),
		zap.Uint64("generation", e.pool.Generation()),
		zap.Int("waiters", notified))
	return notified
}

// Stop discards every piece of in-flight state and ignores frames until
// Start is called.
func (e *Engine) Stop() {
	if e.stopped {
		return
	}
	e.Reset("stop")
	e.stopped = true
}

// Start resumes processing after Stop from a clean slate.
func (e *Engine) Start() {
	if !e.stopped {
		return
	}
	e.stopped = false
	e.log.Info("pipeline started")
}

// Wait registers interest in n pool bytes.
func (e *Engine) Wait(n int) *pool.Waiter { return e.pool.Wait(n) }

// Cancel detaches a waiter registered with Wait.
func (e *Engine) Cancel(w *pool.Waiter) {
	e.pool.Cancel(w)
	e.log.Debug("waiter canceled", zap.Int("want", w.Want()))
}

// Configure applies new renderer options. Changing the grid dimensions
// resets the renderer but leaves the pool alone.
func (e *Engine) Configure(opts render.Options) error {
	prev := e.renderer.Options()
	if err := e.renderer.Configure(opts); err != nil {
		return err
	}
	now := e.renderer.Options()
	if now.Width != prev.Width || now.Height != prev.Height {
		e.log.Info("renderer resized",
			zap.Int("width", now.Width),
			zap.Int("height", now.Height))
	}
	return nil
}

func (e *Engine) Stats() Stats {
	s := e.stats
	s.RawBits = e.extractor.RawBits()
	s.DebiasedBits = e.extractor.OutBits()
	s.Bytes = e.assembler.Bytes()
	s.PendingRawBit = e.extractor.Pending()
	s.PendingBits = e.assembler.Pending()
	s.PendingBatch = e.hasher.Pending()
	s.PoolLen = e.pool.Len()
	s.Generation = e.pool.Generation()
	s.Waiting = e.pool.Waiting()
	s.Stopped = e.stopped
	s.SourceClosed = e.sourceClosed
	if e.source != nil {
		s.Dropped = e.source.Dropped()
	}
	s.Render = e.renderer.Stats()
	if len(e.metrics) > 0 {
		s.Metrics = make(map[string]float64, len(e.metrics))
		for _, m := range e.metrics {
			s.Metrics[m.Name()] = m.Value()
		}
	}
	return s
}

// Run starts src and drives the pipeline until ctx is canceled. Every
// frame is processed and rendered as it arrives; the ticker keeps the
// renderer catching up between frames. When src runs dry the loop keeps
// serving ticks and calls. On return the source is stopped and all
// in-flight state discarded.
func (e *Engine) Run(ctx context.Context, src capture.Source, tick time.Duration) error {
	if e.running {
		return ErrStopped
	}
	select {
	case <-e.done:
		return ErrStopped
	default:
	}
	e.running = true
	defer close(e.done)

	if err := src.Start(ctx); err != nil {
		return err
	}
	e.source = src

	var ticks <-chan time.Time
	if tick > 0 {
		t := time.NewTicker(tick)
		defer t.Stop()
		ticks = t.C
	}

	frames := src.Frames()
	for {
		select {
		case <-ctx.Done():
			err := src.Stop()
			e.Stop()
			e.log.Info("pipeline stopped", zap.Uint64("dropped", src.Dropped()))
			return err
		case f, ok := <-frames:
			if !ok {
				frames = nil
				e.sourceClosed = true
				e.log.Info("capture source exhausted")
				continue
			}
			e.Process(f.Samples)
			f.Release()
			e.Render()
		case <-ticks:
			e.Render()
		case call := <-e.calls:
			call()
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. It must not
// be called from the loop goroutine itself.
func (e *Engine) Do(ctx context.Context, fn func(e *Engine)) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn(e)
	}
	select {
	case e.calls <- call:
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-e.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} { return e.done }
