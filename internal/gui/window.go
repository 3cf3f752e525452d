package gui

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/DM41131/RNG-password-generator/internal/engine"
	"github.com/DM41131/RNG-password-generator/internal/render"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

const (
	hudHeight     = 72
	statsInterval = 250 * time.Millisecond
)

// Engine is the part of *engine.Engine the window drives.
type Engine interface {
	Do(ctx context.Context, fn func(e *engine.Engine)) error
}

type Options struct {
	Title      string
	PixelScale int
	FPS        int32
	OutputDir  string
	Log        *zap.Logger
}

// Window is a render.Surface. Present only stores the newest grid; the
// window loop uploads it to the GPU on its own thread.
type Window struct {
	eng  Engine
	opts Options
	log  *zap.Logger

	mu       sync.Mutex
	pending  *render.Grid
	palette  render.Palette
	dirty    bool
	presents uint64

	grid    *render.Grid
	gridPal render.Palette
	tex     rl.Texture2D
	texW    int
	texH    int
	buf     []color.RGBA

	stats    engine.Stats
	statsAt  time.Time
	statsCh  chan engine.Stats
	fetching bool
	notice   string
}

func New(eng Engine, opts Options) *Window {
	if opts.PixelScale < 1 {
		opts.PixelScale = 1
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Title == "" {
		opts.Title = "entropool"
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Window{
		eng:     eng,
		opts:    opts,
		log:     opts.Log,
		statsCh: make(chan engine.Stats, 1),
	}
}

// Attach sets the engine the window drives. The window is usually built
// first so it can be handed to the engine as its surface.
func (w *Window) Attach(eng Engine) { w.eng = eng }

func (w *Window) Present(g *render.Grid, p render.Palette) error {
	c := g.Clone()
	w.mu.Lock()
	w.pending, w.palette, w.dirty = c, p, true
	w.presents++
	w.mu.Unlock()
	return nil
}

// take returns the newest presented grid if it has not been taken yet.
func (w *Window) take() (*render.Grid, render.Palette, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty {
		return nil, render.Palette{}, false
	}
	w.dirty = false
	return w.pending, w.palette, true
}

// Pixels expands g into one RGBA value per cell, row-major.
func Pixels(dst []color.RGBA, g *render.Grid, p render.Palette) []color.RGBA {
	cells := g.Cells()
	if cap(dst) < len(cells) {
		dst = make([]color.RGBA, len(cells))
	}
	dst = dst[:len(cells)]
	lut := [3]color.RGBA{p.Unset, p.Zero, p.One}
	for i, c := range cells {
		dst[i] = lut[c]
	}
	return dst
}

// Run opens the window and blocks until it is closed or ctx ends. raylib
// requires every call to come from one OS thread, so Run must be called
// from the main goroutine.
func (w *Window) Run(ctx context.Context, width, height int) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	scale := w.opts.PixelScale
	rl.InitWindow(int32(width*scale), int32(height*scale+hudHeight), w.opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(w.opts.FPS)
	rl.SetExitKey(rl.KeyQ)

	w.log.Info("window opened",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("pixel_scale", scale))

	defer func() {
		if w.texW > 0 {
			rl.UnloadTexture(w.tex)
		}
	}()

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			break
		}
		w.handleInput(ctx)
		w.upload()
		w.pollStats(ctx)
		w.draw()
	}
	w.log.Info("window closed")
	return nil
}

func (w *Window) upload() {
	g, p, ok := w.take()
	if !ok {
		return
	}
	w.grid, w.gridPal = g, p

	if g.Width() != w.texW || g.Height() != w.texH {
		if w.texW > 0 {
			rl.UnloadTexture(w.tex)
		}
		img := rl.GenImageColor(g.Width(), g.Height(), p.Unset)
		w.tex = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		rl.SetTextureFilter(w.tex, rl.FilterPoint)
		w.texW, w.texH = g.Width(), g.Height()

		scale := w.opts.PixelScale
		rl.SetWindowSize(g.Width()*scale, g.Height()*scale+hudHeight)
	}
	w.buf = Pixels(w.buf, g, p)
	rl.UpdateTexture(w.tex, w.buf)
}

func (w *Window) handleInput(ctx context.Context) {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		w.call(ctx, func(e *engine.Engine) {
			if e.Stopped() {
				e.Start()
			} else {
				e.Stop()
			}
		})
	case rl.IsKeyPressed(rl.KeyR):
		w.call(ctx, func(e *engine.Engine) { e.Reset("reset from window") })
	case rl.IsKeyPressed(rl.KeyD):
		w.call(ctx, func(e *engine.Engine) {
			opts := e.Renderer().Options()
			opts.NewestAtTop = !opts.NewestAtTop
			if err := e.Configure(opts); err != nil {
				w.log.Warn("configure failed", zap.Error(err))
			}
		})
	case rl.IsKeyPressed(rl.KeyS):
		w.snapshot()
	}
}

// call hands fn to the engine without stalling the draw loop.
func (w *Window) call(ctx context.Context, fn func(e *engine.Engine)) {
	go func() {
		if err := w.eng.Do(ctx, fn); err != nil {
			w.log.Debug("engine call skipped", zap.Error(err))
		}
	}()
}

func (w *Window) pollStats(ctx context.Context) {
	select {
	case st := <-w.statsCh:
		w.stats = st
		w.fetching = false
	default:
	}
	if w.fetching || time.Since(w.statsAt) < statsInterval {
		return
	}
	w.fetching, w.statsAt = true, time.Now()
	go func() {
		var st engine.Stats
		if err := w.eng.Do(ctx, func(e *engine.Engine) { st = e.Stats() }); err != nil {
			return
		}
		w.statsCh <- st
	}()
}

func (w *Window) snapshot() {
	if w.grid == nil {
		return
	}
	s := render.NewImageSurface(w.opts.PixelScale)
	if err := s.Present(w.grid, w.gridPal); err != nil {
		w.notice = "snapshot failed"
		return
	}
	dir := w.opts.OutputDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("entropool-%s.png", time.Now().Format("20060102-150405")))
	if err := writePNG(path, s); err != nil {
		w.log.Warn("snapshot failed", zap.Error(err))
		w.notice = "snapshot failed"
		return
	}
	w.notice = "saved " + path
}

func writePNG(path string, s *render.ImageSurface) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (w *Window) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if w.texW > 0 {
		scale := float32(w.opts.PixelScale)
		src := rl.NewRectangle(0, 0, float32(w.texW), float32(w.texH))
		dst := rl.NewRectangle(0, 0, float32(w.texW)*scale, float32(w.texH)*scale)
		rl.DrawTexturePro(w.tex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
	} else {
		drawText("waiting for entropy...", 20, 20, 20, ColTextDim)
	}
	w.drawHUD()

	rl.EndDrawing()
}

func (w *Window) drawHUD() {
	y := int32(w.texH*w.opts.PixelScale) + 8
	st := w.stats

	status, col := "RUNNING", ColSelect
	if st.Stopped {
		status, col = "STOPPED", ColTextDim
	}
	drawText(status, 20, y, 16, col)
	drawText(fmt.Sprintf("pool %d B  gen %d  digests %d", st.PoolLen, st.Generation, st.Digests), 120, y, 16, ColText)
	if st.RawBits > 0 {
		drawText(fmt.Sprintf("raw %d  debiased %d  yield %.3f", st.RawBits, st.DebiasedBits,
			float64(st.DebiasedBits)/float64(st.RawBits)), 20, y+22, 14, ColText)
	}
	footer := "[SPACE] STOP/START  [R] RESET  [D] DIRECTION  [S] SNAPSHOT  [Q] QUIT"
	if w.notice != "" {
		footer = w.notice
	}
	drawText(footer, 20, y+44, 14, ColTextDim)
	drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), int32(w.texW*w.opts.PixelScale)-80, y, 14, ColTextDim)
}

func drawText(text string, x, y, size int32, color rl.Color) {
	rl.DrawText(text, x, y, size, color)
}
