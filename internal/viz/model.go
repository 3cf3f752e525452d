package viz

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DM41131/RNG-password-generator/internal/engine"
	"github.com/DM41131/RNG-password-generator/internal/extract"
	"github.com/DM41131/RNG-password-generator/internal/render"
	"github.com/DM41131/RNG-password-generator/internal/storage"
)

// DefaultTick is how often the stats panel refreshes.
const DefaultTick = 250 * time.Millisecond

const (
	historyCapacity = 120
	minGridWidth    = 8
	maxGridWidth    = 1024
	minGridHeight   = 4
	maxGridHeight   = 1024
)

// Engine is the part of *engine.Engine the UI drives.
type Engine interface {
	Do(ctx context.Context, fn func(e *engine.Engine)) error
	Collect(ctx context.Context, n int, reset bool) (*engine.Collection, error)
}

type Options struct {
	Title       string
	Theme       string
	Braille     bool
	Tick        time.Duration
	CollectSize int
	PixelScale  int
	// OutputDir receives PNG snapshots and GIF recordings.
	OutputDir string
	// Store, when set, keeps every collection made from the UI.
	Store *storage.Store
	Meta  storage.RunMetadata
}

type TickMsg time.Time

// StatsMsg is a pipeline snapshot taken on the engine goroutine.
type StatsMsg struct {
	Stats  engine.Stats
	Render render.Options
	At     time.Time
}

// CollectedMsg reports the end of a collection started with the collect key.
type CollectedMsg struct {
	Size  int
	RunID string
	Err   error
}

type noticeMsg struct {
	text string
	err  error
}

// Model is the live terminal view of the pool. Frames arrive from a
// Surface attached to the engine's renderer; everything else is pulled
// through Engine.Do.
type Model struct {
	ctx     context.Context
	eng     Engine
	surface *Surface
	opts    Options

	theme   Theme
	styles  Styles
	keys    keyMap
	help    help.Model
	bar     progress.Model
	printer *message.Printer

	grid    *render.Grid
	palette render.Palette
	braille bool

	stats     engine.Stats
	renderOpt render.Options
	lastBytes uint64
	lastAt    time.Time
	rate      []float64
	monobit   []float64

	recorder   *render.ImageSurface
	collecting bool
	notice     string
	noticeErr  bool
}

func NewModel(ctx context.Context, eng Engine, surface *Surface, opts Options) Model {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.PixelScale < 1 {
		opts.PixelScale = 1
	}
	if opts.Title == "" {
		opts.Title = "entropool"
	}
	theme := GetTheme(opts.Theme)
	return Model{
		ctx:     ctx,
		eng:     eng,
		surface: surface,
		opts:    opts,
		theme:   theme,
		styles:  NewStyles(theme),
		keys:    defaultKeyMap(),
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(36)),
		printer: message.NewPrinter(language.English),
		palette: theme.Palette(),
		braille: opts.Braille,
		rate:    make([]float64, 0, historyCapacity),
		monobit: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.surface.Next(), m.tick(), m.applyPalette(m.palette))
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input and pipeline events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case FrameMsg:
		m.grid = msg.Grid
		m.palette = msg.Palette
		if m.recorder != nil {
			if err := m.recorder.Present(msg.Grid, msg.Palette); err != nil {
				m.setNotice("recording failed", err)
				m.recorder = nil
			}
		}
		return m, m.surface.Next()

	case TickMsg:
		return m, tea.Batch(m.fetchStats(), m.tick())

	case StatsMsg:
		m.observe(msg)
		if m.collecting && m.opts.CollectSize > 0 {
			frac := min(float64(msg.Stats.PoolLen)/float64(m.opts.CollectSize), 1)
			return m, m.bar.SetPercent(frac)
		}

	case CollectedMsg:
		m.collecting = false
		switch {
		case msg.Err != nil:
			m.setNotice("collect failed", msg.Err)
		case msg.RunID != "":
			m.setNotice(m.printer.Sprintf("collected %d bytes as run %s", msg.Size, msg.RunID), nil)
		default:
			m.setNotice(m.printer.Sprintf("collected %d bytes", msg.Size), nil)
		}
		return m, m.bar.SetPercent(0)

	case noticeMsg:
		m.setNotice(msg.text, msg.err)

	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		return m, m.call(func(e *engine.Engine) {
			if e.Stopped() {
				e.Start()
			} else {
				e.Stop()
			}
		})
	case key.Matches(msg, m.keys.Reset):
		return m, m.call(func(e *engine.Engine) { e.Reset("reset from terminal") })
	case key.Matches(msg, m.keys.Direction):
		return m, m.configure(func(o *render.Options) { o.NewestAtTop = !o.NewestAtTop })
	case key.Matches(msg, m.keys.Grow):
		return m, m.configure(func(o *render.Options) {
			o.Width = min(o.Width*2, maxGridWidth)
			o.Height = min(o.Height*2, maxGridHeight)
		})
	case key.Matches(msg, m.keys.Shrink):
		return m, m.configure(func(o *render.Options) {
			o.Width = max(o.Width/2, minGridWidth)
			o.Height = max(o.Height/2, minGridHeight)
		})
	case key.Matches(msg, m.keys.Mode):
		m.braille = !m.braille
	case key.Matches(msg, m.keys.Theme):
		m.theme = NextTheme(m.theme.Name)
		m.styles = NewStyles(m.theme)
		m.palette = m.theme.Palette()
		return m, m.applyPalette(m.palette)
	case key.Matches(msg, m.keys.Snapshot):
		return m, m.saveSnapshot()
	case key.Matches(msg, m.keys.Record):
		if m.recorder == nil {
			m.recorder = render.NewImageSurface(m.opts.PixelScale)
			m.recorder.Record = true
			m.setNotice("recording", nil)
			return m, nil
		}
		rec := m.recorder
		m.recorder = nil
		return m, m.saveGIF(rec)
	case key.Matches(msg, m.keys.Collect):
		if m.collecting || m.opts.CollectSize <= 0 {
			return m, nil
		}
		m.collecting = true
		m.notice = ""
		return m, m.collect()
	}
	return m, nil
}

// call runs fn on the engine goroutine and reports failures as notices.
func (m Model) call(fn func(e *engine.Engine)) tea.Cmd {
	eng, ctx := m.eng, m.ctx
	return func() tea.Msg {
		if err := eng.Do(ctx, fn); err != nil {
			return noticeMsg{text: "engine unavailable", err: err}
		}
		return nil
	}
}

func (m Model) configure(edit func(o *render.Options)) tea.Cmd {
	eng, ctx := m.eng, m.ctx
	return func() tea.Msg {
		var cfgErr error
		err := eng.Do(ctx, func(e *engine.Engine) {
			opts := e.Renderer().Options()
			edit(&opts)
			cfgErr = e.Configure(opts)
		})
		if err == nil {
			err = cfgErr
		}
		if err != nil {
			return noticeMsg{text: "configure failed", err: err}
		}
		return nil
	}
}

func (m Model) applyPalette(p render.Palette) tea.Cmd {
	return m.configure(func(o *render.Options) { o.Palette = p })
}

func (m Model) fetchStats() tea.Cmd {
	eng, ctx := m.eng, m.ctx
	return func() tea.Msg {
		var msg StatsMsg
		err := eng.Do(ctx, func(e *engine.Engine) {
			msg.Stats = e.Stats()
			msg.Render = e.Renderer().Options()
		})
		if err != nil {
			return nil
		}
		msg.At = time.Now()
		return msg
	}
}

func (m Model) collect() tea.Cmd {
	eng, ctx, opts := m.eng, m.ctx, m.opts
	return func() tea.Msg {
		c, err := eng.Collect(ctx, opts.CollectSize, true)
		if err != nil {
			return CollectedMsg{Err: err}
		}
		msg := CollectedMsg{Size: len(c.Data)}
		if opts.Store != nil {
			msg.RunID, msg.Err = opts.Store.SaveCollection(opts.Meta, c)
		}
		return msg
	}
}

func (m Model) saveSnapshot() tea.Cmd {
	if m.grid == nil {
		return nil
	}
	g, p := m.grid, m.palette
	scale, dir := m.opts.PixelScale, m.opts.OutputDir
	return func() tea.Msg {
		s := render.NewImageSurface(scale)
		if err := s.Present(g, p); err != nil {
			return noticeMsg{text: "snapshot failed", err: err}
		}
		path, err := writeOutput(dir, "png", s.WritePNG)
		if err != nil {
			return noticeMsg{text: "snapshot failed", err: err}
		}
		return noticeMsg{text: "saved " + path}
	}
}

func (m Model) saveGIF(rec *render.ImageSurface) tea.Cmd {
	dir := m.opts.OutputDir
	return func() tea.Msg {
		if rec.Frames() == 0 {
			return noticeMsg{text: "recording empty"}
		}
		path, err := writeOutput(dir, "gif", rec.WriteGIF)
		if err != nil {
			return noticeMsg{text: "recording failed", err: err}
		}
		return noticeMsg{text: "saved " + path}
	}
}

func writeOutput(dir, ext string, write func(w io.Writer) error) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("entropool-%s.%s", time.Now().Format("20060102-150405"), ext))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := write(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// observe folds a stats snapshot into the throughput and monobit series.
func (m *Model) observe(msg StatsMsg) {
	bytes := msg.Stats.Digests * 32
	if !m.lastAt.IsZero() && bytes >= m.lastBytes {
		if dt := msg.At.Sub(m.lastAt).Seconds(); dt > 0 {
			m.rate = appendCapped(m.rate, float64(bytes-m.lastBytes)/dt)
		}
	}
	m.lastBytes, m.lastAt = bytes, msg.At
	if v, ok := msg.Stats.Metrics["monobit"]; ok {
		m.monobit = appendCapped(m.monobit, v)
	}
	m.stats = msg.Stats
	m.renderOpt = msg.Render
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) == historyCapacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

func (m *Model) setNotice(text string, err error) {
	m.noticeErr = err != nil
	if err != nil {
		text = text + ": " + err.Error()
	}
	m.notice = text
}

// View renders the grid next to the stats panel.
func (m Model) View() string {
	gridView := m.styles.GridBorder.Render(m.gridString())
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, gridView, m.styles.Panel.Render(m.panel())),
		m.help.View(m.keys),
	)
}

func (m Model) gridString() string {
	if m.grid == nil {
		return m.styles.KeyHint.Render("waiting for entropy...")
	}
	if m.braille {
		c := CanvasFor(m.grid)
		c.DrawGrid(m.grid)
		return lipgloss.NewStyle().Foreground(m.theme.One).Render(c.String())
	}
	return Blocks(m.grid, m.palette)
}

func (m Model) panel() string {
	st, s, p := m.stats, m.styles, m.printer
	var b strings.Builder

	b.WriteString(s.Header.Render(strings.ToUpper(m.opts.Title)) + "\n")
	status := s.Running.Render("RUNNING")
	switch {
	case st.Stopped:
		status = s.Stopped.Render("STOPPED")
	case st.SourceClosed:
		status = s.Stopped.Render("SOURCE CLOSED")
	}
	if m.recorder != nil {
		status += "  " + s.Recording.Render("● REC")
	}
	b.WriteString(status + "\n\n")

	row := func(label, value string) {
		b.WriteString(s.Label.Render(label) + s.Value.Render(value) + "\n")
	}
	row("Pool", p.Sprintf("%d B", st.PoolLen))
	row("Generation", p.Sprintf("%d", st.Generation))
	row("Digests", p.Sprintf("%d", st.Digests))
	row("Raw bits", p.Sprintf("%d", st.RawBits))
	row("Debiased", p.Sprintf("%d", st.DebiasedBits))
	if st.RawBits > 0 {
		row("Yield", p.Sprintf("%.3f", float64(st.DebiasedBits)/float64(st.RawBits)))
	}
	row("Batch", p.Sprintf("%d / %d B", st.PendingBatch, extract.BatchSize))
	row("Rendered", p.Sprintf("%d bits", st.Render.Cursor))
	row("Grid", p.Sprintf("%d×%d %s", m.renderOpt.Width, m.renderOpt.Height, direction(m.renderOpt.NewestAtTop)))
	row("Chunk", p.Sprintf("%d bits", st.Render.Chunk))
	if st.Dropped > 0 {
		row("Dropped", p.Sprintf("%d", st.Dropped))
	}

	if len(m.rate) > 1 {
		chart := asciigraph.Plot(m.rate, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("bytes/s"))
		b.WriteString("\n" + s.Graph.Render(chart) + "\n")
	}
	if len(m.monobit) > 0 {
		b.WriteString("\n" + s.Label.Render("Monobit") + s.Sparkline(m.monobit, 24, 0.45, 0.55) + "\n")
	}
	for _, name := range []string{"entropy", "chi_square", "runs"} {
		if v, ok := st.Metrics[name]; ok {
			row(name, p.Sprintf("%.4f", v))
		}
	}

	if m.collecting {
		b.WriteString("\n" + p.Sprintf("collecting %d bytes", m.opts.CollectSize) + "\n" + m.bar.View() + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n")
		if m.noticeErr {
			b.WriteString(s.Error.Render(m.notice))
		} else {
			b.WriteString(s.KeyHint.Render(m.notice))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + s.Separator(36))
	return b.String()
}

func direction(newestAtTop bool) string {
	if newestAtTop {
		return "newest top"
	}
	return "newest bottom"
}
