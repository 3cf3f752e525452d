package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/DM41131/RNG-password-generator/internal/render"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

var cellChars = [3]byte{' ', '.', '#'}

// Live is a render.Surface that repaints the grid as plain characters on
// every Present. It is meant for terminals where the full-screen UI is
// unavailable; pace it with the renderer's MinInterval (see FrameInterval).
type Live struct {
	w      io.Writer
	title  string
	frames uint64
}

func NewLive(w io.Writer, title string) *Live {
	return &Live{w: w, title: title}
}

// FrameInterval converts a frame rate into a render MinInterval.
// Non-positive rates fall back to 10 frames per second.
func FrameInterval(fps int) time.Duration {
	if fps < 1 {
		fps = 10
	}
	return time.Second / time.Duration(fps)
}

func (l *Live) Present(g *render.Grid, p render.Palette) error {
	l.frames++
	_, err := io.WriteString(l.w, l.frame(g))
	return err
}

// Frames counts repaints that were actually written.
func (l *Live) Frames() uint64 { return l.frames }

func (l *Live) frame(g *render.Grid) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  %dx%d\n", l.title, g.Width(), g.Height())
	b.WriteString("  " + strings.Repeat("-", g.Width()) + "\n")

	row := make([]byte, g.Width())
	for y := 0; y < g.Height(); y++ {
		for x, c := range g.Row(y) {
			row[x] = cellChars[c]
		}
		b.WriteString("  ")
		b.Write(row)
		b.WriteByte('\n')
	}
	b.WriteString("  " + strings.Repeat("-", g.Width()) + "\n")
	return b.String()
}

func (l *Live) Start() { io.WriteString(l.w, hideCursor) }
func (l *Live) Stop()  { io.WriteString(l.w, showCursor) }
