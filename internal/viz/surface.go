package viz

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DM41131/RNG-password-generator/internal/render"
)

// FrameMsg carries a presented grid into the bubbletea loop.
type FrameMsg struct {
	Grid    *render.Grid
	Palette render.Palette
}

// Surface hands grids from the engine goroutine to the UI. Only the newest
// unread frame is kept; older ones are replaced, never queued.
type Surface struct {
	frames chan FrameMsg
}

func NewSurface() *Surface {
	return &Surface{frames: make(chan FrameMsg, 1)}
}

// Present never blocks the engine loop.
func (s *Surface) Present(g *render.Grid, p render.Palette) error {
	msg := FrameMsg{Grid: g.Clone(), Palette: p}
	for {
		select {
		case s.frames <- msg:
			return nil
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

// Next waits for the next presented frame.
func (s *Surface) Next() tea.Cmd {
	return func() tea.Msg { return <-s.frames }
}
