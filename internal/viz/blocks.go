package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DM41131/RNG-password-generator/internal/render"
)

const upperHalf = "▀"

// Blocks renders g with one upper-half block per cell column and two grid
// rows per terminal line, colored from p. Runs of identical cell pairs
// share one style so the output stays small.
func Blocks(g *render.Grid, p render.Palette) string {
	styles := blockStyles(p)
	var b strings.Builder
	for y := 0; y < g.Height(); y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		top := g.Row(y)
		var bottom []render.Cell
		if y+1 < g.Height() {
			bottom = g.Row(y + 1)
		}

		run, prev := 0, -1
		for x := range top {
			k := int(top[x]) * 4
			if bottom != nil {
				k += int(bottom[x])
			} else {
				k += 3
			}
			if k != prev && run > 0 {
				b.WriteString(styles[prev].Render(strings.Repeat(upperHalf, run)))
				run = 0
			}
			prev = k
			run++
		}
		if run > 0 {
			b.WriteString(styles[prev].Render(strings.Repeat(upperHalf, run)))
		}
	}
	return b.String()
}

// blockStyles indexes styles by top*4+bottom; bottom 3 means no row.
func blockStyles(p render.Palette) [12]lipgloss.Style {
	var out [12]lipgloss.Style
	cells := []render.Cell{render.CellUnset, render.CellZero, render.CellOne}
	for _, top := range cells {
		fg := lipgloss.Color(render.HexColor(p.Color(top)))
		for _, bottom := range cells {
			bg := lipgloss.Color(render.HexColor(p.Color(bottom)))
			out[int(top)*4+int(bottom)] = lipgloss.NewStyle().Foreground(fg).Background(bg)
		}
		out[int(top)*4+3] = lipgloss.NewStyle().Foreground(fg)
	}
	return out
}
