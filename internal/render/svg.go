package render

import (
	"fmt"
	"strings"
)

// SVG converts a grid to an SVG document with scale×scale pixels per cell.
// Horizontal runs of equal cells become one rect.
func SVG(g *Grid, p Palette, scale int) string {
	if g == nil {
		return ""
	}
	if scale < 1 {
		scale = 1
	}
	width := g.Width() * scale
	height := g.Height() * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, HexColor(p.Unset))

	for _, c := range []Cell{CellZero, CellOne} {
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n", HexColor(p.Color(c)))
		for y := 0; y < g.Height(); y++ {
			row := g.Row(y)
			for x := 0; x < len(row); {
				if row[x] != c {
					x++
					continue
				}
				run := 1
				for x+run < len(row) && row[x+run] == c {
					run++
				}
				fmt.Fprintf(&sb, "<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\"/>\n",
					x*scale, y*scale, run*scale, scale)
				x += run
			}
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
