package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Palette maps cells to colors.
type Palette struct {
	One   color.RGBA
	Zero  color.RGBA
	Unset color.RGBA
}

func DefaultPalette() Palette {
	return Palette{
		One:   color.RGBA{0x00, 0xff, 0x88, 0xff},
		Zero:  color.RGBA{0x1a, 0x1a, 0x2e, 0xff},
		Unset: color.RGBA{0x00, 0x00, 0x00, 0xff},
	}
}

func (p Palette) Color(c Cell) color.RGBA {
	switch c {
	case CellOne:
		return p.One
	case CellZero:
		return p.Zero
	default:
		return p.Unset
	}
}

// Colors returns the palette ordered by Cell value.
func (p Palette) Colors() color.Palette {
	return color.Palette{p.Unset, p.Zero, p.One}
}

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("render: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render: invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexColor formats c as "#rrggbb".
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
