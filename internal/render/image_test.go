package render

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"
)

func TestImageSurface(t *testing.T) {
	s := NewImageSurface(3)
	if err := s.WritePNG(&bytes.Buffer{}); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("WritePNG before present: %v", err)
	}

	r := New(fixedOptions(4, 2, 64))
	r.Attach(s)
	r.Render(byteSource{0b1010_0101})

	img := s.Image()
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 6 {
		t.Fatalf("bounds = %v", b)
	}
	p := r.Options().Palette
	if got := img.At(0, 0); got != p.Zero {
		t.Errorf("pixel (0,0) = %v, want zero color", got)
	}
	if got := img.At(3, 0); got != p.One {
		t.Errorf("pixel (3,0) = %v, want one color", got)
	}

	var buf bytes.Buffer
	if err := s.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("decode: %v", err)
	}
}

func TestImageSurfaceRecord(t *testing.T) {
	s := NewImageSurface(1)
	s.Record = true
	r := New(fixedOptions(8, 2, 8))
	r.Attach(s)
	for i := 1; i <= 3; i++ {
		r.Render(make(byteSource, i))
	}

	// Attach repaint plus three rows.
	if s.Frames() != 4 {
		t.Fatalf("frames = %d, want 4", s.Frames())
	}
	var buf bytes.Buffer
	if err := s.WriteGIF(&buf); err != nil {
		t.Fatalf("WriteGIF: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "GIF89a") {
		t.Error("not a GIF")
	}
}

func TestSVG(t *testing.T) {
	g := NewGrid(4, 1)
	g.Insert([]uint8{1, 1, 0, 1}, true)
	out := SVG(g, DefaultPalette(), 2)

	if !strings.Contains(out, `width="8" height="2"`) {
		t.Error("missing scaled size")
	}
	if !strings.Contains(out, `<rect x="0" y="0" width="4" height="2"/>`) {
		t.Error("run of ones not merged")
	}
	if !strings.Contains(out, `<rect x="6" y="0" width="2" height="2"/>`) {
		t.Error("trailing one missing")
	}
	if SVG(nil, DefaultPalette(), 1) != "" {
		t.Error("nil grid should export nothing")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#00ff88", "#00ff88", true},
		{"00FF88", "#00ff88", true},
		{"#0f8", "#00ff88", true},
		{"#12345", "", false},
		{"#zzzzzz", "", false},
	}
	for _, tt := range tests {
		c, err := ParseHexColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseHexColor(%q) err = %v", tt.in, err)
			continue
		}
		if tt.ok && HexColor(c) != tt.want {
			t.Errorf("ParseHexColor(%q) = %s, want %s", tt.in, HexColor(c), tt.want)
		}
	}
}
