package render

import (
	"image"
	"image/gif"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// ImageSurface keeps the last presented grid as a paletted image, one
// pixel per cell, and optionally records every presented frame for GIF
// export.
type ImageSurface struct {
	Scale  int
	Record bool
	Delay  int // GIF frame delay in 1/100 s

	img      *image.Paletted
	frames   []*image.Paletted
	presents int
}

func NewImageSurface(scale int) *ImageSurface {
	if scale < 1 {
		scale = 1
	}
	return &ImageSurface{Scale: scale, Delay: 4}
}

func (s *ImageSurface) Present(g *Grid, p Palette) error {
	img := image.NewPaletted(image.Rect(0, 0, g.Width(), g.Height()), p.Colors())
	for i, c := range g.Cells() {
		img.Pix[i] = uint8(c)
	}
	s.img = img
	s.presents++
	if s.Record {
		s.frames = append(s.frames, s.scaled())
	}
	return nil
}

// Presents counts Present calls.
func (s *ImageSurface) Presents() int { return s.presents }

// Image returns the last frame scaled by Scale, or nil before any Present.
func (s *ImageSurface) Image() image.Image {
	if s.img == nil {
		return nil
	}
	return s.scaled()
}

func (s *ImageSurface) scaled() *image.Paletted {
	if s.Scale <= 1 {
		c := *s.img
		c.Pix = append([]uint8(nil), s.img.Pix...)
		return &c
	}
	b := s.img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx()*s.Scale, b.Dy()*s.Scale), s.img.Palette)
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), s.img, b, xdraw.Src, nil)
	return dst
}

func (s *ImageSurface) WritePNG(w io.Writer) error {
	img := s.Image()
	if img == nil {
		return ErrNoFrame
	}
	return png.Encode(w, img)
}

// WriteGIF encodes the recorded frames.
func (s *ImageSurface) WriteGIF(w io.Writer) error {
	if len(s.frames) == 0 {
		return ErrNoFrame
	}
	anim := &gif.GIF{
		Image: s.frames,
		Delay: make([]int, len(s.frames)),
	}
	for i := range anim.Delay {
		anim.Delay[i] = s.Delay
	}
	return gif.EncodeAll(w, anim)
}

// Frames returns the number of recorded frames.
func (s *ImageSurface) Frames() int { return len(s.frames) }
