// Package render turns simulation fields into paletted images and GIF
// animations.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"sort"

	"github.com/mazznoer/colorgrad"

	"github.com/pythonian23/stablefluid/fluid"
)

// PaletteSize is the number of colours sampled from a gradient.
const PaletteSize = 256

var gradients = map[string]func() colorgrad.Gradient{
	"viridis": colorgrad.Viridis,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"plasma":  colorgrad.Plasma,
	"cividis": colorgrad.Cividis,
	"turbo":   colorgrad.Turbo,
	"warm":    colorgrad.Warm,
	"cool":    colorgrad.Cool,
	"rainbow": colorgrad.Rainbow,
}

// Palettes lists the accepted palette names.
func Palettes() []string {
	names := make([]string, 0, len(gradients))
	for name := range gradients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Palette samples the named gradient into PaletteSize colours.
func Palette(name string) (color.Palette, error) {
	grad, ok := gradients[name]
	if !ok {
		return nil, fmt.Errorf("render: unknown palette %q", name)
	}
	return color.Palette(grad().Colors(PaletteSize)), nil
}

// Mode selects which field is drawn.
type Mode int

const (
	ModeDensity Mode = iota
	ModeSpeed
)

// ParseMode parses "density" or "speed".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "density":
		return ModeDensity, nil
	case "speed":
		return ModeSpeed, nil
	}
	return ModeDensity, fmt.Errorf("render: unknown mode %q", s)
}

// Field returns the snapshot drawn in mode m.
func Field(f *fluid.Fluid, m Mode) fluid.ScalarField {
	if m == ModeSpeed {
		return f.Speed()
	}
	return f.Density()
}

// level maps v into a palette index; gain maps to the last entry.
func level(v, gain float64, n int) uint8 {
	t := v / gain
	if !(t > 0) {
		return 0
	}
	if t >= 1 {
		return uint8(n - 1)
	}
	return uint8(t * float64(n-1))
}

// Frame draws the interior of s, one pixel per cell.
func Frame(s fluid.ScalarField, pal color.Palette, gain float64) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, s.Width, s.Height), pal)
	vals := s.Values()
	stride := s.Width + 2
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.SetColorIndex(x, y, level(vals[(x+1)+stride*(y+1)], gain, len(pal)))
		}
	}
	return img
}

// RGBA writes the interior of s into dst as 8-bit RGBA, one pixel per cell,
// and returns dst. dst is reallocated if it is too short.
func RGBA(s fluid.ScalarField, pal color.Palette, gain float64, dst []byte) []byte {
	n := s.Width * s.Height * 4
	if len(dst) < n {
		dst = make([]byte, n)
	}
	vals := s.Values()
	stride := s.Width + 2
	p := 0
	for y := 1; y <= s.Height; y++ {
		for x := 1; x <= s.Width; x++ {
			c := color.RGBAModel.Convert(pal[level(vals[x+stride*y], gain, len(pal))]).(color.RGBA)
			dst[p], dst[p+1], dst[p+2], dst[p+3] = c.R, c.G, c.B, c.A
			p += 4
		}
	}
	return dst[:n]
}

// Animation collects frames for a looping GIF.
type Animation struct {
	gif   gif.GIF
	delay int
}

// NewAnimation starts an animation with delay 100ths of a second per frame.
func NewAnimation(delay int) *Animation {
	return &Animation{delay: delay}
}

// Add appends a frame.
func (a *Animation) Add(img *image.Paletted) {
	a.gif.Image = append(a.gif.Image, img)
	a.gif.Delay = append(a.gif.Delay, a.delay)
}

// Len returns the number of frames.
func (a *Animation) Len() int { return len(a.gif.Image) }

// Encode writes the animation as a GIF looping forever.
func (a *Animation) Encode(w io.Writer) error {
	if a.Len() == 0 {
		return fmt.Errorf("render: no frames to encode")
	}
	a.gif.LoopCount = 0
	if err := gif.EncodeAll(w, &a.gif); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	return nil
}
