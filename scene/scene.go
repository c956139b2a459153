// Package scene injects density and velocity into a running simulation, either
// from configured emitters every frame or from interactive brush strokes.
package scene

import (
	"math"

	"github.com/pythonian23/stablefluid/config"
)

// Injector is the part of a fluid session that accepts sources.
type Injector interface {
	IndexOf(x, y int) int
	AddDensity(i int, value float64)
	AddVelocity(i int, vx, vy float64)
	Width() int
	Height() int
}

// Point is a cell coordinate.
type Point struct {
	X, Y int
}

// Emitter adds density and velocity over a disk every frame it is applied.
type Emitter struct {
	Name    string
	Center  Point
	Radius  int
	Density float64
	VX, VY  float64
}

// Apply adds the emitter's sources to f with a Gaussian falloff from the
// center. Cells outside the interior are skipped.
func (e Emitter) Apply(f Injector) {
	splat(f, e.Center, e.Radius, func(i int, w float64) {
		if e.Density != 0 {
			f.AddDensity(i, e.Density*w)
		}
		if e.VX != 0 || e.VY != 0 {
			f.AddVelocity(i, e.VX*w, e.VY*w)
		}
	})
}

// Scene is a set of emitters driven together.
type Scene struct {
	Emitters []Emitter
}

// FromConfig builds a scene from configured emitters.
func FromConfig(cfgs []config.EmitterConfig) Scene {
	s := Scene{Emitters: make([]Emitter, 0, len(cfgs))}
	for _, c := range cfgs {
		s.Emitters = append(s.Emitters, Emitter{
			Name:    c.Name,
			Center:  Point{X: c.X, Y: c.Y},
			Radius:  c.Radius,
			Density: c.Density,
			VX:      c.VX,
			VY:      c.VY,
		})
	}
	return s
}

// Apply applies every emitter to f.
func (s Scene) Apply(f Injector) {
	for _, e := range s.Emitters {
		e.Apply(f)
	}
}

// splat calls fn for every interior cell within radius of c, with a weight of
// exp(-3 d²/r²) so the rim gets about 5% of the center.
func splat(f Injector, c Point, radius int, fn func(i int, w float64)) {
	if radius <= 0 {
		if inside(f, c.X, c.Y) {
			fn(f.IndexOf(c.X, c.Y), 1)
		}
		return
	}
	r2 := float64(radius * radius)
	for y := c.Y - radius; y <= c.Y+radius; y++ {
		for x := c.X - radius; x <= c.X+radius; x++ {
			if !inside(f, x, y) {
				continue
			}
			dx, dy := float64(x-c.X), float64(y-c.Y)
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}
			fn(f.IndexOf(x, y), math.Exp(-3*d2/r2))
		}
	}
}

func inside(f Injector, x, y int) bool {
	return x >= 1 && x <= f.Width() && y >= 1 && y <= f.Height()
}
