package scene

import (
	"fmt"

	"github.com/pythonian23/stablefluid/config"
)

// Mode selects what a brush injects.
type Mode int

const (
	ModeAll Mode = iota
	ModeVelocity
	ModeDensity
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeVelocity:
		return "velocity"
	case ModeDensity:
		return "density"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Next cycles through the modes in display order.
func (m Mode) Next() Mode {
	return (m + 1) % 3
}

// ParseMode parses the name of a brush mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "all":
		return ModeAll, nil
	case "velocity":
		return ModeVelocity, nil
	case "density":
		return ModeDensity, nil
	}
	return ModeAll, fmt.Errorf("scene: unknown brush mode %q", s)
}

// Brush turns pointer input into sources.
type Brush struct {
	Mode     Mode
	Radius   int
	Density  float64
	Velocity float64
}

// NewBrush builds a brush from its configuration.
func NewBrush(cfg config.BrushConfig) (Brush, error) {
	m, err := ParseMode(cfg.Mode)
	if err != nil {
		return Brush{}, err
	}
	return Brush{Mode: m, Radius: cfg.Radius, Density: cfg.Density, Velocity: cfg.Velocity}, nil
}

// Dab injects density at p without pushing the fluid.
func (b Brush) Dab(f Injector, p Point) {
	if b.Mode == ModeVelocity {
		return
	}
	splat(f, p, b.Radius, func(i int, w float64) {
		f.AddDensity(i, b.Density*w)
	})
}

// Stroke injects along the segment from -> to. Velocity points along the
// drag direction on each axis independently, at the brush's strength.
func (b Brush) Stroke(f Injector, from, to Point) {
	dx, dy := to.X-from.X, to.Y-from.Y
	vx, vy := sign(dx)*b.Velocity, sign(dy)*b.Velocity

	steps := max(abs(dx), abs(dy), 1)
	for s := 1; s <= steps; s++ {
		p := Point{
			X: from.X + dx*s/steps,
			Y: from.Y + dy*s/steps,
		}
		splat(f, p, b.Radius, func(i int, w float64) {
			if b.Mode != ModeVelocity {
				f.AddDensity(i, b.Density*w/float64(steps))
			}
			if b.Mode != ModeDensity {
				f.AddVelocity(i, vx*w, vy*w)
			}
		})
	}
}

func sign(v int) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
