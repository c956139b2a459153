// Package fluid implements a stable-fluids solver on a fixed 2D grid:
// implicit diffusion, semi-Lagrangian advection and pressure projection,
// sequenced into one update per frame.
package fluid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Config describes the grid and solver coefficients of a Fluid.
type Config struct {
	Width, Height int     // interior cells on each axis
	Diffusion     float64 // applied to density and velocity alike

	// Iterations is the relaxation budget of every diffusion and projection
	// solve. Zero selects DefaultIterations.
	Iterations int

	// ScaleByResolution measures lengths in units of the longer axis, so
	// velocities are in domain lengths per unit time and the look does not
	// depend on resolution. Cells stay square: diffusion scales by N*N and
	// advection by N on both axes, where N is max(Width, Height).
	ScaleByResolution bool
}

// Fluid owns every field of one simulation session. It is not safe for
// concurrent use.
type Fluid struct {
	cfg  Config
	grid Grid
	dt   float64

	density buffer
	vx, vy  buffer

	densitySrc field
	vxSrc      field
	vySrc      field

	pressure   field
	divergence field

	frame int
}

// New allocates a zero-initialised session for cfg advancing by dt per frame.
func New(cfg Config, dt float64) (*Fluid, error) {
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidExtent, cfg.Width, cfg.Height)
	}
	g := Grid{W: cfg.Width, H: cfg.Height}
	if g.Cols() > MaxCells/g.Rows() {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrGridTooLarge, cfg.Width, cfg.Height, MaxCells)
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}

	return &Fluid{
		cfg:  cfg,
		grid: g,
		dt:   dt,

		density: newBuffer(g),
		vx:      newBuffer(g),
		vy:      newBuffer(g),

		densitySrc: newField(g),
		vxSrc:      newField(g),
		vySrc:      newField(g),

		pressure:   newField(g),
		divergence: newField(g),
	}, nil
}

// Simulate advances the session by one frame: the velocity phase first, then
// the density phase carried by the updated velocity.
func (f *Fluid) Simulate() {
	f.velocityStep()
	f.densityStep()
	f.frame++
}

func (f *Fluid) velocityStep() {
	g, iters := f.grid, f.cfg.Iterations
	k := f.diffusionRate()
	sx, sy := f.advectionScale()

	f.mix(&f.vx, f.vxSrc)
	f.mix(&f.vy, f.vySrc)

	f.vx.swap()
	f.vy.swap()
	diffuse(g, BoundaryVertical, f.vx.cur, f.vx.prev, k, iters)
	diffuse(g, BoundaryHorizontal, f.vy.cur, f.vy.prev, k, iters)
	project(g, f.vx.cur, f.vy.cur, f.pressure, f.divergence, iters)

	// The velocity advects itself: both components trace through the
	// projected field now held in prev.
	f.vx.swap()
	f.vy.swap()
	advect(g, BoundaryVertical, f.vx.cur, f.vx.prev, f.vx.prev, f.vy.prev, f.dt, sx, sy)
	advect(g, BoundaryHorizontal, f.vy.cur, f.vy.prev, f.vx.prev, f.vy.prev, f.dt, sx, sy)
	project(g, f.vx.cur, f.vy.cur, f.pressure, f.divergence, iters)
}

func (f *Fluid) densityStep() {
	g := f.grid
	sx, sy := f.advectionScale()

	f.mix(&f.density, f.densitySrc)

	f.density.swap()
	diffuse(g, BoundaryNone, f.density.cur, f.density.prev, f.diffusionRate(), f.cfg.Iterations)

	f.density.swap()
	advect(g, BoundaryNone, f.density.cur, f.density.prev, f.vx.cur, f.vy.cur, f.dt, sx, sy)
}

// mix adds dt times the accumulated source into b.cur and drains the source.
func (f *Fluid) mix(b *buffer, src field) {
	floats.AddScaled(b.cur.data, f.dt, src.data)
	src.m.Zero()
}

// cellsPerUnit is the inverse grid spacing shared by both axes.
func (f *Fluid) cellsPerUnit() float64 {
	if f.cfg.ScaleByResolution {
		return float64(max(f.grid.W, f.grid.H))
	}
	return 1
}

func (f *Fluid) diffusionRate() float64 {
	n := f.cellsPerUnit()
	return f.dt * f.cfg.Diffusion * n * n
}

func (f *Fluid) advectionScale() (float64, float64) {
	n := f.cellsPerUnit()
	return n, n
}

func (f *Fluid) checkIndex(i int) {
	if i < 0 || i >= f.grid.Size() {
		panic(fmt.Errorf("%w: index %d, must be between 0 and %d", ErrIndexOutOfRange, i, f.grid.Size()-1))
	}
}

// AddDensity accumulates value into the density source at flat index i. The
// source is mixed in and drained by the next Simulate. It panics if i is
// outside the field.
func (f *Fluid) AddDensity(i int, value float64) {
	f.checkIndex(i)
	f.densitySrc.data[i] += value
}

// AddVelocity accumulates (vx, vy) into the velocity sources at flat index i.
// It panics if i is outside the field.
func (f *Fluid) AddVelocity(i int, vx, vy float64) {
	f.checkIndex(i)
	f.vxSrc.data[i] += vx
	f.vySrc.data[i] += vy
}

// DensityAt returns the density at flat index i.
func (f *Fluid) DensityAt(i int) float64 {
	f.checkIndex(i)
	return f.density.cur.data[i]
}

// VelocityXAt returns the x velocity at flat index i.
func (f *Fluid) VelocityXAt(i int) float64 {
	f.checkIndex(i)
	return f.vx.cur.data[i]
}

// VelocityYAt returns the y velocity at flat index i.
func (f *Fluid) VelocityYAt(i int) float64 {
	f.checkIndex(i)
	return f.vy.cur.data[i]
}

// DensityField returns a copy of the density field, border included.
func (f *Fluid) DensityField() []float64 { return f.density.cur.snapshot() }

// VelocityXField returns a copy of the x velocity field.
func (f *Fluid) VelocityXField() []float64 { return f.vx.cur.snapshot() }

// VelocityYField returns a copy of the y velocity field.
func (f *Fluid) VelocityYField() []float64 { return f.vy.cur.snapshot() }

// Density returns a snapshot of the density field with its interior range.
func (f *Fluid) Density() ScalarField {
	return newScalarField(f.grid, f.density.cur.snapshot())
}

// Speed returns the velocity magnitude of every cell as a snapshot.
func (f *Fluid) Speed() ScalarField {
	vals := make([]float64, f.grid.Size())
	for i := range vals {
		vals[i] = math.Hypot(f.vx.cur.data[i], f.vy.cur.data[i])
	}
	return newScalarField(f.grid, vals)
}

// IndexOf maps (x, y) to a flat index, clamping each axis to the border.
func (f *Fluid) IndexOf(x, y int) int { return f.grid.Index(x, y) }

// SetTimestep changes dt from the next frame on.
func (f *Fluid) SetTimestep(dt float64) { f.dt = dt }

// SetDiffusion changes the diffusion coefficient from the next frame on.
func (f *Fluid) SetDiffusion(value float64) { f.cfg.Diffusion = value }

// Timestep returns the current dt.
func (f *Fluid) Timestep() float64 { return f.dt }

// Diffusion returns the current diffusion coefficient.
func (f *Fluid) Diffusion() float64 { return f.cfg.Diffusion }

// Config returns the session configuration with defaults applied.
func (f *Fluid) Config() Config { return f.cfg }

// Grid returns the grid extents.
func (f *Fluid) Grid() Grid { return f.grid }

// Width returns the interior width in cells.
func (f *Fluid) Width() int { return f.grid.W }

// Height returns the interior height in cells.
func (f *Fluid) Height() int { return f.grid.H }

// Size returns the length of every field, border included.
func (f *Fluid) Size() int { return f.grid.Size() }

// Frame returns the number of completed Simulate calls since New or Clear.
func (f *Fluid) Frame() int { return f.frame }

// Clear zeroes every field and pending source.
func (f *Fluid) Clear() {
	f.density.zero()
	f.vx.zero()
	f.vy.zero()
	f.densitySrc.m.Zero()
	f.vxSrc.m.Zero()
	f.vySrc.m.Zero()
	f.pressure.m.Zero()
	f.divergence.m.Zero()
	f.frame = 0
}
