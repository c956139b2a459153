package fluid

import (
	"errors"
	"math"
	"testing"
)

func newTestFluid(t *testing.T, cfg Config, dt float64) *Fluid {
	t.Helper()
	f, err := New(cfg, dt)
	if err != nil {
		t.Fatalf("New(%+v, %v): %v", cfg, dt, err)
	}
	return f
}

func TestNewRejectsInvalidGrids(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero width", Config{Width: 0, Height: 4}, ErrInvalidExtent},
		{"zero height", Config{Width: 4, Height: 0}, ErrInvalidExtent},
		{"negative width", Config{Width: -3, Height: 4}, ErrInvalidExtent},
		{"too large", Config{Width: 1 << 13, Height: 1 << 13}, ErrGridTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.cfg, 0.1)
			if !errors.Is(err, tt.want) {
				t.Errorf("New(%+v) error = %v, want %v", tt.cfg, err, tt.want)
			}
			if f != nil {
				t.Errorf("New(%+v) returned a session alongside an error", tt.cfg)
			}
		})
	}
}

func TestNewZeroInitialised(t *testing.T) {
	f := newTestFluid(t, Config{Width: 5, Height: 3, Diffusion: 0.2}, 0.1)

	if f.Size() != 35 || f.Width() != 5 || f.Height() != 3 {
		t.Errorf("extents = %dx%d size %d, want 5x3 size 35", f.Width(), f.Height(), f.Size())
	}
	if f.Config().Iterations != DefaultIterations {
		t.Errorf("Iterations = %d, want %d", f.Config().Iterations, DefaultIterations)
	}
	for i := 0; i < f.Size(); i++ {
		if f.DensityAt(i) != 0 || f.VelocityXAt(i) != 0 || f.VelocityYAt(i) != 0 {
			t.Fatalf("cell %d not zero", i)
		}
	}
}

func TestOutOfRangeIndexPanics(t *testing.T) {
	f := newTestFluid(t, Config{Width: 4, Height: 4}, 0.1)
	calls := map[string]func(i int){
		"AddDensity":  func(i int) { f.AddDensity(i, 1) },
		"AddVelocity": func(i int) { f.AddVelocity(i, 1, 1) },
		"DensityAt":   func(i int) { f.DensityAt(i) },
		"VelocityXAt": func(i int) { f.VelocityXAt(i) },
		"VelocityYAt": func(i int) { f.VelocityYAt(i) },
	}
	for name, call := range calls {
		for _, i := range []int{-1, f.Size(), f.Size() + 100} {
			func() {
				defer func() {
					r := recover()
					err, ok := r.(error)
					if !ok || !errors.Is(err, ErrIndexOutOfRange) {
						t.Errorf("%s(%d) recovered %v, want ErrIndexOutOfRange", name, i, r)
					}
				}()
				call(i)
			}()
		}
	}
}

func TestSourceIsDrainedAfterSimulate(t *testing.T) {
	f := newTestFluid(t, Config{Width: 8, Height: 8}, 0.5)
	i := f.IndexOf(4, 4)

	f.AddDensity(i, 10)
	f.Simulate()
	first := f.DensityAt(i)
	if first != 5 {
		t.Fatalf("density after first frame = %v, want 5", first)
	}

	f.Simulate()
	if got := f.DensityAt(i); got != first {
		t.Errorf("density after second frame = %v, want %v", got, first)
	}
	if total := f.Stats().TotalDensity; total != first {
		t.Errorf("total density = %v, want %v", total, first)
	}
}

func TestAddDensityAccumulates(t *testing.T) {
	f := newTestFluid(t, Config{Width: 4, Height: 4}, 1)
	i := f.IndexOf(2, 2)
	f.AddDensity(i, 1.5)
	f.AddDensity(i, 2.5)
	f.Simulate()
	if got := f.DensityAt(i); got != 4 {
		t.Errorf("density = %v, want 4", got)
	}
}

func TestVelocityCarriesDensity(t *testing.T) {
	f := newTestFluid(t, Config{Width: 32, Height: 16}, 0.5)
	for x := 8; x <= 11; x++ {
		for y := 6; y <= 9; y++ {
			f.AddDensity(f.IndexOf(x, y), 10)
			f.AddVelocity(f.IndexOf(x, y), 10, 0)
		}
	}
	for range 5 {
		f.Simulate()
	}

	d := f.Density()
	var mass, moment float64
	for y := 1; y <= d.Height; y++ {
		for x := 1; x <= d.Width; x++ {
			v, err := d.Value(x, y)
			if err != nil {
				t.Fatal(err)
			}
			mass += v
			moment += v * float64(x)
		}
	}
	if mass <= 0 {
		t.Fatalf("mass = %v, want > 0", mass)
	}
	if cx := moment / mass; cx <= 10 {
		t.Errorf("density centroid x = %v, want it pushed past 10", cx)
	}
}

func allFinite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func runJet(t *testing.T, dt float64, frames int) *Fluid {
	t.Helper()
	f := newTestFluid(t, Config{Width: 16, Height: 12, Diffusion: 0.1, ScaleByResolution: true}, dt)
	for frame := 0; frame < frames; frame++ {
		f.AddDensity(f.IndexOf(8, 6), 100)
		f.AddVelocity(f.IndexOf(8, 6), 40, -25)
		f.Simulate()
	}
	return f
}

func TestSimulateStableForLargeTimesteps(t *testing.T) {
	for _, dt := range []float64{0, 0.01, 1, 50} {
		f := runJet(t, dt, 10)
		if !allFinite(f.DensityField()) || !allFinite(f.VelocityXField()) || !allFinite(f.VelocityYField()) {
			t.Errorf("dt=%v: non-finite values after 10 frames", dt)
		}
	}
}

func TestSimulateNegativeTimestepDoesNotPanic(t *testing.T) {
	f := runJet(t, -0.5, 3)
	if f.Frame() != 3 {
		t.Errorf("Frame() = %d, want 3", f.Frame())
	}
}

func TestFieldSnapshotsDoNotAlias(t *testing.T) {
	f := newTestFluid(t, Config{Width: 4, Height: 4}, 1)
	i := f.IndexOf(1, 1)
	f.AddDensity(i, 3)
	f.Simulate()

	snap := f.DensityField()
	snap[i] = -1
	if f.DensityAt(i) != 3 {
		t.Errorf("writing a snapshot changed the field to %v", f.DensityAt(i))
	}

	snap = f.DensityField()
	f.AddDensity(i, 3)
	f.Simulate()
	if snap[i] != 3 {
		t.Errorf("snapshot changed by Simulate to %v", snap[i])
	}
	if len(f.VelocityXField()) != f.Size() || len(f.VelocityYField()) != f.Size() {
		t.Error("velocity snapshots have the wrong length")
	}
}

func TestScalarFieldValue(t *testing.T) {
	f := newTestFluid(t, Config{Width: 3, Height: 2}, 1)
	f.AddDensity(f.IndexOf(2, 1), 4)
	f.Simulate()
	d := f.Density()

	if d.Max != 4 || d.Min != 0 {
		t.Errorf("range = [%v, %v], want [0, 4]", d.Min, d.Max)
	}
	if v, err := d.Value(2, 1); err != nil || v != 4 {
		t.Errorf("Value(2, 1) = %v, %v; want 4, nil", v, err)
	}
	for _, c := range [][2]int{{-1, 0}, {5, 0}, {0, -1}, {0, 4}} {
		if _, err := d.Value(c[0], c[1]); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Value(%d, %d) error = %v, want ErrIndexOutOfRange", c[0], c[1], err)
		}
	}
}

func TestSettersApplyNextFrame(t *testing.T) {
	f := newTestFluid(t, Config{Width: 4, Height: 4, Diffusion: 0.5}, 1)
	f.SetTimestep(0.25)
	f.SetDiffusion(0)
	if f.Timestep() != 0.25 || f.Diffusion() != 0 {
		t.Fatalf("Timestep, Diffusion = %v, %v; want 0.25, 0", f.Timestep(), f.Diffusion())
	}

	i := f.IndexOf(2, 3)
	f.AddDensity(i, 8)
	f.Simulate()
	if got := f.DensityAt(i); got != 2 {
		t.Errorf("density = %v, want 2", got)
	}
}

func TestClear(t *testing.T) {
	f := newTestFluid(t, Config{Width: 6, Height: 6, Diffusion: 0.01}, 0.5)
	f.AddDensity(f.IndexOf(3, 3), 5)
	f.AddVelocity(f.IndexOf(3, 3), 2, 2)
	f.Simulate()
	f.AddDensity(f.IndexOf(1, 1), 5)

	f.Clear()
	if f.Frame() != 0 {
		t.Errorf("Frame() = %d after Clear, want 0", f.Frame())
	}
	f.Simulate()
	s := f.Stats()
	if s.TotalDensity != 0 || s.MaxSpeed != 0 {
		t.Errorf("stats after Clear = %+v, want all zero", s)
	}
}

func TestStats(t *testing.T) {
	f := newTestFluid(t, Config{Width: 10, Height: 10}, 1)
	f.AddDensity(f.IndexOf(3, 3), 2)
	f.AddDensity(f.IndexOf(7, 7), 6)
	f.Simulate()

	s := f.Stats()
	if s.Frame != 1 {
		t.Errorf("Frame = %d, want 1", s.Frame)
	}
	if s.TotalDensity != 8 || s.MaxDensity != 6 {
		t.Errorf("TotalDensity, MaxDensity = %v, %v; want 8, 6", s.TotalDensity, s.MaxDensity)
	}
	if s.MaxSpeed != 0 || s.MeanSpeed != 0 || s.Divergence != 0 {
		t.Errorf("flow stats = %+v, want zero flow", s)
	}

	f.AddVelocity(f.IndexOf(5, 5), 3, 4)
	f.Simulate()
	if s := f.Stats(); s.MaxSpeed <= 0 || s.MeanSpeed <= 0 {
		t.Errorf("flow stats = %+v, want moving fluid", s)
	}
}

func TestSimulateVelocityStepEndToEnd(t *testing.T) {
	const dt = 1.0
	f := newTestFluid(t, Config{Width: 16, Height: 16}, dt)
	g := f.Grid()

	inBlock := func(i, j int) bool { return i >= 6 && i <= 9 && j >= 6 && j <= 9 }
	raw := func(val float64) field {
		return filledField(g, func(i, j int) float64 {
			if inBlock(i, j) {
				return dt * val
			}
			return 0
		})
	}
	u0, v0 := raw(10), raw(4)
	enforce(g, BoundaryVertical, u0)
	enforce(g, BoundaryHorizontal, v0)
	before := divergenceSquares(g, u0, v0)

	for j := 1; j <= g.H; j++ {
		for i := 1; i <= g.W; i++ {
			if inBlock(i, j) {
				f.AddVelocity(f.IndexOf(i, j), 10, 4)
			}
		}
	}
	f.Simulate()

	vx := func(i, j int) float64 { return f.VelocityXAt(f.IndexOf(i, j)) }
	vy := func(i, j int) float64 { return f.VelocityYAt(f.IndexOf(i, j)) }
	w, h := g.W, g.H
	for j := 1; j <= h; j++ {
		if vx(0, j) != -vx(1, j) || vx(w+1, j) != -vx(w, j) {
			t.Errorf("row %d: vx is not negated across the side walls", j)
		}
		if vy(0, j) != vy(1, j) || vy(w+1, j) != vy(w, j) {
			t.Errorf("row %d: vy is not copied across the side walls", j)
		}
	}
	for i := 1; i <= w; i++ {
		if vy(i, 0) != -vy(i, 1) || vy(i, h+1) != -vy(i, h) {
			t.Errorf("column %d: vy is not negated across the top and bottom walls", i)
		}
		if vx(i, 0) != vx(i, 1) || vx(i, h+1) != vx(i, h) {
			t.Errorf("column %d: vx is not copied across the top and bottom walls", i)
		}
	}

	after := divergenceSquares(g, f.vx.cur, f.vy.cur)
	if after >= before/4 {
		t.Errorf("divergence after Simulate = %v, want well below the source's %v", after, before)
	}
	if f.Stats().MaxSpeed == 0 {
		t.Error("velocity source left no flow")
	}
}

func TestScaleByResolutionUsesSquareCells(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantK      float64
		wantScaleX float64
	}{
		{"unscaled", Config{Width: 16, Height: 8, Diffusion: 0.01}, 0.005, 1},
		{"wide", Config{Width: 16, Height: 8, Diffusion: 0.01, ScaleByResolution: true}, 0.005 * 256, 16},
		{"tall", Config{Width: 8, Height: 16, Diffusion: 0.01, ScaleByResolution: true}, 0.005 * 256, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFluid(t, tt.cfg, 0.5)
			if k := f.diffusionRate(); math.Abs(k-tt.wantK) > 1e-12 {
				t.Errorf("diffusionRate() = %v, want %v", k, tt.wantK)
			}
			sx, sy := f.advectionScale()
			if sx != tt.wantScaleX || sy != sx {
				t.Errorf("advectionScale() = %v, %v; want %v on both axes", sx, sy, tt.wantScaleX)
			}
		})
	}
}
