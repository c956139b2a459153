package fluid

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the interior of a session after a frame.
type Stats struct {
	Frame        int
	TotalDensity float64
	MaxDensity   float64
	MaxSpeed     float64
	MeanSpeed    float64
	Divergence   float64 // sum of squared centred divergence
}

// Stats computes a summary of the current fields.
func (f *Fluid) Stats() Stats {
	g := f.grid
	rho := f.density.cur.interior(g)

	speeds := make([]float64, 0, g.W*g.H)
	for j := 1; j <= g.H; j++ {
		for i := 1; i <= g.W; i++ {
			speeds = append(speeds, math.Hypot(f.vx.cur.at(i, j), f.vy.cur.at(i, j)))
		}
	}

	return Stats{
		Frame:        f.frame,
		TotalDensity: mat.Sum(rho),
		MaxDensity:   mat.Max(rho),
		MaxSpeed:     floats.Max(speeds),
		MeanSpeed:    stat.Mean(speeds, nil),
		Divergence:   divergenceSquares(g, f.vx.cur, f.vy.cur),
	}
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Float64("total_density", s.TotalDensity),
		slog.Float64("max_density", s.MaxDensity),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("divergence", s.Divergence),
	)
}
