package fluid

import "math"

// advect moves d0 along the velocity (u, v) into d. Each interior cell traces
// back by one step and bilinearly samples d0 at the traced point. sx and sy
// convert velocity into cells per unit time on each axis.
func advect(g Grid, b Boundary, d, d0, u, v field, dt, sx, sy float64) {
	dtx, dty := dt*sx, dt*sy
	maxX, maxY := float64(g.W)+0.5, float64(g.H)+0.5

	parallelRows(1, g.H+1, func(j int) {
		for i := 1; i <= g.W; i++ {
			x := clamp(float64(i)-dtx*u.at(i, j), 0.5, maxX)
			y := clamp(float64(j)-dty*v.at(i, j), 0.5, maxY)

			i0 := int(math.Floor(x))
			j0 := int(math.Floor(y))
			s := x - float64(i0)
			t := y - float64(j0)

			bottom := lerp(d0.at(i0, j0), d0.at(i0+1, j0), s)
			top := lerp(d0.at(i0, j0+1), d0.at(i0+1, j0+1), s)
			d.set(i, j, lerp(bottom, top, t))
		}
	})
	enforce(g, b, d)
}
