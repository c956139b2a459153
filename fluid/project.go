package fluid

import "gonum.org/v1/gonum/floats"

// project removes the divergent part of (u, v). p and div are scratch fields.
func project(g Grid, u, v, p, div field, iters int) {
	parallelRows(1, g.H+1, func(j int) {
		for i := 1; i <= g.W; i++ {
			div.set(i, j, divergenceAt(u, v, i, j))
			p.set(i, j, 0)
		}
	})
	enforce(g, BoundaryNone, div)
	enforce(g, BoundaryNone, p)

	relax(g, BoundaryNone, p, iters, func(i, j int, left, right, down, up float64) float64 {
		return (left + right + down + up - div.at(i, j)) / 4
	})

	parallelRows(1, g.H+1, func(j int) {
		for i := 1; i <= g.W; i++ {
			u.set(i, j, u.at(i, j)-0.5*(p.at(i+1, j)-p.at(i-1, j)))
			v.set(i, j, v.at(i, j)-0.5*(p.at(i, j+1)-p.at(i, j-1)))
		}
	})
	enforce(g, BoundaryVertical, u)
	enforce(g, BoundaryHorizontal, v)
}

func divergenceAt(u, v field, i, j int) float64 {
	return 0.5 * ((u.at(i+1, j) - u.at(i-1, j)) + (v.at(i, j+1) - v.at(i, j-1)))
}

// divergenceSquares is the sum of squared centred divergence over the interior.
func divergenceSquares(g Grid, u, v field) float64 {
	d := make([]float64, 0, g.W*g.H)
	for j := 1; j <= g.H; j++ {
		for i := 1; i <= g.W; i++ {
			d = append(d, divergenceAt(u, v, i, j))
		}
	}
	return floats.Dot(d, d)
}
