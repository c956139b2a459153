package fluid

// diffuse solves the implicit diffusion step
//
//	x[i,j] = (x0[i,j] + k*(x[i-1,j] + x[i+1,j] + x[i,j-1] + x[i,j+1])) / (1 + 4k)
//
// by relaxation. With k == 0 it copies the interior of x0 into x.
func diffuse(g Grid, b Boundary, x, x0 field, k float64, iters int) {
	denom := 1 + 4*k
	relax(g, b, x, iters, func(i, j int, left, right, down, up float64) float64 {
		return (x0.at(i, j) + k*(left+right+down+up)) / denom
	})
}
