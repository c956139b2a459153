package fluid

import "fmt"

// DefaultIterations is the sweep budget used by diffusion and projection when
// a Config leaves Iterations unset.
const DefaultIterations = 20

// CellRule computes the next value of interior cell (x, y) from its four axis
// neighbours as they stand in the field being relaxed.
type CellRule func(x, y int, left, right, down, up float64) float64

// relax runs iters Gauss-Seidel sweeps of rule over the interior of x. Each
// update is written in place, so later cells in the same sweep already see it.
// The border is re-enforced after every sweep.
func relax(g Grid, b Boundary, x field, iters int, rule CellRule) {
	for k := 0; k < iters; k++ {
		for j := 1; j <= g.H; j++ {
			for i := 1; i <= g.W; i++ {
				x.set(i, j, rule(i, j, x.at(i-1, j), x.at(i+1, j), x.at(i, j-1), x.at(i, j+1)))
			}
		}
		enforce(g, b, x)
	}
}

// Equation returns a new estimate for one unknown of a linear system given
// the current estimates of all unknowns.
type Equation func(x []float64) float64

// GaussSeidel estimates the unknowns of a linear system by iters sweeps over
// eqs, starting from initial. Within a sweep, equation k sees the updates of
// equations 0..k-1. initial is not modified.
func GaussSeidel(eqs []Equation, initial []float64, iters int) ([]float64, error) {
	if len(eqs) != len(initial) {
		return nil, fmt.Errorf("%w: %d equations for %d unknowns", ErrDimensionMismatch, len(eqs), len(initial))
	}
	x := make([]float64, len(initial))
	copy(x, initial)
	for k := 0; k < iters; k++ {
		for i, eq := range eqs {
			x[i] = eq(x)
		}
	}
	return x, nil
}
