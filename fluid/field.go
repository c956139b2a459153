package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// field is one grid quantity. The matrix has H+2 rows and W+2 columns, so its
// row-major backing slice is addressed by Grid.Index.
type field struct {
	m    *mat.Dense
	data []float64
	cols int
}

func newField(g Grid) field {
	m := mat.NewDense(g.Rows(), g.Cols(), nil)
	return field{m: m, data: m.RawMatrix().Data, cols: g.Cols()}
}

func (f field) at(x, y int) float64 { return f.data[x+f.cols*y] }

func (f field) set(x, y int, v float64) { f.data[x+f.cols*y] = v }

// interior is a view of f without its border cells.
func (f field) interior(g Grid) mat.Matrix {
	return f.m.Slice(1, g.H+1, 1, g.W+1)
}

func (f field) snapshot() []float64 {
	out := make([]float64, len(f.data))
	copy(out, f.data)
	return out
}

// buffer owns the current and previous values of one quantity. Steps read
// prev and write cur; swap exchanges the two handles without copying.
type buffer struct {
	cur, prev field
}

func newBuffer(g Grid) buffer {
	return buffer{cur: newField(g), prev: newField(g)}
}

func (b *buffer) swap() {
	b.cur, b.prev = b.prev, b.cur
}

func (b *buffer) zero() {
	b.cur.m.Zero()
	b.prev.m.Zero()
}

// ScalarField is a read-only copy of one field taken between frames.
type ScalarField struct {
	Width, Height int // interior extents
	Min, Max      float64
	values        []float64
}

func newScalarField(g Grid, values []float64) ScalarField {
	s := ScalarField{Width: g.W, Height: g.H, values: values}
	if len(values) == 0 {
		return s
	}
	s.Min, s.Max = values[g.Index(1, 1)], values[g.Index(1, 1)]
	for j := 1; j <= g.H; j++ {
		for i := 1; i <= g.W; i++ {
			v := values[g.Index(i, j)]
			s.Min = min(s.Min, v)
			s.Max = max(s.Max, v)
		}
	}
	return s
}

// Value returns the cell at (x, y). Border cells are addressable; Min and Max
// cover the interior only.
func (s ScalarField) Value(x, y int) (float64, error) {
	if x < 0 || x > s.Width+1 {
		return 0.0, fmt.Errorf("%w: x=%d, must be between 0 and %d", ErrIndexOutOfRange, x, s.Width+1)
	}
	if y < 0 || y > s.Height+1 {
		return 0.0, fmt.Errorf("%w: y=%d, must be between 0 and %d", ErrIndexOutOfRange, y, s.Height+1)
	}
	return s.values[x+(s.Width+2)*y], nil
}

// Values returns the flat storage of the snapshot, border included.
func (s ScalarField) Values() []float64 { return s.values }
