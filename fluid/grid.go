package fluid

// MaxCells caps the storage size of a single field.
const MaxCells = 1 << 24

// Grid holds the interior extents of a simulation grid. Storage pads every
// side with one boundary cell, so each field has (W+2)*(H+2) entries laid out
// row by row: offset = x + (W+2)*y.
type Grid struct {
	W, H int
}

// Cols is the padded width of a field.
func (g Grid) Cols() int { return g.W + 2 }

// Rows is the padded height of a field.
func (g Grid) Rows() int { return g.H + 2 }

// Size is the number of cells in a field, border included.
func (g Grid) Size() int { return g.Cols() * g.Rows() }

// Index returns the storage offset of (x, y) on g.
func (g Grid) Index(x, y int) int { return Index(x, y, g.W, g.H) }

// Index maps logical coordinates to a storage offset for a grid with interior
// extents nw x nh. Each coordinate is clamped into [0, extent+1] first, so a
// neighbour lookup one step past the border reads the border cell.
func Index(x, y, nw, nh int) int {
	x = clampInt(x, 0, nw+1)
	y = clampInt(y, 0, nh+1)
	return x + (nw+2)*y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp bounds v to [lo, hi]. NaN maps to lo so a poisoned trace still
// samples inside the field.
func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, k float64) float64 {
	return a + k*(b-a)
}
