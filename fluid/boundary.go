package fluid

// Boundary selects how a field's border cells are derived from the interior.
type Boundary int

const (
	// BoundaryNone copies the adjacent interior value on every edge. Used for
	// density, pressure and divergence.
	BoundaryNone Boundary = iota
	// BoundaryVertical negates across the left and right walls and copies on
	// the top and bottom. Used for the x velocity.
	BoundaryVertical
	// BoundaryHorizontal negates across the top and bottom walls and copies on
	// the left and right. Used for the y velocity.
	BoundaryHorizontal
)

func (b Boundary) String() string {
	switch b {
	case BoundaryNone:
		return "none"
	case BoundaryVertical:
		return "vertical"
	case BoundaryHorizontal:
		return "horizontal"
	}
	return "unknown"
}

// enforce rewrites the one-cell border of x from its interior neighbours,
// then sets each corner to the mean of its two adjacent edge cells.
func enforce(g Grid, b Boundary, x field) {
	w, h := g.W, g.H
	sx, sy := 1.0, 1.0
	switch b {
	case BoundaryVertical:
		sx = -1
	case BoundaryHorizontal:
		sy = -1
	}

	for j := 1; j <= h; j++ {
		x.set(0, j, sx*x.at(1, j))
		x.set(w+1, j, sx*x.at(w, j))
	}
	for i := 1; i <= w; i++ {
		x.set(i, 0, sy*x.at(i, 1))
		x.set(i, h+1, sy*x.at(i, h))
	}

	x.set(0, 0, 0.5*(x.at(1, 0)+x.at(0, 1)))
	x.set(0, h+1, 0.5*(x.at(1, h+1)+x.at(0, h)))
	x.set(w+1, 0, 0.5*(x.at(w, 0)+x.at(w+1, 1)))
	x.set(w+1, h+1, 0.5*(x.at(w, h+1)+x.at(w+1, h)))
}
