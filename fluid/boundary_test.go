package fluid

import "testing"

func filledField(g Grid, fn func(i, j int) float64) field {
	f := newField(g)
	for j := 1; j <= g.H; j++ {
		for i := 1; i <= g.W; i++ {
			f.set(i, j, fn(i, j))
		}
	}
	return f
}

func TestEnforceReflection(t *testing.T) {
	g := Grid{W: 4, H: 5}
	value := func(i, j int) float64 { return float64(10*i + j) }

	tests := []struct {
		b            Boundary
		sideX, sideY float64
	}{
		{BoundaryNone, 1, 1},
		{BoundaryVertical, -1, 1},
		{BoundaryHorizontal, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.b.String(), func(t *testing.T) {
			x := filledField(g, value)
			enforce(g, tt.b, x)

			for j := 1; j <= g.H; j++ {
				if got, want := x.at(0, j), tt.sideX*value(1, j); got != want {
					t.Errorf("left border (0,%d) = %v, want %v", j, got, want)
				}
				if got, want := x.at(g.W+1, j), tt.sideX*value(g.W, j); got != want {
					t.Errorf("right border (%d,%d) = %v, want %v", g.W+1, j, got, want)
				}
			}
			for i := 1; i <= g.W; i++ {
				if got, want := x.at(i, 0), tt.sideY*value(i, 1); got != want {
					t.Errorf("bottom border (%d,0) = %v, want %v", i, got, want)
				}
				if got, want := x.at(i, g.H+1), tt.sideY*value(i, g.H); got != want {
					t.Errorf("top border (%d,%d) = %v, want %v", i, g.H+1, got, want)
				}
			}
		})
	}
}

func TestEnforceCorners(t *testing.T) {
	g := Grid{W: 3, H: 3}
	x := filledField(g, func(i, j int) float64 { return float64(i * j) })
	enforce(g, BoundaryVertical, x)

	corners := [][2]int{{0, 0}, {0, g.H + 1}, {g.W + 1, 0}, {g.W + 1, g.H + 1}}
	for _, c := range corners {
		i, j := c[0], c[1]
		hx := 1
		if i > 0 {
			hx = -1
		}
		vy := 1
		if j > 0 {
			vy = -1
		}
		want := 0.5 * (x.at(i+hx, j) + x.at(i, j+vy))
		if got := x.at(i, j); got != want {
			t.Errorf("corner (%d,%d) = %v, want %v", i, j, got, want)
		}
	}
}

func TestEnforceLeavesInterior(t *testing.T) {
	g := Grid{W: 3, H: 2}
	x := filledField(g, func(i, j int) float64 { return float64(i - j) })
	enforce(g, BoundaryHorizontal, x)
	for j := 1; j <= g.H; j++ {
		for i := 1; i <= g.W; i++ {
			if x.at(i, j) != float64(i-j) {
				t.Errorf("interior (%d,%d) changed to %v", i, j, x.at(i, j))
			}
		}
	}
}
