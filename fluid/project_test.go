package fluid

import (
	"math"
	"testing"
)

func TestProjectReducesDivergence(t *testing.T) {
	g := Grid{W: 12, H: 10}
	u := filledField(g, func(i, j int) float64 {
		return math.Sin(math.Pi * float64(i) / float64(g.W+1))
	})
	v := filledField(g, func(i, j int) float64 {
		return 0.5 * math.Sin(math.Pi*float64(j)/float64(g.H+1))
	})
	enforce(g, BoundaryVertical, u)
	enforce(g, BoundaryHorizontal, v)

	before := divergenceSquares(g, u, v)
	if before == 0 {
		t.Fatal("test field has no divergence")
	}

	project(g, u, v, newField(g), newField(g), DefaultIterations)

	after := divergenceSquares(g, u, v)
	if after >= before {
		t.Errorf("divergence after projection = %v, want below %v", after, before)
	}
}

func TestProjectEnforcesVelocityBoundaries(t *testing.T) {
	g := Grid{W: 6, H: 6}
	u := filledField(g, func(i, j int) float64 { return float64(i + j) })
	v := filledField(g, func(i, j int) float64 { return float64(i - j) })

	project(g, u, v, newField(g), newField(g), 5)

	for j := 1; j <= g.H; j++ {
		if u.at(0, j) != -u.at(1, j) {
			t.Errorf("u(0,%d) = %v, want %v", j, u.at(0, j), -u.at(1, j))
		}
		if v.at(0, j) != v.at(1, j) {
			t.Errorf("v(0,%d) = %v, want %v", j, v.at(0, j), v.at(1, j))
		}
	}
	for i := 1; i <= g.W; i++ {
		if v.at(i, 0) != -v.at(i, 1) {
			t.Errorf("v(%d,0) = %v, want %v", i, v.at(i, 0), -v.at(i, 1))
		}
		if u.at(i, 0) != u.at(i, 1) {
			t.Errorf("u(%d,0) = %v, want %v", i, u.at(i, 0), u.at(i, 1))
		}
	}
}

func TestProjectKeepsZeroField(t *testing.T) {
	g := Grid{W: 4, H: 4}
	u, v := newField(g), newField(g)
	project(g, u, v, newField(g), newField(g), DefaultIterations)
	for i := range u.data {
		if u.data[i] != 0 || v.data[i] != 0 {
			t.Fatalf("cell %d became (%v, %v)", i, u.data[i], v.data[i])
		}
	}
}
