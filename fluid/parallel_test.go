package fluid

import (
	"sync/atomic"
	"testing"
)

func TestParallelRowsVisitsEachRowOnce(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int
	}{
		{"empty", 3, 3},
		{"reversed", 5, 2},
		{"single block", 1, 5},
		{"many blocks", 1, 203},
		{"offset", 17, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := make([]atomic.Int32, max(tt.hi, 1))
			parallelRows(tt.lo, tt.hi, func(j int) {
				counts[j].Add(1)
			})
			for j := range counts {
				want := int32(0)
				if j >= tt.lo && j < tt.hi {
					want = 1
				}
				if got := counts[j].Load(); got != want {
					t.Errorf("row %d visited %d times, want %d", j, got, want)
				}
			}
		})
	}
}
