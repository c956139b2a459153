package fluid

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// rowBlock is the number of rows a worker claims at a time.
const rowBlock = 8

// parallelRows calls fn once for every row in [lo, hi). Workers claim blocks
// of rows from a shared counter. fn must write only cells of its own row.
func parallelRows(lo, hi int, fn func(j int)) {
	n := hi - lo
	if n <= 0 {
		return
	}
	workers := min(runtime.GOMAXPROCS(0), (n+rowBlock-1)/rowBlock)
	if workers <= 1 {
		for j := lo; j < hi; j++ {
			fn(j)
		}
		return
	}

	var next atomic.Int64
	next.Store(int64(lo))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for {
				start := int(next.Add(rowBlock)) - rowBlock
				if start >= hi {
					return
				}
				for j := start; j < min(start+rowBlock, hi); j++ {
					fn(j)
				}
			}
		}()
	}
	wg.Wait()
}
