package common

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// GetGrainSize picks a chunk size for ParallelFor so that n units of work
// spread evenly over the available processors while staying within the
// given bounds. The bounds keep tiny workloads from being oversplit and
// huge ones from starving idle processors.
func GetGrainSize(n, minGrain, maxGrain int) int {
	procs := runtime.GOMAXPROCS(0)
	grain := n / procs
	if grain < minGrain {
		return minGrain
	}
	if grain > maxGrain {
		return maxGrain
	}
	return grain
}

// ParallelFor splits the half-open range [0, n) into chunks of the given
// grain size and calls f on the chunks from GOMAXPROCS goroutines,
// returning once all of [0, n) has been processed. f must be safe for
// concurrent calls on disjoint ranges. ParallelFor panics if grain is not
// positive, since a zero grain makes no progress.
func ParallelFor(n, grain int, f func(start, end int)) {
	if grain < 1 {
		panic("common: non-positive grain size")
	}
	procs := runtime.GOMAXPROCS(0)
	var next uint64
	var wg sync.WaitGroup
	wg.Add(procs)
	for p := 0; p < procs; p++ {
		go func() {
			defer wg.Done()
			for {
				start := int(atomic.AddUint64(&next, uint64(grain))) - grain
				if start >= n {
					return
				}
				end := start + grain
				if end > n {
					end = n
				}
				f(start, end)
			}
		}()
	}
	wg.Wait()
}
