package model

import (
	"runtime"
	"sync"
)

// parallelRows splits [0, n) into one contiguous chunk per worker and runs
// fn on each chunk concurrently. fn receives the worker index so callers can
// keep per-worker state without locking.
func parallelRows(n int, fn func(worker, start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			fn(w, start, end)
		}(w, start, end)
	}
	wg.Wait()
}
