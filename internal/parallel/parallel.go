// Package parallel splits index ranges across worker goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Workers is the number of goroutines For fans out to.
var Workers = runtime.NumCPU()

// For executes fn in parallel over [0, n). Ranges shorter than minChunk are
// run on the calling goroutine.
func For(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}
	workers := Workers
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
