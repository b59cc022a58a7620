package dynamo

import "sync"

// ParallelFor splits [0, n) into at most workers contiguous chunks of at
// least minChunk items and runs fn on each chunk in its own goroutine. The
// worker index passed to fn is in [0, workers) and unique per chunk, so fn
// may write to per-worker buffers without locking.
func ParallelFor(n, workers, minChunk int, fn func(worker, start, end int)) {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
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
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(w, start, end)
	}

	wg.Wait()
}
