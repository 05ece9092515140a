package compare

import (
	"runtime"
	"sync"
)

// mapPages runs fn for every page index in [0, pages) on a bounded worker
// pool and returns the results in index order. Pages share no mutable state,
// so fn must be safe to call concurrently with distinct indexes.
func mapPages[T any](pages, workers int, fn func(page int) T) []T {
	if pages <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > pages {
		workers = pages
	}

	results := make([]T, pages)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = fn(idx)
			}
		}()
	}

	for i := range pages {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
