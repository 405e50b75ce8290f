// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// DefaultThreshold is the item count below which work runs on the calling
// goroutine.
const DefaultThreshold = 256

// Parallelize divides items into one contiguous range per CPU core and runs
// fn on every range concurrently. It returns the first error reported by a
// range; a panic inside fn is returned as a PanicError.
func Parallelize(items int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, items)
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			if err := errors.SafeExecute("parallel.Parallelize", func() error { return fn(s, e) }); err != nil {
				once.Do(func() { firstErr = err })
			}
		}(start, end)
	}
	wg.Wait()
	return firstErr
}

// ParallelizeWithThreshold runs fn sequentially over [0, items) when items
// does not exceed threshold, and through Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int) error) error {
	if items <= threshold {
		return errors.SafeExecute("parallel.ParallelizeWithThreshold", func() error { return fn(0, items) })
	}
	return Parallelize(items, fn)
}
