package index

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// ForEachBlock splits [0, n) into contiguous blocks and runs fn over them on
// up to parallelism pooled workers. With parallelism <= 1 it runs fn(0, n)
// on the calling goroutine. fn must only touch state owned by its block.
// The first error returned by any block is returned after all blocks finish.
func ForEachBlock(n, parallelism int, fn func(start, end int) error) error {
	if n == 0 {
		return nil
	}
	if parallelism <= 1 || n == 1 {
		return fn(0, n)
	}
	if parallelism > n {
		parallelism = n
	}
	pool, err := ants.NewPool(parallelism)
	if err != nil {
		return fmt.Errorf("index: create worker pool: %w", err)
	}
	defer pool.Release()

	blockSize := (n + parallelism*4 - 1) / (parallelism * 4)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	for start := 0; start < n; start += blockSize {
		end := start + blockSize
		if end > n {
			end = n
		}
		s, e := start, end
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := fn(s, e); err != nil {
				record(err)
			}
		}); err != nil {
			wg.Done()
			record(fmt.Errorf("index: submit block [%d,%d): %w", s, e, err))
			break
		}
	}
	wg.Wait()
	return firstErr
}
