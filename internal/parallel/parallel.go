// Package parallel runs index-range passes over mesh elements on a bounded
// set of goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ChunkSize is the number of elements handed to one task. It is fixed so the
// chunk boundaries, and therefore any per-chunk partial sums, do not depend
// on the worker count.
const ChunkSize = 4096

// Workers returns n, or GOMAXPROCS when n is not positive.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Chunks returns the number of chunks needed to cover n elements.
func Chunks(n int) int {
	return (n + ChunkSize - 1) / ChunkSize
}

// For calls fn(lo, hi) for consecutive ChunkSize ranges covering [0, n),
// running at most workers calls at once. The first error cancels ctx for
// the remaining chunks and is returned. Small inputs run inline.
func For(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	workers = Workers(workers)
	if n <= ChunkSize || workers == 1 {
		for lo := 0; lo < n; lo += ChunkSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, lo, min(lo+ChunkSize, n)); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += ChunkSize {
		lo, hi := lo, min(lo+ChunkSize, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, lo, hi)
		})
	}
	return g.Wait()
}

// Sum evaluates fn over [0, n) in chunks and adds the per-chunk results in
// chunk order, so the total is identical for every worker count.
func Sum(ctx context.Context, n, workers int, fn func(lo, hi int) float64) (float64, error) {
	partial := make([]float64, Chunks(n))
	err := For(ctx, n, workers, func(_ context.Context, lo, hi int) error {
		partial[lo/ChunkSize] = fn(lo, hi)
		return nil
	})
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, p := range partial {
		total += p
	}
	return total, nil
}
