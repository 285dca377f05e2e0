// Package parallel fans raster work out over row bands.
//
// Every phase of the generator is a pass over disjoint pixel rows: each band
// is owned by exactly one goroutine, so no two workers ever write the same
// pixel, and Run only returns once every band has finished. That return is
// the barrier between phases.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Band is a contiguous half-open range [Start, End) of rows (or items).
type Band struct {
	Index      int
	Start, End int
}

// Workers resolves a configured worker count; values below 1 mean one
// worker per CPU.
func Workers(n int) int {
	if n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// Split divides [0, n) into at most workers contiguous bands of near-equal size.
// The bands are returned in order and their Index fields are 0..len-1.
func Split(n, workers int) []Band {
	if n <= 0 {
		return nil
	}
	workers = Workers(workers)
	if workers > n {
		workers = n
	}
	per := (n + workers - 1) / workers
	bands := make([]Band, 0, workers)
	for start := 0; start < n; start += per {
		bands = append(bands, Band{
			Index: len(bands),
			Start: start,
			End:   min(start+per, n),
		})
	}
	return bands
}

// Run executes fn once per band concurrently and waits for all of them.
// It returns the first non-nil error reported by any band.
func Run(bands []Band, fn func(b Band) error) error {
	if len(bands) == 1 {
		return fn(bands[0])
	}
	var g errgroup.Group
	for _, b := range bands {
		g.Go(func() error { return fn(b) })
	}
	return g.Wait()
}

// Rows runs fn across row bands of an image of height h.
func Rows(h, workers int, fn func(startY, endY int) error) error {
	return Run(Split(h, workers), func(b Band) error {
		return fn(b.Start, b.End)
	})
}
