// Package seed places province seeds and splits the province budget
// between land and ocean.
package seed

import (
	"image"
	"math/rand/v2"
	"slices"

	"github.com/maax3v3/provgen/internal/mask"
)

// Choose draws k distinct integers from [0, n) uniformly without replacement
// using Robert Floyd's algorithm, which needs O(k) memory regardless of n.
// The result is in draw order. k is clamped to n.
func Choose(n, k int, rng *rand.Rand) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	picked := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		t := rng.IntN(j + 1)
		if _, dup := picked[t]; dup {
			t = j
		}
		picked[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Sample returns up to n distinct coordinates of set mask pixels, drawn
// uniformly without replacement and returned in raster order. When n exceeds
// the number of set pixels it is clamped and clamped is true.
func Sample(m *mask.Mask, n int, rng *rand.Rand) (seeds []image.Point, clamped bool) {
	total := m.Count()
	if n > total {
		n = total
		clamped = true
	}
	ords := Choose(total, n, rng)
	if len(ords) == 0 {
		return nil, clamped
	}
	slices.Sort(ords)

	seeds = make([]image.Point, 0, len(ords))
	ord, next := 0, 0
	for i, b := range m.Bits {
		if !b {
			continue
		}
		if ord == ords[next] {
			seeds = append(seeds, image.Point{X: i % m.Width, Y: i / m.Width})
			next++
			if next == len(ords) {
				break
			}
		}
		ord++
	}
	return seeds, clamped
}
