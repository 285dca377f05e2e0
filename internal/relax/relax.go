// Package relax moves province seeds toward their centroids (Lloyd's
// relaxation), which rounds Voronoi cells into even, blob-like shapes.
package relax

import (
	"fmt"
	"image"
	"math"

	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/parallel"
	"github.com/maax3v3/provgen/internal/voronoi"
)

// Centroid is a province's representative point and size.
type Centroid struct {
	Point  image.Point
	Pixels int
}

type accum struct {
	sx, sy int64
	n      int
}

// Centroids computes, for every id in r, the floor of the mean pixel position
// of the set mask pixels labeled with that id. A centroid that is not itself
// a pixel of its province (outside the mask, or owned by another id) is
// replaced by the province's pixel nearest to it by squared distance, ties
// going to the lowest raster index. The result is indexed by id - r.Lo;
// empty provinces have Pixels == 0 and a zero Point.
func Centroids(labels *grid.Labels, m *mask.Mask, r grid.Range, workers int) ([]Centroid, error) {
	n := r.Len()
	if n == 0 {
		return nil, nil
	}
	w := labels.Width
	bands := parallel.Split(labels.Height, workers)

	partial := make([][]accum, len(bands))
	err := parallel.Run(bands, func(b parallel.Band) error {
		acc := make([]accum, n)
		for y := b.Start; y < b.End; y++ {
			off := y * w
			for x := 0; x < w; x++ {
				id := labels.IDs[off+x]
				if !r.Contains(id) || !m.Bits[off+x] {
					continue
				}
				a := &acc[id-r.Lo]
				a.sx += int64(x)
				a.sy += int64(y)
				a.n++
			}
		}
		partial[b.Index] = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Centroid, n)
	var stray []int
	for k := range out {
		var sum accum
		for _, acc := range partial {
			sum.sx += acc[k].sx
			sum.sy += acc[k].sy
			sum.n += acc[k].n
		}
		if sum.n == 0 {
			continue
		}
		p := image.Point{X: int(sum.sx / int64(sum.n)), Y: int(sum.sy / int64(sum.n))}
		out[k] = Centroid{Point: p, Pixels: sum.n}
		i := p.Y*w + p.X
		if !m.Bits[i] || labels.IDs[i] != r.Lo+int32(k) {
			stray = append(stray, k)
		}
	}
	if len(stray) > 0 {
		if err := snap(labels, m, r, out, stray, bands); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// snap moves each stray centroid onto the nearest pixel of its own province.
func snap(labels *grid.Labels, m *mask.Mask, r grid.Range, cs []Centroid, stray []int, bands []parallel.Band) error {
	slot := make([]int, len(cs))
	for k := range slot {
		slot[k] = -1
	}
	for s, k := range stray {
		slot[k] = s
	}

	type best struct {
		d   int64
		idx int
	}
	w := labels.Width
	partial := make([][]best, len(bands))
	err := parallel.Run(bands, func(b parallel.Band) error {
		bs := make([]best, len(stray))
		for s := range bs {
			bs[s] = best{d: math.MaxInt64, idx: -1}
		}
		for y := b.Start; y < b.End; y++ {
			off := y * w
			for x := 0; x < w; x++ {
				id := labels.IDs[off+x]
				if !r.Contains(id) || !m.Bits[off+x] {
					continue
				}
				s := slot[id-r.Lo]
				if s < 0 {
					continue
				}
				c := cs[stray[s]].Point
				dx, dy := int64(x-c.X), int64(y-c.Y)
				if d := dx*dx + dy*dy; d < bs[s].d {
					bs[s] = best{d: d, idx: off + x}
				}
			}
		}
		partial[b.Index] = bs
		return nil
	})
	if err != nil {
		return err
	}

	for s, k := range stray {
		found := best{d: math.MaxInt64, idx: -1}
		for _, bs := range partial {
			// Bands are in raster order, so strict < keeps the lowest index on ties.
			if bs[s].d < found.d {
				found = bs[s]
			}
		}
		if found.idx < 0 {
			return fmt.Errorf("centroid: province %d has pixels but none found", r.Lo+int32(k))
		}
		cs[k].Point = image.Point{X: found.idx % w, Y: found.idx / w}
	}
	return nil
}

// Stats reports how many seeds moved in each iteration.
type Stats struct {
	Moved []int
}

// Relax runs iterations rounds of Lloyd's relaxation on the provinces whose
// ids start at offset. Each round moves every non-empty province's seed to
// its (corrected) centroid; every round but the last then reassigns the mask
// pixels from the moved seeds. The last round only moves seeds, so the
// recorded positions describe the final shapes. Zero iterations is a no-op.
func Relax(labels *grid.Labels, seeds []image.Point, m *mask.Mask, offset int32, iterations, workers int) (Stats, error) {
	var st Stats
	r := grid.NewRange(offset, len(seeds))
	for it := 0; it < iterations; it++ {
		cs, err := Centroids(labels, m, r, workers)
		if err != nil {
			return st, fmt.Errorf("iteration %d: %w", it+1, err)
		}
		moved := 0
		for k, c := range cs {
			if c.Pixels == 0 {
				continue
			}
			if seeds[k] != c.Point {
				seeds[k] = c.Point
				moved++
			}
		}
		st.Moved = append(st.Moved, moved)

		if it < iterations-1 {
			if err := voronoi.Assign(labels, m, seeds, offset, workers); err != nil {
				return st, fmt.Errorf("iteration %d: %w", it+1, err)
			}
		}
	}
	return st, nil
}
