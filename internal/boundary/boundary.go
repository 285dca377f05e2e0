// Package boundary roughens and then smooths the borders between provinces
// of one category, giving land provinces their organic outline.
//
// A boundary pixel is a pixel that is in the mask and in the id range and
// has at least one in-bounds 8-neighbor that is also in the mask and range
// but carries a different label. Both passes read the grid as it was when
// the pass started and write a separate buffer, so edits never cascade
// within a pass.
package boundary

import (
	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/parallel"
)

// offsets lists the 8-neighborhood in row-major order.
var offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// view bundles what the per-pixel tests read.
type view struct {
	ids  []int32
	bits []bool
	w, h int
	r    grid.Range
}

func newView(labels *grid.Labels, m *mask.Mask, r grid.Range) view {
	return view{ids: labels.IDs, bits: m.Bits, w: labels.Width, h: labels.Height, r: r}
}

// valid reports whether (x, y) is in bounds, in the mask and in range.
func (v view) valid(x, y int) (int32, bool) {
	if x < 0 || y < 0 || x >= v.w || y >= v.h {
		return 0, false
	}
	i := y*v.w + x
	if !v.bits[i] {
		return 0, false
	}
	id := v.ids[i]
	return id, v.r.Contains(id)
}

func (v view) isBoundary(x, y int) bool {
	cur, ok := v.valid(x, y)
	if !ok {
		return false
	}
	for _, o := range offsets {
		if id, ok := v.valid(x+o[0], y+o[1]); ok && id != cur {
			return true
		}
	}
	return false
}

// Pixels returns the raster indices of all boundary pixels in raster order.
func Pixels(labels *grid.Labels, m *mask.Mask, r grid.Range, workers int) ([]int, error) {
	v := newView(labels, m, r)
	bands := parallel.Split(v.h, workers)
	found := make([][]int, len(bands))
	err := parallel.Run(bands, func(b parallel.Band) error {
		var out []int
		for y := b.Start; y < b.End; y++ {
			for x := 0; x < v.w; x++ {
				if v.isBoundary(x, y) {
					out = append(out, y*v.w+x)
				}
			}
		}
		found[b.Index] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	var n int
	for _, f := range found {
		n += len(f)
	}
	all := make([]int, 0, n)
	for _, f := range found {
		all = append(all, f...)
	}
	return all, nil
}
