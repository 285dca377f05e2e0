package boundary

import (
	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/parallel"
)

// Smooth runs up to passes mode-filter passes over the boundary pixels of
// range r. Each boundary pixel takes the most frequent valid label in its
// 3x3 window, itself included; on a tie it keeps its own label if that is
// among the most frequent, otherwise it takes the smallest tied id.
//
// Smoothing stops early at a fixed point: once a pass changes nothing,
// further passes could not change anything either. It returns the number of
// pixels changed by each pass that ran.
func Smooth(labels *grid.Labels, m *mask.Mask, r grid.Range, passes, workers int) ([]int, error) {
	var history []int
	if r.Empty() {
		return history, nil
	}
	for p := 0; p < passes; p++ {
		n, err := smoothPass(labels, m, r, workers)
		if err != nil {
			return history, err
		}
		history = append(history, n)
		if n == 0 {
			break
		}
	}
	return history, nil
}

func smoothPass(labels *grid.Labels, m *mask.Mask, r grid.Range, workers int) (int, error) {
	v := newView(labels, m, r)
	next := labels.Clone()
	bands := parallel.Split(v.h, workers)
	changed := make([]int, len(bands))
	err := parallel.Run(bands, func(b parallel.Band) error {
		for y := b.Start; y < b.End; y++ {
			for x := 0; x < v.w; x++ {
				if !v.isBoundary(x, y) {
					continue
				}
				i := y*v.w + x
				if id := v.mode(x, y); id != v.ids[i] {
					next.IDs[i] = id
					changed[b.Index]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	labels.IDs = next.IDs

	total := 0
	for _, c := range changed {
		total += c
	}
	return total, nil
}

// mode returns the majority label of the 3x3 window around a valid pixel.
func (v view) mode(x, y int) int32 {
	var ids [9]int32
	var counts [9]int
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			id, ok := v.valid(x+dx, y+dy)
			if !ok {
				continue
			}
			j := 0
			for j < n && ids[j] != id {
				j++
			}
			if j == n {
				ids[n] = id
				n++
			}
			counts[j]++
		}
	}

	top := 0
	for j := 0; j < n; j++ {
		top = max(top, counts[j])
	}
	cur := v.ids[y*v.w+x]
	best := int32(-1)
	for j := 0; j < n; j++ {
		if counts[j] != top {
			continue
		}
		if ids[j] == cur {
			return cur
		}
		if best < 0 || ids[j] < best {
			best = ids[j]
		}
	}
	return best
}
