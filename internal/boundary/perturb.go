package boundary

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"

	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/parallel"
	"github.com/maax3v3/provgen/internal/seed"
)

// Perturb reassigns floor(boundary * strength) boundary pixels, sampled
// without replacement, to a label drawn uniformly from the distinct differing
// labels among their valid neighbors. Strength 0 changes nothing; strength 1
// flips every boundary pixel. It returns the number of pixels changed.
//
// All random draws happen sequentially in sample order before the parallel
// write, so the result depends only on rng, never on the worker count.
func Perturb(labels *grid.Labels, m *mask.Mask, r grid.Range, strength float64, rng *rand.Rand, workers int) (int, error) {
	if strength < 0 || strength > 1 || math.IsNaN(strength) {
		return 0, fmt.Errorf("perturb: strength must be in [0,1], got %v", strength)
	}
	if strength == 0 || r.Empty() {
		return 0, nil
	}
	boundary, err := Pixels(labels, m, r, workers)
	if err != nil {
		return 0, err
	}
	k := int(math.Floor(float64(len(boundary)) * strength))
	picks := seed.Choose(len(boundary), k, rng)
	if len(picks) == 0 {
		return 0, nil
	}
	draws := make([]uint64, len(picks))
	for j := range draws {
		draws[j] = rng.Uint64()
	}

	v := newView(labels, m, r)
	next := labels.Clone()
	bands := parallel.Split(len(picks), workers)
	changed := make([]int, len(bands))
	err = parallel.Run(bands, func(b parallel.Band) error {
		var cand [8]int32
		for j := b.Start; j < b.End; j++ {
			i := boundary[picks[j]]
			x, y := i%v.w, i/v.w
			cur := v.ids[i]
			n := 0
			for _, o := range offsets {
				id, ok := v.valid(x+o[0], y+o[1])
				if !ok || id == cur || contains(cand[:n], id) {
					continue
				}
				cand[n] = id
				n++
			}
			if n == 0 {
				continue
			}
			pick, _ := bits.Mul64(draws[j], uint64(n))
			next.IDs[i] = cand[pick]
			changed[b.Index]++
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

func contains(ids []int32, id int32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
