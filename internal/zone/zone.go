// Package zone splits provinces into their connected pieces.
//
// Perturbation and smoothing can cut a province in two, and a Voronoi cell
// clipped by a ragged coastline can straddle several islands. Zones make
// such fragments visible.
package zone

import (
	"image"
	"slices"

	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
)

// Zone is one 4-connected piece of a province.
type Zone struct {
	ID     int32
	Start  image.Point // first pixel in raster order
	Pixels int
}

var dirs = [4]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Find flood-fills every pixel of m labeled with an id in r and returns the
// zones ordered by their first pixel.
func Find(labels *grid.Labels, m *mask.Mask, r grid.Range) []Zone {
	w, h := labels.Width, labels.Height
	seen := make([]bool, w*h)
	var zones []Zone
	var queue []int

	for idx, id := range labels.IDs {
		if seen[idx] || !m.Bits[idx] || !r.Contains(id) {
			continue
		}
		z := Zone{ID: id, Start: image.Point{X: idx % w, Y: idx / w}}
		seen[idx] = true
		queue = append(queue[:0], idx)
		for len(queue) > 0 {
			p := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			z.Pixels++
			px, py := p%w, p/w
			for _, d := range dirs {
				nx, ny := px+d.X, py+d.Y
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if seen[ni] || !m.Bits[ni] || labels.IDs[ni] != id {
					continue
				}
				seen[ni] = true
				queue = append(queue, ni)
			}
		}
		zones = append(zones, z)
	}
	return zones
}

// Fragmented returns, in ascending order, the ids that own more than one zone.
func Fragmented(zones []Zone) []int32 {
	count := make(map[int32]int, len(zones))
	for _, z := range zones {
		count[z.ID]++
	}
	var ids []int32
	for id, n := range count {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
