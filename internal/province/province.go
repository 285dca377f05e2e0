// Package province turns the final label grid into province records.
package province

import (
	"fmt"
	"image"
	"slices"

	"github.com/maax3v3/provgen/internal/color"
	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/relax"
)

// Record describes one realized province.
type Record struct {
	ID       int32
	Centroid image.Point // always a pixel of the province
	Pixels   int
	Color    color.RGB
	Water    bool
	Name     string
}

// Name returns the display name for a province id.
func Name(id int32, water bool) string {
	if water {
		return fmt.Sprintf("Sea_%d", id)
	}
	return fmt.Sprintf("Province_%d", id)
}

// Category is a terrain class and the ids its provinces were given.
type Category struct {
	Mask  *mask.Mask
	Range grid.Range
	Water bool
}

// Collect builds a record for every id that labels at least one pixel of its
// category. Ids that lost all their pixels are skipped. Records are sorted by
// id.
func Collect(labels *grid.Labels, cats []Category, workers int) ([]Record, error) {
	var out []Record
	for _, c := range cats {
		cs, err := relax.Centroids(labels, c.Mask, c.Range, workers)
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", c.Range, err)
		}
		for k, ct := range cs {
			if ct.Pixels == 0 {
				continue
			}
			id := c.Range.Lo + int32(k)
			out = append(out, Record{
				ID:       id,
				Centroid: ct.Point,
				Pixels:   ct.Pixels,
				Color:    color.Encode(id, c.Water),
				Water:    c.Water,
				Name:     Name(id, c.Water),
			})
		}
	}
	slices.SortFunc(out, func(a, b Record) int { return int(a.ID - b.ID) })
	return out, nil
}
