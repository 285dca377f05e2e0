package definition

import (
	"cmp"
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/maax3v3/provgen/internal/color"
)

// Report summarizes how a raster and its table agree.
type Report struct {
	Rows       int
	Land       int
	Water      int
	Pixels     map[int32]int // pixels per row id
	Unassigned int           // black pixels
}

// Check cross-references a table with the color histogram of its raster.
// Every non-black raster color must have a row, every row's color must occur
// in the raster, and ids and colors must be unique. All problems found are
// returned together.
func Check(rows []Row, hist map[color.RGB]int) (Report, error) {
	rep := Report{Rows: len(rows), Pixels: make(map[int32]int, len(rows))}
	var errs error

	byColor := make(map[color.RGB]int32, len(rows))
	prev := int32(0)
	for _, r := range rows {
		if r.ID <= prev {
			errs = multierr.Append(errs, fmt.Errorf("province %d out of order or duplicated", r.ID))
		}
		prev = r.ID
		if r.Color == color.Black {
			errs = multierr.Append(errs, fmt.Errorf("province %d uses the reserved color %s", r.ID, r.Color))
		}
		if other, ok := byColor[r.Color]; ok {
			errs = multierr.Append(errs, fmt.Errorf("provinces %d and %d share color %s", other, r.ID, r.Color))
		}
		byColor[r.Color] = r.ID
		if r.Land {
			rep.Land++
		} else {
			rep.Water++
		}
		n, ok := hist[r.Color]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("province %d color %s does not appear in the raster", r.ID, r.Color))
		}
		rep.Pixels[r.ID] = n
	}

	var orphans []color.RGB
	for c, n := range hist {
		if c == color.Black {
			rep.Unassigned = n
			continue
		}
		if _, ok := byColor[c]; !ok {
			orphans = append(orphans, c)
		}
	}
	slices.SortFunc(orphans, func(a, b color.RGB) int {
		return cmp.Compare(packed(a), packed(b))
	})
	for _, c := range orphans {
		errs = multierr.Append(errs, fmt.Errorf("raster color %s (%d pixels) has no table row", c, hist[c]))
	}
	return rep, errs
}

func packed(c color.RGB) int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}
