// Package mask classifies basemap pixels into land and ocean.
package mask

import (
	"errors"
	"fmt"
	"image"
	stdcolor "image/color"

	"github.com/maax3v3/provgen/internal/color"
	"github.com/maax3v3/provgen/internal/parallel"
)

// ErrNoValidTerrain is returned when a basemap contains neither land nor ocean pixels.
var ErrNoValidTerrain = errors.New("no valid terrain: basemap has no land or ocean pixels")

// Mask holds a boolean grid.
type Mask struct {
	Width, Height int
	Bits          []bool // row-major: index = y*Width + x
}

// New returns an all-false mask.
func New(w, h int) *Mask {
	return &Mask{Width: w, Height: h, Bits: make([]bool, w*h)}
}

// At returns whether the pixel at (x, y) is set.
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// References are the basemap colors that identify each terrain class.
type References struct {
	Land        color.RGB
	Ocean       color.RGB
	OceanBorder color.RGB
}

// DefaultReferences returns the colors used by the stock basemaps:
// white land, light blue ocean and black coastline strokes.
func DefaultReferences() References {
	return References{
		Land:        color.RGB{R: 255, G: 255, B: 255},
		Ocean:       color.RGB{R: 153, G: 204, B: 255},
		OceanBorder: color.RGB{R: 0, G: 0, B: 0},
	}
}

// Class is the terrain class of a single pixel.
type Class uint8

const (
	Unclassified Class = iota
	Land
	Ocean
)

// Classify matches c against the references with a per-channel tolerance.
// Land is tested first, so a pixel never lands in both classes.
func (r References) Classify(c color.RGB, tolerance int) Class {
	switch {
	case c.Within(r.Land, tolerance):
		return Land
	case c.Within(r.Ocean, tolerance), c.Within(r.OceanBorder, tolerance):
		return Ocean
	default:
		return Unclassified
	}
}

// Set is the pair of disjoint masks produced from one basemap.
type Set struct {
	Land, Ocean              *Mask
	LandPixels, OceanPixels int
}

// Width returns the width shared by both masks.
func (s *Set) Width() int { return s.Land.Width }

// Height returns the height shared by both masks.
func (s *Set) Height() int { return s.Land.Height }

// Build classifies every basemap pixel. Row bands are classified in parallel.
func Build(img image.Image, refs References, tolerance, workers int) (*Set, error) {
	if img == nil {
		return nil, fmt.Errorf("basemap image is nil")
	}
	if tolerance < 0 || tolerance > 255 {
		return nil, fmt.Errorf("tolerance must be between 0 and 255, got %d", tolerance)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	set := &Set{Land: New(w, h), Ocean: New(w, h)}
	classify := classifier(img, refs, tolerance)

	bands := parallel.Split(h, workers)
	counts := make([][2]int, len(bands))
	err := parallel.Run(bands, func(b parallel.Band) error {
		var land, ocean int
		for y := b.Start; y < b.End; y++ {
			off := y * w
			for x := 0; x < w; x++ {
				switch classify(x, y) {
				case Land:
					set.Land.Bits[off+x] = true
					land++
				case Ocean:
					set.Ocean.Bits[off+x] = true
					ocean++
				}
			}
		}
		counts[b.Index] = [2]int{land, ocean}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		set.LandPixels += c[0]
		set.OceanPixels += c[1]
	}
	if set.LandPixels+set.OceanPixels == 0 {
		return nil, ErrNoValidTerrain
	}
	return set, nil
}

// classifier returns a per-pixel classification function for img, with
// fast paths for the concrete image types the decoders produce. Coordinates
// are relative to the image bounds.
func classifier(img image.Image, refs References, tol int) func(x, y int) Class {
	bounds := img.Bounds()
	switch src := img.(type) {
	case *image.Paletted:
		lut := make([]Class, len(src.Palette))
		for i, c := range src.Palette {
			lut[i] = refs.Classify(color.FromStdColor(c), tol)
		}
		return func(x, y int) Class {
			idx := src.ColorIndexAt(bounds.Min.X+x, bounds.Min.Y+y)
			if int(idx) >= len(lut) {
				return Unclassified
			}
			return lut[idx]
		}
	case *image.NRGBA:
		return func(x, y int) Class {
			i := src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			p := src.Pix[i : i+3 : i+3]
			return refs.Classify(color.RGB{R: p[0], G: p[1], B: p[2]}, tol)
		}
	case *image.RGBA:
		return func(x, y int) Class {
			i := src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			p := src.Pix[i : i+4 : i+4]
			if p[3] == 0xff {
				return refs.Classify(color.RGB{R: p[0], G: p[1], B: p[2]}, tol)
			}
			// Pix is premultiplied; classify the straight color like NRGBA does.
			return refs.Classify(color.FromStdColor(stdcolor.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}), tol)
		}
	default:
		return func(x, y int) Class {
			return refs.Classify(color.FromStdColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)), tol)
		}
	}
}
