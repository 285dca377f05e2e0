// Package render paints a label grid into the province raster.
package render

import (
	"fmt"
	"image"

	"github.com/maax3v3/provgen/internal/color"
	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/parallel"
)

// Raster returns an opaque RGBA image the size of labels where each pixel is
// palette[label]. Label 0 must map to black; a label with no palette entry is
// an error.
func Raster(labels *grid.Labels, palette []color.RGB, workers int) (*image.RGBA, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("render: empty palette")
	}
	w, h := labels.Width, labels.Height
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	err := parallel.Rows(h, workers, func(sy, ey int) error {
		for y := sy; y < ey; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+4*w]
			for x := 0; x < w; x++ {
				id := labels.IDs[y*w+x]
				if id < 0 || int(id) >= len(palette) {
					return fmt.Errorf("render: pixel (%d,%d) has label %d outside palette of %d", x, y, id, len(palette))
				}
				c := palette[id]
				row[4*x] = c.R
				row[4*x+1] = c.G
				row[4*x+2] = c.B
				row[4*x+3] = 0xFF
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Histogram counts the pixels of each distinct color in img.
func Histogram(img image.Image) map[color.RGB]int {
	b := img.Bounds()
	counts := make(map[color.RGB]int)
	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := rgba.PixOffset(b.Min.X, y)
			for x := 0; x < b.Dx(); x++ {
				p := rgba.Pix[off+4*x : off+4*x+3]
				counts[color.RGB{R: p[0], G: p[1], B: p[2]}]++
			}
		}
		return counts
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			counts[color.FromStdColor(img.At(x, y))]++
		}
	}
	return counts
}
