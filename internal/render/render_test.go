package render

import (
	"image"
	stdcolor "image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maax3v3/provgen/internal/color"
	"github.com/maax3v3/provgen/internal/grid"
)

func TestRaster(t *testing.T) {
	labels := &grid.Labels{Width: 3, Height: 2, IDs: []int32{
		0, 1, 1,
		2, 2, 0,
	}}
	palette := []color.RGB{color.Black, {R: 200, G: 1, B: 2}, {R: 3, G: 4, B: 250}}

	for _, workers := range []int{1, 2, 8} {
		img, err := Raster(labels, palette, workers)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
		assert.Equal(t, stdcolor.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
		assert.Equal(t, stdcolor.RGBA{200, 1, 2, 255}, img.RGBAAt(2, 0))
		assert.Equal(t, stdcolor.RGBA{3, 4, 250, 255}, img.RGBAAt(1, 1))
		assert.Equal(t, stdcolor.RGBA{0, 0, 0, 255}, img.RGBAAt(2, 1))
	}
}

func TestRaster_LabelOutsidePalette(t *testing.T) {
	labels := &grid.Labels{Width: 2, Height: 1, IDs: []int32{1, 5}}
	_, err := Raster(labels, []color.RGB{color.Black, {R: 255}}, 1)
	assert.ErrorContains(t, err, "label 5")

	_, err = Raster(labels, nil, 1)
	assert.Error(t, err)
}

func TestHistogram(t *testing.T) {
	labels := &grid.Labels{Width: 2, Height: 2, IDs: []int32{1, 1, 1, 0}}
	img, err := Raster(labels, []color.RGB{color.Black, {R: 255}}, 1)
	require.NoError(t, err)
	assert.Equal(t, map[color.RGB]int{{R: 255}: 3, color.Black: 1}, Histogram(img))

	// Non-RGBA images take the generic path.
	nrgba := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	nrgba.SetNRGBA(0, 0, stdcolor.NRGBA{9, 8, 7, 255})
	nrgba.SetNRGBA(1, 0, stdcolor.NRGBA{9, 8, 7, 255})
	assert.Equal(t, map[color.RGB]int{{R: 9, G: 8, B: 7}: 2}, Histogram(nrgba))
}
