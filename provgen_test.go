package provgen

import (
	"context"
	"image"
	stdcolor "image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func islandBasemap() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			c := stdcolor.NRGBA{153, 204, 255, 255}
			if dx, dy := x-32, y-24; dx*dx+dy*dy < 15*15 {
				c = stdcolor.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 50000, opts.Provinces)
	assert.Equal(t, -1, opts.LandProvinces)
	assert.Equal(t, Color{255, 255, 255}, opts.LandColor)
	assert.Equal(t, "#99ccff", opts.OceanColor.Hex())
	assert.NoError(t, opts.Validate())

	opts.Noise = -1
	assert.Error(t, opts.Validate())
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#99CCFF")
	require.NoError(t, err)
	assert.Equal(t, Color{153, 204, 255}, c)

	_, err = ParseHexColor("#12345")
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	opts := DefaultOptions()
	opts.Provinces = 30
	opts.Seed = 3

	res, err := Generate(context.Background(), islandBasemap(), opts)
	require.NoError(t, err)
	assert.Equal(t, 30, res.LandProvinces+res.OceanProvinces)
	assert.Equal(t, image.Rect(0, 0, 64, 48), res.Raster.Bounds())

	seen := make(map[Color]bool)
	for _, p := range res.Provinces {
		assert.False(t, seen[p.Color], "color %s reused", p.Color.Hex())
		seen[p.Color] = true
		assert.Equal(t, p.ID <= res.LandProvinces, p.Land)
		got := res.Raster.RGBAAt(p.Centroid.X, p.Centroid.Y)
		assert.Equal(t, stdcolor.RGBA{p.Color.R, p.Color.G, p.Color.B, 255}, got, "centroid of %s", p.Name)
	}

	paths, err := res.Save(t.TempDir())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, RasterFile, filepath.Base(paths[0]))
	assert.Equal(t, DefinitionFile, filepath.Base(paths[1]))
}

func TestGenerate_NilImage(t *testing.T) {
	_, err := Generate(context.Background(), nil, DefaultOptions())
	assert.Error(t, err)
}

func TestGenerateFile_MatchesGenerate(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Provinces = 12
	opts.Seed = 11

	res, err := Generate(context.Background(), islandBasemap(), opts)
	require.NoError(t, err)
	first, err := res.Save(filepath.Join(dir, "a"))
	require.NoError(t, err)

	basemap := filepath.Join(dir, "basemap.png")
	f, err := os.Create(basemap)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, islandBasemap()))
	require.NoError(t, f.Close())

	_, err = GenerateFile(context.Background(), basemap, filepath.Join(dir, "b"), opts)
	require.NoError(t, err)

	for _, name := range []string{RasterFile, DefinitionFile} {
		a, err := os.ReadFile(filepath.Join(dir, "a", name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dir, "b", name))
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s differs", name)
	}
	assert.Equal(t, filepath.Join(dir, "a", RasterFile), first[0])
}
