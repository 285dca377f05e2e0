package color

import (
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "6-digit black with hash", input: "#000000", want: RGB{0, 0, 0}},
		{name: "6-digit white with hash", input: "#FFFFFF", want: RGB{255, 255, 255}},
		{name: "ocean reference", input: "#99CCFF", want: RGB{153, 204, 255}},
		{name: "6-digit lowercase", input: "#ff00ff", want: RGB{255, 0, 255}},
		{name: "6-digit without hash", input: "AB12CD", want: RGB{0xAB, 0x12, 0xCD}},
		{name: "3-digit black", input: "#000", want: RGB{0, 0, 0}},
		{name: "3-digit color", input: "#F0A", want: RGB{0xFF, 0x00, 0xAA}},
		{name: "surrounding space", input: "  #FFFFFF ", want: RGB{255, 255, 255}},
		{name: "invalid length", input: "#12345", wantErr: true},
		{name: "invalid chars", input: "#GGGGGG", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromStdColor(t *testing.T) {
	got := FromStdColor(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	assert.Equal(t, RGB{10, 20, 30}, got)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, got.ToStdColor())
	assert.Equal(t, "#0a141e", got.Hex())
}

func TestFromStdColor_DropsAlphaWithoutDarkening(t *testing.T) {
	want := RGB{255, 255, 255}
	assert.Equal(t, want, FromStdColor(color.NRGBA{R: 255, G: 255, B: 255, A: 128}))
	assert.Equal(t, want, FromStdColor(color.RGBA{R: 128, G: 128, B: 128, A: 128}))
	assert.Equal(t, want, FromStdColor(color.NRGBA64{R: 0xffff, G: 0xffff, B: 0xffff, A: 0x8080}))
}

func TestWithin(t *testing.T) {
	ref := RGB{153, 204, 255}
	tests := []struct {
		name string
		c    RGB
		tol  int
		want bool
	}{
		{name: "exact", c: ref, tol: 0, want: true},
		{name: "at tolerance", c: RGB{158, 199, 250}, tol: 5, want: true},
		{name: "one channel over", c: RGB{159, 204, 255}, tol: 5, want: false},
		{name: "zero tolerance off by one", c: RGB{153, 204, 254}, tol: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Within(ref, tt.tol))
		})
	}
}

func TestEncode_ZeroIsBlack(t *testing.T) {
	assert.Equal(t, Black, Encode(0, false))
	assert.Equal(t, Black, Encode(0, true))
}

func TestEncode_NeverBlackForPositiveIDs(t *testing.T) {
	for id := int32(1); id <= 1<<16; id++ {
		require.NotEqual(t, Black, Encode(id, false))
		require.NotEqual(t, Black, Encode(id, true))
	}
}

func TestEncode_InjectiveOverRealizedIDs(t *testing.T) {
	// A run with 80k land and 70k water provinces.
	const land, water = 80000, 70000
	seen := make(map[RGB]int32, land+water)
	for id := int32(1); id <= land+water; id++ {
		c := Encode(id, id > land)
		prev, dup := seen[c]
		require.Falsef(t, dup, "ids %d and %d share color %s", prev, id, c)
		seen[c] = id
	}
	assert.Len(t, seen, land+water)
}

func TestEncode_InjectiveOverWholeIDSpace(t *testing.T) {
	used := make([]bool, 1<<24)
	for _, water := range []bool{false, true} {
		for id := int32(1); id <= MaxID; id++ {
			c := Encode(id, water)
			key := int(c.R)<<16 | int(c.G)<<8 | int(c.B)
			require.Falsef(t, used[key], "collision at id %d water=%v", id, water)
			used[key] = true
		}
	}
}

func TestEncode_HueBands(t *testing.T) {
	for id := int32(1); id <= 50000; id += 7 {
		land := Encode(id, false)
		h, _, _ := colorful.Color{
			R: float64(land.R) / 255,
			G: float64(land.G) / 255,
			B: float64(land.B) / 255,
		}.Hsv()
		require.Truef(t, h < 60 || h > 300, "land id %d hue %.1f outside warm band", id, h)
		require.Greater(t, land.R, land.B)
		require.Greater(t, land.R, land.G)

		sea := Encode(id, true)
		h, _, _ = colorful.Color{
			R: float64(sea.R) / 255,
			G: float64(sea.G) / 255,
			B: float64(sea.B) / 255,
		}.Hsv()
		require.Truef(t, h > 180 && h < 300, "water id %d hue %.1f outside cool band", id, h)
		require.Greater(t, sea.B, sea.R)
		require.Greater(t, sea.B, sea.G)
	}
}

func TestPalette(t *testing.T) {
	lut, err := Palette(3, 2)
	require.NoError(t, err)
	require.Len(t, lut, 6)
	assert.Equal(t, Black, lut[0])
	assert.Equal(t, Encode(3, false), lut[3])
	assert.Equal(t, Encode(4, true), lut[4])
	assert.Equal(t, Encode(5, true), lut[5])
}

func TestCheckIDSpace(t *testing.T) {
	assert.NoError(t, CheckIDSpace(MaxID))
	assert.ErrorIs(t, CheckIDSpace(MaxID+1), ErrIDSpace)

	_, err := Palette(MaxID, 1)
	assert.ErrorIs(t, err, ErrIDSpace)
}
