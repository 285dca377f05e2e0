package color

import (
	"errors"
	"fmt"
)

const (
	idBits = 21
	idMask = 1<<idBits - 1

	// MaxID is the largest province id Encode can map to a unique color.
	MaxID = idMask

	// scramble is odd, so multiplying by it is a bijection modulo 2^idBits.
	// It spreads consecutive ids across the color space.
	scramble = 0x9E3B5
)

// ErrIDSpace is returned when a run needs more ids than Encode can color uniquely.
var ErrIDSpace = errors.New("province count exceeds color id space")

// CheckIDSpace fails if ids up to maxID cannot all receive distinct colors.
func CheckIDSpace(maxID int) error {
	if maxID > MaxID {
		return fmt.Errorf("%w: need %d ids, have %d", ErrIDSpace, maxID, MaxID)
	}
	return nil
}

// Encode maps a province id to its raster color.
//
// Id 0 is black. Otherwise the id is scrambled into three 7-bit fields a, b, c.
// Land colors are {128+a, b, c}: red always dominates, a warm band.
// Water colors are {c, b, 128+a}: blue always dominates, a cool band.
// Land has R >= 128 > B and water has B >= 128 > R, so the bands never meet
// and neither contains black. Within a band every channel carries its own
// field, so distinct ids in [1, MaxID] never share a color.
func Encode(id int32, water bool) RGB {
	if id <= 0 {
		return Black
	}
	k := (uint32(id) * scramble) & idMask
	a := uint8(k & 0x7F)
	b := uint8(k >> 7 & 0x7F)
	c := uint8(k >> 14 & 0x7F)
	if water {
		return RGB{R: c, G: b, B: 128 + a}
	}
	return RGB{R: 128 + a, G: b, B: c}
}

// Palette returns a lookup table indexed by id for ids 0..landCount+waterCount.
// Ids 1..landCount are land; the rest are water.
func Palette(landCount, waterCount int) ([]RGB, error) {
	total := landCount + waterCount
	if err := CheckIDSpace(total); err != nil {
		return nil, err
	}
	lut := make([]RGB, total+1)
	for id := 1; id <= total; id++ {
		lut[id] = Encode(int32(id), id > landCount)
	}
	return lut, nil
}
