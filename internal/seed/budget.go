package seed

import "math/rand/v2"

// Budget is the number of land and ocean provinces a run will create.
type Budget struct {
	Land, Ocean int

	// Set when the requested count exceeded the category's pixel count.
	LandClamped, OceanClamped bool
}

// Total returns Land + Ocean.
func (b Budget) Total() int { return b.Land + b.Ocean }

// Split divides total provinces between land and ocean in proportion to their
// pixel counts, with the ocean share weighted by density. Each side is then
// clamped to its pixel count.
func Split(total, landPixels, oceanPixels int, density float64) Budget {
	var land, ocean int
	valid := float64(landPixels + oceanPixels)
	if valid > 0 && total > 0 {
		landRatio := float64(landPixels) / valid
		adjusted := landRatio + float64(oceanPixels)/valid*density
		if adjusted > 0 {
			land = int(float64(total) * (landRatio / adjusted))
		}
		ocean = total - land
	}
	return clamp(land, ocean, landPixels, oceanPixels)
}

// Plan is Split with optional explicit counts: a negative override means
// derive that side from the split.
func Plan(total, landOverride, oceanOverride, landPixels, oceanPixels int, density float64) Budget {
	b := Split(total, landPixels, oceanPixels, density)
	land, ocean := b.Land, b.Ocean
	if landOverride >= 0 {
		land = landOverride
	}
	if oceanOverride >= 0 {
		ocean = oceanOverride
	}
	if landOverride < 0 && oceanOverride < 0 {
		return b
	}
	return clamp(land, ocean, landPixels, oceanPixels)
}

func clamp(land, ocean, landPixels, oceanPixels int) Budget {
	b := Budget{Land: land, Ocean: ocean}
	if b.Land > landPixels {
		b.Land, b.LandClamped = landPixels, true
	}
	if b.Ocean > oceanPixels {
		b.Ocean, b.OceanClamped = oceanPixels, true
	}
	return b
}

// Stream identifiers. Each consumer of randomness gets its own stream so that
// changing one phase's parameters does not reshuffle another phase.
const (
	StreamLand uint64 = iota + 1
	StreamOcean
	StreamPerturb
)

// Streams derives independent deterministic random sources from one seed.
type Streams struct {
	seed uint64
}

// NewStreams returns the stream family for seed.
func NewStreams(seed uint64) Streams {
	return Streams{seed: seed}
}

// Seed returns the master seed.
func (s Streams) Seed() uint64 { return s.seed }

// Rand returns a fresh generator for the given stream.
func (s Streams) Rand(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, stream))
}
