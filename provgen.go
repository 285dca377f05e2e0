// Package provgen generates province maps from basemap images.
//
// A basemap paints land and ocean in reference colors. provgen partitions
// each terrain class into provinces: land provinces are relaxed Voronoi cells
// with roughened, smoothed borders; ocean provinces are plain Voronoi cells.
// The result is a raster where every province has a unique color, plus a
// definition table listing each province.
//
// Usage as a library:
//
//	img, _ := provgen.LoadImage("basemap.png")
//	result, _ := provgen.Generate(ctx, img, provgen.DefaultOptions())
//	result.Save("out")
//
// Or use the file-based convenience:
//
//	result, err := provgen.GenerateFile(ctx, "basemap.png", "out", provgen.DefaultOptions())
package provgen

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/maax3v3/provgen/internal/color"
	"github.com/maax3v3/provgen/internal/imaging"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/pipeline"
)

// Output file names written by Save and GenerateFile.
const (
	RasterFile     = pipeline.FileRaster
	DefinitionFile = pipeline.FileDefinition
)

// Options configures province generation.
type Options struct {
	// Provinces is the total number of provinces, split between land and
	// ocean in proportion to their pixel counts.
	// Default: 50000.
	Provinces int

	// LandProvinces and OceanProvinces override the split when >= 0.
	// Default: -1 (derive).
	LandProvinces  int
	OceanProvinces int

	// OceanDensity weights ocean pixels in the split; below 1 ocean
	// provinces come out larger than land provinces.
	// Default: 0.5.
	OceanDensity float64

	// Relaxation is the number of Lloyd iterations applied to land. With 0
	// land keeps plain Voronoi cells and no border noise is applied.
	// Default: 5.
	Relaxation int

	// Noise is the fraction (0–1) of land border pixels reassigned to a
	// neighboring province.
	// Default: 0.4.
	Noise float64

	// Smoothing is the number of majority-filter passes after the noise.
	// Default: 3.
	Smoothing int

	// Seed makes runs reproducible. The same basemap, options and seed
	// always produce byte-identical outputs.
	Seed uint64

	// Workers bounds parallelism. 0 means one worker per CPU.
	Workers int

	// LandColor, OceanColor and OceanBorderColor identify terrain in the
	// basemap. Defaults: #FFFFFF, #99CCFF, #000000.
	LandColor        Color
	OceanColor       Color
	OceanBorderColor Color

	// Tolerance is the per-channel difference (0–255) still counted as a
	// match. Default: 5.
	Tolerance int

	// Logger receives progress and warnings. If nil, nothing is logged.
	Logger *zap.SugaredLogger
}

// Color represents an opaque RGB color with 8-bit components.
type Color struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return color.RGB(c).Hex()
}

// DefaultOptions returns Options with the stock parameters.
func DefaultOptions() Options {
	cfg := pipeline.DefaultConfig()
	return Options{
		Provinces:        cfg.Provinces,
		LandProvinces:    cfg.LandProvinces,
		OceanProvinces:   cfg.OceanProvinces,
		OceanDensity:     cfg.OceanDensity,
		Relaxation:       cfg.Relaxation,
		Noise:            cfg.Noise,
		Smoothing:        cfg.Smoothing,
		LandColor:        Color(cfg.References.Land),
		OceanColor:       Color(cfg.References.Ocean),
		OceanBorderColor: Color(cfg.References.OceanBorder),
		Tolerance:        cfg.Tolerance,
	}
}

// ParseHexColor parses a hex color string like "#fff" or "#99CCFF".
func ParseHexColor(hex string) (Color, error) {
	c, err := color.ParseHex(hex)
	if err != nil {
		return Color{}, err
	}
	return Color(c), nil
}

// Validate reports every invalid option at once.
func (o Options) Validate() error {
	return o.config().Validate()
}

func (o Options) config() pipeline.Config {
	return pipeline.Config{
		Provinces:      o.Provinces,
		LandProvinces:  o.LandProvinces,
		OceanProvinces: o.OceanProvinces,
		OceanDensity:   o.OceanDensity,
		Relaxation:     o.Relaxation,
		Noise:          o.Noise,
		Smoothing:      o.Smoothing,
		Seed:           o.Seed,
		Workers:        o.Workers,
		References: mask.References{
			Land:        color.RGB(o.LandColor),
			Ocean:       color.RGB(o.OceanColor),
			OceanBorder: color.RGB(o.OceanBorderColor),
		},
		Tolerance: o.Tolerance,
	}
}

// Province describes one generated province.
type Province struct {
	ID       int
	Name     string
	Color    Color
	Land     bool
	Centroid image.Point // a pixel inside the province
	Pixels   int
}

// Result is a generated province map.
type Result struct {
	Raster         *image.RGBA
	Provinces      []Province
	LandProvinces  int
	OceanProvinces int

	out *pipeline.Output
}

// Save writes the raster and definition table into dir, replacing both files
// together or neither. It returns the written paths.
func (r *Result) Save(dir string) ([]string, error) {
	return pipeline.Commit(dir, r.out)
}

// LoadImage reads a basemap from disk. Supports PNG, JPEG, WEBP, BMP and TIFF.
func LoadImage(path string) (image.Image, error) {
	return imaging.Load(path)
}

// Generate partitions img into provinces.
func Generate(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("basemap image is nil")
	}
	out, err := pipeline.Run(ctx, img, opts.config(), opts.Logger)
	if err != nil {
		return nil, err
	}
	return newResult(out), nil
}

// GenerateFile is a convenience that loads the basemap at inPath, generates
// provinces and saves the outputs into outDir.
func GenerateFile(ctx context.Context, inPath, outDir string, opts Options) (*Result, error) {
	out, _, err := pipeline.RunFile(ctx, inPath, outDir, opts.config(), opts.Logger)
	if err != nil {
		return nil, err
	}
	return newResult(out), nil
}

func newResult(out *pipeline.Output) *Result {
	res := &Result{
		Raster:         out.Raster,
		Provinces:      make([]Province, len(out.Records)),
		LandProvinces:  out.Budget.Land,
		OceanProvinces: out.Budget.Ocean,
		out:            out,
	}
	for i, rec := range out.Records {
		res.Provinces[i] = Province{
			ID:       int(rec.ID),
			Name:     rec.Name,
			Color:    Color(rec.Color),
			Land:     !rec.Water,
			Centroid: rec.Centroid,
			Pixels:   rec.Pixels,
		}
	}
	return res
}
