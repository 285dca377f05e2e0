// Package pipeline runs the province generator end to end.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/maax3v3/provgen/internal/boundary"
	"github.com/maax3v3/provgen/internal/color"
	"github.com/maax3v3/provgen/internal/definition"
	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/imaging"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/parallel"
	"github.com/maax3v3/provgen/internal/province"
	"github.com/maax3v3/provgen/internal/relax"
	"github.com/maax3v3/provgen/internal/render"
	"github.com/maax3v3/provgen/internal/seed"
	"github.com/maax3v3/provgen/internal/voronoi"
	"github.com/maax3v3/provgen/internal/zone"
)

// Output file names inside the output directory.
const (
	FileRaster     = "provinces.png"
	FileDefinition = "definition.csv"
)

// Config holds every generation parameter.
type Config struct {
	Provinces      int     // total budget split between land and ocean
	LandProvinces  int     // explicit land count; -1 derives it from the split
	OceanProvinces int     // explicit ocean count; -1 derives it from the split
	OceanDensity   float64 // weight of ocean pixels in the split
	Relaxation     int     // Lloyd iterations on land
	Noise          float64 // boundary perturbation strength in [0,1]
	Smoothing      int     // mode-filter passes after perturbation
	Seed           uint64
	Workers        int // 0 means one per CPU

	References mask.References
	Tolerance  int // per-channel color tolerance, 0-255
}

// DefaultConfig returns the stock generation parameters.
func DefaultConfig() Config {
	return Config{
		Provinces:      50000,
		LandProvinces:  -1,
		OceanProvinces: -1,
		OceanDensity:   0.5,
		Relaxation:     5,
		Noise:          0.4,
		Smoothing:      3,
		References:     mask.DefaultReferences(),
		Tolerance:      5,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Provinces >= 0, "provinces must be >= 0, got %d", c.Provinces)
	check(c.LandProvinces >= -1, "land provinces must be >= 0 (or -1 to derive), got %d", c.LandProvinces)
	check(c.OceanProvinces >= -1, "ocean provinces must be >= 0 (or -1 to derive), got %d", c.OceanProvinces)
	check(c.OceanDensity >= 0 && !math.IsInf(c.OceanDensity, 0), "ocean density must be a finite value >= 0, got %v", c.OceanDensity)
	check(c.Relaxation >= 0, "relaxation must be >= 0, got %d", c.Relaxation)
	check(c.Noise >= 0 && c.Noise <= 1, "noise must be between 0 and 1, got %v", c.Noise)
	check(c.Smoothing >= 0, "smoothing must be >= 0, got %d", c.Smoothing)
	check(c.Workers >= 0, "workers must be >= 0, got %d", c.Workers)
	check(c.Tolerance >= 0 && c.Tolerance <= 255, "tolerance must be between 0 and 255, got %d", c.Tolerance)
	return errs
}

// Stats records what each phase did.
type Stats struct {
	LandPixels, OceanPixels int
	Relaxed                 []int // seeds moved per relaxation iteration
	Perturbed               int   // pixels changed by perturbation
	Smoothed                []int // pixels changed per smoothing pass
	Fragmented              int   // provinces made of more than one connected piece
}

// Output is a finished generation, ready to be committed.
type Output struct {
	Budget  seed.Budget
	Labels  *grid.Labels
	Records []province.Record
	Raster  *image.RGBA
	Stats   Stats
}

// Run generates provinces for img. It checks ctx between phases; a phase in
// progress always runs to completion. A nil log discards all output.
func Run(ctx context.Context, img image.Image, cfg Config, log *zap.SugaredLogger) (*Output, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	r := &runner{cfg: cfg, log: log, workers: parallel.Workers(cfg.Workers), streams: seed.NewStreams(cfg.Seed)}
	return r.run(ctx, img)
}

type runner struct {
	cfg     Config
	log     *zap.SugaredLogger
	workers int
	streams seed.Streams

	masks  *mask.Set
	labels *grid.Labels
	land   grid.Category
	ocean  grid.Category
	out    Output
}

func (r *runner) run(ctx context.Context, img image.Image) (*Output, error) {
	phases := []struct {
		name string
		fn   func() error
	}{
		{"masks", func() error { return r.buildMasks(img) }},
		{"budget", r.planBudget},
		{"land", r.generateLand},
		{"ocean", r.generateOcean},
		{"records", r.collect},
		{"raster", r.paint},
	}
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("before %s: %w", p.name, err)
		}
		start := time.Now()
		if err := p.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
		r.log.Debugw("phase done", "phase", p.name, "took", time.Since(start))
	}
	return &r.out, nil
}

func (r *runner) buildMasks(img image.Image) error {
	set, err := mask.Build(img, r.cfg.References, r.cfg.Tolerance, r.workers)
	if err != nil {
		return err
	}
	r.masks = set
	r.out.Stats.LandPixels, r.out.Stats.OceanPixels = set.LandPixels, set.OceanPixels
	total := set.Width() * set.Height()
	r.log.Infow("classified basemap",
		"width", set.Width(), "height", set.Height(),
		"land", set.LandPixels, "ocean", set.OceanPixels,
		"unclassified", total-set.LandPixels-set.OceanPixels)
	return nil
}

func (r *runner) planBudget() error {
	c := r.cfg
	b := seed.Plan(c.Provinces, c.LandProvinces, c.OceanProvinces, r.masks.LandPixels, r.masks.OceanPixels, c.OceanDensity)
	if b.LandClamped {
		r.log.Warnw("land province count clamped to land pixel count", "available", r.masks.LandPixels)
	}
	if b.OceanClamped {
		r.log.Warnw("ocean province count clamped to ocean pixel count", "available", r.masks.OceanPixels)
	}
	if err := color.CheckIDSpace(b.Total()); err != nil {
		return err
	}
	r.out.Budget = b
	r.log.Infow("province budget", "land", b.Land, "ocean", b.Ocean, "seed", r.streams.Seed())

	r.labels = grid.New(r.masks.Width(), r.masks.Height())
	r.out.Labels = r.labels
	r.land = grid.Category{Name: "land", Mask: r.masks.Land, Range: grid.NewRange(1, b.Land)}
	r.ocean = grid.Category{Name: "ocean", Mask: r.masks.Ocean, Range: grid.NewRange(int32(b.Land)+1, b.Ocean)}
	return nil
}

// verify checks the grid after a pass that may have touched cats.
func (r *runner) verify(pass string, cats ...grid.Category) error {
	if err := grid.Verify(r.labels, cats, r.workers); err != nil {
		return fmt.Errorf("after %s: %w", pass, err)
	}
	return nil
}

func (r *runner) generateLand() error {
	c, land := r.cfg, r.land
	seeds, _ := seed.Sample(land.Mask, r.out.Budget.Land, r.streams.Rand(seed.StreamLand))
	if err := voronoi.Assign(r.labels, land.Mask, seeds, land.Range.Lo, r.workers); err != nil {
		return err
	}
	if err := r.verify("land assignment", land); err != nil {
		return err
	}

	st, err := relax.Relax(r.labels, seeds, land.Mask, land.Range.Lo, c.Relaxation, r.workers)
	if err != nil {
		return fmt.Errorf("relaxation: %w", err)
	}
	r.out.Stats.Relaxed = st.Moved
	if err := r.verify("relaxation", land); err != nil {
		return err
	}
	r.log.Debugw("relaxed land seeds", "iterations", c.Relaxation, "moved", st.Moved)

	// Border noise only applies to relaxed maps; unrelaxed land keeps its
	// plain Voronoi cells.
	if c.Relaxation == 0 {
		return nil
	}
	n, err := boundary.Perturb(r.labels, land.Mask, land.Range, c.Noise, r.streams.Rand(seed.StreamPerturb), r.workers)
	if err != nil {
		return err
	}
	r.out.Stats.Perturbed = n
	if err := r.verify("perturbation", land); err != nil {
		return err
	}

	hist, err := boundary.Smooth(r.labels, land.Mask, land.Range, c.Smoothing, r.workers)
	if err != nil {
		return err
	}
	r.out.Stats.Smoothed = hist
	if err := r.verify("smoothing", land); err != nil {
		return err
	}
	r.log.Debugw("land borders", "perturbed", n, "smoothed", hist)
	return nil
}

func (r *runner) generateOcean() error {
	ocean := r.ocean
	seeds, _ := seed.Sample(ocean.Mask, r.out.Budget.Ocean, r.streams.Rand(seed.StreamOcean))
	if err := voronoi.Assign(r.labels, ocean.Mask, seeds, ocean.Range.Lo, r.workers); err != nil {
		return err
	}
	return r.verify("ocean assignment", r.land, ocean)
}

func (r *runner) collect() error {
	recs, err := province.Collect(r.labels, []province.Category{
		{Mask: r.land.Mask, Range: r.land.Range},
		{Mask: r.ocean.Mask, Range: r.ocean.Range, Water: true},
	}, r.workers)
	if err != nil {
		return err
	}
	r.out.Records = recs

	for _, c := range []grid.Category{r.land, r.ocean} {
		r.out.Stats.Fragmented += len(zone.Fragmented(zone.Find(r.labels, c.Mask, c.Range)))
	}
	if r.out.Stats.Fragmented > 0 {
		r.log.Infow("provinces split into several pieces", "count", r.out.Stats.Fragmented)
	}

	for _, water := range []bool{false, true} {
		s := province.Summarize(recs, water)
		kind := "land"
		if water {
			kind = "ocean"
		}
		r.log.Infow("provinces", "kind", kind, "count", s.Count,
			"min", s.Min, "max", s.Max, "mean", s.Mean, "stddev", s.StdDev)
	}
	return nil
}

func (r *runner) paint() error {
	lut, err := color.Palette(r.out.Budget.Land, r.out.Budget.Ocean)
	if err != nil {
		return err
	}
	img, err := render.Raster(r.labels, lut, r.workers)
	if err != nil {
		return err
	}
	r.out.Raster = img
	return nil
}

// Artifacts returns the files that make up o.
func (o *Output) Artifacts() []imaging.Artifact {
	return []imaging.Artifact{
		{Name: FileRaster, Write: func(w io.Writer) error { return imaging.EncodePNG(w, o.Raster) }},
		{Name: FileDefinition, Write: func(w io.Writer) error { return definition.Write(w, o.Records) }},
	}
}

// Commit writes o into dir; either both files are replaced or neither is.
func Commit(dir string, o *Output) ([]string, error) {
	return imaging.Commit(dir, o.Artifacts()...)
}

// RunFile loads the basemap at path, generates and commits into outDir.
func RunFile(ctx context.Context, path, outDir string, cfg Config, log *zap.SugaredLogger) (*Output, []string, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading basemap: %w", err)
	}
	out, err := Run(ctx, img, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	paths, err := Commit(outDir, out)
	if err != nil {
		return nil, nil, fmt.Errorf("saving output: %w", err)
	}
	return out, paths, nil
}
