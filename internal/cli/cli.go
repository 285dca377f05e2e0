// Package cli implements the provgen command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/maax3v3/provgen"
	"github.com/maax3v3/provgen/internal/logging"
)

// Flag names.
const (
	flagEnvFile          = "env-file"
	flagBasemap          = "basemap"
	flagOutput           = "output"
	flagProvinces        = "provinces"
	flagLandProvinces    = "land-provinces"
	flagOceanProvinces   = "ocean-provinces"
	flagOceanDensity     = "ocean-density"
	flagRelaxation       = "relaxation"
	flagNoise            = "noise"
	flagSmoothing        = "smoothing"
	flagSeed             = "seed"
	flagWorkers          = "workers"
	flagLandColor        = "land-color"
	flagOceanColor       = "ocean-color"
	flagOceanBorderColor = "ocean-border-color"
	flagTolerance        = "tolerance"
	flagLogLevel         = "log-level"
	flagLogFormat        = "log-format"
	flagDir              = "dir"
)

const envPrefix = "PROVGEN_"

// env returns the environment variable bound to a flag.
func env(flag string) []string {
	return []string{envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))}
}

// NewApp returns the provgen application. Command output goes to stdout;
// logs go to stderr.
func NewApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:            "provgen",
		Usage:           "generate province maps from basemap images",
		HideHelpCommand: true,
		Writer:          stdout,
		// Errors go back to the caller; main decides the exit status.
		ExitErrHandler:  func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagEnvFile,
				Value: ".env",
				Usage: "load environment defaults from `FILE` (missing default file is ignored)",
			},
		},
		Before: loadEnv,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "partition a basemap into land and ocean provinces",
				UsageText: "provgen generate --basemap=map.png --output=out --provinces=20000 --seed=42\n\n" +
					"Every flag can also be set with a PROVGEN_ environment variable, e.g. PROVGEN_NOISE=0.3.",
				Flags:  generateFlags(),
				Action: generateAction,
			},
			{
				Name:   "inspect",
				Usage:  "check that a raster and its definition table agree and summarize them",
				Flags:  append(logFlags(), &cli.StringFlag{Name: flagDir, Value: ".", EnvVars: env(flagDir), Usage: "directory holding the generated `DIR`"}),
				Action: inspectAction,
			},
		},
	}
}

// loadEnv applies the env file before subcommand flags read the environment.
// Variables already set in the environment win.
func loadEnv(c *cli.Context) error {
	path := c.String(flagEnvFile)
	err := godotenv.Load(path)
	if err == nil || (errors.Is(err, fs.ErrNotExist) && !c.IsSet(flagEnvFile)) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagLogLevel, Value: "info", EnvVars: env(flagLogLevel), Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: flagLogFormat, Value: logging.FormatConsole, EnvVars: env(flagLogFormat), Usage: "console or json"},
	}
}

func generateFlags() []cli.Flag {
	d := provgen.DefaultOptions()
	flags := []cli.Flag{
		&cli.StringFlag{Name: flagBasemap, Required: true, EnvVars: env(flagBasemap), Usage: "basemap `IMAGE` (png, jpeg, webp, bmp, tiff)"},
		&cli.StringFlag{Name: flagOutput, Value: ".", EnvVars: env(flagOutput), Usage: "output `DIR` for provinces.png and definition.csv"},
		&cli.IntFlag{Name: flagProvinces, Value: d.Provinces, EnvVars: env(flagProvinces), Usage: "total number of provinces"},
		&cli.IntFlag{Name: flagLandProvinces, Value: d.LandProvinces, EnvVars: env(flagLandProvinces), Usage: "explicit land province count (-1 = derive from the split)"},
		&cli.IntFlag{Name: flagOceanProvinces, Value: d.OceanProvinces, EnvVars: env(flagOceanProvinces), Usage: "explicit ocean province count (-1 = derive from the split)"},
		&cli.Float64Flag{Name: flagOceanDensity, Value: d.OceanDensity, EnvVars: env(flagOceanDensity), Usage: "ocean province density relative to land"},
		&cli.IntFlag{Name: flagRelaxation, Value: d.Relaxation, EnvVars: env(flagRelaxation), Usage: "Lloyd relaxation iterations on land"},
		&cli.Float64Flag{Name: flagNoise, Value: d.Noise, EnvVars: env(flagNoise), Usage: "fraction of land border pixels to perturb (0-1)"},
		&cli.IntFlag{Name: flagSmoothing, Value: d.Smoothing, EnvVars: env(flagSmoothing), Usage: "border smoothing passes"},
		&cli.Uint64Flag{Name: flagSeed, EnvVars: env(flagSeed), Usage: "random seed (0 = pick one and log it)"},
		&cli.IntFlag{Name: flagWorkers, EnvVars: env(flagWorkers), Usage: "parallel workers (0 = one per CPU)"},
		&cli.StringFlag{Name: flagLandColor, Value: d.LandColor.Hex(), EnvVars: env(flagLandColor), Usage: "basemap land color"},
		&cli.StringFlag{Name: flagOceanColor, Value: d.OceanColor.Hex(), EnvVars: env(flagOceanColor), Usage: "basemap ocean color"},
		&cli.StringFlag{Name: flagOceanBorderColor, Value: d.OceanBorderColor.Hex(), EnvVars: env(flagOceanBorderColor), Usage: "basemap coastline color, counted as ocean"},
		&cli.IntFlag{Name: flagTolerance, Value: d.Tolerance, EnvVars: env(flagTolerance), Usage: "per-channel color tolerance (0-255)"},
	}
	return append(flags, logFlags()...)
}

func newLogger(c *cli.Context) (*zap.SugaredLogger, error) {
	return logging.New("provgen", logging.Options{
		Level:  c.String(flagLogLevel),
		Format: c.String(flagLogFormat),
	})
}

// options builds generation options from the parsed flags. Every invalid
// value is reported in one error.
func options(c *cli.Context) (provgen.Options, error) {
	opts := provgen.Options{
		Provinces:      c.Int(flagProvinces),
		LandProvinces:  c.Int(flagLandProvinces),
		OceanProvinces: c.Int(flagOceanProvinces),
		OceanDensity:   c.Float64(flagOceanDensity),
		Relaxation:     c.Int(flagRelaxation),
		Noise:          c.Float64(flagNoise),
		Smoothing:      c.Int(flagSmoothing),
		Seed:           c.Uint64(flagSeed),
		Workers:        c.Int(flagWorkers),
		Tolerance:      c.Int(flagTolerance),
	}
	var errs error
	for _, f := range []struct {
		name string
		dst  *provgen.Color
	}{
		{flagLandColor, &opts.LandColor},
		{flagOceanColor, &opts.OceanColor},
		{flagOceanBorderColor, &opts.OceanBorderColor},
	} {
		col, err := provgen.ParseHexColor(c.String(f.name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("--%s: %w", f.name, err))
			continue
		}
		*f.dst = col
	}
	errs = multierr.Append(errs, opts.Validate())
	return opts, errs
}

func generateAction(c *cli.Context) error {
	opts, err := options(c)
	if err != nil {
		return err
	}
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	opts.Logger = log

	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
		log.Infow("no seed given, picked one", "seed", opts.Seed)
	}

	basemap := c.String(flagBasemap)
	log.Infow("loading basemap", "path", basemap)
	img, err := provgen.LoadImage(basemap)
	if err != nil {
		return err
	}
	res, err := provgen.Generate(c.Context, img, opts)
	if err != nil {
		return err
	}
	paths, err := res.Save(c.String(flagOutput))
	if err != nil {
		return fmt.Errorf("saving output: %w", err)
	}
	log.Infow("done", "land", res.LandProvinces, "ocean", res.OceanProvinces, "files", paths)
	return nil
}
