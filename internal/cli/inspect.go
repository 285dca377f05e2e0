package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/maax3v3/provgen"
	"github.com/maax3v3/provgen/internal/definition"
	"github.com/maax3v3/provgen/internal/province"
	"github.com/maax3v3/provgen/internal/render"
)

func inspectAction(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dir := c.String(flagDir)
	raster, err := provgen.LoadImage(filepath.Join(dir, provgen.RasterFile))
	if err != nil {
		return err
	}
	f, err := os.Open(filepath.Join(dir, provgen.DefinitionFile))
	if err != nil {
		return fmt.Errorf("opening definition: %w", err)
	}
	defer f.Close()
	rows, err := definition.Read(f)
	if err != nil {
		return err
	}

	rep, err := definition.Check(rows, render.Histogram(raster))
	if err != nil {
		problems := multierr.Errors(err)
		for _, p := range problems {
			log.Errorw("inconsistency", "error", p)
		}
		return fmt.Errorf("%s: %d inconsistencies between raster and definition", dir, len(problems))
	}

	recs := make([]province.Record, len(rows))
	for i, r := range rows {
		recs[i] = province.Record{ID: r.ID, Pixels: rep.Pixels[r.ID], Water: !r.Land}
	}
	writeSummary(c.App.Writer, raster.Bounds().Dx(), raster.Bounds().Dy(), recs, rep.Unassigned)
	return nil
}

func writeSummary(w io.Writer, width, height int, recs []province.Record, unassigned int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%dx%d", width, height))
	t.AppendHeader(table.Row{"Kind", "Provinces", "Pixels", "Min", "Median", "Max", "Mean", "StdDev"})
	for _, kind := range []struct {
		name  string
		water bool
	}{{"land", false}, {"ocean", true}} {
		s := province.Summarize(recs, kind.water)
		t.AppendRow(table.Row{
			kind.name, s.Count, s.Pixels, s.Min, s.Median, s.Max,
			fmt.Sprintf("%.1f", s.Mean), fmt.Sprintf("%.1f", s.StdDev),
		})
	}
	t.AppendFooter(table.Row{"unassigned", "", unassigned})
	t.Render()
}
