// Package voronoi labels mask pixels with the id of their nearest seed.
//
// Nearest-seed lookup goes through a k-d tree built once per assignment and
// shared read-only by all row-band workers.
//
// Ties: when a pixel is exactly equidistant from several seeds, the seed with
// the lowest index wins. The metric adds index*tie to the squared distance,
// with tie chosen so that the total bias stays below 0.5; squared distances
// between integer pixel coordinates are integers, so the bias reorders
// exact ties only.
package voronoi

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/parallel"
)

// site is a seed in the tree, or a query pixel.
type site struct {
	x, y  float64
	index int
	tie   float64 // only meaningful on queries
}

func asSite(c kdtree.Comparable) site {
	switch s := c.(type) {
	case site:
		return s
	case *site:
		return *s
	}
	panic(fmt.Sprintf("voronoi: unexpected comparable %T", c))
}

// Compare returns the signed distance of p from the plane through c
// perpendicular to dimension d.
func (p site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := asSite(c)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("voronoi: illegal dimension")
	}
}

func (p site) Dims() int { return 2 }

func (p site) Distance(c kdtree.Comparable) float64 {
	q := asSite(c)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy + float64(q.index)*p.tie
}

type sites []site

func (s sites) Index(i int) kdtree.Comparable        { return s[i] }
func (s sites) Len() int                             { return len(s) }
func (s sites) Pivot(d kdtree.Dim) int               { return plane{Dim: d, sites: s}.Pivot() }
func (s sites) Slice(start, end int) kdtree.Interface { return s[start:end] }

// plane orders sites along one dimension for median partitioning.
type plane struct {
	kdtree.Dim
	sites
}

func (p plane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.sites[i].x < p.sites[j].x
	}
	return p.sites[i].y < p.sites[j].y
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}

func (p plane) Swap(i, j int) { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }

// Index answers nearest-seed queries. It is safe for concurrent use.
type Index struct {
	tree *kdtree.Tree
	tie  float64
	n    int
}

// NewIndex builds a k-d tree over seeds. Seed i is reported as index i.
func NewIndex(seeds []image.Point) *Index {
	pts := make(sites, len(seeds))
	for i, p := range seeds {
		pts[i] = site{x: float64(p.X), y: float64(p.Y), index: i}
	}
	return &Index{
		tree: kdtree.New(pts, false),
		tie:  0.5 / float64(len(seeds)+1),
		n:    len(seeds),
	}
}

// Len returns the number of seeds in the index.
func (ix *Index) Len() int { return ix.n }

// Nearest returns the index of the seed nearest to (x, y), or -1 for an empty index.
func (ix *Index) Nearest(x, y int) int {
	q := &site{x: float64(x), y: float64(y), index: -1, tie: ix.tie}
	return ix.nearest(q)
}

func (ix *Index) nearest(q *site) int {
	if ix.n == 0 {
		return -1
	}
	c, d := ix.tree.Nearest(q)
	if c == nil || math.IsInf(d, 1) {
		return -1
	}
	return asSite(c).index
}

// Assign sets every set pixel of m to offset + index of its nearest seed.
// Pixels outside m are not touched. With no seeds it does nothing.
func Assign(labels *grid.Labels, m *mask.Mask, seeds []image.Point, offset int32, workers int) error {
	if labels.Width != m.Width || labels.Height != m.Height {
		return fmt.Errorf("assign: grid is %dx%d, mask is %dx%d",
			labels.Width, labels.Height, m.Width, m.Height)
	}
	if len(seeds) == 0 {
		return nil
	}
	ix := NewIndex(seeds)
	w := labels.Width
	return parallel.Rows(labels.Height, workers, func(sy, ey int) error {
		q := &site{index: -1, tie: ix.tie}
		for y := sy; y < ey; y++ {
			q.y = float64(y)
			off := y * w
			for x := 0; x < w; x++ {
				if !m.Bits[off+x] {
					continue
				}
				q.x = float64(x)
				k := ix.nearest(q)
				if k < 0 {
					return fmt.Errorf("assign: no seed found for pixel (%d,%d)", x, y)
				}
				labels.IDs[off+x] = offset + int32(k)
			}
		}
		return nil
	})
}
