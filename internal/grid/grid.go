// Package grid holds the province label grid and its invariants.
package grid

import (
	"errors"
	"fmt"

	"github.com/maax3v3/provgen/internal/mask"
	"github.com/maax3v3/provgen/internal/parallel"
)

// ErrInvariant signals a label outside its category's id range. It always
// indicates a defect in assignment or relaxation and is never recoverable.
var ErrInvariant = errors.New("label invariant violated")

// Labels is a row-major grid of province ids. 0 means unassigned.
type Labels struct {
	Width, Height int
	IDs           []int32
}

// New returns an all-zero label grid.
func New(w, h int) *Labels {
	return &Labels{Width: w, Height: h, IDs: make([]int32, w*h)}
}

// At returns the label at (x, y).
func (l *Labels) At(x, y int) int32 {
	return l.IDs[y*l.Width+x]
}

// Clone returns a deep copy of the grid.
func (l *Labels) Clone() *Labels {
	ids := make([]int32, len(l.IDs))
	copy(ids, l.IDs)
	return &Labels{Width: l.Width, Height: l.Height, IDs: ids}
}

// Range is an inclusive id range [Lo, Hi]. A range with Hi < Lo is empty.
type Range struct {
	Lo, Hi int32
}

// NewRange returns the range of count ids starting at lo.
func NewRange(lo int32, count int) Range {
	return Range{Lo: lo, Hi: lo + int32(count) - 1}
}

// Contains reports whether id lies in the range.
func (r Range) Contains(id int32) bool {
	return id >= r.Lo && id <= r.Hi
}

// Len returns the number of ids in the range.
func (r Range) Len() int {
	if r.Hi < r.Lo {
		return 0
	}
	return int(r.Hi-r.Lo) + 1
}

// Empty reports whether the range holds no ids.
func (r Range) Empty() bool {
	return r.Len() == 0
}

func (r Range) String() string {
	if r.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d,%d]", r.Lo, r.Hi)
}

// Category pairs a terrain mask with the ids its pixels may carry.
type Category struct {
	Name  string
	Mask  *mask.Mask
	Range Range
}

// Verify checks that every pixel inside a category's mask carries an id from
// that category's range (or 0 when the range is empty), and that every pixel
// outside all category masks is 0. The returned error wraps ErrInvariant and
// names the first offending pixel of its band.
func Verify(l *Labels, cats []Category, workers int) error {
	w := l.Width
	for _, c := range cats {
		if c.Mask.Width != l.Width || c.Mask.Height != l.Height {
			return fmt.Errorf("%w: %s mask is %dx%d, grid is %dx%d",
				ErrInvariant, c.Name, c.Mask.Width, c.Mask.Height, l.Width, l.Height)
		}
	}
	return parallel.Rows(l.Height, workers, func(sy, ey int) error {
		for y := sy; y < ey; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				id := l.IDs[i]
				if err := verifyPixel(cats, i, id); err != nil {
					return fmt.Errorf("%w: pixel (%d,%d): %s", ErrInvariant, x, y, err)
				}
			}
		}
		return nil
	})
}

func verifyPixel(cats []Category, i int, id int32) error {
	for _, c := range cats {
		if !c.Mask.Bits[i] {
			continue
		}
		if c.Range.Empty() {
			if id != 0 {
				return fmt.Errorf("label %d in %s, which has no provinces", id, c.Name)
			}
			return nil
		}
		if !c.Range.Contains(id) {
			return fmt.Errorf("label %d outside %s range %s", id, c.Name, c.Range)
		}
		return nil
	}
	if id != 0 {
		return fmt.Errorf("label %d outside every mask", id)
	}
	return nil
}
