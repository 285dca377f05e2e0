package zone

import (
	"image"
	"testing"

	"github.com/maax3v3/provgen/internal/grid"
	"github.com/maax3v3/provgen/internal/mask"
)

func parse(rows ...string) (*grid.Labels, *mask.Mask) {
	w, h := len(rows[0]), len(rows)
	l := grid.New(w, h)
	m := mask.New(w, h)
	for y, row := range rows {
		for x, c := range row {
			if c == '.' {
				continue
			}
			l.IDs[y*w+x] = int32(c - '0')
			m.Bits[y*w+x] = true
		}
	}
	return l, m
}

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		want  []Zone
		frags []int32
	}{
		{
			name: "one zone per province",
			rows: []string{
				"1122",
				"1122",
			},
			want: []Zone{
				{ID: 1, Start: image.Point{0, 0}, Pixels: 4},
				{ID: 2, Start: image.Point{2, 0}, Pixels: 4},
			},
		},
		{
			name: "province split by another",
			rows: []string{
				"121",
				"121",
			},
			want: []Zone{
				{ID: 1, Start: image.Point{0, 0}, Pixels: 2},
				{ID: 2, Start: image.Point{1, 0}, Pixels: 2},
				{ID: 1, Start: image.Point{2, 0}, Pixels: 2},
			},
			frags: []int32{1},
		},
		{
			name: "diagonal contact does not connect",
			rows: []string{
				"1.",
				".1",
			},
			want: []Zone{
				{ID: 1, Start: image.Point{0, 0}, Pixels: 1},
				{ID: 1, Start: image.Point{1, 1}, Pixels: 1},
			},
			frags: []int32{1},
		},
		{
			name: "u shape is one zone",
			rows: []string{
				"1.1",
				"1.1",
				"111",
			},
			want: []Zone{
				{ID: 1, Start: image.Point{0, 0}, Pixels: 7},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, m := parse(tt.rows...)
			got := Find(l, m, grid.NewRange(1, 9))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d zones %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("zone %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
			frags := Fragmented(got)
			if len(frags) != len(tt.frags) {
				t.Fatalf("fragmented: got %v, want %v", frags, tt.frags)
			}
			for i := range frags {
				if frags[i] != tt.frags[i] {
					t.Errorf("fragmented: got %v, want %v", frags, tt.frags)
				}
			}
		})
	}
}

func TestFind_RespectsRangeAndMask(t *testing.T) {
	l, m := parse(
		"1155",
		"1155",
	)
	m.Bits[0] = false
	got := Find(l, m, grid.NewRange(1, 1))
	if len(got) != 1 {
		t.Fatalf("got %d zones, want 1", len(got))
	}
	if got[0].Pixels != 3 || got[0].Start != (image.Point{1, 0}) {
		t.Errorf("got %+v", got[0])
	}
}
