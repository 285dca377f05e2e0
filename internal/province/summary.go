package province

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary holds size statistics for one terrain class.
type Summary struct {
	Count    int
	Pixels   int
	Min, Max int
	Mean     float64
	StdDev   float64
	Median   float64
}

// Summarize computes size statistics over the records whose Water flag
// matches water.
func Summarize(recs []Record, water bool) Summary {
	var sizes []float64
	var s Summary
	for _, r := range recs {
		if r.Water != water {
			continue
		}
		sizes = append(sizes, float64(r.Pixels))
		s.Pixels += r.Pixels
	}
	s.Count = len(sizes)
	if s.Count == 0 {
		return s
	}
	slices.Sort(sizes)
	s.Min, s.Max = int(sizes[0]), int(sizes[len(sizes)-1])
	if s.Count == 1 {
		s.Mean, s.Median = sizes[0], sizes[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sizes, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sizes, nil)
	return s
}
