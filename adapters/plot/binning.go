package plot

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is used when a histogram spec asks for zero bins
const DefaultBins = 10

// Bins is a histogram: len(Edges) == len(Counts)+1
type Bins struct {
	Edges  []float64
	Counts []float64
}

// Labels renders each bin as its lower edge
func (b Bins) Labels() []string {
	out := make([]string, len(b.Counts))
	for i := range b.Counts {
		out[i] = fmt.Sprintf("%.4g", b.Edges[i])
	}
	return out
}

// Histogram splits values into n equal-width bins over [min, max].
// A constant series gets a unit-wide range around its value.
func Histogram(values []float64, n int) Bins {
	if len(values) == 0 {
		return Bins{}
	}
	if n <= 0 {
		n = DefaultBins
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := make([]float64, n+1)
	floats.Span(edges, lo, hi)
	// stat.Histogram treats the last divider as exclusive
	edges[n] = math.Nextafter(hi, math.Inf(1))

	return Bins{Edges: edges, Counts: stat.Histogram(nil, edges, sorted, nil)}
}
