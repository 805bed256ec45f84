package charts

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram bins column into a fixed number of equal-width bins shared by
// every category, one series per category. Point X is the bin centre and Y
// the sample count.
func (b *Builder) Histogram(column string) (*ChartSpec, error) {
	if err := b.checkColumns(KindHistogram, column); err != nil {
		return nil, err
	}

	edges := binEdges(Column(b.view, column), b.cfg.Bins)

	// stat.Histogram needs the last divider strictly above the maximum.
	dividers := append([]float64(nil), edges...)
	last := len(dividers) - 1
	dividers[last] = math.Nextafter(dividers[last], math.Inf(1))

	centres := make([]float64, len(edges)-1)
	for i := range centres {
		centres[i] = (edges[i] + edges[i+1]) / 2
	}

	spec := b.newSpec(KindHistogram, fmt.Sprintf("Distribution of %s", LabelForColumn(column)), column, "count")
	spec.Bins = edges

	for i, g := range groupBySingle(b.view, b.labelKey) {
		xs := Column(g.View, column)
		sort.Float64s(xs)
		counts := stat.Histogram(nil, dividers, xs, nil)

		points := make([]Point, len(counts))
		for j, c := range counts {
			points[j] = Point{X: centres[j], Y: c}
		}
		spec.Series = append(spec.Series, Series{Name: g.Key, Color: b.color(i), Points: points})
	}
	return spec, nil
}

// binEdges returns bins+1 equally spaced edges spanning values. A constant
// or empty column gets a unit-wide range around its value.
func binEdges(values []float64, bins int) []float64 {
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = floats.Min(values), floats.Max(values)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// Span accumulates rounding error towards the top end; pin the extremes.
	edges[0], edges[bins] = lo, hi
	return edges
}
