package dataset

import (
	"github.com/spektr-org/winedash/charts"
)

// ============================================================================
// DATASET — Immutable in-memory table of labelled samples
// ============================================================================
// Loaded once at startup and shared read-only by every session. Builders
// read it through a charts.RecordView bound by a DomainAdapter, so nothing
// is copied into generic records.
// ============================================================================

// Sample is one row: feature values in FeatureNames order plus its label.
type Sample struct {
	Features []float64
	Label    string
}

// Dataset is an ordered, immutable list of samples.
type Dataset struct {
	Samples      []Sample
	FeatureNames []string
	Categories   []string // distinct labels, first-appearance order
	LabelKey     string
	Source       string

	index map[string]int
	view  charts.RecordView
}

// newDataset validates arity and derives categories, the feature index, and
// the bound view.
func newDataset(source, labelKey string, features []string, samples []Sample) (*Dataset, error) {
	if len(samples) == 0 {
		return nil, loadErr(source, 0, "no rows")
	}
	if len(features) == 0 {
		return nil, loadErr(source, 0, "no feature columns")
	}

	d := &Dataset{
		Samples:      samples,
		FeatureNames: features,
		LabelKey:     labelKey,
		Source:       source,
		index:        make(map[string]int, len(features)),
	}
	for i, f := range features {
		d.index[f] = i
	}

	seen := make(map[string]bool)
	for i, s := range samples {
		if len(s.Features) != len(features) {
			return nil, loadErr(source, i+1, "expected %d features, got %d", len(features), len(s.Features))
		}
		if !seen[s.Label] {
			seen[s.Label] = true
			d.Categories = append(d.Categories, s.Label)
		}
	}

	adapter := charts.NewDomainAdapter[Sample]().
		Dimension(labelKey, func(s Sample) string { return s.Label })
	for i, f := range features {
		idx := i
		adapter.Measure(f, func(s Sample) float64 { return s.Features[idx] })
	}
	d.view = adapter.Bind(samples)
	return d, nil
}

// View exposes the dataset to the chart builders. The label is the only
// dimension; every feature is a measure.
func (d *Dataset) View() charts.RecordView { return d.view }

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Samples) }

// HasFeature reports whether name is a feature column.
func (d *Dataset) HasFeature(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of one feature column in row order.
func (d *Dataset) Column(name string) ([]float64, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = s.Features[idx]
	}
	return out, true
}

// CountByCategory returns the number of samples per label.
func (d *Dataset) CountByCategory() map[string]int {
	counts := make(map[string]int, len(d.Categories))
	for _, s := range d.Samples {
		counts[s.Label]++
	}
	return counts
}
