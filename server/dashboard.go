package server

import (
	"fmt"
	"time"

	"github.com/spektr-org/winedash/charts"
	"github.com/spektr-org/winedash/dataset"
	"github.com/spektr-org/winedash/layout"
	"github.com/spektr-org/winedash/reactive"
	"github.com/spektr-org/winedash/widgets"
)

// Dashboard bundles everything built once at startup from the dataset.
// All fields are read-only after NewDashboard.
type Dashboard struct {
	Dataset  *dataset.Dataset
	Builder  *charts.Builder
	Registry *widgets.Registry
	Page     layout.Page
	Graph    *reactive.Graph
}

// NewDashboard wires the four chart bindings and the modal toggle:
//
//	histogram     ← hist_column
//	scatter_chart ← x_axis, y_axis
//	bar_chart     ← avg_drop
//	pie_chart     ← (none)
//	modal         ← open, close (toggle)
func NewDashboard(ds *dataset.Dataset, profile layout.Profile, opts ...charts.Option) (*Dashboard, error) {
	b := charts.NewBuilder(ds.View(), ds.LabelKey, opts...)
	reg := widgets.NewRegistry(b.Features())

	g := reactive.NewGraph()
	binds := []struct {
		target string
		inputs []string
		fn     reactive.ChartFunc
	}{
		{layout.HistogramTarget, []string{widgets.HistColumn}, func(v []string) (*charts.ChartSpec, error) {
			return b.Histogram(v[0])
		}},
		{layout.ScatterTarget, []string{widgets.XAxis, widgets.YAxis}, func(v []string) (*charts.ChartSpec, error) {
			return b.Scatter(v[0], v[1])
		}},
		{layout.BarTarget, []string{widgets.AvgDrop}, func(v []string) (*charts.ChartSpec, error) {
			return b.Bar(v[0])
		}},
		{layout.PieTarget, nil, func([]string) (*charts.ChartSpec, error) {
			return b.Pie(), nil
		}},
	}
	for _, bd := range binds {
		if err := g.BindChart(bd.target, bd.inputs, bd.fn); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	if err := g.BindToggle(layout.ModalTarget, []string{widgets.OpenButton, widgets.CloseButton}); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	return &Dashboard{
		Dataset:  ds,
		Builder:  b,
		Registry: reg,
		Page:     layout.Compose(reg, layout.DefaultTitle, profile),
		Graph:    g,
	}, nil
}

// NewStore creates a session store over the dashboard's graph and widgets.
func (d *Dashboard) NewStore(ttl time.Duration) *reactive.Store {
	return reactive.NewStore(d.Graph, d.Registry, ttl, nil)
}

// DefaultSpecs builds every chart with the registry defaults, keyed by
// placeholder id. Used for static exports.
func (d *Dashboard) DefaultSpecs() (map[string]*charts.ChartSpec, error) {
	s, err := reactive.NewSession(d.Graph, d.Registry, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*charts.ChartSpec)
	for _, target := range d.Page.ChartTargets() {
		if spec, _, ok := s.Spec(target); ok {
			out[target] = spec
		}
	}
	return out, nil
}
