package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/winedash/charts"
)

// ============================================================================
// RENDERER — ChartSpec → SVG / PNG through go-chart
// ============================================================================
// Axis ranges are always set explicitly: go-chart refuses to draw a zero
// data range, which a constant column or a one-category bar chart produces.
// ============================================================================

// Format is an image encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// DefaultWidth is the image width in pixels; height comes from the spec.
const DefaultWidth = 640

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyChart        = errors.New("chart has no data")
)

// ParseFormat maps a query value to a Format. Empty means SVG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("render: %w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of f.
func ContentType(f Format) string {
	if f == FormatPNG {
		return chart.ContentTypePNG
	}
	return chart.ContentTypeSVG
}

func provider(f Format) (chart.RendererProvider, error) {
	switch f {
	case FormatSVG:
		return chart.SVG, nil
	case FormatPNG:
		return chart.PNG, nil
	}
	return nil, fmt.Errorf("render: %w: %q", ErrUnsupportedFormat, f)
}

// Option tweaks rendering.
type Option func(*options)

type options struct {
	width int
}

// WithWidth sets the image width. Non-positive values are ignored.
func WithWidth(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.width = px
		}
	}
}

// Render draws spec to w in format.
func Render(w io.Writer, spec *charts.ChartSpec, format Format, opts ...Option) error {
	if spec == nil {
		return fmt.Errorf("render: %w: nil spec", ErrEmptyChart)
	}
	rp, err := provider(format)
	if err != nil {
		return err
	}
	o := options{width: DefaultWidth}
	for _, opt := range opts {
		opt(&o)
	}

	var r interface {
		Render(chart.RendererProvider, io.Writer) error
	}
	switch spec.Kind {
	case charts.KindHistogram:
		r, err = histogramChart(spec, o)
	case charts.KindScatter:
		r, err = scatterChart(spec, o)
	case charts.KindBar:
		r, err = barChart(spec, o)
	case charts.KindPie:
		r, err = donutChart(spec, o)
	default:
		err = fmt.Errorf("render: unknown chart kind %q", spec.Kind)
	}
	if err != nil {
		return err
	}
	if err := r.Render(rp, w); err != nil {
		return fmt.Errorf("render: %s: %w", spec.Kind, err)
	}
	return nil
}

// ============================================================================
// PER-KIND BUILDERS
// ============================================================================

func histogramChart(spec *charts.ChartSpec, o options) (*chart.Chart, error) {
	if spec.PointCount() == 0 {
		return nil, fmt.Errorf("render: %w: %s", ErrEmptyChart, spec.Title)
	}
	var series []chart.Series
	for _, s := range spec.Series {
		xs, ys := xy(s.Points)
		col := color(s.Color)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: spec.Style.MarkerLineWidth,
				StrokeColor: col,
				FillColor:   col.WithAlpha(64),
			},
		})
	}

	xr := &chart.ContinuousRange{Min: 0, Max: 1}
	if n := len(spec.Bins); n > 1 {
		xr = &chart.ContinuousRange{Min: spec.Bins[0], Max: spec.Bins[n-1]}
	}
	_, yMax := yExtent(spec)
	return continuous(spec, o, series, xr, &chart.ContinuousRange{Min: 0, Max: headroom(yMax)}), nil
}

func scatterChart(spec *charts.ChartSpec, o options) (*chart.Chart, error) {
	if spec.PointCount() == 0 {
		return nil, fmt.Errorf("render: %w: %s", ErrEmptyChart, spec.Title)
	}
	var series []chart.Series
	xMin, xMax := math.Inf(1), math.Inf(-1)
	for _, s := range spec.Series {
		xs, ys := xy(s.Points)
		for _, x := range xs {
			xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    spec.Style.MarkerSize / 2,
				DotColor:    color(s.Color),
			},
		})
	}
	yMin, yMax := yExtent(spec)
	return continuous(spec, o, series, padRange(xMin, xMax), padRange(yMin, yMax)), nil
}

func continuous(spec *charts.ChartSpec, o options, series []chart.Series, xr, yr *chart.ContinuousRange) *chart.Chart {
	ch := &chart.Chart{
		Width:      o.width,
		Height:     height(spec),
		Background: background(spec),
		Canvas:     chart.Style{FillColor: color(spec.Style.PaperBackground)},
		XAxis:      chart.XAxis{Name: spec.XAxis, Range: xr},
		YAxis:      chart.YAxis{Name: spec.YAxis, Range: yr},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch
}

func barChart(spec *charts.ChartSpec, o options) (*chart.BarChart, error) {
	var bars []chart.Value
	for _, s := range spec.Series {
		for _, p := range s.Points {
			bars = append(bars, chart.Value{
				Label: p.Label,
				Value: p.Y,
				Style: chart.Style{
					FillColor:   color(s.Color),
					StrokeColor: color(spec.Style.MarkerLineColor),
					StrokeWidth: spec.Style.MarkerLineWidth,
				},
			})
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("render: %w: %s", ErrEmptyChart, spec.Title)
	}
	_, yMax := yExtent(spec)
	slot := barSlot(o.width, len(bars))
	return &chart.BarChart{
		Width:      o.width,
		Height:     height(spec),
		Background: background(spec),
		Canvas:     chart.Style{FillColor: color(spec.Style.PaperBackground)},
		BarWidth:   slot,
		BarSpacing: slot,
		YAxis:      chart.YAxis{Name: spec.YAxis, Range: &chart.ContinuousRange{Min: 0, Max: headroom(yMax)}},
		Bars:       bars,
	}, nil
}

func donutChart(spec *charts.ChartSpec, o options) (*chart.DonutChart, error) {
	var values []chart.Value
	for _, s := range spec.Series {
		for _, p := range s.Points {
			values = append(values, chart.Value{
				Label: p.Label,
				Value: p.Y,
				Style: chart.Style{
					FillColor:   color(p.Color),
					StrokeColor: color(spec.Style.MarkerLineColor),
					StrokeWidth: spec.Style.MarkerLineWidth,
				},
			})
		}
	}
	if len(values) == 0 || spec.Total() == 0 {
		return nil, fmt.Errorf("render: %w: %s", ErrEmptyChart, spec.Title)
	}
	return &chart.DonutChart{
		Width:      o.width,
		Height:     height(spec),
		Background: background(spec),
		Values:     values,
	}, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func xy(points []charts.Point) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func yExtent(spec *charts.ChartSpec) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spec.Series {
		for _, p := range s.Points {
			lo, hi = math.Min(lo, p.Y), math.Max(hi, p.Y)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// barSlot splits the plot width evenly between bars and gaps, leaving room
// for the y axis and padding.
func barSlot(width, bars int) int {
	avail := width - 120
	if avail < 2*bars {
		return 1
	}
	return avail / (2 * bars)
}

// headroom leaves 5% above the tallest value and never returns zero.
func headroom(max float64) float64 {
	if max <= 0 {
		return 1
	}
	return max * 1.05
}

// padRange widens [lo,hi] by 5% on each side, or by 0.5 when it is empty.
func padRange(lo, hi float64) *chart.ContinuousRange {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func height(spec *charts.ChartSpec) int {
	if spec.Style.Height > 0 {
		return spec.Style.Height
	}
	return charts.DefaultHeight
}

func background(spec *charts.ChartSpec) chart.Style {
	return chart.Style{
		FillColor: color(spec.Style.PaperBackground),
		Padding:   chart.Box{Top: 20 + spec.Style.MarginTop, Left: 20, Right: 20, Bottom: 20},
	}
}

var namedColors = map[string]drawing.Color{
	"black": drawing.ColorBlack,
	"white": drawing.ColorWhite,
}

// color parses "#rrggbb" or a small set of names; anything else is black.
func color(s string) drawing.Color {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return drawing.ColorBlack
	}
	return drawing.ColorFromHex(hex)
}
