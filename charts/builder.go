package charts

import "fmt"

// ============================================================================
// CHART BUILDER — Produces ChartSpecs from a RecordView
// ============================================================================
// One Builder wraps one immutable dataset view. Every method is pure: the
// same arguments always produce an equal ChartSpec, and nothing is cached
// between calls, so a Builder is safe to share across sessions.
// ============================================================================

const (
	DefaultBins   = 50
	DefaultHeight = 400

	markerLineWidth = 2
	markerLineColor = "black"
	paperBackground = "#e5ecf6"
	scatterMarker   = 12
	pieHole         = 0.5
)

// Default colour palette for category series (plotly's qualitative set).
var defaultColors = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Builder produces the four dashboard charts for one dataset.
type Builder struct {
	view       RecordView
	labelKey   string
	features   []string
	featureSet map[string]bool
	categories []string
	cfg        *config
}

// NewBuilder creates a Builder over view. labelKey names the categorical
// dimension used for grouping and colouring; every measure of the view is a
// selectable column.
func NewBuilder(view RecordView, labelKey string, opts ...Option) *Builder {
	features := append([]string(nil), view.MeasureKeys()...)
	set := make(map[string]bool, len(features))
	for _, f := range features {
		set[f] = true
	}
	return &Builder{
		view:       view,
		labelKey:   labelKey,
		features:   features,
		featureSet: set,
		categories: UniqueValues(view, labelKey),
		cfg:        applyOptions(opts),
	}
}

// Features returns the selectable column names in dataset order.
func (b *Builder) Features() []string { return append([]string(nil), b.features...) }

// Categories returns the label categories in first-appearance order.
func (b *Builder) Categories() []string { return append([]string(nil), b.categories...) }

// LabelKey returns the grouping dimension.
func (b *Builder) LabelKey() string { return b.labelKey }

// HasColumn reports whether column is a known feature.
func (b *Builder) HasColumn(column string) bool { return b.featureSet[column] }

// ============================================================================
// DISPATCH
// ============================================================================

// Build dispatches to the builder for kind. columns must match kind's arity.
func (b *Builder) Build(kind Kind, columns ...string) (*ChartSpec, error) {
	switch kind {
	case KindHistogram, KindScatter, KindBar, KindPie:
	default:
		return nil, selectionErrorf(kind, columns, "unknown chart kind")
	}
	if len(columns) != kind.Arity() {
		return nil, selectionErrorf(kind, columns, "expected %d column(s), got %d", kind.Arity(), len(columns))
	}

	switch kind {
	case KindHistogram:
		return b.Histogram(columns[0])
	case KindScatter:
		return b.Scatter(columns[0], columns[1])
	case KindBar:
		return b.Bar(columns[0])
	default:
		return b.Pie(), nil
	}
}

// ============================================================================
// SCATTER / BAR / PIE
// ============================================================================

// Scatter plots every sample at (x, y), one series per category.
// x and y may name the same column.
func (b *Builder) Scatter(x, y string) (*ChartSpec, error) {
	if err := b.checkColumns(KindScatter, x, y); err != nil {
		return nil, err
	}

	spec := b.newSpec(KindScatter, fmt.Sprintf("%s vs %s", LabelForColumn(y), LabelForColumn(x)), x, y)
	spec.Style.MarkerSize = scatterMarker

	for i, g := range groupBySingle(b.view, b.labelKey) {
		points := make([]Point, g.View.Len())
		for j := range points {
			points[j] = Point{X: g.View.Measure(j, x), Y: g.View.Measure(j, y)}
		}
		spec.Series = append(spec.Series, Series{Name: g.Key, Color: b.color(i), Points: points})
	}
	return spec, nil
}

// Bar computes the mean of column per category, one single-bar series each.
func (b *Builder) Bar(column string) (*ChartSpec, error) {
	if err := b.checkColumns(KindBar, column); err != nil {
		return nil, err
	}

	spec := b.newSpec(KindBar, fmt.Sprintf("Average %s by %s", LabelForColumn(column), b.labelKey),
		b.labelKey, "avg of "+column)

	for i, g := range GroupAndAggregate(b.view, b.labelKey, column, "avg", "") {
		spec.Series = append(spec.Series, Series{
			Name:   g.Key,
			Color:  b.color(i),
			Points: []Point{{Label: g.Key, Y: g.Value}},
		})
	}
	return spec, nil
}

// Pie counts samples per category: one series, one slice per category.
func (b *Builder) Pie() *ChartSpec {
	spec := b.newSpec(KindPie, fmt.Sprintf("Samples per %s", b.labelKey), "", "")
	spec.Style.Hole = pieHole

	groups := GroupAndAggregate(b.view, b.labelKey, "", "count", "")
	points := make([]Point, 0, len(groups))
	for i, g := range groups {
		points = append(points, Point{Label: g.Key, Y: g.Value, Color: b.color(i)})
	}
	spec.Series = []Series{{Name: "Count", Points: points}}
	return spec
}

// ============================================================================
// HELPERS
// ============================================================================

func (b *Builder) checkColumns(kind Kind, columns ...string) error {
	for _, c := range columns {
		if !b.featureSet[c] {
			return selectionErrorf(kind, columns, "unknown feature %q", c)
		}
	}
	return nil
}

func (b *Builder) newSpec(kind Kind, title, xAxis, yAxis string) *ChartSpec {
	return &ChartSpec{
		Kind:  kind,
		Title: title,
		XAxis: xAxis,
		YAxis: yAxis,
		Style: Style{
			MarkerLineWidth: markerLineWidth,
			MarkerLineColor: markerLineColor,
			PaperBackground: paperBackground,
			MarginTop:       0,
			Height:          b.cfg.Height,
		},
	}
}

// color returns the palette colour for the i-th category. Groups come out of
// groupBySingle in the same first-appearance order as b.categories.
func (b *Builder) color(i int) string {
	return b.cfg.Palette[i%len(b.cfg.Palette)]
}
