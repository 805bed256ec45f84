package charts

// ============================================================================
// WINEDASH CHART TYPES
// ============================================================================
// A ChartSpec is the render-ready description handed to the renderer and the
// browser. Builders create a fresh spec on every update; specs are never
// mutated after they are returned.
// ============================================================================

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
// Used by SliceView for ad-hoc data; the dataset package binds typed samples
// through a DomainAdapter instead.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// CHART KINDS
// ============================================================================

// Kind names one of the four chart widgets.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindScatter   Kind = "scatter"
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
)

// Arity is the number of column selectors a kind consumes.
func (k Kind) Arity() int {
	switch k {
	case KindHistogram, KindBar:
		return 1
	case KindScatter:
		return 2
	default:
		return 0
	}
}

// ============================================================================
// CHART SPEC
// ============================================================================

// ChartSpec defines how to render a chart.
type ChartSpec struct {
	Kind   Kind      `json:"kind"`
	Title  string    `json:"title"`
	XAxis  string    `json:"xAxis,omitempty"`
	YAxis  string    `json:"yAxis,omitempty"`
	Series []Series  `json:"series"`
	Bins   []float64 `json:"bins,omitempty"` // histogram edges, len = bins+1
	Style  Style     `json:"style"`
}

// Series is one coloured trace; for grouped charts there is one per category.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Point is a single datum. Categorical charts (bar, pie) use Label + Y;
// numeric charts (histogram, scatter) use X + Y.
type Point struct {
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"` // per-slice colour, pie only
}

// Style carries the fixed visual contract shared by all four charts.
type Style struct {
	MarkerLineWidth float64 `json:"markerLineWidth"`
	MarkerLineColor string  `json:"markerLineColor"`
	MarkerSize      float64 `json:"markerSize,omitempty"`
	PaperBackground string  `json:"paperBackground"`
	MarginTop       int     `json:"marginTop"`
	Height          int     `json:"height"`
	Hole            float64 `json:"hole,omitempty"`
}

// PointCount returns the number of points across all series.
func (c *ChartSpec) PointCount() int {
	n := 0
	for _, s := range c.Series {
		n += len(s.Points)
	}
	return n
}

// Total sums the Y values of every point.
func (c *ChartSpec) Total() float64 {
	var t float64
	for _, s := range c.Series {
		for _, p := range s.Points {
			t += p.Y
		}
	}
	return t
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
type Group struct {
	Key   string     `json:"key"`
	Value float64    `json:"value"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}
