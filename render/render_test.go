package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spektr-org/winedash/charts"
)

func fixtureBuilder() *charts.Builder {
	rec := func(label string, x, y float64) charts.Record {
		return charts.Record{
			Dimensions: map[string]string{"class": label},
			Measures:   map[string]float64{"x": x, "y": y, "k": 3},
		}
	}
	view := charts.NewSliceView([]charts.Record{
		rec("class_0", 1, 10), rec("class_1", 2, 25), rec("class_0", 3, 30), rec("class_2", 4, 12),
	}, "x", "y", "k")
	return charts.NewBuilder(view, "class")
}

func allSpecs(t *testing.T) map[string]*charts.ChartSpec {
	t.Helper()
	b := fixtureBuilder()
	specs := map[string]*charts.ChartSpec{"pie": b.Pie()}
	var err error
	if specs["histogram"], err = b.Histogram("y"); err != nil {
		t.Fatal(err)
	}
	if specs["scatter"], err = b.Scatter("x", "y"); err != nil {
		t.Fatal(err)
	}
	if specs["bar"], err = b.Bar("y"); err != nil {
		t.Fatal(err)
	}
	// Degenerate inputs that go-chart cannot range on its own.
	if specs["constant histogram"], err = b.Histogram("k"); err != nil {
		t.Fatal(err)
	}
	if specs["constant scatter"], err = b.Scatter("k", "k"); err != nil {
		t.Fatal(err)
	}
	return specs
}

func TestRenderSVG(t *testing.T) {
	for name, spec := range allSpecs(t) {
		var buf bytes.Buffer
		if err := Render(&buf, spec, FormatSVG); err != nil {
			t.Errorf("%s: Render failed: %v", name, err)
			continue
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Errorf("%s: output is not SVG", name)
		}
	}
}

func TestRenderPNG(t *testing.T) {
	for name, spec := range allSpecs(t) {
		var buf bytes.Buffer
		if err := Render(&buf, spec, FormatPNG, WithWidth(320)); err != nil {
			t.Errorf("%s: Render failed: %v", name, err)
			continue
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
			t.Errorf("%s: missing PNG signature", name)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil, FormatSVG); !errors.Is(err, ErrEmptyChart) {
		t.Errorf("nil spec: got %v", err)
	}
	empty := &charts.ChartSpec{Kind: charts.KindPie}
	if err := Render(&buf, empty, FormatSVG); !errors.Is(err, ErrEmptyChart) {
		t.Errorf("empty pie: got %v", err)
	}
	spec := fixtureBuilder().Pie()
	if err := Render(&buf, spec, Format("gif")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("gif: got %v", err)
	}
	if err := Render(&buf, &charts.ChartSpec{Kind: "heatmap"}, FormatSVG); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestParseFormatAndContentType(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		mime string
	}{
		{"", FormatSVG, "image/svg+xml"},
		{"SVG", FormatSVG, "image/svg+xml"},
		{"png", FormatPNG, "image/png"},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if ContentType(got) != tt.mime {
			t.Errorf("ContentType(%q) = %q", got, ContentType(got))
		}
	}
	if _, err := ParseFormat("csv"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("csv is not an image format: %v", err)
	}
}

func TestColor(t *testing.T) {
	if c := color("#636EFA"); c.R != 0x63 || c.G != 0x6E || c.B != 0xFA {
		t.Errorf("hex colour: got %+v", c)
	}
	if c := color("black"); c.R != 0 || c.A != 255 {
		t.Errorf("black: got %+v", c)
	}
	if padRange(2, 2).Min != 1.5 {
		t.Error("empty range should widen by 0.5")
	}
}
