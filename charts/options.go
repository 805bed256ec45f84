package charts

// ============================================================================
// BUILDER OPTIONS — Functional options for NewBuilder()
// ============================================================================

// Option configures builder behavior via functional options pattern.
type Option func(*config)

type config struct {
	Bins    int
	Height  int
	Palette []string
}

// WithBins sets the histogram bin count. Values below 1 are ignored.
func WithBins(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.Bins = n
		}
	}
}

// WithHeight sets the chart height in pixels. Values below 1 are ignored.
func WithHeight(px int) Option {
	return func(c *config) {
		if px > 0 {
			c.Height = px
		}
	}
}

// WithPalette replaces the category colour palette. An empty palette is ignored.
func WithPalette(colors []string) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.Palette = append([]string(nil), colors...)
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Bins:    DefaultBins,
		Height:  DefaultHeight,
		Palette: defaultColors,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
