package schema

import (
	"errors"
	"fmt"
)

// ============================================================================
// SCHEMA — Describes the shape of a dashboard dataset
// ============================================================================
// A dashboard dataset is a table of numeric feature columns plus exactly one
// categorical label column. The schema is either auto-discovered from a CSV
// (Discover) or written by hand for a Postgres table.
// The dataset loader uses it to map columns; the widget registry uses the
// feature keys as dropdown options.
// ============================================================================

var (
	ErrNoFeatures      = errors.New("schema has no numeric feature columns")
	ErrNoLabel         = errors.New("schema has no label column")
	ErrDuplicateColumn = errors.New("duplicate column key")
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`

	Label    DimensionMeta `json:"label"`
	Features []MeasureMeta `json:"features"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty"`
}

// DimensionMeta describes the categorical label column.
type DimensionMeta struct {
	Key             string   `json:"key"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description,omitempty"`
	SampleValues    []string `json:"sampleValues,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// MeasureMeta describes a numeric feature column.
type MeasureMeta struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column      string `json:"column"`
	Reason      string `json:"reason"`
	Recoverable bool   `json:"recoverable"` // Can be used as the label if named explicitly
}

// New builds a Config from a label key and feature keys, with display names
// derived from the keys.
func New(name, label string, features ...string) Config {
	c := Config{
		Name:    name,
		Version: "1.0",
		Label:   DimensionMeta{Key: label, DisplayName: toDisplayName(label)},
	}
	for _, f := range features {
		c.Features = append(c.Features, MeasureMeta{Key: f, DisplayName: toDisplayName(f)})
	}
	return c
}

// FeatureKeys returns all feature keys in column order.
func (c Config) FeatureKeys() []string {
	keys := make([]string, len(c.Features))
	for i, m := range c.Features {
		keys[i] = m.Key
	}
	return keys
}

// HasFeature reports whether key is a declared feature.
func (c Config) HasFeature(key string) bool {
	for _, m := range c.Features {
		if m.Key == key {
			return true
		}
	}
	return false
}

// Validate checks that the schema has a label, at least one feature, and no
// key declared twice.
func (c Config) Validate() error {
	if c.Label.Key == "" {
		return ErrNoLabel
	}
	if len(c.Features) == 0 {
		return ErrNoFeatures
	}
	seen := map[string]bool{c.Label.Key: true}
	for _, m := range c.Features {
		if m.Key == "" {
			return fmt.Errorf("schema: feature with empty key")
		}
		if seen[m.Key] {
			return fmt.Errorf("schema: %w: %q", ErrDuplicateColumn, m.Key)
		}
		seen[m.Key] = true
	}
	return nil
}
