package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic column classification
// ============================================================================
// Inspects raw CSV and generates a schema.Config automatically.
//
// Classification pipeline per column:
//   1. Collect non-null values → detect type (numeric, string)
//   2. Type + cardinality → classify role (feature, label candidate, skip)
//   3. Pick the label: explicit option, else the first low-cardinality
//      string column, else a coded integer column named target/class/label
// ============================================================================

// maxLabelCardinality bounds how many distinct categories a label may have.
const maxLabelCardinality = 20

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int    // Max rows to inspect (0 = all, capped at 100000). Default: 1000
	Label      string // Label column (header or key); inferred when empty
	Name       string // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// DiscoverFromCSV generates a schema.Config by inspecting CSV data.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(strings.NewReader(string(data)))

	// 1. Read headers
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	// 2. Read sample rows
	var rows [][]string
	limit := opt.SampleSize
	if limit <= 0 {
		limit = 100000 // safety cap
	}
	for i := 0; i < limit; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	// 3. Analyze each column
	columns := make([]columnAnalysis, len(headers))
	for i, header := range headers {
		columns[i] = analyzeColumn(header, i, rows)
	}

	// 4. Pick the label
	labelIdx, err := pickLabel(columns, opt.Label)
	if err != nil {
		return nil, err
	}

	// 5. Build schema
	config := &Config{
		Name:           opt.Name,
		Version:        "1.0",
		DiscoveredFrom: "csv",
		DiscoveredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	for i := range columns {
		col := &columns[i]
		switch {
		case i == labelIdx:
			config.Label = col.toDimension()
		case col.role == roleFeature:
			config.Features = append(config.Features, col.toMeasure())
		default:
			reason := col.skipReason
			if reason == "" {
				reason = "Categorical column; only one label column is used"
			}
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column:      col.header,
				Reason:      reason,
				Recoverable: col.role == roleCategory,
			})
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnType int

const (
	typeString columnType = iota
	typeNumeric
)

type columnRole int

const (
	roleSkipped columnRole = iota
	roleFeature
	roleCategory
)

type columnAnalysis struct {
	header string
	key    string
	index  int

	colType     columnType
	role        columnRole
	skipReason  string
	uniqueCount int
	totalCount  int
	hasDecimals bool
	sampleVals  []string
}

// analyzeColumn inspects all values in a column and classifies it.
func analyzeColumn(header string, index int, rows [][]string) columnAnalysis {
	col := columnAnalysis{
		header:     header,
		key:        toSnakeCase(header),
		index:      index,
		totalCount: len(rows),
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)
	for _, row := range rows {
		if index >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[index])
		if val == "" || val == "null" || val == "NULL" || val == "N/A" || val == "n/a" {
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}
	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.role = roleSkipped
		col.skipReason = "All values are empty/null"
		return col
	}

	col.sampleVals = collectSamples(uniqueSet, 10)
	col.colType = detectType(values)
	if col.colType == typeNumeric {
		for _, v := range values {
			if strings.ContainsAny(v, ".eE") {
				col.hasDecimals = true
				break
			}
		}
	}
	col.classifyRole()
	return col
}

// classifyRole determines feature vs label candidate vs skip.
func (col *columnAnalysis) classifyRole() {
	switch col.colType {
	case typeNumeric:
		if !col.hasDecimals && col.uniqueCount == col.totalCount && col.totalCount > 10 {
			col.role = roleSkipped
			col.skipReason = "Unique per row — likely an ID column"
			return
		}
		col.role = roleFeature

	default:
		if col.uniqueCount > maxLabelCardinality {
			col.role = roleSkipped
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values) — not usable as a label", col.uniqueCount)
			return
		}
		col.role = roleCategory
	}
}

// codedLabelKeys are integer-coded label columns (sklearn style "target").
var codedLabelKeys = map[string]bool{"target": true, "class": true, "label": true}

func pickLabel(columns []columnAnalysis, explicit string) (int, error) {
	if explicit != "" {
		want := toSnakeCase(explicit)
		for i, col := range columns {
			if col.key == want || col.header == explicit {
				if col.uniqueCount == 0 {
					return -1, fmt.Errorf("%w: column %q is empty", ErrNoLabel, explicit)
				}
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: column %q not found", ErrNoLabel, explicit)
	}

	for i, col := range columns {
		if col.role == roleCategory {
			return i, nil
		}
	}
	for i, col := range columns {
		if col.colType == typeNumeric && !col.hasDecimals && codedLabelKeys[col.key] &&
			col.uniqueCount <= maxLabelCardinality {
			return i, nil
		}
	}
	return -1, ErrNoLabel
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType requires every non-null value to parse for a numeric column;
// the loader rejects rows that fail to parse, so a partial match is useless.
func detectType(values []string) columnType {
	for _, v := range values {
		if !isNumeric(v) {
			return typeString
		}
	}
	return typeNumeric
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

func (col *columnAnalysis) toDimension() DimensionMeta {
	hint := "high"
	switch {
	case col.uniqueCount <= 10:
		hint = "low"
	case col.uniqueCount <= 100:
		hint = "medium"
	}
	return DimensionMeta{
		Key:             col.key,
		DisplayName:     toDisplayName(col.header),
		SampleValues:    col.sampleVals,
		CardinalityHint: hint,
	}
}

func (col *columnAnalysis) toMeasure() MeasureMeta {
	return MeasureMeta{
		Key:         col.key,
		DisplayName: toDisplayName(col.header),
	}
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// ToSnakeCase converts "Column Name" or "columnName" → "column_name".
// Exported for loaders that need to map raw headers onto schema keys.
func ToSnakeCase(s string) string { return toSnakeCase(s) }

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "malic_acid" → "Malic Acid", "Color Intensity" → "Color Intensity"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
