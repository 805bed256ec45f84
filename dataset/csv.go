package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spektr-org/winedash/schema"
)

// ============================================================================
// CSV LOADER — Parses CSV bytes into a Dataset
// ============================================================================
// The wine table ships embedded in the binary. External CSVs go through the
// same path with a schema that is either hand-written or discovered.
// ============================================================================

//go:embed wine.csv
var wineCSV []byte

// Source names reported in Dataset.Source and LoadError.
const (
	SourceEmbedded = "embedded:wine.csv"
	wineLabel      = "class"
)

// WineFeatures are the 13 wine feature columns in dataset order.
var WineFeatures = []string{
	"alcohol", "malic_acid", "ash", "alcalinity_of_ash", "magnesium",
	"total_phenols", "flavanoids", "nonflavanoid_phenols", "proanthocyanins",
	"color_intensity", "hue", "od280/od315_of_diluted_wines", "proline",
}

// WineSchema describes the embedded table.
func WineSchema() schema.Config {
	c := schema.New("Wine", wineLabel, WineFeatures...)
	c.Description = "UCI wine recognition data: chemical analysis of wines from three cultivars"
	c.Label.DisplayName = "Wine class"
	return c
}

// EmbeddedCSV returns the raw bytes of the bundled table.
func EmbeddedCSV() []byte { return append([]byte(nil), wineCSV...) }

// Load parses the embedded wine table.
func Load() (*Dataset, error) {
	return parseCSV(SourceEmbedded, wineCSV, WineSchema())
}

// LoadCSV parses an external CSV. Header names are matched to schema keys
// after snake-casing; columns outside the schema are ignored.
func LoadCSV(name string, data []byte, sch schema.Config) (*Dataset, error) {
	return parseCSV("csv:"+name, data, sch)
}

func parseCSV(source string, data []byte, sch schema.Config) (*Dataset, error) {
	if err := sch.Validate(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // arity is checked per row below

	headers, err := reader.Read()
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("failed to read CSV headers: %w", err)}
	}

	// Build column index → schema mapping
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[schema.ToSnakeCase(strings.TrimSpace(h))] = i
	}
	labelCol, ok := colIndex[sch.Label.Key]
	if !ok {
		return nil, loadErr(source, 0, "label column %q not in header", sch.Label.Key)
	}
	features := sch.FeatureKeys()
	featureCols := make([]int, len(features))
	for i, f := range features {
		col, ok := colIndex[f]
		if !ok {
			return nil, loadErr(source, 0, "feature column %q not in header", f)
		}
		featureCols[i] = col
	}

	// Read rows
	var samples []Sample
	for row := 1; ; row++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Source: source, Row: row, Err: err}
		}
		if len(rec) != len(headers) {
			return nil, loadErr(source, row, "expected %d fields, got %d", len(headers), len(rec))
		}

		s := Sample{
			Features: make([]float64, len(features)),
			Label:    strings.TrimSpace(rec[labelCol]),
		}
		if s.Label == "" {
			return nil, loadErr(source, row, "empty label")
		}
		for i, col := range featureCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return nil, loadErr(source, row, "feature %q: %v", features[i], err)
			}
			s.Features[i] = v
		}
		samples = append(samples, s)
	}

	return newDataset(source, sch.Label.Key, features, samples)
}
