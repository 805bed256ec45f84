package charts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ============================================================================
// CSV EXPORT — ChartSpec → Sheets-ready CSV
// ============================================================================
// Categorical charts (bar, pie) export one row per label.
// Numeric charts (histogram, scatter) export one row per point with the
// series name in the first column.
// ============================================================================

// WriteCSV writes the data behind spec as CSV.
func WriteCSV(w io.Writer, spec *ChartSpec) error {
	if spec == nil {
		return fmt.Errorf("export: nil chart")
	}
	cw := csv.NewWriter(w)

	var rows [][]string
	switch spec.Kind {
	case KindBar, KindPie:
		yLabel := spec.YAxis
		if yLabel == "" {
			yLabel = "value"
		}
		rows = append(rows, []string{"label", yLabel})
		for _, s := range spec.Series {
			for _, p := range s.Points {
				rows = append(rows, []string{p.Label, fmtNum(p.Y)})
			}
		}
	default:
		xLabel, yLabel := spec.XAxis, spec.YAxis
		if xLabel == "" {
			xLabel = "x"
		}
		if yLabel == "" {
			yLabel = "y"
		}
		rows = append(rows, []string{"series", xLabel, yLabel})
		for _, s := range spec.Series {
			for _, p := range s.Points {
				rows = append(rows, []string{s.Name, fmtNum(p.X), fmtNum(p.Y)})
			}
		}
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// fmtNum prints whole numbers without decimals and everything else with
// the shortest exact representation.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
