package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/spektr-org/winedash/helpers"
	"github.com/spektr-org/winedash/schema"
)

// LoadPostgres reads the schema's feature and label columns from table.
// The connection is only used for one SELECT and closed before returning.
// Connecting is retried per retry; query and scan errors are not.
func LoadPostgres(ctx context.Context, dsn, table string, sch schema.Config, retry helpers.RetryConfig) (*Dataset, error) {
	source := "postgres:" + table
	if err := sch.Validate(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("postgres: open: %w", err)}
	}
	defer db.Close()

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	query := selectQuery(table, sch)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("postgres: query: %w", err)}
	}
	defer rows.Close()

	features := sch.FeatureKeys()
	var samples []Sample
	for row := 1; rows.Next(); row++ {
		vals := make([]sql.NullFloat64, len(features))
		var label sql.NullString
		dest := make([]any, 0, len(features)+1)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		dest = append(dest, &label)

		if err := rows.Scan(dest...); err != nil {
			return nil, &LoadError{Source: source, Row: row, Err: fmt.Errorf("postgres: scan row: %w", err)}
		}
		if !label.Valid || label.String == "" {
			return nil, loadErr(source, row, "null label")
		}
		s := Sample{Features: make([]float64, len(features)), Label: label.String}
		for i, v := range vals {
			if !v.Valid {
				return nil, loadErr(source, row, "null feature %q", features[i])
			}
			s.Features[i] = v.Float64
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("postgres: rows: %w", err)}
	}

	return newDataset(source, sch.Label.Key, features, samples)
}

// selectQuery builds the read-only SELECT for sch. Identifiers are quoted;
// a dotted table name is treated as schema.table.
func selectQuery(table string, sch schema.Config) string {
	cols := make([]string, 0, len(sch.Features)+1)
	for _, f := range sch.FeatureKeys() {
		cols = append(cols, pq.QuoteIdentifier(f))
	}
	cols = append(cols, pq.QuoteIdentifier(sch.Label.Key))

	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), strings.Join(parts, "."))
}
