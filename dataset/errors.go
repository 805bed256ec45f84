package dataset

import (
	"errors"
	"fmt"
)

// ErrDatasetUnavailable is returned when a dataset source cannot be read or
// yields rows that do not match the schema. It is fatal at startup.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// LoadError locates a load failure. Row is the 1-based data row, or 0 when
// the failure is not tied to a row.
type LoadError struct {
	Source string
	Row    int
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Row > 0 {
		return fmt.Sprintf("%s: %s row %d: %v", ErrDatasetUnavailable.Error(), e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrDatasetUnavailable.Error(), e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *LoadError) Unwrap() []error { return []error{ErrDatasetUnavailable, e.Err} }

func loadErr(source string, row int, format string, args ...any) error {
	return &LoadError{Source: source, Row: row, Err: fmt.Errorf(format, args...)}
}
