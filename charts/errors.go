package charts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidColumnSelection is returned when a builder is asked for a column
// outside the dataset's feature set, or with the wrong number of columns.
var ErrInvalidColumnSelection = errors.New("invalid column selection")

// SelectionError carries the rejected selection.
type SelectionError struct {
	Kind    Kind
	Columns []string
	Msg     string
}

func (e *SelectionError) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s(%s)", ErrInvalidColumnSelection.Error(), e.Kind, strings.Join(e.Columns, ", "))
	if e.Msg == "" {
		return base
	}
	return base + ": " + e.Msg
}

func (e *SelectionError) Unwrap() error { return ErrInvalidColumnSelection }

func selectionErrorf(kind Kind, columns []string, format string, args ...any) error {
	return &SelectionError{Kind: kind, Columns: columns, Msg: fmt.Sprintf(format, args...)}
}
