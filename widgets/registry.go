package widgets

import (
	"errors"
	"fmt"
)

// ============================================================================
// WIDGET REGISTRY — Dropdowns and buttons of the dashboard
// ============================================================================
// Every dropdown offers the full feature list and can never be cleared.
// Buttons carry no value; the reactive layer reads their click counters.
// ============================================================================

var (
	ErrUnknownWidget = errors.New("unknown widget")
	ErrInvalidOption = errors.New("invalid option")
)

// Widget identifiers. These double as HTML element ids and event inputs.
const (
	HistColumn = "hist_column"
	XAxis      = "x_axis"
	YAxis      = "y_axis"
	AvgDrop    = "avg_drop"

	OpenButton  = "open"
	CloseButton = "close"
)

// Sidebar section titles, in display order.
const (
	GroupHistogram = "Histogram Dropdown"
	GroupScatter   = "Scatter Chart Dropdowns"
	GroupBar       = "Bar Chart Dropdown"
)

const (
	preferredFirst  = "alcohol"
	preferredSecond = "malic_acid"
	dropdownClass   = "text-dark p-2"
)

// Dropdown is a single-select, non-clearable column picker.
type Dropdown struct {
	ID        string   `json:"id"`
	Group     string   `json:"group"`
	Label     string   `json:"label,omitempty"`
	Options   []string `json:"options"`
	Default   string   `json:"default"`
	Clearable bool     `json:"clearable"`
	ClassName string   `json:"className"`
}

// Button is a click-counting trigger.
type Button struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	ClassName string `json:"className,omitempty"`
}

// Group is one sidebar section and the dropdowns under it.
type Group struct {
	Title     string   `json:"title"`
	Dropdowns []string `json:"dropdowns"`
}

// Registry holds the declared widgets. It is immutable after NewRegistry.
type Registry struct {
	dropdowns []Dropdown
	buttons   []Button
	groups    []Group
	byID      map[string]int
	buttonIDs map[string]int
	options   map[string]bool
}

// NewRegistry declares the four column dropdowns and the two modal buttons
// over features. Defaults prefer alcohol / malic_acid and fall back to the
// first and second feature when those columns are absent.
func NewRegistry(features []string) *Registry {
	opts := append([]string(nil), features...)
	first := pickDefault(opts, preferredFirst, 0)
	second := pickDefault(opts, preferredSecond, 1)

	r := &Registry{
		byID:      make(map[string]int),
		buttonIDs: make(map[string]int),
		options:   make(map[string]bool, len(opts)),
	}
	for _, o := range opts {
		r.options[o] = true
	}

	r.addDropdown(GroupHistogram, HistColumn, "Column", opts, first)
	r.addDropdown(GroupScatter, XAxis, "X axis", opts, first)
	r.addDropdown(GroupScatter, YAxis, "Y axis", opts, second)
	r.addDropdown(GroupBar, AvgDrop, "Column", opts, second)

	r.addButton(Button{ID: OpenButton, Label: "Designer"})
	r.addButton(Button{ID: CloseButton, Label: "Close", ClassName: "ms-auto"})
	return r
}

func pickDefault(opts []string, preferred string, fallback int) string {
	for _, o := range opts {
		if o == preferred {
			return o
		}
	}
	switch {
	case len(opts) > fallback:
		return opts[fallback]
	case len(opts) > 0:
		return opts[0]
	}
	return ""
}

func (r *Registry) addDropdown(group, id, label string, opts []string, def string) {
	r.byID[id] = len(r.dropdowns)
	r.dropdowns = append(r.dropdowns, Dropdown{
		ID:        id,
		Group:     group,
		Label:     label,
		Options:   opts,
		Default:   def,
		ClassName: dropdownClass,
	})

	for i := range r.groups {
		if r.groups[i].Title == group {
			r.groups[i].Dropdowns = append(r.groups[i].Dropdowns, id)
			return
		}
	}
	r.groups = append(r.groups, Group{Title: group, Dropdowns: []string{id}})
}

func (r *Registry) addButton(b Button) {
	r.buttonIDs[b.ID] = len(r.buttons)
	r.buttons = append(r.buttons, b)
}

// ============================================================================
// LOOKUPS
// ============================================================================

// Dropdown returns the dropdown with id.
func (r *Registry) Dropdown(id string) (Dropdown, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Dropdown{}, false
	}
	return r.dropdowns[i], true
}

// Dropdowns returns every dropdown in declaration order.
func (r *Registry) Dropdowns() []Dropdown { return append([]Dropdown(nil), r.dropdowns...) }

// Button returns the button with id.
func (r *Registry) Button(id string) (Button, bool) {
	i, ok := r.buttonIDs[id]
	if !ok {
		return Button{}, false
	}
	return r.buttons[i], true
}

// Buttons returns every button in declaration order.
func (r *Registry) Buttons() []Button { return append([]Button(nil), r.buttons...) }

// Groups returns the sidebar sections in display order.
func (r *Registry) Groups() []Group {
	out := make([]Group, len(r.groups))
	for i, g := range r.groups {
		out[i] = Group{Title: g.Title, Dropdowns: append([]string(nil), g.Dropdowns...)}
	}
	return out
}

// IsButton reports whether id names a button.
func (r *Registry) IsButton(id string) bool {
	_, ok := r.buttonIDs[id]
	return ok
}

// Defaults returns the initial value of every dropdown.
func (r *Registry) Defaults() map[string]string {
	out := make(map[string]string, len(r.dropdowns))
	for _, d := range r.dropdowns {
		out[d.ID] = d.Default
	}
	return out
}

// Validate checks that value is an option of dropdown id.
func (r *Registry) Validate(id, value string) error {
	if _, ok := r.byID[id]; !ok {
		if r.IsButton(id) {
			return fmt.Errorf("widgets: %w: %q is a button, not a dropdown", ErrUnknownWidget, id)
		}
		return fmt.Errorf("widgets: %w: %q", ErrUnknownWidget, id)
	}
	if !r.options[value] {
		return fmt.Errorf("widgets: %w: %q for %s", ErrInvalidOption, value, id)
	}
	return nil
}
