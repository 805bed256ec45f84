package reactive

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/winedash/charts"
)

// ============================================================================
// SESSION — Per-browser selection state and event dispatch
// ============================================================================
// Dropdown events are level-based: every event carrying a value recomputes
// its subscribers, even when the value did not change. Button events carry
// monotonic click counters; a toggle flips once per dispatch in which any
// of its triggers advanced past the last seen count.
// ============================================================================

// Widgets is the part of the widget registry a session needs.
type Widgets interface {
	Defaults() map[string]string
	Validate(id, value string) error
}

// Event is one widget interaction. Exactly one of Value or Clicks is set.
type Event struct {
	Input  string  `json:"input"`
	Value  *string `json:"value,omitempty"`
	Clicks *int    `json:"clicks,omitempty"`
}

// ValueEvent is a dropdown selection.
func ValueEvent(input, value string) Event { return Event{Input: input, Value: &value} }

// ClickEvent is a button's cumulative click count.
func ClickEvent(input string, clicks int) Event { return Event{Input: input, Clicks: &clicks} }

// Update reports one recomputed target. On failure Err is set and the
// target keeps its previous state and version.
type Update struct {
	Target  string
	Version int
	Spec    *charts.ChartSpec // chart targets
	Open    bool              // toggle targets
	Toggle  bool
	Err     error
}

// State is a point-in-time copy of a session for the API.
type State struct {
	ID        string            `json:"id"`
	Selection map[string]string `json:"selection"`
	Clicks    map[string]int    `json:"clicks"`
	Versions  map[string]int    `json:"versions"`
	Toggles   map[string]bool   `json:"toggles"`
	LastSeen  time.Time         `json:"lastSeen"`
}

// Session holds one browser's selections and current chart specs.
type Session struct {
	ID string

	mu       sync.Mutex
	graph    *Graph
	widgets  Widgets
	values   map[string]string
	clicks   map[string]int
	specs    map[string]*charts.ChartSpec
	versions map[string]int
	toggles  map[string]bool
	lastSeen time.Time
	now      func() time.Time
}

// NewSession seeds dropdown defaults and computes every chart once,
// including charts without inputs. Toggles start closed.
func NewSession(graph *Graph, widgets Widgets, now func() time.Time) (*Session, error) {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		ID:       uuid.NewString(),
		graph:    graph,
		widgets:  widgets,
		values:   widgets.Defaults(),
		clicks:   make(map[string]int),
		specs:    make(map[string]*charts.ChartSpec),
		versions: make(map[string]int),
		toggles:  make(map[string]bool),
		now:      now,
	}
	s.lastSeen = now()

	var errs []error
	for _, b := range graph.bindings {
		switch b.kind {
		case chartBinding:
			if u := s.recompute(b, nil); u.Err != nil {
				errs = append(errs, u.Err)
			}
		case toggleBinding:
			s.toggles[b.target] = false
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("reactive: initial render: %w", errors.Join(errs...))
	}
	return s, nil
}

// Dispatch applies events and recomputes each affected target once, in
// registration order. The returned error covers malformed or unknown
// events only, in which case nothing is applied; per-target failures are
// reported through Update.Err.
func (s *Session) Dispatch(events ...Event) ([]Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		if err := s.checkEvent(ev); err != nil {
			return nil, err
		}
	}
	s.lastSeen = s.now()

	// Record levels and counters; collect affected targets.
	proposed := make(map[string]string)
	counters := make(map[string]int)
	affected := make(map[*binding]bool)
	for _, ev := range events {
		if ev.Value != nil {
			proposed[ev.Input] = *ev.Value
		} else if *ev.Clicks > counters[ev.Input] {
			counters[ev.Input] = *ev.Clicks
		}
		for _, b := range s.graph.subscribers[ev.Input] {
			affected[b] = true
		}
	}

	// Commit valid values; invalid ones are never stored.
	invalid := make(map[string]error)
	for input, v := range proposed {
		if err := s.widgets.Validate(input, v); err != nil {
			invalid[input] = err
			continue
		}
		s.values[input] = v
	}

	var updates []Update
	for _, b := range s.graph.bindings {
		if !affected[b] {
			continue
		}
		switch b.kind {
		case chartBinding:
			updates = append(updates, s.recompute(b, invalid))
		case toggleBinding:
			if u, changed := s.toggle(b, counters); changed {
				updates = append(updates, u)
			}
		}
	}
	return updates, nil
}

func (s *Session) checkEvent(ev Event) error {
	if (ev.Value == nil) == (ev.Clicks == nil) {
		return fmt.Errorf("reactive: %w: %q needs exactly one of value or clicks", ErrInvalidEvent, ev.Input)
	}
	if s.graph.IsTrigger(ev.Input) {
		if ev.Clicks == nil {
			return fmt.Errorf("reactive: %w: button %q takes clicks", ErrInvalidEvent, ev.Input)
		}
		if *ev.Clicks < 0 {
			return fmt.Errorf("reactive: %w: negative clicks for %q", ErrInvalidEvent, ev.Input)
		}
		return nil
	}
	if _, ok := s.values[ev.Input]; ok || len(s.graph.subscribers[ev.Input]) > 0 {
		if ev.Value == nil {
			return fmt.Errorf("reactive: %w: dropdown %q takes a value", ErrInvalidEvent, ev.Input)
		}
		return nil
	}
	return fmt.Errorf("reactive: %w: %q", ErrUnknownInput, ev.Input)
}

// recompute rebuilds a chart binding. invalid holds rejected input values;
// a binding touching one keeps its previous spec.
func (s *Session) recompute(b *binding, invalid map[string]error) Update {
	for _, in := range b.inputs {
		if err, bad := invalid[in]; bad {
			return Update{
				Target:  b.target,
				Version: s.versions[b.target],
				Err:     fmt.Errorf("reactive: %s: %w: %w", b.target, charts.ErrInvalidColumnSelection, err),
			}
		}
	}

	values := make([]string, len(b.inputs))
	for i, in := range b.inputs {
		values[i] = s.values[in]
	}
	spec, err := b.chart(values)
	if err != nil {
		return Update{Target: b.target, Version: s.versions[b.target], Err: fmt.Errorf("reactive: %s: %w", b.target, err)}
	}

	s.specs[b.target] = spec
	s.versions[b.target]++
	return Update{Target: b.target, Version: s.versions[b.target], Spec: spec}
}

// toggle flips b when any trigger's counter advanced past its last seen
// value. Lower or repeated counters are ignored.
func (s *Session) toggle(b *binding, counters map[string]int) (Update, bool) {
	advanced := false
	for _, tr := range b.inputs {
		if n, ok := counters[tr]; ok && n > s.clicks[tr] {
			s.clicks[tr] = n
			advanced = true
		}
	}
	if !advanced {
		return Update{}, false
	}
	s.toggles[b.target] = !s.toggles[b.target]
	s.versions[b.target]++
	return Update{Target: b.target, Version: s.versions[b.target], Open: s.toggles[b.target], Toggle: true}, true
}

// ============================================================================
// ACCESSORS
// ============================================================================

// Spec returns the current chart spec of target and its version.
func (s *Session) Spec(target string) (*charts.ChartSpec, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.specs[target]
	return spec, s.versions[target], ok
}

// Value returns the current selection of a dropdown.
func (s *Session) Value(input string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[input]
}

// IsOpen returns the state of a toggle target.
func (s *Session) IsOpen(target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggles[target]
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		ID:        s.ID,
		Selection: make(map[string]string, len(s.values)),
		Clicks:    make(map[string]int, len(s.clicks)),
		Versions:  make(map[string]int, len(s.versions)),
		Toggles:   make(map[string]bool, len(s.toggles)),
		LastSeen:  s.lastSeen,
	}
	for k, v := range s.values {
		st.Selection[k] = v
	}
	for k, v := range s.clicks {
		st.Clicks[k] = v
	}
	for k, v := range s.versions {
		st.Versions[k] = v
	}
	for k, v := range s.toggles {
		st.Toggles[k] = v
	}
	return st
}

// Touch marks the session as active.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
