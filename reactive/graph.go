package reactive

import (
	"errors"
	"fmt"

	"github.com/spektr-org/winedash/charts"
)

// ============================================================================
// OBSERVER GRAPH — Which inputs drive which targets
// ============================================================================
// Registered once at startup, read-only afterwards. Each target has exactly
// one binding: either a chart recomputed from dropdown values, or a toggle
// flipped by button click counters.
// ============================================================================

var (
	ErrDuplicateTarget = errors.New("target already bound")
	ErrUnknownInput    = errors.New("unknown input")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidEvent    = errors.New("invalid event")
)

// ChartFunc builds a chart from the current values of its inputs, passed in
// binding order.
type ChartFunc func(values []string) (*charts.ChartSpec, error)

type bindingKind int

const (
	chartBinding bindingKind = iota
	toggleBinding
)

type binding struct {
	target string
	kind   bindingKind
	inputs []string
	chart  ChartFunc
}

// Graph maps inputs to the targets that subscribe to them.
type Graph struct {
	bindings    []*binding
	byTarget    map[string]*binding
	subscribers map[string][]*binding
	buttons     map[string]bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byTarget:    make(map[string]*binding),
		subscribers: make(map[string][]*binding),
		buttons:     make(map[string]bool),
	}
}

// BindChart registers target as a chart recomputed whenever any of inputs
// receives an event. A chart with no inputs is computed once per session.
func (g *Graph) BindChart(target string, inputs []string, fn ChartFunc) error {
	if fn == nil {
		return fmt.Errorf("reactive: bind %s: nil chart function", target)
	}
	for _, in := range inputs {
		if g.buttons[in] {
			return fmt.Errorf("reactive: bind %s: input %q is already a toggle trigger", target, in)
		}
	}
	return g.add(&binding{target: target, kind: chartBinding, inputs: append([]string(nil), inputs...), chart: fn})
}

// BindToggle registers target as a boolean flipped by click counters on
// triggers.
func (g *Graph) BindToggle(target string, triggers []string) error {
	if len(triggers) == 0 {
		return fmt.Errorf("reactive: bind %s: toggle needs at least one trigger", target)
	}
	for _, tr := range triggers {
		for _, b := range g.subscribers[tr] {
			if b.kind == chartBinding {
				return fmt.Errorf("reactive: bind %s: trigger %q is already a chart input", target, tr)
			}
		}
	}
	if err := g.add(&binding{target: target, kind: toggleBinding, inputs: append([]string(nil), triggers...)}); err != nil {
		return err
	}
	for _, tr := range triggers {
		g.buttons[tr] = true
	}
	return nil
}

func (g *Graph) add(b *binding) error {
	if b.target == "" {
		return fmt.Errorf("reactive: empty target")
	}
	if _, exists := g.byTarget[b.target]; exists {
		return fmt.Errorf("reactive: %w: %q", ErrDuplicateTarget, b.target)
	}
	g.byTarget[b.target] = b
	g.bindings = append(g.bindings, b)
	for _, in := range b.inputs {
		g.subscribers[in] = append(g.subscribers[in], b)
	}
	return nil
}

// Targets returns every bound target in registration order.
func (g *Graph) Targets() []string {
	out := make([]string, len(g.bindings))
	for i, b := range g.bindings {
		out[i] = b.target
	}
	return out
}

// Inputs returns the inputs of target.
func (g *Graph) Inputs(target string) ([]string, bool) {
	b, ok := g.byTarget[target]
	if !ok {
		return nil, false
	}
	return append([]string(nil), b.inputs...), true
}

// Subscribers returns the targets that react to input, in registration order.
func (g *Graph) Subscribers(input string) []string {
	subs := g.subscribers[input]
	out := make([]string, len(subs))
	for i, b := range subs {
		out[i] = b.target
	}
	return out
}

// IsChart reports whether target is a chart binding.
func (g *Graph) IsChart(target string) bool {
	b, ok := g.byTarget[target]
	return ok && b.kind == chartBinding
}

// IsToggle reports whether target is a toggle binding.
func (g *Graph) IsToggle(target string) bool {
	b, ok := g.byTarget[target]
	return ok && b.kind == toggleBinding
}

// IsTrigger reports whether input is a toggle trigger (a click counter).
func (g *Graph) IsTrigger(input string) bool { return g.buttons[input] }
