package widgets

import (
	"errors"
	"reflect"
	"testing"
)

var wineFeatures = []string{"alcohol", "malic_acid", "ash", "magnesium", "proline"}

func TestDefaults(t *testing.T) {
	r := NewRegistry(wineFeatures)
	want := map[string]string{
		HistColumn: "alcohol",
		XAxis:      "alcohol",
		YAxis:      "malic_acid",
		AvgDrop:    "malic_acid",
	}
	if got := r.Defaults(); !reflect.DeepEqual(got, want) {
		t.Errorf("Defaults: got %v, want %v", got, want)
	}
}

func TestDefaultsFallBackToFeatureOrder(t *testing.T) {
	r := NewRegistry([]string{"x", "y", "z"})
	got := r.Defaults()
	if got[HistColumn] != "x" || got[XAxis] != "x" || got[YAxis] != "y" || got[AvgDrop] != "y" {
		t.Errorf("fallback defaults: got %v", got)
	}

	single := NewRegistry([]string{"only"}).Defaults()
	if single[YAxis] != "only" {
		t.Errorf("single feature should default everything to it: %v", single)
	}
}

func TestDropdownsShareTheFeatureList(t *testing.T) {
	r := NewRegistry(wineFeatures)
	dds := r.Dropdowns()
	if len(dds) != 4 {
		t.Fatalf("dropdowns: got %d", len(dds))
	}
	for _, d := range dds {
		if !reflect.DeepEqual(d.Options, wineFeatures) {
			t.Errorf("%s options: got %v", d.ID, d.Options)
		}
		if d.Clearable {
			t.Errorf("%s must not be clearable", d.ID)
		}
	}
	if d, ok := r.Dropdown(YAxis); !ok || d.Group != GroupScatter {
		t.Errorf("y_axis lookup: %+v %v", d, ok)
	}
	if _, ok := r.Dropdown("nope"); ok {
		t.Error("unknown dropdown found")
	}
}

func TestGroupsAndButtons(t *testing.T) {
	r := NewRegistry(wineFeatures)
	want := []Group{
		{Title: GroupHistogram, Dropdowns: []string{HistColumn}},
		{Title: GroupScatter, Dropdowns: []string{XAxis, YAxis}},
		{Title: GroupBar, Dropdowns: []string{AvgDrop}},
	}
	if got := r.Groups(); !reflect.DeepEqual(got, want) {
		t.Errorf("Groups: got %+v", got)
	}

	if len(r.Buttons()) != 2 || !r.IsButton(OpenButton) || !r.IsButton(CloseButton) {
		t.Errorf("buttons: got %+v", r.Buttons())
	}
	if r.IsButton(HistColumn) {
		t.Error("a dropdown is not a button")
	}
	if b, ok := r.Button(CloseButton); !ok || b.Label != "Close" {
		t.Errorf("close button: %+v", b)
	}
}

func TestValidate(t *testing.T) {
	r := NewRegistry(wineFeatures)
	if err := r.Validate(HistColumn, "proline"); err != nil {
		t.Errorf("valid option rejected: %v", err)
	}
	if err := r.Validate(HistColumn, "vintage"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}
	if err := r.Validate(HistColumn, ""); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("clearing must be rejected, got %v", err)
	}
	if err := r.Validate("colour", "alcohol"); !errors.Is(err, ErrUnknownWidget) {
		t.Errorf("expected ErrUnknownWidget, got %v", err)
	}
	if err := r.Validate(OpenButton, "alcohol"); !errors.Is(err, ErrUnknownWidget) {
		t.Errorf("buttons carry no value, got %v", err)
	}
}

func TestRegistryReturnsCopies(t *testing.T) {
	r := NewRegistry(wineFeatures)
	r.Dropdowns()[0].ID = "mutated"
	r.Groups()[0].Dropdowns[0] = "mutated"
	if d := r.Dropdowns()[0]; d.ID != HistColumn {
		t.Error("Dropdowns must not expose internal state")
	}
	if g := r.Groups()[0]; g.Dropdowns[0] != HistColumn {
		t.Error("Groups must not expose internal state")
	}
}
