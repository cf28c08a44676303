package style

import (
	"math"
	"strings"
	"testing"

	"github.com/samber/mo"

	"stylewind/common"
	"stylewind/state"
)

func testRuntime(width float64) *state.Runtime {
	host := state.DefaultHost()
	host.Size = state.Screen{Width: width, Height: 800}
	return state.NewRuntime(host, common.PlatformIOS, "light")
}

func TestNewRule(t *testing.T) {
	r := NewRule("box", 3)
	if !math.IsInf(r.MaxWidth, 1) {
		t.Errorf("MaxWidth = %v, want +Inf", r.MaxWidth)
	}
	if r.Theme.IsPresent() || r.Active.IsPresent() || r.RTL.IsPresent() {
		t.Error("Expected no guards on new rule")
	}
	if r.ClassName != "box" || r.Index != 3 {
		t.Errorf("Unexpected identity %s/%d", r.ClassName, r.Index)
	}
}

func TestRuleMatches(t *testing.T) {
	tests := []struct {
		name   string
		width  float64
		modify func(*Rule)
		state  ComponentState
		want   bool
	}{
		{"base rule", 400, func(*Rule) {}, ComponentState{}, true},
		{"below breakpoint", 767, func(r *Rule) { r.MinWidth = 768 }, ComponentState{}, false},
		{"at breakpoint", 768, func(r *Rule) { r.MinWidth = 768 }, ComponentState{}, true},
		{"at max width", 640, func(r *Rule) { r.MaxWidth = 640 }, ComponentState{}, false},
		{"below max width", 639, func(r *Rule) { r.MaxWidth = 640 }, ComponentState{}, true},
		{"theme mismatch", 400, func(r *Rule) { r.Theme = mo.Some("dark") }, ComponentState{}, false},
		{"theme match", 400, func(r *Rule) { r.Theme = mo.Some("light") }, ComponentState{}, true},
		{"orientation mismatch", 400, func(r *Rule) { r.Orientation = mo.Some(common.OrientationLandscape) }, ComponentState{}, false},
		{"rtl mismatch", 400, func(r *Rule) { r.RTL = mo.Some(true) }, ComponentState{}, false},
		{"ltr match", 400, func(r *Rule) { r.RTL = mo.Some(false) }, ComponentState{}, true},
		{"active not pressed", 400, func(r *Rule) { r.Active = mo.Some(true) }, ComponentState{}, false},
		{"active pressed", 400, func(r *Rule) { r.Active = mo.Some(true) }, ComponentState{Pressed: true}, true},
		{"focus", 400, func(r *Rule) { r.Focus = mo.Some(true) }, ComponentState{Focused: true}, true},
		{"disabled mismatch", 400, func(r *Rule) { r.Disabled = mo.Some(true) }, ComponentState{Focused: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRule("x", 0)
			tt.modify(&r)
			if got := r.Matches(testRuntime(tt.width), tt.state); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleOutranks(t *testing.T) {
	base := NewRule("x", 0)
	wide := NewRule("x", 1)
	wide.MinWidth = 600
	deep := NewRule("x", 2)
	deep.Complexity = 2
	important := NewRule("x", 3)
	important.ImportantProperties = []string{"color"}

	tests := []struct {
		name       string
		incumbent  *Rule
		challenger *Rule
		property   string
		want       bool
	}{
		{"equal rules fall to later", &base, &deep, "color", false},
		{"wider incumbent", &wide, &base, "color", true},
		{"deep incumbent", &deep, &base, "color", true},
		{"important incumbent", &important, &deep, "color", true},
		{"important other property", &important, &base, "padding", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.incumbent.Outranks(tt.challenger, tt.property); got != tt.want {
				t.Errorf("Outranks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStylesheetClassNames(t *testing.T) {
	s := Stylesheet{"p-10": nil, "p-2": nil, "m-1": nil, "p-1": nil}
	if got := strings.Join(s.ClassNames(), " "); got != "m-1 p-1 p-2 p-10" {
		t.Errorf("ClassNames() = %q", got)
	}
}

func TestComponentStateKey(t *testing.T) {
	seen := map[string]ComponentState{}
	for _, p := range []bool{false, true} {
		for _, f := range []bool{false, true} {
			for _, d := range []bool{false, true} {
				st := ComponentState{Pressed: p, Focused: f, Disabled: d}
				k := st.Key()
				if prev, ok := seen[k]; ok {
					t.Fatalf("Key %q used by %+v and %+v", k, prev, st)
				}
				seen[k] = st
			}
		}
	}
}

func TestScopes(t *testing.T) {
	if got := ThemeScope("dark"); got != "__uniwind-theme-dark" {
		t.Errorf("ThemeScope() = %q", got)
	}
	if got := PlatformScope(common.PlatformAndroid); got != "__uniwind-platform-android" {
		t.Errorf("PlatformScope() = %q", got)
	}
	if !IsVar("--color-red") || IsVar("color") {
		t.Error("IsVar() misclassified property")
	}
}
