// Package style holds compiled rule table and values produced by cascade
// resolution.
package style

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/samber/mo"

	"stylewind/common"
	"stylewind/state"
)

// VarPrefix marks custom properties.
const VarPrefix = "--"

// IsVar reports whether property is a custom property.
func IsVar(property string) bool {
	return strings.HasPrefix(property, VarPrefix)
}

// Accessor lazily produces property value. It must be a pure function of
// variable scope.
type Accessor func(Scope) any

// Const returns accessor which always yields v.
func Const(v any) Accessor {
	return func(Scope) any { return v }
}

// Entry is one host property of a rule with its lazily computed value.
type Entry struct {
	Property string
	Value    Accessor
}

// Rule is one conditional declaration block of a single class.
type Rule struct {
	ClassName string
	Index     int
	Entries   []Entry

	// Breakpoint, inclusive MinWidth and exclusive MaxWidth.
	MinWidth float64
	MaxWidth float64

	Theme       mo.Option[string]
	Orientation mo.Option[common.Orientation]
	RTL         mo.Option[bool]
	Active      mo.Option[bool]
	Focus       mo.Option[bool]
	Disabled    mo.Option[bool]

	Dependencies        []common.Dependency
	ImportantProperties []string
	Complexity          int
}

// NewRule returns unguarded rule.
func NewRule(className string, index int) Rule {
	return Rule{
		ClassName:   className,
		Index:       index,
		MaxWidth:    math.Inf(1),
		Theme:       mo.None[string](),
		Orientation: mo.None[common.Orientation](),
		RTL:         mo.None[bool](),
		Active:      mo.None[bool](),
		Focus:       mo.None[bool](),
		Disabled:    mo.None[bool](),
	}
}

// Matches tests rule guards against environment and component state.
func (r *Rule) Matches(rt *state.Runtime, st ComponentState) bool {
	if w := rt.Screen.Width; r.MinWidth > w || w >= r.MaxWidth {
		return false
	}
	if v, ok := r.Theme.Get(); ok && v != rt.ThemeName {
		return false
	}
	if v, ok := r.Orientation.Get(); ok && v != rt.Orientation {
		return false
	}
	if v, ok := r.RTL.Get(); ok && v != rt.RTL {
		return false
	}
	if v, ok := r.Active.Get(); ok && v != st.Pressed {
		return false
	}
	if v, ok := r.Focus.Get(); ok && v != st.Focused {
		return false
	}
	if v, ok := r.Disabled.Get(); ok && v != st.Disabled {
		return false
	}
	return true
}

// IsImportant reports whether rule boosts property.
func (r *Rule) IsImportant(property string) bool {
	return slices.Contains(r.ImportantProperties, property)
}

// Outranks reports whether incumbent winner for property keeps it against
// challenger. Ties go to challenger, so later declarations win.
func (r *Rule) Outranks(challenger *Rule, property string) bool {
	return r.MinWidth > challenger.MinWidth ||
		r.Complexity > challenger.Complexity ||
		r.IsImportant(property)
}

// Stylesheet maps class name to its rules in declaration order.
type Stylesheet map[string][]Rule

// ClassNames returns class names in natural order.
func (s Stylesheet) ClassNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// ComponentState is caller supplied interaction state.
type ComponentState struct {
	Pressed  bool
	Focused  bool
	Disabled bool
}

// Key encodes state for use in cache keys.
func (s ComponentState) Key() string {
	var b [3]byte
	for i, v := range []bool{s.Disabled, s.Focused, s.Pressed} {
		b[i] = '0'
		if v {
			b[i] = '1'
		}
	}
	return string(b[:])
}

// Result is resolved style. It is never modified after being produced.
type Result struct {
	Styles       map[string]any
	Dependencies []common.Dependency
}

// EmptyResult is returned for empty class names.
func EmptyResult() *Result {
	return &Result{Styles: map[string]any{}, Dependencies: []common.Dependency{}}
}

// Generated is what build pipeline hands to the engine.
type Generated struct {
	Stylesheet Stylesheet
	Vars       Vars
	// ScopedVars are keyed by ThemeScope and PlatformScope names.
	ScopedVars map[string]Vars
}

// GenerateFunc produces rule table for given runtime. Accessors may keep
// runtime pointer and read it during evaluation.
type GenerateFunc func(rt *state.Runtime) Generated

const (
	themeMarker    = "__uniwind-theme-"
	platformMarker = "__uniwind-platform-"
)

// ThemeScope names scoped variables seeded when theme is active.
func ThemeScope(theme string) string {
	return themeMarker + theme
}

// PlatformScope names scoped variables seeded on platform p.
func PlatformScope(p common.Platform) string {
	return platformMarker + string(p)
}
