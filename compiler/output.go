package compiler

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/samber/lo"

	"stylewind/common"
	"stylewind/expr"
	"stylewind/remap"
	"stylewind/state"
	"stylewind/style"
	"stylewind/utils/debug"
)

type compiledEntry struct {
	property string
	value    expr.Expr
}

type compiledRule struct {
	rule    style.Rule // entries are bound to runtime by Generate
	entries []compiledEntry
}

// Output is compiled rule table. It is immutable once Compile returns and may
// be used to generate stylesheets for any number of runtimes.
type Output struct {
	rem     float64
	classes map[string][]compiledRule
	vars    []compiledEntry
	scoped  map[string][]compiledEntry

	themed      map[string]bool
	varDepCache map[string][]common.Dependency
}

func newOutput(rem float64) *Output {
	return &Output{
		rem:         rem,
		classes:     make(map[string][]compiledRule),
		scoped:      make(map[string][]compiledEntry),
		themed:      make(map[string]bool),
		varDepCache: make(map[string][]common.Dependency),
	}
}

func (o *Output) addVar(scope, name string, value expr.Expr) {
	e := compiledEntry{property: name, value: value}
	if scope == "" {
		o.vars = append(o.vars, e)
		return
	}
	o.scoped[scope] = append(o.scoped[scope], e)
	if isThemeScope(scope) {
		o.themed[name] = true
	}
}

// definitions returns every compiled value of variable across scopes.
func (o *Output) definitions(name string) []expr.Expr {
	var list []expr.Expr
	for _, e := range o.vars {
		if e.property == name {
			list = append(list, e.value)
		}
	}
	for _, entries := range o.scoped {
		for _, e := range entries {
			if e.property == name {
				list = append(list, e.value)
			}
		}
	}
	return list
}

func (o *Output) nextIndex(class string) int {
	return len(o.classes[class])
}

func (o *Output) addRule(r compiledRule) {
	o.classes[r.rule.ClassName] = append(o.classes[r.rule.ClassName], r)
}

// ClassNames returns compiled class names in natural order.
func (o *Output) ClassNames() []string {
	names := lo.Keys(o.classes)
	sort.Sort(natural.StringSlice(names))
	return names
}

// Scopes returns names of scoped variable sets in natural order.
func (o *Output) Scopes() []string {
	names := lo.Keys(o.scoped)
	sort.Sort(natural.StringSlice(names))
	return names
}

// Generate binds compiled rule table to runtime. It satisfies
// style.GenerateFunc.
func (o *Output) Generate(rt *state.Runtime) style.Generated {
	sheet := make(style.Stylesheet, len(o.classes))
	for class, rules := range o.classes {
		list := make([]style.Rule, len(rules))
		for i, cr := range rules {
			r := cr.rule
			r.Entries = make([]style.Entry, len(cr.entries))
			for j, e := range cr.entries {
				r.Entries[j] = style.Entry{Property: e.property, Value: expr.Accessor(e.value, rt)}
			}
			list[i] = r
		}
		sheet[class] = list
	}

	vars := style.Vars{remap.EmVar: style.Const(o.rem)}
	bindVars(vars, o.vars, rt)

	scoped := make(map[string]style.Vars, len(o.scoped))
	for scope, entries := range o.scoped {
		v := make(style.Vars, len(entries))
		bindVars(v, entries, rt)
		scoped[scope] = v
	}
	return style.Generated{Stylesheet: sheet, Vars: vars, ScopedVars: scoped}
}

func bindVars(vars style.Vars, entries []compiledEntry, rt *state.Runtime) {
	for _, e := range entries {
		vars[e.property] = expr.Accessor(e.value, rt)
	}
}

// Dump renders compiled rule table as indented text.
func (o *Output) Dump() string {
	tw := debug.NewTreeWriter()

	tw.Line(0, "vars")
	for _, e := range o.vars {
		tw.Entry(1, e.property, e.value.String())
	}
	for _, scope := range o.Scopes() {
		tw.Line(0, "scope %s", scope)
		for _, e := range o.scoped[scope] {
			tw.Entry(1, e.property, e.value.String())
		}
	}
	for _, class := range o.ClassNames() {
		tw.Line(0, "class %s", class)
		for _, cr := range o.classes[class] {
			tw.Line(1, "rule #%d%s", cr.rule.Index, describeRule(&cr.rule))
			for _, e := range cr.entries {
				tw.Entry(2, e.property, e.value.String())
			}
		}
	}
	return tw.String()
}

func describeRule(r *style.Rule) string {
	var parts []string
	if r.MinWidth > 0 {
		parts = append(parts, fmt.Sprintf("min-width=%g", r.MinWidth))
	}
	if !math.IsInf(r.MaxWidth, 1) {
		parts = append(parts, fmt.Sprintf("max-width=%g", r.MaxWidth))
	}
	if v, ok := r.Theme.Get(); ok {
		parts = append(parts, "theme="+v)
	}
	if v, ok := r.Orientation.Get(); ok {
		parts = append(parts, "orientation="+v.String())
	}
	if v, ok := r.RTL.Get(); ok {
		parts = append(parts, fmt.Sprintf("rtl=%t", v))
	}
	if _, ok := r.Active.Get(); ok {
		parts = append(parts, "active")
	}
	if _, ok := r.Focus.Get(); ok {
		parts = append(parts, "focus")
	}
	if _, ok := r.Disabled.Get(); ok {
		parts = append(parts, "disabled")
	}
	if r.Complexity > 0 {
		parts = append(parts, fmt.Sprintf("complexity=%d", r.Complexity))
	}
	if len(r.ImportantProperties) > 0 {
		parts = append(parts, "important="+strings.Join(r.ImportantProperties, ","))
	}
	if len(r.Dependencies) > 0 {
		parts = append(parts, "deps="+strings.Join(lo.Map(r.Dependencies, func(d common.Dependency, _ int) string {
			return d.String()
		}), ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
