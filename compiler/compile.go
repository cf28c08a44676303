package compiler

import (
	"errors"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"stylewind/common"
	"stylewind/css"
	"stylewind/expr"
	"stylewind/remap"
	"stylewind/style"
)

// guards are conditions collected from enclosing media queries.
type guards struct {
	minWidth    float64
	maxWidth    float64
	theme       mo.Option[string]
	orientation mo.Option[common.Orientation]
	rtl         mo.Option[bool]
	platform    mo.Option[common.Platform]
	qualifiers  int
	deps        []common.Dependency
}

// Compile parses style source and builds rule table. Unsupported constructs
// are reported as diagnostics and skipped, error is only returned when source
// cannot be read as text.
func (c *Compiler) Compile(src []byte) (*Output, error) {
	if !utf8.Valid(src) {
		return nil, errors.New("style source is not valid UTF-8")
	}

	sheet := css.NewParser(c.log).Parse(src, "style source")
	for _, w := range sheet.Warnings {
		c.diag("Skipped style source", w)
	}

	out := newOutput(c.rem)

	// variables first, rule dependencies need to know which ones are themed
	sheet.Walk(func(rule *css.Rule, media []css.MediaQuery) {
		if !rule.Selector.Root {
			return
		}
		g, ok := c.mediaGuards(media)
		if !ok {
			return
		}
		c.collectVars(out, rule, g)
	})
	out.resolveVarDeps()

	sheet.Walk(func(rule *css.Rule, media []css.MediaQuery) {
		if rule.Selector.Root {
			return
		}
		g, ok := c.mediaGuards(media)
		if !ok {
			return
		}
		c.buildRule(out, rule, g)
	})

	c.log.Debug("Style source compiled",
		zap.Int("classes", len(out.classes)),
		zap.Int("vars", len(out.vars)),
		zap.Int("scopes", len(out.scoped)),
		zap.Int("diagnostics", len(c.diags)))
	return out, nil
}

func (c *Compiler) mediaGuards(media []css.MediaQuery) (guards, bool) {
	g := guards{maxWidth: math.Inf(1)}
	for _, q := range media {
		if q.Unsupported {
			c.diag("Unsupported media query", q.Raw)
			return g, false
		}
		for _, f := range q.Features {
			switch f.Name {
			case "min-width":
				v, ok := c.mediaLength(f.Value)
				if !ok {
					return g, false
				}
				g.minWidth = math.Max(g.minWidth, v)
				g.deps = append(g.deps, common.DependencyDimensions)

			case "max-width":
				v, ok := c.mediaLength(f.Value)
				if !ok {
					return g, false
				}
				g.maxWidth = math.Min(g.maxWidth, v)
				g.deps = append(g.deps, common.DependencyDimensions)

			case "orientation":
				o, err := common.ParseOrientation(f.Value)
				if err != nil {
					c.diag("Unsupported orientation", q.Raw)
					return g, false
				}
				g.orientation = mo.Some(o)
				g.deps = append(g.deps, common.DependencyOrientation)

			case "prefers-color-scheme", "theme":
				if f.Name == "theme" && len(c.themes) > 0 && !slices.Contains(c.themes, f.Value) {
					c.diag("Unknown theme", f.Value, zap.String("query", q.Raw))
				}
				g.theme = mo.Some(f.Value)
				g.deps = append(g.deps, common.DependencyTheme)

			case "direction", "dir":
				if f.Value != "rtl" && f.Value != "ltr" {
					c.diag("Unsupported direction", q.Raw)
					return g, false
				}
				g.rtl = mo.Some(f.Value == "rtl")
				g.deps = append(g.deps, common.DependencyRtl)

			case "platform":
				p := common.Platform(f.Value)
				if !p.Matches(c.platform) {
					return g, false
				}
				g.platform = mo.Some(p)

			default:
				c.diag("Unsupported media feature", q.Raw, zap.String("feature", f.Name))
				return g, false
			}
			g.qualifiers++
		}
	}
	return g, true
}

// mediaLength converts media query length into density independent pixels.
func (c *Compiler) mediaLength(value string) (float64, bool) {
	nodes := css.ParseValue(value)
	if len(nodes) == 1 {
		switch n := nodes[0]; {
		case n.Kind == css.NodeNumber:
			return n.Num, true
		case n.Kind == css.NodeDimension && n.Unit == "px":
			return n.Num, true
		case n.Kind == css.NodeDimension && (n.Unit == "rem" || n.Unit == "em"):
			return n.Num * c.rem, true
		}
	}
	c.diag("Unsupported media query length", value)
	return 0, false
}

func (c *Compiler) collectVars(out *Output, rule *css.Rule, g guards) {
	scope := ""
	switch {
	case g.theme.IsPresent() && g.platform.IsPresent():
		c.diag("Variables scoped by both theme and platform are not supported", rule.Selector.Raw)
		return
	case g.theme.IsPresent():
		scope = style.ThemeScope(g.theme.MustGet())
	case g.platform.IsPresent():
		scope = style.PlatformScope(g.platform.MustGet())
	}
	if g.minWidth > 0 || !math.IsInf(g.maxWidth, 1) || g.orientation.IsPresent() || g.rtl.IsPresent() {
		c.diag("Conditional variables are only supported for themes and platforms", rule.Selector.Raw)
		return
	}

	for _, d := range rule.Declarations {
		if !d.IsCustom() {
			c.log.Debug("Ignoring non custom property on :root", zap.String("property", d.Property))
			continue
		}
		out.addVar(scope, d.Property, c.ProcessValue(css.ParseValue(d.Value)))
	}
}

func (c *Compiler) buildRule(out *Output, rule *css.Rule, g guards) {
	sel := rule.Selector
	r := style.NewRule(sel.Class, out.nextIndex(sel.Class))
	r.MinWidth, r.MaxWidth = g.minWidth, g.maxWidth
	r.Theme, r.Orientation, r.RTL = g.theme, g.orientation, g.rtl
	deps := slices.Clone(g.deps)

	for _, p := range sel.Pseudo {
		switch p {
		case css.PseudoActive:
			r.Active = mo.Some(true)
		case css.PseudoFocus:
			r.Focus = mo.Some(true)
		case css.PseudoDisabled:
			r.Disabled = mo.Some(true)
		}
	}
	if sel.Dir != "" {
		r.RTL = mo.Some(sel.Dir == "rtl")
		deps = append(deps, common.DependencyRtl)
	}
	r.Complexity = g.qualifiers + sel.Qualifiers()

	var entries []compiledEntry
	for _, d := range rule.Declarations {
		var v remap.Value
		if d.IsCustom() {
			v = remap.Scalar{Expr: c.ProcessValue(css.ParseValue(d.Value))}
		} else {
			v = c.shapeValue(d.Property, css.ParseValue(d.Value))
		}
		for _, p := range remap.CSSToHost(d.Property, v) {
			entries = append(entries, compiledEntry{property: p.Property, value: p.Value})
			deps = append(deps, out.exprDeps(p.Value)...)
			if d.Important {
				r.ImportantProperties = append(r.ImportantProperties, p.Property)
			}
		}
	}
	if len(entries) == 0 {
		return
	}
	r.Dependencies = sortDeps(deps)
	r.ImportantProperties = lo.Uniq(r.ImportantProperties)
	out.addRule(compiledRule{rule: r, entries: entries})
}

func sortDeps(deps []common.Dependency) []common.Dependency {
	deps = lo.Uniq(deps)
	slices.Sort(deps)
	return deps
}

// varDeps returns dependencies of variable, following references. Only
// outermost call caches its result: inside a reference cycle variables
// further up the chain are cut off and their dependencies would be missing.
func (o *Output) varDeps(name string, visiting map[string]bool) []common.Dependency {
	if deps, ok := o.varDepCache[name]; ok {
		return deps
	}
	if visiting[name] {
		return nil
	}
	outermost := len(visiting) == 0
	visiting[name] = true
	defer delete(visiting, name)

	var deps []common.Dependency
	if o.themed[name] {
		deps = append(deps, common.DependencyTheme)
	}
	exprs := o.definitions(name)
	for _, e := range exprs {
		deps = append(deps, expr.Deps(e)...)
		for _, ref := range expr.VarNames(e) {
			deps = append(deps, o.varDeps(ref, visiting)...)
		}
	}
	deps = sortDeps(deps)
	if outermost {
		o.varDepCache[name] = deps
	}
	return deps
}

// resolveVarDeps precomputes dependencies of every known variable.
func (o *Output) resolveVarDeps() {
	for _, e := range o.vars {
		o.varDeps(e.property, map[string]bool{})
	}
	for _, entries := range o.scoped {
		for _, e := range entries {
			o.varDeps(e.property, map[string]bool{})
		}
	}
}

func (o *Output) exprDeps(e expr.Expr) []common.Dependency {
	deps := expr.Deps(e)
	for _, name := range expr.VarNames(e) {
		if name == remap.EmVar {
			continue
		}
		deps = append(deps, o.varDeps(name, map[string]bool{})...)
	}
	return deps
}

func isThemeScope(scope string) bool {
	return strings.HasPrefix(scope, style.ThemeScope(""))
}
