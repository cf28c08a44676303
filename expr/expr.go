// Package expr describes compiled values which can only be computed at
// runtime: custom property references, screen relative units, runtime helper
// calls and arithmetic over them.
package expr

import (
	"strconv"
	"strings"

	"stylewind/common"
)

// Expr is compiled value. String renders it as target runtime expression
// text, which is what rule dumps show.
type Expr interface {
	String() string
}

// Lit is constant value: float64, string or bool.
type Lit struct {
	Value any
}

func Num(v float64) Lit { return Lit{Value: v} }
func Str(s string) Lit { return Lit{Value: s} }
func Empty() Lit { return Lit{Value: ""} }

func (l Lit) String() string {
	return Format(l.Value)
}

// Var is custom property reference with optional fallback.
type Var struct {
	Name     string
	Fallback Expr
}

func (v Var) String() string {
	if v.Fallback == nil {
		return "var(" + v.Name + ")"
	}
	return "var(" + v.Name + ", " + v.Fallback.String() + ")"
}

// Ref references runtime environment value.
type Ref int

const (
	RefHairlineWidth Ref = iota
	RefScreenWidth
	RefScreenHeight
	RefScreenMin
	RefScreenMax
	RefInsetTop
	RefInsetBottom
	RefInsetLeft
	RefInsetRight
)

var refNames = [...]string{
	RefHairlineWidth: "rt.hairlineWidth",
	RefScreenWidth:   "rt.screen.width",
	RefScreenHeight:  "rt.screen.height",
	RefScreenMin:     "Math.min( rt.screen.width, rt.screen.height )",
	RefScreenMax:     "Math.max( rt.screen.width, rt.screen.height )",
	RefInsetTop:      "rt.insets.top",
	RefInsetBottom:   "rt.insets.bottom",
	RefInsetLeft:     "rt.insets.left",
	RefInsetRight:    "rt.insets.right",
}

func (r Ref) String() string {
	if r >= 0 && int(r) < len(refNames) {
		return refNames[r]
	}
	return "rt.unknown"
}

// Arith applies Ops left to right, Ops[i] sits between Terms[i] and
// Terms[i+1]. Precedence is expressed by nesting.
type Arith struct {
	Terms []Expr
	Ops   []byte
}

// Mul is shortcut for product of two values.
func Mul(a, b Expr) Arith {
	return Arith{Terms: []Expr{a, b}, Ops: []byte{'*'}}
}

func (a Arith) String() string {
	var sb strings.Builder
	for i, t := range a.Terms {
		if i > 0 {
			sb.WriteByte(' ')
			sb.WriteByte(a.Ops[i-1])
			sb.WriteByte(' ')
		}
		if _, nested := t.(Arith); nested {
			sb.WriteString("(" + t.String() + ")")
		} else {
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

// Helper names runtime helper function.
type Helper int

const (
	HelperColorMix Helper = iota
	HelperCubicBezier
	HelperPixelRatio
	HelperFontScale
	HelperLightDark
)

var helperNames = [...]string{
	HelperColorMix:    "rt.colorMix",
	HelperCubicBezier: "rt.cubicBezier",
	HelperPixelRatio:  "rt.pixelRatio",
	HelperFontScale:   "rt.fontScale",
	HelperLightDark:   "rt.lightDark",
}

// Call invokes runtime helper.
type Call struct {
	Helper Helper
	Args   []Expr
}

func (c Call) String() string {
	return helperNames[c.Helper] + "( " + joinExprs(c.Args, ", ") + " )"
}

// Math is numeric function: min, max or clamp.
type Math struct {
	Name string
	Args []Expr
}

func (m Math) String() string {
	return "Math." + m.Name + "( " + joinExprs(m.Args, " , ") + " )"
}

// Color is color constructor whose arguments are only known at runtime. It
// evaluates to normalized color.
type Color struct {
	Fn   string
	Args []Expr
}

func (c Color) String() string {
	return c.Fn + "(" + joinExprs(c.Args, " ") + ")"
}

// Func renders function call text, e.g. skewX(10deg).
type Func struct {
	Name string
	Args []Expr
}

func (f Func) String() string {
	return f.Name + "(" + joinExprs(f.Args, ", ") + ")"
}

// Concat joins evaluated parts with separator. Single part evaluates to the
// part value itself.
type Concat struct {
	Parts []Expr
	Sep   string
}

func (c Concat) String() string {
	return joinExprs(c.Parts, c.Sep)
}

// Record is structured value evaluating to map.
type Record struct {
	Keys   []string
	Values []Expr
}

func (r Record) String() string {
	parts := make([]string, len(r.Keys))
	for i, k := range r.Keys {
		parts[i] = k + ": " + r.Values[i].String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Map post-processes inner value.
type Map struct {
	Name  string
	Inner Expr
	Fn    func(any) any
}

func (m Map) String() string {
	return m.Name + "(" + m.Inner.String() + ")"
}

func joinExprs(list []Expr, sep string) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

// Format renders evaluated value as text.
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = Format(p)
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// IsConst reports whether e has no runtime inputs.
func IsConst(e Expr) bool {
	switch e := e.(type) {
	case Lit:
		return true
	case Arith:
		return allConst(e.Terms)
	case Math:
		return allConst(e.Args)
	case Func:
		return allConst(e.Args)
	case Concat:
		return allConst(e.Parts)
	case Record:
		return allConst(e.Values)
	case Map:
		return IsConst(e.Inner)
	}
	return false
}

func allConst(list []Expr) bool {
	for _, e := range list {
		if !IsConst(e) {
			return false
		}
	}
	return true
}

// Children returns direct sub-expressions.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case Var:
		if e.Fallback != nil {
			return []Expr{e.Fallback}
		}
	case Arith:
		return e.Terms
	case Call:
		return e.Args
	case Math:
		return e.Args
	case Color:
		return e.Args
	case Func:
		return e.Args
	case Concat:
		return e.Parts
	case Record:
		return e.Values
	case Map:
		return []Expr{e.Inner}
	}
	return nil
}

// VarNames lists custom properties referenced by e, including those in
// fallbacks.
func VarNames(e Expr) []string {
	var names []string
	walk(e, func(e Expr) {
		if v, ok := e.(Var); ok {
			names = append(names, v.Name)
		}
	})
	return names
}

// Deps lists environment channels e reads.
func Deps(e Expr) []common.Dependency {
	var deps []common.Dependency
	walk(e, func(e Expr) {
		switch e := e.(type) {
		case Ref:
			switch e {
			case RefScreenWidth, RefScreenHeight, RefScreenMin, RefScreenMax:
				deps = append(deps, common.DependencyDimensions)
			case RefInsetTop, RefInsetBottom, RefInsetLeft, RefInsetRight:
				deps = append(deps, common.DependencyInsets)
			}
		case Call:
			switch e.Helper {
			case HelperFontScale:
				deps = append(deps, common.DependencyFontScale)
			case HelperLightDark:
				deps = append(deps, common.DependencyColorScheme)
			}
		}
	})
	return deps
}

func walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range Children(e) {
		walk(c, fn)
	}
}
