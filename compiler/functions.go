package compiler

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"stylewind/colors"
	"stylewind/css"
	"stylewind/expr"
)

// FunctionKind classifies CSS functions the compiler knows about.
type FunctionKind int

const (
	FunctionUnknown FunctionKind = iota
	FunctionCalc
	FunctionCubicBezier
	FunctionMath
	FunctionLinearGradient
	FunctionColorMix
	FunctionColor
	FunctionUnsupported
	FunctionSkew
	FunctionHairlineWidth
	FunctionPixelRatio
	FunctionFontScale
	FunctionVar
	FunctionEnv
	FunctionLightDark
)

var functionKinds = map[string]FunctionKind{
	"calc":                      FunctionCalc,
	"cubic-bezier":              FunctionCubicBezier,
	"max":                       FunctionMath,
	"min":                       FunctionMath,
	"clamp":                     FunctionMath,
	"linear-gradient":           FunctionLinearGradient,
	"color-mix":                 FunctionColorMix,
	"rgb":                       FunctionColor,
	"rgba":                      FunctionColor,
	"hsl":                       FunctionColor,
	"hsla":                      FunctionColor,
	"hwb":                       FunctionColor,
	"lab":                       FunctionColor,
	"lch":                       FunctionColor,
	"oklab":                     FunctionColor,
	"oklch":                     FunctionColor,
	"color":                     FunctionColor,
	"srgb":                      FunctionColor,
	"blur":                      FunctionUnsupported,
	"brightness":                FunctionUnsupported,
	"contrast":                  FunctionUnsupported,
	"drop-shadow":               FunctionUnsupported,
	"grayscale":                 FunctionUnsupported,
	"hue-rotate":                FunctionUnsupported,
	"invert":                    FunctionUnsupported,
	"opacity":                   FunctionUnsupported,
	"saturate":                  FunctionUnsupported,
	"sepia":                     FunctionUnsupported,
	"radial-gradient":           FunctionUnsupported,
	"conic-gradient":            FunctionUnsupported,
	"repeating-linear-gradient": FunctionUnsupported,
	"repeating-radial-gradient": FunctionUnsupported,
	"repeating-conic-gradient":  FunctionUnsupported,
	"skewx":                     FunctionSkew,
	"skewy":                     FunctionSkew,
	"hairlinewidth":             FunctionHairlineWidth,
	"pixelratio":                FunctionPixelRatio,
	"fontscale":                 FunctionFontScale,
	"var":                       FunctionVar,
	"env":                       FunctionEnv,
	"light-dark":                FunctionLightDark,
}

// KindOf returns kind of the named function, names are case insensitive.
func KindOf(name string) FunctionKind {
	return functionKinds[strings.ToLower(name)]
}

var safeAreaRefs = map[string]expr.Ref{
	"safe-area-inset-top":    expr.RefInsetTop,
	"safe-area-inset-bottom": expr.RefInsetBottom,
	"safe-area-inset-left":   expr.RefInsetLeft,
	"safe-area-inset-right":  expr.RefInsetRight,
}

// ProcessFunction compiles single function node.
func (c *Compiler) ProcessFunction(fn css.Node) expr.Expr {
	switch KindOf(fn.Text) {
	case FunctionCalc:
		return c.ProcessCalc(ParseCalc(fn.Args))

	case FunctionCubicBezier:
		return expr.Call{Helper: expr.HelperCubicBezier, Args: c.processArgs(fn.Args)}

	case FunctionMath:
		return c.ProcessMathFunction(strings.ToLower(fn.Text), css.SplitCommas(fn.Args))

	case FunctionLinearGradient:
		return expr.Func{Name: fn.Text, Args: c.processArgs(fn.Args)}

	case FunctionColorMix:
		return c.ProcessColorMix(fn)

	case FunctionColor:
		return c.processColor(fn)

	case FunctionUnsupported:
		return expr.Empty()

	case FunctionSkew:
		args := c.processArgs(fn.Args)
		if len(args) > 0 {
			args = args[:1]
		}
		return expr.Func{Name: fn.Text, Args: args}

	case FunctionHairlineWidth:
		return expr.RefHairlineWidth

	case FunctionPixelRatio:
		return expr.Call{Helper: expr.HelperPixelRatio, Args: c.singleArg(fn.Args)}

	case FunctionFontScale:
		return expr.Call{Helper: expr.HelperFontScale, Args: c.singleArg(fn.Args)}

	case FunctionVar:
		return c.processVar(fn)

	case FunctionEnv:
		groups := css.SplitCommas(fn.Args)
		if len(groups) > 0 && len(groups[0]) == 1 {
			if ref, ok := safeAreaRefs[strings.ToLower(groups[0][0].Text)]; ok {
				return ref
			}
		}
		if len(groups) > 1 {
			return c.ProcessValue(groups[1])
		}
		c.diag("Unsupported env() variable", fn.String())
		return expr.Num(0)

	case FunctionLightDark:
		args := c.processArgs(fn.Args)
		if len(args) != 2 {
			c.diag("light-dark() expects two colors", fn.String())
			return expr.Empty()
		}
		return expr.Call{Helper: expr.HelperLightDark, Args: args}
	}

	c.diag("Unsupported function", fn.String(), zap.String("function", fn.Text))
	return expr.Str(fn.Text)
}

// processArgs compiles comma separated function arguments.
func (c *Compiler) processArgs(nodes []css.Node) []expr.Expr {
	groups := css.SplitCommas(nodes)
	args := make([]expr.Expr, 0, len(groups))
	for _, g := range groups {
		args = append(args, c.ProcessValue(g))
	}
	return args
}

func (c *Compiler) singleArg(nodes []css.Node) []expr.Expr {
	if len(nodes) == 0 {
		return []expr.Expr{expr.Num(1)}
	}
	return []expr.Expr{c.ProcessValue(nodes)}
}

func (c *Compiler) processVar(fn css.Node) expr.Expr {
	groups := css.SplitCommas(fn.Args)
	if len(groups) == 0 || len(groups[0]) != 1 || !strings.HasPrefix(groups[0][0].Text, "--") {
		c.diag("Invalid var() reference", fn.String())
		return expr.Empty()
	}
	v := expr.Var{Name: groups[0][0].Text}
	if len(groups) > 1 {
		// fallback may itself contain commas
		rest := fn.Args[len(groups[0])+1:]
		v.Fallback = c.ProcessValue(rest)
	}
	return v
}

func (c *Compiler) processColor(fn css.Node) expr.Expr {
	var args []expr.Expr
	for _, n := range fn.Args {
		if n.Kind == css.NodeComma {
			continue
		}
		args = append(args, c.colorArg(n))
	}
	color := expr.Color{Fn: strings.ToLower(fn.Text), Args: args}
	if !expr.IsConst(color) {
		return color
	}
	text := color.Fn + "(" + css.JoinNodes(fn.Args) + ")"
	normalized := colors.Normalize(text)
	if normalized == text {
		c.diag("Unable to parse color", text)
	}
	return expr.Str(normalized)
}

// colorArg keeps color channels as written, unit conversions do not apply
// to them.
func (c *Compiler) colorArg(n css.Node) expr.Expr {
	switch n.Kind {
	case css.NodeNumber:
		return expr.Num(n.Num)
	case css.NodeFunction:
		return c.ProcessFunction(n)
	}
	return expr.Str(n.String())
}

// ProcessMathFunction compiles min(), max() and clamp() into numeric runtime
// call. Every argument is calc expression.
func (c *Compiler) ProcessMathFunction(name string, args [][]css.Node) expr.Expr {
	m := expr.Math{Name: name}
	for _, a := range args {
		m.Args = append(m.Args, c.ProcessCalc(ParseCalc(a)))
	}
	if name == "clamp" && len(m.Args) != 3 {
		c.diag("clamp() expects three arguments", m.String())
	}
	return m
}

type colorToken struct {
	node css.Node
	e    expr.Expr
}

func isColorToken(t colorToken) bool {
	if v, ok := t.e.(expr.Var); ok {
		return strings.HasPrefix(v.Name, "--color-")
	}
	if l, ok := t.e.(expr.Lit); ok {
		s, _ := l.Value.(string)
		return strings.HasPrefix(s, "#")
	}
	return false
}

// ProcessColorMix compiles color-mix(). First color is the first hex or
// --color- token, mix color is the last such token and weight is the first
// percentage.
func (c *Compiler) ProcessColorMix(fn css.Node) expr.Expr {
	var tokens []colorToken
	for _, n := range fn.Args {
		if n.Kind == css.NodeComma {
			continue
		}
		tokens = append(tokens, colorToken{node: n, e: c.processNode(n)})
	}

	var (
		color, mixColor expr.Expr
		weight          = 0.5
		haveWeight      bool
	)
	for _, t := range tokens {
		if color == nil && isColorToken(t) {
			color = t.e
		}
		if !haveWeight && t.node.Kind == css.NodePercentage {
			weight, haveWeight = t.node.Num/100, true
		}
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if isColorToken(tokens[i]) {
			mixColor = tokens[i].e
			break
		}
	}
	if color == nil {
		c.diag("Unable to find colors in color-mix()", fn.String())
		return expr.Empty()
	}
	return expr.Call{Helper: expr.HelperColorMix, Args: []expr.Expr{color, mixColor, expr.Num(weight)}}
}

// ProcessCalc compiles calc() tree. Constant sums and products are folded at
// compile time, anything referencing runtime values is kept as arithmetic.
func (c *Compiler) ProcessCalc(node CalcNode) expr.Expr {
	e, _ := c.calcTerm(node)
	return e
}

// calcTerm returns compiled node together with its text for folding, where
// dimensions keep their units.
func (c *Compiler) calcTerm(node CalcNode) (expr.Expr, string) {
	switch node.Kind {
	case CalcNumber:
		return expr.Num(node.Value.Num), css.FormatNumber(node.Value.Num)

	case CalcValue, CalcFunction:
		e := c.processNode(node.Value)
		if node.Value.Kind == css.NodeDimension {
			if n, ok := e.(expr.Lit); ok {
				if f, ok := n.Value.(float64); ok {
					return e, css.FormatNumber(f) + "px"
				}
			}
		}
		return e, e.String()

	case CalcSum, CalcProduct:
		terms := make([]expr.Expr, 0, len(node.Terms))
		var sb strings.Builder
		for i, t := range node.Terms {
			e, text := c.calcTerm(t)
			terms = append(terms, e)
			if i > 0 {
				sb.WriteString(" " + string(node.Ops[i-1]) + " ")
			}
			if t.Kind == CalcSum || t.Kind == CalcProduct {
				text = "(" + text + ")"
			}
			sb.WriteString(text)
		}
		text := sb.String()
		arith := expr.Arith{Terms: terms, Ops: node.Ops}
		if !expr.IsConst(arith) {
			return arith, text
		}
		result, ok := c.TryEval(text)
		if !ok {
			return expr.Str(text), text
		}
		if f, err := strconv.ParseFloat(result, 64); err == nil {
			return expr.Num(f), css.FormatNumber(f) + "px"
		}
		return expr.Str(result), result
	}

	c.diag("Unsupported calc() operand", node.Value.String())
	return expr.Empty(), ""
}

var (
	numberWithUnit = regexp.MustCompile(`(\d*\.?\d+(?:[eE][+-]?\d+)?)(%|[a-zA-Z]+)`)
	arithmetic     = regexp.MustCompile(`^[\d\s.eE+\-*/()]+$`)
	foldableUnits  = map[string]bool{"%": true, "deg": true, "rad": true, "grad": true, "turn": true, "px": true}
)

// TryEval folds constant arithmetic. Units are stripped before evaluation and
// attached back to the result; px results become plain numbers. Strings mixing
// units or referencing anything else are returned unchanged with false.
func (c *Compiler) TryEval(s string) (string, bool) {
	var unit string
	for _, m := range numberWithUnit.FindAllStringSubmatch(s, -1) {
		u := strings.ToLower(m[2])
		if !foldableUnits[u] {
			return s, false
		}
		if unit != "" && unit != u {
			c.diag("Mixing units in calc() is not supported", s)
			return s, false
		}
		unit = u
	}
	stripped := numberWithUnit.ReplaceAllString(s, "$1")
	if !arithmetic.MatchString(stripped) {
		return s, false
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if err := L.DoString("return " + stripped); err != nil {
		c.diag("Invalid calc() expression", s, zap.Error(err))
		return s, false
	}
	n, ok := L.Get(-1).(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		c.diag("Invalid calc() result", s)
		return s, false
	}
	if unit == "px" {
		unit = ""
	}
	return css.FormatNumber(float64(n)) + unit, true
}
