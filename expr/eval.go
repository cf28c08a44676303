package expr

import (
	"math"
	"strconv"
	"strings"

	"stylewind/colors"
	"stylewind/state"
	"stylewind/style"
)

// Accessor wraps e into style accessor evaluating against rt.
func Accessor(e Expr, rt *state.Runtime) style.Accessor {
	if l, ok := e.(Lit); ok {
		return style.Const(l.Value)
	}
	return func(s style.Scope) any {
		return Eval(e, rt, s)
	}
}

// Eval computes e. Values which cannot be computed evaluate to nil.
func Eval(e Expr, rt *state.Runtime, s style.Scope) any {
	switch e := e.(type) {
	case Lit:
		return e.Value

	case Var:
		if v := s.Var(e.Name); v != nil {
			return v
		}
		if e.Fallback != nil {
			return Eval(e.Fallback, rt, s)
		}
		return nil

	case Ref:
		return evalRef(e, rt)

	case Arith:
		return evalArith(e, rt, s)

	case Call:
		return evalCall(e, rt, s)

	case Math:
		args := make([]float64, 0, len(e.Args))
		for _, a := range e.Args {
			n, ok := ToNumber(Eval(a, rt, s))
			if !ok {
				return nil
			}
			args = append(args, n)
		}
		return evalMath(e.Name, args)

	case Color:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = Format(Eval(a, rt, s))
		}
		return colors.Normalize(e.Fn + "(" + strings.Join(args, " ") + ")")

	case Func:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = Format(Eval(a, rt, s))
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"

	case Concat:
		if len(e.Parts) == 1 {
			return Eval(e.Parts[0], rt, s)
		}
		parts := make([]string, 0, len(e.Parts))
		for _, p := range e.Parts {
			if v := Format(Eval(p, rt, s)); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, e.Sep)

	case Record:
		m := make(map[string]any, len(e.Keys))
		for i, k := range e.Keys {
			if v := Eval(e.Values[i], rt, s); v != nil {
				m[k] = v
			}
		}
		return m

	case Map:
		v := Eval(e.Inner, rt, s)
		if v == nil {
			return nil
		}
		return e.Fn(v)
	}
	return nil
}

func evalRef(r Ref, rt *state.Runtime) any {
	switch r {
	case RefHairlineWidth:
		return rt.HairlineWidth
	case RefScreenWidth:
		return rt.Screen.Width
	case RefScreenHeight:
		return rt.Screen.Height
	case RefScreenMin:
		return math.Min(rt.Screen.Width, rt.Screen.Height)
	case RefScreenMax:
		return math.Max(rt.Screen.Width, rt.Screen.Height)
	case RefInsetTop:
		return rt.Insets.Top
	case RefInsetBottom:
		return rt.Insets.Bottom
	case RefInsetLeft:
		return rt.Insets.Left
	case RefInsetRight:
		return rt.Insets.Right
	}
	return nil
}

// evalArith computes arithmetic over numbers. Terms may carry one common
// unit (10% + var(--x) where --x is 5%), the unit is kept in result.
func evalArith(a Arith, rt *state.Runtime, s style.Scope) any {
	if len(a.Terms) == 0 || len(a.Ops) != len(a.Terms)-1 {
		return nil
	}
	var (
		acc  float64
		unit string
	)
	for i, t := range a.Terms {
		n, u, ok := splitUnit(Eval(t, rt, s))
		if !ok {
			return nil
		}
		if u != "" {
			if unit != "" && unit != u {
				return nil
			}
			unit = u
		}
		if i == 0 {
			acc = n
			continue
		}
		switch a.Ops[i-1] {
		case '+':
			acc += n
		case '-':
			acc -= n
		case '*':
			acc *= n
		case '/':
			acc /= n
		default:
			return nil
		}
	}
	if math.IsNaN(acc) || math.IsInf(acc, 0) {
		return nil
	}
	if unit != "" {
		return strconv.FormatFloat(acc, 'f', -1, 64) + unit
	}
	return acc
}

func evalCall(c Call, rt *state.Runtime, s style.Scope) any {
	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		args[i] = Eval(a, rt, s)
	}

	switch c.Helper {
	case HelperColorMix:
		if len(args) != 3 {
			return nil
		}
		w, ok := ToNumber(args[2])
		if !ok {
			return nil
		}
		return rt.ColorMix(Format(args[0]), Format(args[1]), w)

	case HelperCubicBezier:
		if len(args) != 4 {
			return nil
		}
		var p [4]float64
		for i, a := range args {
			n, ok := ToNumber(a)
			if !ok {
				return nil
			}
			p[i] = n
		}
		return rt.CubicBezier(p[0], p[1], p[2], p[3])

	case HelperPixelRatio, HelperFontScale:
		if len(args) != 1 {
			return nil
		}
		n, ok := ToNumber(args[0])
		if !ok {
			return nil
		}
		if c.Helper == HelperPixelRatio {
			return rt.PixelRatio(n)
		}
		return rt.FontScale(n)

	case HelperLightDark:
		if len(args) != 2 {
			return nil
		}
		return rt.LightDark(args[0], args[1])
	}
	return nil
}

func evalMath(name string, args []float64) any {
	if len(args) == 0 {
		return nil
	}
	switch name {
	case "min", "max":
		v := args[0]
		for _, a := range args[1:] {
			if name == "min" {
				v = math.Min(v, a)
			} else {
				v = math.Max(v, a)
			}
		}
		return v
	case "clamp":
		if len(args) != 3 {
			return nil
		}
		return math.Max(args[0], math.Min(args[1], args[2]))
	}
	return nil
}

// ToNumber converts evaluated value to number. Strings with px suffix are
// accepted.
func ToNumber(v any) (float64, bool) {
	n, unit, ok := splitUnit(v)
	return n, ok && unit == ""
}

// splitUnit converts evaluated value to number and unit, px is dropped.
func splitUnit(v any) (float64, string, bool) {
	switch v := v.(type) {
	case float64:
		return v, "", true
	case int:
		return float64(v), "", true
	case string:
		s := strings.TrimSpace(v)
		unit := ""
		for _, u := range []string{"%", "deg", "grad", "rad", "turn", "px"} {
			if num, found := strings.CutSuffix(s, u); found {
				s, unit = num, u
				break
			}
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, "", false
		}
		if unit == "px" {
			unit = ""
		}
		return n, unit, true
	}
	return 0, "", false
}
