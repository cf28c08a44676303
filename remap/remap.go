package remap

import (
	"strconv"
	"strings"

	"stylewind/expr"
)

// EmVar carries font size of the element for em relative values.
const EmVar = "--uniwind-em"

type propertyKind int

const (
	kindDefault propertyKind = iota
	kindResizeMode
	kindTransitionProperty
	kindObjectOrScalar
	kindPercentToFloat
	kindDropped
	kindBackgroundImage
	kindTranslate
	kindScale
	kindTransform
	kindFontSize
	kindBorderInlineWidth
	kindBorderBlockWidth
	kindBorderStyle
	kindTransformOrigin
	kindFontVariant
	kindInset
)

var propertyKinds = map[string]propertyKind{
	"backgroundSize":     kindResizeMode,
	"transitionProperty": kindTransitionProperty,
	"flex":               kindObjectOrScalar,
	"overflow":           kindObjectOrScalar,
	"rotate":             kindObjectOrScalar,
	"--tw-scale-x":       kindPercentToFloat,
	"--tw-scale-y":       kindPercentToFloat,
	"--tw-scale-z":       kindPercentToFloat,
	"backdropFilter":     kindDropped,
	"filter":             kindDropped,
	"borderSpacing":      kindDropped,
	"backgroundImage":    kindBackgroundImage,
	"translate":          kindTranslate,
	"scale":              kindScale,
	"transform":          kindTransform,
	"fontSize":           kindFontSize,
	"borderInlineWidth":  kindBorderInlineWidth,
	"borderBlockWidth":   kindBorderBlockWidth,
	"borderInlineStyle":  kindBorderStyle,
	"borderBlockStyle":   kindBorderStyle,
	"borderStyle":        kindBorderStyle,
	"transformOrigin":    kindTransformOrigin,
	"fontVariantNumeric": kindFontVariant,
	"inset":              kindInset,
}

// NormalizeProperty converts CSS property name to host naming. Custom
// properties are kept. Logical inline/block spacing becomes
// horizontal/vertical.
func NormalizeProperty(property string) string {
	if strings.HasPrefix(property, "--") {
		return property
	}
	p := ToCamelCase(property)
	if !strings.Contains(p, "padding") && !strings.Contains(p, "margin") {
		return p
	}
	switch {
	case strings.HasSuffix(p, "InlineStart"):
		return strings.TrimSuffix(p, "InlineStart") + "Start"
	case strings.HasSuffix(p, "InlineEnd"):
		return strings.TrimSuffix(p, "InlineEnd") + "End"
	case strings.HasSuffix(p, "BlockStart"):
		return strings.TrimSuffix(p, "BlockStart") + "Top"
	case strings.HasSuffix(p, "BlockEnd"):
		return strings.TrimSuffix(p, "BlockEnd") + "Bottom"
	}
	p = strings.Replace(p, "Inline", "Horizontal", 1)
	return strings.Replace(p, "Block", "Vertical", 1)
}

// CSSToHost maps CSS property and its compiled value onto host style pairs.
// Pairs without value are dropped.
func CSSToHost(property string, v Value) []Pair {
	property = NormalizeProperty(property)
	pairs := transformProperty(property, v)

	out := pairs[:0]
	for _, p := range pairs {
		if p.Value != nil {
			out = append(out, p)
		}
	}
	return out
}

func transformProperty(property string, v Value) []Pair {
	scalar, isScalar := v.(Scalar)
	object, _ := v.(Object)

	switch propertyKinds[property] {
	case kindResizeMode:
		return single("resizeMode", v)

	case kindTransitionProperty:
		if !isScalar {
			return nil
		}
		return []Pair{{"transitionProperty", expr.Map{Name: "splitProperties", Inner: scalar.Expr, Fn: splitProperties}}}

	case kindObjectOrScalar:
		if isScalar {
			return []Pair{{property, scalar.Expr}}
		}
		return fields(object)

	case kindPercentToFloat:
		if !isScalar {
			return nil
		}
		return []Pair{{property, percentToFloat(scalar.Expr)}}

	case kindDropped:
		return nil

	case kindBackgroundImage:
		return single("experimental_backgroundImage", v)

	case kindTranslate:
		if !isScalar {
			if x, y := object.Get("x"), object.Get("y"); x != nil && y != nil {
				return []Pair{{"translateX", x}, {"translateY", y}}
			}
			return nil
		}
		parts := splitScalar(scalar.Expr)
		y := parts[0]
		if len(parts) > 1 {
			y = parts[1]
		}
		return []Pair{{"translateX", parts[0]}, {"translateY", y}}

	case kindScale:
		if !isScalar {
			return []Pair{{"scaleX", object.Get("x")}, {"scaleY", object.Get("y")}, {"scaleZ", object.Get("z")}}
		}
		parts := splitScalar(scalar.Expr)
		pairs := []Pair{{"scaleX", parts[0]}}
		if len(parts) > 1 {
			pairs = append(pairs, Pair{"scaleY", parts[1]})
		}
		if len(parts) > 2 {
			pairs = append(pairs, Pair{"scaleZ", parts[2]})
		}
		return pairs

	case kindTransform:
		if isScalar {
			return []Pair{{"transform", scalar.Expr}}
		}
		if len(object) == 0 {
			return []Pair{{"transform", expr.Lit{Value: []any{}}}}
		}
		return fields(object)

	case kindFontSize:
		value := first(v)
		return []Pair{{"fontSize", value}, {EmVar, value}}

	case kindBorderInlineWidth:
		value := first(v)
		return []Pair{{"borderLeftWidth", value}, {"borderRightWidth", value}}

	case kindBorderBlockWidth:
		value := first(v)
		return []Pair{{"borderTopWidth", value}, {"borderBottomWidth", value}}

	case kindBorderStyle:
		return []Pair{{"borderStyle", first(v)}}

	case kindTransformOrigin:
		if isScalar {
			return []Pair{{"transformOrigin", scalar.Expr}}
		}
		x, y := object.Get("x"), object.Get("y")
		if x == nil || y == nil {
			return nil
		}
		return []Pair{{"transformOrigin", expr.Concat{Parts: []expr.Expr{x, y}, Sep: " "}}}

	case kindFontVariant:
		return single("fontVariant", v)

	case kindInset:
		if isScalar {
			return []Pair{{"inset", scalar.Expr}}
		}
		if object.only("top", "right", "bottom", "left") {
			return []Pair{{"top", object.Get("top")}, {"right", object.Get("right")}, {"bottom", object.Get("bottom")}, {"left", object.Get("left")}}
		}
		if object.only("start", "end") {
			return []Pair{{"start", object.Get("start")}, {"end", object.Get("end")}}
		}
	}

	if !isScalar {
		if pairs, ok := transformObject(property, object); ok {
			return pairs
		}
		if len(object) == 0 {
			return nil
		}
		return []Pair{{property, object.record()}}
	}
	return []Pair{{property, scalar.Expr}}
}

// transformObject expands directional shapes into longhands.
func transformObject(property string, o Object) ([]Pair, bool) {
	// border properties are border{X}Color instead of borderColor{X}
	end := ""
	if i := strings.LastIndex(property, "border"); i >= 0 {
		end = property[i+len("border"):]
	}
	base := property
	if end != "" {
		base = strings.Replace(property, end, "", 1)
	}
	wrap := func(direction string) string { return base + direction + end }
	isSpacing := strings.Contains(property, "margin") || strings.Contains(property, "padding")

	switch {
	case o.only("row", "column"):
		return []Pair{{"rowGap", o.Get("row")}, {"columnGap", o.Get("column")}}, true

	case o.only("start", "end"):
		if isSpacing && strings.Contains(property, "Horizontal") {
			return []Pair{
				{strings.Replace(property, "Horizontal", "Left", 1), o.Get("start")},
				{strings.Replace(property, "Horizontal", "Right", 1), o.Get("end")},
			}, true
		}
		if isSpacing && strings.Contains(property, "Vertical") {
			return []Pair{
				{strings.Replace(property, "Vertical", "Top", 1), o.Get("start")},
				{strings.Replace(property, "Vertical", "Bottom", 1), o.Get("end")},
			}, true
		}
		return []Pair{{wrap("Start"), o.Get("start")}, {wrap("End"), o.Get("end")}}, true

	case o.only("top", "right", "bottom", "left"):
		return []Pair{
			{wrap("Top"), o.Get("top")},
			{wrap("Right"), o.Get("right")},
			{wrap("Bottom"), o.Get("bottom")},
			{wrap("Left"), o.Get("left")},
		}, true

	case o.only("topLeft", "topRight", "bottomRight", "bottomLeft"):
		return []Pair{
			{wrap("TopLeft"), o.Get("topLeft")},
			{wrap("TopRight"), o.Get("topRight")},
			{wrap("BottomRight"), o.Get("bottomRight")},
			{wrap("BottomLeft"), o.Get("bottomLeft")},
		}, true
	}
	return nil, false
}

func single(property string, v Value) []Pair {
	switch v := v.(type) {
	case Scalar:
		return []Pair{{property, v.Expr}}
	case Object:
		return []Pair{{property, v.record()}}
	}
	return nil
}

func fields(o Object) []Pair {
	pairs := make([]Pair, len(o))
	for i, f := range o {
		pairs[i] = Pair{f.Key, f.Value}
	}
	return pairs
}

func first(v Value) expr.Expr {
	switch v := v.(type) {
	case Scalar:
		return v.Expr
	case Object:
		return v.First()
	}
	return nil
}

func percentToFloat(e expr.Expr) expr.Expr {
	if l, ok := e.(expr.Lit); ok {
		return expr.Lit{Value: percentValue(l.Value)}
	}
	return expr.Map{Name: "percentageToFloat", Inner: e, Fn: percentValue}
}

func percentValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(s, "%", "", 1)), 64)
	if err != nil {
		return nil
	}
	return n / 100
}

func splitProperties(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var list []any
	for p := range strings.SplitSeq(s, ",") {
		list = append(list, ToCamelCase(strings.TrimSpace(p)))
	}
	return list
}
