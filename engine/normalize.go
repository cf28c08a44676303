package engine

import (
	"strconv"
	"strings"

	"stylewind/colors"
	"stylewind/expr"
)

// lineHeightMultiplier is the bound under which line height is treated as
// multiple of font size.
const lineHeightMultiplier = 6

// transformKeys are longhands folded into transform list, in application
// order.
var transformKeys = []string{
	"perspective",
	"translateX",
	"translateY",
	"rotate",
	"rotateX",
	"rotateY",
	"rotateZ",
	"scale",
	"scaleX",
	"scaleY",
	"skewX",
	"skewY",
}

// normalize post-processes merged styles into what host framework accepts.
// Order of steps matters.
func normalize(styles map[string]any) {
	if lh, ok := styles["lineHeight"].(float64); ok && lh < lineHeightMultiplier {
		if fs, ok := expr.ToNumber(styles["fontSize"]); ok {
			styles["lineHeight"] = fs * lh
		}
	}
	if v, ok := styles["boxShadow"]; ok {
		if shadows := parseBoxShadow(v); len(shadows) > 0 {
			styles["boxShadow"] = shadows
		} else {
			delete(styles, "boxShadow")
		}
	}
	if styles["visibility"] == "hidden" {
		styles["display"] = "none"
	}
	if _, ok := styles["borderStyle"]; ok {
		if _, ok := styles["borderColor"]; !ok {
			styles["borderColor"] = colors.Black
		}
	}
	if v, ok := styles["fontVariant"]; ok {
		styles["fontVariant"] = parseFontVariant(v)
	}
	parseTransforms(styles)
	if v, ok := styles["experimental_backgroundImage"]; ok {
		if g := resolveGradient(v); g != nil {
			styles["experimental_backgroundImage"] = g
		} else {
			delete(styles, "experimental_backgroundImage")
		}
	}
}

// splitTopLevel splits s at sep outside of parentheses.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + len(string(r))
		}
	}
	return append(parts, s[start:])
}

func fields(s string) []string {
	var out []string
	for _, f := range splitTopLevel(strings.TrimSpace(s), ' ') {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseBoxShadow turns CSS box-shadow text into list of shadow objects.
// Layers without visible offset, blur or spread are dropped.
func parseBoxShadow(v any) []any {
	s, ok := v.(string)
	if !ok {
		if list, ok := v.([]any); ok {
			return list
		}
		return nil
	}

	var shadows []any
	for _, layer := range splitTopLevel(s, ',') {
		var (
			lengths []float64
			color   = colors.Black
			inset   bool
		)
		for _, f := range fields(layer) {
			if f == "inset" {
				inset = true
				continue
			}
			if n, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64); err == nil {
				lengths = append(lengths, n)
				continue
			}
			color = colors.Normalize(f)
		}
		if len(lengths) < 2 || isInvisible(lengths) {
			continue
		}
		shadow := map[string]any{
			"offsetX": lengths[0],
			"offsetY": lengths[1],
			"color":   color,
		}
		if len(lengths) > 2 {
			shadow["blurRadius"] = lengths[2]
		}
		if len(lengths) > 3 {
			shadow["spreadDistance"] = lengths[3]
		}
		if inset {
			shadow["inset"] = true
		}
		shadows = append(shadows, shadow)
	}
	return shadows
}

func isInvisible(lengths []float64) bool {
	for _, l := range lengths {
		if l != 0 {
			return false
		}
	}
	return true
}

// parseFontVariant turns space separated font-variant text into list.
func parseFontVariant(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	list := make([]any, 0)
	for _, f := range strings.Fields(s) {
		list = append(list, f)
	}
	return list
}

// parseTransforms moves transform longhands and transform function text into
// single transform list.
func parseTransforms(styles map[string]any) {
	var list []any
	found := false

	for _, key := range transformKeys {
		v, ok := styles[key]
		if !ok {
			continue
		}
		found = true
		delete(styles, key)
		if v == nil || v == "" {
			continue
		}
		list = append(list, map[string]any{key: v})
	}

	if v, ok := styles["transform"]; ok {
		found = true
		switch v := v.(type) {
		case string:
			list = append(list, parseTransformFunctions(v)...)
		case []any:
			list = append(list, v...)
		}
	}

	if !found {
		return
	}
	if len(list) == 0 {
		delete(styles, "transform")
		return
	}
	styles["transform"] = list
}

// parseTransformFunctions converts "rotate(45deg) scale(2)" into list of
// single key objects. Numeric arguments become numbers.
func parseTransformFunctions(s string) []any {
	var list []any
	for _, f := range fields(s) {
		name, arg, ok := strings.Cut(f, "(")
		if !ok || !strings.HasSuffix(arg, ")") {
			continue
		}
		arg = strings.TrimSpace(strings.TrimSuffix(arg, ")"))
		if n, err := strconv.ParseFloat(strings.TrimSuffix(arg, "px"), 64); err == nil {
			list = append(list, map[string]any{name: n})
			continue
		}
		list = append(list, map[string]any{name: arg})
	}
	return list
}

// resolveGradient converts linear-gradient() text into gradient description.
// Other values are returned unchanged, empty ones as nil.
func resolveGradient(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return nil
	}

	var gradients []any
	for _, layer := range splitTopLevel(s, ',') {
		layer = strings.TrimSpace(layer)
		inner, ok := strings.CutPrefix(layer, "linear-gradient(")
		if !ok || !strings.HasSuffix(inner, ")") {
			return s
		}
		gradients = append(gradients, parseLinearGradient(strings.TrimSuffix(inner, ")")))
	}
	return gradients
}

func parseLinearGradient(args string) map[string]any {
	parts := splitTopLevel(args, ',')
	g := map[string]any{"type": "linear-gradient"}

	if first := strings.TrimSpace(parts[0]); strings.HasPrefix(first, "to ") || strings.HasSuffix(first, "deg") || strings.HasSuffix(first, "turn") {
		g["direction"] = first
		parts = parts[1:]
	}

	stops := make([]any, 0, len(parts))
	for _, p := range parts {
		f := fields(p)
		if len(f) == 0 {
			continue
		}
		stop := map[string]any{"color": colors.Normalize(f[0])}
		if len(f) > 1 {
			positions := make([]any, 0, len(f)-1)
			for _, pos := range f[1:] {
				positions = append(positions, pos)
			}
			stop["positions"] = positions
		}
		stops = append(stops, stop)
	}
	g["colorStops"] = stops
	return g
}
