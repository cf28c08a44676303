// Package colors parses CSS color notations and renders them in the single
// form the host framework accepts: #rrggbb, or #rrggbbaa when not opaque.
package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Black is used when a border style is set without a color.
const Black = "#000000"

// Parse parses a CSS color. Supported: hex (3, 4, 6 and 8 digits), named
// colors, transparent, rgb[a](), hsl[a](), hwb(), lab(), lch(), oklab(),
// oklch() and color(srgb ...).
func Parse(s string) (c colorful.Color, alpha float64, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return colorful.Color{}, 0, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if s == "transparent" {
		return colorful.Color{}, 0, true
	}
	if rgba, found := colornames.Map[s]; found {
		return colorful.Color{R: float64(rgba.R) / 255, G: float64(rgba.G) / 255, B: float64(rgba.B) / 255}, 1, true
	}

	name, inner, found := strings.Cut(s, "(")
	if !found || !strings.HasSuffix(inner, ")") {
		return colorful.Color{}, 0, false
	}
	args, alpha, ok := splitArgs(strings.TrimSuffix(inner, ")"))
	if !ok {
		return colorful.Color{}, 0, false
	}

	switch strings.TrimSpace(name) {
	case "rgb", "rgba":
		if len(args) != 3 {
			return colorful.Color{}, 0, false
		}
		r, okR := channel(args[0], 255)
		g, okG := channel(args[1], 255)
		b, okB := channel(args[2], 255)
		return colorful.Color{R: r, G: g, B: b}, alpha, okR && okG && okB
	case "hsl", "hsla":
		if len(args) != 3 {
			return colorful.Color{}, 0, false
		}
		h, okH := hue(args[0])
		sat, okS := channel(args[1], 100)
		l, okL := channel(args[2], 100)
		return colorful.Hsl(h, sat, l), alpha, okH && okS && okL
	case "hwb":
		if len(args) != 3 {
			return colorful.Color{}, 0, false
		}
		h, okH := hue(args[0])
		w, okW := channel(args[1], 100)
		b, okB := channel(args[2], 100)
		return hwb(h, w, b), alpha, okH && okW && okB
	case "lab":
		if len(args) != 3 {
			return colorful.Color{}, 0, false
		}
		l, okL := channel(args[0], 100)
		a, okA := signed(args[1], 125)
		b, okB := signed(args[2], 125)
		// colorful keeps Lab components scaled down by 100
		return colorful.Lab(l, a*1.25, b*1.25).Clamped(), alpha, okL && okA && okB
	case "lch":
		if len(args) != 3 {
			return colorful.Color{}, 0, false
		}
		l, okL := channel(args[0], 100)
		ch, okC := signed(args[1], 150)
		h, okH := hue(args[2])
		return colorful.Hcl(h, ch*1.5, l).Clamped(), alpha, okL && okC && okH
	case "oklab":
		if len(args) != 3 {
			return colorful.Color{}, 0, false
		}
		l, okL := channel(args[0], 1)
		a, okA := signed(args[1], 0.4)
		b, okB := signed(args[2], 0.4)
		return colorful.OkLab(l, a*0.4, b*0.4).Clamped(), alpha, okL && okA && okB
	case "oklch":
		if len(args) != 3 {
			return colorful.Color{}, 0, false
		}
		l, okL := channel(args[0], 1)
		ch, okC := signed(args[1], 0.4)
		h, okH := hue(args[2])
		return colorful.OkLch(l, ch*0.4, h).Clamped(), alpha, okL && okC && okH
	case "color":
		if len(args) != 4 || (args[0] != "srgb" && args[0] != "srgb-linear") {
			return colorful.Color{}, 0, false
		}
		r, okR := channel(args[1], 1)
		g, okG := channel(args[2], 1)
		b, okB := channel(args[3], 1)
		c := colorful.Color{R: r, G: g, B: b}
		if args[0] == "srgb-linear" {
			c = colorful.LinearRgb(r, g, b)
		}
		return c, alpha, okR && okG && okB
	}
	return colorful.Color{}, 0, false
}

// Format renders color as #rrggbb, appending alpha channel when it is not 1.
func Format(c colorful.Color, alpha float64) string {
	hex := c.Clamped().Hex()
	if alpha >= 1 {
		return hex
	}
	a := int(math.Round(math.Max(0, alpha) * 255))
	return fmt.Sprintf("%s%02x", hex, a)
}

// Normalize returns canonical form of CSS color s or s unchanged when it
// could not be parsed.
func Normalize(s string) string {
	c, alpha, ok := Parse(s)
	if !ok {
		return s
	}
	return Format(c, alpha)
}

// Mix mixes color with mixColor in sRGB. Weight is the share of color in the
// result (0.3 means 30% of color and 70% of mixColor). When either color
// could not be parsed color is returned as is.
func Mix(color, mixColor string, weight float64) string {
	c1, a1, ok1 := Parse(color)
	c2, a2, ok2 := Parse(mixColor)
	if !ok1 || !ok2 {
		return color
	}
	weight = math.Min(1, math.Max(0, weight))
	return Format(c1.BlendRgb(c2, 1-weight), a1*weight+a2*(1-weight))
}

func parseHex(hex string) (colorful.Color, float64, bool) {
	alpha := 1.0
	switch len(hex) {
	case 3, 4:
		var sb strings.Builder
		for _, r := range hex {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		hex = sb.String()
	}
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, false
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	}
	if len(hex) != 6 {
		return colorful.Color{}, 0, false
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, 0, false
	}
	return c, alpha, true
}

// splitArgs splits function arguments in either legacy (commas) or modern
// (spaces and optional "/ alpha") syntax.
func splitArgs(inner string) (args []string, alpha float64, ok bool) {
	alpha = 1
	main, alphaPart, hasSlash := strings.Cut(inner, "/")
	args = strings.FieldsFunc(main, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if hasSlash {
		a, aok := channel(strings.TrimSpace(alphaPart), 1)
		if !aok {
			return nil, 0, false
		}
		alpha = a
	} else if len(args) == 4 && !strings.HasPrefix(args[0], "srgb") {
		// legacy rgba(r, g, b, a)
		a, aok := channel(args[3], 1)
		if !aok {
			return nil, 0, false
		}
		alpha = a
		args = args[:3]
	}
	return args, alpha, len(args) > 0
}

// channel parses number or percentage and normalizes it to 0..1 where plain
// numbers are relative to max.
func channel(s string, max float64) (float64, bool) {
	if s == "none" {
		return 0, true
	}
	if pct, found := strings.CutSuffix(s, "%"); found {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, false
		}
		return math.Min(1, math.Max(0, v/100)), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return math.Min(1, math.Max(0, v/max)), true
}

// signed parses a component which may be negative, percentages are relative
// to ref, result is normalized to -1..1.
func signed(s string, ref float64) (float64, bool) {
	if s == "none" {
		return 0, true
	}
	if pct, found := strings.CutSuffix(s, "%"); found {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, false
		}
		return v / 100, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v / ref, true
}

// hue parses an angle and returns degrees.
func hue(s string) (float64, bool) {
	if s == "none" {
		return 0, true
	}
	units := []struct {
		suffix string
		factor float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	}
	for _, u := range units {
		if num, found := strings.CutSuffix(s, u.suffix); found {
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, false
			}
			return math.Mod(v*u.factor+360, 360), true
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return math.Mod(math.Mod(v, 360)+360, 360), true
}

func hwb(h, w, b float64) colorful.Color {
	if w+b >= 1 {
		gray := w / (w + b)
		return colorful.Color{R: gray, G: gray, B: gray}
	}
	base := colorful.Hsl(h, 1, 0.5)
	scale := 1 - w - b
	return colorful.Color{
		R: base.R*scale + w,
		G: base.G*scale + w,
		B: base.B*scale + w,
	}
}
