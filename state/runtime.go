package state

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"

	"stylewind/colors"
	"stylewind/common"
)

type Screen struct {
	Width  float64
	Height float64
}

type Insets struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Host answers environment queries of the host UI framework. It is consulted
// once, when runtime is created; later changes arrive through engine
// mutators.
type Host interface {
	WindowSize() Screen
	ColorScheme() common.ColorScheme
	Locale() string
	SafeArea() Insets
	HairlineWidth() float64
	PixelRatio() float64
	FontScale() float64
}

// Runtime is live environment snapshot. It is never replaced, only its
// fields are updated, so everyone holding a pointer observes changes.
type Runtime struct {
	Screen      Screen
	Orientation common.Orientation
	ColorScheme common.ColorScheme
	ThemeName   string
	// Adaptive is set when theme follows color scheme.
	Adaptive      bool
	RTL           bool
	Insets        Insets
	HairlineWidth float64
	Platform      common.Platform
	PixelRatio    func(float64) float64
	FontScale     func(float64) float64
}

// NewRuntime queries host and builds initial runtime. Theme "system" makes
// theme follow color scheme.
func NewRuntime(host Host, platform common.Platform, theme string) *Runtime {
	size := host.WindowSize()
	scheme := host.ColorScheme()
	ratio, scale := host.PixelRatio(), host.FontScale()
	if ratio <= 0 {
		ratio = 1
	}
	if scale <= 0 {
		scale = 1
	}

	rt := &Runtime{
		Screen:        size,
		Orientation:   common.OrientationOf(size.Width, size.Height),
		ColorScheme:   scheme,
		ThemeName:     theme,
		RTL:           IsRTLLocale(host.Locale()),
		Insets:        host.SafeArea(),
		HairlineWidth: host.HairlineWidth(),
		Platform:      platform,
		PixelRatio:    func(v float64) float64 { return v * ratio },
		FontScale:     func(v float64) float64 { return v * scale },
	}
	if theme == "" || theme == "system" {
		rt.Adaptive = true
		rt.ThemeName = scheme.String()
	}
	return rt
}

// ColorMix mixes two colors, weight is the share of color.
func (rt *Runtime) ColorMix(color, mixColor string, weight float64) string {
	return colors.Mix(color, mixColor, weight)
}

func (rt *Runtime) CubicBezier(x1, y1, x2, y2 float64) string {
	return fmt.Sprintf("cubic-bezier(%s, %s, %s, %s)", num(x1), num(y1), num(x2), num(y2))
}

// LightDark picks value according to current color scheme.
func (rt *Runtime) LightDark(light, dark any) any {
	if rt.ColorScheme == common.ColorSchemeDark {
		return dark
	}
	return light
}

// IsRTLLocale reports whether locale is written right to left. Unparsable
// locales are treated as left to right.
func IsRTLLocale(locale string) bool {
	if locale == "" {
		return false
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	script, conf := tag.Script()
	if conf == language.No {
		return false
	}
	switch script.String() {
	case "Arab", "Hebr", "Thaa", "Syrc", "Nkoo", "Adlm", "Rohg", "Mand", "Samr":
		return true
	}
	return false
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FixedHost is Host with constant answers. Useful for tests and for
// embedding applications which learn environment from elsewhere.
type FixedHost struct {
	Size     Screen
	Scheme   common.ColorScheme
	Lang     string
	Safe     Insets
	Hairline float64
	Ratio    float64
	Scale    float64
}

func (h FixedHost) WindowSize() Screen { return h.Size }
func (h FixedHost) ColorScheme() common.ColorScheme { return h.Scheme }
func (h FixedHost) Locale() string { return h.Lang }
func (h FixedHost) SafeArea() Insets { return h.Safe }
func (h FixedHost) HairlineWidth() float64 { return h.Hairline }
func (h FixedHost) PixelRatio() float64 { return h.Ratio }
func (h FixedHost) FontScale() float64 { return h.Scale }

// DefaultHost describes a phone sized portrait window.
func DefaultHost() FixedHost {
	return FixedHost{
		Size:     Screen{Width: 390, Height: 844},
		Lang:     "en-US",
		Hairline: 1.0 / 3.0,
		Ratio:    3,
		Scale:    1,
	}
}
