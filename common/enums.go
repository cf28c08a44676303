// Package common holds enums shared by the runtime, the compiler and the
// engine.
package common

import "fmt"

// Dependency is a named category of environment change. Resolved styles
// record which channels they read, and listeners subscribe per channel.
type Dependency int

const (
	DependencyColorScheme Dependency = iota
	DependencyTheme
	DependencyDimensions
	DependencyOrientation
	DependencyInsets
	DependencyFontScale
	DependencyRtl
)

var dependencyNames = [...]string{
	DependencyColorScheme: "color-scheme",
	DependencyTheme:       "theme",
	DependencyDimensions:  "dimensions",
	DependencyOrientation: "orientation",
	DependencyInsets:      "insets",
	DependencyFontScale:   "font-scale",
	DependencyRtl:         "rtl",
}

// AllDependencies lists every channel in declaration order.
func AllDependencies() []Dependency {
	return []Dependency{
		DependencyColorScheme,
		DependencyTheme,
		DependencyDimensions,
		DependencyOrientation,
		DependencyInsets,
		DependencyFontScale,
		DependencyRtl,
	}
}

func (d Dependency) String() string {
	if d >= 0 && int(d) < len(dependencyNames) {
		return dependencyNames[d]
	}
	return fmt.Sprintf("Dependency(%d)", int(d))
}

// Screen orientation.
type Orientation int

const (
	OrientationPortrait Orientation = iota
	OrientationLandscape
)

func (o Orientation) String() string {
	if o == OrientationLandscape {
		return "landscape"
	}
	return "portrait"
}

// ParseOrientation accepts "portrait" and "landscape".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "portrait":
		return OrientationPortrait, nil
	case "landscape":
		return OrientationLandscape, nil
	}
	return OrientationPortrait, fmt.Errorf("unknown orientation %q", s)
}

// OrientationOf derives orientation from window size, square counts as portrait.
func OrientationOf(width, height float64) Orientation {
	if width > height {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// Color scheme reported by the host.
type ColorScheme int

const (
	ColorSchemeLight ColorScheme = iota
	ColorSchemeDark
)

func (c ColorScheme) String() string {
	if c == ColorSchemeDark {
		return "dark"
	}
	return "light"
}

// ParseColorScheme accepts "light" and "dark".
func ParseColorScheme(s string) (ColorScheme, error) {
	switch s {
	case "light":
		return ColorSchemeLight, nil
	case "dark":
		return ColorSchemeDark, nil
	}
	return ColorSchemeLight, fmt.Errorf("unknown color scheme %q", s)
}

// Target platform of the host framework.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
	PlatformNative  Platform = "native"
)

// IsValid reports whether p is one of the known platforms.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb, PlatformNative:
		return true
	}
	return false
}

// Matches reports whether a rule restricted to p applies on target. "native"
// rules apply to every non-web platform.
func (p Platform) Matches(target Platform) bool {
	if p == target {
		return true
	}
	return p == PlatformNative && target != PlatformWeb
}
