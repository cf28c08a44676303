package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"stylewind/common"
	"stylewind/state"
	"stylewind/style"
)

func quietEngine(g style.GenerateFunc) *Engine {
	rt := state.NewRuntime(state.DefaultHost(), common.PlatformIOS, "light")
	return New(rt, zap.NewNop(), g, nil)
}

func TestResolveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Breakpoint rule applies exactly when screen is at least as wide as its
	// minimum width.
	properties.Property("breakpoint guard is inclusive", prop.ForAll(
		func(minWidth, width float64) bool {
			r := rule("bp", 0, entry("padding", 1.0))
			r.MinWidth = minWidth
			r.Dependencies = []common.Dependency{common.DependencyDimensions}
			e := quietEngine(generator(style.Stylesheet{"bp": {r}}, nil, nil))
			e.OnDimensionsChange(width, 1000)

			_, applied := e.Resolve("bp", style.ComponentState{}).Styles["padding"]
			return applied == (minWidth <= width)
		},
		gen.Float64Range(0, 2000),
		gen.Float64Range(0, 2000),
	))

	// Among rules of equal rank the last listed class wins.
	properties.Property("later class wins ties", prop.ForAll(
		func(order []int) bool {
			sheet := style.Stylesheet{}
			names := make([]string, len(order))
			for i, n := range order {
				name := fmt.Sprintf("c%d", n)
				sheet[name] = []style.Rule{rule(name, 0, entry("color", name))}
				names[i] = name
			}
			e := quietEngine(generator(sheet, nil, nil))
			got := e.Resolve(strings.Join(names, " "), style.ComponentState{}).Styles["color"]
			return got == names[len(names)-1]
		},
		gen.SliceOfN(5, gen.IntRange(0, 9)),
	))

	// Larger breakpoint keeps property no matter where it is listed.
	properties.Property("larger breakpoint wins", prop.ForAll(
		func(small, large float64, largeFirst bool) bool {
			a := rule("a", 0, entry("margin", "a"))
			a.MinWidth = small
			b := rule("b", 0, entry("margin", "b"))
			b.MinWidth = small + large
			e := quietEngine(generator(style.Stylesheet{"a": {a}, "b": {b}}, nil, nil))
			e.OnDimensionsChange(small+large, 2000)

			classes := "a b"
			if largeFirst {
				classes = "b a"
			}
			return e.Resolve(classes, style.ComponentState{}).Styles["margin"] == "b"
		},
		gen.Float64Range(0, 500),
		gen.Float64Range(1, 500),
		gen.Bool(),
	))

	// Cached result always matches fresh resolution.
	properties.Property("cache is transparent", prop.ForAll(
		func(width float64, pressed bool) bool {
			md := rule("x", 1, entry("padding", 2.0))
			md.MinWidth = 500
			md.Dependencies = []common.Dependency{common.DependencyDimensions}
			active := rule("x", 2, entry("opacity", 0.5))
			active.Active = mo.Some(true)
			active.Complexity = 1
			sheet := style.Stylesheet{"x": {rule("x", 0, entry("padding", 1.0)), md, active}}
			e := quietEngine(generator(sheet, nil, nil))

			e.Resolve("x", style.ComponentState{Pressed: pressed})
			e.OnDimensionsChange(width, 800)
			cached := e.Resolve("x", style.ComponentState{Pressed: pressed})
			e.Teardown()
			fresh := e.Resolve("x", style.ComponentState{Pressed: pressed})
			return fmt.Sprint(cached.Styles) == fmt.Sprint(fresh.Styles)
		},
		gen.Float64Range(0, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
