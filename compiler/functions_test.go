package compiler

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"stylewind/common"
	"stylewind/config"
	"stylewind/css"
	"stylewind/expr"
	"stylewind/state"
	"stylewind/style"
)

func newCompiler(t *testing.T) *Compiler {
	t.Helper()
	cfg := &config.StyleConfig{
		Themes:    []string{"light", "dark"},
		Platform:  common.PlatformIOS,
		Polyfills: config.PolyfillsConfig{Rem: 16},
	}
	return New(cfg, zaptest.NewLogger(t))
}

func testRuntime() *state.Runtime {
	return state.NewRuntime(state.DefaultHost(), common.PlatformIOS, "light")
}

func evalValue(e expr.Expr) any {
	return expr.Eval(e, testRuntime(), style.Vars{}.Scope())
}

func TestTryEval(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
		diag  bool
	}{
		{"percentages", "10% + 5%", "15%", true, false},
		{"angles", "45deg * 2", "90deg", true, false},
		{"pixels become numbers", "10px + 5px", "15", true, false},
		{"unitless", "(1 + 2) * 3", "9", true, false},
		{"mixed units", "10% + 5px", "10% + 5px", false, true},
		{"runtime reference", "var(--x) + 1", "var(--x) + 1", false, false},
		{"unknown unit", "1vw + 1vw", "1vw + 1vw", false, false},
		{"division by zero", "1 / 0", "1 / 0", false, true},
		{"malformed", "1 + * 2", "1 + * 2", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCompiler(t)
			got, ok := c.TryEval(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("TryEval(%q) = %q, %v, want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
			if diag := c.Diagnostics() != nil; diag != tt.diag {
				t.Errorf("TryEval(%q) diagnostics = %v, want %v", tt.input, c.Diagnostics(), tt.diag)
			}
		})
	}
}

func TestParseCalc(t *testing.T) {
	node := ParseCalc(css.ParseValue("1px + 2px * (3 - 1)"))
	if node.Kind != CalcSum || len(node.Terms) != 2 || node.Ops[0] != '+' {
		t.Fatalf("ParseCalc() = %+v, want sum of two terms", node)
	}
	product := node.Terms[1]
	if product.Kind != CalcProduct || product.Ops[0] != '*' {
		t.Fatalf("second term = %+v, want product", product)
	}
	if group := product.Terms[1]; group.Kind != CalcSum {
		t.Errorf("parenthesized term kind = %v, want sum", group.Kind)
	}

	if n := ParseCalc(css.ParseValue("1px 2px")); n.Kind != CalcUnsupported {
		t.Errorf("ParseCalc(adjacent values) kind = %v, want unsupported", n.Kind)
	}
}

func TestProcessValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"number", "0.5", 0.5},
		{"px", "16px", 16.0},
		{"rem", "1.5rem", 24.0},
		{"percentage", "50%", "50%"},
		{"angle", "45deg", "45deg"},
		{"hex as written", "#FFF", "#FFF"},
		{"named color", "red", "#ff0000"},
		{"identifier", "center", "center"},
		{"viewport width", "10vw", 39.0},
		{"viewport height", "50vh", 422.0},
		{"em", "2em", 32.0},
		{"space separated", "1px solid red", "1 solid #ff0000"},
		{"comma separated", "opacity, transform", "opacity, transform"},
		{"calc folded", "calc(10px + 5px)", 15.0},
		{"calc percentages", "calc(10% + 5%)", "15%"},
		{"calc mixed units", "calc(10% + 5px)", "10% + 5px"},
		{"calc runtime", "calc(100vw - 20px)", 370.0},
		{"calc product", "calc(2 * 0.5rem)", 16.0},
		{"var fallback", "var(--missing, 4px)", 4.0},
		{"rgb", "rgb(255, 0, 0)", "#ff0000"},
		{"hsl", "hsl(120 100% 50%)", "#00ff00"},
		{"max", "max(10px, 20px)", 20.0},
		{"min", "min(10px, 1rem)", 10.0},
		{"clamp", "clamp(10px, 50vw, 100px)", 100.0},
		{"cubic bezier", "cubic-bezier(0.4, 0, 0.2, 1)", "cubic-bezier(0.4, 0, 0.2, 1)"},
		{"linear gradient", "linear-gradient(to right, red, blue)", "linear-gradient(to right, #ff0000, #0000ff)"},
		{"skew", "skewX(10deg)", "skewX(10deg)"},
		{"hairline", "hairlineWidth()", 1.0 / 3},
		{"pixel ratio", "pixelRatio(2)", 6.0},
		{"font scale", "fontScale(14)", 14.0},
		{"safe area", "env(safe-area-inset-top)", 0.0},
		{"light dark", "light-dark(white, black)", "#ffffff"},
		{"filter", "blur(4px)", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCompiler(t)
			got := evalValue(c.ProcessValue(css.ParseValue(tt.input)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProcessValue(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProcessValueRem(t *testing.T) {
	c := New(&config.StyleConfig{Polyfills: config.PolyfillsConfig{Rem: 14}}, zaptest.NewLogger(t))
	if got := evalValue(c.ProcessValue(css.ParseValue("2rem"))); got != 28.0 {
		t.Errorf("2rem with rem=14 = %v, want 28", got)
	}

	c = New(nil, nil)
	if got := evalValue(c.ProcessValue(css.ParseValue("1rem"))); got != 16.0 {
		t.Errorf("1rem with default rem = %v, want 16", got)
	}
}

func TestProcessValueDeps(t *testing.T) {
	tests := []struct {
		input string
		want  []common.Dependency
	}{
		{"10vw", []common.Dependency{common.DependencyDimensions}},
		{"env(safe-area-inset-bottom)", []common.Dependency{common.DependencyInsets}},
		{"fontScale(12)", []common.Dependency{common.DependencyFontScale}},
		{"light-dark(#fff, #000)", []common.Dependency{common.DependencyColorScheme}},
		{"16px", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := newCompiler(t)
			got := expr.Deps(c.ProcessValue(css.ParseValue(tt.input)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Deps(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProcessColorMix(t *testing.T) {
	c := newCompiler(t)
	fn := css.ParseValue("color-mix(in srgb, #fff 30%, #000)")[0]

	got := c.ProcessColorMix(fn)
	call, ok := got.(expr.Call)
	if !ok {
		t.Fatalf("ProcessColorMix() = %T, want expr.Call", got)
	}
	if call.Helper != expr.HelperColorMix {
		t.Errorf("helper = %v, want color mix", call.Helper)
	}
	if want := "rt.colorMix( #fff, #000, 0.3 )"; call.String() != want {
		t.Errorf("ProcessColorMix() = %q, want %q", call.String(), want)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"default weight", "color-mix(in srgb, #ff0000, #0000ff)", "rt.colorMix( #ff0000, #0000ff, 0.5 )"},
		{"theme variable", "color-mix(in oklab, var(--color-red-500) 50%, transparent)", "rt.colorMix( var(--color-red-500), #00000000, 0.5 )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ProcessColorMix(css.ParseValue(tt.input)[0])
			if got.String() != tt.want {
				t.Errorf("ProcessColorMix(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}

	if got := evalValue(c.ProcessValue(css.ParseValue("color-mix(in srgb, #ffffff 50%, #000000)"))); got != "#808080" {
		t.Errorf("evaluated color-mix = %v, want #808080", got)
	}
}

func TestProcessFunctionDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		diag  bool
	}{
		{"unknown function", "foo(1)", "foo", true},
		{"unsupported filter", "blur(2px)", "", false},
		{"unsupported gradient", "radial-gradient(red, blue)", "", false},
		{"bad var", "var(1)", "", true},
		{"color mix without colors", "color-mix(in srgb, currentcolor 10%)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCompiler(t)
			got := c.ProcessFunction(css.ParseValue(tt.input)[0])
			if got.String() != tt.want {
				t.Errorf("ProcessFunction(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
			if diag := c.Diagnostics() != nil; diag != tt.diag {
				t.Errorf("ProcessFunction(%q) diagnostics = %v, want %v", tt.input, c.Diagnostics(), tt.diag)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want FunctionKind
	}{
		{"calc", FunctionCalc},
		{"skewX", FunctionSkew},
		{"hairlineWidth", FunctionHairlineWidth},
		{"OKLCH", FunctionColor},
		{"unknown", FunctionUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.name); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
