package css

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func parseSheet(t *testing.T, src string) *Stylesheet {
	t.Helper()
	return NewParser(zaptest.NewLogger(t)).Parse([]byte(src), "test.css")
}

type walked struct {
	rule  *Rule
	media []MediaQuery
}

func collect(sheet *Stylesheet) []walked {
	var out []walked
	sheet.Walk(func(rule *Rule, media []MediaQuery) {
		out = append(out, walked{rule, media})
	})
	return out
}

func TestParseSimpleRules(t *testing.T) {
	sheet := parseSheet(t, `
.box { padding: 8px; color: red }
.title, .subtitle { font-size: 1.5rem; }
`)

	rules := collect(sheet)
	if len(rules) != 3 {
		t.Fatalf("Expected 3 rules, got %d", len(rules))
	}

	box := rules[0].rule
	if box.Selector.Class != "box" {
		t.Errorf("Class = %q, want box", box.Selector.Class)
	}
	if len(box.Declarations) != 2 {
		t.Fatalf("Expected 2 declarations, got %d", len(box.Declarations))
	}
	if d := box.Declarations[0]; d.Property != "padding" || d.Value != "8px" || d.Important {
		t.Errorf("Unexpected declaration %+v", d)
	}
	if d := box.Declarations[1]; d.Property != "color" || d.Value != "red" {
		t.Errorf("Unexpected declaration %+v", d)
	}

	if rules[1].rule.Selector.Class != "title" || rules[2].rule.Selector.Class != "subtitle" {
		t.Errorf("Grouped selectors parsed as %q and %q", rules[1].rule.Selector.Class, rules[2].rule.Selector.Class)
	}
	if rules[2].rule.Declarations[0].Value != "1.5rem" {
		t.Errorf("Grouped selector value = %q", rules[2].rule.Declarations[0].Value)
	}
}

func TestParseImportant(t *testing.T) {
	sheet := parseSheet(t, `.a { margin: 0 auto !important; --x: 4px !important; color: blue }`)
	rules := collect(sheet)
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(rules))
	}
	decls := rules[0].rule.Declarations
	if len(decls) != 3 {
		t.Fatalf("Expected 3 declarations, got %d", len(decls))
	}
	if !decls[0].Important || decls[0].Value != "0 auto" {
		t.Errorf("margin = %+v", decls[0])
	}
	if !decls[1].Important || decls[1].Value != "4px" || !decls[1].IsCustom() {
		t.Errorf("--x = %+v", decls[1])
	}
	if decls[2].Important {
		t.Errorf("color should not be important")
	}
}

func TestParseSelectors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		class  string
		pseudo string
		dir    string
		root   bool
		ok     bool
	}{
		{"plain", `.p-4 { padding: 1rem }`, "p-4", "", "", false, true},
		{"escaped colon", `.md\:p-4 { padding: 1rem }`, "md:p-4", "", "", false, true},
		{"escaped slash", `.w-1\/2 { width: 50% }`, "w-1/2", "", "", false, true},
		{"active", `.active\:bg-red:active { color: red }`, "active:bg-red", "active", "", false, true},
		{"focus and disabled", `.x:focus:disabled { color: red }`, "x", "focus,disabled", "", false, true},
		{"direction", `.ms-2:dir(rtl) { margin-right: 2px }`, "ms-2", "", "rtl", false, true},
		{"root", `:root { --a: 1px }`, "", "", "", true, true},
		{"element", `p { color: red }`, "", "", "", false, false},
		{"descendant", `.a .b { color: red }`, "", "", "", false, false},
		{"hover", `.a:hover { color: red }`, "", "", "", false, false},
		{"pseudo element", `.a::before { color: red }`, "", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := parseSheet(t, tt.src)
			rules := collect(sheet)
			if !tt.ok {
				if len(rules) != 0 {
					t.Errorf("Expected selector to be skipped, got %+v", rules[0].rule.Selector)
				}
				if len(sheet.Warnings) == 0 {
					t.Error("Expected warning for unsupported selector")
				}
				return
			}
			if len(rules) != 1 {
				t.Fatalf("Expected 1 rule, got %d", len(rules))
			}
			sel := rules[0].rule.Selector
			if sel.Class != tt.class {
				t.Errorf("Class = %q, want %q", sel.Class, tt.class)
			}
			if got := strings.Join(sel.Pseudo, ","); got != tt.pseudo {
				t.Errorf("Pseudo = %q, want %q", got, tt.pseudo)
			}
			if sel.Dir != tt.dir {
				t.Errorf("Dir = %q, want %q", sel.Dir, tt.dir)
			}
			if sel.Root != tt.root {
				t.Errorf("Root = %v, want %v", sel.Root, tt.root)
			}
		})
	}
}

func TestParseMedia(t *testing.T) {
	sheet := parseSheet(t, `
@layer utilities {
  .p-2 { padding: 2px }
  @media (min-width: 640px) {
    .sm\:p-4 { padding: 4px }
    @media (orientation: landscape) {
      .sm\:landscape\:p-8 { padding: 8px }
    }
  }
  @media ios {
    .ios\:p-1 { padding: 1px }
  }
}
@font-face { font-family: X; }
`)

	rules := collect(sheet)
	if len(rules) != 4 {
		t.Fatalf("Expected 4 rules, got %d", len(rules))
	}

	if len(rules[0].media) != 0 {
		t.Errorf("Layered rule has media %+v", rules[0].media)
	}

	sm := rules[1]
	if len(sm.media) != 1 || len(sm.media[0].Features) != 1 {
		t.Fatalf("Unexpected media for sm rule: %+v", sm.media)
	}
	if f := sm.media[0].Features[0]; f.Name != "min-width" || f.Value != "640px" {
		t.Errorf("Feature = %+v", f)
	}

	nested := rules[2]
	if len(nested.media) != 2 {
		t.Fatalf("Expected 2 enclosing queries, got %d", len(nested.media))
	}
	if f := nested.media[1].Features[0]; f.Name != "orientation" || f.Value != "landscape" {
		t.Errorf("Nested feature = %+v", f)
	}

	ios := rules[3]
	if len(ios.media) != 1 || ios.media[0].Features[0] != (MediaFeature{Name: "platform", Value: "ios"}) {
		t.Errorf("Platform media = %+v", ios.media)
	}
}

func TestParseMediaFeature(t *testing.T) {
	tests := []struct {
		text string
		want []MediaFeature
		ok   bool
	}{
		{"min-width: 640px", []MediaFeature{{Name: "min-width", Value: "640px"}}, true},
		{" Orientation : Portrait ", []MediaFeature{{Name: "orientation", Value: "portrait"}}, true},
		{"width >= 40rem", []MediaFeature{{Name: "min-width", Value: "40rem"}}, true},
		{"width<48rem", []MediaFeature{{Name: "max-width", Value: "48rem"}}, true},
		{"2000px <= width", []MediaFeature{{Name: "min-width", Value: "2000px"}}, true},
		{"40rem<width", []MediaFeature{{Name: "min-width", Value: "40rem"}}, true},
		{"600px > width", []MediaFeature{{Name: "max-width", Value: "600px"}}, true},
		{"40rem <= width < 64rem", []MediaFeature{{Name: "min-width", Value: "40rem"}, {Name: "max-width", Value: "64rem"}}, true},
		{"64rem > width >= 40rem", []MediaFeature{{Name: "max-width", Value: "64rem"}, {Name: "min-width", Value: "40rem"}}, true},
		{"10px < width > 20px", nil, false},
		{"width", nil, false},
		{"hover", nil, false},
		{"prefers-reduced-motion", nil, false},
		{"height > 10px", nil, false},
		{"min-width:", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parseMediaFeature(tt.text)
			if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMediaFeature(%q) = %+v, %v, want %+v, %v", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseMediaQuery(t *testing.T) {
	tests := []struct {
		query       string
		features    int
		unsupported bool
	}{
		{"(min-width: 640px) and (orientation: landscape)", 2, false},
		{"only screen and (max-width: 100px)", 1, false},
		{"ios", 1, false},
		{"(40rem <= width < 64rem)", 2, false},
		{"print", 0, true},
		{"not all and (min-width: 100px)", 1, true},
		{"(prefers-reduced-motion)", 0, true},
		{"(min-width: 10px), (orientation: portrait)", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			sheet := parseSheet(t, "@media "+tt.query+" { .a { color: red } }")
			rules := collect(sheet)
			if len(rules) != 1 || len(rules[0].media) != 1 {
				t.Fatalf("Expected one rule inside one query, got %+v", rules)
			}
			mq := rules[0].media[0]
			if len(mq.Features) != tt.features || mq.Unsupported != tt.unsupported {
				t.Errorf("query %q = %+v, want %d features, unsupported %v", tt.query, mq, tt.features, tt.unsupported)
			}
		})
	}
}

func TestParseRecoversFromErrors(t *testing.T) {
	sheet := parseSheet(t, `.a { color: ; width: 1px } .b { color: red }`)
	if len(sheet.Warnings) == 0 {
		t.Error("Expected warning for empty declaration")
	}

	rules := collect(sheet)
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	if d := rules[0].rule.Declarations; len(d) != 1 || d[0].Property != "width" {
		t.Errorf("Declarations of a = %+v, want width only", d)
	}
	if rules[1].rule.Selector.Class != "b" {
		t.Errorf("Second rule class = %q, want b", rules[1].rule.Selector.Class)
	}
}

func TestStylesheetString(t *testing.T) {
	sheet := parseSheet(t, `.a { color: red !important } @media (min-width: 10px) { .b { margin: 1px 2px } }`)
	out := sheet.String()
	for _, want := range []string{".a {", "color: red !important;", "@media (min-width: 10px) {", "  .b {", "margin: 1px 2px;"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}
