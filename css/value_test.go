package css

import "testing"

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"8px", "8px"},
		{"1.5rem", "1.5rem"},
		{"50%", "50%"},
		{"0", "0"},
		{"red", "red"},
		{"#FFF", "#FFF"},
		{"1px solid #000", "1px solid #000"},
		{"calc(10% + 5%)", "calc(10% + 5%)"},
		{"var(--color-red, #f00)", "var(--color-red, #f00)"},
		{"color-mix(in srgb, #fff 30%, #000)", "color-mix(in srgb, #fff 30%, #000)"},
		{"'Inter', sans-serif", `"Inter", sans-serif`},
		{"calc((2px + 3px) * 2)", "calc((2px + 3px) * 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := JoinNodes(ParseValue(tt.raw)); got != tt.want {
				t.Errorf("ParseValue(%q) renders %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseValueNodes(t *testing.T) {
	nodes := ParseValue("calc(100vw - 2rem)")
	if len(nodes) != 1 || nodes[0].Kind != NodeFunction || nodes[0].Text != "calc" {
		t.Fatalf("Unexpected nodes %+v", nodes)
	}
	args := nodes[0].Args
	if len(args) != 3 {
		t.Fatalf("Expected 3 arguments, got %+v", args)
	}
	if args[0].Kind != NodeDimension || args[0].Num != 100 || args[0].Unit != "vw" {
		t.Errorf("First argument = %+v", args[0])
	}
	if !args[1].IsDelim("-") {
		t.Errorf("Second argument = %+v", args[1])
	}
	if args[2].Num != 2 || args[2].Unit != "rem" {
		t.Errorf("Third argument = %+v", args[2])
	}
}

func TestSplitCommas(t *testing.T) {
	groups := SplitCommas(ParseValue("a b, c, d"))
	if len(groups) != 3 || len(groups[0]) != 2 {
		t.Errorf("SplitCommas() = %+v", groups)
	}
	if SplitCommas(nil) != nil {
		t.Error("SplitCommas(nil) should be nil")
	}
}
