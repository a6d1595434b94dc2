package css

import (
	"testing"
)

func TestParseSimpleRule(t *testing.T) {
	sheet := Parse("div { color: red; width: 100px }")
	if len(sheet.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(sheet.Rules))
	}
	rule := sheet.Rules[0]
	if len(rule.Selectors) != 1 {
		t.Fatalf("got %d selectors, want 1", len(rule.Selectors))
	}
	if rule.Selectors[0].Right.Tag != "div" {
		t.Errorf("tag: got %q, want div", rule.Selectors[0].Right.Tag)
	}
	if len(rule.Declarations) != 2 {
		t.Fatalf("got %d declarations, want 2", len(rule.Declarations))
	}
	if rule.Declarations[0].Property != "color" || rule.Declarations[0].ValueText() != "red" {
		t.Errorf("got %q:%q", rule.Declarations[0].Property, rule.Declarations[0].ValueText())
	}
	if rule.Declarations[1].ValueText() != "100px" {
		t.Errorf("width value: got %q", rule.Declarations[1].ValueText())
	}
}

func TestParseMultipleSelectors(t *testing.T) {
	sheet := Parse("h1, h2, .title { font-weight: bold }")
	if len(sheet.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(sheet.Rules))
	}
	if len(sheet.Rules[0].Selectors) != 3 {
		t.Fatalf("got %d selectors, want 3", len(sheet.Rules[0].Selectors))
	}
	// Source order is preserved across the selector list.
	for i, sel := range sheet.Rules[0].Selectors {
		if sel.Order != i {
			t.Errorf("selector %d: order %d", i, sel.Order)
		}
	}
}

func TestParseImportant(t *testing.T) {
	sheet := Parse("p { color: red !important; margin: 0 }")
	decls := sheet.Rules[0].Declarations
	if !decls[0].Important {
		t.Error("color should be important")
	}
	if decls[0].ValueText() != "red" {
		t.Errorf("important suffix not stripped: %q", decls[0].ValueText())
	}
	if decls[1].Important {
		t.Error("margin should not be important")
	}
}

func TestParseRecovery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rules int
	}{
		{"malformed declaration dropped", "p { color red; margin: 0 }", 1},
		{"unclosed block", "p { color: red", 1},
		{"stray close brace", "} p { color: red }", 1},
		{"selector without block", "p", 0},
		{"garbage between rules", "p{color:red} £$% div{margin:0}", 2},
		{"at-rule skipped", "@font-face { src: url(x) } p { color: red }", 1},
		{"cdo cdc at top level", "<!-- p { color: red } -->", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := Parse(tt.input)
			if len(sheet.Rules) != tt.rules {
				t.Errorf("got %d rules, want %d", len(sheet.Rules), tt.rules)
			}
		})
	}
}

func TestParseMalformedDeclarationKeepsRest(t *testing.T) {
	sheet := Parse("p { color red; margin: 4px }")
	decls := sheet.Rules[0].Declarations
	if len(decls) != 1 {
		t.Fatalf("got %d declarations, want 1", len(decls))
	}
	if decls[0].Property != "margin" {
		t.Errorf("surviving declaration: got %q, want margin", decls[0].Property)
	}
}

// The parser is total: arbitrary bytes terminate and yield a
// stylesheet.
func TestParseTerminates(t *testing.T) {
	inputs := []string{
		"", "{", "}", "{}{}{}", "@media {", "a{b:c;;;}", "/*",
		"@import ;", "a{", ")](}", string([]byte{0x00, 0xff, 0x7b}),
	}
	for _, input := range inputs {
		if sheet := Parse(input); sheet == nil {
			t.Errorf("%q: nil stylesheet", input)
		}
	}
}

func TestParseMediaRule(t *testing.T) {
	sheet := Parse("@media screen and (min-width: 600px) { p { color: red } } div { margin: 0 }")
	if len(sheet.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(sheet.Rules))
	}
	if sheet.Rules[0].Media == nil {
		t.Fatal("rule inside @media has no media list")
	}
	wide := &MediaFeatures{Type: MediaScreen, Width: 800, Height: 600}
	narrow := &MediaFeatures{Type: MediaScreen, Width: 400, Height: 600}
	if !sheet.Rules[0].Media.Check(wide) {
		t.Error("800px viewport should satisfy min-width 600px")
	}
	if sheet.Rules[0].Media.Check(narrow) {
		t.Error("400px viewport should not satisfy min-width 600px")
	}
	if sheet.Rules[1].Media != nil {
		t.Error("top-level rule should carry no media list")
	}
}

func TestParseImports(t *testing.T) {
	sheet := ParseStylesheet(`@import "base.css"; @import url(extra.css); p{color:red}`, "http://x.test/css/site.css")
	if len(sheet.Imports) != 2 {
		t.Fatalf("got %d imports, want 2", len(sheet.Imports))
	}
	if sheet.Imports[0] != "http://x.test/css/base.css" {
		t.Errorf("import 0: %q", sheet.Imports[0])
	}
	if sheet.Imports[1] != "http://x.test/css/extra.css" {
		t.Errorf("import 1: %q", sheet.Imports[1])
	}
}

func TestParseURLResolution(t *testing.T) {
	sheet := ParseStylesheet("div { background-image: url(bg.png) }", "http://x.test/a/style.css")
	d := sheet.Rules[0].Declarations[0]
	if d.ValueText() != "url(http://x.test/a/bg.png)" {
		t.Errorf("got %q", d.ValueText())
	}
}

func TestParseInlineStyle(t *testing.T) {
	store := ParseInline("color: blue; margin: 1px 2px", "")
	if v, ok := store.Get(PropColor); !ok || v.Color != (Color{0, 0, 255, 255}) {
		t.Errorf("color: %+v ok=%v", v, ok)
	}
	if v, _ := store.Get(PropMarginTop); v.Length.Value != 1 {
		t.Errorf("margin-top: %+v", v)
	}
	if v, _ := store.Get(PropMarginRight); v.Length.Value != 2 {
		t.Errorf("margin-right: %+v", v)
	}
}
