package style

import (
	"testing"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
	"github.com/flintweb/flint/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFont is the font handle of the test backend: every glyph is
// charWidth pixels wide.
type stubFont struct {
	size int
}

const charWidth = 8

var stubMetrics = host.FontMetrics{Ascent: 12, Descent: 4, Height: 16, XHeight: 8}

// stubBackend is a minimal deterministic document container.
type stubBackend struct {
	viewport geom.Position
	images   map[string]geom.Size
	cursor   string
	caption  string
	clicked  string
	css      map[string]string
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		viewport: geom.Position{Width: 800, Height: 600},
		images:   make(map[string]geom.Size),
		css:      make(map[string]string),
	}
}

func (b *stubBackend) CreateFont(family string, size, weight, style, decoration int, metrics *host.FontMetrics) host.Font {
	if metrics != nil {
		*metrics = stubMetrics
	}
	return &stubFont{size: size}
}

func (b *stubBackend) DeleteFont(host.Font) {}

func (b *stubBackend) TextWidth(text string, font host.Font) int {
	return charWidth * len([]rune(text))
}

func (b *stubBackend) DrawText(string, host.Font, css.Color, geom.Position) {}

func (b *stubBackend) PtToPx(pt int) int      { return pt * 96 / 72 }
func (b *stubBackend) DefaultFontSize() int   { return 16 }
func (b *stubBackend) DefaultFontName() string { return "sans-serif" }

func (b *stubBackend) LoadImage(src, baseURL string, redrawOnReady bool) {}
func (b *stubBackend) GetImageSize(src, baseURL string) geom.Size {
	return b.images[src]
}

func (b *stubBackend) DrawBackground(*host.BackgroundPaint)                     {}
func (b *stubBackend) DrawBorders(*host.Borders, geom.Position, bool)           {}
func (b *stubBackend) DrawListMarker(*host.ListMarker)                          {}
func (b *stubBackend) DrawImage(string, string, geom.Position)                  {}
func (b *stubBackend) SetClip(geom.Position, host.BorderRadii, bool, bool)      {}
func (b *stubBackend) DelClip()                                                 {}

func (b *stubBackend) GetClientRect() geom.Position { return b.viewport }
func (b *stubBackend) GetMediaFeatures(f *css.MediaFeatures) {
	f.Type = css.MediaScreen
	f.Width = b.viewport.Width
	f.Height = b.viewport.Height
	f.DeviceWidth = b.viewport.Width
	f.DeviceHeight = b.viewport.Height
	f.Color = 8
	f.Resolution = 96
}
func (b *stubBackend) GetLanguage() (string, string) { return "en", "US" }

func (b *stubBackend) ImportCSS(url, baseURL string) string { return b.css[url] }
func (b *stubBackend) OnAnchorClick(url string)             { b.clicked = url }
func (b *stubBackend) SetCursor(cursor string)              { b.cursor = cursor }
func (b *stubBackend) TransformText(text string, transform int) string {
	switch transform {
	case host.TextTransformUppercase:
		return toUpperASCII(text)
	case host.TextTransformLowercase:
		return toLowerASCII(text)
	}
	return text
}
func (b *stubBackend) SetCaption(caption string) { b.caption = caption }

func toUpperASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if 'a' <= c && c <= 'z' {
			out[i] = c - 32
		}
	}
	return string(out)
}

func toLowerASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if 'A' <= c && c <= 'Z' {
			out[i] = c + 32
		}
	}
	return string(out)
}

// stubFonts adapts the backend into a FontProvider without caching.
type stubFonts struct{ backend host.Backend }

func (p stubFonts) GetFont(family string, size, weight, style, decoration int) (host.Font, host.FontMetrics) {
	var m host.FontMetrics
	f := p.backend.CreateFont(family, size, weight, style, decoration, &m)
	return f, m
}

// buildPage styles an HTML snippet against the master stylesheet plus
// the given author CSS.
func buildPage(t *testing.T, source, authorCSS string) *StyledNode {
	t.Helper()
	backend := newStubBackend()
	ctx := &Context{
		Backend:         backend,
		Fonts:           stubFonts{backend},
		DefaultFontSize: 16,
		DefaultFontName: "sans-serif",
		Language:        "en",
	}
	backend.GetMediaFeatures(&ctx.Features)

	sheets := []Sheet{{Stylesheet: MasterStylesheet(), UserAgent: true}}
	if authorCSS != "" {
		sheets = append(sheets, Sheet{Stylesheet: css.Parse(authorCSS)})
	}
	root := html.Parse(source)
	return BuildTree(root, ctx, sheets)
}

func findTag(root *StyledNode, tag string) *StyledNode {
	return root.FindElement(tag)
}

func TestUserAgentDefaults(t *testing.T) {
	root := buildPage(t, "<html><body><div>x</div><span>y</span></body></html>", "")

	div := findTag(root, "div")
	require.NotNil(t, div)
	assert.Equal(t, css.DisplayBlock, div.Display())

	span := findTag(root, "span")
	require.NotNil(t, span)
	assert.Equal(t, css.DisplayInline, span.Display())
}

func TestCascadeSourceOrder(t *testing.T) {
	// Equal specificity: the later declaration wins.
	root := buildPage(t, "<p>x</p>", "p { color: red } p { color: blue }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, css.Color{0, 0, 255, 255}, p.ColorOf(css.PropColor))
}

func TestCascadeImportantBeatsLater(t *testing.T) {
	root := buildPage(t, "<p>x</p>", "p { color: red !important } p { color: blue }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, css.Color{255, 0, 0, 255}, p.ColorOf(css.PropColor))
}

func TestCascadeSpecificity(t *testing.T) {
	// An id selector outranks a class selector regardless of order.
	root := buildPage(t, `<div id="a" class="b">x</div>`, "#a { color: red } .b { color: blue }")
	div := findTag(root, "div")
	require.NotNil(t, div)
	assert.Equal(t, css.Color{255, 0, 0, 255}, div.ColorOf(css.PropColor))
}

func TestInlineStyleWins(t *testing.T) {
	root := buildPage(t, `<p style="color: green">x</p>`, "p { color: red }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, css.Color{0, 128, 0, 255}, p.ColorOf(css.PropColor))
}

func TestInheritance(t *testing.T) {
	root := buildPage(t, "<div><p>x</p></div>", "div { color: red; border-top-width: 5px }")
	p := findTag(root, "p")
	require.NotNil(t, p)

	// Inherited property undeclared on the child: parent's value.
	assert.Equal(t, css.Color{255, 0, 0, 255}, p.ColorOf(css.PropColor))

	// Non-inherited property undeclared: the default, not the parent's.
	assert.True(t, p.CSSLength(css.PropBorderTopWidth).IsPredefined())
}

func TestExplicitInherit(t *testing.T) {
	root := buildPage(t, "<div><p>x</p></div>",
		"div { background-color: red } p { background-color: inherit }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, css.Color{255, 0, 0, 255}, p.Value(css.PropBackgroundColor).Color)
}

func TestCvtUnits(t *testing.T) {
	backend := newStubBackend()
	ctx := &Context{Backend: backend, DefaultFontSize: 16, RootFontSize: 16}
	backend.GetMediaFeatures(&ctx.Features)

	// 100% of the containing size is the containing size.
	assert.Equal(t, 480, ctx.CvtUnits(css.NewLength(100, css.UnitPercent), 16, 480))
	// 1em is the font size.
	assert.Equal(t, 16, ctx.CvtUnits(css.NewLength(1, css.UnitEm), 16, 480))
	// 12pt goes through the host pt_to_px.
	assert.Equal(t, backend.PtToPx(12), ctx.CvtUnits(css.NewLength(12, css.UnitPt), 16, 480))
	// Viewport units.
	assert.Equal(t, 400, ctx.CvtUnits(css.NewLength(50, css.UnitVw), 16, 0))
	assert.Equal(t, 300, ctx.CvtUnits(css.NewLength(50, css.UnitVh), 16, 0))
	assert.Equal(t, 300, ctx.CvtUnits(css.NewLength(50, css.UnitVmin), 16, 0))
	assert.Equal(t, 400, ctx.CvtUnits(css.NewLength(50, css.UnitVmax), 16, 0))
	// Predefined keywords resolve to zero.
	assert.Equal(t, 0, ctx.CvtUnits(css.PredefLength(0), 16, 480))
}

func TestFontSizeComputation(t *testing.T) {
	root := buildPage(t, "<div><p>x</p></div>", "div { font-size: 20px } p { font-size: 150% }")
	div := findTag(root, "div")
	p := findTag(root, "p")
	require.NotNil(t, div)
	require.NotNil(t, p)

	assert.Equal(t, 20, div.FontSizePx())
	// Percentages apply to the parent font size.
	assert.Equal(t, 30, p.FontSizePx())
}

func TestFontSizeEm(t *testing.T) {
	root := buildPage(t, "<div><p>x</p></div>", "div { font-size: 10px } p { font-size: 2em }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, 20, p.FontSizePx())
}

func TestNthChildMatching(t *testing.T) {
	// ul li:nth-child(2n+1) matches the 1st, 3rd and 5th items.
	root := buildPage(t,
		"<ul><li>1</li><li>2</li><li>3</li><li>4</li><li>5</li></ul>",
		"ul li:nth-child(2n+1) { color: red }")

	ul := findTag(root, "ul")
	require.NotNil(t, ul)
	red := css.Color{255, 0, 0, 255}
	var lis []*StyledNode
	for _, c := range ul.Children {
		if c.TagName() == "li" {
			lis = append(lis, c)
		}
	}
	require.Len(t, lis, 5)

	for i, li := range lis {
		want := i%2 == 0 // 1-based odd positions
		got := li.ColorOf(css.PropColor) == red
		assert.Equal(t, want, got, "li %d", i+1)
	}
}

func TestStructuralPseudoClasses(t *testing.T) {
	source := "<div><p>a</p><span>b</span><p>c</p></div>"
	tests := []struct {
		name string
		css  string
		want [3]bool // per child of the div, in order
	}{
		{"first-child", "div :first-child { color: red }", [3]bool{true, false, false}},
		{"last-child", "div :last-child { color: red }", [3]bool{false, false, true}},
		{"only-child", "div :only-child { color: red }", [3]bool{false, false, false}},
		{"first-of-type", "div :first-of-type { color: red }", [3]bool{true, true, false}},
		{"last-of-type", "div :last-of-type { color: red }", [3]bool{false, true, true}},
		{"only-of-type", "div :only-of-type { color: red }", [3]bool{false, true, false}},
		{"nth-last-child", "div :nth-last-child(1) { color: red }", [3]bool{false, false, true}},
	}
	red := css.Color{255, 0, 0, 255}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := buildPage(t, source, tt.css)
			div := findTag(root, "div")
			require.NotNil(t, div)
			var els []*StyledNode
			for _, c := range div.Children {
				if c.IsElement() {
					els = append(els, c)
				}
			}
			require.Len(t, els, 3)
			for i, el := range els {
				got := el.ColorOf(css.PropColor) == red
				assert.Equal(t, tt.want[i], got, "child %d", i)
			}
		})
	}
}

func TestNotSelector(t *testing.T) {
	root := buildPage(t, `<div><p class="skip">a</p><p>b</p></div>`,
		"p:not(.skip) { color: red }")
	div := findTag(root, "div")
	require.NotNil(t, div)
	red := css.Color{255, 0, 0, 255}
	assert.NotEqual(t, red, div.Children[0].ColorOf(css.PropColor))
	assert.Equal(t, red, div.Children[1].ColorOf(css.PropColor))
}

func TestHoverRequiresPseudoState(t *testing.T) {
	root := buildPage(t, `<a href="x">link</a>`, "a:hover { color: red }")
	a := findTag(root, "a")
	require.NotNil(t, a)

	red := css.Color{255, 0, 0, 255}
	// Baseline cascade ignores the unsatisfied dynamic pseudo.
	assert.NotEqual(t, red, a.ColorOf(css.PropColor))
	assert.True(t, a.HasDynamicStyle())

	// Hovering and refreshing applies the declaration.
	a.SetPseudo("hover", true)
	assert.True(t, a.RefreshStyle())
	assert.Equal(t, red, a.ColorOf(css.PropColor))

	// Leaving reverts.
	a.SetPseudo("hover", false)
	assert.True(t, a.RefreshStyle())
	assert.NotEqual(t, red, a.ColorOf(css.PropColor))
}

func TestLinkPseudoClass(t *testing.T) {
	root := buildPage(t, `<a href="x">a</a><a>b</a>`, "a:link { color: red }")
	red := css.Color{255, 0, 0, 255}

	var anchors []*StyledNode
	root.Walk(func(n *StyledNode) {
		if n.TagName() == "a" {
			anchors = append(anchors, n)
		}
	})
	require.Len(t, anchors, 2)
	assert.Equal(t, red, anchors[0].ColorOf(css.PropColor))
	assert.NotEqual(t, red, anchors[1].ColorOf(css.PropColor))
}

func TestLangPseudoClass(t *testing.T) {
	root := buildPage(t, "<p>x</p>", "p:lang(en) { color: red } p:lang(fr) { background-color: blue }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, css.Color{255, 0, 0, 255}, p.ColorOf(css.PropColor))
	assert.Equal(t, css.Transparent, p.Value(css.PropBackgroundColor).Color)
}

func TestBeforeAfterGeneration(t *testing.T) {
	root := buildPage(t, `<p class="note">text</p>`,
		`.note::before { content: "NB: "; color: red } .note::after { content: "." }`)
	p := findTag(root, "p")
	require.NotNil(t, p)

	require.NotNil(t, p.Before)
	assert.Equal(t, "before", p.Before.PseudoElement)
	require.Len(t, p.Before.Children, 1)
	assert.Equal(t, "NB: ", p.Before.Children[0].Node.Data)
	assert.Equal(t, css.Color{255, 0, 0, 255}, p.Before.ColorOf(css.PropColor))

	require.NotNil(t, p.After)
	require.Len(t, p.After.Children, 1)
	assert.Equal(t, ".", p.After.Children[0].Node.Data)
}

func TestContentAttr(t *testing.T) {
	root := buildPage(t, `<p data-label="hello">x</p>`,
		`p::before { content: attr(data-label) }`)
	p := findTag(root, "p")
	require.NotNil(t, p)
	require.NotNil(t, p.Before)
	require.Len(t, p.Before.Children, 1)
	assert.Equal(t, "hello", p.Before.Children[0].Node.Data)
}

func TestNoContentNoGeneration(t *testing.T) {
	root := buildPage(t, "<p>x</p>", "p::before { color: red }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	assert.Nil(t, p.Before)
}

func TestMediaConditionalRule(t *testing.T) {
	root := buildPage(t, "<p>x</p>",
		"@media (min-width: 600px) { p { color: red } } @media (min-width: 2000px) { p { background-color: blue } }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	// Viewport is 800px wide: the first media block applies, the
	// second does not.
	assert.Equal(t, css.Color{255, 0, 0, 255}, p.ColorOf(css.PropColor))
	assert.Equal(t, css.Transparent, p.Value(css.PropBackgroundColor).Color)
}

func TestPresentationalHints(t *testing.T) {
	root := buildPage(t, `<table bgcolor="red"><tr><td>x</td></tr></table>`, "")
	table := findTag(root, "table")
	require.NotNil(t, table)
	assert.Equal(t, css.Color{255, 0, 0, 255}, table.Value(css.PropBackgroundColor).Color)
}

func TestBackgroundComputation(t *testing.T) {
	root := buildPage(t, "<div>x</div>",
		"div { background: red url(bg.png) no-repeat 0% 0% }")
	div := findTag(root, "div")
	require.NotNil(t, div)

	bg := div.Background()
	assert.Equal(t, css.Color{255, 0, 0, 255}, bg.Color)
	assert.Equal(t, "bg.png", bg.Image)
	assert.Equal(t, css.BackgroundRepeatNoRepeat, bg.Repeat)
	assert.Equal(t, float64(0), bg.PositionX.Value)
	assert.Equal(t, css.UnitPercent, bg.PositionX.Unit)
	assert.Equal(t, float64(0), bg.PositionY.Value)
}

func TestDescendantMatching(t *testing.T) {
	root := buildPage(t, "<div><section><p>x</p></section></div><p>y</p>",
		"div p { color: red }")
	red := css.Color{255, 0, 0, 255}

	var ps []*StyledNode
	root.Walk(func(n *StyledNode) {
		if n.TagName() == "p" {
			ps = append(ps, n)
		}
	})
	require.Len(t, ps, 2)
	assert.Equal(t, red, ps[0].ColorOf(css.PropColor))
	assert.NotEqual(t, red, ps[1].ColorOf(css.PropColor))
}

func TestSiblingCombinators(t *testing.T) {
	root := buildPage(t, "<div><h1>t</h1><p>a</p><p>b</p></div>",
		"h1 + p { color: red } h1 ~ p { background-color: blue }")
	div := findTag(root, "div")
	require.NotNil(t, div)

	var ps []*StyledNode
	for _, c := range div.Children {
		if c.TagName() == "p" {
			ps = append(ps, c)
		}
	}
	require.Len(t, ps, 2)

	red := css.Color{255, 0, 0, 255}
	blue := css.Color{0, 0, 255, 255}
	assert.Equal(t, red, ps[0].ColorOf(css.PropColor))
	assert.NotEqual(t, red, ps[1].ColorOf(css.PropColor))
	assert.Equal(t, blue, ps[0].Value(css.PropBackgroundColor).Color)
	assert.Equal(t, blue, ps[1].Value(css.PropBackgroundColor).Color)
}

func TestChildCombinator(t *testing.T) {
	root := buildPage(t, "<div><p>a</p><section><p>b</p></section></div>",
		"div > p { color: red }")
	div := findTag(root, "div")
	require.NotNil(t, div)
	red := css.Color{255, 0, 0, 255}

	direct := div.Children[0]
	nested := findTag(findTag(root, "section"), "p")
	require.NotNil(t, nested)
	assert.Equal(t, red, direct.ColorOf(css.PropColor))
	assert.NotEqual(t, red, nested.ColorOf(css.PropColor))
}

func TestTextTransform(t *testing.T) {
	root := buildPage(t, "<p>hello</p>", "p { text-transform: uppercase }")
	p := findTag(root, "p")
	require.NotNil(t, p)
	var text *StyledNode
	for _, c := range p.Children {
		if c.IsText() {
			text = c
		}
	}
	require.NotNil(t, text)
	assert.Equal(t, "HELLO", text.Text())
}
