package layout

import (
	"testing"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
	"github.com/flintweb/flint/html"
	"github.com/flintweb/flint/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const charWidth = 8

var stubMetrics = host.FontMetrics{Ascent: 12, Descent: 4, Height: 16, XHeight: 8}

type stubFont struct{ size int }

type stubBackend struct {
	viewport geom.Position
	images   map[string]geom.Size
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		viewport: geom.Position{Width: 800, Height: 600},
		images:   make(map[string]geom.Size),
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
func (b *stubBackend) PtToPx(pt int) int                                   { return pt * 96 / 72 }
func (b *stubBackend) DefaultFontSize() int                                { return 16 }
func (b *stubBackend) DefaultFontName() string                             { return "sans-serif" }
func (b *stubBackend) LoadImage(string, string, bool)                      {}
func (b *stubBackend) GetImageSize(src, baseURL string) geom.Size          { return b.images[src] }
func (b *stubBackend) DrawBackground(*host.BackgroundPaint)                {}
func (b *stubBackend) DrawBorders(*host.Borders, geom.Position, bool)      {}
func (b *stubBackend) DrawListMarker(*host.ListMarker)                     {}
func (b *stubBackend) DrawImage(string, string, geom.Position)             {}
func (b *stubBackend) SetClip(geom.Position, host.BorderRadii, bool, bool) {}
func (b *stubBackend) DelClip()                                            {}
func (b *stubBackend) GetClientRect() geom.Position                        { return b.viewport }
func (b *stubBackend) GetMediaFeatures(f *css.MediaFeatures) {
	f.Type = css.MediaScreen
	f.Width = b.viewport.Width
	f.Height = b.viewport.Height
}
func (b *stubBackend) GetLanguage() (string, string)            { return "en", "" }
func (b *stubBackend) ImportCSS(string, string) string          { return "" }
func (b *stubBackend) OnAnchorClick(string)                     {}
func (b *stubBackend) SetCursor(string)                         {}
func (b *stubBackend) TransformText(t string, _ int) string     { return t }
func (b *stubBackend) SetCaption(string)                        {}

type stubFonts struct{ backend host.Backend }

func (p stubFonts) GetFont(family string, size, weight, style, decoration int) (host.Font, host.FontMetrics) {
	var m host.FontMetrics
	f := p.backend.CreateFont(family, size, weight, style, decoration, &m)
	return f, m
}

// layoutPage parses, styles and lays out a document at the given
// width.
func layoutPage(t *testing.T, source, authorCSS string, width int) *Item {
	t.Helper()
	backend := newStubBackend()
	sctx := &style.Context{
		Backend:         backend,
		Fonts:           stubFonts{backend},
		DefaultFontSize: 16,
		DefaultFontName: "sans-serif",
	}
	backend.GetMediaFeatures(&sctx.Features)

	sheets := []style.Sheet{{Stylesheet: style.MasterStylesheet(), UserAgent: true}}
	if authorCSS != "" {
		sheets = append(sheets, style.Sheet{Stylesheet: css.Parse(authorCSS)})
	}
	styled := style.BuildTree(html.Parse(source), sctx, sheets)

	root := BuildTree(styled, &Context{
		Style:    sctx,
		Backend:  backend,
		Viewport: backend.viewport,
	})
	require.NotNil(t, root)
	root.Render(0, 0, width, false)
	if root.FetchPositioned() {
		root.RenderPositioned()
	}
	return root
}

// findItem returns the first item with the given tag in paint order.
func findItem(root *Item, tag string) *Item {
	if root.Tag() == tag {
		return root
	}
	for _, c := range root.Children {
		if f := findItem(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func findItems(root *Item, tag string) []*Item {
	var out []*Item
	var walk func(*Item)
	walk = func(it *Item) {
		if it.Tag() == tag {
			out = append(out, it)
		}
		for _, c := range it.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func textItems(it *Item) []*Item {
	var out []*Item
	var walk func(*Item)
	walk = func(n *Item) {
		if n.Style.IsText() && !n.Style.IsWhitespace() {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(it)
	return out
}

func TestSimpleParagraphLine(t *testing.T) {
	// One block p containing one line with two words; the text widths
	// come straight from the host text_width.
	root := layoutPage(t, "<body><p>hello world</p></body>", "p { font-size: 10px; margin: 0 }", 800)

	p := findItem(root, "p")
	require.NotNil(t, p)

	words := textItems(p)
	require.Len(t, words, 2)

	hello, world := words[0], words[1]
	assert.Equal(t, 5*charWidth, hello.Pos.Width, "width('hello')")
	assert.Equal(t, 5*charWidth, world.Pos.Width, "width('world')")

	// Both words sit on the same line, separated by one space.
	assert.Equal(t, hello.Pos.Y, world.Pos.Y)
	assert.Equal(t, hello.Pos.X+5*charWidth+charWidth, world.Pos.X)

	// The line height equals the font metrics height.
	assert.Equal(t, stubMetrics.Height, p.Pos.Height)
}

func TestLineWrapping(t *testing.T) {
	// Each word is 40px; a 100px container fits two words plus the
	// space between them per line.
	root := layoutPage(t, "<body><p>aaaaa bbbbb ccccc</p></body>",
		"body { margin: 0 } p { width: 100px; margin: 0 }", 800)
	p := findItem(root, "p")
	require.NotNil(t, p)

	words := textItems(p)
	require.Len(t, words, 3)
	assert.Equal(t, words[0].Pos.Y, words[1].Pos.Y, "first two words share a line")
	assert.Greater(t, words[2].Pos.Y, words[1].Pos.Y, "third word wraps")
	assert.Equal(t, 2*stubMetrics.Height, p.Pos.Height, "two lines")
}

func TestTrailingWhitespaceTrimmed(t *testing.T) {
	root := layoutPage(t, "<body><p>word </p></body>", "p { margin: 0 }", 800)
	p := findItem(root, "p")
	require.NotNil(t, p)

	for _, c := range p.Children {
		if c.IsWhiteSpace() {
			assert.True(t, c.Skip, "trailing whitespace must be skipped")
		}
	}
}

func TestFloatPlacement(t *testing.T) {
	// Two 50px left floats fill the 100px row; the third starts the
	// next row.
	source := `<body><div class="c"><div class="f">&nbsp;</div><div class="f">&nbsp;</div><div class="f">&nbsp;</div></div></body>`
	sheet := `
		body { margin: 0 }
		.c { width: 100px }
		.f { float: left; width: 50px; height: 10px }
	`
	root := layoutPage(t, source, sheet, 800)

	floats := findItems(root, "div")[1:]
	require.Len(t, floats, 3)

	p0 := floats[0].Placement()
	p1 := floats[1].Placement()
	p2 := floats[2].Placement()

	assert.Equal(t, p0.Y, p1.Y, "first two floats share the row")
	assert.Equal(t, p0.X+50, p1.X, "second float sits beside the first")
	assert.Equal(t, p0.Y+10, p2.Y, "third float drops to the next row")
	assert.Equal(t, p0.X, p2.X, "third float returns to the left edge")
}

func TestFloatNonOverlap(t *testing.T) {
	// At any horizontal band the floats never overlap and never
	// exceed the containing width.
	source := `<body><div class="c">
		<div class="l">&nbsp;</div><div class="r">&nbsp;</div>
		<div class="l">&nbsp;</div><div class="r">&nbsp;</div>
	</div></body>`
	sheet := `
		body { margin: 0 }
		.c { width: 200px }
		.l { float: left; width: 60px; height: 10px }
		.r { float: right; width: 80px; height: 12px }
	`
	root := layoutPage(t, source, sheet, 800)

	var floats []geom.Position
	for _, f := range findItems(root, "div")[1:] {
		floats = append(floats, f.Placement())
	}
	require.Len(t, floats, 4)

	for y := 0; y < 40; y++ {
		total := 0
		for _, f := range floats {
			if y >= f.Y && y < f.Y+f.Height {
				total += f.Width
			}
		}
		assert.LessOrEqual(t, total, 200, "band y=%d", y)
	}
	for i := range floats {
		for j := i + 1; j < len(floats); j++ {
			assert.False(t, floats[i].Intersects(floats[j]),
				"floats %d and %d overlap: %+v %+v", i, j, floats[i], floats[j])
		}
	}
}

func TestClearBelowFloat(t *testing.T) {
	source := `<body><div class="f">&nbsp;</div><div class="c">&nbsp;</div></body>`
	sheet := `
		body { margin: 0 }
		.f { float: left; width: 50px; height: 30px }
		.c { clear: left; height: 5px }
	`
	root := layoutPage(t, source, sheet, 800)
	divs := findItems(root, "div")
	require.Len(t, divs, 2)
	assert.GreaterOrEqual(t, divs[1].Placement().Y, 30, "cleared block starts below the float")
}

func TestVerticalMarginCollapse(t *testing.T) {
	source := `<body><div class="a">&nbsp;</div><div class="b">&nbsp;</div></body>`
	sheet := `
		body { margin: 0 }
		.a { height: 10px; margin-bottom: 20px }
		.b { height: 5px; margin-top: 8px }
	`
	root := layoutPage(t, source, sheet, 800)
	divs := findItems(root, "div")
	require.Len(t, divs, 2)

	a := divs[0].Placement()
	b := divs[1].Placement()
	// Adjoining margins collapse to the larger one.
	assert.Equal(t, a.Y+10+20, b.Y)
}

func TestExplicitSizes(t *testing.T) {
	root := layoutPage(t, `<body><div>&nbsp;</div></body>`,
		"body { margin: 0 } div { width: 120px; height: 40px }", 800)
	div := findItem(root, "div")
	require.NotNil(t, div)
	assert.Equal(t, 120, div.Pos.Width)
	assert.Equal(t, 40, div.Pos.Height)
}

func TestPercentWidth(t *testing.T) {
	root := layoutPage(t, `<body><div><p>&nbsp;</p></div></body>`,
		"body { margin: 0 } div { width: 400px } p { width: 50%; margin: 0 }", 800)
	p := findItem(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, 200, p.Pos.Width)
}

func TestPaddingAndBorderBoxes(t *testing.T) {
	root := layoutPage(t, `<body><div>&nbsp;</div></body>`,
		"body { margin: 0 } div { width: 100px; height: 20px; padding: 5px; border: 2px solid black; margin: 3px }", 800)
	div := findItem(root, "div")
	require.NotNil(t, div)

	assert.Equal(t, geom.Margins{Left: 5, Right: 5, Top: 5, Bottom: 5}, div.Padding)
	assert.Equal(t, geom.Margins{Left: 2, Right: 2, Top: 2, Bottom: 2}, div.Borders)
	assert.Equal(t, geom.Margins{Left: 3, Right: 3, Top: 3, Bottom: 3}, div.Margins)
	assert.Equal(t, 100+10+4, div.BorderBox().Width)
	assert.Equal(t, 100+10+4+6, div.Width(), "margin box width")
}

func TestAutoMarginsCenter(t *testing.T) {
	root := layoutPage(t, `<body><div>&nbsp;</div></body>`,
		"body { margin: 0 } div { width: 200px; margin-left: auto; margin-right: auto }", 800)
	div := findItem(root, "div")
	require.NotNil(t, div)
	assert.Equal(t, 300, div.Margins.Left)
	assert.Equal(t, 300, div.Margins.Right)
}

func TestAbsolutePositioning(t *testing.T) {
	source := `<body><div class="ctx"><div class="abs">&nbsp;</div></div></body>`
	sheet := `
		body { margin: 0 }
		.ctx { position: relative; width: 300px; height: 100px }
		.abs { position: absolute; left: 10px; top: 5px; width: 50px; height: 20px }
	`
	root := layoutPage(t, source, sheet, 800)

	ctx := findItems(root, "div")[0]
	abs := findItems(root, "div")[1]

	cp := ctx.Placement()
	ap := abs.Placement()
	assert.Equal(t, cp.X+10, ap.X)
	assert.Equal(t, cp.Y+5, ap.Y)
	assert.Equal(t, 50, abs.Pos.Width)
}

func TestAbsoluteStretch(t *testing.T) {
	// Both left and right: the element stretches to fill.
	source := `<body><div class="ctx"><div class="abs">&nbsp;</div></div></body>`
	sheet := `
		body { margin: 0 }
		.ctx { position: relative; width: 300px; height: 100px }
		.abs { position: absolute; left: 10px; right: 10px; height: 20px }
	`
	root := layoutPage(t, source, sheet, 800)
	abs := findItems(root, "div")[1]
	assert.Equal(t, 280, abs.Pos.Width)
}

func TestRelativeShift(t *testing.T) {
	source := `<body><div class="rel">&nbsp;</div></body>`
	sheet := `
		body { margin: 0 }
		.rel { position: relative; left: 15px; top: 7px; width: 50px; height: 10px }
	`
	root := layoutPage(t, source, sheet, 800)
	rel := findItem(root, "div")
	require.NotNil(t, rel)
	pos := rel.Placement()
	assert.Equal(t, 15, pos.X)
	assert.Equal(t, 7, pos.Y)
}

func TestTableColumnWidths(t *testing.T) {
	source := `<body><table><tr><td>aa</td><td>aaaa</td></tr><tr><td>a</td><td>aa</td></tr></table></body>`
	sheet := "body { margin: 0 } table { width: 200px; border-spacing: 0 } td { padding: 0 }"
	root := layoutPage(t, source, sheet, 800)

	table := findItem(root, "table")
	require.NotNil(t, table)
	assert.Equal(t, 200, table.Pos.Width)

	cells := findItems(root, "td")
	require.Len(t, cells, 4)
	// The wider-content column gets at least as much room.
	assert.GreaterOrEqual(t, cells[1].Pos.Width, cells[0].Pos.Width)
	// Cells in the same column align.
	assert.Equal(t, cells[0].Placement().X, cells[2].Placement().X)
	assert.Equal(t, cells[1].Placement().X, cells[3].Placement().X)
}

func TestTableColspan(t *testing.T) {
	source := `<body><table><tr><td colspan="2">wide</td></tr><tr><td>a</td><td>b</td></tr></table></body>`
	sheet := "body { margin: 0 } table { width: 100px; border-spacing: 0 } td { padding: 0 }"
	root := layoutPage(t, source, sheet, 800)

	cells := findItems(root, "td")
	require.Len(t, cells, 3)
	spanned := cells[0]
	colA, colB := cells[1], cells[2]
	// The spanned cell covers both columns.
	assert.Equal(t, colA.Pos.Width+colB.Pos.Width, spanned.Pos.Width)
}

func TestTableRowspanHeights(t *testing.T) {
	source := `<body><table><tr><td rowspan="2">tall</td><td>a</td></tr><tr><td>b</td></tr></table></body>`
	sheet := "body { margin: 0 } table { border-spacing: 0 } td { padding: 0 }"
	root := layoutPage(t, source, sheet, 800)

	cells := findItems(root, "td")
	require.Len(t, cells, 3)
	tall := cells[0]
	a, b := cells[1], cells[2]
	// The rowspanned cell spans both row strips.
	assert.Equal(t, a.Pos.Height+b.Pos.Height, tall.Pos.Height)
}

func TestListMarkers(t *testing.T) {
	source := `<body><ol><li>one</li><li>two</li><li>three</li></ol></body>`
	root := layoutPage(t, source, "", 800)

	lis := findItems(root, "li")
	require.Len(t, lis, 3)
	for i, li := range lis {
		assert.Equal(t, i+1, li.MarkerIndex())
		marker := li.Marker()
		require.NotNil(t, marker, "li %d", i)
		assert.Equal(t, MarkerText(css.ListStyleTypeDecimal, i+1), marker.Text)
	}
}

func TestMarkerText(t *testing.T) {
	tests := []struct {
		listType int
		index    int
		want     string
	}{
		{css.ListStyleTypeDecimal, 7, "7"},
		{css.ListStyleTypeDecimalLeadingZero, 7, "07"},
		{css.ListStyleTypeDecimalLeadingZero, 12, "12"},
		{css.ListStyleTypeLowerAlpha, 1, "a"},
		{css.ListStyleTypeLowerAlpha, 26, "z"},
		{css.ListStyleTypeLowerAlpha, 27, "aa"},
		{css.ListStyleTypeUpperLatin, 2, "B"},
		{css.ListStyleTypeLowerRoman, 4, "iv"},
		{css.ListStyleTypeUpperRoman, 1994, "MCMXCIV"},
		{css.ListStyleTypeLowerGreek, 1, "α"},
		{css.ListStyleTypeLowerGreek, 3, "γ"},
		{css.ListStyleTypeDisc, 3, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarkerText(tt.listType, tt.index), "type %d index %d", tt.listType, tt.index)
	}
}

func TestHitTesting(t *testing.T) {
	source := `<body><p>hello</p><div class="box">&nbsp;</div></body>`
	sheet := "body { margin: 0 } p { margin: 0 } .box { width: 50px; height: 20px }"
	root := layoutPage(t, source, sheet, 800)

	p := findItem(root, "p")
	require.NotNil(t, p)
	hit := root.ElementAt(2, 2, 2, 2)
	require.NotNil(t, hit)
	// The hit resolves to the text run or the paragraph subtree.
	assert.True(t, hit.isDescendantOf(p), "hit %q", hit.Tag())

	box := findItem(root, "div")
	require.NotNil(t, box)
	bp := box.Placement()
	hit = root.ElementAt(bp.X+5, bp.Y+5, bp.X+5, bp.Y+5)
	require.NotNil(t, hit)
	assert.True(t, hit.isDescendantOf(box))
}

func TestZIndexHitOrder(t *testing.T) {
	source := `<body><div class="under">&nbsp;</div><div class="over">&nbsp;</div></body>`
	sheet := `
		body { margin: 0 }
		.under { position: absolute; left: 0; top: 0; width: 100px; height: 100px; z-index: 1 }
		.over { position: absolute; left: 0; top: 0; width: 100px; height: 100px; z-index: 2 }
	`
	root := layoutPage(t, source, sheet, 800)
	hit := root.ElementAt(50, 50, 50, 50)
	require.NotNil(t, hit)
	over := findItems(root, "div")[1]
	assert.True(t, hit == over || hit.isDescendantOf(over), "hit %q", hit.Tag())
}

func TestDocumentSize(t *testing.T) {
	root := layoutPage(t, `<body><div>&nbsp;</div></body>`,
		"body { margin: 0 } div { width: 300px; height: 150px }", 800)
	sz := root.DocumentSize()
	assert.GreaterOrEqual(t, sz.Height, 150)
	assert.GreaterOrEqual(t, sz.Width, 300)
}

func TestInlineBlockShrinkToFit(t *testing.T) {
	root := layoutPage(t, `<body><div class="ib">ab</div></body>`,
		"body { margin: 0 } .ib { display: inline-block; padding: 0 }", 800)
	ib := findItem(root, "div")
	require.NotNil(t, ib)
	// Shrink-to-fit: the inline block adopts its content width.
	assert.Equal(t, 2*charWidth, ib.Pos.Width)
}
