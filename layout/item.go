// Package layout implements the visual formatting model: block and
// inline flow with line boxes, floats, positioned elements, CSS
// tables and list markers. It renders a styled tree into a tree of
// positioned items and answers hit-testing queries.
//
// Spec references:
// - CSS 2.1 §8 Box model: https://www.w3.org/TR/CSS21/box.html
// - CSS 2.1 §9 Visual formatting model: https://www.w3.org/TR/CSS21/visuren.html
// - CSS 2.1 §10 Visual formatting model details
// - CSS 2.1 §17 Tables
package layout

import (
	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/dom"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
	"github.com/flintweb/flint/style"
)

// Context carries the document-wide inputs of layout.
type Context struct {
	Style    *style.Context
	Backend  host.Backend
	Viewport geom.Position
}

// Item is the layout object of one styled node. Pos is the content
// box; its origin is relative to the parent item's content box.
type Item struct {
	Style    *style.StyledNode
	Parent   *Item
	Children []*Item

	Pos     geom.Position
	Margins geom.Margins
	Padding geom.Margins
	Borders geom.Margins

	// Skip marks trimmed whitespace and break items in line boxes.
	Skip bool
	// box is the box the item currently belongs to within its parent's
	// flow.
	box Box

	// Block container state, rebuilt on each render.
	boxes         []Box
	floatsLeft    []floatedBox
	floatsRight   []floatedBox
	cacheLeft     lineCache
	cacheRight    lineCache
	positioned    []*Item
	renderedWidth int

	grid *tableGrid

	ctx *Context

	// Cached computed keywords, resolved once at tree build.
	display   int
	float     int
	clear     int
	position  int
	overflow  int
	white     int
	textAlign int
	vAlign    int
	boxSizing int
	visible   bool
}

type floatedBox struct {
	pos   geom.Position
	side  int
	clear int
	el    *Item
}

type lineCache struct {
	valid     bool
	y         int
	val       int
	isDefault bool
}

func (c *lineCache) set(y, val int, def bool) {
	c.valid = true
	c.y = y
	c.val = val
	c.isDefault = def
}

func (c *lineCache) invalidate() { c.valid = false }

// BuildTree constructs the layout tree mirroring the styled tree.
// display:none subtrees produce no items.
func BuildTree(styled *style.StyledNode, ctx *Context) *Item {
	return buildItem(styled, nil, ctx)
}

func buildItem(s *style.StyledNode, parent *Item, ctx *Context) *Item {
	if s.Node != nil && s.Node.Type == dom.CommentNode {
		return nil
	}
	it := &Item{Style: s, Parent: parent, ctx: ctx}
	it.resolveComputed()
	if it.display == css.DisplayNone {
		return nil
	}

	if s.Before != nil {
		if child := buildItem(s.Before, it, ctx); child != nil {
			it.Children = append(it.Children, child)
		}
	}
	for _, sc := range s.Children {
		if child := buildItem(sc, it, ctx); child != nil {
			it.Children = append(it.Children, child)
		}
	}
	if s.After != nil {
		if child := buildItem(s.After, it, ctx); child != nil {
			it.Children = append(it.Children, child)
		}
	}
	return it
}

// resolveComputed caches the keyword properties layout dispatches on,
// applying the display fix-ups of CSS 2.1 §9.7.
func (it *Item) resolveComputed() {
	s := it.Style
	it.display = s.Display()
	it.position = s.Keyword(css.PropPosition)
	it.float = s.Keyword(css.PropFloat)
	it.clear = s.Keyword(css.PropClear)
	it.overflow = s.Keyword(css.PropOverflow)
	it.white = s.Keyword(css.PropWhiteSpace)
	it.textAlign = s.Keyword(css.PropTextAlign)
	it.vAlign = s.Keyword(css.PropVerticalAlign)
	it.boxSizing = s.Keyword(css.PropBoxSizing)
	it.visible = s.Keyword(css.PropVisibility) == css.VisibilityVisible

	if s.IsText() {
		it.display = css.DisplayInlineText
		return
	}
	if s.Node != nil && s.Node.Type == dom.DocumentNode {
		it.display = css.DisplayBlock
		return
	}

	// CSS 2.1 §9.7: float and absolute positioning force block-level.
	if it.display == css.DisplayInline {
		if it.float != css.FloatNone ||
			it.position == css.PositionAbsolute || it.position == css.PositionFixed {
			it.display = css.DisplayBlock
		}
	}
}

// Tag returns the underlying tag name.
func (it *Item) Tag() string { return it.Style.TagName() }

// Display returns the computed display keyword.
func (it *Item) Display() int { return it.display }

// PositionScheme returns the computed position keyword.
func (it *Item) PositionScheme() int { return it.position }

// FloatSide returns the computed float keyword.
func (it *Item) FloatSide() int { return it.float }

// Overflow returns the computed overflow keyword.
func (it *Item) Overflow() int { return it.overflow }

// Positioned returns the positioned descendants registered with this
// context, sorted by z-index after the positioned pass.
func (it *Item) Positioned() []*Item { return it.positioned }

// Content-margin helpers: the combined margin+border+padding extents.
func (it *Item) cmLeft() int   { return it.Margins.Left + it.Padding.Left + it.Borders.Left }
func (it *Item) cmRight() int  { return it.Margins.Right + it.Padding.Right + it.Borders.Right }
func (it *Item) cmTop() int    { return it.Margins.Top + it.Padding.Top + it.Borders.Top }
func (it *Item) cmBottom() int { return it.Margins.Bottom + it.Padding.Bottom + it.Borders.Bottom }

// Width returns the margin-box width.
func (it *Item) Width() int { return it.Pos.Width + it.cmLeft() + it.cmRight() }

// Height returns the margin-box height.
func (it *Item) Height() int { return it.Pos.Height + it.cmTop() + it.cmBottom() }

// Left returns the margin-box left edge relative to the parent
// content box.
func (it *Item) Left() int { return it.Pos.X - it.cmLeft() }

// Right returns the margin-box right edge.
func (it *Item) Right() int { return it.Left() + it.Width() }

// Top returns the margin-box top edge.
func (it *Item) Top() int { return it.Pos.Y - it.cmTop() }

// Bottom returns the margin-box bottom edge.
func (it *Item) Bottom() int { return it.Top() + it.Height() }

// BorderBox returns the border box relative to the parent content box.
func (it *Item) BorderBox() geom.Position {
	return geom.Position{
		X:      it.Pos.X - it.Padding.Left - it.Borders.Left,
		Y:      it.Pos.Y - it.Padding.Top - it.Borders.Top,
		Width:  it.Pos.Width + it.Padding.Width() + it.Borders.Width(),
		Height: it.Pos.Height + it.Padding.Height() + it.Borders.Height(),
	}
}

// PaddingBox returns the padding box relative to the parent content
// box.
func (it *Item) PaddingBox() geom.Position {
	return geom.Position{
		X:      it.Pos.X - it.Padding.Left,
		Y:      it.Pos.Y - it.Padding.Top,
		Width:  it.Pos.Width + it.Padding.Width(),
		Height: it.Pos.Height + it.Padding.Height(),
	}
}

// Placement returns the content box in document coordinates.
func (it *Item) Placement() geom.Position {
	pos := it.Pos
	for p := it.Parent; p != nil; p = p.Parent {
		pos.X += p.Pos.X
		pos.Y += p.Pos.Y
	}
	return pos
}

// DocumentOffset returns the document coordinates of the parent
// content box origin.
func (it *Item) DocumentOffset() (int, int) {
	x, y := 0, 0
	for p := it.Parent; p != nil; p = p.Parent {
		x += p.Pos.X
		y += p.Pos.Y
	}
	return x, y
}

// IsWhiteSpace reports whether the item is a collapsible whitespace
// run.
func (it *Item) IsWhiteSpace() bool {
	return it.Style.IsWhitespace()
}

// IsBreak reports whether the item is a <br>.
func (it *Item) IsBreak() bool {
	return it.Style.Node != nil && it.Style.Node.Type == dom.ElementNode && it.Style.Node.Data == "br"
}

// IsInlineBox reports whether the item participates in inline flow.
func (it *Item) IsInlineBox() bool {
	switch it.display {
	case css.DisplayInline, css.DisplayInlineBlock, css.DisplayInlineTable, css.DisplayInlineText:
		return true
	}
	return false
}

// IsReplaced reports whether the item is a replaced element.
func (it *Item) IsReplaced() bool {
	return it.Style.Node != nil && it.Style.Node.Type == dom.ElementNode && it.Style.Node.Data == "img"
}

// IsBody reports whether the item is the body element.
func (it *Item) IsBody() bool { return it.Tag() == "body" }

func (it *Item) haveParent() bool { return it.Parent != nil }

// IsFloatsHolder reports whether the item owns float lists: non-
// visible overflow, out-of-flow, inline-block/table-cell, the root,
// or a float.
func (it *Item) IsFloatsHolder() bool {
	if it.display == css.DisplayInlineBlock || it.display == css.DisplayTableCell ||
		!it.haveParent() || it.IsBody() || it.float != css.FloatNone ||
		it.position == css.PositionAbsolute || it.position == css.PositionFixed ||
		it.overflow > css.OverflowVisible {
		return true
	}
	return false
}

// IsPositioned reports a non-static position.
func (it *Item) IsPositioned() bool {
	return it.position > css.PositionStatic
}

// IsVisible honours visibility and the skip flag.
func (it *Item) IsVisible() bool {
	return !it.Skip && it.visible
}

// LineHeight returns the used line height.
func (it *Item) LineHeight() int { return it.Style.LineHeightPx() }

// FontSize returns the computed font size.
func (it *Item) FontSize() int { return it.Style.FontSizePx() }

// FontMetrics returns the computed font metrics.
func (it *Item) FontMetrics() host.FontMetrics { return it.Style.FontMetrics() }

// Baseline returns the distance from the last line box's baseline to
// the bottom of the item.
func (it *Item) Baseline() int {
	if it.IsReplaced() {
		return 0
	}
	if len(it.boxes) == 0 {
		return 0
	}
	return it.boxes[len(it.boxes)-1].Baseline() + it.cmBottom()
}

// cssLength fetches a raw length property.
func (it *Item) cssLength(id css.PropertyID) css.Length {
	return it.Style.CSSLength(id)
}

// calcPercent resolves a length against a base, with predefined
// keywords yielding 0.
func (it *Item) calcPercent(l css.Length, base int) int {
	return it.ctx.Style.CvtUnits(l, it.FontSize(), base)
}

// calcWidth resolves the css width property against the parent width.
func (it *Item) calcWidth(parentWidth int) int {
	w := it.cssLength(css.PropWidth)
	if w.IsPredefined() {
		return parentWidth
	}
	return it.calcPercent(w, parentWidth)
}

// predefinedHeight reports an explicit height and its pixel value.
func (it *Item) predefinedHeight() (int, bool) {
	h := it.cssLength(css.PropHeight)
	if h.IsPredefined() {
		return 0, false
	}
	if h.Unit == css.UnitPercent {
		if it.Parent == nil {
			return it.calcPercent(h, it.ctx.Viewport.Height), true
		}
		ph, ok := it.Parent.predefinedHeight()
		if !ok {
			return 0, false
		}
		return it.calcPercent(h, ph), true
	}
	return it.calcPercent(h, 0), true
}

// calcOutlines resolves margins, padding and borders against the
// parent width. Auto margins resolve to 0 here; calcAutoMargins
// centers when applicable.
// CSS 2.1 §8.3, §8.4, §8.5.
func (it *Item) calcOutlines(parentWidth int) {
	if it.display == css.DisplayInlineText {
		it.Margins = geom.Margins{}
		it.Padding = geom.Margins{}
		it.Borders = geom.Margins{}
		return
	}
	it.Margins.Left = it.marginValue(css.PropMarginLeft, parentWidth)
	it.Margins.Right = it.marginValue(css.PropMarginRight, parentWidth)
	it.Margins.Top = it.marginValue(css.PropMarginTop, parentWidth)
	it.Margins.Bottom = it.marginValue(css.PropMarginBottom, parentWidth)

	it.Padding.Left = it.calcPercent(it.cssLength(css.PropPaddingLeft), parentWidth)
	it.Padding.Right = it.calcPercent(it.cssLength(css.PropPaddingRight), parentWidth)
	it.Padding.Top = it.calcPercent(it.cssLength(css.PropPaddingTop), parentWidth)
	it.Padding.Bottom = it.calcPercent(it.cssLength(css.PropPaddingBottom), parentWidth)

	it.Borders.Left = it.borderWidth(css.PropBorderLeftStyle, css.PropBorderLeftWidth, parentWidth)
	it.Borders.Right = it.borderWidth(css.PropBorderRightStyle, css.PropBorderRightWidth, parentWidth)
	it.Borders.Top = it.borderWidth(css.PropBorderTopStyle, css.PropBorderTopWidth, parentWidth)
	it.Borders.Bottom = it.borderWidth(css.PropBorderBottomStyle, css.PropBorderBottomWidth, parentWidth)
}

func (it *Item) marginValue(id css.PropertyID, parentWidth int) int {
	l := it.cssLength(id)
	if l.IsPredefined() {
		return 0
	}
	return it.calcPercent(l, parentWidth)
}

// borderWidth resolves one border side: none/hidden style yields 0;
// thin/medium/thick map to 1/3/5 px.
// CSS 2.1 §8.5.1.
func (it *Item) borderWidth(styleID, widthID css.PropertyID, parentWidth int) int {
	switch it.Style.Keyword(styleID) {
	case css.BorderStyleNone, css.BorderStyleHidden:
		return 0
	}
	w := it.cssLength(widthID)
	if w.IsPredefined() {
		switch w.Predef {
		case css.BorderWidthThin:
			return 1
		case css.BorderWidthThick:
			return 5
		default:
			return 3
		}
	}
	return it.calcPercent(w, parentWidth)
}

// calcAutoMargins centers a sized block with auto horizontal margins.
// CSS 2.1 §10.3.3.
func (it *Item) calcAutoMargins(parentWidth int) {
	if it.display == css.DisplayInlineText || it.IsPositioned() || it.float != css.FloatNone {
		return
	}
	left := it.cssLength(css.PropMarginLeft)
	right := it.cssLength(css.PropMarginRight)
	width := it.cssLength(css.PropWidth)
	if width.IsPredefined() {
		return
	}
	free := parentWidth - it.Pos.Width - it.Padding.Width() - it.Borders.Width()
	if free < 0 {
		free = 0
	}
	switch {
	case left.IsPredefined() && right.IsPredefined():
		it.Margins.Left = free / 2
		it.Margins.Right = free - free/2
	case left.IsPredefined():
		it.Margins.Left = free - it.Margins.Right
		if it.Margins.Left < 0 {
			it.Margins.Left = 0
		}
	case right.IsPredefined():
		it.Margins.Right = free - it.Margins.Left
		if it.Margins.Right < 0 {
			it.Margins.Right = 0
		}
	}
}

// collapseTopMargin reports whether the element collapses its top
// margin with its first in-flow block child.
// CSS 2.1 §8.3.1.
func (it *Item) collapseTopMargin() bool {
	return it.Borders.Top == 0 && it.Padding.Top == 0 &&
		it.haveParent() && !it.IsBody() &&
		it.position != css.PositionAbsolute && it.position != css.PositionFixed &&
		it.float == css.FloatNone
}

// collapseBottomMargin is the bottom-side analogue.
func (it *Item) collapseBottomMargin() bool {
	return it.Borders.Bottom == 0 && it.Padding.Bottom == 0 &&
		it.haveParent() && !it.IsBody() &&
		it.position != css.PositionAbsolute && it.position != css.PositionFixed &&
		it.float == css.FloatNone
}

// inlineShiftLeft is the horizontal space an inline parent's left
// edge (margin, border, padding) adds before this item's first
// fragment.
func (it *Item) inlineShiftLeft() int {
	if it.Parent == nil || it.Parent.display != css.DisplayInline {
		return 0
	}
	if it.Parent.Style.Node != nil && isFirstInlineChild(it.Parent, it) {
		return it.Parent.cmLeft()
	}
	return 0
}

// inlineShiftRight is the right-edge analogue.
func (it *Item) inlineShiftRight() int {
	if it.Parent == nil || it.Parent.display != css.DisplayInline {
		return 0
	}
	if it.Parent.Style.Node != nil && isLastInlineChild(it.Parent, it) {
		return it.Parent.cmRight()
	}
	return 0
}

func isFirstInlineChild(parent, el *Item) bool {
	for _, c := range parent.Children {
		if !c.IsWhiteSpace() {
			return c == el
		}
	}
	return false
}

func isLastInlineChild(parent, el *Item) bool {
	for i := len(parent.Children) - 1; i >= 0; i-- {
		if !parent.Children[i].IsWhiteSpace() {
			return parent.Children[i] == el
		}
	}
	return false
}

// applyRelativeShift offsets a position:relative item by its computed
// offsets, relative to the positioning context's padding box.
// CSS 2.1 §9.4.3.
func (it *Item) applyRelativeShift(parentWidth int) {
	if it.position != css.PositionRelative {
		return
	}
	left := it.cssLength(css.PropLeft)
	right := it.cssLength(css.PropRight)
	top := it.cssLength(css.PropTop)
	bottom := it.cssLength(css.PropBottom)

	switch {
	case !left.IsPredefined():
		it.Pos.X += it.calcPercent(left, parentWidth)
	case !right.IsPredefined():
		it.Pos.X -= it.calcPercent(right, parentWidth)
	}
	switch {
	case !top.IsPredefined():
		it.Pos.Y += it.calcPercent(top, parentWidth)
	case !bottom.IsPredefined():
		it.Pos.Y -= it.calcPercent(bottom, parentWidth)
	}
}

// contentSize measures a leaf item: text through the host font,
// images through the host image cache.
func (it *Item) contentSize(maxWidth int) geom.Size {
	if it.Style.IsText() {
		font, metrics := it.Style.Font()
		if font == nil {
			return geom.Size{}
		}
		text := it.Style.Text()
		return geom.Size{
			Width:  it.ctx.Backend.TextWidth(text, font),
			Height: metrics.Height,
		}
	}
	if it.IsReplaced() {
		return it.replacedSize(maxWidth)
	}
	return geom.Size{}
}

// replacedSize resolves an image's used size from css width/height
// and the intrinsic size, preserving aspect where one side is auto.
// CSS 2.1 §10.3.2.
func (it *Item) replacedSize(maxWidth int) geom.Size {
	src := it.Style.Node.GetAttribute("src")
	intrinsic := it.ctx.Backend.GetImageSize(src, it.ctx.Style.BaseURL)

	w := it.cssLength(css.PropWidth)
	h := it.cssLength(css.PropHeight)
	size := intrinsic
	switch {
	case !w.IsPredefined() && !h.IsPredefined():
		size.Width = it.calcPercent(w, maxWidth)
		size.Height = it.calcPercent(h, 0)
	case !w.IsPredefined():
		size.Width = it.calcPercent(w, maxWidth)
		if intrinsic.Width > 0 {
			size.Height = size.Width * intrinsic.Height / intrinsic.Width
		}
	case !h.IsPredefined():
		size.Height = it.calcPercent(h, 0)
		if intrinsic.Height > 0 {
			size.Width = size.Height * intrinsic.Width / intrinsic.Height
		}
	}
	return size
}
