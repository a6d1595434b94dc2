package layout

import (
	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/style"
)

// lineContext tracks the strip the next box is opened into.
type lineContext struct {
	top           int
	left          int
	right         int
	calculatedTop int
}

func (lc *lineContext) fixTop()    { lc.calculatedTop = lc.top }
func (lc *lineContext) width() int { return lc.right - lc.left }

// Render lays out the item at (x, y) within maxWidth and returns the
// effective width consumed. Parents use the return value to decide
// whether a shrink-to-fit second pass is needed.
func (it *Item) Render(x, y, maxWidth int, secondPass bool) int {
	if it.display == css.DisplayTable || it.display == css.DisplayInlineTable {
		return it.renderTable(x, y, maxWidth, secondPass)
	}
	return it.renderBox(x, y, maxWidth, secondPass)
}

// renderBox is normal block-formatting layout.
// CSS 2.1 §10.3.3 / §10.6.3.
func (it *Item) renderBox(x, y, maxWidth int, secondPass bool) int {
	parentWidth := maxWidth

	it.calcOutlines(parentWidth)

	it.Pos = geom.Position{X: x + it.cmLeft(), Y: y + it.cmTop()}

	retWidth := 0
	haveBlockWidth := false

	if it.display != css.DisplayTableCell && !it.cssLength(css.PropWidth).IsPredefined() {
		w := it.calcWidth(parentWidth)
		if it.boxSizing == css.BoxSizingBorderBox {
			w -= it.Padding.Width() + it.Borders.Width()
		}
		haveBlockWidth = true
		retWidth = w
		maxWidth = w
	} else if maxWidth > 0 {
		maxWidth -= it.cmLeft() + it.cmRight()
	}

	// max-width applies on the first pass only.
	if mw := it.cssLength(css.PropMaxWidth); !mw.IsPredefined() && !secondPass {
		mwPx := it.calcPercent(mw, parentWidth)
		if it.boxSizing == css.BoxSizingBorderBox {
			mwPx -= it.Padding.Width() + it.Borders.Width()
		}
		if maxWidth > mwPx {
			maxWidth = mwPx
		}
	}

	it.floatsLeft = nil
	it.floatsRight = nil
	it.boxes = nil
	it.cacheLeft.invalidate()
	it.cacheRight.invalidate()

	it.Pos.Height = 0
	if h, ok := it.predefinedHeight(); ok {
		it.Pos.Height = h
	}

	ws := it.white
	skipSpaces := ws == css.WhiteSpaceNormal || ws == css.WhiteSpaceNowrap || ws == css.WhiteSpacePreLine
	wasSpace := false

	for _, el := range it.Children {
		// Absolute and fixed children are placed by the positioned
		// pass; skip them on the second pass.
		if secondPass && (el.position == css.PositionAbsolute || el.position == css.PositionFixed) {
			continue
		}

		if skipSpaces {
			if el.IsWhiteSpace() {
				if wasSpace {
					el.Skip = true
					continue
				}
				wasSpace = true
			} else {
				wasSpace = false
			}
		}

		if rw := it.placeElement(el, maxWidth); rw > retWidth {
			retWidth = rw
		}
	}

	it.finishLastBox(true)

	if !haveBlockWidth && it.IsInlineBox() {
		it.Pos.Width = retWidth
	} else {
		it.Pos.Width = maxWidth
	}
	it.calcAutoMargins(parentWidth)

	if len(it.boxes) > 0 {
		// Vertical margin collapse with the first and last boxes.
		// CSS 2.1 §8.3.1.
		if it.collapseTopMargin() {
			oldTop := it.Margins.Top
			it.Margins.Top = max(it.boxes[0].TopMargin(), it.Margins.Top)
			if it.Margins.Top != oldTop {
				it.updateFloats(it.Margins.Top-oldTop, it)
			}
		}
		last := it.boxes[len(it.boxes)-1]
		if it.collapseBottomMargin() {
			it.Margins.Bottom = max(last.BottomMargin(), it.Margins.Bottom)
			it.Pos.Height = last.Bottom() - last.BottomMargin()
		} else {
			it.Pos.Height = last.Bottom()
		}
	}

	// Floats extend the height of their holder.
	if it.IsFloatsHolder() {
		if fh := it.floatsHeight(css.FloatNone); fh > it.Pos.Height {
			it.Pos.Height = fh
		}
	}

	it.Pos.X = x + it.cmLeft()
	it.Pos.Y = y + it.cmTop()

	if h, ok := it.predefinedHeight(); ok {
		it.Pos.Height = h
	}

	minHeight := it.minHeightPx()
	if it.display == css.DisplayListItem {
		if img := it.listImageURL(); img != "" {
			sz := it.ctx.Backend.GetImageSize(img, it.Style.StringOf(css.PropListStyleImageBaseurl))
			if minHeight < sz.Height {
				minHeight = sz.Height
			}
		}
	}
	if minHeight > it.Pos.Height {
		it.Pos.Height = minHeight
	}

	minWidth := it.minWidthPx(parentWidth)
	if minWidth > 0 {
		if minWidth > it.Pos.Width {
			it.Pos.Width = minWidth
		}
		if minWidth > retWidth {
			retWidth = minWidth
		}
	}

	retWidth += it.cmLeft() + it.cmRight()

	// Shrink-to-fit second pass: bounded to depth 2 via the
	// secondPass flag.
	if retWidth < maxWidth && !secondPass && it.haveParent() {
		if it.display == css.DisplayInlineBlock ||
			(it.cssLength(css.PropWidth).IsPredefined() &&
				(it.float != css.FloatNone ||
					it.display == css.DisplayTable ||
					it.position == css.PositionAbsolute ||
					it.position == css.PositionFixed)) {
			it.Render(x, y, retWidth, true)
			it.Pos.Width = retWidth - (it.cmLeft() + it.cmRight())
		}
	}

	if it.IsFloatsHolder() && !secondPass {
		for _, fb := range it.floatsLeft {
			if fb.el.Parent != nil {
				fb.el.applyRelativeShift(fb.el.Parent.Pos.Width)
			}
		}
	}

	it.renderedWidth = retWidth
	return retWidth
}

func (it *Item) minHeightPx() int {
	mh := it.cssLength(css.PropMinHeight)
	if mh.IsPredefined() {
		return 0
	}
	if mh.Unit == css.UnitPercent {
		if it.Parent != nil {
			if ph, ok := it.Parent.predefinedHeight(); ok {
				return it.calcPercent(mh, ph)
			}
		}
		return 0
	}
	v := it.calcPercent(mh, 0)
	if it.boxSizing == css.BoxSizingBorderBox {
		v -= it.Padding.Height() + it.Borders.Height()
		if v < 0 {
			v = 0
		}
	}
	return v
}

func (it *Item) minWidthPx(parentWidth int) int {
	mw := it.cssLength(css.PropMinWidth)
	if mw.IsPredefined() {
		return 0
	}
	v := it.calcPercent(mw, parentWidth)
	if it.boxSizing == css.BoxSizingBorderBox {
		v -= it.Padding.Width() + it.Borders.Width()
		if v < 0 {
			v = 0
		}
	}
	return v
}

// renderInline feeds an inline element's children into the block
// container's line machinery.
func (it *Item) renderInline(container *Item, maxWidth int) int {
	it.calcOutlines(container.Pos.Width)

	retWidth := 0
	ws := it.white
	skipSpaces := ws == css.WhiteSpaceNormal || ws == css.WhiteSpaceNowrap || ws == css.WhiteSpacePreLine
	wasSpace := false

	for _, el := range it.Children {
		if skipSpaces {
			if el.IsWhiteSpace() {
				if wasSpace {
					el.Skip = true
					continue
				}
				wasSpace = true
			} else {
				wasSpace = false
			}
		}
		if rw := container.placeElement(el, maxWidth); rw > retWidth {
			retWidth = rw
		}
	}
	return retWidth
}

// placeElement puts one child into the rendering flow of this block
// container.
func (it *Item) placeElement(el *Item, maxWidth int) int {
	if el.display == css.DisplayNone {
		return 0
	}
	if el.display == css.DisplayInline {
		return el.renderInline(it, maxWidth)
	}

	if el.position == css.PositionAbsolute || el.position == css.PositionFixed {
		lineTop := 0
		if len(it.boxes) > 0 {
			last := it.boxes[len(it.boxes)-1]
			if last.IsLine() {
				lineTop = last.Top()
				if !last.IsEmpty() {
					lineTop += it.LineHeight()
				}
			} else {
				lineTop = last.Bottom()
			}
		}
		el.Render(0, lineTop, maxWidth, false)
		el.Pos.X += el.cmLeft()
		el.Pos.Y += el.cmTop()
		return 0
	}

	switch el.float {
	case css.FloatLeft:
		return it.placeFloatLeft(el, maxWidth)
	case css.FloatRight:
		return it.placeFloatRight(el, maxWidth)
	}

	return it.placeInFlow(el, maxWidth)
}

// placeInFlow handles normal-flow children: blocks open block boxes,
// inline-level items flow into line boxes.
func (it *Item) placeInFlow(el *Item, maxWidth int) int {
	var lineCtx lineContext
	if len(it.boxes) > 0 {
		lineCtx.top = it.boxes[len(it.boxes)-1].Top()
	}
	lineCtx.left = 0
	lineCtx.right = maxWidth
	lineCtx.fixTop()
	it.lineLeftRight(lineCtx.top, maxWidth, &lineCtx.left, &lineCtx.right)

	retWidth := 0

	switch el.display {
	case css.DisplayInlineBlock, css.DisplayInlineTable:
		retWidth = el.Render(lineCtx.left, lineCtx.top, lineCtx.right, false)
	case css.DisplayBlock:
		if el.IsReplaced() || el.IsFloatsHolder() {
			el.Pos.Width = el.calcPercent(el.cssLength(css.PropWidth), lineCtx.right-lineCtx.left)
			parentHeight := 0
			if el.Parent != nil {
				parentHeight = el.Parent.Pos.Height
			}
			el.Pos.Height = el.calcPercent(el.cssLength(css.PropHeight), parentHeight)
		}
		el.calcOutlines(lineCtx.right - lineCtx.left)
	case css.DisplayInlineText:
		sz := el.contentSize(lineCtx.right)
		el.Pos.Width = sz.Width
		el.Pos.Height = sz.Height
	}

	addBox := true
	if len(it.boxes) > 0 && it.boxes[len(it.boxes)-1].CanHold(el, it.white) {
		addBox = false
	}
	if addBox {
		lineCtx.top = it.newBox(el, maxWidth, &lineCtx)
	} else {
		lineCtx.top = it.boxes[len(it.boxes)-1].Top()
	}

	if lineCtx.top != lineCtx.calculatedTop {
		lineCtx.left = 0
		lineCtx.right = maxWidth
		lineCtx.fixTop()
		it.lineLeftRight(lineCtx.top, maxWidth, &lineCtx.left, &lineCtx.right)
	}

	// Adjoining-margin collapse between block siblings.
	if !el.IsInlineBox() {
		if len(it.boxes) == 1 {
			if it.collapseTopMargin() {
				if shift := el.Margins.Top; shift >= 0 {
					lineCtx.top -= shift
					it.boxes[len(it.boxes)-1].YShift(-shift)
				}
			}
		} else if len(it.boxes) >= 2 {
			prevMargin := it.boxes[len(it.boxes)-2].BottomMargin()
			shift := min(prevMargin, el.Margins.Top)
			if shift >= 0 {
				lineCtx.top -= shift
				it.boxes[len(it.boxes)-1].YShift(-shift)
			}
		}
	}

	switch el.display {
	case css.DisplayTable, css.DisplayListItem:
		retWidth = el.Render(lineCtx.left, lineCtx.top, lineCtx.width(), false)
	case css.DisplayBlock, css.DisplayTableCell, css.DisplayTableCaption, css.DisplayTableRow:
		if el.IsReplaced() || el.IsFloatsHolder() {
			retWidth = el.Render(lineCtx.left, lineCtx.top, lineCtx.width(), false) +
				lineCtx.left + (maxWidth - lineCtx.right)
		} else {
			retWidth = el.Render(0, lineCtx.top, maxWidth, false)
		}
	}

	it.boxes[len(it.boxes)-1].AddElement(el)

	if el.IsInlineBox() && !el.Skip {
		retWidth = el.Right() + (maxWidth - lineCtx.right)
	}
	return retWidth
}

// finishLastBox completes the trailing box, dropping it when empty.
// Returns the flow top for the next box.
func (it *Item) finishLastBox(endOfRender bool) int {
	lineTop := 0
	if len(it.boxes) > 0 {
		last := it.boxes[len(it.boxes)-1]
		last.Finish(endOfRender)
		if last.IsEmpty() {
			lineTop = last.Top()
			it.boxes = it.boxes[:len(it.boxes)-1]
		}
		if len(it.boxes) > 0 {
			lineTop = it.boxes[len(it.boxes)-1].Bottom()
		}
	}
	return lineTop
}

// newBox opens the next block or line box at the cleared flow top.
func (it *Item) newBox(el *Item, maxWidth int, lineCtx *lineContext) int {
	lineCtx.top = it.clearedTop(el, it.finishLastBox(false))

	lineCtx.left = 0
	lineCtx.right = maxWidth
	lineCtx.fixTop()
	it.lineLeftRight(lineCtx.top, maxWidth, &lineCtx.left, &lineCtx.right)

	if el.IsInlineBox() || el.IsFloatsHolder() {
		if el.Width() > lineCtx.right-lineCtx.left {
			lineCtx.top = it.findNextLineTop(lineCtx.top, el.Width(), maxWidth)
			lineCtx.left = 0
			lineCtx.right = maxWidth
			lineCtx.fixTop()
			it.lineLeftRight(lineCtx.top, maxWidth, &lineCtx.left, &lineCtx.right)
		}
	}

	firstLineMargin := 0
	if len(it.boxes) == 0 &&
		it.Style.Keyword(css.PropListStyleType) != css.ListStyleTypeNone &&
		it.Style.Keyword(css.PropListStylePosition) == css.ListStylePositionInside {
		firstLineMargin = it.FontSize()
	}

	if el.IsInlineBox() {
		textIndent := 0
		if ti := it.cssLength(css.PropTextIndent); !ti.IsPredefined() && ti.Value != 0 {
			haveLineBox := false
			for _, b := range it.boxes {
				if b.IsLine() {
					haveLineBox = true
					break
				}
			}
			if !haveLineBox {
				textIndent = it.calcPercent(ti, maxWidth)
			}
		}
		it.boxes = append(it.boxes, newLineBox(
			lineCtx.top,
			lineCtx.left+firstLineMargin+textIndent,
			lineCtx.right,
			it.LineHeight(),
			it.FontMetrics(),
			it.textAlign,
		))
	} else {
		it.boxes = append(it.boxes, newBlockBox(lineCtx.top, lineCtx.left, lineCtx.right))
	}
	return lineCtx.top
}

// clearedTop moves a child's flow top below floats its clear names.
// CSS 2.1 §9.5.2.
func (it *Item) clearedTop(el *Item, lineTop int) int {
	switch el.clear {
	case css.ClearLeft:
		if fh := it.leftFloatsHeight(); fh > lineTop {
			lineTop = fh
		}
	case css.ClearRight:
		if fh := it.rightFloatsHeight(); fh > lineTop {
			lineTop = fh
		}
	case css.ClearBoth:
		if fh := it.floatsHeight(css.FloatNone); fh > lineTop {
			lineTop = fh
		}
	default:
		if el.float != css.FloatNone {
			if fh := it.floatsHeight(el.float); fh > lineTop {
				lineTop = fh
			}
		}
	}
	return lineTop
}

// applyVerticalAlign centers or bottoms the boxes inside a taller
// container (table cells).
func (it *Item) applyVerticalAlign() {
	if len(it.boxes) == 0 {
		return
	}
	add := 0
	contentHeight := it.boxes[len(it.boxes)-1].Bottom()
	if it.Pos.Height > contentHeight {
		switch it.vAlign {
		case css.VAlignMiddle:
			add = (it.Pos.Height - contentHeight) / 2
		case css.VAlignBottom:
			add = it.Pos.Height - contentHeight
		}
	}
	if add != 0 {
		for _, b := range it.boxes {
			b.YShift(add)
		}
	}
}

// listImageURL returns the resolved list-style-image URL, if any.
func (it *Item) listImageURL() string {
	return style.ExtractURL(it.Style.StringOf(css.PropListStyleImage))
}
