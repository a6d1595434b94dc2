package layout

import (
	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/host"
)

// Box is one vertical slot in a block container: either a block box
// holding exactly one non-inline element, or a line box holding a run
// of inline elements.
// CSS 2.1 §9.4.1 / §9.4.2.
type Box interface {
	IsLine() bool
	Top() int
	Bottom() int
	Height() int
	Width() int
	// CanHold reports whether el fits into this box under the given
	// white-space mode.
	CanHold(el *Item, whiteSpace int) bool
	AddElement(el *Item)
	// Finish completes the box: a line box trims trailing whitespace,
	// computes baseline and line height and aligns its items.
	Finish(lastBox bool)
	IsEmpty() bool
	Baseline() int
	Elements() []*Item
	TopMargin() int
	BottomMargin() int
	YShift(shift int)
	// NewWidth re-shapes an in-progress line box after a float landed;
	// items that no longer fit are returned for re-placement.
	NewWidth(left, right int) []*Item
}

// blockBox holds exactly one block-level element.
type blockBox struct {
	boxTop   int
	boxLeft  int
	boxRight int
	element  *Item
}

func newBlockBox(top, left, right int) *blockBox {
	return &blockBox{boxTop: top, boxLeft: left, boxRight: right}
}

func (b *blockBox) IsLine() bool { return false }

func (b *blockBox) Top() int {
	if b.element != nil {
		return b.element.Top()
	}
	return b.boxTop
}

func (b *blockBox) Bottom() int {
	if b.element != nil {
		return b.element.Bottom()
	}
	return b.boxTop
}

func (b *blockBox) Height() int {
	if b.element != nil {
		return b.element.Height()
	}
	return 0
}

func (b *blockBox) Width() int {
	if b.element != nil {
		return b.element.Width()
	}
	return 0
}

func (b *blockBox) CanHold(el *Item, _ int) bool {
	return b.element == nil && !el.IsInlineBox()
}

func (b *blockBox) AddElement(el *Item) {
	b.element = el
	el.box = b
}

func (b *blockBox) Finish(bool) {
	if b.element == nil {
		return
	}
	b.element.applyRelativeShift(b.boxRight - b.boxLeft)
}

func (b *blockBox) IsEmpty() bool { return b.element == nil }

func (b *blockBox) Baseline() int {
	if b.element != nil {
		return b.element.Baseline()
	}
	return 0
}

func (b *blockBox) Elements() []*Item {
	if b.element == nil {
		return nil
	}
	return []*Item{b.element}
}

func (b *blockBox) TopMargin() int {
	if b.element != nil && b.element.collapseTopMargin() {
		return b.element.Margins.Top
	}
	return 0
}

func (b *blockBox) BottomMargin() int {
	if b.element != nil && b.element.collapseBottomMargin() {
		return b.element.Margins.Bottom
	}
	return 0
}

func (b *blockBox) YShift(shift int) {
	b.boxTop += shift
	if b.element != nil {
		b.element.Pos.Y += shift
	}
}

func (b *blockBox) NewWidth(int, int) []*Item { return nil }

// lineBox lays out a run of inline elements on one visual line.
type lineBox struct {
	boxTop     int
	boxLeft    int
	boxRight   int
	height     int
	width      int
	lineHeight int
	baseline   int
	metrics    host.FontMetrics
	textAlign  int
	items      []*Item
}

func newLineBox(top, left, right, lineHeight int, metrics host.FontMetrics, textAlign int) *lineBox {
	return &lineBox{
		boxTop:     top,
		boxLeft:    left,
		boxRight:   right,
		lineHeight: lineHeight,
		metrics:    metrics,
		textAlign:  textAlign,
	}
}

func (b *lineBox) IsLine() bool { return true }
func (b *lineBox) Top() int     { return b.boxTop }
func (b *lineBox) Bottom() int  { return b.boxTop + b.height }
func (b *lineBox) Height() int  { return b.height }
func (b *lineBox) Width() int   { return b.width }

// fmBaseline is the baseline offset measured from the bottom of the
// line strip: the font descent.
func fmBaseline(m host.FontMetrics) int {
	return m.Descent
}

// AddElement appends an inline item. Leading whitespace, runs of
// whitespace and break elements are marked skip.
func (b *lineBox) AddElement(el *Item) {
	el.Skip = false
	el.box = nil
	add := true
	if (len(b.items) == 0 && el.IsWhiteSpace()) || el.IsBreak() {
		el.Skip = true
	} else if el.IsWhiteSpace() {
		if b.haveLastSpace() {
			add = false
			el.Skip = true
		}
	}

	if add {
		el.box = b
		b.items = append(b.items, el)
		if !el.Skip {
			shiftLeft := el.inlineShiftLeft()
			shiftRight := el.inlineShiftRight()
			el.Pos.X = b.boxLeft + b.width + shiftLeft + el.cmLeft()
			el.Pos.Y = b.boxTop + el.cmTop()
			b.width += el.Width() + shiftLeft + shiftRight
		}
	}
}

// CanHold accepts inline items while the line has room; nowrap and
// pre modes never wrap.
func (b *lineBox) CanHold(el *Item, whiteSpace int) bool {
	if !el.IsInlineBox() {
		return false
	}
	if el.IsBreak() {
		return false
	}
	if whiteSpace == css.WhiteSpaceNowrap || whiteSpace == css.WhiteSpacePre {
		return true
	}
	if b.boxLeft+b.width+el.Width()+el.inlineShiftLeft()+el.inlineShiftRight() > b.boxRight {
		return false
	}
	return true
}

func (b *lineBox) haveLastSpace() bool {
	for i := len(b.items) - 1; i >= 0; i-- {
		if b.items[i].IsWhiteSpace() || b.items[i].IsBreak() {
			return true
		}
		break
	}
	return false
}

func (b *lineBox) IsEmpty() bool {
	for i := len(b.items) - 1; i >= 0; i-- {
		if !b.items[i].Skip || b.items[i].IsBreak() {
			return false
		}
	}
	return true
}

func (b *lineBox) isBreakOnly() bool {
	if len(b.items) == 0 {
		return true
	}
	if !b.items[0].IsBreak() {
		return false
	}
	for _, el := range b.items {
		if !el.Skip {
			return false
		}
	}
	return true
}

// Finish completes the line: trailing whitespace and breaks are
// trimmed, the baseline and line height are computed from the text
// items, text-align shifts the run, and each item is vertically
// aligned.
// CSS 2.1 §10.8.
func (b *lineBox) Finish(lastBox bool) {
	if b.IsEmpty() || (lastBox && b.isBreakOnly()) {
		b.height = 0
		return
	}

	// 1. Trim trailing whitespace.
	for i := len(b.items) - 1; i >= 0; i-- {
		el := b.items[i]
		if el.IsWhiteSpace() || el.IsBreak() {
			if !el.Skip {
				el.Skip = true
				b.width -= el.Width()
			}
		} else {
			break
		}
	}

	baseline := fmBaseline(b.metrics)
	lineHeight := b.lineHeight

	// 4. Horizontal alignment: justify computes as left here.
	addX := 0
	switch b.textAlign {
	case css.TextAlignRight:
		if b.width < b.boxRight-b.boxLeft {
			addX = (b.boxRight - b.boxLeft) - b.width
		}
	case css.TextAlignCenter:
		if b.width < b.boxRight-b.boxLeft {
			addX = ((b.boxRight - b.boxLeft) - b.width) / 2
		}
	}

	// 2–3. Baseline and line height from the text items.
	b.height = 0
	for _, el := range b.items {
		if el.display == css.DisplayInlineText {
			fm := el.FontMetrics()
			baseline = max(baseline, fmBaseline(fm))
			lineHeight = max(lineHeight, el.LineHeight())
			b.height = max(b.height, fm.Height)
		}
		el.Pos.X += addX
	}

	if b.height > 0 {
		baseline += (lineHeight - b.height) / 2
	}
	b.height = lineHeight

	// 5. Vertical alignment.
	y1 := 0
	y2 := b.height
	for _, el := range b.items {
		if el.display == css.DisplayInlineText {
			fm := el.FontMetrics()
			el.Pos.Y = b.height - baseline - fm.Ascent
		} else {
			switch el.vAlign {
			case css.VAlignBaseline, css.VAlignSub, css.VAlignSuper:
				el.Pos.Y = b.height - baseline - el.Height() + el.Baseline() + el.cmTop()
			case css.VAlignTop:
				el.Pos.Y = y1 + el.cmTop()
			case css.VAlignTextTop:
				el.Pos.Y = b.height - baseline - b.metrics.Ascent + el.cmTop()
			case css.VAlignMiddle:
				el.Pos.Y = b.height - baseline - b.metrics.XHeight/2 - el.Height()/2 + el.cmTop()
			case css.VAlignBottom:
				el.Pos.Y = y2 - el.Height() + el.cmTop()
			case css.VAlignTextBottom:
				el.Pos.Y = b.height - baseline + b.metrics.Descent - el.Height() + el.cmTop()
			}
			y1 = min(y1, el.Top())
			y2 = max(y2, el.Bottom())
		}
	}

	// 6. Shift everything into the box and apply relative offsets.
	for _, el := range b.items {
		el.Pos.Y -= y1
		el.Pos.Y += b.boxTop
		if el.display != css.DisplayInlineText {
			switch el.vAlign {
			case css.VAlignTop:
				el.Pos.Y = b.boxTop + el.cmTop()
			case css.VAlignBottom:
				el.Pos.Y = b.boxTop + (y2 - y1) - el.Height() + el.cmTop()
			}
		}
		el.applyRelativeShift(b.boxRight - b.boxLeft)
	}
	b.height = y2 - y1
	b.baseline = (baseline - y1) - (b.height - lineHeight)
}

func (b *lineBox) Baseline() int { return b.baseline }

func (b *lineBox) Elements() []*Item { return b.items }

func (b *lineBox) TopMargin() int    { return 0 }
func (b *lineBox) BottomMargin() int { return 0 }

func (b *lineBox) YShift(shift int) {
	b.boxTop += shift
	for _, el := range b.items {
		el.Pos.Y += shift
	}
}

// NewWidth re-shapes the line in place after a float changed the
// available span; items past the new overflow point are handed back.
func (b *lineBox) NewWidth(left, right int) []*Item {
	var overflow []*Item
	add := left - b.boxLeft
	if add == 0 {
		return nil
	}
	b.boxLeft = left
	b.boxRight = right
	b.width = 0
	removeFrom := -1
	for i, el := range b.items {
		if el.Skip {
			continue
		}
		// The first item always stays on the line.
		if i > 0 && b.boxLeft+b.width+el.Width()+el.inlineShiftLeft()+el.inlineShiftRight() > b.boxRight {
			removeFrom = i
			break
		}
		el.Pos.X += add
		b.width += el.Width() + el.inlineShiftLeft() + el.inlineShiftRight()
	}
	if removeFrom >= 0 {
		overflow = append(overflow, b.items[removeFrom:]...)
		b.items = b.items[:removeFrom]
	}
	return overflow
}
