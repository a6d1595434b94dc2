package layout

import (
	"sort"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
)

// Float handling. A floats-holder owns the float lists; a non-holder
// forwards every query and registration to its parent, translating
// between coordinate spaces.
// CSS 2.1 §9.5 Floats.

// placeFloatLeft positions a left-floated child and registers it.
func (it *Item) placeFloatLeft(el *Item, maxWidth int) int {
	lineTop := 0
	if len(it.boxes) > 0 {
		last := it.boxes[len(it.boxes)-1]
		if last.IsLine() {
			lineTop = last.Top()
		} else {
			lineTop = last.Bottom()
		}
	}
	lineTop = it.clearedTop(el, lineTop)

	lineLeft, lineRight := 0, maxWidth
	it.lineLeftRight(lineTop, maxWidth, &lineLeft, &lineRight)

	el.Render(lineLeft, lineTop, lineRight, false)
	if el.Right() > lineRight {
		newTop := it.findNextLineTop(el.Top(), el.Width(), maxWidth)
		el.Pos.X = it.lineLeft(newTop) + el.cmLeft()
		el.Pos.Y = newTop + el.cmTop()
	}
	it.addFloat(el, 0, 0)
	retWidth := it.fixLineWidth(maxWidth, css.FloatLeft)
	if retWidth == 0 {
		retWidth = el.Right()
	}
	return retWidth
}

// placeFloatRight positions a right-floated child and registers it.
func (it *Item) placeFloatRight(el *Item, maxWidth int) int {
	lineTop := 0
	if len(it.boxes) > 0 {
		last := it.boxes[len(it.boxes)-1]
		if last.IsLine() {
			lineTop = last.Top()
		} else {
			lineTop = last.Bottom()
		}
	}
	lineTop = it.clearedTop(el, lineTop)

	lineLeft, lineRight := 0, maxWidth
	it.lineLeftRight(lineTop, maxWidth, &lineLeft, &lineRight)

	el.Render(0, lineTop, lineRight, false)

	if lineLeft+el.Width() > lineRight {
		newTop := it.findNextLineTop(el.Top(), el.Width(), maxWidth)
		el.Pos.X = it.lineRight(newTop, maxWidth) - el.Width() + el.cmLeft()
		el.Pos.Y = newTop + el.cmTop()
	} else {
		el.Pos.X = lineRight - el.Width() + el.cmLeft()
	}
	it.addFloat(el, 0, 0)
	retWidth := it.fixLineWidth(maxWidth, css.FloatRight)
	if retWidth == 0 {
		lineLeft, lineRight = 0, maxWidth
		it.lineLeftRight(lineTop, maxWidth, &lineLeft, &lineRight)
		retWidth = maxWidth - lineRight
	}
	return retWidth
}

// addFloat registers a float with the holder, keeping the left list
// sorted by decreasing right edge and the right list by increasing
// left edge, and invalidating the line caches. Coordinates are
// expressed in the holder's space.
func (it *Item) addFloat(el *Item, x, y int) {
	if !it.IsFloatsHolder() {
		if it.Parent != nil {
			it.Parent.addFloat(el, x+it.Pos.X, y+it.Pos.Y)
		}
		return
	}

	fb := floatedBox{
		pos:   geom.Position{X: el.Left() + x, Y: el.Top() + y, Width: el.Width(), Height: el.Height()},
		side:  el.float,
		clear: el.clear,
		el:    el,
	}

	switch fb.side {
	case css.FloatLeft:
		inserted := false
		for i := range it.floatsLeft {
			if fb.pos.Right() > it.floatsLeft[i].pos.Right() {
				it.floatsLeft = append(it.floatsLeft[:i], append([]floatedBox{fb}, it.floatsLeft[i:]...)...)
				inserted = true
				break
			}
		}
		if !inserted {
			it.floatsLeft = append(it.floatsLeft, fb)
		}
		it.cacheLeft.invalidate()
	case css.FloatRight:
		inserted := false
		for i := range it.floatsRight {
			if fb.pos.Left() < it.floatsRight[i].pos.Left() {
				it.floatsRight = append(it.floatsRight[:i], append([]floatedBox{fb}, it.floatsRight[i:]...)...)
				inserted = true
				break
			}
		}
		if !inserted {
			it.floatsRight = append(it.floatsRight, fb)
		}
		it.cacheRight.invalidate()
	}
}

// floatsHeight returns the extent floats of the given side require
// for clearing; FloatNone reports the bottom of all floats.
func (it *Item) floatsHeight(side int) int {
	if it.IsFloatsHolder() {
		h := 0
		consider := func(fb *floatedBox) {
			process := false
			switch side {
			case css.FloatNone:
				process = true
			case css.FloatLeft:
				process = fb.clear == css.ClearLeft || fb.clear == css.ClearBoth
			case css.FloatRight:
				process = fb.clear == css.ClearRight || fb.clear == css.ClearBoth
			}
			if process {
				if side == css.FloatNone {
					h = max(h, fb.pos.Bottom())
				} else {
					h = max(h, fb.pos.Top())
				}
			}
		}
		for i := range it.floatsLeft {
			consider(&it.floatsLeft[i])
		}
		for i := range it.floatsRight {
			consider(&it.floatsRight[i])
		}
		return h
	}
	if it.Parent != nil {
		return it.Parent.floatsHeight(side) - it.Pos.Y
	}
	return 0
}

func (it *Item) leftFloatsHeight() int {
	if it.IsFloatsHolder() {
		h := 0
		for i := range it.floatsLeft {
			h = max(h, it.floatsLeft[i].pos.Bottom())
		}
		return h
	}
	if it.Parent != nil {
		return it.Parent.leftFloatsHeight() - it.Pos.Y
	}
	return 0
}

func (it *Item) rightFloatsHeight() int {
	if it.IsFloatsHolder() {
		h := 0
		for i := range it.floatsRight {
			h = max(h, it.floatsRight[i].pos.Bottom())
		}
		return h
	}
	if it.Parent != nil {
		return it.Parent.rightFloatsHeight() - it.Pos.Y
	}
	return 0
}

// lineLeft answers the left edge of the available line span at y,
// through a one-entry cache.
func (it *Item) lineLeft(y int) int {
	if it.IsFloatsHolder() {
		if it.cacheLeft.valid && it.cacheLeft.y == y {
			return it.cacheLeft.val
		}
		w := 0
		for i := range it.floatsLeft {
			fb := &it.floatsLeft[i]
			if y >= fb.pos.Top() && y < fb.pos.Bottom() {
				w = max(w, fb.pos.Right())
			}
		}
		it.cacheLeft.set(y, w, false)
		return w
	}
	if it.Parent != nil {
		w := it.Parent.lineLeft(y + it.Pos.Y)
		if w < 0 {
			w = 0
		}
		if w > 0 {
			return w - it.Pos.X
		}
		return 0
	}
	return 0
}

// lineRight answers the right edge of the available span at y.
func (it *Item) lineRight(y, defRight int) int {
	if it.IsFloatsHolder() {
		if it.cacheRight.valid && it.cacheRight.y == y {
			if it.cacheRight.isDefault {
				return defRight
			}
			return min(it.cacheRight.val, defRight)
		}
		w := defRight
		isDefault := true
		for i := range it.floatsRight {
			fb := &it.floatsRight[i]
			if y >= fb.pos.Top() && y < fb.pos.Bottom() {
				w = min(w, fb.pos.Left())
				isDefault = false
			}
		}
		it.cacheRight.set(y, w, isDefault)
		return w
	}
	if it.Parent != nil {
		w := it.Parent.lineRight(y+it.Pos.Y, defRight+it.Pos.X)
		return w - it.Pos.X
	}
	return 0
}

// lineLeftRight fills both edges of the available span at y.
func (it *Item) lineLeftRight(y, defRight int, left, right *int) {
	if it.IsFloatsHolder() {
		*left = it.lineLeft(y)
		*right = it.lineRight(y, defRight)
		return
	}
	if it.Parent != nil {
		it.Parent.lineLeftRight(y+it.Pos.Y, defRight+it.Pos.X, left, right)
	}
	*right -= it.Pos.X
	if *left < 0 {
		*left = 0
	} else if *left > 0 {
		*left -= it.Pos.X
		if *left < 0 {
			*left = 0
		}
	}
}

// findNextLineTop scans float edges for the lowest y at or below top
// with enough horizontal room for width.
func (it *Item) findNextLineTop(top, width, defRight int) int {
	if it.IsFloatsHolder() {
		newTop := top
		var points []int
		addPoint := func(v int) {
			for _, p := range points {
				if p == v {
					return
				}
			}
			points = append(points, v)
		}
		for i := range it.floatsLeft {
			fb := &it.floatsLeft[i]
			if fb.pos.Top() >= top {
				addPoint(fb.pos.Top())
			}
			if fb.pos.Bottom() >= top {
				addPoint(fb.pos.Bottom())
			}
		}
		for i := range it.floatsRight {
			fb := &it.floatsRight[i]
			if fb.pos.Top() >= top {
				addPoint(fb.pos.Top())
			}
			if fb.pos.Bottom() >= top {
				addPoint(fb.pos.Bottom())
			}
		}
		if len(points) > 0 {
			sort.Ints(points)
			newTop = points[len(points)-1]
			for _, pt := range points {
				left, right := 0, defRight
				it.lineLeftRight(pt, defRight, &left, &right)
				if right-left >= width {
					newTop = pt
					break
				}
			}
		}
		return newTop
	}
	if it.Parent != nil {
		return it.Parent.findNextLineTop(top+it.Pos.Y, width, defRight+it.Pos.X) - it.Pos.Y
	}
	return 0
}

// fixLineWidth re-shapes the in-progress box after a float landed:
// when the box's first element carries an incompatible clear the box
// is preserved and its elements re-broken; otherwise the box is
// re-shaped in place with the updated bounds.
func (it *Item) fixLineWidth(maxWidth int, side int) int {
	retWidth := 0
	if len(it.boxes) == 0 {
		return 0
	}

	last := it.boxes[len(it.boxes)-1]
	els := last.Elements()

	wasCleared := false
	if len(els) > 0 && els[0].clear != css.ClearNone {
		first := els[0].clear
		if first == css.ClearBoth ||
			(side == css.FloatLeft && first == css.ClearLeft) ||
			(side == css.FloatRight && first == css.ClearRight) {
			wasCleared = true
		}
	}

	if !wasCleared {
		it.boxes = it.boxes[:len(it.boxes)-1]
		for _, el := range els {
			if rw := it.placeElement(el, maxWidth); rw > retWidth {
				retWidth = rw
			}
		}
		return retWidth
	}

	lineTop := 0
	if last.IsLine() {
		lineTop = last.Top()
	} else {
		lineTop = last.Bottom()
	}
	lineLeft, lineRight := 0, maxWidth
	it.lineLeftRight(lineTop, maxWidth, &lineLeft, &lineRight)

	if last.IsLine() {
		if len(it.boxes) == 1 &&
			it.Style.Keyword(css.PropListStyleType) != css.ListStyleTypeNone &&
			it.Style.Keyword(css.PropListStylePosition) == css.ListStylePositionInside {
			lineLeft += it.FontSize()
		}
		if ti := it.cssLength(css.PropTextIndent); !ti.IsPredefined() && ti.Value != 0 {
			haveLineBox := false
			for _, b := range it.boxes[:len(it.boxes)-1] {
				if b.IsLine() {
					haveLineBox = true
					break
				}
			}
			if !haveLineBox {
				lineLeft += it.calcPercent(ti, maxWidth)
			}
		}
	}

	for _, el := range last.NewWidth(lineLeft, lineRight) {
		if rw := it.placeElement(el, maxWidth); rw > retWidth {
			retWidth = rw
		}
	}
	return retWidth
}

// updateFloats shifts floats anchored below a collapsed margin.
func (it *Item) updateFloats(dy int, parent *Item) {
	if it.IsFloatsHolder() {
		for i := range it.floatsLeft {
			if it.floatsLeft[i].el.isDescendantOf(parent) {
				it.floatsLeft[i].pos.Y += dy
				it.cacheLeft.invalidate()
			}
		}
		for i := range it.floatsRight {
			if it.floatsRight[i].el.isDescendantOf(parent) {
				it.floatsRight[i].pos.Y += dy
				it.cacheRight.invalidate()
			}
		}
		return
	}
	if it.Parent != nil {
		it.Parent.updateFloats(dy, parent)
	}
}

func (it *Item) isDescendantOf(ancestor *Item) bool {
	for p := it; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}
