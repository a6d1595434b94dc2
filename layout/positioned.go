package layout

import (
	"sort"

	"github.com/flintweb/flint/css"
)

// Positioned elements are collected per positioning context during
// the flow pass and placed afterwards.
// CSS 2.1 §9.3 / §10.1 (containing blocks of positioned elements).

// FetchPositioned registers every non-static descendant with its
// nearest positioned ancestor (or the root). Returns true when any
// absolute or fixed element exists.
func (it *Item) FetchPositioned() bool {
	ret := false
	it.positioned = nil
	for _, el := range it.Children {
		if el.position != css.PositionStatic {
			it.addPositioned(el)
		}
		if el.position == css.PositionAbsolute || el.position == css.PositionFixed {
			ret = true
		}
		if el.FetchPositioned() {
			ret = true
		}
	}
	return ret
}

func (it *Item) addPositioned(el *Item) {
	if it.position != css.PositionStatic || !it.haveParent() {
		it.positioned = append(it.positioned, el)
		return
	}
	it.Parent.addPositioned(el)
}

// RenderPositioned places this context's positioned children:
// fixed against the viewport, absolute against this context's padding
// box, applying the {left,right,top,bottom} combinations. A single
// offset translates; both offsets stretch unless an explicit size
// overrides. Changed elements are re-rendered.
func (it *Item) RenderPositioned() {
	viewport := it.ctx.Viewport

	for _, el := range it.positioned {
		if el.display == css.DisplayNone {
			continue
		}
		if el.position != css.PositionAbsolute && el.position != css.PositionFixed {
			el.RenderPositioned()
			continue
		}

		var parentWidth, parentHeight int
		if el.position == css.PositionFixed {
			parentWidth = viewport.Width
			parentHeight = viewport.Height
		} else if el.Parent != nil {
			parentWidth = el.Parent.Width()
			parentHeight = el.Parent.Height()
		}

		left := el.cssLength(css.PropLeft)
		right := el.cssLength(css.PropRight)
		top := el.cssLength(css.PropTop)
		bottom := el.cssLength(css.PropBottom)

		needRender := false
		newWidth := -1
		newHeight := -1

		if w := el.cssLength(css.PropWidth); w.Unit == css.UnitPercent && !w.IsPredefined() && parentWidth > 0 {
			newWidth = el.calcPercent(w, parentWidth)
			if el.Pos.Width != newWidth {
				needRender = true
				el.Pos.Width = newWidth
			}
		}
		if h := el.cssLength(css.PropHeight); h.Unit == css.UnitPercent && !h.IsPredefined() && parentHeight > 0 {
			newHeight = el.calcPercent(h, parentHeight)
			if el.Pos.Height != newHeight {
				needRender = true
				el.Pos.Height = newHeight
			}
		}

		cvtX := false
		cvtY := false

		if el.position == css.PositionFixed {
			switch {
			case !left.IsPredefined() && right.IsPredefined():
				el.Pos.X = el.calcPercent(left, parentWidth) + el.cmLeft()
			case left.IsPredefined() && !right.IsPredefined():
				el.Pos.X = parentWidth - el.calcPercent(right, parentWidth) - el.Pos.Width - el.cmRight()
			case !left.IsPredefined() && !right.IsPredefined():
				el.Pos.X = el.calcPercent(left, parentWidth) + el.cmLeft()
				el.Pos.Width = parentWidth - el.calcPercent(left, parentWidth) -
					el.calcPercent(right, parentWidth) - (el.cmLeft() + el.cmRight())
				needRender = true
			}
			switch {
			case !top.IsPredefined() && bottom.IsPredefined():
				el.Pos.Y = el.calcPercent(top, parentHeight) + el.cmTop()
			case top.IsPredefined() && !bottom.IsPredefined():
				el.Pos.Y = parentHeight - el.calcPercent(bottom, parentHeight) - el.Pos.Height - el.cmBottom()
			case !top.IsPredefined() && !bottom.IsPredefined():
				el.Pos.Y = el.calcPercent(top, parentHeight) + el.cmTop()
				el.Pos.Height = parentHeight - el.calcPercent(top, parentHeight) -
					el.calcPercent(bottom, parentHeight) - (el.cmTop() + el.cmBottom())
				needRender = true
			}
		} else {
			// Absolute: offsets are relative to this context's padding
			// box.
			if !left.IsPredefined() || !right.IsPredefined() {
				switch {
				case !left.IsPredefined() && right.IsPredefined():
					el.Pos.X = el.calcPercent(left, parentWidth) + el.cmLeft() - it.Padding.Left
				case left.IsPredefined() && !right.IsPredefined():
					el.Pos.X = it.Pos.Width + it.Padding.Right - el.calcPercent(right, parentWidth) -
						el.Pos.Width - el.cmRight()
				default:
					el.Pos.X = el.calcPercent(left, parentWidth) + el.cmLeft() - it.Padding.Left
					el.Pos.Width = it.Pos.Width + it.Padding.Left + it.Padding.Right -
						el.calcPercent(left, parentWidth) - el.calcPercent(right, parentWidth) -
						(el.cmLeft() + el.cmRight())
					if newWidth != -1 {
						el.Pos.X += (el.Pos.Width - newWidth) / 2
						el.Pos.Width = newWidth
					}
					needRender = true
				}
				cvtX = true
			}
			if !top.IsPredefined() || !bottom.IsPredefined() {
				switch {
				case !top.IsPredefined() && bottom.IsPredefined():
					el.Pos.Y = el.calcPercent(top, parentHeight) + el.cmTop() - it.Padding.Top
				case top.IsPredefined() && !bottom.IsPredefined():
					el.Pos.Y = it.Pos.Height + it.Padding.Bottom - el.calcPercent(bottom, parentHeight) -
						el.Pos.Height - el.cmBottom()
				default:
					el.Pos.Y = el.calcPercent(top, parentHeight) + el.cmTop() - it.Padding.Top
					el.Pos.Height = it.Pos.Height + it.Padding.Top + it.Padding.Bottom -
						el.calcPercent(top, parentHeight) - el.calcPercent(bottom, parentHeight) -
						(el.cmTop() + el.cmBottom())
					if newHeight != -1 {
						el.Pos.Y += (el.Pos.Height - newHeight) / 2
						el.Pos.Height = newHeight
					}
					needRender = true
				}
				cvtY = true
			}
		}

		// Offsets were computed against this context; translate into
		// the element's own parent space.
		if cvtX || cvtY {
			offsetX, offsetY := 0, 0
			for cur := el.Parent; cur != nil && cur != it; cur = cur.Parent {
				offsetX += cur.Pos.X
				offsetY += cur.Pos.Y
			}
			if cvtX {
				el.Pos.X -= offsetX
			}
			if cvtY {
				el.Pos.Y -= offsetY
			}
		}

		if needRender {
			pos := el.Pos
			el.Render(el.Left(), el.Top(), el.Width(), true)
			el.Pos = pos
		}

		el.RenderPositioned()
	}

	if len(it.positioned) > 0 {
		sort.SliceStable(it.positioned, func(i, j int) bool {
			return it.positioned[i].Style.ZIndex() < it.positioned[j].Style.ZIndex()
		})
	}
}
