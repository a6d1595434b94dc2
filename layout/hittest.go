package layout

import (
	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/style"
)

// Hit-testing walks the tree in reverse paint order: positive-z
// positioned, zero-z positioned, inlines, floats, blocks, negative-z
// positioned. The first element whose border box contains the point
// wins. Fixed elements test against client coordinates.

// ElementAt returns the topmost item at the document point (x, y);
// clientX/clientY are the viewport coordinates used for fixed
// elements.
func (it *Item) ElementAt(x, y, clientX, clientY int) *Item {
	if !it.IsVisible() {
		return nil
	}

	// Positive z-index positioned descendants, topmost first.
	for i := len(it.positioned) - 1; i >= 0; i-- {
		el := it.positioned[i]
		if el.Style.ZIndex() <= 0 {
			break
		}
		if found := el.hitPositioned(x, y, clientX, clientY); found != nil {
			return found
		}
	}
	// Zero z-index positioned.
	for i := len(it.positioned) - 1; i >= 0; i-- {
		el := it.positioned[i]
		if el.Style.ZIndex() != 0 {
			continue
		}
		if found := el.hitPositioned(x, y, clientX, clientY); found != nil {
			return found
		}
	}

	if found := it.hitChildren(x, y, clientX, clientY, hitInlines); found != nil {
		return found
	}
	if found := it.hitChildren(x, y, clientX, clientY, hitFloats); found != nil {
		return found
	}
	if found := it.hitChildren(x, y, clientX, clientY, hitBlocks); found != nil {
		return found
	}

	// Negative z-index positioned, topmost first.
	for i := len(it.positioned) - 1; i >= 0; i-- {
		el := it.positioned[i]
		if el.Style.ZIndex() >= 0 {
			continue
		}
		if found := el.hitPositioned(x, y, clientX, clientY); found != nil {
			return found
		}
	}

	if it.hitSelf(x, y, clientX, clientY) {
		return it
	}
	return nil
}

type hitKind int

const (
	hitBlocks hitKind = iota
	hitFloats
	hitInlines
)

func (it *Item) hitChildren(x, y, clientX, clientY int, kind hitKind) *Item {
	for i := len(it.Children) - 1; i >= 0; i-- {
		el := it.Children[i]
		if !el.IsVisible() || el.IsPositioned() {
			continue
		}
		match := false
		switch kind {
		case hitBlocks:
			match = !el.IsInlineBox() && el.float == css.FloatNone
		case hitFloats:
			match = el.float != css.FloatNone
		case hitInlines:
			match = el.IsInlineBox() && el.float == css.FloatNone
		}
		if match {
			if found := el.ElementAt(x, y, clientX, clientY); found != nil {
				return found
			}
		} else if found := el.hitChildren(x, y, clientX, clientY, kind); found != nil {
			return found
		}
	}
	return nil
}

func (it *Item) hitPositioned(x, y, clientX, clientY int) *Item {
	if found := it.ElementAt(x, y, clientX, clientY); found != nil {
		return found
	}
	return nil
}

// hitSelf tests the point against the item's border box; inline
// elements test their line-box fragments.
func (it *Item) hitSelf(x, y, clientX, clientY int) bool {
	px, py := x, y
	if it.position == css.PositionFixed {
		px, py = clientX, clientY
	}

	if it.display == css.DisplayInline && it.Style.Node != nil {
		ox, oy := it.DocumentOffset()
		for _, frag := range it.InlineFragments() {
			if frag.Offset(ox, oy).Contains(px, py) {
				return true
			}
		}
		return false
	}

	box := it.BorderBox()
	ox, oy := it.DocumentOffset()
	return box.Offset(ox, oy).Contains(px, py)
}

// InlineFragments returns the line-box fragments of an inline
// element, in the parent content-box coordinate space.
func (it *Item) InlineFragments() []geom.Position {
	var boxes []geom.Position
	var current geom.Position
	var oldBox Box
	haveCurrent := false

	flush := func() {
		if !haveCurrent {
			return
		}
		if len(boxes) == 0 {
			current.X -= it.Padding.Left + it.Borders.Left
			current.Width += it.Padding.Left + it.Borders.Left
		}
		boxes = append(boxes, current)
		haveCurrent = false
	}

	for _, el := range it.Children {
		if el.Skip {
			continue
		}
		switch {
		case el.box != nil:
			if el.box != oldBox {
				flush()
				oldBox = el.box
				current = geom.Position{
					X: el.Left() + el.Margins.Left,
					Y: el.Top() - it.Padding.Top - it.Borders.Top,
				}
				haveCurrent = true
			}
			current.Width = el.Right() - current.X - el.Margins.Right - el.Margins.Left
			current.Height = max(current.Height,
				el.Height()+it.Padding.Height()+it.Borders.Height())
		case el.display == css.DisplayInline:
			sub := el.InlineFragments()
			if len(sub) > 0 {
				flush()
				boxes = append(boxes, sub...)
			}
		}
	}
	flush()
	if len(boxes) > 0 && it.Padding.Right+it.Borders.Right > 0 {
		boxes[len(boxes)-1].Width += it.Padding.Right + it.Borders.Right
	}
	return boxes
}

// RedrawBox returns the rectangle a style change on this element
// repaints: the fragment union for inlines, the border box otherwise,
// in document coordinates (client coordinates for fixed elements).
func (it *Item) RedrawBox() geom.Position {
	if it.display == css.DisplayInline || it.display == css.DisplayTableRow {
		ox, oy := it.DocumentOffset()
		var union geom.Position
		for _, frag := range it.InlineFragments() {
			union = union.Union(frag.Offset(ox, oy))
		}
		return union
	}
	box := it.BorderBox()
	if it.position != css.PositionFixed {
		ox, oy := it.DocumentOffset()
		box = box.Offset(ox, oy)
	}
	return box
}

// DocumentSize returns the extent of the laid-out content.
func (it *Item) DocumentSize() geom.Size {
	var sz geom.Size
	it.accumulateSize(&sz, 0, 0)
	return sz
}

func (it *Item) accumulateSize(sz *geom.Size, x, y int) {
	if !it.IsVisible() && it.display != css.DisplayInlineText {
		return
	}
	box := it.BorderBox().Offset(x, y)
	sz.Width = max(sz.Width, box.Right())
	sz.Height = max(sz.Height, box.Bottom())
	// Overflowing children of a clipped container do not extend the
	// document.
	if it.overflow > css.OverflowVisible {
		return
	}
	for _, el := range it.Children {
		el.accumulateSize(sz, x+it.Pos.X, y+it.Pos.Y)
	}
}

// FindByStyle returns the item wrapping the given styled node.
func (it *Item) FindByStyle(s *style.StyledNode) *Item {
	if it.Style == s {
		return it
	}
	for _, c := range it.Children {
		if f := c.FindByStyle(s); f != nil {
			return f
		}
	}
	return nil
}
