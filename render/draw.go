// Package render drives the host backend: it walks the layout tree in
// stacking order issuing drawing primitives, and provides the default
// headless raster backend.
//
// Spec references:
// - CSS 2.1 §9.9 Layered presentation (stacking order)
// - CSS 2.1 §14 Colors and backgrounds
package render

import (
	"sort"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
	"github.com/flintweb/flint/layout"
)

// drawFlag selects which children a traversal pass paints.
type drawFlag int

const (
	drawPositioned drawFlag = iota
	drawBlock
	drawFloats
	drawInlines
)

// Painter issues host primitives for a layout tree.
type Painter struct {
	backend  host.Backend
	viewport geom.Position
	root     *layout.Item
	baseURL  string
}

// NewPainter creates a painter for the tree rooted at root. baseURL
// resolves image sources.
func NewPainter(root *layout.Item, backend host.Backend, viewport geom.Position, baseURL string) *Painter {
	return &Painter{backend: backend, viewport: viewport, root: root, baseURL: baseURL}
}

// Paint draws the whole document. Paint order per stacking context:
// the element's own background and borders, negative-z positioned,
// in-flow blocks, floats, inlines, zero-z positioned, positive-z
// positioned.
func (p *Painter) Paint() {
	if p.root == nil {
		return
	}
	p.drawItem(p.root, 0, 0)
	p.drawStackingContext(p.root, 0, 0, true)
}

// drawStackingContext draws an element's children grouped by z-index
// buckets.
func (p *Painter) drawStackingContext(el *layout.Item, x, y int, withPositioned bool) {
	if !el.IsVisible() {
		return
	}
	var zindexes []int
	if withPositioned {
		seen := map[int]bool{}
		for _, pe := range el.Positioned() {
			z := pe.Style.ZIndex()
			if !seen[z] {
				seen[z] = true
				zindexes = append(zindexes, z)
			}
		}
		sort.Ints(zindexes)
		for _, z := range zindexes {
			if z < 0 {
				p.drawChildren(el, x, y, drawPositioned, z)
			}
		}
	}
	p.drawChildren(el, x, y, drawBlock, 0)
	p.drawChildren(el, x, y, drawFloats, 0)
	p.drawChildren(el, x, y, drawInlines, 0)
	if withPositioned {
		for _, z := range zindexes {
			if z == 0 {
				p.drawChildren(el, x, y, drawPositioned, z)
			}
		}
		for _, z := range zindexes {
			if z > 0 {
				p.drawChildren(el, x, y, drawPositioned, z)
			}
		}
	}
}

// drawChildren is one flag pass over an element's children. (x, y) is
// the document position of el's parent content box.
func (p *Painter) drawChildren(el *layout.Item, x, y int, flag drawFlag, zindex int) {
	posX := el.Pos.X + x
	posY := el.Pos.Y + y

	clipped := false
	if el.Overflow() > css.OverflowVisible {
		border := el.BorderBox().Offset(x, y)
		p.backend.SetClip(border, p.borderRadii(el, border), true, true)
		clipped = true
	}

	for _, child := range el.Children {
		if !child.IsVisible() {
			continue
		}
		recurse := true
		switch flag {
		case drawPositioned:
			if child.IsPositioned() && child.Style.ZIndex() == zindex {
				if child.PositionScheme() == css.PositionFixed {
					p.drawItem(child, p.viewport.X, p.viewport.Y)
					p.drawStackingContext(child, p.viewport.X, p.viewport.Y, true)
				} else {
					p.drawItem(child, posX, posY)
					p.drawStackingContext(child, posX, posY, true)
				}
				recurse = false
			}
		case drawBlock:
			if !child.IsInlineBox() && child.FloatSide() == css.FloatNone && !child.IsPositioned() {
				p.drawItem(child, posX, posY)
			}
		case drawFloats:
			if child.FloatSide() != css.FloatNone && !child.IsPositioned() {
				p.drawItem(child, posX, posY)
				p.drawStackingContext(child, posX, posY, false)
				recurse = false
			}
		case drawInlines:
			if child.IsInlineBox() && child.FloatSide() == css.FloatNone && !child.IsPositioned() {
				p.drawItem(child, posX, posY)
				if child.Display() == css.DisplayInlineBlock {
					p.drawStackingContext(child, posX, posY, false)
					recurse = false
				}
			}
		}

		if recurse {
			if flag == drawPositioned {
				if !child.IsPositioned() {
					p.drawChildren(child, posX, posY, flag, zindex)
				}
			} else if child.FloatSide() == css.FloatNone &&
				child.Display() != css.DisplayInlineBlock && !child.IsPositioned() {
				p.drawChildren(child, posX, posY, flag, zindex)
			}
		}
	}

	if clipped {
		p.backend.DelClip()
	}
}

// drawItem paints one element's own boxes: text for text runs, the
// image for replaced elements, background, borders and list marker
// otherwise.
func (p *Painter) drawItem(el *layout.Item, x, y int) {
	if el.Style.IsText() {
		p.drawText(el, x, y)
		return
	}
	p.drawBackground(el, x, y)
	if el.IsReplaced() {
		pos := el.Pos.Offset(x, y)
		src := el.Style.Node.GetAttribute("src")
		p.backend.DrawImage(src, p.baseURL, pos)
	}
	p.drawBorders(el, x, y)
	if marker := el.Marker(); marker != nil {
		p.backend.DrawListMarker(marker)
	}
}

// drawText issues one text run.
func (p *Painter) drawText(el *layout.Item, x, y int) {
	if el.Skip {
		return
	}
	font, metrics := el.Style.Font()
	if font == nil {
		return
	}
	text := el.Style.Text()
	if el.IsWhiteSpace() && !metrics.DrawSpaces {
		return
	}
	pos := el.Pos.Offset(x, y)
	color := el.Style.ColorOf(css.PropColor)
	p.backend.DrawText(text, font, color, pos)
}

// drawBackground paints an element's background color and image.
func (p *Painter) drawBackground(el *layout.Item, x, y int) {
	bg := el.Style.Background()
	if bg.Color.A == 0 && bg.Image == "" {
		return
	}

	// Inline elements paint each line-box fragment.
	if el.Display() == css.DisplayInline {
		ox, oy := el.DocumentOffset()
		for _, frag := range el.InlineFragments() {
			p.backend.DrawBackground(&host.BackgroundPaint{
				Color:     bg.Color,
				ClipBox:   frag.Offset(ox, oy),
				OriginBox: frag.Offset(ox, oy),
				BorderBox: frag.Offset(ox, oy),
			})
		}
		return
	}

	borderBox := el.BorderBox().Offset(x, y)
	paddingBox := el.PaddingBox().Offset(x, y)
	contentBox := el.Pos.Offset(x, y)

	boxFor := func(kind int) geom.Position {
		switch kind {
		case css.BackgroundBoxBorder:
			return borderBox
		case css.BackgroundBoxContent:
			return contentBox
		default:
			return paddingBox
		}
	}

	paint := &host.BackgroundPaint{
		Image:      bg.Image,
		BaseURL:    bg.BaseURL,
		Attachment: bg.Attachment,
		Repeat:     bg.Repeat,
		Color:      bg.Color,
		ClipBox:    boxFor(bg.Clip),
		OriginBox:  boxFor(bg.Origin),
		BorderBox:  borderBox,
		Radii:      p.borderRadii(el, borderBox),
		IsRoot:     el.Parent == nil || el.IsBody(),
	}

	if bg.Image != "" {
		paint.ImageSize = p.backend.GetImageSize(bg.Image, bg.BaseURL)
		paint.PositionX = paint.OriginBox.X + positionOffset(bg.PositionX, paint.OriginBox.Width, paint.ImageSize.Width)
		paint.PositionY = paint.OriginBox.Y + positionOffset(bg.PositionY, paint.OriginBox.Height, paint.ImageSize.Height)
	}

	p.backend.DrawBackground(paint)
}

// positionOffset resolves a background-position coordinate: percents
// position the image within the leftover space.
func positionOffset(l css.Length, area, image int) int {
	if l.Unit == css.UnitPercent {
		return (area - image) * int(l.Value) / 100
	}
	return int(l.Value)
}

// drawBorders paints the four border sides.
func (p *Painter) drawBorders(el *layout.Item, x, y int) {
	if el.Borders.Width() == 0 && el.Borders.Height() == 0 {
		return
	}
	borderBox := el.BorderBox().Offset(x, y)
	borders := &host.Borders{
		Top: host.Border{
			Width: el.Borders.Top,
			Style: el.Style.Keyword(css.PropBorderTopStyle),
			Color: el.Style.ColorOf(css.PropBorderTopColor),
		},
		Right: host.Border{
			Width: el.Borders.Right,
			Style: el.Style.Keyword(css.PropBorderRightStyle),
			Color: el.Style.ColorOf(css.PropBorderRightColor),
		},
		Bottom: host.Border{
			Width: el.Borders.Bottom,
			Style: el.Style.Keyword(css.PropBorderBottomStyle),
			Color: el.Style.ColorOf(css.PropBorderBottomColor),
		},
		Left: host.Border{
			Width: el.Borders.Left,
			Style: el.Style.Keyword(css.PropBorderLeftStyle),
			Color: el.Style.ColorOf(css.PropBorderLeftColor),
		},
		Radii: p.borderRadii(el, borderBox),
	}
	p.backend.DrawBorders(borders, borderBox, el.Parent == nil)
}

// borderRadii resolves the per-corner radii against the border box.
func (p *Painter) borderRadii(el *layout.Item, box geom.Position) host.BorderRadii {
	r := func(id css.PropertyID, base int) int {
		l := el.Style.CSSLength(id)
		if l.IsPredefined() {
			return 0
		}
		if l.Unit == css.UnitPercent {
			return base * int(l.Value) / 100
		}
		return int(l.Value)
	}
	return host.BorderRadii{
		TopLeftX:     r(css.PropBorderTopLeftRadiusX, box.Width),
		TopLeftY:     r(css.PropBorderTopLeftRadiusY, box.Height),
		TopRightX:    r(css.PropBorderTopRightRadiusX, box.Width),
		TopRightY:    r(css.PropBorderTopRightRadiusY, box.Height),
		BottomRightX: r(css.PropBorderBottomRightRadiusX, box.Width),
		BottomRightY: r(css.PropBorderBottomRightRadiusY, box.Height),
		BottomLeftX:  r(css.PropBorderBottomLeftRadiusX, box.Width),
		BottomLeftY:  r(css.PropBorderBottomLeftRadiusY, box.Height),
	}
}
