package layout

import (
	"strconv"
	"strings"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/dom"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
)

// List markers.
// CSS 2.1 §12.5 Lists.

// MarkerIndex returns the 1-based position of a list item among its
// li siblings.
func (it *Item) MarkerIndex() int {
	node := it.Style.Node
	if node == nil || node.Parent == nil {
		return 1
	}
	idx := 1
	for _, sib := range node.Parent.Children {
		if sib == node {
			return idx
		}
		if sib.Type == dom.ElementNode && sib.Data == node.Data {
			idx++
		}
	}
	return idx
}

// Marker builds the host drawing request for a list-item, or nil when
// no marker applies. The marker sits in the left gutter, or inside
// the content area for list-style-position: inside.
func (it *Item) Marker() *host.ListMarker {
	if it.display != css.DisplayListItem {
		return nil
	}
	listType := it.Style.Keyword(css.PropListStyleType)
	img := it.listImageURL()
	if listType == css.ListStyleTypeNone && img == "" {
		return nil
	}

	marker := &host.ListMarker{
		Image:   img,
		BaseURL: it.Style.StringOf(css.PropListStyleImageBaseurl),
		Type:    listType,
		Color:   it.Style.ColorOf(css.PropColor),
		Index:   it.MarkerIndex(),
	}
	font, _ := it.Style.Font()
	marker.Font = font
	marker.Text = MarkerText(listType, marker.Index)

	fontSize := it.FontSize()
	lineHeight := it.LineHeight()
	pos := it.Placement()

	sz := fontSize - fontSize*2/3
	switch {
	case marker.Text != "":
		// Text markers right-align against the content edge.
		w := 0
		if font != nil {
			w = it.ctx.Backend.TextWidth(marker.Text+".", font)
		}
		marker.Pos = geom.Position{X: pos.X - w - fontSize/2, Y: pos.Y, Width: w, Height: lineHeight}
	default:
		marker.Pos = geom.Position{
			X:      pos.X - fontSize,
			Y:      pos.Y + (lineHeight-sz)/2,
			Width:  sz,
			Height: sz,
		}
	}
	if it.Style.Keyword(css.PropListStylePosition) == css.ListStylePositionInside {
		marker.Pos.X += fontSize
	}
	if img != "" {
		isz := it.ctx.Backend.GetImageSize(img, marker.BaseURL)
		if isz.Width > 0 && isz.Height > 0 {
			marker.Pos.Width = isz.Width
			marker.Pos.Height = isz.Height
		}
		marker.Text = ""
	}
	return marker
}

// MarkerText generates the marker text for the enumerated list style
// types; glyph types (disc, circle, square) return "" and are drawn
// by the host.
func MarkerText(listType, index int) string {
	switch listType {
	case css.ListStyleTypeDecimal:
		return strconv.Itoa(index)
	case css.ListStyleTypeDecimalLeadingZero:
		if index < 10 {
			return "0" + strconv.Itoa(index)
		}
		return strconv.Itoa(index)
	case css.ListStyleTypeLowerAlpha, css.ListStyleTypeLowerLatin:
		return alphaMarker(index, 'a')
	case css.ListStyleTypeUpperAlpha, css.ListStyleTypeUpperLatin:
		return alphaMarker(index, 'A')
	case css.ListStyleTypeLowerRoman:
		return strings.ToLower(romanMarker(index))
	case css.ListStyleTypeUpperRoman:
		return romanMarker(index)
	case css.ListStyleTypeLowerGreek:
		return greekMarker(index)
	}
	return ""
}

// alphaMarker produces a, b, ..., z, aa, ab, ...
func alphaMarker(index int, base rune) string {
	if index < 1 {
		return ""
	}
	var out []rune
	for index > 0 {
		index--
		out = append([]rune{base + rune(index%26)}, out...)
		index /= 26
	}
	return string(out)
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func romanMarker(index int) string {
	if index < 1 {
		return strconv.Itoa(index)
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for index >= rv.value {
			b.WriteString(rv.symbol)
			index -= rv.value
		}
	}
	return b.String()
}

// greekMarker produces α, β, ... ω, then repeats with counts.
func greekMarker(index int) string {
	const greek = "αβγδεζηθικλμνξοπρστυφχψω"
	letters := []rune(greek)
	if index < 1 {
		return ""
	}
	var out []rune
	for index > 0 {
		index--
		out = append([]rune{letters[index%len(letters)]}, out...)
		index /= len(letters)
	}
	return string(out)
}
