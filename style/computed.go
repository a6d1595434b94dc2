package style

import (
	"strings"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/host"
)

// defaultValues caches the parsed default value of each property.
var defaultValues = map[css.PropertyID]css.Value{}

func defaultValue(id css.PropertyID) css.Value {
	if v, ok := defaultValues[id]; ok {
		return v
	}
	info := css.Property(id)
	s := css.NewStore()
	s.Add(info.Name, info.Default, "", false)
	v, ok := s.Get(id)
	if !ok {
		v = css.Value{Kind: info.Kind, Str: info.Default}
	}
	defaultValues[id] = v
	return v
}

// Value resolves a property for the element following the
// inheritance algorithm:
//  1. an own declared value wins, unless it is the literal `inherit`;
//  2. `inherit` takes the parent's resolved value;
//  3. an undeclared inherited property takes the parent's resolved
//     value;
//  4. otherwise the property's default typed value applies.
//
// CSS 2.1 §6.2 Inheritance.
func (s *StyledNode) Value(id css.PropertyID) css.Value {
	if v, ok := s.Store.Get(id); ok {
		if !v.Inherit {
			return v
		}
		if s.Parent != nil {
			return s.Parent.Value(id)
		}
		return defaultValue(id)
	}
	if css.PropertyInherited(id) && s.Parent != nil {
		return s.Parent.Value(id)
	}
	return defaultValue(id)
}

// Keyword resolves a keyword-valued property.
func (s *StyledNode) Keyword(id css.PropertyID) int {
	return s.Value(id).Keyword
}

// CSSLength resolves a length-valued property without unit conversion.
func (s *StyledNode) CSSLength(id css.PropertyID) css.Length {
	return s.Value(id).Length
}

// ColorOf resolves a color property, mapping currentcolor to the
// element's color.
func (s *StyledNode) ColorOf(id css.PropertyID) css.Color {
	v := s.Value(id)
	if strings.EqualFold(strings.TrimSpace(v.Str), "currentcolor") {
		if id == css.PropColor {
			return css.Black
		}
		return s.ColorOf(css.PropColor)
	}
	return v.Color
}

// StringOf resolves a string-valued property.
func (s *StyledNode) StringOf(id css.PropertyID) string {
	return s.Value(id).Str
}

// Display returns the computed display keyword; the property default
// applies when no stylesheet set one.
func (s *StyledNode) Display() int {
	return s.Keyword(css.PropDisplay)
}

// CvtUnits maps a length to device pixels. Predefined keywords
// resolve to 0; callers interpret them.
// CSS 2.1 §4.3.2 Lengths; CSS Values L3 viewport units.
func (ctx *Context) CvtUnits(l css.Length, fontSize int, containing int) int {
	if l.IsPredefined() {
		return 0
	}
	v := l.Value
	switch l.Unit {
	case css.UnitPercent:
		return int(v * float64(containing) / 100.0)
	case css.UnitEm:
		return round(v * float64(fontSize))
	case css.UnitRem:
		size := ctx.RootFontSize
		if size == 0 {
			size = ctx.DefaultFontSize
		}
		return round(v * float64(size))
	case css.UnitEx:
		return round(v * float64(fontSize) / 2)
	case css.UnitPt:
		return ctx.Backend.PtToPx(round(v))
	case css.UnitPc:
		return ctx.Backend.PtToPx(round(v * 12))
	case css.UnitIn:
		return ctx.Backend.PtToPx(round(v * 72))
	case css.UnitCm:
		return ctx.Backend.PtToPx(round(v * 72 / 2.54))
	case css.UnitMm:
		return ctx.Backend.PtToPx(round(v * 72 / 25.4))
	case css.UnitVw:
		return int(v * float64(ctx.Features.Width) / 100.0)
	case css.UnitVh:
		return int(v * float64(ctx.Features.Height) / 100.0)
	case css.UnitVmin:
		return int(v * float64(min(ctx.Features.Width, ctx.Features.Height)) / 100.0)
	case css.UnitVmax:
		return int(v * float64(max(ctx.Features.Width, ctx.Features.Height)) / 100.0)
	}
	return round(v)
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// LengthPx resolves a length property to pixels against a containing
// size. Predefined keywords resolve to 0.
func (s *StyledNode) LengthPx(id css.PropertyID, containing int) int {
	return s.ctx.CvtUnits(s.CSSLength(id), s.FontSizePx(), containing)
}

// fontSizeFactors holds the absolute-size keyword scaling factors,
// applied to the document default font size.
// CSS 2.1 §15.7: the absolute-size scaling factors.
var fontSizeFactors = []float64{
	9.0 / 16.0,  // xx-small
	10.0 / 16.0, // x-small
	13.0 / 16.0, // small
	1.0,         // medium
	18.0 / 16.0, // large
	24.0 / 16.0, // x-large
	32.0 / 16.0, // xx-large
}

// FontSizePx returns the computed font size in pixels. Percentages
// and em apply to the parent font size; keywords scale the document
// default.
func (s *StyledNode) FontSizePx() int {
	if s.fontSizeSet {
		return s.fontSize
	}

	parentSize := s.ctx.DefaultFontSize
	if s.Parent != nil {
		parentSize = s.Parent.FontSizePx()
	}

	l := s.Value(css.PropFontSize).Length
	size := parentSize
	if l.IsPredefined() {
		switch p := l.Predef; {
		case p >= css.FontSizeXXSmall && p <= css.FontSizeXXLarge:
			size = round(float64(s.ctx.DefaultFontSize) * fontSizeFactors[p])
		case p == css.FontSizeSmaller:
			size = round(float64(parentSize) / 1.2)
		case p == css.FontSizeLarger:
			size = round(float64(parentSize) * 1.2)
		}
	} else {
		switch l.Unit {
		case css.UnitPercent:
			size = round(l.Value * float64(parentSize) / 100.0)
		case css.UnitEm:
			size = round(l.Value * float64(parentSize))
		default:
			size = s.ctx.CvtUnits(l, parentSize, parentSize)
		}
	}
	if size <= 0 {
		size = s.ctx.DefaultFontSize
	}

	s.fontSize = size
	s.fontSizeSet = true
	return size
}

// FontWeightValue maps the font-weight keyword to a numeric weight.
func (s *StyledNode) FontWeightValue() int {
	switch s.Keyword(css.PropFontWeight) {
	case css.FontWeightBold, css.FontWeightBolder:
		return 700
	case css.FontWeightLighter:
		return 300
	case css.FontWeight100:
		return 100
	case css.FontWeight200:
		return 200
	case css.FontWeight300:
		return 300
	case css.FontWeight400:
		return 400
	case css.FontWeight500:
		return 500
	case css.FontWeight600:
		return 600
	case css.FontWeight700:
		return 700
	case css.FontWeight800:
		return 800
	case css.FontWeight900:
		return 900
	}
	return 400
}

// FontFamily returns the first usable family name of the computed
// font-family list.
func (s *StyledNode) FontFamily() string {
	family := s.Value(css.PropFontFamily).Str
	if family == "" || strings.EqualFold(family, "inherit") {
		return s.ctx.DefaultFontName
	}
	for _, name := range strings.Split(family, ",") {
		name = strings.Trim(strings.TrimSpace(name), "\"'")
		if name != "" {
			return name
		}
	}
	return s.ctx.DefaultFontName
}

// decorationFlags maps text-decoration to the host flag set.
func (s *StyledNode) decorationFlags() int {
	switch s.Keyword(css.PropTextDecoration) {
	case css.TextDecorationUnderline:
		return host.FontDecorationUnderline
	case css.TextDecorationOverline:
		return host.FontDecorationOverline
	case css.TextDecorationLineThrough:
		return host.FontDecorationLineThrough
	}
	return host.FontDecorationNone
}

// Font returns the computed host font and metrics, created through
// the document font cache on first use.
func (s *StyledNode) Font() (host.Font, host.FontMetrics) {
	if !s.fontValid {
		s.font, s.metrics = s.ctx.Fonts.GetFont(
			s.FontFamily(),
			s.FontSizePx(),
			s.FontWeightValue(),
			s.Keyword(css.PropFontStyle),
			s.decorationFlags(),
		)
		s.fontValid = true
	}
	return s.font, s.metrics
}

// FontMetrics returns the computed font metrics.
func (s *StyledNode) FontMetrics() host.FontMetrics {
	_, m := s.Font()
	return m
}

// LineHeightPx returns the used line height: `normal` maps to the
// font height, numbers multiply the font size.
// CSS 2.1 §10.8.1.
func (s *StyledNode) LineHeightPx() int {
	l := s.Value(css.PropLineHeight).Length
	if l.IsPredefined() {
		return s.FontMetrics().Height
	}
	switch l.Unit {
	case css.UnitNone:
		return round(l.Value * float64(s.FontSizePx()))
	case css.UnitPercent:
		return s.ctx.CvtUnits(l, s.FontSizePx(), s.FontSizePx())
	}
	return s.ctx.CvtUnits(l, s.FontSizePx(), s.FontSizePx())
}

// ZIndex returns the used z-index; auto is 0.
func (s *StyledNode) ZIndex() int {
	l := s.CSSLength(css.PropZIndex)
	if l.IsPredefined() {
		return 0
	}
	return int(l.Value)
}

// ZIndexAuto reports whether z-index is auto.
func (s *StyledNode) ZIndexAuto() bool {
	return s.CSSLength(css.PropZIndex).IsPredefined()
}

// Cursor returns the computed cursor name.
func (s *StyledNode) Cursor() string {
	c := strings.TrimSpace(s.Value(css.PropCursor).Str)
	if c == "" {
		return "auto"
	}
	return c
}

// SetLanguage records the host language for :lang matching.
func (ctx *Context) SetLanguage(language, culture string) {
	ctx.Language = language
	ctx.Culture = culture
}
