// Package host defines the document-container interface the engine
// drives. The host application supplies fonts, images, drawing
// primitives and environment queries; the engine never touches a
// surface directly.
//
// All callbacks are synchronous and must not mutate the document that
// invoked them. Failures are reported with sentinel values (nil font,
// zero image size); the engine substitutes neutral defaults.
package host

import (
	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
)

// Font is an opaque handle to a host-created font.
type Font interface{}

// FontMetrics is filled by CreateFont.
type FontMetrics struct {
	Ascent  int
	Descent int
	Height  int
	XHeight int
	// DrawSpaces is set when trailing spaces must be drawn (underline
	// or strike-through decorations cover them).
	DrawSpaces bool
}

// FontDecoration flags requested of CreateFont.
const (
	FontDecorationNone        = 0
	FontDecorationUnderline   = 1 << 0
	FontDecorationLineThrough = 1 << 1
	FontDecorationOverline    = 1 << 2
)

// BorderRadii holds the per-corner x/y radii of a border box.
type BorderRadii struct {
	TopLeftX, TopLeftY         int
	TopRightX, TopRightY       int
	BottomRightX, BottomRightY int
	BottomLeftX, BottomLeftY   int
}

// Border is one side of a border for drawing.
type Border struct {
	Width int
	Style int // css.BorderStyle* keyword
	Color css.Color
}

// Borders is the four sides plus radii.
type Borders struct {
	Top    Border
	Right  Border
	Bottom Border
	Left   Border
	Radii  BorderRadii
}

// BackgroundPaint describes one background fill.
type BackgroundPaint struct {
	Image         string // resolved URL, empty for color-only
	BaseURL       string
	Attachment    int // css.BackgroundAttachment*
	Repeat        int // css.BackgroundRepeat*
	Color         css.Color
	ClipBox       geom.Position
	OriginBox     geom.Position
	BorderBox     geom.Position
	Radii         BorderRadii
	ImageSize     geom.Size
	PositionX     int
	PositionY     int
	IsRoot        bool
}

// ListMarker describes a list-item marker for drawing.
type ListMarker struct {
	Image   string
	BaseURL string
	Type    int // css.ListStyleType* keyword
	Color   css.Color
	Pos     geom.Position
	Index   int
	Font    Font
	Text    string // pre-generated marker text; empty for glyph types
}

// TextTransform values passed to TransformText.
const (
	TextTransformNone = iota
	TextTransformCapitalize
	TextTransformUppercase
	TextTransformLowercase
)

// Backend is the complete set of capabilities the engine depends on.
// A headless host implements all of it; interactive hosts additionally
// feed mouse events back into the page.
type Backend interface {
	// CreateFont creates a font and fills metrics. A nil handle means
	// the font is unavailable; the engine then measures nothing.
	CreateFont(family string, size int, weight int, style int, decoration int, metrics *FontMetrics) Font
	DeleteFont(font Font)
	TextWidth(text string, font Font) int
	DrawText(text string, font Font, color css.Color, pos geom.Position)

	// PtToPx converts typographic points to device pixels.
	PtToPx(pt int) int
	DefaultFontSize() int
	DefaultFontName() string

	// LoadImage initiates an image fetch. The host caches pixel data;
	// GetImageSize returns (0,0) until the image has resolved.
	LoadImage(src, baseURL string, redrawOnReady bool)
	GetImageSize(src, baseURL string) geom.Size

	DrawBackground(paint *BackgroundPaint)
	DrawBorders(borders *Borders, box geom.Position, isRoot bool)
	DrawListMarker(marker *ListMarker)
	DrawImage(src, baseURL string, pos geom.Position)

	SetClip(box geom.Position, radii BorderRadii, validX, validY bool)
	DelClip()

	// GetClientRect reports the viewport in document coordinates.
	GetClientRect() geom.Position
	GetMediaFeatures(features *css.MediaFeatures)
	GetLanguage() (language, culture string)

	// ImportCSS fetches a stylesheet; empty string on failure.
	ImportCSS(url, baseURL string) string
	OnAnchorClick(url string)
	SetCursor(cursor string)
	TransformText(text string, transform int) string
	SetCaption(caption string)
}
