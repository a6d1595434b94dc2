package render

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/dom"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
	"github.com/flintweb/flint/log"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas is the pixel surface of the headless raster backend.
type Canvas struct {
	Width  int
	Height int
	Pixels []color.RGBA
	clips  []geom.Position
}

// NewCanvas creates a canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the canvas with a background color.
func (c *Canvas) Clear(bg color.RGBA) {
	for i := range c.Pixels {
		c.Pixels[i] = bg
	}
}

func (c *Canvas) pushClip(box geom.Position) {
	if len(c.clips) > 0 {
		box = box.Intersect(c.clips[len(c.clips)-1])
	}
	c.clips = append(c.clips, box)
}

func (c *Canvas) popClip() {
	if len(c.clips) > 0 {
		c.clips = c.clips[:len(c.clips)-1]
	}
}

func (c *Canvas) clipped(x, y int) bool {
	if len(c.clips) == 0 {
		return false
	}
	return !c.clips[len(c.clips)-1].Contains(x, y)
}

// SetPixel writes one pixel, honoring bounds and the clip stack.
func (c *Canvas) SetPixel(x, y int, col color.RGBA) {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height || c.clipped(x, y) {
		return
	}
	c.Pixels[y*c.Width+x] = col
}

// BlendPixel alpha-blends one pixel over the existing content.
func (c *Canvas) BlendPixel(x, y int, col color.RGBA) {
	if col.A == 0 {
		return
	}
	if col.A == 255 {
		c.SetPixel(x, y, col)
		return
	}
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height || c.clipped(x, y) {
		return
	}
	existing := c.Pixels[y*c.Width+x]
	alpha := int(col.A)
	inv := 255 - alpha
	c.Pixels[y*c.Width+x] = color.RGBA{
		R: uint8((int(col.R)*alpha + int(existing.R)*inv) / 255),
		G: uint8((int(col.G)*alpha + int(existing.G)*inv) / 255),
		B: uint8((int(col.B)*alpha + int(existing.B)*inv) / 255),
		A: 255,
	}
}

// FillRect fills a rectangle.
func (c *Canvas) FillRect(box geom.Position, col color.RGBA) {
	for dy := 0; dy < box.Height; dy++ {
		for dx := 0; dx < box.Width; dx++ {
			c.BlendPixel(box.X+dx, box.Y+dy, col)
		}
	}
}

// DrawImage scales src into box with nearest-neighbor sampling and
// alpha blending.
func (c *Canvas) DrawImage(src image.Image, box geom.Position) {
	if box.Width <= 0 || box.Height <= 0 {
		return
	}
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return
	}
	for dy := 0; dy < box.Height; dy++ {
		for dx := 0; dx < box.Width; dx++ {
			sx := bounds.Min.X + dx*srcW/box.Width
			sy := bounds.Min.Y + dy*srcH/box.Height
			r, g, b, a := src.At(sx, sy).RGBA()
			c.BlendPixel(box.X+dx, box.Y+dy, color.RGBA{
				R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8),
			})
		}
	}
}

// ToImage converts the canvas to an image.
func (c *Canvas) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.Set(x, y, c.Pixels[y*c.Width+x])
		}
	}
	return img
}

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, c.ToImage()); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Raster is the default headless document container: it rasterizes
// to a Canvas with the embedded Go fonts and the shared resource
// loader.
type Raster struct {
	Canvas *Canvas
	fonts  *FontManager
	images map[string]image.Image
	loader *dom.ResourceLoader

	// Title and LastAnchor record the caption and clicked anchor for
	// the embedding application.
	Title      string
	LastCursor string
	LastAnchor string

	defaultFontSize int
	language        string
	culture         string
}

// NewRaster creates a raster backend of the given pixel size.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Canvas:          NewCanvas(width, height),
		fonts:           NewFontManager(),
		images:          make(map[string]image.Image),
		loader:          dom.NewResourceLoader(""),
		defaultFontSize: 16,
		language:        "en",
	}
}

// CreateFont creates a font face handle and fills metrics.
func (r *Raster) CreateFont(family string, size, weight, styleKw, decoration int, metrics *host.FontMetrics) host.Font {
	face, err := r.fonts.Face(family, size, weight, styleKw)
	if err != nil {
		log.Errorf("render: create font %q: %v", family, err)
		return nil
	}
	f := &rasterFont{face: face, size: size, decoration: decoration}
	f.metrics = metricsOf(face, decoration)
	if metrics != nil {
		*metrics = f.metrics
	}
	return f
}

// DeleteFont releases a font handle. Faces stay cached in the
// manager; the handle itself holds no other resources.
func (r *Raster) DeleteFont(h host.Font) {}

// TextWidth measures a string.
func (r *Raster) TextWidth(text string, h host.Font) int {
	f, ok := h.(*rasterFont)
	if !ok || f == nil {
		return 0
	}
	return measureString(f.face, text)
}

// DrawText draws one text run into its content box.
func (r *Raster) DrawText(text string, h host.Font, col css.Color, pos geom.Position) {
	f, ok := h.(*rasterFont)
	if !ok || f == nil {
		return
	}

	img := image.NewRGBA(image.Rect(0, 0, pos.Width, f.metrics.Height))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{col.R, col.G, col.B, col.A}),
		Face: f.face,
		Dot:  fixed.Point26_6{X: 0, Y: fixed.I(f.metrics.Ascent)},
	}
	drawer.DrawString(text)

	bounds := img.Bounds()
	for dy := bounds.Min.Y; dy < bounds.Max.Y; dy++ {
		for dx := bounds.Min.X; dx < bounds.Max.X; dx++ {
			c := img.RGBAAt(dx, dy)
			if c.A > 0 {
				r.Canvas.BlendPixel(pos.X+dx, pos.Y+dy, c)
			}
		}
	}

	rgba := color.RGBA{col.R, col.G, col.B, col.A}
	if f.decoration&host.FontDecorationUnderline != 0 {
		r.Canvas.FillRect(geom.Position{X: pos.X, Y: pos.Y + f.metrics.Ascent + 1, Width: pos.Width, Height: max(1, f.size/16)}, rgba)
	}
	if f.decoration&host.FontDecorationLineThrough != 0 {
		r.Canvas.FillRect(geom.Position{X: pos.X, Y: pos.Y + f.metrics.Ascent*2/3, Width: pos.Width, Height: max(1, f.size/16)}, rgba)
	}
	if f.decoration&host.FontDecorationOverline != 0 {
		r.Canvas.FillRect(geom.Position{X: pos.X, Y: pos.Y, Width: pos.Width, Height: max(1, f.size/16)}, rgba)
	}
}

// PtToPx converts points to pixels at 96 DPI.
func (r *Raster) PtToPx(pt int) int { return pt * 96 / 72 }

// DefaultFontSize is the document 'medium' size.
func (r *Raster) DefaultFontSize() int { return r.defaultFontSize }

// DefaultFontName names the default family.
func (r *Raster) DefaultFontName() string { return "sans-serif" }

// LoadImage fetches and decodes an image into the cache. The load is
// synchronous; redrawOnReady has nothing to trigger headlessly.
func (r *Raster) LoadImage(src, baseURL string, redrawOnReady bool) {
	key := dom.ResolveURL(baseURL, src)
	if _, ok := r.images[key]; ok {
		return
	}
	data, err := r.loader.Load(key)
	if err != nil {
		log.Warnf("render: load image %q: %v", key, err)
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warnf("render: decode image %q: %v", key, err)
		return
	}
	r.images[key] = img
}

// GetImageSize reports a cached image's pixel size, (0, 0) while the
// image has not resolved.
func (r *Raster) GetImageSize(src, baseURL string) geom.Size {
	img, ok := r.images[dom.ResolveURL(baseURL, src)]
	if !ok {
		return geom.Size{}
	}
	b := img.Bounds()
	return geom.Size{Width: b.Dx(), Height: b.Dy()}
}

// DrawBackground fills the clip box with the background color and
// tiles the background image per background-repeat.
func (r *Raster) DrawBackground(paint *host.BackgroundPaint) {
	if paint.Color.A > 0 {
		box := paint.ClipBox
		if paint.IsRoot {
			box = geom.Position{Width: r.Canvas.Width, Height: r.Canvas.Height}
		}
		r.Canvas.FillRect(box, color.RGBA{paint.Color.R, paint.Color.G, paint.Color.B, paint.Color.A})
	}

	if paint.Image == "" {
		return
	}
	img, ok := r.images[dom.ResolveURL(paint.BaseURL, paint.Image)]
	if !ok {
		return
	}
	size := paint.ImageSize
	if size.Width == 0 || size.Height == 0 {
		b := img.Bounds()
		size = geom.Size{Width: b.Dx(), Height: b.Dy()}
	}

	r.Canvas.pushClip(paint.ClipBox)
	defer r.Canvas.popClip()

	drawTile := func(x, y int) {
		r.Canvas.DrawImage(img, geom.Position{X: x, Y: y, Width: size.Width, Height: size.Height})
	}

	switch paint.Repeat {
	case css.BackgroundRepeatNoRepeat:
		drawTile(paint.PositionX, paint.PositionY)
	case css.BackgroundRepeatRepeatX:
		for x := tileStart(paint.PositionX, size.Width, paint.ClipBox.X); x < paint.ClipBox.Right(); x += size.Width {
			drawTile(x, paint.PositionY)
		}
	case css.BackgroundRepeatRepeatY:
		for y := tileStart(paint.PositionY, size.Height, paint.ClipBox.Y); y < paint.ClipBox.Bottom(); y += size.Height {
			drawTile(paint.PositionX, y)
		}
	default:
		for y := tileStart(paint.PositionY, size.Height, paint.ClipBox.Y); y < paint.ClipBox.Bottom(); y += size.Height {
			for x := tileStart(paint.PositionX, size.Width, paint.ClipBox.X); x < paint.ClipBox.Right(); x += size.Width {
				drawTile(x, y)
			}
		}
	}
}

// tileStart backs a tiling origin up so the pattern covers the clip
// edge.
func tileStart(origin, tile, clipEdge int) int {
	if tile <= 0 {
		return origin
	}
	for origin > clipEdge {
		origin -= tile
	}
	return origin
}

// DrawBorders paints the four border sides as solid strips. Dotted
// and dashed styles draw with gaps.
func (r *Raster) DrawBorders(borders *host.Borders, box geom.Position, isRoot bool) {
	draw := func(b host.Border, strip geom.Position, horizontal bool) {
		if b.Width <= 0 || b.Style == css.BorderStyleNone || b.Style == css.BorderStyleHidden {
			return
		}
		col := color.RGBA{b.Color.R, b.Color.G, b.Color.B, b.Color.A}
		switch b.Style {
		case css.BorderStyleDotted, css.BorderStyleDashed:
			dash := b.Width * 2
			if b.Style == css.BorderStyleDashed {
				dash = b.Width * 3
			}
			if horizontal {
				for x := strip.X; x < strip.Right(); x += dash * 2 {
					r.Canvas.FillRect(geom.Position{X: x, Y: strip.Y, Width: min(dash, strip.Right()-x), Height: strip.Height}, col)
				}
			} else {
				for y := strip.Y; y < strip.Bottom(); y += dash * 2 {
					r.Canvas.FillRect(geom.Position{X: strip.X, Y: y, Width: strip.Width, Height: min(dash, strip.Bottom()-y)}, col)
				}
			}
		default:
			r.Canvas.FillRect(strip, col)
		}
	}

	draw(borders.Top, geom.Position{X: box.X, Y: box.Y, Width: box.Width, Height: borders.Top.Width}, true)
	draw(borders.Bottom, geom.Position{X: box.X, Y: box.Bottom() - borders.Bottom.Width, Width: box.Width, Height: borders.Bottom.Width}, true)
	draw(borders.Left, geom.Position{X: box.X, Y: box.Y, Width: borders.Left.Width, Height: box.Height}, false)
	draw(borders.Right, geom.Position{X: box.Right() - borders.Right.Width, Y: box.Y, Width: borders.Right.Width, Height: box.Height}, false)
}

// DrawListMarker paints a list marker: pre-generated text, an image,
// or a bullet glyph.
func (r *Raster) DrawListMarker(marker *host.ListMarker) {
	if marker.Image != "" {
		if img, ok := r.images[dom.ResolveURL(marker.BaseURL, marker.Image)]; ok {
			r.Canvas.DrawImage(img, marker.Pos)
			return
		}
	}
	col := color.RGBA{marker.Color.R, marker.Color.G, marker.Color.B, marker.Color.A}
	if marker.Text != "" {
		if f, ok := marker.Font.(*rasterFont); ok && f != nil {
			r.DrawText(marker.Text+".", f, marker.Color, marker.Pos)
		}
		return
	}
	switch marker.Type {
	case css.ListStyleTypeCircle:
		r.drawEllipse(marker.Pos, col, false)
	case css.ListStyleTypeDisc:
		r.drawEllipse(marker.Pos, col, true)
	case css.ListStyleTypeSquare:
		r.Canvas.FillRect(marker.Pos, col)
	default:
		r.drawEllipse(marker.Pos, col, true)
	}
}

// drawEllipse rasterizes a filled or outlined ellipse inside box.
func (r *Raster) drawEllipse(box geom.Position, col color.RGBA, filled bool) {
	if box.Width <= 0 || box.Height <= 0 {
		return
	}
	cx := float64(box.X) + float64(box.Width)/2
	cy := float64(box.Y) + float64(box.Height)/2
	rx := float64(box.Width) / 2
	ry := float64(box.Height) / 2
	for y := box.Y; y < box.Bottom(); y++ {
		for x := box.X; x < box.Right(); x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			d := dx*dx + dy*dy
			if filled && d <= 1.0 {
				r.Canvas.BlendPixel(x, y, col)
			} else if !filled && d <= 1.0 && d >= 0.5 {
				r.Canvas.BlendPixel(x, y, col)
			}
		}
	}
}

// DrawImage paints a replaced element's image into its content box.
func (r *Raster) DrawImage(src, baseURL string, pos geom.Position) {
	key := dom.ResolveURL(baseURL, src)
	img, ok := r.images[key]
	if !ok {
		// Fire-and-forget load; headlessly this resolves immediately.
		r.LoadImage(src, baseURL, false)
		img, ok = r.images[key]
		if !ok {
			return
		}
	}
	r.Canvas.DrawImage(img, pos)
}

// SetClip pushes a clip rectangle.
func (r *Raster) SetClip(box geom.Position, radii host.BorderRadii, validX, validY bool) {
	if !validX {
		box.X = 0
		box.Width = r.Canvas.Width
	}
	if !validY {
		box.Y = 0
		box.Height = r.Canvas.Height
	}
	r.Canvas.pushClip(box)
}

// DelClip pops the top clip rectangle.
func (r *Raster) DelClip() { r.Canvas.popClip() }

// GetClientRect reports the canvas as the viewport.
func (r *Raster) GetClientRect() geom.Position {
	return geom.Position{Width: r.Canvas.Width, Height: r.Canvas.Height}
}

// GetMediaFeatures reports screen media with the canvas geometry.
func (r *Raster) GetMediaFeatures(features *css.MediaFeatures) {
	features.Type = css.MediaScreen
	features.Width = r.Canvas.Width
	features.Height = r.Canvas.Height
	features.DeviceWidth = r.Canvas.Width
	features.DeviceHeight = r.Canvas.Height
	features.Color = 8
	features.Monochrome = 0
	features.Resolution = 96
}

// GetLanguage reports the configured language.
func (r *Raster) GetLanguage() (string, string) { return r.language, r.culture }

// SetLanguage configures the reported language for :lang matching.
func (r *Raster) SetLanguage(language, culture string) {
	r.language = language
	r.culture = culture
}

// ImportCSS fetches a linked stylesheet; "" on failure.
func (r *Raster) ImportCSS(url, baseURL string) string {
	loader := dom.NewResourceLoader(baseURL)
	text, err := loader.LoadString(url)
	if err != nil {
		log.Warnf("render: import css %q: %v", url, err)
		return ""
	}
	return text
}

// OnAnchorClick records the clicked anchor URL.
func (r *Raster) OnAnchorClick(url string) { r.LastAnchor = url }

// SetCursor records the current cursor name.
func (r *Raster) SetCursor(cursor string) { r.LastCursor = cursor }

// TransformText applies text-transform for the engine.
func (r *Raster) TransformText(text string, transform int) string {
	switch transform {
	case host.TextTransformUppercase:
		return strings.ToUpper(text)
	case host.TextTransformLowercase:
		return strings.ToLower(text)
	case host.TextTransformCapitalize:
		return capitalizeWords(text)
	}
	return text
}

func capitalizeWords(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	atStart := true
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			atStart = true
			b.WriteRune(r)
			continue
		}
		if atStart {
			b.WriteString(strings.ToUpper(string(r)))
			atStart = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SetCaption records the document title.
func (r *Raster) SetCaption(caption string) { r.Title = caption }
