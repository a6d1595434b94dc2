package render

import (
	"strconv"
	"strings"
	"sync"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/host"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// rasterFont is the host font handle of the raster backend: an
// opentype face plus the metrics handed back to the engine.
type rasterFont struct {
	face       font.Face
	metrics    host.FontMetrics
	size       int
	decoration int
}

// FontManager loads and caches opentype faces for the embedded Go
// fonts. The Go fonts are compiled into the binary, so font creation
// cannot fail for the generic families.
type FontManager struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[string]font.Face
}

// NewFontManager creates an empty font cache.
func NewFontManager() *FontManager {
	return &FontManager{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[string]font.Face),
	}
}

// selectTTF picks the embedded font data for a family, weight and
// style.
// CSS 2.1 §15.3 font matching against the generic families.
func selectTTF(family string, weight int, italic bool) ([]byte, string) {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "monospace", "courier", "courier new", "consolas":
		return gomono.TTF, "gomono"
	}
	bold := weight >= 600
	switch {
	case bold && italic:
		return gobolditalic.TTF, "gobolditalic"
	case bold:
		return gobold.TTF, "gobold"
	case italic:
		return goitalic.TTF, "goitalic"
	}
	return goregular.TTF, "goregular"
}

// Face returns a cached face for the given computed font.
func (fm *FontManager) Face(family string, size, weight, styleKw int) (font.Face, error) {
	italic := styleKw == css.FontStyleItalic || styleKw == css.FontStyleOblique

	key := strings.ToLower(family) + ":" + strconv.Itoa(size) + ":" + strconv.Itoa(weight) + ":" + strconv.FormatBool(italic)

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if face, ok := fm.faces[key]; ok {
		return face, nil
	}

	ttf, fontKey := selectTTF(family, weight, italic)
	parsed, ok := fm.fonts[fontKey]
	if !ok {
		var err error
		parsed, err = opentype.Parse(ttf)
		if err != nil {
			return nil, err
		}
		fm.fonts[fontKey] = parsed
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	fm.faces[key] = face
	return face, nil
}

// metricsOf extracts the engine metrics from a face.
func metricsOf(face font.Face, decoration int) host.FontMetrics {
	m := face.Metrics()
	fm := host.FontMetrics{
		Ascent:  m.Ascent.Ceil(),
		Descent: m.Descent.Ceil(),
		Height:  (m.Ascent + m.Descent).Ceil(),
		XHeight: m.XHeight.Ceil(),
	}
	if fm.XHeight == 0 {
		fm.XHeight = fm.Ascent / 2
	}
	// Underline and strike-through must cover trailing spaces.
	fm.DrawSpaces = decoration != host.FontDecorationNone
	return fm
}

// measureString sums the glyph advances of text.
func measureString(face font.Face, text string) int {
	var width fixed.Int26_6
	for _, r := range text {
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			advance = face.Metrics().Height / 2
		}
		width += advance
	}
	return width.Ceil()
}
