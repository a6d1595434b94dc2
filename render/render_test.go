package render

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasFillRect(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Clear(color.RGBA{255, 255, 255, 255})
	c.FillRect(geom.Position{X: 2, Y: 2, Width: 4, Height: 4}, color.RGBA{255, 0, 0, 255})

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, c.Pixels[3*10+3])
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, c.Pixels[0])
	// Out-of-bounds writes are dropped.
	c.FillRect(geom.Position{X: -5, Y: -5, Width: 100, Height: 100}, color.RGBA{0, 255, 0, 255})
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, c.Pixels[0])
}

func TestCanvasClip(t *testing.T) {
	c := NewCanvas(10, 10)
	c.pushClip(geom.Position{X: 0, Y: 0, Width: 5, Height: 5})
	c.FillRect(geom.Position{X: 0, Y: 0, Width: 10, Height: 10}, color.RGBA{255, 0, 0, 255})
	c.popClip()

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, c.Pixels[0])
	assert.Equal(t, color.RGBA{}, c.Pixels[9], "outside the clip stays untouched")
}

func TestCanvasBlend(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Clear(color.RGBA{0, 0, 0, 255})
	c.BlendPixel(0, 0, color.RGBA{255, 255, 255, 128})
	got := c.Pixels[0]
	assert.InDelta(t, 128, int(got.R), 2)
}

func TestRasterFonts(t *testing.T) {
	r := NewRaster(100, 100)

	var metrics host.FontMetrics
	f := r.CreateFont("sans-serif", 16, 400, css.FontStyleNormal, host.FontDecorationNone, &metrics)
	require.NotNil(t, f)
	assert.Greater(t, metrics.Ascent, 0)
	assert.Greater(t, metrics.Height, metrics.Ascent)

	w := r.TextWidth("hello", f)
	assert.Greater(t, w, 0)
	// Width grows with text length.
	assert.Greater(t, r.TextWidth("hello world", f), w)
	// Bold comes from a different face but still measures.
	bold := r.CreateFont("sans-serif", 16, 700, css.FontStyleNormal, host.FontDecorationNone, nil)
	assert.Greater(t, r.TextWidth("hello", bold), 0)
}

func TestRasterDrawText(t *testing.T) {
	r := NewRaster(200, 50)
	r.Canvas.Clear(color.RGBA{255, 255, 255, 255})

	var metrics host.FontMetrics
	f := r.CreateFont("sans-serif", 20, 400, css.FontStyleNormal, host.FontDecorationNone, &metrics)
	require.NotNil(t, f)

	w := r.TextWidth("Hi", f)
	r.DrawText("Hi", f, css.Color{0, 0, 0, 255}, geom.Position{X: 5, Y: 5, Width: w, Height: metrics.Height})

	// Some pixel inside the text box darkened.
	dark := false
	for _, px := range r.Canvas.Pixels {
		if px.R < 200 && px.A == 255 {
			dark = true
			break
		}
	}
	assert.True(t, dark, "text should leave dark pixels")
}

func TestRasterBackground(t *testing.T) {
	r := NewRaster(20, 20)
	r.DrawBackground(&host.BackgroundPaint{
		Color:   css.Color{0, 0, 255, 255},
		ClipBox: geom.Position{X: 0, Y: 0, Width: 10, Height: 10},
	})
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, r.Canvas.Pixels[5*20+5])
	assert.Equal(t, color.RGBA{}, r.Canvas.Pixels[15*20+15])
}

func TestRasterBorders(t *testing.T) {
	r := NewRaster(20, 20)
	borders := &host.Borders{
		Top:    host.Border{Width: 2, Style: css.BorderStyleSolid, Color: css.Color{255, 0, 0, 255}},
		Left:   host.Border{Width: 2, Style: css.BorderStyleSolid, Color: css.Color{255, 0, 0, 255}},
		Right:  host.Border{Width: 2, Style: css.BorderStyleSolid, Color: css.Color{255, 0, 0, 255}},
		Bottom: host.Border{Width: 2, Style: css.BorderStyleSolid, Color: css.Color{255, 0, 0, 255}},
	}
	r.DrawBorders(borders, geom.Position{X: 0, Y: 0, Width: 20, Height: 20}, false)

	red := color.RGBA{255, 0, 0, 255}
	assert.Equal(t, red, r.Canvas.Pixels[0], "top-left corner")
	assert.Equal(t, red, r.Canvas.Pixels[10], "top edge")
	assert.Equal(t, red, r.Canvas.Pixels[19*20+10], "bottom edge")
	assert.Equal(t, color.RGBA{}, r.Canvas.Pixels[10*20+10], "interior untouched")
}

func TestRasterSavePNG(t *testing.T) {
	r := NewRaster(8, 8)
	r.Canvas.Clear(color.RGBA{1, 2, 3, 255})
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, r.Canvas.SavePNG(path))
}

func TestTransformText(t *testing.T) {
	r := NewRaster(1, 1)
	assert.Equal(t, "HELLO", r.TransformText("hello", host.TextTransformUppercase))
	assert.Equal(t, "hello", r.TransformText("HELLO", host.TextTransformLowercase))
	assert.Equal(t, "Hello World", r.TransformText("hello world", host.TextTransformCapitalize))
	assert.Equal(t, "as-is", r.TransformText("as-is", host.TextTransformNone))
}

func TestMediaFeatures(t *testing.T) {
	r := NewRaster(640, 480)
	var f css.MediaFeatures
	r.GetMediaFeatures(&f)
	assert.Equal(t, css.MediaScreen, f.Type)
	assert.Equal(t, 640, f.Width)
	assert.Equal(t, 480, f.Height)
}

func TestImageSizeSentinel(t *testing.T) {
	r := NewRaster(10, 10)
	// Unresolved images report (0, 0).
	assert.Equal(t, geom.Size{}, r.GetImageSize("missing.png", ""))
}
