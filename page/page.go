// Package page ties the engine together: it owns the element tree,
// the stylesheets, the font cache and the layout tree of one
// document, and drives parse → style → layout → paint plus mouse
// event dispatch.
//
// All operations run on the calling goroutine and must not be invoked
// re-entrantly on the same Page. Host callbacks are synchronous and
// must not mutate the Page.
package page

import (
	"strings"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/dom"
	"github.com/flintweb/flint/geom"
	"github.com/flintweb/flint/host"
	"github.com/flintweb/flint/html"
	"github.com/flintweb/flint/layout"
	"github.com/flintweb/flint/log"
	"github.com/flintweb/flint/render"
	"github.com/flintweb/flint/style"
)

// Options configures page creation.
type Options struct {
	// URL is the document location; relative references resolve
	// against it (or a <base href> it contains).
	URL string
	// UserCSS is appended after the master stylesheet and before the
	// document's own stylesheets.
	UserCSS string
}

type fontKey struct {
	family     string
	size       int
	weight     int
	style      int
	decoration int
}

type fontEntry struct {
	font    host.Font
	metrics host.FontMetrics
}

// Page is one loaded document.
type Page struct {
	Root    *dom.Node
	Styled  *style.StyledNode
	Layout  *layout.Item
	Backend host.Backend

	baseURL  string
	sheets   []style.Sheet
	styleCtx *style.Context
	fonts    map[fontKey]*fontEntry

	hovered *style.StyledNode
	size    geom.Size
	width   int
	closed  bool
}

// FromHTML parses an HTML string into a fully styled page.
func FromHTML(source string, backend host.Backend, opts Options) *Page {
	return FromTree(html.Parse(source), backend, opts)
}

// FromTree builds a page over a pre-parsed element tree.
func FromTree(root *dom.Node, backend host.Backend, opts Options) *Page {
	p := &Page{
		Root:    root,
		Backend: backend,
		fonts:   make(map[fontKey]*fontEntry),
	}
	p.baseURL = dom.DocumentBase(root, opts.URL)

	if title := root.FindFirst("title"); title != nil {
		backend.SetCaption(strings.TrimSpace(title.Text()))
	}

	p.styleCtx = &style.Context{
		Backend:         backend,
		Fonts:           p,
		BaseURL:         p.baseURL,
		DefaultFontSize: backend.DefaultFontSize(),
		DefaultFontName: backend.DefaultFontName(),
	}
	backend.GetMediaFeatures(&p.styleCtx.Features)
	language, culture := backend.GetLanguage()
	p.styleCtx.SetLanguage(language, culture)

	p.collectStylesheets(opts.UserCSS)
	p.applyStyles()
	return p
}

// collectStylesheets gathers the cascade inputs in order: the master
// stylesheet, user CSS, then the document's <style> blocks and
// stylesheet links in document order, following @import chains.
func (p *Page) collectStylesheets(userCSS string) {
	p.sheets = []style.Sheet{{Stylesheet: style.MasterStylesheet(), UserAgent: true}}
	if userCSS != "" {
		p.sheets = append(p.sheets, style.Sheet{Stylesheet: css.ParseStylesheet(userCSS, p.baseURL), UserAgent: true})
	}

	p.Root.Walk(func(n *dom.Node) bool {
		if n.Type != dom.ElementNode {
			return true
		}
		switch n.Data {
		case "style":
			p.addAuthorSheet(n.Text(), p.baseURL)
		case "link":
			rel := strings.ToLower(n.GetAttribute("rel"))
			href := n.GetAttribute("href")
			if rel == "stylesheet" && href != "" {
				text := p.Backend.ImportCSS(href, p.baseURL)
				if text == "" {
					log.Warnf("page: stylesheet %q failed to load", href)
					return true
				}
				p.addAuthorSheet(text, dom.ResolveURL(p.baseURL, href))
			}
		}
		return true
	})
}

// addAuthorSheet parses one author stylesheet and chases its imports.
func (p *Page) addAuthorSheet(text, baseURL string) {
	sheet := css.ParseStylesheet(text, baseURL)
	for _, imp := range sheet.Imports {
		imported := p.Backend.ImportCSS(imp, baseURL)
		if imported == "" {
			log.Warnf("page: @import %q failed to load", imp)
			continue
		}
		p.addAuthorSheet(imported, imp)
	}
	p.sheets = append(p.sheets, style.Sheet{Stylesheet: sheet})
}

// applyStyles computes the styled tree and kicks off image loads.
func (p *Page) applyStyles() {
	p.Styled = style.BuildTree(p.Root, p.styleCtx, p.sheets)
	p.loadImages()
}

// loadImages fires off fetches for <img> sources and background
// images; layout treats unresolved images as zero-sized until a
// redraw.
func (p *Page) loadImages() {
	p.Styled.Walk(func(s *style.StyledNode) {
		if !s.IsElement() {
			return
		}
		if s.Node != nil && s.Node.Data == "img" {
			if src := s.Node.GetAttribute("src"); src != "" {
				p.Backend.LoadImage(src, p.baseURL, true)
			}
		}
		if bg := s.Background(); bg.Image != "" {
			p.Backend.LoadImage(bg.Image, bg.BaseURL, true)
		}
	})
}

// GetFont implements style.FontProvider over the page font cache,
// keyed by (family, size, weight, style, decoration).
func (p *Page) GetFont(family string, size, weight, styleKw, decoration int) (host.Font, host.FontMetrics) {
	key := fontKey{family: strings.ToLower(family), size: size, weight: weight, style: styleKw, decoration: decoration}
	if e, ok := p.fonts[key]; ok {
		return e.font, e.metrics
	}
	e := &fontEntry{}
	e.font = p.Backend.CreateFont(family, size, weight, styleKw, decoration, &e.metrics)
	p.fonts[key] = e
	return e.font, e.metrics
}

// Render lays the document out at the given width and returns the
// effective content width.
func (p *Page) Render(maxWidth int) int {
	p.width = maxWidth
	viewport := p.Backend.GetClientRect()
	ctx := &layout.Context{
		Style:    p.styleCtx,
		Backend:  p.Backend,
		Viewport: viewport,
	}
	p.Layout = layout.BuildTree(p.Styled, ctx)
	if p.Layout == nil {
		p.size = geom.Size{}
		return 0
	}
	ret := p.Layout.Render(0, 0, maxWidth, false)
	if p.Layout.FetchPositioned() {
		p.Layout.RenderPositioned()
	}
	p.size = p.Layout.DocumentSize()
	return ret
}

// Draw paints the laid-out document through the host backend.
func (p *Page) Draw() {
	if p.Layout == nil {
		return
	}
	painter := render.NewPainter(p.Layout, p.Backend, p.Backend.GetClientRect(), p.baseURL)
	painter.Paint()
}

// Size returns the rasterized document size.
func (p *Page) Size() geom.Size { return p.size }

// ElementAt hit-tests the document point (x, y); clientX/clientY are
// viewport coordinates for fixed elements.
func (p *Page) ElementAt(x, y, clientX, clientY int) *style.StyledNode {
	if p.Layout == nil {
		return nil
	}
	item := p.Layout.ElementAt(x, y, clientX, clientY)
	if item == nil {
		return nil
	}
	s := item.Style
	// Hit text runs resolve to their element.
	if s.IsText() && s.Parent != nil {
		s = s.Parent
	}
	return s
}

// OnMouseOver dispatches a mouse move: the hover chain is updated and
// the repaint rectangles of the restyled elements are returned.
func (p *Page) OnMouseOver(x, y, clientX, clientY int) ([]geom.Position, bool) {
	over := p.ElementAt(x, y, clientX, clientY)

	changed := false
	if over != p.hovered {
		if p.hovered != nil && p.leaveChain(p.hovered) {
			changed = true
		}
		p.hovered = over
	}
	if p.hovered != nil {
		if setChain(p.hovered, "hover", true) {
			changed = true
		}
		p.Backend.SetCursor(p.hovered.Cursor())
	} else {
		p.Backend.SetCursor("auto")
	}

	if !changed {
		return nil, false
	}
	return p.findStyleChanges()
}

// OnMouseLeave clears the hover state.
func (p *Page) OnMouseLeave() ([]geom.Position, bool) {
	if p.hovered == nil {
		return nil, false
	}
	changed := p.leaveChain(p.hovered)
	p.hovered = nil
	if !changed {
		return nil, false
	}
	return p.findStyleChanges()
}

// OnLButtonDown sets :active along the hover chain.
func (p *Page) OnLButtonDown(x, y, clientX, clientY int) ([]geom.Position, bool) {
	over := p.ElementAt(x, y, clientX, clientY)
	changed := false
	if over != p.hovered {
		if p.hovered != nil && p.leaveChain(p.hovered) {
			changed = true
		}
		p.hovered = over
		if p.hovered != nil && setChain(p.hovered, "hover", true) {
			changed = true
		}
	}
	if p.hovered != nil {
		if setChain(p.hovered, "active", true) {
			changed = true
		}
		p.Backend.SetCursor(p.hovered.Cursor())
	}
	if !changed {
		return nil, false
	}
	return p.findStyleChanges()
}

// OnLButtonUp clears :active and dispatches anchor clicks.
func (p *Page) OnLButtonUp(x, y, clientX, clientY int) ([]geom.Position, bool) {
	if p.hovered == nil {
		return nil, false
	}
	changed := setChain(p.hovered, "active", false)

	// Click: the nearest enclosing anchor navigates.
	for el := p.hovered; el != nil; el = el.Parent {
		if el.TagName() == "a" {
			if href := el.Node.GetAttribute("href"); href != "" {
				p.Backend.OnAnchorClick(dom.ResolveURL(p.baseURL, href))
			}
			break
		}
	}

	if !changed {
		return nil, false
	}
	return p.findStyleChanges()
}

// leaveChain clears hover and active up the ancestor chain.
func (p *Page) leaveChain(el *style.StyledNode) bool {
	changed := setChain(el, "hover", false)
	if setChain(el, "active", false) {
		changed = true
	}
	return changed
}

func setChain(el *style.StyledNode, pseudo string, on bool) bool {
	changed := false
	for e := el; e != nil; e = e.Parent {
		if e.IsElement() && e.SetPseudo(pseudo, on) {
			changed = true
		}
	}
	return changed
}

// findStyleChanges re-resolves the style of every element whose
// dynamic selectors flipped and reports their repaint rectangles:
// line-box fragments for inline elements, the border box otherwise.
func (p *Page) findStyleChanges() ([]geom.Position, bool) {
	if p.Layout == nil {
		return nil, false
	}
	var boxes []geom.Position
	var walk func(it *layout.Item)
	walk = func(it *layout.Item) {
		if it.Style.IsElement() && it.Style.HasDynamicStyle() {
			if it.Style.RefreshStyle() {
				boxes = append(boxes, it.RedrawBox())
			}
		}
		for _, c := range it.Children {
			walk(c)
		}
	}
	walk(p.Layout)
	return boxes, len(boxes) > 0
}

// MediaChanged re-reads the host media features; when any media query
// list flips, styles are recomputed. The caller re-renders.
func (p *Page) MediaChanged() bool {
	var features css.MediaFeatures
	p.Backend.GetMediaFeatures(&features)
	if features == p.styleCtx.Features {
		return false
	}
	p.styleCtx.Features = features
	p.applyStyles()
	return true
}

// Close releases every cached font through the host. The page must
// not be used afterwards.
func (p *Page) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, e := range p.fonts {
		if e.font != nil {
			p.Backend.DeleteFont(e.font)
		}
	}
	p.fonts = map[fontKey]*fontEntry{}
}
