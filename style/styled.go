// Package style handles selector matching, the CSS cascade,
// inheritance and computed values. It turns the dom tree plus parsed
// stylesheets into a styled tree the layout engine consumes.
//
// Spec references:
// - CSS 2.1 §6 Assigning property values, Cascading, and Inheritance
// - Selectors Level 3
package style

import (
	"strings"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/dom"
	"github.com/flintweb/flint/host"
)

// FontProvider creates and caches host fonts. The page owns the cache
// keyed by (family, size, weight, style, decoration) and releases the
// fonts through the host when the document is destroyed.
type FontProvider interface {
	GetFont(family string, size, weight, style, decoration int) (host.Font, host.FontMetrics)
}

// Context carries the document-wide inputs of style resolution.
type Context struct {
	Backend         host.Backend
	Fonts           FontProvider
	Features        css.MediaFeatures
	Language        string
	Culture         string
	BaseURL         string
	DefaultFontSize int
	DefaultFontName string
	RootFontSize    int
}

// usedSelector records one selector that matched an element, so
// dynamic pseudo-class changes can re-run the merge without a full
// document restyle.
type usedSelector struct {
	sel     *css.Selector
	rule    *css.Rule
	baseURL string
	// dynamic is set when the match depends on :hover, :active, :link
	// or :lang.
	dynamic bool
	// pseudoElement routes the declarations to a generated child.
	pseudoElement string
	// origin (0 user agent, 1 author) and sheet preserve cascade
	// order across refreshes.
	origin int
	sheet  int
}

// StyledNode is a dom node with its cascaded style store, computed
// values and generated ::before/::after children.
type StyledNode struct {
	Node     *dom.Node
	Parent   *StyledNode
	Children []*StyledNode
	Store    *css.Store

	// PseudoElement is "before" or "after" on generated children.
	PseudoElement string
	Before        *StyledNode
	After         *StyledNode

	// Pseudo is the dynamic pseudo-class set (hover, active, link).
	Pseudo map[string]bool

	ctx  *Context
	used []usedSelector

	// Computed font cache.
	font        host.Font
	metrics     host.FontMetrics
	fontValid   bool
	fontSize    int
	fontSizeSet bool
}

// TagName returns the element's tag, "" for non-elements.
func (s *StyledNode) TagName() string {
	if s.PseudoElement != "" {
		return "::" + s.PseudoElement
	}
	if s.Node == nil || s.Node.Type != dom.ElementNode {
		return ""
	}
	return s.Node.Data
}

// IsElement reports whether the node is an element (including
// generated ones).
func (s *StyledNode) IsElement() bool {
	return s.PseudoElement != "" || (s.Node != nil && s.Node.Type == dom.ElementNode)
}

// IsText reports whether the node carries text content.
func (s *StyledNode) IsText() bool {
	return s.Node != nil && s.Node.IsText()
}

// IsWhitespace reports whether the node is a whitespace run.
func (s *StyledNode) IsWhitespace() bool {
	return s.Node != nil && s.Node.Type == dom.WhitespaceNode
}

// Text returns the node's text content with text-transform applied.
func (s *StyledNode) Text() string {
	if s.Node == nil {
		return ""
	}
	text := s.Node.Data
	if s.Node.Type == dom.WhitespaceNode {
		return " "
	}
	switch s.Keyword(css.PropTextTransform) {
	case css.TextTransformUppercase:
		text = s.ctx.Backend.TransformText(text, host.TextTransformUppercase)
	case css.TextTransformLowercase:
		text = s.ctx.Backend.TransformText(text, host.TextTransformLowercase)
	case css.TextTransformCapitalize:
		text = s.ctx.Backend.TransformText(text, host.TextTransformCapitalize)
	}
	return text
}

// SetPseudo toggles a dynamic pseudo-class. Returns true on change.
func (s *StyledNode) SetPseudo(name string, on bool) bool {
	if s.Pseudo == nil {
		s.Pseudo = make(map[string]bool)
	}
	if s.Pseudo[name] == on {
		return false
	}
	if on {
		s.Pseudo[name] = true
	} else {
		delete(s.Pseudo, name)
	}
	return true
}

// HasPseudo reports pseudo-class membership.
func (s *StyledNode) HasPseudo(name string) bool {
	return s.Pseudo[name]
}

// Walk visits the styled tree in document order, including generated
// children.
func (s *StyledNode) Walk(visit func(*StyledNode)) {
	visit(s)
	if s.Before != nil {
		s.Before.Walk(visit)
	}
	for _, child := range s.Children {
		child.Walk(visit)
	}
	if s.After != nil {
		s.After.Walk(visit)
	}
}

// FindElement returns the first descendant element with the tag.
func (s *StyledNode) FindElement(tag string) *StyledNode {
	var found *StyledNode
	s.Walk(func(n *StyledNode) {
		if found == nil && n.TagName() == tag {
			found = n
		}
	})
	return found
}

// Root walks to the top of the styled tree.
func (s *StyledNode) Root() *StyledNode {
	n := s
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// attr reads an attribute from the underlying dom element; generated
// elements read through their host element for attr() content.
func (s *StyledNode) attr(name string) (string, bool) {
	n := s.Node
	if n == nil && s.Parent != nil {
		n = s.Parent.Node
	}
	if n == nil || n.Attributes == nil {
		return "", false
	}
	v, ok := n.Attributes[strings.ToLower(name)]
	return v, ok
}

// invalidateComputed drops the cached computed font values after a
// style change.
func (s *StyledNode) invalidateComputed() {
	s.fontValid = false
	s.fontSizeSet = false
	for _, c := range s.Children {
		c.invalidateComputed()
	}
	if s.Before != nil {
		s.Before.invalidateComputed()
	}
	if s.After != nil {
		s.After.invalidateComputed()
	}
}
