package html

import (
	"github.com/flintweb/flint/dom"
)

// Parser builds a dom tree from the token stream.
// This is a simplified version of HTML5 tree construction.
//
// Spec references:
// - HTML5 §12.2.6 Tree construction: https://html.spec.whatwg.org/multipage/parsing.html#tree-construction
type Parser struct {
	tokenizer *Tokenizer
	doc       *dom.Node
	stack     []*dom.Node // stack of open elements
}

// NewParser creates a new HTML parser.
func NewParser(input string) *Parser {
	return &Parser{
		tokenizer: NewTokenizer(input),
		doc:       dom.NewDocument(),
	}
}

// Parse parses the HTML input and returns the document node.
func (p *Parser) Parse() *dom.Node {
	p.stack = append(p.stack, p.doc)

	for {
		token, ok := p.tokenizer.Next()
		if !ok {
			break
		}
		p.processToken(token)
	}

	return p.doc
}

func (p *Parser) processToken(token Token) {
	switch token.Type {
	case StartTagToken, SelfClosingTagToken:
		p.handleStartTag(token)
	case EndTagToken:
		p.handleEndTag(token)
	case TextToken:
		p.handleText(token)
	case CommentToken:
		p.currentNode().AppendChild(dom.NewComment(token.Data))
	case DoctypeToken:
		// The tree has no doctype node; quirks handling is out of scope.
	}
}

// handleStartTag creates the element and pushes it unless void or
// self-closing.
// HTML5 §12.2.6.4.7 "in body" insertion mode (simplified)
func (p *Parser) handleStartTag(token Token) {
	// A <p> or <li> start tag implicitly closes an open one.
	switch token.Data {
	case "p", "li", "tr", "td", "th", "option":
		p.closeImplied(token.Data)
	}

	elem := dom.NewElement(token.Data)
	for _, name := range token.AttrOrder {
		elem.SetAttribute(name, token.Attributes[name])
	}

	p.currentNode().AppendChild(elem)

	if token.Type != SelfClosingTagToken && !isVoidElement(token.Data) {
		p.stack = append(p.stack, elem)
	}
}

// closeImplied pops an open element of the same tag if it is the
// nearest open element of that kind.
func (p *Parser) closeImplied(tag string) {
	for i := len(p.stack) - 1; i >= 1; i-- {
		node := p.stack[i]
		if node.Data == tag {
			p.stack = p.stack[:i]
			return
		}
		// Stop at structural boundaries.
		switch node.Data {
		case "table", "ul", "ol", "div", "body", "html":
			return
		}
	}
}

// handleEndTag pops the matching element, ignoring unmatched tags.
func (p *Parser) handleEndTag(token Token) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		node := p.stack[i]
		if node.Type == dom.ElementNode && node.Data == token.Data {
			p.stack = p.stack[:i]
			return
		}
	}
}

// handleText splits the run into alternating word and whitespace
// nodes so line boxes can break and trim between words.
// CSS 2.1 §16.6.1 white-space processing happens later against the
// preserved runs.
func (p *Parser) handleText(token Token) {
	current := p.currentNode()

	// Raw-text containers keep the run intact.
	if current.Type == dom.ElementNode && (current.Data == "script" || current.Data == "style" || current.Data == "pre" || current.Data == "textarea") {
		current.AppendChild(dom.NewText(token.Data))
		return
	}

	text := token.Data
	if text == "" {
		return
	}
	start := 0
	inSpace := isSpaceByte(text[0])
	flush := func(end int) {
		if end == start {
			return
		}
		run := text[start:end]
		if inSpace {
			// Whitespace at document level has no container.
			if len(p.stack) > 1 {
				current.AppendChild(dom.NewWhitespace(run))
			}
		} else {
			current.AppendChild(dom.NewText(run))
		}
	}
	for i := 0; i < len(text); i++ {
		if isSpaceByte(text[i]) != inSpace {
			flush(i)
			start = i
			inSpace = !inSpace
		}
	}
	flush(len(text))
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func (p *Parser) currentNode() *dom.Node {
	if len(p.stack) == 0 {
		return p.doc
	}
	return p.stack[len(p.stack)-1]
}

// isVoidElement reports whether the element can have no children.
// HTML5 §12.1.2 Elements: https://html.spec.whatwg.org/multipage/syntax.html#void-elements
func isVoidElement(tagName string) bool {
	switch tagName {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

// Parse is a convenience function to parse HTML.
func Parse(input string) *dom.Node {
	parser := NewParser(input)
	return parser.Parse()
}
