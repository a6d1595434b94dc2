// Package dom provides the element tree the engine styles and lays
// out: the parsed HTML document as nodes with parent and child links.
//
// Spec references:
// - DOM Level 2 Core: https://www.w3.org/TR/DOM-Level-2-Core/
package dom

import "strings"

// NodeType represents the variant of a node.
type NodeType int

const (
	// DocumentNode is the root of a parsed document.
	DocumentNode NodeType = iota
	// ElementNode is an HTML element.
	ElementNode
	// TextNode is a run of non-whitespace text.
	TextNode
	// WhitespaceNode is a run of collapsible whitespace between text.
	WhitespaceNode
	// CommentNode is an HTML comment; never rendered.
	CommentNode
	// CDATANode is a CDATA section; treated as text by renderers that
	// display it and skipped otherwise.
	CDATANode
)

// Node is a node in the element tree. Children are exclusively owned;
// the parent link is a non-owning back-pointer maintained by
// AppendChild. Attribute keys are lower-case ASCII.
type Node struct {
	Type       NodeType
	Data       string // tag name for elements, text content otherwise
	Attributes map[string]string
	AttrOrder  []string // attribute keys in insertion order
	Children   []*Node
	Parent     *Node
}

// NewElement creates an element node with the given tag name.
func NewElement(tagName string) *Node {
	return &Node{
		Type:       ElementNode,
		Data:       strings.ToLower(tagName),
		Attributes: make(map[string]string),
	}
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Data: text}
}

// NewWhitespace creates a whitespace node.
func NewWhitespace(text string) *Node {
	return &Node{Type: WhitespaceNode, Data: text}
}

// NewComment creates a comment node.
func NewComment(text string) *Node {
	return &Node{Type: CommentNode, Data: text}
}

// NewDocument creates a document root node.
func NewDocument() *Node {
	return &Node{Type: DocumentNode, Data: "#document"}
}

// AppendChild adds child to n, fixing the parent back-pointer.
func (n *Node) AppendChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// GetAttribute returns an attribute value, "" when absent.
func (n *Node) GetAttribute(name string) string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[strings.ToLower(name)]
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	if n.Attributes == nil {
		return false
	}
	_, ok := n.Attributes[strings.ToLower(name)]
	return ok
}

// SetAttribute sets an attribute, lower-casing the key.
func (n *Node) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	if _, ok := n.Attributes[name]; !ok {
		n.AttrOrder = append(n.AttrOrder, name)
	}
	n.Attributes[name] = value
}

// ID returns the element's id attribute.
func (n *Node) ID() string { return n.GetAttribute("id") }

// Classes returns the element's class attribute split on whitespace.
func (n *Node) Classes() []string {
	class := n.GetAttribute("class")
	if class == "" {
		return nil
	}
	return strings.Fields(class)
}

// IsText reports whether the node carries text content for layout.
func (n *Node) IsText() bool {
	return n.Type == TextNode || n.Type == WhitespaceNode || n.Type == CDATANode
}

// Text returns the concatenated text content of the subtree.
func (n *Node) Text() string {
	if n.IsText() {
		return n.Data
	}
	var b strings.Builder
	for _, child := range n.Children {
		b.WriteString(child.Text())
	}
	return b.String()
}

// ElementChildren returns the element-typed children in order.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child.Type == ElementNode {
			out = append(out, child)
		}
	}
	return out
}

// childIndex returns the position of child in n.Children, -1 if absent.
func (n *Node) childIndex(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// PrevElementSibling returns the previous sibling element, skipping
// text, whitespace and comments.
func (n *Node) PrevElementSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	for i := n.Parent.childIndex(n) - 1; i >= 0; i-- {
		if sib := n.Parent.Children[i]; sib.Type == ElementNode {
			return sib
		}
	}
	return nil
}

// NextElementSibling returns the next sibling element.
func (n *Node) NextElementSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	idx := n.Parent.childIndex(n)
	if idx < 0 {
		return nil
	}
	for i := idx + 1; i < len(n.Parent.Children); i++ {
		if sib := n.Parent.Children[i]; sib.Type == ElementNode {
			return sib
		}
	}
	return nil
}

// FindFirst returns the first element in the subtree matching tag, in
// document order, or nil.
func (n *Node) FindFirst(tag string) *Node {
	if n.Type == ElementNode && n.Data == tag {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindFirst(tag); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits the subtree in document order. Returning false from the
// visitor prunes the node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visit)
	}
}
