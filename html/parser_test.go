package html

import (
	"testing"

	"github.com/flintweb/flint/dom"
)

func TestParseSimpleDocument(t *testing.T) {
	doc := Parse("<html><body><p>hello</p></body></html>")

	html := doc.FindFirst("html")
	if html == nil {
		t.Fatal("no html element")
	}
	body := doc.FindFirst("body")
	if body == nil || body.Parent != html {
		t.Fatal("body should be a child of html")
	}
	p := doc.FindFirst("p")
	if p == nil {
		t.Fatal("no p element")
	}
	if got := p.Text(); got != "hello" {
		t.Errorf("text: got %q", got)
	}
}

func TestParseAttributes(t *testing.T) {
	doc := Parse(`<a HREF="x.html" class=link data-n='7'>go</a>`)
	a := doc.FindFirst("a")
	if a == nil {
		t.Fatal("no anchor")
	}
	if a.GetAttribute("href") != "x.html" {
		t.Errorf("href: %q", a.GetAttribute("href"))
	}
	if a.GetAttribute("class") != "link" {
		t.Errorf("class: %q", a.GetAttribute("class"))
	}
	if a.GetAttribute("data-n") != "7" {
		t.Errorf("data-n: %q", a.GetAttribute("data-n"))
	}
	want := []string{"href", "class", "data-n"}
	if len(a.AttrOrder) != len(want) {
		t.Fatalf("attr order: %v", a.AttrOrder)
	}
	for i := range want {
		if a.AttrOrder[i] != want[i] {
			t.Errorf("attr %d: got %q, want %q", i, a.AttrOrder[i], want[i])
		}
	}
}

func TestTextSplitIntoWordsAndWhitespace(t *testing.T) {
	doc := Parse("<p>two words</p>")
	p := doc.FindFirst("p")
	if p == nil {
		t.Fatal("no p")
	}
	types := make([]dom.NodeType, len(p.Children))
	for i, c := range p.Children {
		types[i] = c.Type
	}
	want := []dom.NodeType{dom.TextNode, dom.WhitespaceNode, dom.TextNode}
	if len(types) != len(want) {
		t.Fatalf("children: %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("child %d: got %v, want %v", i, types[i], want[i])
		}
	}
	if p.Children[0].Data != "two" || p.Children[2].Data != "words" {
		t.Errorf("words: %q %q", p.Children[0].Data, p.Children[2].Data)
	}
}

func TestVoidElements(t *testing.T) {
	doc := Parse("<p>a<br>b</p><img src=x.png>")
	p := doc.FindFirst("p")
	if p == nil {
		t.Fatal("no p")
	}
	br := doc.FindFirst("br")
	if br == nil || br.Parent != p {
		t.Error("br should close immediately inside p")
	}
	if img := doc.FindFirst("img"); img == nil {
		t.Error("img should parse as void")
	}
}

func TestImpliedParagraphClose(t *testing.T) {
	doc := Parse("<body><p>one<p>two</body>")
	body := doc.FindFirst("body")
	if body == nil {
		t.Fatal("no body")
	}
	count := 0
	for _, c := range body.Children {
		if c.Type == dom.ElementNode && c.Data == "p" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("got %d paragraphs, want 2 siblings", count)
	}
}

func TestRawTextElements(t *testing.T) {
	doc := Parse("<style>p { color: red } /* <b> not a tag */</style><p>x</p>")
	style := doc.FindFirst("style")
	if style == nil {
		t.Fatal("no style element")
	}
	if got := style.Text(); got != "p { color: red } /* <b> not a tag */" {
		t.Errorf("style text: %q", got)
	}
	if doc.FindFirst("b") != nil {
		t.Error("markup inside style must not create elements")
	}
}

func TestComments(t *testing.T) {
	doc := Parse("<p><!-- note -->x</p>")
	p := doc.FindFirst("p")
	if p == nil {
		t.Fatal("no p")
	}
	foundComment := false
	for _, c := range p.Children {
		if c.Type == dom.CommentNode {
			foundComment = true
			if c.Data != " note " {
				t.Errorf("comment data: %q", c.Data)
			}
		}
	}
	if !foundComment {
		t.Error("comment node missing")
	}
}

func TestEntities(t *testing.T) {
	doc := Parse("<p>a &amp; b &#60; c &#x3E; d</p>")
	p := doc.FindFirst("p")
	if p == nil {
		t.Fatal("no p")
	}
	if got := p.Text(); got != "a & b < c > d" {
		t.Errorf("got %q", got)
	}
}

func TestUnclosedTagsRecovered(t *testing.T) {
	doc := Parse("<div><span>x")
	if doc.FindFirst("span") == nil {
		t.Error("unclosed elements should still appear in the tree")
	}
}
