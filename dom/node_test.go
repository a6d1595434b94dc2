package dom

import (
	"testing"
)

func TestAppendChildLinks(t *testing.T) {
	parent := NewElement("div")
	child := NewText("hello")
	parent.AppendChild(child)

	if len(parent.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(parent.Children))
	}
	if child.Parent != parent {
		t.Error("parent back-pointer not set")
	}
}

func TestAttributesLowerCased(t *testing.T) {
	n := NewElement("DIV")
	if n.Data != "div" {
		t.Errorf("tag: got %q, want div", n.Data)
	}
	n.SetAttribute("CLASS", "a b")
	if n.GetAttribute("class") != "a b" {
		t.Error("attribute keys should be lower-cased")
	}
	if !n.HasAttribute("Class") {
		t.Error("lookup should be case-insensitive")
	}
	if len(n.AttrOrder) != 1 || n.AttrOrder[0] != "class" {
		t.Errorf("attr order: %v", n.AttrOrder)
	}
}

func TestClasses(t *testing.T) {
	n := NewElement("div")
	n.SetAttribute("class", "  one   two three ")
	classes := n.Classes()
	want := []string{"one", "two", "three"}
	if len(classes) != len(want) {
		t.Fatalf("got %v", classes)
	}
	for i := range want {
		if classes[i] != want[i] {
			t.Errorf("class %d: got %q, want %q", i, classes[i], want[i])
		}
	}
}

func TestSiblingNavigation(t *testing.T) {
	parent := NewElement("ul")
	a := NewElement("li")
	parent.AppendChild(a)
	parent.AppendChild(NewWhitespace(" "))
	b := NewElement("li")
	parent.AppendChild(b)

	if b.PrevElementSibling() != a {
		t.Error("prev element sibling should skip whitespace")
	}
	if a.NextElementSibling() != b {
		t.Error("next element sibling should skip whitespace")
	}
	if a.PrevElementSibling() != nil {
		t.Error("first element has no previous sibling")
	}
}

func TestText(t *testing.T) {
	div := NewElement("div")
	div.AppendChild(NewText("a"))
	span := NewElement("span")
	span.AppendChild(NewText("b"))
	div.AppendChild(span)

	if got := div.Text(); got != "ab" {
		t.Errorf("got %q", got)
	}
}

func TestFindFirst(t *testing.T) {
	doc := NewDocument()
	html := NewElement("html")
	doc.AppendChild(html)
	body := NewElement("body")
	html.AppendChild(body)
	if doc.FindFirst("body") != body {
		t.Error("FindFirst should locate the body")
	}
	if doc.FindFirst("table") != nil {
		t.Error("missing tag should return nil")
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"http://x.test/a/", "b.png", "http://x.test/a/b.png"},
		{"http://x.test/a/", "/c.png", "http://x.test/c.png"},
		{"http://x.test/a/", "http://y.test/d.png", "http://y.test/d.png"},
		{"http://x.test/a/", "data:text/plain,hi", "data:text/plain,hi"},
		{"/srv/www", "img/e.png", "/srv/www/img/e.png"},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestDocumentBase(t *testing.T) {
	doc := NewDocument()
	html := NewElement("html")
	doc.AppendChild(html)
	head := NewElement("head")
	html.AppendChild(head)

	if got := DocumentBase(doc, "http://x.test/sub/page.html"); got != "http://x.test/sub/" {
		t.Errorf("without base element: %q", got)
	}

	base := NewElement("base")
	base.SetAttribute("href", "http://cdn.test/assets/")
	head.AppendChild(base)
	if got := DocumentBase(doc, "http://x.test/sub/page.html"); got != "http://cdn.test/assets/" {
		t.Errorf("with base element: %q", got)
	}
}

func TestDataURLLoader(t *testing.T) {
	loader := NewResourceLoader("")
	data, err := loader.Load("data:text/plain;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}

	data, err = loader.Load("data:text/plain,hi%20there")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "hi there" {
		t.Errorf("got %q", data)
	}
}
