package style

import (
	"sort"
	"strings"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/dom"
	"github.com/flintweb/flint/log"
)

// Sheet pairs a parsed stylesheet with its origin for the cascade.
type Sheet struct {
	Stylesheet *css.Stylesheet
	// UserAgent marks the master stylesheet, applied before authors.
	UserAgent bool
}

// applier runs the cascade over a styled tree.
type applier struct {
	ctx        *Context
	ua         []*css.Stylesheet
	authors    []*css.Stylesheet
	ruleStores map[*css.Rule]*css.Store
}

// BuildTree mirrors the dom tree into a styled tree and computes
// every element's cascaded style. Comment nodes are dropped; anchors
// with an href get the :link pseudo-class.
func BuildTree(root *dom.Node, ctx *Context, sheets []Sheet) *StyledNode {
	a := &applier{ctx: ctx, ruleStores: make(map[*css.Rule]*css.Store)}
	for _, s := range sheets {
		if s.Stylesheet == nil {
			continue
		}
		if s.UserAgent {
			a.ua = append(a.ua, s.Stylesheet)
		} else {
			a.authors = append(a.authors, s.Stylesheet)
		}
	}

	styled := a.buildNode(root, nil)
	a.applyTree(styled)
	return styled
}

func (a *applier) buildNode(node *dom.Node, parent *StyledNode) *StyledNode {
	s := &StyledNode{
		Node:   node,
		Parent: parent,
		Store:  css.NewStore(),
		ctx:    a.ctx,
	}
	if node.Type == dom.ElementNode && node.Data == "a" && node.HasAttribute("href") {
		s.SetPseudo("link", true)
	}
	for _, child := range node.Children {
		if child.Type == dom.CommentNode {
			continue
		}
		s.Children = append(s.Children, a.buildNode(child, s))
	}
	return s
}

// applyTree styles elements top-down so inherited lookups always see
// a finished parent.
func (a *applier) applyTree(s *StyledNode) {
	if s.IsElement() {
		a.applyElement(s)
	}
	for _, child := range s.Children {
		a.applyTree(child)
	}
}

// matchedSelector is one cascade entry before sorting.
type matchedSelector struct {
	used     usedSelector
	sheetIdx int
}

// applyElement runs the full cascade for one element:
// user agent → authors (document order) → inline style attribute.
// CSS 2.1 §6.4.1 Cascading order.
func (a *applier) applyElement(e *StyledNode) {
	e.used = nil

	store := css.NewStore()
	applyPresentationalHints(e.Node, store, a.ctx.BaseURL)

	a.mergeOrigin(e, store, a.ua, 0)
	a.mergeOrigin(e, store, a.authors, 1)

	if styleAttr := e.Node.GetAttribute("style"); styleAttr != "" {
		store.Combine(css.ParseInline(styleAttr, a.ctx.BaseURL))
	}

	e.Store = store
	a.applyGenerated(e)
}

// mergeOrigin matches all selectors of one origin and merges the
// winners in (specificity, sheet, source order) ascending order, so
// the final write is the highest-priority one.
func (a *applier) mergeOrigin(e *StyledNode, store *css.Store, sheets []*css.Stylesheet, origin int) {
	var matched []matchedSelector

	for sheetIdx, sheet := range sheets {
		for _, rule := range sheet.Rules {
			for _, sel := range rule.Selectors {
				if !sel.Media.Check(&a.ctx.Features) {
					continue
				}
				flags := MatchSelector(e, sel, false)
				if flags == NoMatch {
					continue
				}
				u := usedSelector{
					sel:     sel,
					rule:    rule,
					baseURL: sheet.BaseURL,
					dynamic: flags&MatchPseudoClass != 0,
					origin:  origin,
					sheet:   sheetIdx,
				}
				switch {
				case flags&MatchWithBefore != 0:
					u.pseudoElement = "before"
				case flags&MatchWithAfter != 0:
					u.pseudoElement = "after"
				}
				e.used = append(e.used, u)
				if u.pseudoElement != "" {
					continue
				}
				matched = append(matched, matchedSelector{used: u, sheetIdx: sheetIdx})
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := matched[i].used.sel, matched[j].used.sel
		if c := si.Specificity.Compare(sj.Specificity); c != 0 {
			return c < 0
		}
		if matched[i].sheetIdx != matched[j].sheetIdx {
			return matched[i].sheetIdx < matched[j].sheetIdx
		}
		return si.Order < sj.Order
	})

	for _, m := range matched {
		if m.used.dynamic && MatchSelector(e, m.used.sel, true)&Match == 0 {
			continue
		}
		store.Combine(a.ruleStore(m.used.rule, m.used.baseURL))
	}
}

// ruleStore expands a rule's declarations into a longhand store once.
func (a *applier) ruleStore(rule *css.Rule, baseURL string) *css.Store {
	if s, ok := a.ruleStores[rule]; ok {
		return s
	}
	s := css.NewStore()
	for _, d := range rule.Declarations {
		s.AddDeclaration(d, baseURL)
	}
	a.ruleStores[rule] = s
	return s
}

// applyGenerated materializes ::before and ::after children when a
// matched selector targets them and the merged content is renderable.
func (a *applier) applyGenerated(e *StyledNode) {
	e.Before = a.buildGenerated(e, "before")
	e.After = a.buildGenerated(e, "after")
}

func (a *applier) buildGenerated(e *StyledNode, which string) *StyledNode {
	var matched []matchedSelector
	for _, u := range e.used {
		if u.pseudoElement == which {
			matched = append(matched, matchedSelector{used: u})
		}
	}
	if len(matched) == 0 {
		return nil
	}
	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := matched[i].used.sel, matched[j].used.sel
		if c := si.Specificity.Compare(sj.Specificity); c != 0 {
			return c < 0
		}
		return si.Order < sj.Order
	})

	store := css.NewStore()
	for _, m := range matched {
		if m.used.dynamic && MatchSelector(e, m.used.sel, true)&Match == 0 {
			continue
		}
		store.Combine(a.ruleStore(m.used.rule, m.used.baseURL))
	}

	content, _ := store.Get(css.PropContent)
	text := strings.TrimSpace(content.Str)
	if text == "" || text == "none" || text == "normal" {
		return nil
	}

	gen := &StyledNode{
		Parent:        e,
		Store:         store,
		PseudoElement: which,
		ctx:           a.ctx,
	}
	gen.Children = buildContentChildren(gen, text)
	return gen
}

// buildContentChildren parses a content value into inline children:
// string literals, attr(name) lookups and url(...) images.
// CSS 2.1 §12.2 The content property.
func buildContentChildren(gen *StyledNode, content string) []*StyledNode {
	var children []*StyledNode
	appendText := func(text string) {
		if text == "" {
			return
		}
		children = append(children, &StyledNode{
			Node:   dom.NewText(text),
			Parent: gen,
			Store:  css.NewStore(),
			ctx:    gen.ctx,
		})
	}

	inURL := false
	for _, cv := range css.Tokenize(content) {
		switch cv.Type {
		case css.StringToken:
			if inURL {
				img := dom.NewElement("img")
				img.SetAttribute("src", cv.Value)
				children = append(children, &StyledNode{Node: img, Parent: gen, Store: css.NewStore(), ctx: gen.ctx})
				inURL = false
				continue
			}
			appendText(cv.Value)
		case css.URLToken:
			img := dom.NewElement("img")
			img.SetAttribute("src", cv.Value)
			children = append(children, &StyledNode{
				Node:   img,
				Parent: gen,
				Store:  css.NewStore(),
				ctx:    gen.ctx,
			})
		case css.FunctionToken:
			// The tokenizer leaves the arguments as following tokens: a
			// quoted url("x") arrives as the function name then the
			// string; attr(x) is handled below.
			inURL = strings.EqualFold(cv.Value, "url")
		case css.IdentToken:
			// Bare identifiers inside content come from attr() and
			// open-quote/close-quote; quotes render as plain quotes.
			switch cv.Value {
			case "open-quote":
				appendText("“")
			case "close-quote":
				appendText("”")
			}
		}
	}

	// attr(name) needs the component-value structure, not bare tokens.
	if strings.Contains(content, "attr(") {
		children = children[:0]
		for _, part := range splitContentParts(content) {
			switch {
			case strings.HasPrefix(part, "attr(") && strings.HasSuffix(part, ")"):
				name := strings.TrimSpace(part[5 : len(part)-1])
				if v, ok := gen.attr(name); ok {
					appendText(v)
				}
			case strings.HasPrefix(part, "url(") && strings.HasSuffix(part, ")"):
				src := strings.Trim(strings.TrimSpace(part[4:len(part)-1]), "\"'")
				img := dom.NewElement("img")
				img.SetAttribute("src", src)
				children = append(children, &StyledNode{
					Node:   img,
					Parent: gen,
					Store:  css.NewStore(),
					ctx:    gen.ctx,
				})
			case len(part) >= 2 && (part[0] == '"' || part[0] == '\''):
				appendText(part[1 : len(part)-1])
			}
		}
	}
	return children
}

// splitContentParts splits a content value on whitespace outside
// quotes and parentheses.
func splitContentParts(content string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case quote != 0:
			current.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			current.WriteByte(c)
		case c == '(':
			depth++
			current.WriteByte(c)
		case c == ')':
			depth--
			current.WriteByte(c)
		case depth == 0 && (c == ' ' || c == '\t'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// RefreshStyle re-runs the merge for an element whose dynamic
// pseudo-class set changed, honouring the current pseudo state.
// Returns true when any property changed.
func (e *StyledNode) RefreshStyle() bool {
	if len(e.used) == 0 {
		return false
	}

	store := css.NewStore()
	applyPresentationalHints(e.Node, store, e.ctx.BaseURL)

	var matched []matchedSelector
	for _, u := range e.used {
		if u.pseudoElement != "" {
			continue
		}
		matched = append(matched, matchedSelector{used: u, sheetIdx: u.sheet})
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ui, uj := matched[i].used, matched[j].used
		if ui.origin != uj.origin {
			return ui.origin < uj.origin
		}
		if c := ui.sel.Specificity.Compare(uj.sel.Specificity); c != 0 {
			return c < 0
		}
		if ui.sheet != uj.sheet {
			return ui.sheet < uj.sheet
		}
		return ui.sel.Order < uj.sel.Order
	})

	stores := make(map[*css.Rule]*css.Store)
	ruleStore := func(rule *css.Rule, baseURL string) *css.Store {
		if s, ok := stores[rule]; ok {
			return s
		}
		s := css.NewStore()
		for _, d := range rule.Declarations {
			s.AddDeclaration(d, baseURL)
		}
		stores[rule] = s
		return s
	}

	for _, m := range matched {
		if MatchSelector(e, m.used.sel, true)&Match == 0 {
			continue
		}
		store.Combine(ruleStore(m.used.rule, m.used.baseURL))
	}

	if styleAttr := e.Node.GetAttribute("style"); styleAttr != "" {
		store.Combine(css.ParseInline(styleAttr, e.ctx.BaseURL))
	}

	if storesEqual(e.Store, store) {
		return false
	}
	log.Debugf("style: refreshed <%s> after pseudo-class change", e.TagName())
	e.Store = store
	e.invalidateComputed()
	return true
}

// HasDynamicStyle reports whether any used selector depends on a
// dynamic pseudo-class.
func (e *StyledNode) HasDynamicStyle() bool {
	for _, u := range e.used {
		if u.dynamic {
			return true
		}
	}
	return false
}

func storesEqual(a, b *css.Store) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, id := range a.Properties() {
		va, _ := a.Get(id)
		vb, ok := b.Get(id)
		if !ok || va != vb {
			return false
		}
	}
	return true
}

// applyPresentationalHints converts HTML presentational attributes to
// the lowest-priority style declarations.
// HTML5 §2.4.4: Presentational hints.
func applyPresentationalHints(node *dom.Node, store *css.Store, baseURL string) {
	if node == nil || node.Type != dom.ElementNode {
		return
	}

	if bgcolor := node.GetAttribute("bgcolor"); bgcolor != "" {
		store.Add("background-color", bgcolor, baseURL, false)
	}
	if node.Data == "font" {
		if color := node.GetAttribute("color"); color != "" {
			store.Add("color", color, baseURL, false)
		}
	}
	if align := node.GetAttribute("align"); align != "" {
		store.Add("text-align", align, baseURL, false)
	}
	if valign := node.GetAttribute("valign"); valign != "" {
		store.Add("vertical-align", valign, baseURL, false)
	}

	switch node.Data {
	case "img", "table", "td", "th", "iframe":
		if w := node.GetAttribute("width"); w != "" {
			store.Add("width", dimensionHint(w), baseURL, false)
		}
		if h := node.GetAttribute("height"); h != "" {
			store.Add("height", dimensionHint(h), baseURL, false)
		}
	}
	if node.Data == "table" {
		if cs := node.GetAttribute("cellspacing"); cs != "" {
			store.Add("border-spacing", dimensionHint(cs), baseURL, false)
		}
	}
}

// dimensionHint maps HTML dimension attributes ("400", "50%") to CSS
// lengths.
func dimensionHint(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		return v
	}
	return v + "px"
}
