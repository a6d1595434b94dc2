package style

import (
	"strings"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/dom"
)

// MatchResult is the bitmask a selector match produces.
type MatchResult int

const (
	// NoMatch means the selector does not apply.
	NoMatch MatchResult = 0
	// Match means the selector applies.
	Match MatchResult = 1 << iota
	// MatchPseudoClass means the selector applies only when a dynamic
	// pseudo-class (:hover, :active, :link, :lang) is also satisfied; the matcher is
	// run once ignoring dynamic pseudos for the baseline cascade and
	// once honouring them for interactive refresh.
	MatchPseudoClass
	// MatchWithBefore routes the declarations to the generated
	// ::before child.
	MatchWithBefore
	// MatchWithAfter routes the declarations to the generated
	// ::after child.
	MatchWithAfter
)

// MatchSelector matches a selector chain against an element,
// right-to-left. honorDynamic selects between the baseline pass and
// the interactive pass.
func MatchSelector(e *StyledNode, sel *css.Selector, honorDynamic bool) MatchResult {
	if !e.IsElement() {
		return NoMatch
	}
	result := matchCompound(e, &sel.Right, honorDynamic)
	if result == NoMatch {
		return NoMatch
	}

	current := e
	for link := sel; link.Left != nil; link = link.Left {
		var next *StyledNode
		var flags MatchResult
		switch link.Combinator {
		case css.CombinatorChild:
			next = current.parentElement()
			if next == nil {
				return NoMatch
			}
			flags = matchCompound(next, &link.Left.Right, honorDynamic)
			if flags == NoMatch {
				return NoMatch
			}
		case css.CombinatorDescendant:
			next, flags = climbAncestors(current, &link.Left.Right, honorDynamic)
			if next == nil {
				return NoMatch
			}
		case css.CombinatorAdjacentSibling:
			next = current.prevSiblingElement()
			if next == nil {
				return NoMatch
			}
			flags = matchCompound(next, &link.Left.Right, honorDynamic)
			if flags == NoMatch {
				return NoMatch
			}
		case css.CombinatorGeneralSibling:
			next, flags = scanEarlierSiblings(current, &link.Left.Right, honorDynamic)
			if next == nil {
				return NoMatch
			}
		}
		// Generated-content flags only apply on the subject compound.
		result |= flags & MatchPseudoClass
		current = next
	}
	return result
}

// climbAncestors walks parents until a compound matches.
func climbAncestors(e *StyledNode, cs *css.CompoundSelector, honorDynamic bool) (*StyledNode, MatchResult) {
	for p := e.parentElement(); p != nil; p = p.parentElement() {
		if flags := matchCompound(p, cs, honorDynamic); flags != NoMatch {
			return p, flags
		}
	}
	return nil, NoMatch
}

// scanEarlierSiblings walks earlier element siblings until a compound
// matches.
func scanEarlierSiblings(e *StyledNode, cs *css.CompoundSelector, honorDynamic bool) (*StyledNode, MatchResult) {
	for s := e.prevSiblingElement(); s != nil; s = s.prevSiblingElement() {
		if flags := matchCompound(s, cs, honorDynamic); flags != NoMatch {
			return s, flags
		}
	}
	return nil, NoMatch
}

func (s *StyledNode) parentElement() *StyledNode {
	if s.Parent != nil && s.Parent.IsElement() {
		return s.Parent
	}
	return nil
}

// prevSiblingElement returns the previous element among the parent's
// styled children, skipping text and whitespace.
func (s *StyledNode) prevSiblingElement() *StyledNode {
	if s.Parent == nil {
		return nil
	}
	var prev *StyledNode
	for _, sib := range s.Parent.Children {
		if sib == s {
			return prev
		}
		if sib.IsElement() {
			prev = sib
		}
	}
	return nil
}

// matchCompound evaluates one compound selector against an element.
func matchCompound(e *StyledNode, cs *css.CompoundSelector, honorDynamic bool) MatchResult {
	if cs.Tag != "" && cs.Tag != "*" && cs.Tag != e.TagName() {
		return NoMatch
	}

	result := Match
	for i := range cs.Attrs {
		attr := &cs.Attrs[i]
		switch attr.Condition {
		case css.CondPseudoElement:
			switch attr.Name {
			case "before":
				result |= MatchWithBefore
			case "after":
				result |= MatchWithAfter
			}
		case css.CondPseudoClass:
			flags := matchPseudoClass(e, attr, honorDynamic)
			if flags == NoMatch {
				return NoMatch
			}
			result |= flags &^ Match
		default:
			if !matchAttribute(e, attr) {
				return NoMatch
			}
		}
	}
	return result
}

// matchAttribute evaluates one attribute predicate.
// Selectors L3 §6.3 attribute selectors.
func matchAttribute(e *StyledNode, attr *css.Attribute) bool {
	value, present := e.attr(attr.Name)
	switch attr.Condition {
	case css.CondExists:
		return present
	case css.CondEqual:
		return present && value == attr.Value
	case css.CondContain:
		if !present {
			return false
		}
		for _, tok := range strings.Fields(value) {
			if tok == attr.Value {
				return true
			}
		}
		return false
	case css.CondHyphen:
		return present && (value == attr.Value || strings.HasPrefix(value, attr.Value+"-"))
	case css.CondBeginsWith:
		return present && attr.Value != "" && strings.HasPrefix(value, attr.Value)
	case css.CondEndsWith:
		return present && attr.Value != "" && strings.HasSuffix(value, attr.Value)
	case css.CondSubstring:
		return present && attr.Value != "" && strings.Contains(value, attr.Value)
	}
	return false
}

// matchPseudoClass evaluates one pseudo-class predicate. Dynamic
// pseudos report MatchPseudoClass on the baseline pass and test the
// element's pseudo set on the interactive pass.
func matchPseudoClass(e *StyledNode, attr *css.Attribute, honorDynamic bool) MatchResult {
	switch attr.Name {
	case "hover", "active":
		if honorDynamic {
			if !e.HasPseudo(attr.Name) {
				return NoMatch
			}
			return Match | MatchPseudoClass
		}
		return Match | MatchPseudoClass
	case "link":
		if !e.HasPseudo("link") {
			return NoMatch
		}
		return Match | MatchPseudoClass
	case "visited":
		// History is never consulted; :visited never matches.
		return NoMatch
	case "lang":
		lang := e.ctx.Language
		arg := strings.ToLower(attr.Value)
		if arg == "" || lang == "" {
			return NoMatch
		}
		if !strings.HasPrefix(strings.ToLower(lang), arg) {
			return NoMatch
		}
		return Match | MatchPseudoClass
	case "root":
		if e.Parent != nil && e.Parent.IsElement() {
			return NoMatch
		}
		return Match
	case "not":
		if attr.Sub == nil {
			return NoMatch
		}
		if matchCompound(e, attr.Sub, honorDynamic)&Match != 0 {
			return NoMatch
		}
		return Match
	case "first-child":
		if e.elementIndex() != 0 {
			return NoMatch
		}
		return Match
	case "last-child":
		if e.elementIndex() != e.elementCount()-1 {
			return NoMatch
		}
		return Match
	case "only-child":
		if e.elementCount() != 1 {
			return NoMatch
		}
		return Match
	case "first-of-type":
		if e.typeIndex() != 0 {
			return NoMatch
		}
		return Match
	case "last-of-type":
		if e.typeIndex() != e.typeCount()-1 {
			return NoMatch
		}
		return Match
	case "only-of-type":
		if e.typeCount() != 1 {
			return NoMatch
		}
		return Match
	case "nth-child":
		if !nthMatches(e.elementIndex()+1, attr.Step, attr.Offset) {
			return NoMatch
		}
		return Match
	case "nth-last-child":
		if !nthMatches(e.elementCount()-e.elementIndex(), attr.Step, attr.Offset) {
			return NoMatch
		}
		return Match
	case "nth-of-type":
		if !nthMatches(e.typeIndex()+1, attr.Step, attr.Offset) {
			return NoMatch
		}
		return Match
	case "nth-last-of-type":
		if !nthMatches(e.typeCount()-e.typeIndex(), attr.Step, attr.Offset) {
			return NoMatch
		}
		return Match
	}
	// Unknown pseudo-class: the compound selector never matches.
	return NoMatch
}

// nthMatches reports whether 1-based position matches An+B.
// Selectors L3 §6.5.2: position = step*n + offset for some n ≥ 0.
func nthMatches(position, step, offset int) bool {
	if step == 0 {
		return position == offset
	}
	delta := position - offset
	if step > 0 {
		return delta >= 0 && delta%step == 0
	}
	return delta <= 0 && -delta%-step == 0
}

// elementIndex returns the element's position among its element
// siblings (dom order).
func (s *StyledNode) elementIndex() int {
	if s.Node == nil || s.Node.Parent == nil {
		return 0
	}
	idx := 0
	for _, sib := range s.Node.Parent.Children {
		if sib == s.Node {
			return idx
		}
		if sib.Type == dom.ElementNode {
			idx++
		}
	}
	return idx
}

func (s *StyledNode) elementCount() int {
	if s.Node == nil || s.Node.Parent == nil {
		return 1
	}
	return len(s.Node.Parent.ElementChildren())
}

// typeIndex returns the element's position among same-tag siblings.
func (s *StyledNode) typeIndex() int {
	if s.Node == nil || s.Node.Parent == nil {
		return 0
	}
	idx := 0
	for _, sib := range s.Node.Parent.Children {
		if sib == s.Node {
			return idx
		}
		if sib.Type == dom.ElementNode && sib.Data == s.Node.Data {
			idx++
		}
	}
	return idx
}

func (s *StyledNode) typeCount() int {
	if s.Node == nil || s.Node.Parent == nil {
		return 1
	}
	count := 0
	for _, sib := range s.Node.Parent.Children {
		if sib.Type == dom.ElementNode && sib.Data == s.Node.Data {
			count++
		}
	}
	return count
}
