package css

import (
	"strconv"
	"strings"

	"github.com/flintweb/flint/log"
)

// Combinator joins two compound selectors.
// Selectors L3 §8.
type Combinator int

const (
	// CombinatorDescendant is whitespace.
	CombinatorDescendant Combinator = iota
	// CombinatorChild is '>'.
	CombinatorChild
	// CombinatorAdjacentSibling is '+'.
	CombinatorAdjacentSibling
	// CombinatorGeneralSibling is '~'.
	CombinatorGeneralSibling
)

// AttrCondition is the predicate kind of a simple selector component.
type AttrCondition int

const (
	// CondExists matches when the attribute is present.
	CondExists AttrCondition = iota
	// CondEqual is [attr=value] (and #id).
	CondEqual
	// CondContain is [attr~=value]: whitespace token-list membership
	// (also the semantics of .class).
	CondContain
	// CondHyphen is [attr|=value].
	CondHyphen
	// CondBeginsWith is [attr^=value].
	CondBeginsWith
	// CondEndsWith is [attr$=value].
	CondEndsWith
	// CondSubstring is [attr*=value].
	CondSubstring
	// CondPseudoClass is :name or :name(args).
	CondPseudoClass
	// CondPseudoElement is ::name.
	CondPseudoElement
)

// Attribute is one predicate of a compound selector. For nth-*
// pseudo-classes Step/Offset hold the parsed An+B arguments; for
// :not() Sub holds the negated compound selector.
type Attribute struct {
	Name      string
	Value     string
	Condition AttrCondition
	Step      int
	Offset    int
	Sub       *CompoundSelector
}

// CompoundSelector is a type selector plus attribute predicates with
// no combinators between them.
type CompoundSelector struct {
	Tag   string // "" and "*" both mean the universal selector
	Attrs []Attribute
}

// Selector is a left-linked chain of compound selectors. Right is the
// subject compound; Left, when non-nil, is joined by Combinator.
type Selector struct {
	Right       CompoundSelector
	Left        *Selector
	Combinator  Combinator
	Specificity Specificity
	Order       int
	Media       *MediaQueryList
}

// Specificity ranks selectors.
// Selectors L3 §9: (a, b, c, d) compared lexicographically.
type Specificity struct {
	A int
	B int
	C int
	D int
}

// Compare returns <0, 0 or >0 as s ranks below, equal to or above o.
func (s Specificity) Compare(o Specificity) int {
	if s.A != o.A {
		return s.A - o.A
	}
	if s.B != o.B {
		return s.B - o.B
	}
	if s.C != o.C {
		return s.C - o.C
	}
	return s.D - o.D
}

// Add accumulates another specificity.
func (s Specificity) Add(o Specificity) Specificity {
	return Specificity{s.A + o.A, s.B + o.B, s.C + o.C, s.D + o.D}
}

// ParseSelector parses a single selector string (no commas). Returns
// nil when nothing valid can be extracted.
func ParseSelector(text string) *Selector {
	sels := parseSelectorList(text, nil, new(int))
	if len(sels) == 0 {
		return nil
	}
	return sels[0]
}

// parseSelectorList splits on top-level commas and parses each
// selector, numbering them with the shared order counter.
func parseSelectorList(text string, media *MediaQueryList, order *int) []*Selector {
	var out []*Selector
	for _, part := range splitTopLevel(text, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sel := parseSelectorChain(part)
		if sel == nil {
			log.Debugf("css: unparsable selector %q", part)
			continue
		}
		sel.Media = media
		sel.Order = *order
		*order++
		out = append(out, sel)
	}
	return out
}

// parseSelectorChain partitions the selector at combinator positions
// and links the compounds right-to-left.
func parseSelectorChain(text string) *Selector {
	parts, combinators := splitCombinators(text)
	if len(parts) == 0 {
		return nil
	}

	var sel *Selector
	spec := Specificity{}
	for i, part := range parts {
		compound, cspec, ok := parseCompound(part)
		if !ok {
			return nil
		}
		spec = spec.Add(cspec)
		next := &Selector{Right: compound}
		if sel != nil {
			next.Left = sel
			next.Combinator = combinators[i-1]
		}
		sel = next
	}
	sel.Specificity = spec
	return sel
}

// splitCombinators breaks "a > b c + d" into compounds and the
// combinators between them.
func splitCombinators(text string) ([]string, []Combinator) {
	var parts []string
	var combinators []Combinator
	var current strings.Builder
	depth := 0
	pendingWS := false

	flush := func(c Combinator) {
		if current.Len() == 0 {
			return
		}
		parts = append(parts, current.String())
		current.Reset()
		combinators = append(combinators, c)
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '(' || ch == '[':
			depth++
			current.WriteByte(ch)
			pendingWS = false
		case ch == ')' || ch == ']':
			depth--
			current.WriteByte(ch)
			pendingWS = false
		case depth > 0:
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f':
			if current.Len() > 0 {
				pendingWS = true
			}
		case ch == '>':
			flush(CombinatorChild)
			pendingWS = false
		case ch == '+':
			flush(CombinatorAdjacentSibling)
			pendingWS = false
		case ch == '~':
			flush(CombinatorGeneralSibling)
			pendingWS = false
		default:
			if pendingWS {
				flush(CombinatorDescendant)
				pendingWS = false
			}
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	} else if len(combinators) > 0 {
		// Trailing combinator with no subject: invalid.
		return nil, nil
	}
	if len(combinators) >= len(parts) && len(parts) > 0 {
		combinators = combinators[:len(parts)-1]
	}
	return parts, combinators
}

// parseCompound parses one compound selector: optional type, then a
// run of '.', '#', '[...]', ':' and '::' components.
func parseCompound(text string) (CompoundSelector, Specificity, bool) {
	cs := CompoundSelector{}
	spec := Specificity{}
	i := 0

	readName := func() string {
		start := i
		for i < len(text) {
			c := text[i]
			if c == '.' || c == '#' || c == '[' || c == ':' {
				break
			}
			i++
		}
		return text[start:i]
	}

	if i < len(text) && text[i] != '.' && text[i] != '#' && text[i] != '[' && text[i] != ':' {
		cs.Tag = strings.ToLower(readName())
		if cs.Tag != "*" && cs.Tag != "" {
			spec.D++
		}
	}

	for i < len(text) {
		switch text[i] {
		case '.':
			i++
			name := readName()
			if name == "" {
				return cs, spec, false
			}
			cs.Attrs = append(cs.Attrs, Attribute{Name: "class", Value: name, Condition: CondContain})
			spec.C += len(strings.Fields(name))
		case '#':
			i++
			name := readName()
			if name == "" {
				return cs, spec, false
			}
			cs.Attrs = append(cs.Attrs, Attribute{Name: "id", Value: name, Condition: CondEqual})
			spec.B++
		case '[':
			end := strings.IndexByte(text[i:], ']')
			if end < 0 {
				return cs, spec, false
			}
			attr, ok := parseAttrPredicate(text[i+1 : i+end])
			if !ok {
				return cs, spec, false
			}
			cs.Attrs = append(cs.Attrs, attr)
			if attr.Name == "class" && attr.Condition == CondContain {
				spec.C += len(strings.Fields(attr.Value))
			} else {
				spec.C++
			}
			i += end + 1
		case ':':
			i++
			pseudoElement := false
			if i < len(text) && text[i] == ':' {
				pseudoElement = true
				i++
			}
			start := i
			for i < len(text) && isPseudoNameByte(text[i]) {
				i++
			}
			name := strings.ToLower(text[start:i])
			if name == "" {
				return cs, spec, false
			}
			args := ""
			if i < len(text) && text[i] == '(' {
				// The argument is paren-balanced and may itself
				// contain '.', '#', '[' or ':' (e.g. :not(.skip)).
				depth := 0
				j := i
				for ; j < len(text); j++ {
					switch text[j] {
					case '(':
						depth++
					case ')':
						depth--
					}
					if depth == 0 {
						break
					}
				}
				if j >= len(text) {
					return cs, spec, false
				}
				args = text[i+1 : j]
				i = j + 1
			}
			if !pseudoElement && (name == "before" || name == "after") {
				// Single-colon legacy form of the pseudo-elements.
				pseudoElement = true
			}
			attr, ok := parsePseudo(name, args, pseudoElement)
			if !ok {
				return cs, spec, false
			}
			cs.Attrs = append(cs.Attrs, attr)
			if !pseudoElement {
				spec.C++
				if attr.Sub != nil {
					// :not() takes the specificity of its argument.
					spec.C--
					_, subSpec, _ := parseCompound(attr.Value)
					spec = spec.Add(subSpec)
				}
			} else {
				spec.D++
			}
		default:
			return cs, spec, false
		}
	}

	if cs.Tag == "" && len(cs.Attrs) == 0 {
		return cs, spec, false
	}
	return cs, spec, true
}

// isPseudoNameByte reports whether c can appear in a pseudo-class or
// pseudo-element name (the parenthesized argument is scanned
// separately).
func isPseudoNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '-' || c == '_'
}

// parseAttrPredicate parses the inside of [ ... ].
func parseAttrPredicate(text string) (Attribute, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Attribute{}, false
	}
	ops := []struct {
		op   string
		cond AttrCondition
	}{
		{"~=", CondContain},
		{"|=", CondHyphen},
		{"^=", CondBeginsWith},
		{"$=", CondEndsWith},
		{"*=", CondSubstring},
		{"=", CondEqual},
	}
	for _, o := range ops {
		if idx := strings.Index(text, o.op); idx >= 0 {
			name := strings.ToLower(strings.TrimSpace(text[:idx]))
			value := strings.TrimSpace(text[idx+len(o.op):])
			value = strings.Trim(value, "\"'")
			if name == "" {
				return Attribute{}, false
			}
			return Attribute{Name: name, Value: value, Condition: o.cond}, true
		}
	}
	return Attribute{Name: strings.ToLower(text), Condition: CondExists}, true
}

// knownPseudoClasses lists the dynamic and structural pseudo-classes
// the matcher implements; anything else renders the compound selector
// non-matching rather than raising.
var knownPseudoClasses = map[string]bool{
	"hover":            true,
	"active":           true,
	"link":             true,
	"visited":          true,
	"lang":             true,
	"not":              true,
	"first-child":      true,
	"last-child":       true,
	"only-child":       true,
	"first-of-type":    true,
	"last-of-type":     true,
	"only-of-type":     true,
	"nth-child":        true,
	"nth-last-child":   true,
	"nth-of-type":      true,
	"nth-last-of-type": true,
	"root":             true,
}

func parsePseudo(name, args string, pseudoElement bool) (Attribute, bool) {
	if pseudoElement {
		if name != "before" && name != "after" {
			return Attribute{}, false
		}
		return Attribute{Name: name, Condition: CondPseudoElement}, true
	}
	attr := Attribute{Name: name, Value: args, Condition: CondPseudoClass}
	if !knownPseudoClasses[name] {
		// Unknown pseudo: keep the predicate so the compound selector
		// exists but can never match.
		return attr, true
	}
	switch name {
	case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
		step, offset, ok := ParseNth(args)
		if !ok {
			return Attribute{}, false
		}
		attr.Step, attr.Offset = step, offset
	case "not":
		sub, _, ok := parseCompound(strings.TrimSpace(args))
		if !ok {
			return Attribute{}, false
		}
		attr.Sub = &sub
	}
	return attr, true
}

// ParseNth parses an An+B expression using the CSS tokenizer. "odd"
// maps to (2,1) and "even" to (2,0).
// Selectors L3 §6.5.2.
func ParseNth(text string) (step, offset int, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "":
		return 0, 0, false
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	}

	tokens := Tokenize(text)
	// Strip whitespace tokens; An+B never needs them preserved.
	filtered := tokens[:0]
	for _, t := range tokens {
		if t.Type != WhitespaceToken {
			filtered = append(filtered, t)
		}
	}
	tokens = filtered

	i := 0
	sign := 1
	if tokens[i].Type == DelimToken && (tokens[i].Value == "+" || tokens[i].Value == "-") {
		if tokens[i].Value == "-" {
			sign = -1
		}
		i++
	}

	switch t := tokens[i]; {
	case t.Type == NumberToken:
		// "5" or "2n+1" tokenizes as number then possibly ident "n".
		i++
		if i < len(tokens) && tokens[i].Type == IdentToken && strings.HasPrefix(tokens[i].Value, "n") {
			step = sign * int(t.Numeric)
			return parseNthOffset(tokens, i, step)
		}
		return 0, sign * int(t.Numeric), tokens[i].Type == EOFToken
	case t.Type == IdentToken && strings.HasPrefix(t.Value, "n"):
		step = sign
		return parseNthOffset(tokens, i, step)
	case t.Type == IdentToken && strings.HasPrefix(t.Value, "-n"):
		// "-n+3" tokenizes with the sign folded into the identifier.
		step = -sign
		tokens[i].Value = t.Value[1:]
		return parseNthOffset(tokens, i, step)
	}
	return 0, 0, false
}

// parseNthOffset finishes An+B after the "n" identifier at tokens[i].
// The tokenizer may have folded "-3" into the identifier ("n-3") or
// produced a signed number token ("n" "+3").
func parseNthOffset(tokens []Token, i int, step int) (int, int, bool) {
	ident := tokens[i].Value
	i++
	if rest := ident[1:]; rest != "" {
		v, err := strconv.Atoi(rest)
		if err != nil {
			return 0, 0, false
		}
		return step, v, true
	}
	if tokens[i].Type == EOFToken {
		return step, 0, true
	}
	if tokens[i].Type == NumberToken {
		return step, int(tokens[i].Numeric), tokens[i+1].Type == EOFToken
	}
	if tokens[i].Type == DelimToken && (tokens[i].Value == "+" || tokens[i].Value == "-") {
		sign := 1
		if tokens[i].Value == "-" {
			sign = -1
		}
		i++
		if tokens[i].Type != NumberToken {
			return 0, 0, false
		}
		return step, sign * int(tokens[i].Numeric), tokens[i+1].Type == EOFToken
	}
	return 0, 0, false
}

// splitTopLevel splits text at sep outside of brackets and quotes.
func splitTopLevel(text string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	parts = append(parts, text[start:])
	return parts
}
