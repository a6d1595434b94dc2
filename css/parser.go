package css

import (
	"strings"

	"github.com/flintweb/flint/log"
)

// ComponentValue is a preserved token, a {}/[]/() block, or a function
// with argument component values.
// CSS Syntax L3 §5: parser railroad diagrams.
type ComponentValue struct {
	Token Token
	// Block holds the contents for simple blocks (Token.Type is one of
	// the open brackets) and the arguments for functions.
	Block []ComponentValue
}

// IsBlock reports whether the component value is a simple block.
func (cv ComponentValue) IsBlock() bool {
	switch cv.Token.Type {
	case LeftBraceToken, LeftBracketToken, LeftParenToken:
		return true
	}
	return false
}

// IsFunction reports whether the component value is a function.
func (cv ComponentValue) IsFunction() bool {
	return cv.Token.Type == FunctionToken
}

// Declaration is a property name with its component values.
// CSS Syntax L3 §5.4.4 (consume a declaration).
type Declaration struct {
	Property  string
	Value     []ComponentValue
	Important bool
}

// ValueText reconstructs the declaration value as a string, with
// single spaces between top-level tokens where whitespace occurred.
func (d *Declaration) ValueText() string {
	return componentText(d.Value)
}

func componentText(values []ComponentValue) string {
	var b strings.Builder
	for _, cv := range values {
		switch {
		case cv.IsFunction():
			b.WriteString(cv.Token.Value)
			b.WriteString("(")
			b.WriteString(componentText(cv.Block))
			b.WriteString(")")
		case cv.IsBlock():
			b.WriteString(cv.Token.Repr())
			b.WriteString(componentText(cv.Block))
			switch cv.Token.Type {
			case LeftBraceToken:
				b.WriteString("}")
			case LeftBracketToken:
				b.WriteString("]")
			case LeftParenToken:
				b.WriteString(")")
			}
		default:
			b.WriteString(cv.Token.Repr())
		}
	}
	return b.String()
}

// Rule is a qualified rule: a selector list guarding a declaration
// block, optionally constrained by a media query list.
type Rule struct {
	Selectors    []*Selector
	Declarations []*Declaration
	Media        *MediaQueryList
}

// Stylesheet is an ordered list of rules plus the @import URLs seen,
// in source order, already resolved against the base URL.
type Stylesheet struct {
	Rules   []*Rule
	Imports []string
	BaseURL string
}

// parser walks a token slice producing rules and declarations.
type parser struct {
	tokens  []Token
	pos     int
	baseURL string
	sheet   *Stylesheet
	order   int
}

// Parse parses CSS text into a stylesheet. The parse never fails:
// malformed declarations are dropped and malformed rules are skipped
// to the next balanced block.
func Parse(text string) *Stylesheet {
	return ParseStylesheet(text, "")
}

// ParseStylesheet parses CSS text with url() values resolved against
// baseURL.
func ParseStylesheet(text, baseURL string) *Stylesheet {
	p := &parser{
		tokens:  Tokenize(text),
		baseURL: baseURL,
		sheet:   &Stylesheet{BaseURL: baseURL},
	}
	p.consumeRules(true, nil)
	return p.sheet
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOFToken}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.peek()
	if t.Type != EOFToken {
		p.pos++
	}
	return t
}

func (p *parser) skipWhitespace() {
	for p.peek().Type == WhitespaceToken {
		p.pos++
	}
}

// consumeRules implements CSS Syntax L3 §5.4.1 (consume a list of
// rules). CDO/CDC are skipped only at the top level.
func (p *parser) consumeRules(topLevel bool, media *MediaQueryList) {
	for {
		p.skipWhitespace()
		switch t := p.peek(); t.Type {
		case EOFToken:
			return
		case RightBraceToken:
			if !topLevel {
				p.next()
				return
			}
			// Stray '}' at top level: drop it and continue.
			p.next()
		case CDOToken, CDCToken:
			p.next()
			if !topLevel {
				p.consumeQualifiedRule(media)
			}
		case AtKeywordToken:
			p.consumeAtRule(media)
		default:
			p.consumeQualifiedRule(media)
		}
	}
}

// consumeAtRule handles @media, @import and @charset; all other
// at-rules are consumed and discarded.
// CSS Syntax L3 §5.4.2 (consume an at-rule).
func (p *parser) consumeAtRule(media *MediaQueryList) {
	name := p.next().Value

	var prelude []ComponentValue
	for {
		switch p.peek().Type {
		case SemicolonToken:
			p.next()
			p.finishAtRule(name, prelude, false, media)
			return
		case EOFToken:
			p.finishAtRule(name, prelude, false, media)
			return
		case LeftBraceToken:
			switch strings.ToLower(name) {
			case "media":
				p.next()
				mq := ParseMediaQueryList(componentText(trimWhitespaceValues(prelude)))
				p.consumeRules(false, mq)
			default:
				log.Debugf("css: skipping @%s rule", name)
				p.consumeComponentValue()
			}
			return
		default:
			prelude = append(prelude, p.consumeComponentValue())
		}
	}
}

// finishAtRule handles block-less at-rules.
func (p *parser) finishAtRule(name string, prelude []ComponentValue, hadBlock bool, media *MediaQueryList) {
	if p.sheet == nil {
		return
	}
	switch strings.ToLower(name) {
	case "import":
		for _, cv := range trimWhitespaceValues(prelude) {
			switch cv.Token.Type {
			case URLToken, StringToken:
				p.sheet.Imports = append(p.sheet.Imports, resolveAgainst(p.baseURL, cv.Token.Value))
				return
			case FunctionToken:
				if equalFold(cv.Token.Value, "url") {
					for _, arg := range cv.Block {
						if arg.Token.Type == StringToken || arg.Token.Type == URLToken {
							p.sheet.Imports = append(p.sheet.Imports, resolveAgainst(p.baseURL, arg.Token.Value))
							return
						}
					}
				}
			}
		}
	case "charset":
		// Only UTF-8 input is supported; the directive is ignored.
	default:
		log.Debugf("css: ignoring @%s", name)
	}
	_ = media
}

// consumeQualifiedRule accumulates the prelude until '{', then parses
// the block as declarations. A malformed prelude consumes up to the
// next balanced block and drops the rule.
// CSS Syntax L3 §5.4.3.
func (p *parser) consumeQualifiedRule(media *MediaQueryList) {
	var prelude []ComponentValue
	for {
		switch p.peek().Type {
		case EOFToken:
			// Rule without a block: dropped.
			return
		case LeftBraceToken:
			p.next()
			decls := p.consumeDeclarations()
			if p.sheet == nil {
				return
			}
			selText := componentText(trimWhitespaceValues(prelude))
			selectors := parseSelectorList(selText, media, &p.order)
			if len(selectors) == 0 {
				log.Debugf("css: no valid selectors in %q, rule dropped", selText)
				return
			}
			p.sheet.Rules = append(p.sheet.Rules, &Rule{
				Selectors:    selectors,
				Declarations: decls,
				Media:        media,
			})
			return
		default:
			prelude = append(prelude, p.consumeComponentValue())
		}
	}
}

// consumeDeclarations parses the inside of a declaration block up to
// the closing '}'.
// CSS Syntax L3 §5.4.4 (consume a list of declarations).
func (p *parser) consumeDeclarations() []*Declaration {
	var decls []*Declaration
	for {
		p.skipWhitespace()
		switch p.peek().Type {
		case EOFToken:
			return decls
		case RightBraceToken:
			p.next()
			return decls
		case SemicolonToken:
			p.next()
		case IdentToken:
			if d := p.consumeDeclaration(); d != nil {
				decls = append(decls, d)
			}
		default:
			// Invalid declaration start: discard through the next ';'
			// or the end of the block.
			log.Debugf("css: dropping malformed declaration at %q", p.peek().Repr())
			p.discardDeclaration()
		}
	}
}

// discardDeclaration consumes component values until ';' or '}'.
func (p *parser) discardDeclaration() {
	for {
		switch p.peek().Type {
		case SemicolonToken:
			p.next()
			return
		case RightBraceToken, EOFToken:
			return
		default:
			p.consumeComponentValue()
		}
	}
}

// consumeDeclaration parses `ident : value... [!important]`.
func (p *parser) consumeDeclaration() *Declaration {
	name := strings.ToLower(p.next().Value)
	p.skipWhitespace()
	if p.peek().Type != ColonToken {
		log.Debugf("css: expected ':' after %q, declaration dropped", name)
		p.discardDeclaration()
		return nil
	}
	p.next()
	p.skipWhitespace()

	var value []ComponentValue
	for {
		switch p.peek().Type {
		case SemicolonToken, RightBraceToken, EOFToken:
			value = trimWhitespaceValues(value)
			value, important := stripImportant(value)
			if len(value) == 0 {
				return nil
			}
			return &Declaration{Property: name, Value: p.resolveURLs(value), Important: important}
		default:
			value = append(value, p.consumeComponentValue())
		}
	}
}

// consumeComponentValue consumes a preserved token, a simple block, or
// a function.
// CSS Syntax L3 §5.4.7.
func (p *parser) consumeComponentValue() ComponentValue {
	t := p.next()
	switch t.Type {
	case LeftBraceToken:
		return ComponentValue{Token: t, Block: p.consumeBlock(RightBraceToken)}
	case LeftBracketToken:
		return ComponentValue{Token: t, Block: p.consumeBlock(RightBracketToken)}
	case LeftParenToken:
		return ComponentValue{Token: t, Block: p.consumeBlock(RightParenToken)}
	case FunctionToken:
		return ComponentValue{Token: t, Block: p.consumeBlock(RightParenToken)}
	}
	return ComponentValue{Token: t}
}

// consumeBlock consumes component values until the mirror token.
func (p *parser) consumeBlock(closing TokenType) []ComponentValue {
	var values []ComponentValue
	for {
		switch p.peek().Type {
		case closing:
			p.next()
			return values
		case EOFToken:
			return values
		default:
			values = append(values, p.consumeComponentValue())
		}
	}
}

// stripImportant detects and removes a trailing `! important`.
func stripImportant(values []ComponentValue) ([]ComponentValue, bool) {
	n := len(values)
	if n >= 2 &&
		values[n-1].Token.Type == IdentToken && equalFold(values[n-1].Token.Value, "important") &&
		values[n-2].Token.Type == DelimToken && values[n-2].Token.Value == "!" {
		return trimWhitespaceValues(values[:n-2]), true
	}
	return values, false
}

// trimWhitespaceValues removes leading and trailing whitespace tokens.
func trimWhitespaceValues(values []ComponentValue) []ComponentValue {
	start := 0
	end := len(values)
	for start < end && values[start].Token.Type == WhitespaceToken {
		start++
	}
	for end > start && values[end-1].Token.Type == WhitespaceToken {
		end--
	}
	return values[start:end]
}

// resolveURLs rewrites url tokens in place against the stylesheet base.
func (p *parser) resolveURLs(values []ComponentValue) []ComponentValue {
	if p.baseURL == "" {
		return values
	}
	for i := range values {
		cv := &values[i]
		switch {
		case cv.Token.Type == URLToken:
			cv.Token.Value = resolveAgainst(p.baseURL, cv.Token.Value)
		case cv.IsFunction() && equalFold(cv.Token.Value, "url"):
			for j := range cv.Block {
				if cv.Block[j].Token.Type == StringToken {
					cv.Block[j].Token.Value = resolveAgainst(p.baseURL, cv.Block[j].Token.Value)
				}
			}
		}
	}
	return values
}

// resolveAgainst joins a possibly relative URL to a base. Absolute
// URLs and data URLs pass through untouched.
func resolveAgainst(base, ref string) string {
	if base == "" || ref == "" {
		return ref
	}
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "/") {
		return ref
	}
	i := strings.LastIndex(base, "/")
	if i < 0 {
		return ref
	}
	return base[:i+1] + ref
}
