package css

import (
	"strings"

	"github.com/flintweb/flint/log"
)

// Value is one stored property value: a tagged union over string,
// color, keyword and length, carrying the important flag from its
// declaration. Str always keeps the raw text.
type Value struct {
	Kind      ValueKind
	Str       string
	Color     Color
	Keyword   int
	Length    Length
	Inherit   bool
	Important bool
}

// Store maps longhand properties to values. Shorthands are expanded
// at insertion so the cascade only ever sees longhands.
// CSS 2.1 §6.1 Specified, computed, and actual values.
type Store struct {
	values map[PropertyID]Value
}

// NewStore creates an empty style store.
func NewStore() *Store {
	return &Store{values: make(map[PropertyID]Value)}
}

// Get returns the stored value for a longhand property.
func (s *Store) Get(id PropertyID) (Value, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Len returns the number of stored longhands.
func (s *Store) Len() int { return len(s.values) }

// Properties returns the stored longhand IDs (unordered).
func (s *Store) Properties() []PropertyID {
	ids := make([]PropertyID, 0, len(s.values))
	for id := range s.values {
		ids = append(ids, id)
	}
	return ids
}

// Combine merges other into s. On collision the incoming value wins
// unless the existing value is important and the incoming one is not.
// CSS 2.1 §6.4.2 !important rules.
func (s *Store) Combine(other *Store) {
	for id, v := range other.values {
		existing, ok := s.values[id]
		if ok && existing.Important && !v.Important {
			continue
		}
		s.values[id] = v
	}
}

// Clone returns a copy of the store.
func (s *Store) Clone() *Store {
	c := NewStore()
	for id, v := range s.values {
		c.values[id] = v
	}
	return c
}

// ParseInline parses the contents of a style="..." attribute.
func ParseInline(text, baseURL string) *Store {
	p := &parser{tokens: Tokenize(text), baseURL: baseURL}
	store := NewStore()
	for _, d := range p.consumeDeclarations() {
		store.AddDeclaration(d, baseURL)
	}
	return store
}

// AddDeclaration inserts a parsed declaration, expanding shorthands.
func (s *Store) AddDeclaration(d *Declaration, baseURL string) {
	s.Add(d.Property, d.ValueText(), baseURL, d.Important)
}

// Add inserts a property by name and value text, expanding shorthands
// to longhand form. Unknown properties are dropped silently.
func (s *Store) Add(name, value, baseURL string, important bool) {
	id := PropertyFromString(name)
	if id == PropNone {
		log.Debugf("css: unknown property %q dropped", name)
		return
	}
	value = strings.TrimSpace(value)

	switch id {
	case PropMargin:
		s.addTRBL("margin-", value, baseURL, important)
	case PropPadding:
		s.addTRBL("padding-", value, baseURL, important)
	case PropBorder:
		s.addShortBorderAllSides(value, baseURL, important)
	case PropBorderTop, PropBorderRight, PropBorderBottom, PropBorderLeft:
		s.addShortBorderSide(shorthandName(id), value, baseURL, important)
	case PropBorderWidth:
		s.addTRBLNamed("border-%s-width", value, baseURL, important)
	case PropBorderStyle:
		s.addTRBLNamed("border-%s-style", value, baseURL, important)
	case PropBorderColor:
		s.addTRBLNamed("border-%s-color", value, baseURL, important)
	case PropBorderRadius:
		s.addShortBorderRadius(value, baseURL, important)
	case PropBorderTopLeftRadius:
		s.addCornerRadius("border-top-left-radius", value, baseURL, important)
	case PropBorderTopRightRadius:
		s.addCornerRadius("border-top-right-radius", value, baseURL, important)
	case PropBorderBottomLeftRadius:
		s.addCornerRadius("border-bottom-left-radius", value, baseURL, important)
	case PropBorderBottomRightRadius:
		s.addCornerRadius("border-bottom-right-radius", value, baseURL, important)
	case PropBorderSpacing:
		tokens := splitValueTokens(value)
		switch len(tokens) {
		case 1:
			s.addParsed(PropBorderSpacingX, tokens[0], important)
			s.addParsed(PropBorderSpacingY, tokens[0], important)
		case 2:
			s.addParsed(PropBorderSpacingX, tokens[0], important)
			s.addParsed(PropBorderSpacingY, tokens[1], important)
		}
	case PropBackground:
		s.addShortBackground(value, baseURL, important)
	case PropFont:
		s.addShortFont(value, important)
	case PropListStyle:
		s.addShortListStyle(value, baseURL, important)
	case PropBackgroundImage:
		s.addParsed(id, value, important)
		if baseURL != "" {
			s.addParsed(PropBackgroundImageBaseurl, baseURL, important)
		}
	case PropListStyleImage:
		s.addParsed(id, value, important)
		if baseURL != "" {
			s.addParsed(PropListStyleImageBaseurl, baseURL, important)
		}
	default:
		s.addParsed(id, value, important)
	}
}

func shorthandName(id PropertyID) string {
	switch id {
	case PropBorderTop:
		return "border-top"
	case PropBorderRight:
		return "border-right"
	case PropBorderBottom:
		return "border-bottom"
	case PropBorderLeft:
		return "border-left"
	}
	return ""
}

// addParsed stores a typed value for a longhand property.
func (s *Store) addParsed(id PropertyID, value string, important bool) {
	info, ok := propertyTable[id]
	if !ok {
		return
	}
	v := Value{Kind: info.Kind, Str: value, Important: important}
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "inherit" {
		v.Inherit = true
		s.values[id] = v
		return
	}
	switch info.Kind {
	case KindColor:
		if c, ok := ParseColor(lower); ok {
			v.Color = c
		} else if lower == "currentcolor" {
			// Resolved at computed-value time against PropColor.
		} else {
			log.Debugf("css: invalid color %q for %s dropped", value, info.Name)
			return
		}
	case KindKeyword:
		idx := KeywordIndex(lower, info.Keywords)
		if idx < 0 {
			log.Debugf("css: invalid keyword %q for %s dropped", value, info.Name)
			return
		}
		v.Keyword = idx
	case KindLength:
		v.Length = ParseLength(lower, info.Predefs, 0)
	}
	s.values[id] = v
}

// addTRBL expands 1–4 values to -top/-right/-bottom/-left longhands.
// CSS 2.1 §8.3 margin shorthand rule.
func (s *Store) addTRBL(prefix, value, baseURL string, important bool) {
	tokens := splitValueTokens(value)
	var top, right, bottom, left string
	switch len(tokens) {
	case 1:
		top, right, bottom, left = tokens[0], tokens[0], tokens[0], tokens[0]
	case 2:
		top, right, bottom, left = tokens[0], tokens[1], tokens[0], tokens[1]
	case 3:
		top, right, bottom, left = tokens[0], tokens[1], tokens[2], tokens[1]
	case 4:
		top, right, bottom, left = tokens[0], tokens[1], tokens[2], tokens[3]
	default:
		return
	}
	s.Add(prefix+"top", top, baseURL, important)
	s.Add(prefix+"right", right, baseURL, important)
	s.Add(prefix+"bottom", bottom, baseURL, important)
	s.Add(prefix+"left", left, baseURL, important)
}

// addTRBLNamed expands border-width/style/color fan-outs where the
// side name sits mid-property.
func (s *Store) addTRBLNamed(pattern, value, baseURL string, important bool) {
	tokens := splitValueTokens(value)
	var top, right, bottom, left string
	switch len(tokens) {
	case 1:
		top, right, bottom, left = tokens[0], tokens[0], tokens[0], tokens[0]
	case 2:
		top, right, bottom, left = tokens[0], tokens[1], tokens[0], tokens[1]
	case 3:
		top, right, bottom, left = tokens[0], tokens[1], tokens[2], tokens[1]
	case 4:
		top, right, bottom, left = tokens[0], tokens[1], tokens[2], tokens[3]
	default:
		return
	}
	replace := func(side, v string) {
		s.Add(strings.Replace(pattern, "%s", side, 1), v, baseURL, important)
	}
	replace("top", top)
	replace("right", right)
	replace("bottom", bottom)
	replace("left", left)
}

// addShortBorderAllSides classifies each token of a `border` shorthand
// as style, width or color and fans it out to all four sides.
func (s *Store) addShortBorderAllSides(value, baseURL string, important bool) {
	for _, tok := range splitValueTokens(value) {
		switch {
		case ValueInList(tok, borderStyleKeywords):
			for _, side := range borderSides {
				s.Add("border-"+side+"-style", tok, baseURL, important)
			}
		case looksLikeWidth(tok):
			for _, side := range borderSides {
				s.Add("border-"+side+"-width", tok, baseURL, important)
			}
		default:
			for _, side := range borderSides {
				s.Add("border-"+side+"-color", tok, baseURL, important)
			}
		}
	}
}

var borderSides = []string{"top", "right", "bottom", "left"}

// addShortBorderSide handles `border-<side>: width | style | color`.
func (s *Store) addShortBorderSide(prefix, value, baseURL string, important bool) {
	for _, tok := range splitValueTokens(value) {
		switch {
		case ValueInList(tok, borderStyleKeywords):
			s.Add(prefix+"-style", tok, baseURL, important)
		case IsColor(tok):
			s.Add(prefix+"-color", tok, baseURL, important)
		default:
			s.Add(prefix+"-width", tok, baseURL, important)
		}
	}
}

func looksLikeWidth(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return (c >= '0' && c <= '9') || c == '.' || ValueInList(tok, LengthPredefsBorder)
}

// addShortBorderRadius expands `border-radius: X... [/ Y...]` to the
// eight per-corner longhands.
func (s *Store) addShortBorderRadius(value, baseURL string, important bool) {
	xPart := value
	yPart := value
	if i := strings.IndexByte(value, '/'); i >= 0 {
		xPart = strings.TrimSpace(value[:i])
		yPart = strings.TrimSpace(value[i+1:])
	}
	xs := expandFourCorners(splitValueTokens(xPart))
	ys := expandFourCorners(splitValueTokens(yPart))
	if xs == nil || ys == nil {
		return
	}
	corners := []string{"top-left", "top-right", "bottom-right", "bottom-left"}
	for i, corner := range corners {
		s.addParsed(radiusProp(corner, "x"), xs[i], important)
		s.addParsed(radiusProp(corner, "y"), ys[i], important)
	}
	_ = baseURL
}

// expandFourCorners applies the TL/TR/BR/BL 1–4 value rule.
func expandFourCorners(tokens []string) []string {
	switch len(tokens) {
	case 1:
		return []string{tokens[0], tokens[0], tokens[0], tokens[0]}
	case 2:
		return []string{tokens[0], tokens[1], tokens[0], tokens[1]}
	case 3:
		return []string{tokens[0], tokens[1], tokens[2], tokens[1]}
	case 4:
		return tokens
	}
	return nil
}

func radiusProp(corner, axis string) PropertyID {
	return propertyByName["border-"+corner+"-radius-"+axis]
}

// addCornerRadius handles `border-<corner>-radius: X [Y]`.
func (s *Store) addCornerRadius(name, value, baseURL string, important bool) {
	tokens := splitValueTokens(value)
	if len(tokens) == 0 {
		return
	}
	x, y := tokens[0], tokens[0]
	if len(tokens) >= 2 {
		y = tokens[1]
	}
	s.addParsed(propertyByName[name+"-x"], x, important)
	s.addParsed(propertyByName[name+"-y"], y, important)
	_ = baseURL
}

// addShortBackground expands the `background` shorthand: every
// longhand except background-size is reset, then each token is
// classified.
func (s *Store) addShortBackground(value, baseURL string, important bool) {
	s.addParsed(PropBackgroundColor, "transparent", important)
	s.addParsed(PropBackgroundPosition, Property(PropBackgroundPosition).Default, important)
	s.addParsed(PropBackgroundImage, "", important)
	s.addParsed(PropBackgroundImageBaseurl, "", important)
	s.addParsed(PropBackgroundRepeat, "repeat", important)
	s.addParsed(PropBackgroundOrigin, "padding-box", important)
	s.addParsed(PropBackgroundClip, "border-box", important)
	s.addParsed(PropBackgroundAttachment, "scroll", important)

	if strings.TrimSpace(value) == "none" {
		return
	}

	originFound := false
	for _, tok := range splitValueTokens(value) {
		lower := strings.ToLower(tok)
		switch {
		case strings.HasPrefix(lower, "url"):
			s.addParsed(PropBackgroundImage, tok, important)
			if baseURL != "" {
				s.addParsed(PropBackgroundImageBaseurl, baseURL, important)
			}
		case ValueInList(lower, "repeat;repeat-x;repeat-y;no-repeat"):
			s.addParsed(PropBackgroundRepeat, lower, important)
		case ValueInList(lower, "scroll;fixed"):
			s.addParsed(PropBackgroundAttachment, lower, important)
		case ValueInList(lower, "border-box;padding-box;content-box"):
			if !originFound {
				s.addParsed(PropBackgroundOrigin, lower, important)
				originFound = true
			} else {
				s.addParsed(PropBackgroundClip, lower, important)
			}
		case ValueInList(lower, "left;right;top;bottom;center") || startsNumeric(lower):
			if existing, ok := s.values[PropBackgroundPosition]; ok && existing.Str != Property(PropBackgroundPosition).Default {
				s.addParsed(PropBackgroundPosition, existing.Str+" "+tok, important)
			} else {
				s.addParsed(PropBackgroundPosition, tok, important)
			}
		case IsColor(lower):
			s.addParsed(PropBackgroundColor, lower, important)
		}
	}
}

func startsNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

// addShortFont expands `font: style variant weight size[/line-height]
// family`. Everything before the size resets to normal first.
func (s *Store) addShortFont(value string, important bool) {
	s.addParsed(PropFontStyle, "normal", important)
	s.addParsed(PropFontVariant, "normal", important)
	s.addParsed(PropFontWeight, "normal", important)
	s.addParsed(PropFontSize, "medium", important)
	s.addParsed(PropLineHeight, "normal", important)

	isFamily := false
	var family []string
	for _, tok := range splitValueTokens(value) {
		lower := strings.ToLower(tok)
		if isFamily {
			family = append(family, tok)
			continue
		}
		switch {
		case lower == "normal":
			// Resets already applied.
		case ValueInList(lower, "italic;oblique"):
			s.addParsed(PropFontStyle, lower, important)
		case ValueInList(lower, "small-caps"):
			s.addParsed(PropFontVariant, lower, important)
		case ValueInList(lower, "bold;bolder;lighter;100;200;300;400;500;600;700;800;900"):
			s.addParsed(PropFontWeight, lower, important)
		case startsNumeric(lower) || ValueInList(lower, LengthPredefsFontSize):
			size := lower
			if i := strings.IndexByte(lower, '/'); i >= 0 {
				size = lower[:i]
				s.addParsed(PropLineHeight, lower[i+1:], important)
			}
			s.addParsed(PropFontSize, size, important)
		default:
			isFamily = true
			family = append(family, tok)
		}
	}
	if len(family) > 0 {
		s.addParsed(PropFontFamily, strings.Join(family, " "), important)
	}
}

// addShortListStyle expands `list-style: type | position | image`.
func (s *Store) addShortListStyle(value, baseURL string, important bool) {
	s.addParsed(PropListStyleType, "disc", important)
	s.addParsed(PropListStylePosition, "outside", important)
	s.addParsed(PropListStyleImage, "", important)

	for _, tok := range splitValueTokens(value) {
		lower := strings.ToLower(tok)
		switch {
		case ValueInList(lower, Property(PropListStyleType).Keywords):
			s.addParsed(PropListStyleType, lower, important)
		case ValueInList(lower, "inside;outside"):
			s.addParsed(PropListStylePosition, lower, important)
		case strings.HasPrefix(lower, "url"):
			s.addParsed(PropListStyleImage, tok, important)
			if baseURL != "" {
				s.addParsed(PropListStyleImageBaseurl, baseURL, important)
			}
		}
	}
}

// splitValueTokens splits a value string on spaces, keeping
// parenthesized and quoted runs intact.
func splitValueTokens(value string) []string {
	var tokens []string
	var current strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(value); i++ {
		c := value[i]
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
		case depth == 0 && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
