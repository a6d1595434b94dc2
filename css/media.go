package css

import (
	"strconv"
	"strings"

	"github.com/flintweb/flint/log"
)

// MediaType is the media type a query applies to.
type MediaType int

const (
	// MediaAll matches every medium.
	MediaAll MediaType = iota
	// MediaScreen matches screen media.
	MediaScreen
	// MediaPrint matches paged media.
	MediaPrint
	// MediaUnknown never matches.
	MediaUnknown
)

func parseMediaType(s string) MediaType {
	switch strings.ToLower(s) {
	case "all", "":
		return MediaAll
	case "screen":
		return MediaScreen
	case "print":
		return MediaPrint
	default:
		return MediaUnknown
	}
}

// MediaFeatures is the host-reported environment a media query list is
// evaluated against.
type MediaFeatures struct {
	Type         MediaType
	Width        int // viewport width, px
	Height       int // viewport height, px
	DeviceWidth  int
	DeviceHeight int
	Color        int // bits per color component; 0 for monochrome
	Monochrome   int
	Resolution   int // dpi
}

// mediaExpression is one (feature: value) term.
type mediaExpression struct {
	feature string
	value   int
	value2  int // denominator for ratio features
	checkAs int // -1 max, 0 exact, 1 min
}

func (e mediaExpression) check(f *MediaFeatures) bool {
	var actual int
	switch e.feature {
	case "width":
		actual = f.Width
	case "height":
		actual = f.Height
	case "device-width":
		actual = f.DeviceWidth
	case "device-height":
		actual = f.DeviceHeight
	case "color":
		actual = f.Color
	case "monochrome":
		actual = f.Monochrome
	case "resolution":
		actual = f.Resolution
	case "aspect-ratio":
		if e.value2 == 0 || f.Height == 0 {
			return false
		}
		return f.Width*e.value2 == f.Height*e.value
	default:
		// A feature the host does not report evaluates false.
		return false
	}
	switch e.checkAs {
	case -1:
		return actual <= e.value
	case 1:
		return actual >= e.value
	default:
		return actual == e.value
	}
}

// mediaQuery is one comma-separated branch of a media query list.
type mediaQuery struct {
	mediaType   MediaType
	not         bool
	expressions []mediaExpression
}

func (q *mediaQuery) check(f *MediaFeatures) bool {
	result := q.mediaType == MediaAll || q.mediaType == f.Type
	if result {
		for _, e := range q.expressions {
			if !e.check(f) {
				result = false
				break
			}
		}
	}
	if q.not {
		return !result
	}
	return result
}

// MediaQueryList is a parsed media query list plus its last evaluation
// result, so a host media change can report which lists flipped.
type MediaQueryList struct {
	queries []mediaQuery
	used    bool
}

// ParseMediaQueryList parses e.g. "screen and (min-width: 600px), print".
// An unparsable query degrades to never-matching, not an error.
func ParseMediaQueryList(text string) *MediaQueryList {
	text = strings.TrimSpace(text)
	mql := &MediaQueryList{}
	if text == "" {
		return nil
	}
	for _, part := range splitTopLevel(text, ',') {
		q, ok := parseMediaQuery(strings.TrimSpace(part))
		if !ok {
			log.Debugf("css: unparsable media query %q", part)
			q = mediaQuery{mediaType: MediaUnknown}
		}
		mql.queries = append(mql.queries, q)
	}
	return mql
}

func parseMediaQuery(text string) (mediaQuery, bool) {
	q := mediaQuery{mediaType: MediaAll}
	if text == "" {
		return q, true
	}

	terms := splitMediaTerms(text)
	for i, term := range terms {
		term = strings.TrimSpace(term)
		lower := strings.ToLower(term)
		switch {
		case lower == "not" && i == 0:
			q.not = true
		case lower == "only" && i <= 1:
			// "only" exists to hide queries from legacy parsers.
		case strings.HasPrefix(term, "("):
			if !strings.HasSuffix(term, ")") {
				return q, false
			}
			expr, ok := parseMediaExpression(term[1 : len(term)-1])
			if !ok {
				return q, false
			}
			q.expressions = append(q.expressions, expr)
		default:
			mt := parseMediaType(lower)
			if mt == MediaUnknown {
				return q, false
			}
			q.mediaType = mt
		}
	}
	return q, true
}

// splitMediaTerms splits "not screen and (x) and (y)" into terms,
// dropping the "and" connectors.
func splitMediaTerms(text string) []string {
	var terms []string
	depth := 0
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s == "" {
			return
		}
		if !strings.EqualFold(s, "and") {
			terms = append(terms, s)
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '(':
			depth++
			current.WriteByte(c)
		case c == ')':
			depth--
			current.WriteByte(c)
			if depth == 0 {
				flush()
			}
		case depth == 0 && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return terms
}

func parseMediaExpression(text string) (mediaExpression, bool) {
	parts := strings.SplitN(text, ":", 2)
	feature := strings.ToLower(strings.TrimSpace(parts[0]))
	expr := mediaExpression{}

	switch {
	case strings.HasPrefix(feature, "min-"):
		expr.checkAs = 1
		feature = feature[4:]
	case strings.HasPrefix(feature, "max-"):
		expr.checkAs = -1
		feature = feature[4:]
	}
	expr.feature = feature

	if len(parts) == 1 {
		// Bare feature, e.g. (color): true when non-zero.
		expr.checkAs = 1
		expr.value = 1
		return expr, true
	}

	value := strings.TrimSpace(parts[1])
	if feature == "aspect-ratio" {
		ratio := strings.SplitN(value, "/", 2)
		if len(ratio) != 2 {
			return expr, false
		}
		num, err1 := strconv.Atoi(strings.TrimSpace(ratio[0]))
		den, err2 := strconv.Atoi(strings.TrimSpace(ratio[1]))
		if err1 != nil || err2 != nil {
			return expr, false
		}
		expr.value, expr.value2 = num, den
		return expr, true
	}

	l := ParseLength(value, "", 0)
	if l.IsPredefined() {
		return expr, false
	}
	expr.value = int(l.Value)
	return expr, true
}

// Check evaluates the list and records the result. An empty list (nil
// receiver) is always satisfied.
func (m *MediaQueryList) Check(f *MediaFeatures) bool {
	if m == nil {
		return true
	}
	for i := range m.queries {
		if m.queries[i].check(f) {
			m.used = true
			return true
		}
	}
	m.used = false
	return false
}

// Used reports the result of the last Check.
func (m *MediaQueryList) Used() bool {
	if m == nil {
		return true
	}
	return m.used
}
