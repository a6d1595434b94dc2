package style

import (
	"strings"

	"github.com/flintweb/flint/css"
)

// Background is the computed background of an element.
// CSS 2.1 §14.2 The background.
type Background struct {
	Color      css.Color
	Image      string // resolved URL, "" for none
	BaseURL    string
	Repeat     int // css.BackgroundRepeat*
	Attachment int // css.BackgroundAttachment*
	Clip       int // css.BackgroundBox*
	Origin     int // css.BackgroundBox*
	// Position as parsed lengths; percentages resolve against the
	// painting area at draw time.
	PositionX css.Length
	PositionY css.Length
}

// Background computes the element's background from the longhand
// properties the shorthand expansion produced.
func (s *StyledNode) Background() *Background {
	bg := &Background{
		Color:      s.bgColor(),
		Repeat:     s.Keyword(css.PropBackgroundRepeat),
		Attachment: s.Keyword(css.PropBackgroundAttachment),
		Clip:       s.Keyword(css.PropBackgroundClip),
		Origin:     s.Keyword(css.PropBackgroundOrigin),
		BaseURL:    s.Value(css.PropBackgroundImageBaseurl).Str,
	}

	bg.Image = ExtractURL(s.Value(css.PropBackgroundImage).Str)

	posX, posY := parseBackgroundPosition(s.Value(css.PropBackgroundPosition).Str)
	bg.PositionX, bg.PositionY = posX, posY
	return bg
}

// bgColor reads background-color without inheriting: the property is
// not inherited and its default is transparent.
func (s *StyledNode) bgColor() css.Color {
	v, ok := s.Store.Get(css.PropBackgroundColor)
	if !ok || v.Inherit {
		return css.Transparent
	}
	if strings.EqualFold(strings.TrimSpace(v.Str), "currentcolor") {
		return s.ColorOf(css.PropColor)
	}
	return v.Color
}

// ExtractURL unwraps url(...) notation, trimming quotes; a bare
// string passes through.
func ExtractURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" {
		return ""
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "url(") && strings.HasSuffix(value, ")") {
		value = value[4 : len(value)-1]
	}
	return strings.Trim(strings.TrimSpace(value), "\"'")
}

// parseBackgroundPosition maps the 1–2 token position value to x/y
// lengths. Keywords map to 0%/50%/100%.
// CSS 2.1 §14.2.1 background-position.
func parseBackgroundPosition(value string) (css.Length, css.Length) {
	x := css.NewLength(0, css.UnitPercent)
	y := css.NewLength(0, css.UnitPercent)

	tokens := strings.Fields(strings.ToLower(value))
	if len(tokens) == 0 {
		return x, y
	}

	parse := func(tok string, vertical bool) (css.Length, bool) {
		switch tok {
		case "left":
			return css.NewLength(0, css.UnitPercent), !vertical
		case "right":
			return css.NewLength(100, css.UnitPercent), !vertical
		case "top":
			return css.NewLength(0, css.UnitPercent), vertical
		case "bottom":
			return css.NewLength(100, css.UnitPercent), vertical
		case "center":
			return css.NewLength(50, css.UnitPercent), true
		}
		l := css.ParseLength(tok, "", 0)
		if l.IsPredefined() {
			return css.Length{}, false
		}
		return l, true
	}

	if l, ok := parse(tokens[0], false); ok {
		x = l
	}
	if len(tokens) >= 2 {
		if l, ok := parse(tokens[1], true); ok {
			y = l
		}
	} else if tokens[0] == "top" || tokens[0] == "bottom" {
		// A single vertical keyword names the y axis.
		if l, ok := parse(tokens[0], true); ok {
			y = l
			x = css.NewLength(50, css.UnitPercent)
		}
	} else {
		// A single horizontal value centers the other axis.
		y = css.NewLength(50, css.UnitPercent)
	}
	return x, y
}
