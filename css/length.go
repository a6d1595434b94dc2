package css

import (
	"strconv"
	"strings"
)

// Unit identifies a CSS length unit.
// CSS 2.1 §4.3.2 Lengths; CSS Values L3 viewport units.
type Unit int

const (
	// UnitNone is a bare number.
	UnitNone Unit = iota
	// UnitPercent is '%'.
	UnitPercent
	// UnitPx is CSS pixels.
	UnitPx
	// UnitEm is the element font size.
	UnitEm
	// UnitRem is the root element font size.
	UnitRem
	// UnitEx is the x-height.
	UnitEx
	// UnitPt is points (72pt = 1in).
	UnitPt
	// UnitPc is picas (1pc = 12pt).
	UnitPc
	// UnitIn is inches.
	UnitIn
	// UnitCm is centimeters.
	UnitCm
	// UnitMm is millimeters.
	UnitMm
	// UnitVw is 1% of the viewport width.
	UnitVw
	// UnitVh is 1% of the viewport height.
	UnitVh
	// UnitVmin is 1% of the smaller viewport dimension.
	UnitVmin
	// UnitVmax is 1% of the larger viewport dimension.
	UnitVmax
)

var unitNames = map[string]Unit{
	"":     UnitNone,
	"%":    UnitPercent,
	"px":   UnitPx,
	"em":   UnitEm,
	"rem":  UnitRem,
	"ex":   UnitEx,
	"pt":   UnitPt,
	"pc":   UnitPc,
	"in":   UnitIn,
	"cm":   UnitCm,
	"mm":   UnitMm,
	"vw":   UnitVw,
	"vh":   UnitVh,
	"vmin": UnitVmin,
	"vmax": UnitVmax,
}

// Length is a CSS length: either a numeric value with a unit, or one
// of a property-specific list of predefined keywords (auto, inherit,
// normal, thin, ...). Predef indexes the keyword list the length was
// parsed against.
type Length struct {
	Value  float64
	Unit   Unit
	Predef int
	IsPred bool
}

// NewLength returns a numeric length.
func NewLength(value float64, unit Unit) Length {
	return Length{Value: value, Unit: unit}
}

// PredefLength returns a predefined-keyword length.
func PredefLength(predef int) Length {
	return Length{Predef: predef, IsPred: true}
}

// IsPredefined reports whether the length is a keyword.
func (l Length) IsPredefined() bool { return l.IsPred }

// ParseLength parses a length string against a semicolon-separated
// list of predefined keywords. When the string names a keyword in
// predefs, the result is predefined with that index; otherwise the
// numeric value and unit are parsed. Unparsable input yields the
// defaultPredef keyword.
func ParseLength(value, predefs string, defaultPredef int) Length {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return PredefLength(defaultPredef)
	}
	if predefs != "" {
		for i, kw := range strings.Split(predefs, ";") {
			if kw == value {
				return PredefLength(i)
			}
		}
	}

	// Split the numeric part from the unit suffix.
	split := len(value)
	for i, c := range value {
		if (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-' {
			continue
		}
		split = i
		break
	}
	num, err := strconv.ParseFloat(value[:split], 64)
	if err != nil {
		return PredefLength(defaultPredef)
	}
	unit, ok := unitNames[value[split:]]
	if !ok {
		unit = UnitNone
	}
	return NewLength(num, unit)
}

// String renders the length in canonical form.
func (l Length) String() string {
	if l.IsPred {
		return "predef(" + strconv.Itoa(l.Predef) + ")"
	}
	s := strconv.FormatFloat(l.Value, 'f', -1, 64)
	for name, u := range unitNames {
		if u == l.Unit && name != "" {
			return s + name
		}
	}
	return s
}
