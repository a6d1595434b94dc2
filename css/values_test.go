package css

import "testing"

func TestParseLength(t *testing.T) {
	tests := []struct {
		input  string
		value  float64
		unit   Unit
		predef bool
	}{
		{"10px", 10, UnitPx, false},
		{"50%", 50, UnitPercent, false},
		{"1.5em", 1.5, UnitEm, false},
		{"2rem", 2, UnitRem, false},
		{"12pt", 12, UnitPt, false},
		{"1in", 1, UnitIn, false},
		{"2.54cm", 2.54, UnitCm, false},
		{"10mm", 10, UnitMm, false},
		{"50vw", 50, UnitVw, false},
		{"50vh", 50, UnitVh, false},
		{"10vmin", 10, UnitVmin, false},
		{"10vmax", 10, UnitVmax, false},
		{"7", 7, UnitNone, false},
		{"auto", 0, UnitNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := ParseLength(tt.input, "auto", 0)
			if l.IsPredefined() != tt.predef {
				t.Fatalf("predef: got %v, want %v", l.IsPredefined(), tt.predef)
			}
			if !tt.predef && (l.Value != tt.value || l.Unit != tt.unit) {
				t.Errorf("got %v/%v, want %v/%v", l.Value, l.Unit, tt.value, tt.unit)
			}
		})
	}
}

func TestParseLengthPredefIndex(t *testing.T) {
	l := ParseLength("thick", LengthPredefsBorder, BorderWidthMedium)
	if !l.IsPredefined() || l.Predef != BorderWidthThick {
		t.Errorf("got %+v", l)
	}
	l = ParseLength("nonsense", LengthPredefsBorder, BorderWidthMedium)
	if !l.IsPredefined() || l.Predef != BorderWidthMedium {
		t.Errorf("fallback: got %+v", l)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  Color
		ok    bool
	}{
		{"red", Color{255, 0, 0, 255}, true},
		{"RED", Color{255, 0, 0, 255}, true},
		{"transparent", Color{0, 0, 0, 0}, true},
		{"#FF0000", Color{255, 0, 0, 255}, true},
		{"#f00", Color{255, 0, 0, 255}, true},
		{"#ABC", Color{170, 187, 204, 255}, true},
		{"rgb(1, 2, 3)", Color{1, 2, 3, 255}, true},
		{"rgb(100%, 0%, 0%)", Color{255, 0, 0, 255}, true},
		{"rgba(10, 20, 30, 0.5)", Color{10, 20, 30, 128}, true},
		{"#GGHHII", Color{}, false},
		{"notacolor", Color{}, false},
		{"", Color{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseColor(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	if hex := (Color{255, 0, 0, 255}).Hex(); hex != "#FF0000" {
		t.Errorf("got %q", hex)
	}
}

func TestPropertyTable(t *testing.T) {
	// Every longhand resolves by name, carries a default and the
	// inherited flag from the table.
	if PropertyFromString("color") != PropColor {
		t.Error("color should resolve")
	}
	if PropertyFromString("COLOR") != PropColor {
		t.Error("lookup should be case-insensitive")
	}
	if PropertyFromString("bogus") != PropNone {
		t.Error("unknown property should resolve to none")
	}
	if !PropertyInherited(PropColor) {
		t.Error("color is inherited")
	}
	if PropertyInherited(PropMarginTop) {
		t.Error("margin-top is not inherited")
	}
	if Property(PropDisplay).Default != "inline" {
		t.Errorf("display default: %q", Property(PropDisplay).Default)
	}
	if Property(PropWidth).Default != "auto" {
		t.Errorf("width default: %q", Property(PropWidth).Default)
	}
}
