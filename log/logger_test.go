package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below the level leaked: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("messages at or above the level missing: %q", out)
	}
}

func TestLevelStrings(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d: got %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestFormattedOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel)

	l.Warnf("skipped %d rules", 3)
	if !strings.Contains(buf.String(), "skipped 3 rules") {
		t.Errorf("formatted output: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Errorf("level tag missing: %q", buf.String())
	}
}

func TestFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel)

	l.WithFields(InfoLevel, "loaded", Fields{"rules": 7, "sheet": "main.css"})
	out := buf.String()
	if !strings.Contains(out, "rules=7") || !strings.Contains(out, "sheet=main.css") {
		t.Errorf("fields missing: %q", out)
	}
}

func TestStandardLoggerRedirect(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	old := GetLevel()
	SetLevel(DebugLevel)
	defer SetLevel(old)

	Debugf("tracing %s", "layout")
	if !strings.Contains(buf.String(), "tracing layout") {
		t.Errorf("standard logger output: %q", buf.String())
	}
}
