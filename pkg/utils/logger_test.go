package utils

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"error":   ErrorLevel,
		"WARN":    WarningLevel,
		"warning": WarningLevel,
		"info":    InfoLevel,
		"debug":   DebugLevel,
		"Trace":   TraceLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, "text", &buf)

	logger.Info("kept", "tick", 1)
	logger.Debug("dropped")
	logger.Circuit("dropped too")
	logger.Propagation("dropped as well")

	out := buf.String()
	if !strings.Contains(out, "msg=kept") || !strings.Contains(out, "tick=1") {
		t.Errorf("Expected info record with attrs, got %q", out)
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("Expected debug/trace records to be filtered, got %q", out)
	}
}

func TestLoggerTraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(TraceLevel, "json", &buf)

	logger.Propagation("edge delivered", "edge", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("Expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["level"] != "TRACE" {
		t.Errorf("Expected TRACE level label, got %v", rec["level"])
	}
	if rec["msg"] != "PROPAGATION: edge delivered" {
		t.Errorf("Expected category prefix, got %v", rec["msg"])
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, "text", &buf).With("session", "abc")

	logger.Interaction("drag started")
	if !strings.Contains(buf.String(), "session=abc") {
		t.Errorf("Expected inherited attribute, got %q", buf.String())
	}
	if !logger.Enabled(DebugLevel) || logger.Enabled(TraceLevel) {
		t.Errorf("Enabled disagrees with level %s", logger.Level)
	}

	var nilLogger *Logger
	if nilLogger.Enabled(ErrorLevel) {
		t.Errorf("Expected nil logger to be disabled")
	}
}
