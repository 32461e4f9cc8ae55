package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_HasComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	New("call").Info("ringing")

	output := buf.String()
	if !strings.Contains(output, "component=call") {
		t.Errorf("expected component=call in output, got: %s", output)
	}
	if !strings.Contains(output, "ringing") {
		t.Errorf("expected 'ringing' in output, got: %s", output)
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	New("store").Info("opened")

	output := buf.String()
	if !strings.Contains(output, `"component":"store"`) {
		t.Errorf("expected JSON component field, got: %s", output)
	}
}

func TestInit_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, "text", &buf)

	logger := New("gate")
	logger.Info("suppressed")
	logger.Warn("kept")

	output := buf.String()
	if strings.Contains(output, "suppressed") {
		t.Errorf("info should be gated at warn level, got: %s", output)
	}
	if !strings.Contains(output, "kept") {
		t.Errorf("warn should pass, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
