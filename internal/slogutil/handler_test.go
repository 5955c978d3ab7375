package slogutil

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("Scan completed", "files", 42, "root", "/repo")

	output := buf.String()
	for _, want := range []string{"[info]", "Scan completed", " | ", "files=42", "root=/repo"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_Levels(t *testing.T) {
	tests := []struct {
		logFunc  func(*slog.Logger)
		expected string
	}{
		{func(l *slog.Logger) { l.Debug("debug") }, "[debug]"},
		{func(l *slog.Logger) { l.Info("info") }, "[info]"},
		{func(l *slog.Logger) { l.Warn("warn") }, "[warn]"},
		{func(l *slog.Logger) { l.Error("error") }, "[error]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, slog.LevelDebug)
			tt.logFunc(logger)
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestLineHandler_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got: %s", buf.String())
	}
}

func TestLineHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("scan", "abc").WithGroup("extract")
	logger.Info("file skipped", "path", "a.ts")

	output := buf.String()
	if !strings.Contains(output, "scan=abc") {
		t.Errorf("expected pre-set attr, got: %s", output)
	}
	if !strings.Contains(output, "extract.path=a.ts") {
		t.Errorf("expected grouped key, got: %s", output)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, FormatJSON).Info("hello", "k", "v")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"silent":  Silent,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	if LevelFromVerbosity(0, false) != slog.LevelWarn {
		t.Error("verbosity 0 should be warn")
	}
	if LevelFromVerbosity(1, false) != slog.LevelInfo {
		t.Error("verbosity 1 should be info")
	}
	if LevelFromVerbosity(3, false) != slog.LevelDebug {
		t.Error("verbosity 3 should be debug")
	}
	if LevelFromVerbosity(3, true) != Silent {
		t.Error("quiet should win")
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	logger.Error("nothing")
	if OrDiscard(nil) == nil {
		t.Error("OrDiscard(nil) returned nil")
	}
}

func TestLineHandler_QuotesValues(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Warn("Skipping file", "path", "my dir/a.py", "error", errors.New("bad token"), "empty", "")

	output := buf.String()
	for _, want := range []string{`path="my dir/a.py"`, `error="bad token"`, `empty=""`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_GroupValuesAndPresetAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("scan", "s1")
	logger.Info("Classified dependencies", slog.Group("counts", "internal", 3, "external", 1), "ratio", 0.75)
	logger.Info("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "| scan=s1 counts.internal=3 counts.external=1 ratio=0.75") {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.HasSuffix(lines[1], "[info] second | scan=s1") {
		t.Errorf("preset attrs leaked or were lost: %s", lines[1])
	}
}

func TestLineHandler_ZeroTime(t *testing.T) {
	var buf bytes.Buffer
	h := NewLineHandler(&buf, nil)
	r := slog.NewRecord(time.Time{}, slog.LevelWarn, "no clock", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[warn] no clock\n" {
		t.Errorf("output = %q", got)
	}
}
