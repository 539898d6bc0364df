package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Writer: &buf, Color: ColorNever})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("moved", "from", "/a/b c.jpg", "count", 3)
	logger.With("component", "relocator").WithGroup("file").Warn("collision", "name", "x")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	for _, want := range []string{
		"INFO  moved",
		`from="/a/b c.jpg"`,
		"count=3",
		"WARN  collision",
		"component=relocator",
		"file.name=x",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "file.component") {
		t.Error("attributes bound before a group must not take its prefix")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("ColorNever output must not contain escape codes")
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("scan complete", "files", 4)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "scan complete" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["files"] != float64(4) {
		t.Errorf("files = %v", rec["files"])
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if useColor(&buf, ColorAuto) {
		t.Error("a buffer is never a terminal")
	}
	if !useColor(&buf, ColorAlways) {
		t.Error("ColorAlways must force color")
	}
}
