package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fluxcal/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	NewComponentLogger(logger, "flat").Info("stage finished",
		Int("total", 3),
		String("path", "/data/work dir/0001_intf.fits"))

	line := buf.String()
	if !strings.Contains(line, " INFO flat: stage finished") {
		t.Errorf("line missing level and component: %q", line)
	}
	if !strings.Contains(line, "total=3") {
		t.Errorf("line missing plain attr: %q", line)
	}
	if !strings.Contains(line, `path="/data/work dir/0001_intf.fits"`) {
		t.Errorf("value with spaces not quoted: %q", line)
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info record passed a warn gate: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn record dropped: %q", out)
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Error("build failed", String("product", "0005_fld.fits"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("parse json line: %v", err)
	}
	if record["msg"] != "build failed" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "error" {
		t.Errorf("level = %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Error("ts field missing")
	}
	if record["product"] != "0005_fld.fits" {
		t.Errorf("product = %v", record["product"])
	}
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fluxcal.log")
	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithFrame(services.WithStage(services.WithRunID(t.Context(), "run-1"), "flat"), 42)

	fields := ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(fields))
	}
	keys := map[string]bool{}
	for _, field := range fields {
		keys[field.Key] = true
	}
	for _, want := range []string{FieldFrame, FieldStage, FieldRunID} {
		if !keys[want] {
			t.Errorf("field %s missing", want)
		}
	}

	if got := ContextFields(t.Context()); len(got) != 0 {
		t.Errorf("empty context yielded %d fields", len(got))
	}
}
