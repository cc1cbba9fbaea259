package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONWithRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, closer, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("title generated", "path", "/videos/a.mp4")
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %s", len(lines), data)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "title generated" || record["level"] != "info" {
		t.Errorf("record = %v", record)
	}
	if id, _ := record["run_id"].(string); len(id) != 36 {
		t.Errorf("run_id = %v", record["run_id"])
	}
	if _, ok := record["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestNewTextFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	logger, closer, err := New(Options{Level: "warn", Format: "text", OutputPaths: []string{logPath, logPath}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("skipped")
	logger.Warn("rename failed")
	_ = closer.Close()

	data, _ := os.ReadFile(logPath)
	if strings.Contains(string(data), "skipped") {
		t.Error("info record written at warn level")
	}
	if strings.Count(string(data), "rename failed") != 1 {
		t.Errorf("log = %q", data)
	}
}

func TestNewUnsupportedFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("New() expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
