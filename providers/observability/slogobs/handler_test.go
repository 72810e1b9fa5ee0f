package slogobs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestHandler_Compact(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{
		Format: FormatCompact,
		Level:  slog.LevelDebug,
		Output: &buf,
	}))
	logger.Warn("Fence not found", "extract.component", "fence", "count", 2)

	output := buf.String()
	for _, want := range []string{"WARN", "Fence not found", "→", `"extract.component":"fence"`, `"count":2`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

func TestHandler_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{
		Format: FormatPretty,
		Level:  slog.LevelDebug,
		Output: &buf,
	}))
	logger.Info("Test message", "b", "second", "a", "first")

	output := buf.String()
	if !strings.Contains(output, "INFO") || !strings.Contains(output, "Test message") {
		t.Errorf("Expected header line in output, got: %s", output)
	}
	first := strings.Index(output, "a: first")
	second := strings.Index(output, "b: second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("Expected sorted attribute lines, got: %s", output)
	}
	if !strings.Contains(output, "└─ b: second") {
		t.Errorf("Expected last attribute to use closing branch, got: %s", output)
	}
}

func TestHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{
		Format: FormatJSON,
		Level:  slog.LevelDebug,
		Output: &buf,
	}))
	logger.Error("Unwrap failed", "extract.tag", "CONTENT")

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Output is not valid JSON: %v (%s)", err, buf.String())
	}
	if data["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", data["level"])
	}
	if data["msg"] != "Unwrap failed" {
		t.Errorf("msg = %v, want 'Unwrap failed'", data["msg"])
	}
	if data["extract.tag"] != "CONTENT" {
		t.Errorf("extract.tag = %v, want CONTENT", data["extract.tag"])
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{
		Format: FormatCompact,
		Level:  slog.LevelWarn,
		Output: &buf,
	}))
	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("Expected records below WARN to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "visible warn") {
		t.Errorf("Expected WARN record in output, got: %s", output)
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	base := NewHandler(&HandlerOptions{Format: FormatJSON, Level: slog.LevelDebug, Output: &buf})
	logger := slog.New(base.WithAttrs([]slog.Attr{slog.String("parse_id", "abc")}).WithGroup("extract"))
	logger.Info("grouped", "field", "Task list")

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if data["extract.parse_id"] != "abc" {
		t.Errorf("Expected stored attr with group prefix, got: %v", data)
	}
	if data["extract.field"] != "Task list" {
		t.Errorf("Expected record attr with group prefix, got: %v", data)
	}
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler(nil)
	if h.format != FormatCompact {
		t.Errorf("default format = %v, want %v", h.format, FormatCompact)
	}
	if h.output == nil {
		t.Error("default output should not be nil")
	}
}
