package slogobs

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"Debug uppercase", "DEBUG", slog.LevelDebug},
		{"Debug mixed case", "DeBuG", slog.LevelDebug},
		{"Info lowercase", "info", slog.LevelInfo},
		{"Warn lowercase", "warn", slog.LevelWarn},
		{"Warning uppercase", "WARNING", slog.LevelWarn},
		{"Error lowercase", "error", slog.LevelError},
		{"Unknown value", "UNKNOWN", slog.LevelInfo},
		{"Empty string", "", slog.LevelInfo},
		{"With whitespace", "  DEBUG  ", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ParseLogLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		generic  string
		expected slog.Level
	}{
		{name: "nothing set", expected: slog.LevelInfo},
		{name: "generic only", generic: "ERROR", expected: slog.LevelError},
		{name: "primary wins", primary: "DEBUG", generic: "ERROR", expected: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OUTPARSE_LOG_LEVEL", tt.primary)
			t.Setenv("LOG_LEVEL", tt.generic)
			if got := GetLogLevelFromEnv(); got != tt.expected {
				t.Errorf("GetLogLevelFromEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}
