package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxStringLength is the length TruncateString falls back to.
const DefaultMaxStringLength = 500

// JSONToString renders object as JSON, two-space indented when indent is
// true. Marshalling failures are rendered as a JSON error object so the
// result is always printable.
func JSONToString(object any, indent bool) string {
	var (
		encoded []byte
		err     error
	)
	if indent {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "failed to marshal to JSON: "+err.Error())
	}
	return string(encoded)
}

// NonEmptyLines splits text on newlines and returns the trimmed lines that
// are not blank, in order.
func NonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// TruncateString shortens s to maxLen bytes plus a suffix recording the
// original length. A non-positive maxLen means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}
