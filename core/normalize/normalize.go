// Package normalize turns HTML-formatted model responses into the markdown
// layout the extractors expect.
//
// Some models answer with rendered HTML (<h2>Task list</h2><pre><code>...)
// instead of markdown. Converting that back to "## Task list" and fenced
// code keeps section splitting and fence extraction working.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var blockTag = regexp.MustCompile(`(?i)<(h[1-6]|p|ul|ol|li|pre|code|div|html|body)\b[^>]*>`)

// LooksLikeHTML reports whether text contains at least one block-level HTML
// element. Inline tags alone (<b>, <a>) are not enough.
func LooksLikeHTML(text string) bool {
	return blockTag.MatchString(text)
}

// HTMLToMarkdown converts an HTML document or fragment to markdown.
func HTMLToMarkdown(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// Markdown returns text converted to markdown when it looks like HTML, and
// text unchanged otherwise. The boolean reports whether a conversion
// happened.
func Markdown(text string) (string, bool, error) {
	if !LooksLikeHTML(text) {
		return text, false, nil
	}
	markdown, err := HTMLToMarkdown(text)
	if err != nil {
		return text, false, err
	}
	return markdown, true, nil
}
