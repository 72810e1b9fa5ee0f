package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/leofalp/outparse/providers/observability"
)

// DefaultContentTag is the wrapper tag responses use around their payload.
const DefaultContentTag = "CONTENT"

// Unwrap returns the trimmed text between [tag] and the nearest following
// [/tag]. Matching is case-sensitive. A missing marker is an error wrapping
// ErrNotFound: callers only unwrap when the wrapper convention is known to be
// in effect. An empty tag wraps ErrInvalidInput.
func Unwrap(text, tag string) (string, error) {
	if tag == "" {
		return "", newError(ComponentTagged, tag, ErrInvalidInput, "empty tag")
	}
	quoted := regexp.QuoteMeta(tag)
	pattern := regexp.MustCompile(`(?s)\[` + quoted + `\](.*?)\[/` + quoted + `\]`)
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return "", newError(ComponentTagged, tag, ErrNotFound, "could not find content between [%s] and [/%s]", tag, tag)
	}
	return strings.TrimSpace(match[1]), nil
}

// Unwrap is the package-level Unwrap with the failure logged at error level.
func (p *Parser) Unwrap(ctx context.Context, text, tag string) (string, error) {
	content, err := Unwrap(text, tag)
	if err != nil {
		p.observer(ctx).Error(ctx, "Tagged content missing",
			p.failureAttrs(ctx, err, text, observability.String(observability.AttrTag, tag))...,
		)
		return "", err
	}
	return content, nil
}
