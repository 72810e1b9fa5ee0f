package extract

import (
	"context"
	"regexp"

	"github.com/leofalp/outparse/providers/observability"
)

// anyFence matches the first fenced block regardless of its language tag.
var anyFence = regexp.MustCompile("(?s)```.*?\\s+(.*?)```")

func fencePattern(lang string) *regexp.Regexp {
	if lang == "" {
		return anyFence
	}
	return regexp.MustCompile("(?s)```" + regexp.QuoteMeta(lang) + `\s+(.*?)` + "```")
}

// FindFence returns the content of the first triple-backtick block in text.
// When lang is set only a fence opened with that tag qualifies. The content
// starts after the whitespace following the opening tag and stops right
// before the closing fence, so a trailing newline is preserved. That
// whitespace run includes the indentation of the first code line:
// "```python\n    f()\n```" yields "f()\n".
func FindFence(text, lang string) (string, bool) {
	match := fencePattern(lang).FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ExtractCode returns the fenced code in text, or "" when there is no
// matching fence. The miss is logged, not returned: callers treat it as "no
// code supplied".
func (p *Parser) ExtractCode(ctx context.Context, text, lang string) string {
	code, ok := FindFence(text, lang)
	if !ok {
		p.reportFailure(ctx, newError(ComponentFence, lang, ErrNotFound, "no code block found"), text,
			observability.String(observability.AttrLanguage, lang),
			observability.String(observability.AttrFallback, "empty"),
		)
		return ""
	}
	return code
}

// ExtractSectionCode returns the fenced code of a named section. When section
// is empty the whole text is searched. If no fence matches, the (narrowed)
// text itself is returned: short snippets often come back unfenced.
func (p *Parser) ExtractSectionCode(ctx context.Context, section, text, lang string) string {
	if section != "" {
		text = FindSection(text, section)
	}
	code, ok := FindFence(text, lang)
	if !ok {
		field := section
		if field == "" {
			field = lang
		}
		p.reportFailure(ctx, newError(ComponentFence, field, ErrNotFound, "no code block found, using text as code"), text,
			observability.String(observability.AttrLanguage, lang),
			observability.String(observability.AttrFallback, "passthrough"),
		)
		return text
	}
	return code
}

// ExtractCode is Parser.ExtractCode on a parser with default options.
func ExtractCode(text, lang string) string {
	return New().ExtractCode(context.Background(), text, lang)
}

// ExtractSectionCode is Parser.ExtractSectionCode on a parser with default options.
func ExtractSectionCode(section, text, lang string) string {
	return New().ExtractSectionCode(context.Background(), section, text, lang)
}
