// Package review interprets code-review responses: the LGTM/LBTM verdict,
// the rewritten code that follows an LBTM, and the "Send To" recipient line.
package review

import (
	"context"
	"regexp"
	"strings"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/providers/observability"
)

// ResultSection is the heading the verdict is read from.
const ResultSection = "Code Review Result"

// Verdict is the outcome of a code review.
type Verdict int

const (
	// VerdictUnknown means neither token was found.
	VerdictUnknown Verdict = iota
	// VerdictLGTM ("looks good to me") keeps the code as is.
	VerdictLGTM
	// VerdictLBTM ("looks bad to me") asks for a rewrite.
	VerdictLBTM
)

func (v Verdict) String() string {
	switch v {
	case VerdictLGTM:
		return "LGTM"
	case VerdictLBTM:
		return "LBTM"
	default:
		return "unknown"
	}
}

// VerdictOf reads a verdict token from text. LGTM wins when both appear.
func VerdictOf(text string) Verdict {
	switch {
	case strings.Contains(text, "LGTM"):
		return VerdictLGTM
	case strings.Contains(text, "LBTM"):
		return VerdictLBTM
	default:
		return VerdictUnknown
	}
}

// ParseVerdict reads the verdict from the section whose title contains
// ResultSection. A response without that section is VerdictUnknown.
func ParseVerdict(text string) Verdict {
	return VerdictOf(extract.FindSection(text, ResultSection))
}

var recipientPattern = regexp.MustCompile(`## Send To:\s*([A-Za-z]+)\s*|Send To:\s*([A-Za-z]+)\s*`)

// ParseRecipient returns the name following "Send To:". Only letters are
// part of the name.
func ParseRecipient(text string) (string, bool) {
	match := recipientPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	if match[1] != "" {
		return match[1], true
	}
	return match[2], true
}

// Reviewer applies the review helpers with logging.
type Reviewer struct {
	parser *extract.Parser
	obs    observability.Provider
}

// NewReviewer builds a Reviewer reporting to provider; nil means no-op.
func NewReviewer(provider observability.Provider, opts ...extract.Option) *Reviewer {
	if provider == nil {
		provider = observability.Nop{}
	}
	opts = append([]extract.Option{extract.WithObserver(provider)}, opts...)
	return &Reviewer{parser: extract.New(opts...), obs: provider}
}

// Verdict is ParseVerdict with a warning when no verdict is found.
func (r *Reviewer) Verdict(ctx context.Context, response string) Verdict {
	verdict := ParseVerdict(response)
	if verdict == VerdictUnknown {
		r.obs.Warn(ctx, "Review verdict not found",
			observability.String(observability.AttrComponent, "review"),
			observability.String(observability.AttrField, ResultSection),
			observability.Excerpt(response),
		)
	}
	return verdict
}

// Rewrite returns the code of a rewrite response: the first fence in lang,
// or the whole response when it is not fenced.
func (r *Reviewer) Rewrite(ctx context.Context, response, lang string) string {
	return r.parser.ExtractSectionCode(ctx, "", response, lang)
}

// Recipient is ParseRecipient with a warning when the line is missing.
func (r *Reviewer) Recipient(ctx context.Context, text string) string {
	name, ok := ParseRecipient(text)
	if !ok {
		r.obs.Warn(ctx, "Recipient not found",
			observability.String(observability.AttrComponent, "review"),
			observability.Excerpt(text),
		)
	}
	return name
}

// Review parses a full review response against the code review fields and
// derives the verdict from its LGTM field, falling back to the
// ResultSection heading.
func (r *Reviewer) Review(ctx context.Context, response string, fields []extract.FieldSpec) (*extract.Document, Verdict, error) {
	doc, err := r.parser.ParseDocument(ctx, response, fields)
	if err != nil {
		return nil, VerdictUnknown, err
	}
	if value, err := doc.String("LGTM"); err == nil {
		if verdict := VerdictOf(value); verdict != VerdictUnknown {
			return doc, verdict, nil
		}
	}
	return doc, r.Verdict(ctx, response), nil
}
