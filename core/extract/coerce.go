package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/outparse/internal/utils"
	"github.com/leofalp/outparse/providers/observability"
)

// Kind is the declared shape of a field.
type Kind int

const (
	// KindString keeps the (fence-stripped) text as is.
	KindString Kind = iota
	// KindStringList expects a list of strings.
	KindStringList
	// KindPairList expects a list of two-element lists.
	KindPairList
	// KindListOfList expects a list of lists.
	KindListOfList
	// KindRaw keeps the section body untouched, fences included.
	KindRaw
)

var kindNames = map[Kind]string{
	KindString:     "str",
	KindStringList: "List[str]",
	KindPairList:   "List[Tuple[str, str]]",
	KindListOfList: "List[List[str]]",
	KindRaw:        "raw",
}

// kindAliases maps normalized spellings (lower case, no spaces) to kinds.
var kindAliases = map[string]Kind{
	"str":                  KindString,
	"string":               KindString,
	"list[str]":            KindStringList,
	"string_list":          KindStringList,
	"list[tuple[str,str]]": KindPairList,
	"pair_list":            KindPairList,
	"list[list[str]]":      KindListOfList,
	"list_of_list":         KindListOfList,
	"raw":                  KindRaw,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the names printed by Kind.String as well as the
// snake_case aliases string, string_list, pair_list and list_of_list.
// Matching ignores case and spaces.
func ParseKind(s string) (Kind, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if kind, ok := kindAliases[normalized]; ok {
		return kind, nil
	}
	return 0, newError(ComponentCoerce, s, ErrInvalidInput, "unknown field kind")
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, newError(ComponentCoerce, k.String(), ErrInvalidInput, "unknown field kind")
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so schema files can
// spell kinds as text.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// FieldSpec declares one field a caller expects in a response.
type FieldSpec struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Kind Kind   `json:"kind" yaml:"kind" toml:"kind"`
}

type coerceStrategy func(p *Parser, ctx context.Context, body string, spec FieldSpec) Result[any]

var coerceStrategies = map[Kind]coerceStrategy{
	KindString:     coerceString,
	KindStringList: coerceList,
	KindPairList:   coerceList,
	KindListOfList: coerceList,
	KindRaw:        coerceRaw,
}

// Coerce turns a section body into the value declared by spec:
//
//   - KindString: the body with an incidental code fence stripped; quotes are
//     only stripped when the parser was built WithStripQuotes(true).
//   - KindStringList, KindPairList, KindListOfList: the list literal found in
//     the fence-stripped body, inner elements trusted as parsed. Without a
//     usable literal the non-empty trimmed lines of the body are returned.
//   - KindRaw: the body untouched.
//
// Values are string for KindString and KindRaw, []any for the list kinds.
// An unknown kind fails with ErrInvalidInput.
func (p *Parser) Coerce(ctx context.Context, body string, spec FieldSpec) Result[any] {
	strategy, ok := coerceStrategies[spec.Kind]
	if !ok {
		return Fail[any](newError(ComponentCoerce, spec.Name, ErrInvalidInput, "unknown field kind %s", spec.Kind))
	}
	return strategy(p, ctx, body, spec)
}

// Coerce is Parser.Coerce on a parser with default options.
func Coerce(body string, spec FieldSpec) Result[any] {
	return New().Coerce(context.Background(), body, spec)
}

func coerceString(p *Parser, ctx context.Context, body string, spec FieldSpec) Result[any] {
	text := p.unfence(ctx, body, spec)
	if p.stripQuotes {
		text = StripQuotes(text)
	}
	return OK[any](text)
}

func coerceList(p *Parser, ctx context.Context, body string, spec FieldSpec) Result[any] {
	text := p.unfence(ctx, body, spec)
	result := ExtractStructure(text, StructureList)
	if result.Ok() {
		return result
	}

	lines := []any{}
	for _, line := range utils.NonEmptyLines(text) {
		lines = append(lines, line)
	}
	p.reportFailure(ctx, withField(result.Err(), spec.Name), text,
		observability.String(observability.AttrKind, spec.Kind.String()),
		observability.String(observability.AttrFallback, "lines"),
	)
	return OK[any](lines)
}

func coerceRaw(_ *Parser, _ context.Context, body string, _ FieldSpec) Result[any] {
	return OK[any](body)
}

// unfence strips a code fence of any language from body, keeping body
// verbatim when there is none.
func (p *Parser) unfence(ctx context.Context, body string, spec FieldSpec) string {
	code, ok := FindFence(body, "")
	if !ok {
		p.observer(ctx).Debug(ctx, "No code fence in field, using body verbatim",
			observability.String(observability.AttrField, spec.Name),
			observability.String(observability.AttrKind, spec.Kind.String()),
		)
		return body
	}
	return code
}

// StripQuotes keeps the text after the last '=' and removes surrounding
// whitespace and quotes, turning `name = "value"` into value. It mangles
// values that legitimately contain '=' or quotes, so parsers only apply it to
// string fields when built WithStripQuotes(true).
func StripQuotes(text string) string {
	if i := strings.LastIndex(text, "="); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "'")
	return strings.Trim(text, `"`)
}

// withField returns a copy of an *ExtractError naming field.
func withField(err error, field string) error {
	e, ok := err.(*ExtractError)
	if !ok || field == "" {
		return err
	}
	clone := *e
	clone.Field = field
	return &clone
}
