package extract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leofalp/outparse/providers/observability"
)

// StructureKind selects the bracket pair ExtractStructure looks for.
type StructureKind int

const (
	// StructureList is a bracketed list literal: [ ... ]
	StructureList StructureKind = iota
	// StructureMapping is a brace-delimited mapping literal: { ... }
	StructureMapping
)

func (k StructureKind) String() string {
	switch k {
	case StructureList:
		return "list"
	case StructureMapping:
		return "mapping"
	default:
		return fmt.Sprintf("StructureKind(%d)", int(k))
	}
}

func (k StructureKind) delimiters() (open, close byte, ok bool) {
	switch k {
	case StructureList:
		return '[', ']', true
	case StructureMapping:
		return '{', '}', true
	default:
		return 0, 0, false
	}
}

// ExtractStructure finds the span from the first opening bracket of kind to
// the last closing one and parses it with ParseLiteral. Prose around the
// literal is tolerated; two sibling literals in the same text are not (the
// span then covers both and usually fails to parse).
//
// On success the value is a []any for StructureList and a map[string]any for
// StructureMapping. Failures wrap ErrNotFound, ErrParse, ErrTypeMismatch or,
// for an unknown kind, ErrInvalidInput.
func ExtractStructure(text string, kind StructureKind) Result[any] {
	open, close, ok := kind.delimiters()
	if !ok {
		return Fail[any](newError(ComponentLiteral, kind.String(), ErrInvalidInput, "unknown structure kind"))
	}

	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end == -1 || end < start {
		return Fail[any](newError(ComponentLiteral, kind.String(), ErrNotFound, "no %c...%c span in text", open, close))
	}

	value, err := ParseLiteral(text[start : end+1])
	if err != nil {
		e := newError(ComponentLiteral, kind.String(), ErrParse, "")
		e.Err = err
		return Fail[any](e)
	}

	switch value.(type) {
	case []any:
		if kind == StructureList {
			return OK(value)
		}
	case map[string]any:
		if kind == StructureMapping {
			return OK(value)
		}
	}
	return Fail[any](newError(ComponentLiteral, kind.String(), ErrTypeMismatch, "extracted structure is a %s", describe(value)))
}

// ExtractStructure is the package-level ExtractStructure with failures
// reported to the parser's observer.
func (p *Parser) ExtractStructure(ctx context.Context, text string, kind StructureKind) Result[any] {
	result := ExtractStructure(text, kind)
	if !result.Ok() {
		p.reportFailure(ctx, result.Err(), text, observability.String(observability.AttrKind, kind.String()))
	}
	return result
}

func describe(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	case string:
		return "string"
	case nil:
		return "None"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// maxLiteralDepth bounds bracket nesting in ParseLiteral.
const maxLiteralDepth = 256

var errLiteralSyntax = errors.New("invalid literal")

// ParseLiteral evaluates a literal expression without executing anything.
// Accepted syntax: single, double and triple quoted strings (with escapes,
// r/u/b prefixes and implicit concatenation of adjacent strings), integers
// (decimal, 0x, 0o, 0b, underscores), floats, a single leading sign on
// numbers, True, False, None, lists, tuples, dicts and sets, trailing commas
// and # comments. Names, calls, operators and attribute access are rejected.
//
// Lists, tuples and sets become []any; dicts become map[string]any with keys
// rendered as text (numbers in decimal, True/False/None by name). Integers
// are int64, or *big.Int when they do not fit in 64 bits; floats are float64.
//
// Tuples are not hashable here: a tuple used as a dict key or as a set
// element is rejected, since it is indistinguishable from a list once
// parsed.
func ParseLiteral(src string) (any, error) {
	p := &literalParser{src: src}
	p.skipSpace()
	value, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after literal", p.peekRune())
	}
	return value, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", errLiteralSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *literalParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *literalParser) skipSpace() {
	for !p.eof() {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			p.pos++
		case c == '\\' && strings.HasPrefix(p.src[p.pos:], "\\\n"):
			p.pos += 2
		case c == '#':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *literalParser) parseValue(depth int) (any, error) {
	if depth > maxLiteralDepth {
		return nil, p.errorf("nesting deeper than %d", maxLiteralDepth)
	}
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	switch c := p.peek(); {
	case c == '[':
		p.pos++
		return p.parseSequence(']', depth)
	case c == '(':
		return p.parseParen(depth)
	case c == '{':
		return p.parseBraces(depth)
	case c == '\'' || c == '"':
		return p.parseStrings("")
	case c == '+' || c == '-':
		return p.parseSigned()
	case c >= '0' && c <= '9', c == '.':
		return p.parseNumber(false)
	case c == '_' || unicode.IsLetter(p.peekRune()):
		return p.parseName()
	default:
		return nil, p.errorf("unexpected %q", p.peekRune())
	}
}

// parseSequence reads comma separated values up to close. The opening
// bracket has already been consumed.
func (p *literalParser) parseSequence(close byte, depth int) ([]any, error) {
	items := []any{}
	for {
		p.skipSpace()
		if p.peek() == close {
			p.pos++
			return items, nil
		}
		item, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case close:
			p.pos++
			return items, nil
		default:
			if p.eof() {
				return nil, p.errorf("missing %q", close)
			}
			return nil, p.errorf("expected ',' or %q, found %q", close, p.peekRune())
		}
	}
}

// parseParen handles both tuples and parenthesized values: (x) is x, while
// (), (x,) and (x, y) are tuples.
func (p *literalParser) parseParen(depth int) (any, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return []any{}, nil
	}
	first, err := p.parseValue(depth + 1)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	switch p.peek() {
	case ')':
		p.pos++
		return first, nil
	case ',':
		p.pos++
		rest, err := p.parseSequence(')', depth)
		if err != nil {
			return nil, err
		}
		return append([]any{first}, rest...), nil
	default:
		return nil, p.errorf("expected ',' or ')', found %q", p.peekRune())
	}
}

// parseBraces reads a dict, or a set when the first element is not followed
// by a colon. {} is an empty dict.
func (p *literalParser) parseBraces(depth int) (any, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return map[string]any{}, nil
	}
	first, err := p.parseValue(depth + 1)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ':' {
		return p.parseSet(first, depth)
	}

	out := make(map[string]any)
	key := first
	for {
		// positioned on ':'
		p.pos++
		p.skipSpace()
		value, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		name, err := p.keyString(key)
		if err != nil {
			return nil, err
		}
		out[name] = value

		p.skipSpace()
		switch p.peek() {
		case '}':
			p.pos++
			return out, nil
		case ',':
			p.pos++
		default:
			return nil, p.errorf("expected ',' or '}', found %q", p.peekRune())
		}

		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		if key, err = p.parseValue(depth + 1); err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':' after mapping key")
		}
	}
}

func (p *literalParser) parseSet(first any, depth int) (any, error) {
	var rest []any
	switch p.peek() {
	case ',':
		p.pos++
		var err error
		if rest, err = p.parseSequence('}', depth); err != nil {
			return nil, err
		}
	case '}':
		p.pos++
	default:
		return nil, p.errorf("expected ',', ':' or '}', found %q", p.peekRune())
	}

	items := []any{}
	seen := make(map[any]bool)
	for _, item := range append([]any{first}, rest...) {
		switch item.(type) {
		case []any, map[string]any:
			return nil, p.errorf("unhashable %s in set", describe(item))
		}
		if seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, item)
	}
	return items, nil
}

func (p *literalParser) keyString(key any) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case int64:
		return strconv.FormatInt(k, 10), nil
	case *big.Int:
		return k.String(), nil
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64), nil
	case bool:
		if k {
			return "True", nil
		}
		return "False", nil
	case nil:
		return "None", nil
	default:
		return "", p.errorf("unsupported mapping key of type %s", describe(key))
	}
}

func (p *literalParser) parseSigned() (any, error) {
	negative := p.peek() == '-'
	p.pos++
	p.skipSpace()
	if c := p.peek(); !(c >= '0' && c <= '9') && c != '.' {
		return nil, p.errorf("sign must be followed by a number")
	}
	return p.parseNumber(negative)
}

func (p *literalParser) parseNumber(negative bool) (any, error) {
	start := p.pos
	hex := strings.HasPrefix(p.src[p.pos:], "0x") || strings.HasPrefix(p.src[p.pos:], "0X")
	for !p.eof() {
		c := p.src[p.pos]
		isExpSign := (c == '+' || c == '-') && !hex && p.pos > start &&
			(p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E')
		if c == '.' || c == '_' || isExpSign || c < utf8.RuneSelf && (unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))) {
			p.pos++
			continue
		}
		break
	}
	token := p.src[start:p.pos]

	if n, ok := parseInt(token); ok {
		if !negative {
			return n, nil
		}
		if b, isBig := n.(*big.Int); isBig {
			b.Neg(b)
			if b.IsInt64() {
				return b.Int64(), nil
			}
			return b, nil
		}
		return -n.(int64), nil
	}
	if !hex && strings.ContainsAny(token, ".eE") && !strings.ContainsAny(token, "xXoObBjJ") {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(token, "_", ""), 64); err == nil && validUnderscores(token) {
			if negative {
				f = -f
			}
			return f, nil
		}
	}
	p.pos = start
	return nil, p.errorf("invalid number %q", token)
}

// parseInt returns an int64, or a *big.Int when the value does not fit.
func parseInt(token string) (any, bool) {
	base := 10
	digits := token
	if len(token) > 1 && token[0] == '0' {
		switch token[1] {
		case 'x', 'X':
			base, digits = 16, token[2:]
		case 'o', 'O':
			base, digits = 8, token[2:]
		case 'b', 'B':
			base, digits = 2, token[2:]
		default:
			// 00 is valid, 017 is not
			if strings.Trim(token, "0_") != "" {
				return nil, false
			}
		}
	}
	// a single underscore may follow the base prefix: 0x_ff
	if base != 10 && strings.HasPrefix(digits, "_") {
		digits = digits[1:]
	}
	if digits == "" {
		return nil, false
	}
	if base == 10 && !validUnderscores(digits) ||
		base != 10 && (strings.HasSuffix(digits, "_") || strings.Contains(digits, "__")) {
		return nil, false
	}
	digits = strings.ReplaceAll(digits, "_", "")

	n, err := strconv.ParseInt(digits, base, 64)
	if err == nil {
		return n, true
	}
	if !errors.Is(err, strconv.ErrRange) {
		return nil, false
	}
	b, ok := new(big.Int).SetString(digits, base)
	return b, ok
}

// validUnderscores reports whether every underscore in token sits between two
// digits.
func validUnderscores(token string) bool {
	for i := 0; i < len(token); i++ {
		if token[i] != '_' {
			continue
		}
		if i == 0 || i == len(token)-1 || !isDigit(token[i-1]) || !isDigit(token[i+1]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parseName handles True, False, None and string prefixes; any other name is
// rejected.
func (p *literalParser) parseName() (any, error) {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos += size
	}
	name := p.src[start:p.pos]

	if c := p.peek(); c == '\'' || c == '"' {
		switch strings.ToLower(name) {
		case "r", "u", "b", "rb", "br":
			return p.parseStrings(strings.ToLower(name))
		}
		p.pos = start
		return nil, p.errorf("string prefix %q is not allowed in a literal", name)
	}

	switch name {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	}
	p.pos = start
	return nil, p.errorf("name %q is not a literal", name)
}

// parseStrings reads one string literal and every adjacent one, returning
// their concatenation.
func (p *literalParser) parseStrings(prefix string) (string, error) {
	var sb strings.Builder
	for {
		if err := p.parseString(&sb, strings.Contains(prefix, "r")); err != nil {
			return "", err
		}

		save := p.pos
		p.skipSpace()
		prefix = ""
		if c := p.peek(); c == '\'' || c == '"' {
			continue
		}
		if next, ok := p.stringPrefix(); ok {
			prefix = strings.ToLower(next)
			p.pos += len(next)
			continue
		}
		p.pos = save
		return sb.String(), nil
	}
}

func (p *literalParser) stringPrefix() (string, bool) {
	for _, candidate := range []string{"rb", "br", "r", "u", "b"} {
		if len(p.src)-p.pos <= len(candidate) {
			continue
		}
		head := strings.ToLower(p.src[p.pos : p.pos+len(candidate)])
		if head != candidate {
			continue
		}
		if c := p.src[p.pos+len(candidate)]; c == '\'' || c == '"' {
			return p.src[p.pos : p.pos+len(candidate)], true
		}
	}
	return "", false
}

func (p *literalParser) parseString(sb *strings.Builder, raw bool) error {
	quote := p.src[p.pos]
	delim := string(quote)
	if strings.HasPrefix(p.src[p.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	start := p.pos
	p.pos += len(delim)

	for {
		if p.eof() {
			p.pos = start
			return p.errorf("unterminated string")
		}
		if strings.HasPrefix(p.src[p.pos:], delim) {
			p.pos += len(delim)
			return nil
		}

		c := p.src[p.pos]
		switch {
		case c == '\n' && len(delim) == 1:
			p.pos = start
			return p.errorf("unterminated string")
		case c == '\\':
			if err := p.parseEscape(sb, raw); err != nil {
				return err
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

func (p *literalParser) parseEscape(sb *strings.Builder, raw bool) error {
	if p.pos+1 >= len(p.src) {
		p.pos++
		return p.errorf("unterminated string")
	}
	next := p.src[p.pos+1]
	if raw {
		// the escaped character never terminates the string, but both bytes stay
		sb.WriteByte('\\')
		sb.WriteByte(next)
		p.pos += 2
		return nil
	}

	p.pos += 2
	switch next {
	case '\n':
	case '\\', '\'', '"':
		sb.WriteByte(next)
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case 'x':
		return p.parseCodePoint(sb, 2)
	case 'u':
		return p.parseCodePoint(sb, 4)
	case 'U':
		return p.parseCodePoint(sb, 8)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		end := p.pos - 1
		for end < len(p.src) && end < p.pos+2 && p.src[end] >= '0' && p.src[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(p.src[p.pos-1:end], 8, 32)
		sb.WriteRune(rune(n))
		p.pos = end
	default:
		sb.WriteByte('\\')
		sb.WriteByte(next)
	}
	return nil
}

func (p *literalParser) parseCodePoint(sb *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.errorf("truncated escape sequence")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil || n > unicode.MaxRune {
		return p.errorf("invalid escape sequence %q", p.src[p.pos:p.pos+digits])
	}
	sb.WriteRune(rune(n))
	p.pos += digits
	return nil
}
