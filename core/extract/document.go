package extract

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/leofalp/outparse/core/normalize"
	"github.com/leofalp/outparse/core/parse"
	"github.com/leofalp/outparse/internal/utils"
	"github.com/leofalp/outparse/providers/observability"
)

// Payload formats a Document can be assembled from.
const (
	FormatSections = "sections"
	FormatJSON     = "json"
)

// Document is the outcome of one parse pass: a Result per field, in the
// order the fields were recovered. Declared fields missing from the response
// are present as failed Results.
type Document struct {
	// ID identifies the parse pass in log entries.
	ID string
	// Format is FormatSections or FormatJSON.
	Format string

	order  []string
	fields map[string]Result[any]
}

func newDocument(id, format string) *Document {
	return &Document{ID: id, Format: format, fields: make(map[string]Result[any])}
}

func (d *Document) set(name string, result Result[any]) {
	if _, seen := d.fields[name]; !seen {
		d.order = append(d.order, name)
	}
	d.fields[name] = result
}

// Fields returns the field names in document order.
func (d *Document) Fields() []string {
	return append([]string(nil), d.order...)
}

// Len returns the number of fields, failed ones included.
func (d *Document) Len() int {
	return len(d.order)
}

// Value returns the Result of a field. Unknown names fail with ErrNotFound.
func (d *Document) Value(name string) Result[any] {
	result, ok := d.fields[name]
	if !ok {
		return Fail[any](newError(ComponentDocument, name, ErrNotFound, "no such field"))
	}
	return result
}

// String returns a field holding text.
func (d *Document) String(name string) (string, error) {
	value, err := d.Value(name).Get()
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", newError(ComponentDocument, name, ErrTypeMismatch, "field holds %T, not a string", value)
	}
	return s, nil
}

// Strings returns a list field whose elements are all strings.
func (d *Document) Strings(name string) ([]string, error) {
	value, err := d.Value(name).Get()
	if err != nil {
		return nil, err
	}
	return stringList(name, value)
}

// Lists returns a list field whose elements are lists of strings, as
// produced for pair and list-of-list kinds.
func (d *Document) Lists(name string) ([][]string, error) {
	value, err := d.Value(name).Get()
	if err != nil {
		return nil, err
	}
	items, ok := value.([]any)
	if !ok {
		return nil, newError(ComponentDocument, name, ErrTypeMismatch, "field holds %T, not a list", value)
	}
	out := make([][]string, 0, len(items))
	for _, item := range items {
		inner, err := stringList(name, item)
		if err != nil {
			return nil, err
		}
		out = append(out, inner)
	}
	return out, nil
}

func stringList(name string, value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, newError(ComponentDocument, name, ErrTypeMismatch, "field holds %T, not a list", value)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, newError(ComponentDocument, name, ErrTypeMismatch, "element %d is %T, not a string", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// Values returns the successfully extracted fields.
func (d *Document) Values() map[string]any {
	out := make(map[string]any, len(d.fields))
	for name, result := range d.fields {
		if result.Ok() {
			out[name] = result.Value()
		}
	}
	return out
}

// Failures returns the reason of every failed field.
func (d *Document) Failures() map[string]error {
	out := make(map[string]error)
	for name, result := range d.fields {
		if !result.Ok() {
			out[name] = result.Err()
		}
	}
	return out
}

// MarshalJSON renders the document as {"id", "format", "fields", "failures"},
// failures as error strings.
func (d *Document) MarshalJSON() ([]byte, error) {
	failures := make(map[string]string)
	for name, err := range d.Failures() {
		failures[name] = err.Error()
	}
	return json.Marshal(struct {
		ID       string            `json:"id"`
		Format   string            `json:"format"`
		Fields   map[string]any    `json:"fields"`
		Failures map[string]string `json:"failures,omitempty"`
	}{
		ID:       d.ID,
		Format:   d.Format,
		Fields:   d.Values(),
		Failures: failures,
	})
}

// Decode converts the successful fields of doc into T, matching field names
// against T's json tags.
//
// Example:
//
//	type review struct {
//		Review []string `json:"Review"`
//		LGTM   string   `json:"LGTM"`
//	}
//	r, err := extract.Decode[review](doc)
func Decode[T any](doc *Document) (T, error) {
	return parse.DecodeValue[T](doc.Values())
}

// ParseDocument recovers the declared fields from one response.
//
// The response is normalized from HTML when the parser was built
// WithHTMLNormalization(true) and unwrapped when it carries the opening
// content tag. A payload that is a valid JSON object is decoded as JSON, and
// a malformed one is repaired when it holds no "##" heading; anything else is
// split into sections. Each field is coerced on its own, so a failing field
// never affects its siblings.
// Sections nobody declared are kept as strings, and declared fields the
// response lacks are recorded as ErrNotFound failures.
//
// The returned error is reserved for fatal conditions: invalid UTF-8, an
// unknown declared kind, or a content tag that is opened but never closed.
func (p *Parser) ParseDocument(ctx context.Context, doc string, specs []FieldSpec) (*Document, error) {
	timer := utils.NewTimer()
	id := uuid.NewString()
	ctx = withParseID(ctx, id)
	obs := p.observer(ctx)

	if !utf8.ValidString(doc) {
		err := newError(ComponentDocument, "", ErrInvalidInput, "response is not valid UTF-8")
		obs.Error(ctx, "Document rejected", p.failureAttrs(ctx, err, "")...)
		return nil, err
	}

	declared := make(map[string]FieldSpec, len(specs))
	for _, spec := range specs {
		if _, ok := coerceStrategies[spec.Kind]; !ok {
			err := newError(ComponentDocument, spec.Name, ErrInvalidInput, "unknown field kind %s", spec.Kind)
			obs.Error(ctx, "Document rejected", p.failureAttrs(ctx, err, "")...)
			return nil, err
		}
		declared[spec.Name] = spec
	}

	payload, err := p.preparePayload(ctx, doc)
	if err != nil {
		return nil, err
	}

	var document *Document
	if fields, ok := p.jsonPayload(ctx, payload); ok {
		document = newDocument(id, FormatJSON)
		p.fillFromJSON(ctx, document, fields, specs)
	} else {
		document = newDocument(id, FormatSections)
		for _, section := range SplitSectionList(payload) {
			spec, ok := declared[section.Title]
			if !ok {
				spec = FieldSpec{Name: section.Title, Kind: KindString}
			}
			document.set(section.Title, p.Coerce(ctx, section.Body, spec))
		}
	}

	for _, spec := range specs {
		if _, ok := document.fields[spec.Name]; ok {
			continue
		}
		missing := newError(ComponentDocument, spec.Name, ErrNotFound, "field missing from response")
		p.reportFailure(ctx, missing, payload, observability.String(observability.AttrKind, spec.Kind.String()))
		document.set(spec.Name, Fail[any](missing))
	}

	duration := timer.Stop()
	failures := len(document.Failures())
	obs.Histogram(observability.MetricParseDuration).Record(ctx, float64(duration.Microseconds())/1000,
		observability.String(observability.AttrPayloadFormat, document.Format),
	)
	obs.Counter(observability.MetricDocumentsParsed).Add(ctx, 1,
		observability.String(observability.AttrPayloadFormat, document.Format),
	)
	obs.Debug(ctx, "Document parsed",
		observability.String(observability.AttrParseID, id),
		observability.String(observability.AttrPayloadFormat, document.Format),
		observability.Int(observability.AttrSectionsCount, document.Len()),
		observability.Int(observability.AttrFailuresCount, failures),
		observability.Duration(observability.AttrDuration, duration),
	)
	return document, nil
}

// ParseDocument is Parser.ParseDocument on a parser with default options.
func ParseDocument(doc string, specs []FieldSpec) (*Document, error) {
	return New().ParseDocument(context.Background(), doc, specs)
}

// preparePayload applies HTML normalization and content-tag unwrapping.
func (p *Parser) preparePayload(ctx context.Context, doc string) (string, error) {
	payload := doc
	if p.normalizeHTML {
		markdown, converted, err := normalize.Markdown(payload)
		switch {
		case err != nil:
			p.observer(ctx).Warn(ctx, "HTML normalization failed, using response as is",
				observability.Error(err),
				observability.String(observability.AttrComponent, ComponentDocument),
			)
		case converted:
			p.observer(ctx).Debug(ctx, "Converted HTML response to markdown",
				observability.String(observability.AttrComponent, ComponentDocument),
			)
			payload = markdown
		}
	}

	if p.contentTag != "" && strings.Contains(payload, "["+p.contentTag+"]") {
		return p.Unwrap(ctx, payload, p.contentTag)
	}
	return payload, nil
}

// jsonPayload decodes payload when it is a JSON object rather than a
// heading-delimited document. Valid JSON is taken as is, even when its
// values contain headings. Malformed JSON is only repaired when the payload
// has no "##", since it may be a sections document that opens with a brace.
func (p *Parser) jsonPayload(ctx context.Context, payload string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
		return fields, true
	}
	if strings.Contains(trimmed, HeadingDelimiter) {
		return nil, false
	}
	fields, err := parse.ParseStringAs[map[string]any](trimmed)
	if err != nil {
		p.observer(ctx).Debug(ctx, "Payload is not a JSON object, splitting sections",
			observability.Error(err),
			observability.Excerpt(trimmed),
		)
		return nil, false
	}
	return fields, true
}

// fillFromJSON adds the keys of a decoded JSON payload: declared fields in
// declaration order, then the remaining keys sorted.
func (p *Parser) fillFromJSON(ctx context.Context, document *Document, fields map[string]any, specs []FieldSpec) {
	for _, spec := range specs {
		if value, ok := fields[spec.Name]; ok {
			document.set(spec.Name, p.coerceJSONValue(ctx, value, spec))
		}
	}

	var extra []string
	for name := range fields {
		if _, ok := document.fields[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		document.set(name, p.coerceJSONValue(ctx, fields[name], FieldSpec{Name: name, Kind: KindString}))
	}
}

func (p *Parser) coerceJSONValue(ctx context.Context, value any, spec FieldSpec) Result[any] {
	if s, ok := value.(string); ok {
		return p.Coerce(ctx, s, spec)
	}

	switch spec.Kind {
	case KindRaw:
		return OK(value)
	case KindString:
		if value == nil {
			return OK[any]("")
		}
		return OK[any](utils.JSONToString(value, false))
	default:
		if list, ok := value.([]any); ok {
			return OK[any](list)
		}
		err := newError(ComponentDocument, spec.Name, ErrTypeMismatch, "JSON value is %T, not a list", value)
		p.reportFailure(ctx, err, utils.JSONToString(value, false),
			observability.String(observability.AttrKind, spec.Kind.String()),
		)
		return Fail[any](err)
	}
}
