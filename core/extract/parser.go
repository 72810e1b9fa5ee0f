package extract

import (
	"context"

	"github.com/leofalp/outparse/providers/observability"
)

// Parser carries the options and the logging sink of the extractors. It has
// no mutable state: one Parser can serve any number of goroutines.
type Parser struct {
	obs           observability.Provider
	stripQuotes   bool
	contentTag    string
	normalizeHTML bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithObserver sets the provider non-fatal failures are reported to. A
// provider found in the context of a call takes precedence.
func WithObserver(provider observability.Provider) Option {
	return func(p *Parser) {
		if provider != nil {
			p.obs = provider
		}
	}
}

// WithStripQuotes enables the legacy quote stripping on string fields
// (see StripQuotes). Off by default.
func WithStripQuotes(enabled bool) Option {
	return func(p *Parser) {
		p.stripQuotes = enabled
	}
}

// WithContentTag sets the wrapper tag ParseDocument unwraps when its opening
// marker is present. An empty tag disables unwrapping.
func WithContentTag(tag string) Option {
	return func(p *Parser) {
		p.contentTag = tag
	}
}

// WithHTMLNormalization makes ParseDocument convert HTML-formatted responses
// to markdown before splitting them into sections.
func WithHTMLNormalization(enabled bool) Option {
	return func(p *Parser) {
		p.normalizeHTML = enabled
	}
}

// New builds a Parser. Defaults: no-op observer, quote stripping off,
// DefaultContentTag, HTML normalization off.
func New(opts ...Option) *Parser {
	p := &Parser{
		obs:        observability.Nop{},
		contentTag: DefaultContentTag,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) observer(ctx context.Context) observability.Provider {
	if provider := observability.ObserverFromContext(ctx); provider != nil {
		return provider
	}
	return p.obs
}

type parseIDKey struct{}

func withParseID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, parseIDKey{}, id)
}

func (p *Parser) failureAttrs(ctx context.Context, err error, text string, extra ...observability.Attribute) []observability.Attribute {
	attrs := []observability.Attribute{
		observability.String(observability.AttrReason, ReasonName(err)),
		observability.Error(err),
		observability.Excerpt(text),
	}
	if e, ok := err.(*ExtractError); ok {
		attrs = append(attrs,
			observability.String(observability.AttrComponent, e.Component),
			observability.String(observability.AttrField, e.Field),
		)
	}
	if id, ok := ctx.Value(parseIDKey{}).(string); ok {
		attrs = append(attrs, observability.String(observability.AttrParseID, id))
	}
	return append(attrs, extra...)
}

// reportFailure logs a non-fatal failure at warn level and counts it.
func (p *Parser) reportFailure(ctx context.Context, err error, text string, extra ...observability.Attribute) {
	obs := p.observer(ctx)
	attrs := p.failureAttrs(ctx, err, text, extra...)
	obs.Warn(ctx, "Extraction failed", attrs...)
	obs.Counter(observability.MetricExtractFailures).Add(ctx, 1,
		observability.String(observability.AttrReason, ReasonName(err)),
	)
}
