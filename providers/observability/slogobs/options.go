package slogobs

import (
	"io"
	"log/slog"
	"os"

	"github.com/leofalp/outparse/providers/observability"
)

// Option configures an Observer built by New.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
	// logger bypasses the outparse handler entirely when set.
	logger *slog.Logger
	attrs  []observability.Attribute
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum level. Counters and histograms log at debug.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets where records are written. Defaults to stderr, keeping
// stdout free for extracted payloads.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

// WithColors forces ANSI colors in the compact and pretty formats. Without
// it colors are used only when the output is a terminal.
func WithColors(enabled bool) Option {
	return func(c *config) {
		c.colors = enabled
	}
}

// WithLogger routes records to an existing slog.Logger. Format, level,
// output and colors are then ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithAttrs attaches attributes to every record of the Observer, such as the
// command or pipeline stage a batch of extractions belongs to.
func WithAttrs(attrs ...observability.Attribute) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: GetFormatFromEnv(),
		level:  GetLogLevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
