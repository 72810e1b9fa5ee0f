// Package config resolves outparse settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/providers/observability"
	"github.com/leofalp/outparse/providers/observability/slogobs"
)

// Environment variables read by Load.
const (
	EnvLogLevel      = "OUTPARSE_LOG_LEVEL"
	EnvLogFormat     = "OUTPARSE_LOG_FORMAT"
	EnvContentTag    = "OUTPARSE_CONTENT_TAG"
	EnvStripQuotes   = "OUTPARSE_STRIP_QUOTES"
	EnvNormalizeHTML = "OUTPARSE_NORMALIZE_HTML"
	EnvWorkers       = "OUTPARSE_WORKERS"
)

// Generic fallbacks for the log settings, read when the OUTPARSE_ ones are
// unset or empty.
const (
	EnvLogLevelFallback  = "LOG_LEVEL"
	EnvLogFormatFallback = "LOG_FORMAT"
)

// DefaultEnvFile is read when Load gets no file names and it exists.
const DefaultEnvFile = ".env"

// Config holds the settings shared by the command line tools.
type Config struct {
	LogLevel      slog.Level
	LogFormat     slogobs.Format
	ContentTag    string
	StripQuotes   bool
	NormalizeHTML bool
	Workers       int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel:   slog.LevelInfo,
		LogFormat:  slogobs.FormatCompact,
		ContentTag: extract.DefaultContentTag,
		Workers:    runtime.NumCPU(),
	}
}

// Load reads the given .env files (DefaultEnvFile when none are given and it
// exists) and then the process environment, which takes precedence. The
// process environment itself is left untouched.
func Load(envFiles ...string) (Config, error) {
	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	return fromLookup(func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	})
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		files = []string{DefaultEnvFile}
	}
	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return values, nil
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if value := firstSet(lookup, EnvLogLevel, EnvLogLevelFallback); value != "" {
		cfg.LogLevel = slogobs.ParseLogLevel(value)
	}
	if value := firstSet(lookup, EnvLogFormat, EnvLogFormatFallback); value != "" {
		cfg.LogFormat = slogobs.ParseFormat(value)
	}
	if value, ok := lookup(EnvContentTag); ok {
		// set but empty disables unwrapping
		cfg.ContentTag = strings.TrimSpace(value)
	}

	var err error
	if cfg.StripQuotes, err = boolSetting(lookup, EnvStripQuotes, cfg.StripQuotes); err != nil {
		return Config{}, err
	}
	if cfg.NormalizeHTML, err = boolSetting(lookup, EnvNormalizeHTML, cfg.NormalizeHTML); err != nil {
		return Config{}, err
	}
	if value, ok := lookup(EnvWorkers); ok && value != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%s must be a positive integer, got %q", EnvWorkers, value)
		}
		cfg.Workers = n
	}
	return cfg, nil
}

// firstSet returns the first non-empty value among keys.
func firstSet(lookup func(string) (string, bool), keys ...string) string {
	for _, key := range keys {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
	}
	return ""
}

func boolSetting(lookup func(string) (string, bool), key string, fallback bool) (bool, error) {
	value, ok := lookup(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}

// Observer builds the slog observer the settings describe, writing to out.
// Extra attributes are attached to every record.
func (c Config) Observer(out io.Writer, attrs ...observability.Attribute) *slogobs.Observer {
	return slogobs.New(
		slogobs.WithOutput(out),
		slogobs.WithLevel(c.LogLevel),
		slogobs.WithFormat(c.LogFormat),
		slogobs.WithAttrs(attrs...),
	)
}

// ParserOptions returns the extract options the settings describe.
func (c Config) ParserOptions() []extract.Option {
	return []extract.Option{
		extract.WithContentTag(c.ContentTag),
		extract.WithStripQuotes(c.StripQuotes),
		extract.WithHTMLNormalization(c.NormalizeHTML),
	}
}
