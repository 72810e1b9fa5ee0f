package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/internal/config"
	"github.com/leofalp/outparse/providers/observability"
	"github.com/leofalp/outparse/providers/observability/slogobs"
)

// app is the state shared by the subcommands once flags are parsed.
type app struct {
	envFile    string
	logLevel   string
	logFormat  string
	contentTag string
	strip      bool
	html       bool
	workers    int

	cfg    config.Config
	obs    *slogobs.Observer
	parser *extract.Parser
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "outparse",
		Short: "Extract structured data from LLM responses",
		Long: `outparse recovers structured data from free-form model output.

Responses are read from a file argument or from stdin ("-" or no argument).
Non-fatal extraction failures are logged to stderr; results go to stdout.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "read settings from this .env file (default .env when present)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: compact, pretty, json")
	flags.StringVar(&a.contentTag, "content-tag", "", "wrapper tag unwrapped before parsing documents")
	flags.BoolVar(&a.strip, "strip-quotes", false, "strip quotes and 'name =' prefixes from string fields")
	flags.BoolVar(&a.html, "html", false, "convert HTML responses to markdown before parsing")

	root.AddCommand(
		newSectionsCmd(),
		newCodeCmd(a),
		newStructureCmd(a),
		newUnwrapCmd(a),
		newParseCmd(a),
		newBatchCmd(a),
		newVerdictCmd(a),
	)
	return root
}

// setup resolves the configuration (flags over environment over .env file)
// and builds the observer and parser.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = slogobs.ParseLogLevel(a.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = slogobs.ParseFormat(a.logFormat)
	}
	if flags.Changed("content-tag") {
		cfg.ContentTag = a.contentTag
	}
	if flags.Changed("strip-quotes") {
		cfg.StripQuotes = a.strip
	}
	if flags.Changed("html") {
		cfg.NormalizeHTML = a.html
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		if a.workers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", a.workers)
		}
		cfg.Workers = a.workers
	}

	a.cfg = cfg
	a.obs = cfg.Observer(cmd.ErrOrStderr(), observability.String(observability.AttrCommand, cmd.Name()))
	a.parser = extract.New(append(cfg.ParserOptions(), extract.WithObserver(a.obs))...)
	return nil
}

// readInput returns the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
