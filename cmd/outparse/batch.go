package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/internal/utils"
	"github.com/leofalp/outparse/providers/observability"
)

type batchResult struct {
	File     string            `json:"file"`
	Document *extract.Document `json:"document,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var ff fieldFlags

	cmd := &cobra.Command{
		Use:   "batch file...",
		Short: "Parse many responses concurrently",
		Long: `Parses every file against the same fields and prints a JSON array with
one entry per file, in argument order. A file that cannot be read or
parsed gets an "error" entry and does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := ff.specs()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			timer := utils.NewTimer()
			results := make([]batchResult, len(args))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(a.cfg.Workers)
			for i, file := range args {
				g.Go(func() error {
					results[i] = parseFile(gctx, a, file, specs)
					return gctx.Err()
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			a.obs.Info(ctx, "Batch parsed",
				observability.Int(observability.AttrBatchFiles, len(args)),
				observability.Int(observability.AttrBatchFailed, failed),
				observability.Int(observability.AttrBatchWorkers, a.cfg.Workers),
				observability.Duration(observability.AttrDuration, timer.Stop()),
			)
			fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(results, true))
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVarP(&a.workers, "workers", "w", 0, "files parsed at once (default from OUTPARSE_WORKERS or the CPU count)")
	return cmd
}

func parseFile(ctx context.Context, a *app, file string, specs []extract.FieldSpec) batchResult {
	data, err := os.ReadFile(file)
	if err != nil {
		return batchResult{File: file, Error: err.Error()}
	}
	doc, err := a.parser.ParseDocument(ctx, string(data), specs)
	if err != nil {
		return batchResult{File: file, Error: err.Error()}
	}
	return batchResult{File: file, Document: doc}
}
