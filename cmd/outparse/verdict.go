package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/outparse/core/review"
)

func newVerdictCmd(a *app) *cobra.Command {
	var (
		recipient bool
		rewrite   bool
		lang      string
	)

	cmd := &cobra.Command{
		Use:   "verdict [file]",
		Short: "Read the outcome of a code review response",
		Long: `Prints LGTM, LBTM or unknown for a code review response.

With --recipient the "Send To:" addressee is printed instead, and with
--rewrite the code of a rewrite response.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if recipient && rewrite {
				return errors.New("--recipient and --rewrite are mutually exclusive")
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			reviewer := review.NewReviewer(a.obs, a.cfg.ParserOptions()...)
			out := cmd.OutOrStdout()
			switch {
			case recipient:
				name := reviewer.Recipient(ctx, text)
				if name == "" {
					return errors.New("no recipient found")
				}
				fmt.Fprintln(out, name)
			case rewrite:
				fmt.Fprint(out, reviewer.Rewrite(ctx, text, lang))
			default:
				fmt.Fprintln(out, reviewer.Verdict(ctx, text))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&recipient, "recipient", false, `print the "Send To:" recipient`)
	cmd.Flags().BoolVar(&rewrite, "rewrite", false, "print the code of a rewrite response")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "fence language for --rewrite")
	return cmd
}
