package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCodeCmd(a *app) *cobra.Command {
	var (
		lang    string
		section string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "code [file]",
		Short: "Print the fenced code of a response",
		Long: `Prints the content of the first triple-backtick fence.

By default a response without a matching fence prints nothing and fails.
With --strict (implied by --section) the unfenced text itself is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if strict || section != "" {
				fmt.Fprint(cmd.OutOrStdout(), a.parser.ExtractSectionCode(ctx, section, text, lang))
				return nil
			}
			code := a.parser.ExtractCode(ctx, text, lang)
			if code == "" {
				return errors.New("no code block found")
			}
			fmt.Fprint(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "only accept fences tagged with this language")
	cmd.Flags().StringVarP(&section, "section", "s", "", "look only inside the section whose title contains this text")
	cmd.Flags().BoolVar(&strict, "strict", false, "print the text itself when there is no fence")
	return cmd
}
