package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/internal/utils"
)

func newSectionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sections [file]",
		Short: "Split a response on ## headings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			sections := extract.SplitSectionList(text)
			out := cmd.OutOrStdout()
			if asJSON {
				fmt.Fprintln(out, utils.JSONToString(sections, true))
				return nil
			}
			for _, s := range sections {
				fmt.Fprintf(out, "[%s]\n%s\n\n", s.Title, s.Body)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output sections as JSON")
	return cmd
}
