package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/outparse/core/extract"
)

func newUnwrapCmd(a *app) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "unwrap [file]",
		Short: "Print the text between [TAG] and [/TAG]",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			content, err := a.parser.Unwrap(cmd.Context(), text, tag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", extract.DefaultContentTag, "wrapper tag name")
	return cmd
}
