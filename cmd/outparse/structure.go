package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/internal/utils"
)

func newStructureCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "structure [file]",
		Short: "Print the list or mapping literal embedded in a response as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var structure extract.StructureKind
			switch kind {
			case "list":
				structure = extract.StructureList
			case "mapping", "dict":
				structure = extract.StructureMapping
			default:
				return fmt.Errorf("--kind must be list or mapping, got %q", kind)
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			value, err := a.parser.ExtractStructure(cmd.Context(), text, structure).Get()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(value, true))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "list", "literal to look for: list or mapping")
	return cmd
}
