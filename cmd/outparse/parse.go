package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/core/schema"
	"github.com/leofalp/outparse/internal/utils"
)

// fieldFlags are the --schema and --field flags shared by parse and batch.
type fieldFlags struct {
	schema string
	fields []string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.schema, "schema", "", "built-in schema name ("+strings.Join(schema.Names(), ", ")+") or a .yaml/.toml schema file")
	cmd.Flags().StringArrayVarP(&f.fields, "field", "f", nil, `declare a field as "Name=kind" (repeatable)`)
}

// specs returns the schema fields followed by the --field declarations.
func (f *fieldFlags) specs() ([]extract.FieldSpec, error) {
	var specs []extract.FieldSpec
	if f.schema != "" {
		s, err := schema.Resolve(f.schema)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s.Fields...)
	}
	for _, decl := range f.fields {
		spec, err := parseFieldFlag(decl)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseFieldFlag reads "Name=kind". The kind defaults to str when omitted.
func parseFieldFlag(decl string) (extract.FieldSpec, error) {
	name, kindName := decl, "str"
	if i := strings.LastIndex(decl, "="); i >= 0 {
		name, kindName = decl[:i], decl[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return extract.FieldSpec{}, fmt.Errorf("invalid --field %q: empty name", decl)
	}
	kind, err := extract.ParseKind(kindName)
	if err != nil {
		return extract.FieldSpec{}, fmt.Errorf("invalid --field %q: %w", decl, err)
	}
	return extract.FieldSpec{Name: name, Kind: kind}, nil
}

func newParseCmd(a *app) *cobra.Command {
	var ff fieldFlags

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a whole response into typed fields",
		Long: `Parses a response against the declared fields and prints the document
as JSON. Fields that could not be extracted are listed under "failures".`,
		Example: `  outparse parse --schema prd response.md
  outparse parse -f "Task list=List[str]" -f "Anything UNCLEAR=str" < response.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := ff.specs()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := a.parser.ParseDocument(cmd.Context(), text, specs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(doc, true))
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}
