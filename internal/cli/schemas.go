package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

func newSchemasCommand(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List form types and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rt.registry.Schemas())
			}
			return writeSchemaTable(cmd.OutOrStdout(), rt.registry)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print schemas as JSON")
	return cmd
}

func writeSchemaTable(out io.Writer, registry *schema.Registry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, form := range registry.Schemas() {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\n", form.Name)
		for _, field := range form.Fields {
			required := ""
			if field.Required {
				required = "required"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", field.Name, field.Kind, field.Label, required)
		}
	}
	return tw.Flush()
}
