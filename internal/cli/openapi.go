package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhaystar2004/dynamic-form/pkg/openapi"
)

func newOpenAPICommand(root *rootOptions) *cobra.Command {
	var serverURL, title string
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI description of the HTTP surface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			doc, err := openapi.Build(rt.registry, openapi.WithServerURL(serverURL), openapi.WithTitle(title))
			if err != nil {
				return err
			}
			if err := openapi.Validate(cmd.Context(), doc); err != nil {
				return err
			}
			raw, err := doc.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encode openapi: %w", err)
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, raw, "", "  "); err != nil {
				return fmt.Errorf("encode openapi: %w", err)
			}
			pretty.WriteByte('\n')
			_, err = pretty.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&serverURL, "server-url", "", "add a servers entry")
	cmd.Flags().StringVar(&title, "title", "", "info.title")
	return cmd
}
