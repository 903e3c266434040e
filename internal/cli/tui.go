package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhaystar2004/dynamic-form/internal/logging"
	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/notify"
	"github.com/abhaystar2004/dynamic-form/pkg/renderers/tui"
)

func newTUICommand(root *rootOptions) *cobra.Command {
	var formType string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Fill in forms from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Prompts own the terminal; logs stay quiet unless asked for.
			logOutput := io.Discard
			if verbose {
				logOutput = cmd.ErrOrStderr()
			}
			rt, err := root.load(logOutput)
			if err != nil {
				return err
			}

			ctrl, err := controller.New(
				controller.WithRegistry(rt.registry),
				controller.WithFormType(formType),
				controller.WithLogger(logging.WithComponent(rt.logger, "controller")),
				controller.WithNotifyOptions(notify.WithDismissAfter(rt.cfg.Notify.DismissAfter)),
			)
			if err != nil {
				return err
			}
			session, err := tui.NewSession(ctrl, tui.WithOutput(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			if err := session.Run(cmd.Context()); err != nil && !errors.Is(err, tui.ErrAborted) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formType, "form-type", "", "initial form type (defaults to the first registered)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "write logs to stderr")
	return cmd
}
