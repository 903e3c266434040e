package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhaystar2004/dynamic-form/internal/logging"
	"github.com/abhaystar2004/dynamic-form/internal/server"
	"github.com/abhaystar2004/dynamic-form/pkg/notify"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr, title string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			themeCfg, err := rt.theme()
			if err != nil {
				return err
			}
			if addr != "" {
				rt.cfg.Server.Addr = addr
			}

			srv, err := server.New(
				server.WithRegistry(rt.registry),
				server.WithLogger(logging.WithComponent(rt.logger, "server")),
				server.WithTheme(themeCfg),
				server.WithTitle(title),
				server.WithNotifyOptions(notify.WithDismissAfter(rt.cfg.Notify.DismissAfter)),
				server.WithSessionTTL(rt.cfg.Server.SessionTTL),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, server.HTTPConfig{
				Addr:            rt.cfg.Server.Addr,
				ReadTimeout:     rt.cfg.Server.ReadTimeout,
				WriteTimeout:    rt.cfg.Server.WriteTimeout,
				ShutdownTimeout: rt.cfg.Server.ShutdownTimeout,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&title, "title", "", "page heading")
	return cmd
}
