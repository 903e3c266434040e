// Package cli implements the dynform command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	"github.com/abhaystar2004/dynamic-form/internal/config"
	"github.com/abhaystar2004/dynamic-form/internal/logging"
	"github.com/abhaystar2004/dynamic-form/pkg/renderers/vanilla"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

// runtime bundles what every subcommand builds from configuration.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *schema.Registry
}

type rootOptions struct {
	configFile string
}

// NewRootCommand returns the dynform command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "dynform",
		Short: "Schema-driven dynamic forms",
		Long: `dynform renders forms described by schema documents, validates required
fields, tracks completion progress and keeps submitted entries in memory.
It serves the form over HTTP or drives it from the terminal.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (YAML, JSON or TOML)")

	root.AddCommand(
		newServeCommand(opts),
		newTUICommand(opts),
		newSchemasCommand(opts),
		newOpenAPICommand(opts),
	)
	return root
}

// Execute runs the root command against the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *rootOptions) load(logOutput io.Writer) (*runtime, error) {
	v, err := config.New(o.configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: logOutput,
	})

	registry := schema.Builtin()
	if dir := cfg.Schemas.Dir; dir != "" {
		if registry, err = schema.LoadFS(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("load schemas from %s: %w", dir, err)
		}
		logger.Info("schemas loaded", "dir", dir, "formTypes", registry.Names())
	}
	return &runtime{cfg: cfg, logger: logger, registry: registry}, nil
}

func (rt *runtime) theme() (*theme.RendererConfig, error) {
	selector, err := vanilla.NewThemeSelector()
	if err != nil {
		return nil, err
	}
	return vanilla.ResolveTheme(selector, rt.cfg.Theme.Name, rt.cfg.Theme.Variant)
}
