// Package dynform wires the schema registry, form controller and renderers
// for callers that embed a dynamic form without the bundled HTTP server.
package dynform

import (
	"context"
	"fmt"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/render"
	"github.com/abhaystar2004/dynamic-form/pkg/renderers/tui"
	"github.com/abhaystar2004/dynamic-form/pkg/renderers/vanilla"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

// RenderOptions describes per-request overrides such as hidden inputs and
// extra field errors.
type RenderOptions = render.RenderOptions

// Snapshot is a consistent copy of a controller's state.
type Snapshot = controller.Snapshot

// Renderer names registered by NewRenderers.
const (
	RendererHTML = "vanilla"
	RendererText = "text"
)

// BuiltinSchemas returns the shipped form types.
func BuiltinSchemas() *schema.Registry {
	return schema.Builtin()
}

// LoadSchemas reads every JSON or YAML schema document in fsys.
func LoadSchemas(fsys fs.FS) (*schema.Registry, error) {
	return schema.LoadFS(fsys)
}

// NewController exposes the controller constructor from the top-level module.
func NewController(options ...controller.Option) (*controller.Controller, error) {
	return controller.New(options...)
}

// NewRenderers returns a registry holding the HTML renderer, configured with
// options, and the plain text renderer.
func NewRenderers(options ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.NewTextRenderer()); err != nil {
		return nil, err
	}
	return registry, nil
}

// RenderHTML renders snap as a full HTML page with the default renderer.
func RenderHTML(ctx context.Context, snap Snapshot, options RenderOptions) ([]byte, error) {
	registry, err := NewRenderers()
	if err != nil {
		return nil, fmt.Errorf("dynform: %w", err)
	}
	out, _, err := registry.Render(ctx, RendererHTML, snap, options)
	return out, err
}

// ResolveTheme selects a theme and variant from selector and flattens it for
// RenderOptions.Theme. A nil selector uses the built-in manifest.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		builtin, err := vanilla.NewThemeSelector()
		if err != nil {
			return nil, err
		}
		selector = builtin
	}
	return vanilla.ResolveTheme(selector, name, variant)
}

// EmbeddedTemplates exposes the built-in page templates so callers can copy
// and customise them before passing them back through vanilla.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet and browser runtime referenced by the page.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(dynform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
