package vanilla

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName is the theme bundled with the renderer.
const DefaultThemeName = "dynform"

// Asset keys looked up through RendererConfig.AssetURL.
const (
	AssetStylesheet = "vanilla.stylesheet"
	AssetScript     = "vanilla.script"
)

// Partial keys a theme may override. Control partials are keyed
// "controls.<widget>".
const (
	PartialPage  = "page"
	PartialField = "field"
)

// ErrUnknownTheme is returned when a selector cannot resolve a theme name.
var ErrUnknownTheme = errors.New("vanilla: unknown theme")

// DefaultManifest returns the bundled theme with a "light" default and a
// "dark" variant. Tokens become CSS custom properties on the page.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"df-accent":      "#3b82f6",
			"df-accent-dark": "#2563eb",
			"df-success":     "#22c55e",
			"df-error":       "#ef4444",
			"df-warning":     "#eab308",
			"df-surface":     "rgba(255, 255, 255, 0.1)",
			"df-text":        "#111827",
			"df-muted":       "#e5e7eb",
			"df-radius":      "0.5rem",
		},
		Templates: map[string]string{
			PartialPage:  "templates/page.tmpl",
			PartialField: "templates/field.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: StylesheetName,
				AssetScript:     RuntimeScriptName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"df-surface": "rgba(17, 24, 39, 0.6)",
					"df-text":    "#f9fafb",
					"df-muted":   "#374151",
				},
			},
		},
	}
}

// ManifestSelector resolves themes from a fixed manifest set.
type ManifestSelector struct {
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewThemeSelector validates manifests through a go-theme registry and returns
// a selector over them. The first manifest is the fallback for empty names.
// With no manifests the bundled DefaultManifest is used.
func NewThemeSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	registry := theme.NewRegistry()
	selector := &ManifestSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("vanilla: register theme %q: %w", manifest.Name, err)
		}
		selector.manifests[manifest.Name] = manifest
		if selector.fallback == "" {
			selector.fallback = manifest.Name
		}
	}
	return selector, nil
}

// Select implements theme.ThemeSelector.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			variant = ""
		}
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

// ResolveTheme selects a theme and flattens it into the renderer config
// passed through render.RenderOptions.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, errors.New("vanilla: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, err
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return rendererConfig(selection), nil
}

func rendererConfig(selection *theme.Selection) *theme.RendererConfig {
	manifest := selection.Manifest
	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	assets := mergeStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix

	if v, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, v.Tokens)
		partials = mergeStrings(partials, v.Templates)
		assets = mergeStrings(assets, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := assets[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}
}

func mergeStrings(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}

// cssVarsStyle renders custom properties as a deterministic declaration list.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}
