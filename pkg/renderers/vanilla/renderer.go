package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/render"
	rendertemplate "github.com/abhaystar2004/dynamic-form/pkg/render/template"
	gotemplate "github.com/abhaystar2004/dynamic-form/pkg/render/template/gotemplate"
	"github.com/abhaystar2004/dynamic-form/pkg/store"
	"github.com/abhaystar2004/dynamic-form/pkg/widgets"
)

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	widgets          *widgets.Registry
	theme            *theme.RendererConfig
	now              func() time.Time
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithWidgets replaces the widget registry used to pick controls.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithTheme sets the theme used when RenderOptions.Theme is nil.
func WithTheme(themeConfig *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = themeConfig
	}
}

// WithNow overrides the clock used for the notification countdown and the
// footer year.
func WithNow(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// Renderer produces the full HTML page for a controller snapshot.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	widgets   *widgets.Registry
	theme     *theme.RendererConfig
	now       func() time.Time
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), now: time.Now}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	if cfg.theme == nil {
		selector, err := NewThemeSelector()
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		if cfg.theme, err = ResolveTheme(selector, DefaultThemeName, ""); err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
	}

	return &Renderer{
		templates: renderer,
		widgets:   cfg.widgets,
		theme:     cfg.theme,
		now:       cfg.now,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// FieldRenderer returns a field renderer bound to formType whose controls
// post changes to changeURL.
func (r *Renderer) FieldRenderer(formType, changeURL string, themeConfig *theme.RendererConfig) *FieldRenderer {
	if themeConfig == nil {
		themeConfig = r.theme
	}
	var partials map[string]string
	if themeConfig != nil {
		partials = themeConfig.Partials
	}
	return &FieldRenderer{
		templates: r.templates,
		widgets:   r.widgets,
		partials:  partials,
		formType:  formType,
		changeURL: changeURL,
	}
}

func (r *Renderer) Render(ctx context.Context, snap controller.Snapshot, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	routes := opts.Routes.WithDefaults()
	themeConfig := opts.Theme
	if themeConfig == nil {
		themeConfig = r.theme
	}

	mapping := render.MapErrors(snap.Schema, snap.Errors, opts.Errors)
	fields := r.FieldRenderer(snap.FormType, routes.Fields, themeConfig)
	rendered := make([]string, 0, len(snap.Schema.Fields))
	for _, field := range snap.Schema.Fields {
		value, _ := snap.Values.Get(field.Name)
		markup, err := fields.RenderField(field, value, mapping.First(field.Name))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		rendered = append(rendered, markup)
	}

	now := r.now()
	data := map[string]any{
		"title":        opts.TitleOrDefault(),
		"year":         strconv.Itoa(now.Year()),
		"phase":        string(snap.Phase),
		"formType":     snap.FormType,
		"formTypes":    snap.FormTypes,
		"fields":       rendered,
		"progress":     snap.Progress,
		"formErrors":   render.MergeFormErrors(mapping.Form, opts.FormErrors...),
		"entries":      entryRows(snap.Schemas, snap.Entries, routes),
		"notification": notificationData(snap, now),
		"hiddenFields": hiddenData(opts.Hidden),
		"routes":       routeData(routes),
		"stylesheet":   assetURL(themeConfig, AssetStylesheet, routes.Asset(StylesheetName)),
		"script":       assetURL(themeConfig, AssetScript, routes.Asset(RuntimeScriptName)),
	}
	if themeConfig != nil {
		data["themeName"] = themeConfig.Theme
		data["themeVariant"] = themeConfig.Variant
		data["themeStyle"] = cssVarsStyle(themeConfig.CSSVars)
	}

	page := pageTemplate
	if themeConfig != nil && themeConfig.Partials[PartialPage] != "" {
		page = themeConfig.Partials[PartialPage]
	}
	result, err := r.templates.RenderTemplate(page, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func assetURL(cfg *theme.RendererConfig, key, fallback string) string {
	if cfg != nil && cfg.AssetURL != nil {
		if url := cfg.AssetURL(key); url != "" {
			return url
		}
	}
	return fallback
}

func routeData(routes render.Routes) map[string]any {
	return map[string]any{
		"page":     routes.Page,
		"formType": routes.FormType,
		"fields":   routes.Fields,
		"submit":   routes.Submit,
		"dismiss":  routes.Dismiss,
	}
}

func hiddenData(hidden map[string]string) []map[string]any {
	sorted := render.SortedHiddenFields(hidden)
	out := make([]map[string]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func notificationData(snap controller.Snapshot, now time.Time) map[string]any {
	if snap.Notification == nil {
		return nil
	}
	note := snap.Notification
	return map[string]any{
		"seq":         strconv.FormatUint(note.Seq, 10),
		"message":     note.Message,
		"kind":        string(note.Kind),
		"remainingMs": strconv.FormatInt(note.Remaining(now).Milliseconds(), 10),
	}
}

// entryRows lists each entry's non-empty values in schema order followed by
// the form type tag. Secret values are masked. Values of entries whose schema
// is unknown are listed by name.
func entryRows(schemas map[string]model.FormSchema, entries []store.Entry, routes render.Routes) []map[string]any {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(entries))
	for index, entry := range entries {
		pairs := make([]map[string]any, 0, len(entry.Values)+1)
		for _, name := range entryFieldOrder(schemas[entry.FormType], entry.Values) {
			value := entry.Values[name]
			if value.Empty() {
				continue
			}
			text := value.Raw
			if field, ok := schemas[entry.FormType].Field(name); ok && field.Kind == model.FieldKindPassword {
				text = maskSecret(text)
			}
			pairs = append(pairs, map[string]any{"key": name, "value": text})
		}
		pairs = append(pairs, map[string]any{"key": "formType", "value": entry.FormType})

		rows = append(rows, map[string]any{
			"id":        entry.ID,
			"fields":    pairs,
			"editUrl":   routes.Edit(index),
			"deleteUrl": routes.Delete(index),
		})
	}
	return rows
}

func entryFieldOrder(schema model.FormSchema, values model.Buffer) []string {
	names := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, field := range schema.Fields {
		if _, ok := values[field.Name]; ok {
			names = append(names, field.Name)
			seen[field.Name] = struct{}{}
		}
	}
	var rest []string
	for name := range values {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
