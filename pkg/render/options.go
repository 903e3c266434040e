package render

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching controller state.
type RenderOptions struct {
	// Title overrides the page heading. Defaults to "Dynamic Form".
	Title string
	// Hidden carries inputs emitted inside every generated form, such as the
	// session CSRF token.
	Hidden map[string]string
	// Errors surfaces feedback that is not part of the controller error set,
	// for example a rejected change of a number field. Keys are field names;
	// anything else is shown at form level.
	Errors map[string][]string
	// FormErrors are shown above the fields.
	FormErrors []string
	// Routes overrides the action URLs posted by the page.
	Routes Routes
	// Theme carries resolved tokens and assets for the page.
	Theme *theme.RendererConfig
}

// DefaultTitle is used when RenderOptions.Title is empty.
const DefaultTitle = "Dynamic Form"

// TitleOrDefault returns the configured title or DefaultTitle.
func (o RenderOptions) TitleOrDefault() string {
	if title := strings.TrimSpace(o.Title); title != "" {
		return title
	}
	return DefaultTitle
}

// Routes names the endpoints a rendered page posts to.
type Routes struct {
	Page     string
	FormType string
	Fields   string
	Submit   string
	Entries  string
	Dismiss  string
	Assets   string
}

// DefaultRoutes returns the routes served by the HTTP front end.
func DefaultRoutes() Routes {
	return Routes{
		Page:     "/",
		FormType: "/form-type",
		Fields:   "/fields",
		Submit:   "/submit",
		Entries:  "/entries",
		Dismiss:  "/notification/dismiss",
		Assets:   "/assets",
	}
}

// WithDefaults fills every empty route from DefaultRoutes.
func (r Routes) WithDefaults() Routes {
	def := DefaultRoutes()
	fill := func(value *string, fallback string) {
		if strings.TrimSpace(*value) == "" {
			*value = fallback
		}
	}
	fill(&r.Page, def.Page)
	fill(&r.FormType, def.FormType)
	fill(&r.Fields, def.Fields)
	fill(&r.Submit, def.Submit)
	fill(&r.Entries, def.Entries)
	fill(&r.Dismiss, def.Dismiss)
	fill(&r.Assets, def.Assets)
	return r
}

// Edit returns the recall URL for the entry at index.
func (r Routes) Edit(index int) string {
	return fmt.Sprintf("%s/%d/edit", strings.TrimSuffix(r.Entries, "/"), index)
}

// Delete returns the removal URL for the entry at index.
func (r Routes) Delete(index int) string {
	return fmt.Sprintf("%s/%d/delete", strings.TrimSuffix(r.Entries, "/"), index)
}

// Asset returns the URL of an embedded asset.
func (r Routes) Asset(name string) string {
	return strings.TrimSuffix(r.Assets, "/") + "/" + strings.TrimPrefix(name, "/")
}
