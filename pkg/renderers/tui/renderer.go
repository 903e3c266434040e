package tui

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/render"
	"github.com/abhaystar2004/dynamic-form/pkg/store"
)

const unsetMarker = "(empty)"

// TextRenderer prints a snapshot as a plain text summary. It backs both the
// terminal session and the "text" entry of a render.Registry.
type TextRenderer struct{}

var _ render.Renderer = TextRenderer{}

// NewTextRenderer returns the plain text renderer.
func NewTextRenderer() TextRenderer {
	return TextRenderer{}
}

func (TextRenderer) Name() string {
	return "text"
}

func (TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r TextRenderer) Render(ctx context.Context, snap controller.Snapshot, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var b strings.Builder

	fmt.Fprintf(&b, "== %s ==\n", options.TitleOrDefault())
	fmt.Fprintf(&b, "Form type: %s [%s] %d%% complete\n", snap.FormType, snap.Phase, progressPercent(snap.Progress))

	for _, field := range snap.Schema.Fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		value, _ := snap.Values.Get(field.Name)
		fmt.Fprintf(&b, "  %s: %s", label, displayValue(field, value.Raw))
		if msg := snap.Errors[field.Name]; msg != "" {
			fmt.Fprintf(&b, "  ! %s", msg)
		}
		b.WriteByte('\n')
	}
	for _, msg := range options.FormErrors {
		fmt.Fprintf(&b, "! %s\n", msg)
	}

	if note := snap.Notification; note != nil {
		fmt.Fprintf(&b, "[%s] %s\n", note.Kind, note.Message)
	}

	if len(snap.Entries) > 0 {
		fmt.Fprintf(&b, "Submitted entries (%d):\n", len(snap.Entries))
		for i, entry := range snap.Entries {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, EntrySummary(snap.Schemas[entry.FormType], entry))
		}
	}
	return []byte(b.String()), nil
}

// EntrySummary lists an entry's non-empty values in schema order, followed by
// its form type. Secret values are masked.
func EntrySummary(schema model.FormSchema, entry store.Entry) string {
	parts := make([]string, 0, len(entry.Values)+1)
	seen := make(map[string]bool, len(entry.Values))
	for _, field := range schema.Fields {
		seen[field.Name] = true
		value, ok := entry.Values.Get(field.Name)
		if !ok || value.Empty() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", field.Name, displayValue(field, value.Raw)))
	}
	extra := entry.Values.Strings()
	names := make([]string, 0, len(extra))
	for name, value := range extra {
		if !seen[name] && value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, extra[name]))
	}
	parts = append(parts, "formType="+entry.FormType)
	return strings.Join(parts, ", ")
}

func displayValue(field model.Field, raw string) string {
	if raw == "" {
		return unsetMarker
	}
	if field.Kind == model.FieldKindPassword {
		return strings.Repeat("•", len([]rune(raw)))
	}
	return raw
}

func progressPercent(progress float64) int {
	return int(math.Round(math.Max(0, math.Min(100, progress))))
}
