package vanilla

import (
	"fmt"
	"strings"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/render/template"
	"github.com/abhaystar2004/dynamic-form/pkg/widgets"
)

const (
	fieldTemplate    = "templates/field.tmpl"
	controlTemplates = "templates/controls/"
)

// FieldRenderer renders individual fields of one form type. The control is
// bound to the controller through its name attribute and data-change-url:
// posting name=value to that URL applies a field change.
type FieldRenderer struct {
	templates template.TemplateRenderer
	widgets   *widgets.Registry
	partials  map[string]string
	formType  string
	changeURL string
}

// RenderField renders the label, control, description and inline error for
// field. Dropdowns become a select with a leading "Select <Label>" option;
// every other kind becomes a single typed input carrying the raw value.
func (r *FieldRenderer) RenderField(field model.Field, value model.Value, errMsg string) (string, error) {
	widget := r.widgets.Resolve(r.formType, field)
	data := map[string]any{
		"field":       fieldData(field),
		"widget":      widget,
		"inputType":   inputType(widget, field),
		"value":       value.Raw,
		"error":       strings.TrimSpace(errMsg),
		"controlId":   controlID(field.Name),
		"errorId":     errorID(field.Name),
		"changeUrl":   r.changeURL,
		"description": sanitizeDescription(field.Description),
		"classes": map[string]any{
			"field":       fieldClasses(strings.TrimSpace(errMsg) != ""),
			"label":       string(ClassLabel),
			"control":     string(ClassControl),
			"description": string(ClassDescription),
			"error":       string(ClassError),
		},
	}

	control, err := r.templates.RenderTemplate(r.controlTemplate(widget), data)
	if err != nil {
		return "", fmt.Errorf("render control %q for field %q: %w", widget, field.Name, err)
	}
	data["control"] = strings.TrimRight(control, "\n")

	out, err := r.templates.RenderTemplate(r.partial(PartialField, fieldTemplate), data)
	if err != nil {
		return "", fmt.Errorf("render field %q: %w", field.Name, err)
	}
	return out, nil
}

func (r *FieldRenderer) controlTemplate(widget string) string {
	if partial := r.partials["controls."+widget]; partial != "" {
		return partial
	}
	switch widget {
	case widgets.WidgetInput, widgets.WidgetNumber, widgets.WidgetDate, widgets.WidgetPassword:
		return controlTemplates + "input.tmpl"
	default:
		return controlTemplates + widget + ".tmpl"
	}
}

func (r *FieldRenderer) partial(key, fallback string) string {
	if partial := r.partials[key]; partial != "" {
		return partial
	}
	return fallback
}

func fieldData(field model.Field) map[string]any {
	return map[string]any{
		"name":        field.Name,
		"label":       field.Label,
		"type":        string(field.Kind),
		"required":    field.Required,
		"options":     append([]string(nil), field.Choices...),
		"placeholder": field.Placeholder,
	}
}

// inputType maps a widget onto the HTML input type. Overrides that pick one
// of the input widgets for another kind keep the widget's type.
func inputType(widget string, field model.Field) string {
	switch widget {
	case widgets.WidgetNumber:
		return "number"
	case widgets.WidgetDate:
		return "date"
	case widgets.WidgetPassword:
		return "password"
	case widgets.WidgetInput:
		if field.Kind == model.FieldKindText || field.Kind == "" {
			return "text"
		}
		if field.Kind.Valid() && field.Kind != model.FieldKindDropdown {
			return string(field.Kind)
		}
		return "text"
	default:
		return "text"
	}
}
