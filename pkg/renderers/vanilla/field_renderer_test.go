package vanilla_test

import (
	"strings"
	"testing"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/renderers/vanilla"
	"github.com/abhaystar2004/dynamic-form/pkg/widgets"
)

func newFieldRenderer(t *testing.T, options ...vanilla.Option) *vanilla.FieldRenderer {
	t.Helper()
	renderer, err := vanilla.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer.FieldRenderer("Address Information", "/fields", nil)
}

func TestRenderFieldDropdown(t *testing.T) {
	fields := newFieldRenderer(t)
	field := model.Field{
		Name:     "state",
		Kind:     model.FieldKindDropdown,
		Label:    "State",
		Required: true,
		Choices:  []string{"California", "Texas", "New York"},
	}

	html, err := fields.RenderField(field, model.Value{Kind: model.ValueKindChoice, Raw: "Texas"}, "")
	if err != nil {
		t.Fatalf("render field: %v", err)
	}

	for _, want := range []string{
		`<select id="df-state" name="state"`,
		`data-change-url="/fields"`,
		`<option value="">Select State</option>`,
		`<option value="Texas" selected>Texas</option>`,
		`<option value="California">California</option>`,
		`State *</label>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in:\n%s", want, html)
		}
	}

	placeholder := strings.Index(html, "Select State")
	california := strings.Index(html, ">California<")
	texas := strings.Index(html, ">Texas<")
	newYork := strings.Index(html, ">New York<")
	if !(placeholder < california && california < texas && texas < newYork) {
		t.Fatalf("options out of schema order:\n%s", html)
	}
	if strings.Contains(html, "<input") {
		t.Fatalf("dropdown should not render an input:\n%s", html)
	}
}

func TestRenderFieldDropdownPlaceholderSelectedWhenEmpty(t *testing.T) {
	fields := newFieldRenderer(t)
	field := model.Field{Name: "state", Kind: model.FieldKindDropdown, Label: "State", Choices: []string{"Texas"}}

	html, err := fields.RenderField(field, model.Value{}, "")
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if !strings.Contains(html, `<option value="" selected>Select State</option>`) {
		t.Fatalf("expected placeholder selected:\n%s", html)
	}
}

func TestRenderFieldInputKinds(t *testing.T) {
	fields := newFieldRenderer(t)

	cases := []struct {
		field model.Field
		raw   string
		want  string
	}{
		{field: model.Field{Name: "street", Kind: model.FieldKindText, Label: "Street"}, raw: "1 Main St", want: `type="text" value="1 Main St"`},
		{field: model.Field{Name: "age", Kind: model.FieldKindNumber, Label: "Age"}, raw: "36", want: `type="number" value="36" class="dynform-control" step="any"`},
		{field: model.Field{Name: "expiryDate", Kind: model.FieldKindDate, Label: "Expiry Date"}, raw: "2028-04-01", want: `type="date" value="2028-04-01"`},
		{field: model.Field{Name: "cvv", Kind: model.FieldKindPassword, Label: "CVV"}, raw: "123", want: `type="password" value="123"`},
	}

	for _, tc := range cases {
		t.Run(tc.field.Name, func(t *testing.T) {
			html, err := fields.RenderField(tc.field, model.Value{Raw: tc.raw}, "")
			if err != nil {
				t.Fatalf("render field: %v", err)
			}
			if !strings.Contains(html, tc.want) {
				t.Fatalf("expected %q in:\n%s", tc.want, html)
			}
			if !strings.Contains(html, `name="`+tc.field.Name+`"`) {
				t.Fatalf("missing name binding:\n%s", html)
			}
			if strings.Contains(html, "<select") {
				t.Fatalf("input kinds should not render a select:\n%s", html)
			}
			if strings.Contains(html, " *</label>") {
				t.Fatalf("optional field marked required:\n%s", html)
			}
		})
	}
}

func TestRenderFieldErrorFollowsControl(t *testing.T) {
	fields := newFieldRenderer(t)
	field := model.Field{Name: "firstName", Kind: model.FieldKindText, Label: "First Name", Required: true}

	html, err := fields.RenderField(field, model.Value{}, "First Name is required")
	if err != nil {
		t.Fatalf("render field: %v", err)
	}

	control := strings.Index(html, "<input")
	message := strings.Index(html, "First Name is required")
	if control < 0 || message < control {
		t.Fatalf("error should follow the control:\n%s", html)
	}
	for _, want := range []string{
		`First Name *</label>`,
		`aria-invalid="true"`,
		`aria-describedby="df-firstName-error"`,
		`class="dynform-field dynform-field--invalid"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in:\n%s", want, html)
		}
	}
}

func TestRenderFieldEscapesValueAndSanitizesDescription(t *testing.T) {
	fields := newFieldRenderer(t)
	field := model.Field{
		Name:        "street",
		Kind:        model.FieldKindText,
		Label:       "Street",
		Description: `Use the <strong>mailing</strong> address<script>alert(1)</script>`,
	}

	html, err := fields.RenderField(field, model.Value{Raw: `"><script>alert(1)</script>`}, "")
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("script leaked into output:\n%s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("expected escaped value:\n%s", html)
	}
	if !strings.Contains(html, "<strong>mailing</strong>") {
		t.Fatalf("expected sanitized description to keep formatting:\n%s", html)
	}
}

func TestRenderFieldWidgetOverride(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.Override("Address Information.zipCode", widgets.WidgetNumber)
	fields := newFieldRenderer(t, vanilla.WithWidgets(registry))

	html, err := fields.RenderField(model.Field{Name: "zipCode", Kind: model.FieldKindText, Label: "Zip Code"}, model.Value{}, "")
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if !strings.Contains(html, `type="number"`) || !strings.Contains(html, `data-widget="number"`) {
		t.Fatalf("expected override to number input:\n%s", html)
	}
}

func TestRenderFieldUnknownWidget(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.Override("zipCode", "slider")
	fields := newFieldRenderer(t, vanilla.WithWidgets(registry))

	if _, err := fields.RenderField(model.Field{Name: "zipCode", Kind: model.FieldKindText, Label: "Zip Code"}, model.Value{}, ""); err == nil {
		t.Fatalf("expected missing control template error")
	}
}
