package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

// ErrNilRegistry is returned when Build receives no registry.
var ErrNilRegistry = errors.New("openapi: registry is required")

const (
	componentFormType = "FormType"
	componentChange   = "FieldChange"
	componentSnapshot = "Snapshot"
	componentProblem  = "Problem"

	mimeForm = "application/x-www-form-urlencoded"
	mimeHTML = "text/html"
)

// Build converts the registry into an OpenAPI document covering every route
// the HTTP server exposes.
func Build(registry *schema.Registry, options ...Option) (*openapi3.T, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	opts := defaultOptions()
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	components := openapi3.NewComponents()
	components.Schemas = make(openapi3.Schemas)

	formTypes := make([]any, 0, registry.Len())
	forms := make(openapi3.SchemaRefs, 0, registry.Len())
	for _, form := range registry.Schemas() {
		name := ComponentName(form.Name)
		if _, exists := components.Schemas[name]; exists {
			return nil, fmt.Errorf("openapi: form types collide on component %q", name)
		}
		formSchema := FormSchema(form)
		components.Schemas[name] = openapi3.NewSchemaRef("", formSchema)
		forms = append(forms, openapi3.NewSchemaRef(componentRef(name), formSchema))
		formTypes = append(formTypes, form.Name)
	}

	formTypeSchema := openapi3.NewStringSchema().WithEnum(formTypes...)
	formTypeSchema.Description = "Registered form type tag."
	components.Schemas[componentFormType] = openapi3.NewSchemaRef("", formTypeSchema)

	changeSchema := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("value", openapi3.NewStringSchema())
	changeSchema.Required = []string{"name", "value"}
	components.Schemas[componentChange] = openapi3.NewSchemaRef("", changeSchema)

	snapshotSchema := snapshotSchema(formTypeSchema)
	components.Schemas[componentSnapshot] = openapi3.NewSchemaRef("", snapshotSchema)

	problemSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("errors", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))
	components.Schemas[componentProblem] = openapi3.NewSchemaRef("", problemSchema)

	submitSchema := &openapi3.Schema{OneOf: forms}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       opts.Title,
			Version:     opts.Version,
			Description: opts.Description,
		},
		Components: &components,
	}
	if opts.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: opts.ServerURL}}
	}

	formTypeRef := openapi3.NewSchemaRef(componentRef(componentFormType), formTypeSchema)
	changeRef := openapi3.NewSchemaRef(componentRef(componentChange), changeSchema)
	snapshotRef := openapi3.NewSchemaRef(componentRef(componentSnapshot), snapshotSchema)
	problemRef := openapi3.NewSchemaRef(componentRef(componentProblem), problemSchema)

	selectBody := openapi3.NewObjectSchema()
	selectBody.Properties = openapi3.Schemas{"formType": formTypeRef}
	selectBody.Required = []string{"formType"}

	doc.Paths = openapi3.NewPaths(
		openapi3.WithPath("/", &openapi3.PathItem{
			Get: operation("renderPage", "Render the form page", nil, htmlResponses()),
		}),
		openapi3.WithPath("/form-type", &openapi3.PathItem{
			Post: operation("selectFormType", "Switch the active form type",
				formBody(&openapi3.SchemaRef{Value: selectBody}),
				redirectResponses(problemRef, http.StatusNotFound)),
		}),
		openapi3.WithPath("/fields", &openapi3.PathItem{
			Post: operation("changeField", "Change one field of the editing buffer",
				formBody(changeRef),
				withJSON(redirectResponses(problemRef, http.StatusUnprocessableEntity), snapshotRef)),
		}),
		openapi3.WithPath("/submit", &openapi3.PathItem{
			Post: operation("submitForm", "Submit the editing buffer",
				formBody(&openapi3.SchemaRef{Value: submitSchema}),
				redirectResponses(problemRef, http.StatusUnprocessableEntity)),
		}),
		openapi3.WithPath("/entries/{index}/edit", &openapi3.PathItem{
			Post: indexed(operation("editEntry", "Recall a submitted entry into the form",
				nil, redirectResponses(problemRef, http.StatusNotFound))),
		}),
		openapi3.WithPath("/entries/{index}/delete", &openapi3.PathItem{
			Post: indexed(operation("deleteEntry", "Delete a submitted entry",
				nil, redirectResponses(problemRef, http.StatusNotFound))),
		}),
		openapi3.WithPath("/notification/dismiss", &openapi3.PathItem{
			Post: operation("dismissNotification", "Hide the notification banner", nil, redirectResponses(problemRef)),
		}),
		openapi3.WithPath("/api/state", &openapi3.PathItem{
			Get: operation("getState", "Current controller snapshot", nil, jsonResponses(snapshotRef)),
		}),
		openapi3.WithPath("/api/forms", &openapi3.PathItem{
			Get: operation("listForms", "Registered form schemas", nil,
				jsonResponses(&openapi3.SchemaRef{Value: openapi3.NewArraySchema().WithItems(&openapi3.Schema{OneOf: forms})})),
		}),
	)
	return doc, nil
}

// Validate checks doc against the OpenAPI 3 rules.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("openapi: validate: %w", err)
	}
	return nil
}

// Load parses and validates a serialized document.
func Load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := Validate(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FormSchema maps a form schema to an object schema: one property per field,
// required fields listed in declaration order.
func FormSchema(form model.FormSchema) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.Title = form.Name
	out.Description = form.Description
	out.Properties = make(openapi3.Schemas, len(form.Fields))
	for _, field := range form.Fields {
		out.Properties[field.Name] = openapi3.NewSchemaRef("", FieldSchema(field))
		if field.Required {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out
}

// FieldSchema maps a field descriptor to the schema of its raw form value.
func FieldSchema(field model.Field) *openapi3.Schema {
	var out *openapi3.Schema
	switch field.Kind {
	case model.FieldKindNumber:
		out = openapi3.NewFloat64Schema()
	case model.FieldKindDropdown:
		choices := make([]any, 0, len(field.Choices))
		for _, choice := range field.Choices {
			choices = append(choices, choice)
		}
		out = openapi3.NewStringSchema().WithEnum(choices...)
	case model.FieldKindDate:
		out = openapi3.NewStringSchema().WithFormat("date")
	case model.FieldKindPassword:
		out = openapi3.NewStringSchema().WithFormat("password")
	default:
		out = openapi3.NewStringSchema()
	}
	out.Title = field.Label
	out.Description = field.Placeholder
	return out
}

// ComponentName turns a form type tag into a valid component key by dropping
// every rune outside [A-Za-z0-9._-].
func ComponentName(formType string) string {
	var b strings.Builder
	for _, r := range formType {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Form"
	}
	return b.String()
}

func componentRef(name string) string {
	return "#/components/schemas/" + name
}

func snapshotSchema(formType *openapi3.Schema) *openapi3.Schema {
	value := openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema().WithEnum(
			string(model.ValueKindText), string(model.ValueKindNumber), string(model.ValueKindChoice))).
		WithProperty("raw", openapi3.NewStringSchema())
	entry := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewUUIDSchema()).
		WithProperty("formType", formType).
		WithProperty("values", openapi3.NewObjectSchema().WithAdditionalProperties(value)).
		WithProperty("submittedAt", openapi3.NewDateTimeSchema())
	notification := openapi3.NewObjectSchema().
		WithProperty("seq", openapi3.NewInt64Schema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("kind", openapi3.NewStringSchema().WithEnum("success", "error")).
		WithProperty("shownAt", openapi3.NewDateTimeSchema()).
		WithProperty("expires", openapi3.NewDateTimeSchema())

	return openapi3.NewObjectSchema().
		WithProperty("phase", openapi3.NewStringSchema().WithEnum("idle", "editing", "submitted")).
		WithProperty("formType", formType).
		WithProperty("formTypes", openapi3.NewArraySchema().WithItems(formType)).
		WithProperty("values", openapi3.NewObjectSchema().WithAdditionalProperties(value)).
		WithProperty("errors", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())).
		WithProperty("progress", openapi3.NewFloat64Schema().WithMin(0).WithMax(100)).
		WithProperty("entries", openapi3.NewArraySchema().WithItems(entry)).
		WithProperty("notification", notification)
}

func operation(id, summary string, body *openapi3.RequestBodyRef, responses *openapi3.Responses) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.RequestBody = body
	op.Responses = responses
	return op
}

func indexed(op *openapi3.Operation) *openapi3.Operation {
	param := openapi3.NewPathParameter("index").WithSchema(openapi3.NewIntegerSchema().WithMin(0))
	param.Description = "Zero-based position in the submitted entries list."
	op.AddParameter(param)
	return op
}

func formBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	body := openapi3.NewRequestBody().WithRequired(true)
	body.Content = openapi3.Content{mimeForm: openapi3.NewMediaType().WithSchemaRef(schema)}
	return &openapi3.RequestBodyRef{Value: body}
}

func htmlResponses() *openapi3.Responses {
	page := openapi3.NewResponse().WithDescription("Rendered page.")
	page.Content = openapi3.Content{mimeHTML: openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema())}
	return openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: page}))
}

func jsonResponses(schema *openapi3.SchemaRef) *openapi3.Responses {
	ok := openapi3.NewResponse().WithDescription("OK").WithContent(openapi3.NewContentWithJSONSchemaRef(schema))
	return openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: ok}))
}

func redirectResponses(problem *openapi3.SchemaRef, failures ...int) *openapi3.Responses {
	redirect := openapi3.NewResponse().WithDescription("Redirects back to the page.")
	options := []openapi3.NewResponsesOption{
		openapi3.WithStatus(http.StatusSeeOther, &openapi3.ResponseRef{Value: redirect}),
	}
	for _, status := range failures {
		failure := openapi3.NewResponse().WithDescription(http.StatusText(status))
		failure.Content = openapi3.Content{
			mimeHTML:           openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema()),
			"application/json": openapi3.NewMediaType().WithSchemaRef(problem),
		}
		options = append(options, openapi3.WithStatus(status, &openapi3.ResponseRef{Value: failure}))
	}
	return openapi3.NewResponses(options...)
}

func withJSON(responses *openapi3.Responses, schema *openapi3.SchemaRef) *openapi3.Responses {
	ok := openapi3.NewResponse().WithDescription("Snapshot after the change, for JSON clients.").
		WithContent(openapi3.NewContentWithJSONSchemaRef(schema))
	responses.Set("200", &openapi3.ResponseRef{Value: ok})
	return responses
}
