package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/openapi"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

func TestBuildBuiltinRegistryValidates(t *testing.T) {
	doc, err := openapi.Build(schema.Builtin(), openapi.WithTitle("Forms"), openapi.WithServerURL("http://localhost:8080"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := openapi.Validate(context.Background(), doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if doc.Info.Title != "Forms" {
		t.Fatalf("expected title override, got %q", doc.Info.Title)
	}

	wantPaths := []string{
		"/",
		"/api/forms",
		"/api/state",
		"/entries/{index}/delete",
		"/entries/{index}/edit",
		"/fields",
		"/form-type",
		"/notification/dismiss",
		"/submit",
	}
	if diff := cmp.Diff(wantPaths, doc.Paths.InMatchingOrder(), cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFormComponents(t *testing.T) {
	doc, err := openapi.Build(schema.Builtin())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	payment := doc.Components.Schemas["PaymentInformation"]
	if payment == nil || payment.Value == nil {
		t.Fatalf("expected PaymentInformation component, got %v", doc.Components.Schemas)
	}
	wantRequired := []string{"cardNumber", "expiryDate", "cvv", "cardholderName"}
	if diff := cmp.Diff(wantRequired, payment.Value.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if got := payment.Value.Properties["expiryDate"].Value.Format; got != "date" {
		t.Fatalf("expected date format, got %q", got)
	}
	if got := payment.Value.Properties["cvv"].Value.Format; got != "password" {
		t.Fatalf("expected password format, got %q", got)
	}

	address := doc.Components.Schemas["AddressInformation"].Value
	wantEnum := []any{"California", "Texas", "New York"}
	if diff := cmp.Diff(wantEnum, address.Properties["state"].Value.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}

	formTypes := doc.Components.Schemas["FormType"].Value
	wantTypes := []any{"User Information", "Address Information", "Payment Information"}
	if diff := cmp.Diff(wantTypes, formTypes.Enum); diff != "" {
		t.Fatalf("form types mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentRoundTripsThroughLoader(t *testing.T) {
	doc, err := openapi.Build(schema.Builtin())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loaded, err := openapi.Load(context.Background(), raw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Paths.Find("/submit") == nil {
		t.Fatalf("expected /submit path after reload")
	}
	submit := loaded.Paths.Find("/submit").Post
	oneOf := submit.RequestBody.Value.Content["application/x-www-form-urlencoded"].Schema.Value.OneOf
	if len(oneOf) != 3 {
		t.Fatalf("expected one alternative per form type, got %d", len(oneOf))
	}
	if got := oneOf[0].Ref; got != "#/components/schemas/UserInformation" {
		t.Fatalf("unexpected ref %q", got)
	}
}

func TestBuildRejectsNilRegistry(t *testing.T) {
	if _, err := openapi.Build(nil); !errors.Is(err, openapi.ErrNilRegistry) {
		t.Fatalf("expected ErrNilRegistry, got %v", err)
	}
}

func TestBuildRejectsCollidingComponents(t *testing.T) {
	field := model.Field{Name: "a", Kind: model.FieldKindText, Label: "A"}
	registry, err := schema.NewRegistry(
		model.FormSchema{Name: "Contact Info", Fields: []model.Field{field}},
		model.FormSchema{Name: "ContactInfo", Fields: []model.Field{field}},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if _, err := openapi.Build(registry); err == nil {
		t.Fatalf("expected collision error")
	}
}

func TestLoadRejectsEmptyPayload(t *testing.T) {
	if _, err := openapi.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"User Information": "UserInformation",
		"a/b c.d":          "abc.d",
		"   ":              "Form",
	}
	for input, want := range cases {
		if got := openapi.ComponentName(input); got != want {
			t.Errorf("ComponentName(%q) = %q, want %q", input, got, want)
		}
	}
}
