package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

func TestFormSchemaValidate(t *testing.T) {
	cases := []struct {
		name    string
		schema  model.FormSchema
		wantErr string
	}{
		{
			name: "valid",
			schema: model.FormSchema{
				Name: "Address Information",
				Fields: []model.Field{
					{Name: "street", Kind: model.FieldKindText, Label: "Street", Required: true},
					{Name: "state", Kind: model.FieldKindDropdown, Label: "State", Choices: []string{"California", "Texas"}},
				},
			},
		},
		{
			name:    "missing name",
			schema:  model.FormSchema{},
			wantErr: "form schema name is required",
		},
		{
			name: "duplicate field",
			schema: model.FormSchema{
				Name: "dup",
				Fields: []model.Field{
					{Name: "a", Kind: model.FieldKindText},
					{Name: "a", Kind: model.FieldKindNumber},
				},
			},
			wantErr: `declares field "a" more than once`,
		},
		{
			name: "unknown kind",
			schema: model.FormSchema{
				Name:   "kinds",
				Fields: []model.Field{{Name: "a", Kind: "checkbox"}},
			},
			wantErr: `unknown type "checkbox"`,
		},
		{
			name: "dropdown without options",
			schema: model.FormSchema{
				Name:   "choices",
				Fields: []model.Field{{Name: "state", Kind: model.FieldKindDropdown}},
			},
			wantErr: "has no options",
		},
		{
			name: "options on text field",
			schema: model.FormSchema{
				Name:   "choices",
				Fields: []model.Field{{Name: "city", Kind: model.FieldKindText, Choices: []string{"x"}}},
			},
			wantErr: "is not a dropdown",
		},
		{
			name: "repeated option",
			schema: model.FormSchema{
				Name:   "choices",
				Fields: []model.Field{{Name: "state", Kind: model.FieldKindDropdown, Choices: []string{"x", "x"}}},
			},
			wantErr: `repeats option "x"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schema.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	state := model.Field{Name: "state", Kind: model.FieldKindDropdown, Label: "State", Choices: []string{"California", "Texas"}}
	age := model.Field{Name: "age", Kind: model.FieldKindNumber, Label: "Age"}
	expiry := model.Field{Name: "expiryDate", Kind: model.FieldKindDate, Label: "Expiry Date"}
	cvv := model.Field{Name: "cvv", Kind: model.FieldKindPassword, Label: "CVV"}

	cases := []struct {
		name    string
		field   model.Field
		raw     string
		want    model.Value
		invalid bool
	}{
		{name: "empty always accepted", field: age, raw: "", want: model.Value{Kind: model.ValueKindNumber}},
		{name: "number", field: age, raw: "36", want: model.Value{Kind: model.ValueKindNumber, Raw: "36"}},
		{name: "number rejects text", field: age, raw: "thirty", invalid: true},
		{name: "number rejects NaN", field: age, raw: "NaN", invalid: true},
		{name: "number rejects infinity", field: age, raw: "Inf", invalid: true},
		{name: "number rejects negative infinity", field: age, raw: "-Infinity", invalid: true},
		{name: "choice", field: state, raw: "Texas", want: model.Value{Kind: model.ValueKindChoice, Raw: "Texas"}},
		{name: "choice rejects unknown", field: state, raw: "Ohio", invalid: true},
		{name: "date", field: expiry, raw: "2027-04-30", want: model.Value{Kind: model.ValueKindText, Raw: "2027-04-30"}},
		{name: "date rejects other layouts", field: expiry, raw: "04/27", invalid: true},
		{name: "secret kept verbatim", field: cvv, raw: " 123 ", want: model.Value{Kind: model.ValueKindText, Raw: " 123 "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := model.ParseValue(tc.field, tc.raw)
			if tc.invalid {
				if !errors.Is(err, model.ErrInvalidValue) {
					t.Fatalf("expected ErrInvalidValue, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse value: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBufferStringsDropsEmptyValues(t *testing.T) {
	buffer := model.Buffer{
		"firstName": {Kind: model.ValueKindText, Raw: "Ada"},
		"age":       {Kind: model.ValueKindNumber},
	}
	want := map[string]string{"firstName": "Ada"}
	if diff := cmp.Diff(want, buffer.Strings()); diff != "" {
		t.Fatalf("strings mismatch (-want +got):\n%s", diff)
	}

	clone := buffer.Clone()
	clone["firstName"] = model.Value{Kind: model.ValueKindText, Raw: "Grace"}
	if buffer.Text("firstName") != "Ada" {
		t.Fatalf("clone mutated the original buffer")
	}
}
