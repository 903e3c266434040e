package validation_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
	"github.com/abhaystar2004/dynamic-form/pkg/validation"
)

func text(raw string) model.Value {
	return model.Value{Kind: model.ValueKindText, Raw: raw}
}

func userSchema(t *testing.T) model.FormSchema {
	t.Helper()
	s, err := schema.Builtin().Lookup("User Information")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	return s
}

func TestValidateField(t *testing.T) {
	first := model.Field{Name: "firstName", Kind: model.FieldKindText, Label: "First Name", Required: true}
	age := model.Field{Name: "age", Kind: model.FieldKindNumber, Label: "Age"}

	if msg, failed := validation.ValidateField(first, text("")); !failed || msg != "First Name is required" {
		t.Fatalf("expected required error, got %q (failed=%v)", msg, failed)
	}
	if _, failed := validation.ValidateField(first, text("Ada")); failed {
		t.Fatalf("filled required field must pass")
	}
	if _, failed := validation.ValidateField(age, model.Value{}); failed {
		t.Fatalf("optional field must pass when empty")
	}
}

func TestValidateAllMatchesRequiredPresence(t *testing.T) {
	s := userSchema(t)

	cases := []struct {
		name   string
		buffer model.Buffer
		want   model.ErrorSet
	}{
		{
			name:   "empty buffer",
			buffer: nil,
			want: model.ErrorSet{
				"firstName": "First Name is required",
				"lastName":  "Last Name is required",
			},
		},
		{
			name:   "first name missing",
			buffer: model.Buffer{"lastName": text("Lovelace"), "age": {Kind: model.ValueKindNumber, Raw: "36"}},
			want:   model.ErrorSet{"firstName": "First Name is required"},
		},
		{
			name:   "complete without optional",
			buffer: model.Buffer{"firstName": text("Ada"), "lastName": text("Lovelace")},
			want:   model.ErrorSet{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := validation.ValidateAll(s, tc.buffer)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeProgress(t *testing.T) {
	s := userSchema(t)

	cases := []struct {
		name   string
		buffer model.Buffer
		want   float64
	}{
		{name: "nothing", buffer: model.Buffer{}, want: 0},
		{name: "optional only", buffer: model.Buffer{"age": {Kind: model.ValueKindNumber, Raw: "3"}}, want: 0},
		{name: "half", buffer: model.Buffer{"firstName": text("Ada")}, want: 50},
		{name: "cleared value", buffer: model.Buffer{"firstName": text("Ada"), "lastName": text("")}, want: 50},
		{name: "all required", buffer: model.Buffer{"firstName": text("Ada"), "lastName": text("Lovelace")}, want: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validation.ComputeProgress(s, tc.buffer); got != tc.want {
				t.Fatalf("progress = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestComputeProgressWithoutRequiredFields(t *testing.T) {
	s := model.FormSchema{
		Name: "Optional",
		Fields: []model.Field{
			{Name: "note", Kind: model.FieldKindText, Label: "Note"},
		},
	}
	for _, buffer := range []model.Buffer{nil, {"note": text("x")}} {
		got := validation.ComputeProgress(s, buffer)
		if got != 0 || math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("progress = %v, want 0", got)
		}
	}
}

func TestComputeProgressStaysInRange(t *testing.T) {
	for _, s := range schema.Builtin().Schemas() {
		buffer := model.Buffer{}
		for _, field := range s.Fields {
			buffer[field.Name] = text("x")
			got := validation.ComputeProgress(s, buffer)
			if got < 0 || got > 100 || math.IsNaN(got) {
				t.Fatalf("%s: progress %v out of range", s.Name, got)
			}
		}
		if got := validation.ComputeProgress(s, buffer); got != 100 {
			t.Fatalf("%s: full buffer progress = %v", s.Name, got)
		}
		if errs := validation.ValidateAll(s, buffer); !errs.Empty() {
			t.Fatalf("%s: full buffer should validate, got %v", s.Name, errs)
		}
	}
}

func TestIssuesFollowSchemaOrder(t *testing.T) {
	s := userSchema(t)
	errs := model.ErrorSet{
		"lastName":  "Last Name is required",
		"firstName": "First Name is required",
		"ghost":     "dropped",
	}
	want := []validation.Issue{
		{Field: "firstName", Message: "First Name is required"},
		{Field: "lastName", Message: "Last Name is required"},
	}
	if diff := cmp.Diff(want, validation.Issues(s, errs)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}
