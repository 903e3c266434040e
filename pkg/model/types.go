package model

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind enumerates the input kinds a form field can take. The string
// values mirror the HTML input types used by the vanilla renderer.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindNumber   FieldKind = "number"
	FieldKindDropdown FieldKind = "dropdown"
	FieldKindDate     FieldKind = "date"
	FieldKindPassword FieldKind = "password"
)

// Valid reports whether the kind is one of the known field kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldKindText, FieldKindNumber, FieldKindDropdown, FieldKindDate, FieldKindPassword:
		return true
	default:
		return false
	}
}

// Field describes a single input inside a form schema. Choices is only
// populated for dropdown fields. Description may carry limited HTML; renderers
// are expected to sanitise it.
type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Kind        FieldKind `json:"type" yaml:"type"`
	Label       string    `json:"label" yaml:"label"`
	Required    bool      `json:"required" yaml:"required"`
	Choices     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasChoice reports whether value is one of the field's choices.
func (f Field) HasChoice(value string) bool {
	for _, choice := range f.Choices {
		if choice == value {
			return true
		}
	}
	return false
}

// FormSchema is the ordered field list for a single form type.
type FormSchema struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field returns the descriptor registered under name.
func (s FormSchema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// RequiredCount returns the number of required fields in the schema.
func (s FormSchema) RequiredCount() int {
	count := 0
	for _, field := range s.Fields {
		if field.Required {
			count++
		}
	}
	return count
}

// Clone returns a deep copy so registry consumers cannot mutate shared
// descriptors.
func (s FormSchema) Clone() FormSchema {
	out := FormSchema{
		Name:        s.Name,
		Description: s.Description,
		Fields:      make([]Field, len(s.Fields)),
	}
	for i, field := range s.Fields {
		field.Choices = append([]string(nil), field.Choices...)
		out.Fields[i] = field
	}
	return out
}

var (
	errSchemaNameMissing = errors.New("model: form schema name is required")
	errFieldNameMissing  = errors.New("model: field name is required")
)

// Validate checks the structural invariants of a schema: a name, unique
// non-empty field names, known kinds, and choices present only (and always)
// for dropdown fields.
func (s FormSchema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errSchemaNameMissing
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for idx, field := range s.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("%w (schema %q, position %d)", errFieldNameMissing, s.Name, idx)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("model: schema %q declares field %q more than once", s.Name, name)
		}
		seen[name] = struct{}{}

		if !field.Kind.Valid() {
			return fmt.Errorf("model: field %q in schema %q has unknown type %q", name, s.Name, field.Kind)
		}
		if field.Kind == FieldKindDropdown {
			if len(field.Choices) == 0 {
				return fmt.Errorf("model: dropdown field %q in schema %q has no options", name, s.Name)
			}
			choices := make(map[string]struct{}, len(field.Choices))
			for _, choice := range field.Choices {
				if _, dup := choices[choice]; dup {
					return fmt.Errorf("model: dropdown field %q in schema %q repeats option %q", name, s.Name, choice)
				}
				choices[choice] = struct{}{}
			}
		} else if len(field.Choices) > 0 {
			return fmt.Errorf("model: field %q in schema %q declares options but is not a dropdown", name, s.Name)
		}
	}
	return nil
}

// ErrorSet maps field names to human readable validation messages.
type ErrorSet map[string]string

// Empty reports whether the set holds no errors.
func (e ErrorSet) Empty() bool {
	return len(e) == 0
}

// Clone returns a copy of the set; nil stays nil.
func (e ErrorSet) Clone() ErrorSet {
	if e == nil {
		return nil
	}
	out := make(ErrorSet, len(e))
	for key, value := range e {
		out[key] = value
	}
	return out
}
