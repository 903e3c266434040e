package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

// ErrUnknownFormType is returned when a lookup names a form type that is not
// registered.
var ErrUnknownFormType = errors.New("schema: unknown form type")

// Registry maps form-type names to schemas, preserving declaration order.
type Registry struct {
	order   []string
	schemas map[string]model.FormSchema
}

// NewRegistry validates and registers the supplied schemas. Duplicate names
// and structurally invalid schemas are rejected.
func NewRegistry(schemas ...model.FormSchema) (*Registry, error) {
	reg := &Registry{
		order:   make([]string, 0, len(schemas)),
		schemas: make(map[string]model.FormSchema, len(schemas)),
	}
	for _, s := range schemas {
		s.Name = strings.TrimSpace(s.Name)
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		if _, exists := reg.schemas[s.Name]; exists {
			return nil, fmt.Errorf("schema: form type %q registered more than once", s.Name)
		}
		reg.order = append(reg.order, s.Name)
		reg.schemas[s.Name] = s.Clone()
	}
	return reg, nil
}

// MustNewRegistry panics on registration failure. Useful for init-time wiring.
func MustNewRegistry(schemas ...model.FormSchema) *Registry {
	reg, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup returns a copy of the schema registered under formType.
func (r *Registry) Lookup(formType string) (model.FormSchema, error) {
	if r == nil {
		return model.FormSchema{}, fmt.Errorf("%w: %q", ErrUnknownFormType, formType)
	}
	s, ok := r.schemas[formType]
	if !ok {
		return model.FormSchema{}, fmt.Errorf("%w: %q", ErrUnknownFormType, formType)
	}
	return s.Clone(), nil
}

// Has reports whether formType is registered.
func (r *Registry) Has(formType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.schemas[formType]
	return ok
}

// Names returns the registered form types in declaration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Default returns the first declared form type, or "" for an empty registry.
func (r *Registry) Default() string {
	if r == nil || len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// Schemas returns copies of every schema in declaration order.
func (r *Registry) Schemas() []model.FormSchema {
	if r == nil {
		return nil
	}
	out := make([]model.FormSchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name].Clone())
	}
	return out
}

// Len reports how many form types are registered.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
