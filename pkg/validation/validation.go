// Package validation implements the presence-based validation engine: per
// field error state and aggregate completion progress over a schema.
package validation

import (
	"fmt"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

// Issue is a single field error, ordered by schema position when produced by
// Issues.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequiredMessage formats the message reported for an empty required field.
func RequiredMessage(field model.Field) string {
	return fmt.Sprintf("%s is required", field.Label)
}

// ValidateField returns the error message for field given its current value.
// The only rule is presence: a required field must not be empty.
func ValidateField(field model.Field, value model.Value) (string, bool) {
	if field.Required && value.Empty() {
		return RequiredMessage(field), true
	}
	return "", false
}

// ValidateAll applies ValidateField to every descriptor in the schema. The
// result is derived from the buffer alone and never from previously computed
// error state. An empty set is returned as a non-nil map.
func ValidateAll(schema model.FormSchema, buffer model.Buffer) model.ErrorSet {
	errs := make(model.ErrorSet)
	for _, field := range schema.Fields {
		value, _ := buffer.Get(field.Name)
		if msg, failed := ValidateField(field, value); failed {
			errs[field.Name] = msg
		}
	}
	return errs
}

// ComputeProgress returns the percentage of required fields holding a
// non-empty value. A schema without required fields reports 0.
func ComputeProgress(schema model.FormSchema, buffer model.Buffer) float64 {
	total := schema.RequiredCount()
	if total == 0 {
		return 0
	}
	done := 0
	for _, field := range schema.Fields {
		if !field.Required {
			continue
		}
		if value, ok := buffer.Get(field.Name); ok && !value.Empty() {
			done++
		}
	}
	return float64(done) / float64(total) * 100
}

// Issues orders an error set by field position in the schema. Errors keyed by
// names the schema does not declare are dropped.
func Issues(schema model.FormSchema, errs model.ErrorSet) []Issue {
	if len(errs) == 0 {
		return nil
	}
	out := make([]Issue, 0, len(errs))
	for _, field := range schema.Fields {
		if msg, ok := errs[field.Name]; ok {
			out = append(out, Issue{Field: field.Name, Message: msg})
		}
	}
	return out
}
