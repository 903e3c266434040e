package render

import (
	"strings"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

// ErrorMapping splits feedback into field-level and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// For returns the messages attached to a field.
func (m ErrorMapping) For(name string) []string {
	if m.Fields == nil {
		return nil
	}
	return m.Fields[name]
}

// First returns the first message attached to a field, or "".
func (m ErrorMapping) First(name string) string {
	if messages := m.For(name); len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors combines the controller error set with extra feedback. Keys may be
// bare field names or request paths such as "/body/firstName" or
// "payload.firstName"; keys that do not resolve to a schema field become
// form-level messages so nothing is lost.
func MapErrors(schema model.FormSchema, errs model.ErrorSet, extra map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}

	for _, field := range schema.Fields {
		if msg, ok := errs[field.Name]; ok {
			mapping.Fields[field.Name] = append(mapping.Fields[field.Name], msg)
		}
	}
	for key, msg := range errs {
		if _, ok := schema.Field(key); !ok {
			mapping.Form = append(mapping.Form, msg)
		}
	}

	for rawPath, messages := range extra {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		name, ok := resolveFieldName(schema, rawPath)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	for name, messages := range mapping.Fields {
		mapping.Fields[name] = normalizeMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func resolveFieldName(schema model.FormSchema, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	segments := dropWrapperSegments(parsePathSegments(trimmed))
	if len(segments) != 1 {
		return "", false
	}
	if _, ok := schema.Field(segments[0]); !ok {
		return "", false
	}
	return segments[0], true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
		"values":  {},
	}

	out := segments
	for len(out) > 1 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}
