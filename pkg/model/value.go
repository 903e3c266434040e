package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind tags the variant stored in a Value.
type ValueKind string

const (
	ValueKindText   ValueKind = "text"
	ValueKindNumber ValueKind = "number"
	ValueKindChoice ValueKind = "choice"
)

// DateLayout is the wire layout accepted for date fields.
const DateLayout = "2006-01-02"

// ErrInvalidValue is returned when raw input does not fit the field kind.
var ErrInvalidValue = errors.New("model: invalid value")

// Value is a tagged field value. Raw keeps the exact text the user entered so
// that presence checks and re-rendering never see a coerced representation.
type Value struct {
	Kind ValueKind `json:"kind"`
	Raw  string    `json:"raw"`
}

// Empty reports whether the value carries no input.
func (v Value) Empty() bool {
	return v.Raw == ""
}

// parseFinite parses raw as a float and rejects NaN and infinities, which
// strconv accepts by name.
func parseFinite(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// String returns the raw text.
func (v Value) String() string {
	return v.Raw
}

// ValueKindFor maps a field kind onto the variant used to store its values.
func ValueKindFor(kind FieldKind) ValueKind {
	switch kind {
	case FieldKindNumber:
		return ValueKindNumber
	case FieldKindDropdown:
		return ValueKindChoice
	default:
		return ValueKindText
	}
}

// ParseValue checks raw input against the descriptor and returns the tagged
// value to store in the editing buffer. Empty input is always accepted since
// it clears the field; required-ness is the validation engine's concern.
func ParseValue(field Field, raw string) (Value, error) {
	value := Value{Kind: ValueKindFor(field.Kind), Raw: raw}
	if raw == "" {
		return value, nil
	}

	switch field.Kind {
	case FieldKindNumber:
		if _, ok := parseFinite(raw); !ok {
			return Value{}, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, field.Label)
		}
	case FieldKindDropdown:
		if !field.HasChoice(raw) {
			return Value{}, fmt.Errorf("%w: %q is not an option for %s", ErrInvalidValue, raw, field.Label)
		}
	case FieldKindDate:
		if _, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err != nil {
			return Value{}, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", ErrInvalidValue, field.Label)
		}
	}
	return value, nil
}

// Buffer is the editing buffer: field name to current value.
type Buffer map[string]Value

// Get returns the value stored for name.
func (b Buffer) Get(name string) (Value, bool) {
	if b == nil {
		return Value{}, false
	}
	v, ok := b[name]
	return v, ok
}

// Text returns the raw text for name, or "" when unset.
func (b Buffer) Text(name string) string {
	v, _ := b.Get(name)
	return v.Raw
}

// Clone returns a copy of the buffer. A nil buffer clones to an empty one.
func (b Buffer) Clone() Buffer {
	out := make(Buffer, len(b))
	for key, value := range b {
		out[key] = value
	}
	return out
}

// Strings flattens the buffer into raw text values, dropping empty entries.
func (b Buffer) Strings() map[string]string {
	out := make(map[string]string, len(b))
	for key, value := range b {
		if value.Empty() {
			continue
		}
		out[key] = value.Raw
	}
	return out
}
