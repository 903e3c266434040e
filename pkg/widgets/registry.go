package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

// Built-in widget identifiers exposed by the registry. Each maps onto one
// control template in the HTML renderer.
const (
	WidgetInput    = "input"
	WidgetNumber   = "number"
	WidgetDate     = "date"
	WidgetPassword = "password"
	WidgetSelect   = "select"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit overrides or
// registered matchers. Higher priority wins; ties fall back to registration
// order. Fields no matcher accepts resolve to WidgetInput.
type Registry struct {
	mu        sync.RWMutex
	rules     []rule
	overrides map[string]string
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Override pins the widget for a field. key is either a bare field name or
// "<form type>.<field name>"; the qualified form wins.
func (r *Registry) Override(key, widget string) {
	if r == nil {
		return
	}
	key, widget = strings.TrimSpace(key), strings.TrimSpace(widget)
	if key == "" || widget == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overrides == nil {
		r.overrides = make(map[string]string)
	}
	r.overrides[key] = widget
}

// Resolve returns the widget name for a field of formType.
func (r *Registry) Resolve(formType string, field model.Field) string {
	if r == nil {
		return WidgetInput
	}
	r.mu.RLock()
	if widget := r.overrides[formType+"."+field.Name]; widget != "" {
		r.mu.RUnlock()
		return widget
	}
	if widget := r.overrides[field.Name]; widget != "" {
		r.mu.RUnlock()
		return widget
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name
		}
	}
	return WidgetInput
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSelect, 90, func(field model.Field) bool {
		return field.Kind == model.FieldKindDropdown || len(field.Choices) > 0
	})
	r.Register(WidgetPassword, 80, func(field model.Field) bool {
		return field.Kind == model.FieldKindPassword
	})
	r.Register(WidgetDate, 70, func(field model.Field) bool {
		return field.Kind == model.FieldKindDate
	})
	r.Register(WidgetNumber, 60, func(field model.Field) bool {
		return field.Kind == model.FieldKindNumber
	})
}
