package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats.
func ValidLogFormats() []string {
	return []string{"json", "text"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateNotify()...)
	errors = append(errors, c.validateLogging()...)
	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Server.Addr) == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must not be empty",
		})
	}
	durations := []struct {
		field string
		value time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"server.session_ttl", c.Server.SessionTTL},
	}
	for _, d := range durations {
		if d.value < 0 {
			errors = append(errors, ValidationError{
				Field:   d.field,
				Value:   d.value,
				Message: "must be non-negative",
			})
		}
	}
	return errors
}

func (c *Config) validateNotify() []ValidationError {
	if c.Notify.DismissAfter > 0 {
		return nil
	}
	return []ValidationError{{
		Field:   "notify.dismiss_after",
		Value:   c.Notify.DismissAfter,
		Message: "must be positive",
	}}
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if level := strings.ToLower(c.Logging.Level); level != "" && !slices.Contains(ValidLogLevels(), level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if format := strings.ToLower(c.Logging.Format); format != "" && !slices.Contains(ValidLogFormats(), format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}
	return errors
}
