package controller

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

var (
	// ErrUnknownField is returned when a change targets a field the active
	// schema does not declare.
	ErrUnknownField = errors.New("controller: unknown field")
	// ErrValidation is wrapped by SubmitError.
	ErrValidation = errors.New("controller: validation failed")
	// ErrUnknownCommand is returned by Apply for an unrecognised command kind.
	ErrUnknownCommand = errors.New("controller: unknown command")
	// ErrStopped is returned by Dispatch once the command loop has exited.
	ErrStopped = errors.New("controller: command loop stopped")
)

// SubmitError reports a submission blocked by required fields.
type SubmitError struct {
	FormType string
	Errors   model.ErrorSet
}

func (e *SubmitError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fmt.Sprintf("controller: %s: missing required fields: %s", e.FormType, strings.Join(fields, ", "))
}

func (e *SubmitError) Unwrap() error {
	return ErrValidation
}
