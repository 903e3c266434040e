package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/render"
	"github.com/abhaystar2004/dynamic-form/pkg/validation"
)

// UnselectedOption is the leading placeholder of dropdown prompts.
const UnselectedOption = "(unselected)"

// Menu actions, in the order they are offered.
const (
	ActionFill     = "Fill in fields"
	ActionSwitch   = "Change form type"
	ActionSubmit   = "Submit"
	ActionEdit     = "Edit an entry"
	ActionDelete   = "Delete an entry"
	ActionShow     = "Show form"
	ActionQuit     = "Quit"
	noEntriesInfo  = "No submitted entries."
	deleteQuestion = "Delete this entry?"
	keepSecretHelp = "Leave blank to keep the current value."
)

var menu = []string{ActionFill, ActionSwitch, ActionSubmit, ActionEdit, ActionDelete, ActionShow, ActionQuit}

// ChangeFunc receives the raw answer for a field.
type ChangeFunc func(name, value string) error

// Session drives a controller through interactive prompts.
type Session struct {
	ctrl   *controller.Controller
	driver PromptDriver
	out    io.Writer
	theme  Theme
	text   TextRenderer
	title  string
}

// NewSession binds a controller to a prompt driver.
func NewSession(ctrl *controller.Controller, options ...Option) (*Session, error) {
	if ctrl == nil {
		return nil, ErrNoController
	}
	s := &Session{
		ctrl:  ctrl,
		theme: DefaultTheme,
		text:  NewTextRenderer(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(s.out)
	}
	return s, nil
}

// Run shows the menu until the user quits. An interrupt ends the session with
// ErrAborted.
func (s *Session) Run(ctx context.Context) error {
	if err := s.show(ctx); err != nil {
		return err
	}
	for {
		idx, err := s.driver.Select(ctx, SelectConfig{Message: "What next?", Options: menu})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(menu) {
			continue
		}
		action := menu[idx]
		if action == ActionQuit {
			return nil
		}
		if err := s.perform(ctx, action); err != nil {
			return err
		}
	}
}

func (s *Session) perform(ctx context.Context, action string) error {
	switch action {
	case ActionFill:
		if err := s.Fill(ctx); err != nil {
			return err
		}
	case ActionSwitch:
		if err := s.SwitchFormType(ctx); err != nil {
			return err
		}
	case ActionSubmit:
		if err := s.Submit(ctx); err != nil {
			return err
		}
	case ActionEdit:
		if err := s.pickEntry(ctx, "Entry to edit", false); err != nil {
			return err
		}
	case ActionDelete:
		if err := s.pickEntry(ctx, "Entry to delete", true); err != nil {
			return err
		}
	}
	return s.show(ctx)
}

// Fill prompts for every field of the active schema in order.
func (s *Session) Fill(ctx context.Context) error {
	snap := s.ctrl.Snapshot()
	for _, field := range snap.Schema.Fields {
		current, _ := snap.Values.Get(field.Name)
		if err := s.PromptField(ctx, field, current, s.change); err != nil {
			return err
		}
	}
	return nil
}

// PromptField asks for one field and forwards the raw answer through
// onChange. Answers rejected with model.ErrInvalidValue are reported and the
// question is asked again.
func (s *Session) PromptField(ctx context.Context, field model.Field, current model.Value, onChange ChangeFunc) error {
	for {
		answer, err := s.ask(ctx, field, current)
		if err != nil {
			return err
		}
		if keepSecret(field, current, answer) {
			return nil
		}
		err = onChange(field.Name, answer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrInvalidValue) {
			return err
		}
		if infoErr := s.fail(ctx, err.Error()); infoErr != nil {
			return infoErr
		}
	}
}

func (s *Session) ask(ctx context.Context, field model.Field, current model.Value) (string, error) {
	message := field.Label
	if field.Required {
		message += " *"
	}
	switch field.Kind {
	case model.FieldKindDropdown:
		options := append([]string{UnselectedOption}, field.Choices...)
		defaultIdx := 0
		for i, choice := range field.Choices {
			if choice == current.Raw {
				defaultIdx = i + 1
			}
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         field.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if idx <= 0 || idx >= len(options) {
			return "", nil
		}
		return options[idx], nil
	case model.FieldKindPassword:
		help := field.Placeholder
		if !current.Empty() {
			help = keepSecretHelp
		}
		return s.driver.Password(ctx, InputConfig{
			Message:   message,
			Help:      help,
			Validator: fieldValidator(field),
		})
	default:
		return s.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   current.Raw,
			Help:      field.Placeholder,
			Validator: fieldValidator(field),
		})
	}
}

// keepSecret reports whether a blank answer to a secret prompt should leave
// the stored value alone. The prompt cannot show the current secret, so an
// empty answer means "unchanged" rather than "clear".
func keepSecret(field model.Field, current model.Value, answer string) bool {
	return field.Kind == model.FieldKindPassword && answer == "" && !current.Empty()
}

func fieldValidator(field model.Field) func(string) error {
	return func(raw string) error {
		_, err := model.ParseValue(field, raw)
		return err
	}
}

// SwitchFormType offers the registered form types.
func (s *Session) SwitchFormType(ctx context.Context) error {
	snap := s.ctrl.Snapshot()
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      "Form type",
		Options:      snap.FormTypes,
		DefaultIndex: indexOf(snap.FormTypes, snap.FormType),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(snap.FormTypes) {
		return nil
	}
	return s.apply(controller.SelectCommand(snap.FormTypes[idx]))
}

// Submit submits the buffer and lists missing fields on rejection.
func (s *Session) Submit(ctx context.Context) error {
	res := s.ctrl.Apply(controller.SubmitCommand())
	var submitErr *controller.SubmitError
	if errors.As(res.Err, &submitErr) {
		for _, issue := range validation.Issues(res.Snapshot.Schema, submitErr.Errors) {
			if err := s.fail(ctx, issue.Message); err != nil {
				return err
			}
		}
		return nil
	}
	return res.Err
}

func (s *Session) pickEntry(ctx context.Context, message string, remove bool) error {
	snap := s.ctrl.Snapshot()
	if len(snap.Entries) == 0 {
		return s.info(ctx, noEntriesInfo)
	}
	options := make([]string, len(snap.Entries))
	for i, entry := range snap.Entries {
		options[i] = fmt.Sprintf("%d. %s", i+1, EntrySummary(snap.Schemas[entry.FormType], entry))
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return nil
	}
	if !remove {
		return s.apply(controller.EditCommand(idx))
	}
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: deleteQuestion})
	if err != nil || !ok {
		return err
	}
	return s.apply(controller.DeleteCommand(idx))
}

func (s *Session) change(name, value string) error {
	return s.ctrl.Apply(controller.ChangeCommand(name, value)).Err
}

func (s *Session) apply(cmd controller.Command) error {
	return s.ctrl.Apply(cmd).Err
}

func (s *Session) show(ctx context.Context) error {
	out, err := s.text.Render(ctx, s.ctrl.Snapshot(), render.RenderOptions{Title: s.title})
	if err != nil {
		return err
	}
	return s.driver.Info(ctx, string(out))
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, prefixed(s.theme.InfoPrefix, msg))
}

func (s *Session) fail(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, prefixed(s.theme.ErrorPrefix, msg))
}

func prefixed(prefix, msg string) string {
	if prefix == "" {
		return msg
	}
	return prefix + " " + msg
}
