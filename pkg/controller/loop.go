package controller

import (
	"context"
	"fmt"

	"github.com/abhaystar2004/dynamic-form/pkg/store"
)

// CommandKind names a user action.
type CommandKind string

const (
	CommandSelect  CommandKind = "select"
	CommandChange  CommandKind = "change"
	CommandSubmit  CommandKind = "submit"
	CommandEdit    CommandKind = "edit"
	CommandDelete  CommandKind = "delete"
	CommandDismiss CommandKind = "dismiss"
)

// Command is a single user action addressed to the controller.
type Command struct {
	Kind     CommandKind `json:"kind"`
	FormType string      `json:"formType,omitempty"`
	Field    string      `json:"field,omitempty"`
	Value    string      `json:"value,omitempty"`
	Index    int         `json:"index,omitempty"`
	// EntryID, when set, addresses an edit or delete by entry ID and takes
	// precedence over Index.
	EntryID  string      `json:"entryId,omitempty"`
}

// SelectCommand builds a form type selection.
func SelectCommand(formType string) Command {
	return Command{Kind: CommandSelect, FormType: formType}
}

// ChangeCommand builds a field change.
func ChangeCommand(field, value string) Command {
	return Command{Kind: CommandChange, Field: field, Value: value}
}

// SubmitCommand builds a submission.
func SubmitCommand() Command {
	return Command{Kind: CommandSubmit}
}

// EditCommand builds an entry recall.
func EditCommand(index int) Command {
	return Command{Kind: CommandEdit, Index: index}
}

// DeleteCommand builds an entry removal.
func DeleteCommand(index int) Command {
	return Command{Kind: CommandDelete, Index: index}
}

// DismissCommand builds an early notification dismissal.
func DismissCommand() Command {
	return Command{Kind: CommandDismiss}
}

// Result is the outcome of an applied command. Entry is set only by a
// successful submit.
type Result struct {
	Snapshot Snapshot
	Entry    *store.Entry
	Err      error
}

type request struct {
	cmd   Command
	reply chan Result
}

// Apply runs cmd synchronously on the calling goroutine.
func (c *Controller) Apply(cmd Command) Result {
	var (
		snap Snapshot
		err  error
	)
	switch cmd.Kind {
	case CommandSelect:
		snap, err = c.SelectFormType(cmd.FormType)
	case CommandChange:
		snap, err = c.ChangeField(cmd.Field, cmd.Value)
	case CommandSubmit:
		var entry store.Entry
		snap, entry, err = c.Submit()
		if err == nil {
			return Result{Snapshot: snap, Entry: &entry}
		}
	case CommandEdit, CommandDelete:
		index, resolveErr := c.resolveIndex(cmd)
		if resolveErr != nil {
			return Result{Snapshot: c.Snapshot(), Err: resolveErr}
		}
		if cmd.Kind == CommandEdit {
			snap, err = c.Edit(index)
		} else {
			snap, err = c.Delete(index)
		}
	case CommandDismiss:
		snap = c.DismissNotification()
	default:
		return Result{Snapshot: c.Snapshot(), Err: fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)}
	}
	return Result{Snapshot: snap, Err: err}
}

func (c *Controller) resolveIndex(cmd Command) (int, error) {
	if cmd.EntryID == "" {
		return cmd.Index, nil
	}
	return c.EntryIndex(cmd.EntryID)
}

// Loop applies dispatched commands one at a time until ctx is cancelled.
// Only one Loop should run per controller; once it returns, Dispatch fails
// with ErrStopped.
func (c *Controller) Loop(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.stopped) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-c.commands:
			req.reply <- c.Apply(req.cmd)
		}
	}
}

// Dispatch hands cmd to the running Loop and waits for its result. It blocks
// until a Loop accepts the command, ctx is done, or the loop has stopped.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	req := request{cmd: cmd, reply: make(chan Result, 1)}
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-c.stopped:
		return Result{}, ErrStopped
	case c.commands <- req:
	}
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-req.reply:
		return res, nil
	}
}
