package controller

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/abhaystar2004/dynamic-form/pkg/events"
	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/notify"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
	"github.com/abhaystar2004/dynamic-form/pkg/store"
	"github.com/abhaystar2004/dynamic-form/pkg/validation"
)

// Notification texts.
const (
	MessageMissingFields = "Please fill in all required fields"
	MessageSubmitted     = "Form submitted successfully!"
	MessageDeleted       = "Entry deleted successfully"
)

// Phase names the controller state.
type Phase string

const (
	// PhaseIdle holds a selected form type and an empty buffer.
	PhaseIdle Phase = "idle"
	// PhaseEditing holds user input or errors for the selected form type.
	PhaseEditing Phase = "editing"
	// PhaseSubmitted is reported only in the snapshot returned by a
	// successful Submit; the controller is back in PhaseIdle afterwards.
	PhaseSubmitted Phase = "submitted"
)

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Phase        Phase                `json:"phase"`
	FormType     string               `json:"formType"`
	FormTypes    []string             `json:"formTypes"`
	Schema       model.FormSchema     `json:"schema"`
	Values       model.Buffer         `json:"values"`
	Errors       model.ErrorSet       `json:"errors"`
	Progress     float64              `json:"progress"`
	Entries      []store.Entry        `json:"entries"`
	Notification *notify.Notification `json:"notification,omitempty"`

	// Schemas holds every registered schema by form type so entries of any
	// type can be laid out in field order.
	Schemas map[string]model.FormSchema `json:"-"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegistry sets the schema registry. Defaults to schema.Builtin().
func WithRegistry(registry *schema.Registry) Option {
	return func(c *Controller) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithFormType selects the initial form type. Defaults to the first one
// declared in the registry.
func WithFormType(formType string) Option {
	return func(c *Controller) {
		c.initial = formType
	}
}

// WithBus publishes domain events to bus.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithLogger sets the logger used for transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifyOptions forwards options to the controller's notifier.
func WithNotifyOptions(options ...notify.Option) Option {
	return func(c *Controller) {
		c.notifyOptions = append(c.notifyOptions, options...)
	}
}

// WithNow overrides the timestamp source for submitted entries.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller is the form state machine. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	registry      *schema.Registry
	notifier      *notify.Notifier
	notifyOptions []notify.Option
	bus           *events.Bus
	logger        *slog.Logger
	now           func() time.Time
	initial       string
	commands      chan request
	stopped       chan struct{}
	stopOnce      sync.Once

	phase    Phase
	schema   model.FormSchema
	buffer   model.Buffer
	errors   model.ErrorSet
	progress float64
	entries  store.Store
	// recalled keeps the ID of the entry moved into the buffer by Edit so a
	// resubmission reproduces the same entry.
	recalled string
}

// New constructs a controller in PhaseIdle on the initial form type.
func New(options ...Option) (*Controller, error) {
	c := &Controller{
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		commands: make(chan request),
		stopped:  make(chan struct{}),
		entries:  store.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.registry == nil {
		c.registry = schema.Builtin()
	}
	if c.initial == "" {
		c.initial = c.registry.Default()
	}

	initial, err := c.registry.Lookup(c.initial)
	if err != nil {
		return nil, fmt.Errorf("controller: initial form type: %w", err)
	}

	notifyOptions := append([]notify.Option{}, c.notifyOptions...)
	notifyOptions = append(notifyOptions, notify.WithListener(c.publishNotification))
	c.notifier = notify.New(notifyOptions...)

	c.resetLocked(initial)
	return c, nil
}

// Registry returns the schema registry the controller selects from.
func (c *Controller) Registry() *schema.Registry {
	return c.registry
}

// SelectFormType switches the active schema and discards the editing buffer,
// errors and progress. Unknown form types are rejected and leave the state
// untouched.
func (c *Controller) SelectFormType(formType string) (Snapshot, error) {
	next, err := c.registry.Lookup(formType)
	if err != nil {
		c.logger.Info("form type rejected", "formType", formType)
		return c.Snapshot(), err
	}

	c.mu.Lock()
	previous := c.schema.Name
	c.resetLocked(next)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("form type selected", "formType", formType, "previous", previous)
	c.publish(events.NewFormSelectedEvent(formType, previous))
	return snap, nil
}

// ChangeField stores raw as the value of name, re-validates that field and
// recomputes progress over the whole buffer.
func (c *Controller) ChangeField(name, raw string) (Snapshot, error) {
	c.mu.Lock()
	field, ok := c.schema.Field(name)
	if !ok {
		formType := c.schema.Name
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: %q in %s", ErrUnknownField, name, formType)
	}
	value, err := model.ParseValue(field, raw)
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("controller: %s: %w", name, err)
	}

	c.buffer[name] = value
	msg, failed := validation.ValidateField(field, value)
	if failed {
		c.errors[name] = msg
	} else {
		delete(c.errors, name)
	}
	c.progress = validation.ComputeProgress(c.schema, c.buffer)
	c.phase = PhaseEditing
	formType, progress := c.schema.Name, c.progress
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("field changed", "formType", formType, "field", name, "progress", progress)
	c.publish(events.NewFieldChangedEvent(formType, name, progress, !failed))
	return snap, nil
}

// Submit validates the whole buffer. On success the buffer is appended to the
// store as a new entry and cleared; otherwise the buffer is kept, every
// missing field is flagged and a *SubmitError is returned.
func (c *Controller) Submit() (Snapshot, store.Entry, error) {
	c.mu.Lock()
	formType := c.schema.Name
	errs := validation.ValidateAll(c.schema, c.buffer)
	if !errs.Empty() {
		c.errors = errs
		c.phase = PhaseEditing
		c.mu.Unlock()

		fields := make([]string, 0, len(errs))
		for name := range errs {
			fields = append(fields, name)
		}
		sort.Strings(fields)

		c.logger.Info("submission rejected", "formType", formType, "fields", fields)
		c.notifier.Show(MessageMissingFields, notify.KindError)
		c.publish(events.NewFormRejectedEvent(formType, fields))
		return c.Snapshot(), store.Entry{}, &SubmitError{FormType: formType, Errors: errs.Clone()}
	}

	entry := store.NewEntry(formType, c.buffer, c.now())
	if c.recalled != "" {
		entry.ID = c.recalled
	}
	c.entries = c.entries.Append(entry)
	total := c.entries.Len()
	c.resetLocked(c.schema)
	c.mu.Unlock()

	c.logger.Debug("form submitted", "formType", formType, "entry", entry.ID, "entries", total)
	c.notifier.Show(MessageSubmitted, notify.KindSuccess)
	c.publish(events.NewFormSubmittedEvent(formType, entry.ID, total))

	snap := c.Snapshot()
	snap.Phase = PhaseSubmitted
	return snap, entry, nil
}

// Edit removes the entry at index from the store, selects its form type and
// loads its values into the buffer. Errors are cleared and progress is
// recomputed against the recalled values. Whatever was in the buffer before
// is discarded.
func (c *Controller) Edit(index int) (Snapshot, error) {
	c.mu.Lock()
	entry, rest, err := c.entries.TakeAt(index)
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("controller: edit: %w", err)
	}
	recalled, err := c.registry.Lookup(entry.FormType)
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("controller: edit: %w", err)
	}

	previous := c.schema.Name
	c.entries = rest
	c.resetLocked(recalled)
	c.buffer = entry.Values.Clone()
	c.progress = validation.ComputeProgress(c.schema, c.buffer)
	c.phase = PhaseEditing
	c.recalled = entry.ID
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("entry recalled", "formType", entry.FormType, "entry", entry.ID, "index", index)
	if previous != entry.FormType {
		c.publish(events.NewFormSelectedEvent(entry.FormType, previous))
	}
	c.publish(events.NewEntryRecalledEvent(entry.FormType, entry.ID, index))
	return snap, nil
}

// Delete discards the entry at index. The remaining entries keep their
// relative order.
func (c *Controller) Delete(index int) (Snapshot, error) {
	c.mu.Lock()
	entry, rest, err := c.entries.TakeAt(index)
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("controller: delete: %w", err)
	}
	c.entries = rest
	total := rest.Len()
	c.mu.Unlock()

	c.logger.Debug("entry deleted", "formType", entry.FormType, "entry", entry.ID, "index", index)
	c.notifier.Show(MessageDeleted, notify.KindSuccess)
	c.publish(events.NewEntryDeletedEvent(entry.FormType, entry.ID, index, total))
	return c.Snapshot(), nil
}

// EntryIndex returns the current position of the entry with the given ID.
func (c *Controller) EntryIndex(id string) (int, error) {
	c.mu.Lock()
	index := c.entries.IndexOf(id)
	c.mu.Unlock()
	if index < 0 {
		return -1, fmt.Errorf("controller: entry %q: %w", id, store.ErrIndexOutOfRange)
	}
	return index, nil
}

// DismissNotification hides the visible notification early.
func (c *Controller) DismissNotification() Snapshot {
	c.notifier.Dismiss()
	return c.Snapshot()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:     c.phase,
		FormType:  c.schema.Name,
		FormTypes: c.registry.Names(),
		Schema:    c.schema.Clone(),
		Values:    c.buffer.Clone(),
		Errors:    c.errors.Clone(),
		Progress:  c.progress,
		Entries:   c.entries.Entries(),
		Schemas:   make(map[string]model.FormSchema, c.registry.Len()),
	}
	for _, registered := range c.registry.Schemas() {
		snap.Schemas[registered.Name] = registered
	}
	if note, ok := c.notifier.Current(); ok {
		snap.Notification = &note
	}
	return snap
}

func (c *Controller) resetLocked(next model.FormSchema) {
	c.schema = next
	c.buffer = make(model.Buffer)
	c.errors = make(model.ErrorSet)
	c.progress = 0
	c.phase = PhaseIdle
	c.recalled = ""
}

func (c *Controller) publish(event events.Event) {
	if c.bus != nil {
		c.bus.Publish(event)
	}
}

func (c *Controller) publishNotification(note notify.Notification, visible bool) {
	c.publish(events.NewNotificationEvent(note.Message, string(note.Kind), visible))
}
