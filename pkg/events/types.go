package events

import "time"

// Event types use the "category.action" convention.
const (
	TypeFormSelected  = "form.selected"
	TypeFieldChanged  = "field.changed"
	TypeFormSubmitted = "form.submitted"
	TypeFormRejected  = "form.rejected"
	TypeEntryRecalled = "entry.recalled"
	TypeEntryDeleted  = "entry.deleted"
	TypeNotifyShown   = "notification.shown"
	TypeNotifyCleared = "notification.cleared"
)

// Event is implemented by every published event.
type Event interface {
	EventType() string
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// FormSelectedEvent is emitted when the active form type changes.
type FormSelectedEvent struct {
	baseEvent
	FormType string
	Previous string
}

// NewFormSelectedEvent creates a FormSelectedEvent.
func NewFormSelectedEvent(formType, previous string) FormSelectedEvent {
	return FormSelectedEvent{
		baseEvent: newBaseEvent(TypeFormSelected),
		FormType:  formType,
		Previous:  previous,
	}
}

// FieldChangedEvent is emitted after a field value is stored.
type FieldChangedEvent struct {
	baseEvent
	FormType string
	Field    string
	Progress float64
	Valid    bool
}

// NewFieldChangedEvent creates a FieldChangedEvent.
func NewFieldChangedEvent(formType, field string, progress float64, valid bool) FieldChangedEvent {
	return FieldChangedEvent{
		baseEvent: newBaseEvent(TypeFieldChanged),
		FormType:  formType,
		Field:     field,
		Progress:  progress,
		Valid:     valid,
	}
}

// FormSubmittedEvent is emitted when an entry is appended to the store.
type FormSubmittedEvent struct {
	baseEvent
	FormType string
	EntryID  string
	Entries  int
}

// NewFormSubmittedEvent creates a FormSubmittedEvent.
func NewFormSubmittedEvent(formType, entryID string, entries int) FormSubmittedEvent {
	return FormSubmittedEvent{
		baseEvent: newBaseEvent(TypeFormSubmitted),
		FormType:  formType,
		EntryID:   entryID,
		Entries:   entries,
	}
}

// FormRejectedEvent is emitted when submission is blocked by validation.
type FormRejectedEvent struct {
	baseEvent
	FormType string
	Fields   []string
}

// NewFormRejectedEvent creates a FormRejectedEvent.
func NewFormRejectedEvent(formType string, fields []string) FormRejectedEvent {
	return FormRejectedEvent{
		baseEvent: newBaseEvent(TypeFormRejected),
		FormType:  formType,
		Fields:    fields,
	}
}

// EntryRecalledEvent is emitted when an entry moves back into the editing
// buffer.
type EntryRecalledEvent struct {
	baseEvent
	FormType string
	EntryID  string
	Index    int
}

// NewEntryRecalledEvent creates an EntryRecalledEvent.
func NewEntryRecalledEvent(formType, entryID string, index int) EntryRecalledEvent {
	return EntryRecalledEvent{
		baseEvent: newBaseEvent(TypeEntryRecalled),
		FormType:  formType,
		EntryID:   entryID,
		Index:     index,
	}
}

// EntryDeletedEvent is emitted when an entry is discarded.
type EntryDeletedEvent struct {
	baseEvent
	FormType string
	EntryID  string
	Index    int
	Entries  int
}

// NewEntryDeletedEvent creates an EntryDeletedEvent.
func NewEntryDeletedEvent(formType, entryID string, index, entries int) EntryDeletedEvent {
	return EntryDeletedEvent{
		baseEvent: newBaseEvent(TypeEntryDeleted),
		FormType:  formType,
		EntryID:   entryID,
		Index:     index,
		Entries:   entries,
	}
}

// NotificationEvent is emitted when the banner is shown or cleared.
type NotificationEvent struct {
	baseEvent
	Message string
	Kind    string
}

// NewNotificationEvent creates a NotificationEvent; visible selects between
// the shown and cleared types.
func NewNotificationEvent(message, kind string, visible bool) NotificationEvent {
	eventType := TypeNotifyCleared
	if visible {
		eventType = TypeNotifyShown
	}
	return NotificationEvent{
		baseEvent: newBaseEvent(eventType),
		Message:   message,
		Kind:      kind,
	}
}
