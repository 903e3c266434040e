// Package store implements the submission store: an ordered, in-memory list
// of accepted form entries. Store is a value type; every mutation returns a
// new Store and leaves the receiver untouched, so callers can swap state
// atomically. Positional indexes are only stable until the next mutation.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

// ErrIndexOutOfRange is returned when an index does not address an entry.
var ErrIndexOutOfRange = errors.New("store: index out of range")

// Entry is an accepted submission: the editing buffer at submit time plus the
// form type it was submitted under.
type Entry struct {
	ID          string       `json:"id"`
	FormType    string       `json:"formType"`
	Values      model.Buffer `json:"values"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

// NewEntry snapshots values into an entry with a freshly generated ID.
func NewEntry(formType string, values model.Buffer, at time.Time) Entry {
	return Entry{
		ID:          uuid.NewString(),
		FormType:    formType,
		Values:      values.Clone(),
		SubmittedAt: at,
	}
}

// Fields flattens the entry for display: non-empty raw values keyed by field
// name plus the formType tag.
func (e Entry) Fields() map[string]string {
	out := e.Values.Strings()
	out["formType"] = e.FormType
	return out
}

func (e Entry) clone() Entry {
	e.Values = e.Values.Clone()
	return e
}

// Store is an ordered sequence of entries.
type Store struct {
	entries []Entry
}

// New returns a store holding the supplied entries in order.
func New(entries ...Entry) Store {
	s := Store{entries: make([]Entry, 0, len(entries))}
	for _, entry := range entries {
		s.entries = append(s.entries, entry.clone())
	}
	return s
}

// Len reports the number of stored entries.
func (s Store) Len() int {
	return len(s.entries)
}

// At returns a copy of the entry at index.
func (s Store) At(index int) (Entry, error) {
	if index < 0 || index >= len(s.entries) {
		return Entry{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.entries))
	}
	return s.entries[index].clone(), nil
}

// Entries returns copies of every entry in order.
func (s Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, entry := range s.entries {
		out[i] = entry.clone()
	}
	return out
}

// Append returns a store with entry added at the end.
func (s Store) Append(entry Entry) Store {
	next := make([]Entry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)
	return Store{entries: append(next, entry.clone())}
}

// RemoveAt returns a store without the entry at index. Remaining entries keep
// their relative order.
func (s Store) RemoveAt(index int) (Store, error) {
	_, next, err := s.TakeAt(index)
	return next, err
}

// TakeAt returns the entry at index together with a store that no longer
// holds it.
func (s Store) TakeAt(index int) (Entry, Store, error) {
	entry, err := s.At(index)
	if err != nil {
		return Entry{}, s, err
	}
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:index]...)
	next = append(next, s.entries[index+1:]...)
	return entry, Store{entries: next}, nil
}

// IndexOf returns the current position of the entry with id, or -1.
func (s Store) IndexOf(id string) int {
	for i, entry := range s.entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}
