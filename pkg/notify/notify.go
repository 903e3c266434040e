// Package notify implements the transient notification banner. Only one
// notification is visible at a time and each one dismisses itself after a
// fixed delay. Showing a new notification cancels the pending dismissal of the
// previous one, so a stale timer can never clear a newer banner.
package notify

import (
	"sync"
	"time"
)

// DefaultDismissAfter is the auto-dismiss delay used when none is configured.
const DefaultDismissAfter = 3 * time.Second

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single banner message.
type Notification struct {
	Seq     uint64    `json:"seq"`
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
	ShownAt time.Time `json:"shownAt"`
	Expires time.Time `json:"expires"`
}

// Remaining returns how long the notification stays visible after now.
func (n Notification) Remaining(now time.Time) time.Duration {
	if d := n.Expires.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so dismissal can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// Listener observes visibility changes. visible is false when a notification
// is dismissed.
type Listener func(n Notification, visible bool)

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock overrides the clock used for timestamps and dismissal timers.
func WithClock(clock Clock) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithDismissAfter overrides the auto-dismiss delay. Non-positive values are
// ignored.
func WithDismissAfter(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.delay = d
		}
	}
}

// WithListener registers a callback invoked after every show and dismiss.
func WithListener(fn Listener) Option {
	return func(n *Notifier) {
		if fn != nil {
			n.listeners = append(n.listeners, fn)
		}
	}
}

// Notifier holds the currently visible notification. It is safe for
// concurrent use; dismissal timers fire on their own goroutine.
type Notifier struct {
	mu        sync.Mutex
	clock     Clock
	delay     time.Duration
	current   *Notification
	seq       uint64
	timer     Timer
	listeners []Listener
}

// New constructs a Notifier with the system clock and a 3 second delay.
func New(options ...Option) *Notifier {
	n := &Notifier{
		clock: SystemClock(),
		delay: DefaultDismissAfter,
	}
	for _, opt := range options {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// DismissAfter reports the configured auto-dismiss delay.
func (n *Notifier) DismissAfter() time.Duration {
	return n.delay
}

// Show replaces the visible notification and schedules its dismissal.
func (n *Notifier) Show(message string, kind Kind) Notification {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.seq++
	seq := n.seq
	now := n.clock.Now()
	note := Notification{
		Seq:     seq,
		Message: message,
		Kind:    kind,
		ShownAt: now,
		Expires: now.Add(n.delay),
	}
	n.current = &note
	n.timer = n.clock.AfterFunc(n.delay, func() {
		n.expire(seq)
	})
	listeners := n.listeners
	n.mu.Unlock()

	notifyAll(listeners, note, true)
	return note
}

// Dismiss hides the visible notification early. It is a no-op when nothing
// is shown.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.current == nil {
		n.mu.Unlock()
		return
	}
	note, listeners := n.clearLocked()
	n.mu.Unlock()

	notifyAll(listeners, note, false)
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if n.current == nil || n.current.Seq != seq {
		n.mu.Unlock()
		return
	}
	note, listeners := n.clearLocked()
	n.mu.Unlock()

	notifyAll(listeners, note, false)
}

// clearLocked must be called with n.mu held and n.current set.
func (n *Notifier) clearLocked() (Notification, []Listener) {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	note := *n.current
	n.current = nil
	return note, n.listeners
}

func notifyAll(listeners []Listener, note Notification, visible bool) {
	for _, fn := range listeners {
		fn(note, visible)
	}
}
