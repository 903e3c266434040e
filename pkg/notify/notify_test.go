package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/abhaystar2004/dynamic-form/pkg/notify"
)

type fakeTimer struct {
	clock   *fakeClock
	due     time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) notify.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, due: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires every timer that became due, including
// stopped ones whose callbacks were already queued in a real runtime.
func (c *fakeClock) Advance(d time.Duration, fireStopped bool) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if t.fired || t.due.After(c.now) {
			continue
		}
		if t.stopped && !fireStopped {
			continue
		}
		t.fired = true
		due = append(due, t)
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func TestShowAutoDismissesAfterDelay(t *testing.T) {
	clock := newFakeClock()
	n := notify.New(notify.WithClock(clock))

	shown := n.Show("Form submitted successfully!", notify.KindSuccess)
	if shown.Expires.Sub(shown.ShownAt) != notify.DefaultDismissAfter {
		t.Fatalf("unexpected expiry window %v", shown.Expires.Sub(shown.ShownAt))
	}

	clock.Advance(2999*time.Millisecond, false)
	if _, ok := n.Current(); !ok {
		t.Fatalf("notification dismissed too early")
	}

	clock.Advance(time.Millisecond, false)
	if _, ok := n.Current(); ok {
		t.Fatalf("notification should be dismissed after 3s")
	}
}

func TestNewNotificationCancelsPreviousDismissal(t *testing.T) {
	clock := newFakeClock()
	n := notify.New(notify.WithClock(clock))

	n.Show("Please fill in all required fields", notify.KindError)
	clock.Advance(2*time.Second, false)
	second := n.Show("Form submitted successfully!", notify.KindSuccess)

	// Fire the first timer even though it was stopped, as if its callback had
	// already been scheduled when Stop ran.
	clock.Advance(time.Second, true)

	got, ok := n.Current()
	if !ok {
		t.Fatalf("stale dismissal cleared the newer notification")
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Fatalf("current mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(2*time.Second, false)
	if _, ok := n.Current(); ok {
		t.Fatalf("second notification should expire on its own schedule")
	}
}

func TestDismissAndListeners(t *testing.T) {
	clock := newFakeClock()
	var events []string
	n := notify.New(
		notify.WithClock(clock),
		notify.WithDismissAfter(time.Second),
		notify.WithListener(func(note notify.Notification, visible bool) {
			state := "hidden"
			if visible {
				state = "visible"
			}
			events = append(events, note.Message+":"+state)
		}),
	)

	n.Dismiss()
	n.Show("Entry deleted successfully", notify.KindSuccess)
	n.Dismiss()
	if _, ok := n.Current(); ok {
		t.Fatalf("expected no notification after dismiss")
	}
	clock.Advance(time.Second, false)

	want := []string{"Entry deleted successfully:visible", "Entry deleted successfully:hidden"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("listener events mismatch (-want +got):\n%s", diff)
	}
	if n.DismissAfter() != time.Second {
		t.Fatalf("dismiss delay = %v", n.DismissAfter())
	}
}

func TestRemaining(t *testing.T) {
	start := time.Unix(0, 0)
	note := notify.Notification{ShownAt: start, Expires: start.Add(3 * time.Second)}
	if got := note.Remaining(start.Add(time.Second)); got != 2*time.Second {
		t.Fatalf("remaining = %v", got)
	}
	if got := note.Remaining(start.Add(5 * time.Second)); got != 0 {
		t.Fatalf("remaining after expiry = %v", got)
	}
}
