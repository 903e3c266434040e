package controller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/events"
	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/notify"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
	"github.com/abhaystar2004/dynamic-form/pkg/store"
)

var submittedAt = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type frozenTimer struct{}

func (frozenTimer) Stop() bool { return true }

// frozenClock never fires dismissal timers, so notifications stay visible for
// the duration of a test.
type frozenClock struct{}

func (frozenClock) Now() time.Time { return submittedAt }

func (frozenClock) AfterFunc(time.Duration, func()) notify.Timer { return frozenTimer{} }

func newController(t *testing.T, options ...controller.Option) *controller.Controller {
	t.Helper()
	base := []controller.Option{
		controller.WithNow(func() time.Time { return submittedAt }),
		controller.WithNotifyOptions(notify.WithClock(frozenClock{})),
	}
	c, err := controller.New(append(base, options...)...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func mustChange(t *testing.T, c *controller.Controller, name, value string) controller.Snapshot {
	t.Helper()
	snap, err := c.ChangeField(name, value)
	if err != nil {
		t.Fatalf("change %s: %v", name, err)
	}
	return snap
}

func mustSubmit(t *testing.T, c *controller.Controller) store.Entry {
	t.Helper()
	_, entry, err := c.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return entry
}

func TestNewStartsIdleOnFirstFormType(t *testing.T) {
	c := newController(t)
	snap := c.Snapshot()

	if snap.Phase != controller.PhaseIdle {
		t.Fatalf("phase = %q, want idle", snap.Phase)
	}
	if snap.FormType != "User Information" {
		t.Fatalf("form type = %q", snap.FormType)
	}
	want := []string{"User Information", "Address Information", "Payment Information"}
	if diff := cmp.Diff(want, snap.FormTypes); diff != "" {
		t.Fatalf("form types mismatch (-want +got):\n%s", diff)
	}
	if snap.Progress != 0 || len(snap.Values) != 0 || len(snap.Errors) != 0 {
		t.Fatalf("expected empty state, got %+v", snap)
	}
}

func TestNewRejectsUnknownInitialFormType(t *testing.T) {
	_, err := controller.New(controller.WithFormType("Shipping"))
	if !errors.Is(err, schema.ErrUnknownFormType) {
		t.Fatalf("expected ErrUnknownFormType, got %v", err)
	}
}

func TestSubmitUserInformation(t *testing.T) {
	c := newController(t)

	mustChange(t, c, "firstName", "Ada")
	snap := mustChange(t, c, "lastName", "Lovelace")
	if snap.Progress != 100 {
		t.Fatalf("progress = %v, want 100", snap.Progress)
	}
	if snap.Phase != controller.PhaseEditing {
		t.Fatalf("phase = %q, want editing", snap.Phase)
	}

	snap, entry, err := c.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Phase != controller.PhaseSubmitted {
		t.Fatalf("phase = %q, want submitted", snap.Phase)
	}

	wantFields := map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"formType":  "User Information",
	}
	if diff := cmp.Diff(wantFields, entry.Fields()); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].ID != entry.ID {
		t.Fatalf("store = %+v, want the submitted entry", snap.Entries)
	}
	if len(snap.Values) != 0 || len(snap.Errors) != 0 || snap.Progress != 0 {
		t.Fatalf("buffer not reset: %+v", snap)
	}
	if snap.Notification == nil || snap.Notification.Message != controller.MessageSubmitted {
		t.Fatalf("notification = %+v", snap.Notification)
	}
	if snap.Notification.Kind != notify.KindSuccess {
		t.Fatalf("notification kind = %q", snap.Notification.Kind)
	}
	if c.Snapshot().Phase != controller.PhaseIdle {
		t.Fatalf("controller should return to idle after submit")
	}
}

func TestSubmitRejectsMissingRequired(t *testing.T) {
	c := newController(t)
	mustChange(t, c, "lastName", "Lovelace")

	snap, _, err := c.Submit()
	if !errors.Is(err, controller.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var submitErr *controller.SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("expected *SubmitError, got %T", err)
	}

	wantErrs := model.ErrorSet{"firstName": "First Name is required"}
	if diff := cmp.Diff(wantErrs, submitErr.Errors); diff != "" {
		t.Fatalf("error set mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantErrs, snap.Errors); diff != "" {
		t.Fatalf("snapshot errors mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Entries) != 0 {
		t.Fatalf("store changed: %+v", snap.Entries)
	}
	wantValues := model.Buffer{"lastName": {Kind: model.ValueKindText, Raw: "Lovelace"}}
	if diff := cmp.Diff(wantValues, snap.Values); diff != "" {
		t.Fatalf("buffer changed (-want +got):\n%s", diff)
	}
	if snap.Notification == nil || snap.Notification.Message != controller.MessageMissingFields {
		t.Fatalf("notification = %+v", snap.Notification)
	}
	if snap.Notification.Kind != notify.KindError {
		t.Fatalf("notification kind = %q", snap.Notification.Kind)
	}

	snap = mustChange(t, c, "firstName", "Ada")
	if len(snap.Errors) != 0 {
		t.Fatalf("error should clear once the field is filled: %+v", snap.Errors)
	}
}

func TestChangeFieldFlagsClearedRequiredField(t *testing.T) {
	c := newController(t)
	mustChange(t, c, "firstName", "Ada")
	snap := mustChange(t, c, "firstName", "")

	want := model.ErrorSet{"firstName": "First Name is required"}
	if diff := cmp.Diff(want, snap.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if snap.Progress != 0 {
		t.Fatalf("progress = %v, want 0", snap.Progress)
	}
}

func TestChangeFieldRejectsBadInput(t *testing.T) {
	c := newController(t)
	mustChange(t, c, "firstName", "Ada")
	before := c.Snapshot()

	if _, err := c.ChangeField("age", "forty"); !errors.Is(err, model.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := c.ChangeField("street", "Main St"); !errors.Is(err, controller.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	after := c.Snapshot()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("state changed on rejected input (-want +got):\n%s", diff)
	}
}

func TestSelectFormTypeDiscardsBuffer(t *testing.T) {
	c := newController(t)
	mustChange(t, c, "firstName", "Ada")
	if _, _, err := c.Submit(); err == nil {
		t.Fatalf("expected validation failure")
	}

	snap, err := c.SelectFormType("Address Information")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if snap.FormType != "Address Information" || snap.Phase != controller.PhaseIdle {
		t.Fatalf("unexpected selection state: %q %q", snap.FormType, snap.Phase)
	}
	if len(snap.Values) != 0 || len(snap.Errors) != 0 || snap.Progress != 0 {
		t.Fatalf("state not reset: values=%v errors=%v progress=%v", snap.Values, snap.Errors, snap.Progress)
	}
	if got := len(snap.Schema.Fields); got != 4 {
		t.Fatalf("schema fields = %d, want 4", got)
	}
}

func TestSelectUnknownFormTypeKeepsState(t *testing.T) {
	c := newController(t)
	mustChange(t, c, "firstName", "Ada")
	before := c.Snapshot()

	if _, err := c.SelectFormType("Shipping Information"); !errors.Is(err, schema.ErrUnknownFormType) {
		t.Fatalf("expected ErrUnknownFormType, got %v", err)
	}
	if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func fillAddress(t *testing.T, c *controller.Controller, street string) store.Entry {
	t.Helper()
	if _, err := c.SelectFormType("Address Information"); err != nil {
		t.Fatalf("select: %v", err)
	}
	mustChange(t, c, "street", street)
	mustChange(t, c, "city", "Austin")
	mustChange(t, c, "state", "Texas")
	return mustSubmit(t, c)
}

func fillUser(t *testing.T, c *controller.Controller, first string) store.Entry {
	t.Helper()
	if _, err := c.SelectFormType("User Information"); err != nil {
		t.Fatalf("select: %v", err)
	}
	mustChange(t, c, "firstName", first)
	mustChange(t, c, "lastName", "Lovelace")
	mustChange(t, c, "age", "36")
	return mustSubmit(t, c)
}

func TestEditThenSubmitRoundTrips(t *testing.T) {
	c := newController(t)
	user := fillUser(t, c, "Ada")
	address := fillAddress(t, c, "1 Main St")

	snap, err := c.Edit(0)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if snap.FormType != "User Information" {
		t.Fatalf("form type = %q, want recalled entry's type", snap.FormType)
	}
	if diff := cmp.Diff(user.Values, snap.Values); diff != "" {
		t.Fatalf("recalled values mismatch (-want +got):\n%s", diff)
	}
	if snap.Progress != 100 || len(snap.Errors) != 0 {
		t.Fatalf("progress=%v errors=%v", snap.Progress, snap.Errors)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].ID != address.ID {
		t.Fatalf("recalled entry should leave the store: %+v", snap.Entries)
	}

	again := mustSubmit(t, c)
	if diff := cmp.Diff(user, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries := c.Snapshot().Entries
	if len(entries) != 2 {
		t.Fatalf("store length = %d, want 2", len(entries))
	}
	if diff := cmp.Diff([]store.Entry{address, user}, entries); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestEditShowsNoNotification(t *testing.T) {
	c := newController(t)
	fillUser(t, c, "Ada")
	c.DismissNotification()

	snap, err := c.Edit(0)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if snap.Notification != nil {
		t.Fatalf("unexpected notification %+v", snap.Notification)
	}
}

func TestSelectAfterEditDropsRecalledIdentity(t *testing.T) {
	c := newController(t)
	user := fillUser(t, c, "Ada")

	if _, err := c.Edit(0); err != nil {
		t.Fatalf("edit: %v", err)
	}
	again := fillUser(t, c, "Grace")
	if again.ID == user.ID {
		t.Fatalf("entry submitted after a form switch must get a new ID")
	}
}

func TestDeleteKeepsRelativeOrder(t *testing.T) {
	c := newController(t)
	first := fillUser(t, c, "Ada")
	second := fillAddress(t, c, "2 Elm St")
	third := fillUser(t, c, "Grace")

	snap, err := c.Delete(1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if diff := cmp.Diff([]store.Entry{first, third}, snap.Entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if snap.Notification == nil || snap.Notification.Message != controller.MessageDeleted {
		t.Fatalf("notification = %+v", snap.Notification)
	}
	_ = second
}

func TestEditAndDeleteRejectBadIndex(t *testing.T) {
	c := newController(t)
	fillUser(t, c, "Ada")
	before := c.Snapshot()

	for _, index := range []int{-1, 1, 7} {
		if _, err := c.Delete(index); !errors.Is(err, store.ErrIndexOutOfRange) {
			t.Fatalf("delete(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
		if _, err := c.Edit(index); !errors.Is(err, store.ErrIndexOutOfRange) {
			t.Fatalf("edit(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
	if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestZeroRequiredSchemaProgress(t *testing.T) {
	registry := schema.MustNewRegistry(model.FormSchema{
		Name: "Feedback",
		Fields: []model.Field{
			{Name: "comment", Kind: model.FieldKindText, Label: "Comment"},
		},
	})
	c := newController(t, controller.WithRegistry(registry))

	snap := mustChange(t, c, "comment", "great")
	if snap.Progress != 0 {
		t.Fatalf("progress = %v, want 0", snap.Progress)
	}
	if _, _, err := c.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) handle(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.EventType())
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

func TestTransitionsPublishEvents(t *testing.T) {
	bus := events.NewBus(nil)
	rec := &recorder{}
	bus.SubscribeAll(rec.handle)

	c := newController(t, controller.WithBus(bus))
	if _, _, err := c.Submit(); err == nil {
		t.Fatalf("expected validation failure")
	}
	mustChange(t, c, "firstName", "Ada")
	mustChange(t, c, "lastName", "Lovelace")
	mustSubmit(t, c)
	if _, err := c.Edit(0); err != nil {
		t.Fatalf("edit: %v", err)
	}
	mustSubmit(t, c)
	if _, err := c.Delete(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.SelectFormType("Payment Information"); err != nil {
		t.Fatalf("select: %v", err)
	}

	want := []string{
		events.TypeNotifyShown, events.TypeFormRejected,
		events.TypeFieldChanged, events.TypeFieldChanged,
		events.TypeNotifyShown, events.TypeFormSubmitted,
		events.TypeEntryRecalled,
		events.TypeNotifyShown, events.TypeFormSubmitted,
		events.TypeNotifyShown, events.TypeEntryDeleted,
		events.TypeFormSelected,
	}
	if diff := cmp.Diff(want, rec.snapshot()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestLoopAppliesDispatchedCommands(t *testing.T) {
	c := newController(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Loop(ctx) }()

	commands := []controller.Command{
		controller.SelectCommand("Payment Information"),
		controller.ChangeCommand("cardNumber", "4111111111111111"),
		controller.ChangeCommand("expiryDate", "2028-04-01"),
		controller.ChangeCommand("cvv", "123"),
		controller.ChangeCommand("cardholderName", "Ada Lovelace"),
	}
	for _, cmd := range commands {
		res, err := c.Dispatch(ctx, cmd)
		if err != nil {
			t.Fatalf("dispatch %s: %v", cmd.Kind, err)
		}
		if res.Err != nil {
			t.Fatalf("apply %s: %v", cmd.Kind, res.Err)
		}
	}

	res, err := c.Dispatch(ctx, controller.SubmitCommand())
	if err != nil || res.Err != nil {
		t.Fatalf("submit: %v / %v", err, res.Err)
	}
	if res.Entry == nil || res.Entry.FormType != "Payment Information" {
		t.Fatalf("entry = %+v", res.Entry)
	}

	res, err = c.Dispatch(ctx, controller.Command{Kind: "explode"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !errors.Is(res.Err, controller.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", res.Err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("loop returned %v", err)
	}
	_, err = c.Dispatch(ctx, controller.SubmitCommand())
	if !errors.Is(err, context.Canceled) && !errors.Is(err, controller.ErrStopped) {
		t.Fatalf("dispatch after cancel returned %v", err)
	}
}

func TestApplyAddressesEntryByID(t *testing.T) {
	c := newController(t)
	first := fillUser(t, c, "Ada")
	second := fillAddress(t, c, "2 Elm St")

	// Index 0 is stale: the entry ID wins.
	cmd := controller.DeleteCommand(0)
	cmd.EntryID = second.ID
	res := c.Apply(cmd)
	if res.Err != nil {
		t.Fatalf("delete: %v", res.Err)
	}
	if diff := cmp.Diff([]store.Entry{first}, res.Snapshot.Entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	cmd = controller.EditCommand(0)
	cmd.EntryID = second.ID
	res = c.Apply(cmd)
	if !errors.Is(res.Err, store.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for removed entry, got %v", res.Err)
	}
	if diff := cmp.Diff([]store.Entry{first}, res.Snapshot.Entries); diff != "" {
		t.Fatalf("entries changed on failed edit (-want +got):\n%s", diff)
	}

	index, err := c.EntryIndex(first.ID)
	if err != nil || index != 0 {
		t.Fatalf("EntryIndex(%q) = %d, %v", first.ID, index, err)
	}
}

func TestDispatchAfterLoopExitReturnsStopped(t *testing.T) {
	c := newController(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Loop(ctx) }()
	cancel()
	<-done

	result := make(chan error, 1)
	go func() {
		_, err := c.Dispatch(context.Background(), controller.SubmitCommand())
		result <- err
	}()
	select {
	case err := <-result:
		if !errors.Is(err, controller.ErrStopped) {
			t.Fatalf("expected ErrStopped, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked after loop exit")
	}
}
