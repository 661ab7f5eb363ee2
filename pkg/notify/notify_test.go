package notify

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/waterfall/pkg/errors"
)

func TestOnRegistersOnce(t *testing.T) {
	n := New()

	var calls []string
	if !n.On("done", func(*Notifier, ...any) { calls = append(calls, "first") }) {
		t.Fatal("first registration should succeed")
	}
	if n.On("done", func(*Notifier, ...any) { calls = append(calls, "second") }) {
		t.Error("second registration should be ignored")
	}

	if err := n.Emit("done"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if diff := cmp.Diff([]string{"first"}, calls); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitPassesArgsAndReceiver(t *testing.T) {
	n := New()

	var gotRecv *Notifier
	var gotArgs []any
	n.On("load", func(recv *Notifier, args ...any) {
		gotRecv = recv
		gotArgs = args
	})

	if err := n.Emit("load", 3, "cats"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if gotRecv != n {
		t.Error("handler receiver should be the emitting Notifier")
	}
	if diff := cmp.Diff([]any{3, "cats"}, gotArgs); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitIsSynchronous(t *testing.T) {
	n := New()
	done := false
	n.On("done", func(*Notifier, ...any) { done = true })

	_ = n.Emit("done")
	if !done {
		t.Error("handler should have run before Emit returned")
	}
}

func TestEmitUnregistered(t *testing.T) {
	n := New()
	err := n.Emit("missing")
	if err == nil {
		t.Fatal("Emit() on unregistered event should fail")
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestEmitNilHandler(t *testing.T) {
	n := New()
	n.On("noop", nil)
	if !n.Has("noop") {
		t.Fatal("nil handler should still occupy the slot")
	}
	if err := n.Emit("noop"); err != nil {
		t.Errorf("Emit() error = %v", err)
	}
}

func TestZeroValueNotifier(t *testing.T) {
	var n Notifier
	if n.Has("load") {
		t.Error("zero Notifier should have no handlers")
	}
	if !n.On("load", func(*Notifier, ...any) {}) {
		t.Error("zero Notifier should accept registrations")
	}
	if err := n.Emit("load"); err != nil {
		t.Errorf("Emit() error = %v", err)
	}
}
