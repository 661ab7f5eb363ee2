// Package notify provides a minimal publish/subscribe utility with a single
// handler slot per event name.
//
// It is deliberately not a general event bus: the first handler registered
// for an event owns it for the Notifier's lifetime, and later registrations
// for the same name are ignored without error. The masonry engine uses it
// to decouple "more items are needed" from "a batch is ready to place".
//
//	n := notify.New()
//	n.On("load", func(n *notify.Notifier, args ...any) { fetchMore() })
//	_ = n.Emit("load")
package notify

import (
	"github.com/matzehuels/waterfall/pkg/errors"
)

// Handler is invoked synchronously by Emit. The Notifier that dispatched the
// event is passed as the receiver, followed by the emitted arguments.
type Handler func(n *Notifier, args ...any)

// Notifier dispatches named events to at most one handler each.
// It is not safe for concurrent use.
type Notifier struct {
	handlers map[string]Handler
}

// New returns an empty Notifier.
func New() *Notifier {
	return &Notifier{handlers: make(map[string]Handler)}
}

// On registers h for event. If event already has a handler the call is a
// no-op and On reports false; the existing handler is kept.
func (n *Notifier) On(event string, h Handler) bool {
	if _, ok := n.handlers[event]; ok {
		return false
	}
	if n.handlers == nil {
		n.handlers = make(map[string]Handler)
	}
	n.handlers[event] = h
	return true
}

// Has reports whether a handler is registered for event.
func (n *Notifier) Has(event string) bool {
	_, ok := n.handlers[event]
	return ok
}

// Emit invokes the handler registered for event with args and returns once
// it has finished. Emitting an event nobody registered is a caller error and
// yields a NOT_FOUND error.
func (n *Notifier) Emit(event string, args ...any) error {
	h, ok := n.handlers[event]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no handler registered for event %q", event)
	}
	if h != nil {
		h(n, args...)
	}
	return nil
}
