package content

import (
	"context"
	"sync"

	"go_polyseo/internal/model"
)

// EventKind names a content lifecycle transition.
type EventKind string

const (
	EventSaved       EventKind = "saved"
	EventTrashed     EventKind = "trashed"
	EventRestored    EventKind = "restored"
	EventDeleted     EventKind = "deleted"
	EventTermSaved   EventKind = "term_saved"
	EventTermDeleted EventKind = "term_deleted"
)

// Event describes one committed mutation. Before is nil for creations, After
// is nil for deletions. Addresses are computed with DefaultLanguage at the
// time of the mutation.
type Event struct {
	Kind            EventKind
	Before          *model.Content
	After           *model.Content
	BeforeAddress   string
	AfterAddress    string
	Term            *model.Term
	DefaultLanguage string
}

// ContentID returns the id of the item the event refers to.
func (e Event) ContentID() int {
	switch {
	case e.After != nil:
		return e.After.ID
	case e.Before != nil:
		return e.Before.ID
	}
	return 0
}

// ContentType returns the type of the item the event refers to.
func (e Event) ContentType() string {
	switch {
	case e.After != nil:
		return e.After.Type
	case e.Before != nil:
		return e.Before.Type
	}
	return ""
}

// Handler receives events synchronously, in subscription order.
type Handler interface {
	HandleContentEvent(ctx context.Context, ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event)

func (f HandlerFunc) HandleContentEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// Dispatcher fans events out to subscribers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers h for all subsequent events.
func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	d.handlers = append(d.handlers, h)
	d.mu.Unlock()
}

// Publish delivers ev to every subscriber before returning.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		h.HandleContentEvent(ctx, ev)
	}
}
