// Package events holds the per-view listener registry for navigation and
// cookie notifications.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

// Listener receives the opaque event data.
type Listener func(data any)

type listener struct {
	id entity.ListenerID
	fn Listener
}

// Registry keeps an ordered list of listeners per event type.
type Registry struct {
	mu        sync.Mutex
	listeners map[entity.EventType][]*listener
	nextID    entity.ListenerID
	log       zerolog.Logger
}

// NewRegistry creates an empty registry. ctx carries the logger.
func NewRegistry(ctx context.Context) *Registry {
	return &Registry{
		listeners: make(map[entity.EventType][]*listener),
		log:       logging.Component(ctx, "events"),
	}
}

// Subscribe appends fn to the listeners of t and returns its handle.
// A nil fn is ignored and yields the zero ID.
func (r *Registry) Subscribe(t entity.EventType, fn Listener) entity.ListenerID {
	if fn == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	l := &listener{id: r.nextID, fn: fn}
	r.listeners[t] = append(r.listeners[t], l)
	return l.id
}

// Unsubscribe removes the listener with id from t. It reports whether a
// listener was removed; unknown types and ids are a no-op.
func (r *Registry) Unsubscribe(t entity.EventType, id entity.ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.listeners[t]
	for i, l := range list {
		if l.id != id {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(r.listeners, t)
		} else {
			r.listeners[t] = list
		}
		return true
	}
	return false
}

// Emit calls every listener of ev.Type in subscription order on the calling
// goroutine. Listeners added or removed during Emit take effect on the next
// event. A panicking listener is logged and the rest still run.
func (r *Registry) Emit(ev entity.Event) {
	r.mu.Lock()
	list := make([]*listener, len(r.listeners[ev.Type]))
	copy(list, r.listeners[ev.Type])
	r.mu.Unlock()

	for _, l := range list {
		r.call(ev, l)
	}
}

func (r *Registry) call(ev entity.Event, l *listener) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Str("event", string(ev.Type)).
				Uint64("listener", uint64(l.id)).
				Interface("panic", rec).
				Msg("event listener panicked")
		}
	}()
	l.fn(ev.Data)
}

// Count returns the number of listeners for t.
func (r *Registry) Count(t entity.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners[t])
}
