package bridge

import (
	"sort"
	"sync"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// Registry maps binding names to handlers. Changes are visible to the next
// Resolve.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Bind registers h under name, replacing any previous handler.
func (r *Registry) Bind(name string, h Handler) error {
	if name == "" {
		return ErrEmptyName
	}
	if h == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
	return nil
}

// Unbind removes name and reports whether it was bound.
func (r *Registry) Unbind(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[name]; !ok {
		return false
	}
	delete(r.handlers, name)
	return true
}

// Resolve looks up the handler bound to name.
func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the bound names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Describe lists the bindings with their parameter schemas, sorted by name.
func (r *Registry) Describe() []entity.BindingInfo {
	r.mu.RLock()
	infos := make([]entity.BindingInfo, 0, len(r.handlers))
	for name, h := range r.handlers {
		infos = append(infos, entity.BindingInfo{Name: name, Params: h.Schema()})
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
