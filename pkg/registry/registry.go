// Package registry implements the domain-handler directory: a name→handler
// map with thread-safe registration and O(1) lookup, the extensibility
// surface that lets CDP domains be added without touching the dispatcher.
package registry

import (
	"encoding/json"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// Handler implements one CDP domain. Implementations are immutable
// structs with interior-mutable state; they are shared by reference across
// every session unless a handler documents session-scoped state of its own.
type Handler interface {
	// Name returns the domain name, e.g. "DOM" or "Network".
	Name() string

	// Handle executes method (the suffix after "Domain."), given the raw
	// params object (nil if absent). It returns either a JSON-serializable
	// result or a typed CDP error; never both.
	Handle(method string, params json.RawMessage) (any, *cdpmsg.Error)
}

// Registry is a concurrent name→Handler directory.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register inserts handler under its own Name(). A second registration of
// the same domain name replaces the first, matching spec.md §4.3.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
}

// Unregister removes and returns the handler for name, if any.
func (r *Registry) Unregister(name string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[name]
	if ok {
		delete(r.handlers, name)
	}
	return h, ok
}

// Lookup returns the handler registered for name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Domains returns the set of currently registered domain names. The order
// is unspecified.
func (r *Registry) Domains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
