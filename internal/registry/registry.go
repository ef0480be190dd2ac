package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicate is returned when a name is registered twice.
var ErrDuplicate = errors.New("component already registered")

// Registry maps component names to live instances. It is safe for concurrent
// use, although during boot only the orchestration driver writes to it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
	order   []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]any),
	}
}

// Register records instance under name. A nil instance reserves the name for a
// service. Registering an existing name fails with ErrDuplicate and leaves the
// first entry untouched.
func (r *Registry) Register(name string, instance any) error {
	if name == "" {
		return errors.New("component name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.entries[name] = instance
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the instance registered under name. The boolean reports
// whether the name is registered at all; services report true with a nil
// instance.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[name]
	return v, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
