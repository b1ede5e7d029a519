package smartlabel

import "sync"

// Registry keeps managers by identifier. Storing a manager under an id that
// is already taken disposes the previous one first, so a disposed manager is
// never reachable through the registry.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{managers: map[string]*Manager{}}
}

// Put stores m under its id. Uninitialized managers are ignored.
func (r *Registry) Put(m *Manager) {
	if !m.Initialized() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.managers[m.id]; ok && prev != m {
		prev.Dispose()
	}
	r.managers[m.id] = m
}

// Get returns the manager stored under id.
func (r *Registry) Get(id string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[id]
	return m, ok
}

// Delete disposes and removes the manager stored under id.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[id]; ok {
		m.Dispose()
		delete(r.managers, id)
	}
}

// Close disposes every stored manager.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.managers {
		m.Dispose()
		delete(r.managers, id)
	}
}

// Len returns the number of stored managers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}
