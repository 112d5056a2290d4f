package pipeline

import (
	"fmt"
	"sync"
)

// Registry is the roster of agents shared by all invocations of a Runtime.
// Names are unique. Iteration order is registration order; downstream
// tie-breaking in the aggregator depends on that order being fixed, so the
// registry preserves it explicitly rather than relying on map iteration.
//
// Registration is expected to happen before any invocation starts; during
// execution the registry is effectively read-only.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Agent
	order  []Agent
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Agent)}
}

// Register adds an agent. Returns ErrDuplicateAgent if the name is taken.
func (r *Registry) Register(a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAgent, name)
	}
	r.byName[name] = a
	r.order = append(r.order, a)
	return nil
}

// All returns the registered agents in registration order. The slice is a
// copy; callers cannot mutate the registry through it.
func (r *Registry) All() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the agent with the given name. A missing agent is a valid
// query outcome, not an error.
func (r *Registry) Lookup(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
