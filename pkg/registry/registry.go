package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

// Mutator is a named, pure state transition. It must not modify prior and must
// return the same result for the same inputs.
type Mutator[S any] func(prior S, params domain.Parameters) (S, error)

// Registry manages the mutators available to build graph nodes.
type Registry[S any] struct {
	mu       sync.RWMutex
	mutators map[string]Mutator[S]
}

// New creates a new empty registry.
func New[S any]() *Registry[S] {
	return &Registry[S]{
		mutators: make(map[string]Mutator[S]),
	}
}

// Register adds a mutator to the registry and returns a handle to invoke it.
// Registering a name twice fails with a *domain.DuplicateActionError.
func (r *Registry[S]) Register(name string, fn Mutator[S]) (Handle, error) {
	if name == "" {
		return Handle{}, fmt.Errorf("action name cannot be empty")
	}
	if fn == nil {
		return Handle{}, fmt.Errorf("action %q: mutator cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mutators[name]; exists {
		return Handle{}, &domain.DuplicateActionError{Name: name}
	}
	r.mutators[name] = fn
	return Handle{name: name}, nil
}

// MustRegister is like Register but panics on error.
// Use it at setup time, where a duplicate name is a programming error.
func (r *Registry[S]) MustRegister(name string, fn Mutator[S]) Handle {
	h, err := r.Register(name, fn)
	if err != nil {
		panic(err)
	}
	return h
}

// Lookup returns the mutator registered under name.
func (r *Registry[S]) Lookup(name string) (Mutator[S], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.mutators[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Registry[S]) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Handle returns a handle for an already registered mutator.
func (r *Registry[S]) Handle(name string) (Handle, error) {
	if !r.Has(name) {
		return Handle{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, name)
	}
	return Handle{name: name}, nil
}

// Names returns the registered mutator names in lexical order.
func (r *Registry[S]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.mutators))
	for name := range r.mutators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply looks up the invocation's mutator and runs it against prior.
func (r *Registry[S]) Apply(prior S, inv domain.Invocation) (S, error) {
	fn, ok := r.Lookup(inv.MutatorName)
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: %q", domain.ErrUnknownAction, inv.MutatorName)
	}
	next, err := fn(prior, inv.Parameters)
	if err != nil {
		var zero S
		return zero, fmt.Errorf("action %q: %w", inv.MutatorName, err)
	}
	return next, nil
}
