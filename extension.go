package rex

import (
	"fmt"
	"sync"
)

// Func is a bound extension: a callable producing a new pattern from the
// arguments, already closed over the pattern it was bound to.
type Func func(args ...any) (*Pattern, error)

// Factory creates a Func bound to a base pattern. The factory runs at most
// once per pattern instance; the result is cached until the pattern is
// cloned.
type Factory func(base *Pattern) Func

// Registry maps extension names to factories. A single registry can back
// any number of patterns; registration is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty extension registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under the given name, replacing any previous
// registration with the same name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
}

// UnregisterAll removes every registered factory. Patterns holding bound
// extensions keep them until they are cloned.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.factories)
}

// Names returns the registered extension names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	return names
}

func (r *Registry) lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]

	return factory, ok
}

// DefaultRegistry is the registry used by patterns created with New.
var DefaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}

// UnregisterAll clears the default registry.
func UnregisterAll() {
	DefaultRegistry.UnregisterAll()
}

// Ext invokes the named extension with the given arguments. The extension
// is bound to this pattern instance on first use and the binding is cached;
// clones drop cached bindings, so extensions always see the pattern they
// are called on.
//
// An extension must return a pattern distinct from its base. Returning nil
// or the base itself is a ContractViolationError.
func (p *Pattern) Ext(name string, args ...any) (*Pattern, error) {
	fn, err := p.bindExtension(name)
	if err != nil {
		return nil, err
	}

	result, err := fn(args...)
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, &ContractViolationError{Extension: name, Reason: "extension returned no pattern"}
	}

	if result == p {
		return nil, &ContractViolationError{Extension: name, Reason: "extension returned the bound pattern instance"}
	}

	return result, nil
}

func (p *Pattern) bindExtension(name string) (Func, error) {
	if fn, ok := p.bound[name]; ok {
		return fn, nil
	}

	if p.registry == nil {
		return nil, fmt.Errorf("unknown extension %q", name)
	}

	factory, ok := p.registry.lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown extension %q", name)
	}

	fn := factory(p)

	if p.bound == nil {
		p.bound = make(map[string]Func)
	}
	p.bound[name] = fn

	return fn, nil
}
