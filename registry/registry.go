// Package registry maps module type identifiers to factories.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pipelined/modular/module"
)

var (
	// ErrUnknownType is returned for unregistered module types.
	ErrUnknownType = errors.New("unknown module type")
	// ErrDuplicateType is returned when a type is registered twice.
	ErrDuplicateType = errors.New("module type already registered")
	// ErrInvalidFactory is returned for nil factories or factories
	// whose modules describe themselves under another type.
	ErrInvalidFactory = errors.New("invalid module factory")
)

// Factory creates a new module instance.
type Factory func() module.Module

type entry struct {
	factory    Factory
	descriptor *module.Descriptor
}

// Registry is a catalog of module types. It is filled at startup and
// only read afterwards, so it is not guarded.
type Registry struct {
	entries map[string]entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries: map[string]entry{},
	}
}

// Register adds a factory under typeID. The factory is called once to
// capture the descriptor.
func (r *Registry) Register(typeID string, factory Factory) error {
	if typeID == "" || factory == nil {
		return fmt.Errorf("%w: %q", ErrInvalidFactory, typeID)
	}
	if _, ok := r.entries[typeID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateType, typeID)
	}
	m := factory()
	if m == nil || m.Descriptor() == nil || m.Descriptor().Type != typeID {
		return fmt.Errorf("%w: %q", ErrInvalidFactory, typeID)
	}
	r.entries[typeID] = entry{
		factory:    factory,
		descriptor: m.Descriptor(),
	}
	return nil
}

// MustRegister calls Register and panics on error.
func (r *Registry) MustRegister(typeID string, factory Factory) {
	if err := r.Register(typeID, factory); err != nil {
		panic(err)
	}
}

// Create instantiates a module of typeID.
func (r *Registry) Create(typeID string) (module.Module, error) {
	e, ok := r.entries[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeID)
	}
	return e.factory(), nil
}

// Describe returns the descriptor of typeID.
func (r *Registry) Describe(typeID string) (*module.Descriptor, error) {
	e, ok := r.entries[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeID)
	}
	return e.descriptor, nil
}

// Contains reports whether typeID is registered.
func (r *Registry) Contains(typeID string) bool {
	_, ok := r.entries[typeID]
	return ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Types returns registered type ids in ascending order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// List returns descriptors ordered by category, then type.
func (r *Registry) List() []*module.Descriptor {
	list := make([]*module.Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e.descriptor)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		return list[i].Type < list[j].Type
	})
	return list
}
