package ecs

import "reflect"

// Registry tracks one component store per component type and supports bulk
// cleanup on entity destroy. Stores are created on first use.
type Registry struct {
	stores map[reflect.Type]Removable
	order  []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[reflect.Type]Removable, 16),
		order:  make([]Removable, 0, 16),
	}
}

// StoreOf returns the store for T, creating it if needed.
func StoreOf[T any](r *Registry) *Storage[T] {
	t := reflect.TypeFor[T]()
	if s, ok := r.stores[t]; ok {
		return s.(*Storage[T])
	}
	s := NewStorage[T]()
	r.stores[t] = s
	r.order = append(r.order, s)
	return s
}

// lookup returns the store for T without creating it.
func lookup[T any](r *Registry) (*Storage[T], bool) {
	s, ok := r.stores[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return s.(*Storage[T]), true
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.order {
		s.Remove(id)
	}
}

// Count returns how many component types id currently owns.
func (r *Registry) Count(id EntityID) int {
	n := 0
	for _, s := range r.order {
		if s.Has(id) {
			n++
		}
	}
	return n
}
