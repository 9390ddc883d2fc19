package ecs

import (
	"fmt"
	"reflect"
)

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed by CleanupSystem each frame.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.pool.Len()
}

// Destroy erases every component of id and frees its slot.
func (w *World) Destroy(id EntityID) error {
	if !w.pool.Alive(id) {
		return fmt.Errorf("destroy %s: %w", id, ErrInvalidEntity)
	}
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
	return nil
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Ids that died in the meantime are skipped.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if w.Destroy(id) == nil {
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Assign stores v as id's T component. Re-assigning an existing component
// replaces it; callers that need strictness use Emplace.
func Assign[T any](w *World, id EntityID, v T) (*T, error) {
	if !w.pool.Alive(id) {
		return nil, fmt.Errorf("assign %s to %s: %w", typeName[T](), id, ErrInvalidEntity)
	}
	c := &v
	StoreOf[T](w.registry).Set(id, c)
	return c, nil
}

// Emplace is Assign that fails with ErrAlreadyPresent instead of replacing.
func Emplace[T any](w *World, id EntityID, v T) (*T, error) {
	if !w.pool.Alive(id) {
		return nil, fmt.Errorf("emplace %s on %s: %w", typeName[T](), id, ErrInvalidEntity)
	}
	s := StoreOf[T](w.registry)
	if s.Has(id) {
		return nil, fmt.Errorf("emplace %s on %s: %w", typeName[T](), id, ErrAlreadyPresent)
	}
	c := &v
	s.Set(id, c)
	return c, nil
}

// Get returns id's T component or ErrNotFound.
func Get[T any](w *World, id EntityID) (*T, error) {
	if !w.pool.Alive(id) {
		return nil, fmt.Errorf("get %s of %s: %w", typeName[T](), id, ErrInvalidEntity)
	}
	if s, ok := lookup[T](w.registry); ok {
		if c, ok := s.Get(id); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("get %s of %s: %w", typeName[T](), id, ErrNotFound)
}

// TryGet is the optional form of Get.
func TryGet[T any](w *World, id EntityID) (*T, bool) {
	if !w.pool.Alive(id) {
		return nil, false
	}
	s, ok := lookup[T](w.registry)
	if !ok {
		return nil, false
	}
	return s.Get(id)
}

func Has[T any](w *World, id EntityID) bool {
	_, ok := TryGet[T](w, id)
	return ok
}

// GetOrAssign returns the existing component or assigns the zero-value-based
// one built by init.
func GetOrAssign[T any](w *World, id EntityID, init func() T) (*T, error) {
	if c, ok := TryGet[T](w, id); ok {
		return c, nil
	}
	var v T
	if init != nil {
		v = init()
	}
	return Assign(w, id, v)
}

// Remove deletes id's T component.
func Remove[T any](w *World, id EntityID) error {
	if !w.pool.Alive(id) {
		return fmt.Errorf("remove %s from %s: %w", typeName[T](), id, ErrInvalidEntity)
	}
	s, ok := lookup[T](w.registry)
	if !ok || !s.Remove(id) {
		return fmt.Errorf("remove %s from %s: %w", typeName[T](), id, ErrNotFound)
	}
	return nil
}

// Sort reorders T's storage, and with it the iteration order of views whose
// first type is T.
func Sort[T any](w *World, less func(a, b *T) bool) {
	StoreOf[T](w.registry).Sort(less)
}
