package asset

import (
	"fmt"
	"sync"
)

// Cache maps string aliases to shared resource handles. Caching an alias
// that is already bound replaces the previous binding.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{items: make(map[string]*T, 16)}
}

// Cache binds r to alias and returns r.
func (c *Cache[T]) Cache(r *T, alias string) *T {
	c.mu.Lock()
	c.items[alias] = r
	c.mu.Unlock()
	return r
}

// Get returns the resource bound to alias.
func (c *Cache[T]) Get(alias string) (*T, error) {
	c.mu.RLock()
	r, ok := c.items[alias]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("asset %q: %w", alias, ErrNotCached)
	}
	return r, nil
}

// GetOrCreate returns the cached resource for alias, building and caching it
// with create on a miss.
func (c *Cache[T]) GetOrCreate(alias string, create func() (*T, error)) (*T, error) {
	if r, err := c.Get(alias); err == nil {
		return r, nil
	}
	r, err := create()
	if err != nil {
		return nil, fmt.Errorf("create asset %q: %w", alias, err)
	}
	return c.Cache(r, alias), nil
}

func (c *Cache[T]) Discard(alias string) {
	c.mu.Lock()
	delete(c.items, alias)
	c.mu.Unlock()
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Library groups the caches the render-facing systems consume.
type Library struct {
	Meshes    *Cache[Mesh]
	Materials *Cache[Material]
	Shaders   *Cache[Shader]
}

func NewLibrary() *Library {
	return &Library{
		Meshes:    NewCache[Mesh](),
		Materials: NewCache[Material](),
		Shaders:   NewCache[Shader](),
	}
}
