package ecs

import "sort"

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID) bool
	Has(id EntityID) bool
	Len() int
}

const absent = -1

// Storage is a sparse set of T keyed by entity index. The dense arrays keep
// entities packed for iteration; values are stored by pointer so a *T stays
// valid until its component is removed.
type Storage[T any] struct {
	sparse []int32
	dense  []EntityID
	values []*T
}

func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{
		dense:  make([]EntityID, 0, 256),
		values: make([]*T, 0, 256),
	}
}

func (s *Storage[T]) slot(id EntityID) int {
	idx := id.Index()
	if int(idx) >= len(s.sparse) {
		return absent
	}
	pos := s.sparse[idx]
	if pos == absent || s.dense[pos] != id {
		return absent
	}
	return int(pos)
}

// Set stores c for id, replacing any previous value.
func (s *Storage[T]) Set(id EntityID, c *T) {
	if pos := s.slot(id); pos != absent {
		s.values[pos] = c
		return
	}
	idx := int(id.Index())
	for idx >= len(s.sparse) {
		s.sparse = append(s.sparse, absent)
	}
	s.sparse[idx] = int32(len(s.dense))
	s.dense = append(s.dense, id)
	s.values = append(s.values, c)
}

func (s *Storage[T]) Get(id EntityID) (*T, bool) {
	pos := s.slot(id)
	if pos == absent {
		return nil, false
	}
	return s.values[pos], true
}

// Remove swap-removes id and reports whether it was present.
func (s *Storage[T]) Remove(id EntityID) bool {
	pos := s.slot(id)
	if pos == absent {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[pos] = moved
	s.values[pos] = s.values[last]
	s.sparse[moved.Index()] = int32(pos)
	s.sparse[id.Index()] = absent
	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	return true
}

func (s *Storage[T]) Has(id EntityID) bool {
	return s.slot(id) != absent
}

func (s *Storage[T]) Len() int {
	return len(s.dense)
}

// Entities returns the dense entity array. Callers must not modify it.
func (s *Storage[T]) Entities() []EntityID {
	return s.dense
}

// Each visits components in dense order.
func (s *Storage[T]) Each(fn func(EntityID, *T)) {
	for i := 0; i < len(s.dense); i++ {
		fn(s.dense[i], s.values[i])
	}
}

// Sort reorders the dense arrays with a stable sort on less.
func (s *Storage[T]) Sort(less func(a, b *T) bool) {
	sort.Stable(storageSorter[T]{s: s, less: less})
	for i, id := range s.dense {
		s.sparse[id.Index()] = int32(i)
	}
}

type storageSorter[T any] struct {
	s    *Storage[T]
	less func(a, b *T) bool
}

func (o storageSorter[T]) Len() int           { return len(o.s.dense) }
func (o storageSorter[T]) Less(i, j int) bool { return o.less(o.s.values[i], o.s.values[j]) }
func (o storageSorter[T]) Swap(i, j int) {
	o.s.dense[i], o.s.dense[j] = o.s.dense[j], o.s.dense[i]
	o.s.values[i], o.s.values[j] = o.s.values[j], o.s.values[i]
}
