package ecs

import "iter"

// Views are lazy and restartable. Iteration follows the dense order of the
// first type's storage, so Sort on that type controls view order. Adding or
// removing a viewed component type during iteration is undefined.

// View1 iterates over entities that have component A.
type View1[A any] struct {
	sa *Storage[A]
}

func NewView1[A any](w *World) View1[A] {
	return View1[A]{sa: StoreOf[A](w.registry)}
}

func (v View1[A]) Each(fn func(EntityID, *A)) {
	for i := 0; i < len(v.sa.dense); i++ {
		fn(v.sa.dense[i], v.sa.values[i])
	}
}

func (v View1[A]) Entities() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for i := 0; i < len(v.sa.dense); i++ {
			if !yield(v.sa.dense[i]) {
				return
			}
		}
	}
}

func (v View1[A]) Count() int { return v.sa.Len() }

// View2 iterates over entities that have both component A and B.
type View2[A, B any] struct {
	sa *Storage[A]
	sb *Storage[B]
}

func NewView2[A, B any](w *World) View2[A, B] {
	return View2[A, B]{sa: StoreOf[A](w.registry), sb: StoreOf[B](w.registry)}
}

func (v View2[A, B]) Each(fn func(EntityID, *A, *B)) {
	for i := 0; i < len(v.sa.dense); i++ {
		id := v.sa.dense[i]
		if b, ok := v.sb.Get(id); ok {
			fn(id, v.sa.values[i], b)
		}
	}
}

func (v View2[A, B]) Entities() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for i := 0; i < len(v.sa.dense); i++ {
			id := v.sa.dense[i]
			if v.sb.Has(id) && !yield(id) {
				return
			}
		}
	}
}

func (v View2[A, B]) Count() int {
	n := 0
	for range v.Entities() {
		n++
	}
	return n
}

// View3 iterates over entities that have components A, B, and C.
type View3[A, B, C any] struct {
	sa *Storage[A]
	sb *Storage[B]
	sc *Storage[C]
}

func NewView3[A, B, C any](w *World) View3[A, B, C] {
	return View3[A, B, C]{
		sa: StoreOf[A](w.registry),
		sb: StoreOf[B](w.registry),
		sc: StoreOf[C](w.registry),
	}
}

func (v View3[A, B, C]) Each(fn func(EntityID, *A, *B, *C)) {
	for i := 0; i < len(v.sa.dense); i++ {
		id := v.sa.dense[i]
		b, ok := v.sb.Get(id)
		if !ok {
			continue
		}
		if c, ok := v.sc.Get(id); ok {
			fn(id, v.sa.values[i], b, c)
		}
	}
}

func (v View3[A, B, C]) Entities() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for i := 0; i < len(v.sa.dense); i++ {
			id := v.sa.dense[i]
			if v.sb.Has(id) && v.sc.Has(id) && !yield(id) {
				return
			}
		}
	}
}

func (v View3[A, B, C]) Count() int {
	n := 0
	for range v.Entities() {
		n++
	}
	return n
}
