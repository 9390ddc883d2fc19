package ecs

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }
type velocity struct{ DX, DY float32 }
type health struct{ HP int }

func TestCreateReusesFreedSlotWithNewGeneration(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	require.NotEqual(t, Null, e1)
	assert.Equal(t, uint32(0), e1.Index())
	assert.Equal(t, uint32(1), e2.Index())

	require.NoError(t, w.Destroy(e1))
	assert.False(t, w.Alive(e1))

	e3 := w.CreateEntity()
	assert.Equal(t, e1.Index(), e3.Index())
	assert.Equal(t, e1.Generation()+1, e3.Generation())
	assert.True(t, w.Alive(e3))
	assert.False(t, w.Alive(e1), "stale handle must not resolve")
	assert.Equal(t, 2, w.Len())
}

func TestDestroyErasesComponents(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	_, err := Assign(w, e, position{1, 2})
	require.NoError(t, err)
	_, err = Assign(w, e, velocity{3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, w.Registry().Count(e))

	require.NoError(t, w.Destroy(e))
	assert.ErrorIs(t, w.Destroy(e), ErrInvalidEntity)

	e2 := w.CreateEntity()
	assert.False(t, Has[position](w, e2))
	assert.False(t, Has[velocity](w, e2))
	assert.Equal(t, 0, StoreOf[position](w.Registry()).Len())
}

func TestAssignReplacesExisting(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	_, err := Assign(w, e, health{HP: 10})
	require.NoError(t, err)
	_, err = Assign(w, e, health{HP: 25})
	require.NoError(t, err)

	h, err := Get[health](w, e)
	require.NoError(t, err)
	assert.Equal(t, 25, h.HP)
	assert.Equal(t, 1, StoreOf[health](w.Registry()).Len())
}

func TestEmplaceRejectsDuplicate(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	_, err := Emplace(w, e, health{HP: 1})
	require.NoError(t, err)
	_, err = Emplace(w, e, health{HP: 2})
	assert.ErrorIs(t, err, ErrAlreadyPresent)

	h, _ := Get[health](w, e)
	assert.Equal(t, 1, h.HP)
}

func TestContractErrors(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()

	_, err := Get[health](w, e)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, Remove[health](w, e), ErrNotFound)

	_, err = Assign(w, Null, health{})
	assert.ErrorIs(t, err, ErrInvalidEntity)

	require.NoError(t, w.Destroy(e))
	_, err = Get[health](w, e)
	assert.ErrorIs(t, err, ErrInvalidEntity)
	_, ok := TryGet[health](w, e)
	assert.False(t, ok)
}

func TestGetOrAssign(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	h, err := GetOrAssign(w, e, func() health { return health{HP: 7} })
	require.NoError(t, err)
	assert.Equal(t, 7, h.HP)

	h.HP = 3
	again, err := GetOrAssign(w, e, func() health { return health{HP: 99} })
	require.NoError(t, err)
	assert.Same(t, h, again)
	assert.Equal(t, 3, again.HP)
}

func TestPointersSurviveOtherRemovals(t *testing.T) {
	w := NewWorld()
	ids := make([]EntityID, 10)
	for i := range ids {
		ids[i] = w.CreateEntity()
		_, err := Assign(w, ids[i], health{HP: i})
		require.NoError(t, err)
	}
	last, err := Get[health](w, ids[9])
	require.NoError(t, err)

	require.NoError(t, Remove[health](w, ids[0]))
	for i := 10; i < 300; i++ {
		_, err := Assign(w, w.CreateEntity(), health{HP: i})
		require.NoError(t, err)
	}
	got, err := Get[health](w, ids[9])
	require.NoError(t, err)
	assert.Same(t, last, got)
	assert.Equal(t, 9, got.HP)
}

func TestView2YieldsOnlyEntitiesWithBoth(t *testing.T) {
	w := NewWorld()
	both := map[EntityID]bool{}
	for i := 0; i < 50; i++ {
		e := w.CreateEntity()
		if i%2 == 0 {
			_, _ = Assign(w, e, position{X: float32(i)})
		}
		if i%3 == 0 {
			_, _ = Assign(w, e, velocity{DX: float32(i)})
		}
		if i%6 == 0 {
			both[e] = true
		}
	}

	view := NewView2[position, velocity](w)
	seen := map[EntityID]bool{}
	view.Each(func(id EntityID, p *position, v *velocity) {
		require.NotNil(t, p)
		require.NotNil(t, v)
		seen[id] = true
	})
	assert.Equal(t, both, seen)
	assert.Equal(t, len(both), view.Count())

	// restartable
	n := 0
	for id := range view.Entities() {
		assert.True(t, both[id])
		n++
	}
	assert.Equal(t, len(both), n)
}

func TestView3(t *testing.T) {
	w := NewWorld()
	full := w.CreateEntity()
	partial := w.CreateEntity()
	for _, e := range []EntityID{full, partial} {
		_, _ = Assign(w, e, position{})
		_, _ = Assign(w, e, velocity{})
	}
	_, _ = Assign(w, full, health{HP: 1})

	got := slices.Collect(NewView3[position, velocity, health](w).Entities())
	assert.Equal(t, []EntityID{full}, got)
}

func TestEntitiesSeqStopsEarly(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 5; i++ {
		_, _ = Assign(w, w.CreateEntity(), health{HP: i})
	}
	n := 0
	for range NewView1[health](w).Entities() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestSortControlsViewOrder(t *testing.T) {
	w := NewWorld()
	hps := []int{5, 1, 4, 2, 3}
	for _, hp := range hps {
		e := w.CreateEntity()
		_, _ = Assign(w, e, health{HP: hp})
		_, _ = Assign(w, e, position{})
	}
	Sort(w, func(a, b *health) bool { return a.HP < b.HP })

	var order []int
	NewView2[health, position](w).Each(func(_ EntityID, h *health, _ *position) {
		order = append(order, h.HP)
	})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)

	// lookups still resolve after the permutation
	StoreOf[health](w.Registry()).Each(func(id EntityID, h *health) {
		got, err := Get[health](w, id)
		require.NoError(t, err)
		assert.Same(t, h, got)
	})
}

func TestDeferredDestruction(t *testing.T) {
	w := NewWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()
	_, _ = Assign(w, a, health{})
	w.MarkForDestruction(a)
	w.MarkForDestruction(a)
	assert.True(t, w.Alive(a))

	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, w.Alive(a))
	assert.True(t, w.Alive(b))
	assert.Equal(t, 0, w.FlushDestroyQueue())
}

func TestPoolEachSkipsFreed(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	b := p.Create()
	c := p.Create()
	require.True(t, p.Destroy(b))
	assert.False(t, p.Destroy(b))

	var got []EntityID
	p.Each(func(id EntityID) { got = append(got, id) })
	assert.Equal(t, []EntityID{a, c}, got)
}
