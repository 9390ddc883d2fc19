package asset

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReplacesAlias(t *testing.T) {
	c := NewCache[Mesh]()
	first := c.Cache(&Mesh{Alias: "cube"}, "cube")
	second := &Mesh{Alias: "cube", Indices: []uint32{0, 1, 2}}
	c.Cache(second, "cube")

	got, err := c.Get("cube")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
	assert.Equal(t, 1, c.Len())

	c.Discard("cube")
	_, err = c.Get("cube")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestGetOrCreate(t *testing.T) {
	c := NewCache[Shader]()
	calls := 0
	create := func() (*Shader, error) {
		calls++
		return &Shader{Alias: "lit"}, nil
	}
	a, err := c.GetOrCreate("lit", create)
	require.NoError(t, err)
	b, err := c.GetOrCreate("lit", create)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = c.GetOrCreate("bad", func() (*Shader, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Len())
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []mgl32.Vec3{{1, -2, 0}, {-1, 3, 4}, {0, 0, -5}}}
	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -2, -5}, lo)
	assert.Equal(t, mgl32.Vec3{1, 3, 4}, hi)

	var empty *Mesh
	lo, hi = empty.Bounds()
	assert.Equal(t, mgl32.Vec3{}, lo)
	assert.Equal(t, mgl32.Vec3{}, hi)
}
