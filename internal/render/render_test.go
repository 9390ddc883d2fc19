package render

import (
	"testing"

	"github.com/Mandelbrottt/Yr2-Engine/internal/asset"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderFrames(t *testing.T) {
	var _ Renderer = (*Recorder)(nil)
	rec := NewRecorder(nil)
	mesh := &asset.Mesh{Alias: "cube"}
	mat := &asset.Material{Alias: "stone"}

	rec.Submit(mesh, mat, mgl32.Translate3D(1, 0, 0))
	rec.Submit(mesh, mat, mgl32.Translate3D(2, 0, 0))
	assert.Len(t, rec.Pending(), 2)
	assert.Empty(t, rec.LastFrame())

	rec.EndFrame()
	require.Len(t, rec.LastFrame(), 2)
	assert.Empty(t, rec.Pending())
	assert.Same(t, mesh, rec.LastFrame()[0].Mesh)
	assert.Equal(t, mgl32.Vec4{2, 0, 0, 1}, rec.LastFrame()[1].Transform.Col(3))
	assert.Equal(t, 1, rec.Frames())

	rec.EndFrame()
	assert.Empty(t, rec.LastFrame(), "an empty frame replaces the previous one")
	assert.Equal(t, 2, rec.Frames())

	rec.SetViewport(640, 480)
	w, h := rec.Viewport()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}
