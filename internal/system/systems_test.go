package system

import (
	"testing"

	"github.com/Mandelbrottt/Yr2-Engine/internal/asset"
	"github.com/Mandelbrottt/Yr2-Engine/internal/component"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"
	coresys "github.com/Mandelbrottt/Yr2-Engine/internal/core/system"
	"github.com/Mandelbrottt/Yr2-Engine/internal/render"
	"github.com/Mandelbrottt/Yr2-Engine/internal/scripting"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func scheduled(t *testing.T, systems ...coresys.System) (*ecs.World, *event.Dispatcher, *coresys.Scheduler) {
	t.Helper()
	w := ecs.NewWorld()
	d := event.NewDispatcher(nil)
	r := coresys.NewScheduler(w, d, nil)
	for _, s := range systems {
		require.NoError(t, r.Schedule(s))
	}
	return w, d, r
}

func drawableAt(t *testing.T, w *ecs.World, pos mgl32.Vec3, r component.Renderable) ecs.EntityID {
	t.Helper()
	id := w.CreateEntity()
	_, err := ecs.Assign(w, id, component.NewTransformAt(pos))
	require.NoError(t, err)
	_, err = ecs.Assign(w, id, r)
	require.NoError(t, err)
	return id
}

func TestRenderSystemBatchesByShaderThenMaterial(t *testing.T) {
	rec := render.NewRecorder(nil)
	w, _, r := scheduled(t, NewRenderSystem(rec, nil))

	lit := &asset.Shader{Alias: "lit"}
	flat := &asset.Shader{Alias: "flat"}
	stone := &asset.Material{Alias: "stone", Shader: lit}
	brick := &asset.Material{Alias: "brick", Shader: lit}
	paint := &asset.Material{Alias: "paint", Shader: flat}
	cube := &asset.Mesh{Alias: "cube"}

	drawableAt(t, w, mgl32.Vec3{1, 0, 0}, component.Renderable{Mesh: cube, Material: stone, Enabled: true})
	drawableAt(t, w, mgl32.Vec3{2, 0, 0}, component.Renderable{Mesh: cube, Material: paint, Enabled: true})
	drawableAt(t, w, mgl32.Vec3{3, 0, 0}, component.Renderable{Mesh: cube, Material: brick, Enabled: false})
	drawableAt(t, w, mgl32.Vec3{4, 0, 0}, component.Renderable{Mesh: nil, Material: brick, Enabled: true})
	drawableAt(t, w, mgl32.Vec3{5, 0, 0}, component.Renderable{Mesh: cube, Material: brick, Enabled: true})

	noTransform := w.CreateEntity()
	_, err := ecs.Assign(w, noTransform, component.Renderable{Mesh: cube, Material: stone, Enabled: true})
	require.NoError(t, err)

	r.Update(frame)
	calls := rec.LastFrame()
	require.Len(t, calls, 3)
	assert.Same(t, paint, calls[0].Material)
	assert.Same(t, brick, calls[1].Material)
	assert.Same(t, stone, calls[2].Material)
	assert.Equal(t, mgl32.Vec4{2, 0, 0, 1}, calls[0].Transform.Col(3))
	assert.Equal(t, mgl32.Vec4{5, 0, 0, 1}, calls[1].Transform.Col(3))
	assert.Equal(t, 1, rec.Frames())
	assert.Empty(t, rec.Pending())
}

func TestRenderSystemUsesGlobalMatrix(t *testing.T) {
	rec := render.NewRecorder(nil)
	w, _, r := scheduled(t, NewRenderSystem(rec, nil))
	mat := &asset.Material{Alias: "m", Shader: &asset.Shader{Alias: "s"}}

	parent := w.CreateEntity()
	_, err := ecs.Assign(w, parent, component.NewTransformAt(mgl32.Vec3{10, 0, 0}))
	require.NoError(t, err)
	child := drawableAt(t, w, mgl32.Vec3{1, 2, 3}, component.Renderable{Mesh: &asset.Mesh{}, Material: mat, Enabled: true})
	require.NoError(t, component.NewHierarchy(w).SetParent(child, parent))

	r.Update(frame)
	require.Len(t, rec.LastFrame(), 1)
	assert.Equal(t, mgl32.Vec4{11, 2, 3, 1}, rec.LastFrame()[0].Transform.Col(3))
}

func TestRenderSystemTracksViewport(t *testing.T) {
	rec := render.NewRecorder(nil)
	rs := NewRenderSystem(rec, nil)
	_, d, r := scheduled(t, rs)

	assert.False(t, d.PostEvent(event.WindowResized{Width: 800, Height: 600}))
	w, h := rs.Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	r.Update(frame)
	w, h = rec.Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

const moverScript = `
Mover = {}
updates = 0
hits = 0
function Mover.on_update(e, dt)
  updates = updates + 1
  local x, y, z = oyl.get_position(e)
  oyl.set_position(e, x + 1, y, z)
end
function Mover.on_collision_enter(e, other, x, y, z)
  hits = hits + 1
  last_x = x
end

Broken = {}
function Broken.on_update(e, dt)
  error("boom")
end
`

func newScriptRig(t *testing.T, log *zap.Logger) (*scripting.Engine, *ecs.World, *event.Dispatcher, *coresys.Scheduler) {
	t.Helper()
	eng, err := scripting.NewEngine("", nil)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	require.NoError(t, eng.LoadString("mover", moverScript))
	w, d, r := scheduled(t, NewScriptSystem(eng, log))
	return eng, w, d, r
}

func scripted(t *testing.T, w *ecs.World, table string) ecs.EntityID {
	t.Helper()
	id := w.CreateEntity()
	_, err := ecs.Assign(w, id, component.NewTransform())
	require.NoError(t, err)
	_, err = ecs.Assign(w, id, component.Script{Table: table})
	require.NoError(t, err)
	return id
}

func TestScriptSystemRunsUpdateHook(t *testing.T) {
	eng, w, _, r := newScriptRig(t, nil)
	id := scripted(t, w, "Mover")

	r.Update(frame)
	r.Update(frame)
	assert.Equal(t, 2.0, eng.Global("updates"))
	tr, err := ecs.Get[component.Transform](w, id)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, tr.Position())
	assert.NotZero(t, tr.Overridden()&component.OverridePosition)
}

func TestScriptSystemDispatchesContactHooks(t *testing.T) {
	eng, w, d, _ := newScriptRig(t, nil)
	self := scripted(t, w, "Mover")
	other := w.CreateEntity()

	d.PostEvent(event.PhysicsCollision{
		Kind:         event.TypePhysicsCollisionEnter,
		Entity1:      other,
		Entity2:      self,
		ContactPoint: mgl32.Vec3{0.75, 0, 0},
	})
	assert.Equal(t, 1.0, eng.Global("hits"))
	assert.Equal(t, 0.75, eng.Global("last_x"))

	d.PostEvent(event.PhysicsCollision{Kind: event.TypePhysicsCollisionStay, Entity1: self, Entity2: other})
	assert.Equal(t, 1.0, eng.Global("hits"), "stay has no hook in Mover")
}

func TestScriptErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	eng, w, _, r := newScriptRig(t, zap.New(core))
	scripted(t, w, "Broken")
	scripted(t, w, "Missing")
	scripted(t, w, "Mover")

	r.Update(frame)
	assert.Equal(t, 1.0, eng.Global("updates"), "later scripts still run")
	assert.Equal(t, 2, logs.FilterMessage("script update").Len())
}

func TestCleanupSystemFlushesQueue(t *testing.T) {
	w, _, r := scheduled(t, NewCleanupSystem(nil))
	id := w.CreateEntity()
	keep := w.CreateEntity()
	w.MarkForDestruction(id)
	assert.True(t, w.Alive(id))

	r.Update(frame)
	assert.False(t, w.Alive(id))
	assert.True(t, w.Alive(keep))
}
