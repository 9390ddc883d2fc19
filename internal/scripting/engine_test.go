package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mandelbrottt/Yr2-Engine/internal/component"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, src string) *Engine {
	t.Helper()
	e, err := NewEngine("", nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	if src != "" {
		require.NoError(t, e.LoadString("test", src))
	}
	return e
}

func body(t *testing.T, w *ecs.World) ecs.EntityID {
	t.Helper()
	id := w.CreateEntity()
	_, err := ecs.Assign(w, id, component.NewTransformAt(mgl32.Vec3{1, 2, 3}))
	require.NoError(t, err)
	_, err = ecs.Assign(w, id, component.NewRigidBody())
	require.NoError(t, err)
	return id
}

func TestAPIVersionGlobal(t *testing.T) {
	e := newEngine(t, "")
	assert.Equal(t, float64(APIVersion), e.Global("API_VERSION"))
	assert.Nil(t, e.Global("undefined_global"))
}

func TestLoadDirRecurses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "props"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte("Alpha = {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "props", "b.lua"), []byte("Beta = {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not lua"), 0o644))

	e, err := NewEngine(dir, nil)
	require.NoError(t, err)
	defer e.Close()
	assert.True(t, e.HasTable("Alpha"))
	assert.True(t, e.HasTable("Beta"))
	assert.False(t, e.HasTable("Gamma"))
}

func TestLoadDirReportsSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644))
	_, err := NewEngine(dir, nil)
	assert.Error(t, err)
}

func TestMissingDirLoadsNothing(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	e.Close()
}

func TestEntityAPI(t *testing.T) {
	e := newEngine(t, `
Probe = {}
function Probe.on_update(id, dt)
  px, py, pz = oyl.get_position(id)
  oyl.add_impulse(id, 0, 5, 0)
  oyl.add_force(id, 1, 0, 0)
  vx, vy, vz = oyl.get_velocity(id)
  alive = oyl.is_alive(id)
  got_dt = dt
end
`)
	w := ecs.NewWorld()
	e.SetWorld(w)
	id := body(t, w)
	rb, err := ecs.Get[component.RigidBody](w, id)
	require.NoError(t, err)
	rb.SetVelocity(mgl32.Vec3{0, -1, 0})

	require.NoError(t, e.CallUpdate("Probe", id, 0.5))
	assert.Equal(t, 1.0, e.Global("px"))
	assert.Equal(t, 2.0, e.Global("py"))
	assert.Equal(t, 3.0, e.Global("pz"))
	assert.Equal(t, -1.0, e.Global("vy"))
	assert.Equal(t, true, e.Global("alive"))
	assert.Equal(t, 0.5, e.Global("got_dt"))
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, rb.Impulse())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, rb.Force())
}

func TestDestroyIsDeferred(t *testing.T) {
	e := newEngine(t, `
Doomed = {}
function Doomed.on_update(id, dt) oyl.destroy(id) end
`)
	w := ecs.NewWorld()
	e.SetWorld(w)
	id := body(t, w)

	require.NoError(t, e.CallUpdate("Doomed", id, 0))
	assert.True(t, w.Alive(id))
	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, w.Alive(id))
}

func TestCallErrors(t *testing.T) {
	e := newEngine(t, `
Quiet = {}
Needy = {}
function Needy.on_update(id, dt) oyl.get_velocity(id) end
`)
	assert.ErrorIs(t, e.CallUpdate("Nobody", ecs.Null, 0), ErrNoTable)
	assert.NoError(t, e.CallUpdate("Quiet", ecs.Null, 0), "missing hook is fine")

	err := e.CallUpdate("Needy", ecs.Null, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bound")

	w := ecs.NewWorld()
	e.SetWorld(w)
	id := w.CreateEntity()
	err = e.CallUpdate("Needy", id, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no RigidBody")
}

func TestCallContactPassesPoint(t *testing.T) {
	e := newEngine(t, `
Sensor = {}
function Sensor.on_trigger_enter(id, other, x, y, z)
  seen_other = other
  sx, sy, sz = x, y, z
end
`)
	other := ecs.NewEntityID(7, 1)
	require.NoError(t, e.CallContact("Sensor", "on_trigger_enter", ecs.NewEntityID(3, 1), other, mgl32.Vec3{1, 2, 3}))
	assert.Equal(t, float64(uint64(other)), e.Global("seen_other"))
	assert.Equal(t, 3.0, e.Global("sz"))
}
