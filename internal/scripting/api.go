package scripting

import (
	"github.com/Mandelbrottt/Yr2-Engine/internal/component"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerAPI installs the global oyl module.
func (e *Engine) registerAPI() {
	mod := e.vm.NewTable()
	e.vm.SetFuncs(mod, map[string]lua.LGFunction{
		"get_position": e.luaGetPosition,
		"set_position": e.luaSetPosition,
		"get_velocity": e.luaGetVelocity,
		"add_impulse":  e.luaAddImpulse,
		"add_force":    e.luaAddForce,
		"destroy":      e.luaDestroy,
		"is_alive":     e.luaIsAlive,
		"log":          e.luaLog,
	})
	e.vm.SetGlobal("oyl", mod)
}

func (e *Engine) checkEntity(L *lua.LState, n int) ecs.EntityID {
	if e.world == nil {
		L.RaiseError("%s", ErrNoWorld.Error())
	}
	return ecs.EntityID(uint64(L.CheckNumber(n)))
}

func checkVec3(L *lua.LState, n int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.CheckNumber(n)),
		float32(L.CheckNumber(n + 1)),
		float32(L.CheckNumber(n + 2)),
	}
}

func pushVec3(L *lua.LState, v mgl32.Vec3) int {
	L.Push(lua.LNumber(v[0]))
	L.Push(lua.LNumber(v[1]))
	L.Push(lua.LNumber(v[2]))
	return 3
}

func (e *Engine) transform(L *lua.LState, id ecs.EntityID) *component.Transform {
	tr, ok := ecs.TryGet[component.Transform](e.world, id)
	if !ok {
		L.RaiseError("entity %s has no Transform", id)
	}
	return tr
}

func (e *Engine) rigidBody(L *lua.LState, id ecs.EntityID) *component.RigidBody {
	rb, ok := ecs.TryGet[component.RigidBody](e.world, id)
	if !ok {
		L.RaiseError("entity %s has no RigidBody", id)
	}
	return rb
}

// oyl.get_position(entity) -> x, y, z
func (e *Engine) luaGetPosition(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	return pushVec3(L, e.transform(L, id).Position())
}

// oyl.set_position(entity, x, y, z)
func (e *Engine) luaSetPosition(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	e.transform(L, id).SetPosition(checkVec3(L, 2))
	return 0
}

// oyl.get_velocity(entity) -> x, y, z
func (e *Engine) luaGetVelocity(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	return pushVec3(L, e.rigidBody(L, id).Velocity())
}

// oyl.add_impulse(entity, x, y, z)
func (e *Engine) luaAddImpulse(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	e.rigidBody(L, id).AddImpulse(checkVec3(L, 2))
	return 0
}

// oyl.add_force(entity, x, y, z)
func (e *Engine) luaAddForce(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	e.rigidBody(L, id).AddForce(checkVec3(L, 2))
	return 0
}

// oyl.destroy(entity) queues the entity for end-of-frame cleanup.
func (e *Engine) luaDestroy(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	e.world.MarkForDestruction(id)
	return 0
}

// oyl.is_alive(entity) -> bool
func (e *Engine) luaIsAlive(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	L.Push(lua.LBool(e.world.Alive(id)))
	return 1
}

// oyl.log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
