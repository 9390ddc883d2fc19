package system

import (
	"slices"
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/component"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"
	coresys "github.com/Mandelbrottt/Yr2-Engine/internal/core/system"
	"github.com/Mandelbrottt/Yr2-Engine/internal/scripting"

	"go.uber.org/zap"
)

var contactHooks = map[event.Type]string{
	event.TypePhysicsCollisionEnter: "on_collision_enter",
	event.TypePhysicsCollisionStay:  "on_collision_stay",
	event.TypePhysicsCollisionExit:  "on_collision_exit",
	event.TypePhysicsTriggerEnter:   "on_trigger_enter",
	event.TypePhysicsTriggerStay:    "on_trigger_stay",
	event.TypePhysicsTriggerExit:    "on_trigger_exit",
}

// ScriptSystem drives the Lua tables named by Script components: on_update
// every frame and the contact hooks for physics events involving the entity.
// Script errors are logged and never stop the frame.
type ScriptSystem struct {
	coresys.Base

	lua *scripting.Engine
	log *zap.Logger
}

func NewScriptSystem(lua *scripting.Engine, log *zap.Logger) *ScriptSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ScriptSystem{lua: lua, log: log}
	for t := range contactHooks {
		s.ListenForEventType(t)
	}
	return s
}

func (s *ScriptSystem) Name() string { return "script" }

func (s *ScriptSystem) OnEnter() { s.lua.SetWorld(s.World()) }
func (s *ScriptSystem) OnExit()  { s.lua.SetWorld(nil) }

func (s *ScriptSystem) OnUpdate(dt time.Duration) {
	w := s.World()
	if w == nil {
		return
	}
	store := ecs.StoreOf[component.Script](w.Registry())
	for _, id := range slices.Clone(store.Entities()) {
		sc, ok := store.Get(id)
		if !ok || sc.Table == "" {
			continue
		}
		if err := s.lua.CallUpdate(sc.Table, id, dt.Seconds()); err != nil {
			s.log.Warn("script update", zap.Stringer("entity", id), zap.Error(err))
		}
	}
}

func (s *ScriptSystem) OnEvent(e event.Event) bool {
	pc, ok := e.(event.PhysicsCollision)
	if !ok {
		return false
	}
	hook, ok := contactHooks[pc.Kind]
	if !ok {
		return false
	}
	s.dispatchContact(hook, pc.Entity1, pc.Entity2, pc)
	s.dispatchContact(hook, pc.Entity2, pc.Entity1, pc)
	return false
}

func (s *ScriptSystem) dispatchContact(hook string, self, other ecs.EntityID, pc event.PhysicsCollision) {
	w := s.World()
	if w == nil {
		return
	}
	sc, ok := ecs.TryGet[component.Script](w, self)
	if !ok || sc.Table == "" {
		return
	}
	if err := s.lua.CallContact(sc.Table, hook, self, other, pc.ContactPoint); err != nil {
		s.log.Warn("script contact", zap.Stringer("entity", self), zap.String("hook", hook), zap.Error(err))
	}
}
