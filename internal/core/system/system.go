package system

import (
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"
)

// State is a system's lifecycle position.
type State uint8

const (
	StateUninitialized State = iota
	StateEntered
	StateExited
)

func (s State) String() string {
	switch s {
	case StateEntered:
		return "entered"
	case StateExited:
		return "exited"
	}
	return "uninitialized"
}

// System is the interface every ECS system implements. Embed Base to get
// defaults for everything but Name.
type System interface {
	event.Listener

	Name() string

	OnEnter()
	OnExit()
	OnUpdate(dt time.Duration)
	OnGuiRender(dt time.Duration)

	Bind(world *ecs.World, dispatcher *event.Dispatcher)
	Unbind()
	State() State
	setState(State)
}

// Base holds the scene references injected while a system is scheduled.
// Both are non-owning and nil outside the Entered state.
type Base struct {
	interest   event.Interest
	world      *ecs.World
	dispatcher *event.Dispatcher
	state      State
}

func (b *Base) Bind(world *ecs.World, dispatcher *event.Dispatcher) {
	b.world = world
	b.dispatcher = dispatcher
}

func (b *Base) Unbind() {
	b.world = nil
	b.dispatcher = nil
}

func (b *Base) World() *ecs.World             { return b.world }
func (b *Base) Dispatcher() *event.Dispatcher { return b.dispatcher }
func (b *Base) Interest() *event.Interest     { return &b.interest }
func (b *Base) State() State                  { return b.state }
func (b *Base) setState(s State)              { b.state = s }

func (b *Base) OnEnter()                    {}
func (b *Base) OnExit()                     {}
func (b *Base) OnUpdate(_ time.Duration)    {}
func (b *Base) OnGuiRender(_ time.Duration) {}
func (b *Base) OnEvent(_ event.Event) bool  { return false }

func (b *Base) ListenForEventType(t event.Type)         { b.interest.ListenForEventType(t) }
func (b *Base) IgnoreEventType(t event.Type)            { b.interest.IgnoreEventType(t) }
func (b *Base) ListenForEventCategory(c event.Category) { b.interest.ListenForEventCategory(c) }
func (b *Base) IgnoreEventCategory(c event.Category)    { b.interest.IgnoreEventCategory(c) }

// PostEvent posts through the bound dispatcher. It is a no-op when unbound.
func (b *Base) PostEvent(e event.Event) bool {
	if b.dispatcher == nil {
		return false
	}
	return b.dispatcher.PostEvent(e)
}
