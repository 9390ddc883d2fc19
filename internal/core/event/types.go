package event

import (
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
)

// Type identifies an event payload. Gameplay code defines its own types
// starting at TypeUser.
type Type uint16

const (
	TypeNone Type = iota

	TypeWindowClosed
	TypeWindowResized
	TypeWindowFocused

	TypeKeyPressed
	TypeKeyReleased
	TypeMousePressed
	TypeMouseReleased
	TypeMouseMoved
	TypeMouseScrolled

	TypePhysicsResetWorld
	TypePhysicsCollisionEnter
	TypePhysicsCollisionStay
	TypePhysicsCollisionExit
	TypePhysicsTriggerEnter
	TypePhysicsTriggerStay
	TypePhysicsTriggerExit

	TypeUser Type = 0x1000
)

var typeNames = map[Type]string{
	TypeNone:                  "None",
	TypeWindowClosed:          "WindowClosed",
	TypeWindowResized:         "WindowResized",
	TypeWindowFocused:         "WindowFocused",
	TypeKeyPressed:            "KeyPressed",
	TypeKeyReleased:           "KeyReleased",
	TypeMousePressed:          "MousePressed",
	TypeMouseReleased:         "MouseReleased",
	TypeMouseMoved:            "MouseMoved",
	TypeMouseScrolled:         "MouseScrolled",
	TypePhysicsResetWorld:     "PhysicsResetWorld",
	TypePhysicsCollisionEnter: "PhysicsCollisionEnter",
	TypePhysicsCollisionStay:  "PhysicsCollisionStay",
	TypePhysicsCollisionExit:  "PhysicsCollisionExit",
	TypePhysicsTriggerEnter:   "PhysicsTriggerEnter",
	TypePhysicsTriggerStay:    "PhysicsTriggerStay",
	TypePhysicsTriggerExit:    "PhysicsTriggerExit",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	if t >= TypeUser {
		return "User"
	}
	return "Unknown"
}

// Category is a bitmask used for coarse-grained subscriptions.
type Category uint32

const (
	CategoryApplication Category = 1 << iota
	CategoryWindow
	CategoryInput
	CategoryKeyboard
	CategoryMouse
	CategoryPhysics
	CategoryGameplay
)

// Event is an immutable typed payload. It is delivered once, synchronously.
type Event interface {
	Type() Type
	Category() Category
}

// ── Window ──

type WindowClosed struct{}

func (WindowClosed) Type() Type         { return TypeWindowClosed }
func (WindowClosed) Category() Category { return CategoryApplication | CategoryWindow }

type WindowResized struct {
	Width, Height int
}

func (WindowResized) Type() Type         { return TypeWindowResized }
func (WindowResized) Category() Category { return CategoryApplication | CategoryWindow }

type WindowFocused struct {
	Focused bool
}

func (WindowFocused) Type() Type         { return TypeWindowFocused }
func (WindowFocused) Category() Category { return CategoryApplication | CategoryWindow }

// ── Input ──

// Key is a backend key code.
type Key int32

// MouseButton is a backend mouse button code.
type MouseButton int32

type KeyPressed struct {
	Key         Key
	RepeatCount int
}

func (KeyPressed) Type() Type         { return TypeKeyPressed }
func (KeyPressed) Category() Category { return CategoryInput | CategoryKeyboard }

type KeyReleased struct {
	Key Key
}

func (KeyReleased) Type() Type         { return TypeKeyReleased }
func (KeyReleased) Category() Category { return CategoryInput | CategoryKeyboard }

type MouseMoved struct {
	X, Y   float32
	DX, DY float32
}

func (MouseMoved) Type() Type         { return TypeMouseMoved }
func (MouseMoved) Category() Category { return CategoryInput | CategoryMouse }

type MousePressed struct {
	Button MouseButton
}

func (MousePressed) Type() Type         { return TypeMousePressed }
func (MousePressed) Category() Category { return CategoryInput | CategoryMouse }

type MouseReleased struct {
	Button MouseButton
}

func (MouseReleased) Type() Type         { return TypeMouseReleased }
func (MouseReleased) Category() Category { return CategoryInput | CategoryMouse }

type MouseScrolled struct {
	DX, DY float32
}

func (MouseScrolled) Type() Type         { return TypeMouseScrolled }
func (MouseScrolled) Category() Category { return CategoryInput | CategoryMouse }

// ── Physics ──

// PhysicsResetWorld asks the physics system to tear down and rebuild its world.
type PhysicsResetWorld struct{}

func (PhysicsResetWorld) Type() Type         { return TypePhysicsResetWorld }
func (PhysicsResetWorld) Category() Category { return CategoryPhysics }

// PhysicsCollision carries every collision lifecycle phase; Kind is one of
// the TypePhysicsCollision* / TypePhysicsTrigger* types. ContactPoint is only
// meaningful for the stay variants.
type PhysicsCollision struct {
	Kind         Type
	Entity1      ecs.EntityID
	Entity2      ecs.EntityID
	ContactPoint mgl32.Vec3
}

func (e PhysicsCollision) Type() Type       { return e.Kind }
func (PhysicsCollision) Category() Category { return CategoryPhysics }

// Involves reports whether id is one of the pair and returns the other entity.
func (e PhysicsCollision) Involves(id ecs.EntityID) (other ecs.EntityID, ok bool) {
	switch id {
	case e.Entity1:
		return e.Entity2, true
	case e.Entity2:
		return e.Entity1, true
	}
	return ecs.Null, false
}

// IsTrigger reports whether the event is one of the trigger variants.
func (e PhysicsCollision) IsTrigger() bool {
	switch e.Kind {
	case TypePhysicsTriggerEnter, TypePhysicsTriggerStay, TypePhysicsTriggerExit:
		return true
	}
	return false
}
