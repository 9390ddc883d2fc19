package component

import "github.com/go-gl/mathgl/mgl32"

// Property is a RigidBody feature flag.
type Property uint32

const (
	PropIsKinematic Property = 1 << iota
	PropDetectCollisions
	PropFreezeRotationX
	PropFreezeRotationY
	PropFreezeRotationZ
	PropDoInterpolation
	PropUseGravity

	DefaultProperties = PropDetectCollisions | PropDoInterpolation | PropUseGravity
)

const (
	DefaultMass     float32 = 1
	DefaultFriction float32 = 0.5
)

// RigidBody holds the dynamics parameters the physics bridge pushes into
// the solver each frame. A zero mass always means kinematic, whatever the
// IsKinematic flag says.
//
// Construct with NewRigidBody; the zero value is a kinematic body with no
// properties.
type RigidBody struct {
	velocity mgl32.Vec3
	force    mgl32.Vec3
	impulse  mgl32.Vec3

	mass        float32
	friction    float32
	restitution float32
	props       Property
}

func NewRigidBody() RigidBody {
	return RigidBody{
		mass:     DefaultMass,
		friction: DefaultFriction,
		props:    DefaultProperties,
	}
}

func (rb *RigidBody) Velocity() mgl32.Vec3 { return rb.velocity }
func (rb *RigidBody) Force() mgl32.Vec3    { return rb.force }
func (rb *RigidBody) Impulse() mgl32.Vec3  { return rb.impulse }
func (rb *RigidBody) Mass() float32        { return rb.mass }
func (rb *RigidBody) Friction() float32    { return rb.friction }

// Restitution is the bounciness of contacts, 0 by default. The solver
// combines the two bodies' values by product.
func (rb *RigidBody) Restitution() float32 { return rb.restitution }

// Property reports whether every bit of p is set.
func (rb *RigidBody) Property(p Property) bool { return rb.props&p == p }

func (rb *RigidBody) Properties() Property { return rb.props }

// IsKinematic is true for an explicit kinematic flag or a zero mass.
func (rb *RigidBody) IsKinematic() bool {
	return rb.props&PropIsKinematic != 0 || rb.mass == 0
}

func (rb *RigidBody) SetVelocity(v mgl32.Vec3) { rb.velocity = v }
func (rb *RigidBody) AddVelocity(v mgl32.Vec3) { rb.velocity = rb.velocity.Add(v) }
func (rb *RigidBody) SetForce(f mgl32.Vec3)    { rb.force = f }
func (rb *RigidBody) AddForce(f mgl32.Vec3)    { rb.force = rb.force.Add(f) }

// AddImpulse queues a one-shot impulse applied on the next physics step.
func (rb *RigidBody) AddImpulse(i mgl32.Vec3) { rb.impulse = rb.impulse.Add(i) }

// ClearImpulse marks the queued impulse consumed.
func (rb *RigidBody) ClearImpulse() { rb.impulse = mgl32.Vec3{} }

// SetMass clamps negative masses to zero.
func (rb *RigidBody) SetMass(m float32) {
	if m < 0 {
		m = 0
	}
	rb.mass = m
}

func (rb *RigidBody) SetFriction(f float32) { rb.friction = f }

// SetRestitution clamps to [0, 1].
func (rb *RigidBody) SetRestitution(r float32) {
	rb.restitution = max(0, min(r, 1))
}

// SetProperties sets or clears the bits in flags.
func (rb *RigidBody) SetProperties(flags Property, value bool) {
	if value {
		rb.props |= flags
	} else {
		rb.props &^= flags
	}
}

// OverwriteProperties replaces the whole flag set.
func (rb *RigidBody) OverwriteProperties(flags Property) { rb.props = flags }
