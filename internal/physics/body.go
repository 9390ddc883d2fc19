package physics

import "github.com/go-gl/mathgl/mgl32"

// CollisionFlags alter how the world treats a body.
type CollisionFlags uint32

const (
	FlagStatic CollisionFlags = 1 << iota
	FlagKinematic
	FlagNoContactResponse
	FlagCustomMaterialCallback
)

type ActivationState uint8

const (
	ActiveTag ActivationState = iota + 1
	IslandSleeping
	WantsDeactivation
	DisableDeactivation
	DisableSimulation
)

// BodyInfo is the construction input of a Body.
type BodyInfo struct {
	Mass         float32
	MotionState  MotionState
	Shape        Shape
	LocalInertia mgl32.Vec3
	StartPose    Transform
}

// Body is a rigid body. Mass zero makes it static, FlagKinematic makes the
// world pull its pose from the motion state every sub-step.
type Body struct {
	shape       Shape
	motion      MotionState
	transform   Transform
	interpolate Transform

	mass            float32
	invMass         float32
	invInertiaLocal mgl32.Vec3

	linVel     mgl32.Vec3
	angVel     mgl32.Vec3
	totalForce mgl32.Vec3
	gravity    mgl32.Vec3

	friction    float32
	restitution float32

	flags         CollisionFlags
	activation    ActivationState
	angularFactor mgl32.Vec3

	userData any
	world    *World
	id       uint64
}

func NewBody(info BodyInfo) *Body {
	b := &Body{
		shape:         info.Shape,
		motion:        info.MotionState,
		transform:     info.StartPose,
		friction:      0.5,
		activation:    ActiveTag,
		angularFactor: mgl32.Vec3{1, 1, 1},
	}
	if b.transform.Rotation == (mgl32.Quat{}) {
		b.transform.Rotation = mgl32.QuatIdent()
	}
	if info.MotionState != nil {
		b.transform = info.MotionState.WorldTransform()
	}
	b.interpolate = b.transform
	b.SetMassProps(info.Mass, info.LocalInertia)
	return b
}

func (b *Body) Shape() Shape             { return b.shape }
func (b *Body) MotionState() MotionState { return b.motion }

func (b *Body) WorldTransform() Transform { return b.transform }

// SetWorldTransform teleports the body.
func (b *Body) SetWorldTransform(t Transform) {
	b.transform = t
	b.interpolate = t
}

// InterpolationTransform is the pose last written to the motion state.
func (b *Body) InterpolationTransform() Transform { return b.interpolate }

func (b *Body) Mass() float32    { return b.mass }
func (b *Body) InvMass() float32 { return b.invMass }

// SetMassProps updates mass and inertia. A zero mass flags the body static.
func (b *Body) SetMassProps(mass float32, inertia mgl32.Vec3) {
	b.mass = mass
	if mass == 0 {
		b.flags |= FlagStatic
		b.invMass = 0
	} else {
		b.flags &^= FlagStatic
		b.invMass = 1 / mass
	}
	for i := 0; i < 3; i++ {
		if inertia[i] != 0 {
			b.invInertiaLocal[i] = 1 / inertia[i]
		} else {
			b.invInertiaLocal[i] = 0
		}
	}
}

func (b *Body) InvInertiaLocal() mgl32.Vec3 { return b.invInertiaLocal }

func (b *Body) LinearVelocity() mgl32.Vec3      { return b.linVel }
func (b *Body) SetLinearVelocity(v mgl32.Vec3)  { b.linVel = v }
func (b *Body) AngularVelocity() mgl32.Vec3     { return b.angVel }
func (b *Body) SetAngularVelocity(v mgl32.Vec3) { b.angVel = v }

func (b *Body) ApplyCentralForce(f mgl32.Vec3) {
	b.totalForce = b.totalForce.Add(f)
}

// ApplyCentralImpulse changes velocity immediately. Static and kinematic
// bodies ignore it.
func (b *Body) ApplyCentralImpulse(i mgl32.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linVel = b.linVel.Add(i.Mul(b.invMass))
}

func (b *Body) TotalForce() mgl32.Vec3 { return b.totalForce }
func (b *Body) ClearForces()           { b.totalForce = mgl32.Vec3{} }

func (b *Body) Gravity() mgl32.Vec3     { return b.gravity }
func (b *Body) SetGravity(g mgl32.Vec3) { b.gravity = g }

func (b *Body) Friction() float32        { return b.friction }
func (b *Body) SetFriction(f float32)    { b.friction = f }
func (b *Body) Restitution() float32     { return b.restitution }
func (b *Body) SetRestitution(r float32) { b.restitution = r }

func (b *Body) CollisionFlags() CollisionFlags     { return b.flags }
func (b *Body) SetCollisionFlags(f CollisionFlags) { b.flags = f }

func (b *Body) IsKinematic() bool         { return b.flags&FlagKinematic != 0 }
func (b *Body) IsStaticOrKinematic() bool { return b.flags&(FlagStatic|FlagKinematic) != 0 }
func (b *Body) HasContactResponse() bool  { return b.flags&FlagNoContactResponse == 0 }

func (b *Body) ActivationState() ActivationState { return b.activation }

func (b *Body) SetActivationState(s ActivationState) {
	if b.activation == DisableDeactivation || b.activation == DisableSimulation {
		if s != DisableDeactivation && s != DisableSimulation {
			return
		}
	}
	b.activation = s
}

// ForceActivationState overrides the state even when deactivation is disabled.
func (b *Body) ForceActivationState(s ActivationState) { b.activation = s }

func (b *Body) IsActive() bool {
	return b.activation != IslandSleeping && b.activation != DisableSimulation
}

func (b *Body) AngularFactor() mgl32.Vec3     { return b.angularFactor }
func (b *Body) SetAngularFactor(f mgl32.Vec3) { b.angularFactor = f }

func (b *Body) UserData() any     { return b.userData }
func (b *Body) SetUserData(v any) { b.userData = v }

// InWorld reports whether the body is currently added to a world.
func (b *Body) InWorld() bool { return b.world != nil }

// invInertiaWorld applies the world-space inverse inertia, masked by the
// angular factor, to v.
func (b *Body) invInertiaWorld(v mgl32.Vec3) mgl32.Vec3 {
	if b.invMass == 0 {
		return mgl32.Vec3{}
	}
	q := b.transform.Rotation
	local := q.Conjugate().Rotate(v)
	local = mulVec(local, b.invInertiaLocal)
	return mulVec(q.Rotate(local), b.angularFactor)
}

func (b *Body) dynamic() bool {
	return !b.IsStaticOrKinematic() && b.invMass != 0
}

func (b *Body) primitives(out []primitive) []primitive {
	if b.shape == nil {
		return out
	}
	return b.shape.primitives(b.transform, 0, false, out)
}
