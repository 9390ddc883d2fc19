package component

import (
	"math"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
)

// Override records which local values gameplay code set since the physics
// bridge last pushed them into the solver.
type Override uint8

const (
	OverridePosition Override = 1 << iota
	OverrideRotation
	OverrideScale

	OverrideAll = OverridePosition | OverrideRotation | OverrideScale
)

var (
	axisForward = mgl32.Vec3{0, 0, -1}
	axisRight   = mgl32.Vec3{1, 0, 0}
	axisUp      = mgl32.Vec3{0, 1, 0}
)

// Transform is a local (parent-relative) affine transform. Global queries
// live on Hierarchy since they need the store to resolve parents.
//
// Construct with NewTransform; the zero value has a zero scale.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	parent   ecs.EntityID

	local      mgl32.Mat4
	localDirty bool
	overridden Override
}

// NewTransform returns an identity transform with every value flagged as
// overridden so the first physics sync pushes it.
func NewTransform() Transform {
	return Transform{
		rotation:   mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		local:      mgl32.Ident4(),
		localDirty: true,
		overridden: OverrideAll,
	}
}

func NewTransformAt(position mgl32.Vec3) Transform {
	t := NewTransform()
	t.position = position
	return t
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Quat { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }

// Parent returns the stored parent id. It may name a dead entity; Hierarchy
// treats such a parent as absent.
func (t *Transform) Parent() ecs.EntityID { return t.parent }

// RotationEuler returns the rotation as XYZ euler angles in degrees.
func (t *Transform) RotationEuler() mgl32.Vec3 { return quatToEuler(t.rotation) }

func (t *Transform) IsLocalDirty() bool { return t.localDirty }

func (t *Transform) Overridden() Override { return t.overridden }

// ClearOverridden drops the given override bits.
func (t *Transform) ClearOverridden(mask Override) { t.overridden &^= mask }

// Matrix returns T*R*S, recomputing it if a local value changed.
func (t *Transform) Matrix() mgl32.Mat4 {
	if t.localDirty {
		t.local = mgl32.Translate3D(t.position[0], t.position[1], t.position[2]).
			Mul4(t.rotation.Mat4()).
			Mul4(mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2]))
		t.localDirty = false
	}
	return t.local
}

func (t *Transform) Forward() mgl32.Vec3 { return t.rotation.Rotate(axisForward) }
func (t *Transform) Right() mgl32.Vec3   { return t.rotation.Rotate(axisRight) }
func (t *Transform) Up() mgl32.Vec3      { return t.rotation.Rotate(axisUp) }

func (t *Transform) touch(o Override) {
	t.localDirty = true
	t.overridden |= o
}

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.touch(OverridePosition)
}

func (t *Transform) SetPositionX(x float32) { t.SetPosition(mgl32.Vec3{x, t.position[1], t.position[2]}) }
func (t *Transform) SetPositionY(y float32) { t.SetPosition(mgl32.Vec3{t.position[0], y, t.position[2]}) }
func (t *Transform) SetPositionZ(z float32) { t.SetPosition(mgl32.Vec3{t.position[0], t.position[1], z}) }

// Translate moves by delta, rotated into the local frame when local is set.
func (t *Transform) Translate(delta mgl32.Vec3, local bool) {
	if local {
		delta = t.rotation.Rotate(delta)
	}
	t.SetPosition(t.position.Add(delta))
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.touch(OverrideRotation)
}

// SetRotationEuler sets the rotation from XYZ euler angles in degrees.
func (t *Transform) SetRotationEuler(euler mgl32.Vec3) {
	t.SetRotation(eulerToQuat(euler))
}

func (t *Transform) SetRotationEulerX(x float32) {
	e := t.RotationEuler()
	e[0] = x
	t.SetRotationEuler(e)
}

func (t *Transform) SetRotationEulerY(y float32) {
	e := t.RotationEuler()
	e[1] = y
	t.SetRotationEuler(e)
}

func (t *Transform) SetRotationEulerZ(z float32) {
	e := t.RotationEuler()
	e[2] = z
	t.SetRotationEuler(e)
}

// Rotate applies euler degrees on top of the current rotation, in the local frame.
func (t *Transform) Rotate(euler mgl32.Vec3) {
	t.SetRotation(t.rotation.Mul(eulerToQuat(euler)))
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.touch(OverrideScale)
}

func (t *Transform) SetScaleX(x float32) { t.SetScale(mgl32.Vec3{x, t.scale[1], t.scale[2]}) }
func (t *Transform) SetScaleY(y float32) { t.SetScale(mgl32.Vec3{t.scale[0], y, t.scale[2]}) }
func (t *Transform) SetScaleZ(z float32) { t.SetScale(mgl32.Vec3{t.scale[0], t.scale[1], z}) }

// ScaleBy multiplies the scale component-wise.
func (t *Transform) ScaleBy(mul mgl32.Vec3) {
	t.SetScale(mgl32.Vec3{t.scale[0] * mul[0], t.scale[1] * mul[1], t.scale[2] * mul[2]})
}

// WriteBack stores a solver-resolved local pose. It invalidates the matrix
// but leaves the override flags alone. Reserved for the physics bridge.
func (t *Transform) WriteBack(position mgl32.Vec3, rotation mgl32.Quat) {
	t.position = position
	t.rotation = rotation.Normalize()
	t.localDirty = true
}

func eulerToQuat(deg mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(mgl32.DegToRad(deg[0]), axisRight)
	qy := mgl32.QuatRotate(mgl32.DegToRad(deg[1]), axisUp)
	qz := mgl32.QuatRotate(mgl32.DegToRad(deg[2]), mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx).Normalize()
}

// quatToEuler inverts eulerToQuat (X applied first, then Y, then Z).
func quatToEuler(q mgl32.Quat) mgl32.Vec3 {
	w, x, y, z := float64(q.W), float64(q.V[0]), float64(q.V[1]), float64(q.V[2])

	sinY := 2 * (w*y - x*z)
	sinY = math.Max(-1, math.Min(1, sinY))

	ex := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	ey := math.Asin(sinY)
	ez := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return mgl32.Vec3{
		mgl32.RadToDeg(float32(ex)),
		mgl32.RadToDeg(float32(ey)),
		mgl32.RadToDeg(float32(ez)),
	}
}
