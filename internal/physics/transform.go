package physics

import "github.com/go-gl/mathgl/mgl32"

// Transform is a rigid world pose: rotation then translation, no scale.
type Transform struct {
	Origin   mgl32.Vec3
	Rotation mgl32.Quat
}

func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

func NewTransform(origin mgl32.Vec3, rotation mgl32.Quat) Transform {
	return Transform{Origin: origin, Rotation: rotation.Normalize()}
}

// Apply maps a local point into the parent frame.
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Origin)
}

// ApplyInverse maps a parent-frame point into t's local frame.
func (t Transform) ApplyInverse(p mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Origin))
}

func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Origin:   t.Apply(o.Origin),
		Rotation: t.Rotation.Mul(o.Rotation).Normalize(),
	}
}

func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Origin[0], t.Origin[1], t.Origin[2]).Mul4(t.Rotation.Mat4())
}

// integrate advances t by linear and angular velocity over h seconds.
func (t Transform) integrate(lin, ang mgl32.Vec3, h float32) Transform {
	out := Transform{Origin: t.Origin.Add(lin.Mul(h)), Rotation: t.Rotation}
	if ang.LenSqr() > 0 {
		spin := mgl32.Quat{W: 0, V: ang}.Mul(t.Rotation).Scale(0.5 * h)
		out.Rotation = t.Rotation.Add(spin).Normalize()
	}
	return out
}
