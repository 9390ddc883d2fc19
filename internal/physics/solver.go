package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// constraint is one non-penetration contact with two friction directions,
// solved with accumulated sequential impulses.
type constraint struct {
	a, b   *Body
	rA, rB mgl32.Vec3
	normal mgl32.Vec3
	t1, t2 mgl32.Vec3

	massN, massT1, massT2 float32
	friction              float32
	restitution           float32
	depth                 float32

	jn, jt1, jt2 float32
	bias         float32
}

func appendConstraints(out []constraint, m *Manifold) []constraint {
	a, b := m.bodyA, m.bodyB
	if !a.HasContactResponse() || !b.HasContactResponse() {
		return out
	}
	if a.invMass == 0 && b.invMass == 0 {
		return out
	}
	for _, cp := range m.points {
		if cp.Trigger {
			continue
		}
		mid := cp.PositionWorldOnA.Add(cp.PositionWorldOnB).Mul(0.5)
		c := constraint{
			a:           a,
			b:           b,
			rA:          mid.Sub(a.transform.Origin),
			rB:          mid.Sub(b.transform.Origin),
			normal:      cp.Normal,
			friction:    min(a.friction*b.friction, 10),
			restitution: a.restitution * b.restitution,
			depth:       -cp.Distance,
		}
		c.t1, c.t2 = tangents(c.normal)
		c.massN = c.effectiveMass(c.normal)
		c.massT1 = c.effectiveMass(c.t1)
		c.massT2 = c.effectiveMass(c.t2)
		out = append(out, c)
	}
	return out
}

func tangents(n mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ref := mgl32.Vec3{1, 0, 0}
	if abs32(n[0]) > 0.57735 {
		ref = mgl32.Vec3{0, 1, 0}
	}
	t1 := n.Cross(ref).Normalize()
	return t1, n.Cross(t1)
}

func (c *constraint) effectiveMass(dir mgl32.Vec3) float32 {
	k := c.a.invMass + c.b.invMass
	k += dir.Dot(c.a.invInertiaWorld(c.rA.Cross(dir)).Cross(c.rA))
	k += dir.Dot(c.b.invInertiaWorld(c.rB.Cross(dir)).Cross(c.rB))
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func (c *constraint) relativeVelocity() mgl32.Vec3 {
	va := c.a.linVel.Add(c.a.angVel.Cross(c.rA))
	vb := c.b.linVel.Add(c.b.angVel.Cross(c.rB))
	return vb.Sub(va)
}

// applyImpulse pushes p onto B and -p onto A.
func (c *constraint) applyImpulse(p mgl32.Vec3) {
	if c.a.invMass != 0 {
		c.a.linVel = c.a.linVel.Sub(p.Mul(c.a.invMass))
		c.a.angVel = c.a.angVel.Sub(c.a.invInertiaWorld(c.rA.Cross(p)))
	}
	if c.b.invMass != 0 {
		c.b.linVel = c.b.linVel.Add(p.Mul(c.b.invMass))
		c.b.angVel = c.b.angVel.Add(c.b.invInertiaWorld(c.rB.Cross(p)))
	}
}

func (w *World) solve(cs []constraint, h float32) {
	if len(cs) == 0 || h <= 0 {
		return
	}
	for i := range cs {
		c := &cs[i]
		c.bias = baumgarte / h * max(c.depth-linearSlop, 0)
		vn := c.relativeVelocity().Dot(c.normal)
		if vn < -restitutionThreshold && c.restitution > 0 {
			c.bias = max(c.bias, -c.restitution*vn)
		}
	}
	for it := 0; it < w.iterations; it++ {
		for i := range cs {
			c := &cs[i]

			vn := c.relativeVelocity().Dot(c.normal)
			dn := c.massN * (c.bias - vn)
			old := c.jn
			c.jn = max(old+dn, 0)
			c.applyImpulse(c.normal.Mul(c.jn - old))

			limit := c.friction * c.jn
			c.jt1 = c.frictionStep(c.t1, c.massT1, c.jt1, limit)
			c.jt2 = c.frictionStep(c.t2, c.massT2, c.jt2, limit)
		}
	}
}

func (c *constraint) frictionStep(dir mgl32.Vec3, mass, acc, limit float32) float32 {
	vt := c.relativeVelocity().Dot(dir)
	next := mgl32.Clamp(acc-mass*vt, -limit, limit)
	if d := next - acc; d != 0 && !math.IsNaN(float64(d)) {
		c.applyImpulse(dir.Mul(d))
	}
	return next
}
