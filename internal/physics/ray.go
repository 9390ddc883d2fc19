package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RayResult is the closest hit of a ray test. Fraction is the hit's
// position along from->to in [0, 1].
type RayResult struct {
	HasHit    bool
	Body      *Body
	HitPoint  mgl32.Vec3
	HitNormal mgl32.Vec3
	Fraction  float32
}

// RayTestClosest casts a segment from->to against every body and returns the
// nearest hit. Trigger pieces are hit like any other.
func (w *World) RayTestClosest(from, to mgl32.Vec3) RayResult {
	dir := to.Sub(from)
	res := RayResult{Fraction: 1}
	if dir.LenSqr() == 0 {
		return res
	}
	var prims []primitive
	for _, b := range w.bodies {
		if b.activation == DisableSimulation {
			continue
		}
		prims = b.primitives(prims[:0])
		for i := range prims {
			t, n, ok := rayPrimitive(from, dir, &prims[i])
			if !ok || t > res.Fraction || (res.HasHit && t == res.Fraction) {
				continue
			}
			res = RayResult{
				HasHit:    true,
				Body:      b,
				HitPoint:  from.Add(dir.Mul(t)),
				HitNormal: n,
				Fraction:  t,
			}
		}
	}
	return res
}

func rayPrimitive(o, d mgl32.Vec3, p *primitive) (float32, mgl32.Vec3, bool) {
	switch p.kind {
	case primSphere:
		return raySphere(o, d, p.center, p.radius)
	case primCapsule:
		return rayCapsule(o, d, p)
	}
	return rayOBB(o, d, p)
}

func raySphere(o, d, c mgl32.Vec3, r float32) (float32, mgl32.Vec3, bool) {
	m := o.Sub(c)
	a := d.LenSqr()
	b := m.Dot(d)
	cc := m.LenSqr() - r*r
	if cc > 0 && b > 0 {
		return 0, mgl32.Vec3{}, false
	}
	disc := b*b - a*cc
	if disc < 0 {
		return 0, mgl32.Vec3{}, false
	}
	t := (-b - float32(math.Sqrt(float64(disc)))) / a
	if t < 0 {
		t = 0
	}
	if t > 1 {
		return 0, mgl32.Vec3{}, false
	}
	n := o.Add(d.Mul(t)).Sub(c)
	if n.LenSqr() > 0 {
		n = n.Normalize()
	}
	return t, n, true
}

// rayCapsule samples the segment's end spheres and the cylinder body and
// keeps the earliest.
func rayCapsule(o, d mgl32.Vec3, p *primitive) (float32, mgl32.Vec3, bool) {
	best, normal, hit := float32(2), mgl32.Vec3{}, false
	for _, c := range [2]mgl32.Vec3{p.p0, p.p1} {
		if t, n, ok := raySphere(o, d, c, p.radius); ok && t < best {
			best, normal, hit = t, n, true
		}
	}

	axis := p.p1.Sub(p.p0)
	h := axis.Len()
	if h < 1e-6 {
		return best, normal, hit
	}
	axis = axis.Mul(1 / h)
	m := o.Sub(p.p0)
	dp := d.Sub(axis.Mul(d.Dot(axis)))
	mp := m.Sub(axis.Mul(m.Dot(axis)))
	a := dp.LenSqr()
	if a < 1e-12 {
		return best, normal, hit
	}
	b := mp.Dot(dp)
	c := mp.LenSqr() - p.radius*p.radius
	disc := b*b - a*c
	if disc < 0 {
		return best, normal, hit
	}
	t := (-b - float32(math.Sqrt(float64(disc)))) / a
	if t < 0 || t > 1 || t >= best {
		return best, normal, hit
	}
	q := o.Add(d.Mul(t))
	s := q.Sub(p.p0).Dot(axis)
	if s < 0 || s > h {
		return best, normal, hit
	}
	n := q.Sub(p.p0.Add(axis.Mul(s))).Normalize()
	return t, n, true
}

// rayOBB is the slab test in the box frame.
func rayOBB(o, d mgl32.Vec3, p *primitive) (float32, mgl32.Vec3, bool) {
	lo := p.toLocal(o)
	ld := mgl32.Vec3{d.Dot(p.axes[0]), d.Dot(p.axes[1]), d.Dot(p.axes[2])}
	tmin, tmax := float32(0), float32(1)
	axis, sign := -1, float32(0)
	for i := 0; i < 3; i++ {
		if abs32(ld[i]) < 1e-9 {
			if lo[i] < -p.half[i] || lo[i] > p.half[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		inv := 1 / ld[i]
		t1 := (-p.half[i] - lo[i]) * inv
		t2 := (p.half[i] - lo[i]) * inv
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, sign = t1, i, s
		}
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, mgl32.Vec3{}, false
		}
	}
	var n mgl32.Vec3
	if axis >= 0 {
		n = p.axes[axis].Mul(sign)
	}
	return tmin, n, true
}
