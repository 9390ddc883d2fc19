package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type primKind uint8

const (
	primSphere primKind = iota
	primCapsule
	primOBB
)

// primitive is a world-space convex piece of a body's shape. Compound
// shapes flatten into one primitive per child.
type primitive struct {
	kind    primKind
	center  mgl32.Vec3
	radius  float32
	p0, p1  mgl32.Vec3
	axes    [3]mgl32.Vec3
	half    mgl32.Vec3
	child   int
	trigger bool
}

func newOBB(t Transform, half mgl32.Vec3, child int, trigger bool) primitive {
	return primitive{
		kind:   primOBB,
		center: t.Origin,
		axes: [3]mgl32.Vec3{
			t.Rotation.Rotate(mgl32.Vec3{1, 0, 0}),
			t.Rotation.Rotate(mgl32.Vec3{0, 1, 0}),
			t.Rotation.Rotate(mgl32.Vec3{0, 0, 1}),
		},
		half:    half,
		child:   child,
		trigger: trigger,
	}
}

func newCapsule(t Transform, axis Axis, radius, halfHeight float32, child int, trigger bool) primitive {
	d := t.Rotation.Rotate(axis.unit()).Mul(halfHeight)
	return primitive{
		kind:    primCapsule,
		center:  t.Origin,
		radius:  radius,
		p0:      t.Origin.Sub(d),
		p1:      t.Origin.Add(d),
		child:   child,
		trigger: trigger,
	}
}

func (p *primitive) aabb() (lo, hi mgl32.Vec3) {
	switch p.kind {
	case primSphere:
		r := mgl32.Vec3{p.radius, p.radius, p.radius}
		return p.center.Sub(r), p.center.Add(r)
	case primCapsule:
		r := mgl32.Vec3{p.radius, p.radius, p.radius}
		for i := 0; i < 3; i++ {
			lo[i] = min(p.p0[i], p.p1[i]) - r[i]
			hi[i] = max(p.p0[i], p.p1[i]) + r[i]
		}
		return lo, hi
	}
	var ext mgl32.Vec3
	for i := 0; i < 3; i++ {
		ext = ext.Add(absVec(p.axes[i]).Mul(p.half[i]))
	}
	return p.center.Sub(ext), p.center.Add(ext)
}

// contact is one narrowphase result. Normal points from A towards B and
// depth is positive while the pieces overlap.
type contact struct {
	onA, onB mgl32.Vec3
	normal   mgl32.Vec3
	depth    float32
}

func (c contact) flipped() contact {
	return contact{onA: c.onB, onB: c.onA, normal: c.normal.Mul(-1), depth: c.depth}
}

// collide runs the narrowphase for one primitive pair.
func collide(a, b *primitive) []contact {
	if a.kind > b.kind {
		out := collide(b, a)
		for i := range out {
			out[i] = out[i].flipped()
		}
		return out
	}
	switch {
	case a.kind == primSphere && b.kind == primSphere:
		return one(collideSpheres(a.center, a.radius, b.center, b.radius))
	case a.kind == primSphere && b.kind == primCapsule:
		q := closestOnSegment(a.center, b.p0, b.p1)
		return one(collideSpheres(a.center, a.radius, q, b.radius))
	case a.kind == primSphere && b.kind == primOBB:
		return one(collideSphereOBB(a.center, a.radius, b))
	case a.kind == primCapsule && b.kind == primCapsule:
		ca, cb := closestBetweenSegments(a.p0, a.p1, b.p0, b.p1)
		return one(collideSpheres(ca, a.radius, cb, b.radius))
	case a.kind == primCapsule && b.kind == primOBB:
		return one(collideCapsuleOBB(a, b))
	default:
		return collideOBBs(a, b)
	}
}

func one(c contact, ok bool) []contact {
	if !ok {
		return nil
	}
	return []contact{c}
}

func collideSpheres(ca mgl32.Vec3, ra float32, cb mgl32.Vec3, rb float32) (contact, bool) {
	d := cb.Sub(ca)
	dist := d.Len()
	if dist >= ra+rb {
		return contact{}, false
	}
	n := mgl32.Vec3{0, 1, 0}
	if dist > 1e-6 {
		n = d.Mul(1 / dist)
	}
	return contact{
		onA:    ca.Add(n.Mul(ra)),
		onB:    cb.Sub(n.Mul(rb)),
		normal: n,
		depth:  ra + rb - dist,
	}, true
}

func (p *primitive) toLocal(v mgl32.Vec3) mgl32.Vec3 {
	d := v.Sub(p.center)
	return mgl32.Vec3{d.Dot(p.axes[0]), d.Dot(p.axes[1]), d.Dot(p.axes[2])}
}

func (p *primitive) toWorld(l mgl32.Vec3) mgl32.Vec3 {
	return p.center.
		Add(p.axes[0].Mul(l[0])).
		Add(p.axes[1].Mul(l[1])).
		Add(p.axes[2].Mul(l[2]))
}

func (p *primitive) closestOnOBB(v mgl32.Vec3) mgl32.Vec3 {
	l := p.toLocal(v)
	for i := 0; i < 3; i++ {
		l[i] = mgl32.Clamp(l[i], -p.half[i], p.half[i])
	}
	return p.toWorld(l)
}

func collideSphereOBB(c mgl32.Vec3, r float32, box *primitive) (contact, bool) {
	l := box.toLocal(c)
	inside := true
	for i := 0; i < 3; i++ {
		if abs32(l[i]) > box.half[i] {
			inside = false
			break
		}
	}
	if inside {
		axis, gap := 0, float32(math.MaxFloat32)
		for i := 0; i < 3; i++ {
			if g := box.half[i] - abs32(l[i]); g < gap {
				axis, gap = i, g
			}
		}
		face := box.axes[axis]
		if l[axis] < 0 {
			face = face.Mul(-1)
		}
		return contact{
			onA:    c.Sub(face.Mul(r)),
			onB:    c.Add(face.Mul(gap)),
			normal: face.Mul(-1),
			depth:  r + gap,
		}, true
	}

	q := box.closestOnOBB(c)
	d := q.Sub(c)
	dist := d.Len()
	if dist >= r {
		return contact{}, false
	}
	n := d.Mul(1 / dist)
	return contact{
		onA:    c.Add(n.Mul(r)),
		onB:    q,
		normal: n,
		depth:  r - dist,
	}, true
}

// collideCapsuleOBB finds the segment point nearest the box by alternating
// projections, then treats it as a sphere.
func collideCapsuleOBB(capsule, box *primitive) (contact, bool) {
	q := capsule.center
	for i := 0; i < 4; i++ {
		q = closestOnSegment(box.closestOnOBB(q), capsule.p0, capsule.p1)
	}
	return collideSphereOBB(q, capsule.radius, box)
}

func (p *primitive) projectedRadius(axis mgl32.Vec3) float32 {
	return p.half[0]*abs32(p.axes[0].Dot(axis)) +
		p.half[1]*abs32(p.axes[1].Dot(axis)) +
		p.half[2]*abs32(p.axes[2].Dot(axis))
}

func (p *primitive) vertices() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := range out {
		l := p.half
		for k := 0; k < 3; k++ {
			if i&(1<<k) != 0 {
				l[k] = -l[k]
			}
		}
		out[i] = p.toWorld(l)
	}
	return out
}

func (p *primitive) containsPoint(v mgl32.Vec3) bool {
	l := p.toLocal(v)
	for i := 0; i < 3; i++ {
		if abs32(l[i]) > p.half[i]+1e-4 {
			return false
		}
	}
	return true
}

// collideOBBs is a separating-axis test over the 15 candidate axes. Contact
// points are the vertices of each box inside the other; an edge-edge hit
// falls back to the closest pair of edges.
func collideOBBs(a, b *primitive) []contact {
	delta := b.center.Sub(a.center)
	best, depth := float32(math.MaxFloat32), float32(0)
	var normal mgl32.Vec3

	test := func(axis mgl32.Vec3, bias float32) bool {
		l := axis.Len()
		if l < 1e-5 {
			return true
		}
		axis = axis.Mul(1 / l)
		dist := delta.Dot(axis)
		overlap := a.projectedRadius(axis) + b.projectedRadius(axis) - abs32(dist)
		if overlap < 0 {
			return false
		}
		if overlap*bias < best {
			best, depth = overlap*bias, overlap
			normal = axis
			if dist < 0 {
				normal = axis.Mul(-1)
			}
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(a.axes[i], 1) || !test(b.axes[i], 1) {
			return nil
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(a.axes[i].Cross(b.axes[j]), 1.05) {
				return nil
			}
		}
	}

	topA := a.center.Dot(normal) + a.projectedRadius(normal)
	bottomB := b.center.Dot(normal) - b.projectedRadius(normal)

	var out []contact
	for _, v := range b.vertices() {
		if a.containsPoint(v) {
			d := topA - v.Dot(normal)
			out = append(out, contact{onA: v.Add(normal.Mul(d)), onB: v, normal: normal, depth: d})
		}
	}
	for _, v := range a.vertices() {
		if b.containsPoint(v) {
			d := v.Dot(normal) - bottomB
			out = append(out, contact{onA: v, onB: v.Sub(normal.Mul(d)), normal: normal, depth: d})
		}
	}
	if len(out) > 0 {
		return out
	}

	va, vb := a.vertices(), b.vertices()
	bestDist := float32(math.MaxFloat32)
	var ca, cb mgl32.Vec3
	for _, ea := range boxEdges {
		for _, eb := range boxEdges {
			pa, pb := closestBetweenSegments(va[ea[0]], va[ea[1]], vb[eb[0]], vb[eb[1]])
			if d := pa.Sub(pb).LenSqr(); d < bestDist {
				bestDist, ca, cb = d, pa, pb
			}
		}
	}
	return []contact{{onA: ca, onB: cb, normal: normal, depth: depth}}
}

// boxEdges lists vertex index pairs that differ in exactly one sign bit.
var boxEdges = func() [][2]int {
	var out [][2]int
	for i := 0; i < 8; i++ {
		for k := 0; k < 3; k++ {
			if j := i ^ (1 << k); i < j {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}()

func closestOnSegment(p, a, b mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	den := ab.LenSqr()
	if den < 1e-12 {
		return a
	}
	t := mgl32.Clamp(p.Sub(a).Dot(ab)/den, 0, 1)
	return a.Add(ab.Mul(t))
}

// closestBetweenSegments returns the closest points of segments p1q1 and
// p2q2.
func closestBetweenSegments(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1, d2 := q1.Sub(p1), q2.Sub(p2)
	r := p1.Sub(p2)
	a, e := d1.LenSqr(), d2.LenSqr()
	f := d2.Dot(r)

	const eps = 1e-12
	var s, t float32
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = mgl32.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = mgl32.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			den := a*e - b*b
			if den > eps {
				s = mgl32.Clamp((b*f-c*e)/den, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t, s = 0, mgl32.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t, s = 1, mgl32.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}
