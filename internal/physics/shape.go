package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ShapeKind uint8

const (
	KindBox ShapeKind = iota
	KindSphere
	KindCapsule
	KindCylinder
	KindConvexHull
	KindCompound
)

func (k ShapeKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindCapsule:
		return "capsule"
	case KindCylinder:
		return "cylinder"
	case KindConvexHull:
		return "convex_hull"
	case KindCompound:
		return "compound"
	}
	return "unknown"
}

// Axis selects the long axis of capsules and cylinders.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) unit() mgl32.Vec3 {
	var v mgl32.Vec3
	v[a] = 1
	return v
}

// Shape is a collision shape. Scaling is applied on top of the constructed
// dimensions; a trigger shape reports contacts but never gets a response.
type Shape interface {
	Kind() ShapeKind
	LocalScaling() mgl32.Vec3
	SetLocalScaling(s mgl32.Vec3)
	IsTrigger() bool
	SetTrigger(bool)

	// LocalHalfExtents bounds the scaled shape around its local origin.
	LocalHalfExtents() mgl32.Vec3
	// LocalInertia returns the diagonal inertia tensor for mass.
	LocalInertia(mass float32) mgl32.Vec3

	primitives(world Transform, child int, trigger bool, out []primitive) []primitive
}

type shapeBase struct {
	scaling mgl32.Vec3
	trigger bool
}

func newShapeBase() shapeBase { return shapeBase{scaling: mgl32.Vec3{1, 1, 1}} }

func (s *shapeBase) LocalScaling() mgl32.Vec3      { return s.scaling }
func (s *shapeBase) SetLocalScaling(v mgl32.Vec3)  { s.scaling = absVec(v) }
func (s *shapeBase) IsTrigger() bool               { return s.trigger }
func (s *shapeBase) SetTrigger(trigger bool)       { s.trigger = trigger }
func (s *shapeBase) maxScale() float32             { return maxComponent(s.scaling) }
func (s *shapeBase) scaled(v mgl32.Vec3) mgl32.Vec3 { return mulVec(v, s.scaling) }

// boxInertia is the inertia of a solid box with the given half extents.
// Every non-spherical shape uses its bounding box.
func boxInertia(mass float32, half mgl32.Vec3) mgl32.Vec3 {
	lx, ly, lz := 2*half[0], 2*half[1], 2*half[2]
	return mgl32.Vec3{
		mass / 12 * (ly*ly + lz*lz),
		mass / 12 * (lx*lx + lz*lz),
		mass / 12 * (lx*lx + ly*ly),
	}
}

type BoxShape struct {
	shapeBase
	halfExtents mgl32.Vec3
}

func NewBoxShape(halfExtents mgl32.Vec3) *BoxShape {
	return &BoxShape{shapeBase: newShapeBase(), halfExtents: absVec(halfExtents)}
}

func (s *BoxShape) Kind() ShapeKind                      { return KindBox }
func (s *BoxShape) HalfExtents() mgl32.Vec3              { return s.scaled(s.halfExtents) }
func (s *BoxShape) LocalHalfExtents() mgl32.Vec3         { return s.HalfExtents() }
func (s *BoxShape) LocalInertia(mass float32) mgl32.Vec3 { return boxInertia(mass, s.HalfExtents()) }

func (s *BoxShape) primitives(t Transform, child int, trigger bool, out []primitive) []primitive {
	return append(out, newOBB(t, s.HalfExtents(), child, trigger || s.trigger))
}

type SphereShape struct {
	shapeBase
	radius float32
}

func NewSphereShape(radius float32) *SphereShape {
	return &SphereShape{shapeBase: newShapeBase(), radius: abs32(radius)}
}

func (s *SphereShape) Kind() ShapeKind { return KindSphere }

// Radius is scaled by the largest scaling component.
func (s *SphereShape) Radius() float32 { return s.radius * s.maxScale() }

func (s *SphereShape) LocalHalfExtents() mgl32.Vec3 {
	r := s.Radius()
	return mgl32.Vec3{r, r, r}
}

func (s *SphereShape) LocalInertia(mass float32) mgl32.Vec3 {
	r := s.Radius()
	i := 0.4 * mass * r * r
	return mgl32.Vec3{i, i, i}
}

func (s *SphereShape) primitives(t Transform, child int, trigger bool, out []primitive) []primitive {
	return append(out, primitive{
		kind: primSphere, center: t.Origin, radius: s.Radius(),
		child: child, trigger: trigger || s.trigger,
	})
}

// CapsuleShape is a segment of length height along axis, swept by radius.
// The total extent along the axis is height + 2*radius.
type CapsuleShape struct {
	shapeBase
	radius float32
	height float32
	axis   Axis
}

func NewCapsuleShape(radius, height float32, axis Axis) *CapsuleShape {
	return &CapsuleShape{shapeBase: newShapeBase(), radius: abs32(radius), height: abs32(height), axis: axis}
}

func (s *CapsuleShape) Kind() ShapeKind { return KindCapsule }
func (s *CapsuleShape) Axis() Axis      { return s.axis }

func (s *CapsuleShape) dims() (radius, halfHeight float32) {
	return sweptDims(s.radius, s.height/2, s.axis, s.scaling)
}

func (s *CapsuleShape) LocalHalfExtents() mgl32.Vec3 {
	r, hh := s.dims()
	v := mgl32.Vec3{r, r, r}
	v[s.axis] += hh
	return v
}

func (s *CapsuleShape) LocalInertia(mass float32) mgl32.Vec3 {
	return boxInertia(mass, s.LocalHalfExtents())
}

func (s *CapsuleShape) primitives(t Transform, child int, trigger bool, out []primitive) []primitive {
	r, hh := s.dims()
	return append(out, newCapsule(t, s.axis, r, hh, child, trigger || s.trigger))
}

// CylinderShape collides as the capsule with the same radius and total
// height.
type CylinderShape struct {
	shapeBase
	radius float32
	height float32
	axis   Axis
}

func NewCylinderShape(radius, height float32, axis Axis) *CylinderShape {
	return &CylinderShape{shapeBase: newShapeBase(), radius: abs32(radius), height: abs32(height), axis: axis}
}

func (s *CylinderShape) Kind() ShapeKind { return KindCylinder }
func (s *CylinderShape) Axis() Axis      { return s.axis }

func (s *CylinderShape) LocalHalfExtents() mgl32.Vec3 {
	r, hh := sweptDims(s.radius, s.height/2, s.axis, s.scaling)
	v := mgl32.Vec3{r, r, r}
	v[s.axis] = hh
	return v
}

func (s *CylinderShape) LocalInertia(mass float32) mgl32.Vec3 {
	return boxInertia(mass, s.LocalHalfExtents())
}

func (s *CylinderShape) primitives(t Transform, child int, trigger bool, out []primitive) []primitive {
	r, hh := sweptDims(s.radius, s.height/2, s.axis, s.scaling)
	seg := hh - r
	if seg < 0 {
		seg = 0
	}
	return append(out, newCapsule(t, s.axis, r, seg, child, trigger || s.trigger))
}

// ConvexHullShape collides as the oriented bounding box of its points.
type ConvexHullShape struct {
	shapeBase
	center mgl32.Vec3
	half   mgl32.Vec3
	points int
}

func NewConvexHullShape(points []mgl32.Vec3) *ConvexHullShape {
	s := &ConvexHullShape{shapeBase: newShapeBase(), points: len(points)}
	if len(points) == 0 {
		return s
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	s.center = lo.Add(hi).Mul(0.5)
	s.half = hi.Sub(lo).Mul(0.5)
	return s
}

func (s *ConvexHullShape) Kind() ShapeKind  { return KindConvexHull }
func (s *ConvexHullShape) NumPoints() int   { return s.points }
func (s *ConvexHullShape) LocalHalfExtents() mgl32.Vec3 {
	return s.scaled(s.half).Add(absVec(s.scaled(s.center)))
}

func (s *ConvexHullShape) LocalInertia(mass float32) mgl32.Vec3 {
	return boxInertia(mass, s.scaled(s.half))
}

func (s *ConvexHullShape) primitives(t Transform, child int, trigger bool, out []primitive) []primitive {
	box := Transform{Origin: t.Apply(s.scaled(s.center)), Rotation: t.Rotation}
	return append(out, newOBB(box, s.scaled(s.half), child, trigger || s.trigger))
}

// CompoundChild is one child shape at a pose relative to the compound.
type CompoundChild struct {
	Transform Transform
	Shape     Shape
}

type CompoundShape struct {
	shapeBase
	children []CompoundChild
}

func NewCompoundShape() *CompoundShape {
	return &CompoundShape{shapeBase: newShapeBase()}
}

func (s *CompoundShape) Kind() ShapeKind { return KindCompound }

func (s *CompoundShape) AddChildShape(t Transform, child Shape) {
	s.children = append(s.children, CompoundChild{Transform: t, Shape: child})
}

func (s *CompoundShape) NumChildren() int            { return len(s.children) }
func (s *CompoundShape) Child(i int) CompoundChild   { return s.children[i] }
func (s *CompoundShape) Children() []CompoundChild   { return s.children }

// SetLocalScaling scales child offsets and forwards the scaling to every child.
func (s *CompoundShape) SetLocalScaling(v mgl32.Vec3) {
	s.scaling = absVec(v)
	for _, c := range s.children {
		c.Shape.SetLocalScaling(v)
	}
}

func (s *CompoundShape) LocalHalfExtents() mgl32.Vec3 {
	var half mgl32.Vec3
	for _, c := range s.children {
		ch := c.Shape.LocalHalfExtents()
		off := absVec(s.scaled(c.Transform.Origin))
		rot := absMat(c.Transform.Rotation.Mat4().Mat3())
		ext := rot.Mul3x1(ch).Add(off)
		for i := 0; i < 3; i++ {
			half[i] = max(half[i], ext[i])
		}
	}
	return half
}

func (s *CompoundShape) LocalInertia(mass float32) mgl32.Vec3 {
	return boxInertia(mass, s.LocalHalfExtents())
}

func (s *CompoundShape) primitives(t Transform, _ int, trigger bool, out []primitive) []primitive {
	for i, c := range s.children {
		local := Transform{Origin: s.scaled(c.Transform.Origin), Rotation: c.Transform.Rotation}
		out = c.Shape.primitives(t.Mul(local), i, trigger || s.trigger, out)
	}
	return out
}

// sweptDims scales a radius by the two off-axis scales and a half height
// by the on-axis scale.
func sweptDims(radius, halfHeight float32, axis Axis, scaling mgl32.Vec3) (float32, float32) {
	var r float32
	for i := 0; i < 3; i++ {
		if Axis(i) != axis {
			r = max(r, scaling[i])
		}
	}
	return radius * r, halfHeight * scaling[axis]
}

func abs32(f float32) float32 { return float32(math.Abs(float64(f))) }

func absVec(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{abs32(v[0]), abs32(v[1]), abs32(v[2])}
}

func absMat(m mgl32.Mat3) mgl32.Mat3 {
	for i := range m {
		m[i] = abs32(m[i])
	}
	return m
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func maxComponent(v mgl32.Vec3) float32 {
	return max(v[0], v[1], v[2])
}
