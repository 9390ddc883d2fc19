package component

import (
	"errors"
	"fmt"

	"github.com/Mandelbrottt/Yr2-Engine/internal/asset"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrShapeIndex = errors.New("shape index out of range")

type ShapeType uint8

const (
	ShapeNone ShapeType = iota
	ShapeBox
	ShapeSphere
	ShapeCapsule
	ShapeCylinder
	ShapeMesh
)

func (t ShapeType) String() string {
	switch t {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	case ShapeCylinder:
		return "cylinder"
	case ShapeMesh:
		return "mesh"
	}
	return "none"
}

// ParseShapeType maps a lowercase name back to its ShapeType.
func ParseShapeType(s string) (ShapeType, error) {
	for t := ShapeBox; t <= ShapeMesh; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return ShapeNone, fmt.Errorf("unknown shape type %q", s)
}

// Axis is the long axis of a capsule or cylinder.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// ShapeParams is the closed set of per-type shape parameters.
type ShapeParams interface {
	ShapeType() ShapeType
	isShapeParams()
}

type BoxParams struct {
	Size mgl32.Vec3
}

type SphereParams struct {
	Radius float32
}

type CapsuleParams struct {
	Radius float32
	Height float32
	Axis   Axis
}

type CylinderParams struct {
	Radius float32
	Height float32
	Axis   Axis
}

type MeshParams struct {
	Mesh *asset.Mesh
}

func (BoxParams) ShapeType() ShapeType      { return ShapeBox }
func (SphereParams) ShapeType() ShapeType   { return ShapeSphere }
func (CapsuleParams) ShapeType() ShapeType  { return ShapeCapsule }
func (CylinderParams) ShapeType() ShapeType { return ShapeCylinder }
func (MeshParams) ShapeType() ShapeType     { return ShapeMesh }

func (BoxParams) isShapeParams()      {}
func (SphereParams) isShapeParams()   {}
func (CapsuleParams) isShapeParams()  {}
func (CylinderParams) isShapeParams() {}
func (MeshParams) isShapeParams()     {}

// DefaultParams returns the parameters a freshly typed shape starts with.
func DefaultParams(t ShapeType) ShapeParams {
	switch t {
	case ShapeBox:
		return BoxParams{Size: mgl32.Vec3{1, 1, 1}}
	case ShapeSphere:
		return SphereParams{Radius: 0.5}
	case ShapeCapsule:
		return CapsuleParams{Radius: 0.5, Height: 1, Axis: AxisY}
	case ShapeCylinder:
		return CylinderParams{Radius: 0.5, Height: 1, Axis: AxisY}
	case ShapeMesh:
		return MeshParams{}
	}
	return nil
}

// Shape is one collision primitive of a Collider.
type Shape struct {
	params  ShapeParams
	center  mgl32.Vec3
	trigger bool
	dirty   bool
}

func NewShape(t ShapeType) Shape {
	return Shape{params: DefaultParams(t), dirty: true}
}

func (s *Shape) Type() ShapeType {
	if s.params == nil {
		return ShapeNone
	}
	return s.params.ShapeType()
}

// SetType switches the variant and resets its parameters to the defaults.
func (s *Shape) SetType(t ShapeType) {
	s.params = DefaultParams(t)
	s.dirty = true
}

func (s *Shape) Params() ShapeParams { return s.params }

// SetParams replaces the variant and its parameters in one step.
func (s *Shape) SetParams(p ShapeParams) {
	s.params = p
	s.dirty = true
}

func (s *Shape) Box() (BoxParams, bool) {
	p, ok := s.params.(BoxParams)
	return p, ok
}

func (s *Shape) Sphere() (SphereParams, bool) {
	p, ok := s.params.(SphereParams)
	return p, ok
}

func (s *Shape) Capsule() (CapsuleParams, bool) {
	p, ok := s.params.(CapsuleParams)
	return p, ok
}

func (s *Shape) Cylinder() (CylinderParams, bool) {
	p, ok := s.params.(CylinderParams)
	return p, ok
}

func (s *Shape) Mesh() (MeshParams, bool) {
	p, ok := s.params.(MeshParams)
	return p, ok
}

func (s *Shape) Center() mgl32.Vec3 { return s.center }

func (s *Shape) SetCenter(c mgl32.Vec3) {
	s.center = c
	s.dirty = true
}

func (s *Shape) IsTrigger() bool { return s.trigger }

func (s *Shape) SetTrigger(trigger bool) {
	s.trigger = trigger
	s.dirty = true
}

func (s *Shape) IsDirty() bool { return s.dirty }

// Collider is an ordered list of shapes. The zero value is an empty,
// clean collider.
type Collider struct {
	shapes    []*Shape
	syncedLen int
}

// PushShape appends a default shape of type t.
func (c *Collider) PushShape(t ShapeType) *Shape {
	s := NewShape(t)
	return c.PushShapeInfo(s)
}

// PushShapeInfo appends a copy of s, marked dirty.
func (c *Collider) PushShapeInfo(s Shape) *Shape {
	s.dirty = true
	p := &s
	c.shapes = append(c.shapes, p)
	return p
}

func (c *Collider) EraseShape(i int) error {
	if i < 0 || i >= len(c.shapes) {
		return fmt.Errorf("erase shape %d of %d: %w", i, len(c.shapes), ErrShapeIndex)
	}
	c.shapes = append(c.shapes[:i], c.shapes[i+1:]...)
	return nil
}

func (c *Collider) Shape(i int) (*Shape, error) {
	if i < 0 || i >= len(c.shapes) {
		return nil, fmt.Errorf("shape %d of %d: %w", i, len(c.shapes), ErrShapeIndex)
	}
	return c.shapes[i], nil
}

// Shapes returns the live shape list; do not append to it.
func (c *Collider) Shapes() []*Shape { return c.shapes }

func (c *Collider) Len() int    { return len(c.shapes) }
func (c *Collider) Empty() bool { return len(c.shapes) == 0 }

// IsDirty reports any dirty shape or a shape count change since ClearDirty.
func (c *Collider) IsDirty() bool {
	if len(c.shapes) != c.syncedLen {
		return true
	}
	for _, s := range c.shapes {
		if s.dirty {
			return true
		}
	}
	return false
}

// ClearDirty marks the collider synced with the solver.
func (c *Collider) ClearDirty() {
	for _, s := range c.shapes {
		s.dirty = false
	}
	c.syncedLen = len(c.shapes)
}
