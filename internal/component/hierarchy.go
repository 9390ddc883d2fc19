package component

import (
	"errors"
	"fmt"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrCyclicHierarchy = errors.New("cyclic transform hierarchy")

// Hierarchy resolves world-space transforms by walking parent ids through
// the store. Every global query costs one step per ancestor.
type Hierarchy struct {
	world *ecs.World
}

func NewHierarchy(w *ecs.World) Hierarchy {
	return Hierarchy{world: w}
}

// SetParent attaches child under parent. A Null parent detaches child.
// The child's world pose changes, so every value is flagged overridden.
func (h Hierarchy) SetParent(child, parent ecs.EntityID) error {
	ct, err := ecs.Get[Transform](h.world, child)
	if err != nil {
		return fmt.Errorf("set parent: %w", err)
	}
	if parent.IsNull() {
		ct.parent = ecs.Null
		ct.touch(OverrideAll)
		return nil
	}
	if _, err := ecs.Get[Transform](h.world, parent); err != nil {
		return fmt.Errorf("set parent: %w", err)
	}
	visited := make(map[ecs.EntityID]struct{}, 4)
	for cur := parent; !cur.IsNull(); cur = h.Parent(cur) {
		if _, seen := visited[cur]; seen || cur == child {
			return fmt.Errorf("set parent %s under %s: %w", child, parent, ErrCyclicHierarchy)
		}
		visited[cur] = struct{}{}
	}
	ct.parent = parent
	ct.touch(OverrideAll)
	return nil
}

// Parent returns id's parent, or Null when it has none or the stored parent
// is dead or has no Transform.
func (h Hierarchy) Parent(id ecs.EntityID) ecs.EntityID {
	t, ok := ecs.TryGet[Transform](h.world, id)
	if !ok || t.parent.IsNull() {
		return ecs.Null
	}
	if !ecs.Has[Transform](h.world, t.parent) {
		return ecs.Null
	}
	return t.parent
}

// Children returns the entities whose parent is id, in Transform storage order.
func (h Hierarchy) Children(id ecs.EntityID) []ecs.EntityID {
	var out []ecs.EntityID
	ecs.NewView1[Transform](h.world).Each(func(e ecs.EntityID, t *Transform) {
		if t.parent == id && !id.IsNull() {
			out = append(out, e)
		}
	})
	return out
}

// chain returns id's transform followed by its ancestors, leaf first.
func (h Hierarchy) chain(id ecs.EntityID) ([]*Transform, error) {
	t, err := ecs.Get[Transform](h.world, id)
	if err != nil {
		return nil, err
	}
	out := []*Transform{t}
	visited := map[ecs.EntityID]struct{}{id: {}}
	for cur := h.Parent(id); !cur.IsNull(); cur = h.Parent(cur) {
		if _, seen := visited[cur]; seen {
			return nil, fmt.Errorf("resolve %s: %w", id, ErrCyclicHierarchy)
		}
		visited[cur] = struct{}{}
		pt, _ := ecs.TryGet[Transform](h.world, cur)
		out = append(out, pt)
	}
	return out, nil
}

// MatrixGlobal composes the chain root first: root * ... * parent * local.
func (h Hierarchy) MatrixGlobal(id ecs.EntityID) (mgl32.Mat4, error) {
	c, err := h.chain(id)
	if err != nil {
		return mgl32.Ident4(), err
	}
	m := c[len(c)-1].Matrix()
	for i := len(c) - 2; i >= 0; i-- {
		m = m.Mul4(c[i].Matrix())
	}
	return m, nil
}

func (h Hierarchy) InverseMatrixGlobal(id ecs.EntityID) (mgl32.Mat4, error) {
	m, err := h.MatrixGlobal(id)
	if err != nil {
		return m, err
	}
	return m.Inv(), nil
}

// PositionGlobal is the translation column of MatrixGlobal. With no parent
// it returns the local position unchanged.
func (h Hierarchy) PositionGlobal(id ecs.EntityID) (mgl32.Vec3, error) {
	c, err := h.chain(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	if len(c) == 1 {
		return c[0].position, nil
	}
	m, err := h.MatrixGlobal(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return m.Col(3).Vec3(), nil
}

func (h Hierarchy) RotationGlobal(id ecs.EntityID) (mgl32.Quat, error) {
	c, err := h.chain(id)
	if err != nil {
		return mgl32.QuatIdent(), err
	}
	q := c[len(c)-1].rotation
	for i := len(c) - 2; i >= 0; i-- {
		q = q.Mul(c[i].rotation)
	}
	return q.Normalize(), nil
}

// ScaleGlobal multiplies scales component-wise along the chain.
func (h Hierarchy) ScaleGlobal(id ecs.EntityID) (mgl32.Vec3, error) {
	c, err := h.chain(id)
	if err != nil {
		return mgl32.Vec3{1, 1, 1}, err
	}
	s := mgl32.Vec3{1, 1, 1}
	for _, t := range c {
		s = mgl32.Vec3{s[0] * t.scale[0], s[1] * t.scale[1], s[2] * t.scale[2]}
	}
	return s, nil
}

func (h Hierarchy) ForwardGlobal(id ecs.EntityID) (mgl32.Vec3, error) {
	return h.rotatedAxis(id, axisForward)
}

func (h Hierarchy) RightGlobal(id ecs.EntityID) (mgl32.Vec3, error) {
	return h.rotatedAxis(id, axisRight)
}

func (h Hierarchy) UpGlobal(id ecs.EntityID) (mgl32.Vec3, error) {
	return h.rotatedAxis(id, axisUp)
}

func (h Hierarchy) rotatedAxis(id ecs.EntityID, axis mgl32.Vec3) (mgl32.Vec3, error) {
	q, err := h.RotationGlobal(id)
	if err != nil {
		return axis, err
	}
	return q.Rotate(axis), nil
}
