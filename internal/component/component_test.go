package component

import (
	"testing"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-3

func assertVecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], epsilon, "component %d of %v vs %v", i, got, want)
	}
}

func spawn(t *testing.T, w *ecs.World, tr Transform) ecs.EntityID {
	t.Helper()
	id := w.CreateEntity()
	_, err := ecs.Assign(w, id, tr)
	require.NoError(t, err)
	return id
}

func TestNewTransformDefaults(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, tr.Scale())
	assert.Equal(t, mgl32.QuatIdent(), tr.Rotation())
	assert.Equal(t, OverrideAll, tr.Overridden())
	assert.True(t, tr.IsLocalDirty())
	assert.Equal(t, mgl32.Ident4(), tr.Matrix())
	assert.False(t, tr.IsLocalDirty())
}

func TestSettersMarkDirtyAndOverridden(t *testing.T) {
	tr := NewTransform()
	tr.Matrix()
	tr.ClearOverridden(OverrideAll)

	tr.SetPositionY(3)
	assert.True(t, tr.IsLocalDirty())
	assert.Equal(t, OverridePosition, tr.Overridden())
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, tr.Matrix().Col(3).Vec3())

	tr.SetScaleX(2)
	tr.SetRotationEuler(mgl32.Vec3{0, 90, 0})
	assert.Equal(t, OverrideAll, tr.Overridden())

	tr.ClearOverridden(OverrideRotation)
	assert.Equal(t, OverridePosition|OverrideScale, tr.Overridden())
}

func TestWriteBackLeavesOverridesAlone(t *testing.T) {
	tr := NewTransform()
	tr.Matrix()
	tr.ClearOverridden(OverrideAll)

	tr.WriteBack(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent())
	assert.True(t, tr.IsLocalDirty())
	assert.Zero(t, tr.Overridden())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position())
}

func TestEulerRoundTrip(t *testing.T) {
	tr := NewTransform()
	tr.SetRotationEuler(mgl32.Vec3{10, 20, 30})
	assertVecNear(t, mgl32.Vec3{10, 20, 30}, tr.RotationEuler())

	tr.SetRotationEulerZ(-45)
	assertVecNear(t, mgl32.Vec3{10, 20, -45}, tr.RotationEuler())
}

func TestTranslateLocalAndWorld(t *testing.T) {
	tr := NewTransform()
	tr.SetRotationEuler(mgl32.Vec3{0, 90, 0})

	tr.Translate(mgl32.Vec3{1, 0, 0}, false)
	assertVecNear(t, mgl32.Vec3{1, 0, 0}, tr.Position())

	tr.Translate(mgl32.Vec3{1, 0, 0}, true)
	assertVecNear(t, mgl32.Vec3{1, 0, -1}, tr.Position())
	assertVecNear(t, mgl32.Vec3{-1, 0, 0}, tr.Forward())
}

func TestRootGlobalEqualsLocal(t *testing.T) {
	w := ecs.NewWorld()
	tr := NewTransformAt(mgl32.Vec3{4, 5, 6})
	tr.SetRotationEuler(mgl32.Vec3{15, 0, 0})
	id := spawn(t, w, tr)
	h := NewHierarchy(w)

	pos, err := h.PositionGlobal(id)
	require.NoError(t, err)
	local, _ := ecs.Get[Transform](w, id)
	assert.Equal(t, local.Position(), pos)

	m, err := h.MatrixGlobal(id)
	require.NoError(t, err)
	assert.Equal(t, local.Matrix(), m)
}

func TestChildMatrixComposesParent(t *testing.T) {
	w := ecs.NewWorld()
	h := NewHierarchy(w)

	pt := NewTransformAt(mgl32.Vec3{10, 0, 0})
	pt.SetRotationEuler(mgl32.Vec3{0, 90, 0})
	pt.SetScale(mgl32.Vec3{2, 2, 2})
	parent := spawn(t, w, pt)
	child := spawn(t, w, NewTransformAt(mgl32.Vec3{1, 0, 0}))
	require.NoError(t, h.SetParent(child, parent))

	pm, err := h.MatrixGlobal(parent)
	require.NoError(t, err)
	cm, err := h.MatrixGlobal(child)
	require.NoError(t, err)
	local, _ := ecs.Get[Transform](w, child)
	assert.Equal(t, pm.Mul4(local.Matrix()), cm)

	again, err := h.MatrixGlobal(child)
	require.NoError(t, err)
	assert.Equal(t, cm, again)

	pos, err := h.PositionGlobal(child)
	require.NoError(t, err)
	assertVecNear(t, mgl32.Vec3{10, 0, -2}, pos)

	scale, err := h.ScaleGlobal(child)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, scale)

	fwd, err := h.ForwardGlobal(child)
	require.NoError(t, err)
	assertVecNear(t, mgl32.Vec3{-1, 0, 0}, fwd)

	inv, err := h.InverseMatrixGlobal(child)
	require.NoError(t, err)
	back := inv.Mul4x1(pos.Vec4(1)).Vec3()
	assertVecNear(t, mgl32.Vec3{}, back)

	assert.Equal(t, []ecs.EntityID{child}, h.Children(parent))
}

func TestSetParentRejectsCycles(t *testing.T) {
	w := ecs.NewWorld()
	h := NewHierarchy(w)
	a := spawn(t, w, NewTransform())
	b := spawn(t, w, NewTransform())
	c := spawn(t, w, NewTransform())

	require.NoError(t, h.SetParent(b, a))
	require.NoError(t, h.SetParent(c, b))

	assert.ErrorIs(t, h.SetParent(a, c), ErrCyclicHierarchy)
	assert.ErrorIs(t, h.SetParent(a, a), ErrCyclicHierarchy)
	assert.Equal(t, ecs.Null, h.Parent(a))

	require.NoError(t, h.SetParent(c, ecs.Null))
	assert.Equal(t, ecs.Null, h.Parent(c))
}

func TestSetParentFlagsOverrides(t *testing.T) {
	w := ecs.NewWorld()
	h := NewHierarchy(w)
	parent := spawn(t, w, NewTransform())
	child := spawn(t, w, NewTransform())
	ct, _ := ecs.Get[Transform](w, child)
	ct.ClearOverridden(OverrideAll)

	require.NoError(t, h.SetParent(child, parent))
	assert.Equal(t, OverrideAll, ct.Overridden())
}

func TestResolutionDetectsForcedCycle(t *testing.T) {
	w := ecs.NewWorld()
	h := NewHierarchy(w)
	a := spawn(t, w, NewTransform())
	b := spawn(t, w, NewTransform())
	ta, _ := ecs.Get[Transform](w, a)
	tb, _ := ecs.Get[Transform](w, b)
	ta.parent, tb.parent = b, a

	_, err := h.MatrixGlobal(a)
	assert.ErrorIs(t, err, ErrCyclicHierarchy)
}

func TestDeadParentIsAbsent(t *testing.T) {
	w := ecs.NewWorld()
	h := NewHierarchy(w)
	parent := spawn(t, w, NewTransformAt(mgl32.Vec3{5, 0, 0}))
	child := spawn(t, w, NewTransformAt(mgl32.Vec3{1, 0, 0}))
	require.NoError(t, h.SetParent(child, parent))
	require.NoError(t, w.Destroy(parent))

	assert.Equal(t, ecs.Null, h.Parent(child))
	pos, err := h.PositionGlobal(child)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, pos)

	_, err = h.PositionGlobal(parent)
	assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
}

func TestRigidBodyRoundTrip(t *testing.T) {
	rb := NewRigidBody()
	assert.Equal(t, DefaultMass, rb.Mass())
	assert.Equal(t, DefaultFriction, rb.Friction())
	assert.Equal(t, DefaultProperties, rb.Properties())

	props := PropDetectCollisions | PropFreezeRotationY
	rb.SetMass(2.5)
	rb.OverwriteProperties(props)
	assert.Equal(t, float32(2.5), rb.Mass())
	assert.Equal(t, props, rb.Properties())
	assert.True(t, rb.Property(PropFreezeRotationY))
	assert.False(t, rb.Property(PropUseGravity))
	assert.False(t, rb.IsKinematic())

	rb.SetProperties(PropUseGravity|PropFreezeRotationX, true)
	assert.True(t, rb.Property(PropUseGravity|PropFreezeRotationX))
	rb.SetProperties(PropFreezeRotationX, false)
	assert.False(t, rb.Property(PropFreezeRotationX))
}

func TestRestitutionIsClamped(t *testing.T) {
	rb := NewRigidBody()
	assert.Zero(t, rb.Restitution())
	rb.SetRestitution(0.4)
	assert.Equal(t, float32(0.4), rb.Restitution())
	rb.SetRestitution(3)
	assert.Equal(t, float32(1), rb.Restitution())
	rb.SetRestitution(-1)
	assert.Zero(t, rb.Restitution())
}

func TestZeroMassIsKinematic(t *testing.T) {
	rb := NewRigidBody()
	rb.SetMass(-3)
	assert.Zero(t, rb.Mass())
	assert.False(t, rb.Property(PropIsKinematic))
	assert.True(t, rb.IsKinematic())

	rb.SetMass(1)
	assert.False(t, rb.IsKinematic())
	rb.SetProperties(PropIsKinematic, true)
	assert.True(t, rb.IsKinematic())
}

func TestRigidBodyImpulseAccumulates(t *testing.T) {
	rb := NewRigidBody()
	rb.AddImpulse(mgl32.Vec3{1, 0, 0})
	rb.AddImpulse(mgl32.Vec3{0, 2, 0})
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, rb.Impulse())
	rb.ClearImpulse()
	assert.Equal(t, mgl32.Vec3{}, rb.Impulse())
}

func TestColliderDirtyPropagation(t *testing.T) {
	var c Collider
	assert.False(t, c.IsDirty())

	box := c.PushShape(ShapeBox)
	assert.True(t, c.IsDirty())
	c.ClearDirty()
	assert.False(t, c.IsDirty())
	assert.False(t, box.IsDirty())

	box.SetCenter(mgl32.Vec3{0, 1, 0})
	assert.True(t, c.IsDirty())
	c.ClearDirty()

	require.NoError(t, c.EraseShape(0))
	assert.True(t, c.Empty())
	assert.True(t, c.IsDirty())
	c.ClearDirty()
	assert.False(t, c.IsDirty())

	assert.ErrorIs(t, c.EraseShape(0), ErrShapeIndex)
	_, err := c.Shape(3)
	assert.ErrorIs(t, err, ErrShapeIndex)
}

func TestShapeSetTypeResetsParams(t *testing.T) {
	s := NewShape(ShapeCapsule)
	p, ok := s.Capsule()
	require.True(t, ok)
	assert.Equal(t, CapsuleParams{Radius: 0.5, Height: 1, Axis: AxisY}, p)

	s.SetParams(SphereParams{Radius: 3})
	assert.Equal(t, ShapeSphere, s.Type())

	s.SetType(ShapeSphere)
	sp, ok := s.Sphere()
	require.True(t, ok)
	assert.Equal(t, float32(0.5), sp.Radius)

	s.SetType(ShapeBox)
	_, ok = s.Sphere()
	assert.False(t, ok)
	bp, ok := s.Box()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, bp.Size)
}

func TestParseShapeType(t *testing.T) {
	for _, st := range []ShapeType{ShapeBox, ShapeSphere, ShapeCapsule, ShapeCylinder, ShapeMesh} {
		got, err := ParseShapeType(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := ParseShapeType("torus")
	assert.Error(t, err)
}

func TestPushShapeInfoCopies(t *testing.T) {
	var c Collider
	info := NewShape(ShapeSphere)
	info.SetTrigger(true)
	p := c.PushShapeInfo(info)
	p.SetCenter(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, mgl32.Vec3{}, info.Center())
	assert.True(t, c.Shapes()[0].IsTrigger())
	assert.Equal(t, 1, c.Len())
}
