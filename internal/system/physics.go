package system

import (
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/component"
	"github.com/Mandelbrottt/Yr2-Engine/internal/config"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"
	coresys "github.com/Mandelbrottt/Yr2-Engine/internal/core/system"
	"github.com/Mandelbrottt/Yr2-Engine/internal/physics"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Binding is the solver-side state cached for one entity.
type Binding struct {
	Shape  physics.Shape
	Motion *physics.DefaultMotionState
	Body   *physics.Body
	Shapes int // collider shape count the body was built from
}

// RaycastResult is the closest hit of RaycastClosest. Distance is measured
// from Start to Position.
type RaycastResult struct {
	Hit       bool
	Start     mgl32.Vec3
	End       mgl32.Vec3
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	Fraction  float32
	Distance  float32
	Entity    ecs.EntityID
	HasEntity bool
}

type entityPair struct{ a, b ecs.EntityID }

func pairOf(a, b ecs.EntityID) entityPair {
	if a > b {
		a, b = b, a
	}
	return entityPair{a, b}
}

type lifecycleKey struct {
	phase event.Type
	pair  entityPair
}

// contactSum aggregates one frame of contact points for a pair.
type contactSum struct {
	e1, e2     ecs.EntityID
	count      int
	sum        mgl32.Vec3
	allTrigger bool
}

// PhysicsSystem keeps the solver world in step with Transform, RigidBody
// and Collider components and turns solver contacts into physics events.
type PhysicsSystem struct {
	coresys.Base

	cfg   config.PhysicsConfig
	log   *zap.Logger
	world *physics.World

	bindings map[ecs.EntityID]*Binding

	lifecycle []event.PhysicsCollision
	last      lifecycleKey
	hasLast   bool
	contacts  map[entityPair]*contactSum
	order     []entityPair

	// epoch changes whenever the solver world is torn down, so event
	// posting can stop once a listener resets or unschedules the system.
	epoch uint64
}

func NewPhysicsSystem(cfg config.PhysicsConfig, log *zap.Logger) *PhysicsSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &PhysicsSystem{cfg: cfg, log: log}
	s.ListenForEventType(event.TypePhysicsResetWorld)
	return s
}

func (s *PhysicsSystem) Name() string { return "physics" }

// SolverWorld is nil outside the Entered state.
func (s *PhysicsSystem) SolverWorld() *physics.World { return s.world }

func (s *PhysicsSystem) BodyCount() int { return len(s.bindings) }

func (s *PhysicsSystem) Binding(id ecs.EntityID) (*Binding, bool) {
	b, ok := s.bindings[id]
	return b, ok
}

func (s *PhysicsSystem) OnEnter() {
	s.world = physics.NewWorld()
	s.world.SetGravity(mgl32.Vec3(s.cfg.Gravity))
	s.world.SetSolverIterations(s.cfg.SolverIterations)
	s.world.SetContactCallbacks(physics.ContactCallbacks{
		Started:   func(m *physics.Manifold) { s.onManifold(event.TypePhysicsCollisionEnter, m) },
		Ended:     func(m *physics.Manifold) { s.onManifold(event.TypePhysicsCollisionExit, m) },
		Processed: s.onContact,
	})
	s.bindings = make(map[ecs.EntityID]*Binding, 64)
	s.contacts = make(map[entityPair]*contactSum, 16)
	s.resetFrame()
}

func (s *PhysicsSystem) OnExit() {
	if s.world == nil {
		return
	}
	s.epoch++
	s.world.SetContactCallbacks(physics.ContactCallbacks{})
	for id := range s.bindings {
		s.unbind(id)
	}
	s.world = nil
	s.bindings = nil
	s.resetFrame()
}

func (s *PhysicsSystem) OnEvent(e event.Event) bool {
	if e.Type() != event.TypePhysicsResetWorld {
		return false
	}
	n := len(s.bindings)
	s.OnExit()
	s.OnEnter()
	s.log.Info("physics world reset", zap.Int("bodies_dropped", n))
	return true
}

func (s *PhysicsSystem) OnUpdate(dt time.Duration) {
	w := s.World()
	if w == nil || s.world == nil {
		return
	}
	s.resetFrame()
	s.collectGarbage(w)
	s.syncIn(w)

	s.world.StepSimulation(float32(dt.Seconds()), s.cfg.MaxSubSteps, s.cfg.FixedStep)

	s.postEvents()
	s.syncOut(w)
}

func (s *PhysicsSystem) OnGuiRender(_ time.Duration) {
	if s.world == nil {
		return
	}
	ce := s.log.Check(zap.DebugLevel, "physics bodies")
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, len(s.bindings)+2)
	fields = append(fields,
		zap.Int("bodies", s.world.NumBodies()),
		zap.Int("manifolds", s.world.NumManifolds()),
	)
	for id, b := range s.bindings {
		v := b.Body.LinearVelocity()
		fields = append(fields, zap.Float32s(id.String(), v[:]))
	}
	ce.Write(fields...)
}

func (s *PhysicsSystem) resetFrame() {
	s.lifecycle = s.lifecycle[:0]
	s.hasLast = false
	clear(s.contacts)
	s.order = s.order[:0]
}

// collectGarbage drops bindings whose entity died or lost its RigidBody or
// Transform.
func (s *PhysicsSystem) collectGarbage(w *ecs.World) {
	for id := range s.bindings {
		if w.Alive(id) && ecs.Has[component.RigidBody](w, id) && ecs.Has[component.Transform](w, id) {
			continue
		}
		s.unbind(id)
		s.log.Debug("physics binding collected", zap.Stringer("entity", id))
	}
}

func (s *PhysicsSystem) unbind(id ecs.EntityID) {
	b, ok := s.bindings[id]
	if !ok {
		return
	}
	if b.Body.InWorld() {
		if err := s.world.RemoveBody(b.Body); err != nil {
			s.log.Warn("remove body", zap.Stringer("entity", id), zap.Error(err))
		}
	}
	delete(s.bindings, id)
}

func (s *PhysicsSystem) syncIn(w *ecs.World) {
	h := component.NewHierarchy(w)
	ecs.NewView2[component.Transform, component.RigidBody](w).Each(func(id ecs.EntityID, tr *component.Transform, rb *component.RigidBody) {
		col, err := ecs.GetOrAssign(w, id, func() component.Collider { return component.Collider{} })
		if err != nil {
			s.log.Warn("collider", zap.Stringer("entity", id), zap.Error(err))
			return
		}
		if col.Empty() {
			if _, ok := s.bindings[id]; ok {
				s.unbind(id)
				s.log.Debug("physics binding torn down", zap.Stringer("entity", id), zap.String("reason", "empty collider"))
			}
			col.ClearDirty()
			return
		}

		b, ok := s.bindings[id]
		if !ok || col.IsDirty() || b.Shapes != col.Len() {
			b, err = s.rebuild(h, id, rb, col)
			if err != nil {
				s.log.Warn("physics rebuild", zap.Stringer("entity", id), zap.Error(err))
				return
			}
		}

		s.pushOverrides(h, id, tr, rb, b)
		s.pushProperties(rb, b)
	})
}

func (s *PhysicsSystem) rebuild(h component.Hierarchy, id ecs.EntityID, rb *component.RigidBody, col *component.Collider) (*Binding, error) {
	pos, err := h.PositionGlobal(id)
	if err != nil {
		return nil, err
	}
	rot, err := h.RotationGlobal(id)
	if err != nil {
		return nil, err
	}
	scale, err := h.ScaleGlobal(id)
	if err != nil {
		return nil, err
	}

	s.unbind(id)

	shape := buildShape(col)
	shape.SetLocalScaling(scale)
	start := physics.NewTransform(pos, rot)
	motion := physics.NewDefaultMotionState(start)
	mass := bodyMass(rb)
	body := physics.NewBody(physics.BodyInfo{
		Mass:         mass,
		MotionState:  motion,
		Shape:        shape,
		LocalInertia: shape.LocalInertia(mass),
	})
	body.SetUserData(id)
	if err := s.world.AddBody(body); err != nil {
		return nil, err
	}

	b := &Binding{Shape: shape, Motion: motion, Body: body, Shapes: col.Len()}
	s.bindings[id] = b
	col.ClearDirty()
	s.log.Debug("physics body built",
		zap.Stringer("entity", id),
		zap.Stringer("shape", shape.Kind()),
		zap.Int("shapes", b.Shapes),
	)
	return b, nil
}

func bodyMass(rb *component.RigidBody) float32 {
	if rb.IsKinematic() {
		return 0
	}
	return rb.Mass()
}

func buildShape(col *component.Collider) physics.Shape {
	shapes := col.Shapes()
	if len(shapes) == 1 && shapes[0].Center() == (mgl32.Vec3{}) {
		return convertShape(shapes[0])
	}
	compound := physics.NewCompoundShape()
	for _, sh := range shapes {
		compound.AddChildShape(physics.NewTransform(sh.Center(), mgl32.QuatIdent()), convertShape(sh))
	}
	return compound
}

func convertShape(sh *component.Shape) physics.Shape {
	var out physics.Shape
	switch p := sh.Params().(type) {
	case component.BoxParams:
		out = physics.NewBoxShape(p.Size.Mul(0.5))
	case component.SphereParams:
		out = physics.NewSphereShape(p.Radius)
	case component.CapsuleParams:
		out = physics.NewCapsuleShape(p.Radius, p.Height, physics.Axis(p.Axis))
	case component.CylinderParams:
		out = physics.NewCylinderShape(p.Radius, p.Height, physics.Axis(p.Axis))
	case component.MeshParams:
		var points []mgl32.Vec3
		if p.Mesh != nil {
			points = p.Mesh.Vertices
		}
		out = physics.NewConvexHullShape(points)
	default:
		out = physics.NewBoxShape(mgl32.Vec3{})
	}
	out.SetTrigger(sh.IsTrigger())
	return out
}

// pushOverrides copies gameplay edits of the Transform into the solver.
// Kinematic bodies are always driven from the Transform through their
// motion state.
func (s *PhysicsSystem) pushOverrides(h component.Hierarchy, id ecs.EntityID, tr *component.Transform, rb *component.RigidBody, b *Binding) {
	ov := tr.Overridden()
	kinematic := rb.IsKinematic()
	if kinematic || ov&(component.OverridePosition|component.OverrideRotation) != 0 {
		pose := b.Body.WorldTransform()
		if kinematic || ov&component.OverridePosition != 0 {
			if p, err := h.PositionGlobal(id); err == nil {
				pose.Origin = p
			}
		}
		if kinematic || ov&component.OverrideRotation != 0 {
			if r, err := h.RotationGlobal(id); err == nil {
				pose.Rotation = r
			}
		}
		b.Motion.SetWorldTransform(pose)
		if !kinematic {
			b.Body.SetWorldTransform(pose)
		}
	}
	if ov&component.OverrideScale != 0 {
		if sc, err := h.ScaleGlobal(id); err == nil {
			b.Shape.SetLocalScaling(sc)
		}
	}
	tr.ClearOverridden(component.OverrideAll)
}

func (s *PhysicsSystem) pushProperties(rb *component.RigidBody, b *Binding) {
	body := b.Body
	body.SetFriction(rb.Friction())
	body.SetRestitution(rb.Restitution())

	flags := physics.FlagCustomMaterialCallback
	if !rb.Property(component.PropDetectCollisions) {
		flags |= physics.FlagNoContactResponse
	}
	if rb.Property(component.PropUseGravity) {
		body.SetGravity(s.world.Gravity())
	} else {
		body.SetGravity(mgl32.Vec3{})
	}

	if rb.IsKinematic() {
		body.SetCollisionFlags(flags | physics.FlagKinematic)
		body.SetMassProps(0, mgl32.Vec3{})
		body.ForceActivationState(physics.DisableDeactivation)
		body.SetLinearVelocity(mgl32.Vec3{})
		body.SetAngularVelocity(mgl32.Vec3{})
		rb.ClearImpulse()
		return
	}

	body.SetCollisionFlags(flags)
	body.SetMassProps(rb.Mass(), b.Shape.LocalInertia(rb.Mass()))
	if body.ActivationState() == physics.DisableDeactivation {
		body.ForceActivationState(physics.ActiveTag)
	}
	body.SetLinearVelocity(rb.Velocity())
	body.SetAngularFactor(angularFactor(rb))
	body.ApplyCentralForce(rb.Force())
	body.ApplyCentralImpulse(rb.Impulse())
}

func angularFactor(rb *component.RigidBody) mgl32.Vec3 {
	f := mgl32.Vec3{1, 1, 1}
	if rb.Property(component.PropFreezeRotationX) {
		f[0] = 0
	}
	if rb.Property(component.PropFreezeRotationY) {
		f[1] = 0
	}
	if rb.Property(component.PropFreezeRotationZ) {
		f[2] = 0
	}
	return f
}

func (s *PhysicsSystem) entityOf(b *physics.Body) (ecs.EntityID, bool) {
	id, ok := b.UserData().(ecs.EntityID)
	if !ok {
		return ecs.Null, false
	}
	if bound, ok := s.bindings[id]; !ok || bound.Body != b {
		return ecs.Null, false
	}
	return id, true
}

// alive filters contacts of entities destroyed since the last sync. Their
// bodies are still in the solver until collectGarbage removes them.
func (s *PhysicsSystem) alive(ids ...ecs.EntityID) bool {
	w := s.World()
	if w == nil {
		return false
	}
	for _, id := range ids {
		if !w.Alive(id) {
			return false
		}
	}
	return true
}

func triggerPair(m *physics.Manifold) bool {
	if !m.BodyA().HasContactResponse() || !m.BodyB().HasContactResponse() {
		return true
	}
	if m.NumContacts() == 0 {
		return false
	}
	for _, cp := range m.Contacts() {
		if !cp.Trigger {
			return false
		}
	}
	return true
}

// onManifold buffers enter/exit events. A callback repeating the previous
// (phase, pair) is dropped.
func (s *PhysicsSystem) onManifold(phase event.Type, m *physics.Manifold) {
	e1, ok1 := s.entityOf(m.BodyA())
	e2, ok2 := s.entityOf(m.BodyB())
	if !ok1 || !ok2 {
		s.log.Warn("contact on unmapped body", zap.Stringer("phase", phase))
		return
	}
	if !s.alive(e1, e2) {
		return
	}
	key := lifecycleKey{phase: phase, pair: pairOf(e1, e2)}
	if s.hasLast && s.last == key {
		return
	}
	s.last, s.hasLast = key, true

	kind := phase
	if triggerPair(m) {
		if phase == event.TypePhysicsCollisionEnter {
			kind = event.TypePhysicsTriggerEnter
		} else {
			kind = event.TypePhysicsTriggerExit
		}
	}
	s.lifecycle = append(s.lifecycle, event.PhysicsCollision{Kind: kind, Entity1: e1, Entity2: e2})
}

func (s *PhysicsSystem) onContact(cp physics.ContactPoint, a, b *physics.Body) {
	e1, ok1 := s.entityOf(a)
	e2, ok2 := s.entityOf(b)
	if !ok1 || !ok2 || !s.alive(e1, e2) {
		return
	}
	key := pairOf(e1, e2)
	sum, ok := s.contacts[key]
	if !ok {
		sum = &contactSum{e1: e1, e2: e2, allTrigger: true}
		s.contacts[key] = sum
		s.order = append(s.order, key)
	}
	sum.count++
	sum.sum = sum.sum.Add(cp.PositionWorldOnA.Add(cp.PositionWorldOnB).Mul(0.5))
	if !cp.Trigger {
		sum.allTrigger = false
	}
}

// postEvents sends the buffered enter/exit events, then one stay event per
// pair still in contact with the pair's averaged contact point. A listener
// that resets the world or unschedules the system drops the rest of the
// frame's events.
func (s *PhysicsSystem) postEvents() {
	epoch := s.epoch
	lifecycle, order, contacts := s.lifecycle, s.order, s.contacts
	for _, e := range lifecycle {
		s.PostEvent(e)
		if s.epoch != epoch {
			return
		}
	}
	w := s.World()
	for _, key := range order {
		sum := contacts[key]
		kind := event.TypePhysicsCollisionStay
		if sum.allTrigger || !detects(w, sum.e1) || !detects(w, sum.e2) {
			kind = event.TypePhysicsTriggerStay
		}
		s.PostEvent(event.PhysicsCollision{
			Kind:         kind,
			Entity1:      sum.e1,
			Entity2:      sum.e2,
			ContactPoint: sum.sum.Mul(1 / float32(sum.count)),
		})
		if s.epoch != epoch {
			return
		}
	}
}

func detects(w *ecs.World, id ecs.EntityID) bool {
	rb, ok := ecs.TryGet[component.RigidBody](w, id)
	return ok && rb.Property(component.PropDetectCollisions)
}

func (s *PhysicsSystem) syncOut(w *ecs.World) {
	h := component.NewHierarchy(w)
	for id, b := range s.bindings {
		tr, ok := ecs.TryGet[component.Transform](w, id)
		if !ok {
			continue
		}
		rb, ok := ecs.TryGet[component.RigidBody](w, id)
		if !ok || rb.IsKinematic() {
			continue
		}

		pose := b.Motion.WorldTransform()
		if !rb.Property(component.PropDoInterpolation) {
			pose = b.Body.WorldTransform()
		}
		pos, rot := pose.Origin, pose.Rotation
		if parent := h.Parent(id); !parent.IsNull() {
			inv, err := h.InverseMatrixGlobal(parent)
			if err != nil {
				s.log.Warn("physics write-back", zap.Stringer("entity", id), zap.Error(err))
				continue
			}
			prot, err := h.RotationGlobal(parent)
			if err != nil {
				s.log.Warn("physics write-back", zap.Stringer("entity", id), zap.Error(err))
				continue
			}
			pos = mgl32.TransformCoordinate(pos, inv)
			rot = prot.Inverse().Mul(rot)
		}
		tr.WriteBack(pos, rot)

		rb.SetVelocity(b.Body.LinearVelocity())
		rb.SetForce(b.Body.TotalForce())
		rb.ClearImpulse()
	}
}

// RaycastClosest casts from origin along dir for maxDist and maps the hit
// body back to its entity.
func (s *PhysicsSystem) RaycastClosest(origin, dir mgl32.Vec3, maxDist float32) RaycastResult {
	res := RaycastResult{Start: origin, End: origin, Entity: ecs.Null}
	if s.world == nil || dir.LenSqr() == 0 || maxDist <= 0 {
		return res
	}
	res.End = origin.Add(dir.Normalize().Mul(maxDist))
	hit := s.world.RayTestClosest(res.Start, res.End)
	res.Fraction = hit.Fraction
	if !hit.HasHit {
		return res
	}
	res.Hit = true
	res.Position = hit.HitPoint
	res.Normal = hit.HitNormal
	res.Distance = hit.HitPoint.Sub(origin).Len()

	for id, b := range s.bindings {
		if b.Body == hit.Body {
			res.Entity, res.HasEntity = id, true
			return res
		}
	}
	s.log.Warn("raycast hit unmapped body", zap.Float32s("position", res.Position[:]))
	return res
}
