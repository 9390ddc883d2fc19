package physics

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrBodyInWorld    = errors.New("body already in a world")
	ErrBodyNotInWorld = errors.New("body not in this world")
)

const (
	defaultSolverIterations = 10
	baumgarte               = 0.2
	linearSlop              = 0.005
	restitutionThreshold    = 1.0
	timeEpsilon             = 1e-6
)

// ContactPoint is one point of a manifold. Normal points from A to B.
// Distance is negative while the bodies overlap.
type ContactPoint struct {
	PositionWorldOnA mgl32.Vec3
	PositionWorldOnB mgl32.Vec3
	Normal           mgl32.Vec3
	Distance         float32
	ChildA, ChildB   int
	// Trigger is set when either touching piece is a trigger shape.
	Trigger bool
}

// Manifold is the persistent contact set of one body pair.
type Manifold struct {
	bodyA, bodyB *Body
	points       []ContactPoint
}

func (m *Manifold) BodyA() *Body               { return m.bodyA }
func (m *Manifold) BodyB() *Body               { return m.bodyB }
func (m *Manifold) NumContacts() int           { return len(m.points) }
func (m *Manifold) Contact(i int) ContactPoint { return m.points[i] }
func (m *Manifold) Contacts() []ContactPoint   { return m.points }

// ContactCallbacks observe manifold lifecycle during a step. Started fires
// when a pair gains its first point, Ended when it loses its last one (or a
// body leaves the world), Processed once per point per sub-step for pairs
// where either body carries FlagCustomMaterialCallback.
type ContactCallbacks struct {
	Started   func(m *Manifold)
	Ended     func(m *Manifold)
	Processed func(cp ContactPoint, a, b *Body)
}

type pairKey struct{ a, b uint64 }

func keyOf(a, b *Body) pairKey {
	if a.id > b.id {
		a, b = b, a
	}
	return pairKey{a.id, b.id}
}

// World is a discrete dynamics world with fixed sub-stepping. Not safe for
// concurrent use.
type World struct {
	bodies    []*Body
	gravity   mgl32.Vec3
	callbacks ContactCallbacks

	manifolds map[pairKey]*Manifold
	order     []pairKey

	localTime  float64
	iterations int
	nextID     uint64
}

func NewWorld() *World {
	return &World{
		gravity:    mgl32.Vec3{0, -9.81, 0},
		manifolds:  make(map[pairKey]*Manifold, 64),
		iterations: defaultSolverIterations,
	}
}

func (w *World) SetGravity(g mgl32.Vec3) { w.gravity = g }
func (w *World) Gravity() mgl32.Vec3     { return w.gravity }

func (w *World) SetContactCallbacks(cb ContactCallbacks) { w.callbacks = cb }

func (w *World) SetSolverIterations(n int) {
	if n > 0 {
		w.iterations = n
	}
}

func (w *World) NumBodies() int    { return len(w.bodies) }
func (w *World) Bodies() []*Body   { return slices.Clone(w.bodies) }
func (w *World) NumManifolds() int { return len(w.order) }

// Manifolds returns the live manifolds in creation order.
func (w *World) Manifolds() []*Manifold {
	out := make([]*Manifold, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.manifolds[k])
	}
	return out
}

func (w *World) Contains(b *Body) bool { return b != nil && b.world == w }

// AddBody inserts b and applies the world gravity to it.
func (w *World) AddBody(b *Body) error {
	if b.world != nil {
		return fmt.Errorf("add body: %w", ErrBodyInWorld)
	}
	w.nextID++
	b.id = w.nextID
	b.world = w
	b.gravity = w.gravity
	w.bodies = append(w.bodies, b)
	return nil
}

// RemoveBody takes b out of the world, ending every manifold it is part of.
func (w *World) RemoveBody(b *Body) error {
	i := slices.Index(w.bodies, b)
	if i < 0 || b.world != w {
		return fmt.Errorf("remove body: %w", ErrBodyNotInWorld)
	}
	w.bodies = slices.Delete(w.bodies, i, i+1)
	kept := w.order[:0]
	var ended []*Manifold
	for _, k := range w.order {
		m := w.manifolds[k]
		if m.bodyA == b || m.bodyB == b {
			delete(w.manifolds, k)
			ended = append(ended, m)
			continue
		}
		kept = append(kept, k)
	}
	w.order = kept
	b.world = nil
	for _, m := range ended {
		w.endManifold(m)
	}
	return nil
}

func (w *World) endManifold(m *Manifold) {
	if w.callbacks.Ended != nil {
		w.callbacks.Ended(m)
	}
	m.points = nil
}

// StepSimulation advances the world by dt using sub-steps of fixedStep,
// at most maxSubSteps of them; leftover time carries to the next call and
// is used to interpolate motion states. With maxSubSteps <= 0 it takes one
// variable step of dt. It returns the number of sub-steps simulated.
func (w *World) StepSimulation(dt float32, maxSubSteps int, fixedStep float32) int {
	steps := 0
	if maxSubSteps > 0 && fixedStep > 0 {
		w.localTime += float64(dt)
		fixed := float64(fixedStep)
		if w.localTime+timeEpsilon >= fixed {
			steps = int(math.Floor((w.localTime + timeEpsilon) / fixed))
			w.localTime -= float64(steps) * fixed
			if w.localTime < 0 {
				w.localTime = 0
			}
		}
	} else {
		fixedStep = dt
		w.localTime = 0
		maxSubSteps = 1
		if dt > timeEpsilon {
			steps = 1
		}
	}

	clamped := min(steps, maxSubSteps)
	for i := 0; i < clamped; i++ {
		w.saveKinematicState(fixedStep)
		w.singleStep(fixedStep)
	}
	w.synchronizeMotionStates(float32(w.localTime))
	w.clearForces()
	return clamped
}

func (w *World) saveKinematicState(h float32) {
	for _, b := range w.bodies {
		if !b.IsKinematic() || b.motion == nil || b.activation == DisableSimulation {
			continue
		}
		next := b.motion.WorldTransform()
		if h > 0 {
			b.linVel = next.Origin.Sub(b.transform.Origin).Mul(1 / h)
		}
		b.transform = next
		b.interpolate = next
	}
}

func (w *World) singleStep(h float32) {
	for _, b := range w.bodies {
		if !b.dynamic() || !b.IsActive() {
			continue
		}
		acc := b.gravity.Add(b.totalForce.Mul(b.invMass))
		b.linVel = b.linVel.Add(acc.Mul(h))
	}

	constraints := w.collide()
	w.solve(constraints, h)

	for _, b := range w.bodies {
		if !b.dynamic() || !b.IsActive() {
			continue
		}
		b.angVel = mulVec(b.angVel, b.angularFactor)
		b.transform = b.transform.integrate(b.linVel, b.angVel, h)
	}
}

func (w *World) synchronizeMotionStates(leftover float32) {
	for _, b := range w.bodies {
		if b.motion == nil || b.IsStaticOrKinematic() {
			continue
		}
		b.interpolate = b.transform.integrate(b.linVel, b.angVel, leftover)
		b.motion.SetWorldTransform(b.interpolate)
	}
}

func (w *World) clearForces() {
	for _, b := range w.bodies {
		b.ClearForces()
	}
}

type bodyBounds struct {
	prims  []primitive
	lo, hi mgl32.Vec3
}

func boundsOf(b *Body) bodyBounds {
	out := bodyBounds{prims: b.primitives(nil)}
	for i := range out.prims {
		lo, hi := out.prims[i].aabb()
		if i == 0 {
			out.lo, out.hi = lo, hi
			continue
		}
		for k := 0; k < 3; k++ {
			out.lo[k] = min(out.lo[k], lo[k])
			out.hi[k] = max(out.hi[k], hi[k])
		}
	}
	return out
}

func overlaps(a, b bodyBounds) bool {
	for k := 0; k < 3; k++ {
		if a.lo[k] > b.hi[k] || b.lo[k] > a.hi[k] {
			return false
		}
	}
	return true
}

// collide refreshes every manifold and returns the contact constraints the
// solver should resolve.
func (w *World) collide() []constraint {
	bounds := make([]bodyBounds, len(w.bodies))
	for i, b := range w.bodies {
		bounds[i] = boundsOf(b)
	}

	var out []constraint
	seen := make(map[pairKey]struct{}, len(w.order))
	for i, a := range w.bodies {
		if a.activation == DisableSimulation || len(bounds[i].prims) == 0 {
			continue
		}
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if b.activation == DisableSimulation || len(bounds[j].prims) == 0 {
				continue
			}
			if a.IsStaticOrKinematic() && b.IsStaticOrKinematic() {
				continue
			}
			if !overlaps(bounds[i], bounds[j]) {
				continue
			}
			points := narrowphase(bounds[i].prims, bounds[j].prims)
			if len(points) == 0 {
				continue
			}

			k := keyOf(a, b)
			seen[k] = struct{}{}
			m, ok := w.manifolds[k]
			if !ok {
				m = &Manifold{bodyA: a, bodyB: b}
				w.manifolds[k] = m
				w.order = append(w.order, k)
			}
			if m.bodyA != a {
				for p := range points {
					points[p] = points[p].swapped()
				}
			}
			m.points = points
			if !ok && w.callbacks.Started != nil {
				w.callbacks.Started(m)
			}
			w.processed(m)
			out = appendConstraints(out, m)
		}
	}

	kept := w.order[:0]
	var ended []*Manifold
	for _, k := range w.order {
		if _, ok := seen[k]; ok {
			kept = append(kept, k)
			continue
		}
		ended = append(ended, w.manifolds[k])
		delete(w.manifolds, k)
	}
	w.order = kept
	for _, m := range ended {
		w.endManifold(m)
	}
	return out
}

func (w *World) processed(m *Manifold) {
	if w.callbacks.Processed == nil {
		return
	}
	if (m.bodyA.flags|m.bodyB.flags)&FlagCustomMaterialCallback == 0 {
		return
	}
	for _, cp := range m.points {
		w.callbacks.Processed(cp, m.bodyA, m.bodyB)
	}
}

func (cp ContactPoint) swapped() ContactPoint {
	return ContactPoint{
		PositionWorldOnA: cp.PositionWorldOnB,
		PositionWorldOnB: cp.PositionWorldOnA,
		Normal:           cp.Normal.Mul(-1),
		Distance:         cp.Distance,
		ChildA:           cp.ChildB,
		ChildB:           cp.ChildA,
		Trigger:          cp.Trigger,
	}
}

func narrowphase(as, bs []primitive) []ContactPoint {
	var out []ContactPoint
	for i := range as {
		for j := range bs {
			for _, c := range collide(&as[i], &bs[j]) {
				out = append(out, ContactPoint{
					PositionWorldOnA: c.onA,
					PositionWorldOnB: c.onB,
					Normal:           c.normal,
					Distance:         -c.depth,
					ChildA:           as[i].child,
					ChildB:           bs[j].child,
					Trigger:          as[i].trigger || bs[j].trigger,
				})
			}
		}
	}
	return out
}
