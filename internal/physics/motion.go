package physics

// MotionState synchronises a body's pose with the caller. The world writes
// interpolated poses of dynamic bodies into it after every step and reads
// kinematic poses from it before every sub-step.
type MotionState interface {
	WorldTransform() Transform
	SetWorldTransform(Transform)
}

// DefaultMotionState stores the last pose it was given.
type DefaultMotionState struct {
	transform Transform
}

func NewDefaultMotionState(start Transform) *DefaultMotionState {
	return &DefaultMotionState{transform: start}
}

func (m *DefaultMotionState) WorldTransform() Transform     { return m.transform }
func (m *DefaultMotionState) SetWorldTransform(t Transform) { m.transform = t }
