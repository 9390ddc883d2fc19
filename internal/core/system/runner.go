package system

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"

	"go.uber.org/zap"
)

var (
	ErrAlreadyScheduled = errors.New("system already scheduled")
	ErrNotScheduled     = errors.New("system not scheduled")
)

// Scheduler owns the ordered list of systems of one layer. Systems run in
// the order they were scheduled.
type Scheduler struct {
	world      *ecs.World
	dispatcher *event.Dispatcher
	log        *zap.Logger
	systems    []System
}

func NewScheduler(world *ecs.World, dispatcher *event.Dispatcher, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		world:      world,
		dispatcher: dispatcher,
		log:        log,
		systems:    make([]System, 0, 16),
	}
}

// Schedule binds s to the scene, registers it as a listener and calls OnEnter.
func (r *Scheduler) Schedule(s System) error {
	if slices.Contains(r.systems, s) {
		return fmt.Errorf("schedule %s: %w", s.Name(), ErrAlreadyScheduled)
	}
	s.Bind(r.world, r.dispatcher)
	r.systems = append(r.systems, s)
	if r.dispatcher != nil {
		r.dispatcher.RegisterListener(s)
	}
	s.OnEnter()
	s.setState(StateEntered)
	r.log.Debug("system entered", zap.String("system", s.Name()))
	return nil
}

// Unschedule calls OnExit, unregisters s and clears its scene references.
func (r *Scheduler) Unschedule(s System) error {
	i := slices.Index(r.systems, s)
	if i < 0 {
		return fmt.Errorf("unschedule %s: %w", s.Name(), ErrNotScheduled)
	}
	s.OnExit()
	if r.dispatcher != nil {
		r.dispatcher.UnregisterListener(s)
	}
	s.Unbind()
	s.setState(StateExited)
	r.systems = slices.Delete(r.systems, i, i+1)
	r.log.Debug("system exited", zap.String("system", s.Name()))
	return nil
}

func (r *Scheduler) Update(dt time.Duration) {
	for _, s := range slices.Clone(r.systems) {
		if s.State() == StateEntered {
			s.OnUpdate(dt)
		}
	}
}

func (r *Scheduler) GuiRender(dt time.Duration) {
	for _, s := range slices.Clone(r.systems) {
		if s.State() == StateEntered {
			s.OnGuiRender(dt)
		}
	}
}

// Shutdown unschedules every system, last scheduled first.
func (r *Scheduler) Shutdown() {
	for i := len(r.systems) - 1; i >= 0; i-- {
		_ = r.Unschedule(r.systems[i])
	}
}

// Systems returns the scheduled systems in run order.
func (r *Scheduler) Systems() []System { return slices.Clone(r.systems) }

func (r *Scheduler) Len() int { return len(r.systems) }
