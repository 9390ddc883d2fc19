package scene

import (
	"fmt"
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/system"

	"go.uber.org/zap"
)

// Layer is a named group of systems. Systems added before the layer is
// pushed are scheduled, in order, when the scene attaches it.
type Layer struct {
	name    string
	pending []system.System
	sched   *system.Scheduler
}

func NewLayer(name string, systems ...system.System) *Layer {
	return &Layer{name: name, pending: systems}
}

func (l *Layer) Name() string { return l.name }

// Attached reports whether the layer currently belongs to a scene.
func (l *Layer) Attached() bool { return l.sched != nil }

// Add schedules s immediately if the layer is attached, else queues it.
func (l *Layer) Add(s system.System) error {
	if l.sched == nil {
		l.pending = append(l.pending, s)
		return nil
	}
	return l.sched.Schedule(s)
}

// Remove unschedules s from an attached layer.
func (l *Layer) Remove(s system.System) error {
	if l.sched == nil {
		return fmt.Errorf("layer %s: %w", l.name, ErrLayerDetached)
	}
	return l.sched.Unschedule(s)
}

// Systems returns the scheduled systems, or the queued ones while detached.
func (l *Layer) Systems() []system.System {
	if l.sched == nil {
		return append([]system.System(nil), l.pending...)
	}
	return l.sched.Systems()
}

func (l *Layer) attach(w *ecs.World, d *event.Dispatcher, log *zap.Logger) error {
	l.sched = system.NewScheduler(w, d, log.With(zap.String("layer", l.name)))
	pending := l.pending
	l.pending = nil
	for _, s := range pending {
		if err := l.sched.Schedule(s); err != nil {
			return fmt.Errorf("attach layer %s: %w", l.name, err)
		}
	}
	return nil
}

func (l *Layer) detach() {
	if l.sched == nil {
		return
	}
	l.sched.Shutdown()
	l.sched = nil
}

func (l *Layer) update(dt time.Duration) {
	if l.sched != nil {
		l.sched.Update(dt)
	}
}

func (l *Layer) guiRender(dt time.Duration) {
	if l.sched != nil {
		l.sched.GuiRender(dt)
	}
}
