package system

import (
	"testing"
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	Base
	name  string
	trace *[]string
	seen  int
}

func newProbe(name string, trace *[]string) *probe {
	return &probe{name: name, trace: trace}
}

func (p *probe) Name() string { return p.name }

func (p *probe) OnEnter() { *p.trace = append(*p.trace, p.name+":enter") }
func (p *probe) OnExit()  { *p.trace = append(*p.trace, p.name+":exit") }

func (p *probe) OnUpdate(time.Duration) {
	*p.trace = append(*p.trace, p.name+":update")
}

func (p *probe) OnEvent(event.Event) bool {
	p.seen++
	return false
}

func TestScheduleBindsAndEnters(t *testing.T) {
	w := ecs.NewWorld()
	d := event.NewDispatcher(nil)
	r := NewScheduler(w, d, nil)
	var trace []string
	p := newProbe("p", &trace)
	p.ListenForEventCategory(event.CategoryWindow)

	require.Equal(t, StateUninitialized, p.State())
	require.NoError(t, r.Schedule(p))
	assert.Equal(t, StateEntered, p.State())
	assert.Same(t, w, p.World())
	assert.Same(t, d, p.Dispatcher())
	assert.Equal(t, 1, d.Len())

	d.PostEvent(event.WindowClosed{})
	assert.Equal(t, 1, p.seen)

	err := r.Schedule(p)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)
	assert.Equal(t, []string{"p:enter"}, trace)
}

func TestUnscheduleClearsReferences(t *testing.T) {
	d := event.NewDispatcher(nil)
	r := NewScheduler(ecs.NewWorld(), d, nil)
	var trace []string
	p := newProbe("p", &trace)
	require.NoError(t, r.Schedule(p))

	require.NoError(t, r.Unschedule(p))
	assert.Equal(t, StateExited, p.State())
	assert.Nil(t, p.World())
	assert.Nil(t, p.Dispatcher())
	assert.Equal(t, 0, d.Len())
	assert.False(t, p.PostEvent(event.WindowClosed{}))

	assert.ErrorIs(t, r.Unschedule(p), ErrNotScheduled)
}

func TestUpdateRunsInScheduleOrderAndShutdownReverses(t *testing.T) {
	r := NewScheduler(ecs.NewWorld(), event.NewDispatcher(nil), nil)
	var trace []string
	a, b, c := newProbe("a", &trace), newProbe("b", &trace), newProbe("c", &trace)
	for _, s := range []*probe{a, b, c} {
		require.NoError(t, r.Schedule(s))
	}
	trace = trace[:0]

	r.Update(time.Second / 60)
	assert.Equal(t, []string{"a:update", "b:update", "c:update"}, trace)

	trace = trace[:0]
	r.Shutdown()
	assert.Equal(t, []string{"c:exit", "b:exit", "a:exit"}, trace)
	assert.Equal(t, 0, r.Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "entered", StateEntered.String())
	assert.Equal(t, "exited", StateExited.String())
}
