package event

import (
	"slices"

	"go.uber.org/zap"
)

// Dispatcher is a synchronous publish/subscribe bus. PostEvent delivers to
// every interested listener in registration order before returning; nothing
// is queued, so an event nobody listens for is lost.
//
// A listener reporting the event as consumed does not stop propagation: all
// interested listeners always see the event.
//
// Single-goroutine access only (game loop).
type Dispatcher struct {
	listeners []Listener
	log       *zap.Logger
	depth     int
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		listeners: make([]Listener, 0, 16),
		log:       log,
	}
}

// RegisterListener appends l. Registering the same listener twice is a no-op.
func (d *Dispatcher) RegisterListener(l Listener) {
	if slices.Contains(d.listeners, l) {
		return
	}
	d.listeners = append(d.listeners, l)
}

// UnregisterListener removes l, keeping the order of the others.
func (d *Dispatcher) UnregisterListener(l Listener) {
	if i := slices.Index(d.listeners, l); i >= 0 {
		d.listeners = slices.Delete(d.listeners, i, i+1)
	}
}

func (d *Dispatcher) Len() int { return len(d.listeners) }

// PostEvent delivers e and reports whether any listener consumed it.
// Listeners (un)registered during delivery take effect on the next post.
// Handlers may post further events; those are delivered immediately.
func (d *Dispatcher) PostEvent(e Event) bool {
	snapshot := slices.Clone(d.listeners)
	d.depth++
	defer func() { d.depth-- }()

	consumed := false
	delivered := 0
	for _, l := range snapshot {
		if !l.Interest().Wants(e) {
			continue
		}
		delivered++
		if l.OnEvent(e) {
			consumed = true
		}
	}
	if ce := d.log.Check(zap.DebugLevel, "event posted"); ce != nil {
		ce.Write(
			zap.Stringer("type", e.Type()),
			zap.Int("delivered", delivered),
			zap.Bool("consumed", consumed),
			zap.Int("depth", d.depth),
		)
	}
	return consumed
}
