package scene

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
	ErrLayerAttached = errors.New("layer already attached")
	ErrLayerNotFound = errors.New("layer not found")
	ErrLayerDetached = errors.New("layer not attached")
)

// Scene owns one entity world and one dispatcher shared by every system in
// its layer stack. Layers run bottom to top; overlays always sit above the
// regular layers.
type Scene struct {
	name       string
	world      *ecs.World
	dispatcher *event.Dispatcher
	log        *zap.Logger

	layers      []*Layer
	insertIndex int
}

func New(name string, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("scene", name))
	return &Scene{
		name:       name,
		world:      ecs.NewWorld(),
		dispatcher: event.NewDispatcher(log),
		log:        log,
	}
}

func (s *Scene) Name() string                  { return s.name }
func (s *Scene) World() *ecs.World             { return s.world }
func (s *Scene) Dispatcher() *event.Dispatcher { return s.dispatcher }

// Layers returns the stack bottom to top.
func (s *Scene) Layers() []*Layer { return slices.Clone(s.layers) }

// PushLayer inserts l above the existing layers but below every overlay.
func (s *Scene) PushLayer(l *Layer) error {
	if l.Attached() {
		return fmt.Errorf("push layer %s: %w", l.name, ErrLayerAttached)
	}
	s.layers = slices.Insert(s.layers, s.insertIndex, l)
	s.insertIndex++
	return s.attach(l)
}

// PushOverlay appends l on top of the stack.
func (s *Scene) PushOverlay(l *Layer) error {
	if l.Attached() {
		return fmt.Errorf("push overlay %s: %w", l.name, ErrLayerAttached)
	}
	s.layers = append(s.layers, l)
	return s.attach(l)
}

func (s *Scene) PopLayer(l *Layer) error {
	i := slices.Index(s.layers[:s.insertIndex], l)
	if i < 0 {
		return fmt.Errorf("pop layer %s: %w", l.name, ErrLayerNotFound)
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	s.insertIndex--
	l.detach()
	s.log.Debug("layer popped", zap.String("layer", l.name))
	return nil
}

func (s *Scene) PopOverlay(l *Layer) error {
	i := slices.Index(s.layers[s.insertIndex:], l)
	if i < 0 {
		return fmt.Errorf("pop overlay %s: %w", l.name, ErrLayerNotFound)
	}
	i += s.insertIndex
	s.layers = slices.Delete(s.layers, i, i+1)
	l.detach()
	s.log.Debug("overlay popped", zap.String("layer", l.name))
	return nil
}

func (s *Scene) attach(l *Layer) error {
	if err := l.attach(s.world, s.dispatcher, s.log); err != nil {
		return err
	}
	s.log.Debug("layer attached", zap.String("layer", l.name), zap.Int("systems", len(l.Systems())))
	return nil
}

// Update runs every layer's systems for one frame.
func (s *Scene) Update(dt time.Duration) {
	for _, l := range slices.Clone(s.layers) {
		l.update(dt)
	}
}

func (s *Scene) GuiRender(dt time.Duration) {
	for _, l := range slices.Clone(s.layers) {
		l.guiRender(dt)
	}
}

// Inject posts an event from the windowing or input backend.
func (s *Scene) Inject(e event.Event) bool {
	return s.dispatcher.PostEvent(e)
}

// Close detaches every layer top to bottom and destroys all entities.
func (s *Scene) Close() {
	for i := len(s.layers) - 1; i >= 0; i-- {
		s.layers[i].detach()
	}
	s.layers = nil
	s.insertIndex = 0

	var live []ecs.EntityID
	s.world.Pool().Each(func(id ecs.EntityID) { live = append(live, id) })
	for _, id := range live {
		_ = s.world.Destroy(id)
	}
	s.log.Info("scene closed", zap.Int("entities", len(live)))
}
