package system

import (
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/component"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"
	coresys "github.com/Mandelbrottt/Yr2-Engine/internal/core/system"
	"github.com/Mandelbrottt/Yr2-Engine/internal/render"

	"go.uber.org/zap"
)

// RenderSystem submits every drawable Renderable with its global matrix.
// Renderables are batched by shader, then material; entries missing a mesh,
// material or shader, or disabled, sort last and are skipped.
type RenderSystem struct {
	coresys.Base

	renderer render.Renderer
	log      *zap.Logger

	width, height int
	viewportDirty bool
}

func NewRenderSystem(r render.Renderer, log *zap.Logger) *RenderSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &RenderSystem{renderer: r, log: log}
	s.ListenForEventType(event.TypeWindowResized)
	return s
}

func (s *RenderSystem) Name() string { return "render" }

func (s *RenderSystem) Viewport() (width, height int) { return s.width, s.height }

func drawable(r *component.Renderable) bool {
	return r.Enabled && r.Mesh != nil && r.Material != nil && r.Material.Shader != nil
}

func renderLess(a, b *component.Renderable) bool {
	if !drawable(a) {
		return false
	}
	if !drawable(b) {
		return true
	}
	if sa, sb := a.ShaderAlias(), b.ShaderAlias(); sa != sb {
		return sa < sb
	}
	return a.MaterialAlias() < b.MaterialAlias()
}

func (s *RenderSystem) OnUpdate(_ time.Duration) {
	w := s.World()
	if w == nil {
		return
	}
	if s.viewportDirty {
		s.renderer.SetViewport(s.width, s.height)
		s.viewportDirty = false
	}

	ecs.Sort(w, renderLess)
	h := component.NewHierarchy(w)
	submitted := 0
	for id := range ecs.NewView2[component.Renderable, component.Transform](w).Entities() {
		r, _ := ecs.TryGet[component.Renderable](w, id)
		if !drawable(r) {
			break
		}
		m, err := h.MatrixGlobal(id)
		if err != nil {
			s.log.Warn("render transform", zap.Stringer("entity", id), zap.Error(err))
			continue
		}
		s.renderer.Submit(r.Mesh, r.Material, m)
		submitted++
	}
	s.renderer.EndFrame()
	if ce := s.log.Check(zap.DebugLevel, "frame rendered"); ce != nil {
		ce.Write(zap.Int("draw_calls", submitted))
	}
}

func (s *RenderSystem) OnEvent(e event.Event) bool {
	if resized, ok := e.(event.WindowResized); ok {
		s.width, s.height = resized.Width, resized.Height
		s.viewportDirty = true
	}
	return false
}
