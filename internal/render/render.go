package render

import (
	"github.com/Mandelbrottt/Yr2-Engine/internal/asset"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Renderer is the draw-call sink the simulation core submits to. Backends
// own every GPU concern.
type Renderer interface {
	Submit(mesh *asset.Mesh, material *asset.Material, transform mgl32.Mat4)
	SetViewport(width, height int)
	EndFrame()
}

type DrawCall struct {
	Mesh      *asset.Mesh
	Material  *asset.Material
	Transform mgl32.Mat4
}

// Recorder is a headless Renderer that keeps the draw calls of the last
// completed frame.
type Recorder struct {
	log     *zap.Logger
	pending []DrawCall
	last    []DrawCall
	frames  int
	width   int
	height  int
}

func NewRecorder(log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{log: log}
}

func (r *Recorder) Submit(mesh *asset.Mesh, material *asset.Material, transform mgl32.Mat4) {
	r.pending = append(r.pending, DrawCall{Mesh: mesh, Material: material, Transform: transform})
}

func (r *Recorder) SetViewport(width, height int) {
	r.width, r.height = width, height
	r.log.Debug("viewport", zap.Int("width", width), zap.Int("height", height))
}

// EndFrame publishes the pending calls as the last frame.
func (r *Recorder) EndFrame() {
	r.last, r.pending = r.pending, r.last[:0]
	r.frames++
}

// Pending returns calls submitted since the last EndFrame.
func (r *Recorder) Pending() []DrawCall { return r.pending }

// LastFrame returns the calls of the last completed frame. The slice is
// reused by the frame after next.
func (r *Recorder) LastFrame() []DrawCall { return r.last }

func (r *Recorder) Frames() int { return r.frames }

func (r *Recorder) Viewport() (width, height int) { return r.width, r.height }
