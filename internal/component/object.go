package component

import "github.com/Mandelbrottt/Yr2-Engine/internal/asset"

// SceneObject names an entity for logs and debug summaries.
type SceneObject struct {
	Name string
}

// Renderable is a draw request consumed by RenderSystem.
type Renderable struct {
	Mesh     *asset.Mesh
	Material *asset.Material
	Enabled  bool
}

// ShaderAlias is the sort key RenderSystem batches by. Missing materials or
// shaders sort first.
func (r *Renderable) ShaderAlias() string {
	if r.Material == nil || r.Material.Shader == nil {
		return ""
	}
	return r.Material.Shader.Alias
}

func (r *Renderable) MaterialAlias() string {
	if r.Material == nil {
		return ""
	}
	return r.Material.Alias
}

// Script binds an entity to a gameplay table loaded by the Lua engine.
type Script struct {
	Table string
}
