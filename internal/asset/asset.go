package asset

import "github.com/go-gl/mathgl/mgl32"

// Mesh is an opaque geometry handle. Only the vertex positions are visible
// to the simulation core; the physics bridge hulls them for mesh colliders.
type Mesh struct {
	Alias    string
	Vertices []mgl32.Vec3
	Indices  []uint32
}

// Bounds returns the axis-aligned extents of the mesh in its local frame.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if m == nil || len(m.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < lo[i] {
				lo[i] = v[i]
			}
			if v[i] > hi[i] {
				hi[i] = v[i]
			}
		}
	}
	return lo, hi
}

type Shader struct {
	Alias string
}

type Material struct {
	Alias  string
	Shader *Shader
	Albedo mgl32.Vec3
}
